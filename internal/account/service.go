package account

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"priceexport-backend/internal/exports"
)

type Service struct {
	ExportsRepo exports.Repo
}

type ClaimResult struct {
	MigratedExports int `json:"migratedExports"`
}

func NewService(exportsRepo exports.Repo) *Service {
	return &Service{ExportsRepo: exportsRepo}
}

// ClaimGuest moves export records created under a guest identity to the
// authenticated user so they survive login.
func (s *Service) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (ClaimResult, error) {
	if strings.TrimSpace(guestUserID) == "" || strings.TrimSpace(authedUserID) == "" {
		return ClaimResult{}, errors.New("guestUserID and authedUserID are required")
	}

	if pg, ok := s.ExportsRepo.(*exports.PGRepo); ok && pg != nil && pg.DB != nil {
		return claimWithTx(ctx, pg.DB, guestUserID, authedUserID)
	}

	count, err := claimExports(ctx, s.ExportsRepo, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{MigratedExports: count}, nil
}

func claimWithTx(ctx context.Context, db *sql.DB, guestUserID, authedUserID string) (ClaimResult, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return ClaimResult{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE exports SET user_id = $1 WHERE user_id = $2`, authedUserID, guestUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	count, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{MigratedExports: int(count)}, nil
}

type guestExportClaimer interface {
	ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error)
}

func claimExports(ctx context.Context, repo exports.Repo, guestUserID, authedUserID string) (int, error) {
	if claimer, ok := repo.(guestExportClaimer); ok {
		return claimer.ClaimGuest(ctx, guestUserID, authedUserID)
	}
	return 0, errors.New("exports repo does not support claim")
}
