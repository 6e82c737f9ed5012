package exports

import "errors"

var (
	// ErrNotFound indicates an entity was not found, or that no downloadable
	// artifact exists yet.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrForbidden indicates access is not allowed.
	ErrForbidden = errors.New("forbidden")

	// ErrAlreadyReady indicates a readiness transition was attempted twice.
	ErrAlreadyReady = errors.New("export already ready")
)
