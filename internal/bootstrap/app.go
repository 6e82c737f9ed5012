package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"priceexport-backend/internal/account"
	googleauth "priceexport-backend/internal/auth"
	"priceexport-backend/internal/exports"
	"priceexport-backend/internal/queue"
	"priceexport-backend/internal/services/health"
	"priceexport-backend/internal/shared/config"
	"priceexport-backend/internal/shared/server"
	"priceexport-backend/internal/shared/storage/db"
	"priceexport-backend/internal/shared/storage/object"
	localstore "priceexport-backend/internal/shared/storage/object/local"
	s3store "priceexport-backend/internal/shared/storage/object/s3"
	"priceexport-backend/internal/suppliers"
	"priceexport-backend/internal/users"
)

// App holds shared dependencies for the API server and worker.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	Store           object.ObjectStore
	Queue           queue.Client
	ExportsRepo     exports.Repo
	SuppliersRepo   suppliers.Repo
	UsersRepo       users.Repo
	ExportService   *exports.Service
	ExportGenerator ExportProcessor
	UsersService    *users.Service
	AccountService  *account.Service
	HealthService   *health.Service
	ExportHandler   *exports.Handler
	SupplierHandler *suppliers.Handler
	UserHandler     *users.Handler
	AccountHandler  *account.Handler
	GoogleAuth      *googleauth.GoogleService
}

// ExportProcessor allows callers to override export generation for tests.
type ExportProcessor interface {
	ProcessExport(ctx context.Context, exportID string) error
}

// Options tune how Build connects to infrastructure.
type Options struct {
	DBOptions db.Options
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	return BuildWithOptions(cfg, Options{DBOptions: db.OptionsFromEnv(db.DefaultServerOptions())})
}

// BuildWithOptions is Build with explicit infrastructure options.
func BuildWithOptions(cfg config.Config, opts Options) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg, opts.DBOptions)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		Health:          app.HealthService,
		ExportHandler:   app.ExportHandler,
		SupplierHandler: app.SupplierHandler,
		UserHandler:     app.UserHandler,
		AccountHandler:  app.AccountHandler,
		GoogleAuth:      app.GoogleAuth,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config, opts db.Options) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.AWSRegion) == "" || strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires AWS_REGION and S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.QueueURL) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	var exportsRepo exports.Repo
	var suppliersRepo suppliers.Repo
	var usersRepo users.Repo

	if app.DB != nil {
		exportsRepo = &exports.PGRepo{DB: app.DB}
		suppliersRepo = &suppliers.PGRepo{DB: app.DB}
		usersRepo = &users.PGRepo{DB: app.DB}
	} else {
		exportsRepo = exports.NewMemoryRepo()
		memSuppliers := suppliers.NewMemoryRepo()
		seedDevSuppliers(memSuppliers)
		suppliersRepo = memSuppliers
		usersRepo = users.NewMemoryRepo()
	}

	directory := supplierAdapter{repo: suppliersRepo}

	exportSvc := &exports.Service{
		Repo:      exportsRepo,
		Store:     app.Store,
		Suppliers: directory,
		Queue:     app.Queue,
	}

	generator := &exports.Generator{
		Repo:   exportsRepo,
		Prices: directory,
		Store:  app.Store,
	}

	userSvc := users.NewService(usersRepo)
	googleAuthSvc := googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		userSvc,
	)

	app.ExportsRepo = exportsRepo
	app.SuppliersRepo = suppliersRepo
	app.UsersRepo = usersRepo
	app.ExportService = exportSvc
	app.ExportGenerator = generator
	app.UsersService = userSvc
	app.AccountService = account.NewService(exportsRepo)
	app.HealthService = health.NewService(app.DB)
	app.ExportHandler = exports.NewHandler(exportSvc)
	app.SupplierHandler = suppliers.NewHandler(suppliersRepo)
	app.UserHandler = users.NewHandler(userSvc)
	app.AccountHandler = account.NewHandler(app.AccountService)
	app.GoogleAuth = googleAuthSvc

	if app.ExportHandler == nil || app.SupplierHandler == nil {
		return errors.New("failed to initialize handlers")
	}

	return nil
}

// supplierAdapter exposes the suppliers repo through the narrow interfaces
// the exports package consumes.
type supplierAdapter struct {
	repo suppliers.Repo
}

func (a supplierAdapter) Exists(ctx context.Context, supplierID string) (bool, error) {
	_, err := a.repo.GetByID(ctx, supplierID)
	if err != nil {
		if errors.Is(err, suppliers.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (a supplierAdapter) ListPrices(ctx context.Context, supplierID string) ([]exports.PriceRow, error) {
	rows, err := a.repo.ListPrices(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	out := make([]exports.PriceRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, exports.PriceRow{
			SKU:        row.SKU,
			Title:      row.Title,
			PriceCents: row.PriceCents,
			Currency:   row.Currency,
		})
	}
	return out, nil
}

func seedDevSuppliers(repo *suppliers.MemoryRepo) {
	now := time.Now().UTC()
	repo.Put(suppliers.Supplier{
		ID:        "supplier-acme",
		Name:      "Acme Wholesale",
		CreatedAt: now,
		UpdatedAt: now,
	}, []suppliers.PriceRow{
		{ID: "price-1", SupplierID: "supplier-acme", SKU: "ACME-001", Title: "Anvil", PriceCents: 129900, Currency: "USD", UpdatedAt: now},
		{ID: "price-2", SupplierID: "supplier-acme", SKU: "ACME-002", Title: "Rocket Skates", PriceCents: 549900, Currency: "USD", UpdatedAt: now},
	})
}
