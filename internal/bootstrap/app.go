package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"sow-backend/internal/account"
	"sow-backend/internal/audits"
	googleauth "sow-backend/internal/auth"
	"sow-backend/internal/documents"
	"sow-backend/internal/llm"
	"sow-backend/internal/llm/deepseek"
	"sow-backend/internal/mailer"
	"sow-backend/internal/queue"
	"sow-backend/internal/shared/config"
	"sow-backend/internal/shared/server"
	"sow-backend/internal/shared/storage/db"
	"sow-backend/internal/shared/storage/object"
	localstore "sow-backend/internal/shared/storage/object/local"
	s3store "sow-backend/internal/shared/storage/object/s3"
)

// App holds shared dependencies for the API server, the worker, and the
// Lambda entrypoints.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Store            object.ObjectStore
	Queue            queue.Client
	DocumentsRepo    documents.DocumentsRepo
	AuditsRepo       audits.Repo
	DocumentsService *documents.Service
	AuditsService    *audits.Service
	AuditProcessor   AuditProcessor
	Mailer           *mailer.Mailer
	DocumentsHandler *documents.Handler
	AuditsHandler    *audits.Handler
	AccountHandler   *account.Handler
	GoogleAuth       *googleauth.GoogleService
}

// AuditProcessor allows callers to override audit processing for tests.
type AuditProcessor interface {
	ProcessAudit(ctx context.Context, auditID string) error
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
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
		Config:           app.Config,
		DocumentsHandler: app.DocumentsHandler,
		AuditsHandler:    app.AuditsHandler,
		AccountHandler:   app.AccountHandler,
		GoogleAuth:       app.GoogleAuth,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	queueURL := strings.TrimSpace(cfg.JobQueueURL)
	if queueURL == "" {
		queueURL = strings.TrimSpace(os.Getenv("SOW_SQS_QUEUE_URL"))
	}
	if queueURL == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx, queueURL)
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
	var docRepo documents.DocumentsRepo
	var auditRepo audits.Repo

	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
		auditRepo = &audits.PGRepo{DB: app.DB}
	} else {
		docRepo = documents.NewMemoryRepo()
		auditRepo = audits.NewMemoryRepo()
	}

	docSvc := &documents.Service{
		Store:           app.Store,
		Repo:            docRepo,
		StorageProvider: app.Config.ObjectStoreType,
	}

	llmClient := llm.Client(llm.PlaceholderClient{})
	if app.Config.LLMProvider == "deepseek" && strings.TrimSpace(app.Config.DeepSeekAPIKey) != "" {
		deepseekClient, err := deepseek.NewClient(app.Config.DeepSeekAPIKey, app.Config.LLMModel, app.Config.DeepSeekAPIURL)
		if err != nil {
			return err
		}
		llmClient = deepseekClient
	}

	auditSvc := &audits.Service{
		Repo:     auditRepo,
		DocRepo:  docRepo,
		Store:    app.Store,
		LLM:      llmClient,
		JobQueue: app.Queue,
		Provider: app.Config.LLMProvider,
		Model:    app.Config.LLMModel,
	}

	if strings.TrimSpace(app.Config.SMTPHost) != "" {
		m, err := mailer.New(mailer.Config{
			Host:     app.Config.SMTPHost,
			Port:     app.Config.SMTPPort,
			Username: app.Config.SMTPUsername,
			Password: app.Config.SMTPPassword,
			From:     app.Config.SMTPFrom,
		})
		if err != nil {
			return fmt.Errorf("configure mailer: %w", err)
		}
		app.Mailer = m
	}

	googleAuthSvc := googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
	)

	app.DocumentsRepo = docRepo
	app.AuditsRepo = auditRepo
	app.DocumentsService = docSvc
	app.AuditsService = auditSvc
	app.AuditProcessor = auditSvc

	// Keep the interface nil when no mailer is configured so the handler can
	// answer 503 instead of calling through a nil *Mailer.
	var reportMail audits.ReportMailer
	if app.Mailer != nil {
		reportMail = app.Mailer
	}

	app.DocumentsHandler = documents.NewHandler(docSvc)
	app.AuditsHandler = audits.NewHandler(auditSvc, docRepo, reportMail)
	app.AccountHandler = account.NewHandler(account.NewService(docRepo, auditRepo))
	app.GoogleAuth = googleAuthSvc

	if app.DocumentsHandler == nil || app.AuditsHandler == nil {
		return errors.New("failed to initialize handlers")
	}

	return nil
}
