// Package server initializes and runs the diary server. It opens the
// database, applies migrations, wires storage, mail and events into the
// services, and serves HTTP until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/diary/internal/events"
	"github.com/dmitrijs2005/diary/internal/logging"
	"github.com/dmitrijs2005/diary/internal/server/config"
	"github.com/dmitrijs2005/diary/internal/server/health"
	"github.com/dmitrijs2005/diary/internal/server/httpserver"
	"github.com/dmitrijs2005/diary/internal/server/mail"
	"github.com/dmitrijs2005/diary/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/diary/internal/server/services"
	"github.com/dmitrijs2005/diary/internal/server/storage"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const readinessInterval = 10 * time.Second

type App struct {
	config          *config.Config
	logger          logging.Logger
	db              *sql.DB
	publisher       events.Publisher
	userService     *services.UserService
	entryService    *services.EntryService
	settingsService *services.SettingsService
}

// OpenDB opens the pgx-backed pool and applies pending migrations.
func OpenDB(ctx context.Context, dsn string, m repomanager.RepositoryManager) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return db, nil
}

// NewLogger returns the JSON logger the server and its tools write with.
func NewLogger() logging.Logger {
	return logging.NewJSONLogger(os.Stdout, slog.LevelInfo)
}

// NewUserService builds the account service with its storage and mail
// backends. The cmd/csu tool shares it with the server.
func NewUserService(ctx context.Context, c *config.Config, db *sql.DB, m repomanager.RepositoryManager,
	pub events.Publisher, logger logging.Logger) (*services.UserService, error) {
	store, err := storage.NewS3Store(ctx, storage.S3Config{
		Region:       c.S3Region,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		Bucket:       c.S3Bucket,
		BaseEndpoint: c.S3BaseEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 init error: %w", err)
	}

	var mailer mail.Sender = mail.NewLogSender(logger)
	if c.SMTPAddr != "" {
		mailer = mail.NewSMTPSender(c.SMTPAddr, c.MailFrom)
	}

	return services.NewUserService(db, m, c, store, mailer, pub, logger), nil
}

func newPublisher(c *config.Config, logger logging.Logger) events.Publisher {
	if c.NATSURL == "" {
		return &events.NoopPublisher{}
	}
	p, err := events.NewNATSPublisher(c.NATSURL)
	if err != nil {
		logger.Warn(context.Background(), "nats unavailable, events disabled", "error", err)
		return &events.NoopPublisher{}
	}
	return p
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := NewLogger()

	m := repomanager.NewPostgresRepositoryManager()
	db, err := OpenDB(ctx, c.DatabaseDSN, m)
	if err != nil {
		return nil, err
	}

	pub := newPublisher(c, logger)

	us, err := NewUserService(ctx, c, db, m, pub, logger)
	if err != nil {
		_ = db.Close()
		_ = pub.Close()
		return nil, err
	}

	return &App{
		config:          c,
		logger:          logger,
		db:              db,
		publisher:       pub,
		userService:     us,
		entryService:    services.NewEntryService(db, m, c, pub, logger),
		settingsService: services.NewSettingsService(db, m, c, pub, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpserver.NewServer(app.config.EndpointAddrHTTP, app.logger,
		app.userService, app.entryService, app.settingsService,
		app.config.SessionValidityDuration, strings.HasPrefix(app.config.BaseURL, "https://"))

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHealthServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := health.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.db.PingContext, readinessInterval)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.EndpointAddrGRPC != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startHealthServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if err := app.publisher.Close(); err != nil {
		app.logger.Warn(ctx, "event publisher close error", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
