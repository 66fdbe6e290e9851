// Package httpserver exposes the diary over HTTP: accounts, entries and
// per-user settings. Handlers talk to the services through small interfaces.
package httpserver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/diary/internal/logging"
	"github.com/dmitrijs2005/diary/internal/server/forms"
	"github.com/dmitrijs2005/diary/internal/server/models"
	"github.com/dmitrijs2005/diary/internal/server/services"
)

const (
	readTimeout     = 10 * time.Second
	writeTimeout    = 30 * time.Second
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

type UserService interface {
	Register(ctx context.Context, in *forms.RegisterInput) (*models.User, error)
	ConfirmEmail(ctx context.Context, token string) error
	Login(ctx context.Context, email, password string) (string, error)
	Authenticate(ctx context.Context, token string) (string, error)
	Profile(ctx context.Context, userID string) (*services.Profile, error)
	UpdateProfile(ctx context.Context, userID string, in *forms.ProfileInput) (*services.Profile, error)
	UploadAvatar(ctx context.Context, userID, contentType string, r io.Reader) (*services.Profile, error)
	RemoveAvatar(ctx context.Context, userID string) error
	ChangePassword(ctx context.Context, userID string, in *forms.PasswordChangeInput) error
	DeleteAccount(ctx context.Context, userID, password string) error
}

type EntryService interface {
	NewForm(ctx context.Context, userID string) (*services.EntryForm, error)
	EditForm(ctx context.Context, userID, id string) (*services.EntryForm, error)
	Create(ctx context.Context, userID string, in *forms.EntryInput) (*models.Entry, error)
	Update(ctx context.Context, userID, id string, in *forms.EntryInput) (*models.Entry, error)
	Detail(ctx context.Context, userID, id string) (*models.Entry, error)
	List(ctx context.Context, userID string, q services.ListQuery) (*services.EntryPage, error)
	Count(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, userID, id string) error
}

type SettingsService interface {
	Get(ctx context.Context, userID string) (*services.SettingsView, error)
	Update(ctx context.Context, userID string, in *forms.SettingsInput) (*services.SettingsView, error)
	UpdateCustomFields(ctx context.Context, userID string, raw []string) (*services.SettingsView, error)
	CustomFieldNames(ctx context.Context, userID string) (models.FieldSchema, error)
}

type Server struct {
	address         string
	logger          logging.Logger
	users           UserService
	entries         EntryService
	settings        SettingsService
	sessionValidity time.Duration
	secureCookie    bool
}

func NewServer(addr string, l logging.Logger, us UserService, es EntryService, ss SettingsService, sessionValidity time.Duration, secureCookie bool) *Server {
	return &Server{
		address:         addr,
		logger:          l.With("module", "http_server"),
		users:           us,
		entries:         es,
		settings:        ss,
		sessionValidity: sessionValidity,
		secureCookie:    secureCookie,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.address,
		Handler:      s.Router(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
