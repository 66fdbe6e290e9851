package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/diary/internal/common"
	"github.com/dmitrijs2005/diary/internal/dbx"
	"github.com/dmitrijs2005/diary/internal/events"
	"github.com/dmitrijs2005/diary/internal/idgen"
	"github.com/dmitrijs2005/diary/internal/logging"
	"github.com/dmitrijs2005/diary/internal/server/auth"
	"github.com/dmitrijs2005/diary/internal/server/config"
	"github.com/dmitrijs2005/diary/internal/server/forms"
	"github.com/dmitrijs2005/diary/internal/server/mail"
	"github.com/dmitrijs2005/diary/internal/server/models"
	"github.com/dmitrijs2005/diary/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/diary/internal/server/storage"
	"golang.org/x/crypto/bcrypt"
)

// MaxAvatarSize is the largest accepted avatar upload.
const MaxAvatarSize = 5 << 20

var avatarTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Profile is the account as shown to its owner.
type Profile struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Phone       string `json:"phone"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// UserService handles accounts: registration with email confirmation,
// login sessions, profile and avatar, password change and deletion.
type UserService struct {
	db                   *sql.DB
	repomanager          repomanager.RepositoryManager
	jwtSecret            []byte
	sessionValidity      time.Duration
	confirmationValidity time.Duration
	baseURL              string
	store                storage.ObjectStore
	mailer               mail.Sender
	publisher            events.Publisher
	log                  logging.Logger
	hashCost             int
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config,
	store storage.ObjectStore, mailer mail.Sender, pub events.Publisher, log logging.Logger) *UserService {
	return &UserService{
		db:                   db,
		repomanager:          m,
		jwtSecret:            []byte(cfg.SecretKey),
		sessionValidity:      cfg.SessionValidityDuration,
		confirmationValidity: cfg.ConfirmationValidityDuration,
		baseURL:              strings.TrimRight(cfg.BaseURL, "/"),
		store:                store,
		mailer:               mailer,
		publisher:            pub,
		log:                  log.With("module", "users"),
		hashCost:             bcrypt.DefaultCost,
	}
}

// hash reports a password bcrypt cannot take as a ValidationError on field.
func (s *UserService) hash(field, password string) (string, error) {
	if len(password) > forms.MaxPasswordLength {
		verr := common.NewValidationError()
		verr.Add(field, "password must be at most 72 bytes")
		return "", verr
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}
	return string(h), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Register creates an inactive account and mails a confirmation link. A
// failed mail is logged, the account stays.
func (s *UserService) Register(ctx context.Context, in *forms.RegisterInput) (*models.User, error) {
	hash, err := s.hash("password1", in.Password)
	if err != nil {
		return nil, err
	}
	token, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, common.ErrorInternal
	}

	u := &models.User{Email: in.Email, DisplayName: in.DisplayName, Phone: in.Phone, PasswordHash: hash}
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Users(tx).Create(ctx, u); err != nil {
			return err
		}
		return s.repomanager.Confirmations(tx).Create(ctx, u.ID, token, s.confirmationValidity)
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	link := s.baseURL + "/users/email-confirm/" + token + "/"
	subject, body := mail.ConfirmationMessage(link)
	if err := s.mailer.Send(ctx, u.Email, subject, body); err != nil {
		s.log.Error(ctx, "confirmation mail not sent", "user_id", u.ID, "error", err)
	}

	s.log.Info(ctx, "user registered", "user_id", u.ID)
	publish(ctx, s.publisher, s.log, events.TopicUserRegistered, events.UserRegistered{UserID: u.ID, Email: u.Email})
	return u, nil
}

// ConfirmEmail activates the account the token was issued for. Unknown and
// expired tokens are reported as not found.
func (s *UserService) ConfirmEmail(ctx context.Context, token string) error {
	c, err := s.repomanager.Confirmations(s.db).Find(ctx, token)
	if err != nil {
		return err
	}
	if c.ExpiresAt.Before(time.Now()) {
		if err := s.repomanager.Confirmations(s.db).Delete(ctx, token); err != nil {
			s.log.Warn(ctx, "expired token not removed", "error", err)
		}
		return common.ErrorNotFound
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).Activate(ctx, c.UserID); err != nil {
			return err
		}
		return s.repomanager.Confirmations(tx).Delete(ctx, token)
	})
}

// Login checks the credentials of an active account and returns a session
// token.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.repomanager.Users(s.db).GetByEmail(ctx, forms.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", common.ErrorInternal
	}
	if !checkPassword(u.PasswordHash, password) || !u.IsActive {
		return "", common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(u.ID, s.jwtSecret, s.sessionValidity)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}

// Authenticate resolves a session token to the id of an active user.
func (s *UserService) Authenticate(ctx context.Context, token string) (string, error) {
	userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		return "", common.ErrorUnauthorized
	}
	u, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", err
	}
	if !u.IsActive {
		return "", common.ErrorUnauthorized
	}
	return u.ID, nil
}

func (s *UserService) Profile(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := &Profile{ID: u.ID, Email: u.Email, DisplayName: u.DisplayName, Phone: u.Phone}
	if u.AvatarKey != "" {
		if p.AvatarURL, err = s.store.PresignedGetURL(ctx, u.AvatarKey); err != nil {
			s.log.Warn(ctx, "avatar url not signed", "user_id", userID, "error", err)
		}
	}
	return p, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, in *forms.ProfileInput) (*Profile, error) {
	if err := s.repomanager.Users(s.db).UpdateProfile(ctx, userID, in.DisplayName, in.Phone); err != nil {
		return nil, err
	}
	return s.Profile(ctx, userID)
}

// UploadAvatar stores a new avatar image and drops the previous one. The
// declared content type must agree with the sniffed one.
func (s *UserService) UploadAvatar(ctx context.Context, userID, contentType string, r io.Reader) (*Profile, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxAvatarSize+1))
	if err != nil {
		return nil, fmt.Errorf("error reading avatar: %w", err)
	}

	verr := common.NewValidationError()
	ext, ok := avatarTypes[contentType]
	switch {
	case len(data) == 0:
		verr.Add("avatar", "the submitted file is empty")
	case len(data) > MaxAvatarSize:
		verr.Add("avatar", "the image must be at most 5 MB")
	case !ok || http.DetectContentType(data) != contentType:
		verr.Add("avatar", "upload a valid image: jpeg, png, gif or webp")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	users := s.repomanager.Users(s.db)
	u, err := users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	key, err := idgen.GenerateWithPrefix("avatars/" + userID + "/")
	if err != nil {
		return nil, common.ErrorInternal
	}
	key += ext

	if err := s.store.Put(ctx, key, contentType, data); err != nil {
		return nil, fmt.Errorf("error storing avatar: %w", err)
	}
	if err := users.SetAvatar(ctx, userID, key); err != nil {
		s.dropObject(ctx, key)
		return nil, err
	}
	if u.AvatarKey != "" {
		s.dropObject(ctx, u.AvatarKey)
	}
	return s.Profile(ctx, userID)
}

func (s *UserService) RemoveAvatar(ctx context.Context, userID string) error {
	users := s.repomanager.Users(s.db)
	u, err := users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.AvatarKey == "" {
		return nil
	}
	if err := users.SetAvatar(ctx, userID, ""); err != nil {
		return err
	}
	s.dropObject(ctx, u.AvatarKey)
	return nil
}

func (s *UserService) dropObject(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.log.Warn(ctx, "avatar object not removed", "key", key, "error", err)
	}
}

func (s *UserService) ChangePassword(ctx context.Context, userID string, in *forms.PasswordChangeInput) error {
	users := s.repomanager.Users(s.db)
	u, err := users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !checkPassword(u.PasswordHash, in.OldPassword) {
		verr := common.NewValidationError()
		verr.Add("old_password", "your old password was entered incorrectly")
		return verr
	}
	hash, err := s.hash("new_password1", in.NewPassword)
	if err != nil {
		return err
	}
	return users.SetPassword(ctx, userID, hash)
}

// DeleteAccount removes the account and everything it owns after checking
// the password.
func (s *UserService) DeleteAccount(ctx context.Context, userID, password string) error {
	users := s.repomanager.Users(s.db)
	u, err := users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !checkPassword(u.PasswordHash, password) {
		return common.ErrorUnauthorized
	}
	if err := users.Delete(ctx, userID); err != nil {
		return err
	}
	if u.AvatarKey != "" {
		s.dropObject(ctx, u.AvatarKey)
	}
	s.log.Info(ctx, "user deleted", "user_id", userID)
	return nil
}

// CreateSuperuser creates an active staff account with full rights. Input is
// checked with the registration rules.
func (s *UserService) CreateSuperuser(ctx context.Context, email, displayName, password string) (*models.User, error) {
	in, err := forms.ParseRegister(forms.Values(url.Values{
		"email":        {email},
		"display_name": {displayName},
		"password1":    {password},
		"password2":    {password},
	}))
	if err != nil {
		return nil, err
	}
	hash, err := s.hash("password1", in.Password)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Email:        in.Email,
		DisplayName:  in.DisplayName,
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      true,
		IsSuperuser:  true,
	}
	return s.repomanager.Users(s.db).Create(ctx, u)
}
