package httpserver

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/diary/internal/logging"
	"github.com/dmitrijs2005/diary/internal/server/forms"
	"github.com/dmitrijs2005/diary/internal/server/models"
	"github.com/dmitrijs2005/diary/internal/server/services"
	"github.com/stretchr/testify/mock"
)

type MockUsers struct{ mock.Mock }

func (m *MockUsers) Register(ctx context.Context, in *forms.RegisterInput) (*models.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUsers) ConfirmEmail(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockUsers) Login(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func (m *MockUsers) Authenticate(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

func (m *MockUsers) Profile(ctx context.Context, userID string) (*services.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Profile), args.Error(1)
}

func (m *MockUsers) UpdateProfile(ctx context.Context, userID string, in *forms.ProfileInput) (*services.Profile, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Profile), args.Error(1)
}

func (m *MockUsers) UploadAvatar(ctx context.Context, userID, contentType string, r io.Reader) (*services.Profile, error) {
	data, _ := io.ReadAll(r)
	args := m.Called(ctx, userID, contentType, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Profile), args.Error(1)
}

func (m *MockUsers) RemoveAvatar(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockUsers) ChangePassword(ctx context.Context, userID string, in *forms.PasswordChangeInput) error {
	return m.Called(ctx, userID, in).Error(0)
}

func (m *MockUsers) DeleteAccount(ctx context.Context, userID, password string) error {
	return m.Called(ctx, userID, password).Error(0)
}

type MockEntries struct{ mock.Mock }

func (m *MockEntries) NewForm(ctx context.Context, userID string) (*services.EntryForm, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.EntryForm), args.Error(1)
}

func (m *MockEntries) EditForm(ctx context.Context, userID, id string) (*services.EntryForm, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.EntryForm), args.Error(1)
}

func (m *MockEntries) Create(ctx context.Context, userID string, in *forms.EntryInput) (*models.Entry, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Entry), args.Error(1)
}

func (m *MockEntries) Update(ctx context.Context, userID, id string, in *forms.EntryInput) (*models.Entry, error) {
	args := m.Called(ctx, userID, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Entry), args.Error(1)
}

func (m *MockEntries) Detail(ctx context.Context, userID, id string) (*models.Entry, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Entry), args.Error(1)
}

func (m *MockEntries) List(ctx context.Context, userID string, q services.ListQuery) (*services.EntryPage, error) {
	args := m.Called(ctx, userID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.EntryPage), args.Error(1)
}

func (m *MockEntries) Count(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockEntries) Delete(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

type MockSettings struct{ mock.Mock }

func (m *MockSettings) Get(ctx context.Context, userID string) (*services.SettingsView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SettingsView), args.Error(1)
}

func (m *MockSettings) Update(ctx context.Context, userID string, in *forms.SettingsInput) (*services.SettingsView, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SettingsView), args.Error(1)
}

func (m *MockSettings) UpdateCustomFields(ctx context.Context, userID string, raw []string) (*services.SettingsView, error) {
	args := m.Called(ctx, userID, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SettingsView), args.Error(1)
}

func (m *MockSettings) CustomFieldNames(ctx context.Context, userID string) (models.FieldSchema, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.FieldSchema), args.Error(1)
}

const (
	testToken  = "good-token"
	testUserID = "u1"
)

type testEnv struct {
	users    *MockUsers
	entries  *MockEntries
	settings *MockSettings
	handler  http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{users: &MockUsers{}, entries: &MockEntries{}, settings: &MockSettings{}}
	env.users.On("Authenticate", mock.Anything, testToken).Return(testUserID, nil).Maybe()

	s := NewServer(":0", logging.NewNop(), env.users, env.entries, env.settings, time.Hour, false)
	env.handler = s.Router()

	t.Cleanup(func() {
		env.users.AssertExpectations(t)
		env.entries.AssertExpectations(t)
		env.settings.AssertExpectations(t)
	})
	return env
}

func (e *testEnv) do(method, target string, body url.Values, authed bool) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		r = strings.NewReader(body.Encode())
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}
