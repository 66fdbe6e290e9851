package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/diary/internal/dbx"
	"github.com/dmitrijs2005/diary/internal/events"
	"github.com/dmitrijs2005/diary/internal/logging"
	"github.com/dmitrijs2005/diary/internal/server/config"
	"github.com/dmitrijs2005/diary/internal/server/forms"
	"github.com/dmitrijs2005/diary/internal/server/models"
	"github.com/dmitrijs2005/diary/internal/server/repositories/repomanager"
)

// SettingsView is the settings form together with the stored values.
type SettingsView struct {
	Settings *models.Settings `json:"-"`
	Fields   []forms.Field    `json:"fields"`
	Names    []string         `json:"custom_field_names"`
}

type SettingsService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	reconciler  *Reconciler
	publisher   events.Publisher
	log         logging.Logger
}

func NewSettingsService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, pub events.Publisher, log logging.Logger) *SettingsService {
	return &SettingsService{
		db:          db,
		repomanager: m,
		reconciler:  NewReconciler(m, cfg.KeepBlankCustomFields),
		publisher:   pub,
		log:         log.With("module", "settings"),
	}
}

func view(s *models.Settings) *SettingsView {
	names := []string(s.CustomFieldNames)
	if names == nil {
		names = []string{}
	}
	return &SettingsView{Settings: s, Fields: forms.SettingsFields(s), Names: names}
}

// Get returns the user's settings, creating the defaults on first access.
func (s *SettingsService) Get(ctx context.Context, userID string) (*SettingsView, error) {
	st, err := s.repomanager.Settings(s.db).Ensure(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading settings: %w", err)
	}
	return view(st), nil
}

// Update stores the display settings. The custom field names are replaced
// only when the submission carried a name list. Stored entry values are left
// alone.
func (s *SettingsService) Update(ctx context.Context, userID string, in *forms.SettingsInput) (*SettingsView, error) {
	st, err := dbx.WithTxResult(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.Settings, error) {
		return s.reconciler.UpdateSettings(ctx, tx, userID, in.Names, func(cur *models.Settings) {
			cur.ShowTargets = in.ShowTargets
			cur.ShowTags = in.ShowTags
			cur.DefaultTargets = in.DefaultTargets
			if in.Theme != "" {
				cur.Theme = in.Theme
			}
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "settings updated", "user_id", userID)
	publish(ctx, s.publisher, s.log, events.TopicSettingsUpdated,
		events.SettingsUpdated{UserID: userID, CustomFieldNames: st.CustomFieldNames})
	return view(st), nil
}

// UpdateCustomFields only redefines the custom field names.
func (s *SettingsService) UpdateCustomFields(ctx context.Context, userID string, raw []string) (*SettingsView, error) {
	var st *models.Settings
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		st, err = s.reconciler.SetDefinedNames(ctx, tx, userID, raw)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "custom fields redefined", "user_id", userID, "count", len(st.CustomFieldNames))
	publish(ctx, s.publisher, s.log, events.TopicSettingsUpdated,
		events.SettingsUpdated{UserID: userID, CustomFieldNames: st.CustomFieldNames})
	return view(st), nil
}

// CustomFieldNames returns the defined names without creating settings. A
// user who never opened their settings gets common.ErrorNotFound.
func (s *SettingsService) CustomFieldNames(ctx context.Context, userID string) (models.FieldSchema, error) {
	st, err := s.repomanager.Settings(s.db).Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return st.CustomFieldNames, nil
}
