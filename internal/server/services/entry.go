package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/diary/internal/common"
	"github.com/dmitrijs2005/diary/internal/dbx"
	"github.com/dmitrijs2005/diary/internal/events"
	"github.com/dmitrijs2005/diary/internal/logging"
	"github.com/dmitrijs2005/diary/internal/pagination"
	"github.com/dmitrijs2005/diary/internal/server/config"
	"github.com/dmitrijs2005/diary/internal/server/fields"
	"github.com/dmitrijs2005/diary/internal/server/forms"
	"github.com/dmitrijs2005/diary/internal/server/models"
	"github.com/dmitrijs2005/diary/internal/server/repositories/repomanager"
)

// EntryForm is everything needed to render the create or edit form.
type EntryForm struct {
	EntryID      string             `json:"entry_id,omitempty"`
	Fields       []forms.Field      `json:"fields"`
	CustomFields []fields.FormField `json:"custom_fields"`
	ShowTargets  bool               `json:"show_targets"`
	ShowTags     bool               `json:"show_tags"`
	Theme        models.Theme       `json:"theme"`
}

// ListQuery selects one page of a user's entries.
type ListQuery struct {
	Text string
	Tag  string
	// Page is 1-based, or pagination.LastPage.
	Page int
}

type EntryPage struct {
	Entries []*models.Entry
	Page    *pagination.Info
	Tags    []string
}

type EntryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	reconciler  *Reconciler
	publisher   events.Publisher
	log         logging.Logger
	pageSize    int
}

func NewEntryService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, pub events.Publisher, log logging.Logger) *EntryService {
	return &EntryService{
		db:          db,
		repomanager: m,
		reconciler:  NewReconciler(m, cfg.KeepBlankCustomFields),
		publisher:   pub,
		log:         log.With("module", "entries"),
		pageSize:    cfg.PageSize,
	}
}

func (s *EntryService) settings(ctx context.Context, userID string) (*models.Settings, error) {
	st, err := s.repomanager.Settings(s.db).Ensure(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading settings: %w", err)
	}
	return st, nil
}

func (s *EntryService) form(st *models.Settings, e *models.Entry) *EntryForm {
	var values models.FieldValues
	if e.ID != "" {
		values = e.Values()
	}
	return &EntryForm{
		EntryID:      e.ID,
		Fields:       forms.EntryFields(e.Text, e.Targets, forms.JoinTags(e.Tags), st.ShowTargets, st.ShowTags),
		CustomFields: fields.BuildFormModel(st.CustomFieldNames, values),
		ShowTargets:  st.ShowTargets,
		ShowTags:     st.ShowTags,
		Theme:        st.Theme,
	}
}

// NewForm returns a blank entry form with targets pre-filled from settings.
func (s *EntryService) NewForm(ctx context.Context, userID string) (*EntryForm, error) {
	st, err := s.settings(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.form(st, &models.Entry{Targets: st.DefaultTargets}), nil
}

// EditForm returns the form for an existing entry. Only values of currently
// defined fields are shown.
func (s *EntryService) EditForm(ctx context.Context, userID, id string) (*EntryForm, error) {
	st, err := s.settings(ctx, userID)
	if err != nil {
		return nil, err
	}
	e, err := s.Detail(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.form(st, e), nil
}

// Create stores a new entry with its tags and custom field values in one
// transaction. When the form carried no targets, the user's default targets
// are used.
func (s *EntryService) Create(ctx context.Context, userID string, in *forms.EntryInput) (*models.Entry, error) {
	st, err := s.settings(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := fields.CheckValues(st.CustomFieldNames, in.Raw); err != nil {
		return nil, err
	}

	e := &models.Entry{UserID: userID, Text: in.Text, Targets: st.DefaultTargets, Tags: in.Tags}
	if in.Targets != nil {
		e.Targets = *in.Targets
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Entries(tx).Create(ctx, e); err != nil {
			return fmt.Errorf("error creating entry: %w", err)
		}
		return s.saveChildren(ctx, tx, e, st.CustomFieldNames, in.Raw)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "entry created", "user_id", userID, "entry_id", e.ID)
	publish(ctx, s.publisher, s.log, events.TopicEntryCreated, changed(e))
	return e, nil
}

// Update rewrites an entry owned by userID. Entries of other users are
// reported as not found. A form without targets keeps the stored targets.
func (s *EntryService) Update(ctx context.Context, userID, id string, in *forms.EntryInput) (*models.Entry, error) {
	st, err := s.settings(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := fields.CheckValues(st.CustomFieldNames, in.Raw); err != nil {
		return nil, err
	}

	e, err := dbx.WithTxResult(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.Entry, error) {
		repo := s.repomanager.Entries(tx)
		cur, err := repo.Get(ctx, userID, id)
		if err != nil {
			return nil, err
		}
		cur.Text = in.Text
		if in.Targets != nil {
			cur.Targets = *in.Targets
		}
		cur.Tags = in.Tags
		if err := repo.Update(ctx, cur); err != nil {
			return nil, err
		}
		return cur, s.saveChildren(ctx, tx, cur, st.CustomFieldNames, in.Raw)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "entry updated", "user_id", userID, "entry_id", e.ID)
	publish(ctx, s.publisher, s.log, events.TopicEntryUpdated, changed(e))
	return e, nil
}

func (s *EntryService) saveChildren(ctx context.Context, tx dbx.DBTX, e *models.Entry, defined models.FieldSchema, raw map[string]string) error {
	if err := s.repomanager.Tags(tx).Replace(ctx, e.ID, e.Tags); err != nil {
		return fmt.Errorf("error saving tags: %w", err)
	}
	rows, err := s.reconciler.Reconcile(ctx, tx, e.ID, defined, raw)
	if err != nil {
		return err
	}
	e.Fields = rows
	return nil
}

// Detail returns an entry with its tags and every stored custom field row,
// including rows of names that are no longer defined.
func (s *EntryService) Detail(ctx context.Context, userID, id string) (*models.Entry, error) {
	e, err := s.repomanager.Entries(s.db).Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	e.Fields, err = s.repomanager.CustomFields(s.db).ListByEntry(ctx, e.ID)
	if err != nil {
		return nil, fmt.Errorf("error loading custom fields: %w", err)
	}

	tags, err := s.repomanager.Tags(s.db).ForEntries(ctx, []string{e.ID})
	if err != nil {
		return nil, fmt.Errorf("error loading tags: %w", err)
	}
	e.Tags = tags[e.ID]
	return e, nil
}

// List returns one page of the user's entries, newest first. A page past the
// end is reported as not found.
func (s *EntryService) List(ctx context.Context, userID string, q ListQuery) (*EntryPage, error) {
	filter := models.EntryFilter{TextContains: q.Text, TagEquals: q.Tag}
	repo := s.repomanager.Entries(s.db)

	total, err := repo.Count(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("error counting entries: %w", err)
	}

	page, err := pagination.Resolve(total, s.pageSize, q.Page)
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidPage) {
			return nil, common.ErrorNotFound
		}
		return nil, err
	}
	filter.Limit, filter.Offset = page.LimitOffset()

	list, err := repo.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing entries: %w", err)
	}

	ids := make([]string, len(list))
	for i, e := range list {
		ids[i] = e.ID
	}
	tags, err := s.repomanager.Tags(s.db).ForEntries(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("error loading tags: %w", err)
	}
	for _, e := range list {
		e.Tags = tags[e.ID]
	}

	all, err := s.repomanager.Tags(s.db).Distinct(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading tags: %w", err)
	}

	return &EntryPage{Entries: list, Page: page, Tags: all}, nil
}

// Count returns how many entries the user has.
func (s *EntryService) Count(ctx context.Context, userID string) (int, error) {
	return s.repomanager.Entries(s.db).Count(ctx, userID, models.EntryFilter{})
}

// Delete removes an entry owned by userID together with its tags and custom
// field rows.
func (s *EntryService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repomanager.Entries(s.db).Delete(ctx, userID, id); err != nil {
		return err
	}
	s.log.Info(ctx, "entry deleted", "user_id", userID, "entry_id", id)
	publish(ctx, s.publisher, s.log, events.TopicEntryDeleted, events.EntryDeleted{EntryID: id, UserID: userID})
	return nil
}

func changed(e *models.Entry) events.EntryChanged {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Name
	}
	return events.EntryChanged{EntryID: e.ID, UserID: e.UserID, Tags: e.Tags, Fields: names}
}
