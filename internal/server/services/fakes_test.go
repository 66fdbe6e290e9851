package services

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/diary/internal/common"
	"github.com/dmitrijs2005/diary/internal/dbx"
	"github.com/dmitrijs2005/diary/internal/server/models"
	"github.com/dmitrijs2005/diary/internal/server/repositories/confirmations"
	"github.com/dmitrijs2005/diary/internal/server/repositories/customfields"
	"github.com/dmitrijs2005/diary/internal/server/repositories/entries"
	"github.com/dmitrijs2005/diary/internal/server/repositories/settings"
	"github.com/dmitrijs2005/diary/internal/server/repositories/tags"
	"github.com/dmitrijs2005/diary/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// expectCommits queues n successful transactions.
func expectCommits(mock sqlmock.Sqlmock, n int) {
	for range n {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// memStore is an in-memory stand-in for the whole schema. fail makes the
// named repository method return the given error.
type memStore struct {
	mu            sync.Mutex
	seq           int
	clock         time.Time
	users         map[string]*models.User
	confirmations map[string]models.Confirmation
	entries       map[string]models.Entry
	tags          map[string][]string
	fields        map[string][]models.CustomField
	settings      map[string]models.Settings
	fail          map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		clock:         time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		users:         map[string]*models.User{},
		confirmations: map[string]models.Confirmation{},
		entries:       map[string]models.Entry{},
		tags:          map[string][]string{},
		fields:        map[string][]models.CustomField{},
		settings:      map[string]models.Settings{},
		fail:          map[string]error{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s%d", prefix, m.seq)
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

func (m *memStore) err(name string) error {
	return m.fail[name]
}

func (m *memStore) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *memStore) Users(dbx.DBTX) users.Repository                 { return memUsers{m} }
func (m *memStore) Confirmations(dbx.DBTX) confirmations.Repository { return memConfirmations{m} }
func (m *memStore) Entries(dbx.DBTX) entries.Repository             { return memEntries{m} }
func (m *memStore) Tags(dbx.DBTX) tags.Repository                   { return memTags{m} }
func (m *memStore) CustomFields(dbx.DBTX) customfields.Repository   { return memFields{m} }
func (m *memStore) Settings(dbx.DBTX) settings.Repository           { return memSettings{m} }

// --- users ---

type memUsers struct{ m *memStore }

func (r memUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.err("users.Create"); err != nil {
		return nil, err
	}
	for _, x := range r.m.users {
		if x.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	u.ID = r.m.nextID("u")
	u.CreatedAt = r.m.tick()
	cp := *u
	r.m.users[u.ID] = &cp
	return u, nil
}

func (r memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.err("users.GetByID"); err != nil {
		return nil, err
	}
	u, ok := r.m.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r memUsers) update(id string, fn func(u *models.User)) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	fn(u)
	return nil
}

func (r memUsers) Activate(ctx context.Context, id string) error {
	return r.update(id, func(u *models.User) { u.IsActive = true })
}

func (r memUsers) UpdateProfile(ctx context.Context, id, displayName, phone string) error {
	return r.update(id, func(u *models.User) { u.DisplayName, u.Phone = displayName, phone })
}

func (r memUsers) SetAvatar(ctx context.Context, id, key string) error {
	if err := r.m.err("users.SetAvatar"); err != nil {
		return err
	}
	return r.update(id, func(u *models.User) { u.AvatarKey = key })
}

func (r memUsers) SetPassword(ctx context.Context, id, hash string) error {
	return r.update(id, func(u *models.User) { u.PasswordHash = hash })
}

func (r memUsers) Delete(ctx context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.m.users, id)
	delete(r.m.settings, id)
	for eid, e := range r.m.entries {
		if e.UserID == id {
			delete(r.m.entries, eid)
			delete(r.m.tags, eid)
			delete(r.m.fields, eid)
		}
	}
	return nil
}

// --- confirmations ---

type memConfirmations struct{ m *memStore }

func (r memConfirmations) Create(ctx context.Context, userID, token string, validity time.Duration) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.err("confirmations.Create"); err != nil {
		return err
	}
	r.m.confirmations[token] = models.Confirmation{Token: token, UserID: userID, ExpiresAt: time.Now().Add(validity)}
	return nil
}

func (r memConfirmations) Find(ctx context.Context, token string) (*models.Confirmation, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.confirmations[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &c, nil
}

func (r memConfirmations) Delete(ctx context.Context, token string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.confirmations, token)
	return nil
}

// --- entries ---

type memEntries struct{ m *memStore }

func (r memEntries) Create(ctx context.Context, e *models.Entry) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.err("entries.Create"); err != nil {
		return err
	}
	e.ID = r.m.nextID("e")
	e.CreatedAt = r.m.tick()
	e.UpdatedAt = e.CreatedAt
	r.m.entries[e.ID] = models.Entry{ID: e.ID, UserID: e.UserID, Text: e.Text, Targets: e.Targets, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt}
	return nil
}

func (r memEntries) Update(ctx context.Context, e *models.Entry) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cur, ok := r.m.entries[e.ID]
	if !ok || cur.UserID != e.UserID {
		return common.ErrorNotFound
	}
	cur.Text, cur.Targets, cur.UpdatedAt = e.Text, e.Targets, r.m.tick()
	r.m.entries[e.ID] = cur
	e.CreatedAt, e.UpdatedAt = cur.CreatedAt, cur.UpdatedAt
	return nil
}

func (r memEntries) Get(ctx context.Context, userID, id string) (*models.Entry, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	e, ok := r.m.entries[id]
	if !ok || e.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return &e, nil
}

func (r memEntries) match(userID string, e models.Entry, f models.EntryFilter) bool {
	if e.UserID != userID {
		return false
	}
	if f.TextContains != "" && !strings.Contains(strings.ToLower(e.Text), strings.ToLower(f.TextContains)) {
		return false
	}
	if f.TagEquals != "" && !slices.Contains(r.m.tags[e.ID], f.TagEquals) {
		return false
	}
	return true
}

func (r memEntries) List(ctx context.Context, userID string, f models.EntryFilter) ([]*models.Entry, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.err("entries.List"); err != nil {
		return nil, err
	}
	var out []*models.Entry
	for _, e := range r.m.entries {
		if r.match(userID, e, f) {
			cp := e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Offset > len(out) {
		return nil, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r memEntries) Count(ctx context.Context, userID string, f models.EntryFilter) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	n := 0
	for _, e := range r.m.entries {
		if r.match(userID, e, f) {
			n++
		}
	}
	return n, nil
}

func (r memEntries) Delete(ctx context.Context, userID, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	e, ok := r.m.entries[id]
	if !ok || e.UserID != userID {
		return common.ErrorNotFound
	}
	delete(r.m.entries, id)
	delete(r.m.tags, id)
	delete(r.m.fields, id)
	return nil
}

// --- tags ---

type memTags struct{ m *memStore }

func (r memTags) Replace(ctx context.Context, entryID string, tags []string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if len(tags) == 0 {
		delete(r.m.tags, entryID)
		return nil
	}
	r.m.tags[entryID] = slices.Sorted(slices.Values(tags))
	return nil
}

func (r memTags) ForEntries(ctx context.Context, ids []string) (map[string][]string, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := map[string][]string{}
	for _, id := range ids {
		if t, ok := r.m.tags[id]; ok {
			out[id] = slices.Clone(t)
		}
	}
	return out, nil
}

func (r memTags) Distinct(ctx context.Context, userID string) ([]string, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for id, t := range r.m.tags {
		if r.m.entries[id].UserID != userID {
			continue
		}
		for _, tag := range t {
			if !seen[tag] {
				seen[tag] = true
				out = append(out, tag)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// --- custom fields ---

type memFields struct{ m *memStore }

func (r memFields) DeleteAll(ctx context.Context, entryID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.err("customfields.DeleteAll"); err != nil {
		return err
	}
	delete(r.m.fields, entryID)
	return nil
}

func (r memFields) InsertMany(ctx context.Context, rows []models.CustomField) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.err("customfields.InsertMany"); err != nil {
		return err
	}
	for _, f := range rows {
		for _, x := range r.m.fields[f.EntryID] {
			if x.Name == f.Name {
				return fmt.Errorf("duplicate custom field %q", f.Name)
			}
		}
		r.m.fields[f.EntryID] = append(r.m.fields[f.EntryID], f)
	}
	return nil
}

func (r memFields) ListByEntry(ctx context.Context, entryID string) ([]models.CustomField, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return slices.Clone(r.m.fields[entryID]), nil
}

// --- settings ---

type memSettings struct{ m *memStore }

func (r memSettings) Get(ctx context.Context, userID string) (*models.Settings, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.settings[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	s.CustomFieldNames = slices.Clone(s.CustomFieldNames)
	if s.CustomFieldNames == nil {
		s.CustomFieldNames = models.FieldSchema{}
	}
	return &s, nil
}

func (r memSettings) Ensure(ctx context.Context, userID string) (*models.Settings, error) {
	r.m.mu.Lock()
	if err := r.m.err("settings.Ensure"); err != nil {
		r.m.mu.Unlock()
		return nil, err
	}
	if _, ok := r.m.settings[userID]; !ok {
		r.m.settings[userID] = *models.DefaultSettings(userID)
	}
	r.m.mu.Unlock()
	return r.Get(ctx, userID)
}

func (r memSettings) Update(ctx context.Context, s *models.Settings) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.err("settings.Update"); err != nil {
		return err
	}
	if _, ok := r.m.settings[s.UserID]; !ok {
		return common.ErrorNotFound
	}
	cp := *s
	cp.CustomFieldNames = slices.Clone(s.CustomFieldNames)
	r.m.settings[s.UserID] = cp
	return nil
}
