package httpserver

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/diary/internal/common"
	"github.com/dmitrijs2005/diary/internal/pagination"
	"github.com/dmitrijs2005/diary/internal/server/forms"
	"github.com/dmitrijs2005/diary/internal/server/models"
	"github.com/dmitrijs2005/diary/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type customFieldJSON struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type entryJSON struct {
	ID           string            `json:"id"`
	Text         string            `json:"text"`
	Targets      string            `json:"targets"`
	Tags         []string          `json:"tags"`
	CustomFields []customFieldJSON `json:"custom_fields"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

type entryListJSON struct {
	Entries []entryJSON      `json:"entries"`
	Page    *pagination.Info `json:"page"`
	Tags    []string         `json:"tags"`
	Query   string           `json:"q,omitempty"`
	Tag     string           `json:"tag,omitempty"`
}

func toEntryJSON(e *models.Entry) entryJSON {
	out := entryJSON{
		ID:           e.ID,
		Text:         e.Text,
		Targets:      e.Targets,
		Tags:         e.Tags,
		CustomFields: make([]customFieldJSON, 0, len(e.Fields)),
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	for _, f := range e.Fields {
		out.CustomFields = append(out.CustomFields, customFieldJSON{Name: f.Name, Value: f.Value})
	}
	return out
}

// entryID returns the {id} path segment, or NotFound when it is not a UUID.
func entryID(r *http.Request) (string, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return "", common.ErrorNotFound
	}
	return id.String(), nil
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	n, err := s.entries.Count(r.Context(), mustUserID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := pagination.ParsePage(q.Get("page"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	lq := services.ListQuery{Text: q.Get("q"), Tag: q.Get("tag"), Page: page}
	res, err := s.entries.List(r.Context(), mustUserID(r), lq)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := entryListJSON{
		Entries: make([]entryJSON, 0, len(res.Entries)),
		Page:    res.Page,
		Tags:    res.Tags,
		Query:   lq.Text,
		Tag:     lq.Tag,
	}
	for _, e := range res.Entries {
		out.Entries = append(out.Entries, toEntryJSON(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) newEntryForm(w http.ResponseWriter, r *http.Request) {
	f, err := s.entries.NewForm(r.Context(), mustUserID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) createEntry(w http.ResponseWriter, r *http.Request) {
	v, err := form(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	in, err := forms.ParseEntry(v)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	e, err := s.entries.Create(r.Context(), mustUserID(r), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEntryJSON(e))
}

func (s *Server) entryDetail(w http.ResponseWriter, r *http.Request) {
	id, err := entryID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	e, err := s.entries.Detail(r.Context(), mustUserID(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryJSON(e))
}

func (s *Server) editEntryForm(w http.ResponseWriter, r *http.Request) {
	id, err := entryID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := s.entries.EditForm(r.Context(), mustUserID(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) updateEntry(w http.ResponseWriter, r *http.Request) {
	id, err := entryID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := form(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	in, err := forms.ParseEntry(v)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	e, err := s.entries.Update(r.Context(), mustUserID(r), id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryJSON(e))
}

func (s *Server) deleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := entryID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.entries.Delete(r.Context(), mustUserID(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
