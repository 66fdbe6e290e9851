package httpserver

import (
	"net/http"

	"github.com/dmitrijs2005/diary/internal/server/forms"
)

type customFieldNamesJSON struct {
	Names []string `json:"custom_field_names"`
}

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	v, err := s.settings.Get(r.Context(), mustUserID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) updateSettings(w http.ResponseWriter, r *http.Request) {
	v, err := form(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	in, err := forms.ParseSettings(v)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	view, err := s.settings.Update(r.Context(), mustUserID(r), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) customFieldNames(w http.ResponseWriter, r *http.Request) {
	names, err := s.settings.CustomFieldNames(r.Context(), mustUserID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customFieldNamesJSON{Names: names})
}

func (s *Server) updateCustomFields(w http.ResponseWriter, r *http.Request) {
	v, err := form(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	view, err := s.settings.UpdateCustomFields(r.Context(), mustUserID(r), forms.NameList(v))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customFieldNamesJSON{Names: view.Names})
}
