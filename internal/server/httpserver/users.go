package httpserver

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/diary/internal/common"
	"github.com/dmitrijs2005/diary/internal/server/forms"
	"github.com/dmitrijs2005/diary/internal/server/services"
	"github.com/go-chi/chi/v5"
)

type registerResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	v, err := form(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	in, err := forms.ParseRegister(v)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	u, err := s.users.Register(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, registerResponse{ID: u.ID, Email: u.Email})
}

func (s *Server) confirmEmail(w http.ResponseWriter, r *http.Request) {
	if err := s.users.ConfirmEmail(r.Context(), chi.URLParam(r, "token")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "confirmed"})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	v, err := form(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	token, err := s.users.Login(r.Context(), v.String("email"), v.String("password"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.sessionValidity.Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	p, err := s.users.Profile(r.Context(), mustUserID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	v, err := form(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	in, err := forms.ParseProfile(v)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := s.users.UpdateProfile(r.Context(), mustUserID(r), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) uploadAvatar(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, services.MaxAvatarSize+maxFormSize)

	file, header, err := r.FormFile("avatar")
	if err != nil {
		verr := common.NewValidationError()
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			verr.Add("avatar", "the image must be at most 5 MB")
		} else {
			verr.Add("avatar", "no file was submitted")
		}
		s.writeError(w, r, verr)
		return
	}
	defer file.Close()

	p, err := s.users.UploadAvatar(r.Context(), mustUserID(r), header.Header.Get("Content-Type"), file)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) removeAvatar(w http.ResponseWriter, r *http.Request) {
	if err := s.users.RemoveAvatar(r.Context(), mustUserID(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	v, err := form(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	in, err := forms.ParsePasswordChange(v)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.users.ChangePassword(r.Context(), mustUserID(r), in); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	v, err := form(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.users.DeleteAccount(r.Context(), mustUserID(r), v.String("password")); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logout(w, r)
}
