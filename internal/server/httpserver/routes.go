package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong\n"))
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/register/", s.register)
		r.Get("/email-confirm/{token}/", s.confirmEmail)
		r.Post("/login/", s.login)
		r.Post("/logout/", s.logout)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticator)

			r.Get("/profile/", s.profile)
			r.Post("/profile/", s.updateProfile)
			r.Post("/avatar/", s.uploadAvatar)
			r.Post("/avatar/remove/", s.removeAvatar)
			r.Post("/password/change/", s.changePassword)
			r.Post("/delete/", s.deleteAccount)
		})
	})

	r.Route("/diary", func(r chi.Router) {
		r.Use(s.authenticator)

		r.Get("/", s.home)
		r.Get("/list/", s.listEntries)
		r.Get("/entries/create/", s.newEntryForm)
		r.Post("/entries/create/", s.createEntry)
		r.Get("/entries/{id}/", s.entryDetail)
		r.Get("/{id}/update/", s.editEntryForm)
		r.Post("/{id}/update/", s.updateEntry)
		r.Post("/{id}/delete/", s.deleteEntry)
		r.Get("/settings/", s.getSettings)
		r.Post("/settings/", s.updateSettings)
		r.Get("/update-custom-fields/", s.customFieldNames)
		r.Post("/update-custom-fields/", s.updateCustomFields)
	})

	return r
}
