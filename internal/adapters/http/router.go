package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wayfarerhq/tours-api/internal/domain"
)

// NewRouter registers the auth and account routes plus the shared middleware
// stack. Centralizing routes here keeps auth and error behavior consistent
// across endpoints.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(h.recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusOK, "ok")
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusOK, "ready")
	})

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Post("/signup", h.signup)
		r.Post("/login", h.login)
		r.Get("/logout", h.logout)
		r.Post("/forgotPassword", h.forgotPassword)
		r.Patch("/resetPassword/{token}", h.resetPassword)

		r.Group(func(r chi.Router) {
			r.Use(h.Protect)
			r.Patch("/updateMyPassword", h.updatePassword)
			r.Get("/me", h.me)
			r.Patch("/updateMe", h.updateMe)
			r.Delete("/deleteMe", h.deleteMe)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireRoles([]string{domain.RoleAdmin}))
				r.Delete("/{id}", h.deactivateUser)
			})
		})
	})

	return r
}
