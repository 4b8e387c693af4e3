package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wayfarerhq/tours-api/internal/application"
)

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req application.SignupRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "signup", err)
		return
	}

	res, err := h.service.Signup(r.Context(), req, requestOrigin(r)+"/me")
	if err != nil {
		h.writeMappedError(r.Context(), w, "signup", err)
		return
	}

	h.transport.Attach(w, res.Token)
	writeAuth(w, http.StatusCreated, res.Token, res.User)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req application.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "login", err)
		return
	}

	res, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.writeMappedError(r.Context(), w, "login", err)
		return
	}

	h.transport.Attach(w, res.Token)
	writeAuth(w, http.StatusOK, res.Token, res.User)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.transport.Clear(w)
	writeMessage(w, http.StatusOK, "logged out")
}

func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "forgot_password", err)
		return
	}

	if err := h.service.ForgotPassword(r.Context(), req.Email, requestOrigin(r)); err != nil {
		h.writeMappedError(r.Context(), w, "forgot_password", err)
		return
	}
	writeMessage(w, http.StatusOK, "token sent to email")
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req application.ResetPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "reset_password", err)
		return
	}

	res, err := h.service.ResetPassword(r.Context(), chi.URLParam(r, "token"), req)
	if err != nil {
		h.writeMappedError(r.Context(), w, "reset_password", err)
		return
	}

	h.transport.Attach(w, res.Token)
	writeAuth(w, http.StatusOK, res.Token, res.User)
}

func (h *Handler) updatePassword(w http.ResponseWriter, r *http.Request) {
	subject, ok := subjectFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "MISSING_CREDENTIALS", "you are not logged in")
		return
	}

	var req application.UpdatePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "update_password", err)
		return
	}

	res, err := h.service.UpdatePassword(r.Context(), subject.ID, req)
	if err != nil {
		h.writeMappedError(r.Context(), w, "update_password", err)
		return
	}

	h.transport.Attach(w, res.Token)
	writeAuth(w, http.StatusOK, res.Token, res.User)
}
