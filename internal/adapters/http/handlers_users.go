package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wayfarerhq/tours-api/internal/application"
)

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	subject, ok := subjectFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "MISSING_CREDENTIALS", "you are not logged in")
		return
	}
	writeData(w, http.StatusOK, map[string]any{"user": toUserView(subject)})
}

func (h *Handler) updateMe(w http.ResponseWriter, r *http.Request) {
	subject, ok := subjectFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "MISSING_CREDENTIALS", "you are not logged in")
		return
	}

	// Decode loosely first so an attempted password change gets the
	// specific redirect message instead of a generic unknown-field error.
	var raw map[string]json.RawMessage
	if err := decodeBody(r, &raw); err != nil {
		writeValidationError(r.Context(), w, "update_me", err)
		return
	}
	_, hasPassword := raw["password"]
	_, hasConfirm := raw["passwordConfirm"]
	if hasPassword || hasConfirm {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR",
			"this route is not for password updates, use /updateMyPassword")
		return
	}

	var req application.UpdateMeRequest
	if name, found := raw["name"]; found {
		var v string
		if err := json.Unmarshal(name, &v); err != nil {
			writeValidationError(r.Context(), w, "update_me", err)
			return
		}
		req.Name = &v
	}
	if email, found := raw["email"]; found {
		var v string
		if err := json.Unmarshal(email, &v); err != nil {
			writeValidationError(r.Context(), w, "update_me", err)
			return
		}
		req.Email = &v
	}

	user, err := h.service.UpdateMe(r.Context(), subject.ID, req)
	if err != nil {
		h.writeMappedError(r.Context(), w, "update_me", err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"user": toUserView(user)})
}

func (h *Handler) deleteMe(w http.ResponseWriter, r *http.Request) {
	subject, ok := subjectFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "MISSING_CREDENTIALS", "you are not logged in")
		return
	}
	if err := h.service.DeleteMe(r.Context(), subject.ID); err != nil {
		h.writeMappedError(r.Context(), w, "delete_me", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deactivateUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid user id")
		return
	}
	if err := h.service.DeactivateUser(r.Context(), id); err != nil {
		h.writeMappedError(r.Context(), w, "deactivate_user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
