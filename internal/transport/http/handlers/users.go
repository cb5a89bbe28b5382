package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/explorevent/explorevent/internal/service"
	"github.com/explorevent/explorevent/internal/transport/http/apierrors"
	"github.com/explorevent/explorevent/internal/transport/http/middleware"
)

// ListUsers — GET /users.
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out := make([]profileView, 0, len(users))
	for i := range users {
		out = append(out, profileFromModel(&users[i]))
	}

	writeJSON(w, http.StatusOK, out)
}

// UserByID — GET /users/{id}. Полное представление доступно только
// владельцу; чужой профиль отдаётся в публичном виде.
func (h *Handlers) UserByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	user, err := h.svc.UserByID(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if middleware.UserID(r.Context()) == id {
		writeJSON(w, http.StatusOK, userFromModel(user))
		return
	}

	writeJSON(w, http.StatusOK, profileFromModel(user))
}

// UserProfile — GET /users/{id}/profile. Всегда публичный вид.
func (h *Handlers) UserProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	user, err := h.svc.UserByID(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profileFromModel(user))
}

type updateProfileRequest struct {
	About    string `json:"about"`
	FullName string `json:"full_name"`
	Username string `json:"username"`
}

// UpdateProfile — PATCH /users/{id}.
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	var in updateProfileRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	user, err := h.svc.UpdateProfile(r.Context(), middleware.UserID(r.Context()), id, in.About, in.FullName, in.Username)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, userFromModel(user))
}

type updateEmailRequest struct {
	Email string `json:"email"`
}

// UpdateEmail — PATCH /users/{id}/email.
func (h *Handlers) UpdateEmail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	var in updateEmailRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	if err := h.svc.UpdateEmail(r.Context(), middleware.UserID(r.Context()), id, in.Email); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangePassword — PATCH /users/{id}/password.
// Менять можно только свой пароль, и только зная текущий.
func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	if middleware.UserID(r.Context()) != id {
		apierrors.WriteError(w, r, service.ErrPermissionDenied)
		return
	}

	var in changePasswordRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	if err := h.svc.ChangePassword(r.Context(), id, in.OldPassword, in.NewPassword); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteAccount — DELETE /users/{id}.
func (h *Handlers) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	if err := h.svc.DeleteAccount(r.Context(), middleware.UserID(r.Context()), id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
