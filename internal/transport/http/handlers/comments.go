package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/explorevent/explorevent/internal/service"
	"github.com/explorevent/explorevent/internal/transport/http/apierrors"
	"github.com/explorevent/explorevent/internal/transport/http/middleware"
)

type createCommentRequest struct {
	EventID   string `json:"event_id"`
	ReplyToID string `json:"reply_to_id"`
	Text      string `json:"text"`
}

// CreateComment — POST /comments.
func (h *Handlers) CreateComment(w http.ResponseWriter, r *http.Request) {
	var in createCommentRequest
	if err := decodeStrict(r, &in); err != nil || in.EventID == "" {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	comment, err := h.svc.PostComment(r.Context(), middleware.UserID(r.Context()), in.EventID, in.ReplyToID, in.Text)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, commentFromModel(comment))
}

// CommentByID — GET /comments/{id}.
func (h *Handlers) CommentByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	comment, err := h.svc.CommentByID(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, commentFromModel(comment))
}

// EventComments — GET /events/{id}/comments.
// По умолчанию плоский список в порядке создания; ?tree=1 — дерево ответов.
func (h *Handlers) EventComments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	if r.URL.Query().Get("tree") == "1" {
		nodes, err := h.svc.EventCommentTree(r.Context(), id)
		if err != nil {
			apierrors.WriteError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, commentTreeFromModels(nodes))
		return
	}

	flat, err := h.svc.EventComments(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, commentsFromModels(flat))
}

type editCommentRequest struct {
	Text string `json:"text"`
}

// EditComment — PATCH /comments/{id}.
func (h *Handlers) EditComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	var in editCommentRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	comment, err := h.svc.EditComment(r.Context(), middleware.UserID(r.Context()), id, in.Text)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, commentFromModel(comment))
}

// DeleteComment — DELETE /comments/{id}.
func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	if err := h.svc.DeleteComment(r.Context(), middleware.UserID(r.Context()), id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ToggleCommentLike — POST /comments/{id}/like.
func (h *Handlers) ToggleCommentLike(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	active, err := h.svc.ToggleCommentLike(r.Context(), middleware.UserID(r.Context()), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toggleResponse{Active: active})
}
