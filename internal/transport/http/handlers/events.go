package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/explorevent/explorevent/internal/models"
	"github.com/explorevent/explorevent/internal/service"
	"github.com/explorevent/explorevent/internal/transport/http/apierrors"
	"github.com/explorevent/explorevent/internal/transport/http/middleware"
)

type eventRequest struct {
	Name      string `json:"name"`
	Text      string `json:"text"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Online    bool   `json:"online"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func (in eventRequest) toInput() service.EventInput {
	return service.EventInput{
		Name:      in.Name,
		Text:      in.Text,
		Address:   in.Address,
		City:      in.City,
		State:     in.State,
		Zip:       in.Zip,
		Online:    in.Online,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
	}
}

// CreateEvent — POST /events.
func (h *Handlers) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var in eventRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	event, err := h.svc.CreateEvent(r.Context(), middleware.UserID(r.Context()), in.toInput())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, eventFromModel(event))
}

// EventByID — GET /events/{id}.
func (h *Handlers) EventByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	event, err := h.svc.EventByID(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, eventFromModel(event))
}

type eventPageResponse struct {
	Items         []eventView `json:"items"`
	NextPageToken string      `json:"next_page_token,omitempty"`
}

// ListEvents — GET /events?page_size=&page_token=.
func (h *Handlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	var p models.ListParams

	if v := r.URL.Query().Get("page_size"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n < 0 {
			apierrors.WriteError(w, r, service.ErrInvalidArgument)
			return
		}

		p.PageSize = int32(n)
	}

	p.PageToken = r.URL.Query().Get("page_token")

	page, err := h.svc.ListEvents(r.Context(), p)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, eventPageResponse{
		Items:         eventsFromModels(page.Items),
		NextPageToken: page.NextPageToken,
	})
}

// SearchEvents — GET /events/search?q=.
func (h *Handlers) SearchEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	events, err := h.svc.SearchEvents(r.Context(), query)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, eventsFromModels(events))
}

// UpdateEvent — PATCH /events/{id}.
func (h *Handlers) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	var in eventRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	event, err := h.svc.UpdateEvent(r.Context(), middleware.UserID(r.Context()), id, in.toInput())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, eventFromModel(event))
}

// DeleteEvent — DELETE /events/{id}.
func (h *Handlers) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	if err := h.svc.DeleteEvent(r.Context(), middleware.UserID(r.Context()), id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type presignRequest struct {
	ContentType   string `json:"content_type"`
	ContentLength int64  `json:"content_length"`
}

type presignResponse struct {
	UploadURL      string            `json:"upload_url"`
	ImageKey       string            `json:"image_key"`
	ExpiresSeconds int64             `json:"expires_seconds"`
	RequiredHeader map[string]string `json:"required_header"`
}

// EventImagePresign — POST /events/{id}/image/presign.
func (h *Handlers) EventImagePresign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	var in presignRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	info, err := h.svc.EventImageUploadURL(r.Context(), middleware.UserID(r.Context()), id, in.ContentType, in.ContentLength)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, presignResponse{
		UploadURL:      info.UploadURL,
		ImageKey:       info.ImageKey,
		ExpiresSeconds: int64(info.Expires / time.Second),
		RequiredHeader: info.RequiredHeader,
	})
}

type confirmImageRequest struct {
	ImageKey string `json:"image_key"`
}

type confirmImageResponse struct {
	ImageKey  string `json:"image_key"`
	PublicURL string `json:"public_url,omitempty"`
}

// EventImageConfirm — POST /events/{id}/image/confirm.
func (h *Handlers) EventImageConfirm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	var in confirmImageRequest
	if err := decodeStrict(r, &in); err != nil || in.ImageKey == "" {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	publicURL, err := h.svc.ConfirmEventImage(r.Context(), middleware.UserID(r.Context()), id, in.ImageKey)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, confirmImageResponse{
		ImageKey:  in.ImageKey,
		PublicURL: publicURL,
	})
}

// EventImageRemove — DELETE /events/{id}/image.
func (h *Handlers) EventImageRemove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	if err := h.svc.RemoveEventImage(r.Context(), middleware.UserID(r.Context()), id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type toggleResponse struct {
	Active bool `json:"active"`
}

// ToggleEventLike — POST /events/{id}/like.
func (h *Handlers) ToggleEventLike(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	active, err := h.svc.ToggleEventLike(r.Context(), middleware.UserID(r.Context()), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toggleResponse{Active: active})
}

// ToggleEventAttend — POST /events/{id}/attend.
func (h *Handlers) ToggleEventAttend(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	active, err := h.svc.ToggleEventAttend(r.Context(), middleware.UserID(r.Context()), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toggleResponse{Active: active})
}
