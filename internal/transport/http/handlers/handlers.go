package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/explorevent/explorevent/internal/models"
	"github.com/explorevent/explorevent/internal/service"
)

// Handlers агрегирует зависимости (сервис бизнес-логики).
type Handlers struct {
	svc *service.Service
}

func New(svc *service.Service) *Handlers {
	return &Handlers{svc: svc}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// userView — представление пользователя наружу. Хэш пароля не отдаётся.
type userView struct {
	ID              string    `json:"id"`
	Email           string    `json:"email,omitempty"`
	Username        string    `json:"username"`
	FullName        string    `json:"full_name,omitempty"`
	About           string    `json:"about,omitempty"`
	AttendingEvents []string  `json:"attending_events,omitempty"`
	LikedEvents     []string  `json:"liked_events,omitempty"`
	LikedComments   []string  `json:"liked_comments,omitempty"`
	CreatedEvents   []string  `json:"created_events,omitempty"`
	UserComments    []string  `json:"user_comments,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func userFromModel(u *models.User) userView {
	return userView{
		ID:              u.ID,
		Email:           u.Email,
		Username:        u.Username,
		FullName:        u.FullName,
		About:           u.About,
		AttendingEvents: u.AttendingEvents,
		LikedEvents:     u.LikedEvents,
		LikedComments:   u.LikedComments,
		CreatedEvents:   u.CreatedEvents,
		UserComments:    u.UserComments,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// profileView — публичный профиль: без email и обратных индексов
// вовлечённости, только то, что видно любому пользователю.
type profileView struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	FullName      string    `json:"full_name,omitempty"`
	About         string    `json:"about,omitempty"`
	CreatedEvents []string  `json:"created_events,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func profileFromModel(u *models.User) profileView {
	return profileView{
		ID:            u.ID,
		Username:      u.Username,
		FullName:      u.FullName,
		About:         u.About,
		CreatedEvents: u.CreatedEvents,
		CreatedAt:     u.CreatedAt,
	}
}

// eventView — представление события наружу.
type eventView struct {
	ID        string    `json:"id"`
	CreatorID string    `json:"creator_id"`
	Name      string    `json:"name"`
	Text      string    `json:"text,omitempty"`
	Address   string    `json:"address,omitempty"`
	City      string    `json:"city,omitempty"`
	State     string    `json:"state,omitempty"`
	Zip       string    `json:"zip,omitempty"`
	Online    bool      `json:"online"`
	StartDate string    `json:"start_date,omitempty"`
	EndDate   string    `json:"end_date,omitempty"`
	StartTime string    `json:"start_time,omitempty"`
	EndTime   string    `json:"end_time,omitempty"`
	Img       string    `json:"img,omitempty"`
	Likes     []string  `json:"likes"`
	Attending []string  `json:"attending"`
	Comments  []string  `json:"comments"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func eventFromModel(e *models.Event) eventView {
	return eventView{
		ID:        e.ID,
		CreatorID: e.CreatorID,
		Name:      e.Name,
		Text:      e.Text,
		Address:   e.Address,
		City:      e.City,
		State:     e.State,
		Zip:       e.Zip,
		Online:    e.Online,
		StartDate: e.StartDate,
		EndDate:   e.EndDate,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
		Img:       e.Img,
		Likes:     e.Likes,
		Attending: e.Attending,
		Comments:  e.Comments,
		Published: e.Published,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func eventsFromModels(list []models.Event) []eventView {
	out := make([]eventView, 0, len(list))
	for i := range list {
		out = append(out, eventFromModel(&list[i]))
	}

	return out
}

// commentView — представление комментария наружу.
type commentView struct {
	ID        string    `json:"id"`
	CreatorID string    `json:"creator_id"`
	EventID   string    `json:"event_id"`
	ReplyToID string    `json:"reply_to_id,omitempty"`
	Text      string    `json:"text"`
	Likes     []string  `json:"likes"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func commentFromModel(c *models.Comment) commentView {
	return commentView{
		ID:        c.ID,
		CreatorID: c.CreatorID,
		EventID:   c.EventID,
		ReplyToID: c.ReplyToID,
		Text:      c.Text,
		Likes:     c.Likes,
		Published: c.Published,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func commentsFromModels(list []models.Comment) []commentView {
	out := make([]commentView, 0, len(list))
	for i := range list {
		out = append(out, commentFromModel(&list[i]))
	}

	return out
}

// commentNodeView — узел дерева ответов.
type commentNodeView struct {
	commentView
	Replies []commentNodeView `json:"replies"`
}

func commentTreeFromModels(nodes []*models.CommentNode) []commentNodeView {
	out := make([]commentNodeView, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, commentNodeView{
			commentView: commentFromModel(&n.Comment),
			Replies:     commentTreeFromModels(n.Replies),
		})
	}

	return out
}
