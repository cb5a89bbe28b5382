package storage

import (
	"context"
	"errors"

	"github.com/explorevent/explorevent/internal/models"
)

var (
	// ErrNotFound — сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — конфликт уникальности (email/username).
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidCursor — битый/чужой page_token.
	ErrInvalidCursor = errors.New("invalid cursor")
	// ErrEventNotFound — указан event_id, но событие не найдено.
	ErrEventNotFound = errors.New("event not found")
	// ErrParentNotFound — указан reply_to_id, но родительский комментарий не найден.
	ErrParentNotFound = errors.New("parent not found")
	// ErrParentMismatch — родительский комментарий принадлежит другому событию.
	ErrParentMismatch = errors.New("parent belongs to another event")
)

// Storage описывает операции над сущностями User/Event/Comment.
//
// Зеркальные пары коллекций (Event.Comments ↔ Comment.EventID,
// User.UserComments ↔ Comment.CreatorID, множества лайков/посещений ↔ обратные
// индексы на User) обновляются внутри ОДНОГО метода стораджа: вызывающая
// сторона не досинхронизирует вторую половину отдельным вызовом.
type Storage interface {
	// --- Users ---

	// CreateUser сохраняет нового пользователя. Email/Username должны быть
	// уникальны; при конфликте — ErrAlreadyExists.
	CreateUser(ctx context.Context, user models.User) (*models.User, error)

	// UserByID возвращает пользователя по id. Если запись не найдена — ErrNotFound.
	UserByID(ctx context.Context, id string) (*models.User, error)

	// UserByEmail возвращает пользователя по email. Если запись не найдена — ErrNotFound.
	UserByEmail(ctx context.Context, email string) (*models.User, error)

	// UserByUsername возвращает пользователя по username. Если запись не найдена — ErrNotFound.
	UserByUsername(ctx context.Context, username string) (*models.User, error)

	// ListUsers возвращает всех пользователей.
	ListUsers(ctx context.Context) ([]models.User, error)

	// UpdateUserDetails обновляет about/fullName/username.
	// При конфликте username — ErrAlreadyExists.
	UpdateUserDetails(ctx context.Context, id, about, fullName, username string) (*models.User, error)

	// UpdateUserEmail обновляет email. При конфликте — ErrAlreadyExists.
	UpdateUserEmail(ctx context.Context, id, email string) error

	// UpdateUserPassword сохраняет новый хэш пароля.
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error

	// DeleteUser физически удаляет запись пользователя.
	// Если запись не найдена — ErrNotFound (повторное удаление — no-op для вызывающего).
	DeleteUser(ctx context.Context, id string) error

	// --- Events ---

	// CreateEvent сохраняет событие и добавляет его id в createdEvents создателя.
	CreateEvent(ctx context.Context, event models.Event) (*models.Event, error)

	// EventByID возвращает событие по id. Если запись не найдена — ErrNotFound.
	EventByID(ctx context.Context, id string) (*models.Event, error)

	// ListEvents возвращает страницу ленты событий (created_at DESC).
	// При некорректном page_token — ErrInvalidCursor.
	ListEvents(ctx context.Context, p models.ListParams) (*models.EventPage, error)

	// SearchEvents ищет события по имени/городу (без учёта регистра).
	SearchEvents(ctx context.Context, query string) ([]models.Event, error)

	// UpdateEvent обновляет редактируемые поля события. CreatorID неизменяем.
	UpdateEvent(ctx context.Context, event models.Event) (*models.Event, error)

	// UpdateEventImage сохраняет ключ картинки события ("" — картинка снята).
	UpdateEventImage(ctx context.Context, id, imgKey string) error

	// DeleteEvent удаляет событие и убирает его id из createdEvents создателя.
	DeleteEvent(ctx context.Context, id string) error

	// TombstoneUserEvents затирает все события пользователя тумбстоун-маркерами:
	// имя/текст заменяются, коллекции вовлечённости очищаются, published=false.
	// Записи и их id сохраняются. Идемпотентно.
	TombstoneUserEvents(ctx context.Context, userID string) error

	// --- Comments ---

	// CreateComment сохраняет комментарий и добавляет его id в eventComments
	// события и userComments автора. Возможные ошибки: ErrEventNotFound,
	// ErrParentNotFound, ErrParentMismatch.
	CreateComment(ctx context.Context, comment models.Comment) (*models.Comment, error)

	// CommentByID возвращает комментарий по id. Если запись не найдена — ErrNotFound.
	CommentByID(ctx context.Context, id string) (*models.Comment, error)

	// CommentsByEvent возвращает все комментарии события (created_at ASC).
	CommentsByEvent(ctx context.Context, eventID string) ([]models.Comment, error)

	// HasReplies сообщает, есть ли у комментария прямые ответы.
	HasReplies(ctx context.Context, commentID string) (bool, error)

	// DeleteComment удаляет комментарий и его ПРЯМЫЕ ответы (каскад в один
	// уровень; ответы на ответы не затрагиваются) и убирает все удалённые id
	// из eventComments события и userComments авторов.
	// Если запись не найдена — ErrNotFound.
	DeleteComment(ctx context.Context, id string) error

	// TombstoneUserComments затирает все комментарии пользователя
	// (text=TombstoneText, published=false) без удаления записей. Идемпотентно.
	TombstoneUserComments(ctx context.Context, userID string) error

	// UpdateCommentText обновляет текст комментария.
	UpdateCommentText(ctx context.Context, id, text string) (*models.Comment, error)

	// --- Engagement toggles ---
	// Каждый Toggle* атомарно добавляет/убирает userID в множестве на целевой
	// записи и зеркально правит обратный индекс на User в том же вызове.
	// Возвращает true, если после вызова userID присутствует в множестве.

	ToggleEventLike(ctx context.Context, eventID, userID string) (bool, error)
	ToggleEventAttend(ctx context.Context, eventID, userID string) (bool, error)
	ToggleCommentLike(ctx context.Context, commentID, userID string) (bool, error)

	// Close закрывает соединения/ресурсы хранилища.
	Close(ctx context.Context) error
}
