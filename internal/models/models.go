// Package models содержит доменные сущности explorevent-бэкенда.
//
// Все связи между сущностями — по идентификаторам (hex ObjectID MongoDB,
// наружу/вовнутрь конвертируются в string). Зеркальные коллекции идентификаторов
// (например, Event.Comments и Comment.EventID) ведутся с двух сторон и обязаны
// обновляться в рамках одной логической операции стораджа.
package models

import "time"

// User — учётная запись пользователя.
// Важно:
//   - Email и Username глобально уникальны (уникальные индексы в хранилище).
//   - PasswordHash — bcrypt-хэш, наружу никогда не отдаётся.
//   - Коллекции идентификаторов — обратные индексы вовлечённости: они зеркалят
//     соответствующие множества на Event/Comment.
//   - Удаление аккаунта физически удаляет запись User; зависимые Event/Comment
//     при этом не удаляются, а тумбстоунятся.
type User struct {
	ID              string    `bson:"_id,omitempty"`
	About           string    `bson:"about"`
	Admin           bool      `bson:"admin"`
	Banned          bool      `bson:"banned"`
	Email           string    `bson:"email"`
	Username        string    `bson:"username"`
	PasswordHash    string    `bson:"password"`
	FullName        string    `bson:"full_name"`
	AttendingEvents []string  `bson:"attending_events"`
	AttendedEvents  []string  `bson:"attended_events"`
	LikedEvents     []string  `bson:"liked_events"`
	LikedComments   []string  `bson:"liked_comments"`
	CreatedEvents   []string  `bson:"created_events"`
	UserComments    []string  `bson:"user_comments"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

// Event — событие.
// Важно:
//   - CreatorID неизменяем после создания.
//   - Img — непрозрачный ключ объекта во внешнем файловом хранилище ("" — нет картинки).
//   - Likes/Attending — множества идентификаторов пользователей; Comments — упорядоченный
//     список идентификаторов комментариев.
//   - При удалении аккаунта создателя запись НЕ удаляется: имя/текст затираются
//     тумбстоун-маркерами, коллекции вовлечённости очищаются, id сохраняется,
//     чтобы внешние ссылки и Comment.EventID оставались разрешимыми.
type Event struct {
	ID        string    `bson:"_id,omitempty"`
	Address   string    `bson:"event_address"`
	City      string    `bson:"event_city"`
	State     string    `bson:"event_state"`
	Zip       string    `bson:"event_zip"`
	Online    bool      `bson:"online"`
	StartDate string    `bson:"event_start_date"`
	EndDate   string    `bson:"event_end_date"`
	StartTime string    `bson:"event_start_time"`
	EndTime   string    `bson:"event_end_time"`
	CreatorID string    `bson:"creator_id"`
	Name      string    `bson:"event_name"`
	Text      string    `bson:"text"`
	Img       string    `bson:"event_img"`
	Likes     []string  `bson:"event_likes"`
	Attending []string  `bson:"users_attending"`
	Comments  []string  `bson:"event_comments"`
	Published bool      `bson:"published"`
	Exclusive bool      `bson:"exclusive"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Comment — комментарий к событию.
// Важно:
//   - ReplyToID — id родительского комментария того же события; "" для корневого.
//   - Likes — множество идентификаторов пользователей.
//   - При удалении аккаунта автора комментарий тумбстоунится (text заменяется,
//     published=false), а не удаляется — чтобы ответы других пользователей
//     оставались разрешимыми.
type Comment struct {
	ID        string    `bson:"_id,omitempty"`
	CreatorID string    `bson:"creator_id"`
	EventID   string    `bson:"event_id"`
	ReplyToID string    `bson:"reply_to_id"`
	Text      string    `bson:"text"`
	Likes     []string  `bson:"comment_likes"`
	Published bool      `bson:"published"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Тумбстоун-маркеры затёртых записей.
const (
	TombstoneEventName = "[Event has been deleted]"
	TombstoneText      = "[deleted]"
)

// ListParams — базовые параметры постраничной выдачи.
type ListParams struct {
	PageSize  int32
	PageToken string
}

// EventPage — результат постраничной выдачи ленты событий.
type EventPage struct {
	Items         []Event
	NextPageToken string
}

// CommentNode — узел дерева ответов: комментарий плюс его прямые ответы.
// Дерево — чисто вычисляемая структура для выдачи, в хранилище не персистится.
type CommentNode struct {
	Comment
	Replies []*CommentNode
}
