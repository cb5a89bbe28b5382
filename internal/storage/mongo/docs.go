package mongo

import (
	"time"

	"github.com/explorevent/explorevent/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Документные типы коллекций. Идентификаторы хранятся как ObjectID;
// в доменные модели конвертируются hex-строками.

type userDoc struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty"`
	About           string               `bson:"about"`
	Admin           bool                 `bson:"admin"`
	Banned          bool                 `bson:"banned"`
	Email           string               `bson:"email"`
	Username        string               `bson:"username"`
	PasswordHash    string               `bson:"password"`
	FullName        string               `bson:"full_name"`
	AttendingEvents []primitive.ObjectID `bson:"attending_events"`
	AttendedEvents  []primitive.ObjectID `bson:"attended_events"`
	LikedEvents     []primitive.ObjectID `bson:"liked_events"`
	LikedComments   []primitive.ObjectID `bson:"liked_comments"`
	CreatedEvents   []primitive.ObjectID `bson:"created_events"`
	UserComments    []primitive.ObjectID `bson:"user_comments"`
	CreatedAt       time.Time            `bson:"created_at"`
	UpdatedAt       time.Time            `bson:"updated_at"`
}

type eventDoc struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty"`
	Address   string               `bson:"event_address"`
	City      string               `bson:"event_city"`
	State     string               `bson:"event_state"`
	Zip       string               `bson:"event_zip"`
	Online    bool                 `bson:"online"`
	StartDate string               `bson:"event_start_date"`
	EndDate   string               `bson:"event_end_date"`
	StartTime string               `bson:"event_start_time"`
	EndTime   string               `bson:"event_end_time"`
	CreatorID primitive.ObjectID   `bson:"creator_id"`
	Name      string               `bson:"event_name"`
	Text      string               `bson:"text"`
	Img       string               `bson:"event_img"`
	Likes     []primitive.ObjectID `bson:"event_likes"`
	Attending []primitive.ObjectID `bson:"users_attending"`
	Comments  []primitive.ObjectID `bson:"event_comments"`
	Published bool                 `bson:"published"`
	Exclusive bool                 `bson:"exclusive"`
	CreatedAt time.Time            `bson:"created_at"`
	UpdatedAt time.Time            `bson:"updated_at"`
}

type commentDoc struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty"`
	CreatorID primitive.ObjectID   `bson:"creator_id"`
	EventID   primitive.ObjectID   `bson:"event_id"`
	// ReplyToID — указатель на родителя; nil для корневого комментария.
	ReplyToID *primitive.ObjectID  `bson:"reply_to_id"`
	Text      string               `bson:"text"`
	Likes     []primitive.ObjectID `bson:"comment_likes"`
	Published bool                 `bson:"published"`
	CreatedAt time.Time            `bson:"created_at"`
	UpdatedAt time.Time            `bson:"updated_at"`
}

func (d userDoc) toModel() models.User {
	return models.User{
		ID:              d.ID.Hex(),
		About:           d.About,
		Admin:           d.Admin,
		Banned:          d.Banned,
		Email:           d.Email,
		Username:        d.Username,
		PasswordHash:    d.PasswordHash,
		FullName:        d.FullName,
		AttendingEvents: oidsToHex(d.AttendingEvents),
		AttendedEvents:  oidsToHex(d.AttendedEvents),
		LikedEvents:     oidsToHex(d.LikedEvents),
		LikedComments:   oidsToHex(d.LikedComments),
		CreatedEvents:   oidsToHex(d.CreatedEvents),
		UserComments:    oidsToHex(d.UserComments),
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
	}
}

func (d eventDoc) toModel() models.Event {
	return models.Event{
		ID:        d.ID.Hex(),
		Address:   d.Address,
		City:      d.City,
		State:     d.State,
		Zip:       d.Zip,
		Online:    d.Online,
		StartDate: d.StartDate,
		EndDate:   d.EndDate,
		StartTime: d.StartTime,
		EndTime:   d.EndTime,
		CreatorID: d.CreatorID.Hex(),
		Name:      d.Name,
		Text:      d.Text,
		Img:       d.Img,
		Likes:     oidsToHex(d.Likes),
		Attending: oidsToHex(d.Attending),
		Comments:  oidsToHex(d.Comments),
		Published: d.Published,
		Exclusive: d.Exclusive,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

func (d commentDoc) toModel() models.Comment {
	replyTo := ""
	if d.ReplyToID != nil {
		replyTo = d.ReplyToID.Hex()
	}

	return models.Comment{
		ID:        d.ID.Hex(),
		CreatorID: d.CreatorID.Hex(),
		EventID:   d.EventID.Hex(),
		ReplyToID: replyTo,
		Text:      d.Text,
		Likes:     oidsToHex(d.Likes),
		Published: d.Published,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}
