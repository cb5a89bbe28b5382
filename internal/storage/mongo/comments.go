package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/explorevent/explorevent/internal/models"
	"github.com/explorevent/explorevent/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateComment сохраняет комментарий и прописывает его id в event_comments
// события и user_comments автора.
//
// Перед вставкой проверяются условия: автор существует (ErrNotFound),
// событие существует (ErrEventNotFound), родительский комментарий существует
// (ErrParentNotFound) и родитель принадлежит тому же событию
// (ErrParentMismatch).
func (m *Mongo) CreateComment(ctx context.Context, comment models.Comment) (*models.Comment, error) {
	const op = "storage/mongo/CreateComment"

	creatorOID, err := hexToOID(comment.CreatorID, storage.ErrNotFound)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Автор должен существовать до вставки: иначе $push в user_comments
	// молча не найдёт документ и зеркальная пара разъедется.
	if err := m.users.FindOne(ctx, bson.D{{Key: "_id", Value: creatorOID}},
		options.FindOne().SetProjection(bson.D{{Key: "_id", Value: 1}})).Err(); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: find creator: %w", op, err)
	}

	eventOID, err := hexToOID(comment.EventID, storage.ErrEventNotFound)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := m.events.FindOne(ctx, bson.D{{Key: "_id", Value: eventOID}},
		options.FindOne().SetProjection(bson.D{{Key: "_id", Value: 1}})).Err(); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrEventNotFound)
		}

		return nil, fmt.Errorf("%s: find event: %w", op, err)
	}

	var replyTo *primitive.ObjectID
	if comment.ReplyToID != "" {
		parentOID, err := hexToOID(comment.ReplyToID, storage.ErrParentNotFound)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		var parent commentDoc
		if err := m.comments.FindOne(ctx, bson.D{{Key: "_id", Value: parentOID}}).Decode(&parent); err != nil {
			if errors.Is(err, mongodriver.ErrNoDocuments) {
				return nil, fmt.Errorf("%s: %w", op, storage.ErrParentNotFound)
			}

			return nil, fmt.Errorf("%s: find parent: %w", op, err)
		}

		if parent.EventID != eventOID {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrParentMismatch)
		}

		replyTo = &parentOID
	}

	now := toMS(time.Now())

	doc := commentDoc{
		CreatorID: creatorOID,
		EventID:   eventOID,
		ReplyToID: replyTo,
		Text:      comment.Text,
		Likes:     []primitive.ObjectID{},
		Published: true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	res, err := m.comments.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%s: insert: %w", op, err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("%s: inserted id type", op)
	}

	if _, err := m.events.UpdateByID(ctx, eventOID, bson.D{
		{Key: "$push", Value: bson.D{{Key: "event_comments", Value: oid}}},
	}); err != nil {
		return nil, fmt.Errorf("%s: push event_comments: %w", op, err)
	}

	if _, err := m.users.UpdateByID(ctx, creatorOID, bson.D{
		{Key: "$push", Value: bson.D{{Key: "user_comments", Value: oid}}},
	}); err != nil {
		return nil, fmt.Errorf("%s: push user_comments: %w", op, err)
	}

	doc.ID = oid
	out := doc.toModel()
	return &out, nil
}

// CommentByID возвращает комментарий по идентификатору.
func (m *Mongo) CommentByID(ctx context.Context, id string) (*models.Comment, error) {
	const op = "storage/mongo/CommentByID"

	oid, err := hexToOID(id, storage.ErrNotFound)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var doc commentDoc
	if err := m.comments.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := doc.toModel()
	return &out, nil
}

// CommentsByEvent возвращает все комментарии события в порядке создания
// (created_at ASC) — плоским списком, дерево собирает сервисный слой.
func (m *Mongo) CommentsByEvent(ctx context.Context, eventID string) ([]models.Comment, error) {
	const op = "storage/mongo/CommentsByEvent"

	eventOID, err := hexToOID(eventID, storage.ErrEventNotFound)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := m.events.FindOne(ctx, bson.D{{Key: "_id", Value: eventOID}},
		options.FindOne().SetProjection(bson.D{{Key: "_id", Value: 1}})).Err(); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrEventNotFound)
		}

		return nil, fmt.Errorf("%s: find event: %w", op, err)
	}

	cur, err := m.comments.Find(ctx, bson.D{{Key: "event_id", Value: eventOID}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}
	defer cur.Close(ctx)

	var items []models.Comment
	for cur.Next(ctx) {
		var doc commentDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}

		items = append(items, doc.toModel())
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: cursor: %w", op, err)
	}

	return items, nil
}

// HasReplies сообщает, есть ли у комментария хотя бы один прямой ответ.
func (m *Mongo) HasReplies(ctx context.Context, id string) (bool, error) {
	const op = "storage/mongo/HasReplies"

	oid, err := hexToOID(id, storage.ErrNotFound)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	n, err := m.comments.CountDocuments(ctx, bson.D{{Key: "reply_to_id", Value: oid}},
		options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return n > 0, nil
}

// DeleteComment удаляет комментарий и его прямые ответы — ровно один уровень
// каскада. Ответы на ответы остаются в коллекции (их reply_to_id повисает).
// Обратные ссылки события и авторов чистятся для всего удалённого множества.
func (m *Mongo) DeleteComment(ctx context.Context, id string) error {
	const op = "storage/mongo/DeleteComment"

	oid, err := hexToOID(id, storage.ErrNotFound)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var doc commentDoc
	if err := m.comments.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	removed := []primitive.ObjectID{oid}

	cur, err := m.comments.Find(ctx, bson.D{{Key: "reply_to_id", Value: oid}},
		options.Find().SetProjection(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return fmt.Errorf("%s: find replies: %w", op, err)
	}

	for cur.Next(ctx) {
		var reply struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&reply); err != nil {
			cur.Close(ctx)
			return fmt.Errorf("%s: decode reply: %w", op, err)
		}

		removed = append(removed, reply.ID)
	}

	if err := cur.Err(); err != nil {
		cur.Close(ctx)
		return fmt.Errorf("%s: cursor: %w", op, err)
	}
	cur.Close(ctx)

	if _, err := m.comments.DeleteMany(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: removed}}}}); err != nil {
		return fmt.Errorf("%s: delete: %w", op, err)
	}

	if _, err := m.events.UpdateByID(ctx, doc.EventID, bson.D{
		{Key: "$pull", Value: bson.D{{Key: "event_comments", Value: bson.D{{Key: "$in", Value: removed}}}}},
	}); err != nil {
		return fmt.Errorf("%s: pull event_comments: %w", op, err)
	}

	if _, err := m.users.UpdateMany(ctx,
		bson.D{{Key: "user_comments", Value: bson.D{{Key: "$in", Value: removed}}}},
		bson.D{{Key: "$pull", Value: bson.D{{Key: "user_comments", Value: bson.D{{Key: "$in", Value: removed}}}}}},
	); err != nil {
		return fmt.Errorf("%s: pull user_comments: %w", op, err)
	}

	return nil
}

// TombstoneUserComments заменяет текст всех комментариев пользователя на
// тумбстоун-маркер. Идемпотентно.
func (m *Mongo) TombstoneUserComments(ctx context.Context, userID string) error {
	const op = "storage/mongo/TombstoneUserComments"

	oid, err := hexToOID(userID, storage.ErrNotFound)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = m.comments.UpdateMany(ctx, bson.D{{Key: "creator_id", Value: oid}}, bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "text", Value: models.TombstoneText},
			{Key: "comment_likes", Value: []primitive.ObjectID{}},
			{Key: "published", Value: false},
			{Key: "updated_at", Value: toMS(time.Now())},
		}},
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// UpdateCommentText меняет текст комментария.
func (m *Mongo) UpdateCommentText(ctx context.Context, id, text string) (*models.Comment, error) {
	const op = "storage/mongo/UpdateCommentText"

	oid, err := hexToOID(id, storage.ErrNotFound)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "text", Value: text},
		{Key: "updated_at", Value: toMS(time.Now())},
	}}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc commentDoc
	if err := m.comments.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := doc.toModel()
	return &out, nil
}
