package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/explorevent/explorevent/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Тогглы вовлечённости. Прямая сторона (массив на целевом документе)
// переключается одним pipeline-апдейтом: $cond по $in решает, убрать id
// через $setDifference или добавить через $concatArrays. Читать состояние
// заранее не нужно, поэтому гонка двух тогглов не даёт дублей.
// Зеркальная сторона на пользователе приводится к итогу $addToSet/$pull.

// togglePipeline строит pipeline-апдейт, добавляющий либо убирающий member
// из массива field.
func togglePipeline(field string, member primitive.ObjectID) mongodriver.Pipeline {
	return mongodriver.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: field, Value: bson.D{{Key: "$cond", Value: bson.D{
				{Key: "if", Value: bson.D{{Key: "$in", Value: bson.A{member, "$" + field}}}},
				{Key: "then", Value: bson.D{{Key: "$setDifference", Value: bson.A{"$" + field, bson.A{member}}}}},
				{Key: "else", Value: bson.D{{Key: "$concatArrays", Value: bson.A{"$" + field, bson.A{member}}}}},
			}}}},
			{Key: "updated_at", Value: toMS(time.Now())},
		}}},
	}
}

// toggleMember атомарно переключает member в массиве field документа id
// коллекции coll и возвращает итоговое состояние (true — member в массиве).
func (m *Mongo) toggleMember(ctx context.Context, coll *mongodriver.Collection, id primitive.ObjectID, field string, member primitive.ObjectID) (bool, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.D{{Key: field, Value: 1}})

	var after bson.M
	err := coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, togglePipeline(field, member), opts).Decode(&after)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return false, storage.ErrNotFound
		}

		return false, err
	}

	arr, _ := after[field].(primitive.A)
	for _, v := range arr {
		if oid, ok := v.(primitive.ObjectID); ok && oid == member {
			return true, nil
		}
	}

	return false, nil
}

// mirrorUserSet приводит массив field пользователя userID к итогу прямой
// стороны: present=true — $addToSet, false — $pull. Оба оператора
// идемпотентны, поэтому повтор зеркалирования безопасен.
func (m *Mongo) mirrorUserSet(ctx context.Context, userID primitive.ObjectID, field string, member primitive.ObjectID, present bool) error {
	var update bson.D
	if present {
		update = bson.D{{Key: "$addToSet", Value: bson.D{{Key: field, Value: member}}}}
	} else {
		update = bson.D{{Key: "$pull", Value: bson.D{{Key: field, Value: member}}}}
	}

	res, err := m.users.UpdateByID(ctx, userID, update)
	if err != nil {
		return err
	}

	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// ToggleEventLike переключает лайк пользователя на событии и зеркалирует
// liked_events пользователя. Возвращает итоговое состояние.
func (m *Mongo) ToggleEventLike(ctx context.Context, eventID, userID string) (bool, error) {
	const op = "storage/mongo/ToggleEventLike"

	eventOID, err := hexToOID(eventID, storage.ErrEventNotFound)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	userOID, err := hexToOID(userID, storage.ErrNotFound)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	liked, err := m.toggleMember(ctx, m.events, eventOID, "event_likes", userOID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, fmt.Errorf("%s: %w", op, storage.ErrEventNotFound)
		}

		return false, fmt.Errorf("%s: %w", op, err)
	}

	if err := m.mirrorUserSet(ctx, userOID, "liked_events", eventOID, liked); err != nil {
		return false, fmt.Errorf("%s: mirror: %w", op, err)
	}

	return liked, nil
}

// ToggleEventAttend переключает посещение события и зеркалирует
// attending_events пользователя.
func (m *Mongo) ToggleEventAttend(ctx context.Context, eventID, userID string) (bool, error) {
	const op = "storage/mongo/ToggleEventAttend"

	eventOID, err := hexToOID(eventID, storage.ErrEventNotFound)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	userOID, err := hexToOID(userID, storage.ErrNotFound)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	attending, err := m.toggleMember(ctx, m.events, eventOID, "users_attending", userOID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, fmt.Errorf("%s: %w", op, storage.ErrEventNotFound)
		}

		return false, fmt.Errorf("%s: %w", op, err)
	}

	if err := m.mirrorUserSet(ctx, userOID, "attending_events", eventOID, attending); err != nil {
		return false, fmt.Errorf("%s: mirror: %w", op, err)
	}

	return attending, nil
}

// ToggleCommentLike переключает лайк на комментарии и зеркалирует
// liked_comments пользователя.
func (m *Mongo) ToggleCommentLike(ctx context.Context, commentID, userID string) (bool, error) {
	const op = "storage/mongo/ToggleCommentLike"

	commentOID, err := hexToOID(commentID, storage.ErrNotFound)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	userOID, err := hexToOID(userID, storage.ErrNotFound)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	liked, err := m.toggleMember(ctx, m.comments, commentOID, "comment_likes", userOID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if err := m.mirrorUserSet(ctx, userOID, "liked_comments", commentOID, liked); err != nil {
		return false, fmt.Errorf("%s: mirror: %w", op, err)
	}

	return liked, nil
}
