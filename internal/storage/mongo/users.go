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

// CreateUser сохраняет нового пользователя.
// Уникальность email/username обеспечивают индексы: дубликат — storage.ErrAlreadyExists.
func (m *Mongo) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	const op = "storage/mongo/CreateUser"

	now := toMS(time.Now())

	doc := userDoc{
		About:           user.About,
		Admin:           user.Admin,
		Banned:          user.Banned,
		Email:           user.Email,
		Username:        user.Username,
		PasswordHash:    user.PasswordHash,
		FullName:        user.FullName,
		AttendingEvents: []primitive.ObjectID{},
		AttendedEvents:  []primitive.ObjectID{},
		LikedEvents:     []primitive.ObjectID{},
		LikedComments:   []primitive.ObjectID{},
		CreatedEvents:   []primitive.ObjectID{},
		UserComments:    []primitive.ObjectID{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	res, err := m.users.InsertOne(ctx, doc)
	if err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return nil, fmt.Errorf("%s: insert: %w", op, err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("%s: inserted id type", op)
	}

	doc.ID = oid
	out := doc.toModel()
	return &out, nil
}

// UserByID возвращает пользователя по идентификатору.
func (m *Mongo) UserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage/mongo/UserByID"

	oid, err := hexToOID(id, storage.ErrNotFound)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var doc userDoc
	if err := m.users.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := doc.toModel()
	return &out, nil
}

// UserByEmail возвращает пользователя по email.
func (m *Mongo) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage/mongo/UserByEmail"

	var doc userDoc
	if err := m.users.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := doc.toModel()
	return &out, nil
}

// UserByUsername возвращает пользователя по username.
func (m *Mongo) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage/mongo/UserByUsername"

	var doc userDoc
	if err := m.users.FindOne(ctx, bson.D{{Key: "username", Value: username}}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := doc.toModel()
	return &out, nil
}

// ListUsers возвращает всех пользователей.
func (m *Mongo) ListUsers(ctx context.Context) ([]models.User, error) {
	const op = "storage/mongo/ListUsers"

	cur, err := m.users.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}
	defer cur.Close(ctx)

	var items []models.User
	for cur.Next(ctx) {
		var doc userDoc
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

// UpdateUserDetails обновляет about/fullName/username.
// Конфликт username по уникальному индексу — storage.ErrAlreadyExists.
func (m *Mongo) UpdateUserDetails(ctx context.Context, id, about, fullName, username string) (*models.User, error) {
	const op = "storage/mongo/UpdateUserDetails"

	oid, err := hexToOID(id, storage.ErrNotFound)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "about", Value: about},
		{Key: "full_name", Value: fullName},
		{Key: "username", Value: username},
		{Key: "updated_at", Value: toMS(time.Now())},
	}}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDoc
	if err := m.users.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		if mongodriver.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := doc.toModel()
	return &out, nil
}

// UpdateUserEmail обновляет email. Дубликат — storage.ErrAlreadyExists.
func (m *Mongo) UpdateUserEmail(ctx context.Context, id, email string) error {
	const op = "storage/mongo/UpdateUserEmail"

	oid, err := hexToOID(id, storage.ErrNotFound)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := m.users.UpdateByID(ctx, oid, bson.D{{Key: "$set", Value: bson.D{
		{Key: "email", Value: email},
		{Key: "updated_at", Value: toMS(time.Now())},
	}}})
	if err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// UpdateUserPassword сохраняет новый хэш пароля.
func (m *Mongo) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	const op = "storage/mongo/UpdateUserPassword"

	oid, err := hexToOID(id, storage.ErrNotFound)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := m.users.UpdateByID(ctx, oid, bson.D{{Key: "$set", Value: bson.D{
		{Key: "password", Value: passwordHash},
		{Key: "updated_at", Value: toMS(time.Now())},
	}}})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// DeleteUser физически удаляет запись пользователя.
func (m *Mongo) DeleteUser(ctx context.Context, id string) error {
	const op = "storage/mongo/DeleteUser"

	oid, err := hexToOID(id, storage.ErrNotFound)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := m.users.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
