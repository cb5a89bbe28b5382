package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/explorevent/explorevent/internal/models"
	"github.com/explorevent/explorevent/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateEvent сохраняет событие и добавляет его id в created_events создателя —
// обе стороны зеркальной пары правятся внутри этого вызова.
func (m *Mongo) CreateEvent(ctx context.Context, event models.Event) (*models.Event, error) {
	const op = "storage/mongo/CreateEvent"

	creatorOID, err := hexToOID(event.CreatorID, storage.ErrNotFound)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Создатель должен существовать до вставки: иначе событие повиснет без
	// обратного индекса.
	if err := m.users.FindOne(ctx, bson.D{{Key: "_id", Value: creatorOID}},
		options.FindOne().SetProjection(bson.D{{Key: "_id", Value: 1}})).Err(); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: find creator: %w", op, err)
	}

	now := toMS(time.Now())

	doc := eventDoc{
		Address:   event.Address,
		City:      event.City,
		State:     event.State,
		Zip:       event.Zip,
		Online:    event.Online,
		StartDate: event.StartDate,
		EndDate:   event.EndDate,
		StartTime: event.StartTime,
		EndTime:   event.EndTime,
		CreatorID: creatorOID,
		Name:      event.Name,
		Text:      event.Text,
		Img:       "",
		Likes:     []primitive.ObjectID{},
		Attending: []primitive.ObjectID{},
		Comments:  []primitive.ObjectID{},
		Published: true,
		Exclusive: false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	res, err := m.events.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%s: insert: %w", op, err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("%s: inserted id type", op)
	}

	if _, err := m.users.UpdateByID(ctx, creatorOID, bson.D{
		{Key: "$push", Value: bson.D{{Key: "created_events", Value: oid}}},
		{Key: "$set", Value: bson.D{{Key: "updated_at", Value: now}}},
	}); err != nil {
		return nil, fmt.Errorf("%s: push created_events: %w", op, err)
	}

	doc.ID = oid
	out := doc.toModel()
	return &out, nil
}

// EventByID возвращает событие по идентификатору.
// Некорректный формат id трактуется как «нет такой записи».
func (m *Mongo) EventByID(ctx context.Context, id string) (*models.Event, error) {
	const op = "storage/mongo/EventByID"

	oid, err := hexToOID(id, storage.ErrNotFound)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var doc eventDoc
	if err := m.events.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := doc.toModel()
	return &out, nil
}

// ListEvents возвращает страницу ленты событий.
// Сортировка: created_at DESC, _id DESC.
// При некорректном page_token — storage.ErrInvalidCursor.
func (m *Mongo) ListEvents(ctx context.Context, param models.ListParams) (*models.EventPage, error) {
	const op = "storage/mongo/ListEvents"

	limit := limitOrDefault(m.cfg, param.PageSize)

	filter := bson.D{}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)

	// Курсор "меньше" для DESC сортировки.
	if strings.TrimSpace(param.PageToken) != "" {
		t, oid, decErr := decodeCursor(param.PageToken)
		if decErr != nil {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrInvalidCursor)
		}

		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "created_at", Value: bson.D{{Key: "$lt", Value: t}}}},
			bson.D{
				{Key: "created_at", Value: t},
				{Key: "_id", Value: bson.D{{Key: "$lt", Value: oid}}},
			},
		}})
	}

	cur, err := m.events.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}
	defer cur.Close(ctx)

	var items []models.Event
	var lastDoc eventDoc
	for cur.Next(ctx) {
		var doc eventDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}

		lastDoc = doc
		items = append(items, doc.toModel())
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: cursor: %w", op, err)
	}

	var next string
	if len(items) > 0 {
		next = encodeCursor(lastDoc.CreatedAt, lastDoc.ID)
	}

	return &models.EventPage{
		Items:         items,
		NextPageToken: next,
	}, nil
}

// SearchEvents ищет события, похожие на запрос, по имени или городу
// (регистронезависимый regex с экранированием спецсимволов).
func (m *Mongo) SearchEvents(ctx context.Context, query string) ([]models.Event, error) {
	const op = "storage/mongo/SearchEvents"

	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(strings.TrimSpace(query)), Options: "i"}

	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "event_name", Value: pattern}},
		bson.D{{Key: "event_city", Value: pattern}},
	}}}

	cur, err := m.events.Find(ctx, filter, options.Find().SetLimit(int64(m.cfg.Limits.SearchMax)))
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}
	defer cur.Close(ctx)

	var items []models.Event
	for cur.Next(ctx) {
		var doc eventDoc
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

// UpdateEvent обновляет редактируемые поля события.
// creator_id, картинка и коллекции вовлечённости этим путём не трогаются.
func (m *Mongo) UpdateEvent(ctx context.Context, event models.Event) (*models.Event, error) {
	const op = "storage/mongo/UpdateEvent"

	oid, err := hexToOID(event.ID, storage.ErrNotFound)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "event_address", Value: event.Address},
		{Key: "event_city", Value: event.City},
		{Key: "event_state", Value: event.State},
		{Key: "event_zip", Value: event.Zip},
		{Key: "online", Value: event.Online},
		{Key: "event_start_date", Value: event.StartDate},
		{Key: "event_end_date", Value: event.EndDate},
		{Key: "event_start_time", Value: event.StartTime},
		{Key: "event_end_time", Value: event.EndTime},
		{Key: "event_name", Value: event.Name},
		{Key: "text", Value: event.Text},
		{Key: "updated_at", Value: toMS(time.Now())},
	}}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc eventDoc
	if err := m.events.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := doc.toModel()
	return &out, nil
}

// UpdateEventImage сохраняет ключ картинки события ("" снимает картинку).
func (m *Mongo) UpdateEventImage(ctx context.Context, id, imgKey string) error {
	const op = "storage/mongo/UpdateEventImage"

	oid, err := hexToOID(id, storage.ErrNotFound)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := m.events.UpdateByID(ctx, oid, bson.D{{Key: "$set", Value: bson.D{
		{Key: "event_img", Value: imgKey},
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

// DeleteEvent удаляет событие и убирает его id из created_events создателя.
func (m *Mongo) DeleteEvent(ctx context.Context, id string) error {
	const op = "storage/mongo/DeleteEvent"

	oid, err := hexToOID(id, storage.ErrNotFound)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var doc eventDoc
	if err := m.events.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := m.users.UpdateByID(ctx, doc.CreatorID, bson.D{
		{Key: "$pull", Value: bson.D{{Key: "created_events", Value: oid}}},
	}); err != nil {
		return fmt.Errorf("%s: pull created_events: %w", op, err)
	}

	return nil
}

// TombstoneUserEvents затирает все события пользователя тумбстоун-маркерами.
// Записи и их id сохраняются, чтобы внешние ссылки оставались разрешимыми.
// Пустое множество событий и повторный вызов — no-op.
func (m *Mongo) TombstoneUserEvents(ctx context.Context, userID string) error {
	const op = "storage/mongo/TombstoneUserEvents"

	oid, err := hexToOID(userID, storage.ErrNotFound)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = m.events.UpdateMany(ctx, bson.D{{Key: "creator_id", Value: oid}}, bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "event_name", Value: models.TombstoneEventName},
			{Key: "text", Value: models.TombstoneText},
			{Key: "event_comments", Value: []primitive.ObjectID{}},
			{Key: "event_likes", Value: []primitive.ObjectID{}},
			{Key: "users_attending", Value: []primitive.ObjectID{}},
			{Key: "exclusive", Value: false},
			{Key: "published", Value: false},
			{Key: "updated_at", Value: toMS(time.Now())},
		}},
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
