package mongo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/explorevent/explorevent/internal/config"
	"github.com/explorevent/explorevent/internal/models"
	"github.com/explorevent/explorevent/internal/storage"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// testTimeout — общий дедлайн на операции с БД в тестах.
const testTimeout = 10 * time.Second

// TestMain запускает MongoDB в контейнере один раз на весь пакет тестов.
// Адрес контейнера прокидывается в ENV DATABASE_URL, а каждая спецификация
// создаёт свою БД с уникальным именем (см. newTestConfig).
func TestMain(m *testing.M) {
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		os.Exit(m.Run())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "mongo:7.0",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForLog("Waiting for connections").WithStartupTimeout(90 * time.Second),
	}

	mongoC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})

	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start mongo testcontainer: %v\n", err)
		os.Exit(1)
	}

	host, err := mongoC.Host(ctx)
	if err != nil {
		_ = mongoC.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "failed to get container host: %v\n", err)
		os.Exit(1)
	}

	port, err := mongoC.MappedPort(ctx, "27017/tcp")
	if err != nil {
		_ = mongoC.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "failed to get mapped port: %v\n", err)
		os.Exit(1)
	}

	uri := fmt.Sprintf("mongodb://%s:%s", host, port.Port())
	_ = os.Setenv("DATABASE_URL", uri)

	code := m.Run()

	_ = mongoC.Terminate(context.Background())
	os.Exit(code)
}

// newTestConfig создаёт конфиг с отдельной тестовой БД.
func newTestConfig(t *testing.T) *config.Config {
	t.Helper()

	baseURL := os.Getenv("DATABASE_URL")
	if baseURL == "" {
		baseURL = "mongodb://localhost:27017"
	}

	dbName := "explorevent_test_" + uuid.New().String()
	if baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL + dbName
	} else {
		baseURL = baseURL + "/" + dbName
	}

	return &config.Config{
		DB: config.DBConfig{
			URL: baseURL,
		},
		Limits: config.LimitsConfig{
			Default:   2,
			Max:       100,
			SearchMax: 50,
		},
	}
}

// mustNewMongo создаёт подключение к тестовой БД и регистрирует очистку по завершении теста.
// Без GO_TEST_INTEGRATION контейнер не поднят — тест пропускается.
func mustNewMongo(t *testing.T, cfg *config.Config) *Mongo {
	t.Helper()

	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("set GO_TEST_INTEGRATION=1 to run MongoDB integration tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	m, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("cannot connect to MongoDB in container: %v (DATABASE_URL=%s)", err, cfg.DB.URL)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
		defer cancel()
		_ = m.db.Drop(ctx)
		_ = m.Close(ctx)
	})

	return m
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	t.Cleanup(cancel)
	return ctx
}

// createUser — быстрый хелпер с уникальными email/username.
func createUser(t *testing.T, m *Mongo, username string) *models.User {
	t.Helper()

	u, err := m.CreateUser(testCtx(t), models.User{
		Email:        username + "@test.io",
		Username:     username,
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("CreateUser(%s) error: %v", username, err)
	}

	return u
}

func createEvent(t *testing.T, m *Mongo, creatorID, name string) *models.Event {
	t.Helper()

	e, err := m.CreateEvent(testCtx(t), models.Event{
		CreatorID: creatorID,
		Name:      name,
		Text:      "text of " + name,
		City:      "Birmingham",
		Published: true,
	})
	if err != nil {
		t.Fatalf("CreateEvent(%s) error: %v", name, err)
	}

	return e
}

func createComment(t *testing.T, m *Mongo, creatorID, eventID, replyTo, text string) *models.Comment {
	t.Helper()

	c, err := m.CreateComment(testCtx(t), models.Comment{
		CreatorID: creatorID,
		EventID:   eventID,
		ReplyToID: replyTo,
		Text:      text,
		Published: true,
	})
	if err != nil {
		t.Fatalf("CreateComment(%q) error: %v", text, err)
	}

	return c
}

func containsStr(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// --- Чистые хелперы (без контейнера) ---

// TestEncodeDecodeCursor — encode/decode должны быть взаимно обратимыми.
func TestEncodeDecodeCursor(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	oid := primitive.NewObjectID()

	token := encodeCursor(now, oid)
	gotT, gotID, err := decodeCursor(token)
	if err != nil {
		t.Fatalf("decodeCursor error: %v", err)
	}
	if !gotT.Equal(now) {
		t.Fatalf("time mismatch: want %v, got %v", now, gotT)
	}
	if gotID != oid {
		t.Fatalf("oid mismatch: want %v, got %v", oid, gotID)
	}
}

func TestDecodeCursor_Garbage(t *testing.T) {
	for _, token := range []string{"%%%", "bm90LWEtY3Vyc29y", ""} {
		if _, _, err := decodeCursor(token); err == nil {
			t.Fatalf("decodeCursor(%q): expected error", token)
		}
	}
}

// TestLimitOrDefault — граничные случаи и дефолт для размера страницы.
func TestLimitOrDefault(t *testing.T) {
	cfg := &config.Config{
		Limits: config.LimitsConfig{Default: 10, Max: 50},
	}
	tests := []struct {
		name string
		in   int32
		want int64
	}{
		{"zero->default", 0, 10},
		{"negative->default", -5, 10},
		{"less-than-max", 25, 25},
		{"more-than-max->cap", 200, 50},
	}
	for _, tt := range tests {
		if got := limitOrDefault(cfg, tt.in); got != tt.want {
			t.Errorf("%s: want %d, got %d", tt.name, tt.want, got)
		}
	}
}

func TestDatabaseFromURI(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"mongodb://localhost:27017/mydb", "mydb"},
		{"mongodb://localhost:27017/", defaultDBName},
		{"mongodb://localhost:27017", defaultDBName},
	}
	for _, tt := range tests {
		if got := databaseFromURI(tt.in); got != tt.want {
			t.Errorf("databaseFromURI(%q): want %q, got %q", tt.in, tt.want, got)
		}
	}
}

// --- Users ---

func TestCreateUser_UniqueEmailAndUsername(t *testing.T) {
	cfg := newTestConfig(t)
	m := mustNewMongo(t, cfg)

	alice := createUser(t, m, "alice")
	if alice.ID == "" {
		t.Fatal("expected generated ID")
	}

	// Повтор email.
	_, err := m.CreateUser(testCtx(t), models.User{
		Email:        "alice@test.io",
		Username:     "alice2",
		PasswordHash: "hash",
	})
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate email: want ErrAlreadyExists, got %v", err)
	}

	// Повтор username.
	_, err = m.CreateUser(testCtx(t), models.User{
		Email:        "alice2@test.io",
		Username:     "alice",
		PasswordHash: "hash",
	})
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate username: want ErrAlreadyExists, got %v", err)
	}
}

func TestUserLookups(t *testing.T) {
	cfg := newTestConfig(t)
	m := mustNewMongo(t, cfg)

	bob := createUser(t, m, "bob")

	byID, err := m.UserByID(testCtx(t), bob.ID)
	if err != nil || byID.Username != "bob" {
		t.Fatalf("UserByID: got %v / %v", byID, err)
	}

	byEmail, err := m.UserByEmail(testCtx(t), "bob@test.io")
	if err != nil || byEmail.ID != bob.ID {
		t.Fatalf("UserByEmail: got %v / %v", byEmail, err)
	}

	byName, err := m.UserByUsername(testCtx(t), "bob")
	if err != nil || byName.ID != bob.ID {
		t.Fatalf("UserByUsername: got %v / %v", byName, err)
	}

	if _, err := m.UserByID(testCtx(t), primitive.NewObjectID().Hex()); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("ghost UserByID: want ErrNotFound, got %v", err)
	}

	if _, err := m.UserByID(testCtx(t), "not-an-oid"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("garbage id: want ErrNotFound, got %v", err)
	}
}

func TestUpdateUserDetails_UsernameConflict(t *testing.T) {
	cfg := newTestConfig(t)
	m := mustNewMongo(t, cfg)

	carol := createUser(t, m, "carol")
	createUser(t, m, "dave")

	got, err := m.UpdateUserDetails(testCtx(t), carol.ID, "about me", "Carol C.", "carol")
	if err != nil {
		t.Fatalf("UpdateUserDetails error: %v", err)
	}
	if got.About != "about me" || got.FullName != "Carol C." {
		t.Fatalf("details not applied: %+v", got)
	}

	if _, err := m.UpdateUserDetails(testCtx(t), carol.ID, "", "", "dave"); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("username conflict: want ErrAlreadyExists, got %v", err)
	}
}

// --- Events ---

func TestCreateEvent_LinksCreator(t *testing.T) {
	cfg := newTestConfig(t)
	m := mustNewMongo(t, cfg)

	erin := createUser(t, m, "erin")
	event := createEvent(t, m, erin.ID, "Go meetup")

	if event.CreatorID != erin.ID {
		t.Fatalf("CreatorID = %q, want %q", event.CreatorID, erin.ID)
	}
	if !event.Published {
		t.Fatal("new event must be published")
	}

	// id события появляется в created_events создателя.
	owner, err := m.UserByID(testCtx(t), erin.ID)
	if err != nil {
		t.Fatalf("UserByID error: %v", err)
	}
	if !containsStr(owner.CreatedEvents, event.ID) {
		t.Fatalf("creator.CreatedEvents = %v, want to contain %q", owner.CreatedEvents, event.ID)
	}

	// Несуществующий создатель.
	_, err = m.CreateEvent(testCtx(t), models.Event{
		CreatorID: primitive.NewObjectID().Hex(),
		Name:      "ghost event",
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("ghost creator: want ErrNotFound, got %v", err)
	}
}

func TestListEvents_CursorPagination(t *testing.T) {
	cfg := newTestConfig(t)
	m := mustNewMongo(t, cfg)

	frank := createUser(t, m, "frank")
	const total = 5
	for i := 0; i < total; i++ {
		createEvent(t, m, frank.ID, fmt.Sprintf("event-%d", i))
		time.Sleep(5 * time.Millisecond) // разносим created_at
	}

	seen := map[string]bool{}
	var token string
	var pages int

	for {
		page, err := m.ListEvents(testCtx(t), models.ListParams{PageSize: 2, PageToken: token})
		if err != nil {
			t.Fatalf("ListEvents error: %v", err)
		}

		for _, e := range page.Items {
			if seen[e.ID] {
				t.Fatalf("duplicate event %s across pages", e.ID)
			}
			seen[e.ID] = true
		}

		// Лента упорядочена от новых к старым.
		for i := 1; i < len(page.Items); i++ {
			if page.Items[i].CreatedAt.After(page.Items[i-1].CreatedAt) {
				t.Fatalf("page not sorted desc: %v after %v",
					page.Items[i].CreatedAt, page.Items[i-1].CreatedAt)
			}
		}

		pages++
		if page.NextPageToken == "" {
			break
		}
		token = page.NextPageToken

		if pages > total {
			t.Fatal("pagination did not terminate")
		}
	}

	if len(seen) != total {
		t.Fatalf("walked %d events, want %d", len(seen), total)
	}

	// Битый токен.
	_, err := m.ListEvents(testCtx(t), models.ListParams{PageSize: 2, PageToken: "not-a-cursor"})
	if !errors.Is(err, storage.ErrInvalidCursor) {
		t.Fatalf("bad token: want ErrInvalidCursor, got %v", err)
	}
}

func TestSearchEvents_CaseInsensitive(t *testing.T) {
	cfg := newTestConfig(t)
	m := mustNewMongo(t, cfg)

	grace := createUser(t, m, "grace")
	createEvent(t, m, grace.ID, "Birmingham Tech Social")

	_, err := m.CreateEvent(testCtx(t), models.Event{
		CreatorID: grace.ID,
		Name:      "quiet hike",
		City:      "Tuscaloosa",
	})
	if err != nil {
		t.Fatalf("CreateEvent error: %v", err)
	}

	byName, err := m.SearchEvents(testCtx(t), "tech social")
	if err != nil {
		t.Fatalf("SearchEvents error: %v", err)
	}
	if len(byName) != 1 || byName[0].Name != "Birmingham Tech Social" {
		t.Fatalf("search by name: got %+v", byName)
	}

	byCity, err := m.SearchEvents(testCtx(t), "TUSCALOOSA")
	if err != nil {
		t.Fatalf("SearchEvents error: %v", err)
	}
	if len(byCity) != 1 || byCity[0].Name != "quiet hike" {
		t.Fatalf("search by city: got %+v", byCity)
	}

	none, err := m.SearchEvents(testCtx(t), "no-such-thing")
	if err != nil || len(none) != 0 {
		t.Fatalf("empty search: got %v / %v", none, err)
	}
}

func TestUpdateEvent_EditableFieldsOnly(t *testing.T) {
	cfg := newTestConfig(t)
	m := mustNewMongo(t, cfg)

	heidi := createUser(t, m, "heidi")
	event := createEvent(t, m, heidi.ID, "before")

	time.Sleep(5 * time.Millisecond) // гарантируем рост updated_at

	got, err := m.UpdateEvent(testCtx(t), models.Event{
		ID:   event.ID,
		Name: "after",
		Text: "new text",
		City: "Huntsville",
	})
	if err != nil {
		t.Fatalf("UpdateEvent error: %v", err)
	}

	if got.Name != "after" || got.Text != "new text" || got.City != "Huntsville" {
		t.Fatalf("fields not applied: %+v", got)
	}
	if got.CreatorID != heidi.ID {
		t.Fatalf("CreatorID changed: %q", got.CreatorID)
	}
	if !got.UpdatedAt.After(event.UpdatedAt) {
		t.Fatalf("UpdatedAt not bumped: %v <= %v", got.UpdatedAt, event.UpdatedAt)
	}
}

func TestDeleteEvent_UnlinksCreator(t *testing.T) {
	cfg := newTestConfig(t)
	m := mustNewMongo(t, cfg)

	ivan := createUser(t, m, "ivan")
	event := createEvent(t, m, ivan.ID, "doomed")

	if err := m.DeleteEvent(testCtx(t), event.ID); err != nil {
		t.Fatalf("DeleteEvent error: %v", err)
	}

	if _, err := m.EventByID(testCtx(t), event.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("deleted event lookup: want ErrNotFound, got %v", err)
	}

	owner, err := m.UserByID(testCtx(t), ivan.ID)
	if err != nil {
		t.Fatalf("UserByID error: %v", err)
	}
	if containsStr(owner.CreatedEvents, event.ID) {
		t.Fatalf("creator.CreatedEvents still contains %q", event.ID)
	}

	if err := m.DeleteEvent(testCtx(t), event.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("double delete: want ErrNotFound, got %v", err)
	}
}

// --- Comments ---

func TestCreateComment_MirrorsAndValidations(t *testing.T) {
	cfg := newTestConfig(t)
	m := mustNewMongo(t, cfg)

	judy := createUser(t, m, "judy")
	event := createEvent(t, m, judy.ID, "party")
	other := createEvent(t, m, judy.ID, "other party")

	root := createComment(t, m, judy.ID, event.ID, "", "hello")

	// Комментарий зеркалится на событие и на автора.
	gotEvent, err := m.EventByID(testCtx(t), event.ID)
	if err != nil {
		t.Fatalf("EventByID error: %v", err)
	}
	if !containsStr(gotEvent.Comments, root.ID) {
		t.Fatalf("event.Comments = %v, want to contain %q", gotEvent.Comments, root.ID)
	}

	author, err := m.UserByID(testCtx(t), judy.ID)
	if err != nil {
		t.Fatalf("UserByID error: %v", err)
	}
	if !containsStr(author.UserComments, root.ID) {
		t.Fatalf("author.UserComments = %v, want to contain %q", author.UserComments, root.ID)
	}

	// Несуществующее событие.
	_, err = m.CreateComment(testCtx(t), models.Comment{
		CreatorID: judy.ID,
		EventID:   primitive.NewObjectID().Hex(),
		Text:      "orphan",
	})
	if !errors.Is(err, storage.ErrEventNotFound) {
		t.Fatalf("ghost event: want ErrEventNotFound, got %v", err)
	}

	// Несуществующий родитель.
	_, err = m.CreateComment(testCtx(t), models.Comment{
		CreatorID: judy.ID,
		EventID:   event.ID,
		ReplyToID: primitive.NewObjectID().Hex(),
		Text:      "reply to ghost",
	})
	if !errors.Is(err, storage.ErrParentNotFound) {
		t.Fatalf("ghost parent: want ErrParentNotFound, got %v", err)
	}

	// Родитель из другого события.
	_, err = m.CreateComment(testCtx(t), models.Comment{
		CreatorID: judy.ID,
		EventID:   other.ID,
		ReplyToID: root.ID,
		Text:      "cross-event reply",
	})
	if !errors.Is(err, storage.ErrParentMismatch) {
		t.Fatalf("cross-event parent: want ErrParentMismatch, got %v", err)
	}
}

// Автор комментария обязан существовать на момент вставки: токен может
// пережить удаление аккаунта, и без проверки комментарий повис бы без
// обратного индекса в user_comments.
func TestCreateComment_GhostCreator(t *testing.T) {
	cfg := newTestConfig(t)
	m := mustNewMongo(t, cfg)

	judy := createUser(t, m, "judy")
	event := createEvent(t, m, judy.ID, "party")

	if err := m.DeleteUser(testCtx(t), judy.ID); err != nil {
		t.Fatalf("DeleteUser error: %v", err)
	}

	_, err := m.CreateComment(testCtx(t), models.Comment{
		CreatorID: judy.ID,
		EventID:   event.ID,
		Text:      "from beyond",
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("ghost creator: want ErrNotFound, got %v", err)
	}

	// Комментарий не должен был вставиться и зазеркалиться на событие.
	got, err := m.EventByID(testCtx(t), event.ID)
	if err != nil {
		t.Fatalf("EventByID error: %v", err)
	}
	if len(got.Comments) != 0 {
		t.Fatalf("event.Comments = %v, want empty", got.Comments)
	}
}

func TestCommentsByEvent_OrderedAsc(t *testing.T) {
	cfg := newTestConfig(t)
	m := mustNewMongo(t, cfg)

	kate := createUser(t, m, "kate")
	event := createEvent(t, m, kate.ID, "ordered")

	for i := 0; i < 3; i++ {
		createComment(t, m, kate.ID, event.ID, "", fmt.Sprintf("comment-%d", i))
		time.Sleep(5 * time.Millisecond)
	}

	list, err := m.CommentsByEvent(testCtx(t), event.ID)
	if err != nil {
		t.Fatalf("CommentsByEvent error: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("got %d comments, want 3", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].CreatedAt.Before(list[i-1].CreatedAt) {
			t.Fatalf("comments not sorted asc")
		}
	}

	if _, err := m.CommentsByEvent(testCtx(t), primitive.NewObjectID().Hex()); !errors.Is(err, storage.ErrEventNotFound) {
		t.Fatalf("ghost event: want ErrEventNotFound, got %v", err)
	}
}

func TestHasReplies(t *testing.T) {
	cfg := newTestConfig(t)
	m := mustNewMongo(t, cfg)

	leo := createUser(t, m, "leo")
	event := createEvent(t, m, leo.ID, "threads")

	root := createComment(t, m, leo.ID, event.ID, "", "root")
	lonely := createComment(t, m, leo.ID, event.ID, "", "lonely")
	createComment(t, m, leo.ID, event.ID, root.ID, "reply")

	got, err := m.HasReplies(testCtx(t), root.ID)
	if err != nil || !got {
		t.Fatalf("HasReplies(root) = %v / %v, want true", got, err)
	}

	got, err = m.HasReplies(testCtx(t), lonely.ID)
	if err != nil || got {
		t.Fatalf("HasReplies(lonely) = %v / %v, want false", got, err)
	}
}

// Каскад в один уровень: удаляются сам комментарий и его прямые ответы;
// ответы на ответы остаются (сиротами), все зеркала чистятся.
func TestDeleteComment_SingleLevelCascade(t *testing.T) {
	cfg := newTestConfig(t)
	m := mustNewMongo(t, cfg)

	mia := createUser(t, m, "mia")
	nick := createUser(t, m, "nick")
	event := createEvent(t, m, mia.ID, "cascade")

	root := createComment(t, m, mia.ID, event.ID, "", "root")
	reply := createComment(t, m, nick.ID, event.ID, root.ID, "reply")
	grand := createComment(t, m, mia.ID, event.ID, reply.ID, "grand-reply")
	bystander := createComment(t, m, nick.ID, event.ID, "", "bystander")

	if err := m.DeleteComment(testCtx(t), root.ID); err != nil {
		t.Fatalf("DeleteComment error: %v", err)
	}

	// root и прямой ответ удалены.
	if _, err := m.CommentByID(testCtx(t), root.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("root survived: %v", err)
	}
	if _, err := m.CommentByID(testCtx(t), reply.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("direct reply survived: %v", err)
	}

	// Ответ на ответ остаётся (сиротой), сторонний комментарий не тронут.
	if _, err := m.CommentByID(testCtx(t), grand.ID); err != nil {
		t.Fatalf("grand-reply must survive: %v", err)
	}
	if _, err := m.CommentByID(testCtx(t), bystander.ID); err != nil {
		t.Fatalf("bystander must survive: %v", err)
	}

	// Зеркала: event.Comments и user_comments чистятся от обоих удалённых id.
	gotEvent, err := m.EventByID(testCtx(t), event.ID)
	if err != nil {
		t.Fatalf("EventByID error: %v", err)
	}
	if containsStr(gotEvent.Comments, root.ID) || containsStr(gotEvent.Comments, reply.ID) {
		t.Fatalf("event.Comments not cleaned: %v", gotEvent.Comments)
	}
	if !containsStr(gotEvent.Comments, grand.ID) || !containsStr(gotEvent.Comments, bystander.ID) {
		t.Fatalf("event.Comments lost survivors: %v", gotEvent.Comments)
	}

	miaDoc, err := m.UserByID(testCtx(t), mia.ID)
	if err != nil {
		t.Fatalf("UserByID error: %v", err)
	}
	if containsStr(miaDoc.UserComments, root.ID) {
		t.Fatalf("mia.UserComments not cleaned: %v", miaDoc.UserComments)
	}

	nickDoc, err := m.UserByID(testCtx(t), nick.ID)
	if err != nil {
		t.Fatalf("UserByID error: %v", err)
	}
	if containsStr(nickDoc.UserComments, reply.ID) {
		t.Fatalf("nick.UserComments not cleaned: %v", nickDoc.UserComments)
	}

	if err := m.DeleteComment(testCtx(t), root.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("double delete: want ErrNotFound, got %v", err)
	}
}

func TestUpdateCommentText(t *testing.T) {
	cfg := newTestConfig(t)
	m := mustNewMongo(t, cfg)

	olga := createUser(t, m, "olga")
	event := createEvent(t, m, olga.ID, "edits")
	c := createComment(t, m, olga.ID, event.ID, "", "v1")

	got, err := m.UpdateCommentText(testCtx(t), c.ID, "v2")
	if err != nil {
		t.Fatalf("UpdateCommentText error: %v", err)
	}
	if got.Text != "v2" {
		t.Fatalf("Text = %q, want v2", got.Text)
	}

	if _, err := m.UpdateCommentText(testCtx(t), primitive.NewObjectID().Hex(), "x"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("ghost comment: want ErrNotFound, got %v", err)
	}
}

// --- Toggles ---

// Тогглы симметричны (чётное число вызовов возвращает исходное состояние)
// и зеркалятся на обратный индекс пользователя.
func TestToggleEventLike_ParityAndMirror(t *testing.T) {
	cfg := newTestConfig(t)
	m := mustNewMongo(t, cfg)

	pam := createUser(t, m, "pam")
	quinn := createUser(t, m, "quinn")
	event := createEvent(t, m, pam.ID, "likes")

	on, err := m.ToggleEventLike(testCtx(t), event.ID, quinn.ID)
	if err != nil || !on {
		t.Fatalf("first toggle: got %v / %v, want true", on, err)
	}

	gotEvent, _ := m.EventByID(testCtx(t), event.ID)
	gotUser, _ := m.UserByID(testCtx(t), quinn.ID)
	if !containsStr(gotEvent.Likes, quinn.ID) || !containsStr(gotUser.LikedEvents, event.ID) {
		t.Fatalf("like not mirrored: event=%v user=%v", gotEvent.Likes, gotUser.LikedEvents)
	}

	off, err := m.ToggleEventLike(testCtx(t), event.ID, quinn.ID)
	if err != nil || off {
		t.Fatalf("second toggle: got %v / %v, want false", off, err)
	}

	gotEvent, _ = m.EventByID(testCtx(t), event.ID)
	gotUser, _ = m.UserByID(testCtx(t), quinn.ID)
	if containsStr(gotEvent.Likes, quinn.ID) || containsStr(gotUser.LikedEvents, event.ID) {
		t.Fatalf("like not removed on both sides: event=%v user=%v", gotEvent.Likes, gotUser.LikedEvents)
	}

	if _, err := m.ToggleEventLike(testCtx(t), primitive.NewObjectID().Hex(), quinn.ID); !errors.Is(err, storage.ErrEventNotFound) {
		t.Fatalf("ghost event: want ErrEventNotFound, got %v", err)
	}
}

func TestToggleEventAttend_Mirror(t *testing.T) {
	cfg := newTestConfig(t)
	m := mustNewMongo(t, cfg)

	rae := createUser(t, m, "rae")
	event := createEvent(t, m, rae.ID, "attend")

	on, err := m.ToggleEventAttend(testCtx(t), event.ID, rae.ID)
	if err != nil || !on {
		t.Fatalf("toggle attend: got %v / %v, want true", on, err)
	}

	gotEvent, _ := m.EventByID(testCtx(t), event.ID)
	gotUser, _ := m.UserByID(testCtx(t), rae.ID)
	if !containsStr(gotEvent.Attending, rae.ID) || !containsStr(gotUser.AttendingEvents, event.ID) {
		t.Fatalf("attend not mirrored: event=%v user=%v", gotEvent.Attending, gotUser.AttendingEvents)
	}
}

func TestToggleCommentLike_Mirror(t *testing.T) {
	cfg := newTestConfig(t)
	m := mustNewMongo(t, cfg)

	sam := createUser(t, m, "sam")
	event := createEvent(t, m, sam.ID, "comment likes")
	c := createComment(t, m, sam.ID, event.ID, "", "likeable")

	on, err := m.ToggleCommentLike(testCtx(t), c.ID, sam.ID)
	if err != nil || !on {
		t.Fatalf("toggle comment like: got %v / %v, want true", on, err)
	}

	gotComment, _ := m.CommentByID(testCtx(t), c.ID)
	gotUser, _ := m.UserByID(testCtx(t), sam.ID)
	if !containsStr(gotComment.Likes, sam.ID) || !containsStr(gotUser.LikedComments, c.ID) {
		t.Fatalf("comment like not mirrored: comment=%v user=%v", gotComment.Likes, gotUser.LikedComments)
	}

	if _, err := m.ToggleCommentLike(testCtx(t), primitive.NewObjectID().Hex(), sam.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("ghost comment: want ErrNotFound, got %v", err)
	}
}

// --- Тумбстоуны при удалении аккаунта ---

func TestTombstoneUserEvents_Idempotent(t *testing.T) {
	cfg := newTestConfig(t)
	m := mustNewMongo(t, cfg)

	tina := createUser(t, m, "tina")
	uma := createUser(t, m, "uma")
	event := createEvent(t, m, tina.ID, "to tombstone")

	// Наполняем вовлечённость, чтобы проверить её очистку.
	if _, err := m.ToggleEventLike(testCtx(t), event.ID, uma.ID); err != nil {
		t.Fatalf("ToggleEventLike error: %v", err)
	}

	if err := m.TombstoneUserEvents(testCtx(t), tina.ID); err != nil {
		t.Fatalf("TombstoneUserEvents error: %v", err)
	}

	got, err := m.EventByID(testCtx(t), event.ID)
	if err != nil {
		t.Fatalf("tombstoned event must stay resolvable: %v", err)
	}

	if got.Name != models.TombstoneEventName {
		t.Fatalf("Name = %q, want %q", got.Name, models.TombstoneEventName)
	}
	if got.Text != models.TombstoneText {
		t.Fatalf("Text = %q, want %q", got.Text, models.TombstoneText)
	}
	if len(got.Likes) != 0 || len(got.Attending) != 0 || len(got.Comments) != 0 {
		t.Fatalf("engagement not cleared: %+v", got)
	}
	if got.Published {
		t.Fatal("tombstoned event must be unpublished")
	}

	// Повторный вызов — no-op без ошибки.
	if err := m.TombstoneUserEvents(testCtx(t), tina.ID); err != nil {
		t.Fatalf("second TombstoneUserEvents error: %v", err)
	}

	// Пользователь без событий — тоже no-op.
	if err := m.TombstoneUserEvents(testCtx(t), uma.ID); err != nil {
		t.Fatalf("no-events TombstoneUserEvents error: %v", err)
	}
}

func TestTombstoneUserComments(t *testing.T) {
	cfg := newTestConfig(t)
	m := mustNewMongo(t, cfg)

	vera := createUser(t, m, "vera")
	walt := createUser(t, m, "walt")
	event := createEvent(t, m, walt.ID, "discussion")

	mine := createComment(t, m, vera.ID, event.ID, "", "my take")
	theirs := createComment(t, m, walt.ID, event.ID, "", "their take")

	if err := m.TombstoneUserComments(testCtx(t), vera.ID); err != nil {
		t.Fatalf("TombstoneUserComments error: %v", err)
	}

	gotMine, err := m.CommentByID(testCtx(t), mine.ID)
	if err != nil {
		t.Fatalf("tombstoned comment must stay resolvable: %v", err)
	}
	if gotMine.Text != models.TombstoneText || gotMine.Published {
		t.Fatalf("comment not tombstoned: %+v", gotMine)
	}

	gotTheirs, err := m.CommentByID(testCtx(t), theirs.ID)
	if err != nil {
		t.Fatalf("CommentByID error: %v", err)
	}
	if gotTheirs.Text != "their take" || !gotTheirs.Published {
		t.Fatalf("foreign comment touched: %+v", gotTheirs)
	}
}

// Полный сценарий удаления аккаунта на уровне стораджа:
// DeleteUser + TombstoneUserEvents + TombstoneUserComments.
func TestAccountDeletion_StorageCascade(t *testing.T) {
	cfg := newTestConfig(t)
	m := mustNewMongo(t, cfg)

	xena := createUser(t, m, "xena")
	yuri := createUser(t, m, "yuri")

	event := createEvent(t, m, xena.ID, "xena's event")
	comment := createComment(t, m, xena.ID, event.ID, "", "xena's comment")
	reply := createComment(t, m, yuri.ID, event.ID, comment.ID, "yuri's reply")

	if err := m.DeleteUser(testCtx(t), xena.ID); err != nil {
		t.Fatalf("DeleteUser error: %v", err)
	}
	if err := m.TombstoneUserEvents(testCtx(t), xena.ID); err != nil {
		t.Fatalf("TombstoneUserEvents error: %v", err)
	}
	if err := m.TombstoneUserComments(testCtx(t), xena.ID); err != nil {
		t.Fatalf("TombstoneUserComments error: %v", err)
	}

	if _, err := m.UserByID(testCtx(t), xena.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("deleted user lookup: want ErrNotFound, got %v", err)
	}

	// Событие и комментарий остаются разрешимыми тумбстоунами.
	gotEvent, err := m.EventByID(testCtx(t), event.ID)
	if err != nil || gotEvent.Name != models.TombstoneEventName {
		t.Fatalf("event tombstone: %+v / %v", gotEvent, err)
	}

	gotComment, err := m.CommentByID(testCtx(t), comment.ID)
	if err != nil || gotComment.Text != models.TombstoneText {
		t.Fatalf("comment tombstone: %+v / %v", gotComment, err)
	}

	// Чужой ответ не тронут и его ссылка на родителя по-прежнему разрешима.
	gotReply, err := m.CommentByID(testCtx(t), reply.ID)
	if err != nil || gotReply.Text != "yuri's reply" || gotReply.ReplyToID != comment.ID {
		t.Fatalf("reply mangled: %+v / %v", gotReply, err)
	}

	// Повторное удаление пользователя — ErrNotFound (сервис его толерирует).
	if err := m.DeleteUser(testCtx(t), xena.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("double DeleteUser: want ErrNotFound, got %v", err)
	}
}
