package mongo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/campusfinds/comments-service/internal/config"
	"github.com/campusfinds/comments-service/internal/models"
	"github.com/campusfinds/comments-service/internal/storage"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// testTimeout — общий дедлайн на операции с БД в тестах.
const testTimeout = 10 * time.Second

// TestMain запускает MongoDB в контейнере один раз на весь пакет тестов.
// Адрес контейнера прокидывается в ENV DATABASE_URL, а каждый тест
// создаёт свою БД с уникальным именем (см. newTestConfig).
// Интеграционные тесты выполняются только при GO_TEST_INTEGRATION=1.
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

	dbName := "comments_test_" + uuid.New().String()
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
			DefaultPage:  1,
			DefaultLimit: 10,
			MaxLimit:     100,
		},
	}
}

// mustNewMongo создаёт подключение к тестовой БД и регистрирует очистку.
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

// mustCreate — быстрый хелпер для вставки комментария.
func mustCreate(t *testing.T, m *Mongo, comm models.Comment) *models.Comment {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	out, err := m.CreateComment(ctx, comm)
	if err != nil {
		t.Fatalf("CreateComment error: %v", err)
	}

	return out
}

// TestCreateRootComment_SetsDefaults — корень: ID, is_reply=false,
// пустой parent_id, пустые liker_ids, проставленные времена.
func TestCreateRootComment_SetsDefaults(t *testing.T) {
	m := mustNewMongo(t, newTestConfig(t))

	out := mustCreate(t, m, models.Comment{
		ItemID:   uuid.New(),
		AuthorID: uuid.New(),
		Content:  "нашёл ваш пропуск у столовой",
	})

	if out.ID == "" {
		t.Fatalf("expected generated ID")
	}

	if out.IsReply {
		t.Fatalf("root IsReply must be false")
	}

	if out.ParentID != "" {
		t.Fatalf("root ParentID must be empty, got %q", out.ParentID)
	}

	if len(out.LikerIDs) != 0 {
		t.Fatalf("new comment LikerIDs must be empty, got %v", out.LikerIDs)
	}

	if out.IsEdited || out.EditedAt != nil {
		t.Fatalf("new comment must not be marked edited")
	}

	if out.CreatedAt.IsZero() || out.UpdatedAt.IsZero() {
		t.Fatalf("timestamps must be set")
	}
}

// TestCreateReply_ForcesItemAndFlags — ответ наследует item_id родителя
// и получает is_reply=true.
func TestCreateReply_ForcesItemAndFlags(t *testing.T) {
	m := mustNewMongo(t, newTestConfig(t))

	root := mustCreate(t, m, models.Comment{
		ItemID:   uuid.New(),
		AuthorID: uuid.New(),
		Content:  "root",
	})

	reply := mustCreate(t, m, models.Comment{
		// Даже если item_id «левый» — в ответе он обязан совпасть с родителем.
		ItemID:   uuid.New(),
		ParentID: root.ID,
		AuthorID: uuid.New(),
		Content:  "reply",
	})

	if !reply.IsReply {
		t.Fatalf("reply.IsReply must be true")
	}

	if reply.ParentID != root.ID {
		t.Fatalf("reply.ParentID = %q, want %q", reply.ParentID, root.ID)
	}

	if reply.ItemID != root.ItemID {
		t.Fatalf("reply.ItemID = %s, want %s", reply.ItemID, root.ItemID)
	}
}

// TestCreateReply_ParentNotFound — валидный hex без документа.
func TestCreateReply_ParentNotFound(t *testing.T) {
	m := mustNewMongo(t, newTestConfig(t))

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	_, err := m.CreateComment(ctx, models.Comment{
		ParentID: "65e0a0c9fd2f000000000000",
		AuthorID: uuid.New(),
		Content:  "orphan",
	})

	if !errors.Is(err, storage.ErrParentNotFound) {
		t.Fatalf("want ErrParentNotFound, got %v", err)
	}
}

// TestCreateReply_ParentIsReply — ответ на ответ запрещён.
func TestCreateReply_ParentIsReply(t *testing.T) {
	m := mustNewMongo(t, newTestConfig(t))

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	root := mustCreate(t, m, models.Comment{
		ItemID:   uuid.New(),
		AuthorID: uuid.New(),
		Content:  "root",
	})

	reply := mustCreate(t, m, models.Comment{
		ParentID: root.ID,
		AuthorID: uuid.New(),
		Content:  "reply",
	})

	_, err := m.CreateComment(ctx, models.Comment{
		ParentID: reply.ID,
		AuthorID: uuid.New(),
		Content:  "reply to reply",
	})

	if !errors.Is(err, storage.ErrParentIsReply) {
		t.Fatalf("want ErrParentIsReply, got %v", err)
	}
}

// TestUpdateContent_SetsEditFlags — текст/упоминания заменяются,
// is_edited/edited_at выставляются.
func TestUpdateContent_SetsEditFlags(t *testing.T) {
	m := mustNewMongo(t, newTestConfig(t))

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	out := mustCreate(t, m, models.Comment{
		ItemID:   uuid.New(),
		AuthorID: uuid.New(),
		Content:  "original",
	})

	mentioned := []uuid.UUID{uuid.New()}

	updated, err := m.UpdateContent(ctx, out.ID, "edited @alice", mentioned)
	if err != nil {
		t.Fatalf("UpdateContent error: %v", err)
	}

	if updated.Content != "edited @alice" {
		t.Fatalf("Content = %q, want %q", updated.Content, "edited @alice")
	}

	if !updated.IsEdited || updated.EditedAt == nil {
		t.Fatalf("edit flags not set: IsEdited=%v EditedAt=%v", updated.IsEdited, updated.EditedAt)
	}

	if len(updated.MentionedIDs) != 1 || updated.MentionedIDs[0] != mentioned[0] {
		t.Fatalf("MentionedIDs = %v, want %v", updated.MentionedIDs, mentioned)
	}

	if !updated.UpdatedAt.After(out.UpdatedAt) && !updated.UpdatedAt.Equal(out.UpdatedAt) {
		t.Fatalf("UpdatedAt must be monotonic")
	}
}

// TestDeleteComment_CascadesForRoot — корень + 2 ответа = 3 удалённых;
// удаление ответа не трогает родителя и соседей.
func TestDeleteComment_CascadesForRoot(t *testing.T) {
	m := mustNewMongo(t, newTestConfig(t))

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	root := mustCreate(t, m, models.Comment{
		ItemID:   uuid.New(),
		AuthorID: uuid.New(),
		Content:  "root",
	})
	first := mustCreate(t, m, models.Comment{ParentID: root.ID, AuthorID: uuid.New(), Content: "r1"})
	_ = mustCreate(t, m, models.Comment{ParentID: root.ID, AuthorID: uuid.New(), Content: "r2"})

	// Удаление одного ответа.
	deleted, err := m.DeleteComment(ctx, first.ID)
	if err != nil {
		t.Fatalf("DeleteComment(reply) error: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("deleted = %d, want 1", deleted)
	}

	if _, err := m.CommentByID(ctx, root.ID); err != nil {
		t.Fatalf("root must survive reply deletion: %v", err)
	}

	// Каскадное удаление корня с оставшимся ответом.
	deleted, err = m.DeleteComment(ctx, root.ID)
	if err != nil {
		t.Fatalf("DeleteComment(root) error: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("deleted = %d, want 2 (root + 1 reply)", deleted)
	}

	if _, err := m.CommentByID(ctx, root.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("root must be gone, got %v", err)
	}
}

// TestDeleteComment_NotFound — повторное удаление.
func TestDeleteComment_NotFound(t *testing.T) {
	m := mustNewMongo(t, newTestConfig(t))

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	if _, err := m.DeleteComment(ctx, "65e0a0c9fd2f000000000000"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

// TestToggleLike_Involution — два вызова одного актора возвращают
// состояние к исходному; счётчик точен при нескольких лайкерах.
func TestToggleLike_Involution(t *testing.T) {
	m := mustNewMongo(t, newTestConfig(t))

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	out := mustCreate(t, m, models.Comment{
		ItemID:   uuid.New(),
		AuthorID: uuid.New(),
		Content:  "likeable",
	})

	actor := uuid.New()
	other := uuid.New()

	state, err := m.ToggleLike(ctx, out.ID, other)
	if err != nil {
		t.Fatalf("ToggleLike(other) error: %v", err)
	}
	if !state.Liked || state.LikeCount != 1 {
		t.Fatalf("other like: %+v, want liked=true count=1", state)
	}

	state, err = m.ToggleLike(ctx, out.ID, actor)
	if err != nil {
		t.Fatalf("ToggleLike(actor) error: %v", err)
	}
	if !state.Liked || state.LikeCount != 2 {
		t.Fatalf("actor like: %+v, want liked=true count=2", state)
	}

	state, err = m.ToggleLike(ctx, out.ID, actor)
	if err != nil {
		t.Fatalf("ToggleLike(actor, repeat) error: %v", err)
	}
	if state.Liked || state.LikeCount != 1 {
		t.Fatalf("actor unlike: %+v, want liked=false count=1", state)
	}
}

// TestToggleLike_NotFound — несуществующий комментарий.
func TestToggleLike_NotFound(t *testing.T) {
	m := mustNewMongo(t, newTestConfig(t))

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	if _, err := m.ToggleLike(ctx, "65e0a0c9fd2f000000000000", uuid.New()); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

// TestListByItem_OrderAndFilter — только корни, сначала новые;
// includeReplies добавляет ответы; ответы чужого объявления не попадают.
func TestListByItem_OrderAndFilter(t *testing.T) {
	m := mustNewMongo(t, newTestConfig(t))

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	itemID := uuid.New()
	otherItem := uuid.New()

	first := mustCreate(t, m, models.Comment{ItemID: itemID, AuthorID: uuid.New(), Content: "first"})
	time.Sleep(5 * time.Millisecond)
	second := mustCreate(t, m, models.Comment{ItemID: itemID, AuthorID: uuid.New(), Content: "second"})
	_ = mustCreate(t, m, models.Comment{ParentID: first.ID, AuthorID: uuid.New(), Content: "reply"})
	_ = mustCreate(t, m, models.Comment{ItemID: otherItem, AuthorID: uuid.New(), Content: "elsewhere"})

	roots, err := m.ListByItem(ctx, itemID, false, storage.Window{Skip: 0, Limit: 10})
	if err != nil {
		t.Fatalf("ListByItem(roots) error: %v", err)
	}

	if len(roots) != 2 {
		t.Fatalf("roots len = %d, want 2", len(roots))
	}

	if roots[0].ID != second.ID || roots[1].ID != first.ID {
		t.Fatalf("roots order: got [%s %s], want newest-first [%s %s]",
			roots[0].ID, roots[1].ID, second.ID, first.ID)
	}

	for _, c := range roots {
		if c.IsReply {
			t.Fatalf("roots-only listing must not contain replies")
		}
	}

	all, err := m.ListByItem(ctx, itemID, true, storage.Window{Skip: 0, Limit: 10})
	if err != nil {
		t.Fatalf("ListByItem(all) error: %v", err)
	}

	if len(all) != 3 {
		t.Fatalf("all len = %d, want 3", len(all))
	}

	totalRoots, err := m.CountByItem(ctx, itemID, false)
	if err != nil || totalRoots != 2 {
		t.Fatalf("CountByItem(roots) = %d, %v; want 2", totalRoots, err)
	}

	totalAll, err := m.CountByItem(ctx, itemID, true)
	if err != nil || totalAll != 3 {
		t.Fatalf("CountByItem(all) = %d, %v; want 3", totalAll, err)
	}
}

// TestListReplies_OldestFirst — ответы в ветке по возрастанию created_at.
func TestListReplies_OldestFirst(t *testing.T) {
	m := mustNewMongo(t, newTestConfig(t))

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	root := mustCreate(t, m, models.Comment{ItemID: uuid.New(), AuthorID: uuid.New(), Content: "root"})
	first := mustCreate(t, m, models.Comment{ParentID: root.ID, AuthorID: uuid.New(), Content: "r1"})
	time.Sleep(5 * time.Millisecond)
	second := mustCreate(t, m, models.Comment{ParentID: root.ID, AuthorID: uuid.New(), Content: "r2"})

	replies, err := m.ListReplies(ctx, root.ID, storage.Window{Skip: 0, Limit: 10})
	if err != nil {
		t.Fatalf("ListReplies error: %v", err)
	}

	if len(replies) != 2 {
		t.Fatalf("replies len = %d, want 2", len(replies))
	}

	if replies[0].ID != first.ID || replies[1].ID != second.ID {
		t.Fatalf("replies order: got [%s %s], want oldest-first [%s %s]",
			replies[0].ID, replies[1].ID, first.ID, second.ID)
	}

	counts, err := m.ReplyCounts(ctx, []string{root.ID, "65e0a0c9fd2f000000000000"})
	if err != nil {
		t.Fatalf("ReplyCounts error: %v", err)
	}

	if counts[root.ID] != 2 {
		t.Fatalf("ReplyCounts[root] = %d, want 2", counts[root.ID])
	}

	if _, ok := counts["65e0a0c9fd2f000000000000"]; ok {
		t.Fatalf("ветки без ответов не должны попадать в карту")
	}
}

// TestListByAuthorAndMentioning — выборки по автору и по упоминаниям.
func TestListByAuthorAndMentioning(t *testing.T) {
	m := mustNewMongo(t, newTestConfig(t))

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	author := uuid.New()
	mentioned := uuid.New()

	root := mustCreate(t, m, models.Comment{
		ItemID:       uuid.New(),
		AuthorID:     author,
		Content:      "hi @somebody",
		MentionedIDs: []uuid.UUID{mentioned},
	})
	_ = mustCreate(t, m, models.Comment{ParentID: root.ID, AuthorID: author, Content: "self reply"})
	_ = mustCreate(t, m, models.Comment{ItemID: uuid.New(), AuthorID: uuid.New(), Content: "stranger"})

	byAuthor, err := m.ListByAuthor(ctx, author, storage.Window{Skip: 0, Limit: 10})
	if err != nil {
		t.Fatalf("ListByAuthor error: %v", err)
	}

	// И корни, и ответы автора.
	if len(byAuthor) != 2 {
		t.Fatalf("byAuthor len = %d, want 2", len(byAuthor))
	}

	totalByAuthor, err := m.CountByAuthor(ctx, author)
	if err != nil || totalByAuthor != 2 {
		t.Fatalf("CountByAuthor = %d, %v; want 2", totalByAuthor, err)
	}

	mentioning, err := m.ListMentioning(ctx, mentioned, storage.Window{Skip: 0, Limit: 10})
	if err != nil {
		t.Fatalf("ListMentioning error: %v", err)
	}

	if len(mentioning) != 1 || mentioning[0].ID != root.ID {
		t.Fatalf("mentioning = %v, want only root", mentioning)
	}

	totalMentioning, err := m.CountMentioning(ctx, mentioned)
	if err != nil || totalMentioning != 1 {
		t.Fatalf("CountMentioning = %d, %v; want 1", totalMentioning, err)
	}
}
