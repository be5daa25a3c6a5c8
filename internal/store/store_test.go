package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbruun/whisp/internal/domain"
	"github.com/nbruun/whisp/internal/logging"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:", logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// --- DB/Migration tests ---

func TestOpen_InMemory(t *testing.T) {
	db := testDB(t)
	assert.NotNil(t, db)
	assert.NotNil(t, db.SQL())
}

func TestMigrations_Applied(t *testing.T) {
	db := testDB(t)

	var count int
	err := db.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), count)
}

func TestMigrations_Idempotent(t *testing.T) {
	db := testDB(t)

	err := db.migrate()
	require.NoError(t, err)

	var count int
	err = db.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), count)
}

func TestSchema_TablesExist(t *testing.T) {
	db := testDB(t)

	for _, table := range []string{"messages", "memories"} {
		var name string
		err := db.sql.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

// --- Repository tests ---

func TestMessageRepository_SaveAndFind(t *testing.T) {
	db := testDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	saved, err := repo.Save(ctx, &domain.Message{
		Sender:     domain.SenderUser,
		UserID:     "_1555_s_whatsapp_net",
		Body:       "Hi",
		StubType:   "text",
		ReceivedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	found, err := repo.FindOne(ctx, saved.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Hi", found.Body)
	assert.Equal(t, domain.SenderUser, found.Sender)
	assert.Empty(t, found.StubParameters)
}

func TestRepository_FindOne_Absent(t *testing.T) {
	db := testDB(t)
	repo := NewMessageRepository(db)

	found, err := repo.FindOne(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestMessageRepository_FindByUserID_Ordered(t *testing.T) {
	db := testDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()
	now := time.Now()

	// Same timestamp: insertion order must win
	_, err := repo.Save(ctx, &domain.Message{Sender: domain.SenderUser, UserID: "u1", Body: "first", ReceivedAt: now})
	require.NoError(t, err)
	_, err = repo.Save(ctx, &domain.Message{Sender: domain.SenderModel, UserID: "u1", Body: "second", ReceivedAt: now})
	require.NoError(t, err)
	_, err = repo.Save(ctx, &domain.Message{Sender: domain.SenderUser, UserID: "u2", Body: "other user", ReceivedAt: now})
	require.NoError(t, err)

	msgs, err := repo.FindByUserID(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Body)
	assert.Equal(t, "second", msgs[1].Body)
}

func TestMessageRepository_OrderedAcrossPrecisionAndZones(t *testing.T) {
	db := testDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	// Chronological order: a non-UTC offset time (23:30:00Z), a whole
	// second, a fractional time within that same second, the next second.
	berlin := time.FixedZone("CEST", 2*60*60)
	times := []time.Time{
		time.Date(2026, 3, 29, 1, 30, 0, 0, berlin),
		time.Date(2026, 3, 28, 23, 45, 0, 0, time.UTC),
		time.Date(2026, 3, 28, 23, 45, 0, 500_000_000, time.UTC),
		time.Date(2026, 3, 28, 23, 45, 1, 0, time.UTC),
	}

	// Inserted out of order so rowid cannot mask a string-ordering bug.
	for _, i := range []int{2, 0, 3, 1} {
		_, err := repo.Save(ctx, &domain.Message{
			Sender:     domain.SenderUser,
			UserID:     "u1",
			Body:       string(rune('a' + i)),
			ReceivedAt: times[i],
		})
		require.NoError(t, err)
	}

	msgs, err := repo.FindByUserID(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	for i, msg := range msgs {
		assert.Equal(t, string(rune('a'+i)), msg.Body, "position %d", i)
		assert.True(t, msg.ReceivedAt.Equal(times[i]), "round-trip must preserve the instant at %d", i)
	}
}

func TestRepository_Update_Merges(t *testing.T) {
	db := testDB(t)
	repo := NewMemoryRepository(db)
	ctx := context.Background()

	saved, err := repo.Save(ctx, &domain.Memory{
		UserID:    "u1",
		Title:     "Coffee",
		Content:   "likes espresso",
		Tags:      []string{"food"},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
	require.NoError(t, err)

	updated, err := repo.Update(ctx, saved.ID, func(m *domain.Memory) {
		m.Content = "switched to filter coffee"
	})
	require.NoError(t, err)
	assert.Equal(t, "switched to filter coffee", updated.Content)
	assert.Equal(t, "Coffee", updated.Title, "unpatched fields survive the merge")

	found, err := repo.FindOne(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "switched to filter coffee", found.Content)
}

func TestRepository_Update_MissingKey(t *testing.T) {
	db := testDB(t)
	repo := NewMemoryRepository(db)

	_, err := repo.Update(context.Background(), "missing", func(m *domain.Memory) {})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_Delete_Idempotent(t *testing.T) {
	db := testDB(t)
	repo := NewMemoryRepository(db)
	ctx := context.Background()

	saved, err := repo.Save(ctx, &domain.Memory{UserID: "u1", Title: "t", Content: "c"})
	require.NoError(t, err)

	removed, err := repo.Delete(ctx, saved.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(ctx, saved.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestMemoryRepository_FindLatestByUserID(t *testing.T) {
	db := testDB(t)
	repo := NewMemoryRepository(db)
	ctx := context.Background()

	latest, err := repo.FindLatestByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, latest)

	base := time.Now()
	_, err = repo.Save(ctx, &domain.Memory{UserID: "u1", Title: "old", Content: "c", CreatedAt: base})
	require.NoError(t, err)
	_, err = repo.Save(ctx, &domain.Memory{UserID: "u1", Title: "new", Content: "c", CreatedAt: base.Add(time.Second)})
	require.NoError(t, err)

	latest, err = repo.FindLatestByUserID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "new", latest.Title)
}
