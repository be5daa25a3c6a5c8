package history

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbruun/whisp/internal/domain"
	"github.com/nbruun/whisp/internal/logging"
	"github.com/nbruun/whisp/internal/store"
)

func testStore(t *testing.T) (*Store, *store.MessageRepository) {
	t.Helper()
	db, err := store.Open(":memory:", logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := store.NewMessageRepository(db)
	return NewStore(repo, logging.Nop()), repo
}

func TestSaveExchange_WritesTwoTurns(t *testing.T) {
	s, repo := testStore(t)
	ctx := context.Background()

	s.SaveExchange(ctx, "_1555_s_whatsapp_net", "Hi", "Hello! How can I help?")

	msgs, err := repo.FindByUserID(ctx, "_1555_s_whatsapp_net")
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, domain.SenderUser, msgs[0].Sender)
	assert.Equal(t, "Hi", msgs[0].Body)
	assert.Equal(t, domain.SenderModel, msgs[1].Sender)
	assert.Equal(t, "Hello! How can I help?", msgs[1].Body)
	assert.Equal(t, msgs[0].UserID, msgs[1].UserID)
	assert.Equal(t, int64(0), s.DroppedWrites())
}

func TestSaveExchange_ConcurrentUsersKeepBothExchanges(t *testing.T) {
	s, repo := testStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, userID := range []string{"u1", "u2"} {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			s.SaveExchange(ctx, userID, "hi from "+userID, "hello "+userID)
		}(userID)
	}
	wg.Wait()

	assert.Equal(t, int64(0), s.DroppedWrites(), "overlapping writers must queue, not fail")
	for _, userID := range []string{"u1", "u2"} {
		msgs, err := repo.FindByUserID(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, msgs, 2)
	}
}

func TestLoad_EmptyForUnknownUser(t *testing.T) {
	s, _ := testStore(t)
	assert.Empty(t, s.Load(context.Background(), "nobody"))
	assert.Equal(t, int64(0), s.DegradedReads())
}

func TestLoad_DegradesOnReadFailure(t *testing.T) {
	db, err := store.Open(":memory:", logging.Nop())
	require.NoError(t, err)
	repo := store.NewMessageRepository(db)
	s := NewStore(repo, logging.Nop())

	// Closing the database forces read failures.
	require.NoError(t, db.Close())

	got := s.Load(context.Background(), "u1")
	assert.Empty(t, got)
	assert.Equal(t, int64(1), s.DegradedReads())
}

func TestSaveExchange_DropsOnWriteFailure(t *testing.T) {
	db, err := store.Open(":memory:", logging.Nop())
	require.NoError(t, err)
	repo := store.NewMessageRepository(db)
	s := NewStore(repo, logging.Nop())

	require.NoError(t, db.Close())

	s.SaveExchange(context.Background(), "u1", "hi", "hello")
	assert.Equal(t, int64(1), s.DroppedWrites())
}

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	chunks := Split("hello there", 5, 100)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello there", chunks[0])
}

func TestSplit_WrapsLongLines(t *testing.T) {
	chunks := Split("aaa bbb ccc", 5, 7)
	require.Len(t, chunks, 1)
	assert.Equal(t, "aaa bbb\nccc", chunks[0])
}

func TestSplit_GroupsLinesIntoChunks(t *testing.T) {
	text := strings.Join([]string{"one", "two", "three", "four", "five", "six", "seven"}, "\n")
	chunks := Split(text, 3, 100)
	require.Len(t, chunks, 3)
	assert.Equal(t, "one\ntwo\nthree", chunks[0])
	assert.Equal(t, "four\nfive\nsix", chunks[1])
	assert.Equal(t, "seven", chunks[2])
}

func TestSplit_EmptyText(t *testing.T) {
	assert.Empty(t, Split("", 5, 100))
}
