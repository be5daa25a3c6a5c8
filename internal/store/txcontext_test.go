package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbruun/whisp/internal/domain"
	"github.com/nbruun/whisp/internal/logging"
)

func TestSession_OutsideTransaction(t *testing.T) {
	db := testDB(t)
	assert.Same(t, db.SQL(), db.Session(context.Background()))
	assert.False(t, db.InTransaction(context.Background()))
}

func TestRunInTransaction_Commits(t *testing.T) {
	db := testDB(t)
	repo := NewMessageRepository(db)

	err := db.RunInTransaction(context.Background(), func(ctx context.Context) error {
		_, err := repo.Save(ctx, &domain.Message{Sender: domain.SenderUser, UserID: "u1", Body: "hi", ReceivedAt: time.Now()})
		return err
	})
	require.NoError(t, err)

	msgs, err := repo.FindByUserID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestRunInTransaction_RollsBackOnError(t *testing.T) {
	db := testDB(t)
	repo := NewMessageRepository(db)
	boom := errors.New("boom")

	err := db.RunInTransaction(context.Background(), func(ctx context.Context) error {
		if _, err := repo.Save(ctx, &domain.Message{Sender: domain.SenderUser, UserID: "u1", Body: "hi", ReceivedAt: time.Now()}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	msgs, err := repo.FindByUserID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, msgs, "rolled back write must not be visible")
}

func TestRunInTransaction_RollsBackOnPanic(t *testing.T) {
	db := testDB(t)
	repo := NewMessageRepository(db)

	require.Panics(t, func() {
		_ = db.RunInTransaction(context.Background(), func(ctx context.Context) error {
			_, _ = repo.Save(ctx, &domain.Message{Sender: domain.SenderUser, UserID: "u1", Body: "hi", ReceivedAt: time.Now()})
			panic("boom")
		})
	})

	msgs, err := repo.FindByUserID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestRunInTransaction_NestedJoinsOuterSession(t *testing.T) {
	db := testDB(t)

	var outer, inner Querier
	err := db.RunInTransaction(context.Background(), func(ctx context.Context) error {
		outer = db.Session(ctx)
		return db.RunInTransaction(ctx, func(ctx context.Context) error {
			inner = db.Session(ctx)
			return nil
		})
	})
	require.NoError(t, err)
	assert.Same(t, outer, inner, "nested unit of work must reuse the ambient session")
}

func TestRunInTransaction_IndependentChainsDoNotShareSessions(t *testing.T) {
	db := testDB(t)

	var mu sync.Mutex
	sessions := make(map[Querier]bool)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = db.RunInTransaction(context.Background(), func(ctx context.Context) error {
				mu.Lock()
				sessions[db.Session(ctx)] = true
				mu.Unlock()
				return nil
			})
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Len(t, sessions, 2, "each chain must observe only its own session")
}

func TestRunInTransaction_ConcurrentWritersBothCommit(t *testing.T) {
	for name, open := range map[string]func(t *testing.T) *DB{
		"in-memory": testDB,
		"file": func(t *testing.T) *DB {
			db, err := Open(filepath.Join(t.TempDir(), "whisp.db"), logging.Nop())
			require.NoError(t, err)
			t.Cleanup(func() { db.Close() })
			return db
		},
	} {
		t.Run(name, func(t *testing.T) {
			db := open(t)
			repo := NewMessageRepository(db)

			var wg sync.WaitGroup
			errs := make([]error, 2)
			for i, userID := range []string{"u1", "u2"} {
				wg.Add(1)
				go func(i int, userID string) {
					defer wg.Done()
					errs[i] = db.RunInTransaction(context.Background(), func(ctx context.Context) error {
						return repo.SaveAll(ctx, []*domain.Message{
							{Sender: domain.SenderUser, UserID: userID, Body: "hi", ReceivedAt: time.Now()},
							{Sender: domain.SenderModel, UserID: userID, Body: "hello", ReceivedAt: time.Now()},
						})
					})
				}(i, userID)
			}
			wg.Wait()

			require.NoError(t, errs[0])
			require.NoError(t, errs[1])
			for _, userID := range []string{"u1", "u2"} {
				msgs, err := repo.FindByUserID(context.Background(), userID)
				require.NoError(t, err)
				assert.Len(t, msgs, 2, "neither writer's exchange may be dropped")
			}
		})
	}
}

func TestRunInTransaction_BindingDoesNotLeak(t *testing.T) {
	db := testDB(t)

	ctx := context.Background()
	err := db.RunInTransaction(ctx, func(inner context.Context) error {
		assert.True(t, db.InTransaction(inner))
		return nil
	})
	require.NoError(t, err)
	assert.False(t, db.InTransaction(ctx), "outer context must stay unbound")
}
