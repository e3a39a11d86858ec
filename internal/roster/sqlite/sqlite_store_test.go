package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spelling-bee/internal/roster"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
		_ = os.Remove(path)
		_ = os.Remove(path + "-wal")
		_ = os.Remove(path + "-shm")
		_ = os.Remove(path + "-journal")
	})
	return store
}

func TestSQLiteStoreDefaultsMaxNumber(t *testing.T) {
	store := newTestSQLiteStore(t)

	value, err := store.GetMaxNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, roster.DefaultMaxNumber, value)
}

func TestSQLiteStoreSetMaxNumberSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.SetMaxNumber(ctx, 42))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	value, err := reopened.GetMaxNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, 42, value, "start-up must not reset an existing setting")
}

func TestSQLiteStoreRejectsMaxNumberAboveLimit(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	assert.Error(t, store.SetMaxNumber(ctx, roster.MaxNumberLimit+1))
	assert.Error(t, store.SetMaxNumber(ctx, 0))

	value, err := store.GetMaxNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, roster.DefaultMaxNumber, value)
}

func TestSQLiteStoreListOrders(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	for _, s := range []roster.Student{
		{Name: "Carol", School: "Hay", Points: 2},
		{Name: "alice", School: "Lincoln", Points: 5},
		{Name: "Bob", School: "Hay", Points: 5},
	} {
		_, err := store.CreateStudent(ctx, s)
		require.NoError(t, err)
	}

	leaderboard, err := store.ListStudents(ctx, roster.OrderLeaderboard)
	require.NoError(t, err)
	require.Len(t, leaderboard, 3)
	assert.Equal(t, []string{"Bob", "alice", "Carol"}, names(leaderboard))

	byName, err := store.ListStudents(ctx, roster.OrderName)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob", "Carol", "alice"}, names(byName))
}

func TestSQLiteStoreDeleteMissingStudent(t *testing.T) {
	store := newTestSQLiteStore(t)

	err := store.DeleteStudent(context.Background(), 99)
	assert.ErrorIs(t, err, roster.ErrStudentNotFound)
}

func TestSQLiteStoreAwardPoint(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	created, err := store.CreateStudent(ctx, roster.Student{Name: "Sam", School: "Hay", Points: 3})
	require.NoError(t, err)

	updated, err := store.AwardPoint(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Points)

	_, err = store.AwardPoint(ctx, created.ID+100)
	assert.ErrorIs(t, err, roster.ErrStudentNotFound)

	eliminated, err := store.ListEliminated(ctx)
	require.NoError(t, err)
	assert.Empty(t, eliminated)
}

func TestSQLiteStoreEliminateMovesStudent(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	created, err := store.CreateStudent(ctx, roster.Student{Name: "Sam", School: "Hay", Points: 3})
	require.NoError(t, err)

	snapshot, err := store.EliminateStudent(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sam", snapshot.Name)
	assert.Equal(t, 3, snapshot.Points)

	_, err = store.GetStudent(ctx, created.ID)
	assert.ErrorIs(t, err, roster.ErrStudentNotFound)

	_, err = store.EliminateStudent(ctx, created.ID)
	assert.ErrorIs(t, err, roster.ErrStudentNotFound)

	eliminated, err := store.ListEliminated(ctx)
	require.NoError(t, err)
	require.Len(t, eliminated, 1)
	assert.Equal(t, 3, eliminated[0].Points)
	assert.False(t, eliminated[0].EliminatedAt.IsZero())
}

func TestSQLiteStoreConcurrentEliminationCreatesOneSnapshot(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	created, err := store.CreateStudent(ctx, roster.Student{Name: "Sam", School: "Hay", Points: 1})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.EliminateStudent(ctx, created.ID)
		}()
	}
	wg.Wait()

	eliminated, err := store.ListEliminated(ctx)
	require.NoError(t, err)
	assert.Len(t, eliminated, 1)
}

func TestSQLiteStoreCreateStudentsIsAtomic(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := store.CreateStudents(ctx, []roster.Student{
		{Name: "Alice", School: "Lincoln"},
		{Name: "", School: "broken"},
	})
	require.Error(t, err, "empty name violates the CHECK constraint")

	students, err := store.ListStudents(ctx, roster.OrderName)
	require.NoError(t, err)
	assert.Empty(t, students)

	count, err := store.CreateStudents(ctx, []roster.Student{
		{Name: "Alice", School: "Lincoln", Points: 5},
		{Name: "Bob", School: "Hay"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func names(students []roster.Student) []string {
	out := make([]string, 0, len(students))
	for _, s := range students {
		out = append(out, s.Name)
	}
	return out
}
