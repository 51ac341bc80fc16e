package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/chronicle/internal/game/character"
	"github.com/cory-johannsen/chronicle/internal/game/turn"
	"github.com/cory-johannsen/chronicle/internal/game/world"
	"github.com/cory-johannsen/chronicle/internal/storage"
	"github.com/cory-johannsen/chronicle/internal/storage/postgres"
	"github.com/cory-johannsen/chronicle/internal/testutil"
)

func setupRepo(t *testing.T) *postgres.SnapshotRepository {
	t.Helper()
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	return postgres.NewSnapshotRepository(pc.RawPool, zaptest.NewLogger(t))
}

func snapshot(t *testing.T, n int) turn.Context {
	t.Helper()
	m, err := world.NewMap(world.Location{ID: "loc-1", Name: "Square"})
	require.NoError(t, err)
	return turn.Context{
		Turn:              n,
		Map:               m,
		CurrentLocationID: "loc-1",
		Visited:           []string{"loc-1"},
		World:             turn.WorldState{Minutes: int64(n) * 60, Weather: "clear"},
		Party: []character.Player{{Sheet: character.Sheet{
			ID: "p1", Name: "Ana", Level: 1, Standard: character.DefaultScores(),
		}}},
	}
}

func TestSnapshotRepository_SaveAndLoadLatest(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "g1", snapshot(t, 1)))
	require.NoError(t, repo.Save(ctx, "g1", snapshot(t, 2)))
	require.NoError(t, repo.Save(ctx, "g2", snapshot(t, 9)))

	got, err := repo.Load(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Turn)
	assert.Equal(t, int64(120), got.World.Minutes)
	assert.Equal(t, "Ana", got.Party[0].Name)
	_, ok := got.Map.Get("loc-1")
	assert.True(t, ok)
}

func TestSnapshotRepository_SaveUpserts(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	c := snapshot(t, 3)
	require.NoError(t, repo.Save(ctx, "g1", c))
	c.World.Weather = "storm"
	require.NoError(t, repo.Save(ctx, "g1", c))

	got, err := repo.LoadTurn(ctx, "g1", 3)
	require.NoError(t, err)
	assert.Equal(t, "storm", got.World.Weather)

	turns, err := repo.ListTurns(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, 3, turns[0].Turn)
	assert.False(t, turns[0].CreatedAt.IsZero())
}

func TestSnapshotRepository_NotFound(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	_, err := repo.Load(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrSnapshotNotFound)
	_, err = repo.LoadTurn(ctx, "missing", 1)
	assert.ErrorIs(t, err, storage.ErrSnapshotNotFound)

	turns, err := repo.ListTurns(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestSnapshotRepository_Delete(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "g1", snapshot(t, 1)))
	require.NoError(t, repo.Delete(ctx, "g1"))
	_, err := repo.Load(ctx, "g1")
	assert.ErrorIs(t, err, storage.ErrSnapshotNotFound)
}

func TestSnapshotRepository_RejectsEmptyGameID(t *testing.T) {
	repo := setupRepo(t)
	assert.Error(t, repo.Save(context.Background(), "", snapshot(t, 1)))
}
