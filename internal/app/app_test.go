package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/clintrovert/taskboard/internal/catalog"
	"github.com/clintrovert/taskboard/internal/config"
	"github.com/clintrovert/taskboard/internal/store/memory"
	"github.com/clintrovert/taskboard/pkg/types"
)

func TestNewOverMemoryStore(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	st, err := OpenStore(ctx, config.StoreConfig{Driver: config.DriverMemory}, logger)
	require.NoError(t, err)
	a, err := New(ctx, st, logger)
	require.NoError(t, err)
	defer a.Close()

	assert.Len(t, a.Snapshot.StatusList(), len(catalog.Statuses))
	views, err := a.Tasks.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestNewRequiresReferenceData(t *testing.T) {
	_, err := New(context.Background(), memory.New(), zaptest.NewLogger(t))
	assert.True(t, types.IsKind(err, types.KindIncompleteReferenceData), "got %v", err)
}

func TestMigrateThenServeSQLite(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	dsn := "file:" + filepath.Join(t.TempDir(), "taskboard.db")

	require.NoError(t, Migrate(ctx, dsn, logger))
	require.NoError(t, Migrate(ctx, dsn, logger))

	st, err := OpenStore(ctx, config.StoreConfig{Driver: config.DriverSQLite, DSN: dsn}, logger)
	require.NoError(t, err)
	a, err := New(ctx, st, logger)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Teams.List(ctx)
	require.NoError(t, err)
	assert.Len(t, a.Snapshot.PriorityList(), len(catalog.Priorities))
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	_, err := OpenStore(context.Background(), config.StoreConfig{Driver: "postgres"}, zaptest.NewLogger(t))
	assert.Error(t, err)
}
