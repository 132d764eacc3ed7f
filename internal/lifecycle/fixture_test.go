package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/clintrovert/taskboard/internal/catalog"
	"github.com/clintrovert/taskboard/internal/store"
	"github.com/clintrovert/taskboard/internal/store/memory"
	"github.com/clintrovert/taskboard/pkg/types"
)

var fixedNow = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

type fixture struct {
	store    *memory.Store
	snapshot *catalog.Snapshot
	engine   *Engine
	author   types.Person
	worker   types.Person
	outsider types.Person
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	require.NoError(t, catalog.Seed(ctx, st))
	snap, err := catalog.Load(ctx, st)
	require.NoError(t, err)

	f := &fixture{
		store:    st,
		snapshot: snap,
		author:   types.Person{UserID: "mgr-1", FirstName: "Maria", LastName: "Manager", Role: types.RoleManager},
		worker:   types.Person{UserID: "wrk-1", FirstName: "Walt", LastName: "Worker", Role: types.RoleWorker},
		outsider: types.Person{UserID: "wrk-2", FirstName: "Olga", LastName: "Outsider", Role: types.RoleWorker},
	}
	uow, err := st.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, uow.People().Create(ctx, &f.author))
	require.NoError(t, uow.People().Create(ctx, &f.worker))
	require.NoError(t, uow.People().Create(ctx, &f.outsider))
	require.NoError(t, uow.Save(ctx))

	f.engine = NewEngine(st, snap, zaptest.NewLogger(t))
	f.engine.now = func() time.Time { return fixedNow }
	return f
}

// addTask stores a task authored by f.author and assigned to assigneeID,
// sitting in the given status with that status' weight.
func (f *fixture) addTask(t *testing.T, status string, assigneeID int64) types.Task {
	t.Helper()
	ctx := context.Background()
	st, err := f.snapshot.StatusByName(status)
	require.NoError(t, err)
	w, _ := catalog.Weight(status)

	task := types.Task{
		Name:       "task in " + status,
		AuthorID:   f.author.ID,
		AssigneeID: assigneeID,
		StatusID:   st.ID,
		PriorityID: 1,
		Progress:   types.IntPtr(w),
	}
	uow, err := f.store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, uow.Tasks().Create(ctx, &task))
	require.NoError(t, uow.Save(ctx))
	return task
}

func (f *fixture) load(t *testing.T, id int64) types.Task {
	t.Helper()
	ctx := context.Background()
	uow, err := f.store.Begin(ctx)
	require.NoError(t, err)
	defer uow.Rollback()
	task, ok, err := uow.Tasks().GetByID(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	return task
}

func (f *fixture) statusName(t *testing.T, task types.Task) string {
	t.Helper()
	st, ok := f.snapshot.StatusByID(task.StatusID)
	require.True(t, ok)
	return st.Name
}

var errSaveFailed = errors.New("save failed")

// failingStore hands out units of work whose Save always fails.
type failingStore struct {
	store.Store
}

func (s failingStore) Begin(ctx context.Context) (store.UnitOfWork, error) {
	uow, err := s.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return failingUnit{uow}, nil
}

type failingUnit struct {
	store.UnitOfWork
}

func (failingUnit) Save(context.Context) error { return errSaveFailed }
