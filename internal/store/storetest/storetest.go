// Package storetest holds behaviour checks shared by every store.Store
// implementation.
package storetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clintrovert/taskboard/internal/store"
	"github.com/clintrovert/taskboard/pkg/types"
)

// Factory returns a fresh, empty, migrated store
type Factory func(t *testing.T) store.Store

// Run exercises the unit-of-work contract against stores built by newStore
func Run(t *testing.T, newStore Factory) {
	t.Run("CreateAndReadBack", func(t *testing.T) { testCreateAndReadBack(t, newStore(t)) })
	t.Run("RollbackDiscardsWrites", func(t *testing.T) { testRollback(t, newStore(t)) })
	t.Run("UpdateAndDelete", func(t *testing.T) { testUpdateAndDelete(t, newStore(t)) })
	t.Run("FindFiltersWithPredicate", func(t *testing.T) { testFind(t, newStore(t)) })
	t.Run("FinishedUnitRejectsUse", func(t *testing.T) { testFinished(t, newStore(t)) })
	t.Run("ConcurrentUnitsKeepBothWrites", func(t *testing.T) { testConcurrentUnits(t, newStore(t)) })
}

func testCreateAndReadBack(t *testing.T, st store.Store) {
	ctx := context.Background()
	deadline := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	teamID := int64(4)

	uow, err := st.Begin(ctx)
	require.NoError(t, err)

	person := types.Person{UserID: "u-1", FirstName: "Ada", LastName: "Lovelace", Role: types.RoleWorker, Email: "ada@example.com", TeamID: &teamID}
	require.NoError(t, uow.People().Create(ctx, &person))
	assert.NotZero(t, person.ID)

	task := types.Task{
		Name:        "write docs",
		Description: "all of them",
		AuthorID:    person.ID,
		AssigneeID:  person.ID,
		StatusID:    1,
		PriorityID:  2,
		Progress:    types.IntPtr(0),
		Deadline:    &deadline,
	}
	require.NoError(t, uow.Tasks().Create(ctx, &task))
	assert.NotZero(t, task.ID)
	require.NoError(t, uow.Save(ctx))

	uow, err = st.Begin(ctx)
	require.NoError(t, err)
	defer uow.Rollback()

	got, ok, err := uow.Tasks().GetByID(ctx, task.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "write docs", got.Name)
	require.NotNil(t, got.Progress)
	assert.Equal(t, 0, *got.Progress)
	assert.Nil(t, got.StartDate)
	require.NotNil(t, got.Deadline)
	assert.True(t, deadline.Equal(*got.Deadline))

	p, ok, err := uow.People().GetByID(ctx, person.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, p.TeamID)
	assert.Equal(t, teamID, *p.TeamID)
	assert.Equal(t, types.RoleWorker, p.Role)

	_, ok, err = uow.Tasks().GetByID(ctx, task.ID+100)
	require.NoError(t, err)
	assert.False(t, ok)
}

func testRollback(t *testing.T, st store.Store) {
	ctx := context.Background()

	uow, err := st.Begin(ctx)
	require.NoError(t, err)
	team := types.Team{Name: "core", ManagerID: 1}
	require.NoError(t, uow.Teams().Create(ctx, &team))
	require.NoError(t, uow.Rollback())

	uow, err = st.Begin(ctx)
	require.NoError(t, err)
	defer uow.Rollback()
	teams, err := uow.Teams().GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, teams)
}

func testUpdateAndDelete(t *testing.T, st store.Store) {
	ctx := context.Background()

	uow, err := st.Begin(ctx)
	require.NoError(t, err)
	team := types.Team{Name: "core", ManagerID: 1}
	require.NoError(t, uow.Teams().Create(ctx, &team))
	require.NoError(t, uow.Save(ctx))

	uow, err = st.Begin(ctx)
	require.NoError(t, err)
	team.Name = "platform"
	require.NoError(t, uow.Teams().Update(ctx, team.ID, team))
	assert.ErrorIs(t, uow.Teams().Update(ctx, team.ID+100, team), store.ErrNotFound)
	require.NoError(t, uow.Save(ctx))

	uow, err = st.Begin(ctx)
	require.NoError(t, err)
	got, ok, err := uow.Teams().GetByID(ctx, team.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "platform", got.Name)

	require.NoError(t, uow.Teams().Delete(ctx, team.ID))
	assert.ErrorIs(t, uow.Teams().Delete(ctx, team.ID), store.ErrNotFound)
	require.NoError(t, uow.Save(ctx))

	uow, err = st.Begin(ctx)
	require.NoError(t, err)
	defer uow.Rollback()
	_, ok, err = uow.Teams().GetByID(ctx, team.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func testFind(t *testing.T, st store.Store) {
	ctx := context.Background()

	uow, err := st.Begin(ctx)
	require.NoError(t, err)
	defer uow.Rollback()
	for _, name := range []string{"Low", "Middle", "High"} {
		p := types.Priority{Name: name}
		require.NoError(t, uow.Priorities().Create(ctx, &p))
	}

	found, err := uow.Priorities().Find(ctx, func(p types.Priority) bool { return p.Name != "Middle" })
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Low", found[0].Name)
	assert.Equal(t, "High", found[1].Name)
}

func testFinished(t *testing.T, st store.Store) {
	ctx := context.Background()

	uow, err := st.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, uow.Save(ctx))

	_, err = uow.Statuses().GetAll(ctx)
	assert.ErrorIs(t, err, store.ErrClosed)
	assert.ErrorIs(t, uow.Save(ctx), store.ErrClosed)
	assert.NoError(t, uow.Rollback())
}

// testConcurrentUnits runs a second unit while the first is still open.
// Stores that serialize units make the second wait; either way both
// commits must survive.
func testConcurrentUnits(t *testing.T, st store.Store) {
	ctx := context.Background()

	first, err := st.Begin(ctx)
	require.NoError(t, err)
	task := types.Task{Name: "from first", AuthorID: 1, AssigneeID: 1, StatusID: 1, PriorityID: 1}
	require.NoError(t, first.Tasks().Create(ctx, &task))

	var wg sync.WaitGroup
	var secondErr error
	team := types.Team{Name: "from second"}
	wg.Add(1)
	go func() {
		defer wg.Done()
		second, err := st.Begin(ctx)
		if err != nil {
			secondErr = err
			return
		}
		defer second.Rollback()
		if err := second.Teams().Create(ctx, &team); err != nil {
			secondErr = err
			return
		}
		secondErr = second.Save(ctx)
	}()

	require.NoError(t, first.Save(ctx))
	wg.Wait()
	require.NoError(t, secondErr)

	uow, err := st.Begin(ctx)
	require.NoError(t, err)
	defer uow.Rollback()
	tasks, err := uow.Tasks().GetAll(ctx)
	require.NoError(t, err)
	teams, err := uow.Teams().GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Len(t, teams, 1)
	assert.Equal(t, "from first", tasks[0].Name)
	assert.Equal(t, "from second", teams[0].Name)
}
