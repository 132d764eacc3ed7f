package sqlite

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clintrovert/taskboard/internal/store"
	"github.com/clintrovert/taskboard/internal/store/storetest"
	"github.com/clintrovert/taskboard/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return openTestStore(t) })
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, s.Ping(context.Background()))
}

func TestNullableColumnsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	uow, err := s.Begin(ctx)
	require.NoError(t, err)
	person := types.Person{UserID: "w-1", FirstName: "Grace", LastName: "Hopper", Role: types.RoleWorker}
	require.NoError(t, uow.People().Create(ctx, &person))
	task := types.Task{Name: "fresh", AuthorID: person.ID, AssigneeID: person.ID, StatusID: 1, PriorityID: 1}
	require.NoError(t, uow.Tasks().Create(ctx, &task))
	require.NoError(t, uow.Save(ctx))

	uow, err = s.Begin(ctx)
	require.NoError(t, err)
	defer uow.Rollback()

	got, ok, err := uow.Tasks().GetByID(ctx, task.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, got.Progress)
	assert.Nil(t, got.StartDate)
	assert.Nil(t, got.FinishDate)
	assert.Nil(t, got.Deadline)

	p, ok, err := uow.People().GetByID(ctx, person.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, p.TeamID)
}
