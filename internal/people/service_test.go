package people

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/clintrovert/taskboard/internal/store/memory"
	"github.com/clintrovert/taskboard/pkg/types"
)

type fixture struct {
	svc     *Service
	admin   types.Person
	manager types.Person
	worker  types.Person
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	f := &fixture{
		admin:   types.Person{UserID: "adm-1", FirstName: "Ada", Role: types.RoleAdmin},
		manager: types.Person{UserID: "mgr-1", FirstName: "Maria", Role: types.RoleManager},
		worker:  types.Person{UserID: "wrk-1", FirstName: "Walt", Role: types.RoleWorker},
	}
	uow, err := st.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, uow.People().Create(ctx, &f.admin))
	require.NoError(t, uow.People().Create(ctx, &f.manager))
	require.NoError(t, uow.People().Create(ctx, &f.worker))
	require.NoError(t, uow.Save(ctx))

	f.svc = NewService(st, zaptest.NewLogger(t))
	return f
}

func TestListAndGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	all, err := f.svc.List(ctx, f.admin)
	require.NoError(t, err)
	assert.Equal(t, []types.Person{f.admin, f.manager, f.worker}, all)

	p, err := f.svc.Get(ctx, f.admin, f.worker.ID)
	require.NoError(t, err)
	assert.Equal(t, f.worker, p)

	_, err = f.svc.Get(ctx, f.admin, 999)
	assert.True(t, types.IsKind(err, types.KindPersonNotFound), "got %v", err)
}

func TestOnlyAdminsMayUseDirectory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, actor := range []types.Person{f.manager, f.worker} {
		_, err := f.svc.List(ctx, actor)
		assert.True(t, types.IsKind(err, types.KindRoleAccessDenied), "got %v", err)

		_, err = f.svc.Get(ctx, actor, f.admin.ID)
		assert.True(t, types.IsKind(err, types.KindRoleAccessDenied), "got %v", err)

		_, err = f.svc.UpdateRole(ctx, actor, actor.ID, "Admin")
		assert.True(t, types.IsKind(err, types.KindRoleAccessDenied), "got %v", err)
	}

	p, err := f.svc.Get(ctx, f.admin, f.worker.ID)
	require.NoError(t, err)
	assert.Equal(t, types.RoleWorker, p.Role)
}

func TestUpdateRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.UpdateRole(ctx, f.admin, f.worker.ID, "manager")
	require.NoError(t, err)
	assert.Equal(t, types.RoleManager, p.Role)

	stored, err := f.svc.Get(ctx, f.admin, f.worker.ID)
	require.NoError(t, err)
	assert.Equal(t, types.RoleManager, stored.Role)

	_, err = f.svc.UpdateRole(ctx, f.admin, f.worker.ID, "Owner")
	assert.True(t, types.IsKind(err, types.KindInvalidArgument), "got %v", err)

	_, err = f.svc.UpdateRole(ctx, f.admin, 999, "Worker")
	assert.True(t, types.IsKind(err, types.KindPersonNotFound), "got %v", err)
}

func TestTeamManagerKeepsRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st := f.svc.store

	uow, err := st.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, uow.Teams().Create(ctx, &types.Team{Name: "core", ManagerID: f.manager.ID}))
	require.NoError(t, uow.Save(ctx))

	_, err = f.svc.UpdateRole(ctx, f.admin, f.manager.ID, "Worker")
	assert.True(t, types.IsKind(err, types.KindInvalidArgument), "got %v", err)

	p, err := f.svc.Get(ctx, f.admin, f.manager.ID)
	require.NoError(t, err)
	assert.Equal(t, types.RoleManager, p.Role)
}

func TestRequireRole(t *testing.T) {
	assert.NoError(t, RequireRole(types.Person{Role: types.RoleManager}, types.RoleManager))
	err := RequireRole(types.Person{Role: types.RoleWorker}, types.RoleManager)
	assert.True(t, types.IsKind(err, types.KindRoleAccessDenied), "got %v", err)
}
