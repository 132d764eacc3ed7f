package progress

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/clintrovert/taskboard/internal/catalog"
	"github.com/clintrovert/taskboard/internal/query"
	"github.com/clintrovert/taskboard/internal/store/memory"
	"github.com/clintrovert/taskboard/pkg/types"
)

func view(p *int) types.TaskView { return types.TaskView{Progress: p} }

func TestAverageProgress(t *testing.T) {
	tests := []struct {
		name  string
		views []types.TaskView
		want  int
	}{
		{"empty", nil, 0},
		{"single", []types.TaskView{view(types.IntPtr(80))}, 80},
		{"missing counts as zero", []types.TaskView{view(types.IntPtr(100)), view(nil), view(types.IntPtr(50))}, 50},
		{"all missing", []types.TaskView{view(nil), view(nil)}, 0},
		{"truncates", []types.TaskView{view(types.IntPtr(20)), view(types.IntPtr(0)), view(types.IntPtr(0))}, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AverageProgress(tt.views))
		})
	}
}

func TestAggregator(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	require.NoError(t, catalog.Seed(ctx, st))
	snap, err := catalog.Load(ctx, st)
	require.NoError(t, err)

	manager := types.Person{UserID: "mgr-1", FirstName: "Maria", Role: types.RoleManager}
	other := types.Person{UserID: "mgr-2", FirstName: "Otto", Role: types.RoleManager}
	uow, err := st.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, uow.People().Create(ctx, &manager))
	require.NoError(t, uow.People().Create(ctx, &other))
	for _, tc := range []struct {
		author   int64
		progress *int
	}{
		{manager.ID, types.IntPtr(100)},
		{manager.ID, nil},
		{manager.ID, types.IntPtr(50)},
		{other.ID, types.IntPtr(10)},
	} {
		task := types.Task{Name: "t", AuthorID: tc.author, AssigneeID: tc.author, StatusID: 1, PriorityID: 1, Progress: tc.progress}
		require.NoError(t, uow.Tasks().Create(ctx, &task))
	}
	require.NoError(t, uow.Save(ctx))

	logger := zaptest.NewLogger(t)
	agg := NewAggregator(query.NewService(st, snap, logger), logger)

	p, err := agg.TeamProgress(ctx, "mgr-1")
	require.NoError(t, err)
	assert.Equal(t, 50, p)

	p, err = agg.TeamProgress(ctx, "mgr-2")
	require.NoError(t, err)
	assert.Equal(t, 10, p)

	p, err = agg.OverallProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 40, p)

	_, err = agg.TeamProgress(ctx, "nobody")
	assert.True(t, types.IsKind(err, types.KindManagerNotFound), "got %v", err)
}
