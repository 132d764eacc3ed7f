// Package progress computes average completion across sets of tasks.
package progress

import (
	"context"

	"go.uber.org/zap"

	"github.com/clintrovert/taskboard/internal/query"
	"github.com/clintrovert/taskboard/pkg/types"
)

// AverageProgress sums the known progress values and divides by the number
// of tasks. Tasks without progress count as zero.
func AverageProgress(views []types.TaskView) int {
	if len(views) == 0 {
		return 0
	}
	sum := 0
	for _, v := range views {
		if v.Progress != nil {
			sum += *v.Progress
		}
	}
	return sum / len(views)
}

// Aggregator reports progress for a team or the whole board
type Aggregator struct {
	tasks  *query.Service
	logger *zap.Logger
}

// NewAggregator creates a new aggregator on top of the query service
func NewAggregator(tasks *query.Service, logger *zap.Logger) *Aggregator {
	return &Aggregator{tasks: tasks, logger: logger}
}

// TeamProgress is the average progress of the tasks authored by the manager
func (a *Aggregator) TeamProgress(ctx context.Context, managerUserID string) (int, error) {
	views, err := a.tasks.OfTeam(ctx, managerUserID)
	if err != nil {
		return 0, err
	}
	p := AverageProgress(views)
	a.logger.Debug("computed team progress",
		zap.String("manager", managerUserID),
		zap.Int("tasks", len(views)),
		zap.Int("progress", p))
	return p, nil
}

// OverallProgress is the average progress of every task
func (a *Aggregator) OverallProgress(ctx context.Context) (int, error) {
	views, err := a.tasks.All(ctx)
	if err != nil {
		return 0, err
	}
	return AverageProgress(views), nil
}
