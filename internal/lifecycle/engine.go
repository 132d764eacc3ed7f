// Package lifecycle applies status transitions and author edits to tasks.
//
// Every operation validates fully before touching the task and runs inside
// one store unit of work, so a rejected or failed call leaves nothing behind.
package lifecycle

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/clintrovert/taskboard/internal/catalog"
	"github.com/clintrovert/taskboard/internal/store"
	"github.com/clintrovert/taskboard/pkg/types"
)

// Engine validates and applies task mutations
type Engine struct {
	store    store.Store
	snapshot *catalog.Snapshot
	logger   *zap.Logger
	now      func() time.Time
}

// NewEngine creates a new lifecycle engine
func NewEngine(st store.Store, snapshot *catalog.Snapshot, logger *zap.Logger) *Engine {
	return &Engine{
		store:    st,
		snapshot: snapshot,
		logger:   logger,
		now:      time.Now,
	}
}

// ApplyStatusChange moves a task into the requested status on behalf of
// actorID and returns the stored result.
func (e *Engine) ApplyStatusChange(ctx context.Context, taskID int64, requested string, actorID int64) (types.Task, error) {
	if strings.TrimSpace(requested) == "" {
		return types.Task{}, types.Errorf(types.KindStatusNotFound, "status name is empty")
	}
	status, err := e.snapshot.StatusByName(requested)
	if err != nil {
		return types.Task{}, err
	}

	uow, err := e.store.Begin(ctx)
	if err != nil {
		return types.Task{}, types.Wrap(types.KindPersistence, err, "begin unit of work")
	}
	defer uow.Rollback()

	task, ok, err := uow.Tasks().GetByID(ctx, taskID)
	if err != nil {
		return types.Task{}, types.Wrap(types.KindPersistence, err, "load task")
	}
	if !ok {
		return types.Task{}, types.Errorf(types.KindTaskNotFound, "task %d not found", taskID)
	}

	current, ok := e.snapshot.StatusByID(task.StatusID)
	if !ok {
		return types.Task{}, types.Errorf(types.KindIncompleteReferenceData,
			"task %d has unknown status id %d", task.ID, task.StatusID)
	}
	rel, tr, err := resolve(task, actorID, requested, current.Name)
	if err != nil {
		e.logger.Warn("status change rejected",
			zap.Int64("task_id", taskID),
			zap.Int64("actor_id", actorID),
			zap.String("from", current.Name),
			zap.String("to", requested),
			zap.Error(err),
		)
		return types.Task{}, err
	}

	if rel == Assignee && task.StatusID == status.ID {
		return task, nil
	}

	next := task.Clone()
	tr.Apply(&next, e.now())
	next.StatusID = status.ID

	if err := uow.Tasks().Update(ctx, next.ID, next); err != nil {
		return types.Task{}, types.Wrap(types.KindPersistence, err, "update task")
	}
	if err := uow.Save(ctx); err != nil {
		e.logger.Error("failed to save status change", zap.Int64("task_id", taskID), zap.Error(err))
		return types.Task{}, types.Wrap(types.KindPersistence, err, "save task")
	}

	e.logger.Info("task status changed",
		zap.Int64("task_id", taskID),
		zap.Int64("actor_id", actorID),
		zap.Stringer("as", rel),
		zap.String("from", current.Name),
		zap.String("to", requested),
		zap.Int("progress", tr.Progress),
	)

	return next, nil
}
