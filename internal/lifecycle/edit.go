package lifecycle

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/clintrovert/taskboard/internal/catalog"
	"github.com/clintrovert/taskboard/internal/store"
	"github.com/clintrovert/taskboard/pkg/types"
)

// ResolveActor maps an external user id to the person acting
func (e *Engine) ResolveActor(ctx context.Context, userID string) (types.Person, error) {
	uow, err := e.store.Begin(ctx)
	if err != nil {
		return types.Person{}, types.Wrap(types.KindPersistence, err, "begin unit of work")
	}
	defer uow.Rollback()

	p, ok, err := store.PersonByUserID(ctx, uow, userID)
	if err != nil {
		return types.Person{}, types.Wrap(types.KindPersistence, err, "load person")
	}
	if !ok {
		return types.Person{}, types.Errorf(types.KindPersonNotFound, "no person with user id %q", userID)
	}
	return p, nil
}

// CreateTask stores a new task authored by actorID. The task always starts
// Not started with zero progress and no dates.
func (e *Engine) CreateTask(ctx context.Context, actorID int64, draft types.TaskDraft) (types.Task, error) {
	uow, err := e.store.Begin(ctx)
	if err != nil {
		return types.Task{}, types.Wrap(types.KindPersistence, err, "begin unit of work")
	}
	defer uow.Rollback()

	task, err := e.fromDraft(ctx, uow, actorID, draft)
	if err != nil {
		return types.Task{}, err
	}
	notStarted, err := e.snapshot.StatusByName(catalog.NotStarted)
	if err != nil {
		return types.Task{}, err
	}
	task.StatusID = notStarted.ID
	task.Progress = types.IntPtr(0)

	if err := uow.Tasks().Create(ctx, &task); err != nil {
		return types.Task{}, types.Wrap(types.KindPersistence, err, "create task")
	}
	if err := uow.Save(ctx); err != nil {
		return types.Task{}, types.Wrap(types.KindPersistence, err, "save task")
	}

	e.logger.Info("task created",
		zap.Int64("task_id", task.ID),
		zap.Int64("author_id", task.AuthorID),
		zap.Int64("assignee_id", task.AssigneeID),
	)
	return task, nil
}

// UpdateTask replaces the author-editable fields of a task. Status,
// progress and dates are kept.
func (e *Engine) UpdateTask(ctx context.Context, taskID, actorID int64, draft types.TaskDraft) (types.Task, error) {
	uow, err := e.store.Begin(ctx)
	if err != nil {
		return types.Task{}, types.Wrap(types.KindPersistence, err, "begin unit of work")
	}
	defer uow.Rollback()

	existing, err := e.ownedTask(ctx, uow, taskID, actorID, "edit")
	if err != nil {
		return types.Task{}, err
	}
	task, err := e.fromDraft(ctx, uow, actorID, draft)
	if err != nil {
		return types.Task{}, err
	}
	task.ID = existing.ID
	task.StatusID = existing.StatusID
	task.Progress = existing.Progress
	task.StartDate = existing.StartDate
	task.FinishDate = existing.FinishDate

	if err := uow.Tasks().Update(ctx, task.ID, task); err != nil {
		return types.Task{}, types.Wrap(types.KindPersistence, err, "update task")
	}
	if err := uow.Save(ctx); err != nil {
		return types.Task{}, types.Wrap(types.KindPersistence, err, "save task")
	}

	e.logger.Info("task updated", zap.Int64("task_id", task.ID), zap.Int64("actor_id", actorID))
	return task, nil
}

// DeleteTask removes a task; only its author may do so
func (e *Engine) DeleteTask(ctx context.Context, taskID, actorID int64) error {
	uow, err := e.store.Begin(ctx)
	if err != nil {
		return types.Wrap(types.KindPersistence, err, "begin unit of work")
	}
	defer uow.Rollback()

	if _, err := e.ownedTask(ctx, uow, taskID, actorID, "delete"); err != nil {
		return err
	}
	if err := uow.Tasks().Delete(ctx, taskID); err != nil {
		return types.Wrap(types.KindPersistence, err, "delete task")
	}
	if err := uow.Save(ctx); err != nil {
		return types.Wrap(types.KindPersistence, err, "save task")
	}

	e.logger.Info("task deleted", zap.Int64("task_id", taskID), zap.Int64("actor_id", actorID))
	return nil
}

func (e *Engine) ownedTask(ctx context.Context, uow store.UnitOfWork, taskID, actorID int64, verb string) (types.Task, error) {
	task, ok, err := uow.Tasks().GetByID(ctx, taskID)
	if err != nil {
		return types.Task{}, types.Wrap(types.KindPersistence, err, "load task")
	}
	if !ok {
		return types.Task{}, types.Errorf(types.KindTaskNotFound, "task %d not found", taskID)
	}
	if task.AuthorID != actorID {
		e.logger.Warn("task access denied",
			zap.Int64("task_id", taskID),
			zap.Int64("actor_id", actorID),
			zap.String("action", verb),
		)
		return types.Task{}, types.Errorf(types.KindTaskAccessDenied, "only the author can %s task %d", verb, taskID)
	}
	return task, nil
}

func (e *Engine) fromDraft(ctx context.Context, uow store.UnitOfWork, authorID int64, draft types.TaskDraft) (types.Task, error) {
	if strings.TrimSpace(draft.Name) == "" {
		return types.Task{}, types.Errorf(types.KindInvalidArgument, "task name is empty")
	}
	if _, ok, err := uow.People().GetByID(ctx, authorID); err != nil {
		return types.Task{}, types.Wrap(types.KindPersistence, err, "load author")
	} else if !ok {
		return types.Task{}, types.Errorf(types.KindPersonNotFound, "author %d not found", authorID)
	}
	if _, ok, err := uow.People().GetByID(ctx, draft.AssigneeID); err != nil {
		return types.Task{}, types.Wrap(types.KindPersistence, err, "load assignee")
	} else if !ok {
		return types.Task{}, types.Errorf(types.KindPersonNotFound, "assignee %d not found", draft.AssigneeID)
	}
	priority, err := e.snapshot.PriorityByName(draft.Priority)
	if err != nil {
		return types.Task{}, err
	}

	return types.Task{
		Name:        draft.Name,
		Description: draft.Description,
		AuthorID:    authorID,
		AssigneeID:  draft.AssigneeID,
		PriorityID:  priority.ID,
		Deadline:    draft.Deadline,
	}, nil
}
