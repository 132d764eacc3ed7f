package query

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/clintrovert/taskboard/internal/catalog"
	"github.com/clintrovert/taskboard/internal/store"
	"github.com/clintrovert/taskboard/pkg/types"
)

// Service answers the task retrieval variants
type Service struct {
	store    store.Store
	snapshot *catalog.Snapshot
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a new query service
func NewService(st store.Store, snapshot *catalog.Snapshot, logger *zap.Logger) *Service {
	return &Service{
		store:    st,
		snapshot: snapshot,
		logger:   logger,
		now:      time.Now,
	}
}

// All returns every task ordered by id
func (s *Service) All(ctx context.Context) ([]types.TaskView, error) {
	return s.find(ctx, func(store.UnitOfWork) (func(types.Task) bool, error) {
		return nil, nil
	})
}

// ByID returns a single task
func (s *Service) ByID(ctx context.Context, id int64) (types.TaskView, error) {
	views, err := s.find(ctx, func(store.UnitOfWork) (func(types.Task) bool, error) {
		return func(t types.Task) bool { return t.ID == id }, nil
	})
	if err != nil {
		return types.TaskView{}, err
	}
	if len(views) == 0 {
		return types.TaskView{}, types.Errorf(types.KindTaskNotFound, "task %d not found", id)
	}
	return views[0], nil
}

// OfTeam returns the tasks authored by the manager with the given user id
func (s *Service) OfTeam(ctx context.Context, managerUserID string) ([]types.TaskView, error) {
	return s.find(ctx, func(uow store.UnitOfWork) (func(types.Task) bool, error) {
		manager, ok, err := store.PersonByUserID(ctx, uow, managerUserID)
		if err != nil {
			return nil, types.Wrap(types.KindPersistence, err, "load manager")
		}
		if !ok {
			return nil, types.Errorf(types.KindManagerNotFound, "manager %q not found", managerUserID)
		}
		return func(t types.Task) bool { return t.AuthorID == manager.ID }, nil
	})
}

// OfAssignee returns the tasks assigned to a user, highest progress first
func (s *Service) OfAssignee(ctx context.Context, userID string) ([]types.TaskView, error) {
	views, err := s.ofPerson(ctx, userID, func(t types.Task, p types.Person) bool { return t.AssigneeID == p.ID })
	if err != nil {
		return nil, err
	}
	byProgressDesc(views)
	return views, nil
}

// OfAuthor returns the tasks authored by a user, highest progress first
func (s *Service) OfAuthor(ctx context.Context, userID string) ([]types.TaskView, error) {
	views, err := s.ofPerson(ctx, userID, func(t types.Task, p types.Person) bool { return t.AuthorID == p.ID })
	if err != nil {
		return nil, err
	}
	byProgressDesc(views)
	return views, nil
}

// Inactive returns the team manager's tasks whose deadline has passed or was never set
func (s *Service) Inactive(ctx context.Context, teamID int64) ([]types.TaskView, error) {
	now := s.now()
	return s.find(ctx, func(uow store.UnitOfWork) (func(types.Task) bool, error) {
		team, err := s.team(ctx, uow, teamID)
		if err != nil {
			return nil, err
		}
		return func(t types.Task) bool {
			return t.AuthorID == team.ManagerID && (t.Deadline == nil || t.Deadline.Before(now))
		}, nil
	})
}

// Completed returns the team manager's tasks in status Completed
func (s *Service) Completed(ctx context.Context, teamID int64) ([]types.TaskView, error) {
	completed, err := s.snapshot.StatusByName(catalog.Completed)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, func(uow store.UnitOfWork) (func(types.Task) bool, error) {
		team, err := s.team(ctx, uow, teamID)
		if err != nil {
			return nil, err
		}
		return func(t types.Task) bool {
			return t.AuthorID == team.ManagerID && t.StatusID == completed.ID
		}, nil
	})
}

func (s *Service) team(ctx context.Context, uow store.UnitOfWork, teamID int64) (types.Team, error) {
	team, ok, err := uow.Teams().GetByID(ctx, teamID)
	if err != nil {
		return types.Team{}, types.Wrap(types.KindPersistence, err, "load team")
	}
	if !ok {
		return types.Team{}, types.Errorf(types.KindTeamNotFound, "team %d not found", teamID)
	}
	return team, nil
}

// ofPerson matches tasks against the person carrying userID. An unknown
// user id yields no tasks.
func (s *Service) ofPerson(ctx context.Context, userID string, match func(types.Task, types.Person) bool) ([]types.TaskView, error) {
	return s.find(ctx, func(uow store.UnitOfWork) (func(types.Task) bool, error) {
		person, ok, err := store.PersonByUserID(ctx, uow, userID)
		if err != nil {
			return nil, types.Wrap(types.KindPersistence, err, "load person")
		}
		if !ok {
			return func(types.Task) bool { return false }, nil
		}
		return func(t types.Task) bool { return match(t, person) }, nil
	})
}

type predicateFunc func(uow store.UnitOfWork) (func(types.Task) bool, error)

// find builds the predicate inside a read-only unit of work, loads the
// matching tasks and the people index, then composes.
func (s *Service) find(ctx context.Context, build predicateFunc) ([]types.TaskView, error) {
	uow, err := s.store.Begin(ctx)
	if err != nil {
		return nil, types.Wrap(types.KindPersistence, err, "begin unit of work")
	}
	defer uow.Rollback()

	pred, err := build(uow)
	if err != nil {
		return nil, err
	}
	tasks, err := uow.Tasks().Find(ctx, pred)
	if err != nil {
		return nil, types.Wrap(types.KindPersistence, err, "find tasks")
	}
	people, err := uow.People().GetAll(ctx)
	if err != nil {
		return nil, types.Wrap(types.KindPersistence, err, "load people")
	}

	views, err := Compose(tasks, NewIndex(people, s.snapshot))
	if err != nil {
		s.logger.Error("failed to compose tasks", zap.Error(err))
		return nil, err
	}
	sort.SliceStable(views, func(i, j int) bool { return views[i].ID < views[j].ID })
	return views, nil
}

// byProgressDesc orders views by descending progress; tasks without
// progress sort last.
func byProgressDesc(views []types.TaskView) {
	sort.SliceStable(views, func(i, j int) bool {
		return progressKey(views[i]) > progressKey(views[j])
	})
}

func progressKey(v types.TaskView) int {
	if v.Progress == nil {
		return -1
	}
	return *v.Progress
}
