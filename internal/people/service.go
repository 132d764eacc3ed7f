// Package people is the administrative view of the people known to the
// tracker. Every operation is reserved for admins.
package people

import (
	"context"

	"go.uber.org/zap"

	"github.com/clintrovert/taskboard/internal/store"
	"github.com/clintrovert/taskboard/pkg/types"
)

// RequireRole rejects an actor who does not hold the role
func RequireRole(actor types.Person, role types.Role) error {
	if actor.Role != role {
		return types.Errorf(types.KindRoleAccessDenied, "%s role required", role)
	}
	return nil
}

// Service lists people and changes their roles
type Service struct {
	store  store.Store
	logger *zap.Logger
}

// NewService creates a new people service
func NewService(st store.Store, logger *zap.Logger) *Service {
	return &Service{store: st, logger: logger}
}

// List returns every person ordered by id
func (s *Service) List(ctx context.Context, actor types.Person) ([]types.Person, error) {
	if err := RequireRole(actor, types.RoleAdmin); err != nil {
		return nil, err
	}
	uow, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	people, err := uow.People().GetAll(ctx)
	if err != nil {
		return nil, types.Wrap(types.KindPersistence, err, "load people")
	}
	return people, nil
}

// Get returns one person
func (s *Service) Get(ctx context.Context, actor types.Person, id int64) (types.Person, error) {
	if err := RequireRole(actor, types.RoleAdmin); err != nil {
		return types.Person{}, err
	}
	uow, err := s.begin(ctx)
	if err != nil {
		return types.Person{}, err
	}
	defer uow.Rollback()

	return s.person(ctx, uow, id)
}

// UpdateRole gives a person a new role. A manager who still leads a team
// keeps the Manager role.
func (s *Service) UpdateRole(ctx context.Context, actor types.Person, id int64, name string) (types.Person, error) {
	if err := RequireRole(actor, types.RoleAdmin); err != nil {
		return types.Person{}, err
	}
	role, ok := types.ParseRole(name)
	if !ok {
		return types.Person{}, types.Errorf(types.KindInvalidArgument, "unknown role %q", name)
	}
	uow, err := s.begin(ctx)
	if err != nil {
		return types.Person{}, err
	}
	defer uow.Rollback()

	p, err := s.person(ctx, uow, id)
	if err != nil {
		return types.Person{}, err
	}
	if p.Role == role {
		return p, nil
	}
	if p.Role == types.RoleManager {
		led, err := uow.Teams().Find(ctx, func(t types.Team) bool { return t.ManagerID == p.ID })
		if err != nil {
			return types.Person{}, types.Wrap(types.KindPersistence, err, "load teams")
		}
		if len(led) > 0 {
			return types.Person{}, types.Errorf(types.KindInvalidArgument,
				"person %d still manages team %d", p.ID, led[0].ID)
		}
	}

	previous := p.Role
	p.Role = role
	if err := uow.People().Update(ctx, p.ID, p); err != nil {
		return types.Person{}, types.Wrap(types.KindPersistence, err, "update person")
	}
	if err := uow.Save(ctx); err != nil {
		return types.Person{}, types.Wrap(types.KindPersistence, err, "save person")
	}

	s.logger.Info("role changed",
		zap.Int64("person_id", p.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(role)),
		zap.String("by", actor.UserID),
	)
	return p, nil
}

func (s *Service) begin(ctx context.Context) (store.UnitOfWork, error) {
	uow, err := s.store.Begin(ctx)
	if err != nil {
		return nil, types.Wrap(types.KindPersistence, err, "begin unit of work")
	}
	return uow, nil
}

func (s *Service) person(ctx context.Context, uow store.UnitOfWork, id int64) (types.Person, error) {
	p, ok, err := uow.People().GetByID(ctx, id)
	if err != nil {
		return types.Person{}, types.Wrap(types.KindPersistence, err, "load person")
	}
	if !ok {
		return types.Person{}, types.Errorf(types.KindPersonNotFound, "person %d not found", id)
	}
	return p, nil
}
