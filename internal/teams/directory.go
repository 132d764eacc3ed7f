// Package teams manages teams and their membership.
package teams

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/clintrovert/taskboard/internal/people"
	"github.com/clintrovert/taskboard/internal/store"
	"github.com/clintrovert/taskboard/pkg/types"
)

// Directory is the team listing and membership service
type Directory struct {
	store  store.Store
	logger *zap.Logger
}

// NewDirectory creates a new team directory
func NewDirectory(st store.Store, logger *zap.Logger) *Directory {
	return &Directory{store: st, logger: logger}
}

// List returns every team ordered by id
func (d *Directory) List(ctx context.Context) ([]types.Team, error) {
	uow, err := d.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	teams, err := uow.Teams().GetAll(ctx)
	if err != nil {
		return nil, types.Wrap(types.KindPersistence, err, "load teams")
	}
	return teams, nil
}

// Create adds a team led by the given manager, who becomes its first member
func (d *Directory) Create(ctx context.Context, managerUserID, name string) (types.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Team{}, types.Errorf(types.KindInvalidArgument, "team name is empty")
	}
	uow, err := d.begin(ctx)
	if err != nil {
		return types.Team{}, err
	}
	defer uow.Rollback()

	manager, ok, err := store.PersonByUserID(ctx, uow, managerUserID)
	if err != nil {
		return types.Team{}, types.Wrap(types.KindPersistence, err, "load manager")
	}
	if !ok {
		return types.Team{}, types.Errorf(types.KindManagerNotFound, "manager %q not found", managerUserID)
	}
	if err := people.RequireRole(manager, types.RoleManager); err != nil {
		return types.Team{}, err
	}

	team := types.Team{Name: name, ManagerID: manager.ID}
	if err := uow.Teams().Create(ctx, &team); err != nil {
		return types.Team{}, types.Wrap(types.KindPersistence, err, "create team")
	}
	manager.TeamID = &team.ID
	if err := uow.People().Update(ctx, manager.ID, manager); err != nil {
		return types.Team{}, types.Wrap(types.KindPersistence, err, "assign manager")
	}
	if err := uow.Save(ctx); err != nil {
		return types.Team{}, types.Wrap(types.KindPersistence, err, "save team")
	}

	d.logger.Info("team created", zap.Int64("team_id", team.ID), zap.Int64("manager_id", manager.ID))
	return team, nil
}

// Rename changes a team's name. Only the team's manager may rename it.
func (d *Directory) Rename(ctx context.Context, actor types.Person, teamID int64, name string) (types.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Team{}, types.Errorf(types.KindInvalidArgument, "team name is empty")
	}
	uow, err := d.begin(ctx)
	if err != nil {
		return types.Team{}, err
	}
	defer uow.Rollback()

	team, err := d.team(ctx, uow, teamID)
	if err != nil {
		return types.Team{}, err
	}
	if err := authorize(actor, team); err != nil {
		return types.Team{}, err
	}
	if team.Name == name {
		return team, nil
	}
	team.Name = name
	if err := uow.Teams().Update(ctx, team.ID, team); err != nil {
		return types.Team{}, types.Wrap(types.KindPersistence, err, "update team")
	}
	if err := uow.Save(ctx); err != nil {
		return types.Team{}, types.Wrap(types.KindPersistence, err, "save team")
	}

	d.logger.Info("team renamed", zap.Int64("team_id", team.ID), zap.String("name", name))
	return team, nil
}

// Members returns the people belonging to a team
func (d *Directory) Members(ctx context.Context, teamID int64) ([]types.Person, error) {
	uow, err := d.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if _, err := d.team(ctx, uow, teamID); err != nil {
		return nil, err
	}
	members, err := uow.People().Find(ctx, func(p types.Person) bool {
		return p.TeamID != nil && *p.TeamID == teamID
	})
	if err != nil {
		return nil, types.Wrap(types.KindPersistence, err, "load members")
	}
	return members, nil
}

// Unaffiliated returns the people without a team
func (d *Directory) Unaffiliated(ctx context.Context) ([]types.Person, error) {
	uow, err := d.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	loose, err := uow.People().Find(ctx, func(p types.Person) bool { return p.TeamID == nil })
	if err != nil {
		return nil, types.Wrap(types.KindPersistence, err, "load people")
	}
	return loose, nil
}

// AddMembers moves every listed person into the actor's team. Nothing is
// written unless all of them exist.
func (d *Directory) AddMembers(ctx context.Context, actor types.Person, teamID int64, personIDs []int64) error {
	uow, err := d.begin(ctx)
	if err != nil {
		return err
	}
	defer uow.Rollback()

	team, err := d.team(ctx, uow, teamID)
	if err != nil {
		return err
	}
	if err := authorize(actor, team); err != nil {
		return err
	}
	joining := make([]types.Person, 0, len(personIDs))
	for _, id := range personIDs {
		p, err := d.person(ctx, uow, id)
		if err != nil {
			return err
		}
		joining = append(joining, p)
	}
	for _, p := range joining {
		p.TeamID = &teamID
		if err := uow.People().Update(ctx, p.ID, p); err != nil {
			return types.Wrap(types.KindPersistence, err, "update member")
		}
	}
	if err := uow.Save(ctx); err != nil {
		return types.Wrap(types.KindPersistence, err, "save members")
	}

	d.logger.Info("team members added", zap.Int64("team_id", teamID), zap.Int64s("person_ids", personIDs))
	return nil
}

// RemoveMember takes a person out of their team. The actor must manage
// that team.
func (d *Directory) RemoveMember(ctx context.Context, actor types.Person, personID int64) error {
	if err := people.RequireRole(actor, types.RoleManager); err != nil {
		return err
	}
	uow, err := d.begin(ctx)
	if err != nil {
		return err
	}
	defer uow.Rollback()

	p, err := d.person(ctx, uow, personID)
	if err != nil {
		return err
	}
	if p.TeamID == nil {
		return nil
	}
	team, err := d.team(ctx, uow, *p.TeamID)
	if err != nil {
		return err
	}
	if err := authorize(actor, team); err != nil {
		return err
	}
	p.TeamID = nil
	if err := uow.People().Update(ctx, p.ID, p); err != nil {
		return types.Wrap(types.KindPersistence, err, "update member")
	}
	if err := uow.Save(ctx); err != nil {
		return types.Wrap(types.KindPersistence, err, "save member")
	}

	d.logger.Info("team member removed", zap.Int64("team_id", team.ID), zap.Int64("person_id", personID))
	return nil
}

// authorize admits only the manager who leads the team
func authorize(actor types.Person, team types.Team) error {
	if err := people.RequireRole(actor, types.RoleManager); err != nil {
		return err
	}
	if team.ManagerID != actor.ID {
		return types.Errorf(types.KindTeamAccessDenied, "person %d does not manage team %d", actor.ID, team.ID)
	}
	return nil
}

func (d *Directory) begin(ctx context.Context) (store.UnitOfWork, error) {
	uow, err := d.store.Begin(ctx)
	if err != nil {
		return nil, types.Wrap(types.KindPersistence, err, "begin unit of work")
	}
	return uow, nil
}

func (d *Directory) team(ctx context.Context, uow store.UnitOfWork, id int64) (types.Team, error) {
	team, ok, err := uow.Teams().GetByID(ctx, id)
	if err != nil {
		return types.Team{}, types.Wrap(types.KindPersistence, err, "load team")
	}
	if !ok {
		return types.Team{}, types.Errorf(types.KindTeamNotFound, "team %d not found", id)
	}
	return team, nil
}

func (d *Directory) person(ctx context.Context, uow store.UnitOfWork, id int64) (types.Person, error) {
	p, ok, err := uow.People().GetByID(ctx, id)
	if err != nil {
		return types.Person{}, types.Wrap(types.KindPersistence, err, "load person")
	}
	if !ok {
		return types.Person{}, types.Errorf(types.KindPersonNotFound, "person %d not found", id)
	}
	return p, nil
}
