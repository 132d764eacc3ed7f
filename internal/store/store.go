// Package store defines the unit-of-work contract over tasks, people,
// statuses, priorities and teams.
//
// A unit of work sees its own writes. Nothing it writes is visible to other
// units until Save returns nil; Rollback after Save is a no-op. Units that
// overlap in time keep each other's committed rows; when both wrote the same
// row the later Save wins.
package store

import (
	"context"
	"errors"

	"github.com/clintrovert/taskboard/pkg/types"
)

// ErrNotFound is returned by Update and Delete when the id does not exist
var ErrNotFound = errors.New("entity not found")

// ErrConflict is returned by Save when a row the unit changed was removed
// by another unit in the meantime
var ErrConflict = errors.New("concurrent modification")

// ErrClosed is returned when a finished unit of work is used again
var ErrClosed = errors.New("unit of work already finished")

// Entity is implemented by every stored row
type Entity interface {
	EntityID() int64
}

// Repository gives CRUD and predicate access to one entity set
type Repository[T Entity] interface {
	GetByID(ctx context.Context, id int64) (T, bool, error)
	Find(ctx context.Context, pred func(T) bool) ([]T, error)
	GetAll(ctx context.Context) ([]T, error)
	// Create assigns the new id to *item.
	Create(ctx context.Context, item *T) error
	Update(ctx context.Context, id int64, item T) error
	Delete(ctx context.Context, id int64) error
}

// UnitOfWork groups repository writes into one commit
type UnitOfWork interface {
	Tasks() Repository[types.Task]
	People() Repository[types.Person]
	Statuses() Repository[types.Status]
	Priorities() Repository[types.Priority]
	Teams() Repository[types.Team]
	Save(ctx context.Context) error
	Rollback() error
}

// Store opens units of work
type Store interface {
	Begin(ctx context.Context) (UnitOfWork, error)
	Ping(ctx context.Context) error
	Close() error
}
