// Package sqlite is a store.Store backed by database/sql and the pure-Go
// modernc.org/sqlite driver. A unit of work is one SQL transaction.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/clintrovert/taskboard/internal/store"
	"github.com/clintrovert/taskboard/pkg/types"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS statuses (
    id   INTEGER PRIMARY KEY AUTOINCREMENT,
    name VARCHAR(64) NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS priorities (
    id   INTEGER PRIMARY KEY AUTOINCREMENT,
    name VARCHAR(64) NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS teams (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    name       VARCHAR(255) NOT NULL,
    manager_id INTEGER      NOT NULL
);
CREATE TABLE IF NOT EXISTS people (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id    VARCHAR(64)  NOT NULL UNIQUE,
    first_name VARCHAR(255) NOT NULL,
    last_name  VARCHAR(255) NOT NULL,
    role       VARCHAR(32)  NOT NULL,
    email      VARCHAR(255) NOT NULL,
    team_id    INTEGER      NULL
);
CREATE TABLE IF NOT EXISTS tasks (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    name        VARCHAR(255) NOT NULL,
    description TEXT         NOT NULL,
    author_id   INTEGER      NOT NULL,
    assignee_id INTEGER      NOT NULL,
    status_id   INTEGER      NOT NULL,
    priority_id INTEGER      NOT NULL,
    progress    INTEGER      NULL,
    start_date  DATETIME     NULL,
    finish_date DATETIME     NULL,
    deadline    DATETIME     NULL
);
CREATE INDEX IF NOT EXISTS tasks_author_idx ON tasks (author_id);
CREATE INDEX IF NOT EXISTS tasks_assignee_idx ON tasks (assignee_id);
`

// Store wraps a *sql.DB
type Store struct {
	db *sql.DB
}

// Open opens the database at dsn. The pool is limited to one connection
// because sqlite serializes writers anyway.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	return &Store{db: db}, nil
}

// Migrate creates the schema if it does not exist
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (s *Store) Begin(ctx context.Context) (store.UnitOfWork, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &unitOfWork{tx: tx}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

type unitOfWork struct {
	tx   *sql.Tx
	done bool
}

func (u *unitOfWork) Tasks() store.Repository[types.Task] {
	return &repository[types.Task]{uow: u, m: taskMapping}
}

func (u *unitOfWork) People() store.Repository[types.Person] {
	return &repository[types.Person]{uow: u, m: personMapping}
}

func (u *unitOfWork) Statuses() store.Repository[types.Status] {
	return &repository[types.Status]{uow: u, m: statusMapping}
}

func (u *unitOfWork) Priorities() store.Repository[types.Priority] {
	return &repository[types.Priority]{uow: u, m: priorityMapping}
}

func (u *unitOfWork) Teams() store.Repository[types.Team] {
	return &repository[types.Team]{uow: u, m: teamMapping}
}

func (u *unitOfWork) Save(ctx context.Context) error {
	if u.done {
		return store.ErrClosed
	}
	if err := u.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	u.done = true
	return nil
}

func (u *unitOfWork) Rollback() error {
	if u.done {
		return nil
	}
	u.done = true
	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}
