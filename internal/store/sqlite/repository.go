package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/clintrovert/taskboard/internal/store"
	"github.com/clintrovert/taskboard/pkg/types"
)

type scanner interface {
	Scan(dest ...any) error
}

// mapping describes how one entity type maps onto a table. columns never
// include id; scan reads id followed by columns.
type mapping[T store.Entity] struct {
	table   string
	columns []string
	scan    func(scanner) (T, error)
	values  func(T) []any
	setID   func(*T, int64)
}

func (m mapping[T]) selectSQL() string {
	return fmt.Sprintf("SELECT id, %s FROM %s", strings.Join(m.columns, ", "), m.table)
}

type repository[T store.Entity] struct {
	uow *unitOfWork
	m   mapping[T]
}

func (r *repository[T]) check() error {
	if r.uow.done {
		return store.ErrClosed
	}
	return nil
}

func (r *repository[T]) GetByID(ctx context.Context, id int64) (T, bool, error) {
	var zero T
	if err := r.check(); err != nil {
		return zero, false, err
	}
	row := r.uow.tx.QueryRowContext(ctx, r.m.selectSQL()+" WHERE id = ?", id)
	item, err := r.m.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("failed to read %s %d: %w", r.m.table, id, err)
	}
	return item, true, nil
}

func (r *repository[T]) Find(ctx context.Context, pred func(T) bool) ([]T, error) {
	if err := r.check(); err != nil {
		return nil, err
	}
	rows, err := r.uow.tx.QueryContext(ctx, r.m.selectSQL()+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", r.m.table, err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		item, err := r.m.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", r.m.table, err)
		}
		if pred == nil || pred(item) {
			out = append(out, item)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", r.m.table, err)
	}
	return out, nil
}

func (r *repository[T]) GetAll(ctx context.Context) ([]T, error) {
	return r.Find(ctx, nil)
}

func (r *repository[T]) Create(ctx context.Context, item *T) error {
	if err := r.check(); err != nil {
		return err
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(r.m.columns)), ", ")
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", r.m.table, strings.Join(r.m.columns, ", "), placeholders)
	res, err := r.uow.tx.ExecContext(ctx, q, r.m.values(*item)...)
	if err != nil {
		return fmt.Errorf("failed to insert %s: %w", r.m.table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read %s id: %w", r.m.table, err)
	}
	r.m.setID(item, id)
	return nil
}

func (r *repository[T]) Update(ctx context.Context, id int64, item T) error {
	if err := r.check(); err != nil {
		return err
	}
	sets := make([]string, len(r.m.columns))
	for i, c := range r.m.columns {
		sets[i] = c + " = ?"
	}
	q := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", r.m.table, strings.Join(sets, ", "))
	args := append(r.m.values(item), id)
	res, err := r.uow.tx.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s %d: %w", r.m.table, id, err)
	}
	return requireAffected(res)
}

func (r *repository[T]) Delete(ctx context.Context, id int64) error {
	if err := r.check(); err != nil {
		return err
	}
	res, err := r.uow.tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", r.m.table), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s %d: %w", r.m.table, id, err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

var taskMapping = mapping[types.Task]{
	table: "tasks",
	columns: []string{
		"name", "description", "author_id", "assignee_id", "status_id", "priority_id",
		"progress", "start_date", "finish_date", "deadline",
	},
	scan: func(s scanner) (types.Task, error) {
		var t types.Task
		var progress sql.NullInt64
		var start, finish, deadline sql.NullTime
		err := s.Scan(&t.ID, &t.Name, &t.Description, &t.AuthorID, &t.AssigneeID, &t.StatusID, &t.PriorityID,
			&progress, &start, &finish, &deadline)
		if err != nil {
			return t, err
		}
		if progress.Valid {
			t.Progress = types.IntPtr(int(progress.Int64))
		}
		t.StartDate = fromNullTime(start)
		t.FinishDate = fromNullTime(finish)
		t.Deadline = fromNullTime(deadline)
		return t, nil
	},
	values: func(t types.Task) []any {
		var progress any
		if t.Progress != nil {
			progress = *t.Progress
		}
		return []any{
			t.Name, t.Description, t.AuthorID, t.AssigneeID, t.StatusID, t.PriorityID,
			progress, toNullTime(t.StartDate), toNullTime(t.FinishDate), toNullTime(t.Deadline),
		}
	},
	setID: func(t *types.Task, id int64) { t.ID = id },
}

var personMapping = mapping[types.Person]{
	table:   "people",
	columns: []string{"user_id", "first_name", "last_name", "role", "email", "team_id"},
	scan: func(s scanner) (types.Person, error) {
		var p types.Person
		var role string
		var teamID sql.NullInt64
		if err := s.Scan(&p.ID, &p.UserID, &p.FirstName, &p.LastName, &role, &p.Email, &teamID); err != nil {
			return p, err
		}
		p.Role = types.Role(role)
		if teamID.Valid {
			id := teamID.Int64
			p.TeamID = &id
		}
		return p, nil
	},
	values: func(p types.Person) []any {
		var teamID any
		if p.TeamID != nil {
			teamID = *p.TeamID
		}
		return []any{p.UserID, p.FirstName, p.LastName, string(p.Role), p.Email, teamID}
	},
	setID: func(p *types.Person, id int64) { p.ID = id },
}

var statusMapping = mapping[types.Status]{
	table:   "statuses",
	columns: []string{"name"},
	scan: func(s scanner) (types.Status, error) {
		var st types.Status
		err := s.Scan(&st.ID, &st.Name)
		return st, err
	},
	values: func(st types.Status) []any { return []any{st.Name} },
	setID:  func(st *types.Status, id int64) { st.ID = id },
}

var priorityMapping = mapping[types.Priority]{
	table:   "priorities",
	columns: []string{"name"},
	scan: func(s scanner) (types.Priority, error) {
		var p types.Priority
		err := s.Scan(&p.ID, &p.Name)
		return p, err
	},
	values: func(p types.Priority) []any { return []any{p.Name} },
	setID:  func(p *types.Priority, id int64) { p.ID = id },
}

var teamMapping = mapping[types.Team]{
	table:   "teams",
	columns: []string{"name", "manager_id"},
	scan: func(s scanner) (types.Team, error) {
		var t types.Team
		err := s.Scan(&t.ID, &t.Name, &t.ManagerID)
		return t, err
	},
	values: func(t types.Team) []any { return []any{t.Name, t.ManagerID} },
	setID:  func(t *types.Team, id int64) { t.ID = id },
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func fromNullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
