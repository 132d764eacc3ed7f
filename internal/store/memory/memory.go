// Package memory is an in-process store.Store. Each unit of work reads a
// private copy of the data taken at Begin and records which rows it wrote.
// Save replays only those rows onto the live tables under a lock, so
// concurrent writers follow last-writer-wins per row.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/clintrovert/taskboard/internal/store"
	"github.com/clintrovert/taskboard/pkg/types"
)

type table[T store.Entity] struct {
	name   string
	rows   map[int64]T
	nextID int64
	clone  func(T) T
	setID  func(*T, int64)
}

func newTable[T store.Entity](name string, clone func(T) T, setID func(*T, int64)) *table[T] {
	return &table[T]{name: name, rows: make(map[int64]T), nextID: 1, clone: clone, setID: setID}
}

func (t *table[T]) copy() *table[T] {
	c := &table[T]{
		name:   t.name,
		rows:   make(map[int64]T, len(t.rows)),
		nextID: t.nextID,
		clone:  t.clone,
		setID:  t.setID,
	}
	for id, row := range t.rows {
		c.rows[id] = t.clone(row)
	}
	return c
}

type dataset struct {
	tasks      *table[types.Task]
	people     *table[types.Person]
	statuses   *table[types.Status]
	priorities *table[types.Priority]
	teams      *table[types.Team]
}

func identity[T any](v T) T { return v }

func newDataset() *dataset {
	return &dataset{
		tasks:      newTable("tasks", types.Task.Clone, func(t *types.Task, id int64) { t.ID = id }),
		people:     newTable("people", types.Person.Clone, func(p *types.Person, id int64) { p.ID = id }),
		statuses:   newTable("statuses", identity[types.Status], func(s *types.Status, id int64) { s.ID = id }),
		priorities: newTable("priorities", identity[types.Priority], func(p *types.Priority, id int64) { p.ID = id }),
		teams:      newTable("teams", identity[types.Team], func(t *types.Team, id int64) { t.ID = id }),
	}
}

// Store keeps all rows in memory
type Store struct {
	mu     sync.Mutex
	data   *dataset
	closed bool
}

// New creates an empty store
func New() *Store {
	return &Store{data: newDataset()}
}

// Begin opens a unit of work over a private copy of the data
func (s *Store) Begin(ctx context.Context) (store.UnitOfWork, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, store.ErrClosed
	}
	u := &unitOfWork{store: s}
	u.tasks = newPending(s, s.data.tasks)
	u.people = newPending(s, s.data.people)
	u.statuses = newPending(s, s.data.statuses)
	u.priorities = newPending(s, s.data.priorities)
	u.teams = newPending(s, s.data.teams)
	return u, nil
}

// Ping reports whether the store is open
func (s *Store) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}
	return ctx.Err()
}

// Close rejects further units of work
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// commit checks every change set before applying any of them
func (s *Store) commit(changes []changeSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}
	for _, c := range changes {
		if err := c.validate(); err != nil {
			return err
		}
	}
	for _, c := range changes {
		c.apply()
	}
	return nil
}

// allocate hands out ids from the live table so concurrent units never
// collide. Ids of rolled back rows are not reused.
func allocate[T store.Entity](s *Store, live *table[T]) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := live.nextID
	live.nextID++
	return id
}

type changeSet interface {
	validate() error
	apply()
}

// pending is one table as seen by a unit of work: the private view plus
// the ids it created, changed or removed.
type pending[T store.Entity] struct {
	store   *Store
	live    *table[T]
	view    *table[T]
	created map[int64]bool
	touched map[int64]bool
}

func newPending[T store.Entity](s *Store, live *table[T]) *pending[T] {
	return &pending[T]{
		store:   s,
		live:    live,
		view:    live.copy(),
		created: make(map[int64]bool),
		touched: make(map[int64]bool),
	}
}

// validate rejects an update to a row another unit deleted after Begin.
// Called with the store lock held.
func (p *pending[T]) validate() error {
	for id := range p.touched {
		if p.created[id] {
			continue
		}
		_, inView := p.view.rows[id]
		_, inLive := p.live.rows[id]
		if inView && !inLive {
			return fmt.Errorf("%w: %s row %d was deleted concurrently", store.ErrConflict, p.live.name, id)
		}
	}
	return nil
}

// apply writes the touched rows onto the live table. Called with the
// store lock held.
func (p *pending[T]) apply() {
	for id := range p.touched {
		row, ok := p.view.rows[id]
		if !ok {
			delete(p.live.rows, id)
			continue
		}
		p.live.rows[id] = p.live.clone(row)
	}
}

type unitOfWork struct {
	store      *Store
	tasks      *pending[types.Task]
	people     *pending[types.Person]
	statuses   *pending[types.Status]
	priorities *pending[types.Priority]
	teams      *pending[types.Team]
	done       bool
}

func (u *unitOfWork) Tasks() store.Repository[types.Task] {
	return &repository[types.Task]{uow: u, p: u.tasks}
}

func (u *unitOfWork) People() store.Repository[types.Person] {
	return &repository[types.Person]{uow: u, p: u.people}
}

func (u *unitOfWork) Statuses() store.Repository[types.Status] {
	return &repository[types.Status]{uow: u, p: u.statuses}
}

func (u *unitOfWork) Priorities() store.Repository[types.Priority] {
	return &repository[types.Priority]{uow: u, p: u.priorities}
}

func (u *unitOfWork) Teams() store.Repository[types.Team] {
	return &repository[types.Team]{uow: u, p: u.teams}
}

func (u *unitOfWork) Save(ctx context.Context) error {
	if u.done {
		return store.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := u.store.commit([]changeSet{u.tasks, u.people, u.statuses, u.priorities, u.teams}); err != nil {
		return err
	}
	u.done = true
	return nil
}

func (u *unitOfWork) Rollback() error {
	u.done = true
	return nil
}

type repository[T store.Entity] struct {
	uow *unitOfWork
	p   *pending[T]
}

func (r *repository[T]) check(ctx context.Context) error {
	if r.uow.done {
		return store.ErrClosed
	}
	return ctx.Err()
}

func (r *repository[T]) GetByID(ctx context.Context, id int64) (T, bool, error) {
	var zero T
	if err := r.check(ctx); err != nil {
		return zero, false, err
	}
	row, ok := r.p.view.rows[id]
	if !ok {
		return zero, false, nil
	}
	return r.p.view.clone(row), true, nil
}

func (r *repository[T]) Find(ctx context.Context, pred func(T) bool) ([]T, error) {
	if err := r.check(ctx); err != nil {
		return nil, err
	}
	out := make([]T, 0)
	for _, row := range r.p.view.rows {
		if pred == nil || pred(row) {
			out = append(out, r.p.view.clone(row))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID() < out[j].EntityID() })
	return out, nil
}

func (r *repository[T]) GetAll(ctx context.Context) ([]T, error) {
	return r.Find(ctx, nil)
}

func (r *repository[T]) Create(ctx context.Context, item *T) error {
	if err := r.check(ctx); err != nil {
		return err
	}
	id := allocate(r.p.store, r.p.live)
	r.p.view.setID(item, id)
	r.p.view.rows[id] = r.p.view.clone(*item)
	r.p.created[id] = true
	r.p.touched[id] = true
	return nil
}

func (r *repository[T]) Update(ctx context.Context, id int64, item T) error {
	if err := r.check(ctx); err != nil {
		return err
	}
	if _, ok := r.p.view.rows[id]; !ok {
		return store.ErrNotFound
	}
	r.p.view.setID(&item, id)
	r.p.view.rows[id] = r.p.view.clone(item)
	r.p.touched[id] = true
	return nil
}

func (r *repository[T]) Delete(ctx context.Context, id int64) error {
	if err := r.check(ctx); err != nil {
		return err
	}
	if _, ok := r.p.view.rows[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.p.view.rows, id)
	r.p.touched[id] = true
	return nil
}
