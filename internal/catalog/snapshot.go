package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/clintrovert/taskboard/internal/store"
	"github.com/clintrovert/taskboard/pkg/types"
)

// Snapshot is an immutable view of the status and priority rows
type Snapshot struct {
	statusesByName   map[string]types.Status
	statusesByID     map[int64]types.Status
	prioritiesByName map[string]types.Priority
	prioritiesByID   map[int64]types.Priority
}

// NewSnapshot indexes the given rows and checks that every catalog name is present
func NewSnapshot(statuses []types.Status, priorities []types.Priority) (*Snapshot, error) {
	s := &Snapshot{
		statusesByName:   make(map[string]types.Status, len(statuses)),
		statusesByID:     make(map[int64]types.Status, len(statuses)),
		prioritiesByName: make(map[string]types.Priority, len(priorities)),
		prioritiesByID:   make(map[int64]types.Priority, len(priorities)),
	}
	for _, st := range statuses {
		if _, known := weights[st.Name]; !known {
			return nil, types.Errorf(types.KindIncompleteReferenceData, "unexpected status %q in store", st.Name)
		}
		if _, dup := s.statusesByName[st.Name]; dup {
			return nil, types.Errorf(types.KindIncompleteReferenceData, "duplicate status %q in store", st.Name)
		}
		s.statusesByName[st.Name] = st
		s.statusesByID[st.ID] = st
	}
	for _, name := range Statuses {
		if _, ok := s.statusesByName[name]; !ok {
			return nil, types.Errorf(types.KindIncompleteReferenceData, "status %q missing from store", name)
		}
	}
	for _, p := range priorities {
		s.prioritiesByName[p.Name] = p
		s.prioritiesByID[p.ID] = p
	}
	for _, name := range Priorities {
		if _, ok := s.prioritiesByName[name]; !ok {
			return nil, types.Errorf(types.KindIncompleteReferenceData, "priority %q missing from store", name)
		}
	}
	return s, nil
}

// Load reads the catalogs from the store
func Load(ctx context.Context, st store.Store) (*Snapshot, error) {
	uow, err := st.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin unit of work: %w", err)
	}
	defer uow.Rollback()

	statuses, err := uow.Statuses().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load statuses: %w", err)
	}
	priorities, err := uow.Priorities().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load priorities: %w", err)
	}
	return NewSnapshot(statuses, priorities)
}

// StatusByName resolves a status row by exact, case-sensitive name
func (s *Snapshot) StatusByName(name string) (types.Status, error) {
	st, ok := s.statusesByName[name]
	if !ok {
		return types.Status{}, types.Errorf(types.KindStatusNotFound, "status %q not found", name)
	}
	return st, nil
}

// StatusByID resolves a status row by id
func (s *Snapshot) StatusByID(id int64) (types.Status, bool) {
	st, ok := s.statusesByID[id]
	return st, ok
}

// PriorityByName resolves a priority row by exact name
func (s *Snapshot) PriorityByName(name string) (types.Priority, error) {
	p, ok := s.prioritiesByName[name]
	if !ok {
		return types.Priority{}, types.Errorf(types.KindPriorityNotFound, "priority %q not found", name)
	}
	return p, nil
}

// PriorityByID resolves a priority row by id
func (s *Snapshot) PriorityByID(id int64) (types.Priority, bool) {
	p, ok := s.prioritiesByID[id]
	return p, ok
}

// StatusList returns the status rows ordered by id
func (s *Snapshot) StatusList() []types.Status {
	out := make([]types.Status, 0, len(s.statusesByID))
	for _, st := range s.statusesByID {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PriorityList returns the priority rows ordered by id
func (s *Snapshot) PriorityList() []types.Priority {
	out := make([]types.Priority, 0, len(s.prioritiesByID))
	for _, p := range s.prioritiesByID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SeedStatuses returns the default status rows with ids 1..7
func SeedStatuses() []types.Status {
	out := make([]types.Status, len(Statuses))
	for i, name := range Statuses {
		out[i] = types.Status{ID: int64(i + 1), Name: name}
	}
	return out
}

// SeedPriorities returns the default priority rows with ids 1..3
func SeedPriorities() []types.Priority {
	out := make([]types.Priority, len(Priorities))
	for i, name := range Priorities {
		out[i] = types.Priority{ID: int64(i + 1), Name: name}
	}
	return out
}
