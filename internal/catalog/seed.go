package catalog

import (
	"context"
	"fmt"

	"github.com/clintrovert/taskboard/internal/store"
	"github.com/clintrovert/taskboard/pkg/types"
)

// Seed creates any catalog rows missing from the store, in catalog order.
func Seed(ctx context.Context, st store.Store) error {
	uow, err := st.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin unit of work: %w", err)
	}
	defer uow.Rollback()

	statuses, err := uow.Statuses().GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load statuses: %w", err)
	}
	have := make(map[string]bool, len(statuses))
	for _, s := range statuses {
		have[s.Name] = true
	}
	for _, name := range Statuses {
		if have[name] {
			continue
		}
		row := types.Status{Name: name}
		if err := uow.Statuses().Create(ctx, &row); err != nil {
			return fmt.Errorf("failed to seed status %q: %w", name, err)
		}
	}

	priorities, err := uow.Priorities().GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load priorities: %w", err)
	}
	have = make(map[string]bool, len(priorities))
	for _, p := range priorities {
		have[p.Name] = true
	}
	for _, name := range Priorities {
		if have[name] {
			continue
		}
		row := types.Priority{Name: name}
		if err := uow.Priorities().Create(ctx, &row); err != nil {
			return fmt.Errorf("failed to seed priority %q: %w", name, err)
		}
	}

	return uow.Save(ctx)
}
