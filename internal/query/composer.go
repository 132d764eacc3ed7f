// Package query builds enriched task views and the task retrieval variants.
package query

import (
	"github.com/clintrovert/taskboard/internal/catalog"
	"github.com/clintrovert/taskboard/pkg/types"
)

// Index holds the reference rows a task view is joined against
type Index struct {
	people     map[int64]types.Person
	statuses   map[int64]types.Status
	priorities map[int64]types.Priority
}

// NewIndex indexes people by id and takes statuses and priorities from the snapshot
func NewIndex(people []types.Person, snapshot *catalog.Snapshot) *Index {
	idx := &Index{
		people:     make(map[int64]types.Person, len(people)),
		statuses:   make(map[int64]types.Status),
		priorities: make(map[int64]types.Priority),
	}
	for _, p := range people {
		idx.people[p.ID] = p
	}
	for _, s := range snapshot.StatusList() {
		idx.statuses[s.ID] = s
	}
	for _, p := range snapshot.PriorityList() {
		idx.priorities[p.ID] = p
	}
	return idx
}

// Compose joins each task with its assignee, author, status and priority.
// A task with any unresolvable reference fails the whole composition.
func Compose(tasks []types.Task, idx *Index) ([]types.TaskView, error) {
	views := make([]types.TaskView, 0, len(tasks))
	for _, t := range tasks {
		v, err := idx.view(t)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

func (idx *Index) view(t types.Task) (types.TaskView, error) {
	assignee, ok := idx.people[t.AssigneeID]
	if !ok {
		return types.TaskView{}, missing(t, "assignee", t.AssigneeID)
	}
	author, ok := idx.people[t.AuthorID]
	if !ok {
		return types.TaskView{}, missing(t, "author", t.AuthorID)
	}
	status, ok := idx.statuses[t.StatusID]
	if !ok {
		return types.TaskView{}, missing(t, "status", t.StatusID)
	}
	priority, ok := idx.priorities[t.PriorityID]
	if !ok {
		return types.TaskView{}, missing(t, "priority", t.PriorityID)
	}

	c := t.Clone()
	return types.TaskView{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Author:      author.DisplayName(),
		AuthorID:    c.AuthorID,
		Assignee:    assignee.DisplayName(),
		AssigneeID:  c.AssigneeID,
		Status:      status.Name,
		Priority:    priority.Name,
		Progress:    c.Progress,
		StartDate:   c.StartDate,
		FinishDate:  c.FinishDate,
		Deadline:    c.Deadline,
	}, nil
}

func missing(t types.Task, ref string, id int64) error {
	return types.Errorf(types.KindIncompleteReferenceData, "task %d references unknown %s %d", t.ID, ref, id)
}
