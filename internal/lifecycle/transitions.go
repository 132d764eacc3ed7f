package lifecycle

import (
	"fmt"
	"time"

	"github.com/clintrovert/taskboard/internal/catalog"
	"github.com/clintrovert/taskboard/pkg/types"
)

// Relation is how an actor stands to a task
type Relation int

const (
	Unrelated Relation = iota
	Author
	Assignee
)

func (r Relation) String() string {
	switch r {
	case Author:
		return "author"
	case Assignee:
		return "assignee"
	default:
		return "unrelated"
	}
}

// RelationOf classifies actorID against the task. Authorship wins when the
// actor is both.
func RelationOf(task types.Task, actorID int64) Relation {
	switch actorID {
	case task.AuthorID:
		return Author
	case task.AssigneeID:
		return Assignee
	default:
		return Unrelated
	}
}

type dateEffect int

const (
	keepDate dateEffect = iota
	setDate
	clearDate
)

func (d dateEffect) apply(field **time.Time, now time.Time) {
	switch d {
	case setDate:
		t := now
		*field = &t
	case clearDate:
		*field = nil
	}
}

// Transition is the effect of moving a task into one status
type Transition struct {
	Progress   int
	startDate  dateEffect
	finishDate dateEffect
	// Requires names the only status the task may currently be in; empty
	// means any.
	Requires string
}

// Table maps a requested status name to its transition
type Table map[string]Transition

// Apply writes the transition's progress and date effects onto task
func (tr Transition) Apply(task *types.Task, now time.Time) {
	task.Progress = types.IntPtr(tr.Progress)
	tr.startDate.apply(&task.StartDate, now)
	tr.finishDate.apply(&task.FinishDate, now)
}

func weight(name string) int {
	w, ok := catalog.Weight(name)
	if !ok {
		panic(fmt.Sprintf("lifecycle: status %q has no weight", name))
	}
	return w
}

// AuthorTransitions: the author confirms completion or cancels.
var AuthorTransitions = Table{
	catalog.Completed: {Progress: weight(catalog.Completed), finishDate: setDate, Requires: catalog.Executed},
	catalog.Canceled:  {Progress: weight(catalog.Canceled)},
}

// AssigneeTransitions: the assignee reports day-to-day progress.
var AssigneeTransitions = Table{
	catalog.NotStarted:  {Progress: weight(catalog.NotStarted), startDate: clearDate},
	catalog.InProgress:  {Progress: weight(catalog.InProgress), startDate: setDate},
	catalog.Test:        {Progress: weight(catalog.Test)},
	catalog.AlmostReady: {Progress: weight(catalog.AlmostReady)},
	catalog.Executed:    {Progress: weight(catalog.Executed)},
}

// TableFor returns the transition table of a relation
func TableFor(r Relation) Table {
	switch r {
	case Author:
		return AuthorTransitions
	case Assignee:
		return AssigneeTransitions
	default:
		return nil
	}
}

// resolve picks the transition for actorID requesting status on task. The
// author path is taken whenever the actor authored the task, even if they
// are also its assignee.
func resolve(task types.Task, actorID int64, requested, current string) (Relation, Transition, error) {
	rel := RelationOf(task, actorID)
	if rel == Unrelated {
		return rel, Transition{}, types.Errorf(types.KindTaskAccessDenied,
			"person %d is neither author nor assignee of task %d", actorID, task.ID)
	}

	tr, ok := TableFor(rel)[requested]
	if !ok {
		return rel, Transition{}, types.Errorf(types.KindStatusAccessDenied,
			"%s cannot set status %q", rel, requested)
	}
	if tr.Requires != "" && current != tr.Requires {
		return rel, Transition{}, types.Errorf(types.KindStatusAccessDenied,
			"%s can set %q only from %q, task is %q", rel, requested, tr.Requires, current)
	}
	return rel, tr, nil
}
