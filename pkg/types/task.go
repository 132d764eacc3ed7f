package types

import (
	"time"
)

// Task is the stored task row
type Task struct {
	ID          int64
	Name        string
	Description string
	AuthorID    int64
	AssigneeID  int64
	StatusID    int64
	PriorityID  int64
	Progress    *int
	StartDate   *time.Time
	FinishDate  *time.Time
	Deadline    *time.Time
}

// EntityID returns the task identifier
func (t Task) EntityID() int64 { return t.ID }

// Clone returns a deep copy so callers never share pointer fields with a store
func (t Task) Clone() Task {
	c := t
	c.Progress = cloneInt(t.Progress)
	c.StartDate = cloneTime(t.StartDate)
	c.FinishDate = cloneTime(t.FinishDate)
	c.Deadline = cloneTime(t.Deadline)
	return c
}

// TaskDraft carries the author-editable fields of a task
type TaskDraft struct {
	Name        string
	Description string
	AssigneeID  int64
	Priority    string
	Deadline    *time.Time
}

// TaskView is the read-optimized task with display names resolved
type TaskView struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Author      string     `json:"author"`
	AuthorID    int64      `json:"author_id"`
	Assignee    string     `json:"assignee"`
	AssigneeID  int64      `json:"assignee_id"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Progress    *int       `json:"progress"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	FinishDate  *time.Time `json:"finish_date,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

// Status is a fixed lifecycle state
type Status struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (s Status) EntityID() int64 { return s.ID }

// Priority is a fixed task priority
type Priority struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (p Priority) EntityID() int64 { return p.ID }

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}
