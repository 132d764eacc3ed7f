// Package catalog holds the fixed status and priority catalogs and the
// read-only reference snapshot shared by the lifecycle and query services.
package catalog

// Canonical status names, as persisted
const (
	NotStarted  = "Not started"
	InProgress  = "In Progress"
	Test        = "Test"
	AlmostReady = "Almost Ready"
	Executed    = "Executed"
	Completed   = "Completed"
	Canceled    = "Canceled"
)

// Canonical priority names
const (
	Low    = "Low"
	Middle = "Middle"
	High   = "High"
)

// Statuses lists every status in pipeline order
var Statuses = []string{NotStarted, InProgress, Test, AlmostReady, Executed, Completed, Canceled}

// Priorities lists every priority from lowest to highest
var Priorities = []string{Low, Middle, High}

// weights maps each status to the progress it implies.
var weights = map[string]int{
	NotStarted:  0,
	InProgress:  20,
	Test:        40,
	AlmostReady: 60,
	Executed:    80,
	Completed:   100,
	Canceled:    0,
}

// Weight returns the progress weight of a status name
func Weight(name string) (int, bool) {
	w, ok := weights[name]
	return w, ok
}
