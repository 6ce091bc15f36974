package model

import "time"

// Event is a single timed calendar entry as consumed by the layout engine:
// already filtered to one calendar day, with wall-clock start and end.
type Event struct {
	CalendarID string // calendar source ID (e.g., config calendar ID)
	UID        string // iCalendar UID

	Summary  string
	Location string

	Start time.Time
	End   time.Time
}

// Key uniquely identifies this event instance within a day view. The UID
// alone is not enough once the same UID appears with different times, so the
// start instant is folded in.
func (e Event) Key() string {
	return e.UID + "/" + e.Start.Format(time.RFC3339)
}

// Overlaps reports whether e and o collide under the half-open interval rule:
// touching endpoints do not overlap.
func (e Event) Overlaps(o Event) bool {
	return e.End.After(o.Start) && e.Start.Before(o.End)
}

// Duration returns the elapsed time of the event. Degenerate events may
// yield zero or a negative duration; callers decide how to treat those.
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}
