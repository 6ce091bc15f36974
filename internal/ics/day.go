package ics

import (
	"os"
	"sort"
	"time"

	appLog "dayview/internal/log"
	"dayview/internal/model"
)

// LoadAll reads and parses every source, collecting events from the files
// that could be read. Errors for individual sources are logged and returned
// alongside the events that did parse.
func LoadAll(sources []Source) ([]model.Event, []error) {
	events := make([]model.Event, 0)
	errs := make([]error, 0)

	for _, src := range sources {
		body, err := os.ReadFile(src.Path)
		if err != nil {
			errs = append(errs, err)
			appLog.Error("ics read failed", err, "id", src.ID, "path", src.Path)
			continue
		}
		parsed, err := ParseICS(src, body)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		events = append(events, parsed...)
	}

	return events, errs
}

// FilterDay returns the events belonging to the given calendar day. Events
// are compared by their own wall-clock date components; no timezone
// conversion is applied. The start must fall on the day and the end must not
// cross into the next one (an end at exactly the following midnight counts
// as still inside). Multi-day events are dropped; the layout engine only
// handles single-day tiles.
func FilterDay(events []model.Event, date time.Time) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if !sameDay(ev.Start, date) {
			continue
		}
		if !sameDay(ev.End, date) && !isMidnightAfter(ev.End, date) {
			appLog.Debug("skipping multi-day event", "uid", ev.UID, "start", ev.Start, "end", ev.End)
			continue
		}
		out = append(out, ev)
	}

	// A stable order keeps downstream rendering deterministic even though
	// the layout pass sorts again itself.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

// isMidnightAfter reports whether t is exactly 00:00 of the day after date.
func isMidnightAfter(t, date time.Time) bool {
	next := date.AddDate(0, 0, 1)
	return sameDay(t, next) && t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}
