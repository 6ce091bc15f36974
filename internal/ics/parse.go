package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "dayview/internal/log"
	"dayview/internal/model"
)

// Source describes a single calendar file to read events from.
type Source struct {
	// ID is an internal identifier used for de-dup and logging.
	ID string
	// Path is the location of the .ics file on disk.
	Path string
	// Name is a human-friendly label.
	Name string
}

// ParseICS parses a single ICS payload into timed events.
//
//   - It relies on the underlying library's VTIMEZONE/TZID handling to
//     construct proper time.Time values.
//   - All-day VEVENTs (VALUE=DATE starts) are skipped: the day view only
//     places timed tiles.
//   - Recurrence rules are not expanded; a VEVENT contributes exactly the
//     DTSTART/DTEND it carries.
//
// Per-event parse failures are logged and skipped so that one malformed
// VEVENT does not drop the whole calendar.
func ParseICS(src Source, body []byte) ([]model.Event, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err, "id", src.ID, "path", src.Path)
		return nil, err
	}

	events := make([]model.Event, 0)

	for _, comp := range cal.Events() {
		ev, skip, perr := parseVEvent(src, comp)
		if perr != nil {
			appLog.Error("ics vevent parse failed", perr, "id", src.ID, "path", src.Path)
			continue
		}
		if skip {
			continue
		}
		events = append(events, ev)
	}

	appLog.Info("ics parse completed", "id", src.ID, "path", src.Path, "event_count", len(events))
	return events, nil
}

func parseVEvent(src Source, ve *ical.VEvent) (model.Event, bool, error) {
	var out model.Event
	out.CalendarID = src.ID

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, false, errors.New("missing UID")
	}
	out.UID = uidProp.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}

	// All-day detection: VALUE=DATE or a DTSTART without a time component.
	if dtStartProp := ve.GetProperty(ical.ComponentPropertyDtStart); dtStartProp != nil {
		if params := dtStartProp.ICalParameters; params != nil {
			if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
				return out, true, nil
			}
		}
		if !strings.Contains(dtStartProp.Value, "T") {
			return out, true, nil
		}
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return out, false, err
	}
	end, err := ve.GetEndAt()
	if err != nil {
		return out, false, err
	}

	out.Start = start
	out.End = end
	return out, false, nil
}

// sameDay reports whether two times fall on the same calendar day.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
