package view

import (
	"time"

	"dayview/internal/config"
	"dayview/internal/ics"
	"dayview/internal/layout"
	appLog "dayview/internal/log"
	"dayview/internal/model"
	"dayview/internal/render"
)

// Day is one fully computed day view: the events that survived the day
// filter, their assigned rectangles, and the rendered artifacts.
type Day struct {
	Date   time.Time
	Events []model.Event
	Rects  map[string]layout.Rect
	SVG    string
	HTML   string
}

// Geometry maps the configured view settings onto the layout engine's
// parameters.
func Geometry(v config.ViewConfig) layout.Geometry {
	return layout.Geometry{
		RegionWidth:      v.RegionWidth,
		HeightPerMinute:  v.HeightPerMinute,
		SlotMinutes:      v.SlotMinutes,
		HoursColumnWidth: v.HoursColumnWidth,
	}
}

// BuildDay runs the full pipeline for one calendar day: read the configured
// calendar files, keep the day's timed events, lay them out and render the
// SVG/HTML artifacts. Source-level read errors are logged and returned but
// never abort the build; the view is produced from whatever parsed.
func BuildDay(cfg *config.Config, date time.Time) (*Day, []error) {
	sources := make([]ics.Source, 0, len(cfg.Calendars))
	colors := make(map[string]string, len(cfg.Calendars))
	for _, cal := range cfg.Calendars {
		if cal.Path == "" {
			continue
		}
		id := cal.ID
		if id == "" {
			if cal.Name != "" {
				id = cal.Name
			} else {
				id = cal.Path
			}
		}
		sources = append(sources, ics.Source{ID: id, Path: cal.Path, Name: cal.Name})
		colors[id] = cal.Color
	}

	all, errs := ics.LoadAll(sources)
	events := ics.FilterDay(all, date)

	geo := Geometry(cfg.View)
	rects := layout.Day(events, geo)

	appLog.Debug("day view built",
		"date", date.Format("2006-01-02"),
		"events_total", len(all),
		"events_on_day", len(events),
	)

	svg := render.DaySVG(events, rects, render.Options{
		Geometry: geo,
		Date:     date,
		Colors:   colors,
	})

	return &Day{
		Date:   date,
		Events: events,
		Rects:  rects,
		SVG:    svg,
		HTML:   render.DayHTML(svg, date),
	}, errs
}
