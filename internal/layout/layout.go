package layout

import (
	"sort"

	"dayview/internal/clock"
	"dayview/internal/model"
)

// Geometry carries the viewport parameters for one day column. SlotMinutes
// acts as a vertical pixel-scale multiplier together with HeightPerMinute;
// events are placed at exact sub-slot offsets, never snapped.
type Geometry struct {
	// RegionWidth is the total width of the rendering area in pixels,
	// including the reserved hours column.
	RegionWidth float64

	// HeightPerMinute is the vertical pixel scale per minute of elapsed time.
	HeightPerMinute float64

	// SlotMinutes is the slot granularity policy value (5, 15, 30 or 60).
	SlotMinutes int

	// HoursColumnWidth is the left margin reserved for time labels.
	HoursColumnWidth float64
}

// AvailableWidth is the horizontal span events may occupy.
func (g Geometry) AvailableWidth() float64 {
	return g.RegionWidth - g.HoursColumnWidth
}

// unit is the vertical scale factor, SlotMinutes * HeightPerMinute pixels
// per hour-fraction.
func (g Geometry) unit() float64 {
	return float64(g.SlotMinutes) * g.HeightPerMinute
}

// Rect is the draw slot assigned to one event, in pixels.
type Rect struct {
	Top    float64
	Height float64
	Left   float64
	Width  float64
}

// tile is the transient per-event record accumulated during one Day call.
// Vertical placement is filled first, the column seat after run packing; the
// public Rect is only built once everything is known.
type tile struct {
	event  model.Event
	top    float64
	height float64
	column int
}

// Day assigns every event a non-overlapping rectangular slot within the day
// column described by geo. Overlapping events sit side by side; each event
// stretches right across as many columns as it can without colliding with
// any occupant. The result maps model.Event.Key() to the event's Rect.
//
// The computation is a pure function of its inputs: no input is mutated and
// no state survives the call, so concurrent invocations are safe.
func Day(events []model.Event, geo Geometry) map[string]Rect {
	out := make(map[string]Rect, len(events))
	if len(events) == 0 {
		return out
	}

	tiles := make([]*tile, 0, len(events))
	for _, ev := range events {
		tiles = append(tiles, &tile{
			event:  ev,
			top:    verticalOffset(clock.FromTime(ev.Start), geo),
			height: tileHeight(ev, geo),
		})
	}

	// Stable sort keeps source order as the tie-break for equal starts.
	sort.SliceStable(tiles, func(i, j int) bool {
		return tiles[i].event.Start.Before(tiles[j].event.Start)
	})

	for _, run := range splitRuns(tiles) {
		packRun(run, geo, out)
	}

	return out
}

// verticalOffset maps a time-of-day to a pixel offset from the top of the
// day column.
func verticalOffset(hm clock.HourMinute, geo Geometry) float64 {
	return (float64(hm.Hour) + float64(hm.Minute)/60) * geo.unit()
}

// tileHeight maps the event's elapsed duration to a pixel height. Degenerate
// events (End at or before Start) get a zero or negative height rather than
// an error; the caller is expected to filter them if unwanted.
func tileHeight(ev model.Event, geo Geometry) float64 {
	elapsed := ev.Duration()
	if elapsed <= 0 {
		return elapsed.Minutes() / 60 * geo.unit()
	}
	hm := clock.FromDuration(elapsed)
	return (float64(hm.Hour) + float64(hm.Minute)/60) * geo.unit()
}

// splitRuns groups the sorted tiles into maximal runs of transitively
// connected overlaps. A tile whose start is at or before the latest end seen
// so far joins the current run; a strictly later start closes it.
func splitRuns(tiles []*tile) [][]*tile {
	var runs [][]*tile
	var current []*tile
	var lastEventEnding struct {
		set bool
		at  int64
	}

	for _, tl := range tiles {
		start := tl.event.Start.UnixNano()
		if lastEventEnding.set && start > lastEventEnding.at {
			runs = append(runs, current)
			current = nil
			lastEventEnding.set = false
		}
		current = append(current, tl)
		end := tl.event.End.UnixNano()
		if !lastEventEnding.set || end > lastEventEnding.at {
			lastEventEnding.at = end
			lastEventEnding.set = true
		}
	}
	if len(current) > 0 {
		runs = append(runs, current)
	}
	return runs
}

// packRun seats the run's tiles into columns (greedy first fit, probing each
// column's last-placed tile) and then resolves horizontal geometry.
func packRun(run []*tile, geo Geometry, out map[string]Rect) {
	var columns [][]*tile

	for _, tl := range run {
		placed := false
		for ci, col := range columns {
			last := col[len(col)-1]
			if !last.event.Overlaps(tl.event) {
				columns[ci] = append(col, tl)
				tl.column = ci
				placed = true
				break
			}
		}
		if !placed {
			tl.column = len(columns)
			columns = append(columns, []*tile{tl})
		}
	}

	numColumns := float64(len(columns))
	avail := geo.AvailableWidth()

	for _, tl := range run {
		span := colspan(tl, columns)
		out[tl.event.Key()] = Rect{
			Top:    tl.top,
			Height: tl.height,
			Left:   geo.HoursColumnWidth + float64(tl.column)/numColumns*avail,
			Width:  avail * float64(span) / numColumns,
		}
	}
}

// colspan counts how many consecutive columns, starting at the tile's own,
// the tile may stretch across. The scan stops at the first later column
// holding any colliding occupant. This widens an event into free space to
// its right even though it stays seated in its own column.
func colspan(tl *tile, columns [][]*tile) int {
	span := 1
	for ci := tl.column + 1; ci < len(columns); ci++ {
		for _, other := range columns[ci] {
			if other.event.Overlaps(tl.event) {
				return span
			}
		}
		span++
	}
	return span
}
