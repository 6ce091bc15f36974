package layout_test

import (
	"fmt"
	"math"
	"testing"
	"time"

	"dayview/internal/layout"
	"dayview/internal/model"
)

var day = time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

func event(uid string, startH, startM, endH, endM int) model.Event {
	return model.Event{
		UID:     uid,
		Summary: uid,
		Start:   at(startH, startM),
		End:     at(endH, endM),
	}
}

// geo uses an hour height of 60px (slot 60 * 1px/min) with a 600px band for
// events, so expected widths come out as whole numbers.
var geo = layout.Geometry{
	RegionWidth:      660,
	HeightPerMinute:  1,
	SlotMinutes:      60,
	HoursColumnWidth: 60,
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestTwoOverlappingEventsSplitTheBand(t *testing.T) {
	a := event("a", 9, 0, 10, 0)
	b := event("b", 9, 30, 10, 30)

	rects := layout.Day([]model.Event{b, a}, geo)

	ra, rb := rects[a.Key()], rects[b.Key()]
	if !approx(ra.Width, 300) || !approx(rb.Width, 300) {
		t.Errorf("widths = %v, %v, want 300 each", ra.Width, rb.Width)
	}
	if !(ra.Left < rb.Left) {
		t.Errorf("a.Left (%v) should be left of b.Left (%v)", ra.Left, rb.Left)
	}
	if !approx(ra.Left, 60) || !approx(rb.Left, 360) {
		t.Errorf("lefts = %v, %v, want 60 and 360", ra.Left, rb.Left)
	}
}

func TestTouchingEventsShareTheFullWidth(t *testing.T) {
	a := event("a", 9, 0, 10, 0)
	b := event("b", 10, 0, 11, 0)

	rects := layout.Day([]model.Event{a, b}, geo)

	for _, ev := range []model.Event{a, b} {
		r := rects[ev.Key()]
		if !approx(r.Left, 60) || !approx(r.Width, 600) {
			t.Errorf("%s: rect = %+v, want full width at left 60", ev.UID, r)
		}
	}
}

func TestThreeWayOverlapSplitsInThirds(t *testing.T) {
	evs := []model.Event{
		event("a", 9, 0, 11, 0),
		event("b", 9, 0, 11, 0),
		event("c", 9, 0, 11, 0),
	}

	rects := layout.Day(evs, geo)

	lefts := map[float64]bool{}
	for _, ev := range evs {
		r := rects[ev.Key()]
		if !approx(r.Width, 200) {
			t.Errorf("%s: width = %v, want 200", ev.UID, r.Width)
		}
		lefts[r.Left] = true
	}
	for _, want := range []float64{60, 260, 460} {
		if !lefts[want] {
			t.Errorf("missing column at left %v (got %v)", want, lefts)
		}
	}
}

func TestZeroDurationEvent(t *testing.T) {
	a := event("a", 9, 0, 9, 0)

	rects := layout.Day([]model.Event{a}, geo)

	r, ok := rects[a.Key()]
	if !ok {
		t.Fatal("zero-duration event received no rect")
	}
	if !approx(r.Height, 0) {
		t.Errorf("height = %v, want 0", r.Height)
	}
	if !approx(r.Top, 540) {
		t.Errorf("top = %v, want 540", r.Top)
	}
	if !approx(r.Width, 600) {
		t.Errorf("width = %v, want full band", r.Width)
	}
}

func TestZeroDurationCollisionBoundary(t *testing.T) {
	// A zero-width interval collides only when it strictly straddles
	// another event's bounds. Inside the interval it forces a second
	// column; sitting exactly on the start it does not collide and shares
	// the column.
	long := event("long", 9, 0, 10, 0)
	inside := event("inside", 9, 30, 9, 30)
	onStart := event("on-start", 9, 0, 9, 0)

	rects := layout.Day([]model.Event{long, inside}, geo)
	rl, ri := rects[long.Key()], rects[inside.Key()]
	if !approx(rl.Width, 300) || !approx(ri.Width, 300) {
		t.Errorf("straddling zero-duration event should split the band: long %+v, inside %+v", rl, ri)
	}
	if !(rl.Left < ri.Left) {
		t.Errorf("long (%v) should sit left of inside (%v)", rl.Left, ri.Left)
	}

	rects = layout.Day([]model.Event{onStart, long}, geo)
	ro, rl := rects[onStart.Key()], rects[long.Key()]
	if !approx(ro.Left, rl.Left) {
		t.Errorf("zero-duration event on the boundary should share the column: lefts %v vs %v", ro.Left, rl.Left)
	}
	if !approx(rl.Width, 600) || !approx(ro.Width, 600) {
		t.Errorf("non-colliding events should keep the full band: long %+v, on-start %+v", rl, ro)
	}
}

func TestEmptyInput(t *testing.T) {
	rects := layout.Day(nil, geo)
	if len(rects) != 0 {
		t.Errorf("expected empty result, got %v", rects)
	}
}

func TestSingleEventFillsBand(t *testing.T) {
	a := event("a", 13, 15, 14, 45)

	r := layout.Day([]model.Event{a}, geo)[a.Key()]

	if !approx(r.Top, 795) { // 13.25h * 60px
		t.Errorf("top = %v, want 795", r.Top)
	}
	if !approx(r.Height, 90) {
		t.Errorf("height = %v, want 90", r.Height)
	}
	if !approx(r.Left, 60) || !approx(r.Width, 600) {
		t.Errorf("rect = %+v, want full band", r)
	}
}

func TestSlotGranularityScalesVertically(t *testing.T) {
	fine := geo
	fine.SlotMinutes = 30

	a := event("a", 10, 30, 11, 0)
	r := layout.Day([]model.Event{a}, fine)[a.Key()]

	if !approx(r.Top, 315) { // 10.5h * 30px
		t.Errorf("top = %v, want 315", r.Top)
	}
	if !approx(r.Height, 15) {
		t.Errorf("height = %v, want 15", r.Height)
	}
}

func TestColspanWidensIntoFreeColumns(t *testing.T) {
	// A and B overlap and take columns 0 and 1. C starts when both end, seats
	// in column 0, and may stretch across column 1 since B does not collide.
	a := event("a", 9, 0, 10, 0)
	b := event("b", 9, 0, 10, 0)
	c := event("c", 10, 0, 11, 0)

	rects := layout.Day([]model.Event{a, b, c}, geo)

	if rc := rects[c.Key()]; !approx(rc.Width, 600) || !approx(rc.Left, 60) {
		t.Errorf("c: rect = %+v, want full band", rc)
	}
	if ra := rects[a.Key()]; !approx(ra.Width, 300) {
		t.Errorf("a: width = %v, want 300", ra.Width)
	}
}

func TestColspanStopsAtCollidingColumn(t *testing.T) {
	// A spans the whole morning in column 0; B and C stack into column 1.
	// A must not widen into column 1 because B collides.
	a := event("a", 9, 0, 12, 0)
	b := event("b", 9, 0, 10, 0)
	c := event("c", 10, 0, 11, 0)

	rects := layout.Day([]model.Event{a, b, c}, geo)

	if ra := rects[a.Key()]; !approx(ra.Width, 300) {
		t.Errorf("a: width = %v, want 300", ra.Width)
	}
	rb, rc := rects[b.Key()], rects[c.Key()]
	if !approx(rb.Left, 360) || !approx(rc.Left, 360) {
		t.Errorf("b/c lefts = %v, %v, want 360 each", rb.Left, rc.Left)
	}
}

func TestRunsAreIndependent(t *testing.T) {
	// Morning pair overlaps; the afternoon single starts strictly later and
	// must get the full band regardless of the morning run's column count.
	evs := []model.Event{
		event("m1", 9, 0, 10, 0),
		event("m2", 9, 30, 10, 30),
		event("solo", 14, 0, 15, 0),
	}

	rects := layout.Day(evs, geo)

	if r := rects["solo/"+at(14, 0).Format(time.RFC3339)]; !approx(r.Width, 600) {
		t.Errorf("solo: width = %v, want 600", r.Width)
	}
}

func TestTransitiveRunGrouping(t *testing.T) {
	// A overlaps B, B overlaps C, but A and C never touch. All three chain
	// into one run; C reuses A's column.
	a := event("a", 9, 0, 10, 0)
	b := event("b", 9, 30, 10, 30)
	c := event("c", 10, 15, 11, 0)

	rects := layout.Day([]model.Event{a, b, c}, geo)

	ra, rc := rects[a.Key()], rects[c.Key()]
	if !approx(ra.Left, rc.Left) {
		t.Errorf("a and c should share a column: lefts %v vs %v", ra.Left, rc.Left)
	}
	if !approx(ra.Width, 300) {
		t.Errorf("a: width = %v, want 300 (two-column run)", ra.Width)
	}
}

func TestEveryEventGetsExactlyOneRect(t *testing.T) {
	evs := []model.Event{
		event("a", 8, 0, 9, 30),
		event("b", 8, 15, 8, 45),
		event("c", 8, 15, 10, 0),
		event("d", 9, 45, 11, 0),
		event("e", 12, 0, 12, 0),
		event("f", 13, 0, 14, 0),
	}

	rects := layout.Day(evs, geo)

	if len(rects) != len(evs) {
		t.Fatalf("got %d rects for %d events", len(rects), len(evs))
	}
	for _, ev := range evs {
		if _, ok := rects[ev.Key()]; !ok {
			t.Errorf("%s: no rect assigned", ev.UID)
		}
	}
}

func TestOverlappingEventsNeverShareHorizontalSpace(t *testing.T) {
	evs := []model.Event{
		event("a", 8, 0, 9, 30),
		event("b", 8, 15, 8, 45),
		event("c", 8, 15, 10, 0),
		event("d", 9, 45, 11, 0),
		event("e", 10, 0, 10, 30),
		event("f", 10, 0, 12, 0),
	}

	rects := layout.Day(evs, geo)

	for i, a := range evs {
		for _, b := range evs[i+1:] {
			if !a.Overlaps(b) {
				continue
			}
			ra, rb := rects[a.Key()], rects[b.Key()]
			if ra.Left+ra.Width > rb.Left+1e-9 && ra.Left < rb.Left+rb.Width-1e-9 {
				t.Errorf("%s %+v and %s %+v overlap horizontally", a.UID, ra, b.UID, rb)
			}
		}
	}
}

func TestTopsAreMonotonicInStartTime(t *testing.T) {
	evs := []model.Event{
		event("a", 7, 10, 8, 0),
		event("b", 9, 0, 9, 45),
		event("c", 9, 1, 10, 0),
		event("d", 16, 30, 17, 0),
	}

	rects := layout.Day(evs, geo)

	for i, a := range evs {
		for _, b := range evs[i+1:] {
			ra, rb := rects[a.Key()], rects[b.Key()]
			if a.Start.Before(b.Start) && !(ra.Top < rb.Top) {
				t.Errorf("%s top %v not above %s top %v", a.UID, ra.Top, b.UID, rb.Top)
			}
		}
	}
}

func TestInputOrderBreaksStartTimeTies(t *testing.T) {
	// Equal start times: source order decides the column order.
	first := event("first", 9, 0, 10, 0)
	second := event("second", 9, 0, 10, 0)

	for i := 0; i < 2; i++ {
		evs := []model.Event{first, second}
		if i == 1 {
			evs = []model.Event{second, first}
		}
		rects := layout.Day(evs, geo)
		r0, r1 := rects[evs[0].Key()], rects[evs[1].Key()]
		if !(r0.Left < r1.Left) {
			t.Errorf("order %d: %s at %v should sit left of %s at %v",
				i, evs[0].UID, r0.Left, evs[1].UID, r1.Left)
		}
	}
}

func TestInputSliceIsNotMutated(t *testing.T) {
	evs := []model.Event{
		event("b", 10, 0, 11, 0),
		event("a", 9, 0, 10, 30),
	}
	layout.Day(evs, geo)

	if evs[0].UID != "b" || evs[1].UID != "a" {
		t.Errorf("input slice reordered: %v, %v", evs[0].UID, evs[1].UID)
	}
}

func TestManyDisjointEventsAllFullWidth(t *testing.T) {
	var evs []model.Event
	for h := 6; h < 18; h += 2 {
		evs = append(evs, event(fmt.Sprintf("e%d", h), h, 0, h+1, 0))
	}

	rects := layout.Day(evs, geo)

	for _, ev := range evs {
		if r := rects[ev.Key()]; !approx(r.Width, 600) {
			t.Errorf("%s: width = %v, want 600", ev.UID, r.Width)
		}
	}
}
