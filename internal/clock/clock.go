package clock

import (
	"fmt"
	"time"
)

// HourMinute is a bounded time-of-day value used to turn event instants into
// vertical offsets. The public constructor keeps values inside a single day
// (00:00 .. 24:00); arithmetic results are allowed to exceed that bound so
// that elapsed-duration sums stay representable.
type HourMinute struct {
	Hour   int
	Minute int
}

// Day boundary sentinels.
var (
	Zero = HourMinute{Hour: 0, Minute: 0}
	Max  = HourMinute{Hour: 24, Minute: 0}
)

// New builds an HourMinute, clamping out-of-range components into
// [0,23] / [0,59] instead of failing. New(25, 70) yields 23:59.
func New(hour, minute int) HourMinute {
	if hour < 0 {
		hour = 0
	} else if hour > 23 {
		hour = 23
	}
	if minute < 0 {
		minute = 0
	} else if minute > 59 {
		minute = 59
	}
	return HourMinute{Hour: hour, Minute: minute}
}

// FromTime takes the hour and minute of t, ignoring the date and anything
// smaller than a minute.
func FromTime(t time.Time) HourMinute {
	return HourMinute{Hour: t.Hour(), Minute: t.Minute()}
}

// FromDuration folds 60-minute chunks of d into hours. The result is not
// clamped to 24h: a 30h duration yields Hour 30. Callers must pass a
// non-negative duration.
func FromDuration(d time.Duration) HourMinute {
	total := int(d / time.Minute)
	return HourMinute{Hour: total / 60, Minute: total % 60}
}

// Add returns t+o with minute-to-hour carry. The sum is not clamped to the
// day boundary.
func (t HourMinute) Add(o HourMinute) HourMinute {
	minute := t.Minute + o.Minute
	hour := t.Hour + o.Hour + minute/60
	return HourMinute{Hour: hour, Minute: minute % 60}
}

// Sub returns t-o, saturating at Zero when o is at or past t. Time-of-day
// differences never go negative.
func (t HourMinute) Sub(o HourMinute) HourMinute {
	diff := t.TotalMinutes() - o.TotalMinutes()
	if diff <= 0 {
		return Zero
	}
	return HourMinute{Hour: diff / 60, Minute: diff % 60}
}

// TotalMinutes returns the minutes since midnight this value represents.
func (t HourMinute) TotalMinutes() int {
	return t.Hour*60 + t.Minute
}

// Before reports whether t is earlier than o.
func (t HourMinute) Before(o HourMinute) bool {
	return t.TotalMinutes() < o.TotalMinutes()
}

// After reports whether t is later than o.
func (t HourMinute) After(o HourMinute) bool {
	return t.TotalMinutes() > o.TotalMinutes()
}

// Compare orders two values by minutes since midnight, returning -1, 0 or 1.
func (t HourMinute) Compare(o HourMinute) int {
	a, b := t.TotalMinutes(), o.TotalMinutes()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Duration converts t into an elapsed duration of Hour hours + Minute minutes.
func (t HourMinute) Duration() time.Duration {
	return time.Duration(t.Hour)*time.Hour + time.Duration(t.Minute)*time.Minute
}

// AtDate combines a calendar date with this time-of-day in the date's location.
func (t HourMinute) AtDate(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, 0, 0, date.Location())
}

// String formats t as "HH:MM".
func (t HourMinute) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}
