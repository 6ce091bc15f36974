package render

import (
	"fmt"
	"strings"
	"time"

	"dayview/internal/clock"
	"dayview/internal/layout"
	"dayview/internal/model"
)

const defaultTileColor = "#4a90d9"

// Options controls day-view rendering.
type Options struct {
	// Geometry must match the geometry the rectangles were computed with.
	Geometry layout.Geometry

	// Date is the day being rendered, used for the heading.
	Date time.Time

	// Colors maps calendar IDs to tile fill colors. Unknown calendars use
	// a default fill.
	Colors map[string]string
}

// DaySVG renders a day view as an SVG document: hour gridlines with labels
// in the reserved hours column, and one tile per event at the rectangle the
// layout engine assigned. The events slice and rects map must come from the
// same layout pass.
func DaySVG(events []model.Event, rects map[string]layout.Rect, opts Options) string {
	geo := opts.Geometry
	hourHeight := float64(geo.SlotMinutes) * geo.HeightPerMinute
	totalHeight := 24 * hourHeight

	var svg strings.Builder

	fmt.Fprintf(&svg, `<svg xmlns="http://www.w3.org/2000/svg" width="%g" height="%g" viewBox="0 0 %g %g">`+"\n",
		geo.RegionWidth, totalHeight, geo.RegionWidth, totalHeight)
	fmt.Fprintf(&svg, `<rect x="0" y="0" width="%g" height="%g" fill="#ffffff"/>`+"\n",
		geo.RegionWidth, totalHeight)

	// Hour gridlines and labels.
	for h := 0; h < 24; h++ {
		y := float64(h) * hourHeight
		fmt.Fprintf(&svg, `<line x1="%g" y1="%g" x2="%g" y2="%g" stroke="#dddddd" stroke-width="1"/>`+"\n",
			geo.HoursColumnWidth, y, geo.RegionWidth, y)
		fmt.Fprintf(&svg, `<text x="%g" y="%g" font-size="11" fill="#666666" text-anchor="end">%s</text>`+"\n",
			geo.HoursColumnWidth-6, y+12, clock.New(h, 0))
	}

	// Event tiles.
	for _, ev := range events {
		r, ok := rects[ev.Key()]
		if !ok {
			continue
		}
		fill := defaultTileColor
		if c, ok := opts.Colors[ev.CalendarID]; ok && c != "" {
			fill = c
		}
		// Degenerate tiles keep their position but cannot be drawn with a
		// negative height.
		height := r.Height
		if height < 0 {
			height = 0
		}
		fmt.Fprintf(&svg, `<rect x="%g" y="%g" width="%g" height="%g" fill="%s" fill-opacity="0.85" stroke="#ffffff" stroke-width="1" rx="2"/>`+"\n",
			r.Left, r.Top, r.Width, height, fill)
		if height >= 14 {
			fmt.Fprintf(&svg, `<text x="%g" y="%g" font-size="11" fill="#ffffff">%s</text>`+"\n",
				r.Left+4, r.Top+12, escapeXML(tileLabel(ev)))
		}
	}

	svg.WriteString("</svg>\n")
	return svg.String()
}

// DayHTML wraps the SVG in a minimal page. The root div carries
// data-ready="true" so the PNG capture step can wait for it.
func DayHTML(svg string, date time.Time) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	b.WriteString(`<meta charset="utf-8">` + "\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", date.Format("2006-01-02"))
	b.WriteString("<style>body{margin:0;font-family:sans-serif}</style>\n")
	b.WriteString("</head>\n<body>\n")
	fmt.Fprintf(&b, `<div data-ready="true">`+"\n")
	fmt.Fprintf(&b, "<h1 style=\"font-size:16px;padding:8px\">%s</h1>\n", date.Format("Monday, 2 January 2006"))
	b.WriteString(svg)
	b.WriteString("</div>\n</body>\n</html>\n")
	return b.String()
}

func tileLabel(ev model.Event) string {
	label := fmt.Sprintf("%s %s", clock.FromTime(ev.Start), ev.Summary)
	if ev.Location != "" {
		label += " (" + ev.Location + ")"
	}
	return label
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}
