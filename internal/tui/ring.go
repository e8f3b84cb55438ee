package tui

import (
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/okian/spinner/internal/domain/model"
	"github.com/okian/spinner/internal/domain/selection"
)

const (
	ringRows   = 7   // vertical radius in lines
	ringAspect = 2.4 // terminal cells are taller than wide
	maxLabel   = 12
)

type placement struct {
	x, w     int
	text     string
	style    lipgloss.Style
	selected bool
}

// renderRing draws segment labels around a circle with the pointer fixed at
// the top. rotation is the wheel rotation in degrees, clockwise.
func renderRing(segs []model.Segment, rotation float64, p palette) string {
	n := len(segs)
	if n == 0 {
		return p.footer.Render("(no segments)")
	}
	selected := selection.SegmentAt(rotation, n)
	xr := int(math.Round(ringRows * ringAspect))
	width := 2*xr + maxLabel + 2
	cx := width / 2
	rows := make([][]placement, 2*ringRows+1)
	arc := selection.ArcWidth(n)

	for i, s := range segs {
		theta := (float64(i)*arc + rotation) * math.Pi / 180
		y := ringRows - int(math.Round(ringRows*math.Cos(theta)))
		x := cx + int(math.Round(float64(xr)*math.Sin(theta)))
		label := truncate(s.Label, maxLabel)
		w := lipgloss.Width(label)
		start := min(max(x-w/2, 0), width-w)
		style := p.segment(i, s)
		if i == selected {
			style = p.selected
		}
		rows[y] = append(rows[y], placement{x: start, w: w, text: label, style: style, selected: i == selected})
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", cx))
	b.WriteString(p.pointer.Render("▼"))
	b.WriteByte('\n')
	for i, row := range rows {
		b.WriteString(renderRow(row))
		if i < len(rows)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// renderRow lays out one line. The selected label always wins a collision.
func renderRow(row []placement) string {
	sort.SliceStable(row, func(i, j int) bool { return row[i].selected && !row[j].selected })
	var kept []placement
	for _, p := range row {
		overlaps := false
		for _, k := range kept {
			if p.x < k.x+k.w+1 && k.x < p.x+p.w+1 {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, p)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].x < kept[j].x })

	var b strings.Builder
	col := 0
	for _, p := range kept {
		b.WriteString(strings.Repeat(" ", p.x-col))
		b.WriteString(p.style.Render(p.text))
		col = p.x + p.w
	}
	return b.String()
}

// truncate cuts s to n terminal cells.
func truncate(s string, n int) string {
	return runewidth.Truncate(s, n, "…")
}
