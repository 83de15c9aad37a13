// Package cards lays out employee ID cards on A4 pages and renders them to
// PDF.
package cards

import (
	"fmt"
	"strings"
)

// Orientation of a single card
type Orientation string

const (
	Vertical   Orientation = "vertical"
	Horizontal Orientation = "horizontal"
)

// ParseOrientation accepts "vertical"/"v" and "horizontal"/"h".
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "vertical", "v", "portrait":
		return Vertical, nil
	case "horizontal", "h", "landscape":
		return Horizontal, nil
	}
	return "", fmt.Errorf("unknown card orientation %q", s)
}

// Page geometry in millimetres.
const (
	PageWidth  = 210.0
	PageHeight = 297.0
	Margin     = 10.0
	Gap        = 4.0

	// ISO/IEC 7810 ID-1
	cardLong  = 85.6
	cardShort = 54.0
)

// Size returns card width and height for o.
func (o Orientation) Size() (w, h float64) {
	if o == Horizontal {
		return cardLong, cardShort
	}
	return cardShort, cardLong
}

// Grid returns how many cards fit per row and per column.
func (o Orientation) Grid() (cols, rows int) {
	w, h := o.Size()
	cols = int((PageWidth - 2*Margin + Gap) / (w + Gap))
	rows = int((PageHeight - 2*Margin + Gap) / (h + Gap))
	return cols, rows
}

// PerPage is the number of cards on one page.
func (o Orientation) PerPage() int {
	c, r := o.Grid()
	return c * r
}

// Slot is where card Index goes on its page.
type Slot struct {
	Index int
	X, Y  float64
	W, H  float64
}

// Page is one sheet of slots
type Page struct {
	Slots []Slot
}

// Layout places n cards. The grid is centred horizontally; cards fill rows
// left to right, top to bottom.
func Layout(n int, o Orientation) []Page {
	if n <= 0 {
		return nil
	}
	w, h := o.Size()
	cols, rows := o.Grid()
	per := cols * rows
	used := float64(cols)*w + float64(cols-1)*Gap
	left := (PageWidth - used) / 2

	pages := make([]Page, 0, (n+per-1)/per)
	for i := 0; i < n; i++ {
		pos := i % per
		if pos == 0 {
			pages = append(pages, Page{})
		}
		col, row := pos%cols, pos/cols
		p := &pages[len(pages)-1]
		p.Slots = append(p.Slots, Slot{
			Index: i,
			X:     left + float64(col)*(w+Gap),
			Y:     Margin + float64(row)*(h+Gap),
			W:     w,
			H:     h,
		})
	}
	return pages
}
