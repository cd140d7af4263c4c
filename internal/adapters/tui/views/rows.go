package views

import "fmt"

// scrollMargin is how many rows stay visible around the cursor when
// the list scrolls
const scrollMargin = 2

// RowWindow tracks the cursor over a list of rows and the slice of rows
// that fits the screen. Expanding or collapsing a stage changes the row
// count under the cursor, so the window scrolls instead of paging.
type RowWindow struct {
	height int
	offset int
	cursor int
	total  int
}

// NewRowWindow creates a window showing height rows
func NewRowWindow(height int) *RowWindow {
	if height <= 0 {
		height = 10
	}
	return &RowWindow{height: height}
}

// Resize changes the number of visible rows. Non-positive sizes are ignored.
func (w *RowWindow) Resize(height int) {
	if height <= 0 {
		return
	}
	w.height = height
	w.scroll()
}

// SetTotal sets the row count, clamping the cursor to the last row
func (w *RowWindow) SetTotal(total int) {
	w.total = max(total, 0)
	w.cursor = w.clamp(w.cursor)
	w.scroll()
}

// Cursor returns the absolute index of the selected row
func (w *RowWindow) Cursor() int {
	return w.cursor
}

// SetCursor selects a row, clamped to the list
func (w *RowWindow) SetCursor(row int) {
	w.cursor = w.clamp(row)
	w.scroll()
}

// Up moves the cursor one row up
func (w *RowWindow) Up() bool {
	return w.move(-1)
}

// Down moves the cursor one row down
func (w *RowWindow) Down() bool {
	return w.move(1)
}

// PageDown moves the cursor a screen down
func (w *RowWindow) PageDown() bool {
	return w.move(w.height)
}

// PageUp moves the cursor a screen up
func (w *RowWindow) PageUp() bool {
	return w.move(-w.height)
}

// Range returns the visible rows as [start, end)
func (w *RowWindow) Range() (start, end int) {
	return w.offset, min(w.offset+w.height, w.total)
}

// Scrollable reports whether some rows are off screen
func (w *RowWindow) Scrollable() bool {
	return w.total > w.height
}

// Position describes the visible rows, e.g. "rows 3-12 of 40"
func (w *RowWindow) Position() string {
	start, end := w.Range()
	if end == 0 {
		return "no rows"
	}
	return fmt.Sprintf("rows %d-%d of %d", start+1, end, w.total)
}

// Reset empties the window
func (w *RowWindow) Reset() {
	w.cursor, w.offset, w.total = 0, 0, 0
}

func (w *RowWindow) move(delta int) bool {
	next := w.clamp(w.cursor + delta)
	if next == w.cursor {
		return false
	}
	w.cursor = next
	w.scroll()
	return true
}

func (w *RowWindow) clamp(row int) int {
	return max(0, min(row, w.total-1))
}

// scroll keeps the cursor at least scrollMargin rows from either edge
// unless the list itself ends there
func (w *RowWindow) scroll() {
	margin := min(scrollMargin, (w.height-1)/2)
	if w.cursor < w.offset+margin {
		w.offset = w.cursor - margin
	}
	if last := w.offset + w.height - 1; w.cursor > last-margin {
		w.offset = w.cursor - w.height + 1 + margin
	}
	w.offset = max(0, min(w.offset, w.total-w.height))
}
