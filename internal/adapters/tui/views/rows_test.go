package views

import "testing"

func TestRowWindow(t *testing.T) {
	tests := []struct {
		name       string
		op         func(w *RowWindow)
		wantCursor int
		wantStart  int
		wantEnd    int
	}{
		{
			name:       "down keeps two rows below the cursor",
			op:         func(w *RowWindow) { w.Down(); w.Down(); w.Down() },
			wantCursor: 3, wantStart: 1, wantEnd: 6,
		},
		{
			name:       "page down moves a screen",
			op:         func(w *RowWindow) { w.PageDown() },
			wantCursor: 5, wantStart: 3, wantEnd: 8,
		},
		{
			name:       "last row pins the window to the end",
			op:         func(w *RowWindow) { w.SetCursor(99) },
			wantCursor: 19, wantStart: 15, wantEnd: 20,
		},
		{
			name:       "up keeps two rows above the cursor",
			op:         func(w *RowWindow) { w.SetCursor(19); w.Up(); w.Up(); w.Up() },
			wantCursor: 16, wantStart: 14, wantEnd: 19,
		},
		{
			name:       "shrinking keeps the cursor visible",
			op:         func(w *RowWindow) { w.SetCursor(12); w.Resize(3) },
			wantCursor: 12, wantStart: 11, wantEnd: 14,
		},
		{
			name:       "non-positive height is ignored",
			op:         func(w *RowWindow) { w.Resize(0) },
			wantCursor: 0, wantStart: 0, wantEnd: 5,
		},
		{
			name:       "collapsing rows clamps the cursor",
			op:         func(w *RowWindow) { w.SetCursor(19); w.SetTotal(4) },
			wantCursor: 3, wantStart: 0, wantEnd: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewRowWindow(5)
			w.SetTotal(20)
			tt.op(w)

			start, end := w.Range()
			if w.Cursor() != tt.wantCursor || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("cursor %d range [%d, %d), want cursor %d range [%d, %d)",
					w.Cursor(), start, end, tt.wantCursor, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestRowWindow_Position(t *testing.T) {
	w := NewRowWindow(5)
	if got := w.Position(); got != "no rows" {
		t.Errorf("empty Position = %q", got)
	}
	if w.Down() {
		t.Error("Down on an empty window should not move")
	}

	w.SetTotal(20)
	w.SetCursor(3)
	if !w.Scrollable() {
		t.Error("20 rows in 5 should scroll")
	}
	if got := w.Position(); got != "rows 2-6 of 20" {
		t.Errorf("Position = %q, want rows 2-6 of 20", got)
	}
}
