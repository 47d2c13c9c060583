package state

import "testing"

func TestClampCursor(t *testing.T) {
	if got := ClampCursor(-1, 3); got != 0 {
		t.Fatalf("expected clamp to 0, got %d", got)
	}
	if got := ClampCursor(3, 3); got != 2 {
		t.Fatalf("expected clamp to 2, got %d", got)
	}
	if got := ClampCursor(1, 3); got != 1 {
		t.Fatalf("expected keep 1, got %d", got)
	}
	if got := ClampCursor(5, 0); got != 0 {
		t.Fatalf("expected 0 for empty grid, got %d", got)
	}
}

func TestGridMove(t *testing.T) {
	// 3 columns, 7 items:
	// 0 1 2
	// 3 4 5
	// 6
	cases := []struct {
		name   string
		cursor int
		dir    Direction
		want   int
	}{
		{"down", 1, Down, 4},
		{"down into short row is blocked", 4, Down, 4},
		{"down into short row", 3, Down, 6},
		{"up", 4, Up, 1},
		{"up at top", 2, Up, 2},
		{"left wraps to previous row", 3, Left, 2},
		{"left at start", 0, Left, 0},
		{"right wraps to next row", 2, Right, 3},
		{"right at end", 6, Right, 6},
		{"first", 5, First, 0},
		{"last", 0, Last, 6},
		{"stale cursor is clamped", 40, Left, 5},
	}
	for _, tc := range cases {
		if got := GridMove(tc.cursor, tc.dir, 3, 7); got != tc.want {
			t.Fatalf("%s: GridMove(%d) = %d, want %d", tc.name, tc.cursor, got, tc.want)
		}
	}
	if got := GridMove(3, Down, 3, 0); got != 0 {
		t.Fatalf("empty grid should reset cursor, got %d", got)
	}
}

func TestWindowTop(t *testing.T) {
	if got := WindowTop(0, 9, 3, 2); got != 2 {
		t.Fatalf("cursor below window should scroll down, got %d", got)
	}
	if got := WindowTop(3, 1, 3, 2); got != 0 {
		t.Fatalf("cursor above window should scroll up, got %d", got)
	}
	if got := WindowTop(1, 4, 3, 2); got != 1 {
		t.Fatalf("visible cursor should keep the window, got %d", got)
	}
	if got := WindowTop(4, 0, 3, 0); got != 0 {
		t.Fatalf("zero rows should reset the window, got %d", got)
	}
}
