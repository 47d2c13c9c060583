// Package state holds cursor arithmetic for the result grid.
package state

type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
	First
	Last
)

func ClampCursor(cursor, size int) int {
	if size <= 0 {
		return 0
	}
	if cursor >= size {
		return size - 1
	}
	if cursor < 0 {
		return 0
	}
	return cursor
}

// GridMove moves cursor one step in a grid of size items laid out cols
// per row. Moves that would leave the grid keep the cursor in place.
func GridMove(cursor int, dir Direction, cols, size int) int {
	if size <= 0 {
		return 0
	}
	cols = max(1, cols)
	cursor = ClampCursor(cursor, size)
	switch dir {
	case Up:
		if cursor-cols >= 0 {
			return cursor - cols
		}
	case Down:
		if cursor+cols < size {
			return cursor + cols
		}
	case Left:
		if cursor > 0 {
			return cursor - 1
		}
	case Right:
		if cursor < size-1 {
			return cursor + 1
		}
	case First:
		return 0
	case Last:
		return size - 1
	}
	return cursor
}

// WindowTop returns the first visible row that keeps the cursor's row
// on screen, moving the window as little as possible.
func WindowTop(top, cursor, cols, rows int) int {
	if rows < 1 || cols < 1 {
		return 0
	}
	row := cursor / cols
	switch {
	case row < top:
		return row
	case row >= top+rows:
		return row - rows + 1
	default:
		return max(0, top)
	}
}
