package view

import (
	"strings"

	tuitheme "github.com/glabrego/pkbrowse/internal/tui/theme"
)

// GridItem is one result cell.
type GridItem struct {
	Ref   string
	Label string
	State tuitheme.ItemState
}

// CellWidth maps a thumbnail size in pixels to a cell width in columns.
func CellWidth(thumbSize int) int {
	return max(12, thumbSize/6)
}

// GridColumns is how many cells of cellWidth fit in width, at least one.
func GridColumns(width, cellWidth int) int {
	if cellWidth < 1 || width < 1 {
		return 1
	}
	return max(1, (width+1)/(cellWidth+1))
}

type GridParams struct {
	Items     []GridItem
	Cursor    int
	Top       int // first visible row
	Rows      int // visible rows, 0 for all
	Width     int
	CellWidth int
}

func RenderGrid(p GridParams, th tuitheme.Theme) string {
	if len(p.Items) == 0 {
		return ""
	}
	cols := GridColumns(p.Width, p.CellWidth)
	total := (len(p.Items) + cols - 1) / cols
	top := min(max(0, p.Top), total-1)
	end := total
	if p.Rows > 0 {
		end = min(total, top+p.Rows)
	}

	var b strings.Builder
	for row := top; row < end; row++ {
		cells := make([]string, 0, cols)
		for col := 0; col < cols; col++ {
			i := row*cols + col
			if i >= len(p.Items) {
				break
			}
			cells = append(cells, renderCell(p.Items[i], i == p.Cursor, p.CellWidth, th))
		}
		b.WriteString(strings.TrimRight(strings.Join(cells, " "), " "))
		b.WriteString("\n")
	}
	return b.String()
}

func renderCell(item GridItem, active bool, width int, th tuitheme.Theme) string {
	cursor := " "
	if active {
		cursor = ">"
	}
	mark := " "
	switch {
	case item.State.Selected:
		mark = "*"
	case item.State.CurrentSet:
		mark = "@"
	case item.State.Collection:
		mark = "+"
	}
	label := strings.TrimSpace(item.Label)
	if label == "" {
		label = item.Ref
	}
	label = truncate(label, width-3)
	cell := cursor + mark + " " + th.StyleItemLabel(item.State, label)
	return th.RenderActiveLine(active, padRight(cell, width))
}
