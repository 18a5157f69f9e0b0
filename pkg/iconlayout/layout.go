// Package iconlayout places desktop icons on a grid.
//
// Icons fill the grid column by column, top to bottom, and keep their cell
// once assigned. A dropped icon snaps to the nearest cell inside the
// visible grid.
package iconlayout

import "math"

// DefaultCellSize is the edge length of one grid cell in pixels.
const DefaultCellSize = 96

// Cell is a grid slot.
type Cell struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// Positions maps app ids to their cell.
type Positions map[string]Cell

// Clone returns a copy of p.
func (p Positions) Clone() Positions {
	out := make(Positions, len(p))
	for id, c := range p {
		out[id] = c
	}
	return out
}

// Grid describes the desktop area available to icons.
type Grid struct {
	CellSize      int
	Width         int
	Height        int
	TaskbarHeight int
}

func (g Grid) cell() int {
	if g.CellSize <= 0 {
		return DefaultCellSize
	}
	return g.CellSize
}

// Rows returns how many rows fit above the taskbar, at least one.
func (g Grid) Rows() int {
	return max(1, (g.Height-g.TaskbarHeight)/g.cell())
}

// Cols returns how many columns fit across the screen, at least one.
func (g Grid) Cols() int {
	return max(1, g.Width/g.cell())
}

// AssignPositions returns the positions of appIDs. Existing assignments of
// listed apps are kept, unlisted apps are dropped, and each new app gets the
// first free cell in column-major order, in input order.
func AssignPositions(appIDs []string, existing Positions, grid Grid) Positions {
	out := make(Positions, len(appIDs))
	used := make(map[Cell]bool, len(appIDs))
	for _, id := range appIDs {
		if c, ok := existing[id]; ok {
			out[id] = c
			used[c] = true
		}
	}

	rows := grid.Rows()
	next := Cell{}
	for _, id := range appIDs {
		if _, ok := out[id]; ok {
			continue
		}
		for used[next] {
			next.Row++
			if next.Row >= rows {
				next.Row = 0
				next.Col++
			}
		}
		out[id] = next
		used[next] = true
	}
	return out
}

// Snap returns the cell nearest to the pixel position x, y, clamped to the
// grid.
func Snap(grid Grid, x, y int) Cell {
	size := float64(grid.cell())
	col := int(math.Round(float64(x) / size))
	row := int(math.Round(float64(y) / size))
	return Cell{
		Col: min(max(col, 0), grid.Cols()-1),
		Row: min(max(row, 0), grid.Rows()-1),
	}
}

// Pixel returns the top-left pixel position of a cell.
func Pixel(grid Grid, c Cell) (x, y int) {
	return c.Col * grid.cell(), c.Row * grid.cell()
}
