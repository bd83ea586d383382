// Package navmesh provides a grid-based navigable surface and a simple
// path-following agent. Together they stand in for an engine NavMesh so the
// wander controller can run headless.
package navmesh

import (
	"math"

	"github.com/togedaeng/go-togedaeng/pkg/nav"
)

// Grid is a rectangular walkable mask on the XZ plane starting at the origin.
// Cell (col, row) covers [col*cell, (col+1)*cell) x [row*cell, (row+1)*cell).
type Grid struct {
	cols, rows int
	cell       float64
	walkable   []bool
	width      float64
	depth      float64
}

// NewGrid creates a fully walkable grid covering width x depth.
func NewGrid(width, depth, cell float64) *Grid {
	if cell <= 0 {
		cell = 1
	}
	cols := int(math.Ceil(width / cell))
	rows := int(math.Ceil(depth / cell))
	if cols <= 0 {
		cols = 1
	}
	if rows <= 0 {
		rows = 1
	}
	g := &Grid{
		cols:     cols,
		rows:     rows,
		cell:     cell,
		walkable: make([]bool, cols*rows),
		width:    float64(cols) * cell,
		depth:    float64(rows) * cell,
	}
	for i := range g.walkable {
		g.walkable[i] = true
	}
	return g
}

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// CellSize returns the edge length of a cell.
func (g *Grid) CellSize() float64 { return g.cell }

// Size returns the world extent of the grid.
func (g *Grid) Size() (width, depth float64) { return g.width, g.depth }

func (g *Grid) inBounds(col, row int) bool {
	return col >= 0 && row >= 0 && col < g.cols && row < g.rows
}

func (g *Grid) index(col, row int) int {
	return row*g.cols + col
}

// CellWalkable reports whether a cell is walkable. Out of bounds is blocked.
func (g *Grid) CellWalkable(col, row int) bool {
	return g.inBounds(col, row) && g.walkable[g.index(col, row)]
}

// SetWalkable marks a single cell.
func (g *Grid) SetWalkable(col, row int, walkable bool) {
	if g.inBounds(col, row) {
		g.walkable[g.index(col, row)] = walkable
	}
}

// BlockRect blocks every cell whose center lies in [minX, maxX] x [minZ, maxZ].
func (g *Grid) BlockRect(minX, minZ, maxX, maxZ float64) {
	for row := 0; row < g.rows; row++ {
		for col := 0; col < g.cols; col++ {
			c := g.Center(col, row)
			if c.X >= minX && c.X <= maxX && c.Z >= minZ && c.Z <= maxZ {
				g.walkable[g.index(col, row)] = false
			}
		}
	}
}

// Locate returns the cell containing p. ok is false outside the grid.
func (g *Grid) Locate(p nav.Vec3) (col, row int, ok bool) {
	if p.X < 0 || p.Z < 0 || p.X >= g.width || p.Z >= g.depth {
		return 0, 0, false
	}
	return int(p.X / g.cell), int(p.Z / g.cell), true
}

// Center returns the world position of a cell's center.
func (g *Grid) Center(col, row int) nav.Vec3 {
	return nav.Vec3{
		X: (float64(col) + 0.5) * g.cell,
		Z: (float64(row) + 0.5) * g.cell,
	}
}

// Walkable reports whether p lies on a walkable cell.
func (g *Grid) Walkable(p nav.Vec3) bool {
	col, row, ok := g.Locate(p)
	return ok && g.walkable[g.index(col, row)]
}

// WalkableCount returns the number of walkable cells.
func (g *Grid) WalkableCount() int {
	n := 0
	for _, w := range g.walkable {
		if w {
			n++
		}
	}
	return n
}

// SamplePosition returns the walkable cell center closest to p within
// tolerance. It implements nav.SurfaceSampler.
func (g *Grid) SamplePosition(p nav.Vec3, tolerance float64) (nav.Vec3, bool) {
	if tolerance < 0 {
		return nav.Vec3{}, false
	}
	minCol := int(math.Floor((p.X - tolerance) / g.cell))
	maxCol := int(math.Floor((p.X + tolerance) / g.cell))
	minRow := int(math.Floor((p.Z - tolerance) / g.cell))
	maxRow := int(math.Floor((p.Z + tolerance) / g.cell))

	best := nav.Vec3{}
	bestDist := math.Inf(1)
	for row := max(minRow, 0); row <= min(maxRow, g.rows-1); row++ {
		for col := max(minCol, 0); col <= min(maxCol, g.cols-1); col++ {
			if !g.walkable[g.index(col, row)] {
				continue
			}
			c := g.Center(col, row)
			if d := c.Dist(p); d <= tolerance && d < bestDist {
				best, bestDist = c, d
			}
		}
	}
	return best, !math.IsInf(bestDist, 1)
}

var _ nav.SurfaceSampler = (*Grid)(nil)
