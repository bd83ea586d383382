package navmesh

import (
	"container/heap"
	"math"

	"github.com/togedaeng/go-togedaeng/pkg/nav"
)

type cellPoint struct {
	col, row int
}

type neighbor struct {
	dc, dr   int
	cost     float64
	diagonal bool
}

var neighbors = [...]neighbor{
	{dc: 0, dr: -1, cost: 1},
	{dc: 1, dr: 0, cost: 1},
	{dc: 0, dr: 1, cost: 1},
	{dc: -1, dr: 0, cost: 1},
	{dc: 1, dr: -1, cost: math.Sqrt2, diagonal: true},
	{dc: 1, dr: 1, cost: math.Sqrt2, diagonal: true},
	{dc: -1, dr: 1, cost: math.Sqrt2, diagonal: true},
	{dc: -1, dr: -1, cost: math.Sqrt2, diagonal: true},
}

// Path is the result of a path query.
type Path struct {
	Points   []nav.Vec3 // Waypoints after the start, in travel order
	Complete bool       // The last waypoint is the requested target
}

// Length returns the travel distance from start through every waypoint.
func (p Path) Length(start nav.Vec3) float64 {
	total := 0.0
	prev := start
	for _, pt := range p.Points {
		total += prev.Dist(pt)
		prev = pt
	}
	return total
}

// octile distance, admissible for 8-way movement
func heuristic(a, b cellPoint) float64 {
	dx := math.Abs(float64(a.col - b.col))
	dz := math.Abs(float64(a.row - b.row))
	if dx > dz {
		return dx + (math.Sqrt2-1)*dz
	}
	return dz + (math.Sqrt2-1)*dx
}

type pathNode struct {
	point  cellPoint
	g, f   float64
	index  int
	parent *pathNode
}

type openSet []*pathNode

func (s openSet) Len() int           { return len(s) }
func (s openSet) Less(i, j int) bool { return s[i].f < s[j].f }

func (s openSet) Swap(i, j int) {
	s[i], s[j] = s[j], s[i]
	s[i].index = i
	s[j].index = j
}

func (s *openSet) Push(x any) {
	n := x.(*pathNode)
	n.index = len(*s)
	*s = append(*s, n)
}

func (s *openSet) Pop() any {
	old := *s
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*s = old[:n-1]
	return item
}

// no corner cutting: both orthogonal cells beside a diagonal step must be open
func (g *Grid) canStep(from cellPoint, n neighbor) bool {
	if !n.diagonal {
		return true
	}
	return g.CellWalkable(from.col+n.dc, from.row) && g.CellWalkable(from.col, from.row+n.dr)
}

// closestWalkable breadth-first searches outward from a cell.
func (g *Grid) closestWalkable(col, row int) (cellPoint, bool) {
	if !g.inBounds(col, row) {
		return cellPoint{}, false
	}
	visited := map[int]struct{}{g.index(col, row): {}}
	queue := []cellPoint{{col, row}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if g.walkable[g.index(cur.col, cur.row)] {
			return cur, true
		}
		for _, n := range neighbors {
			nc, nr := cur.col+n.dc, cur.row+n.dr
			if !g.inBounds(nc, nr) {
				continue
			}
			idx := g.index(nc, nr)
			if _, seen := visited[idx]; seen {
				continue
			}
			visited[idx] = struct{}{}
			queue = append(queue, cellPoint{nc, nr})
		}
	}
	return cellPoint{}, false
}

// clampCell returns the cell containing p, clamped into the grid.
func (g *Grid) clampCell(p nav.Vec3) cellPoint {
	col := int(math.Floor(p.X / g.cell))
	row := int(math.Floor(p.Z / g.cell))
	return cellPoint{
		col: min(max(col, 0), g.cols-1),
		row: min(max(row, 0), g.rows-1),
	}
}

// astar searches from start to goal. When goal is unreachable it returns the
// path to the explored cell nearest the goal and complete=false.
func (g *Grid) astar(start, goal cellPoint) ([]cellPoint, bool) {
	open := &openSet{}
	heap.Init(open)
	heap.Push(open, &pathNode{point: start, f: heuristic(start, goal)})
	gScore := map[int]float64{g.index(start.col, start.row): 0}
	closed := make(map[int]struct{})

	var nearest *pathNode
	nearestH := math.Inf(1)

	for open.Len() > 0 {
		cur := heap.Pop(open).(*pathNode)
		idx := g.index(cur.point.col, cur.point.row)
		if _, seen := closed[idx]; seen {
			continue
		}
		closed[idx] = struct{}{}

		if cur.point == goal {
			return reconstruct(cur), true
		}
		if h := heuristic(cur.point, goal); h < nearestH {
			nearest, nearestH = cur, h
		}

		for _, n := range neighbors {
			nc, nr := cur.point.col+n.dc, cur.point.row+n.dr
			if !g.CellWalkable(nc, nr) || !g.canStep(cur.point, n) {
				continue
			}
			nIdx := g.index(nc, nr)
			if _, seen := closed[nIdx]; seen {
				continue
			}
			tentative := cur.g + n.cost
			if prev, ok := gScore[nIdx]; ok && tentative >= prev {
				continue
			}
			gScore[nIdx] = tentative
			next := cellPoint{nc, nr}
			heap.Push(open, &pathNode{
				point:  next,
				g:      tentative,
				f:      tentative + heuristic(next, goal),
				parent: cur,
			})
		}
	}
	return reconstruct(nearest), false
}

func reconstruct(end *pathNode) []cellPoint {
	if end == nil {
		return nil
	}
	var path []cellPoint
	for n := end; n != nil; n = n.parent {
		path = append(path, n.point)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// FindPath computes a path from one point to another. ok is false when no
// walkable start cell can be found. A path that stops short of the target is
// returned with Complete=false.
func (g *Grid) FindPath(from, to nav.Vec3) (Path, bool) {
	sc := g.clampCell(from)
	start, ok := g.closestWalkable(sc.col, sc.row)
	if !ok {
		return Path{}, false
	}

	goal := g.clampCell(to)
	targetInside := to.X >= 0 && to.Z >= 0 && to.X < g.width && to.Z < g.depth
	cells, reached := g.astar(start, goal)
	complete := reached && targetInside && g.CellWalkable(goal.col, goal.row)

	points := make([]nav.Vec3, 0, len(cells))
	for i := 1; i < len(cells); i++ {
		points = append(points, g.Center(cells[i].col, cells[i].row))
	}
	if complete {
		target := to.Flat()
		if len(points) == 0 {
			points = append(points, target)
		} else {
			points[len(points)-1] = target
		}
	}
	return Path{Points: points, Complete: complete}, true
}
