package navmesh

import (
	"math"

	"github.com/togedaeng/go-togedaeng/pkg/nav"
)

// DefaultSpeed is the walking speed in units per second.
const DefaultSpeed = 1.5

// Agent follows grid paths at a fixed speed. It implements nav.Navigator.
//
// A destination set with SetDestination stays pending until the next Step,
// mirroring engines that resolve paths asynchronously. Agent is not safe for
// concurrent use.
type Agent struct {
	grid  *Grid
	speed float64

	pos, vel, fwd nav.Vec3

	path     []nav.Vec3
	dest     nav.Vec3
	complete bool
	pending  bool
	pinned   bool
}

// NewAgent places an agent on grid at pos, snapped to the nearest walkable cell.
func NewAgent(grid *Grid, pos nav.Vec3, speed float64) *Agent {
	if speed <= 0 {
		speed = DefaultSpeed
	}
	a := &Agent{grid: grid, speed: speed, fwd: nav.Forward}
	a.Teleport(pos)
	return a
}

// SetDestination computes and assigns a path to p. Unreachable targets get a
// partial path toward the closest reachable cell.
func (a *Agent) SetDestination(p nav.Vec3) bool {
	path, ok := a.grid.FindPath(a.pos, p)
	if !ok {
		return false
	}
	a.path = path.Points
	a.dest = p.Flat()
	a.complete = path.Complete
	a.pending = true
	return true
}

// ResetPath clears the current path.
func (a *Agent) ResetPath() {
	a.path = nil
	a.pending = false
	a.complete = false
	a.vel = nav.Vec3{}
}

// CalculatePath checks a path to p without assigning it.
func (a *Agent) CalculatePath(p nav.Vec3) (exists, complete bool) {
	path, ok := a.grid.FindPath(a.pos, p)
	if !ok {
		return false, false
	}
	return path.Complete || len(path.Points) > 0, path.Complete
}

// Step advances the agent along its path by dt seconds.
func (a *Agent) Step(dt float64) {
	if dt <= 0 {
		return
	}
	a.pending = false
	if a.pinned || len(a.path) == 0 {
		a.vel = nav.Vec3{}
		return
	}

	start := a.pos
	budget := a.speed * dt
	for budget > 0 && len(a.path) > 0 {
		next := a.path[0]
		d := a.pos.Dist(next)
		if d <= budget {
			a.pos = next
			a.path = a.path[1:]
			budget -= d
			continue
		}
		a.pos = a.pos.Add(next.Sub(a.pos).Scale(budget / d))
		budget = 0
	}

	moved := a.pos.Sub(start)
	a.vel = moved.Scale(1 / dt)
	if f := moved.Flat(); f.Len() > 1e-9 {
		a.fwd = f.Normalize()
	}
	if len(a.path) == 0 {
		a.complete = false
	}
}

// Pin freezes the agent in place while keeping its path, as if wedged
// against geometry the mesh does not know about.
func (a *Agent) Pin(pinned bool) {
	a.pinned = pinned
	if pinned {
		a.vel = nav.Vec3{}
	}
}

// Pinned reports whether the agent is pinned.
func (a *Agent) Pinned() bool { return a.pinned }

// Teleport moves the agent to the walkable point nearest p and clears its path.
func (a *Agent) Teleport(p nav.Vec3) {
	if !a.grid.Walkable(p) {
		c := a.grid.clampCell(p)
		if cell, ok := a.grid.closestWalkable(c.col, c.row); ok {
			p = a.grid.Center(cell.col, cell.row)
		}
	}
	a.pos = p.Flat()
	a.ResetPath()
}

// SetSpeed changes the walking speed. Non-positive values are ignored.
func (a *Agent) SetSpeed(speed float64) {
	if speed > 0 {
		a.speed = speed
	}
}

// Speed returns the walking speed.
func (a *Agent) Speed() float64 { return a.speed }

// Destination returns the last requested destination.
func (a *Agent) Destination() nav.Vec3 { return a.dest }

// PathComplete reports whether the current path ends at the destination.
func (a *Agent) PathComplete() bool { return a.complete && len(a.path) > 0 }

// Waypoints returns a copy of the remaining path.
func (a *Agent) Waypoints() []nav.Vec3 {
	out := make([]nav.Vec3, len(a.path))
	copy(out, a.path)
	return out
}

func (a *Agent) Position() nav.Vec3 { return a.pos }
func (a *Agent) Velocity() nav.Vec3 { return a.vel }
func (a *Agent) Forward() nav.Vec3  { return a.fwd }
func (a *Agent) HasPath() bool      { return len(a.path) > 0 }
func (a *Agent) PathPending() bool  { return a.pending }

// RemainingDistance returns the distance left along the path. It is
// infinite while a path is pending.
func (a *Agent) RemainingDistance() float64 {
	if a.pending {
		return math.Inf(1)
	}
	return Path{Points: a.path}.Length(a.pos)
}

var _ nav.Navigator = (*Agent)(nil)
