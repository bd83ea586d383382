// Package nav implements the autonomous wandering controller for the dog agent.
//
// The controller is a single-threaded tick loop built from four parts:
// - Sampler picks navigable points around an origin
// - Wanderer alternates between moving to a destination and waiting
// - StuckDetector flags sustained low-motion periods while a path is active
// - EscapePlanner redirects a stuck agent along one of eight local directions
//
// Pathfinding, surface sampling and animation live behind small interfaces
// (see interface.go) so the controller runs against a real engine or the
// simulated grid in package navmesh.
package nav

import "math"

// Vec3 is a point or direction in world space. Y is up.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Len returns the magnitude of v.
func (v Vec3) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Dist returns the distance between v and o.
func (v Vec3) Dist(o Vec3) float64 {
	return v.Sub(o).Len()
}

// Normalize returns v scaled to unit length. The zero vector stays zero.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Flat returns v projected onto the ground plane.
func (v Vec3) Flat() Vec3 {
	return Vec3{X: v.X, Z: v.Z}
}

// Forward is the default facing of an agent with zero yaw.
var Forward = Vec3{Z: 1}

// LocalToWorld rotates a local direction (X right, Z forward) into the frame
// of an agent facing fwd on the ground plane.
func LocalToWorld(local, fwd Vec3) Vec3 {
	f := fwd.Flat().Normalize()
	if f == (Vec3{}) {
		f = Forward
	}
	right := Vec3{X: f.Z, Z: -f.X}
	return right.Scale(local.X).Add(Vec3{Y: local.Y}).Add(f.Scale(local.Z))
}
