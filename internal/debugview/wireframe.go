package debugview

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/zeusync/ccd/internal/core/systems/collision"
	"github.com/zeusync/ccd/internal/core/systems/physics"
)

// RingSegments is the number of segments used to draw one circle.
const RingSegments = 16

type Segment struct {
	From  mgl64.Vec3 `json:"from"`
	To    mgl64.Vec3 `json:"to"`
	Color string     `json:"color"`
}

// Inspectable is implemented by attack and hit boxes.
type Inspectable interface {
	collision.Object
	IsActive() bool
	Inspect() (current, swept physics.Shape)
}

type ObjectFrame struct {
	ID       uuid.UUID `json:"id"`
	Role     string    `json:"role"`
	Kind     string    `json:"kind"`
	Active   bool      `json:"active"`
	Segments []Segment `json:"segments"`
}

// Frame is what the viewer draws for one tick.
type Frame struct {
	Tick    uint64        `json:"tick"`
	Objects []ObjectFrame `json:"objects"`
}

// Objects lists everything registered with s, attackers first.
func Objects(s *collision.Scheduler) []Inspectable {
	attackers, hittables := s.Attackers(), s.Hittables()
	out := make([]Inspectable, 0, len(attackers)+len(hittables))
	for _, a := range attackers {
		out = append(out, a)
	}
	for _, h := range hittables {
		out = append(out, h)
	}
	return out
}

// BuildFrame draws the current shape of every object and, when enabled, the
// swept shape of the active ones.
func BuildFrame(tick uint64, objects []Inspectable, prefs Preferences) Frame {
	frame := Frame{Tick: tick, Objects: make([]ObjectFrame, 0, len(objects))}
	for _, obj := range objects {
		current, swept := obj.Inspect()
		of := ObjectFrame{
			ID:     obj.ID(),
			Role:   obj.Role().String(),
			Kind:   current.Kind().String(),
			Active: obj.IsActive(),
		}
		if prefs.ShowShapes {
			of.Segments = AppendWireframe(of.Segments, current, prefs.ShapeColor)
		}
		if prefs.ShowSwept && obj.IsActive() {
			of.Segments = AppendWireframe(of.Segments, swept, prefs.SweptColor)
		}
		frame.Objects = append(frame.Objects, of)
	}
	return frame
}

// AppendWireframe appends the outline of s to dst. Spheres are three great
// circles, capsules two end rings joined by four lines, boxes their twelve
// edges.
func AppendWireframe(dst []Segment, s physics.Shape, color string) []Segment {
	switch s.Kind() {
	case physics.KindSphere:
		sp := s.AsSphere()
		for _, n := range [3]mgl64.Vec3{physics.WorldRight, physics.WorldUp, physics.WorldForward} {
			dst = appendRing(dst, sp.Center, n, sp.Radius, color)
		}
	case physics.KindCapsule:
		c := s.AsCapsule()
		axis := physics.NormalizeOr(c.PointB.Sub(c.PointA), physics.WorldUp)
		u, v := perpendiculars(axis)
		dst = appendRing(dst, c.PointA, axis, c.Radius, color)
		dst = appendRing(dst, c.PointB, axis, c.Radius, color)
		for _, side := range [4]mgl64.Vec3{u, v, u.Mul(-1), v.Mul(-1)} {
			off := side.Mul(c.Radius)
			dst = append(dst, Segment{From: c.PointA.Add(off), To: c.PointB.Add(off), Color: color})
		}
	case physics.KindBox:
		corners := s.AsBox().Vertices()
		for i := range corners {
			for _, bit := range [3]int{1, 2, 4} {
				if i&bit == 0 {
					dst = append(dst, Segment{From: corners[i], To: corners[i|bit], Color: color})
				}
			}
		}
	}
	return dst
}

func appendRing(dst []Segment, center, normal mgl64.Vec3, radius float64, color string) []Segment {
	u, v := perpendiculars(normal)
	point := func(i int) mgl64.Vec3 {
		a := 2 * math.Pi * float64(i) / RingSegments
		return center.Add(u.Mul(radius * math.Cos(a))).Add(v.Mul(radius * math.Sin(a)))
	}
	prev := point(0)
	for i := 1; i <= RingSegments; i++ {
		next := point(i)
		dst = append(dst, Segment{From: prev, To: next, Color: color})
		prev = next
	}
	return dst
}

func perpendiculars(n mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	basis := physics.Orthonormalize([3]mgl64.Vec3{n, physics.WorldUp, physics.WorldForward})
	return basis[1], basis[2]
}
