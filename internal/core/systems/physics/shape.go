package physics

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Kind tags which variant a Shape holds.
type Kind uint8

const (
	KindSphere Kind = iota
	KindCapsule
	KindBox
)

func (k Kind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindCapsule:
		return "capsule"
	case KindBox:
		return "box"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sphere":
		return KindSphere, nil
	case "capsule":
		return KindCapsule, nil
	case "box", "obb", "oriented_box":
		return KindBox, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// MarshalText lets kinds appear by name in YAML and JSON.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Shape is a value-typed union over Sphere, Capsule and OrientedBox. Only the
// member selected by Kind is meaningful. Copying a Shape copies its geometry.
type Shape struct {
	kind    Kind
	sphere  Sphere
	capsule Capsule
	box     OrientedBox
}

// NewShape returns a zero-sized shape of the given kind; boxes get identity
// axes so the orthonormal invariant holds from the start.
func NewShape(kind Kind) Shape {
	s := Shape{kind: kind}
	if kind == KindBox {
		s.box.Axes = identityAxes()
	}
	return s
}

func SphereShape(s Sphere) Shape      { return Shape{kind: KindSphere, sphere: s} }
func CapsuleShape(c Capsule) Shape    { return Shape{kind: KindCapsule, capsule: c} }
func BoxShape(b OrientedBox) Shape    { return Shape{kind: KindBox, box: b} }
func (s Shape) Kind() Kind            { return s.kind }
func (s Shape) AsSphere() Sphere      { return s.sphere }
func (s Shape) AsCapsule() Capsule    { return s.capsule }
func (s Shape) AsBox() OrientedBox    { return s.box }
func (s Shape) Is(kind Kind) bool     { return s.kind == kind }
func (s Shape) SameKind(o Shape) bool { return s.kind == o.kind }

// Center is the sphere center, capsule segment midpoint or box center.
func (s Shape) Center() mgl64.Vec3 {
	switch s.kind {
	case KindSphere:
		return s.sphere.Center
	case KindCapsule:
		return s.capsule.Center()
	case KindBox:
		return s.box.Center
	}
	return mgl64.Vec3{}
}

// ClosestPoint returns the point of the solid shape nearest to p.
func (s Shape) ClosestPoint(p mgl64.Vec3) mgl64.Vec3 {
	switch s.kind {
	case KindSphere:
		return s.sphere.ClosestPoint(p)
	case KindCapsule:
		return s.capsule.ClosestPoint(p)
	case KindBox:
		return s.box.ClosestPoint(p)
	}
	return p
}

// Equal compares with the package tolerances; different kinds are never equal.
func (s Shape) Equal(o Shape) bool {
	if s.kind != o.kind {
		return false
	}
	switch s.kind {
	case KindSphere:
		return s.sphere.approxEqual(o.sphere)
	case KindCapsule:
		return s.capsule.approxEqual(o.capsule)
	case KindBox:
		return s.box.approxEqual(o.box)
	}
	return false
}

// Clone returns an independent copy.
func (s Shape) Clone() Shape {
	return s
}

// CopyFrom overwrites s with o when both hold the same kind and reports
// whether it did.
func (s *Shape) CopyFrom(o Shape) bool {
	if s.kind != o.kind {
		return false
	}
	*s = o
	return true
}

// UpdateFromPose rebuilds the geometry of the current kind from a pose.
func (s *Shape) UpdateFromPose(p Pose) {
	switch s.kind {
	case KindSphere:
		s.sphere.updateFromPose(p)
	case KindCapsule:
		s.capsule.updateFromPose(p)
	case KindBox:
		s.box.updateFromPose(p)
	}
}

// ShapeFromPose is NewShape followed by UpdateFromPose.
func ShapeFromPose(kind Kind, p Pose) Shape {
	s := NewShape(kind)
	s.UpdateFromPose(p)
	return s
}

func (s Shape) String() string {
	switch s.kind {
	case KindSphere:
		return fmt.Sprintf("sphere{c=%v r=%.4g}", s.sphere.Center, s.sphere.Radius)
	case KindCapsule:
		return fmt.Sprintf("capsule{a=%v b=%v r=%.4g}", s.capsule.PointA, s.capsule.PointB, s.capsule.Radius)
	case KindBox:
		return fmt.Sprintf("box{c=%v h=%v}", s.box.Center, s.box.HalfExtents)
	}
	return s.kind.String()
}
