package physics

import "github.com/go-gl/mathgl/mgl64"

// Pose is the per-tick transform supplied by the host for one object.
type Pose struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3
}

// NewPose builds a pose from a position, XYZ euler angles in degrees and a
// scale.
func NewPose(position, eulerDeg, scale mgl64.Vec3) Pose {
	return Pose{
		Position: position,
		Rotation: EulerRotation(eulerDeg),
		Scale:    scale,
	}
}

// EulerRotation converts XYZ euler angles in degrees to a quaternion.
func EulerRotation(eulerDeg mgl64.Vec3) mgl64.Quat {
	return mgl64.AnglesToQuat(
		mgl64.DegToRad(eulerDeg[0]),
		mgl64.DegToRad(eulerDeg[1]),
		mgl64.DegToRad(eulerDeg[2]),
		mgl64.XYZ,
	)
}

// rotation treats the zero quaternion as identity so a zero Pose is usable.
func (p Pose) rotation() mgl64.Quat {
	if p.Rotation.W == 0 && p.Rotation.V == (mgl64.Vec3{}) {
		return mgl64.QuatIdent()
	}
	return p.Rotation.Normalize()
}

func (p Pose) Right() mgl64.Vec3 {
	return p.rotation().Rotate(WorldRight)
}

func (p Pose) Up() mgl64.Vec3 {
	return p.rotation().Rotate(WorldUp)
}

func (p Pose) Forward() mgl64.Vec3 {
	return p.rotation().Rotate(WorldForward)
}
