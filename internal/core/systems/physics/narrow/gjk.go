package narrow

import "github.com/go-gl/mathgl/mgl64"

// support returns the point of a convex shape furthest along dir.
type support func(dir mgl64.Vec3) mgl64.Vec3

// simplex holds the 1-4 most recent Minkowski difference points; the newest
// is always at index count-1.
type simplex struct {
	points [4]mgl64.Vec3
	count  int
}

func (s *simplex) set(points ...mgl64.Vec3) {
	s.count = copy(s.points[:], points)
}

const gjkMaxIterations = 32

// gjk reports whether two convex shapes overlap by searching for a simplex of
// their Minkowski difference that contains the origin. converged is false
// when the iteration budget ran out before an answer was reached.
func (d *Detector) gjk(a, b support, initial mgl64.Vec3) (hit, converged bool) {
	s := d.simplexes.Get()
	defer d.simplexes.Put(s)

	minkowski := func(dir mgl64.Vec3) mgl64.Vec3 {
		return a(dir).Sub(b(dir.Mul(-1)))
	}

	dir := initial
	if dir.LenSqr() < 1e-8 {
		dir = mgl64.Vec3{1, 0, 0}
	}
	s.set(minkowski(dir))
	dir = s.points[0].Mul(-1)
	if dir.LenSqr() < 1e-16 {
		return true, true
	}

	for range gjkMaxIterations {
		p := minkowski(dir)
		if p.Dot(dir) <= 0 {
			return false, true
		}
		s.points[s.count] = p
		s.count++
		if s.refine(&dir) {
			return true, true
		}
	}
	return false, false
}

// refine reduces the simplex to the feature closest to the origin and points
// dir at the origin from it. It returns true once the origin is enclosed.
func (s *simplex) refine(dir *mgl64.Vec3) bool {
	switch s.count {
	case 2:
		return s.line(dir)
	case 3:
		return s.triangle(dir)
	case 4:
		return s.tetrahedron(dir)
	}
	return false
}

func (s *simplex) line(dir *mgl64.Vec3) bool {
	a, b := s.points[1], s.points[0]
	ab := b.Sub(a)
	ao := a.Mul(-1)

	if ab.LenSqr() < 1e-8 {
		if ao.LenSqr() < 1e-8 {
			return true
		}
		s.set(a)
		*dir = ao
		return false
	}
	if ab.Dot(ao) <= 0 {
		s.set(a)
		*dir = ao
		return false
	}

	perp := ab.Cross(ao).Cross(ab)
	abLenSq := ab.LenSqr()
	if perp.LenSqr() < 1e-8*abLenSq*abLenSq {
		// origin on the segment
		return true
	}
	*dir = perp
	return false
}

func (s *simplex) triangle(dir *mgl64.Vec3) bool {
	a, b, c := s.points[2], s.points[1], s.points[0]
	ab := b.Sub(a)
	ac := c.Sub(a)
	ao := a.Mul(-1)
	abc := ab.Cross(ac)

	if abc.LenSqr() < 1e-10 {
		s.set(b, a)
		return s.line(dir)
	}

	if ab.Cross(abc).Dot(ao) > 0 {
		s.set(b, a)
		*dir = ab.Cross(ao).Cross(ab)
		return false
	}
	if abc.Cross(ac).Dot(ao) > 0 {
		s.set(c, a)
		*dir = ac.Cross(ao).Cross(ac)
		return false
	}

	if abc.Dot(ao) > 0 {
		*dir = abc
	} else {
		s.set(b, c, a)
		*dir = abc.Mul(-1)
	}
	return false
}

func (s *simplex) tetrahedron(dir *mgl64.Vec3) bool {
	a, b, c, d := s.points[3], s.points[2], s.points[1], s.points[0]
	ab := b.Sub(a)
	ac := c.Sub(a)
	ad := d.Sub(a)
	ao := a.Mul(-1)

	// face normals point away from the opposite vertex
	abc := ab.Cross(ac)
	if abc.Dot(ad) > 0 {
		abc = abc.Mul(-1)
	}
	acd := ac.Cross(ad)
	if acd.Dot(ab) > 0 {
		acd = acd.Mul(-1)
	}
	adb := ad.Cross(ab)
	if adb.Dot(ac) > 0 {
		adb = adb.Mul(-1)
	}

	if abc.LenSqr() < 1e-10 || acd.LenSqr() < 1e-10 || adb.LenSqr() < 1e-10 {
		s.set(c, b, a)
		return s.triangle(dir)
	}

	switch {
	case abc.Dot(ao) > 0:
		s.set(c, b, a)
	case acd.Dot(ao) > 0:
		s.set(d, c, a)
	case adb.Dot(ao) > 0:
		s.set(b, d, a)
	default:
		return true
	}
	return s.triangle(dir)
}
