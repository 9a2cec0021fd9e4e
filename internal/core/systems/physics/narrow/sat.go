package narrow

import (
	"math"

	"github.com/zeusync/ccd/internal/core/systems/physics"
)

// separatingAxisOverlap runs the 15-axis separating axis test for two
// oriented boxes: three face normals each and the nine edge cross products.
// Touching boxes count as overlapping.
func separatingAxisOverlap(a, b physics.OrientedBox) bool {
	var r, absR [3][3]float64
	for i := range 3 {
		for j := range 3 {
			r[i][j] = a.Axes[i].Dot(b.Axes[j])
			// padding keeps near-parallel edge axes from producing false
			// separations out of rounding noise
			absR[i][j] = math.Abs(r[i][j]) + physics.Epsilon
		}
	}

	d := b.Center.Sub(a.Center)
	t := [3]float64{d.Dot(a.Axes[0]), d.Dot(a.Axes[1]), d.Dot(a.Axes[2])}
	ea, eb := a.HalfExtents, b.HalfExtents

	for i := range 3 {
		ra := ea[i]
		rb := eb[0]*absR[i][0] + eb[1]*absR[i][1] + eb[2]*absR[i][2]
		if math.Abs(t[i]) > ra+rb {
			return false
		}
	}

	for j := range 3 {
		ra := ea[0]*absR[0][j] + ea[1]*absR[1][j] + ea[2]*absR[2][j]
		rb := eb[j]
		if math.Abs(t[0]*r[0][j]+t[1]*r[1][j]+t[2]*r[2][j]) > ra+rb {
			return false
		}
	}

	for i := range 3 {
		i1, i2 := (i+1)%3, (i+2)%3
		for j := range 3 {
			j1, j2 := (j+1)%3, (j+2)%3
			ra := ea[i1]*absR[i2][j] + ea[i2]*absR[i1][j]
			rb := eb[j1]*absR[i][j2] + eb[j2]*absR[i][j1]
			if math.Abs(t[i2]*r[i1][j]-t[i1]*r[i2][j]) > ra+rb {
				return false
			}
		}
	}
	return true
}
