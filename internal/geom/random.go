package geom

import (
	"math"
	"math/rand"
)

// RandRange returns a uniform value in [lo, hi).
func RandRange(rng *rand.Rand, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + rng.Float64()*(hi-lo)
}

// RandomInAnnulus samples a point uniformly by area between radii rMin and
// rMax around center.
func RandomInAnnulus(rng *rand.Rand, center Vec2, rMin, rMax float64) Vec2 {
	return RandomInCone(rng, center, 0, math.Pi, rMin, rMax)
}

// RandomInCone samples a point inside the annular sector centered on
// direction dir (radians) spanning ±halfArc, between radii rMin and rMax.
func RandomInCone(rng *rand.Rand, center Vec2, dir, halfArc, rMin, rMax float64) Vec2 {
	if rMax < rMin {
		rMin, rMax = rMax, rMin
	}
	// sqrt keeps the density uniform by area
	r := math.Sqrt(RandRange(rng, rMin*rMin, rMax*rMax))
	a := dir + RandRange(rng, -halfArc, halfArc)
	return center.Add(FromAngle(a).Scale(r))
}

// RandomInRect samples a point uniformly inside r.
func RandomInRect(rng *rand.Rand, r Rect) Vec2 {
	return Vec2{RandRange(rng, r.X, r.Right()), RandRange(rng, r.Y, r.Bottom())}
}
