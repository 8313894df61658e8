package geometry

import (
	"math"
	"math/rand/v2"
)

// RandomPoint returns a point sampled uniformly inside the axis aligned box [min, max].
// A degenerate axis (min == max) always yields that coordinate.
func RandomPoint(rng *rand.Rand, min, max Vector3) Vector3 {
	var p Vector3
	for i := range p {
		p[i] = min[i] + (max[i]-min[i])*rng.Float64()
	}
	return p
}

// RandomUnitVector returns a direction sampled uniformly over the unit sphere.
// The azimuth is uniform in [0, 2π) and the polar angle is acos of a uniform variate in [-1, 1].
func RandomUnitVector(rng *rand.Rand) Vector3 {
	phi := 2 * math.Pi * rng.Float64()
	theta := math.Acos(2*rng.Float64() - 1)
	sinTheta := math.Sin(theta)
	return Vector3{
		sinTheta * math.Cos(phi),
		sinTheta * math.Sin(phi),
		math.Cos(theta),
	}
}

// RandomUnitVectorXY returns a direction sampled uniformly in the horizontal (XY) plane.
func RandomUnitVectorXY(rng *rand.Rand) Vector3 {
	angle := 2 * math.Pi * rng.Float64()
	return Vector3{math.Cos(angle), math.Sin(angle), 0}
}
