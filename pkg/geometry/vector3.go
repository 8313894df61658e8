package geometry

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the tolerance used for approximate float64 comparisons.
const (
	Epsilon = 1e-9
)

// Vector3 represents a 3D vector or point in cartesian space.
// It is a plain [3]float64 value, so it is copied on assignment and never shared by reference.
// Arithmetic (Add, Sub, Mul, Dot, Cross, Len, LenSqr, Normalize) comes from mgl64 and
// always returns a new value.
type Vector3 = mgl64.Vec3

// Zero is the null vector.
var Zero = Vector3{}

// Vec creates a new Vector3.
func Vec(x, y, z float64) Vector3 {
	return Vector3{x, y, z}
}

// Format returns a short human readable form of v, e.g. "(1.00, 2.50, -3.00)".
func Format(v Vector3) string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v[0], v[1], v[2])
}

// WithLength returns v rescaled to the given length.
// A zero vector has no direction and is returned unchanged.
func WithLength(v Vector3, length float64) Vector3 {
	l := v.Len()
	if l == 0 {
		return v
	}
	return v.Mul(length / l)
}

// IsFinite reports whether every component of v is neither NaN nor infinite.
func IsFinite(v Vector3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Eq checks if two vectors are approximately equal using the Epsilon constant.
func Eq(a, b Vector3) bool {
	return a.ApproxEqualThreshold(b, Epsilon)
}

// DistanceSquared returns the squared Euclidean distance between a and b.
// Use it for radius comparisons, it avoids the square root.
func DistanceSquared(a, b Vector3) float64 {
	return a.Sub(b).LenSqr()
}
