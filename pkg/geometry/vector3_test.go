package geometry

import (
	"math"
	"math/rand/v2"
	"testing"
)

// floatEquals is a helper for testing scalar float values with epsilon.
func floatEquals(a, b float64) bool {
	return math.Abs(a-b) <= Epsilon
}

func TestVec(t *testing.T) {
	v := Vec(1, 2, 3)
	if v.X() != 1 || v.Y() != 2 || v.Z() != 3 {
		t.Errorf("Vec(1, 2, 3) = %v; want (1, 2, 3)", v)
	}
}

func TestFormat(t *testing.T) {
	v := Vec(1.234, 5.678, -9)
	want := "(1.23, 5.68, -9.00)"
	if got := Format(v); got != want {
		t.Errorf("Format() = %q; want %q", got, want)
	}
}

func TestVector3_Arithmetic(t *testing.T) {
	v1 := Vec(1, 2, 3)
	v2 := Vec(4, 5, 6)

	t.Run("Add", func(t *testing.T) {
		if got := v1.Add(v2); !Eq(got, Vec(5, 7, 9)) {
			t.Errorf("%v.Add(%v) = %v", v1, v2, got)
		}
	})

	t.Run("Sub", func(t *testing.T) {
		if got := v1.Sub(v2); !Eq(got, Vec(-3, -3, -3)) {
			t.Errorf("%v.Sub(%v) = %v", v1, v2, got)
		}
	})

	t.Run("Mul", func(t *testing.T) {
		if got := v1.Mul(2); !Eq(got, Vec(2, 4, 6)) {
			t.Errorf("%v.Mul(2) = %v", v1, got)
		}
	})

	t.Run("Immutable", func(t *testing.T) {
		_ = v1.Add(v2)
		if v1 != Vec(1, 2, 3) {
			t.Errorf("Add mutated its receiver: %v", v1)
		}
	})

	t.Run("Dot", func(t *testing.T) {
		if got := v1.Dot(v2); got != 32 {
			t.Errorf("Dot = %v; want 32", got)
		}
	})

	t.Run("Cross", func(t *testing.T) {
		if got := Vec(1, 0, 0).Cross(Vec(0, 1, 0)); !Eq(got, Vec(0, 0, 1)) {
			t.Errorf("X cross Y = %v; want Z", got)
		}
	})

	t.Run("Len", func(t *testing.T) {
		v := Vec(2, 3, 6)
		if !floatEquals(v.Len(), 7) || !floatEquals(v.LenSqr(), 49) {
			t.Errorf("Len/LenSqr of %v = %v/%v; want 7/49", v, v.Len(), v.LenSqr())
		}
	})
}

func TestWithLength(t *testing.T) {
	tests := []struct {
		name   string
		v      Vector3
		length float64
		want   Vector3
	}{
		{"Axis", Vec(0, 2, 0), 4, Vec(0, 4, 0)},
		{"Diagonal", Vec(3, 0, 4), 10, Vec(6, 0, 8)},
		{"Zero stays zero", Zero, 4, Zero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithLength(tt.v, tt.length); !Eq(got, tt.want) {
				t.Errorf("WithLength(%v, %v) = %v; want %v", tt.v, tt.length, got, tt.want)
			}
		})
	}
}

func TestIsFinite(t *testing.T) {
	if !IsFinite(Vec(1, -2, 3)) {
		t.Error("finite vector reported as non finite")
	}
	if IsFinite(Vec(math.NaN(), 0, 0)) {
		t.Error("NaN vector reported as finite")
	}
	if IsFinite(Vec(0, math.Inf(-1), 0)) {
		t.Error("Inf vector reported as finite")
	}
}

func TestRandomPoint(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	min, max := Vec(-20, -20, 0), Vec(20, 20, 0)
	for i := 0; i < 1000; i++ {
		p := RandomPoint(rng, min, max)
		if p.X() < -20 || p.X() > 20 || p.Y() < -20 || p.Y() > 20 {
			t.Fatalf("point %v outside box", p)
		}
		if p.Z() != 0 {
			t.Fatalf("degenerate axis should stay at 0, got %v", p.Z())
		}
	}
}

func TestRandomUnitVector(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	var sum Vector3
	const n = 20000
	for i := 0; i < n; i++ {
		v := RandomUnitVector(rng)
		if !floatEquals(v.Len(), 1) {
			t.Fatalf("RandomUnitVector length = %v; want 1", v.Len())
		}
		sum = sum.Add(v)
	}
	// A uniform sphere sample has a mean close to the origin.
	if mean := sum.Mul(1.0 / n); mean.Len() > 0.05 {
		t.Errorf("mean direction %v too far from origin", mean)
	}
}

func TestRandomUnitVectorXY(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	for i := 0; i < 1000; i++ {
		v := RandomUnitVectorXY(rng)
		if v.Z() != 0 {
			t.Fatalf("planar direction has z = %v", v.Z())
		}
		if !floatEquals(v.Len(), 1) {
			t.Fatalf("planar direction length = %v; want 1", v.Len())
		}
	}
}

func TestRandomIsReproducible(t *testing.T) {
	a := rand.New(rand.NewPCG(42, 42))
	b := rand.New(rand.NewPCG(42, 42))
	for i := 0; i < 10; i++ {
		if RandomUnitVector(a) != RandomUnitVector(b) {
			t.Fatal("same seed produced different directions")
		}
	}
}
