package simulation

import (
	"math"
	"testing"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

// rulesOnly returns parameters with every flocking rule switched off and a box large
// enough that containment never kicks in around the origin.
func rulesOnly() *Parameters {
	return &Parameters{BoundingBoxSize: 1000, Timestep: 0.015, NeighborhoodRadius: 1}
}

func TestDesiredVelocity_Boundary(t *testing.T) {
	p := &Parameters{BoundingBoxSize: 40}

	tests := []struct {
		name string
		pos  geometry.Vector3
		want geometry.Vector3
	}{
		{"inside", geometry.Vec(0, 0, 20), geometry.Zero},
		{"past +X", geometry.Vec(25, 0, 20), geometry.Vec(-5, 0, 0)},
		{"past -X", geometry.Vec(-23, 0, 20), geometry.Vec(3, 0, 0)},
		{"past +Y", geometry.Vec(0, 21, 20), geometry.Vec(0, -1, 0)},
		{"past -Y", geometry.Vec(0, -30, 20), geometry.Vec(0, 10, 0)},
		{"below floor", geometry.Vec(0, 0, -3), geometry.Vec(0, 0, 3)},
		{"above ceiling", geometry.Vec(0, 0, 45), geometry.Vec(0, 0, -5)},
		{"corner", geometry.Vec(22, -22, 42), geometry.Vec(-2, 2, -2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			self := &Agent{Position: tt.pos}
			if got := DesiredVelocity(self, nil, p, nil); !geometry.Eq(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestDesiredVelocity_IsolatedAgentDoublesVelocity(t *testing.T) {
	self := &Agent{Position: geometry.Vec(0, 0, 10), Velocity: geometry.Vec(4, 0, 0)}
	got := DesiredVelocity(self, nil, rulesOnly(), nil)
	if !geometry.Eq(got, geometry.Vec(8, 0, 0)) {
		t.Errorf("Expected twice the velocity (8, 0, 0), got %v", got)
	}

	// With a neighbor and every rule off, the velocity is carried once.
	other := &Agent{Position: geometry.Vec(0.5, 0, 10)}
	got = DesiredVelocity(self, []*Agent{other}, rulesOnly(), nil)
	if !geometry.Eq(got, geometry.Vec(4, 0, 0)) {
		t.Errorf("Expected the velocity once (4, 0, 0), got %v", got)
	}
}

func TestDesiredVelocity_Rules(t *testing.T) {
	self := &Agent{Position: geometry.Vec(0, 0, 10)}

	t.Run("Alignment", func(t *testing.T) {
		p := rulesOnly()
		p.AlignmentStrength = 10
		neighbors := []*Agent{
			{Position: geometry.Vec(0.5, 0, 10), Velocity: geometry.Vec(0, 4, 0)},
			{Position: geometry.Vec(-0.5, 0, 10), Velocity: geometry.Vec(0, 2, 0)},
		}
		if got := DesiredVelocity(self, neighbors, p, nil); !geometry.Eq(got, geometry.Vec(0, 30, 0)) {
			t.Errorf("Expected (0, 30, 0), got %v", got)
		}
	})

	t.Run("Cohesion", func(t *testing.T) {
		p := rulesOnly()
		p.CohesionStrength = 5
		neighbors := []*Agent{{Position: geometry.Vec(1, 0, 10)}, {Position: geometry.Vec(1, 2, 10)}}
		if got := DesiredVelocity(self, neighbors, p, nil); !geometry.Eq(got, geometry.Vec(5, 5, 0)) {
			t.Errorf("Expected (5, 5, 0), got %v", got)
		}
	})

	t.Run("Separation", func(t *testing.T) {
		p := rulesOnly()
		p.SeparationStrength = 1
		p.SeparationDistance = 0.5
		neighbors := []*Agent{
			{Position: geometry.Vec(0.25, 0, 10)}, // inside personal space: (-0.25)/0.0625
			{Position: geometry.Vec(0, 0.8, 10)},  // outside personal space
		}
		if got := DesiredVelocity(self, neighbors, p, nil); !geometry.Eq(got, geometry.Vec(-4, 0, 0)) {
			t.Errorf("Expected (-4, 0, 0), got %v", got)
		}
	})

	t.Run("Separation ignores coincident neighbor", func(t *testing.T) {
		p := rulesOnly()
		p.SeparationStrength = 5
		p.SeparationDistance = 0.5
		got := DesiredVelocity(self, []*Agent{{Position: self.Position}}, p, nil)
		if !geometry.IsFinite(got) || !geometry.Eq(got, geometry.Zero) {
			t.Errorf("Expected a finite zero vector, got %v", got)
		}
	})
}

func TestDesiredVelocity_Repellers(t *testing.T) {
	p := rulesOnly()
	repellers := []Repeller{{Center: geometry.Vec(0, 0, 10), Radius: 1}}
	push := func(x float64) float64 {
		self := &Agent{Position: geometry.Vec(x, 0, 10)}
		return DesiredVelocity(self, nil, p, repellers).X()
	}

	t.Run("Falloff", func(t *testing.T) {
		// d = 5, f = 4 -> 60 / 4
		if got := push(5); math.Abs(got-15) > 1e-9 {
			t.Errorf("Expected push 15, got %v", got)
		}
	})

	t.Run("Out of influence", func(t *testing.T) {
		if got := push(1 + RepellerInfluence + 0.5); got != 0 {
			t.Errorf("Expected no push beyond the influence distance, got %v", got)
		}
	})

	t.Run("Inside the sphere", func(t *testing.T) {
		want := RepellerStrength / RepellerMinFalloff
		if got := push(0.5); math.Abs(got-want) > 1e-6 {
			t.Errorf("Expected clamped push %v, got %v", want, got)
		}
	})

	t.Run("Monotonic", func(t *testing.T) {
		prev := math.Inf(1)
		for x := 1.5; x < 1+RepellerInfluence; x += 0.5 {
			got := push(x)
			if got <= 0 || got > prev {
				t.Fatalf("push at %v = %v, previous %v: expected positive and non increasing", x, got, prev)
			}
			prev = got
		}
	})

	t.Run("At the center", func(t *testing.T) {
		self := &Agent{Position: geometry.Vec(0, 0, 10)}
		if got := DesiredVelocity(self, nil, p, repellers); !geometry.IsFinite(got) {
			t.Errorf("Expected a finite vector, got %v", got)
		}
	})
}

func TestAgent_Integrate(t *testing.T) {
	tests := []struct {
		name         string
		velocity     geometry.Vector3
		desired      geometry.Vector3
		wantVelocity geometry.Vector3
	}{
		{"steady", geometry.Vec(4, 0, 0), geometry.Vec(4, 0, 0), geometry.Vec(4, 0, 0)},
		{"blend", geometry.Vec(5, 0, 0), geometry.Vec(5, 100, 0), geometry.Vec(5, 3, 0)},
		{"too fast", geometry.Vec(4, 0, 0), geometry.Vec(1000, 0, 0), geometry.Vec(MaxSpeed, 0, 0)},
		{"too slow", geometry.Vec(4, 0, 0), geometry.Vec(-100, 0, 0), geometry.Vec(MinSpeed, 0, 0)},
		{"zero stays zero", geometry.Zero, geometry.Zero, geometry.Zero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Agent{Position: geometry.Vec(1, 1, 1), Velocity: tt.velocity, desired: tt.desired}
			a.Integrate(0.5)
			if !geometry.Eq(a.Velocity, tt.wantVelocity) {
				t.Errorf("Expected velocity %v, got %v", tt.wantVelocity, a.Velocity)
			}
			wantPos := geometry.Vec(1, 1, 1).Add(tt.wantVelocity.Mul(0.5))
			if !geometry.Eq(a.Position, wantPos) {
				t.Errorf("Expected position %v, got %v", wantPos, a.Position)
			}
		})
	}
}

func TestAgent_ComputeThenIntegrate(t *testing.T) {
	a := &Agent{Position: geometry.Vec(0, 0, 10), Velocity: geometry.Vec(0, 4, 0)}
	a.ComputeDesiredVelocity(nil, rulesOnly(), nil)
	if !geometry.Eq(a.Desired(), geometry.Vec(0, 8, 0)) {
		t.Fatalf("Expected desired (0, 8, 0), got %v", a.Desired())
	}
	a.Integrate(0)
	if !geometry.Eq(a.Velocity, geometry.Vec(0, 4.12, 0)) {
		t.Errorf("Expected velocity (0, 4.12, 0), got %v", a.Velocity)
	}
}
