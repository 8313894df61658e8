package simulation

import (
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

// Repeller response
const (
	RepellerInfluence  = 20.0 // beyond this distance from the surface a repeller is ignored
	RepellerMinFalloff = 0.01
	RepellerStrength   = 60.0
)

// Integration
const (
	Smoothing    = 0.03 // share of the desired velocity blended in every tick
	MinSpeed     = 4.0
	MaxSpeed     = 8.0
	InitialSpeed = MinSpeed
)

// Agent is one member of the flock. Its identity is its index in the flock.
type Agent struct {
	Position geometry.Vector3
	Velocity geometry.Vector3

	desired geometry.Vector3 // written in the compute phase, consumed by Integrate
}

// Desired returns the velocity computed by the last ComputeDesiredVelocity call.
func (a *Agent) Desired() geometry.Vector3 {
	return a.desired
}

// DesiredVelocity combines containment, velocity carry-forward, the three flocking
// rules and repeller avoidance into the velocity self would like to have.
// It only reads its arguments.
func DesiredVelocity(self *Agent, neighbors []*Agent, p *Parameters, repellers []Repeller) geometry.Vector3 {
	pos := self.Position
	var desired geometry.Vector3

	// 1. Stay inside the box: X and Y in [-half, half], Z in [0, 2*half]
	half := 0.5 * p.BoundingBoxSize
	if pos[0] < -half {
		desired[0] += -half - pos[0]
	} else if pos[0] > half {
		desired[0] += half - pos[0]
	}
	if pos[1] < -half {
		desired[1] += -half - pos[1]
	} else if pos[1] > half {
		desired[1] += half - pos[1]
	}
	if pos[2] < 0 {
		desired[2] += -pos[2]
	} else if pos[2] > 2*half {
		desired[2] += 2*half - pos[2]
	}

	// 2. Keep going. A lonely agent gets its velocity twice.
	desired = desired.Add(self.Velocity)
	if len(neighbors) == 0 {
		desired = desired.Add(self.Velocity)
	} else {
		var velocitySum, positionSum, separation geometry.Vector3
		sepDistSq := p.SeparationDistance * p.SeparationDistance
		for _, n := range neighbors {
			velocitySum = velocitySum.Add(n.Velocity)
			positionSum = positionSum.Add(n.Position)

			away := pos.Sub(n.Position)
			distSq := away.LenSqr()
			// coincident agents give no direction to flee
			if distSq < sepDistSq && distSq > 0 {
				separation = separation.Add(away.Mul(1 / distSq))
			}
		}
		inv := 1 / float64(len(neighbors))

		// 3. Alignment
		desired = desired.Add(velocitySum.Mul(inv * p.AlignmentStrength))
		// 4. Cohesion
		desired = desired.Add(positionSum.Mul(inv).Sub(pos).Mul(p.CohesionStrength))
		// 5. Separation
		desired = desired.Add(separation.Mul(p.SeparationStrength))
	}

	// 6. Repellers
	for _, r := range repellers {
		delta := pos.Sub(r.Center)
		d := delta.Len()
		if d == 0 {
			continue
		}
		falloff := d - r.Radius
		if falloff > RepellerInfluence {
			continue
		}
		falloff = max(falloff, RepellerMinFalloff)
		desired = desired.Add(delta.Mul(RepellerStrength / (d * falloff)))
	}

	return desired
}

// ComputeDesiredVelocity stores DesiredVelocity for the next Integrate.
func (a *Agent) ComputeDesiredVelocity(neighbors []*Agent, p *Parameters, repellers []Repeller) {
	a.desired = DesiredVelocity(a, neighbors, p, repellers)
}

// Integrate blends the desired velocity in, clamps the speed to [MinSpeed, MaxSpeed]
// and moves the agent. A zero velocity stays zero.
func (a *Agent) Integrate(timestep float64) {
	v := a.Velocity.Mul(1 - Smoothing).Add(a.desired.Mul(Smoothing))

	if speed := v.Len(); speed > MaxSpeed {
		v = v.Mul(MaxSpeed / speed)
	} else if speed < MinSpeed && speed > 0 {
		v = v.Mul(MinSpeed / speed)
	}

	a.Velocity = v
	a.Position = a.Position.Add(v.Mul(timestep))
}
