package simulation

import (
	"errors"
	"fmt"
	"math"
	"runtime"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

var (
	ErrInvalidParameters = errors.New("invalid simulation parameters")
	ErrNoAgents          = errors.New("a flock needs at least one agent")
	ErrLengthMismatch    = errors.New("positions and directions differ in length")
	ErrZeroDirection     = errors.New("initial direction has no length")
)

// Parameters are the per-tick knobs of the flock.
// They may be replaced between ticks and are read-only while a tick runs.
type Parameters struct {
	BoundingBoxSize    float64 `json:"boundingBoxSize"`    // side of the containment box
	Timestep           float64 `json:"timestep"`           // seconds advanced per tick
	NeighborhoodRadius float64 `json:"neighborhoodRadius"` // how far can they see?
	AlignmentStrength  float64 `json:"alignmentStrength"`
	CohesionStrength   float64 `json:"cohesionStrength"`
	SeparationStrength float64 `json:"separationStrength"`
	SeparationDistance float64 `json:"separationDistance"` // personal space radius

	UseParallel     bool `json:"useParallel"`
	UseSpatialIndex bool `json:"useSpatialIndex"`
	Workers         int  `json:"workers"` // 0 means GOMAXPROCS, ignored unless UseParallel
}

// Repeller is a spherical obstacle the agents steer away from.
type Repeller struct {
	Center geometry.Vector3 `json:"center"`
	Radius float64          `json:"radius"`
}

// Validate rejects parameter sets a tick cannot run with.
func (p *Parameters) Validate() error {
	checks := []struct {
		name  string
		value float64
		ok    bool
	}{
		{"boundingBoxSize", p.BoundingBoxSize, p.BoundingBoxSize > 0},
		{"timestep", p.Timestep, p.Timestep >= 0},
		{"neighborhoodRadius", p.NeighborhoodRadius, p.NeighborhoodRadius >= 0},
		{"separationDistance", p.SeparationDistance, p.SeparationDistance >= 0},
		{"alignmentStrength", p.AlignmentStrength, true},
		{"cohesionStrength", p.CohesionStrength, true},
		{"separationStrength", p.SeparationStrength, true},
	}
	for _, c := range checks {
		if !c.ok || math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return fmt.Errorf("%w: %s out of range: %v", ErrInvalidParameters, c.name, c.value)
		}
	}
	if p.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidParameters, p.Workers)
	}
	return nil
}

// workers returns how many goroutines a tick phase is split across.
func (p *Parameters) workers() int {
	if !p.UseParallel {
		return 1
	}
	if p.Workers > 0 {
		return p.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func validateRepellers(repellers []Repeller) error {
	for i, r := range repellers {
		if !geometry.IsFinite(r.Center) || !(r.Radius >= 0) || math.IsInf(r.Radius, 0) {
			return fmt.Errorf("%w: repeller %d has center %s and radius %v",
				ErrInvalidParameters, i, geometry.Format(r.Center), r.Radius)
		}
	}
	return nil
}
