package simulation

import (
	"encoding/binary"
	"math"

	"github.com/zeebo/xxh3"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

// Stats summarizes the flock between two ticks.
type Stats struct {
	Tick      uint64
	Agents    int
	Centroid  geometry.Vector3
	MeanSpeed float64
	MinSpeed  float64
	MaxSpeed  float64
}

func (f *Flock) Stats() Stats {
	s := Stats{Tick: f.ticks, Agents: len(f.agents)}
	if len(f.agents) == 0 {
		return s
	}

	s.MinSpeed = math.Inf(1)
	var speedSum float64
	for i := range f.agents {
		a := &f.agents[i]
		s.Centroid = s.Centroid.Add(a.Position)
		speed := a.Velocity.Len()
		speedSum += speed
		s.MinSpeed = min(s.MinSpeed, speed)
		s.MaxSpeed = max(s.MaxSpeed, speed)
	}
	inv := 1 / float64(len(f.agents))
	s.Centroid = s.Centroid.Mul(inv)
	s.MeanSpeed = speedSum * inv
	return s
}

// Fingerprint hashes the exact bits of every position and velocity.
// Two flocks in the same state always have the same fingerprint.
func (f *Flock) Fingerprint() uint64 {
	buf := make([]byte, 0, len(f.agents)*6*8)
	for i := range f.agents {
		a := &f.agents[i]
		for _, v := range [2]geometry.Vector3{a.Position, a.Velocity} {
			for _, c := range v {
				buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(c))
			}
		}
	}
	return xxh3.Hash(buf)
}
