// Package simulation runs a boids flock: agents steered by alignment, cohesion and
// separation, kept inside a box and pushed away from spherical repellers.
//
// A Flock is not safe for concurrent use. Drive it from one goroutine, or through a
// Driver or a FlockActor which serialize access between ticks.
package simulation

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/spatial"
)

type Flock struct {
	agents    []Agent
	params    Parameters
	repellers []Repeller
	ticks     uint64

	rng    *rand.Rand
	logger log.Logger

	// index snapshot buffers, reused across ticks
	xs, ys, zs []float64
	ids        []int
}

type Option func(*Flock)

// WithRand sets the generator used for random initialization.
func WithRand(rng *rand.Rand) Option {
	return func(f *Flock) {
		f.rng = rng
	}
}

func WithLogger(logger log.Logger) Option {
	return func(f *Flock) {
		f.logger = logger
	}
}

// New creates a flock of cfg.AgentCount randomly placed agents.
func New(cfg *Config, opts ...Option) (*Flock, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	f := &Flock{
		params:    cfg.Parameters,
		repellers: slices.Clone(cfg.Repellers),
		logger:    log.DiscardLogger,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.rng == nil {
		f.rng = newRand(cfg.Seed)
	}

	f.randomize(cfg.AgentCount, cfg.Is3D)
	f.logger.Infof("flock created: %d agents, 3D=%t, box=%.1f, parallel=%t, spatial index=%t",
		cfg.AgentCount, cfg.Is3D, f.params.BoundingBoxSize, f.params.UseParallel, f.params.UseSpatialIndex)
	return f, nil
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Randomize replaces the population with count agents placed uniformly in the box,
// each heading in a random direction at InitialSpeed. Planar flocks stay on z = 0.
func (f *Flock) Randomize(count int, is3D bool) error {
	if count < 1 {
		return fmt.Errorf("%w: count=%d", ErrNoAgents, count)
	}
	f.randomize(count, is3D)
	f.logger.Debugf("flock randomized: %d agents, 3D=%t", count, is3D)
	return nil
}

func (f *Flock) randomize(count int, is3D bool) {
	half := 0.5 * f.params.BoundingBoxSize
	lo, hi := geometry.Vec(-half, -half, 0), geometry.Vec(half, half, 0)
	if is3D {
		hi[2] = 2 * half
	}

	f.agents = make([]Agent, count)
	for i := range f.agents {
		dir := geometry.RandomUnitVectorXY(f.rng)
		if is3D {
			dir = geometry.RandomUnitVector(f.rng)
		}
		f.agents[i] = Agent{
			Position: geometry.RandomPoint(f.rng, lo, hi),
			Velocity: dir.Mul(InitialSpeed),
		}
	}
}

// Reinitialize replaces the population with one agent per position. When directions
// is nil every agent gets a random direction on the unit sphere, otherwise
// directions[i] is rescaled to InitialSpeed.
func (f *Flock) Reinitialize(positions, directions []geometry.Vector3) error {
	if len(positions) == 0 {
		return ErrNoAgents
	}
	if directions != nil && len(directions) != len(positions) {
		return fmt.Errorf("%w: %d positions, %d directions", ErrLengthMismatch, len(positions), len(directions))
	}

	agents := make([]Agent, len(positions))
	for i, p := range positions {
		if !geometry.IsFinite(p) {
			return fmt.Errorf("%w: position %d is %s", ErrInvalidParameters, i, geometry.Format(p))
		}
		dir := geometry.RandomUnitVector(f.rng)
		if directions != nil {
			dir = directions[i]
			if !geometry.IsFinite(dir) || dir.LenSqr() == 0 {
				return fmt.Errorf("%w: direction %d is %s", ErrZeroDirection, i, geometry.Format(dir))
			}
		}
		agents[i] = Agent{Position: p, Velocity: geometry.WithLength(dir, InitialSpeed)}
	}

	f.agents = agents
	f.logger.Debugf("flock reinitialized with %d agents", len(agents))
	return nil
}

// Tick advances the flock by one timestep.
func (f *Flock) Tick() error {
	f.ticks++
	n := len(f.agents)
	if n == 0 {
		return ErrNoAgents
	}

	// 1. Rebuild the neighbor index from the pre-tick positions
	var idx *spatial.Index
	if f.params.UseSpatialIndex {
		var err error
		if idx, err = f.buildIndex(); err != nil {
			return fmt.Errorf("failed to rebuild spatial index: %w", err)
		}
	}

	p := f.params
	repellers := f.repellers
	workers := p.workers()

	// 2. Compute phase: every agent reads the frozen state and writes only its own accumulator
	parallelRange(n, workers, func(lo, hi int) {
		var ids []int
		var neighbors []*Agent
		for i := lo; i < hi; i++ {
			neighbors, ids = f.appendNeighbors(neighbors[:0], ids, idx, i)
			f.agents[i].ComputeDesiredVelocity(neighbors, &p, repellers)
		}
	})

	// 3. Integrate phase, only after every desired velocity is known
	parallelRange(n, workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			f.agents[i].Integrate(p.Timestep)
		}
	})
	return nil
}

func (f *Flock) buildIndex() (*spatial.Index, error) {
	n := len(f.agents)
	f.xs = slices.Grow(f.xs[:0], n)[:n]
	f.ys = slices.Grow(f.ys[:0], n)[:n]
	f.zs = slices.Grow(f.zs[:0], n)[:n]
	f.ids = slices.Grow(f.ids[:0], n)[:n]
	for i, a := range f.agents {
		f.xs[i], f.ys[i], f.zs[i] = a.Position[0], a.Position[1], a.Position[2]
		f.ids[i] = i
	}
	return spatial.Build(f.xs, f.ys, f.zs, f.ids)
}

// appendNeighbors appends to dst every other agent strictly within the neighborhood
// radius of agent i. Without an index it scans the whole flock.
func (f *Flock) appendNeighbors(dst []*Agent, ids []int, idx *spatial.Index, i int) ([]*Agent, []int) {
	pos := f.agents[i].Position
	radius := f.params.NeighborhoodRadius

	if idx == nil {
		radiusSq := radius * radius
		for j := range f.agents {
			if j != i && geometry.DistanceSquared(f.agents[j].Position, pos) < radiusSq {
				dst = append(dst, &f.agents[j])
			}
		}
		return dst, ids
	}

	ids, err := idx.AppendQuery(ids[:0], pos, radius)
	if err != nil {
		panic(fmt.Sprintf("neighbor query for agent %d: %v", i, err))
	}
	for _, id := range ids {
		if id != i {
			dst = append(dst, &f.agents[id])
		}
	}
	return dst, ids
}

func (f *Flock) Parameters() Parameters {
	return f.params
}

// SetParameters replaces the parameters used from the next tick on.
func (f *Flock) SetParameters(p Parameters) error {
	if err := p.Validate(); err != nil {
		return err
	}
	f.params = p
	return nil
}

func (f *Flock) Repellers() []Repeller {
	return slices.Clone(f.repellers)
}

// SetRepellers replaces the whole repeller set.
func (f *Flock) SetRepellers(repellers []Repeller) error {
	if err := validateRepellers(repellers); err != nil {
		return err
	}
	f.repellers = slices.Clone(repellers)
	return nil
}

func (f *Flock) Len() int {
	return len(f.agents)
}

// TickCount returns how many ticks were started since creation.
func (f *Flock) TickCount() uint64 {
	return f.ticks
}

// Agent returns a copy of agent i.
func (f *Flock) Agent(i int) Agent {
	return f.agents[i]
}

func (f *Flock) Positions() []geometry.Vector3 {
	out := make([]geometry.Vector3, len(f.agents))
	for i := range f.agents {
		out[i] = f.agents[i].Position
	}
	return out
}

func (f *Flock) Velocities() []geometry.Vector3 {
	out := make([]geometry.Vector3, len(f.agents))
	for i := range f.agents {
		out[i] = f.agents[i].Velocity
	}
	return out
}
