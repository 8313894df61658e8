package main

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/ui"
)

const panelWidth = 280

var (
	colorBackground = color.RGBA{R: 10, G: 10, B: 30, A: 255}
	colorBox        = color.RGBA{R: 70, G: 70, B: 90, A: 255}
	colorRepeller   = color.RGBA{R: 255, G: 80, B: 60, A: 255}
	colorLow        = color.RGBA{R: 60, G: 120, B: 255, A: 255}
	colorHigh       = color.RGBA{R: 255, G: 240, B: 180, A: 255}
)

// frame is a copy of the flock state taken by the render callback.
type frame struct {
	positions  []geometry.Vector3
	velocities []geometry.Vector3
	repellers  []simulation.Repeller
	stats      simulation.Stats
	box        float64
}

type Game struct {
	ctx    context.Context
	cfg    *simulation.Config
	driver *simulation.Driver
	logger log.Logger

	frames chan *frame
	last   *frame

	panel          *ui.Panel
	repellerRadius *ui.Slider
	population     *ui.Slider
	paused         bool

	// Timing instrumentation
	updateAvg   float64 // Rolling average in ms
	drawAvg     float64
	lastTicks   uint64
	lastTickLog time.Time
	tickRate    float64
}

func NewGame(ctx context.Context, cfg *simulation.Config, flock *simulation.Flock, logger log.Logger) *Game {
	g := &Game{
		ctx:         ctx,
		cfg:         cfg,
		logger:      logger,
		frames:      make(chan *frame, 1),
		lastTickLog: time.Now(),
	}
	g.driver = simulation.NewDriver(flock,
		simulation.WithIterationsPerStep(cfg.IterationsPerStep),
		simulation.WithStopGrace(cfg.StopGrace()),
		simulation.WithStepInterval(cfg.StepInterval()),
		simulation.WithDriverLogger(logger),
		simulation.WithRender(g.capture),
	)
	g.last = g.snapshot(flock)
	g.buildPanel()
	return g
}

// capture runs on the driver goroutine after every step.
func (g *Game) capture(f *simulation.Flock) {
	select {
	case g.frames <- g.snapshot(f):
	default:
		// UI busy, skip frame
	}
}

func (g *Game) snapshot(f *simulation.Flock) *frame {
	return &frame{
		positions:  f.Positions(),
		velocities: f.Velocities(),
		repellers:  f.Repellers(),
		stats:      f.Stats(),
		box:        f.Parameters().BoundingBoxSize,
	}
}

// updateParameters applies change to the flock parameters between two ticks.
func (g *Game) updateParameters(change func(p *simulation.Parameters)) {
	err := g.driver.Do(func(f *simulation.Flock) error {
		p := f.Parameters()
		change(&p)
		return f.SetParameters(p)
	})
	if err != nil {
		g.logger.Warnf("parameter update rejected: %v", err)
	}
}

func (g *Game) buildPanel() {
	p := g.cfg.Parameters
	g.panel = ui.NewPanel(10, 10, panelWidth, screenHeight-20, "Flock configuration")

	g.panel.AddSection("Flocking")
	g.panel.AddSlider("Neighborhood", 0.1, 5, p.NeighborhoodRadius, func(v float64) {
		g.updateParameters(func(p *simulation.Parameters) { p.NeighborhoodRadius = v })
	})
	g.panel.AddSlider("Alignment", 0, 20, p.AlignmentStrength, func(v float64) {
		g.updateParameters(func(p *simulation.Parameters) { p.AlignmentStrength = v })
	})
	g.panel.AddSlider("Cohesion", 0, 20, p.CohesionStrength, func(v float64) {
		g.updateParameters(func(p *simulation.Parameters) { p.CohesionStrength = v })
	})
	g.panel.AddSlider("Separation", 0, 20, p.SeparationStrength, func(v float64) {
		g.updateParameters(func(p *simulation.Parameters) { p.SeparationStrength = v })
	})
	g.panel.AddSlider("Separation distance", 0.05, 2, p.SeparationDistance, func(v float64) {
		g.updateParameters(func(p *simulation.Parameters) { p.SeparationDistance = v })
	})

	g.panel.AddSection("World")
	g.panel.AddSlider("Bounding box", 5, 200, p.BoundingBoxSize, func(v float64) {
		g.updateParameters(func(p *simulation.Parameters) { p.BoundingBoxSize = v })
	})
	ts := g.panel.AddSlider("Timestep", 0.001, 0.05, p.Timestep, func(v float64) {
		g.updateParameters(func(p *simulation.Parameters) { p.Timestep = v })
	})
	ts.Format = "%.3f"

	g.panel.AddSection("Engine")
	g.panel.AddCheckbox("Parallel update", p.UseParallel, func(v bool) {
		g.updateParameters(func(p *simulation.Parameters) { p.UseParallel = v })
	})
	g.panel.AddCheckbox("Spatial index", p.UseSpatialIndex, func(v bool) {
		g.updateParameters(func(p *simulation.Parameters) { p.UseSpatialIndex = v })
	})

	g.panel.AddSection("Repellers (click the scene)")
	g.repellerRadius = g.panel.AddSlider("Radius", 0.5, 10, 2, nil)
	g.panel.AddButton("Clear repellers", func() {
		_ = g.driver.Do(func(f *simulation.Flock) error { return f.SetRepellers(nil) })
	})

	g.panel.AddSection("Population (restart required)")
	g.population = g.panel.AddSlider("Agents", 1, 5000, float64(g.cfg.AgentCount), nil)
	g.population.Format = "%.0f"
	g.panel.AddButton("Restart (R)", g.restart)
}

func (g *Game) restart() {
	count := int(g.population.Value)
	err := g.driver.Do(func(f *simulation.Flock) error { return f.Randomize(count, g.cfg.Is3D) })
	if err != nil {
		g.logger.Warnf("restart failed: %v", err)
		return
	}
	g.logger.Infof("flock restarted with %d agents", count)
}

func (g *Game) togglePause() {
	if g.paused {
		if err := g.driver.Start(g.ctx); err != nil {
			g.logger.Warnf("cannot resume yet: %v", err)
			return
		}
	} else {
		g.driver.Stop()
	}
	g.paused = !g.paused
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	// 1. Update UI Panel
	g.panel.Update()

	// 2. Keyboard and scene clicks
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.togglePause()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.restart()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.panel.Hidden = !g.panel.Hidden
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		mx, my := ebiten.CursorPosition()
		if !g.panel.Contains(float64(mx), float64(my)) {
			g.addRepeller(float64(mx), float64(my))
		}
	}

	// 3. Retrieve Latest State (Non-blocking)
	select {
	case f := <-g.frames:
		g.last = f
	default:
	}
	if g.paused {
		// the loop is stopped, nothing will be pushed
		_ = g.driver.Do(func(f *simulation.Flock) error {
			g.last = g.snapshot(f)
			return nil
		})
	}

	if since := time.Since(g.lastTickLog); since >= time.Second {
		ticks := g.driver.Iterations()
		g.tickRate = float64(ticks-g.lastTicks) / since.Seconds()
		g.lastTicks = ticks
		g.lastTickLog = time.Now()
	}
	return nil
}

// view maps world XY coordinates to the scene right of the panel.
type view struct {
	cx, cy, scale float64
}

func newView(box float64) view {
	sceneX := float64(panelWidth + 20)
	sceneW := float64(screenWidth) - sceneX
	side := min(sceneW, screenHeight) * 0.9
	return view{cx: sceneX + sceneW/2, cy: screenHeight / 2, scale: side / box}
}

func (v view) toScreen(p geometry.Vector3) (float32, float32) {
	return float32(v.cx + p.X()*v.scale), float32(v.cy - p.Y()*v.scale)
}

func (v view) toWorld(x, y float64) (float64, float64) {
	return (x - v.cx) / v.scale, (v.cy - y) / v.scale
}

func (g *Game) addRepeller(x, y float64) {
	v := newView(g.last.box)
	wx, wy := v.toWorld(x, y)
	r := simulation.Repeller{Center: geometry.Vec(wx, wy, g.last.box/2), Radius: g.repellerRadius.Value}
	err := g.driver.Do(func(f *simulation.Flock) error {
		return f.SetRepellers(append(f.Repellers(), r))
	})
	if err != nil {
		g.logger.Warnf("repeller rejected: %v", err)
	}
}

func lerpColor(a, b color.RGBA, t float64) color.RGBA {
	t = max(0, min(t, 1))
	mix := func(x, y uint8) uint8 { return uint8(float64(x) + (float64(y)-float64(x))*t) }
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	screen.Fill(colorBackground)
	f := g.last
	v := newView(f.box)

	// 1. Bounding box
	x0, y0 := v.toScreen(geometry.Vec(-f.box/2, f.box/2, 0))
	side := float32(f.box * v.scale)
	vector.StrokeRect(screen, x0, y0, side, side, 1, colorBox, true)

	// 2. Repellers
	for _, r := range f.repellers {
		x, y := v.toScreen(r.Center)
		vector.StrokeCircle(screen, x, y, float32(r.Radius*v.scale), 2, colorRepeller, true)
	}

	// 3. Agents, colored by height, with a heading tick
	for i, p := range f.positions {
		x, y := v.toScreen(p)
		clr := lerpColor(colorLow, colorHigh, p.Z()/f.box)
		vel := f.velocities[i]
		heading := math.Atan2(vel.Y(), vel.X())
		hx := x + float32(math.Cos(heading)*8)
		hy := y - float32(math.Sin(heading)*8)
		vector.StrokeLine(screen, x, y, hx, hy, 1.5, clr, true)
		vector.FillCircle(screen, x, y, 2.5, clr, true)
	}

	// 4. UI Panel
	g.panel.Draw(screen)

	// 5. Stats
	state := "running"
	if g.paused {
		state = "paused"
	}
	s := f.stats
	msg := fmt.Sprintf("FPS: %.1f  TPS: %.1f\nTicks: %d (%.0f/s) %s\nAgents: %d\nSpeed: %.2f [%.2f, %.2f]\nCentroid: %s\nUpdate: %.2fms Draw: %.2fms\n\nSPACE pause  R restart  H panel",
		ebiten.ActualFPS(), ebiten.ActualTPS(),
		s.Tick, g.tickRate, state,
		s.Agents,
		s.MeanSpeed, s.MinSpeed, s.MaxSpeed,
		geometry.Format(s.Centroid),
		g.updateAvg, g.drawAvg)
	ebitenutil.DebugPrintAt(screen, msg, screenWidth-260, 10)
}

func (g *Game) Layout(w, h int) (int, int) { return screenWidth, screenHeight }
