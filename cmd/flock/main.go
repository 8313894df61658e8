package main

import (
	"context"
	"flag"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/simulation"
)

func main() {
	configFile := flag.String("config", "", "JSON or TOML configuration file")
	ticks := flag.Int("ticks", 1000, "ticks to run through the flock actor")
	batch := flag.Int("batch", 100, "ticks per actor request, one report line each")
	duration := flag.Duration("duration", 0, "run the continuous driver for this long instead of the actor")
	seed := flag.Uint64("seed", 0, "random seed, overrides the configuration")
	stats := flag.Bool("statsview", false, "serve runtime statistics on -statsaddr")
	statsAddr := flag.String("statsaddr", "localhost:18066", "statsview listen address")
	flag.Parse()

	logger := log.DefaultLogger

	cfg := simulation.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = simulation.LoadConfig(*configFile); err != nil {
			stdlog.Fatalf("💥 error loading config: %v", err)
		}
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	if *stats {
		viewer.SetConfiguration(viewer.WithAddr(*statsAddr))
		mgr := statsview.New()
		go mgr.Start()
		defer mgr.Stop()
		logger.Infof("📊 runtime stats on http://%s/debug/statsview", *statsAddr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	if *duration > 0 {
		err = runDriver(ctx, cfg, *duration, logger)
	} else {
		err = runActor(ctx, cfg, *ticks, *batch, logger)
	}
	if err != nil {
		stdlog.Fatalf("💥 %v", err)
	}
}

// runActor hosts the flock in an actor system and ticks it by batches.
func runActor(ctx context.Context, cfg *simulation.Config, ticks, batch int, logger log.Logger) error {
	system, err := actor.NewActorSystem("FlockWorld", actor.WithLogger(logger))
	if err != nil {
		return err
	}
	if err := system.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = system.Stop(context.Background()) }()

	pid, err := system.Spawn(ctx, "flock", simulation.NewFlockActor(cfg))
	if err != nil {
		return err
	}

	batch = max(batch, 1)
	start := time.Now()
	for done := 0; done < ticks && ctx.Err() == nil; {
		n := min(batch, ticks-done)
		resp, err := actor.Ask(ctx, pid, wrapperspb.UInt32(uint32(n)), time.Minute)
		if err != nil {
			return err
		}
		done += n
		if snap, ok := resp.(*structpb.Struct); ok {
			report(logger, snap)
		}
	}
	logger.Infof("✅ %d ticks in %s", ticks, time.Since(start).Round(time.Millisecond))
	return nil
}

func report(logger log.Logger, snap *structpb.Struct) {
	fields := snap.GetFields()
	if e := fields["error"].GetStringValue(); e != "" {
		logger.Errorf("flock error: %s", e)
	}
	c := fields["centroid"].GetListValue().GetValues()
	centroid := geometry.Zero
	for i := 0; i < len(c) && i < 3; i++ {
		centroid[i] = c[i].GetNumberValue()
	}
	logger.Infof("tick %6.0f | centroid %s | speed %.2f [%.2f, %.2f] | %s",
		fields["tick"].GetNumberValue(),
		geometry.Format(centroid),
		fields["meanSpeed"].GetNumberValue(),
		fields["minSpeed"].GetNumberValue(),
		fields["maxSpeed"].GetNumberValue(),
		fields["fingerprint"].GetStringValue())
}

// runDriver runs the flock on the continuous driver for d, logging once per second.
func runDriver(ctx context.Context, cfg *simulation.Config, d time.Duration, logger log.Logger) error {
	flock, err := simulation.New(cfg, simulation.WithLogger(logger))
	if err != nil {
		return err
	}

	lastLog := time.Now()
	opts := []simulation.DriverOption{
		simulation.WithIterationsPerStep(cfg.IterationsPerStep),
		simulation.WithStopGrace(cfg.StopGrace()),
		simulation.WithStepInterval(cfg.StepInterval()),
		simulation.WithDriverLogger(logger),
	}
	if cfg.EnableRender {
		opts = append(opts, simulation.WithRender(func(f *simulation.Flock) {
			if time.Since(lastLog) < time.Second {
				return
			}
			s := f.Stats()
			logger.Infof("tick %d | centroid %s | speed %.2f [%.2f, %.2f]",
				s.Tick, geometry.Format(s.Centroid), s.MeanSpeed, s.MinSpeed, s.MaxSpeed)
			lastLog = time.Now()
		}))
	}
	driver := simulation.NewDriver(flock, opts...)

	if err := driver.Start(ctx); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
	if !driver.Stop() {
		logger.Warnf("driver still busy after %s, exiting anyway", cfg.StopGrace())
		return nil
	}

	_ = driver.Do(func(f *simulation.Flock) error {
		s := f.Stats()
		logger.Infof("✅ %d ticks in %s (%.0f ticks/s), fingerprint %016x",
			s.Tick, d, float64(s.Tick)/d.Seconds(), f.Fingerprint())
		return nil
	})
	return nil
}
