package main

import (
	"context"
	"flag"
	stdlog "log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/simulation"
)

const (
	screenWidth  = 1280
	screenHeight = 860
)

func main() {
	configFile := flag.String("config", "", "JSON or TOML configuration file")
	agents := flag.Int("agents", 0, "number of agents, overrides the configuration")
	interval := flag.Duration("interval", 15*time.Millisecond, "pause between driver steps when the configuration sets none")
	flag.Parse()

	logger := log.DefaultLogger

	cfg := simulation.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = simulation.LoadConfig(*configFile); err != nil {
			stdlog.Fatalf("💥 error loading config: %v", err)
		}
	}
	if *agents > 0 {
		cfg.AgentCount = *agents
	}
	if cfg.StepIntervalMs == 0 {
		cfg.StepIntervalMs = int(interval.Milliseconds())
	}

	flock, err := simulation.New(cfg, simulation.WithLogger(logger))
	if err != nil {
		stdlog.Fatalf("💥 error creating flock: %v", err)
	}

	ctx := context.Background()
	game := NewGame(ctx, cfg, flock, logger)
	if err := game.driver.Start(ctx); err != nil {
		stdlog.Fatalf("💥 error starting driver: %v", err)
	}
	defer game.driver.Stop()

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Flock: boids seen from above")
	if err := ebiten.RunGame(game); err != nil {
		stdlog.Fatal(err)
	}
}
