package simulation

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed config.schema.json
var configSchemaJSON string

var configSchema = jsonschema.MustCompileString("config.schema.json", configSchemaJSON)

// Config describes a flock and how it is driven.
type Config struct {
	// Population
	AgentCount int    `json:"agentCount"`
	Is3D       bool   `json:"is3D"`
	Seed       uint64 `json:"seed"` // 0 picks a time based seed

	Parameters
	Repellers []Repeller `json:"repellers"`

	// Driver
	IterationsPerStep int  `json:"iterationsPerStep"` // ticks between two renders
	EnableRender      bool `json:"enableRender"`
	StopGraceMs       int  `json:"stopGraceMs"`
	StepIntervalMs    int  `json:"stepIntervalMs"` // pause between steps, 0 runs flat out
}

func DefaultConfig() *Config {
	return &Config{
		AgentCount: 100,
		Is3D:       true,
		Parameters: Parameters{
			BoundingBoxSize:    40,
			Timestep:           0.015,
			NeighborhoodRadius: 1,
			AlignmentStrength:  10,
			CohesionStrength:   5,
			SeparationStrength: 5,
			SeparationDistance: 0.5,
			UseParallel:        true,
			UseSpatialIndex:    true,
		},
		IterationsPerStep: 1,
		EnableRender:      true,
		StopGraceMs:       300,
	}
}

// Validate checks the whole configuration, parameters and repellers included.
func (c *Config) Validate() error {
	if c.AgentCount < 1 {
		return fmt.Errorf("%w: agentCount=%d", ErrNoAgents, c.AgentCount)
	}
	if err := c.Parameters.Validate(); err != nil {
		return err
	}
	if err := validateRepellers(c.Repellers); err != nil {
		return err
	}
	if c.IterationsPerStep < 1 {
		return fmt.Errorf("%w: iterationsPerStep must be >= 1, got %d", ErrInvalidParameters, c.IterationsPerStep)
	}
	if c.StopGraceMs < 0 || c.StepIntervalMs < 0 {
		return fmt.Errorf("%w: durations must be >= 0", ErrInvalidParameters)
	}
	return nil
}

func (c *Config) StopGrace() time.Duration {
	return time.Duration(c.StopGraceMs) * time.Millisecond
}

func (c *Config) StepInterval() time.Duration {
	return time.Duration(c.StepIntervalMs) * time.Millisecond
}

// LoadConfig reads a JSON or TOML file, validates it against the embedded schema
// and overlays it on DefaultConfig. Keys missing from the file keep their default.
func LoadConfig(configFile string) (*Config, error) {
	// 1. Read Config File
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 2. Normalize to JSON
	switch ext := strings.ToLower(filepath.Ext(configFile)); ext {
	case ".json":
	case ".toml":
		if b, err = tomlToJSON(b); err != nil {
			return nil, fmt.Errorf("failed to decode config toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q (want .json or .toml)", ext)
	}

	return parseConfig(b)
}

func parseConfig(b []byte) (*Config, error) {
	// 3. Validate against the schema
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := configSchema.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// 4. Unmarshal over the defaults
	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func tomlToJSON(b []byte) ([]byte, error) {
	var raw map[string]interface{}
	if _, err := toml.Decode(string(b), &raw); err != nil {
		return nil, err
	}
	return json.Marshal(raw)
}
