package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/impred/pkg/errors"
)

// Thermostat kinds.
const (
	ThermostatLinear   = "linear"
	ThermostatConstant = "constant"
)

// Term kinds, grouped by phase.
const (
	KindEdgeAttraction    = "edge-attraction"
	KindNodeRepulsion     = "node-repulsion"
	KindEdgeNodeRepulsion = "edge-node-repulsion"
	KindPointAttraction   = "point-attraction"
	KindCurveSmoothing    = "curve-smoothing"
	KindJitter            = "jitter"

	KindDecreasingMax    = "decreasing-max"
	KindAcceleration     = "acceleration"
	KindSurroundingEdges = "surrounding-edges"
	KindPinned           = "pinned"

	KindVectorField = "vector-field"

	KindFlexibleEdges    = "flexible-edges"
	KindMinIterationTime = "min-iteration-time"
)

// DefaultIterations is the iteration count of a configuration that sets none.
const DefaultIterations = 200

var phaseKinds = map[string]map[string]bool{
	"force": {
		KindEdgeAttraction: true, KindNodeRepulsion: true, KindEdgeNodeRepulsion: true,
		KindPointAttraction: true, KindCurveSmoothing: true, KindJitter: true,
	},
	"constraint": {
		KindDecreasingMax: true, KindAcceleration: true, KindSurroundingEdges: true, KindPinned: true,
	},
	"pre_movement":    {KindVectorField: true},
	"post_processing": {KindFlexibleEdges: true, KindMinIterationTime: true},
}

// Config is a complete engine configuration.
type Config struct {
	Iterations       int     `toml:"iterations" json:"iterations"`
	PositionKey      string  `toml:"position_key,omitempty" json:"position_key,omitempty"`
	ControlPointsKey string  `toml:"control_points_key,omitempty" json:"control_points_key,omitempty"`
	CellSize         float64 `toml:"cell_size,omitempty" json:"cell_size,omitempty"`

	// Seed makes jitter reproducible. Zero seeds from the clock.
	Seed uint64 `toml:"seed,omitempty" json:"seed,omitempty"`

	Thermostat     Thermostat `toml:"thermostat" json:"thermostat"`
	Forces         []Term     `toml:"force,omitempty" json:"force,omitempty"`
	Constraints    []Term     `toml:"constraint,omitempty" json:"constraint,omitempty"`
	PreMovement    []Term     `toml:"pre_movement,omitempty" json:"pre_movement,omitempty"`
	PostProcessing []Term     `toml:"post_processing,omitempty" json:"post_processing,omitempty"`
}

// Thermostat selects the annealing schedule.
type Thermostat struct {
	Kind string `toml:"kind" json:"kind"`

	// Temperature is the fixed value of a constant thermostat.
	Temperature float64 `toml:"temperature,omitempty" json:"temperature,omitempty"`
}

// Term configures one force, constraint, pre-movement or post-processing
// step. Only the fields meaningful for Kind are read.
type Term struct {
	Kind string `toml:"kind" json:"kind"`

	Desired        float64 `toml:"desired,omitempty" json:"desired,omitempty"`
	StartExponent  float64 `toml:"start_exponent,omitempty" json:"start_exponent,omitempty"`
	EndExponent    float64 `toml:"end_exponent,omitempty" json:"end_exponent,omitempty"`
	Exponent       float64 `toml:"exponent,omitempty" json:"exponent,omitempty"`
	ActivityFactor float64 `toml:"activity_factor,omitempty" json:"activity_factor,omitempty"`
	Max            float64 `toml:"max,omitempty" json:"max,omitempty"`

	// GateBelow wraps a force so it only fades in once the temperature
	// drops below the threshold.
	GateBelow float64 `toml:"gate_below,omitempty" json:"gate_below,omitempty"`

	Initial float64 `toml:"initial,omitempty" json:"initial,omitempty"`
	Growth  float64 `toml:"growth,omitempty" json:"growth,omitempty"`
	Shrink  float64 `toml:"shrink,omitempty" json:"shrink,omitempty"`

	MinGridDimension int     `toml:"min_grid_dimension,omitempty" json:"min_grid_dimension,omitempty"`
	Smoothness       float64 `toml:"smoothness,omitempty" json:"smoothness,omitempty"`

	Every               int     `toml:"every,omitempty" json:"every,omitempty"`
	ShutdownTemperature float64 `toml:"shutdown_temperature,omitempty" json:"shutdown_temperature,omitempty"`
	ExpandThreshold     float64 `toml:"expand_threshold,omitempty" json:"expand_threshold,omitempty"`
	ContractThreshold   float64 `toml:"contract_threshold,omitempty" json:"contract_threshold,omitempty"`

	// MinTime is a duration string such as "16ms".
	MinTime string `toml:"min_time,omitempty" json:"min_time,omitempty"`
}

// Default returns the ImPrEd preset: spring attraction along edges, node and
// edge-node repulsion, late curve smoothing, a cooling movement cap, pins,
// the anti-crossing constraint and flexible edges.
func Default() *Config {
	return &Config{
		Iterations: DefaultIterations,
		Thermostat: Thermostat{Kind: ThermostatLinear},
		Forces: []Term{
			{Kind: KindEdgeAttraction, Desired: 50, StartExponent: 1, EndExponent: 2},
			{Kind: KindNodeRepulsion, Desired: 50, StartExponent: 2, EndExponent: 2},
			{Kind: KindEdgeNodeRepulsion, Desired: 25, StartExponent: 2, EndExponent: 2},
			{Kind: KindCurveSmoothing, GateBelow: 0.5},
		},
		Constraints: []Term{
			{Kind: KindDecreasingMax, Initial: 50},
			{Kind: KindPinned},
			{Kind: KindSurroundingEdges},
		},
		PostProcessing: []Term{
			{Kind: KindFlexibleEdges, Every: 5, ShutdownTemperature: 0.2, ExpandThreshold: 100, ContractThreshold: 30},
		},
	}
}

// Load reads and validates the TOML configuration at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "open %s", path)
	}
	defer f.Close()
	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a TOML configuration. Unknown keys are
// rejected so typos do not silently fall back to defaults.
func Parse(r io.Reader) (*Config, error) {
	var cfg Config
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if cfg.Iterations == 0 {
		cfg.Iterations = DefaultIterations
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Write encodes cfg as TOML.
func Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// String returns the TOML form of cfg.
func (c *Config) String() string {
	var buf bytes.Buffer
	_ = Write(&buf, c)
	return buf.String()
}

// Validate checks every field and term. Errors carry the INVALID_CONFIG code.
func (c *Config) Validate() error {
	if err := errors.ValidateIterations(c.Iterations); err != nil {
		return err
	}
	for _, key := range []string{c.PositionKey, c.ControlPointsKey} {
		if key == "" {
			continue
		}
		if err := errors.ValidateAttributeKey(key); err != nil {
			return err
		}
	}
	if err := errors.ValidateNonNegative("cell_size", c.CellSize); err != nil {
		return err
	}

	switch c.Thermostat.Kind {
	case "", ThermostatLinear:
	case ThermostatConstant:
		if err := errors.ValidateUnit("thermostat.temperature", c.Thermostat.Temperature); err != nil {
			return err
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown thermostat kind %q", c.Thermostat.Kind)
	}

	phases := []struct {
		name  string
		terms []Term
	}{
		{"force", c.Forces},
		{"constraint", c.Constraints},
		{"pre_movement", c.PreMovement},
		{"post_processing", c.PostProcessing},
	}
	for _, p := range phases {
		for i, t := range p.terms {
			if !phaseKinds[p.name][t.Kind] {
				return errors.New(errors.ErrCodeInvalidConfig, "%s[%d]: unknown kind %q", p.name, i, t.Kind)
			}
			if err := t.validate(); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s[%d] (%s)", p.name, i, t.Kind)
			}
		}
	}
	return nil
}

func (t Term) validate() error {
	params := []struct {
		name string
		v    float64
	}{
		{"desired", t.Desired},
		{"start_exponent", t.StartExponent},
		{"end_exponent", t.EndExponent},
		{"exponent", t.Exponent},
		{"activity_factor", t.ActivityFactor},
		{"max", t.Max},
		{"initial", t.Initial},
		{"growth", t.Growth},
		{"shrink", t.Shrink},
		{"smoothness", t.Smoothness},
		{"expand_threshold", t.ExpandThreshold},
		{"contract_threshold", t.ContractThreshold},
		{"min_grid_dimension", float64(t.MinGridDimension)},
		{"every", float64(t.Every)},
	}
	for _, p := range params {
		if err := errors.ValidateNonNegative(p.name, p.v); err != nil {
			return err
		}
	}
	if err := errors.ValidateUnit("gate_below", t.GateBelow); err != nil {
		return err
	}
	if err := errors.ValidateUnit("shutdown_temperature", t.ShutdownTemperature); err != nil {
		return err
	}
	if t.MinTime != "" {
		d, err := time.ParseDuration(t.MinTime)
		if err != nil {
			return err
		}
		if d < 0 {
			return fmt.Errorf("min_time must be non-negative, got %s", d)
		}
	}
	return nil
}
