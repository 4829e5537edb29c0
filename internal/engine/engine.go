package engine

import (
	"errors"
	"log/slog"
)

// Config groups the calibration of every model. It is read once at start-up
// and treated as immutable afterwards.
type Config struct {
	Thermal   ThermalConfig   `yaml:"thermal"`
	Aging     AgingConfig     `yaml:"aging"`
	DGA       DiagnoserConfig `yaml:"dga"`
	Simulator SimulatorConfig `yaml:"simulator"`
}

// DefaultConfig returns the standard calibration.
func DefaultConfig() Config {
	return Config{
		Thermal:   DefaultThermalConfig(),
		Aging:     DefaultAgingConfig(),
		DGA:       DefaultDiagnoserConfig(),
		Simulator: DefaultSimulatorConfig(),
	}
}

// Validate checks every section and joins the failures.
func (c Config) Validate() error {
	return errors.Join(
		c.Thermal.Validate(),
		c.Aging.Validate(),
		c.DGA.Validate(),
		c.Simulator.Validate(),
	)
}

// Engine bundles the independently constructible models behind one handle.
type Engine struct {
	Diagnoser *Diagnoser
	Thermal   *ThermalModel
	Aging     *AgingModel
	Simulator *Simulator
}

// New validates cfg and constructs every model; rules may be nil.
func New(cfg Config, rules *RuleEngine, logger *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	thermal := NewThermalModel(cfg.Thermal)
	aging := NewAgingModel(cfg.Aging)
	logger.Debug("engine calibrated",
		slog.Float64("hotspot_limit", cfg.Thermal.HotspotLimit),
		slog.Float64("failure_dp", cfg.Aging.FailureDP),
		slog.Int("gas_limits", len(cfg.DGA.Limits)),
	)
	return &Engine{
		Diagnoser: NewDiagnoser(cfg.DGA, rules),
		Thermal:   thermal,
		Aging:     aging,
		Simulator: NewSimulator(cfg.Simulator, thermal, aging),
	}, nil
}
