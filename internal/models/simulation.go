package models

import "fmt"

// Scenario defaults applied when a caller leaves a field unset.
const (
	DefaultCoolingFactor  = 1.0
	DefaultDefectFactor   = 0.5
	DefaultDurationDays   = 7
	DefaultLoadPercent    = 85.0
	DefaultAmbientTemp    = 25.0
	DefaultInitialDP      = 450.0
	DefaultOperationYears = 10.0
)

// ScenarioConfig describes one operating scenario to simulate.
type ScenarioConfig struct {
	Name          string  `json:"name" yaml:"name"`
	Baseline      string  `json:"baseline,omitempty" yaml:"baseline,omitempty"`
	LoadPercent   float64 `json:"load_percent" yaml:"loadPercent"`
	AmbientTemp   float64 `json:"ambient_temp" yaml:"ambientTemp"`
	CoolingFactor float64 `json:"cooling_factor" yaml:"coolingFactor"`
	DefectFactor  float64 `json:"defect_factor" yaml:"defectFactor"`
	DurationDays  int     `json:"duration_days" yaml:"durationDays"`
}

// NewScenario returns a scenario populated with defaults.
func NewScenario(name string) ScenarioConfig {
	return ScenarioConfig{
		Name:          name,
		Baseline:      "current",
		LoadPercent:   DefaultLoadPercent,
		AmbientTemp:   DefaultAmbientTemp,
		CoolingFactor: DefaultCoolingFactor,
		DefectFactor:  DefaultDefectFactor,
		DurationDays:  DefaultDurationDays,
	}
}

// Validate enforces the numeric contract of the engine (not the API bounds).
func (s ScenarioConfig) Validate() error {
	if s.CoolingFactor <= 0 {
		return fmt.Errorf("cooling_factor must be > 0, got %.3f", s.CoolingFactor)
	}
	if s.DefectFactor < 0 || s.DefectFactor > 1 {
		return fmt.Errorf("defect_factor must be between 0 and 1, got %.3f", s.DefectFactor)
	}
	if s.DurationDays < 0 {
		return fmt.Errorf("duration_days must be >= 0, got %d", s.DurationDays)
	}
	return nil
}

// InitialState is the transformer condition a simulation starts from.
// A nil DP asks the aging model to estimate it from operating years.
type InitialState struct {
	DGA            DGAReading `json:"dga"`
	DP             *float64   `json:"dp,omitempty"`
	OperationYears float64    `json:"operation_years"`
}

// NewInitialState returns an initial state with the default DP and age.
func NewInitialState(reading DGAReading) InitialState {
	dp := DefaultInitialDP
	return InitialState{DGA: reading, DP: &dp, OperationYears: DefaultOperationYears}
}

// GasProjection is the projected DGA trajectory after Days days.
type GasProjection struct {
	Days                    int             `json:"days"`
	ProductionRates         map[Gas]float64 `json:"production_rates"`
	ProjectedConcentrations map[Gas]float64 `json:"projected_concentrations"`
}

// TimelinePoint is one day of a simulation.
type TimelinePoint struct {
	Day         int     `json:"day"`
	HotspotTemp float64 `json:"hotspot_temp"`
	C2H2        float64 `json:"c2h2"`
	DP          float64 `json:"dp"`
}

// Failure criteria reported as the limiting factor of a TTE.
const (
	CriterionGas        = "gas_alarm"
	CriterionInsulation = "insulation_dp"
)

// SimulationResult is the outcome of running one scenario.
type SimulationResult struct {
	Scenario          ScenarioConfig  `json:"scenario"`
	Thermal           ThermalState    `json:"thermal"`
	DGAProjection     GasProjection   `json:"dga_projection"`
	Aging             AgingState      `json:"aging"`
	TTEDays           Horizon         `json:"tte_days"`
	GasAlarmDays      Horizon         `json:"gas_alarm_days"`
	DPExhaustionDays  Horizon         `json:"dp_exhaustion_days"`
	LimitingCriterion string          `json:"limiting_criterion"`
	Timeline          []TimelinePoint `json:"timeline"`
}

// Improvements quantifies scenario B relative to scenario A.
type Improvements struct {
	TemperatureReduction float64 `json:"temperature_reduction"`
	GasRateReductionPct  float64 `json:"gas_rate_reduction_pct"`
	LifeExtensionDays    Horizon `json:"life_extension_days"`
}

// ComparisonResult is an A/B scenario comparison.
type ComparisonResult struct {
	ScenarioA    SimulationResult `json:"scenario_a"`
	ScenarioB    SimulationResult `json:"scenario_b"`
	Improvements Improvements     `json:"improvements"`
}
