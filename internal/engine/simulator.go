package engine

import (
	"fmt"

	"github.com/miradorstack/mirador-twin/internal/models"
)

// SimulatorConfig holds the failure criteria of the TTE estimate.
type SimulatorConfig struct {
	C2H2AlarmPPM float64 `yaml:"c2h2AlarmPPM"`
}

// DefaultSimulatorConfig returns the standard failure criteria.
func DefaultSimulatorConfig() SimulatorConfig {
	return SimulatorConfig{C2H2AlarmPPM: 300}
}

// Validate checks for invalid configuration values.
func (c SimulatorConfig) Validate() error {
	if c.C2H2AlarmPPM <= 0 {
		return fmt.Errorf("simulator: c2h2AlarmPPM must be > 0, got %.1f", c.C2H2AlarmPPM)
	}
	return nil
}

// Simulator couples the thermal, aging and gas-evolution models into scenario projections.
type Simulator struct {
	cfg     SimulatorConfig
	thermal *ThermalModel
	aging   *AgingModel
	gas     *GasEvolution
}

// NewSimulator constructs a Simulator; nil models fall back to defaults.
func NewSimulator(cfg SimulatorConfig, thermal *ThermalModel, aging *AgingModel) *Simulator {
	if thermal == nil {
		thermal = NewThermalModel(DefaultThermalConfig())
	}
	if aging == nil {
		aging = NewAgingModel(DefaultAgingConfig())
	}
	return &Simulator{cfg: cfg, thermal: thermal, aging: aging, gas: NewGasEvolution()}
}

// Run simulates one scenario from the initial state.
func (s *Simulator) Run(scenario models.ScenarioConfig, initial models.InitialState) models.SimulationResult {
	days := max(scenario.DurationDays, 0)

	thermal := s.thermal.Predict(scenario.LoadPercent, scenario.AmbientTemp, scenario.CoolingFactor)
	aging := s.aging.Analyze(initial.DP, thermal.HotspotTemp, initial.OperationYears)
	projection := s.gas.Project(initial.DGA, thermal.HotspotTemp, scenario.DefectFactor, days)

	gasDays := s.gasAlarmDays(projection)
	dpDays := aging.RemainingLifeDays()
	tte, criterion := gasDays, models.CriterionGas
	if dpDays < gasDays || (gasDays.IsInf() && dpDays.IsInf()) {
		tte, criterion = dpDays, models.CriterionInsulation
	}
	if tte < 0 {
		tte = 0
	}

	return models.SimulationResult{
		Scenario:          scenario,
		Thermal:           thermal,
		DGAProjection:     projection,
		Aging:             aging,
		TTEDays:           tte,
		GasAlarmDays:      gasDays,
		DPExhaustionDays:  dpDays,
		LimitingCriterion: criterion,
		Timeline:          s.timeline(days, thermal.HotspotTemp, initial.DGA.C2H2, projection.ProductionRates[models.GasC2H2], aging.CurrentDP),
	}
}

// gasAlarmDays extrapolates the projected C2H2 linearly to the alarm ceiling.
func (s *Simulator) gasAlarmDays(projection models.GasProjection) models.Horizon {
	rate := projection.ProductionRates[models.GasC2H2]
	if !(rate > 0) {
		return models.Infinite
	}
	return models.Horizon((s.cfg.C2H2AlarmPPM - projection.ProjectedConcentrations[models.GasC2H2]) / rate)
}

// timeline emits day 0..days inclusive. Day 0 is the starting state with no
// elapsed aging, so its DP equals startDP and day 1 already carries one day of
// aging. One constant-temperature DP evolution of length days yields the same
// values as re-running it per day.
func (s *Simulator) timeline(days int, hotspot, initialC2H2, c2h2Rate, startDP float64) []models.TimelinePoint {
	profile := make([]float64, days)
	for i := range profile {
		profile[i] = hotspot
	}
	history := s.aging.DPEvolution(startDP, profile)

	points := make([]models.TimelinePoint, 0, days+1)
	for day := 0; day <= days; day++ {
		dp := startDP
		if day > 0 {
			dp = history[day-1].DP
		}
		points = append(points, models.TimelinePoint{
			Day:         day,
			HotspotTemp: hotspot,
			C2H2:        initialC2H2 + c2h2Rate*float64(day),
			DP:          dp,
		})
	}
	return points
}

// Compare runs both scenarios against the same initial state and reports B's improvement over A.
func (s *Simulator) Compare(a, b models.ScenarioConfig, initial models.InitialState) models.ComparisonResult {
	resultA := s.Run(a, initial)
	resultB := s.Run(b, initial)

	improvements := models.Improvements{
		TemperatureReduction: resultA.Thermal.HotspotTemp - resultB.Thermal.HotspotTemp,
	}
	rateA := resultA.DGAProjection.ProductionRates[models.GasC2H2]
	rateB := resultB.DGAProjection.ProductionRates[models.GasC2H2]
	if rateA > 0 {
		improvements.GasRateReductionPct = (1 - rateB/rateA) * 100
	}
	if resultB.TTEDays != resultA.TTEDays {
		improvements.LifeExtensionDays = resultB.TTEDays - resultA.TTEDays
	}

	return models.ComparisonResult{
		ScenarioA:    resultA,
		ScenarioB:    resultB,
		Improvements: improvements,
	}
}
