package engine

import (
	"fmt"
	"math"

	"github.com/miradorstack/mirador-twin/internal/models"
)

const (
	kelvinOffset  = 273.15
	secondsPerDay = 86400.0
	daysPerYear   = 365.0
	// ieeeAgingConstant is the B constant of IEEE C57.91 relative aging.
	ieeeAgingConstant = 15000.0
)

// AgingConfig holds Arrhenius and DP parameters for cellulose insulation.
type AgingConfig struct {
	ActivationEnergy float64 `yaml:"activationEnergy"`
	FrequencyFactor  float64 `yaml:"frequencyFactor"`
	GasConstant      float64 `yaml:"gasConstant"`
	ReferenceTemp    float64 `yaml:"referenceTemp"`
	InitialDP        float64 `yaml:"initialDP"`
	FailureDP        float64 `yaml:"failureDP"`
}

// DefaultAgingConfig returns the standard paper aging parameters.
func DefaultAgingConfig() AgingConfig {
	return AgingConfig{
		ActivationEnergy: 111000,
		FrequencyFactor:  1.0e10,
		GasConstant:      8.314,
		ReferenceTemp:    110,
		InitialDP:        1000,
		FailureDP:        200,
	}
}

// Validate checks for invalid configuration values.
func (c AgingConfig) Validate() error {
	if c.ActivationEnergy <= 0 {
		return fmt.Errorf("aging: activationEnergy must be > 0, got %.1f", c.ActivationEnergy)
	}
	if c.FrequencyFactor < 0 {
		return fmt.Errorf("aging: frequencyFactor must be >= 0, got %g", c.FrequencyFactor)
	}
	if c.GasConstant <= 0 {
		return fmt.Errorf("aging: gasConstant must be > 0, got %.3f", c.GasConstant)
	}
	if c.ReferenceTemp+kelvinOffset <= 0 {
		return fmt.Errorf("aging: referenceTemp below absolute zero")
	}
	if c.FailureDP < 0 || c.InitialDP <= c.FailureDP {
		return fmt.Errorf("aging: initialDP (%.0f) must exceed failureDP (%.0f) >= 0", c.InitialDP, c.FailureDP)
	}
	return nil
}

// AgingModel predicts insulation paper degradation.
type AgingModel struct {
	cfg AgingConfig
}

// NewAgingModel constructs an AgingModel.
func NewAgingModel(cfg AgingConfig) *AgingModel {
	return &AgingModel{cfg: cfg}
}

// Config returns the model parameters.
func (m *AgingModel) Config() AgingConfig { return m.cfg }

// AgingRate is the Arrhenius DP loss per day at tempCelsius.
func (m *AgingModel) AgingRate(tempCelsius float64) float64 {
	tk := tempCelsius + kelvinOffset
	return m.cfg.FrequencyFactor * math.Exp(-m.cfg.ActivationEnergy/(m.cfg.GasConstant*tk)) * secondsPerDay
}

// FAA is the IEEE relative aging acceleration factor versus the reference temperature.
func (m *AgingModel) FAA(tempCelsius float64) float64 {
	tk := tempCelsius + kelvinOffset
	refK := m.cfg.ReferenceTemp + kelvinOffset
	return math.Exp(ieeeAgingConstant/refK - ieeeAgingConstant/tk)
}

// RemainingLife returns years until DP reaches the failure level at a constant temperature.
func (m *AgingModel) RemainingLife(currentDP, tempCelsius float64) models.Horizon {
	if currentDP <= m.cfg.FailureDP {
		return 0
	}
	rate := m.AgingRate(tempCelsius)
	if !(rate > 0) {
		return models.Infinite
	}
	return models.Horizon((currentDP - m.cfg.FailureDP) / rate / daysPerYear)
}

// EstimateDP back-calculates DP after operationYears at a constant temperature.
func (m *AgingModel) EstimateDP(tempCelsius, operationYears float64) float64 {
	return m.cfg.InitialDP - m.AgingRate(tempCelsius)*operationYears*daysPerYear
}

// Analyze combines rate, FAA and remaining life. A nil currentDP is estimated
// from operationYears at tempCelsius.
func (m *AgingModel) Analyze(currentDP *float64, tempCelsius, operationYears float64) models.AgingState {
	dp := 0.0
	if currentDP != nil {
		dp = *currentDP
	} else {
		dp = m.EstimateDP(tempCelsius, operationYears)
	}

	consumable := m.cfg.InitialDP - m.cfg.FailureDP
	return models.AgingState{
		CurrentDP:          dp,
		AgingRate:          m.AgingRate(tempCelsius),
		LifeLossFactor:     m.FAA(tempCelsius),
		RemainingLifeYears: m.RemainingLife(dp, tempCelsius),
		LifeConsumedPct:    (m.cfg.InitialDP - dp) / consumable * 100,
	}
}

// DPEvolution subtracts each day's aging rate from the running DP, clamped at zero.
func (m *AgingModel) DPEvolution(initialDP float64, tempProfile []float64) []models.DPPoint {
	history := make([]models.DPPoint, 0, len(tempProfile))
	dp := initialDP
	for day, temp := range tempProfile {
		rate := m.AgingRate(temp)
		if !(rate > 0) {
			rate = 0
		}
		dp = math.Max(dp-rate, 0)
		history = append(history, models.DPPoint{
			Day:         day,
			DP:          dp,
			Temperature: temp,
			Rate:        rate,
		})
	}
	return history
}
