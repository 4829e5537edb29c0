package engine

import (
	"fmt"
	"math"

	"github.com/miradorstack/mirador-twin/internal/models"
)

const (
	maxLoadSearchCeiling   = 150.0
	maxLoadSearchTolerance = 0.1
	bottomOilRiseFraction  = 0.5
	defaultCoolingFactor   = 1.0
)

// ThermalConfig holds the IEC 60076 style two-exponent coefficients.
type ThermalConfig struct {
	K1                float64 `yaml:"k1"`
	K2                float64 `yaml:"k2"`
	N1                float64 `yaml:"n1"`
	N2                float64 `yaml:"n2"`
	OilLimit          float64 `yaml:"oilLimit"`
	HotspotLimit      float64 `yaml:"hotspotLimit"`
	TimeConstantHours float64 `yaml:"timeConstantHours"`
}

// DefaultThermalConfig returns the standard coefficients.
func DefaultThermalConfig() ThermalConfig {
	return ThermalConfig{
		K1:                55,
		K2:                23,
		N1:                2.0,
		N2:                1.6,
		OilLimit:          105,
		HotspotLimit:      118,
		TimeConstantHours: 3.0,
	}
}

// Validate checks for invalid configuration values.
func (c ThermalConfig) Validate() error {
	if c.K1 <= 0 || c.K2 <= 0 {
		return fmt.Errorf("thermal: k1 and k2 must be > 0, got %.2f and %.2f", c.K1, c.K2)
	}
	if c.N1 <= 0 || c.N2 <= 0 {
		return fmt.Errorf("thermal: n1 and n2 must be > 0, got %.2f and %.2f", c.N1, c.N2)
	}
	if c.OilLimit <= 0 || c.HotspotLimit <= 0 {
		return fmt.Errorf("thermal: temperature limits must be > 0")
	}
	if c.TimeConstantHours <= 0 {
		return fmt.Errorf("thermal: timeConstantHours must be > 0, got %.2f", c.TimeConstantHours)
	}
	return nil
}

// ThermalModel predicts oil and winding hot-spot temperatures.
type ThermalModel struct {
	cfg ThermalConfig
}

// NewThermalModel constructs a ThermalModel.
func NewThermalModel(cfg ThermalConfig) *ThermalModel {
	return &ThermalModel{cfg: cfg}
}

// Config returns the model coefficients.
func (m *ThermalModel) Config() ThermalConfig { return m.cfg }

// Predict returns the steady-state temperatures. Negative loads are treated as no load.
func (m *ThermalModel) Predict(loadPercent, ambientTemp, coolingFactor float64) models.ThermalState {
	k := math.Max(loadPercent/100.0, 0)

	deltaOil := m.cfg.K1 * math.Pow(k, m.cfg.N1) / coolingFactor
	oilTop := ambientTemp + deltaOil
	oilBottom := ambientTemp + deltaOil*bottomOilRiseFraction

	deltaHotspot := m.cfg.K2 * math.Pow(k, m.cfg.N2)
	hotspot := oilTop + deltaHotspot

	return models.ThermalState{
		OilTopTemp:    oilTop,
		OilBottomTemp: oilBottom,
		HotspotTemp:   hotspot,
		AmbientTemp:   ambientTemp,
		LoadPercent:   loadPercent,
		Overheating:   hotspot > m.cfg.HotspotLimit || oilTop > m.cfg.OilLimit,
	}
}

// MaxLoad bisects [0,150]% for the largest load keeping the hot-spot within its limit.
func (m *ThermalModel) MaxLoad(ambientTemp, coolingFactor float64) float64 {
	low, high := 0.0, maxLoadSearchCeiling
	for high-low > maxLoadSearchTolerance {
		mid := (low + high) / 2
		if m.Predict(mid, ambientTemp, coolingFactor).HotspotTemp > m.cfg.HotspotLimit {
			high = mid
		} else {
			low = mid
		}
	}
	return low
}

// Transient samples T(t) = Tss + (T0 - Tss) * exp(-t/tau) hourly from 0 to durationHours.
// A non-positive tau falls back to the configured time constant.
func (m *ThermalModel) Transient(initialTemp, loadPercent, ambientTemp float64, durationHours int, tau float64) []models.TransientPoint {
	if tau <= 0 {
		tau = m.cfg.TimeConstantHours
	}
	steady := m.Predict(loadPercent, ambientTemp, defaultCoolingFactor).HotspotTemp

	points := make([]models.TransientPoint, 0, max(durationHours+1, 0))
	for hour := 0; hour <= durationHours; hour++ {
		points = append(points, models.TransientPoint{
			Hour:        hour,
			Temperature: steady + (initialTemp-steady)*math.Exp(-float64(hour)/tau),
		})
	}
	return points
}
