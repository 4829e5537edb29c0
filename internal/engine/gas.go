package engine

import (
	"math"

	"github.com/miradorstack/mirador-twin/internal/models"
)

// gasKinetics is the Arrhenius calibration of one gas' production rate.
type gasKinetics struct {
	activationEnergy float64 // J/mol
	frequencyFactor  float64 // ppm/day
}

// gasKineticsTable is fixed calibration, deliberately not user-configurable.
var gasKineticsTable = map[models.Gas]gasKinetics{
	models.GasH2:   {activationEnergy: 70000, frequencyFactor: 1e8},
	models.GasCH4:  {activationEnergy: 180000, frequencyFactor: 1e6},
	models.GasC2H6: {activationEnergy: 200000, frequencyFactor: 1e5},
	models.GasC2H4: {activationEnergy: 150000, frequencyFactor: 1e7},
	models.GasC2H2: {activationEnergy: 120000, frequencyFactor: 5e7},
	models.GasCO:   {activationEnergy: 110000, frequencyFactor: 1e6},
	models.GasCO2:  {activationEnergy: 95000, frequencyFactor: 5e6},
}

const (
	gasConstant = 8.314
	// defectGain scales production with defect severity: rate * (1 + gain*defect).
	defectGain = 5.0
)

// GasEvolution projects dissolved-gas concentrations from hot-spot temperature.
type GasEvolution struct{}

// NewGasEvolution constructs a GasEvolution.
func NewGasEvolution() *GasEvolution { return &GasEvolution{} }

// ProductionRate returns the generation rate of gas in ppm/day.
func (g *GasEvolution) ProductionRate(gas models.Gas, hotspotTemp, defectFactor float64) float64 {
	k, ok := gasKineticsTable[gas]
	if !ok {
		return 0
	}
	tk := hotspotTemp + kelvinOffset
	return k.frequencyFactor * math.Exp(-k.activationEnergy/(gasConstant*tk)) * (1 + defectGain*defectFactor)
}

// Project returns per-gas rates and the concentrations after days of linear growth.
func (g *GasEvolution) Project(initial models.DGAReading, hotspotTemp, defectFactor float64, days int) models.GasProjection {
	projection := models.GasProjection{
		Days:                    days,
		ProductionRates:         make(map[models.Gas]float64, len(models.AllGases)),
		ProjectedConcentrations: make(map[models.Gas]float64, len(models.AllGases)),
	}
	for _, gas := range models.AllGases {
		rate := g.ProductionRate(gas, hotspotTemp, defectFactor)
		projection.ProductionRates[gas] = rate
		projection.ProjectedConcentrations[gas] = initial.Value(gas) + rate*float64(days)
	}
	return projection
}
