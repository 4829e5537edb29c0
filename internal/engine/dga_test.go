package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miradorstack/mirador-twin/internal/models"
)

func newTestDiagnoser() *Diagnoser {
	return NewDiagnoser(DefaultDiagnoserConfig(), nil)
}

func TestDiagnoseHighEnergyDischarge(t *testing.T) {
	reading := models.DGAReading{H2: 145, CH4: 32, C2H6: 8, C2H4: 45, C2H2: 78, CO: 420, CO2: 3200}

	result := newTestDiagnoser().Diagnose(reading)

	assert.Equal(t, models.FaultD2, result.Verdicts[models.MethodIEC])
	assert.Equal(t, models.FaultD2, result.Verdicts[models.MethodDuval])
	assert.Equal(t, models.FaultD2, result.FaultType)
	assert.Equal(t, models.FaultD2.Label(), result.Methods[models.MethodIEC])
	assert.Equal(t, models.SeveritySevere, result.Severity)
	assert.Equal(t, "severe", result.SeverityLabel)
	assert.InDelta(t, 1.0, result.Confidence, 1e-9)
	assert.Equal(t, reading, result.Reading)

	require.NotEmpty(t, result.Recommendations)
	assert.Equal(t, severityHeadlines[models.SeveritySevere], result.Recommendations[0])
	assert.Equal(t, dischargeGuidance[0], result.Recommendations[1])
	assert.Contains(t, result.Recommendations, "  C2H2 at 78.0 ppm exceeds the alarm limit of 50 ppm")
}

func TestDiagnoseTieBreakPrefersIEC(t *testing.T) {
	reading := models.DGAReading{H2: 50, CH4: 30, C2H6: 15, C2H4: 20, C2H2: 1, CO: 300, CO2: 2000}

	result := newTestDiagnoser().Diagnose(reading)

	require.Equal(t, models.FaultPD, result.Verdicts[models.MethodIEC])
	require.Equal(t, models.FaultT1, result.Verdicts[models.MethodDuval])
	require.Equal(t, models.FaultT2, result.Verdicts[models.MethodRogers])
	assert.Equal(t, models.FaultPD, result.FaultType)
	assert.InDelta(t, 1.0/3.0, result.Confidence, 1e-9)
	assert.Equal(t, models.SeverityMinor, result.Severity)
}

func TestDiagnoseHighTemperatureOverheating(t *testing.T) {
	reading := models.DGAReading{H2: 80, CH4: 150, C2H6: 20, C2H4: 180, C2H2: 5, CO: 600, CO2: 5000}

	result := newTestDiagnoser().Diagnose(reading)

	assert.Equal(t, models.FaultMix, result.Verdicts[models.MethodIEC])
	assert.Equal(t, models.FaultT3, result.FaultType)
	assert.InDelta(t, 2.0/3.0, result.Confidence, 1e-9)
	assert.Equal(t, models.SeverityAttention, result.Severity)
	require.GreaterOrEqual(t, len(result.Recommendations), 2)
	assert.Equal(t, severityHeadlines[models.SeverityAttention], result.Recommendations[0])
	assert.Equal(t, thermalGuidance[0], result.Recommendations[1])
}

func TestDiagnoseZeroReading(t *testing.T) {
	result := newTestDiagnoser().Diagnose(models.DGAReading{})

	assert.Equal(t, models.FaultNormal, result.FaultType)
	assert.Equal(t, models.SeverityNormal, result.Severity)
	assert.InDelta(t, 1.0, result.Confidence, 1e-9)
	assert.Equal(t, faultGuidance[models.FaultNormal], result.Recommendations)
}

func TestCalculateRatiosFinite(t *testing.T) {
	readings := []models.DGAReading{
		{},
		{C2H2: 1e6},
		{CH4: 1e9, CO2: 1e9},
		{
			C2H2: models.MaxConcentrationPPM, CH4: models.MaxConcentrationPPM,
			C2H4: models.MaxConcentrationPPM, CO2: models.MaxConcentrationPPM,
		},
		{H2: 0, CH4: 0.5, C2H6: 0, C2H4: 1e-9, C2H2: 3, CO: 0, CO2: 12},
	}
	for _, reading := range readings {
		ratios := CalculateRatios(reading)
		for _, v := range []float64{ratios.C2H2C2H4, ratios.CH4H2, ratios.C2H4C2H6, ratios.CO2CO} {
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "ratio not finite for %+v", reading)
		}
	}
}

func TestIECCodesBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		ratios models.Ratios
		want   [3]int
	}{
		{name: "all low", ratios: models.Ratios{C2H2C2H4: 0.09, CH4H2: 0.99, C2H4C2H6: 0.99}, want: [3]int{0, 0, 0}},
		{name: "first breakpoints inclusive", ratios: models.Ratios{C2H2C2H4: 0.1, CH4H2: 1, C2H4C2H6: 1}, want: [3]int{1, 1, 1}},
		{name: "second breakpoints inclusive", ratios: models.Ratios{C2H2C2H4: 3, CH4H2: 3, C2H4C2H6: 3}, want: [3]int{2, 2, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IECCodes(tt.ratios))
		})
	}
}

func TestIECDiagnosisUnmappedIsMix(t *testing.T) {
	// codes (2,2,2) are not in the table
	assert.Equal(t, models.FaultMix, IECDiagnosis(models.Ratios{C2H2C2H4: 5, CH4H2: 5, C2H4C2H6: 5}))
	assert.Equal(t, models.FaultT3, IECDiagnosis(models.Ratios{C2H2C2H4: 0.01, CH4H2: 4, C2H4C2H6: 4}))
}

func TestDuvalDiagnosisZones(t *testing.T) {
	tests := []struct {
		name    string
		reading models.DGAReading
		want    models.FaultType
	}{
		{name: "below floor", reading: models.DGAReading{CH4: 0.3, C2H4: 0.3, C2H2: 0.3}, want: models.FaultNormal},
		{name: "acetylene dominant", reading: models.DGAReading{CH4: 10, C2H4: 10, C2H2: 80}, want: models.FaultD2},
		{name: "acetylene exactly half", reading: models.DGAReading{CH4: 20, C2H4: 30, C2H2: 50}, want: models.FaultD1},
		{name: "ethylene dominant", reading: models.DGAReading{CH4: 30, C2H4: 60, C2H2: 10}, want: models.FaultT3},
		{name: "methane dominant", reading: models.DGAReading{CH4: 80, C2H4: 15, C2H2: 5}, want: models.FaultPD},
		{name: "methane majority", reading: models.DGAReading{CH4: 60, C2H4: 35, C2H2: 5}, want: models.FaultT1},
		{name: "balanced", reading: models.DGAReading{CH4: 45, C2H4: 45, C2H2: 10}, want: models.FaultT2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DuvalDiagnosis(tt.reading))
		})
	}
}

func TestRogersDiagnosisRules(t *testing.T) {
	tests := []struct {
		name   string
		ratios models.Ratios
		want   models.FaultType
	}{
		{name: "normal", ratios: models.Ratios{C2H2C2H4: 0.05, CH4H2: 0.05, C2H4C2H6: 0.5}, want: models.FaultNormal},
		{name: "partial discharge", ratios: models.Ratios{C2H2C2H4: 0.05, CH4H2: 0.5, C2H4C2H6: 0.5}, want: models.FaultPD},
		{name: "high temperature", ratios: models.Ratios{C2H2C2H4: 0.05, CH4H2: 0.5, C2H4C2H6: 4}, want: models.FaultT3},
		{name: "arcing", ratios: models.Ratios{C2H2C2H4: 2, CH4H2: 0.5, C2H4C2H6: 4}, want: models.FaultD2},
		{name: "low temperature", ratios: models.Ratios{C2H2C2H4: 0.5, CH4H2: 2, C2H4C2H6: 0.5}, want: models.FaultT1},
		{name: "fallback", ratios: models.Ratios{C2H2C2H4: 0.5, CH4H2: 0.5, C2H4C2H6: 2}, want: models.FaultT2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RogersDiagnosis(tt.ratios))
		})
	}
}

func TestVoteConfidenceValues(t *testing.T) {
	faults := []models.FaultType{models.FaultNormal, models.FaultD2, models.FaultT1}
	allowed := []float64{1.0 / 3.0, 2.0 / 3.0, 1.0}
	for _, iec := range faults {
		for _, duval := range faults {
			for _, rogers := range faults {
				fault, confidence := Vote(map[models.Method]models.FaultType{
					models.MethodIEC:    iec,
					models.MethodDuval:  duval,
					models.MethodRogers: rogers,
				})
				assert.Contains(t, allowed, confidence)
				if iec != duval && duval != rogers && iec != rogers {
					assert.Equal(t, iec, fault)
				}
				if duval == rogers {
					assert.Equal(t, duval, fault)
				}
			}
		}
	}
}

func TestSeverityMonotonicPerGas(t *testing.T) {
	d := newTestDiagnoser()
	base := models.DGAReading{H2: 10, CH4: 5, C2H6: 5, C2H4: 5, CO: 50, CO2: 500}
	for _, gas := range models.AllGases {
		prev := models.SeverityNormal
		for v := 0.0; v <= 20000; v += 25 {
			s := d.Severity(base.WithValue(gas, v))
			require.GreaterOrEqual(t, s, prev, "severity decreased for %s at %.0f ppm", gas, v)
			prev = s
		}
		assert.Equal(t, models.SeveritySevere, prev, "expected %s to reach alarm", gas)
	}
}

func TestDiagnoserConfigValidate(t *testing.T) {
	require.NoError(t, DefaultDiagnoserConfig().Validate())

	cfg := DefaultDiagnoserConfig()
	cfg.Limits[models.GasH2] = GasLimit{Attention: 100, Alarm: 50}
	assert.Error(t, cfg.Validate())

	cfg = DefaultDiagnoserConfig()
	cfg.Limits["NH3"] = GasLimit{Attention: 1, Alarm: 2}
	assert.Error(t, cfg.Validate())
}
