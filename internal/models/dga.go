package models

import (
	"fmt"
	"math"
	"strings"
)

// Gas identifies one of the dissolved gases tracked by DGA.
type Gas string

const (
	GasH2   Gas = "H2"
	GasCH4  Gas = "CH4"
	GasC2H6 Gas = "C2H6"
	GasC2H4 Gas = "C2H4"
	GasC2H2 Gas = "C2H2"
	GasCO   Gas = "CO"
	GasCO2  Gas = "CO2"
)

// AllGases lists the tracked gases in canonical order.
var AllGases = []Gas{GasH2, GasCH4, GasC2H6, GasC2H4, GasC2H2, GasCO, GasCO2}

// ParseGas resolves a gas name case-insensitively.
func ParseGas(name string) (Gas, error) {
	for _, g := range AllGases {
		if strings.EqualFold(string(g), strings.TrimSpace(name)) {
			return g, nil
		}
	}
	return "", fmt.Errorf("unknown gas %q", name)
}

// DGAReading is a single dissolved-gas sample in ppm.
type DGAReading struct {
	H2        float64 `json:"H2" yaml:"H2"`
	CH4       float64 `json:"CH4" yaml:"CH4"`
	C2H6      float64 `json:"C2H6" yaml:"C2H6"`
	C2H4      float64 `json:"C2H4" yaml:"C2H4"`
	C2H2      float64 `json:"C2H2" yaml:"C2H2"`
	CO        float64 `json:"CO" yaml:"CO"`
	CO2       float64 `json:"CO2" yaml:"CO2"`
	DeviceID  string  `json:"device_id,omitempty" yaml:"device_id,omitempty"`
	Timestamp string  `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
}

// Value returns the concentration of gas g.
func (r DGAReading) Value(g Gas) float64 {
	switch g {
	case GasH2:
		return r.H2
	case GasCH4:
		return r.CH4
	case GasC2H6:
		return r.C2H6
	case GasC2H4:
		return r.C2H4
	case GasC2H2:
		return r.C2H2
	case GasCO:
		return r.CO
	case GasCO2:
		return r.CO2
	default:
		return 0
	}
}

// WithValue returns a copy of r with gas g set to v.
func (r DGAReading) WithValue(g Gas, v float64) DGAReading {
	switch g {
	case GasH2:
		r.H2 = v
	case GasCH4:
		r.CH4 = v
	case GasC2H6:
		r.C2H6 = v
	case GasC2H4:
		r.C2H4 = v
	case GasC2H2:
		r.C2H2 = v
	case GasCO:
		r.CO = v
	case GasCO2:
		r.CO2 = v
	}
	return r
}

// Concentrations returns the seven gas values keyed by gas.
func (r DGAReading) Concentrations() map[Gas]float64 {
	out := make(map[Gas]float64, len(AllGases))
	for _, g := range AllGases {
		out[g] = r.Value(g)
	}
	return out
}

// MaxConcentrationPPM is 100 % by volume; it bounds every ratio at about 1e12.
const MaxConcentrationPPM = 1e6

// Validate rejects negative, NaN, infinite and above-100 % concentrations.
func (r DGAReading) Validate() error {
	for _, g := range AllGases {
		v := r.Value(g)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be finite", g)
		}
		if v < 0 {
			return fmt.Errorf("%s must be >= 0, got %.3f", g, v)
		}
		if v > MaxConcentrationPPM {
			return fmt.Errorf("%s must be <= %.0f ppm, got %g", g, MaxConcentrationPPM, v)
		}
	}
	return nil
}

// FaultType is the closed set of DGA fault classes.
type FaultType int

const (
	FaultNormal FaultType = iota
	FaultPD
	FaultD1
	FaultD2
	FaultT1
	FaultT2
	FaultT3
	FaultThermal
	FaultDischarge
	FaultMix
)

var faultCodes = [...]string{"NORMAL", "PD", "D1", "D2", "T1", "T2", "T3", "THERMAL", "DISCHARGE", "MIX"}

var faultLabels = [...]string{
	"Normal",
	"Partial discharge",
	"Low-energy discharge",
	"High-energy discharge",
	"Thermal fault (<300°C)",
	"Thermal fault (300-700°C)",
	"Thermal fault (>700°C)",
	"Thermal fault",
	"Discharge fault",
	"Mixed fault",
}

func (f FaultType) valid() bool { return f >= FaultNormal && f <= FaultMix }

// String returns the fault code, e.g. "D2".
func (f FaultType) String() string {
	if !f.valid() {
		return fmt.Sprintf("FaultType(%d)", int(f))
	}
	return faultCodes[f]
}

// Label returns the human-readable description.
func (f FaultType) Label() string {
	if !f.valid() {
		return "Unknown"
	}
	return faultLabels[f]
}

// IsDischarge reports whether f belongs to the discharge family.
func (f FaultType) IsDischarge() bool {
	return f == FaultPD || f == FaultD1 || f == FaultD2 || f == FaultDischarge
}

// IsThermal reports whether f belongs to the thermal family.
func (f FaultType) IsThermal() bool {
	return f == FaultT1 || f == FaultT2 || f == FaultT3 || f == FaultThermal
}

// ParseFaultType resolves a fault code such as "T3".
func ParseFaultType(code string) (FaultType, error) {
	for i, c := range faultCodes {
		if strings.EqualFold(c, strings.TrimSpace(code)) {
			return FaultType(i), nil
		}
	}
	return FaultMix, fmt.Errorf("unknown fault type %q", code)
}

// MarshalText encodes the fault code.
func (f FaultType) MarshalText() ([]byte, error) {
	if !f.valid() {
		return nil, fmt.Errorf("invalid fault type %d", int(f))
	}
	return []byte(faultCodes[f]), nil
}

// UnmarshalText decodes a fault code.
func (f *FaultType) UnmarshalText(text []byte) error {
	parsed, err := ParseFaultType(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Severity grades how far gas levels exceed their limits.
type Severity int

const (
	SeverityNormal Severity = iota
	SeverityMinor
	SeverityAttention
	SeveritySevere
)

var severityLabels = [...]string{"normal", "minor", "attention", "severe"}

// Label returns the severity name.
func (s Severity) Label() string {
	if s < SeverityNormal || s > SeveritySevere {
		return "unknown"
	}
	return severityLabels[s]
}

// Method names a DGA interpretation method.
type Method string

const (
	MethodIEC    Method = "IEC_60599"
	MethodDuval  Method = "Duval"
	MethodRogers Method = "Rogers"
)

// Ratios holds the characteristic gas ratios.
type Ratios struct {
	C2H2C2H4 float64 `json:"C2H2/C2H4"`
	CH4H2    float64 `json:"CH4/H2"`
	C2H4C2H6 float64 `json:"C2H4/C2H6"`
	CO2CO    float64 `json:"CO2/CO"`
}

// DiagnosisResult is the output of a DGA diagnosis.
type DiagnosisResult struct {
	FaultType       FaultType            `json:"fault_type"`
	FaultLabel      string               `json:"fault_label"`
	Confidence      float64              `json:"confidence"`
	Severity        Severity             `json:"severity"`
	SeverityLabel   string               `json:"severity_label"`
	Methods         map[Method]string    `json:"methods"`
	Verdicts        map[Method]FaultType `json:"-"`
	Ratios          Ratios               `json:"ratios"`
	Recommendations []string             `json:"recommendations"`
	Reading         DGAReading           `json:"raw_data"`
}
