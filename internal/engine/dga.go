package engine

import (
	"fmt"

	"github.com/miradorstack/mirador-twin/internal/models"
)

const (
	// ratioEpsilon guards ratio denominators against zero concentrations.
	ratioEpsilon = 1e-6
	// duvalFloorPPM is the minimum CH4+C2H4+C2H2 total the Duval triangle needs.
	duvalFloorPPM = 1.0
	// minorFraction of the attention limit marks a gas as slightly elevated.
	minorFraction = 0.5
)

// GasLimit is the attention/alarm threshold pair for one gas in ppm.
type GasLimit struct {
	Attention float64 `yaml:"attention"`
	Alarm     float64 `yaml:"alarm"`
}

// DiagnoserConfig holds the gas limit table used for severity grading.
type DiagnoserConfig struct {
	Limits map[models.Gas]GasLimit `yaml:"limits"`
}

// DefaultDiagnoserConfig returns the IEC 60599 typical limits.
func DefaultDiagnoserConfig() DiagnoserConfig {
	return DiagnoserConfig{Limits: map[models.Gas]GasLimit{
		models.GasH2:   {Attention: 150, Alarm: 1000},
		models.GasCH4:  {Attention: 120, Alarm: 400},
		models.GasC2H2: {Attention: 5, Alarm: 50},
		models.GasC2H4: {Attention: 60, Alarm: 200},
		models.GasC2H6: {Attention: 65, Alarm: 150},
		models.GasCO:   {Attention: 540, Alarm: 1400},
		models.GasCO2:  {Attention: 7000, Alarm: 15000},
	}}
}

// Validate checks every configured limit is positive and ordered.
func (c DiagnoserConfig) Validate() error {
	for gas, limit := range c.Limits {
		if _, err := models.ParseGas(string(gas)); err != nil {
			return fmt.Errorf("dga limits: %w", err)
		}
		if limit.Attention <= 0 {
			return fmt.Errorf("dga limits: %s attention must be > 0, got %.2f", gas, limit.Attention)
		}
		if limit.Alarm < limit.Attention {
			return fmt.Errorf("dga limits: %s alarm (%.2f) must be >= attention (%.2f)", gas, limit.Alarm, limit.Attention)
		}
	}
	return nil
}

// Diagnoser classifies incipient faults from a DGA reading using three
// independent rule methods and a majority vote.
type Diagnoser struct {
	limits map[models.Gas]GasLimit
	rules  *RuleEngine
}

// NewDiagnoser constructs a Diagnoser; rules may be nil.
func NewDiagnoser(cfg DiagnoserConfig, rules *RuleEngine) *Diagnoser {
	limits := make(map[models.Gas]GasLimit, len(cfg.Limits))
	for gas, limit := range cfg.Limits {
		limits[gas] = limit
	}
	return &Diagnoser{limits: limits, rules: rules}
}

// Limit returns the configured limit for gas.
func (d *Diagnoser) Limit(gas models.Gas) (GasLimit, bool) {
	limit, ok := d.limits[gas]
	return limit, ok
}

// Diagnose runs the full diagnosis. It never fails for non-negative finite input.
func (d *Diagnoser) Diagnose(reading models.DGAReading) models.DiagnosisResult {
	ratios := CalculateRatios(reading)

	verdicts := map[models.Method]models.FaultType{
		models.MethodIEC:    IECDiagnosis(ratios),
		models.MethodDuval:  DuvalDiagnosis(reading),
		models.MethodRogers: RogersDiagnosis(ratios),
	}
	fault, confidence := Vote(verdicts)
	severity := d.Severity(reading)

	methods := make(map[models.Method]string, len(verdicts))
	for method, verdict := range verdicts {
		methods[method] = verdict.Label()
	}

	result := models.DiagnosisResult{
		FaultType:     fault,
		FaultLabel:    fault.Label(),
		Confidence:    confidence,
		Severity:      severity,
		SeverityLabel: severity.Label(),
		Methods:       methods,
		Verdicts:      verdicts,
		Ratios:        ratios,
		Reading:       reading,
	}
	result.Recommendations = d.recommend(result)
	return result
}

// CalculateRatios computes the four characteristic ratios.
func CalculateRatios(r models.DGAReading) models.Ratios {
	return models.Ratios{
		C2H2C2H4: r.C2H2 / (r.C2H4 + ratioEpsilon),
		CH4H2:    r.CH4 / (r.H2 + ratioEpsilon),
		C2H4C2H6: r.C2H4 / (r.C2H6 + ratioEpsilon),
		CO2CO:    r.CO2 / (r.CO + ratioEpsilon),
	}
}

// ratioID indexes the three ratios used by the ratio methods.
type ratioID int

const (
	ratioC2H2C2H4 ratioID = iota
	ratioCH4H2
	ratioC2H4C2H6
)

func ratioTriple(r models.Ratios) [3]float64 {
	return [3]float64{r.C2H2C2H4, r.CH4H2, r.C2H4C2H6}
}

// iecBreakpoints discretise each ratio into codes 0, 1 and 2.
var iecBreakpoints = [3][2]float64{
	ratioC2H2C2H4: {0.1, 3},
	ratioCH4H2:    {1, 3},
	ratioC2H4C2H6: {1, 3},
}

// iecTable maps known code combinations; anything else is MIX.
var iecTable = map[[3]int]models.FaultType{
	{0, 0, 0}: models.FaultNormal,
	{0, 0, 1}: models.FaultPD,
	{0, 0, 2}: models.FaultPD,
	{1, 0, 1}: models.FaultD1,
	{1, 0, 2}: models.FaultD2,
	{2, 0, 2}: models.FaultD2,
	{0, 1, 0}: models.FaultT1,
	{0, 2, 0}: models.FaultT1,
	{0, 2, 1}: models.FaultT2,
	{0, 2, 2}: models.FaultT3,
}

// IECCodes returns the IEC 60599 code triple for ratios.
func IECCodes(r models.Ratios) [3]int {
	values := ratioTriple(r)
	var codes [3]int
	for i, v := range values {
		for _, bp := range iecBreakpoints[i] {
			if v >= bp {
				codes[i]++
			}
		}
	}
	return codes
}

// IECDiagnosis applies the IEC 60599 three-ratio table.
func IECDiagnosis(r models.Ratios) models.FaultType {
	if fault, ok := iecTable[IECCodes(r)]; ok {
		return fault
	}
	return models.FaultMix
}

// noBound disables a Duval share constraint; shares are never negative.
const noBound = -1.0

// duvalZone matches when every share strictly exceeds its bound.
type duvalZone struct {
	fault models.FaultType
	ch4   float64
	c2h4  float64
	c2h2  float64
}

// duvalZones are evaluated in order; the first match wins.
var duvalZones = []duvalZone{
	{fault: models.FaultD2, ch4: noBound, c2h4: noBound, c2h2: 50},
	{fault: models.FaultD1, ch4: noBound, c2h4: 20, c2h2: 15},
	{fault: models.FaultT3, ch4: noBound, c2h4: 50, c2h2: noBound},
	{fault: models.FaultPD, ch4: 70, c2h4: noBound, c2h2: noBound},
	{fault: models.FaultT1, ch4: 50, c2h4: noBound, c2h2: noBound},
}

const duvalDefault = models.FaultT2

// DuvalShares returns the CH4, C2H4 and C2H2 percentages of their sum.
func DuvalShares(r models.DGAReading) (ch4, c2h4, c2h2 float64, ok bool) {
	total := r.CH4 + r.C2H4 + r.C2H2
	if total < duvalFloorPPM {
		return 0, 0, 0, false
	}
	return r.CH4 / total * 100, r.C2H4 / total * 100, r.C2H2 / total * 100, true
}

// DuvalDiagnosis applies the simplified Duval triangle.
func DuvalDiagnosis(r models.DGAReading) models.FaultType {
	ch4, c2h4, c2h2, ok := DuvalShares(r)
	if !ok {
		return models.FaultNormal
	}
	for _, zone := range duvalZones {
		if ch4 > zone.ch4 && c2h4 > zone.c2h4 && c2h2 > zone.c2h2 {
			return zone.fault
		}
	}
	return duvalDefault
}

// ratioBound is a single strict comparison against one ratio.
type ratioBound struct {
	ratio ratioID
	below bool
	limit float64
}

func (b ratioBound) holds(values [3]float64) bool {
	if b.below {
		return values[b.ratio] < b.limit
	}
	return values[b.ratio] > b.limit
}

type rogersRule struct {
	fault models.FaultType
	when  []ratioBound
}

func below(id ratioID, limit float64) ratioBound {
	return ratioBound{ratio: id, below: true, limit: limit}
}

func above(id ratioID, limit float64) ratioBound {
	return ratioBound{ratio: id, limit: limit}
}

// rogersRules are evaluated in order; no match means T2.
var rogersRules = []rogersRule{
	{fault: models.FaultNormal, when: []ratioBound{below(ratioC2H2C2H4, 0.1), below(ratioCH4H2, 0.1), below(ratioC2H4C2H6, 1)}},
	{fault: models.FaultPD, when: []ratioBound{below(ratioC2H2C2H4, 0.1), below(ratioC2H4C2H6, 1)}},
	{fault: models.FaultT3, when: []ratioBound{below(ratioC2H2C2H4, 0.1), above(ratioC2H4C2H6, 3)}},
	{fault: models.FaultD2, when: []ratioBound{above(ratioC2H2C2H4, 1), above(ratioC2H4C2H6, 3)}},
	{fault: models.FaultT1, when: []ratioBound{above(ratioCH4H2, 1), below(ratioC2H4C2H6, 1)}},
}

const rogersDefault = models.FaultT2

// RogersDiagnosis applies the Rogers ratio decision list.
func RogersDiagnosis(r models.Ratios) models.FaultType {
	values := ratioTriple(r)
	for _, rule := range rogersRules {
		matched := true
		for _, bound := range rule.when {
			if !bound.holds(values) {
				matched = false
				break
			}
		}
		if matched {
			return rule.fault
		}
	}
	return rogersDefault
}

// MethodPriority breaks ensemble ties: without a strict majority the
// verdict of the earliest method wins.
var MethodPriority = []models.Method{models.MethodIEC, models.MethodDuval, models.MethodRogers}

// Vote returns the majority verdict and the fraction of methods agreeing with it.
func Vote(verdicts map[models.Method]models.FaultType) (models.FaultType, float64) {
	counts := make(map[models.FaultType]int, len(MethodPriority))
	for _, method := range MethodPriority {
		counts[verdicts[method]]++
	}
	winner := verdicts[MethodPriority[0]]
	best := counts[winner]
	for _, method := range MethodPriority[1:] {
		if fault := verdicts[method]; counts[fault] > best {
			winner, best = fault, counts[fault]
		}
	}
	return winner, float64(best) / float64(len(MethodPriority))
}

// GasSeverity grades a single concentration against its limit.
func GasSeverity(value float64, limit GasLimit) models.Severity {
	switch {
	case value > limit.Alarm:
		return models.SeveritySevere
	case value > limit.Attention:
		return models.SeverityAttention
	case value > limit.Attention*minorFraction:
		return models.SeverityMinor
	default:
		return models.SeverityNormal
	}
}

// Severity is the highest per-gas grade; gases without a limit never contribute.
func (d *Diagnoser) Severity(r models.DGAReading) models.Severity {
	level := models.SeverityNormal
	for _, gas := range models.AllGases {
		limit, ok := d.limits[gas]
		if !ok {
			continue
		}
		if s := GasSeverity(r.Value(gas), limit); s > level {
			level = s
		}
	}
	return level
}

// elevatedGases lists gases above their attention limit, in canonical order.
func (d *Diagnoser) elevatedGases(r models.DGAReading) []models.Gas {
	var out []models.Gas
	for _, gas := range models.AllGases {
		if limit, ok := d.limits[gas]; ok && r.Value(gas) > limit.Attention {
			out = append(out, gas)
		}
	}
	return out
}
