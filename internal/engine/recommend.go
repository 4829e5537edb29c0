package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/miradorstack/mirador-twin/internal/models"
)

var (
	dischargeGuidance = []string{
		"Discharge fault detected, recommended actions:",
		"  1. Reduce load below 60% immediately",
		"  2. Schedule an outage for inspection",
		"  3. Inspect the tap changer, bushings and leads",
	}
	thermalGuidance = []string{
		"Overheating fault detected, recommended actions:",
		"  1. Verify the cooling system is operating",
		"  2. Review load distribution",
		"  3. Measure contact and winding resistance",
	}
)

// faultGuidance is the built-in advice per fault type.
var faultGuidance = map[models.FaultType][]string{
	models.FaultNormal: {"Equipment operating normally, continue routine monitoring"},
	models.FaultPD: {
		"Partial discharge detected, recommended actions:",
		"  1. Inspect the insulation system",
		"  2. Start online partial discharge monitoring",
		"  3. Consider reduced-load operation",
	},
	models.FaultD1:        dischargeGuidance,
	models.FaultD2:        dischargeGuidance,
	models.FaultDischarge: dischargeGuidance,
	models.FaultT1:        thermalGuidance,
	models.FaultT2:        thermalGuidance,
	models.FaultT3:        thermalGuidance,
	models.FaultThermal:   thermalGuidance,
	models.FaultMix: {
		"Mixed fault signature, recommended actions:",
		"  1. Resample oil within 7 days to confirm the trend",
		"  2. Cross-check with electrical diagnostics",
	},
}

// severityHeadlines are prepended for severity >= attention.
var severityHeadlines = map[models.Severity]string{
	models.SeveritySevere:    "WARNING: severe gas levels, take the unit out of service for inspection",
	models.SeverityAttention: "CAUTION: elevated gas levels, resample within 48 hours",
}

// calloutGases get an explicit line when above their alarm limit.
var calloutGases = []models.Gas{models.GasC2H2, models.GasH2}

func (d *Diagnoser) recommend(result models.DiagnosisResult) []string {
	recs := make([]string, 0, 8)
	if headline, ok := severityHeadlines[result.Severity]; ok {
		recs = append(recs, headline)
	}
	recs = append(recs, faultGuidance[result.FaultType]...)
	for _, gas := range calloutGases {
		limit, ok := d.limits[gas]
		if !ok {
			continue
		}
		if v := result.Reading.Value(gas); v > limit.Alarm {
			recs = append(recs, fmt.Sprintf("  %s at %.1f ppm exceeds the alarm limit of %.0f ppm", gas, v, limit.Alarm))
		}
	}
	if d.rules != nil {
		recs = appendUnique(recs, d.rules.Recommend(result, d.elevatedGases(result.Reading))...)
	}
	return recs
}

// RuleEngine appends site-specific recommendations loaded from a YAML rule pack.
type RuleEngine struct {
	rules  []Rule
	logger *slog.Logger
}

// Rule represents a single recommendation rule.
type Rule struct {
	ID              string    `yaml:"id"`
	Match           RuleMatch `yaml:"match"`
	Recommendations []string  `yaml:"recommendations"`
}

// RuleMatch defines optional attributes for rule matching; empty fields match anything.
type RuleMatch struct {
	FaultTypes     []string `yaml:"fault_types"`
	MinSeverity    int      `yaml:"min_severity"`
	Gases          []string `yaml:"gases_over_attention"`
	DeviceContains []string `yaml:"device_contains"`
}

// RuleConfigFile is the YAML root structure.
type RuleConfigFile struct {
	Rules []Rule `yaml:"rules"`
}

// NewRuleEngine loads rules from the provided path. If path is empty or missing, returns nil engine.
func NewRuleEngine(path string, logger *slog.Logger) (*RuleEngine, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	engine, err := ParseRules(data, logger)
	if err != nil {
		return nil, fmt.Errorf("rule pack %s: %w", path, err)
	}
	engine.logger.Info("recommendation rules loaded", slog.String("path", path), slog.Int("rules", len(engine.rules)))
	return engine, nil
}

// ParseRules builds a RuleEngine from YAML, rejecting unknown fault codes and gases.
func ParseRules(data []byte, logger *slog.Logger) (*RuleEngine, error) {
	var cfg RuleConfigFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	for _, rule := range cfg.Rules {
		for _, code := range rule.Match.FaultTypes {
			if _, err := models.ParseFaultType(code); err != nil {
				return nil, fmt.Errorf("rule %q: %w", rule.ID, err)
			}
		}
		for _, name := range rule.Match.Gases {
			if _, err := models.ParseGas(name); err != nil {
				return nil, fmt.Errorf("rule %q: %w", rule.ID, err)
			}
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RuleEngine{rules: cfg.Rules, logger: logger}, nil
}

// Recommend returns the recommendations of every matching rule, in rule order.
func (e *RuleEngine) Recommend(result models.DiagnosisResult, elevated []models.Gas) []string {
	if e == nil {
		return nil
	}

	matched := make([]string, 0)
	for _, rule := range e.rules {
		if len(rule.Match.FaultTypes) > 0 && !faultMatches(rule.Match.FaultTypes, result.FaultType) {
			continue
		}
		if int(result.Severity) < rule.Match.MinSeverity {
			continue
		}
		if len(rule.Match.Gases) > 0 && !gasesElevated(rule.Match.Gases, elevated) {
			continue
		}
		if len(rule.Match.DeviceContains) > 0 && !deviceMatches(rule.Match.DeviceContains, result.Reading.DeviceID) {
			continue
		}
		matched = appendUnique(matched, rule.Recommendations...)
	}
	return matched
}

func faultMatches(codes []string, fault models.FaultType) bool {
	for _, code := range codes {
		if strings.EqualFold(code, fault.String()) {
			return true
		}
	}
	return false
}

func gasesElevated(names []string, elevated []models.Gas) bool {
	for _, name := range names {
		for _, gas := range elevated {
			if strings.EqualFold(name, string(gas)) {
				return true
			}
		}
	}
	return false
}

func deviceMatches(keywords []string, deviceID string) bool {
	device := strings.ToLower(deviceID)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(device, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func appendUnique(existing []string, additions ...string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, rec := range existing {
		seen[rec] = struct{}{}
	}
	for _, item := range additions {
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		existing = append(existing, item)
		seen[item] = struct{}{}
	}
	return existing
}
