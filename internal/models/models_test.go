package models

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestHorizonJSON(t *testing.T) {
	payload := struct {
		Finite   Horizon `json:"finite"`
		Infinite Horizon `json:"infinite"`
		Negative Horizon `json:"negative"`
	}{Finite: 12.5, Infinite: Infinite, Negative: Horizon(math.Inf(-1))}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got := string(data); got != `{"finite":12.5,"infinite":"+Inf","negative":"-Inf"}` {
		t.Fatalf("unexpected encoding %s", got)
	}

	var decoded struct {
		Finite   Horizon `json:"finite"`
		Infinite Horizon `json:"infinite"`
		Negative Horizon `json:"negative"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Finite != 12.5 || !math.IsInf(float64(decoded.Infinite), 1) || !math.IsInf(float64(decoded.Negative), -1) {
		t.Fatalf("unexpected decoded value %+v", decoded)
	}
}

func TestHorizonRejectsGarbage(t *testing.T) {
	var h Horizon
	if err := json.Unmarshal([]byte(`"soon"`), &h); err == nil {
		t.Fatalf("expected error for non-numeric horizon")
	}
}

func TestFaultTypeText(t *testing.T) {
	result := DiagnosisResult{FaultType: FaultD2, Methods: map[Method]string{MethodIEC: FaultD2.Label()}}
	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"fault_type":"D2"`) {
		t.Fatalf("fault type not encoded as code: %s", data)
	}

	for _, code := range []string{"normal", "pd", "D1", "MIX", "thermal"} {
		if _, err := ParseFaultType(code); err != nil {
			t.Fatalf("parse %q: %v", code, err)
		}
	}
	if _, err := ParseFaultType("X1"); err == nil {
		t.Fatalf("expected error for unknown code")
	}
	if !FaultD1.IsDischarge() || FaultD1.IsThermal() || !FaultT3.IsThermal() {
		t.Fatalf("unexpected fault family classification")
	}
}

func TestDGAReadingValidate(t *testing.T) {
	reading := DGAReading{H2: 10, CO2: 100}
	if err := reading.Validate(); err != nil {
		t.Fatalf("valid reading rejected: %v", err)
	}
	if err := reading.WithValue(GasCH4, -1).Validate(); err == nil {
		t.Fatalf("expected negative concentration to fail")
	}
	if err := reading.WithValue(GasCO, math.NaN()).Validate(); err == nil {
		t.Fatalf("expected NaN concentration to fail")
	}
	if err := reading.WithValue(GasC2H4, MaxConcentrationPPM).Validate(); err != nil {
		t.Fatalf("100%% concentration rejected: %v", err)
	}
	if err := reading.WithValue(GasC2H4, math.Nextafter(MaxConcentrationPPM, math.Inf(1))).Validate(); err == nil {
		t.Fatalf("expected concentration above 100%% to fail")
	}
	if err := reading.WithValue(GasC2H4, 1e303).Validate(); err == nil {
		t.Fatalf("expected overflowing concentration to fail")
	}
	if reading.WithValue(GasC2H2, 7).Value(GasC2H2) != 7 || reading.C2H2 != 0 {
		t.Fatalf("WithValue must not mutate the receiver")
	}
}

func TestScenarioValidate(t *testing.T) {
	scenario := NewScenario("current")
	if err := scenario.Validate(); err != nil {
		t.Fatalf("default scenario rejected: %v", err)
	}
	scenario.CoolingFactor = 0
	if err := scenario.Validate(); err == nil {
		t.Fatalf("expected zero cooling factor to fail")
	}
}
