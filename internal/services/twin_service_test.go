package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/miradorstack/mirador-twin/internal/cache"
	"github.com/miradorstack/mirador-twin/internal/engine"
	"github.com/miradorstack/mirador-twin/internal/models"
)

type countingCache struct {
	*cache.MemoryProvider
	gets, sets int
}

func (c *countingCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.gets++
	return c.MemoryProvider.Get(ctx, key)
}

func (c *countingCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.sets++
	return c.MemoryProvider.Set(ctx, key, value, ttl)
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}
func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}
func (brokenCache) Del(context.Context, string) error { return nil }
func (brokenCache) Close() error                      { return nil }

func newTestService(t *testing.T, provider cache.Provider) *TwinService {
	t.Helper()
	eng, err := engine.New(engine.DefaultConfig(), nil, nil)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return NewTwinService(nil, eng, provider, time.Minute)
}

func exampleInitialState() models.InitialStateRequest {
	return models.InitialStateRequest{DGA: map[string]float64{
		"H2": 145, "CH4": 32, "C2H6": 8, "C2H4": 45, "C2H2": 78, "CO": 420, "CO2": 3200,
	}}
}

func defect(v float64) *float64 { return &v }

func TestDiagnose(t *testing.T) {
	service := newTestService(t, nil)

	res, err := service.Diagnose(context.Background(), &models.DiagnoseRequest{Reading: models.DGAReading{
		H2: 145, CH4: 32, C2H6: 8, C2H4: 45, C2H2: 78, CO: 420, CO2: 3200,
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.FaultType != models.FaultD2 || res.Severity != models.SeveritySevere || res.Confidence != 1 {
		t.Fatalf("unexpected diagnosis %+v", res)
	}
}

func TestDiagnoseInvalid(t *testing.T) {
	service := newTestService(t, nil)

	_, err := service.Diagnose(context.Background(), nil)
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	_, err = service.Diagnose(context.Background(), &models.DiagnoseRequest{Reading: models.DGAReading{C2H2: -4}})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	_, err = service.Diagnose(context.Background(), &models.DiagnoseRequest{Reading: models.DGAReading{C2H4: 1e303}})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected invalid argument for an impossible concentration, got %v", err)
	}
}

func TestDiagnoseAtFullConcentrationEncodes(t *testing.T) {
	service := newTestService(t, nil)

	reading := models.DGAReading{C2H4: models.MaxConcentrationPPM}
	result, err := service.Diagnose(context.Background(), &models.DiagnoseRequest{Reading: reading})
	if err != nil {
		t.Fatalf("diagnose: %v", err)
	}
	if _, err := json.Marshal(result); err != nil {
		t.Fatalf("diagnosis must encode as JSON: %v", err)
	}
}

func TestCanceledContext(t *testing.T) {
	service := newTestService(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := service.PredictThermal(ctx, &models.ThermalRequest{LoadPercent: 80})
	if status.Code(err) != codes.Canceled {
		t.Fatalf("expected canceled, got %v", err)
	}
}

func TestPredictThermalAndMaxLoad(t *testing.T) {
	service := newTestService(t, nil)
	ambient := 35.0

	state, err := service.PredictThermal(context.Background(), &models.ThermalRequest{LoadPercent: 110, AmbientTemp: &ambient})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !state.Overheating {
		t.Fatalf("expected overheating at 110%% load and 35C, got %+v", state)
	}

	resp, err := service.MaxLoad(context.Background(), &models.MaxLoadRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.HotspotLimit != 118 || resp.MaxLoadPercent <= 0 || resp.AmbientTemp != models.DefaultAmbientTemp {
		t.Fatalf("unexpected max load %+v", resp)
	}
}

func TestAnalyzeAgingEstimatesDP(t *testing.T) {
	service := newTestService(t, nil)
	temp, years := 85.0, 10.0

	state, err := service.AnalyzeAging(context.Background(), &models.AgingRequest{TempCelsius: &temp, OperationYears: &years})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.CurrentDP >= 1000 || state.CurrentDP <= 700 {
		t.Fatalf("unexpected estimated dp %v", state.CurrentDP)
	}
}

func TestRunSimulationValidation(t *testing.T) {
	service := newTestService(t, nil)

	_, err := service.RunSimulation(context.Background(), &models.SimulationRequest{
		Scenario:     models.ScenarioRequest{Name: "overload", LoadPercent: 140, AmbientTemp: 25},
		InitialState: exampleInitialState(),
	})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestRunSimulationUsesCache(t *testing.T) {
	provider := &countingCache{MemoryProvider: cache.NewMemoryProvider(16)}
	service := newTestService(t, provider)
	req := &models.SimulationRequest{
		Scenario:     models.ScenarioRequest{Name: "current", LoadPercent: 85, AmbientTemp: 25, DefectFactor: defect(0.8)},
		InitialState: exampleInitialState(),
	}

	first, err := service.RunSimulation(context.Background(), req)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := service.RunSimulation(context.Background(), req)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if provider.gets != 2 || provider.sets != 1 {
		t.Fatalf("expected one miss then one hit, got gets=%d sets=%d", provider.gets, provider.sets)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Fatalf("cached payload differs:\n%s\n%s", a, b)
	}
	if first.LimitingCriterion != models.CriterionInsulation || len(first.Timeline) != models.DefaultDurationDays+1 {
		t.Fatalf("unexpected simulation %+v", first)
	}
}

func TestRunSimulationSurvivesCacheFailure(t *testing.T) {
	service := newTestService(t, brokenCache{})

	_, err := service.RunSimulation(context.Background(), &models.SimulationRequest{
		Scenario:     models.ScenarioRequest{Name: "current", LoadPercent: 85, AmbientTemp: 25},
		InitialState: exampleInitialState(),
	})
	if err != nil {
		t.Fatalf("cache errors must not fail the request: %v", err)
	}
}

func TestCompareScenariosIdentical(t *testing.T) {
	service := newTestService(t, nil)
	scenario := models.ScenarioRequest{Name: "current", LoadPercent: 85, AmbientTemp: 25}

	res, err := service.CompareScenarios(context.Background(), &models.CompareRequest{
		ScenarioA:    scenario,
		ScenarioB:    scenario,
		InitialState: exampleInitialState(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Improvements.TemperatureReduction != 0 || res.Improvements.GasRateReductionPct != 0 || res.Improvements.LifeExtensionDays != 0 {
		t.Fatalf("expected zero improvements, got %+v", res.Improvements)
	}
}

func TestCompareScenariosRejectsBadScenarioB(t *testing.T) {
	service := newTestService(t, nil)

	_, err := service.CompareScenarios(context.Background(), &models.CompareRequest{
		ScenarioA:    models.ScenarioRequest{LoadPercent: 85, AmbientTemp: 25},
		ScenarioB:    models.ScenarioRequest{LoadPercent: 85, AmbientTemp: 50},
		InitialState: exampleInitialState(),
	})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestAnalyzeTrend(t *testing.T) {
	service := newTestService(t, nil)
	readings := []models.DGAReading{
		{C2H2: 10, Timestamp: "2024-01-01T00:00:00Z"},
		{C2H2: 13, Timestamp: "2024-01-02T00:00:00Z"},
		{C2H2: 16, Timestamp: "2024-01-03T00:00:00Z"},
	}

	resp, err := service.AnalyzeTrend(context.Background(), &models.TrendRequest{Gas: "C2H2", Readings: readings})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.RatePerDay < 2.999 || resp.RatePerDay > 3.001 {
		t.Fatalf("unexpected rate %v", resp.RatePerDay)
	}
	if got := service.latencies.Tracker("AnalyzeTrend").Count(); got != 1 {
		t.Fatalf("expected one latency sample, got %d", got)
	}
}
