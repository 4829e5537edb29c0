package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/status"

	"github.com/miradorstack/mirador-twin/internal/api"
	"github.com/miradorstack/mirador-twin/internal/cache"
	"github.com/miradorstack/mirador-twin/internal/engine"
	"github.com/miradorstack/mirador-twin/internal/extractors"
	"github.com/miradorstack/mirador-twin/internal/metrics"
	"github.com/miradorstack/mirador-twin/internal/models"
	"github.com/miradorstack/mirador-twin/internal/utils"
)

var _ api.TwinEngineServer = (*TwinService)(nil)

// TwinService implements the gRPC TwinEngine service on top of the engine.
type TwinService struct {
	logger    *slog.Logger
	engine    *engine.Engine
	trends    *extractors.TrendExtractor
	cache     cache.Provider
	cacheTTL  time.Duration
	latencies *utils.LatencyRegistry
}

// NewTwinService constructs the service facade. A nil provider disables caching.
func NewTwinService(logger *slog.Logger, eng *engine.Engine, provider cache.Provider, cacheTTL time.Duration) *TwinService {
	if logger == nil {
		logger = slog.Default()
	}
	if provider == nil {
		provider = cache.NoopProvider{}
	}
	return &TwinService{
		logger:    logger,
		engine:    eng,
		trends:    extractors.NewTrendExtractor(),
		cache:     provider,
		cacheTTL:  cacheTTL,
		latencies: utils.NewLatencyRegistry(1024),
	}
}

// call carries per-request bookkeeping.
type call struct {
	op     string
	start  time.Time
	logger *slog.Logger
}

func (s *TwinService) begin(op string) call {
	return call{
		op:     op,
		start:  time.Now(),
		logger: s.logger.With(slog.String("method", op), slog.String("request_id", uuid.NewString())),
	}
}

func (s *TwinService) fail(c call, err error) error {
	duration := time.Since(c.start)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		metrics.ObserveRequest(c.op, duration, metrics.OutcomeError)
		return status.FromContextError(err).Err()
	}
	if utils.KindOf(err) == utils.KindInvalidInput {
		metrics.ObserveRequest(c.op, duration, metrics.OutcomeInvalid)
		c.logger.Warn("request rejected", slog.Any("error", err))
	} else {
		metrics.ObserveRequest(c.op, duration, metrics.OutcomeError)
		c.logger.Error("request failed", slog.Any("error", err))
	}
	return api.ToStatus(err)
}

func (s *TwinService) done(c call) {
	duration := time.Since(c.start)
	s.latencies.Observe(c.op, duration)
	metrics.ObserveRequest(c.op, duration, metrics.OutcomeSuccess)

	tracker := s.latencies.Tracker(c.op)
	if count := tracker.Count(); count >= 20 && count%20 == 0 {
		c.logger.Info("request latency", slog.Duration("p95", tracker.Percentile(95)), slog.Int("samples", count))
	}
	c.logger.Debug("request served", slog.Duration("duration", duration))
}

// Diagnose classifies a DGA reading.
func (s *TwinService) Diagnose(ctx context.Context, req *models.DiagnoseRequest) (*models.DiagnosisResult, error) {
	c := s.begin("Diagnose")
	if err := ctx.Err(); err != nil {
		return nil, s.fail(c, err)
	}
	if req == nil {
		return nil, s.fail(c, utils.InvalidInput(c.op, "request cannot be nil"))
	}
	reading, err := api.ReadingFromRequest(c.op, req.Reading)
	if err != nil {
		return nil, s.fail(c, err)
	}

	result := s.engine.Diagnoser.Diagnose(reading)
	metrics.ObserveDiagnosis(result.FaultType.String(), result.SeverityLabel)
	c.logger.Debug("diagnosis complete",
		slog.String("device_id", reading.DeviceID),
		slog.String("fault_type", result.FaultType.String()),
		slog.Int("severity", int(result.Severity)),
		slog.Float64("confidence", result.Confidence),
	)
	s.done(c)
	return &result, nil
}

// PredictThermal returns steady-state temperatures.
func (s *TwinService) PredictThermal(ctx context.Context, req *models.ThermalRequest) (*models.ThermalState, error) {
	c := s.begin("PredictThermal")
	if err := ctx.Err(); err != nil {
		return nil, s.fail(c, err)
	}
	in, err := api.ThermalFromRequest(c.op, req)
	if err != nil {
		return nil, s.fail(c, err)
	}

	state := s.engine.Thermal.Predict(in.LoadPercent, in.AmbientTemp, in.CoolingFactor)
	s.done(c)
	return &state, nil
}

// MaxLoad returns the largest load keeping the hot-spot within its limit.
func (s *TwinService) MaxLoad(ctx context.Context, req *models.MaxLoadRequest) (*models.MaxLoadResponse, error) {
	c := s.begin("MaxLoad")
	if err := ctx.Err(); err != nil {
		return nil, s.fail(c, err)
	}
	in, err := api.MaxLoadFromRequest(c.op, req)
	if err != nil {
		return nil, s.fail(c, err)
	}

	resp := &models.MaxLoadResponse{
		AmbientTemp:    in.AmbientTemp,
		CoolingFactor:  in.CoolingFactor,
		MaxLoadPercent: s.engine.Thermal.MaxLoad(in.AmbientTemp, in.CoolingFactor),
		HotspotLimit:   s.engine.Thermal.Config().HotspotLimit,
	}
	s.done(c)
	return resp, nil
}

// PredictTransient returns the hourly hot-spot response to a load step.
func (s *TwinService) PredictTransient(ctx context.Context, req *models.TransientRequest) (*models.TransientResponse, error) {
	c := s.begin("PredictTransient")
	if err := ctx.Err(); err != nil {
		return nil, s.fail(c, err)
	}
	in, err := api.TransientFromRequest(c.op, req)
	if err != nil {
		return nil, s.fail(c, err)
	}

	points := s.engine.Thermal.Transient(in.InitialTemp, in.LoadPercent, in.AmbientTemp, in.DurationHours, in.TimeConstantHours)
	s.done(c)
	return &models.TransientResponse{Points: points}, nil
}

// AnalyzeAging returns the insulation aging state.
func (s *TwinService) AnalyzeAging(ctx context.Context, req *models.AgingRequest) (*models.AgingState, error) {
	c := s.begin("AnalyzeAging")
	if err := ctx.Err(); err != nil {
		return nil, s.fail(c, err)
	}
	in, err := api.AgingFromRequest(c.op, req)
	if err != nil {
		return nil, s.fail(c, err)
	}

	state := s.engine.Aging.Analyze(in.CurrentDP, in.TempCelsius, in.OperationYears)
	s.done(c)
	return &state, nil
}

// PredictDPEvolution returns the DP history under a daily temperature profile.
func (s *TwinService) PredictDPEvolution(ctx context.Context, req *models.DPEvolutionRequest) (*models.DPEvolutionResponse, error) {
	c := s.begin("PredictDPEvolution")
	if err := ctx.Err(); err != nil {
		return nil, s.fail(c, err)
	}
	if err := api.DPEvolutionFromRequest(c.op, req); err != nil {
		return nil, s.fail(c, err)
	}

	points := s.engine.Aging.DPEvolution(req.InitialDP, req.TempProfile)
	s.done(c)
	return &models.DPEvolutionResponse{Points: points}, nil
}

// simulationKey is the normalized form of a simulation request.
type simulationKey struct {
	Scenario models.ScenarioConfig `json:"scenario"`
	Initial  models.InitialState   `json:"initial"`
}

// RunSimulation projects one scenario.
func (s *TwinService) RunSimulation(ctx context.Context, req *models.SimulationRequest) (*models.SimulationResult, error) {
	c := s.begin("RunSimulation")
	if err := ctx.Err(); err != nil {
		return nil, s.fail(c, err)
	}
	if req == nil {
		return nil, s.fail(c, utils.InvalidInput(c.op, "request cannot be nil"))
	}
	scenario, err := api.ScenarioFromRequest(c.op, req.Scenario)
	if err != nil {
		return nil, s.fail(c, err)
	}
	initial, err := api.InitialStateFromRequest(c.op, req.InitialState)
	if err != nil {
		return nil, s.fail(c, err)
	}

	result := cached(ctx, s, c, "simulate", simulationKey{Scenario: scenario, Initial: initial}, func() models.SimulationResult {
		return s.engine.Simulator.Run(scenario, initial)
	})
	c.logger.Debug("simulation complete",
		slog.String("scenario", scenario.Name),
		slog.String("limiting_criterion", result.LimitingCriterion),
	)
	s.done(c)
	return result, nil
}

// compareKey is the normalized form of a comparison request.
type compareKey struct {
	ScenarioA models.ScenarioConfig `json:"scenario_a"`
	ScenarioB models.ScenarioConfig `json:"scenario_b"`
	Initial   models.InitialState   `json:"initial"`
}

// CompareScenarios runs an A/B comparison against one initial state.
func (s *TwinService) CompareScenarios(ctx context.Context, req *models.CompareRequest) (*models.ComparisonResult, error) {
	c := s.begin("CompareScenarios")
	if err := ctx.Err(); err != nil {
		return nil, s.fail(c, err)
	}
	if req == nil {
		return nil, s.fail(c, utils.InvalidInput(c.op, "request cannot be nil"))
	}
	scenarioA, err := api.ScenarioFromRequest(c.op+" scenario_a", req.ScenarioA)
	if err != nil {
		return nil, s.fail(c, err)
	}
	scenarioB, err := api.ScenarioFromRequest(c.op+" scenario_b", req.ScenarioB)
	if err != nil {
		return nil, s.fail(c, err)
	}
	initial, err := api.InitialStateFromRequest(c.op, req.InitialState)
	if err != nil {
		return nil, s.fail(c, err)
	}

	key := compareKey{ScenarioA: scenarioA, ScenarioB: scenarioB, Initial: initial}
	result := cached(ctx, s, c, "compare", key, func() models.ComparisonResult {
		return s.engine.Simulator.Compare(scenarioA, scenarioB, initial)
	})
	s.done(c)
	return result, nil
}

// AnalyzeTrend summarises one gas across timestamped readings.
func (s *TwinService) AnalyzeTrend(ctx context.Context, req *models.TrendRequest) (*models.TrendResponse, error) {
	c := s.begin("AnalyzeTrend")
	if err := ctx.Err(); err != nil {
		return nil, s.fail(c, err)
	}
	if err := api.TrendFromRequest(c.op, req); err != nil {
		return nil, s.fail(c, err)
	}

	resp, err := s.trends.Analyze(*req)
	if err != nil {
		return nil, s.fail(c, utils.NewAppError(c.op, "trend analysis failed", err))
	}
	s.done(c)
	return &resp, nil
}

// LatencyP95 returns the current p95 latency of method.
func (s *TwinService) LatencyP95(method string) time.Duration {
	if s.latencies == nil {
		return 0
	}
	return s.latencies.Tracker(method).Percentile(95)
}

// cached serves compute from the cache when possible. Cache failures are
// logged and never fail the request.
func cached[T any](ctx context.Context, s *TwinService, c call, namespace string, request any, compute func() T) *T {
	if _, disabled := s.cache.(cache.NoopProvider); disabled {
		out := compute()
		return &out
	}

	key, err := cache.Key(namespace, request)
	if err != nil {
		c.logger.Warn("cache key failed", slog.Any("error", err))
		out := compute()
		return &out
	}

	payload, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		var out T
		if err := json.Unmarshal(payload, &out); err == nil {
			metrics.ObserveCacheLookup(true)
			return &out
		}
		c.logger.Warn("discarding undecodable cache entry", slog.String("key", key))
	case !errors.Is(err, cache.ErrCacheMiss):
		c.logger.Warn("cache get failed", slog.Any("error", err))
	}
	metrics.ObserveCacheLookup(false)

	out := compute()
	if payload, err := json.Marshal(out); err != nil {
		c.logger.Warn("cache encode failed", slog.Any("error", err))
	} else if err := s.cache.Set(ctx, key, payload, s.cacheTTL); err != nil {
		c.logger.Warn("cache set failed", slog.Any("error", err))
	}
	return &out
}
