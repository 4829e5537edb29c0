package main

import (
	"context"

	"github.com/miradorstack/mirador-twin/internal/api"
	"github.com/miradorstack/mirador-twin/internal/config"
	"github.com/miradorstack/mirador-twin/internal/engine"
	"github.com/miradorstack/mirador-twin/internal/models"
	"github.com/miradorstack/mirador-twin/internal/services"
	"github.com/miradorstack/mirador-twin/internal/utils"
)

// openBackend returns an in-process service, or a remote one when addr is set.
// The returned closer must be called when done.
func openBackend(opts *rootOptions) (api.TwinEngineServer, func() error, error) {
	if opts.addr != "" {
		conn, err := api.Dial(opts.addr)
		if err != nil {
			return nil, nil, err
		}
		return remoteBackend{client: api.NewTwinEngineClient(conn)}, conn.Close, nil
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	logger := utils.NewLoggerTo(opts.errOut, cfg.Logging.Level, cfg.Logging.JSON)
	rulesPath := cfg.Rules.Path
	if opts.rulesPath != "" {
		rulesPath = opts.rulesPath
	}
	rules, err := engine.NewRuleEngine(rulesPath, logger)
	if err != nil {
		return nil, nil, err
	}
	eng, err := engine.New(cfg.Models, rules, logger)
	if err != nil {
		return nil, nil, err
	}
	return services.NewTwinService(logger, eng, nil, 0), func() error { return nil }, nil
}

// remoteBackend adapts the gRPC client to the server interface.
type remoteBackend struct {
	client *api.TwinEngineClient
}

func (r remoteBackend) Diagnose(ctx context.Context, in *models.DiagnoseRequest) (*models.DiagnosisResult, error) {
	return r.client.Diagnose(ctx, in)
}

func (r remoteBackend) PredictThermal(ctx context.Context, in *models.ThermalRequest) (*models.ThermalState, error) {
	return r.client.PredictThermal(ctx, in)
}

func (r remoteBackend) MaxLoad(ctx context.Context, in *models.MaxLoadRequest) (*models.MaxLoadResponse, error) {
	return r.client.MaxLoad(ctx, in)
}

func (r remoteBackend) PredictTransient(ctx context.Context, in *models.TransientRequest) (*models.TransientResponse, error) {
	return r.client.PredictTransient(ctx, in)
}

func (r remoteBackend) AnalyzeAging(ctx context.Context, in *models.AgingRequest) (*models.AgingState, error) {
	return r.client.AnalyzeAging(ctx, in)
}

func (r remoteBackend) PredictDPEvolution(ctx context.Context, in *models.DPEvolutionRequest) (*models.DPEvolutionResponse, error) {
	return r.client.PredictDPEvolution(ctx, in)
}

func (r remoteBackend) RunSimulation(ctx context.Context, in *models.SimulationRequest) (*models.SimulationResult, error) {
	return r.client.RunSimulation(ctx, in)
}

func (r remoteBackend) CompareScenarios(ctx context.Context, in *models.CompareRequest) (*models.ComparisonResult, error) {
	return r.client.CompareScenarios(ctx, in)
}

func (r remoteBackend) AnalyzeTrend(ctx context.Context, in *models.TrendRequest) (*models.TrendResponse, error) {
	return r.client.AnalyzeTrend(ctx, in)
}
