package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/miradorstack/mirador-twin/internal/models"
)

// TwinEngineClient calls a remote TwinEngine service.
type TwinEngineClient struct {
	cc grpc.ClientConnInterface
}

// NewTwinEngineClient wraps an established connection.
func NewTwinEngineClient(cc grpc.ClientConnInterface) *TwinEngineClient {
	return &TwinEngineClient{cc: cc}
}

// Dial opens a plaintext connection to addr.
func Dial(addr string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	return grpc.NewClient(addr, opts...)
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *TwinEngineClient) Diagnose(ctx context.Context, in *models.DiagnoseRequest, opts ...grpc.CallOption) (*models.DiagnosisResult, error) {
	return invoke[models.DiagnosisResult](ctx, c.cc, "Diagnose", in, opts)
}

func (c *TwinEngineClient) PredictThermal(ctx context.Context, in *models.ThermalRequest, opts ...grpc.CallOption) (*models.ThermalState, error) {
	return invoke[models.ThermalState](ctx, c.cc, "PredictThermal", in, opts)
}

func (c *TwinEngineClient) MaxLoad(ctx context.Context, in *models.MaxLoadRequest, opts ...grpc.CallOption) (*models.MaxLoadResponse, error) {
	return invoke[models.MaxLoadResponse](ctx, c.cc, "MaxLoad", in, opts)
}

func (c *TwinEngineClient) PredictTransient(ctx context.Context, in *models.TransientRequest, opts ...grpc.CallOption) (*models.TransientResponse, error) {
	return invoke[models.TransientResponse](ctx, c.cc, "PredictTransient", in, opts)
}

func (c *TwinEngineClient) AnalyzeAging(ctx context.Context, in *models.AgingRequest, opts ...grpc.CallOption) (*models.AgingState, error) {
	return invoke[models.AgingState](ctx, c.cc, "AnalyzeAging", in, opts)
}

func (c *TwinEngineClient) PredictDPEvolution(ctx context.Context, in *models.DPEvolutionRequest, opts ...grpc.CallOption) (*models.DPEvolutionResponse, error) {
	return invoke[models.DPEvolutionResponse](ctx, c.cc, "PredictDPEvolution", in, opts)
}

func (c *TwinEngineClient) RunSimulation(ctx context.Context, in *models.SimulationRequest, opts ...grpc.CallOption) (*models.SimulationResult, error) {
	return invoke[models.SimulationResult](ctx, c.cc, "RunSimulation", in, opts)
}

func (c *TwinEngineClient) CompareScenarios(ctx context.Context, in *models.CompareRequest, opts ...grpc.CallOption) (*models.ComparisonResult, error) {
	return invoke[models.ComparisonResult](ctx, c.cc, "CompareScenarios", in, opts)
}

func (c *TwinEngineClient) AnalyzeTrend(ctx context.Context, in *models.TrendRequest, opts ...grpc.CallOption) (*models.TrendResponse, error) {
	return invoke[models.TrendResponse](ctx, c.cc, "AnalyzeTrend", in, opts)
}
