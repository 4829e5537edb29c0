package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/miradorstack/mirador-twin/internal/models"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "mirador.twin.v1.TwinEngine"

// TwinEngineServer is the server API for the TwinEngine service.
type TwinEngineServer interface {
	Diagnose(context.Context, *models.DiagnoseRequest) (*models.DiagnosisResult, error)
	PredictThermal(context.Context, *models.ThermalRequest) (*models.ThermalState, error)
	MaxLoad(context.Context, *models.MaxLoadRequest) (*models.MaxLoadResponse, error)
	PredictTransient(context.Context, *models.TransientRequest) (*models.TransientResponse, error)
	AnalyzeAging(context.Context, *models.AgingRequest) (*models.AgingState, error)
	PredictDPEvolution(context.Context, *models.DPEvolutionRequest) (*models.DPEvolutionResponse, error)
	RunSimulation(context.Context, *models.SimulationRequest) (*models.SimulationResult, error)
	CompareScenarios(context.Context, *models.CompareRequest) (*models.ComparisonResult, error)
	AnalyzeTrend(context.Context, *models.TrendRequest) (*models.TrendResponse, error)
}

// UnimplementedTwinEngineServer answers every method with codes.Unimplemented.
type UnimplementedTwinEngineServer struct{}

func (UnimplementedTwinEngineServer) Diagnose(context.Context, *models.DiagnoseRequest) (*models.DiagnosisResult, error) {
	return nil, status.Error(codes.Unimplemented, "method Diagnose not implemented")
}
func (UnimplementedTwinEngineServer) PredictThermal(context.Context, *models.ThermalRequest) (*models.ThermalState, error) {
	return nil, status.Error(codes.Unimplemented, "method PredictThermal not implemented")
}
func (UnimplementedTwinEngineServer) MaxLoad(context.Context, *models.MaxLoadRequest) (*models.MaxLoadResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method MaxLoad not implemented")
}
func (UnimplementedTwinEngineServer) PredictTransient(context.Context, *models.TransientRequest) (*models.TransientResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method PredictTransient not implemented")
}
func (UnimplementedTwinEngineServer) AnalyzeAging(context.Context, *models.AgingRequest) (*models.AgingState, error) {
	return nil, status.Error(codes.Unimplemented, "method AnalyzeAging not implemented")
}
func (UnimplementedTwinEngineServer) PredictDPEvolution(context.Context, *models.DPEvolutionRequest) (*models.DPEvolutionResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method PredictDPEvolution not implemented")
}
func (UnimplementedTwinEngineServer) RunSimulation(context.Context, *models.SimulationRequest) (*models.SimulationResult, error) {
	return nil, status.Error(codes.Unimplemented, "method RunSimulation not implemented")
}
func (UnimplementedTwinEngineServer) CompareScenarios(context.Context, *models.CompareRequest) (*models.ComparisonResult, error) {
	return nil, status.Error(codes.Unimplemented, "method CompareScenarios not implemented")
}
func (UnimplementedTwinEngineServer) AnalyzeTrend(context.Context, *models.TrendRequest) (*models.TrendResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method AnalyzeTrend not implemented")
}

// TwinEngineServiceDesc describes the TwinEngine service for grpc.Server.
var TwinEngineServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TwinEngineServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("Diagnose", TwinEngineServer.Diagnose),
		unaryMethod("PredictThermal", TwinEngineServer.PredictThermal),
		unaryMethod("MaxLoad", TwinEngineServer.MaxLoad),
		unaryMethod("PredictTransient", TwinEngineServer.PredictTransient),
		unaryMethod("AnalyzeAging", TwinEngineServer.AnalyzeAging),
		unaryMethod("PredictDPEvolution", TwinEngineServer.PredictDPEvolution),
		unaryMethod("RunSimulation", TwinEngineServer.RunSimulation),
		unaryMethod("CompareScenarios", TwinEngineServer.CompareScenarios),
		unaryMethod("AnalyzeTrend", TwinEngineServer.AnalyzeTrend),
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterTwinEngineServer attaches srv to the registrar.
func RegisterTwinEngineServer(s grpc.ServiceRegistrar, srv TwinEngineServer) {
	s.RegisterService(&TwinEngineServiceDesc, srv)
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unaryMethod[Req, Resp any](name string, call func(TwinEngineServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(TwinEngineServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(TwinEngineServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
