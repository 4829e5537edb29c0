package api

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/miradorstack/mirador-twin/internal/config"
	"github.com/miradorstack/mirador-twin/internal/models"
	"github.com/miradorstack/mirador-twin/internal/utils"
)

type stubTwin struct {
	UnimplementedTwinEngineServer
}

func (stubTwin) Diagnose(_ context.Context, req *models.DiagnoseRequest) (*models.DiagnosisResult, error) {
	if _, err := ReadingFromRequest("diagnose", req.Reading); err != nil {
		return nil, ToStatus(err)
	}
	return &models.DiagnosisResult{
		FaultType:       models.FaultD2,
		FaultLabel:      models.FaultD2.Label(),
		Confidence:      1,
		Severity:        models.SeveritySevere,
		Methods:         map[models.Method]string{models.MethodIEC: models.FaultD2.Label()},
		Recommendations: []string{"inspect"},
		Reading:         req.Reading,
	}, nil
}

func (stubTwin) AnalyzeAging(context.Context, *models.AgingRequest) (*models.AgingState, error) {
	return &models.AgingState{CurrentDP: 450, RemainingLifeYears: models.Infinite}, nil
}

func startBufServer(t *testing.T, srv TwinEngineServer) *TwinEngineClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	server := NewServerWithListener(config.ServerConfig{GracefulTimeout: time.Second}, lis, srv)
	go func() { _ = server.Start() }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		server.Shutdown(ctx)
	})

	conn, err := Dial("passthrough:///bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return NewTwinEngineClient(conn)
}

func TestServerRoundTripJSONCodec(t *testing.T) {
	client := startBufServer(t, stubTwin{})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reading := models.DGAReading{H2: 145, C2H2: 78, DeviceID: "T1"}
	res, err := client.Diagnose(ctx, &models.DiagnoseRequest{Reading: reading})
	if err != nil {
		t.Fatalf("diagnose: %v", err)
	}
	if res.FaultType != models.FaultD2 || res.Severity != models.SeveritySevere {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Reading != reading {
		t.Fatalf("reading not echoed: %+v", res.Reading)
	}

	aging, err := client.AnalyzeAging(ctx, &models.AgingRequest{})
	if err != nil {
		t.Fatalf("aging: %v", err)
	}
	if !aging.RemainingLifeYears.IsInf() {
		t.Fatalf("expected infinite remaining life to survive the wire, got %v", aging.RemainingLifeYears)
	}
}

func TestServerMapsInvalidArgument(t *testing.T) {
	client := startBufServer(t, stubTwin{})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.Diagnose(ctx, &models.DiagnoseRequest{Reading: models.DGAReading{H2: -1}})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}

	_, err = client.RunSimulation(ctx, &models.SimulationRequest{})
	if status.Code(err) != codes.Unimplemented {
		t.Fatalf("expected Unimplemented, got %v", err)
	}
}

func TestServerHealth(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	server := NewServerWithListener(config.ServerConfig{}, lis, stubTwin{})
	go func() { _ = server.Start() }()
	defer server.Shutdown(context.Background())

	conn, err := Dial("passthrough:///bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("unexpected health status %v", resp.GetStatus())
	}
}

func TestToStatus(t *testing.T) {
	if ToStatus(nil) != nil {
		t.Fatalf("nil must stay nil")
	}
	if code := status.Code(ToStatus(utils.InvalidInput("op", "bad"))); code != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", code)
	}
	if code := status.Code(ToStatus(utils.NewAppError("op", "boom", nil))); code != codes.Internal {
		t.Fatalf("expected Internal, got %v", code)
	}
	already := status.Error(codes.NotFound, "gone")
	if ToStatus(already) != already {
		t.Fatalf("status errors must pass through")
	}
}
