package api

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/miradorstack/mirador-twin/internal/models"
	"github.com/miradorstack/mirador-twin/internal/utils"
)

// Request bounds enforced at the API boundary. The engine itself accepts any
// finite input.
const (
	MinScenarioLoad    = 20.0
	MaxScenarioLoad    = 130.0
	MinScenarioAmbient = -10.0
	MaxScenarioAmbient = 45.0
	MaxDurationDays    = 3650

	MaxThermalLoad    = 150.0
	MinAmbient        = -40.0
	MaxAmbient        = 60.0
	MaxTransientHours = 720
	MaxProfileDays    = 36500
	MaxDP             = 2000.0
	MaxTrendReadings  = 10000

	// DefaultAgingTemp is the IEC 60076-7 reference hot-spot for normal paper.
	DefaultAgingTemp = 98.0
)

// ThermalInput is a validated steady-state thermal query.
type ThermalInput struct {
	LoadPercent   float64
	AmbientTemp   float64
	CoolingFactor float64
}

// TransientInput is a validated transient query; TimeConstantHours 0 means the model default.
type TransientInput struct {
	InitialTemp       float64
	LoadPercent       float64
	AmbientTemp       float64
	DurationHours     int
	TimeConstantHours float64
}

// AgingInput is a validated aging query; a nil CurrentDP asks for an estimate.
type AgingInput struct {
	CurrentDP      *float64
	TempCelsius    float64
	OperationYears float64
}

// ToStatus converts an error into a gRPC status error.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch utils.KindOf(err) {
	case utils.KindInvalidInput:
		return status.Error(codes.InvalidArgument, err.Error())
	case utils.KindUnavailable:
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func checkFinite(op, field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return utils.InvalidInput(op, "%s must be finite", field)
	}
	return nil
}

func checkRange(op, field string, v, lo, hi float64) error {
	if err := checkFinite(op, field, v); err != nil {
		return err
	}
	if v < lo || v > hi {
		return utils.InvalidInput(op, "%s must be between %g and %g, got %g", field, lo, hi, v)
	}
	return nil
}

func checkCooling(op string, v float64) error {
	if err := checkFinite(op, "cooling_factor", v); err != nil {
		return err
	}
	if v <= 0 {
		return utils.InvalidInput(op, "cooling_factor must be > 0, got %g", v)
	}
	return nil
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// ReadingFromRequest validates a DGA reading.
func ReadingFromRequest(op string, reading models.DGAReading) (models.DGAReading, error) {
	if err := reading.Validate(); err != nil {
		return models.DGAReading{}, &utils.AppError{Op: op, Msg: "invalid dga_data", Kind: utils.KindInvalidInput, Err: err}
	}
	return reading, nil
}

// ReadingFromMap builds a reading from gas-name keys; absent gases are zero.
func ReadingFromMap(op string, dga map[string]float64) (models.DGAReading, error) {
	var reading models.DGAReading
	for name, value := range dga {
		gas, err := models.ParseGas(name)
		if err != nil {
			return models.DGAReading{}, &utils.AppError{Op: op, Msg: "invalid dga", Kind: utils.KindInvalidInput, Err: err}
		}
		reading = reading.WithValue(gas, value)
	}
	return ReadingFromRequest(op, reading)
}

// ThermalFromRequest applies defaults and bounds to a thermal query.
func ThermalFromRequest(op string, req *models.ThermalRequest) (ThermalInput, error) {
	if req == nil {
		return ThermalInput{}, utils.InvalidInput(op, "request is nil")
	}
	in := ThermalInput{
		LoadPercent:   req.LoadPercent,
		AmbientTemp:   orDefault(req.AmbientTemp, models.DefaultAmbientTemp),
		CoolingFactor: orDefault(req.CoolingFactor, models.DefaultCoolingFactor),
	}
	err := errors.Join(
		checkRange(op, "load_percent", in.LoadPercent, 0, MaxThermalLoad),
		checkRange(op, "ambient_temp", in.AmbientTemp, MinAmbient, MaxAmbient),
		checkCooling(op, in.CoolingFactor),
	)
	return in, err
}

// MaxLoadFromRequest applies defaults and bounds to a max-load query.
func MaxLoadFromRequest(op string, req *models.MaxLoadRequest) (ThermalInput, error) {
	if req == nil {
		return ThermalInput{}, utils.InvalidInput(op, "request is nil")
	}
	in := ThermalInput{
		AmbientTemp:   orDefault(req.AmbientTemp, models.DefaultAmbientTemp),
		CoolingFactor: orDefault(req.CoolingFactor, models.DefaultCoolingFactor),
	}
	err := errors.Join(
		checkRange(op, "ambient_temp", in.AmbientTemp, MinAmbient, MaxAmbient),
		checkCooling(op, in.CoolingFactor),
	)
	return in, err
}

// TransientFromRequest applies bounds to a transient query.
func TransientFromRequest(op string, req *models.TransientRequest) (TransientInput, error) {
	if req == nil {
		return TransientInput{}, utils.InvalidInput(op, "request is nil")
	}
	in := TransientInput{
		InitialTemp:       req.InitialTemp,
		LoadPercent:       req.LoadPercent,
		AmbientTemp:       req.AmbientTemp,
		DurationHours:     req.DurationHours,
		TimeConstantHours: orDefault(req.TimeConstantHours, 0),
	}
	errs := []error{
		checkRange(op, "initial_temp", in.InitialTemp, MinAmbient, 250),
		checkRange(op, "load_percent", in.LoadPercent, 0, MaxThermalLoad),
		checkRange(op, "ambient_temp", in.AmbientTemp, MinAmbient, MaxAmbient),
	}
	if in.DurationHours < 0 || in.DurationHours > MaxTransientHours {
		errs = append(errs, utils.InvalidInput(op, "duration_hours must be between 0 and %d, got %d", MaxTransientHours, in.DurationHours))
	}
	if req.TimeConstantHours != nil && !(in.TimeConstantHours > 0) {
		errs = append(errs, utils.InvalidInput(op, "time_constant_hours must be > 0"))
	}
	return in, errors.Join(errs...)
}

// AgingFromRequest applies defaults and bounds to an aging query.
func AgingFromRequest(op string, req *models.AgingRequest) (AgingInput, error) {
	if req == nil {
		return AgingInput{}, utils.InvalidInput(op, "request is nil")
	}
	in := AgingInput{
		CurrentDP:      req.CurrentDP,
		TempCelsius:    orDefault(req.TempCelsius, DefaultAgingTemp),
		OperationYears: orDefault(req.OperationYears, models.DefaultOperationYears),
	}
	errs := []error{
		checkRange(op, "temp_celsius", in.TempCelsius, MinAmbient, 250),
		checkRange(op, "operation_years", in.OperationYears, 0, 100),
	}
	if in.CurrentDP != nil {
		errs = append(errs, checkRange(op, "current_dp", *in.CurrentDP, 0, MaxDP))
	}
	return in, errors.Join(errs...)
}

// DPEvolutionFromRequest validates a DP evolution query.
func DPEvolutionFromRequest(op string, req *models.DPEvolutionRequest) error {
	if req == nil {
		return utils.InvalidInput(op, "request is nil")
	}
	if err := checkRange(op, "initial_dp", req.InitialDP, 0, MaxDP); err != nil {
		return err
	}
	if len(req.TempProfile) > MaxProfileDays {
		return utils.InvalidInput(op, "temp_profile is limited to %d days, got %d", MaxProfileDays, len(req.TempProfile))
	}
	for i, temp := range req.TempProfile {
		if err := checkRange(op, fmt.Sprintf("temp_profile[%d]", i), temp, MinAmbient, 250); err != nil {
			return err
		}
	}
	return nil
}

// ScenarioFromRequest applies defaults and bounds to a scenario.
func ScenarioFromRequest(op string, req models.ScenarioRequest) (models.ScenarioConfig, error) {
	scenario := models.NewScenario(req.Name)
	if scenario.Name == "" {
		scenario.Name = "scenario"
	}
	if req.Baseline != "" {
		scenario.Baseline = req.Baseline
	}
	scenario.LoadPercent = req.LoadPercent
	scenario.AmbientTemp = req.AmbientTemp
	scenario.CoolingFactor = orDefault(req.CoolingFactor, models.DefaultCoolingFactor)
	scenario.DefectFactor = orDefault(req.DefectFactor, models.DefaultDefectFactor)
	if req.DurationDays != nil {
		scenario.DurationDays = *req.DurationDays
	}

	errs := []error{
		checkRange(op, "load_percent", scenario.LoadPercent, MinScenarioLoad, MaxScenarioLoad),
		checkRange(op, "ambient_temp", scenario.AmbientTemp, MinScenarioAmbient, MaxScenarioAmbient),
		checkCooling(op, scenario.CoolingFactor),
		checkRange(op, "defect_factor", scenario.DefectFactor, 0, 1),
	}
	if scenario.DurationDays < 0 || scenario.DurationDays > MaxDurationDays {
		errs = append(errs, utils.InvalidInput(op, "duration_days must be between 0 and %d, got %d", MaxDurationDays, scenario.DurationDays))
	}
	if err := errors.Join(errs...); err != nil {
		return models.ScenarioConfig{}, err
	}
	return scenario, nil
}

// InitialStateFromRequest applies defaults and bounds to an initial state.
func InitialStateFromRequest(op string, req models.InitialStateRequest) (models.InitialState, error) {
	reading, err := ReadingFromMap(op, req.DGA)
	if err != nil {
		return models.InitialState{}, err
	}
	state := models.NewInitialState(reading)
	state.OperationYears = orDefault(req.OperationYears, models.DefaultOperationYears)
	if err := checkRange(op, "operation_years", state.OperationYears, 0, 100); err != nil {
		return models.InitialState{}, err
	}

	switch {
	case req.EstimateDP:
		state.DP = nil
	case req.DP != nil:
		if err := checkRange(op, "dp", *req.DP, 0, MaxDP); err != nil {
			return models.InitialState{}, err
		}
		dp := *req.DP
		state.DP = &dp
	}
	return state, nil
}

// TrendFromRequest validates a trend query.
func TrendFromRequest(op string, req *models.TrendRequest) error {
	if req == nil {
		return utils.InvalidInput(op, "request is nil")
	}
	if _, err := models.ParseGas(req.Gas); err != nil {
		return &utils.AppError{Op: op, Msg: "invalid gas", Kind: utils.KindInvalidInput, Err: err}
	}
	if len(req.Readings) == 0 || len(req.Readings) > MaxTrendReadings {
		return utils.InvalidInput(op, "readings must hold between 1 and %d entries, got %d", MaxTrendReadings, len(req.Readings))
	}
	if err := checkRange(op, "threshold", req.Threshold, 0, 100); err != nil {
		return err
	}
	for i, reading := range req.Readings {
		if _, err := ReadingFromRequest(fmt.Sprintf("%s readings[%d]", op, i), reading); err != nil {
			return err
		}
		if _, err := utils.ParseRFC3339(reading.Timestamp); err != nil {
			return &utils.AppError{Op: op, Msg: fmt.Sprintf("readings[%d] timestamp", i), Kind: utils.KindInvalidInput, Err: err}
		}
	}
	return nil
}
