package models

// DiagnoseRequest asks for a DGA diagnosis of one reading.
type DiagnoseRequest struct {
	Reading DGAReading `json:"dga_data"`
}

// ThermalRequest asks for a steady-state thermal prediction.
type ThermalRequest struct {
	LoadPercent   float64  `json:"load_percent"`
	AmbientTemp   *float64 `json:"ambient_temp,omitempty"`
	CoolingFactor *float64 `json:"cooling_factor,omitempty"`
}

// MaxLoadRequest asks for the largest load that keeps the hot-spot within limit.
type MaxLoadRequest struct {
	AmbientTemp   *float64 `json:"ambient_temp,omitempty"`
	CoolingFactor *float64 `json:"cooling_factor,omitempty"`
}

// MaxLoadResponse carries the computed load ceiling.
type MaxLoadResponse struct {
	AmbientTemp    float64 `json:"ambient_temp"`
	CoolingFactor  float64 `json:"cooling_factor"`
	MaxLoadPercent float64 `json:"max_load_percent"`
	HotspotLimit   float64 `json:"hotspot_limit"`
}

// TransientRequest asks for an hourly hot-spot response to a load step.
type TransientRequest struct {
	InitialTemp       float64  `json:"initial_temp"`
	LoadPercent       float64  `json:"load_percent"`
	AmbientTemp       float64  `json:"ambient_temp"`
	DurationHours     int      `json:"duration_hours"`
	TimeConstantHours *float64 `json:"time_constant_hours,omitempty"`
}

// TransientResponse carries the hourly samples.
type TransientResponse struct {
	Points []TransientPoint `json:"points"`
}

// AgingRequest asks for an insulation aging analysis.
type AgingRequest struct {
	CurrentDP      *float64 `json:"current_dp,omitempty"`
	TempCelsius    *float64 `json:"temp_celsius,omitempty"`
	OperationYears *float64 `json:"operation_years,omitempty"`
}

// DPEvolutionRequest asks for a day-by-day DP evolution.
type DPEvolutionRequest struct {
	InitialDP   float64   `json:"initial_dp"`
	TempProfile []float64 `json:"temp_profile"`
}

// DPEvolutionResponse carries the DP history.
type DPEvolutionResponse struct {
	Points []DPPoint `json:"points"`
}

// ScenarioRequest is the wire form of a ScenarioConfig; nil fields take defaults.
type ScenarioRequest struct {
	Name          string   `json:"name"`
	Baseline      string   `json:"baseline,omitempty"`
	LoadPercent   float64  `json:"load_percent"`
	AmbientTemp   float64  `json:"ambient_temp"`
	CoolingFactor *float64 `json:"cooling_factor,omitempty"`
	DefectFactor  *float64 `json:"defect_factor,omitempty"`
	DurationDays  *int     `json:"duration_days,omitempty"`
}

// InitialStateRequest is the wire form of an InitialState.
type InitialStateRequest struct {
	DGA            map[string]float64 `json:"dga"`
	DP             *float64           `json:"dp,omitempty"`
	EstimateDP     bool               `json:"estimate_dp,omitempty"`
	OperationYears *float64           `json:"operation_years,omitempty"`
}

// SimulationRequest asks for a single scenario run.
type SimulationRequest struct {
	Scenario     ScenarioRequest     `json:"scenario"`
	InitialState InitialStateRequest `json:"initial_state"`
}

// CompareRequest asks for an A/B comparison against one initial state.
type CompareRequest struct {
	ScenarioA    ScenarioRequest     `json:"scenario_a"`
	ScenarioB    ScenarioRequest     `json:"scenario_b"`
	InitialState InitialStateRequest `json:"initial_state"`
}

// TrendRequest asks for trend statistics of one gas across readings.
type TrendRequest struct {
	Gas       string       `json:"gas"`
	Readings  []DGAReading `json:"readings"`
	Threshold float64      `json:"threshold,omitempty"`
}

// StatisticsSummary describes the distribution of one metric.
type StatisticsSummary struct {
	MetricName   string  `json:"metric_name"`
	Avg          float64 `json:"avg"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	StdDev       float64 `json:"std_dev"`
	Percentile95 float64 `json:"percentile_95"`
	SampleCount  int     `json:"sample_count"`
}

// TrendAnomaly flags a reading that deviates from the series.
type TrendAnomaly struct {
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
	Score     float64 `json:"score"`
	Threshold float64 `json:"threshold"`
}

// TrendResponse summarises a gas trend.
type TrendResponse struct {
	Gas        Gas               `json:"gas"`
	Summary    StatisticsSummary `json:"summary"`
	RatePerDay float64           `json:"rate_per_day"`
	Anomalies  []TrendAnomaly    `json:"anomalies"`
}
