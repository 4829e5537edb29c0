package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/miradorstack/mirador-twin/internal/api"
	"github.com/miradorstack/mirador-twin/internal/models"
)

type rootOptions struct {
	addr       string
	configPath string
	rulesPath  string
	timeout    time.Duration
	errOut     io.Writer
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{errOut: os.Stderr}

	rootCmd := &cobra.Command{
		Use:   "twinctl",
		Short: "Transformer digital twin - diagnosis, thermal, aging and what-if simulation",
		Long: `A CLI for the mirador-twin engine. Commands run the models in-process
unless --addr points at a running twin-engine server. Results are printed as JSON.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.errOut = cmd.ErrOrStderr()
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.addr, "addr", "", "twin-engine gRPC address (empty runs locally)")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to configuration file for local runs")
	rootCmd.PersistentFlags().StringVar(&opts.rulesPath, "rules", "", "Recommendation rule pack for local runs")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(diagnoseCmd(opts))
	rootCmd.AddCommand(thermalCmd(opts))
	rootCmd.AddCommand(agingCmd(opts))
	rootCmd.AddCommand(simulateCmd(opts))
	rootCmd.AddCommand(compareCmd(opts))
	rootCmd.AddCommand(trendCmd(opts))
	return rootCmd
}

// run opens the backend, invokes fn and prints its result as indented JSON.
func run[T any](cmd *cobra.Command, opts *rootOptions, fn func(context.Context, api.TwinEngineServer) (*T, error)) error {
	backend, closeBackend, err := openBackend(opts)
	if err != nil {
		return err
	}
	defer closeBackend()

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	out, err := fn(ctx, backend)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// addGasFlags registers one flag per gas and returns the values that were set.
func addGasFlags(cmd *cobra.Command) func() map[string]float64 {
	values := make(map[models.Gas]*float64, len(models.AllGases))
	for _, gas := range models.AllGases {
		values[gas] = cmd.Flags().Float64(strings.ToLower(string(gas)), 0, string(gas)+" concentration in ppm")
	}
	return func() map[string]float64 {
		out := make(map[string]float64, len(values))
		for gas, v := range values {
			if cmd.Flags().Changed(strings.ToLower(string(gas))) {
				out[string(gas)] = *v
			}
		}
		return out
	}
}

// optionalFloat returns a pointer to v only when the flag was set.
func optionalFloat(cmd *cobra.Command, name string, v float64) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}

func readFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func diagnoseCmd(opts *rootOptions) *cobra.Command {
	var file, device string

	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Diagnose a DGA reading with IEC 60599, Duval and Rogers",
		Example: `  twinctl diagnose --h2 145 --ch4 32 --c2h6 8 --c2h4 45 --c2h2 78 --co 420 --co2 3200
  twinctl diagnose --file reading.yaml`,
	}
	gases := addGasFlags(cmd)
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the reading from a YAML or JSON file")
	cmd.Flags().StringVar(&device, "device", "", "Device identifier")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		var reading models.DGAReading
		if file != "" {
			if err := readFile(file, &reading); err != nil {
				return err
			}
		}
		for name, v := range gases() {
			gas, err := models.ParseGas(name)
			if err != nil {
				return err
			}
			reading = reading.WithValue(gas, v)
		}
		if device != "" {
			reading.DeviceID = device
		}
		return run(cmd, opts, func(ctx context.Context, b api.TwinEngineServer) (*models.DiagnosisResult, error) {
			return b.Diagnose(ctx, &models.DiagnoseRequest{Reading: reading})
		})
	}
	return cmd
}

func thermalCmd(opts *rootOptions) *cobra.Command {
	var load, ambient, cooling float64

	cmd := &cobra.Command{
		Use:   "thermal",
		Short: "Predict steady-state oil and hot-spot temperatures",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &models.ThermalRequest{
				LoadPercent:   load,
				AmbientTemp:   optionalFloat(cmd, "ambient", ambient),
				CoolingFactor: optionalFloat(cmd, "cooling", cooling),
			}
			return run(cmd, opts, func(ctx context.Context, b api.TwinEngineServer) (*models.ThermalState, error) {
				return b.PredictThermal(ctx, req)
			})
		},
	}
	cmd.Flags().Float64VarP(&load, "load", "l", models.DefaultLoadPercent, "Load in percent of rating")
	cmd.Flags().Float64VarP(&ambient, "ambient", "a", models.DefaultAmbientTemp, "Ambient temperature in C")
	cmd.Flags().Float64Var(&cooling, "cooling", models.DefaultCoolingFactor, "Cooling efficiency factor")

	cmd.AddCommand(maxLoadCmd(opts))
	cmd.AddCommand(transientCmd(opts))
	return cmd
}

func maxLoadCmd(opts *rootOptions) *cobra.Command {
	var ambient, cooling float64

	cmd := &cobra.Command{
		Use:   "max-load",
		Short: "Find the largest load that keeps the hot-spot within its limit",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &models.MaxLoadRequest{
				AmbientTemp:   optionalFloat(cmd, "ambient", ambient),
				CoolingFactor: optionalFloat(cmd, "cooling", cooling),
			}
			return run(cmd, opts, func(ctx context.Context, b api.TwinEngineServer) (*models.MaxLoadResponse, error) {
				return b.MaxLoad(ctx, req)
			})
		},
	}
	cmd.Flags().Float64VarP(&ambient, "ambient", "a", models.DefaultAmbientTemp, "Ambient temperature in C")
	cmd.Flags().Float64Var(&cooling, "cooling", models.DefaultCoolingFactor, "Cooling efficiency factor")
	return cmd
}

func transientCmd(opts *rootOptions) *cobra.Command {
	var initial, load, ambient, tau float64
	var hours int

	cmd := &cobra.Command{
		Use:   "transient",
		Short: "Hourly hot-spot response to a step change in load",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &models.TransientRequest{
				InitialTemp:       initial,
				LoadPercent:       load,
				AmbientTemp:       ambient,
				DurationHours:     hours,
				TimeConstantHours: optionalFloat(cmd, "tau", tau),
			}
			return run(cmd, opts, func(ctx context.Context, b api.TwinEngineServer) (*models.TransientResponse, error) {
				return b.PredictTransient(ctx, req)
			})
		},
	}
	cmd.Flags().Float64Var(&initial, "initial", 60, "Initial hot-spot temperature in C")
	cmd.Flags().Float64VarP(&load, "load", "l", 100, "New load in percent of rating")
	cmd.Flags().Float64VarP(&ambient, "ambient", "a", models.DefaultAmbientTemp, "Ambient temperature in C")
	cmd.Flags().IntVar(&hours, "hours", 24, "Duration in hours")
	cmd.Flags().Float64Var(&tau, "tau", 0, "Thermal time constant in hours (default from calibration)")
	return cmd
}

func agingCmd(opts *rootOptions) *cobra.Command {
	var dp, temp, years float64

	cmd := &cobra.Command{
		Use:   "aging",
		Short: "Analyse insulation paper aging and remaining life",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &models.AgingRequest{
				CurrentDP:      optionalFloat(cmd, "dp", dp),
				TempCelsius:    optionalFloat(cmd, "temp", temp),
				OperationYears: optionalFloat(cmd, "years", years),
			}
			return run(cmd, opts, func(ctx context.Context, b api.TwinEngineServer) (*models.AgingState, error) {
				return b.AnalyzeAging(ctx, req)
			})
		},
	}
	cmd.Flags().Float64Var(&dp, "dp", 0, "Measured degree of polymerisation (estimated when omitted)")
	cmd.Flags().Float64VarP(&temp, "temp", "t", api.DefaultAgingTemp, "Hot-spot temperature in C")
	cmd.Flags().Float64Var(&years, "years", models.DefaultOperationYears, "Years in service")

	cmd.AddCommand(dpEvolutionCmd(opts))
	return cmd
}

func dpEvolutionCmd(opts *rootOptions) *cobra.Command {
	var initialDP float64
	var temps []float64

	cmd := &cobra.Command{
		Use:   "dp-evolution",
		Short: "Day-by-day DP under a daily hot-spot temperature profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &models.DPEvolutionRequest{InitialDP: initialDP, TempProfile: temps}
			return run(cmd, opts, func(ctx context.Context, b api.TwinEngineServer) (*models.DPEvolutionResponse, error) {
				return b.PredictDPEvolution(ctx, req)
			})
		},
	}
	cmd.Flags().Float64Var(&initialDP, "initial-dp", 1000, "Starting degree of polymerisation")
	cmd.Flags().Float64SliceVar(&temps, "temps", nil, "Comma-separated daily hot-spot temperatures in C")
	return cmd
}

// addScenarioFlags registers scenario flags under prefix and returns a builder.
func addScenarioFlags(cmd *cobra.Command, prefix, name string) func() models.ScenarioRequest {
	var (
		scenarioName                   string
		load, ambient, cooling, defect float64
		days                           int
	)
	flagName := func(s string) string { return prefix + s }
	cmd.Flags().StringVar(&scenarioName, flagName("name"), name, "Scenario name")
	cmd.Flags().Float64Var(&load, flagName("load"), models.DefaultLoadPercent, "Load in percent of rating (20-130)")
	cmd.Flags().Float64Var(&ambient, flagName("ambient"), models.DefaultAmbientTemp, "Ambient temperature in C (-10 to 45)")
	cmd.Flags().Float64Var(&cooling, flagName("cooling"), models.DefaultCoolingFactor, "Cooling efficiency factor")
	cmd.Flags().Float64Var(&defect, flagName("defect"), models.DefaultDefectFactor, "Defect severity factor (0-1)")
	cmd.Flags().IntVar(&days, flagName("days"), models.DefaultDurationDays, "Simulation horizon in days")

	return func() models.ScenarioRequest {
		req := models.ScenarioRequest{
			Name:          scenarioName,
			LoadPercent:   load,
			AmbientTemp:   ambient,
			CoolingFactor: optionalFloat(cmd, flagName("cooling"), cooling),
			DefectFactor:  optionalFloat(cmd, flagName("defect"), defect),
		}
		if cmd.Flags().Changed(flagName("days")) {
			req.DurationDays = &days
		}
		return req
	}
}

// addInitialStateFlags registers the starting-condition flags and returns a builder.
func addInitialStateFlags(cmd *cobra.Command) func() models.InitialStateRequest {
	var dp, years float64
	var estimate bool

	gases := addGasFlags(cmd)
	cmd.Flags().Float64Var(&dp, "dp", models.DefaultInitialDP, "Current degree of polymerisation")
	cmd.Flags().BoolVar(&estimate, "estimate-dp", false, "Estimate DP from years in service instead of --dp")
	cmd.Flags().Float64Var(&years, "years", models.DefaultOperationYears, "Years in service")

	return func() models.InitialStateRequest {
		return models.InitialStateRequest{
			DGA:            gases(),
			DP:             optionalFloat(cmd, "dp", dp),
			EstimateDP:     estimate,
			OperationYears: optionalFloat(cmd, "years", years),
		}
	}
}

func simulateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "simulate",
		Short:   "Project temperatures, gases, insulation and time-to-event for one scenario",
		Example: `  twinctl simulate --load 85 --ambient 25 --defect 0.8 --days 30 --c2h2 78 --h2 145`,
	}
	scenario := addScenarioFlags(cmd, "", "current")
	initial := addInitialStateFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		req := &models.SimulationRequest{Scenario: scenario(), InitialState: initial()}
		return run(cmd, opts, func(ctx context.Context, b api.TwinEngineServer) (*models.SimulationResult, error) {
			return b.RunSimulation(ctx, req)
		})
	}
	return cmd
}

func compareCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "compare",
		Short:   "Compare two scenarios from the same starting condition",
		Example: `  twinctl compare --a-load 85 --b-load 55 --c2h2 78 --h2 145`,
	}
	scenarioA := addScenarioFlags(cmd, "a-", "current")
	scenarioB := addScenarioFlags(cmd, "b-", "proposed")
	initial := addInitialStateFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		req := &models.CompareRequest{ScenarioA: scenarioA(), ScenarioB: scenarioB(), InitialState: initial()}
		return run(cmd, opts, func(ctx context.Context, b api.TwinEngineServer) (*models.ComparisonResult, error) {
			return b.CompareScenarios(ctx, req)
		})
	}
	return cmd
}

func trendCmd(opts *rootOptions) *cobra.Command {
	var gas, file string
	var threshold float64

	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Summarise one gas across timestamped readings",
		RunE: func(cmd *cobra.Command, args []string) error {
			var readings []models.DGAReading
			if err := readFile(file, &readings); err != nil {
				return err
			}
			req := &models.TrendRequest{Gas: gas, Readings: readings, Threshold: threshold}
			return run(cmd, opts, func(ctx context.Context, b api.TwinEngineServer) (*models.TrendResponse, error) {
				return b.AnalyzeTrend(ctx, req)
			})
		},
	}
	cmd.Flags().StringVarP(&gas, "gas", "g", string(models.GasC2H2), "Gas to analyse")
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML or JSON list of readings with RFC3339 timestamps")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Anomaly z-score threshold (default 2.5)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
