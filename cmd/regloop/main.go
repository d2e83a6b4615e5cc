package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"regloop/internal/config"
	"regloop/internal/metrics"
	"regloop/internal/sim"
	"regloop/internal/tui"
	"regloop/internal/viz"
)

var (
	configFile string
	preset     string

	name      string
	period    float64
	tolerance float64
	setpoint  float64
	lawKind   string
	kp        float64
	ki        float64
	kd        float64
	plantKind string
	gain      float64
	tau       float64
	initial   float64

	dt       float64
	duration float64

	csvPath  string
	jsonPath string

	frameRate int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "regloop",
		Short: "sampled control loop runner",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a closed loop and summarize it",
		RunE:  runLoop,
	}
	addLoopFlags(runCmd)
	runCmd.Flags().StringVar(&csvPath, "csv", "", "export recording to CSV file")
	runCmd.Flags().StringVar(&jsonPath, "json", "", "export recording to JSON file")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a closed loop with live visualization",
		RunE:  runLive,
	}
	addLoopFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "run a closed loop and plot the recording",
		RunE:  plotLoop,
	}
	addLoopFlags(plotCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range config.ListPresets() {
				fmt.Println(p)
			}
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, plotCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addLoopFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&name, "name", "demo", "controller name")
	cmd.Flags().Float64Var(&period, "period", config.DefaultPeriod, "sample period")
	cmd.Flags().Float64Var(&tolerance, "tolerance", 0, "trigger window fraction (0 = default)")
	cmd.Flags().Float64Var(&setpoint, "setpoint", 1.0, "target value")
	cmd.Flags().StringVar(&lawKind, "law", "pid", "control law (pid, relay, static)")
	cmd.Flags().Float64Var(&kp, "kp", config.DefaultKp, "pid kp")
	cmd.Flags().Float64Var(&ki, "ki", config.DefaultKi, "pid ki")
	cmd.Flags().Float64Var(&kd, "kd", config.DefaultKd, "pid kd")
	cmd.Flags().StringVar(&plantKind, "plant", "first_order", "plant model (first_order, second_order)")
	cmd.Flags().Float64Var(&gain, "gain", 1.0, "plant gain (first_order)")
	cmd.Flags().Float64Var(&tau, "tau", 0.2, "plant time constant (first_order)")
	cmd.Flags().Float64Var(&initial, "initial", 0, "plant initial value")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "plant timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "run duration")
}

// assemble builds the effective configuration: preset, then config file,
// then explicitly set flags, later sources winning.
func assemble(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("name") {
		cfg.Name = name
	}
	if cmd.Flags().Changed("period") {
		cfg.Period = period
	}
	if cmd.Flags().Changed("tolerance") {
		cfg.Tolerance = tolerance
	}
	if cmd.Flags().Changed("setpoint") {
		cfg.Setpoint = setpoint
	}
	if cmd.Flags().Changed("law") {
		cfg.Law.Kind = lawKind
	}
	if cmd.Flags().Changed("kp") {
		cfg.Law.Kp = kp
	}
	if cmd.Flags().Changed("ki") {
		cfg.Law.Ki = ki
	}
	if cmd.Flags().Changed("kd") {
		cfg.Law.Kd = kd
	}
	if cmd.Flags().Changed("plant") {
		cfg.Plant.Kind = plantKind
	}
	if cmd.Flags().Changed("gain") {
		cfg.Plant.Gain = gain
	}
	if cmd.Flags().Changed("tau") {
		cfg.Plant.Tau = tau
	}
	if cmd.Flags().Changed("initial") {
		cfg.Plant.Initial = initial
	}
	if cmd.Flags().Changed("dt") {
		cfg.Run.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Run.Duration = duration
	}
	return cfg, nil
}

func runLoop(cmd *cobra.Command, args []string) error {
	cfg, err := assemble(cmd)
	if err != nil {
		return err
	}

	p, err := cfg.BuildPlant()
	if err != nil {
		return err
	}
	ctl, err := cfg.BuildLoop(slog.Default())
	if err != nil {
		return err
	}

	d := sim.New(p, ctl)
	d.AddMetric(metrics.NewIAE())
	d.AddMetric(metrics.NewISE())
	d.AddMetric(metrics.NewControlEffort())
	band := 0.02 * math.Abs(cfg.Setpoint)
	if band < 1e-3 {
		band = 1e-3
	}
	d.AddMetric(metrics.NewSettlingTime(band))

	fmt.Printf("running %s...\n", cfg.Name)
	start := time.Now()

	result, err := d.Run(context.Background(), sim.Config{
		Dt:       cfg.Run.Dt,
		Duration: cfg.Run.Duration,
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n\n", elapsed)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "steps\t%d\n", result.Steps)
	fmt.Fprintf(w, "cycles\t%d\n", result.Cycles.Updates)
	fmt.Fprintf(w, "missed\t%d\n", result.Cycles.Missed)
	fmt.Fprintf(w, "final value\t%.6f\n", p.Value())
	fmt.Fprintf(w, "final error\t%.6f\n", ctl.Error())
	for mname, val := range result.Metrics {
		fmt.Fprintf(w, "%s\t%.6f\n", mname, val)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if (csvPath != "" || jsonPath != "") && ctl.Series().Len() == 0 {
		fmt.Println("\nnothing recorded, skipping export")
		return nil
	}
	if csvPath != "" {
		if err := ctl.Series().ExportCSVFile(csvPath); err != nil {
			return err
		}
		fmt.Printf("\nrecording written to %s\n", csvPath)
	}
	if jsonPath != "" {
		if err := ctl.Series().ExportJSONFile(jsonPath, cfg.Name, cfg.Period); err != nil {
			return err
		}
		fmt.Printf("recording written to %s\n", jsonPath)
	}
	return nil
}

func plotLoop(cmd *cobra.Command, args []string) error {
	cfg, err := assemble(cmd)
	if err != nil {
		return err
	}

	p, err := cfg.BuildPlant()
	if err != nil {
		return err
	}
	ctl, err := cfg.BuildLoop(slog.Default())
	if err != nil {
		return err
	}
	ctl.SetRecording(true)

	d := sim.New(p, ctl)
	if _, err := d.Run(context.Background(), sim.Config{
		Dt:       cfg.Run.Dt,
		Duration: cfg.Run.Duration,
	}); err != nil {
		return err
	}

	fmt.Println(viz.RenderRun(ctl.Series(), cfg.Name))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := assemble(cmd)
	if err != nil {
		return err
	}

	p, err := cfg.BuildPlant()
	if err != nil {
		return err
	}
	ctl, err := cfg.BuildLoop(slog.New(slog.DiscardHandler))
	if err != nil {
		return err
	}
	ctl.SetRecording(true)

	d := sim.New(p, ctl)
	m := tui.NewModel(p, ctl, d, cfg.Run.Dt, frameRate)

	prog := tea.NewProgram(m)
	if _, err := prog.Run(); err != nil {
		return err
	}
	return nil
}
