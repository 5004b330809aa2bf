package main

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	envFile    string
	logLevel   string

	dt        float64
	duration  float64
	gConst    float64
	model     string
	numBodies int
	seed      int64
	minSep    float64
	save      bool
	logEvery  int

	bodyIdx  int
	refIdx   int
	withMass bool
	outFile  string
	svgSize  int
	svgEvery int
	plotBody int

	addr string
	fps  int

	defaultMass float64
	frameIdx    int
	configOut   string
)

// main registers the gravsim commands and exits with status 1 when the
// selected command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "gravsim",
		Short:         "2D Newtonian n-body gravity simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with GRAVSIM_* settings")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a simulation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&save, "save", true, "save the run to the data directory")
	runCmd.Flags().IntVar(&logEvery, "log-every", 1, "log body states every n steps at debug level")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot coordinates, separation and energy of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotBody, "body", -1, "plot only this body index")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run as per-frame body records",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().BoolVar(&withMass, "mass", false, "include body masses")
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a run trajectory to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw a saved run's orbits as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&svgSize, "size", 800, "image width and height in pixels")
	exportSVGCmd.Flags().IntVar(&svgEvery, "every", 1, "keep one sample in every N steps")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "orbital period and closest return of a body",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&bodyIdx, "body", 1, "orbiting body index")
	analyzeCmd.Flags().IntVar(&refIdx, "ref", 0, "reference body index")

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list built-in scenarios",
		Args:  cobra.NoArgs,
		RunE:  listScenarios,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [scenario]",
		Short: "run both force models concurrently and compare them",
		Args:  cobra.MaximumNArgs(1),
		RunE:  compareModels,
	}
	addRunFlags(compareCmd)

	serveCmd := &cobra.Command{
		Use:   "serve [scenario]",
		Short: "run a simulation and replay it to websocket clients",
		Args:  cobra.MaximumNArgs(1),
		RunE:  serveRun,
	}
	addRunFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address (endpoint /ws)")
	serveCmd.Flags().IntVar(&fps, "fps", 30, "replay frame rate")

	loadCmd := &cobra.Command{
		Use:   "load [records.json]",
		Short: "run from one frame of an exported records file",
		Args:  cobra.ExactArgs(1),
		RunE:  loadRecords,
	}
	addRunFlags(loadCmd)
	loadCmd.Flags().Float64Var(&defaultMass, "mass", 1.0, "mass for records without one")
	loadCmd.Flags().IntVar(&frameIdx, "frame", 0, "frame to start from")
	loadCmd.Flags().BoolVar(&save, "save", true, "save the run to the data directory")
	loadCmd.Flags().IntVar(&logEvery, "log-every", 1, "log body states every n steps at debug level")

	configCmd := &cobra.Command{
		Use:   "config [scenario]",
		Short: "write the resolved configuration with explicit bodies as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  writeConfig,
	}
	addRunFlags(configCmd)
	configCmd.Flags().StringVarP(&configOut, "out", "o", "gravsim.yaml", "output file")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportJSONCmd, exportCSVCmd, exportSVGCmd, analyzeCmd, scenariosCmd, compareCmd, serveCmd, loadCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", 0, "timestep in seconds (default from scenario)")
	cmd.Flags().Float64Var(&duration, "time", 0, "duration in seconds (default from scenario)")
	cmd.Flags().Float64Var(&gConst, "g", 0, "gravitational constant (default from scenario)")
	cmd.Flags().StringVar(&model, "model", "", "force model: sequential or netforce")
	cmd.Flags().IntVar(&numBodies, "bodies", 0, "number of bodies for ring and random scenarios")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().Float64Var(&minSep, "min-sep", 0, "separation at or below which bodies count as coincident")
}

func newLogger(cfg *config.Config) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "gravsim",
	})
	if lvl, err := cfg.Level(); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}

// resolveConfig layers defaults, the yaml file, GRAVSIM_* variables and
// explicitly set flags, in that order.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := config.ApplyEnv(cfg, envFile); err != nil {
		return nil, err
	}

	if len(args) > 0 {
		cfg.Scenario = args[0]
		cfg.Bodies = nil
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Lookup("dt") == nil {
		return cfg, cfg.Validate()
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("g") {
		cfg.G = gConst
	}
	if flags.Changed("model") {
		cfg.Model = model
	}
	if flags.Changed("bodies") {
		cfg.NumBodies = numBodies
	}
	if flags.Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if flags.Changed("min-sep") {
		cfg.MinSeparation = minSep
	}

	return cfg, cfg.Validate()
}

func scenarioName(cfg *config.Config) string {
	if len(cfg.Bodies) > 0 {
		return "custom"
	}
	return cfg.Scenario
}
