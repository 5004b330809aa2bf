package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/gravsim/internal/analysis"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/export"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/report"
	"github.com/san-kum/gravsim/internal/scenario"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/storage"
	"github.com/san-kum/gravsim/internal/stream"
	"github.com/spf13/cobra"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	return execute(cfg, newLogger(cfg))
}

func loadRecords(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, nil)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	frames, err := storage.ReadRecords(f, defaultMass)
	if err != nil {
		return err
	}
	if frameIdx < 0 || frameIdx >= len(frames) {
		return fmt.Errorf("frame %d out of range (file has %d frames)", frameIdx, len(frames))
	}

	cfg.Bodies = config.FromBodies(frames[frameIdx])
	logger.Info("loaded records", "file", args[0], "frame", frameIdx, "bodies", len(cfg.Bodies))
	return execute(cfg, logger)
}

func execute(cfg *config.Config, logger *log.Logger) error {
	bodies, simCfg, err := cfg.Resolve()
	if err != nil {
		return err
	}

	s, err := sim.NewFromConfig(simCfg)
	if err != nil {
		return err
	}
	for _, m := range metrics.Default(simCfg) {
		s.AddMetric(m)
	}
	if logger.GetLevel() <= log.DebugLevel {
		s.AddObserver(sim.NewLogObserver(logger, simCfg.G, logEvery))
	}
	steps := simCfg.Steps()
	s.AddObserver(sim.NewProgress(logger, steps, max(steps/10, 1)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	name := scenarioName(cfg)
	logger.Info("running", "scenario", name, "model", simCfg.Model, "bodies", len(bodies), "steps", steps)

	start := time.Now()
	result, err := s.Run(ctx, bodies)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID := ""
	if save {
		st := storage.New(cfg.DataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err = st.Save(storage.RunInfo{Scenario: name, Seed: cfg.Seed}, simCfg, result)
		if err != nil {
			return err
		}
		logger.Info("saved", "run", runID, "dir", cfg.DataDir)
	}

	fmt.Println(report.Summary(report.Run{ID: runID, Scenario: name, Elapsed: elapsed, Config: simCfg, Result: result}))
	fmt.Println()
	fmt.Println(report.MetricsTable(result.Metrics))
	fmt.Println()
	fmt.Println(report.BodiesTable(result.Final()))
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, nil)
	if err != nil {
		return err
	}

	runs, err := storage.New(cfg.DataDir).List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tMODEL\tTIME\tBODIES\tSTEPS\tDT\tDRIFT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%.4gs\t%.2e\n",
			run.ID,
			run.Scenario,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			len(run.Bodies),
			run.Steps,
			run.Dt,
			run.EnergyDrift,
		)
	}

	return w.Flush()
}

func loadRun(cmd *cobra.Command, runID string) (*storage.RunMetadata, *dynamo.Result, error) {
	cfg, err := resolveConfig(cmd, nil)
	if err != nil {
		return nil, nil, err
	}
	return storage.New(cfg.DataDir).LoadResult(runID)
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s (%s)\n", meta.Scenario, meta.Model)
	fmt.Printf("samples: %d\n\n", len(result.Trajectory)+1)

	if plotBody >= 0 {
		if plotBody >= len(meta.Bodies) {
			return fmt.Errorf("body %d out of range (run has %d bodies)", plotBody, len(meta.Bodies))
		}
		fmt.Println(report.PlotBody(result.Initial, result.Trajectory, plotBody))
		return nil
	}

	fmt.Println(report.Overview(meta.G, result.Initial, result.Trajectory, 6))
	return nil
}

func output() (io.Writer, func() error, error) {
	if outFile == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	_, result, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}

	w, closeFn, err := output()
	if err != nil {
		return err
	}

	frames := append([]dynamo.Snapshot{result.Initial}, result.Trajectory...)
	if err := storage.WriteRecords(w, frames, withMass); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, result, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}

	w, closeFn, err := output()
	if err != nil {
		return err
	}

	if err := storage.WriteCSV(w, result); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	_, result, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}

	w, closeFn, err := output()
	if err != nil {
		return err
	}

	if _, err := io.WriteString(w, export.OrbitsSVG(result.Initial, result.Trajectory, svgSize, svgEvery)); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}

	n := len(meta.Bodies)
	if n < 2 {
		return fmt.Errorf("run %s has a single body; nothing orbits", meta.ID)
	}
	if bodyIdx < 0 || bodyIdx >= n || refIdx < 0 || refIdx >= n || bodyIdx == refIdx {
		return fmt.Errorf("need two distinct body indices below %d, got body=%d ref=%d", n, bodyIdx, refIdx)
	}

	body, ref := meta.Bodies[bodyIdx].Name, meta.Bodies[refIdx].Name
	fmt.Printf("orbit analysis: %s\n", meta.ID)
	fmt.Printf("%s about %s\n\n", body, ref)

	rel := make([]float64, len(result.Trajectory))
	for k, s := range result.Trajectory {
		rel[k] = s.Bodies[bodyIdx].Pos.X - s.Bodies[refIdx].Pos.X
	}
	if ps := analysis.PowerSpectrum(rel); len(ps) > 1 {
		fmt.Println(report.PlotSpectrum(ps, fmt.Sprintf("power spectrum (%s x relative to %s)", body, ref)))
		fmt.Println()
	}

	period, err := analysis.OrbitalPeriod(result.Trajectory, bodyIdx, refIdx)
	switch {
	case err == nil:
		fmt.Printf("dominant period: %.6g s (%.4g days)\n", period, period/86400)
	case errors.Is(err, analysis.ErrTooShort), errors.Is(err, analysis.ErrNoPeriod):
		fmt.Printf("dominant period: n/a (%v)\n", err)
	default:
		return err
	}

	if ret, ok := analysis.ClosestReturn(result.Initial, result.Trajectory, bodyIdx, refIdx); ok {
		start := analysis.Separation(dynamo.Trajectory{result.Initial}, refIdx, bodyIdx)[0]
		fmt.Printf("closest return: step %d (t=%.6g s), %.4e m from start (%.3f%% of initial separation)\n",
			ret.Step, ret.Time, ret.Distance, 100*ret.Distance/start)
	}

	sep := analysis.Separation(result.Trajectory, refIdx, bodyIdx)
	if len(sep) > 0 {
		lo, hi := sep[0], sep[0]
		for _, d := range sep {
			lo, hi = min(lo, d), max(hi, d)
		}
		fmt.Printf("separation: min %.4e m, max %.4e m\n", lo, hi)
	}
	return nil
}

func listScenarios(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDESCRIPTION")
	for _, name := range scenario.List() {
		fmt.Fprintf(w, "%s\t%s\n", name, scenario.Description(name))
	}
	return w.Flush()
}

func compareModels(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	bodies, simCfg, err := cfg.Resolve()
	if err != nil {
		return err
	}

	models := []string{dynamo.ModelSequential, dynamo.ModelNetForce}
	ens := sim.NewEnsemble(len(models))
	for _, m := range models {
		c := simCfg
		c.Model = m
		ens.Add(sim.Job{Name: m, Bodies: bodies, Config: c, Metrics: metrics.Default})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("comparing models", "scenario", scenarioName(cfg), "steps", simCfg.Steps())
	start := time.Now()
	results, err := ens.Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("done", "elapsed", time.Since(start))

	rows := make([]report.CompareRow, len(results))
	for i, res := range results {
		maxDiv := 0.0
		for _, d := range analysis.Divergence(results[0].Trajectory, res.Trajectory) {
			maxDiv = max(maxDiv, d)
		}
		rows[i] = report.CompareRow{
			Model:         res.Model,
			EnergyDrift:   res.Metrics["energy_drift"],
			MomentumDrift: res.Metrics["momentum_drift"],
			MinSeparation: res.Metrics["min_separation"],
			MaxDivergence: maxDiv,
		}
	}

	fmt.Println(report.Comparison(rows))
	return nil
}

func serveRun(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	bodies, simCfg, err := cfg.Resolve()
	if err != nil {
		return err
	}
	s, err := sim.NewFromConfig(simCfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := s.Run(ctx, bodies)
	if err != nil {
		return err
	}
	logger.Info("simulation ready", "scenario", scenarioName(cfg), "frames", len(result.Trajectory)+1)

	hub := stream.NewHub(logger)
	mux := http.NewServeMux()
	mux.Handle("/ws", hub.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()
	logger.Info("listening", "addr", addr, "endpoint", "/ws")

	defer func() {
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	waitCtx, cancelWait := context.WithCancel(ctx)
	defer cancelWait()
	go func() {
		select {
		case err := <-serveErr:
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error("server stopped", "err", err)
			}
			cancelWait()
		case <-waitCtx.Done():
		}
	}()

	if err := hub.WaitForClients(waitCtx, 1); err != nil {
		return ignoreInterrupt(err)
	}
	logger.Info("replaying", "fps", fps)
	if err := stream.Replay(waitCtx, hub, result.Initial, result.Trajectory, fps); err != nil {
		return ignoreInterrupt(err)
	}

	drainCtx, cancelDrain := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelDrain()
	if err := hub.Shutdown(drainCtx); err != nil {
		logger.Warn("clients did not drain", "err", err)
	}
	return nil
}

func ignoreInterrupt(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func writeConfig(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	bodies, simCfg, err := cfg.Resolve()
	if err != nil {
		return err
	}

	out := *cfg
	out.Bodies = config.FromBodies(bodies)
	out.G, out.Dt, out.Duration, out.Model = simCfg.G, simCfg.Dt, simCfg.Duration, simCfg.Model
	if err := config.Save(configOut, &out); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d bodies)\n", configOut, len(bodies))
	return nil
}
