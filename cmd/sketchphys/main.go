package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/einslab/sketchphys/internal/config"
	"github.com/einslab/sketchphys/internal/engine"
	"github.com/einslab/sketchphys/internal/metrics"
	"github.com/einslab/sketchphys/internal/normalize"
	"github.com/einslab/sketchphys/internal/scene"
	"github.com/einslab/sketchphys/internal/storage"
	"github.com/einslab/sketchphys/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	// Source image pixel size the scene mapping refers to.
	imageW float64
	imageH float64
	// Normalizer options.
	marginM         float64
	mode            string
	target          string
	scaleVelocities bool
	outPath         string
	// Run options.
	duration  float64
	frameRate int
	noNorm    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sketchphys",
		Short: "physics diagram scene toolkit",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".sketchphys", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "config preset: "+strings.Join(config.ListPresets(), ", "))
	rootCmd.PersistentFlags().Float64Var(&imageW, "image-width", config.DefaultImageWidth, "source image width (px)")
	rootCmd.PersistentFlags().Float64Var(&imageH, "image-height", config.DefaultImageHeight, "source image height (px)")

	exampleCmd := &cobra.Command{
		Use:   "example",
		Short: "emit the canonical pulley scene as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return scene.Encode(os.Stdout, scene.ExamplePulley())
		},
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect [scene.json]",
		Short: "summarize a scene file",
		Args:  cobra.ExactArgs(1),
		RunE:  inspectScene,
	}

	normalizeCmd := &cobra.Command{
		Use:   "normalize [scene.json]",
		Short: "fit bodies into the image bounds and separate contacts",
		Args:  cobra.ExactArgs(1),
		RunE:  normalizeScene,
	}
	normalizeCmd.Flags().Float64Var(&marginM, "margin", normalize.DefaultMarginM, "margin inside image bounds (m)")
	normalizeCmd.Flags().StringVar(&mode, "mode", string(normalize.TranslateAndScale), "translate | translate-and-scale")
	normalizeCmd.Flags().StringVar(&target, "target", string(normalize.DynamicBodies), "dynamic | all")
	normalizeCmd.Flags().BoolVar(&scaleVelocities, "scale-velocities", false, "scale velocities with the scene")
	normalizeCmd.Flags().StringVar(&outPath, "out", "", "write corrected scene to file (default stdout)")

	runCmd := &cobra.Command{
		Use:   "run [scene.json]",
		Short: "normalize and simulate a scene",
		Args:  cobra.ExactArgs(1),
		RunE:  runScene,
	}
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration (s)")
	runCmd.Flags().BoolVar(&noNorm, "no-normalize", false, "skip the normalization pass")

	viewCmd := &cobra.Command{
		Use:   "view [scene.json]",
		Short: "live terminal view of a scene",
		Args:  cobra.ExactArgs(1),
		RunE:  viewScene,
	}
	viewCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFrameRate, "frame rate")
	viewCmd.Flags().BoolVar(&noNorm, "no-normalize", false, "skip the normalization pass")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored run trajectories",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	rootCmd.AddCommand(exampleCmd, inspectCmd, normalizeCmd, runCmd, viewCmd, listCmd, plotCmd, exportJSONCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig merges the optional YAML config with CLI flags; flags win
// when explicitly set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q (have: %s)", preset, strings.Join(config.ListPresets(), ", "))
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
	if cmd.Flags().Changed("image-width") || cmd.InheritedFlags().Changed("image-width") {
		cfg.Image.WidthPx = imageW
	}
	if cmd.Flags().Changed("image-height") || cmd.InheritedFlags().Changed("image-height") {
		cfg.Image.HeightPx = imageH
	}
	if cmd.Flags().Changed("margin") {
		cfg.Normalize.MarginM = marginM
	}
	if cmd.Flags().Changed("mode") {
		cfg.Normalize.Mode = mode
	}
	if cmd.Flags().Changed("target") {
		cfg.Normalize.Target = target
	}
	if cmd.Flags().Changed("scale-velocities") {
		cfg.Normalize.ScaleVelocities = scaleVelocities
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("fps") {
		cfg.View.FrameRate = frameRate
	}
	return cfg, nil
}

func inspectScene(cmd *cobra.Command, args []string) error {
	s, err := scene.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("scene: %s\n", args[0])
	fmt.Printf("version: %s\n", s.Version)
	fmt.Printf("gravity: %.2f m/s²  timestep: %.4f s\n\n", s.World.GravityMS2, s.World.TimeStepS)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODY\tTYPE\tMASS\tPOSITION\tCOLLIDER")
	for i := range s.Bodies {
		b := &s.Bodies[i]
		collider := "none"
		if b.Collider != nil {
			collider = string(b.Collider.Kind)
		}
		fmt.Fprintf(w, "%s\t%s\t%.2fkg\t(%.2f, %.2f)\t%s\n",
			b.ID, b.Type, b.MassKg, b.PositionM.X, b.PositionM.Y, collider)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(s.Constraints) > 0 {
		fmt.Println()
		w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CONSTRAINT\tKIND\tBODIES")
		for _, c := range s.Constraints {
			fmt.Fprintf(w, "%s\t%s\t%s\n", c.Name(), c.Kind(), strings.Join(c.BodyRefs(), ", "))
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if s.Mapping != nil {
		fmt.Printf("\nmapping: origin (%.1f, %.1f) px, %.4f m/px\n",
			s.Mapping.OriginPx.X, s.Mapping.OriginPx.Y, s.Mapping.ScaleMPerPx)
	} else {
		fmt.Println("\nmapping: none (auto-frame fallback)")
	}

	if warnings := s.Validate(); len(warnings) > 0 {
		fmt.Println("\nwarnings:")
		for _, warning := range warnings {
			fmt.Printf("  %s\n", warning)
		}
	}

	return nil
}

func normalizeScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := scene.Load(args[0])
	if err != nil {
		return err
	}

	corrected, report := normalize.Normalize(s, s.Mapping, cfg.ImageSize(), cfg.NormalizeOptions())

	fmt.Fprintf(os.Stderr, "applied: %v\n", report.Applied)
	if report.Applied {
		fmt.Fprintf(os.Stderr, "translation: (%.4f, %.4f) m\n", report.TranslationM.X, report.TranslationM.Y)
		if report.Scale != 0 {
			fmt.Fprintf(os.Stderr, "scale: %.4f\n", report.Scale)
		}
		fmt.Fprintf(os.Stderr, "adjusted: %s\n", strings.Join(report.AdjustedBodyIDs, ", "))
	}
	for _, warning := range report.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}

	if outPath != "" {
		return scene.Save(outPath, corrected)
	}
	return scene.Encode(os.Stdout, corrected)
}

func prepareScene(cmd *cobra.Command, path string) (*scene.Scene, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	s, err := scene.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if noNorm {
		return s, cfg, nil
	}
	corrected, report := normalize.Normalize(s, s.Mapping, cfg.ImageSize(), cfg.NormalizeOptions())
	for _, warning := range report.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}
	return corrected, cfg, nil
}

func runScene(cmd *cobra.Command, args []string) error {
	s, cfg, err := prepareScene(cmd, args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	eng := engine.New(s)
	for _, warning := range eng.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}

	sceneName := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	fmt.Printf("running %s for %.1fs...\n", sceneName, cfg.Duration)
	start := time.Now()

	result, err := eng.Run(context.Background(), cfg.Duration)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(sceneName, s.World.TimeStepS, cfg.Duration, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d\n", len(result.Frames))
	if n := len(result.Energy); n > 0 {
		fmt.Printf("energy: %.3f J -> %.3f J\n", result.Energy[0], result.Energy[n-1])
	}

	summary := metrics.Summarize(result)
	fmt.Printf("rope drift max: %.2e m\n", summary["rope_drift"])
	fmt.Printf("energy drift: %.2e\n", summary["energy_drift"])
	fmt.Printf("constraint stability: %.3f\n", summary["stability"])

	return nil
}

func viewScene(cmd *cobra.Command, args []string) error {
	s, cfg, err := prepareScene(cmd, args[0])
	if err != nil {
		return err
	}
	sceneName := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	m := viz.NewModel(s, cfg.ImageSize(), cfg.View.FrameRate, sceneName)
	_, err = tea.NewProgram(m).Run()
	return err
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tDURATION\tDT\tROPE DRIFT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%.2e\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.TimeStepS,
			run.RopeDriftMax,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	if len(series.Times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("samples: %d\n\n", len(series.Times))

	for _, id := range meta.BodyIDs {
		positions := series.Bodies[id]
		ys := make([]float64, len(positions))
		for i, p := range positions {
			ys[i] = p.Y
		}
		graph := asciigraph.Plot(ys,
			asciigraph.Height(8),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s height (m) vs time", id)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if len(series.RopeError) > 1 {
		graph := asciigraph.Plot(series.RopeError,
			asciigraph.Height(8),
			asciigraph.Width(80),
			asciigraph.Caption("rope length error (m) vs time"),
		)
		fmt.Println(graph)
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta, series)
}
