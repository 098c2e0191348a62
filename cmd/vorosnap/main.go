// Command vorosnap renders a Voronoi configuration to full resolution and
// writes the result as PNG, BMP or TIFF.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"

	"voronoi/config"
	"voronoi/progressive"
	"voronoi/surface"
	"voronoi/voronoi"
)

func main() {
	var (
		cfgPath = flag.String("config", "", "Session file (.toml, .yaml).")
		metric  = flag.String("metric", "", "manhattan|squaredEuclidean (overrides the config).")
		width   = flag.Int("width", 0, "Surface width (overrides the config).")
		height  = flag.Int("height", 0, "Surface height (overrides the config).")
		markers = flag.Int("markers", -1, "Seed marker size, 0 disables (overrides the config).")
		outPath = flag.String("out", "voronoi.png", "Output image (.png, .bmp, .tif).")
		verbose = flag.Bool("v", false, "Log every frame.")
	)
	flag.Parse()

	cfg, err := config.LoadOrDefault(*cfgPath)
	if err != nil {
		fatalf("config: %v", err)
	}
	if *metric != "" {
		cfg.Metric = *metric
	}
	if *width > 0 {
		cfg.Width = *width
	}
	if *height > 0 {
		cfg.Height = *height
	}
	if *markers >= 0 {
		cfg.MarkerSize = *markers
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	img, err := render(cfg, log)
	if err != nil {
		fatalf("render: %v", err)
	}
	if err := surface.WriteFile(*outPath, img); err != nil {
		fatalf("write: %v", err)
	}
	fmt.Printf("%s: %dx%d %s\n", *outPath, cfg.Width, cfg.Height, cfg.Metric)
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}

// render runs the progressive renderer on an in-memory surface until it has
// drawn the full-resolution frame.
func render(cfg config.Config, log *slog.Logger) (*image.Paletted, error) {
	seeds, err := cfg.SeedPoints()
	if err != nil {
		return nil, err
	}
	m, err := cfg.DistanceMetric()
	if err != nil {
		return nil, err
	}
	eval, err := voronoi.NewBruteForce(seeds, m)
	if err != nil {
		return nil, err
	}
	surf, err := surface.NewIndexed(cfg.Width, cfg.Height)
	if err != nil {
		return nil, err
	}
	r, err := progressive.New(surf, eval, seeds, append(cfg.RendererOptions(), progressive.WithLogger(log))...)
	if err != nil {
		return nil, err
	}

	frames := uint64(progressive.FramesToConverge(r.StartLevel()))
	done := progressive.StopFunc(func() bool { return surf.Frames() >= frames })
	st, err := r.Run(context.Background(), done, r.Start())
	if err != nil {
		return nil, err
	}
	if !st.Converged {
		return nil, fmt.Errorf("stopped at level %d", st.Level)
	}
	return surf.Snapshot(), nil
}
