//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"voronoi/app"
	"voronoi/config"
	"voronoi/hal"
	"voronoi/surface"
)

func main() {
	var (
		hcfg    hal.HeadlessConfig
		wcfg    hal.WindowConfig
		cfgPath string
		metric  string
		hud     bool
		debug   bool
		outPath string
	)
	flag.BoolVar(&hcfg.Enabled, "headless", false, "Run without a window; stdin bytes act as key presses.")
	flag.IntVar(&hcfg.Hz, "hz", 60, "Tick rate in headless mode.")
	flag.Uint64Var(&hcfg.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run until a key is pressed).")
	flag.IntVar(&wcfg.Scale, "scale", 2, "Window scale factor.")
	flag.StringVar(&cfgPath, "config", "", "Session file (.toml, .yaml).")
	flag.StringVar(&metric, "metric", "", "manhattan|squaredEuclidean (overrides the config).")
	flag.BoolVar(&hud, "hud", false, "Show the refinement status line.")
	flag.BoolVar(&debug, "debug", false, "Log every frame.")
	flag.StringVar(&outPath, "out", "", "Write the last presented frame to this image (.png, .bmp, .tif) on exit.")
	flag.Parse()

	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		fatal(err)
	}
	if metric != "" {
		cfg.Metric = metric
	}
	if hud {
		cfg.HUD = true
	}
	var opts []app.Option
	if debug {
		opts = append(opts, app.WithLogLevel(slog.LevelDebug))
	}

	var session *app.App
	newApp := func(h hal.HAL) (func() error, error) {
		a, err := app.New(h, cfg, opts...)
		if err != nil {
			return nil, err
		}
		session = a
		return a.Step, nil
	}

	if hcfg.Enabled {
		hcfg.Width, hcfg.Height = cfg.Width, cfg.Height
		hcfg.Keys = os.Stdin
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		err = hal.RunHeadless(ctx, hcfg, newApp)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
	} else {
		wcfg.Width, wcfg.Height = cfg.Width, cfg.Height
		err = hal.RunWindow(wcfg, newApp)
	}
	if err != nil {
		fatal(err)
	}

	if outPath != "" && session != nil {
		if err := surface.WriteFile(outPath, session.Snapshot()); err != nil {
			fatal(err)
		}
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
