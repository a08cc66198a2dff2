// Command siamese compares weight sharing and auxiliary losses on the
// pairwise digit comparison task.
//
// Usage:
//
//	siamese [-config configs/default.yaml] [-mode grid|basic|search] [-search fcn|cnn|alpha]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/born-ml/siamese/internal/config"
	"github.com/born-ml/siamese/internal/experiment"
)

func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (built-in defaults when empty)")
	mode := flag.String("mode", "grid", "Experiment to run: grid, basic or search")
	search := flag.String("search", "alpha", "Search to run in search mode: fcn, cnn or alpha")
	epochs := flag.Int("epochs", 0, "Override number of training epochs")
	samples := flag.Int("samples", 0, "Override number of pairs per split")
	rounds := flag.Int("rounds", 0, "Override number of independent rounds per run")
	dataDir := flag.String("data", "", "Override MNIST directory")
	synthetic := flag.Bool("synthetic", false, "Use generated digits instead of MNIST")
	seed := flag.Int64("seed", 0, "Override PRNG seed")
	logLevel := flag.String("log-level", "", "Override log level: debug, info, warn or error")
	printConfig := flag.Bool("print-config", false, "Print the effective config as YAML and exit")

	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	cfg.ApplyOverrides(config.Overrides{
		Epochs:    *epochs,
		NbSamples: *samples,
		Rounds:    *rounds,
		DataDir:   *dataDir,
		Synthetic: *synthetic,
		Seed:      *seed,
		LogLevel:  *logLevel,
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	if *printConfig {
		raw, err := cfg.Marshal()
		if err != nil {
			log.Fatalf("marshal config: %v", err)
		}
		if _, err := os.Stdout.Write(raw); err != nil {
			log.Fatalf("write config: %v", err)
		}
		return
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.Run.LogLevel)}))

	runner, err := experiment.NewRunner(cfg, os.Stdout, logger)
	if err != nil {
		log.Fatalf("create runner: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "grid":
		_, err = runner.Run(ctx)
	case "basic":
		_, err = runner.Baseline(ctx)
	case "search":
		var kind experiment.SearchKind
		if kind, err = experiment.ParseSearchKind(*search); err == nil {
			_, err = runner.Search(ctx, kind)
		}
	default:
		err = fmt.Errorf("unknown mode %q (want grid, basic or search)", *mode)
	}
	if err != nil {
		log.Fatalf("%s failed: %v", *mode, err)
	}
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
