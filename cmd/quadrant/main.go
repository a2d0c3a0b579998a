package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/outofforest/logger"
	"github.com/outofforest/parallel"
)

func main() {
	cfg := Config{}
	flags := pflag.NewFlagSet("quadrant", pflag.ExitOnError)
	flags.Uint64Var(&cfg.Side, "side", 256, "Side of the generated grid, must be a power of two")
	flags.StringVar(&cfg.Pattern, "pattern", patternGradient, "Pattern of the generated grid: gradient, checker or noise")
	flags.Int64Var(&cfg.Seed, "seed", 1, "Seed used by noise pattern")
	flags.StringVar(&cfg.Backend, "backend", backendReference, "Compression backend: reference or mean")
	flags.Uint64Var(&cfg.TrimDepth, "trim-depth", 3, "Depth at which subtrees are trimmed to their embeddings")
	flags.StringVar(&cfg.PNG, "png", "quadrant.png", "Path of the PNG file the sampled grid is written to")
	flags.StringVar(&cfg.Snapshot, "snapshot", "", "Path of the snapshot file the trimmed tree is stored in, reference table is stored next to it")
	_ = flags.Parse(os.Args[1:])

	log := logger.New(logger.DefaultConfig)
	ctx, cancel := signal.NotifyContext(logger.WithLogger(context.Background(), log), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
		spawn("generator", parallel.Continue, func(ctx context.Context) error {
			return Run(ctx, cfg)
		})
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Generation failed", zap.Error(err))
		cancel()
		os.Exit(1)
	}
}
