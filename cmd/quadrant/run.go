package main

import (
	"context"
	"encoding/hex"
	"image"
	"image/png"
	"math/rand"
	"os"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/outofforest/logger"
	"github.com/outofforest/quadrant"
	"github.com/outofforest/quadrant/mean"
	"github.com/outofforest/quadrant/metrics"
	"github.com/outofforest/quadrant/persistent"
	"github.com/outofforest/quadrant/reference"
)

const (
	patternGradient = "gradient"
	patternChecker  = "checker"
	patternNoise    = "noise"

	backendReference = "reference"
	backendMean      = "mean"

	checkerSize = 8

	// TableSuffix is appended to the snapshot path to get the path of reference intern table.
	TableSuffix = ".table"
)

// Config stores generator configuration.
type Config struct {
	Side      uint64
	Pattern   string
	Seed      int64
	Backend   string
	TrimDepth uint64
	PNG       string
	Snapshot  string
}

// Run generates the grid, builds the tree, trims it and writes the sampled result.
func Run(ctx context.Context, cfg Config) error {
	grid, err := Generate(cfg)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	observer, err := metrics.New(registry)
	if err != nil {
		return err
	}

	switch cfg.Backend {
	case backendReference:
		c := reference.NewContext[uint8](observer)
		err = process(ctx, cfg, c, reference.SharedTable(c), grid, func(path string) error {
			return persistent.SaveTableFile(path+TableSuffix, *c.State())
		})
	case backendMean:
		err = process(ctx, cfg, mean.NewContext(observer), func() mean.State { return mean.State{} }, grid, nil)
	default:
		return errors.Errorf("unknown backend %q", cfg.Backend)
	}
	if err != nil {
		return err
	}

	return logMetrics(ctx, registry)
}

// Generate returns grid of the configured pattern.
func Generate(cfg Config) ([]uint8, error) {
	side := int(cfg.Side)
	if side == 0 {
		return nil, errors.New("side must be positive")
	}

	switch cfg.Pattern {
	case patternGradient:
		return lo.Times(side*side, func(i int) uint8 {
			if side == 1 {
				return 0
			}
			return uint8((i%side + i/side) * 0xff / (2 * (side - 1)))
		}), nil
	case patternChecker:
		return lo.Times(side*side, func(i int) uint8 {
			return uint8((i%side/checkerSize+i/side/checkerSize)%2) * 0xff
		}), nil
	case patternNoise:
		//nolint:gosec
		r := rand.New(rand.NewSource(cfg.Seed))
		return lo.Times(side*side, func(int) uint8 {
			return uint8(r.Intn(0x100))
		}), nil
	default:
		return nil, errors.Errorf("unknown pattern %q", cfg.Pattern)
	}
}

func process[B quadrant.Embeddable, S any](
	ctx context.Context,
	cfg Config,
	c *quadrant.Context[uint8, B, S],
	forkState func() S,
	grid []uint8,
	saveState func(path string) error,
) error {
	log := logger.Get(ctx)

	n, err := quadrant.BuildParallel(ctx, c, forkState, grid)
	if err != nil {
		return err
	}
	log.Info("Tree built", zap.Uint64("depth", n.Depth), zap.String("digest", digest(n)))

	n, err = c.TrimBelow(n, cfg.TrimDepth)
	if err != nil {
		return err
	}
	log.Info("Tree trimmed", zap.Uint64("trimDepth", cfg.TrimDepth), zap.String("digest", digest(n)))

	if cfg.Snapshot != "" {
		if err := persistent.SaveFile(cfg.Snapshot, n); err != nil {
			return err
		}
		if saveState != nil {
			if err := saveState(cfg.Snapshot); err != nil {
				return err
			}
		}
		log.Info("Snapshot stored", zap.String("path", cfg.Snapshot))
	}

	n, raster, err := c.SampleRaster(n)
	if err != nil {
		return err
	}
	log.Info("Tree sampled", zap.String("digest", digest(n)))

	if err := writePNG(cfg.PNG, int(n.Side()), raster); err != nil {
		return err
	}
	log.Info("Image stored", zap.String("path", cfg.PNG))

	return nil
}

func digest[A, B quadrant.Embeddable](n quadrant.Node[A, B]) string {
	d := persistent.Digest(n)
	return hex.EncodeToString(d[:])
}

func writePNG(path string, side int, raster []quadrant.Color) error {
	img := image.NewRGBA(image.Rect(0, 0, side, side))
	for i, color := range raster {
		copy(img.Pix[4*i:], color[:])
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return errors.WithStack(err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return errors.Wrapf(err, "encoding image %q failed", path)
	}
	return errors.WithStack(file.Close())
}

func logMetrics(ctx context.Context, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return errors.WithStack(err)
	}

	log := logger.Get(ctx)
	for _, family := range families {
		for _, m := range family.GetMetric() {
			fields := []zap.Field{zap.Float64("value", m.GetCounter().GetValue())}
			for _, label := range m.GetLabel() {
				fields = append(fields, zap.String(label.GetName(), label.GetValue()))
			}
			log.Info(family.GetName(), fields...)
		}
	}
	return nil
}
