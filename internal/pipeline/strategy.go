// Package pipeline turns a scene document into collision bodies and
// delivers them to an upload sink. A Strategy decides how raw meshes
// become bodies; the Pipeline owns the load, process, upload sequence.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/voxhull/collider-uploader/internal/config"
	"github.com/voxhull/collider-uploader/internal/logger"
	"github.com/voxhull/collider-uploader/pkg/geom"
)

// Strategy converts collected raw meshes into the bodies to upload.
type Strategy interface {
	Name() string
	Process(ctx context.Context, bodies []geom.NamedBody, rep *Report) ([]geom.NamedBody, error)
}

// ForConfig builds the strategy the config names. Load validates the
// strategy name, so an unknown one here is a programming error.
func ForConfig(cfg *config.Config) (Strategy, error) {
	switch cfg.Decompose.Strategy {
	case config.StrategyRaw:
		return RawPassthrough{}, nil
	case config.StrategyDecompose:
		return &ConvexDecomposer{
			Resolution: cfg.Decompose.Resolution,
			Concavity:  cfg.Decompose.Concavity,
			PreferFast: cfg.Decompose.PreferFast,
			Workers:    cfg.Decompose.Workers,
		}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", cfg.Decompose.Strategy)
	}
}

// RawPassthrough uploads collected meshes as-is, triangles included.
type RawPassthrough struct{}

func (RawPassthrough) Name() string { return config.StrategyRaw }

func (RawPassthrough) Process(_ context.Context, bodies []geom.NamedBody, _ *Report) ([]geom.NamedBody, error) {
	return bodies, nil
}

// ConvexDecomposer splits each mesh into connected components,
// decomposes every component into approximately convex parts, and
// emits one hull body per part. All hulls from one source mesh share
// its name.
type ConvexDecomposer struct {
	Resolution int
	Concavity  float64
	PreferFast bool
	Workers    int // 0 means one worker per CPU
}

func (c *ConvexDecomposer) Name() string { return config.StrategyDecompose }

func (c *ConvexDecomposer) options() geom.DecomposeOptions {
	opt := geom.DefaultDecomposeOptions()
	if c.Resolution > 0 {
		opt.Resolution = c.Resolution
	}
	if c.Concavity > 0 {
		opt.Concavity = c.Concavity
	}
	opt.PreferFast = c.PreferFast
	return opt
}

func (c *ConvexDecomposer) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// componentJob carries one connected component through the worker pool.
// Results are written back by index so output order never depends on
// worker scheduling.
type componentJob struct {
	index int
	comp  geom.Mesh
}

type componentResult struct {
	hulls []geom.Mesh
	err   error
}

func (c *ConvexDecomposer) Process(ctx context.Context, bodies []geom.NamedBody, rep *Report) ([]geom.NamedBody, error) {
	opt := c.options()

	var jobs []componentJob
	compsPerBody := make([][]geom.Mesh, len(bodies))
	for i, body := range bodies {
		comps := geom.SplitComponents(body.Mesh)
		compsPerBody[i] = comps
		for _, comp := range comps {
			jobs = append(jobs, componentJob{index: len(jobs), comp: comp})
		}
	}

	results := make([]componentResult, len(jobs))
	jobCh := make(chan componentJob)

	var wg sync.WaitGroup
	for w := 0; w < c.workers(); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				results[job.index] = c.processComponent(job.comp, opt)
			}
		}()
	}

	feed := func() error {
		defer close(jobCh)
		for _, job := range jobs {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case jobCh <- job:
			}
		}
		return nil
	}
	feedErr := feed()
	wg.Wait()
	if feedErr != nil {
		return nil, feedErr
	}

	var out []geom.NamedBody
	cursor := 0
	for i, body := range bodies {
		set := geom.ConvexHullSet{Name: body.Name}
		for range compsPerBody[i] {
			res := results[cursor]
			cursor++
			if res.err != nil {
				rep.SkipComponent(body.Name, res.err)
				continue
			}
			set.Hulls = append(set.Hulls, res.hulls...)
		}
		out = append(out, set.Bodies()...)
	}
	return out, nil
}

// processComponent decomposes one connected component and hulls each
// part. Point sets too small for a hull are dropped silently; a failed
// hull fails the whole component so the caller can skip it.
func (c *ConvexDecomposer) processComponent(comp geom.Mesh, opt geom.DecomposeOptions) componentResult {
	parts, err := geom.Decompose(comp, opt)
	if err != nil {
		return componentResult{err: fmt.Errorf("decomposing: %w", err)}
	}

	var hulls []geom.Mesh
	for _, points := range parts {
		if len(points) < 4 {
			continue
		}
		hull, err := geom.ConvexHull(points)
		if err != nil {
			return componentResult{err: fmt.Errorf("hulling %d points: %w", len(points), err)}
		}
		hulls = append(hulls, hull)
	}
	return componentResult{hulls: hulls}
}

// logBodies is a debug aid for stage output.
func logBodies(stage string, bodies []geom.NamedBody) {
	total := 0
	for _, b := range bodies {
		total += len(b.Mesh.Positions)
	}
	logger.L().Debug(stage,
		zap.Int("bodies", len(bodies)),
		zap.Int("points", total),
	)
}
