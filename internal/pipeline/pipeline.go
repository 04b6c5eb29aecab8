package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/voxhull/collider-uploader/internal/config"
	"github.com/voxhull/collider-uploader/internal/logger"
	"github.com/voxhull/collider-uploader/internal/scene"
	"github.com/voxhull/collider-uploader/internal/upload"
)

// Pipeline runs the load, process, upload sequence for one document.
type Pipeline struct {
	cfg      *config.Config
	strategy Strategy
	sink     upload.Sink
}

// New wires a pipeline from config. The sink is wrapped with retry
// handling when the config asks for retries.
func New(cfg *config.Config, sink upload.Sink) (*Pipeline, error) {
	strategy, err := ForConfig(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Upload.Retries > 0 {
		sink = &upload.Retrier{
			Sink:    sink,
			Retries: cfg.Upload.Retries,
			Delay:   cfg.Upload.RetryDelay,
		}
	}

	return &Pipeline{cfg: cfg, strategy: strategy, sink: sink}, nil
}

// Run executes the pipeline. An unreadable document is not an error:
// the world simply has no collision geometry, and the report says so.
// Missing buffer payloads are different, geometry that should exist
// cannot be read, so those abort the run.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	rep := &Report{}

	doc, err := scene.Open(p.cfg.Document.Path)
	if err != nil {
		if errors.Is(err, scene.ErrBufferData) {
			return nil, err
		}
		logger.L().Error("document unreadable, continuing without collision geometry",
			zap.String("path", p.cfg.Document.Path),
			zap.Error(err),
		)
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("document unreadable: %v", err))
		return rep, nil
	}

	bodies, err := doc.Collect(p.cfg.Document.Scale)
	if err != nil {
		return nil, fmt.Errorf("collecting meshes: %w", err)
	}
	rep.Collected = len(bodies)
	logBodies("collected meshes", bodies)

	processed, err := p.strategy.Process(ctx, bodies, rep)
	if err != nil {
		return nil, fmt.Errorf("strategy %s: %w", p.strategy.Name(), err)
	}
	rep.Bodies = len(processed)
	logBodies("processed bodies", processed)

	for _, body := range processed {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := p.sink.Upload(ctx, body); err != nil {
			rep.FailUpload(body.Name, err)
			continue
		}
		rep.Uploaded++
	}

	logger.L().Info("pipeline finished",
		zap.Int("collected", rep.Collected),
		zap.Int("bodies", rep.Bodies),
		zap.Int("uploaded", rep.Uploaded),
		zap.Int("skipped_components", rep.SkippedComponents),
		zap.Int("failed_uploads", len(rep.FailedUploads)),
	)
	return rep, nil
}
