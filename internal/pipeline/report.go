package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/voxhull/collider-uploader/internal/logger"
)

// Report aggregates what one run collected, produced, and delivered.
// Skips and failed uploads are recorded here instead of aborting the
// run, so one bad mesh never blocks the rest of the scene.
type Report struct {
	Collected         int // raw meshes collected from the document
	Bodies            int // bodies the strategy produced
	Uploaded          int
	SkippedComponents int
	FailedUploads     []string // body names whose delivery failed after retries
	Warnings          []string
}

// SkipComponent records a component that could not be decomposed.
func (r *Report) SkipComponent(source string, err error) {
	r.SkippedComponents++
	r.Warnings = append(r.Warnings, fmt.Sprintf("component of %q skipped: %v", source, err))
	logger.L().Warn("skipping component",
		zap.String("source", source),
		zap.Error(err),
	)
}

// FailUpload records a body whose delivery failed after all retries.
func (r *Report) FailUpload(name string, err error) {
	r.FailedUploads = append(r.FailedUploads, name)
	r.Warnings = append(r.Warnings, fmt.Sprintf("upload of %q failed: %v", name, err))
	logger.L().Error("upload failed",
		zap.String("name", name),
		zap.Error(err),
	)
}

// Clean reports whether the run finished with nothing skipped or failed.
func (r *Report) Clean() bool {
	return r.SkippedComponents == 0 && len(r.FailedUploads) == 0
}
