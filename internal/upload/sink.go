// Package upload delivers finished collision bodies to a remote sink,
// one body per call.
package upload

import (
	"context"

	"go.uber.org/zap"

	"github.com/voxhull/collider-uploader/internal/logger"
	"github.com/voxhull/collider-uploader/pkg/geom"
)

// Sink consumes finished named bodies one at a time. Implementations
// report success or failure per call; callers decide whether a failure
// stops the batch.
type Sink interface {
	Upload(ctx context.Context, body geom.NamedBody) error
	Close() error
}

// bodyFrame is the wire format for one body. Hull bodies carry points
// only; raw mesh bodies also carry their triangle index triples.
type bodyFrame struct {
	Type      string       `json:"type"`
	Name      string       `json:"name"`
	Points    [][3]float32 `json:"points"`
	Triangles [][3]uint32  `json:"triangles,omitempty"`
}

// ackFrame is the per-call reply from the sink.
type ackFrame struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

const frameTypeUploadBody = "upload_body"

func frameFromBody(body geom.NamedBody) bodyFrame {
	frame := bodyFrame{
		Type:   frameTypeUploadBody,
		Name:   body.Name,
		Points: make([][3]float32, 0, len(body.Mesh.Positions)),
	}
	for _, p := range body.Mesh.Positions {
		frame.Points = append(frame.Points, [3]float32{p.X, p.Y, p.Z})
	}
	if body.Kind == geom.BodyMesh {
		frame.Triangles = make([][3]uint32, 0, len(body.Mesh.Triangles))
		for _, tri := range body.Mesh.Triangles {
			frame.Triangles = append(frame.Triangles, [3]uint32(tri))
		}
	}
	return frame
}

// LogSink logs each body instead of delivering it. Used for dry runs.
type LogSink struct{}

// Upload implements Sink.
func (LogSink) Upload(_ context.Context, body geom.NamedBody) error {
	logger.L().Info("dry-run body",
		zap.String("name", body.Name),
		zap.Int("points", len(body.Mesh.Positions)),
		zap.Int("triangles", len(body.Mesh.Triangles)),
		zap.Bool("hull", body.Kind == geom.BodyHull),
	)
	return nil
}

// Close implements Sink.
func (LogSink) Close() error { return nil }
