// Package geom provides triangle mesh types, connected-component splitting,
// convex hulls, and approximate convex decomposition.
package geom

import (
	"errors"
	"fmt"

	"github.com/voxhull/collider-uploader/pkg/math"
)

var (
	ErrIndexOutOfRange = errors.New("triangle index out of range")
	ErrDegenerate      = errors.New("degenerate point set")
)

// Triangle is an ordered triple of indices into a position list.
// Winding is preserved from source data but not enforced.
type Triangle [3]uint32

// Mesh is an indexed triangle mesh. Every index in every triangle
// must be below len(Positions).
type Mesh struct {
	Positions []math.Vec3
	Triangles []Triangle
}

// Validate checks the mesh index invariant.
func (m Mesh) Validate() error {
	n := uint32(len(m.Positions))
	for i, tri := range m.Triangles {
		for _, idx := range tri {
			if idx >= n {
				return fmt.Errorf("triangle %d references vertex %d of %d: %w", i, idx, n, ErrIndexOutOfRange)
			}
		}
	}
	return nil
}

// BodyKind distinguishes raw mesh bodies from convex hull bodies.
type BodyKind int

const (
	// BodyMesh is a general, possibly non-convex collision mesh.
	BodyMesh BodyKind = iota
	// BodyHull is a convex hull; consumers only need its points.
	BodyHull
)

// NamedBody is one output unit of the pipeline: a label plus geometry.
// Several hull bodies may share one name when a source mesh decomposes
// into multiple convex parts.
type NamedBody struct {
	Name string
	Kind BodyKind
	Mesh Mesh
}

// ConvexHullSet is the result of decomposing one source mesh: a set of
// convex hulls sharing the source name.
type ConvexHullSet struct {
	Name  string
	Hulls []Mesh
}

// Bodies flattens the hull set into individual named bodies.
func (s ConvexHullSet) Bodies() []NamedBody {
	bodies := make([]NamedBody, 0, len(s.Hulls))
	for _, h := range s.Hulls {
		bodies = append(bodies, NamedBody{Name: s.Name, Kind: BodyHull, Mesh: h})
	}
	return bodies
}
