package scene

import (
	"github.com/qmuntal/gltf"

	"github.com/voxhull/collider-uploader/pkg/geom"
	"github.com/voxhull/collider-uploader/pkg/math"
)

// triangulate turns one primitive's position stream, optional index
// stream, and topology into triangle index triples. offset shifts every
// emitted index so multiple primitives can share one contiguous vertex
// space. ok is false when the primitive contributes nothing: no
// positions, or a topology this pipeline does not read.
//
// When an explicit index list is present it is consumed three at a time
// regardless of declared topology, collapsing strip and fan semantics
// to flat triangle lists. That mirrors the behavior collision assets
// were authored against; reconstructing true strip/fan adjacency here
// would change every existing upload.
func triangulate(positions []math.Vec3, indices []uint32, mode gltf.PrimitiveMode, offset uint32) (tris []geom.Triangle, ok bool) {
	if len(positions) == 0 {
		return nil, false
	}

	switch mode {
	case gltf.PrimitiveTriangles, gltf.PrimitiveTriangleStrip, gltf.PrimitiveTriangleFan:
	default:
		return nil, false
	}

	if len(indices) > 0 {
		for i := 0; i+2 < len(indices); i += 3 {
			tris = append(tris, geom.Triangle{
				indices[i] + offset,
				indices[i+1] + offset,
				indices[i+2] + offset,
			})
		}
		return tris, true
	}

	n := uint32(len(positions))
	switch mode {
	case gltf.PrimitiveTriangles:
		// Sequential triples; a trailing partial group is dropped.
		for i := uint32(0); i+2 < n; i += 3 {
			tris = append(tris, geom.Triangle{i + offset, i + 1 + offset, i + 2 + offset})
		}
	case gltf.PrimitiveTriangleStrip:
		// Alternate winding so orientation stays consistent along the strip.
		for i := uint32(0); i+2 < n; i++ {
			if i%2 == 0 {
				tris = append(tris, geom.Triangle{i + offset, i + 1 + offset, i + 2 + offset})
			} else {
				tris = append(tris, geom.Triangle{i + offset, i + 2 + offset, i + 1 + offset})
			}
		}
	case gltf.PrimitiveTriangleFan:
		center := offset
		for i := uint32(1); i+1 < n; i++ {
			tris = append(tris, geom.Triangle{center, i + offset, i + 1 + offset})
		}
	}
	return tris, true
}
