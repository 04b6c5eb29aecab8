package scene

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/voxhull/collider-uploader/internal/logger"
	"github.com/voxhull/collider-uploader/pkg/geom"
	"github.com/voxhull/collider-uploader/pkg/math"
)

// Collect walks every scene in the document and returns one raw mesh
// body per mesh-bearing node, in traversal order. The uniform scale is
// the implicit top-level ancestor of every root node.
//
// Node world transforms compose top-down (ancestor * local); bodies
// from different nodes are independent, so sibling order only fixes
// output order. Buffer read failures abort the collection.
func (d *Document) Collect(scale float32) ([]geom.NamedBody, error) {
	seed := math.UniformScale(scale)

	var bodies []geom.NamedBody
	for _, sc := range d.doc.Scenes {
		for _, root := range sc.Nodes {
			collected, err := d.collectNode(root, seed)
			if err != nil {
				return nil, err
			}
			bodies = append(bodies, collected...)
		}
	}
	return bodies, nil
}

// collectNode computes the node's world transform, gathers its
// children's bodies, then assembles the node's own mesh if it has one.
func (d *Document) collectNode(nodeIdx uint32, ancestor math.Mat4) ([]geom.NamedBody, error) {
	node := d.doc.Nodes[nodeIdx]
	world := ancestor.Mul(localTransform(node))

	var bodies []geom.NamedBody
	for _, child := range node.Children {
		collected, err := d.collectNode(child, world)
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, collected...)
	}

	if node.Mesh != nil {
		mesh, err := d.assembleMesh(*node.Mesh, world)
		if err != nil {
			return nil, err
		}
		name := node.Name
		if name == "" {
			name = PlaceholderName
		}
		bodies = append(bodies, geom.NamedBody{Name: name, Kind: geom.BodyMesh, Mesh: mesh})
	}

	logger.L().Debug("visited node",
		zap.String("name", nodeName(node.Name)),
		zap.Int("bodies", len(bodies)),
	)
	return bodies, nil
}

func nodeName(name string) string {
	if name == "" {
		return PlaceholderName
	}
	return name
}

// assembleMesh merges a mesh's primitives into one world-space buffer.
// The running vertex offset keeps each primitive's triangle indices
// pointing at its own positions after concatenation. Primitives that
// contribute nothing are skipped individually.
func (d *Document) assembleMesh(meshIdx uint32, world math.Mat4) (geom.Mesh, error) {
	var out geom.Mesh
	mesh := d.doc.Meshes[meshIdx]

	for i, prim := range mesh.Primitives {
		posIdx, hasPos := prim.Attributes["POSITION"]

		var positions []math.Vec3
		if hasPos {
			var err error
			positions, err = d.readPositions(int(posIdx))
			if err != nil {
				return geom.Mesh{}, err
			}
		}

		var indices []uint32
		if prim.Indices != nil {
			var err error
			indices, err = d.readIndices(int(*prim.Indices))
			if err != nil {
				return geom.Mesh{}, err
			}
		}

		offset := uint32(len(out.Positions))
		tris, ok := triangulate(positions, indices, prim.Mode, offset)
		if !ok {
			logger.L().Debug("skipping primitive",
				zap.Uint32("mesh", meshIdx),
				zap.Int("primitive", i),
				zap.Int("mode", int(prim.Mode)),
				zap.Bool("has_positions", len(positions) > 0),
			)
			continue
		}

		for _, p := range positions {
			out.Positions = append(out.Positions, world.TransformVec3(p))
		}
		out.Triangles = append(out.Triangles, tris...)
	}

	// A malformed index stream must not leave this package; raw bodies
	// are uploaded without any later validation pass.
	if err := out.Validate(); err != nil {
		return geom.Mesh{}, fmt.Errorf("mesh %d: %w", meshIdx, err)
	}
	return out, nil
}
