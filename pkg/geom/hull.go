package geom

import (
	stdmath "math"

	"github.com/voxhull/collider-uploader/pkg/math"
)

// ConvexHull computes the convex hull of a point set using quickhull.
// The returned mesh contains only the hull vertices, with outward-wound
// triangle faces. Inputs with fewer than four non-coplanar distinct
// points return ErrDegenerate.
//
// Hull computation runs in float64 internally; results are cast back to
// the float32 coordinates of the inputs, so hulling an already-convex
// point set reproduces it exactly.
func ConvexHull(points []math.Vec3) (Mesh, error) {
	pts := dedupe(points)
	if len(pts) < 4 {
		return Mesh{}, ErrDegenerate
	}

	h := &hullBuilder{points: pts}
	if err := h.buildSeed(); err != nil {
		return Mesh{}, err
	}
	h.expand()
	return h.result(), nil
}

// HullVolume returns the enclosed volume of a closed, outward-wound
// triangle mesh.
func HullVolume(m Mesh) float64 {
	var v float64
	for _, tri := range m.Triangles {
		a := vec3d{float64(m.Positions[tri[0]].X), float64(m.Positions[tri[0]].Y), float64(m.Positions[tri[0]].Z)}
		b := vec3d{float64(m.Positions[tri[1]].X), float64(m.Positions[tri[1]].Y), float64(m.Positions[tri[1]].Z)}
		c := vec3d{float64(m.Positions[tri[2]].X), float64(m.Positions[tri[2]].Y), float64(m.Positions[tri[2]].Z)}
		v += a.dot(b.cross(c))
	}
	return stdmath.Abs(v) / 6
}

type vec3d struct{ x, y, z float64 }

func (v vec3d) add(o vec3d) vec3d   { return vec3d{v.x + o.x, v.y + o.y, v.z + o.z} }
func (v vec3d) sub(o vec3d) vec3d   { return vec3d{v.x - o.x, v.y - o.y, v.z - o.z} }
func (v vec3d) scale(s float64) vec3d {
	return vec3d{v.x * s, v.y * s, v.z * s}
}
func (v vec3d) dot(o vec3d) float64 { return v.x*o.x + v.y*o.y + v.z*o.z }
func (v vec3d) cross(o vec3d) vec3d {
	return vec3d{v.y*o.z - v.z*o.y, v.z*o.x - v.x*o.z, v.x*o.y - v.y*o.x}
}
func (v vec3d) length() float64 { return stdmath.Sqrt(v.dot(v)) }

func toVec3d(v math.Vec3) vec3d {
	return vec3d{float64(v.X), float64(v.Y), float64(v.Z)}
}

func dedupe(points []math.Vec3) []vec3d {
	seen := make(map[math.Vec3]bool, len(points))
	out := make([]vec3d, 0, len(points))
	for _, p := range points {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, toVec3d(p))
	}
	return out
}

type hullFace struct {
	verts   [3]int
	normal  vec3d
	offset  float64
	outside []int
	dead    bool
}

func (f *hullFace) distance(p vec3d) float64 {
	return f.normal.dot(p) - f.offset
}

type hullBuilder struct {
	points   []vec3d
	faces    []*hullFace
	interior vec3d
	eps      float64
}

// buildSeed finds an initial tetrahedron from extreme points and seeds
// the face list. Returns ErrDegenerate for collinear or coplanar input.
func (h *hullBuilder) buildSeed() error {
	pts := h.points

	// Scale epsilon to the point cloud extent.
	lo, hi := pts[0], pts[0]
	for _, p := range pts {
		lo = vec3d{stdmath.Min(lo.x, p.x), stdmath.Min(lo.y, p.y), stdmath.Min(lo.z, p.z)}
		hi = vec3d{stdmath.Max(hi.x, p.x), stdmath.Max(hi.y, p.y), stdmath.Max(hi.z, p.z)}
	}
	h.eps = 1e-9 * stdmath.Max(hi.sub(lo).length(), 1)

	// Farthest pair among the axis extremes.
	i0, i1 := 0, 0
	best := -1.0
	extremes := axisExtremes(pts)
	for _, a := range extremes {
		for _, b := range extremes {
			if d := pts[a].sub(pts[b]).length(); d > best {
				best, i0, i1 = d, a, b
			}
		}
	}
	if best <= h.eps {
		return ErrDegenerate
	}

	// Farthest point from the line i0-i1.
	dir := pts[i1].sub(pts[i0])
	i2, best := -1, h.eps
	for i, p := range pts {
		d := dir.cross(p.sub(pts[i0])).length()
		if d > best {
			best, i2 = d, i
		}
	}
	if i2 < 0 {
		return ErrDegenerate
	}

	// Farthest point from the plane i0-i1-i2.
	normal := dir.cross(pts[i2].sub(pts[i0]))
	i3, best := -1, h.eps
	for i, p := range pts {
		d := stdmath.Abs(normal.dot(p.sub(pts[i0]))) / normal.length()
		if d > best {
			best, i3 = d, i
		}
	}
	if i3 < 0 {
		return ErrDegenerate
	}

	h.interior = pts[i0].add(pts[i1]).add(pts[i2]).add(pts[i3]).scale(0.25)

	h.addFace(i0, i1, i2)
	h.addFace(i0, i1, i3)
	h.addFace(i0, i2, i3)
	h.addFace(i1, i2, i3)

	seed := map[int]bool{i0: true, i1: true, i2: true, i3: true}
	for i := range pts {
		if !seed[i] {
			h.assign(i)
		}
	}
	return nil
}

func axisExtremes(pts []vec3d) []int {
	idx := [6]int{}
	for i, p := range pts {
		if p.x < pts[idx[0]].x {
			idx[0] = i
		}
		if p.x > pts[idx[1]].x {
			idx[1] = i
		}
		if p.y < pts[idx[2]].y {
			idx[2] = i
		}
		if p.y > pts[idx[3]].y {
			idx[3] = i
		}
		if p.z < pts[idx[4]].z {
			idx[4] = i
		}
		if p.z > pts[idx[5]].z {
			idx[5] = i
		}
	}
	return idx[:]
}

// addFace creates a face wound so its normal points away from the hull
// interior.
func (h *hullBuilder) addFace(a, b, c int) *hullFace {
	pa, pb, pc := h.points[a], h.points[b], h.points[c]
	normal := pb.sub(pa).cross(pc.sub(pa))
	offset := normal.dot(pa)
	if normal.dot(h.interior) > offset {
		a, b = b, a
		normal = normal.scale(-1)
		offset = -offset
	}
	f := &hullFace{verts: [3]int{a, b, c}, normal: normal, offset: offset}
	h.faces = append(h.faces, f)
	return f
}

// assign attaches a point to the first live face it lies outside of.
// Points inside every face are interior and dropped.
func (h *hullBuilder) assign(i int) {
	for _, f := range h.faces {
		if !f.dead && f.distance(h.points[i]) > h.eps {
			f.outside = append(f.outside, i)
			return
		}
	}
}

// expand iteratively lifts the farthest outside point onto the hull,
// replacing all faces visible from it with a cone of new faces over the
// horizon edges.
func (h *hullBuilder) expand() {
	for {
		var face *hullFace
		for _, f := range h.faces {
			if !f.dead && len(f.outside) > 0 {
				face = f
				break
			}
		}
		if face == nil {
			return
		}

		apex, best := -1, h.eps
		for _, i := range face.outside {
			if d := face.distance(h.points[i]); d > best {
				best, apex = d, i
			}
		}
		if apex < 0 {
			face.outside = nil
			continue
		}

		p := h.points[apex]
		var visible []*hullFace
		var orphans []int
		for _, f := range h.faces {
			if !f.dead && f.distance(p) > h.eps {
				visible = append(visible, f)
				f.dead = true
				orphans = append(orphans, f.outside...)
				f.outside = nil
			}
		}

		// Horizon: directed edges of visible faces whose twin edge is
		// not part of another visible face.
		edges := make(map[[2]int]bool)
		for _, f := range visible {
			v := f.verts
			edges[[2]int{v[0], v[1]}] = true
			edges[[2]int{v[1], v[2]}] = true
			edges[[2]int{v[2], v[0]}] = true
		}
		for _, f := range visible {
			v := f.verts
			for _, e := range [3][2]int{{v[0], v[1]}, {v[1], v[2]}, {v[2], v[0]}} {
				if edges[[2]int{e[1], e[0]}] {
					continue // interior edge of the visible region
				}
				h.addFace(e[0], e[1], apex)
			}
		}

		for _, i := range orphans {
			if i != apex {
				h.assign(i)
			}
		}
	}
}

// result compacts the live faces into a mesh. Output vertices appear in
// the order of the original input points for determinism.
func (h *hullBuilder) result() Mesh {
	used := make(map[int]bool)
	for _, f := range h.faces {
		if f.dead {
			continue
		}
		used[f.verts[0]] = true
		used[f.verts[1]] = true
		used[f.verts[2]] = true
	}

	// h.points preserves first-occurrence order of the original input,
	// so iterating it in order keeps output deterministic.
	remap := make(map[int]uint32)
	var out Mesh
	for i := range h.points {
		if used[i] {
			remap[i] = uint32(len(out.Positions))
			out.Positions = append(out.Positions, math.Vec3{
				X: float32(h.points[i].x),
				Y: float32(h.points[i].y),
				Z: float32(h.points[i].z),
			})
		}
	}
	for _, f := range h.faces {
		if f.dead {
			continue
		}
		out.Triangles = append(out.Triangles, Triangle{
			remap[f.verts[0]], remap[f.verts[1]], remap[f.verts[2]],
		})
	}
	return out
}
