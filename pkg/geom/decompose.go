package geom

import (
	stdmath "math"

	"github.com/voxhull/collider-uploader/pkg/math"
)

// DecomposeOptions configures approximate convex decomposition.
type DecomposeOptions struct {
	// Resolution is the voxel count along the longest axis. Higher is
	// finer and slower.
	Resolution int
	// Concavity is the relative volume tolerance: a part is accepted
	// when (hullVolume - partVolume) / hullVolume falls below it.
	// Lower forces more, tighter-fitting convex pieces.
	Concavity float64
	// PreferFast splits parts at the midpoint of their longest axis
	// instead of scanning candidate planes.
	PreferFast bool
}

// DefaultDecomposeOptions returns the standard decomposition parameters.
func DefaultDecomposeOptions() DecomposeOptions {
	return DecomposeOptions{
		Resolution: 256,
		Concavity:  0.0001,
		PreferFast: true,
	}
}

// maxSplitDepth bounds the recursion; 2^12 parts is already far beyond
// what any collision mesh needs.
const maxSplitDepth = 12

// Decompose approximates a (possibly concave) mesh with convex point
// sets whose hulls cover the source volume within the concavity
// tolerance. Each returned part is a vertex set ready for ConvexHull.
// Parts too degenerate to form a volume are dropped without error.
//
// The mesh is voxelized at the configured resolution, solidified by
// flood-filling the exterior, and recursively split along axis-aligned
// planes until every part's voxel volume is close enough to its hull
// volume.
func Decompose(m Mesh, opt DecomposeOptions) ([][]math.Vec3, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if len(m.Triangles) == 0 {
		return nil, nil
	}
	if opt.Resolution < 2 {
		opt.Resolution = 2
	}

	grid, ok := voxelize(m, opt.Resolution)
	if !ok {
		// Flat or point-like geometry has no volume to decompose; hand
		// the raw vertex set to the hull stage and let it decide.
		return [][]math.Vec3{m.Positions}, nil
	}

	root := grid.solidCells()
	if len(root) == 0 {
		return [][]math.Vec3{m.Positions}, nil
	}

	d := &decomposer{grid: grid, mesh: m, opt: opt}
	d.split(root, 0)

	parts := make([][]math.Vec3, 0, len(d.parts))
	for _, p := range d.parts {
		if pts := d.partPoints(p); len(pts) >= 4 {
			parts = append(parts, pts)
		}
	}
	return parts, nil
}

// voxelGrid is a dense boolean occupancy grid with one empty padding
// cell on every side so the exterior is a single connected region.
type voxelGrid struct {
	nx, ny, nz int
	h          float64
	origin     vec3d
	solid      []bool
}

func (g *voxelGrid) index(x, y, z int) int {
	return x + g.nx*(y+g.ny*z)
}

func (g *voxelGrid) coords(idx int) (int, int, int) {
	x := idx % g.nx
	y := (idx / g.nx) % g.ny
	z := idx / (g.nx * g.ny)
	return x, y, z
}

func (g *voxelGrid) center(idx int) vec3d {
	x, y, z := g.coords(idx)
	return g.origin.add(vec3d{
		(float64(x) + 0.5) * g.h,
		(float64(y) + 0.5) * g.h,
		(float64(z) + 0.5) * g.h,
	})
}

// cellOf maps a world-space point to its grid cell, clamped to bounds.
func (g *voxelGrid) cellOf(p vec3d) int {
	rel := p.sub(g.origin)
	x := clamp(int(rel.x/g.h), 0, g.nx-1)
	y := clamp(int(rel.y/g.h), 0, g.ny-1)
	z := clamp(int(rel.z/g.h), 0, g.nz-1)
	return g.index(x, y, z)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// voxelize rasterizes the mesh surface into a grid and fills the
// interior by flood-filling the exterior from the padding shell.
// Returns ok=false when the mesh has no usable extent.
func voxelize(m Mesh, resolution int) (*voxelGrid, bool) {
	lo := toVec3d(m.Positions[0])
	hi := lo
	for _, p := range m.Positions {
		v := toVec3d(p)
		lo = vec3d{stdmath.Min(lo.x, v.x), stdmath.Min(lo.y, v.y), stdmath.Min(lo.z, v.z)}
		hi = vec3d{stdmath.Max(hi.x, v.x), stdmath.Max(hi.y, v.y), stdmath.Max(hi.z, v.z)}
	}
	extent := hi.sub(lo)
	maxExtent := stdmath.Max(extent.x, stdmath.Max(extent.y, extent.z))
	if maxExtent <= 0 {
		return nil, false
	}

	h := maxExtent / float64(resolution)
	g := &voxelGrid{
		nx:     int(stdmath.Ceil(extent.x/h)) + 2,
		ny:     int(stdmath.Ceil(extent.y/h)) + 2,
		nz:     int(stdmath.Ceil(extent.z/h)) + 2,
		h:      h,
		origin: lo.sub(vec3d{h, h, h}),
	}
	g.solid = make([]bool, g.nx*g.ny*g.nz)

	for _, tri := range m.Triangles {
		a := toVec3d(m.Positions[tri[0]])
		b := toVec3d(m.Positions[tri[1]])
		c := toVec3d(m.Positions[tri[2]])
		g.markTriangle(a, b, c, 0)
	}

	g.fillInterior()
	return g, true
}

// markTriangle marks cells touched by a triangle, subdividing until the
// fragments are smaller than a cell.
func (g *voxelGrid) markTriangle(a, b, c vec3d, depth int) {
	g.solid[g.cellOf(a)] = true
	g.solid[g.cellOf(b)] = true
	g.solid[g.cellOf(c)] = true

	ab := b.sub(a).length()
	bc := c.sub(b).length()
	ca := a.sub(c).length()
	if depth > 24 || (ab < g.h/2 && bc < g.h/2 && ca < g.h/2) {
		centroid := a.add(b).add(c).scale(1.0 / 3.0)
		g.solid[g.cellOf(centroid)] = true
		return
	}

	// Split the longest edge and recurse into both halves.
	switch {
	case ab >= bc && ab >= ca:
		mid := a.add(b).scale(0.5)
		g.markTriangle(a, mid, c, depth+1)
		g.markTriangle(mid, b, c, depth+1)
	case bc >= ab && bc >= ca:
		mid := b.add(c).scale(0.5)
		g.markTriangle(a, b, mid, depth+1)
		g.markTriangle(a, mid, c, depth+1)
	default:
		mid := c.add(a).scale(0.5)
		g.markTriangle(a, b, mid, depth+1)
		g.markTriangle(mid, b, c, depth+1)
	}
}

// fillInterior flood-fills the exterior from cell (0,0,0) (guaranteed
// empty by padding) and marks everything unreached as solid.
func (g *voxelGrid) fillInterior() {
	outside := make([]bool, len(g.solid))
	queue := []int{g.index(0, 0, 0)}
	outside[queue[0]] = true

	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		x, y, z := g.coords(idx)
		for _, n := range [6][3]int{
			{x - 1, y, z}, {x + 1, y, z},
			{x, y - 1, z}, {x, y + 1, z},
			{x, y, z - 1}, {x, y, z + 1},
		} {
			if n[0] < 0 || n[0] >= g.nx || n[1] < 0 || n[1] >= g.ny || n[2] < 0 || n[2] >= g.nz {
				continue
			}
			ni := g.index(n[0], n[1], n[2])
			if !outside[ni] && !g.solid[ni] {
				outside[ni] = true
				queue = append(queue, ni)
			}
		}
	}

	for i := range g.solid {
		if !outside[i] {
			g.solid[i] = true
		}
	}
}

// solidCells lists all solid cell indices in grid order.
func (g *voxelGrid) solidCells() []int {
	var cells []int
	for i, s := range g.solid {
		if s {
			cells = append(cells, i)
		}
	}
	return cells
}

// part is an emitted convex candidate: a set of solid cells and the
// split depth it was produced at (0 means the whole component survived
// unsplit).
type part struct {
	cells []int
	depth int
}

type decomposer struct {
	grid  *voxelGrid
	mesh  Mesh
	opt   DecomposeOptions
	parts []part
}

func (d *decomposer) emit(cells []int, depth int) {
	d.parts = append(d.parts, part{cells: cells, depth: depth})
}

// split recursively bisects a cell set until its hull volume matches its
// voxel volume within tolerance.
func (d *decomposer) split(cells []int, depth int) {
	if depth >= maxSplitDepth || len(cells) <= 8 {
		d.emit(cells, depth)
		return
	}
	if d.concavity(cells) <= d.opt.Concavity {
		d.emit(cells, depth)
		return
	}

	axis, lo, hi := d.longestAxis(cells)
	if hi-lo < 1 {
		d.emit(cells, depth)
		return
	}

	var fractions []float64
	if d.opt.PreferFast {
		fractions = []float64{0.5}
	} else {
		fractions = []float64{0.3, 0.4, 0.5, 0.6, 0.7}
	}

	var bestA, bestB []int
	bestScore := stdmath.Inf(1)
	for _, f := range fractions {
		cut := lo + int(float64(hi-lo)*f)
		if cut < lo {
			cut = lo
		}
		a, b := d.partition(cells, axis, cut)
		if len(a) == 0 || len(b) == 0 {
			continue
		}
		score := d.hullVolumeOf(a) + d.hullVolumeOf(b)
		if score < bestScore {
			bestScore, bestA, bestB = score, a, b
		}
	}
	if bestA == nil {
		d.emit(cells, depth)
		return
	}

	d.split(bestA, depth+1)
	d.split(bestB, depth+1)
}

// longestAxis returns the axis (0=X 1=Y 2=Z) with the widest cell range
// and that range's bounds.
func (d *decomposer) longestAxis(cells []int) (axis, lo, hi int) {
	min := [3]int{d.grid.nx, d.grid.ny, d.grid.nz}
	max := [3]int{-1, -1, -1}
	for _, c := range cells {
		x, y, z := d.grid.coords(c)
		for i, v := range [3]int{x, y, z} {
			if v < min[i] {
				min[i] = v
			}
			if v > max[i] {
				max[i] = v
			}
		}
	}
	axis = 0
	for i := 1; i < 3; i++ {
		if max[i]-min[i] > max[axis]-min[axis] {
			axis = i
		}
	}
	return axis, min[axis], max[axis]
}

// partition splits cells at the given coordinate along axis: cells with
// coordinate <= cut go left.
func (d *decomposer) partition(cells []int, axis, cut int) (left, right []int) {
	for _, c := range cells {
		x, y, z := d.grid.coords(c)
		v := [3]int{x, y, z}[axis]
		if v <= cut {
			left = append(left, c)
		} else {
			right = append(right, c)
		}
	}
	return left, right
}

// concavity measures how far a cell set is from convex: the relative
// difference between its hull volume and its voxel volume. The hull is
// taken over boundary cell corners, so it covers every cell of the set
// and the difference cannot go negative from measuring mismatched
// shapes; a convex cell set scores near zero.
func (d *decomposer) concavity(cells []int) float64 {
	hullVol := d.hullVolumeOf(cells)
	if hullVol <= 0 {
		return 0
	}
	voxelVol := float64(len(cells)) * d.grid.h * d.grid.h * d.grid.h
	c := (hullVol - voxelVol) / hullVol
	if c < 0 {
		return 0
	}
	return c
}

func (d *decomposer) hullVolumeOf(cells []int) float64 {
	hull, err := ConvexHull(d.shellCorners(cells))
	if err != nil {
		return 0
	}
	return HullVolume(hull)
}

// boundaryCells returns the cells of the set with at least one face
// neighbor outside the set.
func (d *decomposer) boundaryCells(cells []int) []int {
	inSet := make(map[int]bool, len(cells))
	for _, c := range cells {
		inSet[c] = true
	}

	var out []int
	for _, c := range cells {
		x, y, z := d.grid.coords(c)
		for _, n := range [6][3]int{
			{x - 1, y, z}, {x + 1, y, z},
			{x, y - 1, z}, {x, y + 1, z},
			{x, y, z - 1}, {x, y, z + 1},
		} {
			if n[0] < 0 || n[0] >= d.grid.nx || n[1] < 0 || n[1] >= d.grid.ny || n[2] < 0 || n[2] >= d.grid.nz ||
				!inSet[d.grid.index(n[0], n[1], n[2])] {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// shellCorners returns all eight corners of every boundary cell. The
// convex hull of these corners encloses the whole cell set, never less,
// which keeps hull volume comparable to voxel volume.
func (d *decomposer) shellCorners(cells []int) []math.Vec3 {
	var pts []math.Vec3
	for _, c := range d.boundaryCells(cells) {
		x, y, z := d.grid.coords(c)
		for dx := 0; dx <= 1; dx++ {
			for dy := 0; dy <= 1; dy++ {
				for dz := 0; dz <= 1; dz++ {
					p := d.grid.origin.add(vec3d{
						float64(x+dx) * d.grid.h,
						float64(y+dy) * d.grid.h,
						float64(z+dz) * d.grid.h,
					})
					pts = append(pts, math.Vec3{X: float32(p.x), Y: float32(p.y), Z: float32(p.z)})
				}
			}
		}
	}
	return pts
}

// shellCenters returns the centers of the boundary cells. Used to seed
// part point sets along cut planes, where the source mesh has no
// vertices of its own.
func (d *decomposer) shellCenters(cells []int) []math.Vec3 {
	boundary := d.boundaryCells(cells)
	pts := make([]math.Vec3, 0, len(boundary))
	for _, c := range boundary {
		p := d.grid.center(c)
		pts = append(pts, math.Vec3{X: float32(p.x), Y: float32(p.y), Z: float32(p.z)})
	}
	return pts
}

// partPoints builds the vertex set for an emitted part: the source mesh
// vertices that fall inside the part's cells, plus shell centers when
// the part came from a split (a cut plane has no source vertices of its
// own). Unsplit parts reproduce the source vertices exactly.
func (d *decomposer) partPoints(p part) []math.Vec3 {
	inSet := make(map[int]bool, len(p.cells))
	for _, c := range p.cells {
		inSet[c] = true
	}

	var pts []math.Vec3
	for _, v := range d.mesh.Positions {
		if inSet[d.grid.cellOf(toVec3d(v))] {
			pts = append(pts, v)
		}
	}

	if p.depth > 0 || len(pts) < 4 {
		pts = append(pts, d.shellCenters(p.cells)...)
	}
	return pts
}
