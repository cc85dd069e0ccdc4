package broadphase

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/body"
	"github.com/gekko3d/rigid/core"
)

// Grid is a spatial hash rebuilt from scratch on every Update. It suits many
// similarly sized moving bodies; very large bodies land in many cells.
type Grid struct {
	cellSize float64
	bodies   []*body.Body
	// Map from cell hash to the bodies touching that cell
	cells map[uint64][]*body.Body
}

func NewGrid(cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = 2
	}
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[uint64][]*body.Body),
	}
}

func (g *Grid) AddBody(b *body.Body) {
	g.bodies = append(g.bodies, b)
}

func (g *Grid) RemoveBody(b *body.Body) {
	for i, other := range g.bodies {
		if other == b {
			g.bodies = append(g.bodies[:i], g.bodies[i+1:]...)
			break
		}
	}
	g.Update()
}

func (g *Grid) Update() {
	clear(g.cells)
	for _, b := range g.bodies {
		g.insert(b)
	}
}

func (g *Grid) insert(b *body.Body) {
	g.eachCell(b.AABB(), func(key uint64) {
		g.cells[key] = append(g.cells[key], b)
	})
}

func (g *Grid) eachCell(box core.AABB, fn func(key uint64)) {
	minX, maxX := g.cellIndex(box.Min.X()), g.cellIndex(box.Max.X())
	minY, maxY := g.cellIndex(box.Min.Y()), g.cellIndex(box.Max.Y())
	minZ, maxZ := g.cellIndex(box.Min.Z()), g.cellIndex(box.Max.Z())

	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				fn(g.hashKey(x, y, z))
			}
		}
	}
}

func (g *Grid) CollisionPairs() []Pair {
	seen := make(map[pairKey]struct{})
	var pairs []Pair
	for _, cell := range g.cells {
		for i, a := range cell {
			for _, b := range cell[i+1:] {
				if a == b {
					continue
				}
				key := keyOf(a, b)
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
				if CanCollide(a, b) && a.AABB().Overlaps(b.AABB()) {
					pairs = append(pairs, makePair(a, b))
				}
			}
		}
	}
	sortPairs(pairs)
	return pairs
}

func (g *Grid) QueryAABB(box core.AABB) []*body.Body {
	unique := make(map[uint32]struct{})
	var out []*body.Body
	g.eachCell(box, func(key uint64) {
		for _, b := range g.cells[key] {
			if _, ok := unique[b.ID]; ok {
				continue
			}
			unique[b.ID] = struct{}{}
			if b.AABB().Overlaps(box) {
				out = append(out, b)
			}
		}
	})
	sortBodies(out)
	return out
}

func (g *Grid) RayIntersect(from, to mgl64.Vec3) []*body.Body {
	var out []*body.Body
	for _, b := range g.QueryAABB(core.AABBFromPoints(from, to)) {
		if rayHitsAABB(b, from, to) {
			out = append(out, b)
		}
	}
	return out
}

func (g *Grid) cellIndex(pos float64) int {
	return int(math.Floor(pos / g.cellSize))
}

// Simple hash function for 3D coordinates
func (g *Grid) hashKey(x, y, z int) uint64 {
	// large primes for mixing
	const p1 = 73856093
	const p2 = 19349663
	const p3 = 83492791
	return uint64(x*p1 ^ y*p2 ^ z*p3)
}
