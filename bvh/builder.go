package bvh

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/core"
)

// BVHNode is one node of a flattened tree. Internal nodes have Left/Right set
// and LeafCount 0; leaves reference item LeafFirst and have Left = Right = -1.
type BVHNode struct {
	Min       mgl64.Vec3
	Max       mgl64.Vec3
	Left      int32
	Right     int32
	LeafFirst int32
	LeafCount int32
}

func (n *BVHNode) IsLeaf() bool {
	return n.LeafCount > 0
}

func (n *BVHNode) Bounds() core.AABB {
	return core.AABB{Min: n.Min, Max: n.Max}
}

type Tree struct {
	Nodes []BVHNode
	Root  int32
}

// searchRadius bounds how far along the Morton order a cluster looks for its
// best merge partner.
const searchRadius = 8

type cluster struct {
	node int32
	box  core.AABB
}

// Builder agglomerates leaves bottom-up. Leaves are first sorted along a
// Morton curve so spatial neighbours are also neighbours in the list; each pass
// then merges every pair of clusters that are mutually each other's cheapest
// partner (smallest combined surface area) within the search window.
type Builder struct{}

func (b *Builder) Build(bounds []core.AABB) *Tree {
	tree := &Tree{Root: -1}
	if len(bounds) == 0 {
		return tree
	}

	sceneBox := core.EmptyAABB()
	for _, box := range bounds {
		sceneBox = sceneBox.ExpandPoint(box.Center())
	}

	type keyed struct {
		code  uint32
		index int
	}
	order := make([]keyed, len(bounds))
	for i, box := range bounds {
		order[i] = keyed{code: mortonCode(box.Center(), sceneBox), index: i}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].code < order[j].code
	})

	clusters := make([]cluster, len(order))
	for i, k := range order {
		box := bounds[k.index]
		tree.Nodes = append(tree.Nodes, BVHNode{
			Min:       box.Min,
			Max:       box.Max,
			Left:      -1,
			Right:     -1,
			LeafFirst: int32(k.index),
			LeafCount: 1,
		})
		clusters[i] = cluster{node: int32(len(tree.Nodes) - 1), box: box}
	}

	for len(clusters) > 1 {
		clusters = b.mergePass(tree, clusters)
	}
	tree.Root = clusters[0].node
	return tree
}

func (b *Builder) mergePass(tree *Tree, clusters []cluster) []cluster {
	n := len(clusters)
	nearest := make([]int, n)
	for i := range clusters {
		best := -1
		bestCost := math.Inf(1)
		lo := max(0, i-searchRadius)
		hi := min(n-1, i+searchRadius)
		for j := lo; j <= hi; j++ {
			if j == i {
				continue
			}
			cost := clusters[i].box.Union(clusters[j].box).SurfaceArea()
			if cost < bestCost {
				bestCost = cost
				best = j
			}
		}
		nearest[i] = best
	}

	next := make([]cluster, 0, n)
	merged := false
	for i := range clusters {
		j := nearest[i]
		if j >= 0 && nearest[j] == i {
			if i < j {
				next = append(next, b.merge(tree, clusters[i], clusters[j]))
				merged = true
			}
			continue
		}
		next = append(next, clusters[i])
	}

	if !merged {
		// Ties can break mutual nearness; force progress on the first pair.
		next = append([]cluster{b.merge(tree, clusters[0], clusters[1])}, clusters[2:]...)
	}
	return next
}

func (b *Builder) merge(tree *Tree, left, right cluster) cluster {
	box := left.box.Union(right.box)
	tree.Nodes = append(tree.Nodes, BVHNode{
		Min:       box.Min,
		Max:       box.Max,
		Left:      left.node,
		Right:     right.node,
		LeafFirst: -1,
		LeafCount: 0,
	})
	return cluster{node: int32(len(tree.Nodes) - 1), box: box}
}

// mortonCode interleaves 10 bits per axis of p normalised into box.
func mortonCode(p mgl64.Vec3, box core.AABB) uint32 {
	extent := box.Max.Sub(box.Min)
	var q [3]uint32
	for axis := 0; axis < 3; axis++ {
		t := 0.0
		if extent[axis] > core.Epsilon {
			t = (p[axis] - box.Min[axis]) / extent[axis]
		}
		q[axis] = uint32(core.Clamp(t*1023, 0, 1023))
	}
	return expandBits(q[0])<<2 | expandBits(q[1])<<1 | expandBits(q[2])
}

func expandBits(v uint32) uint32 {
	v = (v * 0x00010001) & 0xFF0000FF
	v = (v * 0x00000101) & 0x0F00F00F
	v = (v * 0x00000011) & 0xC30C30C3
	v = (v * 0x00000005) & 0x49249249
	return v
}
