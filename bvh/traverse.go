package bvh

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/core"
)

func (t *Tree) Empty() bool {
	return t == nil || t.Root < 0
}

func (t *Tree) Bounds() core.AABB {
	if t.Empty() {
		return core.EmptyAABB()
	}
	return t.Nodes[t.Root].Bounds()
}

// Query calls fn with the item index of every leaf whose box overlaps box.
// Returning false from fn stops the walk.
func (t *Tree) Query(box core.AABB, fn func(item int) bool) {
	if t.Empty() {
		return
	}
	stack := make([]int32, 0, 32)
	stack = append(stack, t.Root)
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := &t.Nodes[idx]
		if !node.Bounds().Overlaps(box) {
			continue
		}
		if node.IsLeaf() {
			if !fn(int(node.LeafFirst)) {
				return
			}
			continue
		}
		stack = append(stack, node.Left, node.Right)
	}
}

// RayQuery calls fn for every leaf whose box the segment from->to crosses.
func (t *Tree) RayQuery(from, to mgl64.Vec3, fn func(item int) bool) {
	if t.Empty() {
		return
	}
	stack := make([]int32, 0, 32)
	stack = append(stack, t.Root)
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := &t.Nodes[idx]
		if _, hit := node.Bounds().RayIntersect(from, to); !hit {
			continue
		}
		if node.IsLeaf() {
			if !fn(int(node.LeafFirst)) {
				return
			}
			continue
		}
		stack = append(stack, node.Left, node.Right)
	}
}
