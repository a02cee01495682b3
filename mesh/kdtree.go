// Copyright © 2024 the photonmc authors.
// This file is part of photonmc.
//
// photonmc is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package mesh

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// kdNode is one node of a median-split k-d tree over site positions. The
// tree is stored as an arena of nodes indexed by integer id with children
// stored inline, rather than as a pointer graph with parent back-references:
// the nearest-neighbor walk passes its best-so-far result through recursion
// return values instead of climbing parent pointers.
type kdNode struct {
	cellID      int
	left, right int // indices into the owning kdTree.nodes, or -1
}

// kdTree is built once by NewGrid over every live site and is owned by the
// Grid; no per-block trees are built. It is never mutated after build.
type kdTree struct {
	sites []r3.Vec // indexed by cellID, shared with the owning Grid
	nodes []kdNode
	root  int
}

func buildKdTree(cellIDs []int, sites []r3.Vec) *kdTree {
	t := &kdTree{sites: sites}
	ids := append([]int(nil), cellIDs...)
	t.root = t.build(ids, 0)
	return t
}

// build recursively median-splits ids on axis (depth mod 3), breaking ties
// lexicographically on (x, y, z) with the axis cycling, and returns the
// index of the new node in t.nodes.
func (t *kdTree) build(ids []int, depth int) int {
	if len(ids) == 0 {
		return -1
	}
	axis := depth % 3
	sort.Slice(ids, func(i, j int) bool {
		return lessLex(t.sites[ids[i]], t.sites[ids[j]], axis)
	})
	mid := len(ids) / 2
	node := kdNode{cellID: ids[mid]}
	idx := len(t.nodes)
	t.nodes = append(t.nodes, node)
	left := t.build(ids[:mid], depth+1)
	right := t.build(ids[mid+1:], depth+1)
	t.nodes[idx].left = left
	t.nodes[idx].right = right
	return idx
}

// lessLex orders two sites by their coordinate on axis first, falling back
// to the remaining axes in cyclic order to break exact ties.
func lessLex(a, b r3.Vec, axis int) bool {
	for k := 0; k < 3; k++ {
		av := axisValue(a, (axis+k)%3)
		bv := axisValue(b, (axis+k)%3)
		if av != bv {
			return av < bv
		}
	}
	return false
}

// nearest descends to the leaf nearest p, then unwinds, testing at each
// level whether the splitting plane could hide a closer site in the other
// subtree.
func (t *kdTree) nearest(p r3.Vec) int {
	best, _ := t.search(t.root, p, 0, -1, math.MaxFloat64)
	return best
}

func (t *kdTree) search(nodeIdx int, p r3.Vec, depth int, best int, bestSq float64) (int, float64) {
	if nodeIdx < 0 {
		return best, bestSq
	}
	n := t.nodes[nodeIdx]
	site := t.sites[n.cellID]
	d := sqDist(p, site)
	if d < bestSq {
		best, bestSq = n.cellID, d
	}

	axis := depth % 3
	diff := axisValue(p, axis) - axisValue(site, axis)
	near, far := n.left, n.right
	if diff > 0 {
		near, far = n.right, n.left
	}
	best, bestSq = t.search(near, p, depth+1, best, bestSq)
	if diff*diff < bestSq {
		best, bestSq = t.search(far, p, depth+1, best, bestSq)
	}
	return best, bestSq
}
