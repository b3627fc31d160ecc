// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package treedist implements
// branch length distances
// between the nodes of a phylogenetic tree.
package treedist

import (
	"github.com/evolbioinfo/gotree/tree"
)

// A Matrix stores the branch length distance
// between every pair of nodes of a tree.
type Matrix struct {
	t     *tree.Tree
	index map[*tree.Node]int
	d     [][]float64
}

// NewMatrix builds the node distance matrix of a tree.
// Undefined branch lengths are taken as zero.
func NewMatrix(t *tree.Tree) *Matrix {
	nodes := t.Nodes()
	m := &Matrix{
		t:     t,
		index: make(map[*tree.Node]int, len(nodes)),
		d:     make([][]float64, len(nodes)),
	}
	for i, n := range nodes {
		m.index[n] = i
	}

	type adj struct {
		n   int
		len float64
	}
	adjacency := make([][]adj, len(nodes))
	for _, e := range t.Edges() {
		l := e.Length()
		if l < 0 {
			l = 0
		}
		u := m.index[e.Left()]
		v := m.index[e.Right()]
		adjacency[u] = append(adjacency[u], adj{n: v, len: l})
		adjacency[v] = append(adjacency[v], adj{n: u, len: l})
	}

	for i := range nodes {
		dist := make([]float64, len(nodes))
		for j := range dist {
			dist[j] = -1
		}
		dist[i] = 0

		// Breadth first search:
		// on a tree every node is visited once.
		queue := []int{i}
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			for _, a := range adjacency[u] {
				if dist[a.n] >= 0 {
					continue
				}
				dist[a.n] = dist[u] + a.len
				queue = append(queue, a.n)
			}
		}
		m.d[i] = dist
	}
	return m
}

// Nodes returns the number of nodes in the matrix.
func (m *Matrix) Nodes() int { return len(m.d) }

// Of returns the branch length distance
// between two nodes of the tree.
func (m *Matrix) Of(a, b *tree.Node) float64 {
	return m.d[m.index[a]][m.index[b]]
}

// Orient returns the proximal
// (toward the root)
// and distal
// (away from the root)
// node of every edge of a rooted tree.
func Orient(t *tree.Tree) (prox, dist map[*tree.Edge]*tree.Node) {
	prox = make(map[*tree.Edge]*tree.Node)
	dist = make(map[*tree.Edge]*tree.Node)
	t.PreOrder(func(cur, prev *tree.Node, e *tree.Edge) bool {
		if prev == nil {
			return true
		}
		prox[e] = prev
		dist[e] = cur
		return true
	})
	return prox, dist
}
