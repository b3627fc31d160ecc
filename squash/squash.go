// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package squash implements squash clustering
// (Matsen & Evans 2013),
// a hierarchical clustering of samples
// represented as mass distributions
// on a shared reference tree.
//
// The distance between two distributions
// is the Kantorovich-Rubinstein
// (earth mover's)
// distance over the tree:
// the sum over all edges
// of the branch length
// times the absolute difference
// of the mass below the edge.
// When two clusters are merged,
// their distributions are averaged
// weighted by the number of samples
// in each cluster,
// so every sample contributes equally
// to the merged distribution.
package squash

import (
	"fmt"
	"math"
	"runtime"
	"strings"
	"sync"

	"github.com/evolbioinfo/gotree/tree"
	"github.com/js-arias/phyplace/jplace"
	"github.com/js-arias/phyplace/treedist"
)

// A Merger is a single agglomeration step.
// Clusters are identified by index:
// values below the number of samples
// are the input samples themselves,
// a value of samples+k is the cluster
// created by the k-th merger.
type Merger struct {
	A, B int

	// Branch lengths from the merged cluster
	// to each of the merged children:
	// the KR distance of the child distribution
	// to the merged distribution.
	LenA, LenB float64

	// KR distance between the two children.
	Dist float64
}

// A Clustering is the result of squash clustering
// a set of samples.
type Clustering struct {
	names   []string
	mergers []Merger
}

// Mergers returns the agglomeration steps
// in merge order.
func (c *Clustering) Mergers() []Merger { return c.mergers }

// Newick returns the cluster tree
// in newick (parenthetical) format,
// with the sample names as terminals.
func (c *Clustering) Newick() string {
	var sb strings.Builder
	var write func(i int)
	write = func(i int) {
		if i < len(c.names) {
			sb.WriteString(c.names[i])
			return
		}
		m := c.mergers[i-len(c.names)]
		sb.WriteByte('(')
		write(m.A)
		fmt.Fprintf(&sb, ":%.6g,", m.LenA)
		write(m.B)
		fmt.Fprintf(&sb, ":%.6g", m.LenB)
		sb.WriteByte(')')
	}
	write(len(c.names) + len(c.mergers) - 1)
	sb.WriteString(";")
	return sb.String()
}

// A calculator computes KR distances
// between mass vectors
// indexed by jplace edge number.
type calculator struct {
	// Edge numbers in post order,
	// children before parents,
	// with the number of the parent edge
	// (-1 at the root).
	order  [][2]int
	length []float64
}

func newCalculator(ref *jplace.Sample) *calculator {
	c := &calculator{length: make([]float64, ref.Edges())}
	for num := 0; num < ref.Edges(); num++ {
		e := ref.Edge(num)
		if e == nil {
			continue
		}
		if l := e.Length(); l > 0 {
			c.length[num] = l
		}
	}

	// The parent edge of an edge
	// is the edge whose distal node
	// is its proximal node.
	_, dist := treedist.Orient(ref.Tree())
	parentOf := make(map[*tree.Node]int, len(dist))
	for e, d := range dist {
		parentOf[d] = ref.EdgeNum(e)
	}

	// A postorder node traversal
	// finishes every edge
	// before its parent edge.
	ref.Tree().PostOrder(func(cur, prev *tree.Node, e *tree.Edge) bool {
		if e == nil {
			return true
		}
		num := ref.EdgeNum(e)
		if num < 0 {
			return true
		}
		parent := -1
		if p, ok := parentOf[prev]; ok {
			parent = p
		}
		c.order = append(c.order, [2]int{num, parent})
		return true
	})
	return c
}

// Kr returns the Kantorovich-Rubinstein distance
// between two mass vectors.
func (c *calculator) kr(a, b []float64) float64 {
	acc := make([]float64, len(c.length))
	var d float64
	for _, eo := range c.order {
		num, parent := eo[0], eo[1]
		s := acc[num] + a[num] - b[num]
		d += c.length[num] * math.Abs(s)
		if parent >= 0 {
			acc[parent] += s
		}
	}
	return d
}

// Cluster performs squash clustering
// of a set of mass distributions
// on the reference tree of ref.
// Each mass vector is indexed
// by jplace edge number
// and should sum to one.
// The initial pairwise distances
// are computed in parallel;
// use cpu to define the number of workers,
// the default (zero) uses all available CPU.
func Cluster(ref *jplace.Sample, names []string, masses [][]float64, cpu int) *Clustering {
	if cpu == 0 {
		cpu = runtime.NumCPU()
	}
	calc := newCalculator(ref)

	n := len(masses)
	dist := make([][]float64, 2*n-1)
	for i := range dist {
		dist[i] = make([]float64, 2*n-1)
	}

	// Pairwise distances between the input samples.
	// Pairs are independent.
	type pair struct{ i, j int }
	jobs := make(chan pair, cpu*2)
	var wg sync.WaitGroup
	for range cpu {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				d := calc.kr(masses[p.i], masses[p.j])
				dist[p.i][p.j] = d
				dist[p.j][p.i] = d
			}
		}()
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			jobs <- pair{i, j}
		}
	}
	close(jobs)
	wg.Wait()

	cl := &Clustering{names: names}
	mass := make([][]float64, 0, 2*n-1)
	mass = append(mass, masses...)
	size := make([]int, 2*n-1)
	for i := 0; i < n; i++ {
		size[i] = 1
	}
	active := make([]int, 0, n)
	for i := 0; i < n; i++ {
		active = append(active, i)
	}

	for len(active) > 1 {
		// Closest pair of active clusters.
		bi, bj := 0, 1
		best := math.Inf(1)
		for x := 0; x < len(active); x++ {
			for y := x + 1; y < len(active); y++ {
				if d := dist[active[x]][active[y]]; d < best {
					best = d
					bi, bj = x, y
				}
			}
		}
		a, b := active[bi], active[bj]

		// Squash the two distributions together,
		// weighting by the cluster sizes.
		merged := make([]float64, len(mass[a]))
		wa := float64(size[a]) / float64(size[a]+size[b])
		wb := float64(size[b]) / float64(size[a]+size[b])
		for i := range merged {
			merged[i] = wa*mass[a][i] + wb*mass[b][i]
		}
		id := len(mass)
		mass = append(mass, merged)
		size[id] = size[a] + size[b]

		cl.mergers = append(cl.mergers, Merger{
			A:    a,
			B:    b,
			LenA: calc.kr(merged, mass[a]),
			LenB: calc.kr(merged, mass[b]),
			Dist: best,
		})

		// Replace the merged pair by the new cluster.
		active = append(active[:bj], active[bj+1:]...)
		active[bi] = id
		for _, o := range active {
			if o == id {
				continue
			}
			d := calc.kr(merged, mass[o])
			dist[id][o] = d
			dist[o][id] = d
		}
	}
	return cl
}
