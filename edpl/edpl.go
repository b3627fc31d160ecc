// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package edpl implements the
// Expected Distance between Placement Locations,
// a measure of the dispersal of the placements
// of a single pquery
// across the reference tree
// (Matsen et al. 2011).
//
// The EDPL of a pquery is the expected
// branch length distance
// between two placement locations
// drawn independently
// with the like weight ratios as probabilities.
// A small value indicates a well resolved placement,
// a large value a pquery
// that is spread over distant parts of the tree.
package edpl

import (
	"math"

	"github.com/evolbioinfo/gotree/tree"
	"github.com/js-arias/phyplace/jplace"
	"github.com/js-arias/phyplace/treedist"
)

// A Calculator computes EDPL values
// over a fixed reference tree.
type Calculator struct {
	s    *jplace.Sample
	m    *treedist.Matrix
	prox map[*tree.Edge]*tree.Node
	dist map[*tree.Edge]*tree.Node
}

// New creates a calculator
// for the reference tree of a sample.
// The node distance matrix of the tree
// is built once
// and shared by all calls.
func New(s *jplace.Sample) *Calculator {
	prox, dist := treedist.Orient(s.Tree())
	return &Calculator{
		s:    s,
		m:    treedist.NewMatrix(s.Tree()),
		prox: prox,
		dist: dist,
	}
}

// Sample returns the sample
// used to build the calculator.
func (c *Calculator) Sample() *jplace.Sample { return c.s }

// Of returns the EDPL of a pquery.
// The edge numbers of the pquery
// must refer to a reference tree
// compatible with the calculator's tree.
func (c *Calculator) Of(pq jplace.Pquery) float64 {
	var sum float64
	pls := pq.Placements
	for i := range pls {
		for j := i + 1; j < len(pls); j++ {
			d := c.distance(pls[i], pls[j])
			// Twice the weight product:
			// the expectation runs over ordered pairs.
			sum += 2 * pls[i].LikeWeightRatio * pls[j].LikeWeightRatio * d
		}
	}
	return sum
}

func (c *Calculator) distance(a, b jplace.Placement) float64 {
	ea := c.s.Edge(a.Edge)
	eb := c.s.Edge(b.Edge)
	if ea == eb {
		return math.Abs(a.DistalLength - b.DistalLength)
	}

	aDist, aProx := endLengths(ea, a)
	bDist, bProx := endLengths(eb, b)

	pp := aProx + c.m.Of(c.prox[ea], c.prox[eb]) + bProx
	pd := aProx + c.m.Of(c.prox[ea], c.dist[eb]) + bDist
	dp := aDist + c.m.Of(c.dist[ea], c.prox[eb]) + bProx
	dd := aDist + c.m.Of(c.dist[ea], c.dist[eb]) + bDist

	return min(pp, pd, dp, dd)
}

// EndLengths returns the distance
// of the attachment point of a placement
// to the distal and the proximal node
// of its edge.
func endLengths(e *tree.Edge, p jplace.Placement) (dist, prox float64) {
	l := e.Length()
	if l < 0 {
		l = 0
	}
	dist = p.DistalLength
	if dist < 0 {
		dist = 0
	}
	if dist > l {
		dist = l
	}
	return dist, l - dist
}

// A Histogram accumulates weighted values
// into equal width bins
// over the interval [0, max).
// Values beyond the interval
// are collected in the closest bin.
type Histogram struct {
	bins []float64
	max  float64
}

// NewHistogram creates a histogram
// with the indicated number of bins
// over [0, max).
func NewHistogram(bins int, max float64) *Histogram {
	return &Histogram{
		bins: make([]float64, bins),
		max:  max,
	}
}

// Add accumulates a value
// with the given weight.
func (h *Histogram) Add(v, weight float64) {
	i := int(v / h.max * float64(len(h.bins)))
	if i < 0 {
		i = 0
	}
	if i >= len(h.bins) {
		i = len(h.bins) - 1
	}
	h.bins[i] += weight
}

// Bins returns the number of bins of the histogram.
func (h *Histogram) Bins() int { return len(h.bins) }

// Value returns the accumulated weight of a bin.
func (h *Histogram) Value(i int) float64 { return h.bins[i] }

// Range returns the interval covered by a bin.
func (h *Histogram) Range(i int) (start, end float64) {
	w := h.max / float64(len(h.bins))
	return float64(i) * w, float64(i+1) * w
}

// Sum returns the total accumulated weight.
func (h *Histogram) Sum() float64 {
	var sum float64
	for _, v := range h.bins {
		sum += v
	}
	return sum
}
