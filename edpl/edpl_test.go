// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package edpl_test

import (
	"math"
	"strings"
	"testing"

	"github.com/js-arias/phyplace/edpl"
	"github.com/js-arias/phyplace/jplace"
)

var blob = `{
	"version": 3,
	"tree": "((A:2{0},B:3{1}):1{2},C:4{3});",
	"fields": ["edge_num", "like_weight_ratio", "distal_length"],
	"placements": [
		{"p": [[0, 0.7, 1], [3, 0.3, 2]], "n": ["spread"]},
		{"p": [[2, 1.0, 0.5]], "n": ["resolved"]},
		{"p": [[1, 0.5, 1], [1, 0.5, 2.5]], "n": ["same-edge"]}
	]
}`

func TestOf(t *testing.T) {
	s, err := jplace.Read(strings.NewReader(blob), "sample")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := edpl.New(s)

	// The attachment points are at distance 1 of the node
	// joining A and B,
	// and at distance 2 of the root,
	// with a path of length 1 between them.
	want := 2 * 0.7 * 0.3 * (1 + 1 + 2)
	tests := map[string]float64{
		"spread":    want,
		"resolved":  0,
		"same-edge": 2 * 0.5 * 0.5 * 1.5,
	}

	for _, pq := range s.Pqueries() {
		name := pq.Names[0].Name
		w, ok := tests[name]
		if !ok {
			t.Fatalf("unexpected pquery %q", name)
		}
		if g := c.Of(pq); math.Abs(g-w) > 1e-10 {
			t.Errorf("pquery %q: got EDPL %g, want %g", name, g, w)
		}
	}
}

func TestHistogram(t *testing.T) {
	h := edpl.NewHistogram(4, 8)
	if g := h.Bins(); g != 4 {
		t.Fatalf("got %d bins, want %d", g, 4)
	}

	// First bin,
	// including a value below zero.
	h.Add(0, 1)
	h.Add(1.9, 2)
	h.Add(-0.5, 1)
	// Second bin.
	h.Add(2, 1)
	// Last bin,
	// including a value beyond the maximum.
	h.Add(7.5, 1)
	h.Add(100, 3)

	want := []float64{4, 1, 0, 4}
	for i, w := range want {
		if g := h.Value(i); g != w {
			t.Errorf("bin %d: got %g, want %g", i, g, w)
		}
	}
	if g := h.Sum(); g != 9 {
		t.Errorf("got sum %g, want %g", g, 9.0)
	}

	start, end := h.Range(1)
	if start != 2 || end != 4 {
		t.Errorf("bin 1: got range [%g, %g), want [2, 4)", start, end)
	}
}
