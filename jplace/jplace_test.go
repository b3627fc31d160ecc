// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package jplace_test

import (
	"math"
	"strings"
	"testing"

	"github.com/js-arias/phyplace/jplace"
)

var blob = `{
	"version": 3,
	"tree": "((A:2{0},B:3{1}):1{2},C:4{3});",
	"fields": ["edge_num", "likelihood", "like_weight_ratio", "distal_length", "pendant_length"],
	"placements": [
		{"p": [[0, -100, 0.7, 1, 0.1], [3, -101, 0.3, 2, 0.2]], "n": ["q1"]},
		{"p": [[2, -50, 1.0, 0.5, 0]], "nm": [["q2", 2]]}
	],
	"metadata": {"invocation": "test"}
}`

func TestRead(t *testing.T) {
	s, err := jplace.Read(strings.NewReader(blob), "sample")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Name() != "sample" {
		t.Errorf("got name %q, want %q", s.Name(), "sample")
	}
	if g := s.Edges(); g != 4 {
		t.Errorf("got %d edges, want %d", g, 4)
	}
	if g := len(s.Tree().Tips()); g != 3 {
		t.Errorf("got %d tips, want %d", g, 3)
	}

	lengths := []float64{2, 3, 1, 4}
	for num, want := range lengths {
		e := s.Edge(num)
		if e == nil {
			t.Fatalf("edge %d: not defined", num)
		}
		if g := e.Length(); g != want {
			t.Errorf("edge %d: got length %g, want %g", num, g, want)
		}
		if g := s.EdgeNum(e); g != num {
			t.Errorf("edge %d: got number %d", num, g)
		}
	}

	pqs := s.Pqueries()
	if len(pqs) != 2 {
		t.Fatalf("got %d pqueries, want %d", len(pqs), 2)
	}

	q1 := pqs[0]
	if len(q1.Placements) != 2 {
		t.Fatalf("pquery %q: got %d placements, want %d", "q1", len(q1.Placements), 2)
	}
	if g := q1.Names[0].Name; g != "q1" {
		t.Errorf("got pquery name %q, want %q", g, "q1")
	}
	if g := q1.Multiplicity(); g != 1 {
		t.Errorf("pquery %q: got multiplicity %g, want %g", "q1", g, 1.0)
	}
	best := q1.Best()
	if best.Edge != 0 {
		t.Errorf("pquery %q: got best placement on edge %d, want %d", "q1", best.Edge, 0)
	}
	if best.LikeWeightRatio != 0.7 {
		t.Errorf("pquery %q: got best weight %g, want %g", "q1", best.LikeWeightRatio, 0.7)
	}

	q2 := pqs[1]
	if g := q2.Multiplicity(); g != 2 {
		t.Errorf("pquery %q: got multiplicity %g, want %g", "q2", g, 2.0)
	}
	if g := q2.Placements[0].DistalLength; g != 0.5 {
		t.Errorf("pquery %q: got distal length %g, want %g", "q2", g, 0.5)
	}
}

func TestReadProximal(t *testing.T) {
	old := `{
		"version": 1,
		"tree": "((A:2{0},B:3{1}):1{2},C:4{3});",
		"fields": ["edge_num", "like_weight_ratio", "proximal_length"],
		"placements": [
			{"p": [[0, 1.0, 0.5]], "n": ["q1"]}
		]
	}`
	s, err := jplace.Read(strings.NewReader(old), "old")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pl := s.Pqueries()[0].Placements[0]
	if g := pl.DistalLength; g != 1.5 {
		t.Errorf("got distal length %g, want %g", g, 1.5)
	}
}

func TestReadErrors(t *testing.T) {
	tests := map[string]string{
		"unsupported version": `{"version": 4, "tree": "(A:1{0},B:1{1});", "fields": ["edge_num", "like_weight_ratio"], "placements": []}`,
		"without a tree":      `{"version": 3, "fields": ["edge_num", "like_weight_ratio"], "placements": []}`,
		"missing field":       `{"version": 3, "tree": "(A:1{0},B:1{1});", "fields": ["edge_num"], "placements": []}`,
		"undefined edge":      `{"version": 3, "tree": "(A:1{0},B:1{1});", "fields": ["edge_num", "like_weight_ratio"], "placements": [{"p": [[7, 1.0]], "n": ["q"]}]}`,
		"negative weight":     `{"version": 3, "tree": "(A:1{0},B:1{1});", "fields": ["edge_num", "like_weight_ratio"], "placements": [{"p": [[0, -0.5]], "n": ["q"]}]}`,
		"unnumbered edge":     `{"version": 3, "tree": "(A:1{0},B:1);", "fields": ["edge_num", "like_weight_ratio"], "placements": []}`,
		"duplicate number":    `{"version": 3, "tree": "(A:1{0},B:1{0});", "fields": ["edge_num", "like_weight_ratio"], "placements": []}`,
	}
	for name, in := range tests {
		if _, err := jplace.Read(strings.NewReader(in), name); err == nil {
			t.Errorf("%s: expecting error", name)
		}
	}
}

func TestPointMass(t *testing.T) {
	s, err := jplace.Read(strings.NewReader(blob), "sample")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.PointMass()

	for _, pq := range s.Pqueries() {
		if len(pq.Placements) != 1 {
			t.Errorf("pquery %q: got %d placements, want 1", pq.Names[0].Name, len(pq.Placements))
		}
		if g := pq.Placements[0].LikeWeightRatio; g != 1 {
			t.Errorf("pquery %q: got weight %g, want 1", pq.Names[0].Name, g)
		}
	}
	if g := s.Pqueries()[0].Placements[0].Edge; g != 0 {
		t.Errorf("got best placement on edge %d, want %d", g, 0)
	}
}

func TestCompatible(t *testing.T) {
	a, err := jplace.Read(strings.NewReader(blob), "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := jplace.Read(strings.NewReader(blob), "b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !jplace.Compatible(a, b) {
		t.Errorf("samples with the same tree reported as incompatible")
	}

	other := `{
		"version": 3,
		"tree": "((A:2{0},C:3{1}):1{2},B:4{3});",
		"fields": ["edge_num", "like_weight_ratio"],
		"placements": []
	}`
	c, err := jplace.Read(strings.NewReader(other), "c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if jplace.Compatible(a, c) {
		t.Errorf("samples with different trees reported as compatible")
	}

	renum := `{
		"version": 3,
		"tree": "((A:2{1},B:3{0}):1{2},C:4{3});",
		"fields": ["edge_num", "like_weight_ratio"],
		"placements": []
	}`
	d, err := jplace.Read(strings.NewReader(renum), "d")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if jplace.Compatible(a, d) {
		t.Errorf("samples with different edge numbers reported as compatible")
	}
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"sample.jplace", "sample"},
		{"dir/sub/sample.jplace", "sample"},
		{"sample", "sample"},
		{"dir/epa_result.jplace", "epa_result"},
		{"sample.jplace.jplace", "sample.jplace"},
	}
	for _, p := range tests {
		if g := jplace.BaseName(p.path); g != p.want {
			t.Errorf("path %q: got %q, want %q", p.path, g, p.want)
		}
	}
}

func TestMultiplicityUnnamed(t *testing.T) {
	in := `{
		"version": 3,
		"tree": "(A:1{0},B:1{1});",
		"fields": ["edge_num", "like_weight_ratio"],
		"placements": [{"p": [[0, 1.0]]}]
	}`
	s, err := jplace.Read(strings.NewReader(in), "unnamed")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pq := s.Pqueries()[0]
	if g := pq.Multiplicity(); g != 1 {
		t.Errorf("got multiplicity %g, want %g", g, 1.0)
	}
	if math.IsNaN(pq.Best().LikeWeightRatio) {
		t.Errorf("unexpected NaN on best placement")
	}
}
