// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package treedist_test

import (
	"strings"
	"testing"

	"github.com/evolbioinfo/gotree/io/newick"
	"github.com/evolbioinfo/gotree/tree"
	"github.com/js-arias/phyplace/treedist"
)

func parse(t testing.TB, nwk string) *tree.Tree {
	t.Helper()

	tr, err := newick.NewParser(strings.NewReader(nwk)).Parse()
	if err != nil {
		t.Fatalf("invalid tree %q: %v", nwk, err)
	}
	return tr
}

func tip(t testing.TB, tr *tree.Tree, name string) *tree.Node {
	t.Helper()

	for _, tp := range tr.Tips() {
		if tp.Name() == name {
			return tp
		}
	}
	t.Fatalf("tip %q not found", name)
	return nil
}

func TestMatrix(t *testing.T) {
	tr := parse(t, "((A:2,B:3):1,C:4);")
	m := treedist.NewMatrix(tr)

	if g := m.Nodes(); g != 5 {
		t.Errorf("got %d nodes, want %d", g, 5)
	}

	tests := []struct {
		a, b string
		want float64
	}{
		{"A", "B", 5},
		{"A", "C", 7},
		{"B", "C", 8},
		{"A", "A", 0},
	}
	for _, p := range tests {
		a := tip(t, tr, p.a)
		b := tip(t, tr, p.b)
		if g := m.Of(a, b); g != p.want {
			t.Errorf("distance %s-%s: got %g, want %g", p.a, p.b, g, p.want)
		}
		if g := m.Of(b, a); g != p.want {
			t.Errorf("distance %s-%s: got %g, want %g", p.b, p.a, g, p.want)
		}
	}
}

func TestMatrixNegativeLengths(t *testing.T) {
	tr := parse(t, "((A:-1,B:3):1,C:4);")
	m := treedist.NewMatrix(tr)

	a := tip(t, tr, "A")
	b := tip(t, tr, "B")
	if g := m.Of(a, b); g != 3 {
		t.Errorf("distance A-B: got %g, want %g", g, 3.0)
	}
}

func TestOrient(t *testing.T) {
	tr := parse(t, "((A:2,B:3):1,C:4);")
	prox, dist := treedist.Orient(tr)

	if len(prox) != 4 || len(dist) != 4 {
		t.Fatalf("got %d proximal and %d distal nodes, want %d", len(prox), len(dist), 4)
	}

	root := tr.Root()
	for _, e := range tr.Edges() {
		p, d := prox[e], dist[e]
		if p == nil || d == nil {
			t.Fatalf("edge without orientation")
		}
		if p == d {
			t.Errorf("edge with a single node at both ends")
		}
		if (p != e.Left() && p != e.Right()) || (d != e.Left() && d != e.Right()) {
			t.Errorf("edge oriented with foreign nodes")
		}
		if d == root {
			t.Errorf("root as a distal node")
		}
		if d.Tip() && d.Name() == "" {
			t.Errorf("unnamed tip as a distal node")
		}
		if p.Tip() {
			t.Errorf("tip %q as a proximal node", p.Name())
		}
	}
}
