// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package treeout_test

import (
	"image/color"
	"strings"
	"testing"

	"github.com/evolbioinfo/gotree/io/newick"
	"github.com/evolbioinfo/gotree/tree"
	"github.com/js-arias/phyplace/treeout"
)

func colorTree(t testing.TB) treeout.Tree {
	t.Helper()

	tr, err := newick.NewParser(strings.NewReader("((A:2,B:3):1,C:4);")).Parse()
	if err != nil {
		t.Fatalf("invalid tree: %v", err)
	}

	// Paint the branch of tip A red.
	cs := make(map[*tree.Edge]color.RGBA)
	for _, e := range tr.Edges() {
		for _, n := range []*tree.Node{e.Left(), e.Right()} {
			if n.Tip() && n.Name() == "A" {
				cs[e] = color.RGBA{255, 0, 0, 255}
			}
		}
	}
	if len(cs) != 1 {
		t.Fatalf("got %d colored edges, want 1", len(cs))
	}

	return treeout.Tree{
		T:      tr,
		Colors: cs,
		Grad:   treeout.Incandescent{},
		Norm:   treeout.Linear{Max: 1},
	}
}

func TestFormats(t *testing.T) {
	var f treeout.Formats
	if f.Any() {
		t.Errorf("empty formats reported as selected")
	}
	if ext := f.Extensions(); len(ext) != 0 {
		t.Errorf("got extensions %v, want none", ext)
	}

	f = treeout.Formats{Newick: true, SVG: true}
	if !f.Any() {
		t.Errorf("selected formats reported as empty")
	}
	want := []string{"newick", "svg"}
	ext := f.Extensions()
	if len(ext) != len(want) {
		t.Fatalf("got extensions %v, want %v", ext, want)
	}
	for i, w := range want {
		if ext[i] != w {
			t.Errorf("got extension %q, want %q", ext[i], w)
		}
	}
}

func TestWriteNewick(t *testing.T) {
	ct := colorTree(t)

	var sb strings.Builder
	if err := treeout.WriteNewick(&sb, ct); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g, w := sb.String(), "((A:2,B:3):1,C:4);\n"; g != w {
		t.Errorf("got tree %q, want %q", g, w)
	}
}

func TestWriteNexus(t *testing.T) {
	ct := colorTree(t)

	var sb strings.Builder
	if err := treeout.WriteNexus(&sb, ct); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g := sb.String()

	if !strings.HasPrefix(g, "#NEXUS\n") {
		t.Errorf("output without the nexus header")
	}
	if !strings.Contains(g, "dimensions ntax=3;") {
		t.Errorf("output without the taxa dimensions")
	}
	for _, n := range []string{"A", "B", "C"} {
		if !strings.Contains(g, "\t\t"+n+"\n") {
			t.Errorf("output without the taxon %q", n)
		}
	}
	if !strings.Contains(g, "tree tree1 = [&R] ") {
		t.Errorf("output without the tree command")
	}
	if !strings.Contains(g, "A[&!color=#ff0000]:2") {
		t.Errorf("output without the branch color: %q", g)
	}
	if strings.Contains(g, "B[&!color=") {
		t.Errorf("color on an unpainted branch: %q", g)
	}
}

func TestWritePhyloXML(t *testing.T) {
	ct := colorTree(t)

	var sb strings.Builder
	if err := treeout.WritePhyloXML(&sb, ct); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g := sb.String()

	if !strings.Contains(g, "<phyloxml") {
		t.Errorf("output without the phyloxml element")
	}
	if !strings.Contains(g, "<name>A</name>") {
		t.Errorf("output without the tip names: %q", g)
	}
	if !strings.Contains(g, "<red>255</red>") {
		t.Errorf("output without the branch color: %q", g)
	}
}

func TestWriteSVG(t *testing.T) {
	ct := colorTree(t)

	var sb strings.Builder
	if err := treeout.WriteSVG(&sb, ct); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g := sb.String()

	if !strings.Contains(g, "<svg") {
		t.Errorf("output without the svg element")
	}
	if !strings.Contains(g, "rgb(255,0,0)") {
		t.Errorf("output without the branch color")
	}
	for _, n := range []string{"A", "B", "C"} {
		if !strings.Contains(g, ">"+n+"</text>") {
			t.Errorf("output without the label of tip %q", n)
		}
	}

	// The color scale legend.
	if !strings.Contains(g, "<rect") {
		t.Errorf("output without the legend bar")
	}
}
