// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package treeout

import (
	"encoding/xml"
	"io"

	"github.com/evolbioinfo/gotree/tree"
)

// PhyloXML document
// <http://www.phyloxml.org>.
type phyloXML struct {
	XMLName   xml.Name  `xml:"phyloxml"`
	XMLNS     string    `xml:"xmlns,attr"`
	Phylogeny phylogeny `xml:"phylogeny"`
}

type phylogeny struct {
	Rooted bool  `xml:"rooted,attr"`
	Root   clade `xml:"clade"`
}

type clade struct {
	Name         string      `xml:"name,omitempty"`
	BranchLength *float64    `xml:"branch_length,omitempty"`
	Color        *cladeColor `xml:"color,omitempty"`
	Clades       []clade     `xml:"clade,omitempty"`
}

type cladeColor struct {
	Red   uint8 `xml:"red"`
	Green uint8 `xml:"green"`
	Blue  uint8 `xml:"blue"`
}

// WritePhyloXML writes the tree
// in phyloXML format,
// with a color element per clade.
func WritePhyloXML(w io.Writer, ct Tree) error {
	type pair struct{ a, b *tree.Node }
	edgeOf := make(map[pair]*tree.Edge, len(ct.T.Edges()))
	for _, e := range ct.T.Edges() {
		edgeOf[pair{e.Left(), e.Right()}] = e
		edgeOf[pair{e.Right(), e.Left()}] = e
	}

	var build func(n, prev *tree.Node, e *tree.Edge) clade
	build = func(n, prev *tree.Node, e *tree.Edge) clade {
		c := clade{}
		if n.Tip() {
			c.Name = n.Name()
		}
		if e != nil {
			if l := e.Length(); l >= 0 {
				bl := l
				c.BranchLength = &bl
			}
			if col, ok := ct.Colors[e]; ok {
				c.Color = &cladeColor{Red: col.R, Green: col.G, Blue: col.B}
			}
		}
		for _, d := range n.Neigh() {
			if d == prev {
				continue
			}
			c.Clades = append(c.Clades, build(d, n, edgeOf[pair{n, d}]))
		}
		return c
	}

	doc := phyloXML{
		XMLNS: "http://www.phyloxml.org",
		Phylogeny: phylogeny{
			Rooted: true,
			Root:   build(ct.T.Root(), nil, nil),
		},
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	e := xml.NewEncoder(w)
	e.Indent("", "  ")
	if err := e.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
