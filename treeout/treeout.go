// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package treeout implements writing
// of phylogenetic trees
// with colored branches
// in several output formats:
// newick
// (plain topology,
// as the format has no color support),
// nexus,
// phyloXML,
// and SVG.
package treeout

import (
	"bufio"
	"fmt"
	"image/color"
	"io"

	"github.com/evolbioinfo/gotree/tree"
	"github.com/js-arias/phyplace/outfile"
)

// Formats is the set of output tree formats
// selected by the user.
type Formats struct {
	Newick   bool
	Nexus    bool
	PhyloXML bool
	SVG      bool
}

// Any returns true if at least one format
// is selected.
func (f Formats) Any() bool {
	return f.Newick || f.Nexus || f.PhyloXML || f.SVG
}

// Extensions returns the file extensions
// (without dot)
// of the selected formats.
func (f Formats) Extensions() []string {
	var ext []string
	if f.Newick {
		ext = append(ext, "newick")
	}
	if f.Nexus {
		ext = append(ext, "nexus")
	}
	if f.PhyloXML {
		ext = append(ext, "phyloxml")
	}
	if f.SVG {
		ext = append(ext, "svg")
	}
	return ext
}

// A Tree is a phylogenetic tree
// with a color per branch.
type Tree struct {
	T *tree.Tree

	// Colors of the branches.
	// Branches without an entry are drawn black.
	Colors map[*tree.Edge]color.RGBA

	// Gradient and normalization
	// used for the color scale legend
	// of the SVG output.
	// A nil gradient omits the legend.
	Grad Gradienter
	Norm Normalizer
}

// Write writes the tree
// to all the selected formats,
// using the file names
// built from the prefix and infix.
func (f Formats) Write(prefix, infix string, ct Tree) error {
	if f.Newick {
		err := writeFile(outfile.Name(prefix, infix, "newick"), func(w io.Writer) error {
			return WriteNewick(w, ct)
		})
		if err != nil {
			return err
		}
	}
	if f.Nexus {
		err := writeFile(outfile.Name(prefix, infix, "nexus"), func(w io.Writer) error {
			return WriteNexus(w, ct)
		})
		if err != nil {
			return err
		}
	}
	if f.PhyloXML {
		err := writeFile(outfile.Name(prefix, infix, "phyloxml"), func(w io.Writer) error {
			return WritePhyloXML(w, ct)
		})
		if err != nil {
			return err
		}
	}
	if f.SVG {
		err := writeFile(outfile.Name(prefix, infix, "svg"), func(w io.Writer) error {
			return WriteSVG(w, ct)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func writeFile(name string, fn func(w io.Writer) error) (err error) {
	f, err := outfile.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	bw := bufio.NewWriter(f)
	if err := fn(bw); err != nil {
		return fmt.Errorf("while writing file %q: %v", name, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("while writing file %q: %v", name, err)
	}
	return nil
}

// WriteNewick writes the tree topology
// in newick format.
// The newick format has no support
// for branch colors.
func WriteNewick(w io.Writer, ct Tree) error {
	if _, err := io.WriteString(w, ct.T.Newick()); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// WriteNexus writes the tree in nexus format,
// with branch colors stored
// as FigTree style comments
// ("[&!color=#rrggbb]")
// after each branch.
func WriteNexus(w io.Writer, ct Tree) error {
	tips := ct.T.Tips()
	fmt.Fprintf(w, "#NEXUS\n\nbegin taxa;\n\tdimensions ntax=%d;\n\ttaxlabels\n", len(tips))
	for _, tp := range tips {
		fmt.Fprintf(w, "\t\t%s\n", tp.Name())
	}
	fmt.Fprintf(w, "\t;\nend;\n\nbegin trees;\n\ttree tree1 = [&R] ")

	if err := writeColorNewick(w, ct); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nend;\n")
	return err
}

// WriteColorNewick writes a newick string
// with a color comment per branch.
func writeColorNewick(w io.Writer, ct Tree) error {
	type pair struct{ a, b *tree.Node }
	edgeOf := make(map[pair]*tree.Edge, len(ct.T.Edges()))
	for _, e := range ct.T.Edges() {
		edgeOf[pair{e.Left(), e.Right()}] = e
		edgeOf[pair{e.Right(), e.Left()}] = e
	}

	var wErr error
	var walk func(n, prev *tree.Node, e *tree.Edge)
	walk = func(n, prev *tree.Node, e *tree.Edge) {
		if wErr != nil {
			return
		}
		if !n.Tip() || n == ct.T.Root() {
			if _, err := io.WriteString(w, "("); err != nil {
				wErr = err
				return
			}
			first := true
			for _, c := range n.Neigh() {
				if c == prev {
					continue
				}
				if !first {
					if _, err := io.WriteString(w, ","); err != nil {
						wErr = err
						return
					}
				}
				first = false
				walk(c, n, edgeOf[pair{n, c}])
			}
			if _, err := io.WriteString(w, ")"); err != nil {
				wErr = err
				return
			}
		}
		if n.Tip() {
			if _, err := io.WriteString(w, n.Name()); err != nil {
				wErr = err
				return
			}
		}
		if e == nil {
			return
		}
		if c, ok := ct.Colors[e]; ok {
			if _, err := fmt.Fprintf(w, "[&!color=#%02x%02x%02x]", c.R, c.G, c.B); err != nil {
				wErr = err
				return
			}
		}
		if l := e.Length(); l >= 0 {
			if _, err := fmt.Fprintf(w, ":%g", l); err != nil {
				wErr = err
				return
			}
		}
	}
	walk(ct.T.Root(), nil, nil)
	if wErr != nil {
		return wErr
	}
	_, err := io.WriteString(w, ";")
	return err
}
