// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package taxonomy implements a hierarchical taxonomy
// read from taxonomic path strings
// (e.g. "Bacteria;Proteobacteria;Gammaproteobacteria"),
// and its conversion into a tree
// that can be used as a constraint
// for phylogenetic inference.
package taxonomy

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// A Taxon is a named level of a taxonomy.
// Taxa attached from a taxon list
// are always terminals.
type Taxon struct {
	name     string
	children []*Taxon
	index    map[string]*Taxon
	terminal bool
}

// A Taxonomy is a hierarchy of taxonomic names.
type Taxonomy struct {
	root *Taxon
}

// New creates a new empty taxonomy.
func New() *Taxonomy {
	return &Taxonomy{root: &Taxon{index: make(map[string]*Taxon)}}
}

// ParsePath splits a taxonomic path string
// into its levels.
// Levels are separated by semicolons,
// empty levels
// (as in a trailing semicolon)
// are ignored.
func ParsePath(s string) []string {
	var path []string
	for _, lv := range strings.Split(s, ";") {
		lv = strings.Join(strings.Fields(lv), " ")
		if lv == "" {
			continue
		}
		path = append(path, lv)
	}
	return path
}

// AddPath adds a taxonomic path to the taxonomy,
// creating any missing level.
func (tx *Taxonomy) AddPath(path []string) {
	p := tx.root
	for _, lv := range path {
		c, ok := p.index[lv]
		if !ok {
			c = &Taxon{name: lv, index: make(map[string]*Taxon)}
			p.index[lv] = c
			p.children = append(p.children, c)
		}
		p = c
	}
}

// AddTaxon attaches a named terminal taxon
// at the given taxonomic path,
// creating any missing level.
func (tx *Taxonomy) AddTaxon(name string, path []string) {
	tx.AddPath(path)
	p := tx.root
	for _, lv := range path {
		p = p.index[lv]
	}
	c := &Taxon{name: name, terminal: true}
	p.children = append(p.children, c)
}

// IsEmpty returns true for a taxonomy
// without any taxon.
func (tx *Taxonomy) IsEmpty() bool {
	return len(tx.root.children) == 0
}

// ReadTaxonomy reads a taxonomy
// from a file that lists taxonomic paths.
// The path must be the first tab-delimited field
// of each line;
// any additional field is ignored.
// Lines starting with '#' are comments.
func (tx *Taxonomy) ReadTaxonomy(r io.Reader) error {
	tsv := csv.NewReader(r)
	tsv.Comma = '\t'
	tsv.Comment = '#'
	tsv.FieldsPerRecord = -1

	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return fmt.Errorf("on row %d: %v", ln, err)
		}
		path := ParsePath(row[0])
		if len(path) == 0 {
			return fmt.Errorf("on row %d: empty taxonomic path", ln)
		}
		tx.AddPath(path)
	}
	return nil
}

// ReadTaxaList reads a tab-delimited file
// that maps taxon names to taxonomic paths,
// and attaches each taxon as a terminal.
// Each row must have exactly two fields;
// duplicated taxon names are an error.
func (tx *Taxonomy) ReadTaxaList(r io.Reader) error {
	tsv := csv.NewReader(r)
	tsv.Comma = '\t'
	tsv.Comment = '#'
	tsv.FieldsPerRecord = -1

	names := make(map[string]bool)
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return fmt.Errorf("on row %d: %v", ln, err)
		}
		if len(row) != 2 {
			return fmt.Errorf("on row %d: got %d fields, expecting 2", ln, len(row))
		}
		name := strings.Join(strings.Fields(row[0]), " ")
		if name == "" {
			return fmt.Errorf("on row %d: empty taxon name", ln)
		}
		if names[name] {
			return fmt.Errorf("on row %d: duplicate taxon name %q", ln, name)
		}
		names[name] = true

		path := ParsePath(row[1])
		if len(path) == 0 {
			return fmt.Errorf("on row %d: taxon %q: empty taxonomic path", ln, name)
		}
		tx.AddTaxon(name, path)
	}
	return nil
}

// Options for the conversion of a taxonomy
// into a tree.
type Options struct {
	// KeepSingletons keeps chains of levels
	// without any furcation,
	// instead of collapsing them
	// into a single level.
	KeepSingletons bool

	// KeepInnerNames sets taxonomic names
	// on the inner nodes of the tree.
	KeepInnerNames bool

	// MaxLevel is the maximum taxonomic level
	// (0-based)
	// added to the tree.
	// A negative value means no limit.
	MaxLevel int
}

func (tax *Taxon) hasTerminal() bool {
	if tax.terminal {
		return true
	}
	for _, c := range tax.children {
		if c.hasTerminal() {
			return true
		}
	}
	return false
}

// A Node is a node of the tree
// derived from a taxonomy.
type Node struct {
	Name     string
	Children []*Node
}

// Tree converts the taxonomy into a tree.
func (tx *Taxonomy) Tree(o Options) *Node {
	root := convert(tx.root, o, -1)
	if root == nil {
		root = &Node{}
	}
	return root
}

func convert(tax *Taxon, o Options, level int) *Node {
	// Terminals,
	// and the levels that lead to them,
	// are kept even beyond the maximum level.
	if o.MaxLevel >= 0 && level > o.MaxLevel && !tax.hasTerminal() {
		return nil
	}
	n := &Node{Name: tax.name}
	for _, c := range tax.children {
		if cn := convert(c, o, level+1); cn != nil {
			n.Children = append(n.Children, cn)
		}
	}
	if len(n.Children) == 0 {
		return n
	}
	if !o.KeepInnerNames && level >= 0 {
		n.Name = ""
	}

	// Collapse a chain without furcation,
	// keeping the most specific level.
	if !o.KeepSingletons && len(n.Children) == 1 && level >= 0 {
		return n.Children[0]
	}
	return n
}

// Walk calls a function on the node
// and all its descendants,
// in preorder.
func (n *Node) Walk(f func(*Node)) {
	f(n)
	for _, c := range n.Children {
		c.Walk(f)
	}
}

// ValidName returns true if a name
// can be used as a newick node label
// without quotation:
// printable characters
// excluding spaces
// and the structural characters ",:;()[]" and '"'.
func ValidName(name string) bool {
	for _, r := range name {
		if !validNameChar(r) {
			return false
		}
	}
	return true
}

func validNameChar(r rune) bool {
	if !unicode.IsPrint(r) || unicode.IsSpace(r) {
		return false
	}
	switch r {
	case ',', ':', ';', '(', ')', '[', ']', '"':
		return false
	}
	return true
}

// ReplaceInvalid replaces every character
// that is not a valid newick label character
// by an underscore.
// It returns the new name
// and true if any character was replaced.
func ReplaceInvalid(name string) (string, bool) {
	if ValidName(name) {
		return name, false
	}
	rs := []rune(name)
	for i, r := range rs {
		if !validNameChar(r) {
			rs[i] = '_'
		}
	}
	return string(rs), true
}

// Newick writes the tree in newick
// (parenthetical)
// format,
// without branch lengths.
// Names that are not valid newick labels
// are wrapped in double quotation marks.
func (n *Node) Newick(w io.Writer) error {
	if err := n.writeNewick(w); err != nil {
		return err
	}
	_, err := io.WriteString(w, ";\n")
	return err
}

func (n *Node) writeNewick(w io.Writer) error {
	if len(n.Children) > 0 {
		if _, err := io.WriteString(w, "("); err != nil {
			return err
		}
		for i, c := range n.Children {
			if i > 0 {
				if _, err := io.WriteString(w, ","); err != nil {
					return err
				}
			}
			if err := c.writeNewick(w); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, ")"); err != nil {
			return err
		}
	}
	name := n.Name
	if name != "" && !ValidName(name) {
		name = `"` + strings.ReplaceAll(name, `"`, `'`) + `"`
	}
	_, err := io.WriteString(w, name)
	return err
}
