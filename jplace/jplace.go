// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package jplace implements reading
// of phylogenetic placement files
// in the jplace format
// <https://journals.plos.org/plosone/article?id=10.1371/journal.pone.0031009>.
//
// A jplace file is a JSON document
// that stores a reference tree
// with explicitly numbered edges,
// and a collection of query sequences
// (pqueries),
// each with one or more probability-weighted placements
// on the edges of the tree.
package jplace

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/evolbioinfo/gotree/io/newick"
	"github.com/evolbioinfo/gotree/tree"
)

// A Placement is a single placement location
// of a pquery on the reference tree.
type Placement struct {
	// Edge is the jplace number of the edge.
	Edge int

	// LikeWeightRatio is the probability weight
	// of this placement location.
	LikeWeightRatio float64

	// Likelihood of the placement.
	Likelihood float64

	// DistalLength is the distance
	// of the attachment point
	// from the distal (away from the root) node
	// of the edge.
	DistalLength float64

	// PendantLength is the length
	// of the branch that attaches the query
	// to the edge.
	PendantLength float64
}

// A Name is a name of a pquery
// with its abundance multiplicity.
type Name struct {
	Name         string
	Multiplicity float64
}

// A Pquery is a query sequence
// (or a set of identical query sequences)
// with its placement locations.
type Pquery struct {
	Names      []Name
	Placements []Placement
}

// Multiplicity returns the total multiplicity
// of a pquery,
// i.e. the sum of the multiplicities
// of all its names.
// An unnamed pquery has a multiplicity of 1.
func (p Pquery) Multiplicity() float64 {
	if len(p.Names) == 0 {
		return 1
	}
	var sum float64
	for _, n := range p.Names {
		sum += n.Multiplicity
	}
	return sum
}

// Best returns the placement
// with the highest like weight ratio.
func (p Pquery) Best() Placement {
	best := p.Placements[0]
	for _, pl := range p.Placements[1:] {
		if pl.LikeWeightRatio > best.LikeWeightRatio {
			best = pl
		}
	}
	return best
}

// A Sample is the content of a jplace file:
// a reference tree with numbered edges
// and a collection of pqueries.
type Sample struct {
	name     string
	t        *tree.Tree
	edges    []*tree.Edge
	nums     map[*tree.Edge]int
	pqueries []Pquery
	sig      string
}

// Name returns the name of the sample,
// usually the base name of the source file.
func (s *Sample) Name() string { return s.name }

// Tree returns the reference tree of the sample.
func (s *Sample) Tree() *tree.Tree { return s.t }

// Edges returns the number of numbered edges
// of the reference tree.
func (s *Sample) Edges() int { return len(s.edges) }

// Edge returns the tree edge
// with the given jplace edge number.
func (s *Sample) Edge(num int) *tree.Edge {
	if num < 0 || num >= len(s.edges) {
		return nil
	}
	return s.edges[num]
}

// EdgeNum returns the jplace number of a tree edge.
func (s *Sample) EdgeNum(e *tree.Edge) int {
	num, ok := s.nums[e]
	if !ok {
		return -1
	}
	return num
}

// Pqueries returns the pqueries of the sample.
func (s *Sample) Pqueries() []Pquery { return s.pqueries }

// PointMass reduces every pquery
// to its highest-weight placement,
// with the full unit weight on it.
func (s *Sample) PointMass() {
	for i, pq := range s.pqueries {
		best := pq.Best()
		best.LikeWeightRatio = 1
		s.pqueries[i].Placements = []Placement{best}
	}
}

// Compatible returns true if two samples
// have structurally identical reference trees,
// that is the same topology,
// the same tip names,
// and the same edge numbering.
// Branch lengths are not compared.
func Compatible(a, b *Sample) bool {
	return a.sig == b.sig
}

// BaseName returns the name of a jplace file
// without its directory
// and without the .jplace extension.
func BaseName(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, ".jplace")
	return name
}

// ReadFile reads a sample from a jplace file.
func ReadFile(path string) (*Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := Read(f, BaseName(path))
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", path, err)
	}
	return s, nil
}

type jplaceFile struct {
	Version    int            `json:"version"`
	Tree       string         `json:"tree"`
	Fields     []string       `json:"fields"`
	Placements []jplacePquery `json:"placements"`
}

type jplacePquery struct {
	P  [][]float64 `json:"p"`
	N  []string    `json:"n"`
	NM [][]any     `json:"nm"`
}

// Read reads a sample in jplace format.
func Read(r io.Reader, name string) (*Sample, error) {
	d := json.NewDecoder(r)
	var jf jplaceFile
	if err := d.Decode(&jf); err != nil {
		return nil, fmt.Errorf("invalid jplace document: %v", err)
	}
	if jf.Version < 1 || jf.Version > 3 {
		return nil, fmt.Errorf("unsupported jplace version: %d", jf.Version)
	}
	if jf.Tree == "" {
		return nil, fmt.Errorf("jplace document without a reference tree")
	}

	fields := make(map[string]int, len(jf.Fields))
	for i, f := range jf.Fields {
		fields[strings.ToLower(f)] = i
	}
	for _, f := range []string{"edge_num", "like_weight_ratio"} {
		if _, ok := fields[f]; !ok {
			return nil, fmt.Errorf("jplace document: expecting field %q", f)
		}
	}

	s := &Sample{name: name}
	if err := s.parseTree(jf.Tree); err != nil {
		return nil, err
	}

	for i, jp := range jf.Placements {
		pq, err := s.parsePquery(jp, fields)
		if err != nil {
			return nil, fmt.Errorf("on pquery %d: %v", i, err)
		}
		s.pqueries = append(s.pqueries, pq)
	}
	s.sig = signature(s)
	return s, nil
}

func (s *Sample) parsePquery(jp jplacePquery, fields map[string]int) (Pquery, error) {
	var pq Pquery
	if len(jp.P) == 0 {
		return Pquery{}, fmt.Errorf("pquery without placements")
	}
	for _, row := range jp.P {
		if len(row) != len(fields) {
			return Pquery{}, fmt.Errorf("placement with %d values, expecting %d", len(row), len(fields))
		}
		var pl Placement
		pl.Edge = int(row[fields["edge_num"]])
		if s.Edge(pl.Edge) == nil {
			return Pquery{}, fmt.Errorf("placement on undefined edge %d", pl.Edge)
		}
		pl.LikeWeightRatio = row[fields["like_weight_ratio"]]
		if math.IsNaN(pl.LikeWeightRatio) || math.IsInf(pl.LikeWeightRatio, 0) || pl.LikeWeightRatio < 0 {
			return Pquery{}, fmt.Errorf("invalid like weight ratio on edge %d", pl.Edge)
		}
		if f, ok := fields["likelihood"]; ok {
			pl.Likelihood = row[f]
		}
		if f, ok := fields["distal_length"]; ok {
			pl.DistalLength = row[f]
		} else if f, ok := fields["proximal_length"]; ok {
			// Old pplacer files store the distance
			// from the proximal node instead.
			if l := s.Edge(pl.Edge).Length(); l > 0 {
				pl.DistalLength = l - row[f]
			}
		}
		if f, ok := fields["pendant_length"]; ok {
			pl.PendantLength = row[f]
		}
		pq.Placements = append(pq.Placements, pl)
	}

	for _, n := range jp.N {
		pq.Names = append(pq.Names, Name{Name: n, Multiplicity: 1})
	}
	for _, nm := range jp.NM {
		if len(nm) != 2 {
			return Pquery{}, fmt.Errorf("invalid name-multiplicity pair")
		}
		name, ok := nm[0].(string)
		if !ok {
			return Pquery{}, fmt.Errorf("invalid name-multiplicity pair")
		}
		mult, ok := nm[1].(float64)
		if !ok {
			return Pquery{}, fmt.Errorf("invalid multiplicity for name %q", name)
		}
		pq.Names = append(pq.Names, Name{Name: name, Multiplicity: mult})
	}
	return pq, nil
}

// In a jplace tree the number of an edge
// is given in curly braces
// after the branch length of the edge,
// e.g. "((A:0.2{0},B:0.09{1}):0.7{2},C:0.7{3}){4};".
// The numbers are rewritten as node name markers
// so that the tree can be parsed
// as a plain newick tree.
var (
	edgeNumRx = regexp.MustCompile(`([^,():;{}\[\]]*?)(:[^,():;{}\[\]]*)?\{([0-9]+)\}`)
	markerRx  = regexp.MustCompile(`##([0-9]+)##$`)
)

func (s *Sample) parseTree(nwk string) error {
	marked := edgeNumRx.ReplaceAllString(nwk, "${1}##${3}##${2}")
	t, err := newick.NewParser(strings.NewReader(marked)).Parse()
	if err != nil {
		return fmt.Errorf("invalid reference tree: %v", err)
	}

	nums := make(map[*tree.Edge]int)
	max := -1
	var tErr error
	t.PreOrder(func(cur, prev *tree.Node, e *tree.Edge) bool {
		m := markerRx.FindStringSubmatch(cur.Name())
		if m == nil {
			if prev != nil {
				tErr = fmt.Errorf("reference tree: edge without a jplace number")
				return false
			}
			return true
		}
		cur.SetName(strings.TrimSuffix(cur.Name(), m[0]))
		if prev == nil {
			// A number on the root has no edge.
			return true
		}
		num, _ := strconv.Atoi(m[1])
		if num > max {
			max = num
		}
		nums[e] = num
		return true
	})
	if tErr != nil {
		return tErr
	}
	if len(nums) == 0 {
		return fmt.Errorf("reference tree without jplace edge numbers")
	}

	edges := make([]*tree.Edge, max+1)
	for e, num := range nums {
		if edges[num] != nil {
			return fmt.Errorf("reference tree: duplicate edge number %d", num)
		}
		edges[num] = e
	}

	s.t = t
	s.edges = edges
	s.nums = nums
	return nil
}

// Signature builds a canonical description
// of the topology,
// the tip names,
// and the edge numbering of the reference tree.
// It is used for the compatibility check.
func signature(s *Sample) string {
	type pair struct{ a, b *tree.Node }
	edgeOf := make(map[pair]*tree.Edge, len(s.t.Edges()))
	for _, e := range s.t.Edges() {
		edgeOf[pair{e.Left(), e.Right()}] = e
		edgeOf[pair{e.Right(), e.Left()}] = e
	}

	var sb strings.Builder
	var walk func(n, prev *tree.Node, e *tree.Edge)
	walk = func(n, prev *tree.Node, e *tree.Edge) {
		sb.WriteByte('(')
		for _, c := range n.Neigh() {
			if c == prev {
				continue
			}
			walk(c, n, edgeOf[pair{n, c}])
		}
		sb.WriteByte(')')
		if n.Tip() {
			sb.WriteString(n.Name())
		}
		if e != nil {
			fmt.Fprintf(&sb, "{%d}", s.nums[e])
		}
		sb.WriteByte(',')
	}
	walk(s.t.Root(), nil, nil)
	return sb.String()
}
