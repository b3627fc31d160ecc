// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package mass implements the placement mass
// of a set of samples
// on the edges of a shared reference tree.
//
// The mass of an edge is the sum
// of the like weight ratios
// of the placements on the edge,
// weighted by the pquery multiplicities.
// The imbalance of an edge is the difference
// between the mass on its distal side
// (the subtree away from the root,
// including the edge itself)
// and the mass on the rest of the tree.
package mass

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/evolbioinfo/gotree/tree"
	"github.com/js-arias/phyplace/jplace"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Options for the mass calculation.
type Options struct {
	// Normalize scales the masses of each sample
	// to a total of one.
	Normalize bool

	// PointMass reduces every pquery
	// to its highest-weight placement
	// before the masses are accumulated.
	// It is applied by ReadProfile.
	PointMass bool

	// IgnoreMultiplicities treats every pquery
	// as having a multiplicity of one.
	IgnoreMultiplicities bool
}

// Edges returns the mass per edge of a sample,
// indexed by jplace edge number.
func Edges(s *jplace.Sample, o Options) []float64 {
	m := make([]float64, s.Edges())
	var total float64
	for _, pq := range s.Pqueries() {
		mult := pq.Multiplicity()
		if o.IgnoreMultiplicities {
			mult = 1
		}
		for _, pl := range pq.Placements {
			v := pl.LikeWeightRatio * mult
			m[pl.Edge] += v
			total += v
		}
	}
	if o.Normalize && total > 0 {
		for i := range m {
			m[i] /= total
		}
	}
	return m
}

// Imbalances returns the mass imbalance per edge
// of a sample,
// indexed by jplace edge number,
// from a mass vector
// as produced by Edges.
func Imbalances(s *jplace.Sample, masses []float64) []float64 {
	var total float64
	for _, v := range masses {
		total += v
	}

	// Post order accumulation
	// of the mass below each node.
	below := make(map[*tree.Node]float64)
	imb := make([]float64, len(masses))
	s.Tree().PostOrder(func(cur, prev *tree.Node, e *tree.Edge) bool {
		if e == nil {
			return true
		}
		num := s.EdgeNum(e)
		sub := below[cur]
		if num >= 0 {
			sub += masses[num]
		}
		below[prev] += sub
		if num >= 0 {
			imb[num] = sub - (total - sub)
		}
		return true
	})
	return imb
}

// A Profile stores the mass
// and imbalance matrices
// of a set of samples
// on a shared reference tree.
// Rows are samples
// and columns are edges,
// indexed by jplace edge number.
type Profile struct {
	// Ref is the first sample read.
	// Its tree is the shared reference tree.
	Ref *jplace.Sample

	// Names of the samples,
	// one per matrix row.
	Names []string

	Masses     *mat.Dense
	Imbalances *mat.Dense
}

// ReadProfile reads a set of jplace files
// and builds their mass and imbalance matrices.
// Files are read in parallel;
// use cpu to define the number of concurrent readers,
// the default (zero) uses all available CPU.
// All files must share the reference tree
// of the first file read.
func ReadProfile(files []string, cpu int, o Options) (*Profile, error) {
	if cpu == 0 {
		cpu = runtime.NumCPU()
	}

	type row struct {
		masses []float64
		imb    []float64
	}
	rows := make([]row, len(files))
	names := make([]string, len(files))

	var mu sync.Mutex
	var ref *jplace.Sample
	var firstErr error

	jobs := make(chan int, cpu*2)
	var wg sync.WaitGroup
	for range cpu {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for fi := range jobs {
				s, err := jplace.ReadFile(files[fi])
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					continue
				}
				if o.PointMass {
					s.PointMass()
				}

				// The first sample fixes the reference tree;
				// every other sample must match it.
				mu.Lock()
				if ref == nil {
					ref = s
				} else if !jplace.Compatible(ref, s) {
					if firstErr == nil {
						firstErr = fmt.Errorf("on file %q: reference tree differs from %q", files[fi], files[0])
					}
					mu.Unlock()
					continue
				}
				mu.Unlock()

				m := Edges(s, o)
				rows[fi] = row{
					masses: m,
					imb:    Imbalances(s, m),
				}
				names[fi] = s.Name()
			}
		}()
	}
	for fi := range files {
		jobs <- fi
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if ref == nil {
		return nil, fmt.Errorf("no samples read")
	}

	cols := ref.Edges()
	p := &Profile{
		Ref:        ref,
		Names:      names,
		Masses:     mat.NewDense(len(files), cols, nil),
		Imbalances: mat.NewDense(len(files), cols, nil),
	}
	for fi, r := range rows {
		p.Masses.SetRow(fi, r.masses)
		p.Imbalances.SetRow(fi, r.imb)
	}
	return p, nil
}

// ColMeanStdDev returns the mean
// and the standard deviation
// of each column of a matrix.
// Columns are independent
// and are processed in parallel;
// use cpu to define the number of concurrent workers,
// the default (zero) uses all available CPU.
func ColMeanStdDev(m *mat.Dense, cpu int) (mean, stdDev []float64) {
	if cpu == 0 {
		cpu = runtime.NumCPU()
	}
	_, cols := m.Dims()
	mean = make([]float64, cols)
	stdDev = make([]float64, cols)

	jobs := make(chan int, cpu*2)
	var wg sync.WaitGroup
	for range cpu {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				col := mat.Col(nil, c, m)
				mean[c], stdDev[c] = stat.MeanStdDev(col, nil)
			}
		}()
	}
	for c := 0; c < cols; c++ {
		jobs <- c
	}
	close(jobs)
	wg.Wait()

	return mean, stdDev
}
