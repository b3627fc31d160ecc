// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package squashcmd implements a command
// to cluster placement samples
// by the distribution of their masses
// on the reference tree.
package squashcmd

import (
	"bufio"
	"fmt"
	"io"

	"github.com/js-arias/command"
	"github.com/js-arias/phyplace/mass"
	"github.com/js-arias/phyplace/outfile"
	"github.com/js-arias/phyplace/squash"
	"gonum.org/v1/gonum/mat"
)

var Command = &command.Command{
	Usage: `squash [--point-mass] [--ignore-multiplicities]
	[-o|--output <prefix>] [--cpu <number>]
	<jplace-file>...`,
	Short: "cluster samples by their placement mass distributions",
	Long: `
Command squash reads two or more placement files in jplace format and builds
a hierarchical clustering of the samples, using squash clustering (Matsen and
Evans 2013).

All the samples must share the reference tree of the first read file. The
mass of each sample is normalized to a total of one, and the distance between
two samples is the Kantorovich-Rubinstein distance of their mass
distributions on the reference tree. At each step the two closest clusters
are merged; the mass distribution of the merged cluster is the average of its
members, and the branch length to each child is the distance from the child
to the merged distribution.

If the flag --point-mass is defined, only the most probable placement of each
pquery will be used. If the flag --ignore-multiplicities is defined, all
pqueries will count as a single unit.

The cluster tree is written in newick format to the file
"<prefix>_cluster.newick", with the sample file names as terminals and the
merge distances as branch lengths. The default prefix is "squash" and can be
changed with the flag --output, or -o. If the output file already exists, the
command will finish with an error.

By default, all available CPUs will be used to read the input files and to
calculate the distances. Set the flag --cpu to use a different number of
CPUs.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var pointMass bool
var ignoreMult bool
var cpuFlag int
var output string

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&pointMass, "point-mass", false, "")
	c.Flags().BoolVar(&ignoreMult, "ignore-multiplicities", false, "")
	c.Flags().IntVar(&cpuFlag, "cpu", 0, "")
	c.Flags().StringVar(&output, "output", "squash", "")
	c.Flags().StringVar(&output, "o", "squash", "")
}

func run(c *command.Command, args []string) error {
	if len(args) == 0 {
		return c.UsageError("expecting placement files")
	}
	if len(args) < 2 {
		return fmt.Errorf("cannot cluster a single sample: at least two files required")
	}

	name := outfile.Name(output, "cluster", "newick")
	if err := outfile.Check([]string{name}); err != nil {
		return err
	}

	prof, err := mass.ReadProfile(args, cpuFlag, mass.Options{
		Normalize:            true,
		PointMass:            pointMass,
		IgnoreMultiplicities: ignoreMult,
	})
	if err != nil {
		return err
	}

	masses := make([][]float64, len(prof.Names))
	for i := range masses {
		masses[i] = mat.Row(nil, i, prof.Masses)
	}

	cl := squash.Cluster(prof.Ref, prof.Names, masses, cpuFlag)

	if err := writeTree(name, cl); err != nil {
		return err
	}
	return nil
}

func writeTree(name string, cl *squash.Clustering) (err error) {
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
	if _, err := io.WriteString(bw, cl.Newick()); err != nil {
		return fmt.Errorf("while writing file %q: %v", name, err)
	}
	if _, err := io.WriteString(bw, "\n"); err != nil {
		return fmt.Errorf("while writing file %q: %v", name, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("while writing file %q: %v", name, err)
	}
	return nil
}
