// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package info implements a command
// to print a summary
// of a set of placement samples.
package info

import (
	"encoding/csv"
	"strconv"

	"github.com/js-arias/command"
	"github.com/js-arias/phyplace/jplace"
)

var Command = &command.Command{
	Usage: "info <jplace-file>...",
	Short: "print a summary of placement samples",
	Long: `
Command info reads one or more placement files in jplace format and prints a
summary of each file to the standard output, as a tab-delimited table with
the columns:

	sample        the name of the sample file
	tips          the number of tips of the reference tree
	edges         the number of branches of the reference tree
	pqueries      the number of pqueries
	names         the number of pquery names
	multiplicity  the sum of the multiplicities of all names
	placements    the total number of placement locations
	`,
	Run: run,
}

func run(c *command.Command, args []string) error {
	if len(args) == 0 {
		return c.UsageError("expecting placement files")
	}

	w := csv.NewWriter(c.Stdout())
	w.Comma = '\t'
	header := []string{"sample", "tips", "edges", "pqueries", "names", "multiplicity", "placements"}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, a := range args {
		s, err := jplace.ReadFile(a)
		if err != nil {
			return err
		}

		var names, pls int
		var mult float64
		for _, pq := range s.Pqueries() {
			names += len(pq.Names)
			pls += len(pq.Placements)
			mult += pq.Multiplicity()
		}

		row := []string{
			s.Name(),
			strconv.Itoa(len(s.Tree().Tips())),
			strconv.Itoa(s.Edges()),
			strconv.Itoa(len(s.Pqueries())),
			strconv.Itoa(names),
			strconv.FormatFloat(mult, 'g', -1, 64),
			strconv.Itoa(pls),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
