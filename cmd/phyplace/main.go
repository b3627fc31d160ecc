// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// PhyPlace is a tool for the analysis
// of phylogenetic placements
// of query sequences
// on a reference tree.
package main

import (
	"github.com/js-arias/command"
	"github.com/js-arias/phyplace/cmd/phyplace/analyze"
	"github.com/js-arias/phyplace/cmd/phyplace/examine"
	"github.com/js-arias/phyplace/cmd/phyplace/prepare"
	"github.com/js-arias/phyplace/cmd/phyplace/squashcmd"
)

var app = &command.Command{
	Usage: "phyplace <command> [<argument>...]",
	Short: "a tool for phylogenetic placement analysis",
}

func init() {
	app.Add(analyze.Command)
	app.Add(examine.Command)
	app.Add(prepare.Command)
	app.Add(squashcmd.Command)
}

func main() {
	app.Main()
}
