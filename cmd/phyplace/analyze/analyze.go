// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package analyze is a metapackage for commands
// that analyze sets of placement samples.
package analyze

import (
	"github.com/js-arias/command"
	"github.com/js-arias/phyplace/cmd/phyplace/analyze/dispersion"
)

var Command = &command.Command{
	Usage: "analyze <command> [<argument>...]",
	Short: "commands for the analysis of placement samples",
}

func init() {
	Command.Add(dispersion.Command)
}
