// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package prepare is a metapackage for commands
// that prepare and preprocess
// phylogenetic and placement data.
package prepare

import (
	"github.com/js-arias/command"
	"github.com/js-arias/phyplace/cmd/phyplace/prepare/taxtree"
)

var Command = &command.Command{
	Usage: "prepare <command> [<argument>...]",
	Short: "commands for preparing phylogenetic data",
}

func init() {
	Command.Add(taxtree.Command)
}
