// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package examine is a metapackage for commands
// that examine the properties
// of placement samples.
package examine

import (
	"github.com/js-arias/command"
	"github.com/js-arias/phyplace/cmd/phyplace/examine/edplcmd"
	"github.com/js-arias/phyplace/cmd/phyplace/examine/info"
)

var Command = &command.Command{
	Usage: "examine <command> [<argument>...]",
	Short: "commands for examining placement samples",
}

func init() {
	Command.Add(edplcmd.Command)
	Command.Add(info.Command)
}
