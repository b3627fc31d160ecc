// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package outfile implements the bookkeeping
// of the files written by a command:
// building output file names
// and refusing to overwrite existing files,
// so a command fails
// before doing any work
// instead of clobbering previous results.
package outfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Name builds an output file name
// from a prefix,
// an optional infix,
// and an extension.
func Name(prefix, infix, ext string) string {
	if infix == "" {
		return prefix + "." + ext
	}
	return prefix + "_" + infix + "." + ext
}

// Check returns an error
// if any of the named files already exists.
func Check(names []string) error {
	for _, name := range names {
		_, err := os.Stat(name)
		if err == nil {
			return fmt.Errorf("output file %q already exists", name)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("on file %q: %v", name, err)
		}
	}
	return nil
}

// Create creates an output file.
func Create(name string) (*os.File, error) {
	return os.Create(name)
}
