// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package outfile_test

import (
	"os"
	"testing"

	"github.com/js-arias/phyplace/outfile"
)

func TestName(t *testing.T) {
	tests := []struct {
		prefix, infix, ext string
		want               string
	}{
		{"dispersion", "masses_sd", "svg", "dispersion_masses_sd.svg"},
		{"taxonomy_tree", "", "newick", "taxonomy_tree.newick"},
		{"edpl", "list", "csv", "edpl_list.csv"},
	}
	for _, p := range tests {
		if g := outfile.Name(p.prefix, p.infix, p.ext); g != p.want {
			t.Errorf("prefix %q, infix %q: got %q, want %q", p.prefix, p.infix, g, p.want)
		}
	}
}

func TestCheck(t *testing.T) {
	if err := outfile.Check([]string{"tmp-not-a-file-for-test.csv"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	name := "tmp-outfile-for-test.csv"
	f, err := outfile.Create(name)
	if err != nil {
		t.Fatalf("error when creating file: %v", err)
	}
	f.Close()
	defer os.Remove(name)

	if err := outfile.Check([]string{"tmp-not-a-file-for-test.csv", name}); err == nil {
		t.Errorf("expecting error on an existing file")
	}
}
