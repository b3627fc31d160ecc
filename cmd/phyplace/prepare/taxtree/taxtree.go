// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package taxtree implements a command
// to build a tree from a taxonomy.
package taxtree

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/phyplace/outfile"
	"github.com/js-arias/phyplace/taxonomy"
)

var Command = &command.Command{
	Usage: `taxonomy-tree [--taxonomy-file <file>] [--taxa-file <file>]
	[--keep-singleton-inner-nodes] [--keep-inner-node-names]
	[--max-level <number>] [--replace-invalid-chars]
	[-o|--output <prefix>]`,
	Short: "build a tree from a taxonomy",
	Long: `
Command taxonomy-tree reads a taxonomy and writes it as a tree in newick
format, for example to be used as a taxonomic constraint when building a
reference tree.

The taxonomy is read from the files given with the flags --taxonomy-file and
--taxa-file; at least one of them must be defined, and both can be combined.

The flag --taxonomy-file sets a tab-delimited file in which the first field
of each row is a taxonomic path, that is a list of taxon names separated by
semicolons, from the most inclusive to the most specific taxon, for example:

	Animalia;Chordata;Mammalia;Primates;Hominidae;Homo;Homo sapiens

Any additional field is ignored, so taxonomy dumps with extra columns can be
used directly. Rows starting with '#' are comments.

The flag --taxa-file sets a tab-delimited file in which each row has exactly
two fields, a taxon name and the taxonomic path in which the taxon will be
attached as a terminal. Duplicated taxon names are an error.

By default, chains of inner nodes without any furcation are collapsed into
the most specific node, and inner nodes are unnamed. Use the flag
--keep-singleton-inner-nodes to keep the chains, and the flag
--keep-inner-node-names to label the inner nodes with their taxon names. Use
the flag --max-level to cut the taxonomy at the given level (0 is the most
inclusive level); terminals defined with --taxa-file are always kept.

Taxon names with characters with a special meaning in the newick format, for
example parentheses or semicolons, are reported. If the flag
--replace-invalid-chars is defined, the offending characters will be replaced
by underscores; otherwise the names will be quoted in the output file.

The tree is written to the file "<prefix>.newick". The default prefix is
"taxonomy_tree" and can be changed with the flag --output, or -o. If the
output file already exists, the command will finish with an error.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var keepSingletons bool
var keepInnerNames bool
var replaceInvalid bool
var maxLevel int
var taxonomyFile string
var taxaFile string
var output string

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&keepSingletons, "keep-singleton-inner-nodes", false, "")
	c.Flags().BoolVar(&keepInnerNames, "keep-inner-node-names", false, "")
	c.Flags().BoolVar(&replaceInvalid, "replace-invalid-chars", false, "")
	c.Flags().IntVar(&maxLevel, "max-level", -1, "")
	c.Flags().StringVar(&taxonomyFile, "taxonomy-file", "", "")
	c.Flags().StringVar(&taxaFile, "taxa-file", "", "")
	c.Flags().StringVar(&output, "output", "taxonomy_tree", "")
	c.Flags().StringVar(&output, "o", "taxonomy_tree", "")
}

func run(c *command.Command, args []string) error {
	if len(args) > 0 {
		return c.UsageError("unexpected argument")
	}
	if taxonomyFile == "" && taxaFile == "" {
		return c.UsageError("expecting flag --taxonomy-file or --taxa-file")
	}

	name := outfile.Name(output, "", "newick")
	if err := outfile.Check([]string{name}); err != nil {
		return err
	}

	tx := taxonomy.New()
	if taxonomyFile != "" {
		if err := readFile(taxonomyFile, tx.ReadTaxonomy); err != nil {
			return err
		}
	}
	if taxaFile != "" {
		if err := readFile(taxaFile, tx.ReadTaxaList); err != nil {
			return err
		}
	}
	if tx.IsEmpty() {
		return fmt.Errorf("no taxon defined in the input files")
	}

	root := tx.Tree(taxonomy.Options{
		KeepSingletons: keepSingletons,
		KeepInnerNames: keepInnerNames,
		MaxLevel:       maxLevel,
	})

	invalid := 0
	root.Walk(func(n *taxonomy.Node) {
		if n.Name == "" || taxonomy.ValidName(n.Name) {
			return
		}
		invalid++
		if replaceInvalid {
			n.Name, _ = taxonomy.ReplaceInvalid(n.Name)
		}
	})
	if invalid > 0 {
		if replaceInvalid {
			fmt.Fprintf(c.Stderr(), "Replaced invalid characters in %d labels.\n", invalid)
		} else {
			fmt.Fprintf(c.Stderr(), "Warning: %d labels with invalid characters, written with quotation.\n", invalid)
		}
	}

	if err := writeTree(name, root); err != nil {
		return err
	}
	return nil
}

func readFile(name string, fn func(r io.Reader) error) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := fn(f); err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}
	return nil
}

func writeTree(name string, root *taxonomy.Node) (err error) {
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
	if err := root.Newick(bw); err != nil {
		return fmt.Errorf("while writing file %q: %v", name, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("while writing file %q: %v", name, err)
	}
	return nil
}
