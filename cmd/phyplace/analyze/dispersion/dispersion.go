// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package dispersion implements a command
// to paint the dispersion of placement masses
// on the reference tree.
package dispersion

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/evolbioinfo/gotree/tree"
	"github.com/js-arias/command"
	"github.com/js-arias/phyplace/mass"
	"github.com/js-arias/phyplace/outfile"
	"github.com/js-arias/phyplace/treeout"
	"gonum.org/v1/gonum/mat"
)

var Command = &command.Command{
	Usage: `dispersion [--edge-values <value>] [--method <value>]
	[--absolute] [--point-mass] [--ignore-multiplicities]
	[--gradient <name>] [--mask-color <color>]
	[--newick] [--nexus] [--phyloxml] [--svg]
	[-o|--output <prefix>] [--cpu <number>]
	<jplace-file>...`,
	Short: "calculate the dispersion of placements among samples",
	Long: `
Command dispersion reads two or more placement files in jplace format and
draws the variation of the placement mass of each branch among the samples on
the reference tree.

All the samples must share the reference tree of the first read file.

By default, the dispersion is measured both on the masses per branch and on
the mass imbalances per branch. The flag --edge-values changes the measured
value:

	both        masses and imbalances (default)
	masses      the placement mass of each branch
	imbalances  the mass difference between the two sides of each branch

By default, all applicable dispersion methods will be used, each one written
to its own set of output files. Use the flag --method to select a single
method:

	all      all applicable methods (default)
	sd       standard deviation
	sd-log   standard deviation, on a logarithmic color scale
	var      variance
	var-log  variance, on a logarithmic color scale
	cv       coefficient of variation (sd divided by the mean)
	cv-log   coefficient of variation, on a logarithmic color scale
	vmr      variance to mean ratio (index of dispersion)
	vmr-log  variance to mean ratio, on a logarithmic color scale

As imbalances can be negative, the cv and vmr methods are only valid for
masses. Logarithmic scales only change the mapping of the values to the color
gradient.

By default, the mass of each sample is normalized to a total of one, so
samples of different size can be compared. Use --absolute to keep the raw
mass values. If the flag --point-mass is defined, only the most probable
placement of each pquery will be used. If the flag --ignore-multiplicities is
defined, all pqueries will count as a single unit.

Branches are colored with a sequential color gradient. Use the flag
--gradient to select the gradient by name:

	incandescent  black to yellow, luminance increasing (default)
	iridescent    blue to brown
	rainbow       purple to red
	gray          light gray to black

Branches with an undefined value, for example the coefficient of variation of
a branch without any mass, are painted with a mask color, light gray by
default. Use the flag --mask-color, with a color in "#rrggbb" notation, to
change it.

The colored trees are written in the formats indicated by the flags --nexus,
--phyloxml, and --svg. The flag --newick writes the plain topology, as the
newick format has no support for colors. If no format is selected the command
will finish without writing any file.

Output file names are formed by a prefix, the measured value, and the method,
for example "dispersion_masses_sd_log.svg". The default prefix is
"dispersion" and can be changed with the flag --output, or -o. If an output
file already exists, the command will finish with an error.

By default, all available CPUs will be used to read the input files. Set the
flag --cpu to use a different number of CPUs.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var absolute bool
var pointMass bool
var ignoreMult bool
var newickFlag bool
var nexusFlag bool
var xmlFlag bool
var svgFlag bool
var cpuFlag int
var edgeValues string
var method string
var gradName string
var maskColor string
var output string

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&absolute, "absolute", false, "")
	c.Flags().BoolVar(&pointMass, "point-mass", false, "")
	c.Flags().BoolVar(&ignoreMult, "ignore-multiplicities", false, "")
	c.Flags().BoolVar(&newickFlag, "newick", false, "")
	c.Flags().BoolVar(&nexusFlag, "nexus", false, "")
	c.Flags().BoolVar(&xmlFlag, "phyloxml", false, "")
	c.Flags().BoolVar(&svgFlag, "svg", false, "")
	c.Flags().IntVar(&cpuFlag, "cpu", 0, "")
	c.Flags().StringVar(&edgeValues, "edge-values", "both", "")
	c.Flags().StringVar(&method, "method", "all", "")
	c.Flags().StringVar(&gradName, "gradient", "incandescent", "")
	c.Flags().StringVar(&maskColor, "mask-color", "#dfdfdf", "")
	c.Flags().StringVar(&output, "output", "dispersion", "")
	c.Flags().StringVar(&output, "o", "dispersion", "")
}

// A variant is a dispersion measurement
// to be written as a colored tree.
type variant struct {
	name      string
	imbalance bool
	method    string
	log       bool
}

func variants(edgeValues, method string) []variant {
	var vs []variant
	for _, imb := range []bool{false, true} {
		if imb && edgeValues == "masses" {
			continue
		}
		if !imb && edgeValues == "imbalances" {
			continue
		}
		for _, m := range []string{"sd", "var", "cv", "vmr"} {
			// the mean of the imbalances is close to zero,
			// so ratio methods are meaningless for them
			if imb && (m == "cv" || m == "vmr") {
				continue
			}
			for _, log := range []bool{false, true} {
				sel := m
				if log {
					sel += "-log"
				}
				if method != "all" && method != sel {
					continue
				}
				ev := "masses"
				if imb {
					ev = "imbalances"
				}
				name := ev + "_" + m
				if log {
					name += "_log"
				}
				vs = append(vs, variant{
					name:      name,
					imbalance: imb,
					method:    m,
					log:       log,
				})
			}
		}
	}
	return vs
}

func run(c *command.Command, args []string) error {
	if len(args) == 0 {
		return c.UsageError("expecting placement files")
	}
	if len(args) < 2 {
		return fmt.Errorf("the dispersion of a single sample is undefined: at least two files required")
	}

	edgeValues = strings.ToLower(edgeValues)
	switch edgeValues {
	case "both", "masses", "imbalances":
	default:
		return c.UsageError(fmt.Sprintf("unknown --edge-values value %q", edgeValues))
	}
	method = strings.ToLower(method)
	switch method {
	case "all", "sd", "sd-log", "var", "var-log", "cv", "cv-log", "vmr", "vmr-log":
	default:
		return c.UsageError(fmt.Sprintf("unknown --method value %q", method))
	}
	vs := variants(edgeValues, method)
	if len(vs) == 0 {
		return c.UsageError(fmt.Sprintf("method %q is not applicable to %q", method, edgeValues))
	}

	grad, err := treeout.Gradient(gradName)
	if err != nil {
		return c.UsageError(err.Error())
	}
	mask, err := treeout.ParseColor(maskColor)
	if err != nil {
		return c.UsageError(err.Error())
	}

	formats := treeout.Formats{
		Newick:   newickFlag,
		Nexus:    nexusFlag,
		PhyloXML: xmlFlag,
		SVG:      svgFlag,
	}
	if !formats.Any() {
		fmt.Fprintf(c.Stderr(), "Warning: no output tree format selected, no file will be written.\n")
	}

	var names []string
	for _, v := range vs {
		for _, ext := range formats.Extensions() {
			names = append(names, outfile.Name(output, v.name, ext))
		}
	}
	if err := outfile.Check(names); err != nil {
		return err
	}

	prof, err := mass.ReadProfile(args, cpuFlag, mass.Options{
		Normalize:            !absolute,
		PointMass:            pointMass,
		IgnoreMultiplicities: ignoreMult,
	})
	if err != nil {
		return err
	}

	for _, v := range vs {
		m := prof.Masses
		if v.imbalance {
			m = prof.Imbalances
		}
		values := dispersion(m, v.method, cpuFlag)

		var norm treeout.Normalizer
		if v.log {
			norm = treeout.NewLog(values)
		} else {
			norm = treeout.NewLinear(values)
		}
		cs := treeout.Colors(values, grad, norm, mask)

		ec := make(map[*tree.Edge]color.RGBA, len(cs))
		for num, col := range cs {
			if e := prof.Ref.Edge(num); e != nil {
				ec[e] = col
			}
		}
		ct := treeout.Tree{
			T:      prof.Ref.Tree(),
			Colors: ec,
			Grad:   grad,
			Norm:   norm,
		}
		if err := formats.Write(output, v.name, ct); err != nil {
			return err
		}
	}
	return nil
}

func dispersion(m *mat.Dense, method string, cpu int) []float64 {
	mean, sd := mass.ColMeanStdDev(m, cpu)
	values := make([]float64, len(sd))
	for i := range values {
		switch method {
		case "sd":
			values[i] = sd[i]
		case "var":
			values[i] = sd[i] * sd[i]
		case "cv":
			values[i] = sd[i] / mean[i]
		case "vmr":
			values[i] = sd[i] * sd[i] / mean[i]
		}
	}
	return values
}
