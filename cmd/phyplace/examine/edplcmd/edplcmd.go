// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package edplcmd implements a command
// to calculate the expected distance
// between placement locations
// of the pqueries of a set of samples.
package edplcmd

import (
	"encoding/csv"
	"fmt"
	"math"
	"runtime"
	"strconv"
	"sync"

	"github.com/js-arias/command"
	"github.com/js-arias/phyplace/edpl"
	"github.com/js-arias/phyplace/jplace"
	"github.com/js-arias/phyplace/outfile"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var Command = &command.Command{
	Usage: `edpl [--bins <number>] [--max <value>]
	[--no-list] [--plot]
	[-o|--output <prefix>] [--cpu <number>]
	<jplace-file>...`,
	Short: "calculate the expected distance between placement locations",
	Long: `
Command edpl reads one or more placement files in jplace format and
calculates the expected distance between placement locations (EDPL) of every
pquery (Matsen et al. 2011).

The EDPL is the expected branch length distance between two placement
locations of a pquery, drawn independently with the like weight ratios as
probabilities. A small value indicates a well resolved placement, while a
large value indicates a pquery that is spread over distant parts of the
reference tree.

All the samples must share the reference tree of the first read file.

The values are written to the file "<prefix>_list.csv", with a row per
pquery name and the columns:

	Sample        the name of the sample file
	Pquery        the pquery name
	Multiplicity  the abundance multiplicity of the name
	EDPL          the EDPL value

Use the flag --no-list to skip this file.

A histogram of the values, weighted by the multiplicities, is written to the
file "<prefix>_histogram.csv". The number of bins is set with the flag
--bins, 25 by default. The histogram covers the values between 0 and the
value of the flag --max; by default the maximum observed EDPL will be used.
Values beyond the maximum are accumulated in the last bin.

If the flag --plot is defined, the histogram will also be drawn as a bar
chart in the file "<prefix>_histogram.png".

The default prefix of the output files is "edpl" and can be changed with the
flag --output, or -o. If an output file already exists, the command will
finish with an error.

By default, all available CPUs will be used to process the input files. Set
the flag --cpu to use a different number of CPUs.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var noList bool
var plotFlag bool
var binsFlag int
var cpuFlag int
var maxFlag float64
var output string

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&noList, "no-list", false, "")
	c.Flags().BoolVar(&plotFlag, "plot", false, "")
	c.Flags().IntVar(&binsFlag, "bins", 25, "")
	c.Flags().IntVar(&cpuFlag, "cpu", 0, "")
	c.Flags().Float64Var(&maxFlag, "max", -1, "")
	c.Flags().StringVar(&output, "output", "edpl", "")
	c.Flags().StringVar(&output, "o", "edpl", "")
}

type record struct {
	name string
	mult float64
	edpl float64
}

func run(c *command.Command, args []string) error {
	if len(args) == 0 {
		return c.UsageError("expecting placement files")
	}
	if binsFlag < 1 {
		return c.UsageError("flag --bins must be at least one")
	}

	listFile := outfile.Name(output, "list", "csv")
	histFile := outfile.Name(output, "histogram", "csv")
	plotFile := outfile.Name(output, "histogram", "png")

	names := []string{histFile}
	if !noList {
		names = append(names, listFile)
	}
	if plotFlag {
		names = append(names, plotFile)
	}
	if err := outfile.Check(names); err != nil {
		return err
	}

	samples, rows, err := readSamples(args)
	if err != nil {
		return err
	}

	max := maxFlag
	if obs := maxValue(rows); max <= 0 {
		max = obs
	} else if obs > max {
		fmt.Fprintf(c.Stderr(), "Warning: EDPL values beyond %g accumulated in the last bin (maximum observed value: %g).\n", max, obs)
	} else if obs > 0 && max > obs*1.25 {
		fmt.Fprintf(c.Stderr(), "Warning: histogram maximum %g is well above the maximum observed value %g, the top bins will be empty.\n", max, obs)
	}
	if max <= 0 || math.IsNaN(max) {
		fmt.Fprintf(c.Stderr(), "Warning: no positive EDPL value found, histogram set over [0, 1).\n")
		max = 1
	}

	h := edpl.NewHistogram(binsFlag, max)
	for _, rs := range rows {
		for _, r := range rs {
			h.Add(r.edpl, r.mult)
		}
	}

	if !noList {
		if err := writeList(listFile, samples, rows); err != nil {
			return err
		}
	}
	if err := writeHistogram(histFile, h); err != nil {
		return err
	}
	if plotFlag {
		if err := plotHistogram(plotFile, h); err != nil {
			return err
		}
	}
	return nil
}

// ReadSamples reads the input files in parallel
// and returns the sample names
// and the EDPL records of every file,
// in the input order.
// The calculator,
// with the node distance matrix
// of the shared reference tree,
// is built from the first read file
// and shared by all the workers.
func readSamples(files []string) ([]string, [][]record, error) {
	cpu := cpuFlag
	if cpu == 0 {
		cpu = runtime.NumCPU()
	}

	samples := make([]string, len(files))
	rows := make([][]record, len(files))

	var mu sync.Mutex
	var calc *edpl.Calculator
	var firstErr error

	jobs := make(chan int, cpu*2)
	var wg sync.WaitGroup
	for range cpu {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for fi := range jobs {
				s, err := jplace.ReadFile(files[fi])
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					continue
				}

				mu.Lock()
				if calc == nil {
					calc = edpl.New(s)
				} else if !jplace.Compatible(calc.Sample(), s) {
					if firstErr == nil {
						firstErr = fmt.Errorf("on file %q: reference tree differs from %q", files[fi], files[0])
					}
					mu.Unlock()
					continue
				}
				cc := calc
				mu.Unlock()

				var rs []record
				for _, pq := range s.Pqueries() {
					v := cc.Of(pq)
					if len(pq.Names) == 0 {
						rs = append(rs, record{mult: 1, edpl: v})
						continue
					}
					for _, n := range pq.Names {
						rs = append(rs, record{
							name: n.Name,
							mult: n.Multiplicity,
							edpl: v,
						})
					}
				}
				samples[fi] = s.Name()
				rows[fi] = rs
			}
		}()
	}
	for fi := range files {
		jobs <- fi
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, nil, firstErr
	}
	return samples, rows, nil
}

func maxValue(rows [][]record) float64 {
	var max float64
	for _, rs := range rows {
		for _, r := range rs {
			if r.edpl > max {
				max = r.edpl
			}
		}
	}
	return max
}

func writeList(name string, samples []string, rows [][]record) (err error) {
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

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Sample", "Pquery", "Multiplicity", "EDPL"}); err != nil {
		return fmt.Errorf("while writing file %q: %v", name, err)
	}
	for fi, rs := range rows {
		for _, r := range rs {
			row := []string{
				samples[fi],
				r.name,
				strconv.FormatFloat(r.mult, 'g', -1, 64),
				strconv.FormatFloat(r.edpl, 'g', -1, 64),
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("while writing file %q: %v", name, err)
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("while writing file %q: %v", name, err)
	}
	return nil
}

func writeHistogram(name string, h *edpl.Histogram) (err error) {
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

	w := csv.NewWriter(f)
	header := []string{
		"Bin", "Start", "End", "Range",
		"Value", "Percentage",
		"Accumulated Value", "Accumulated Percentage",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("while writing file %q: %v", name, err)
	}

	sum := h.Sum()
	var acc float64
	for i := 0; i < h.Bins(); i++ {
		start, end := h.Range(i)
		v := h.Value(i)
		acc += v
		pc, accPc := 0.0, 0.0
		if sum > 0 {
			pc = v / sum * 100
			accPc = acc / sum * 100
		}
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(start, 'g', -1, 64),
			strconv.FormatFloat(end, 'g', -1, 64),
			fmt.Sprintf("[%g, %g)", start, end),
			strconv.FormatFloat(v, 'g', -1, 64),
			strconv.FormatFloat(pc, 'g', -1, 64),
			strconv.FormatFloat(acc, 'g', -1, 64),
			strconv.FormatFloat(accPc, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("while writing file %q: %v", name, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("while writing file %q: %v", name, err)
	}
	return nil
}

func plotHistogram(name string, h *edpl.Histogram) error {
	values := make(plotter.Values, h.Bins())
	for i := range values {
		values[i] = h.Value(i)
	}

	p := plot.New()
	p.Title.Text = "EDPL"
	p.X.Label.Text = "EDPL"
	p.Y.Label.Text = "mass"

	bars, err := plotter.NewBarChart(values, vg.Points(8))
	if err != nil {
		return fmt.Errorf("while plotting file %q: %v", name, err)
	}
	bars.LineStyle.Width = 0
	p.Add(bars)

	labels := make([]string, h.Bins())
	for i := range labels {
		start, _ := h.Range(i)
		if i%5 == 0 {
			labels[i] = fmt.Sprintf("%.3g", start)
		}
	}
	p.NominalX(labels...)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, name); err != nil {
		return fmt.Errorf("while plotting file %q: %v", name, err)
	}
	return nil
}
