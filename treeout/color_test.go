// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package treeout_test

import (
	"image/color"
	"math"
	"testing"

	"github.com/js-arias/phyplace/treeout"
)

func TestGradient(t *testing.T) {
	names := []string{"incandescent", "Iridescent", "RAINBOW", "gray", "grey"}
	for _, n := range names {
		g, err := treeout.Gradient(n)
		if err != nil {
			t.Errorf("gradient %q: unexpected error: %v", n, err)
			continue
		}
		if g == nil {
			t.Errorf("gradient %q: got nil", n)
		}
	}

	if _, err := treeout.Gradient("viridis"); err == nil {
		t.Errorf("expecting error on unknown gradient")
	}
}

func TestParseColor(t *testing.T) {
	tests := map[string]color.RGBA{
		"#ff0000": {255, 0, 0, 255},
		"dfdfdf":  {223, 223, 223, 255},
		"#00A0ff": {0, 160, 255, 255},
	}
	for in, want := range tests {
		g, err := treeout.ParseColor(in)
		if err != nil {
			t.Errorf("color %q: unexpected error: %v", in, err)
			continue
		}
		if g != want {
			t.Errorf("color %q: got %v, want %v", in, g, want)
		}
	}

	for _, in := range []string{"", "#fff", "#gg0000", "not-a-color"} {
		if _, err := treeout.ParseColor(in); err == nil {
			t.Errorf("color %q: expecting error", in)
		}
	}
}

func TestLinear(t *testing.T) {
	n := treeout.NewLinear([]float64{1, 4, math.NaN(), math.Inf(1)})
	if n.Max != 4 {
		t.Errorf("got maximum %g, want %g", n.Max, 4.0)
	}

	if g := n.Normalize(2); g != 0.5 {
		t.Errorf("got %g, want %g", g, 0.5)
	}
	if g := n.Normalize(5); g != 1 {
		t.Errorf("got %g, want %g", g, 1.0)
	}
	if g := n.Normalize(math.NaN()); !math.IsNaN(g) {
		t.Errorf("got %g, want NaN", g)
	}

	min, max := n.Limits()
	if min != 0 || max != 4 {
		t.Errorf("got limits [%g, %g], want [0, 4]", min, max)
	}
}

func TestLog(t *testing.T) {
	n := treeout.NewLog([]float64{0.5, 100})
	if n.Min != 1 || n.Max != 100 {
		t.Errorf("got limits [%g, %g], want [1, 100]", n.Min, n.Max)
	}
	if g := n.Normalize(10); math.Abs(g-0.5) > 1e-10 {
		t.Errorf("got %g, want %g", g, 0.5)
	}

	// Values below the minimum are clipped.
	if g := n.Normalize(0.5); g != 0 {
		t.Errorf("got %g, want %g", g, 0.0)
	}
	if g := n.Normalize(math.Inf(1)); !math.IsNaN(g) {
		t.Errorf("got %g, want NaN", g)
	}

	small := treeout.NewLog([]float64{0.001, 0.5})
	if small.Max != 0.5 {
		t.Errorf("got maximum %g, want %g", small.Max, 0.5)
	}
	if small.Min >= small.Max {
		t.Errorf("got minimum %g over the maximum %g", small.Min, small.Max)
	}
}

func TestColors(t *testing.T) {
	mask := color.RGBA{223, 223, 223, 255}
	values := []float64{0, 2, math.NaN()}
	cs := treeout.Colors(values, treeout.LightGrayScale{}, treeout.Linear{Max: 2}, mask)

	want := []color.RGBA{
		{200, 200, 200, 255},
		{0, 0, 0, 255},
		mask,
	}
	for i, w := range want {
		if cs[i] != w {
			t.Errorf("value %g: got %v, want %v", values[i], cs[i], w)
		}
	}
}
