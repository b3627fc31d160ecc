// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package treeout

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/js-arias/blind"
)

// Gradienter is an interface for types
// that return a color gradient.
type Gradienter interface {
	Gradient(v float64) color.Color
}

// Incandescent is the incandescent color scheme
// of Paul Tol
// <https://personal.sron.nl/~pault/#fig:scheme_incandescent>.
type Incandescent struct{}

func (i Incandescent) Gradient(v float64) color.Color {
	return blind.Sequential(blind.Incandescent, clamp(v))
}

// Iridescent is the iridescent color scheme
// of Paul Tol
// <https://personal.sron.nl/~pault/#fig:scheme_iridescent>.
type Iridescent struct{}

func (i Iridescent) Gradient(v float64) color.Color {
	return blind.Sequential(blind.Iridescent, clamp(v))
}

// RainbowPurpleToRed is the rainbow color scheme
// of Paul Tol
// <https://personal.sron.nl/~pault/#fig:scheme_rainbow_smooth>
// starting at purple and ending at red.
type RainbowPurpleToRed struct{}

func (r RainbowPurpleToRed) Gradient(v float64) color.Color {
	return blind.Sequential(blind.RainbowPurpleToRed, clamp(v))
}

// LightGrayScale returns a gray scale
// between 200 (light gray)
// and 0 (black).
type LightGrayScale struct{}

func (l LightGrayScale) Gradient(v float64) color.Color {
	c := 200 - uint8(clamp(v)*200)
	return color.RGBA{c, c, c, 255}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Gradient returns a gradient color scheme
// by its name.
// Names are matched without case.
func Gradient(name string) (Gradienter, error) {
	switch strings.ToLower(name) {
	case "incandescent":
		return Incandescent{}, nil
	case "iridescent":
		return Iridescent{}, nil
	case "rainbow":
		return RainbowPurpleToRed{}, nil
	case "gray", "grey":
		return LightGrayScale{}, nil
	}
	return nil, fmt.Errorf("unknown gradient %q", name)
}

// ParseColor reads a color
// in "#rrggbb" hexadecimal notation.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %v", s, err)
	}
	return color.RGBA{r, g, b, 255}, nil
}

// A Normalizer scales a value
// into the [0, 1] interval
// of a color gradient.
type Normalizer interface {
	Normalize(v float64) float64

	// Limits of the normalization,
	// for the color legend.
	Limits() (min, max float64)
}

// Linear is a linear normalization
// between 0 and the maximum value.
type Linear struct {
	Max float64
}

// NewLinear creates a linear normalization
// scaled over the finite values of a data vector.
func NewLinear(values []float64) Linear {
	return Linear{Max: finiteMax(values)}
}

// Normalize implements the Normalizer interface.
func (l Linear) Normalize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return math.NaN()
	}
	if l.Max <= 0 {
		return 0
	}
	return clamp(v / l.Max)
}

// Limits implements the Normalizer interface.
func (l Linear) Limits() (min, max float64) { return 0, l.Max }

// Log is a logarithmic normalization
// between a minimum and a maximum value.
// Values below the minimum are clipped.
type Log struct {
	Min, Max float64
}

// NewLog creates a logarithmic normalization
// scaled over the finite values of a data vector.
// As zero cannot be scaled logarithmically,
// the minimum is set to 1
// when the maximum is above 1,
// and to four orders of magnitude
// below the maximum otherwise.
func NewLog(values []float64) Log {
	max := finiteMax(values)
	if max <= 0 {
		max = 1
	}
	min := 1.0
	if max <= 1 {
		min = max / 10e4
	}
	return Log{Min: min, Max: max}
}

// Normalize implements the Normalizer interface.
func (l Log) Normalize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return math.NaN()
	}
	if v < l.Min {
		v = l.Min
	}
	return clamp(math.Log(v/l.Min) / math.Log(l.Max/l.Min))
}

// Limits implements the Normalizer interface.
func (l Log) Limits() (min, max float64) { return l.Min, l.Max }

func finiteMax(values []float64) float64 {
	var max float64
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if v > max {
			max = v
		}
	}
	return max
}

// Colors maps a data vector to colors
// using a gradient and a normalization.
// Non-finite values get the mask color.
func Colors(values []float64, g Gradienter, n Normalizer, mask color.RGBA) []color.RGBA {
	cs := make([]color.RGBA, len(values))
	for i, v := range values {
		nv := n.Normalize(v)
		if math.IsNaN(nv) {
			cs[i] = mask
			continue
		}
		r, gr, b, a := g.Gradient(nv).RGBA()
		cs[i] = color.RGBA{uint8(r >> 8), uint8(gr >> 8), uint8(b >> 8), uint8(a >> 8)}
	}
	return cs
}
