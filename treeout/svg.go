// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package treeout

import (
	"encoding/xml"
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"

	"github.com/evolbioinfo/gotree/tree"
)

const yStep = 12

// Width in pixels of the drawn tree,
// without the tip labels.
const drawWidth = 600

type svgNode struct {
	x     float64
	y     int
	topY  int
	botY  int
	color color.RGBA

	name string

	anc  *svgNode
	desc []*svgNode
}

type svgTree struct {
	y     int
	x     float64
	taxSz int
	root  *svgNode

	grad     Gradienter
	min, max float64
}

// WriteSVG draws the tree
// as a rectangular phylogram
// in an SVG-encoded file,
// with each branch stroked
// in its assigned color,
// and a color scale legend
// if a gradient is defined.
func WriteSVG(w io.Writer, ct Tree) error {
	s := copyTree(ct)
	return s.draw(w)
}

func copyTree(ct Tree) svgTree {
	type pair struct{ a, b *tree.Node }
	edgeOf := make(map[pair]*tree.Edge, len(ct.T.Edges()))
	for _, e := range ct.T.Edges() {
		edgeOf[pair{e.Left(), e.Right()}] = e
		edgeOf[pair{e.Right(), e.Left()}] = e
	}

	// Depth of every node,
	// as the branch length distance from the root.
	maxDepth := 0.0
	depth := make(map[*tree.Node]float64)
	var measure func(n, prev *tree.Node)
	measure = func(n, prev *tree.Node) {
		for _, c := range n.Neigh() {
			if c == prev {
				continue
			}
			l := edgeOf[pair{n, c}].Length()
			if l < 0 {
				l = 0
			}
			depth[c] = depth[n] + l
			if depth[c] > maxDepth {
				maxDepth = depth[c]
			}
			measure(c, n)
		}
	}
	measure(ct.T.Root(), nil)

	xStep := float64(drawWidth)
	if maxDepth > 0 {
		xStep = drawWidth / maxDepth
	}

	s := svgTree{grad: ct.Grad}
	if ct.Norm != nil {
		s.min, s.max = ct.Norm.Limits()
	}
	maxSz := 0
	var clone func(n, prev *tree.Node, anc *svgNode) *svgNode
	clone = func(n, prev *tree.Node, anc *svgNode) *svgNode {
		sn := &svgNode{
			anc:   anc,
			x:     depth[n]*xStep + 10,
			color: color.RGBA{A: 255},
		}
		if n.Tip() {
			sn.name = n.Name()
			if len(sn.name) > maxSz {
				maxSz = len(sn.name)
			}
		}
		if prev != nil {
			if c, ok := ct.Colors[edgeOf[pair{prev, n}]]; ok {
				sn.color = c
			}
		}
		for _, c := range n.Neigh() {
			if c == prev {
				continue
			}
			sn.desc = append(sn.desc, clone(c, n, sn))
		}
		if sn.desc == nil {
			sn.y = s.y*yStep + 5
			s.y++
		} else {
			botY := 0
			topY := math.MaxInt
			for _, d := range sn.desc {
				if d.y < topY {
					topY = d.y
				}
				if d.y > botY {
					botY = d.y
				}
			}
			sn.topY = topY
			sn.botY = botY
			sn.y = topY + (botY-topY)/2
		}
		if sn.x > s.x {
			s.x = sn.x
		}
		return sn
	}
	s.root = clone(ct.T.Root(), nil, nil)
	s.y = s.y * yStep
	s.taxSz = maxSz

	return s
}

func (s svgTree) draw(w io.Writer) error {
	height := s.y + 5
	if s.grad != nil && height < 180 {
		height = 180
	}
	fmt.Fprintf(w, "%s", xml.Header)
	e := xml.NewEncoder(w)
	svg := xml.StartElement{
		Name: xml.Name{Local: "svg"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "height"}, Value: strconv.Itoa(height)},
			// assume that each character has 6 pixels wide
			{Name: xml.Name{Local: "width"}, Value: strconv.Itoa(int(s.x) + s.taxSz*6 + 80)},
			{Name: xml.Name{Local: "xmlns"}, Value: "http://www.w3.org/2000/svg"},
		},
	}
	e.EncodeToken(svg)

	g := xml.StartElement{
		Name: xml.Name{Local: "g"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "stroke-width"}, Value: "2"},
			{Name: xml.Name{Local: "stroke"}, Value: "black"},
			{Name: xml.Name{Local: "stroke-linecap"}, Value: "round"},
			{Name: xml.Name{Local: "font-family"}, Value: "Verdana"},
			{Name: xml.Name{Local: "font-size"}, Value: "10"},
		},
	}
	e.EncodeToken(g)

	s.root.draw(e)
	s.root.label(e)
	if s.grad != nil {
		s.legend(e)
	}

	e.EncodeToken(g.End())
	e.EncodeToken(svg.End())
	return e.Flush()
}

func (n *svgNode) draw(e *xml.Encoder) {
	rgb := fmt.Sprintf("rgb(%d,%d,%d)", n.color.R, n.color.G, n.color.B)

	// horizontal line
	ln := xml.StartElement{
		Name: xml.Name{Local: "line"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "x1"}, Value: strconv.Itoa(int(n.x - 5))},
			{Name: xml.Name{Local: "y1"}, Value: strconv.Itoa(n.y)},
			{Name: xml.Name{Local: "x2"}, Value: strconv.Itoa(int(n.x))},
			{Name: xml.Name{Local: "y2"}, Value: strconv.Itoa(n.y)},
			{Name: xml.Name{Local: "stroke"}, Value: rgb},
		},
	}
	if n.anc != nil {
		ln.Attr[0].Value = strconv.Itoa(int(n.anc.x))
	}
	e.EncodeToken(ln)
	e.EncodeToken(ln.End())

	if n.desc == nil {
		return
	}

	// vertical line connecting the descendants
	vl := xml.StartElement{
		Name: xml.Name{Local: "line"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "x1"}, Value: strconv.Itoa(int(n.x))},
			{Name: xml.Name{Local: "y1"}, Value: strconv.Itoa(n.topY)},
			{Name: xml.Name{Local: "x2"}, Value: strconv.Itoa(int(n.x))},
			{Name: xml.Name{Local: "y2"}, Value: strconv.Itoa(n.botY)},
		},
	}
	e.EncodeToken(vl)
	e.EncodeToken(vl.End())

	for _, d := range n.desc {
		d.draw(e)
	}
}

func (n *svgNode) label(e *xml.Encoder) {
	if n.desc == nil && n.name != "" {
		tx := xml.StartElement{
			Name: xml.Name{Local: "text"},
			Attr: []xml.Attr{
				{Name: xml.Name{Local: "x"}, Value: strconv.Itoa(int(n.x + 10))},
				{Name: xml.Name{Local: "y"}, Value: strconv.Itoa(n.y + 5)},
				{Name: xml.Name{Local: "stroke-width"}, Value: "0"},
				{Name: xml.Name{Local: "font-style"}, Value: "italic"},
			},
		}
		e.EncodeToken(tx)
		e.EncodeToken(xml.CharData(n.name))
		e.EncodeToken(tx.End())
	}

	for _, d := range n.desc {
		d.label(e)
	}
}

// Legend draws a vertical color scale bar
// with the normalization limits.
func (s svgTree) legend(e *xml.Encoder) {
	const steps = 64
	const barHeight = 128
	x := int(s.x) + s.taxSz*6 + 20

	for i := 0; i < steps; i++ {
		v := 1 - float64(i)/float64(steps-1)
		r, g, b, _ := s.grad.Gradient(v).RGBA()
		rect := xml.StartElement{
			Name: xml.Name{Local: "rect"},
			Attr: []xml.Attr{
				{Name: xml.Name{Local: "x"}, Value: strconv.Itoa(x)},
				{Name: xml.Name{Local: "y"}, Value: strconv.Itoa(20 + i*barHeight/steps)},
				{Name: xml.Name{Local: "width"}, Value: "15"},
				{Name: xml.Name{Local: "height"}, Value: strconv.Itoa(barHeight/steps + 1)},
				{Name: xml.Name{Local: "fill"}, Value: fmt.Sprintf("rgb(%d,%d,%d)", r>>8, g>>8, b>>8)},
				{Name: xml.Name{Local: "stroke-width"}, Value: "0"},
			},
		}
		e.EncodeToken(rect)
		e.EncodeToken(rect.End())
	}

	for _, lb := range []struct {
		y int
		v float64
	}{
		{y: 25, v: s.max},
		{y: 20 + barHeight + 5, v: s.min},
	} {
		tx := xml.StartElement{
			Name: xml.Name{Local: "text"},
			Attr: []xml.Attr{
				{Name: xml.Name{Local: "x"}, Value: strconv.Itoa(x + 20)},
				{Name: xml.Name{Local: "y"}, Value: strconv.Itoa(lb.y)},
				{Name: xml.Name{Local: "stroke-width"}, Value: "0"},
			},
		}
		e.EncodeToken(tx)
		e.EncodeToken(xml.CharData(fmt.Sprintf("%.4g", lb.v)))
		e.EncodeToken(tx.End())
	}
}
