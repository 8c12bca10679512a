// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package world

import (
	"fmt"

	"github.com/samber/oops"
)

// Map glyphs understood by ParseGrid.
const (
	GlyphWall  = '#'
	GlyphFloor = '.'
)

// Position is a cell coordinate. Y grows southward.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Translate returns the position one step away in d.
// Unknown directions return p unchanged.
func (p Position) Translate(d Direction) Position {
	dx, dy, _ := d.Delta()
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// String returns "(x,y)".
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Cell holds the static properties of a grid cell.
type Cell struct {
	BlockMove bool `json:"block_move"`
}

// Grid is a rectangular map of cells.
type Grid struct {
	width  int
	height int
	cells  []Cell
}

// NewGrid creates a width x height grid of open cells.
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, oops.Code(CodeInvalidGrid).
			With("width", width).
			With("height", height).
			Errorf("grid dimensions must be positive")
	}
	return &Grid{width: width, height: height, cells: make([]Cell, width*height)}, nil
}

// ParseGrid builds a grid from rows of glyphs. All rows must have the same
// length.
func ParseGrid(rows []string) (*Grid, error) {
	if len(rows) == 0 {
		return nil, oops.Code(CodeInvalidGrid).Errorf("map has no rows")
	}
	g, err := NewGrid(len(rows[0]), len(rows))
	if err != nil {
		return nil, err
	}
	for y, row := range rows {
		if len(row) != g.width {
			return nil, oops.Code(CodeInvalidGrid).
				With("row", y).
				With("length", len(row)).
				With("want", g.width).
				Errorf("map row %d has length %d, want %d", y, len(row), g.width)
		}
		for x := range len(row) {
			switch row[x] {
			case GlyphWall:
				g.cells[y*g.width+x].BlockMove = true
			case GlyphFloor:
			default:
				return nil, oops.Code(CodeInvalidGrid).
					With("row", y).
					With("column", x).
					Errorf("unknown map glyph %q", row[x])
			}
		}
	}
	return g, nil
}

// Rows renders the grid in the glyphs understood by ParseGrid.
func (g *Grid) Rows() []string {
	rows := make([]string, g.height)
	row := make([]byte, g.width)
	for y := range g.height {
		for x := range g.width {
			row[x] = GlyphFloor
			if g.cells[y*g.width+x].BlockMove {
				row[x] = GlyphWall
			}
		}
		rows[y] = string(row)
	}
	return rows
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// InBounds reports whether p lies on the grid.
func (g *Grid) InBounds(p Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.width && p.Y < g.height
}

// Cell returns the cell at p.
func (g *Grid) Cell(p Position) (Cell, bool) {
	if !g.InBounds(p) {
		return Cell{}, false
	}
	return g.cells[p.Y*g.width+p.X], true
}

// SetBlockMove marks the cell at p as blocking movement or not.
func (g *Grid) SetBlockMove(p Position, block bool) error {
	if !g.InBounds(p) {
		return oops.Code(CodeInvalidPosition).With("position", p.String()).Errorf("position out of bounds")
	}
	g.cells[p.Y*g.width+p.X].BlockMove = block
	return nil
}

// BlockMove reports whether p blocks movement. Cells off the grid block.
func (g *Grid) BlockMove(p Position) bool {
	c, ok := g.Cell(p)
	return !ok || c.BlockMove
}

// Translate returns the in-bounds neighbor of p in d.
func (g *Grid) Translate(p Position, d Direction) (Position, bool) {
	if _, _, ok := d.Delta(); !ok {
		return p, false
	}
	to := p.Translate(d)
	return to, g.InBounds(to)
}

// Floor returns every open cell in row-major order.
func (g *Grid) Floor() []Position {
	var out []Position
	for y := range g.height {
		for x := range g.width {
			if !g.cells[y*g.width+x].BlockMove {
				out = append(out, Position{X: x, Y: y})
			}
		}
	}
	return out
}
