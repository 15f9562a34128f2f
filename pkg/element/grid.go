// Package element provides the regular time-ordered data containers used
// throughout the flagging pipeline: a 2D boolean flag grid addressed by
// (time dump, frequency channel), and 3D data/flag elements of shape
// (n_dump, n_frequency, n_receiver) in which any axis may have size 1 to
// indicate that a single copy is valid for every index of that axis.
package element

import (
	"fmt"
)

// Grid is a 2D boolean flag grid for a single receiver. A true value means
// the sample at (time dump, frequency channel) is flagged. The shape is
// fixed at construction; only the contents are mutable.
//
// The grid is stored as a flat slice in row-major order, one row per time
// dump, so that whole-row operations stay cache friendly.
type Grid struct {
	data  []bool
	nTime int
	nFreq int
}

// NewGrid creates an all-unflagged grid with the given dimensions.
func NewGrid(nTime, nFreq int) (*Grid, error) {
	if nTime < 1 || nFreq < 1 {
		return nil, fmt.Errorf("grid dimensions must be positive, got (%d, %d)", nTime, nFreq)
	}
	return &Grid{
		data:  make([]bool, nTime*nFreq),
		nTime: nTime,
		nFreq: nFreq,
	}, nil
}

// NewGridFromRows creates a grid from row slices, one row per time dump.
// All rows must have the same length.
func NewGridFromRows(rows [][]bool) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("grid rows must be non-empty")
	}
	grid, err := NewGrid(len(rows), len(rows[0]))
	if err != nil {
		return nil, err
	}
	for t, row := range rows {
		if len(row) != grid.nFreq {
			return nil, fmt.Errorf("row %d has length %d, expected %d", t, len(row), grid.nFreq)
		}
		copy(grid.data[t*grid.nFreq:(t+1)*grid.nFreq], row)
	}
	return grid, nil
}

// Dims returns the (time, frequency) dimensions of the grid.
func (g *Grid) Dims() (nTime, nFreq int) {
	return g.nTime, g.nFreq
}

// At reports whether the sample at (time dump t, channel f) is flagged.
func (g *Grid) At(t, f int) bool {
	return g.data[t*g.nFreq+f]
}

// Set sets the flag state of the sample at (time dump t, channel f).
func (g *Grid) Set(t, f int, flagged bool) {
	g.data[t*g.nFreq+f] = flagged
}

// Clone returns an independent copy of the grid.
func (g *Grid) Clone() *Grid {
	data := make([]bool, len(g.data))
	copy(data, g.data)
	return &Grid{data: data, nTime: g.nTime, nFreq: g.nFreq}
}

// Count returns the number of flagged samples in the grid.
func (g *Grid) Count() int {
	count := 0
	for _, flagged := range g.data {
		if flagged {
			count++
		}
	}
	return count
}

// Equal reports whether two grids have the same shape and contents.
func (g *Grid) Equal(other *Grid) bool {
	if g.nTime != other.nTime || g.nFreq != other.nFreq {
		return false
	}
	for i, flagged := range g.data {
		if flagged != other.data[i] {
			return false
		}
	}
	return true
}

// Or returns the union of two flag grids: a sample is flagged in the result
// if it is flagged in either input. Combination is always a logical OR,
// never numeric summation, so the flagged count can only grow. Both grids
// must have identical shape.
func (g *Grid) Or(other *Grid) (*Grid, error) {
	if g.nTime != other.nTime || g.nFreq != other.nFreq {
		return nil, fmt.Errorf("cannot combine grids of shape (%d, %d) and (%d, %d)",
			g.nTime, g.nFreq, other.nTime, other.nFreq)
	}
	result := g.Clone()
	for i, flagged := range other.data {
		if flagged {
			result.data[i] = true
		}
	}
	return result, nil
}

// FlaggedFraction returns the fraction of flagged samples in the grid.
func (g *Grid) FlaggedFraction() float64 {
	return float64(g.Count()) / float64(len(g.data))
}
