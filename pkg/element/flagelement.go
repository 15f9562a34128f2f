package element

import (
	"fmt"
)

// FlagElement is the boolean companion of Element: a 3D flag container of
// shape (n_dump | 1, n_frequency | 1, n_receiver | 1) with the same
// single-copy convention for size-1 axes. A true value means the sample is
// flagged.
type FlagElement struct {
	data  []bool
	nTime int
	nFreq int
	nRecv int
}

// NewFlagElement creates a flag element from flat data in (time,
// frequency, receiver) row-major order.
func NewFlagElement(data []bool, nTime, nFreq, nRecv int) (*FlagElement, error) {
	if nTime < 1 || nFreq < 1 || nRecv < 1 {
		return nil, fmt.Errorf("flag element axis sizes must be positive, got (%d, %d, %d)", nTime, nFreq, nRecv)
	}
	if len(data) != nTime*nFreq*nRecv {
		return nil, fmt.Errorf("flag element data length %d does not match shape (%d, %d, %d)",
			len(data), nTime, nFreq, nRecv)
	}
	return &FlagElement{data: data, nTime: nTime, nFreq: nFreq, nRecv: nRecv}, nil
}

// ZerosFlagElement creates an all-unflagged element with the given shape.
func ZerosFlagElement(nTime, nFreq, nRecv int) (*FlagElement, error) {
	if nTime < 1 || nFreq < 1 || nRecv < 1 {
		return nil, fmt.Errorf("flag element axis sizes must be positive, got (%d, %d, %d)", nTime, nFreq, nRecv)
	}
	return &FlagElement{
		data:  make([]bool, nTime*nFreq*nRecv),
		nTime: nTime,
		nFreq: nFreq,
		nRecv: nRecv,
	}, nil
}

// NewFlagElementFromGrid wraps a 2D flag grid as a single-receiver flag
// element of shape (nTime, nFreq, 1).
func NewFlagElementFromGrid(grid *Grid) *FlagElement {
	nTime, nFreq := grid.Dims()
	data := make([]bool, nTime*nFreq)
	for t := 0; t < nTime; t++ {
		for f := 0; f < nFreq; f++ {
			data[t*nFreq+f] = grid.At(t, f)
		}
	}
	return &FlagElement{data: data, nTime: nTime, nFreq: nFreq, nRecv: 1}
}

// Shape returns the (time, frequency, receiver) axis sizes.
func (e *FlagElement) Shape() (nTime, nFreq, nRecv int) {
	return e.nTime, e.nFreq, e.nRecv
}

// ConformsTo verifies that each axis either matches the expected size or
// has size 1.
func (e *FlagElement) ConformsTo(nTime, nFreq, nRecv int) error {
	if e.nTime != nTime && e.nTime != 1 {
		return fmt.Errorf("time axis has size %d, expected %d or 1", e.nTime, nTime)
	}
	if e.nFreq != nFreq && e.nFreq != 1 {
		return fmt.Errorf("frequency axis has size %d, expected %d or 1", e.nFreq, nFreq)
	}
	if e.nRecv != nRecv && e.nRecv != 1 {
		return fmt.Errorf("receiver axis has size %d, expected %d or 1", e.nRecv, nRecv)
	}
	return nil
}

// At reports whether the sample at (time dump t, channel f, receiver r) is
// flagged. Indices on size-1 axes are collapsed to 0.
func (e *FlagElement) At(t, f, r int) bool {
	if e.nTime == 1 {
		t = 0
	}
	if e.nFreq == 1 {
		f = 0
	}
	if e.nRecv == 1 {
		r = 0
	}
	return e.data[(t*e.nFreq+f)*e.nRecv+r]
}

// Set sets the flag state at (time dump t, channel f, receiver r). All
// axes must be addressed within their actual sizes.
func (e *FlagElement) Set(t, f, r int, flagged bool) {
	e.data[(t*e.nFreq+f)*e.nRecv+r] = flagged
}

// Count returns the number of flagged samples.
func (e *FlagElement) Count() int {
	count := 0
	for _, flagged := range e.data {
		if flagged {
			count++
		}
	}
	return count
}

// Or returns the union of two flag elements: a sample is flagged in the
// result if it is flagged in either input. Axis sizes must match exactly
// or be 1 on one side.
func (e *FlagElement) Or(other *FlagElement) (*FlagElement, error) {
	nTime, err := broadcastAxis(e.nTime, other.nTime, "time")
	if err != nil {
		return nil, err
	}
	nFreq, err := broadcastAxis(e.nFreq, other.nFreq, "frequency")
	if err != nil {
		return nil, err
	}
	nRecv, err := broadcastAxis(e.nRecv, other.nRecv, "receiver")
	if err != nil {
		return nil, err
	}

	result, err := ZerosFlagElement(nTime, nFreq, nRecv)
	if err != nil {
		return nil, err
	}
	for t := 0; t < nTime; t++ {
		for f := 0; f < nFreq; f++ {
			for r := 0; r < nRecv; r++ {
				result.data[(t*nFreq+f)*nRecv+r] = e.At(t, f, r) || other.At(t, f, r)
			}
		}
	}
	return result, nil
}

// ReceiverGrid returns the (time, frequency) flag plane of receiver r as
// an independent 2D grid.
func (e *FlagElement) ReceiverGrid(r int) (*Grid, error) {
	if e.nRecv != 1 && (r < 0 || r >= e.nRecv) {
		return nil, fmt.Errorf("receiver index %d out of range [0, %d)", r, e.nRecv)
	}
	grid, err := NewGrid(e.nTime, e.nFreq)
	if err != nil {
		return nil, err
	}
	for t := 0; t < e.nTime; t++ {
		for f := 0; f < e.nFreq; f++ {
			grid.Set(t, f, e.At(t, f, r))
		}
	}
	return grid, nil
}

// MaterializeGrid returns the (time, frequency) plane of receiver r
// expanded to the full (nTime, nFreq) shape, copying single-axis values
// across the axis they stand for. The element's axes must each match the
// requested size or be 1.
func (e *FlagElement) MaterializeGrid(r, nTime, nFreq int) (*Grid, error) {
	if e.nTime != nTime && e.nTime != 1 {
		return nil, fmt.Errorf("time axis has size %d, expected %d or 1", e.nTime, nTime)
	}
	if e.nFreq != nFreq && e.nFreq != 1 {
		return nil, fmt.Errorf("frequency axis has size %d, expected %d or 1", e.nFreq, nFreq)
	}
	if e.nRecv != 1 && (r < 0 || r >= e.nRecv) {
		return nil, fmt.Errorf("receiver index %d out of range [0, %d)", r, e.nRecv)
	}
	grid, err := NewGrid(nTime, nFreq)
	if err != nil {
		return nil, err
	}
	for t := 0; t < nTime; t++ {
		for f := 0; f < nFreq; f++ {
			grid.Set(t, f, e.At(t, f, r))
		}
	}
	return grid, nil
}

// SetReceiverGrid stores a 2D flag grid as the (time, frequency) plane of
// receiver r. The element must carry full time and frequency axes and the
// grid shape must match them exactly.
func (e *FlagElement) SetReceiverGrid(r int, grid *Grid) error {
	if r < 0 || r >= e.nRecv {
		return fmt.Errorf("receiver index %d out of range [0, %d)", r, e.nRecv)
	}
	nTime, nFreq := grid.Dims()
	if nTime != e.nTime || nFreq != e.nFreq {
		return fmt.Errorf("grid shape (%d, %d) does not match element shape (%d, %d)",
			nTime, nFreq, e.nTime, e.nFreq)
	}
	for t := 0; t < nTime; t++ {
		for f := 0; f < nFreq; f++ {
			e.Set(t, f, r, grid.At(t, f))
		}
	}
	return nil
}
