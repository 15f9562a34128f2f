package element

import (
	"fmt"
)

// Element is a 3D container for time-ordered data such as visibilities or
// temperatures, with shape (n_dump | 1, n_frequency | 1, n_receiver | 1).
// An axis of size 1 holds a single copy that is valid for every index of
// that axis; for example a temperature that is identical across frequency
// is stored with a frequency axis of size 1. All axis sizes are fixed at
// construction.
type Element struct {
	data  []float64
	nTime int
	nFreq int
	nRecv int
}

// NewElement creates an element from flat data in (time, frequency,
// receiver) row-major order. The data length must match the product of the
// axis sizes.
func NewElement(data []float64, nTime, nFreq, nRecv int) (*Element, error) {
	if nTime < 1 || nFreq < 1 || nRecv < 1 {
		return nil, fmt.Errorf("element axis sizes must be positive, got (%d, %d, %d)", nTime, nFreq, nRecv)
	}
	if len(data) != nTime*nFreq*nRecv {
		return nil, fmt.Errorf("element data length %d does not match shape (%d, %d, %d)",
			len(data), nTime, nFreq, nRecv)
	}
	return &Element{data: data, nTime: nTime, nFreq: nFreq, nRecv: nRecv}, nil
}

// ZerosElement creates an all-zero element with the given shape.
func ZerosElement(nTime, nFreq, nRecv int) (*Element, error) {
	if nTime < 1 || nFreq < 1 || nRecv < 1 {
		return nil, fmt.Errorf("element axis sizes must be positive, got (%d, %d, %d)", nTime, nFreq, nRecv)
	}
	return &Element{
		data:  make([]float64, nTime*nFreq*nRecv),
		nTime: nTime,
		nFreq: nFreq,
		nRecv: nRecv,
	}, nil
}

// Shape returns the (time, frequency, receiver) axis sizes.
func (e *Element) Shape() (nTime, nFreq, nRecv int) {
	return e.nTime, e.nFreq, e.nRecv
}

// ConformsTo verifies that each axis of the element either matches the
// expected size exactly or has size 1 (the single-copy convention). Any
// other axis size is a construction-time contract violation on the caller's
// side and is rejected here at the boundary.
func (e *Element) ConformsTo(nTime, nFreq, nRecv int) error {
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

// At returns the value at (time dump t, channel f, receiver r). Indices on
// size-1 axes are collapsed to 0, implementing the single-copy convention.
func (e *Element) At(t, f, r int) float64 {
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

// Get returns a copy of the element restricted to the given index sets.
// A nil index set keeps the full axis. Indices are taken in the given
// order, so Get can also reorder along an axis.
func (e *Element) Get(timeIdx, freqIdx, recvIdx []int) (*Element, error) {
	timeIdx = fullAxisIfNil(timeIdx, e.nTime)
	freqIdx = fullAxisIfNil(freqIdx, e.nFreq)
	recvIdx = fullAxisIfNil(recvIdx, e.nRecv)
	if err := checkAxisIndices(timeIdx, e.nTime, "time"); err != nil {
		return nil, err
	}
	if err := checkAxisIndices(freqIdx, e.nFreq, "frequency"); err != nil {
		return nil, err
	}
	if err := checkAxisIndices(recvIdx, e.nRecv, "receiver"); err != nil {
		return nil, err
	}

	data := make([]float64, 0, len(timeIdx)*len(freqIdx)*len(recvIdx))
	for _, t := range timeIdx {
		for _, f := range freqIdx {
			for _, r := range recvIdx {
				data = append(data, e.data[(t*e.nFreq+f)*e.nRecv+r])
			}
		}
	}
	return NewElement(data, len(timeIdx), len(freqIdx), len(recvIdx))
}

// ReceiverSlice returns a copy of the (time, frequency) plane of receiver
// r as a flat row-major slice with the element's own time and frequency
// dimensions.
func (e *Element) ReceiverSlice(r int) ([]float64, error) {
	if e.nRecv != 1 && (r < 0 || r >= e.nRecv) {
		return nil, fmt.Errorf("receiver index %d out of range [0, %d)", r, e.nRecv)
	}
	slice := make([]float64, e.nTime*e.nFreq)
	for t := 0; t < e.nTime; t++ {
		for f := 0; f < e.nFreq; f++ {
			slice[t*e.nFreq+f] = e.At(t, f, r)
		}
	}
	return slice, nil
}

// Axis identifiers for Mean.
const (
	TimeAxis = iota
	FreqAxis
	RecvAxis
)

// Mean returns the mean of the element along the given axis. The axis is
// kept with size 1, preserving the 3D shape.
func (e *Element) Mean(axis int) (*Element, error) {
	nTime, nFreq, nRecv := e.nTime, e.nFreq, e.nRecv
	switch axis {
	case TimeAxis:
		nTime = 1
	case FreqAxis:
		nFreq = 1
	case RecvAxis:
		nRecv = 1
	default:
		return nil, fmt.Errorf("unknown axis %d", axis)
	}

	result, err := ZerosElement(nTime, nFreq, nRecv)
	if err != nil {
		return nil, err
	}
	for t := 0; t < e.nTime; t++ {
		for f := 0; f < e.nFreq; f++ {
			for r := 0; r < e.nRecv; r++ {
				rt, rf, rr := t, f, r
				switch axis {
				case TimeAxis:
					rt = 0
				case FreqAxis:
					rf = 0
				case RecvAxis:
					rr = 0
				}
				result.data[(rt*nFreq+rf)*nRecv+rr] += e.data[(t*e.nFreq+f)*e.nRecv+r]
			}
		}
	}
	var axisLen int
	switch axis {
	case TimeAxis:
		axisLen = e.nTime
	case FreqAxis:
		axisLen = e.nFreq
	case RecvAxis:
		axisLen = e.nRecv
	}
	for i := range result.data {
		result.data[i] /= float64(axisLen)
	}
	return result, nil
}

// Mul returns the element-wise product of two elements. Each axis pair
// must either match exactly or one of the two sizes must be 1, in which
// case the single copy multiplies every index of the other element's axis.
func (e *Element) Mul(other *Element) (*Element, error) {
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

	result, err := ZerosElement(nTime, nFreq, nRecv)
	if err != nil {
		return nil, err
	}
	for t := 0; t < nTime; t++ {
		for f := 0; f < nFreq; f++ {
			for r := 0; r < nRecv; r++ {
				result.data[(t*nFreq+f)*nRecv+r] = e.At(t, f, r) * other.At(t, f, r)
			}
		}
	}
	return result, nil
}

// MulScalar returns a copy of the element with every value scaled.
func (e *Element) MulScalar(factor float64) *Element {
	data := make([]float64, len(e.data))
	for i, value := range e.data {
		data[i] = value * factor
	}
	return &Element{data: data, nTime: e.nTime, nFreq: e.nFreq, nRecv: e.nRecv}
}

func fullAxisIfNil(indices []int, size int) []int {
	if indices != nil {
		return indices
	}
	full := make([]int, size)
	for i := range full {
		full[i] = i
	}
	return full
}

func checkAxisIndices(indices []int, size int, axis string) error {
	if len(indices) == 0 {
		return fmt.Errorf("%s index set must be non-empty", axis)
	}
	for _, idx := range indices {
		if idx < 0 || idx >= size {
			return fmt.Errorf("%s index %d out of range [0, %d)", axis, idx, size)
		}
	}
	return nil
}

func broadcastAxis(a, b int, axis string) (int, error) {
	switch {
	case a == b:
		return a, nil
	case a == 1:
		return b, nil
	case b == 1:
		return a, nil
	default:
		return 0, fmt.Errorf("%s axis sizes %d and %d are incompatible", axis, a, b)
	}
}
