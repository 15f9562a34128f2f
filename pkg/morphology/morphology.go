// Package morphology implements binary morphological operations on 2D flag
// grids: rectangular dilation, erosion and closing. These are the
// operations the RFI post-processing stage uses to grow detected
// interference into its immediate neighborhood and to fill small unflagged
// gaps inside flagged regions.
//
// All operations are pure: they return a new grid and never mutate their
// input. The receiver axis is never involved; callers apply these
// operations one receiver plane at a time.
package morphology

import (
	"rfiflagger/pkg/element"
)

// StructElem describes a rectangular structuring element of size
// (Time, Freq) samples. A nil *StructElem is the valid "dilation disabled"
// signal, not an error.
type StructElem struct {
	// Time is the extent of the neighborhood along the time-dump axis
	Time int

	// Freq is the extent of the neighborhood along the frequency axis
	Freq int
}

// DefaultCloseElem is the fallback structuring element used by Close when
// no element is supplied. Closing always runs, even when dilation is
// disabled, so small detector gaps are still filled; a nil element falls
// back to this fixed 3x3 neighborhood.
var DefaultCloseElem = StructElem{Time: 3, Freq: 3}

// offsets returns the neighborhood index offsets for a size s extent,
// using the centered-origin convention: offsets span [-s/2, s-1-s/2], so a
// size 3 extent covers one sample on each side and a size 2 extent covers
// the preceding sample only.
func offsets(s int) (lo, hi int) {
	return -(s / 2), s - 1 - s/2
}

// Dilate grows every flagged sample into its rectangular neighborhood of
// size se, clipped at the grid boundary: samples outside the grid are
// treated as unflagged and there is no wraparound. A nil structuring
// element disables dilation and returns an unchanged copy of the input.
// Dilation never unflags a sample.
func Dilate(g *element.Grid, se *StructElem) *element.Grid {
	if se == nil {
		return g.Clone()
	}
	nTime, nFreq := g.Dims()
	result := g.Clone()
	tLo, tHi := offsets(se.Time)
	fLo, fHi := offsets(se.Freq)

	for t := 0; t < nTime; t++ {
		for f := 0; f < nFreq; f++ {
			if !g.At(t, f) {
				continue
			}
			// Spread this flag over its neighborhood. The same offsets are
			// used by Erode, which keeps Close extensive for even-sized
			// elements too.
			for dt := tLo; dt <= tHi; dt++ {
				for df := fLo; df <= fHi; df++ {
					tt, ff := t+dt, f+df
					if tt < 0 || tt >= nTime || ff < 0 || ff >= nFreq {
						continue
					}
					result.Set(tt, ff, true)
				}
			}
		}
	}
	return result
}

// Erode unflags every sample whose rectangular neighborhood of size se is
// not entirely flagged. Samples outside the grid count as unflagged, so
// flagged regions touching the boundary shrink there as well. A nil
// structuring element returns an unchanged copy.
func Erode(g *element.Grid, se *StructElem) *element.Grid {
	if se == nil {
		return g.Clone()
	}
	nTime, nFreq := g.Dims()
	result := g.Clone()
	tLo, tHi := offsets(se.Time)
	fLo, fHi := offsets(se.Freq)

	for t := 0; t < nTime; t++ {
		for f := 0; f < nFreq; f++ {
			if !g.At(t, f) {
				continue
			}
			if !neighborhoodFlagged(g, t, f, tLo, tHi, fLo, fHi) {
				result.Set(t, f, false)
			}
		}
	}
	return result
}

func neighborhoodFlagged(g *element.Grid, t, f, tLo, tHi, fLo, fHi int) bool {
	nTime, nFreq := g.Dims()
	for dt := tLo; dt <= tHi; dt++ {
		for df := fLo; df <= fHi; df++ {
			tt, ff := t+dt, f+df
			if tt < 0 || tt >= nTime || ff < 0 || ff >= nFreq {
				return false
			}
			if !g.At(tt, ff) {
				return false
			}
		}
	}
	return true
}

// Close applies binary closing, dilation followed by erosion, filling
// unflagged gaps smaller than the structuring element inside flagged
// regions without growing the region's outer boundary. A nil structuring
// element falls back to DefaultCloseElem, so closing always runs.
//
// The operation is computed on a copy padded with unflagged samples on
// every side, so grid borders behave as if the grid were surrounded by
// unflagged data. With that convention closing never unflags a sample and
// applying it twice gives the same result as applying it once.
func Close(g *element.Grid, se *StructElem) *element.Grid {
	if se == nil {
		se = &DefaultCloseElem
	}
	nTime, nFreq := g.Dims()
	padT := se.Time
	padF := se.Freq

	padded, err := element.NewGrid(nTime+2*padT, nFreq+2*padF)
	if err != nil {
		// Pad sizes are derived from a validated grid, this cannot happen.
		panic(err)
	}
	for t := 0; t < nTime; t++ {
		for f := 0; f < nFreq; f++ {
			padded.Set(t+padT, f+padF, g.At(t, f))
		}
	}

	closed := Erode(Dilate(padded, se), se)

	result, err := element.NewGrid(nTime, nFreq)
	if err != nil {
		panic(err)
	}
	for t := 0; t < nTime; t++ {
		for f := 0; f < nFreq; f++ {
			result.Set(t, f, closed.At(t+padT, f+padF))
		}
	}
	return result
}
