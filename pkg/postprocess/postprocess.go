// Package postprocess refines raw RFI detector masks into final flag
// grids. It combines the morphological operations with threshold-based
// escalation: when the flagged fraction of a time dump or a frequency
// channel grows beyond a configured threshold, the whole dump or channel
// is flagged wholesale.
package postprocess

import (
	"fmt"

	"rfiflagger/pkg/element"
	"rfiflagger/pkg/morphology"
)

// FlagAllChannels escalates per time dump: for each dump the fraction of
// flagged channels is computed, and if it strictly exceeds threshold every
// channel of that dump is flagged in the result. A fraction exactly equal
// to the threshold does not escalate. The input is never mutated.
func FlagAllChannels(g *element.Grid, threshold float64) *element.Grid {
	nTime, nFreq := g.Dims()
	result := g.Clone()
	for t := 0; t < nTime; t++ {
		count := 0
		for f := 0; f < nFreq; f++ {
			if g.At(t, f) {
				count++
			}
		}
		if float64(count)/float64(nFreq) > threshold {
			for f := 0; f < nFreq; f++ {
				result.Set(t, f, true)
			}
		}
	}
	return result
}

// FlagAllTimeDumps is the symmetric escalation along the frequency axis:
// for each channel the fraction of flagged time dumps is computed, and if
// it strictly exceeds threshold that channel is flagged at every dump.
func FlagAllTimeDumps(g *element.Grid, threshold float64) *element.Grid {
	nTime, nFreq := g.Dims()
	result := g.Clone()
	for f := 0; f < nFreq; f++ {
		count := 0
		for t := 0; t < nTime; t++ {
			if g.At(t, f) {
				count++
			}
		}
		if float64(count)/float64(nTime) > threshold {
			for t := 0; t < nTime; t++ {
				result.Set(t, f, true)
			}
		}
	}
	return result
}

// PostProcessor applies the two-stage flag post-processing for one
// receiver: morphological repair of the raw detector mask, followed by
// threshold escalation of the mask combined with the initial flag.
type PostProcessor struct {
	structSize        *morphology.StructElem
	channelThreshold  float64
	timeDumpThreshold float64
}

// NewPostProcessor validates the configuration and returns a processor.
// structSize may be nil to disable dilation; closing then runs with its
// default element. Thresholds outside [0, 1] are a configuration error and
// are rejected here rather than clamped.
func NewPostProcessor(structSize *morphology.StructElem, channelThreshold, timeDumpThreshold float64) (*PostProcessor, error) {
	if channelThreshold < 0 || channelThreshold > 1 {
		return nil, fmt.Errorf("channel flag threshold %v outside [0, 1]", channelThreshold)
	}
	if timeDumpThreshold < 0 || timeDumpThreshold > 1 {
		return nil, fmt.Errorf("time dump flag threshold %v outside [0, 1]", timeDumpThreshold)
	}
	if structSize != nil && (structSize.Time < 1 || structSize.Freq < 1) {
		return nil, fmt.Errorf("structuring element sizes must be positive, got (%d, %d)",
			structSize.Time, structSize.Freq)
	}
	return &PostProcessor{
		structSize:        structSize,
		channelThreshold:  channelThreshold,
		timeDumpThreshold: timeDumpThreshold,
	}, nil
}

// Apply post-processes the raw RFI mask of one receiver and returns the
// final flag grid. Exactly two stages:
//
//  1. RFI-only stage: the raw mask alone is dilated with the configured
//     structuring element and then closed, repairing small detector
//     artifacts before any escalation decision is made.
//  2. Combined stage: the repaired mask is united with the initial flag
//     (flags known before detection, e.g. invalid calibration samples) so
//     that escalation sees the total bad-data picture, then channel
//     escalation runs, then time-dump escalation runs on its output.
//
// Both inputs must share the same shape; neither is mutated.
func (p *PostProcessor) Apply(rawRFI, initialFlag *element.Grid) (*element.Grid, error) {
	rTime, rFreq := rawRFI.Dims()
	iTime, iFreq := initialFlag.Dims()
	if rTime != iTime || rFreq != iFreq {
		return nil, fmt.Errorf("RFI mask shape (%d, %d) does not match initial flag shape (%d, %d)",
			rTime, rFreq, iTime, iFreq)
	}

	// Stage 1: operations on the RFI mask only.
	rfiResult := morphology.Close(morphology.Dilate(rawRFI, p.structSize), p.structSize)

	// Stage 2: operations on the entire mask.
	combined, err := rfiResult.Or(initialFlag)
	if err != nil {
		return nil, err
	}
	escalated := FlagAllChannels(combined, p.channelThreshold)
	escalated = FlagAllTimeDumps(escalated, p.timeDumpThreshold)
	return escalated, nil
}
