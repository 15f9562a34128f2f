package pipeline

import (
	"fmt"

	"rfiflagger/internal/models"
	"rfiflagger/pkg/element"
)

// Detector is the boundary to the external RFI detection algorithm. It
// receives the calibrated visibility and the initial flag of exactly one
// receiver, both with a receiver axis of size 1, and returns a raw RFI
// mask of the same shape. The detection algorithm itself is a black box to
// this pipeline; only the shape contract is enforced by the caller.
type Detector func(recv models.Receiver, vis *element.Element, initialFlag *element.FlagElement) (*element.FlagElement, error)

// ThresholdDetector returns a detector that flags every raw visibility
// sample strictly below lower, in raw correlator units without any
// normalisation. It stands in for the external detector when no
// precomputed mask is available, e.g. for raw-data screening before
// calibration.
func ThresholdDetector(lower float64) Detector {
	return func(recv models.Receiver, vis *element.Element, initialFlag *element.FlagElement) (*element.FlagElement, error) {
		nTime, nFreq, nRecv := vis.Shape()
		mask, err := element.ZerosFlagElement(nTime, nFreq, nRecv)
		if err != nil {
			return nil, err
		}
		for t := 0; t < nTime; t++ {
			for f := 0; f < nFreq; f++ {
				for r := 0; r < nRecv; r++ {
					if vis.At(t, f, r) < lower {
						mask.Set(t, f, r, true)
					}
				}
			}
		}
		return mask, nil
	}
}

// PrecomputedDetector returns a detector that slices a full-block RFI mask
// computed elsewhere, handing out the plane of the requested receiver.
func PrecomputedDetector(mask *element.FlagElement) Detector {
	return func(recv models.Receiver, vis *element.Element, initialFlag *element.FlagElement) (*element.FlagElement, error) {
		_, _, nRecv := mask.Shape()
		if recv.Index < 0 || (nRecv != 1 && recv.Index >= nRecv) {
			return nil, fmt.Errorf("receiver %s index %d outside mask receiver axis of size %d",
				recv.Name, recv.Index, nRecv)
		}
		grid, err := mask.ReceiverGrid(recv.Index)
		if err != nil {
			return nil, err
		}
		return element.NewFlagElementFromGrid(grid), nil
	}
}
