package pipeline

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"rfiflagger/internal/models"
	"rfiflagger/pkg/element"
)

// Combine stacks independently computed per-receiver flag grids into a
// shared flag element of shape (nTime, nFreq, len(perReceiver)). Grid i is
// placed at receiver index i, index for index, regardless of the order the
// grids were computed in. A grid whose shape does not match (nTime, nFreq)
// is a fatal contract violation: Combine fails before assembling anything
// rather than truncating or padding.
func Combine(perReceiver []*element.Grid, nTime, nFreq int) (*element.FlagElement, error) {
	if len(perReceiver) == 0 {
		return nil, fmt.Errorf("no per-receiver flag grids to combine")
	}
	for i, grid := range perReceiver {
		if grid == nil {
			return nil, fmt.Errorf("missing flag grid for receiver %d", i)
		}
		gTime, gFreq := grid.Dims()
		if gTime != nTime || gFreq != nFreq {
			return nil, fmt.Errorf("flag grid for receiver %d has shape (%d, %d), expected (%d, %d)",
				i, gTime, gFreq, nTime, nFreq)
		}
	}

	combined, err := element.ZerosFlagElement(nTime, nFreq, len(perReceiver))
	if err != nil {
		return nil, err
	}
	for i, grid := range perReceiver {
		if err := combined.SetReceiverGrid(i, grid); err != nil {
			return nil, err
		}
	}
	return combined, nil
}

// ReceiverFraction pairs a receiver with its flagged fraction, rounded to
// four decimal places.
type ReceiverFraction struct {
	Receiver models.Receiver
	Fraction float64
}

// Summary computes the flagged fraction of every receiver of the combined
// flag element, in receiver order. The fraction is the mean of the 0/1
// flag indicator over the receiver's (time, frequency) plane, rounded to
// four decimal places.
func Summary(flags *element.FlagElement, receivers []models.Receiver) ([]ReceiverFraction, error) {
	nTime, nFreq, nRecv := flags.Shape()
	if len(receivers) != nRecv {
		return nil, fmt.Errorf("got %d receivers for a flag element with receiver axis of size %d",
			len(receivers), nRecv)
	}

	fractions := make([]ReceiverFraction, nRecv)
	indicator := make([]float64, nTime*nFreq)
	for i, receiver := range receivers {
		for t := 0; t < nTime; t++ {
			for f := 0; f < nFreq; f++ {
				if flags.At(t, f, i) {
					indicator[t*nFreq+f] = 1
				} else {
					indicator[t*nFreq+f] = 0
				}
			}
		}
		fractions[i] = ReceiverFraction{
			Receiver: receiver,
			Fraction: round4(stat.Mean(indicator, nil)),
		}
	}
	return fractions, nil
}

func round4(x float64) float64 {
	return math.Round(x*1e4) / 1e4
}

// SummaryLines renders the per-receiver flag fractions as the text lines
// appended to the flag report.
func SummaryLines(finished time.Time, fractions []ReceiverFraction) []string {
	lines := []string{
		"...........................",
		"RFI post-processing finished at " + finished.Format("2006-01-02 15:04:05"),
		"The flag fraction for each receiver: ",
	}
	for _, rf := range fractions {
		lines = append(lines, fmt.Sprintf("%s  %v", rf.Receiver.Name, rf.Fraction))
	}
	return lines
}
