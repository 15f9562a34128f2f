package models

import (
	"fmt"
)

// Receiver identifies a single receiver (one antenna/polarisation channel)
// within an observation block.
type Receiver struct {
	// Name is the display name used in flag reports, e.g. "m000h"
	Name string

	// Index is the position of this receiver along the receiver axis
	// of the time-ordered data block
	Index int
}

// String returns the display name of the receiver.
func (r Receiver) String() string {
	return r.Name
}

// Block describes the extent of one time-ordered data block.
type Block struct {
	// Name is the observation block identifier used in reports
	Name string

	// NumDumps is the number of time dumps in the block
	NumDumps int

	// NumChannels is the number of frequency channels in the block
	NumChannels int

	// Receivers lists the receivers of the block in axis order
	Receivers []Receiver
}

// DefaultReceivers generates a receiver list with sequential names of the
// form "m000", "m001", ... for blocks that carry no receiver metadata.
func DefaultReceivers(count int) []Receiver {
	receivers := make([]Receiver, count)
	for i := range receivers {
		receivers[i] = Receiver{
			Name:  fmt.Sprintf("m%03d", i),
			Index: i,
		}
	}
	return receivers
}

// ReceiverNames returns the display names of all receivers in axis order.
func ReceiverNames(receivers []Receiver) []string {
	names := make([]string, len(receivers))
	for i, receiver := range receivers {
		names[i] = receiver.Name
	}
	return names
}
