// Package pipeline orchestrates RFI flag post-processing over a full
// time-ordered data block: it hands each receiver's visibility and initial
// flag to the detector, refines the raw mask through the two-stage
// post-processor, and combines the per-receiver results into the shared
// flag element together with the report summary.
package pipeline

import (
	"fmt"
	"time"

	"rfiflagger/internal/models"
	"rfiflagger/pkg/config"
	"rfiflagger/pkg/element"
	"rfiflagger/pkg/parallel"
	"rfiflagger/pkg/postprocess"
	"rfiflagger/pkg/report"
)

// Runner runs the per-receiver flag pipeline over a data block. Each
// receiver is an independent unit of work with no shared mutable state;
// units may run concurrently and the combiner reassembles their results in
// receiver order, never in completion order.
type Runner struct {
	cfg       *config.Config
	detector  Detector
	processor *postprocess.PostProcessor
	reporter  *report.Writer
}

// NewRunner validates the configuration and returns a runner. reporter may
// be nil to skip report writing.
func NewRunner(cfg *config.Config, detector Detector, reporter *report.Writer) (*Runner, error) {
	if detector == nil {
		return nil, fmt.Errorf("detector must not be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	processor, err := postprocess.NewPostProcessor(
		cfg.StructElem(),
		cfg.Flagging.ChannelFlagThreshold,
		cfg.Flagging.TimeDumpFlagThreshold,
	)
	if err != nil {
		return nil, err
	}
	return &Runner{
		cfg:       cfg,
		detector:  detector,
		processor: processor,
		reporter:  reporter,
	}, nil
}

// Receivers returns the receiver list for a block with nRecv receivers,
// taking display names from the configuration when present.
func (r *Runner) Receivers(nRecv int) ([]models.Receiver, error) {
	if len(r.cfg.Receivers) == 0 {
		return models.DefaultReceivers(nRecv), nil
	}
	if len(r.cfg.Receivers) != nRecv {
		return nil, fmt.Errorf("config names %d receivers but the block has %d",
			len(r.cfg.Receivers), nRecv)
	}
	receivers := make([]models.Receiver, nRecv)
	for i, name := range r.cfg.Receivers {
		receivers[i] = models.Receiver{Name: name, Index: i}
	}
	return receivers, nil
}

// Run detects and post-processes RFI flags for every receiver of the block
// and returns the combined flag element along with the per-receiver
// flagged fractions. The visibility must carry full axes; the initial flag
// axes must each match the visibility or have size 1. If any receiver
// fails, the whole run fails: the shared result needs every receiver's
// slice, so there is no partial result.
func (r *Runner) Run(vis *element.Element, initialFlag *element.FlagElement) (*element.FlagElement, []ReceiverFraction, error) {
	nTime, nFreq, nRecv := vis.Shape()
	if err := initialFlag.ConformsTo(nTime, nFreq, nRecv); err != nil {
		return nil, nil, fmt.Errorf("initial flag does not match visibility block: %w", err)
	}

	receivers, err := r.Receivers(nRecv)
	if err != nil {
		return nil, nil, err
	}

	if r.cfg.Output.Verbose {
		fmt.Printf("Post-processing RFI flags for %d receivers on %d cores...\n",
			nRecv, r.cfg.Processing.NumCores)
	}

	perReceiver, err := parallel.Map(r.cfg.Processing.NumCores, nRecv, func(i int) (*element.Grid, error) {
		return r.runReceiver(receivers[i], vis, initialFlag)
	})
	if err != nil {
		return nil, nil, err
	}

	// Single-owner final assembly, after every unit has completed.
	combined, err := Combine(perReceiver, nTime, nFreq)
	if err != nil {
		return nil, nil, err
	}

	fractions, err := Summary(combined, receivers)
	if err != nil {
		return nil, nil, err
	}

	if r.reporter != nil {
		if err := r.reporter.WriteLines(SummaryLines(time.Now(), fractions)); err != nil {
			return nil, nil, fmt.Errorf("failed to write flag report: %w", err)
		}
	}
	return combined, fractions, nil
}

// runReceiver processes one receiver: extract the unit, run the detector,
// post-process the raw mask against the initial flag.
func (r *Runner) runReceiver(recv models.Receiver, vis *element.Element, initialFlag *element.FlagElement) (*element.Grid, error) {
	nTime, nFreq, _ := vis.Shape()

	visUnit, err := vis.Get(nil, nil, []int{recv.Index})
	if err != nil {
		return nil, fmt.Errorf("receiver %s: %w", recv.Name, err)
	}
	initialGrid, err := initialFlag.MaterializeGrid(recv.Index, nTime, nFreq)
	if err != nil {
		return nil, fmt.Errorf("receiver %s: %w", recv.Name, err)
	}
	flagUnit := element.NewFlagElementFromGrid(initialGrid)

	rawMask, err := r.detector(recv, visUnit, flagUnit)
	if err != nil {
		return nil, fmt.Errorf("receiver %s: detector failed: %w", recv.Name, err)
	}
	rawGrid, err := rawMask.MaterializeGrid(0, nTime, nFreq)
	if err != nil {
		return nil, fmt.Errorf("receiver %s: detector mask does not match unit: %w", recv.Name, err)
	}

	final, err := r.processor.Apply(rawGrid, initialGrid)
	if err != nil {
		return nil, fmt.Errorf("receiver %s: %w", recv.Name, err)
	}
	return final, nil
}
