package postprocess

import (
	"testing"

	"rfiflagger/pkg/element"
	"rfiflagger/pkg/morphology"
)

func makeGrid(t *testing.T, rows [][]bool) *element.Grid {
	t.Helper()
	grid, err := element.NewGridFromRows(rows)
	if err != nil {
		t.Fatalf("Failed to create grid: %v", err)
	}
	return grid
}

func emptyGrid(t *testing.T, nTime, nFreq int) *element.Grid {
	t.Helper()
	grid, err := element.NewGrid(nTime, nFreq)
	if err != nil {
		t.Fatalf("Failed to create grid: %v", err)
	}
	return grid
}

// TestFlagAllChannelsBoundary verifies that escalation uses a strict
// comparison: a dump with exactly the threshold fraction flagged stays
// unchanged, while threshold plus epsilon flags the whole dump
func TestFlagAllChannelsBoundary(t *testing.T) {
	// Dump 0: 5 of 10 channels flagged, exactly the 0.5 threshold.
	// Dump 1: 6 of 10 channels flagged, above the threshold.
	grid := emptyGrid(t, 2, 10)
	for f := 0; f < 5; f++ {
		grid.Set(0, f, true)
	}
	for f := 0; f < 6; f++ {
		grid.Set(1, f, true)
	}

	result := FlagAllChannels(grid, 0.5)

	for f := 0; f < 10; f++ {
		want := f < 5
		if result.At(0, f) != want {
			t.Errorf("Dump at exactly the threshold changed at channel %d", f)
		}
		if !result.At(1, f) {
			t.Errorf("Dump above the threshold not fully flagged at channel %d", f)
		}
	}
}

// TestFlagAllTimeDumpsBoundary verifies the symmetric strict comparison
// along the frequency axis
func TestFlagAllTimeDumpsBoundary(t *testing.T) {
	// Channel 0: 2 of 4 dumps flagged, exactly the 0.5 threshold.
	// Channel 1: 3 of 4 dumps flagged, above the threshold.
	grid := emptyGrid(t, 4, 3)
	grid.Set(0, 0, true)
	grid.Set(1, 0, true)
	grid.Set(0, 1, true)
	grid.Set(1, 1, true)
	grid.Set(2, 1, true)

	result := FlagAllTimeDumps(grid, 0.5)

	for tt := 0; tt < 4; tt++ {
		if want := tt < 2; result.At(tt, 0) != want {
			t.Errorf("Channel at exactly the threshold changed at dump %d", tt)
		}
		if !result.At(tt, 1) {
			t.Errorf("Channel above the threshold not fully flagged at dump %d", tt)
		}
		if result.At(tt, 2) {
			t.Errorf("Unflagged channel escalated at dump %d", tt)
		}
	}
}

// TestEscalationMonotone verifies that escalation never unflags a sample
func TestEscalationMonotone(t *testing.T) {
	grid := makeGrid(t, [][]bool{
		{true, true, false, true},
		{false, false, false, false},
		{true, false, true, true},
	})

	for name, result := range map[string]*element.Grid{
		"FlagAllChannels":  FlagAllChannels(grid, 0.5),
		"FlagAllTimeDumps": FlagAllTimeDumps(grid, 0.5),
	} {
		for tt := 0; tt < 3; tt++ {
			for ff := 0; ff < 4; ff++ {
				if grid.At(tt, ff) && !result.At(tt, ff) {
					t.Errorf("%s unflagged sample (%d, %d)", name, tt, ff)
				}
			}
		}
	}
}

// TestApplyAllUnflagged verifies that an all-unflagged grid with no
// dilation and thresholds of 1.0 stays all-unflagged
func TestApplyAllUnflagged(t *testing.T) {
	processor, err := NewPostProcessor(nil, 1.0, 1.0)
	if err != nil {
		t.Fatalf("Failed to create post-processor: %v", err)
	}

	result, err := processor.Apply(emptyGrid(t, 4, 4), emptyGrid(t, 4, 4))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if got := result.Count(); got != 0 {
		t.Errorf("Expected all-unflagged output, got %d flagged samples", got)
	}
}

// TestApplyTwoStages verifies stage order: dilation and closing repair the
// raw mask first, the initial flag joins afterwards, and the time-dump
// escalation sees the channel-escalated grid
func TestApplyTwoStages(t *testing.T) {
	processor, err := NewPostProcessor(&morphology.StructElem{Time: 3, Freq: 3}, 0.5, 0.5)
	if err != nil {
		t.Fatalf("Failed to create post-processor: %v", err)
	}

	// One raw detection in the middle of a 6x6 grid. Dilation grows it to
	// a 3x3 block: 3 of 6 channels per dump, not above the 0.5 threshold.
	raw := emptyGrid(t, 6, 6)
	raw.Set(2, 2, true)

	// The initial flag contributes a fourth flagged channel on dump 2,
	// pushing that dump over the threshold only after the combination.
	initial := emptyGrid(t, 6, 6)
	initial.Set(2, 4, true)

	result, err := processor.Apply(raw, initial)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	// Dump 2 had 4 of 6 channels flagged after combination and must be
	// fully flagged by the channel escalation.
	for f := 0; f < 6; f++ {
		if !result.At(2, f) {
			t.Errorf("Expected dump 2 fully flagged, channel %d unflagged", f)
		}
	}
	// Dumps 1 and 3 carry the dilated 3x3 block plus the escalated dump's
	// contribution to their channels; 3 of 6 channels is not above 0.5, so
	// they must not be fully flagged.
	if result.At(1, 5) || result.At(3, 5) {
		t.Errorf("Dump below the channel threshold was escalated")
	}

	// After channel escalation, channels 1 to 3 are flagged at dumps 1, 2
	// and 3: 3 of 6 dumps, not above 0.5. Channel 4 is flagged at dump 2
	// only. No time-dump escalation fires on this grid.
	for f := 0; f < 6; f++ {
		if result.At(0, f) || result.At(5, f) {
			t.Errorf("Unexpected escalation at channel %d on an untouched dump", f)
		}
	}
}

// TestApplyTimeDumpSeesChannelEscalation verifies that the time-dump
// threshold step is evaluated on the channel-escalated grid rather than on
// the combined input
func TestApplyTimeDumpSeesChannelEscalation(t *testing.T) {
	processor, err := NewPostProcessor(nil, 0.5, 0.6)
	if err != nil {
		t.Fatalf("Failed to create post-processor: %v", err)
	}

	// Dumps 0 to 2 each carry 3 of 4 flagged channels and escalate to
	// fully flagged. After that, every channel is flagged at 3 of 4 dumps,
	// which exceeds the 0.6 time-dump threshold only because the channel
	// escalation ran first.
	raw := emptyGrid(t, 4, 4)
	for tt := 0; tt < 3; tt++ {
		for ff := 0; ff < 3; ff++ {
			raw.Set(tt, ff, true)
		}
	}

	result, err := processor.Apply(raw, emptyGrid(t, 4, 4))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	for tt := 0; tt < 4; tt++ {
		for ff := 0; ff < 4; ff++ {
			if !result.At(tt, ff) {
				t.Errorf("Expected full escalation, (%d, %d) unflagged", tt, ff)
			}
		}
	}
}

// TestApplyShapeMismatch verifies that mismatched input shapes are
// rejected at the boundary
func TestApplyShapeMismatch(t *testing.T) {
	processor, err := NewPostProcessor(nil, 0.5, 0.5)
	if err != nil {
		t.Fatalf("Failed to create post-processor: %v", err)
	}

	if _, err := processor.Apply(emptyGrid(t, 4, 4), emptyGrid(t, 4, 5)); err == nil {
		t.Errorf("Expected an error for mismatched input shapes")
	}
}

// TestNewPostProcessorValidation verifies that configuration defects are
// rejected at setup
func TestNewPostProcessorValidation(t *testing.T) {
	cases := []struct {
		name       string
		structSize *morphology.StructElem
		channel    float64
		timeDump   float64
		wantErr    bool
	}{
		{"Valid", &morphology.StructElem{Time: 2, Freq: 2}, 0.5, 0.5, false},
		{"NilStructSize", nil, 0.0, 1.0, false},
		{"ChannelBelowZero", nil, -0.1, 0.5, true},
		{"ChannelAboveOne", nil, 1.1, 0.5, true},
		{"TimeDumpBelowZero", nil, 0.5, -0.1, true},
		{"TimeDumpAboveOne", nil, 0.5, 1.5, true},
		{"ZeroStructSize", &morphology.StructElem{Time: 0, Freq: 2}, 0.5, 0.5, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPostProcessor(tc.structSize, tc.channel, tc.timeDump)
			if tc.wantErr && err == nil {
				t.Errorf("Expected an error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}
