package debate

import (
	"testing"

	"github.com/debatelab/engine/internal/store"
)

func TestMaxTokensForPhase(t *testing.T) {
	cases := []struct {
		phase store.DebatePhase
		want  int
	}{
		{store.PhaseOpening, 540},          // 300 * 1.5 * 1.2
		{store.PhaseRebuttal, 450},          // 250 * 1.5 * 1.2
		{store.PhaseCrossExamination, 270},  // 150 * 1.5 * 1.2
		{store.PhaseClosing, 360},           // 200 * 1.5 * 1.2
	}
	for _, c := range cases {
		if got := maxTokensForPhase(c.phase); got != c.want {
			t.Errorf("maxTokensForPhase(%s) = %d, want %d", c.phase, got, c.want)
		}
	}
}

func TestPhaseTurns_HappyPathSequencing(t *testing.T) {
	// Opening: Pro then Con, neither sees history.
	opening := phaseTurns[store.PhaseOpening]
	if len(opening) != 2 || opening[0].Position != store.PositionPro || opening[1].Position != store.PositionCon {
		t.Fatalf("opening turn order wrong: %+v", opening)
	}
	if opening[0].SeesHistory || opening[1].SeesHistory {
		t.Error("opening speakers must not see history")
	}

	// Rebuttal: Con then Pro, both with full transcript.
	rebuttal := phaseTurns[store.PhaseRebuttal]
	if len(rebuttal) != 2 || rebuttal[0].Position != store.PositionCon || rebuttal[1].Position != store.PositionPro {
		t.Fatalf("rebuttal turn order wrong: %+v", rebuttal)
	}
	for _, turn := range rebuttal {
		if !turn.SeesHistory {
			t.Error("rebuttal speakers must see full transcript")
		}
	}

	// Cross-examination: Pro asks/Con answers, then Con asks/Pro answers.
	cross := phaseTurns[store.PhaseCrossExamination]
	wantPositions := []store.DebatePosition{store.PositionPro, store.PositionCon, store.PositionCon, store.PositionPro}
	if len(cross) != 4 {
		t.Fatalf("expected 4 cross-examination turns, got %d", len(cross))
	}
	for i, want := range wantPositions {
		if cross[i].Position != want {
			t.Errorf("cross-examination turn %d: got position %s, want %s", i, cross[i].Position, want)
		}
	}

	// Closing: Pro then Con.
	closing := phaseTurns[store.PhaseClosing]
	if len(closing) != 2 || closing[0].Position != store.PositionPro || closing[1].Position != store.PositionCon {
		t.Fatalf("closing turn order wrong: %+v", closing)
	}
}

func TestExpectedEntryCount_MatchesPhaseTurnCounts(t *testing.T) {
	for _, phase := range store.PhaseOrder {
		if got, want := len(phaseTurns[phase]), store.ExpectedEntryCount[phase]; got != want {
			t.Errorf("phase %s: %d turn specs but ExpectedEntryCount says %d", phase, got, want)
		}
	}
}
