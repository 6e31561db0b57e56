package debate

import (
	"strings"
	"testing"

	"github.com/debatelab/engine/internal/store"
)

func TestBuildSystemPrompt_SideFraming(t *testing.T) {
	pro := buildSystemPrompt("AI regulation is necessary", store.PositionPro, store.PhaseOpening, "")
	if !strings.Contains(pro, "in favor of") {
		t.Error("pro prompt should frame the assigned side as in favor of the proposition")
	}

	con := buildSystemPrompt("AI regulation is necessary", store.PositionCon, store.PhaseOpening, "")
	if !strings.Contains(con, "against") {
		t.Error("con prompt should frame the assigned side as against the proposition")
	}
}

func TestBuildSystemPrompt_NoDashConstraint(t *testing.T) {
	got := buildSystemPrompt("topic", store.PositionPro, store.PhaseRebuttal, "")
	if !strings.Contains(got, "Do not use em dashes or en dashes") {
		t.Error("every debater prompt must carry the no-dash constraint")
	}
}

func TestBuildSystemPrompt_InstructionAppended(t *testing.T) {
	instruction := "Ask your opponent one incisive question that probes the weakest point in their position."
	got := buildSystemPrompt("topic", store.PositionPro, store.PhaseCrossExamination, instruction)
	if !strings.Contains(got, instruction) {
		t.Error("cross-examination instruction must be appended to the base prompt")
	}
}

func TestBuildSystemPrompt_WordTargetMatchesPhase(t *testing.T) {
	got := buildSystemPrompt("topic", store.PositionPro, store.PhaseOpening, "")
	if !strings.Contains(got, "300 words") {
		t.Errorf("opening prompt should target 300 words, got: %s", got)
	}
}
