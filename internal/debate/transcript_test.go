package debate

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/debatelab/engine/internal/store"
)

func TestBuildConversation_UnblindedUsesModelNames(t *testing.T) {
	pro := uuid.New()
	proPos := store.PositionPro
	entries := []*store.TranscriptEntry{
		{SpeakerID: pro, Position: &proPos, Phase: store.PhaseOpening, Content: "Opening remarks."},
	}
	names := map[string]string{pro.String(): "gpt-5"}

	turns := buildConversation(entries, false, names)
	if len(turns) != 1 {
		t.Fatalf("expected 1 turn, got %d", len(turns))
	}
	if !strings.Contains(turns[0].Content, "gpt-5") {
		t.Errorf("unblinded conversation should use the model name, got: %s", turns[0].Content)
	}
}

func TestBuildConversation_BlindedUsesLetterLabels(t *testing.T) {
	pro, con := uuid.New(), uuid.New()
	proPos, conPos := store.PositionPro, store.PositionCon
	entries := []*store.TranscriptEntry{
		{SpeakerID: pro, Position: &proPos, Phase: store.PhaseOpening, Content: "Pro opens."},
		{SpeakerID: con, Position: &conPos, Phase: store.PhaseOpening, Content: "Con opens."},
	}
	names := map[string]string{pro.String(): "gpt-5", con.String(): "claude"}

	turns := buildConversation(entries, true, names)
	if !strings.Contains(turns[0].Content, "Debater A") {
		t.Errorf("blinded pro turn should read Debater A, got: %s", turns[0].Content)
	}
	if !strings.Contains(turns[1].Content, "Debater B") {
		t.Errorf("blinded con turn should read Debater B, got: %s", turns[1].Content)
	}
	if strings.Contains(turns[0].Content, "gpt-5") || strings.Contains(turns[1].Content, "claude") {
		t.Error("blinded conversation must not leak model names")
	}
}

func TestBuildConversation_SystemNoticeLabel(t *testing.T) {
	entries := []*store.TranscriptEntry{
		{SpeakerID: uuid.New(), Position: nil, Phase: store.PhaseOpening, Content: "model-x was excused."},
	}
	turns := buildConversation(entries, false, nil)
	if !strings.Contains(turns[0].Content, "[SYSTEM]") {
		t.Errorf("system notice entries should render under the SYSTEM label, got: %s", turns[0].Content)
	}
}
