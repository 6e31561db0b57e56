package judge

import (
	"fmt"
	"strings"

	"github.com/debatelab/engine/internal/store"
)

var phaseDisplayNames = map[store.DebatePhase]string{
	store.PhaseOpening:          "Opening Statements",
	store.PhaseRebuttal:         "Rebuttals",
	store.PhaseCrossExamination: "Cross-Examination",
	store.PhaseClosing:          "Closing Arguments",
}

// formatTranscriptForJudge renders every pre-judgment entry grouped under a
// phase header, labeling speakers by position; blinded debates never
// surface model names to the judge.
func formatTranscriptForJudge(topicTitle string, blinded bool, proName, conName string, entries []*store.TranscriptEntry) string {
	var b strings.Builder

	b.WriteString("DEBATE TRANSCRIPT\n")
	fmt.Fprintf(&b, "Topic: %s\n", topicTitle)
	if blinded {
		b.WriteString("Pro: Debater A\nCon: Debater B\n\n(Note: this is a blinded evaluation. Model identities have been concealed.)\n\n")
	} else {
		fmt.Fprintf(&b, "Pro: %s\nCon: %s\n\n", proName, conName)
	}
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	var currentPhase store.DebatePhase
	for _, e := range entries {
		if e.Phase == store.PhaseJudgment || e.Phase == store.PhaseAudit {
			continue
		}
		if blinded && e.Position == nil {
			continue // substitution notices name the models involved
		}
		if e.Phase != currentPhase {
			currentPhase = e.Phase
			name, ok := phaseDisplayNames[e.Phase]
			if !ok {
				name = string(e.Phase)
			}
			fmt.Fprintf(&b, "\n--- %s ---\n\n", strings.ToUpper(name))
		}
		label := "SPEAKER"
		if e.Position != nil {
			label = strings.ToUpper(string(*e.Position))
		}
		fmt.Fprintf(&b, "[%s]:\n%s\n\n", label, e.Content)
	}

	return b.String()
}

// formatTranscriptForAuditor appends the judge's decision section onto the
// same transcript rendering so the auditor sees both the debate and the
// evaluation it is grading.
func formatTranscriptForAuditor(topicTitle string, blinded bool, proName, conName string, entries []*store.TranscriptEntry, judgeName string, proScore, conScore int, winnerIsPro bool, judgmentText string) string {
	var b strings.Builder
	b.WriteString(formatTranscriptForJudge(topicTitle, blinded, proName, conName, entries))

	b.WriteString("\n" + strings.Repeat("=", 50) + "\n\nJUDGE'S DECISION\n")
	fmt.Fprintf(&b, "Judge: %s\n", judgeName)
	fmt.Fprintf(&b, "Pro Score: %d\n", proScore)
	fmt.Fprintf(&b, "Con Score: %d\n", conScore)
	winner := "Con"
	if winnerIsPro {
		winner = "Pro"
	}
	fmt.Fprintf(&b, "Winner: %s\n\n", winner)
	b.WriteString("Judge's Reasoning:\n")
	b.WriteString(judgmentText)

	return b.String()
}
