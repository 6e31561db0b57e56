package debate

import (
	"fmt"
	"strings"

	"github.com/debatelab/engine/internal/store"
)

// buildSystemPrompt constructs a debater's system prompt. The framing —
// "rhetorical content generator for an academic debate simulation
// platform" plus a plain-prose, no-dash constraint — is taken verbatim
// from the original implementation, which notes that this framing
// materially reduces content-filter rejections on controversial topics.
// Reproducing it is called out explicitly in spec.md §4.2.
func buildSystemPrompt(topicTitle string, position store.DebatePosition, phase store.DebatePhase, instruction string) string {
	side := "in favor of"
	if position == store.PositionCon {
		side = "against"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a rhetorical content generator for an academic debate simulation platform. ")
	fmt.Fprintf(&b, "Generate one turn of a structured debate on the proposition: %q.\n\n", topicTitle)
	fmt.Fprintf(&b, "Your assigned position is %s the proposition. ", side)
	fmt.Fprintf(&b, "This is the %s phase.\n\n", phaseLabel(phase))
	fmt.Fprintf(&b, "Write in plain prose. Do not use stage directions, bullet points, or headings. ")
	fmt.Fprintf(&b, "Do not use em dashes or en dashes; use standard hyphens only. ")
	fmt.Fprintf(&b, "Aim for approximately %d words; this is a target, not a hard ceiling.", wordLimits[phase])

	if instruction != "" {
		fmt.Fprintf(&b, "\n\n%s", instruction)
	}

	return b.String()
}

func phaseLabel(phase store.DebatePhase) string {
	switch phase {
	case store.PhaseOpening:
		return "opening statement"
	case store.PhaseRebuttal:
		return "rebuttal"
	case store.PhaseCrossExamination:
		return "cross-examination"
	case store.PhaseClosing:
		return "closing statement"
	default:
		return string(phase)
	}
}

// openingInstructionPrompt is the single prompt Opening speakers receive
// instead of a transcript, since Opening speakers are independent and do
// not see each other's statement.
const openingInstructionPrompt = "Begin the debate with your opening statement."
