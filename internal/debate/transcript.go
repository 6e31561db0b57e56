package debate

import (
	"fmt"
	"strings"

	"github.com/debatelab/engine/internal/provider"
	"github.com/debatelab/engine/internal/store"
)

// buildConversation renders the prior transcript entries as a sequence of
// user-role turns, one per entry, each prefixed "[POSITION] (Phase):\n" —
// the original's _build_messages_from_transcript shape — rather than one
// flattened blob. System-notice entries (nil Position) are rendered with
// the literal label "SYSTEM".
func buildConversation(entries []*store.TranscriptEntry, blinded bool, roleNames map[string]string) []provider.Turn {
	turns := make([]provider.Turn, 0, len(entries))
	for _, e := range entries {
		label := "SYSTEM"
		if e.Position != nil {
			label = positionLabel(*e.Position, blinded, e.SpeakerID.String(), roleNames)
		}
		content := fmt.Sprintf("[%s] (%s):\n%s", label, phaseLabel(e.Phase), e.Content)
		turns = append(turns, provider.Turn{Role: provider.RoleUser, Content: content})
	}
	return turns
}

func positionLabel(pos store.DebatePosition, blinded bool, speakerID string, roleNames map[string]string) string {
	if blinded {
		switch pos {
		case store.PositionPro:
			return "Debater A"
		case store.PositionCon:
			return "Debater B"
		default:
			return strings.ToUpper(string(pos))
		}
	}
	if name, ok := roleNames[speakerID]; ok {
		return name
	}
	return strings.ToUpper(string(pos))
}
