package debate

import "github.com/debatelab/engine/internal/store"

// wordLimits is the soft per-phase word budget from spec.md §4.2.
var wordLimits = map[store.DebatePhase]int{
	store.PhaseOpening:          300,
	store.PhaseRebuttal:         250,
	store.PhaseCrossExamination: 150,
	store.PhaseClosing:          200,
}

const (
	tokensPerWord   = 1.5
	tokenBufferMult = 1.2
)

// maxTokensForPhase mirrors the original's max_tokens formula:
// int(word_limit * 1.5 * 1.2).
func maxTokensForPhase(phase store.DebatePhase) int {
	return int(float64(wordLimits[phase]) * tokensPerWord * tokenBufferMult)
}

// turnSpec describes one speaking turn within a phase.
type turnSpec struct {
	Position     store.DebatePosition
	SeesHistory  bool
	Instruction  string // extra framing appended to the system prompt, if any
}

// phaseTurns is the fixed turn order within each debate phase, per
// spec.md §4.2: Opening (Pro then Con, independent), Rebuttal (Con then
// Pro, full transcript), Cross-Examination (Pro asks/Con answers, then Con
// asks/Pro answers), Closing (Pro then Con).
var phaseTurns = map[store.DebatePhase][]turnSpec{
	store.PhaseOpening: {
		{Position: store.PositionPro, SeesHistory: false},
		{Position: store.PositionCon, SeesHistory: false},
	},
	store.PhaseRebuttal: {
		{Position: store.PositionCon, SeesHistory: true},
		{Position: store.PositionPro, SeesHistory: true},
	},
	store.PhaseCrossExamination: {
		{Position: store.PositionPro, SeesHistory: true, Instruction: "Ask your opponent one incisive question that probes the weakest point in their position."},
		{Position: store.PositionCon, SeesHistory: true, Instruction: "Answer the question directly before adding any further argument."},
		{Position: store.PositionCon, SeesHistory: true, Instruction: "Ask your opponent one incisive question that probes the weakest point in their position."},
		{Position: store.PositionPro, SeesHistory: true, Instruction: "Answer the question directly before adding any further argument."},
	},
	store.PhaseClosing: {
		{Position: store.PositionPro, SeesHistory: true},
		{Position: store.PositionCon, SeesHistory: true},
	},
}

const maxEmptyResponseRetries = 2
