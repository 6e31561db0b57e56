package store

// TopicSource distinguishes seeded backlog topics from user submissions.
type TopicSource string

const (
	TopicSourceSeed TopicSource = "seed"
	TopicSourceUser TopicSource = "user"
)

// TopicStatus is the topic lifecycle state.
type TopicStatus string

const (
	TopicPending  TopicStatus = "pending"
	TopicApproved TopicStatus = "approved"
	TopicSelected TopicStatus = "selected"
	TopicDebated  TopicStatus = "debated"
	TopicRejected TopicStatus = "rejected"
)

// DebateStatus is the debate lifecycle state.
type DebateStatus string

const (
	DebateScheduled  DebateStatus = "scheduled"
	DebateInProgress DebateStatus = "in_progress"
	DebateJudging    DebateStatus = "judging"
	DebateCompleted  DebateStatus = "completed"
)

// DebatePhase names one of the six phases a transcript entry belongs to.
type DebatePhase string

const (
	PhaseOpening           DebatePhase = "opening"
	PhaseRebuttal          DebatePhase = "rebuttal"
	PhaseCrossExamination  DebatePhase = "cross_examination"
	PhaseClosing           DebatePhase = "closing"
	PhaseJudgment          DebatePhase = "judgment"
	PhaseAudit             DebatePhase = "audit"
)

// DebatePosition is the role a transcript entry's speaker occupied when it
// was written. Nil/empty for system notices.
type DebatePosition string

const (
	PositionPro     DebatePosition = "pro"
	PositionCon     DebatePosition = "con"
	PositionJudge   DebatePosition = "judge"
	PositionAuditor DebatePosition = "auditor"
)

// ExpectedEntryCount is the number of non-system-notice transcript entries
// a phase produces when it completes normally.
var ExpectedEntryCount = map[DebatePhase]int{
	PhaseOpening:          2,
	PhaseRebuttal:         2,
	PhaseCrossExamination: 4,
	PhaseClosing:          2,
	PhaseJudgment:         1,
	PhaseAudit:            1,
}

// PhaseOrder is the fixed sequence the orchestrator drives a debate through.
var PhaseOrder = []DebatePhase{
	PhaseOpening,
	PhaseRebuttal,
	PhaseCrossExamination,
	PhaseClosing,
}
