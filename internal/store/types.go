package store

import (
	"time"

	"github.com/google/uuid"
)

// Model is an LLM participant: a (provider, remote model id) pair with a
// running skill rating and debate-history counters. Created externally,
// never deleted. The Elo service writes the rating, win/loss counters and
// judge rolling average; every substitution path (orchestrator, judge
// service, scheduler runner, watchdog) increments times_excused.
type Model struct {
	ID             uuid.UUID
	Name           string
	Provider       string
	APIModelID     string
	EloRating      int
	DebatesWon     int
	DebatesLost    int
	TimesJudged    int
	AvgJudgeScore  *float64
	TimesExcused   int
	IsActive       bool
	CreatedAt      time.Time
}

// Topic is a debate proposition.
type Topic struct {
	ID          uuid.UUID
	Title       string
	Subdomain   string
	Domain      string
	Category    string
	Source      TopicSource
	SubmittedBy *string
	VoteCount   int
	Status      TopicStatus
	CreatedAt   time.Time
	DebatedAt   *time.Time
}

// CategoryScores is the four-category judge rubric breakdown for one side.
type CategoryScores struct {
	LogicalConsistency int
	Evidence            int
	Persuasiveness      int
	Engagement          int
}

// Sum returns the rubric total, which must equal the side's overall score.
func (c CategoryScores) Sum() int {
	return c.LogicalConsistency + c.Evidence + c.Persuasiveness + c.Engagement
}

// AuditScores is the four-dimension auditor rubric, each in [0,10].
type AuditScores struct {
	Accuracy          int
	Fairness          int
	Thoroughness      int
	ReasoningQuality  int
}

// Mean returns the unweighted average of the four sub-scores.
func (a AuditScores) Mean() float64 {
	return float64(a.Accuracy+a.Fairness+a.Thoroughness+a.ReasoningQuality) / 4.0
}

// Debate is one execution of the engine: a topic, a quartet of model
// references, and the scores/ratings produced once it completes.
type Debate struct {
	ID            uuid.UUID
	TopicID       uuid.UUID
	DebaterProID  uuid.UUID
	DebaterConID  uuid.UUID
	JudgeID       uuid.UUID
	AuditorID     uuid.UUID
	WinnerID      *uuid.UUID

	ProScore *int
	ConScore *int
	ProCategoryScores *CategoryScores
	ConCategoryScores *CategoryScores

	JudgeScore  *float64
	AuditScores *AuditScores

	ProEloBefore *int
	ProEloAfter  *int
	ConEloBefore *int
	ConEloAfter  *int

	Status DebateStatus

	ScheduledAt time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time

	AnalysisMetadata map[string]interface{}
	IsBlinded        bool
}

// TranscriptEntry is one speaking turn, append-only within a debate except
// across a bounded content-filter restart (see ContentFilterExcuse).
type TranscriptEntry struct {
	ID             uuid.UUID
	DebateID       uuid.UUID
	Phase          DebatePhase
	SpeakerID      uuid.UUID
	Position       *DebatePosition
	Content        string
	TokenCount     int
	SequenceOrder  int
	CreatedAt      time.Time

	InputTokens  *int
	OutputTokens *int
	LatencyMs    *int
	CostUSD      *float64

	AnalysisMetadata map[string]interface{}
}

// ContentFilterExcuse records one model's removal from a role mid-debate.
type ContentFilterExcuse struct {
	ID                  uuid.UUID
	DebateID            uuid.UUID
	ModelID             uuid.UUID
	ReplacementModelID  *uuid.UUID
	Role                string
	Phase               *DebatePhase
	Provider            string
	ErrorMessage        string
	Attempt             int
	Reason              string
	CreatedAt           time.Time
}

// Vote is the external vote ledger's shape; the engine never writes these,
// it only reads vote_count off Topic. Kept for schema completeness.
type Vote struct {
	ID              uuid.UUID
	TopicID         *uuid.UUID
	DebateID        *uuid.UUID
	VotedForID      *uuid.UUID
	UserFingerprint string
	IPAddress       string
	CreatedAt       time.Time
}
