package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TopicRepo reads and mutates Topic rows.
type TopicRepo struct{}

func scanTopic(row interface {
	Scan(dest ...interface{}) error
}) (*Topic, error) {
	t := &Topic{}
	err := row.Scan(&t.ID, &t.Title, &t.Subdomain, &t.Domain, &t.Category, &t.Source,
		&t.SubmittedBy, &t.VoteCount, &t.Status, &t.CreatedAt, &t.DebatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// TopVotedApprovedUserTopic returns the highest-voted approved user topic
// with at least minVotes, oldest first on ties, or nil if none qualify.
func (r *TopicRepo) TopVotedApprovedUserTopic(ctx context.Context, minVotes int) (*Topic, error) {
	row := GetPool().QueryRow(ctx, `
		SELECT id, title, subdomain, domain, category, source, submitted_by, vote_count, status, created_at, debated_at
		FROM topics
		WHERE source = $1 AND status = $2 AND vote_count >= $3
		ORDER BY vote_count DESC, created_at ASC
		LIMIT 1`, TopicSourceUser, TopicApproved, minVotes)

	t, err := scanTopic(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("top voted user topic: %w", err)
	}
	return t, nil
}

// RandomPendingSeedTopic returns a random pending seed topic, optionally
// excluding a set of categories for daily diversity, or nil if none remain.
func (r *TopicRepo) RandomPendingSeedTopic(ctx context.Context, excludeCategories []string) (*Topic, error) {
	query := `
		SELECT id, title, subdomain, domain, category, source, submitted_by, vote_count, status, created_at, debated_at
		FROM topics
		WHERE source = $1 AND status = $2`
	args := []interface{}{TopicSourceSeed, TopicPending}

	if len(excludeCategories) > 0 {
		query += fmt.Sprintf(" AND category != ALL($%d)", len(args)+1)
		args = append(args, excludeCategories)
	}
	query += " ORDER BY random() LIMIT 1"

	row := GetPool().QueryRow(ctx, query, args...)
	t, err := scanTopic(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("random pending seed topic: %w", err)
	}
	return t, nil
}

// GetByID loads a single topic, used by the watchdog to recover the title
// for a stuck debate without re-running topic selection.
func (r *TopicRepo) GetByID(ctx context.Context, id uuid.UUID) (*Topic, error) {
	row := GetPool().QueryRow(ctx, `
		SELECT id, title, subdomain, domain, category, source, submitted_by, vote_count, status, created_at, debated_at
		FROM topics WHERE id = $1`, id)
	t, err := scanTopic(row)
	if err != nil {
		return nil, fmt.Errorf("get topic %s: %w", id, err)
	}
	return t, nil
}

func (r *TopicRepo) MarkSelected(ctx context.Context, id uuid.UUID) error {
	_, err := GetPool().Exec(ctx, `UPDATE topics SET status = $2 WHERE id = $1`, id, TopicSelected)
	return err
}

// MarkDebated transitions a topic to DEBATED. q is the completion
// transaction that also applies the Elo/rating changes and the Debate's
// COMPLETED transition for the same debate: spec.md §5.
func (r *TopicRepo) MarkDebated(ctx context.Context, q Querier, id uuid.UUID, at time.Time) error {
	_, err := q.Exec(ctx,
		`UPDATE topics SET status = $2, debated_at = $3 WHERE id = $1`, id, TopicDebated, at)
	return err
}

func (r *TopicRepo) ResetToPending(ctx context.Context, id uuid.UUID) error {
	_, err := GetPool().Exec(ctx, `UPDATE topics SET status = $2 WHERE id = $1`, id, TopicPending)
	return err
}
