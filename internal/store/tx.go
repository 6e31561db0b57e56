package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgxpool.Pool and pgx.Tx that repository methods
// need. Every repository method that must be able to participate in the
// completion transaction (spec.md §5: rating/counter changes atomic with
// the debate's status transition) takes a Querier instead of reaching for
// GetPool() directly, so the same method runs identically against the pool
// (autocommit) or against an open transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

var (
	_ Querier = (*pgxpool.Pool)(nil)
	_ Querier = (pgx.Tx)(nil)
)

// DB returns the pool as a Querier, for call sites outside a transaction.
func DB() Querier {
	return GetPool()
}

// WithTx runs fn inside a single database transaction, committing if fn
// returns nil and rolling back otherwise (including on panic, which it
// re-panics after rolling back). Used for the audit-completion step, where
// the Debate's COMPLETED transition, both debaters' Elo updates, the
// judge's rolling average, and the topic's DEBATED transition must be
// atomic: spec.md §5.
func WithTx(ctx context.Context, fn func(q Querier) error) (err error) {
	tx, err := GetPool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		err = tx.Commit(ctx)
	}()

	err = fn(tx)
	return err
}
