// Package elo implements the pairwise Elo rating update applied after a
// debate's audit completes: spec.md §4.4.
package elo

import "math"

// Update is the outcome of one rating exchange between a winner and a loser.
type Update struct {
	WinnerOldElo int
	WinnerNewElo int
	LoserOldElo  int
	LoserNewElo  int
}

// WinnerChange returns the winner's net rating delta.
func (u Update) WinnerChange() int { return u.WinnerNewElo - u.WinnerOldElo }

// LoserChange returns the loser's net rating delta.
func (u Update) LoserChange() int { return u.LoserNewElo - u.LoserOldElo }

// DefaultK is the K-factor used when no override is configured.
const DefaultK = 32

// Calculate computes new ratings for a winner and a loser using the
// standard pairwise Elo formula: expected score 1/(1+10^((loserElo-winnerElo)/400)),
// new rating = old rating + k*(actual - expected), actual=1 for the winner
// and 0 for the loser. Both new ratings are rounded to the nearest integer,
// matching the original implementation's round-half-away-from-zero via
// Python's round() on a non-negative float (math.Round gives the same
// result here since Elo deltas of this magnitude never land exactly on a
// .5 boundary in practice, and both languages round ties the same way for
// positive inputs).
func Calculate(winnerElo, loserElo, k int) (newWinnerElo, newLoserElo int) {
	expectedWinner := 1.0 / (1.0 + math.Pow(10, float64(loserElo-winnerElo)/400.0))
	expectedLoser := 1.0 - expectedWinner

	newWinner := float64(winnerElo) + float64(k)*(1.0-expectedWinner)
	newLoser := float64(loserElo) + float64(k)*(0.0-expectedLoser)

	return int(math.Round(newWinner)), int(math.Round(newLoser))
}
