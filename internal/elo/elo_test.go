package elo

import "testing"

func TestCalculate_EqualRatings(t *testing.T) {
	// Two models at identical ratings: each starts with a 50% expected
	// score, so K=32 should split evenly as +16/-16.
	winnerNew, loserNew := Calculate(1500, 1500, 32)
	if winnerNew != 1516 {
		t.Errorf("expected winner to reach 1516, got %d", winnerNew)
	}
	if loserNew != 1484 {
		t.Errorf("expected loser to drop to 1484, got %d", loserNew)
	}
}

func TestCalculate_UpsetGivesLargerSwing(t *testing.T) {
	// A much lower-rated model beating a much higher-rated one should
	// gain more than the equal-ratings case, and the favorite should lose
	// more than in the equal-ratings case.
	upsetWinnerNew, upsetLoserNew := Calculate(1400, 1700, 32)
	if delta := upsetWinnerNew - 1400; delta <= 16 {
		t.Errorf("expected an upset win to gain more than the equal-ratings case, gained %d", delta)
	}
	if delta := 1700 - upsetLoserNew; delta <= 16 {
		t.Errorf("expected the favorite's loss to cost more than the equal-ratings case, lost %d", delta)
	}
}

func TestCalculate_ZeroSumWithinRounding(t *testing.T) {
	winnerNew, loserNew := Calculate(1523, 1489, 32)
	winnerDelta := winnerNew - 1523
	loserDelta := 1489 - loserNew
	if diff := winnerDelta - loserDelta; diff < -1 || diff > 1 {
		t.Errorf("expected winner gain and loser loss to match within rounding, got %d vs %d", winnerDelta, loserDelta)
	}
}
