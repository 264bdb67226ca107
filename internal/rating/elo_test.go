package rating

import (
	"math"
	"testing"
)

func TestEqualRatingsWin(t *testing.T) {
	u := NewUpdater(32)
	n1, n2 := u.Update(1200, 1200, Player1Wins)
	if n1 != 1216 || n2 != 1184 {
		t.Fatalf("Update(1200,1200,win) = %d,%d, want 1216,1184", n1, n2)
	}
}

func TestEqualRatingsDraw(t *testing.T) {
	u := NewUpdater(32)
	n1, n2 := u.Update(1200, 1200, Drawn)
	if n1 != 1200 || n2 != 1200 {
		t.Fatalf("draw between equals should not move ratings, got %d,%d", n1, n2)
	}
}

func TestUpsetPaysMore(t *testing.T) {
	u := NewUpdater(32)
	lowWin, _ := u.Update(1000, 1400, Player1Wins)
	evenWin, _ := u.Update(1000, 1000, Player1Wins)
	if lowWin-1000 <= evenWin-1000 {
		t.Fatalf("upset gain %d should exceed even-game gain %d", lowWin-1000, evenWin-1000)
	}
}

func TestGainAndLossMirror(t *testing.T) {
	u := NewUpdater(32)
	n1, n2 := u.Update(1340, 1180, Player2Wins)
	if (n1 - 1340) != -(n2 - 1180) {
		t.Fatalf("zero-sum violated: %d vs %d", n1-1340, n2-1180)
	}
}

func TestExpectedScoreFormula(t *testing.T) {
	got := expected(1200, 1400)
	want := 1 / (1 + math.Pow(10, 200.0/400))
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected(1200,1400) = %v, want %v", got, want)
	}
	if s := expected(1200, 1200); s != 0.5 {
		t.Fatalf("expected between equals = %v, want 0.5", s)
	}
}

func TestNonPositiveKFallsBack(t *testing.T) {
	u := NewUpdater(0)
	if u.k != DefaultK {
		t.Fatalf("k = %v, want %v", u.k, DefaultK)
	}
}
