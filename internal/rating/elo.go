package rating

import "math"

// DefaultK is the rating sensitivity used when config does not
// override it.
const DefaultK = 32

// Outcome is player1's score in a finished game.
type Outcome float64

const (
	Player1Wins Outcome = 1
	Player2Wins Outcome = 0
	Drawn       Outcome = 0.5
)

// Updater computes Elo rating updates with a fixed K-factor.
type Updater struct {
	k float64
}

func NewUpdater(k int) *Updater {
	if k <= 0 {
		k = DefaultK
	}
	return &Updater{k: float64(k)}
}

// Update returns the new ratings for both players given their current
// ratings and the game outcome (player1's score).
func (u *Updater) Update(r1, r2 int, outcome Outcome) (new1, new2 int) {
	e1 := expected(r1, r2)
	e2 := expected(r2, r1)
	s1 := float64(outcome)
	s2 := 1 - s1
	new1 = r1 + int(math.Round(u.k*(s1-e1)))
	new2 = r2 + int(math.Round(u.k*(s2-e2)))
	return new1, new2
}

func expected(ri, rj int) float64 {
	return 1 / (1 + math.Pow(10, float64(rj-ri)/400))
}
