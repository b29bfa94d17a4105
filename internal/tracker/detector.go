// Package tracker contains the rank-tracking engine: change detection,
// change classification, peak promotion, match ingestion and the polling
// orchestrator that drives them.
package tracker

import (
	"github.com/rexlManu/ClimbChallenge/internal/domain"
	"github.com/rexlManu/ClimbChallenge/internal/rank"
)

// Observation is a freshly fetched ranked state for one player.
type Observation struct {
	Tier         rank.Tier
	Division     rank.Division
	LeaguePoints int
	Wins         int
	Losses       int
}

func (o Observation) Point() rank.Point {
	return rank.Point{Tier: o.Tier, Division: o.Division, LeaguePoints: o.LeaguePoints}
}

// HasChanged decides whether the observation warrants a new track. It is
// the sole gate on time-series density: a re-poll that observes the exact
// same state must not produce a row. Comparison is field-exact, not scale
// comparison, so a tier/division move with an identical scale value still
// counts as a change.
func HasChanged(previous *domain.SummonerTrack, current Observation) bool {
	if previous == nil {
		return true
	}
	return previous.Tier != current.Tier ||
		previous.Division != current.Division ||
		previous.LeaguePoints != current.LeaguePoints ||
		previous.Wins != current.Wins ||
		previous.Losses != current.Losses
}
