package tracker

import (
	"testing"

	"github.com/rexlManu/ClimbChallenge/internal/domain"
	"github.com/rexlManu/ClimbChallenge/internal/rank"
)

func trackOf(obs Observation) *domain.SummonerTrack {
	return &domain.SummonerTrack{
		Tier:         obs.Tier,
		Division:     obs.Division,
		LeaguePoints: obs.LeaguePoints,
		Wins:         obs.Wins,
		Losses:       obs.Losses,
	}
}

func TestHasChanged(t *testing.T) {
	base := Observation{Tier: rank.TierGold, Division: rank.DivisionII, LeaguePoints: 40, Wins: 10, Losses: 8}

	tests := []struct {
		name     string
		previous *domain.SummonerTrack
		current  Observation
		want     bool
	}{
		{"no previous track", nil, base, true},
		{"identical state", trackOf(base), base, false},
		{"lp changed", trackOf(base), Observation{rank.TierGold, rank.DivisionII, 55, 10, 8}, true},
		{"wins changed", trackOf(base), Observation{rank.TierGold, rank.DivisionII, 40, 11, 8}, true},
		{"losses changed", trackOf(base), Observation{rank.TierGold, rank.DivisionII, 40, 10, 9}, true},
		{"tier changed", trackOf(base), Observation{rank.TierPlatinum, rank.DivisionII, 40, 10, 8}, true},
		{"division changed", trackOf(base), Observation{rank.TierGold, rank.DivisionI, 40, 10, 8}, true},
		{
			// Field equality governs, not scale equality: Silver I 100 LP and
			// Gold IV 0 LP share a scale value but still count as a change.
			"tier move with equal scale value",
			trackOf(Observation{rank.TierSilver, rank.DivisionI, 100, 10, 8}),
			Observation{rank.TierGold, rank.DivisionIV, 0, 10, 8},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasChanged(tt.previous, tt.current); got != tt.want {
				t.Errorf("HasChanged() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasChangedIdempotent(t *testing.T) {
	// Once a track reflecting an observation exists, re-polling the same
	// state must never fire the detector again.
	observations := []Observation{
		{rank.TierIron, rank.DivisionIV, 0, 0, 0},
		{rank.TierGold, rank.DivisionII, 55, 11, 8},
		{rank.TierMaster, rank.DivisionNone, 320, 200, 180},
		{rank.TierUnranked, rank.DivisionNone, 0, 0, 0},
	}
	for _, obs := range observations {
		if HasChanged(trackOf(obs), obs) {
			t.Errorf("HasChanged(trackOf(%+v), same) = true, want false", obs)
		}
	}
}
