package tracker

import (
	"time"

	"github.com/rexlManu/ClimbChallenge/internal/domain"
	"github.com/rexlManu/ClimbChallenge/internal/rank"
)

// IsHigherThanPeak compares the current point against the recorded peak
// under tier-first ordering. A nil peak means nothing has been recorded
// yet, so any observation counts as higher.
func IsHigherThanPeak(current rank.Point, peak *rank.Point) bool {
	if peak == nil {
		return true
	}
	return current.Beats(*peak)
}

// PromoteIfHigher raises the summoner's peak to the current rank when it
// beats the recorded one and reports whether a promotion happened. The
// stored peak only ever rises; nothing here or elsewhere lowers it.
func PromoteIfHigher(s *domain.Summoner, now time.Time) bool {
	current := s.CurrentPoint()
	if !IsHigherThanPeak(current, s.PeakPoint()) {
		return false
	}

	s.PeakTier = current.Tier
	s.PeakDivision = current.Division
	s.PeakLeaguePoints = current.LeaguePoints
	s.PeakAchievedAt = &now
	return true
}
