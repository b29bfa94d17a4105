package domain

import (
	"encoding/json"
	"math"
	"time"

	"github.com/rexlManu/ClimbChallenge/internal/rank"
)

// Participant is a person taking part in the climb challenge, identified
// upstream by their Riot ID (game name + tag line) and, once resolved, a
// persistent PUUID.
type Participant struct {
	ID          int64
	DisplayName string
	GameName    string
	TagLine     string
	Puuid       string // empty until resolved through the account endpoint
	HideName    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p *Participant) RiotID() string {
	return p.GameName + "#" + p.TagLine
}

func (p *Participant) DisplayedName() string {
	if p.HideName {
		return "Hidden Player"
	}
	return p.DisplayName
}

func (p *Participant) DisplayedRiotID() string {
	if p.HideName {
		return "Hidden#0000"
	}
	return p.RiotID()
}

// Summoner is the mutable per-participant rank state: current standing,
// peak rank and the match-fetch watermark. One row per participant,
// updated on every poll cycle.
type Summoner struct {
	ID                  int64
	ParticipantID       int64
	AccountID           string
	Level               int
	ProfileIconID       int
	CurrentTier         rank.Tier
	CurrentDivision     rank.Division
	CurrentLeaguePoints int
	CurrentWins         int
	CurrentLosses       int
	PeakTier            rank.Tier // empty while no peak has been recorded
	PeakDivision        rank.Division
	PeakLeaguePoints    int
	PeakAchievedAt      *time.Time
	LastMatchFetchedAt  *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (s *Summoner) CurrentPoint() rank.Point {
	return rank.Point{Tier: s.CurrentTier, Division: s.CurrentDivision, LeaguePoints: s.CurrentLeaguePoints}
}

// PeakPoint returns nil while no peak has been recorded yet.
func (s *Summoner) PeakPoint() *rank.Point {
	if s.PeakTier == "" {
		return nil
	}
	return &rank.Point{Tier: s.PeakTier, Division: s.PeakDivision, LeaguePoints: s.PeakLeaguePoints}
}

func (s *Summoner) CurrentTotalGames() int {
	return s.CurrentWins + s.CurrentLosses
}

// CurrentWinRate is the win percentage over all counted games, 0 when none
// have been played.
func (s *Summoner) CurrentWinRate() float64 {
	return winRate(s.CurrentWins, s.CurrentLosses)
}

func (s *Summoner) CurrentFormattedRank() string {
	return s.CurrentPoint().Format()
}

// PeakFormattedRank is empty while no peak has been recorded.
func (s *Summoner) PeakFormattedRank() string {
	peak := s.PeakPoint()
	if peak == nil {
		return ""
	}
	return peak.Format()
}

type LPChangeType string

const (
	LPChangeGain     LPChangeType = "gain"
	LPChangeLoss     LPChangeType = "loss"
	LPChangeNoChange LPChangeType = "no_change"
)

type LPChangeReason string

const (
	ReasonMatchWin  LPChangeReason = "match_win"
	ReasonMatchLoss LPChangeReason = "match_loss"
	ReasonDodge     LPChangeReason = "dodge"
	// ReasonDecay exists in the stored vocabulary but is never produced by
	// the classifier; decay losses cannot be told apart from match losses
	// without the upstream decay schedule.
	ReasonDecay   LPChangeReason = "decay"
	ReasonUnknown LPChangeReason = "unknown"
)

// SummonerTrack is one point-in-time snapshot of a summoner's rank.
// Rows are append-only; a track is written only when the observed state
// differs from the latest stored one. The LP change fields are nil on the
// very first track, where there is no baseline to diff against.
type SummonerTrack struct {
	ID             string // nanoid
	SummonerID     int64
	Tier           rank.Tier
	Division       rank.Division
	LeaguePoints   int
	Wins           int
	Losses         int
	LPChange       *int
	LPChangeType   *LPChangeType
	LPChangeReason *LPChangeReason
	IsDodge        bool
	CreatedAt      time.Time
}

func (t *SummonerTrack) Point() rank.Point {
	return rank.Point{Tier: t.Tier, Division: t.Division, LeaguePoints: t.LeaguePoints}
}

func (t *SummonerTrack) TotalGames() int {
	return t.Wins + t.Losses
}

func (t *SummonerTrack) WinRate() float64 {
	return winRate(t.Wins, t.Losses)
}

func (t *SummonerTrack) FormattedRank() string {
	return t.Point().Format()
}

// LeagueMatch stores one ingested match with its raw match and timeline
// payloads, keyed by the upstream match id.
type LeagueMatch struct {
	ID           string // nanoid
	MatchID      string
	MatchData    json.RawMessage
	TimelineData json.RawMessage
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type MatchResult string

const (
	ResultWin  MatchResult = "WIN"
	ResultLoss MatchResult = "LOSS"
	// Early-surrender games count as a draw: the competitive outcome is not
	// representative of either side's play.
	ResultDraw MatchResult = "DRAW"
)

// LeagueMatchSummoner links an ingested match to the summoner track that
// was active when the match was resolved. At most one link exists per
// (match, track) pair; re-ingestion updates it in place.
type LeagueMatchSummoner struct {
	ID              int64
	LeagueMatchID   string
	SummonerTrackID string
	Kills           int
	Deaths          int
	Assists         int
	Champion        string
	Result          MatchResult
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func winRate(wins, losses int) float64 {
	total := wins + losses
	if total == 0 {
		return 0
	}
	return math.Round(float64(wins)/float64(total)*100*100) / 100
}
