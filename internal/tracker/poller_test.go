package tracker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/rexlManu/ClimbChallenge/internal/domain"
	"github.com/rexlManu/ClimbChallenge/internal/rank"
	"github.com/rexlManu/ClimbChallenge/internal/riot"
)

type fakeProvider struct {
	accounts  map[string]*riot.AccountDTO
	summoners map[string]*riot.SummonerDTO
	entries   map[string][]riot.LeagueEntryDTO
	matchIDs  map[string][]string
	matches   map[string]*riot.MatchDTO
	timelines map[string]*riot.TimelineDTO

	summonerErr error
	matchIDsErr error
}

func (f *fakeProvider) GetAccount(_ context.Context, gameName, tagLine string) (*riot.AccountDTO, error) {
	if a, ok := f.accounts[gameName+"#"+tagLine]; ok {
		return a, nil
	}
	return nil, riot.ErrNotFound
}

func (f *fakeProvider) GetSummoner(_ context.Context, puuid string) (*riot.SummonerDTO, error) {
	if f.summonerErr != nil {
		return nil, f.summonerErr
	}
	if s, ok := f.summoners[puuid]; ok {
		return s, nil
	}
	return nil, riot.ErrNotFound
}

func (f *fakeProvider) GetLeagueEntries(_ context.Context, puuid string) ([]riot.LeagueEntryDTO, error) {
	if e, ok := f.entries[puuid]; ok {
		return e, nil
	}
	return nil, riot.ErrNotFound
}

func (f *fakeProvider) GetMatchIDs(_ context.Context, puuid string, _ int64) ([]string, error) {
	if f.matchIDsErr != nil {
		return nil, f.matchIDsErr
	}
	return f.matchIDs[puuid], nil
}

func (f *fakeProvider) GetMatch(_ context.Context, matchID string) (*riot.MatchDTO, error) {
	if m, ok := f.matches[matchID]; ok {
		return m, nil
	}
	return nil, riot.ErrNotFound
}

func (f *fakeProvider) GetMatchTimeline(_ context.Context, matchID string) (*riot.TimelineDTO, error) {
	if t, ok := f.timelines[matchID]; ok {
		return t, nil
	}
	return &riot.TimelineDTO{Metadata: riot.MatchMetadataDTO{MatchID: matchID}}, nil
}

type fakeStore struct {
	participants []domain.Participant
	summoners    map[int64]*domain.Summoner
	tracks       map[int64][]*domain.SummonerTrack
	matches      map[string]*domain.LeagueMatch
	links        map[string]*domain.LeagueMatchSummoner

	nextSummonerID int64
	nextMatchSeq   int
}

func newFakeStore(participants ...domain.Participant) *fakeStore {
	return &fakeStore{
		participants: participants,
		summoners:    make(map[int64]*domain.Summoner),
		tracks:       make(map[int64][]*domain.SummonerTrack),
		matches:      make(map[string]*domain.LeagueMatch),
		links:        make(map[string]*domain.LeagueMatchSummoner),
	}
}

func (s *fakeStore) ListTracked(context.Context) ([]domain.Participant, error) {
	var tracked []domain.Participant
	for _, p := range s.participants {
		if p.Puuid != "" {
			tracked = append(tracked, p)
		}
	}
	return tracked, nil
}

func (s *fakeStore) ListMissingPuuid(context.Context) ([]domain.Participant, error) {
	var missing []domain.Participant
	for _, p := range s.participants {
		if p.Puuid == "" {
			missing = append(missing, p)
		}
	}
	return missing, nil
}

func (s *fakeStore) SetPuuid(_ context.Context, id int64, puuid string) error {
	for i := range s.participants {
		if s.participants[i].ID == id {
			s.participants[i].Puuid = puuid
		}
	}
	return nil
}

func (s *fakeStore) UpdateRiotID(_ context.Context, id int64, gameName, tagLine string) error {
	for i := range s.participants {
		if s.participants[i].ID == id {
			s.participants[i].GameName = gameName
			s.participants[i].TagLine = tagLine
		}
	}
	return nil
}

func (s *fakeStore) GetByParticipantID(_ context.Context, participantID int64) (*domain.Summoner, error) {
	for _, summoner := range s.summoners {
		if summoner.ParticipantID == participantID {
			return summoner, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) CommitCycle(_ context.Context, summoner *domain.Summoner, track *domain.SummonerTrack) error {
	if summoner.ID == 0 {
		s.nextSummonerID++
		summoner.ID = s.nextSummonerID
	}
	s.summoners[summoner.ID] = summoner
	if track != nil {
		track.SummonerID = summoner.ID
		track.CreatedAt = time.Now()
		s.tracks[summoner.ID] = append(s.tracks[summoner.ID], track)
	}
	return nil
}

func (s *fakeStore) UpdatePeak(_ context.Context, summonerID int64, peak rank.Point, achievedAt time.Time) error {
	summoner := s.summoners[summonerID]
	summoner.PeakTier = peak.Tier
	summoner.PeakDivision = peak.Division
	summoner.PeakLeaguePoints = peak.LeaguePoints
	summoner.PeakAchievedAt = &achievedAt
	return nil
}

func (s *fakeStore) SetLastMatchFetchedAt(_ context.Context, summonerID int64, t time.Time) error {
	s.summoners[summonerID].LastMatchFetchedAt = &t
	return nil
}

func (s *fakeStore) Latest(_ context.Context, summonerID int64) (*domain.SummonerTrack, error) {
	tracks := s.tracks[summonerID]
	if len(tracks) == 0 {
		return nil, nil
	}
	return tracks[len(tracks)-1], nil
}

func (s *fakeStore) UpsertMatch(_ context.Context, m *domain.LeagueMatch) error {
	if existing, ok := s.matches[m.MatchID]; ok {
		m.ID = existing.ID
	} else if m.ID == "" {
		s.nextMatchSeq++
		m.ID = fmt.Sprintf("match-%d", s.nextMatchSeq)
	}
	s.matches[m.MatchID] = m
	return nil
}

func (s *fakeStore) UpsertLink(_ context.Context, l *domain.LeagueMatchSummoner) error {
	key := l.LeagueMatchID + "|" + l.SummonerTrackID
	s.links[key] = l
	return nil
}

func soloEntry(tier rank.Tier, division rank.Division, lp, wins, losses int) []riot.LeagueEntryDTO {
	return []riot.LeagueEntryDTO{
		{QueueType: "RANKED_FLEX_SR", Tier: "SILVER", Rank: "III", LeaguePoints: 1, Wins: 3, Losses: 3},
		{QueueType: riot.QueueRankedSolo5x5, Tier: string(tier), Rank: string(division), LeaguePoints: lp, Wins: wins, Losses: losses},
	}
}

func completeMatch(matchID, puuid string, win, earlySurrender bool) *riot.MatchDTO {
	return &riot.MatchDTO{
		Metadata: riot.MatchMetadataDTO{MatchID: matchID, Participants: []string{puuid}},
		Info: riot.MatchInfoDTO{
			EndOfGameResult: riot.EndOfGameComplete,
			QueueID:         420,
			Participants: []riot.MatchParticipantDTO{
				{
					Puuid:                     puuid,
					RiotIDGameName:            "Faker",
					RiotIDTagline:             "EUW",
					ChampionName:              "Ahri",
					Kills:                     7,
					Deaths:                    2,
					Assists:                   11,
					Win:                       win,
					GameEndedInEarlySurrender: earlySurrender,
				},
			},
		},
	}
}

func newTestPoller(provider *fakeProvider, store *fakeStore) *Poller {
	return NewPoller(provider, provider, store, store, store, store, 1, zerolog.Nop())
}

func testParticipant() domain.Participant {
	return domain.Participant{ID: 1, DisplayName: "Faker", GameName: "Faker", TagLine: "EUW", Puuid: "puuid-1"}
}

func TestPollerFirstCycle(t *testing.T) {
	provider := &fakeProvider{
		summoners: map[string]*riot.SummonerDTO{"puuid-1": {AccountID: "acc-1", SummonerLevel: 231, ProfileIconID: 7}},
		entries:   map[string][]riot.LeagueEntryDTO{"puuid-1": soloEntry(rank.TierGold, rank.DivisionII, 40, 10, 8)},
	}
	store := newFakeStore(testParticipant())

	if err := newTestPoller(provider, store).Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	summoner, _ := store.GetByParticipantID(context.Background(), 1)
	if summoner == nil {
		t.Fatal("summoner not created")
	}
	if summoner.CurrentTier != rank.TierGold || summoner.CurrentLeaguePoints != 40 {
		t.Errorf("summoner state = %s %d LP", summoner.CurrentTier, summoner.CurrentLeaguePoints)
	}
	if summoner.Level != 231 || summoner.AccountID != "acc-1" {
		t.Errorf("summoner basics = level %d account %q", summoner.Level, summoner.AccountID)
	}

	tracks := store.tracks[summoner.ID]
	if len(tracks) != 1 {
		t.Fatalf("got %d tracks, want 1", len(tracks))
	}
	if tracks[0].LPChange != nil || tracks[0].LPChangeType != nil || tracks[0].IsDodge {
		t.Errorf("first track should have no classification, got %+v", tracks[0])
	}

	// First observation always becomes the peak.
	if got := summoner.PeakPoint(); got == nil || got.Tier != rank.TierGold || got.Division != rank.DivisionII {
		t.Errorf("peak = %+v, want Gold II", got)
	}
	if summoner.LastMatchFetchedAt == nil {
		t.Error("watermark not advanced on empty cycle")
	}
}

func TestPollerNoChangeWritesNoTrack(t *testing.T) {
	provider := &fakeProvider{
		summoners: map[string]*riot.SummonerDTO{"puuid-1": {}},
		entries:   map[string][]riot.LeagueEntryDTO{"puuid-1": soloEntry(rank.TierGold, rank.DivisionII, 40, 10, 8)},
	}
	store := newFakeStore(testParticipant())
	poller := newTestPoller(provider, store)

	for i := 0; i < 3; i++ {
		if err := poller.Run(context.Background()); err != nil {
			t.Fatalf("Run() error: %v", err)
		}
	}

	if got := len(store.tracks[1]); got != 1 {
		t.Errorf("got %d tracks after identical re-polls, want 1", got)
	}
}

func TestPollerClassifiesDodge(t *testing.T) {
	provider := &fakeProvider{
		summoners: map[string]*riot.SummonerDTO{"puuid-1": {}},
		entries:   map[string][]riot.LeagueEntryDTO{"puuid-1": soloEntry(rank.TierGold, rank.DivisionII, 20, 10, 8)},
	}
	store := newFakeStore(testParticipant())
	poller := newTestPoller(provider, store)

	if err := poller.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	provider.entries["puuid-1"] = soloEntry(rank.TierGold, rank.DivisionII, 15, 10, 8)
	if err := poller.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	tracks := store.tracks[1]
	if len(tracks) != 2 {
		t.Fatalf("got %d tracks, want 2", len(tracks))
	}
	last := tracks[1]
	if last.LPChange == nil || *last.LPChange != -5 {
		t.Fatalf("lp_change = %v, want -5", last.LPChange)
	}
	if !last.IsDodge || *last.LPChangeReason != domain.ReasonDodge {
		t.Errorf("expected dodge classification, got reason %v dodge %v", *last.LPChangeReason, last.IsDodge)
	}
}

func TestPollerSkipsPlayerOnProviderMiss(t *testing.T) {
	provider := &fakeProvider{summoners: map[string]*riot.SummonerDTO{}}
	store := newFakeStore(testParticipant())

	if err := newTestPoller(provider, store).Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(store.summoners) != 0 || len(store.tracks) != 0 {
		t.Error("state written despite provider miss")
	}
}

func TestPollerFailedMatchFetchKeepsWatermark(t *testing.T) {
	provider := &fakeProvider{
		summoners:   map[string]*riot.SummonerDTO{"puuid-1": {}},
		entries:     map[string][]riot.LeagueEntryDTO{"puuid-1": soloEntry(rank.TierGold, rank.DivisionII, 40, 10, 8)},
		matchIDsErr: fmt.Errorf("riot API returned status 503"),
	}
	store := newFakeStore(testParticipant())

	if err := newTestPoller(provider, store).Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	summoner := store.summoners[1]
	if summoner == nil {
		t.Fatal("summoner not created")
	}
	if summoner.LastMatchFetchedAt != nil {
		t.Error("watermark advanced despite match id fetch failure")
	}
	// Rank processing still completed.
	if len(store.tracks[1]) != 1 {
		t.Errorf("got %d tracks, want 1", len(store.tracks[1]))
	}
}

func TestPollerResolvesIdentities(t *testing.T) {
	provider := &fakeProvider{
		accounts:  map[string]*riot.AccountDTO{"Faker#EUW": {Puuid: "puuid-1", GameName: "Faker", TagLine: "EUW"}},
		summoners: map[string]*riot.SummonerDTO{"puuid-1": {}},
		entries:   map[string][]riot.LeagueEntryDTO{"puuid-1": soloEntry(rank.TierSilver, rank.DivisionI, 50, 5, 5)},
	}
	p := testParticipant()
	p.Puuid = ""
	store := newFakeStore(p)

	if err := newTestPoller(provider, store).Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if store.participants[0].Puuid != "puuid-1" {
		t.Fatalf("puuid = %q, want puuid-1", store.participants[0].Puuid)
	}
	// The resolved participant is polled in the same batch.
	if len(store.tracks[1]) != 1 {
		t.Errorf("got %d tracks, want 1", len(store.tracks[1]))
	}
}

func TestPollerMatchIngestion(t *testing.T) {
	provider := &fakeProvider{
		summoners: map[string]*riot.SummonerDTO{"puuid-1": {}},
		entries:   map[string][]riot.LeagueEntryDTO{"puuid-1": soloEntry(rank.TierGold, rank.DivisionII, 55, 11, 8)},
		matchIDs:  map[string][]string{"puuid-1": {"EUW1_100"}},
		matches:   map[string]*riot.MatchDTO{"EUW1_100": completeMatch("EUW1_100", "puuid-1", true, false)},
	}
	store := newFakeStore(testParticipant())
	poller := newTestPoller(provider, store)

	if err := poller.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(store.links) != 1 {
		t.Fatalf("got %d links, want 1", len(store.links))
	}
	for _, link := range store.links {
		if link.Result != domain.ResultWin {
			t.Errorf("result = %s, want WIN", link.Result)
		}
		if link.Champion != "Ahri" || link.Kills != 7 || link.Deaths != 2 || link.Assists != 11 {
			t.Errorf("link stats = %s %d/%d/%d", link.Champion, link.Kills, link.Deaths, link.Assists)
		}
	}

	// Re-ingesting the same match must update the single link, not add one.
	if err := poller.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(store.links) != 1 {
		t.Errorf("got %d links after re-ingestion, want 1", len(store.links))
	}
}

func TestPollerEarlySurrenderIsDraw(t *testing.T) {
	// Early-surrender games deliberately record a DRAW, even on a queue
	// with no draw semantics.
	provider := &fakeProvider{
		summoners: map[string]*riot.SummonerDTO{"puuid-1": {}},
		entries:   map[string][]riot.LeagueEntryDTO{"puuid-1": soloEntry(rank.TierGold, rank.DivisionII, 55, 11, 8)},
		matchIDs:  map[string][]string{"puuid-1": {"EUW1_101"}},
		matches:   map[string]*riot.MatchDTO{"EUW1_101": completeMatch("EUW1_101", "puuid-1", true, true)},
	}
	store := newFakeStore(testParticipant())

	if err := newTestPoller(provider, store).Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	for _, link := range store.links {
		if link.Result != domain.ResultDraw {
			t.Errorf("result = %s, want DRAW", link.Result)
		}
	}
}

func TestPollerRejectsIncompleteMatch(t *testing.T) {
	match := completeMatch("EUW1_102", "puuid-1", true, false)
	match.Info.EndOfGameResult = "Abort_Unexpected"

	provider := &fakeProvider{
		summoners: map[string]*riot.SummonerDTO{"puuid-1": {}},
		entries:   map[string][]riot.LeagueEntryDTO{"puuid-1": soloEntry(rank.TierGold, rank.DivisionII, 55, 11, 8)},
		matchIDs:  map[string][]string{"puuid-1": {"EUW1_102"}},
		matches:   map[string]*riot.MatchDTO{"EUW1_102": match},
	}
	store := newFakeStore(testParticipant())

	if err := newTestPoller(provider, store).Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(store.links) != 0 {
		t.Errorf("incomplete match produced %d links, want 0", len(store.links))
	}
	// A rejected match must not stall the watermark.
	if store.summoners[1].LastMatchFetchedAt == nil {
		t.Error("watermark not advanced after rejected match")
	}
}

func TestPollerRejectsMatchWithoutParticipant(t *testing.T) {
	provider := &fakeProvider{
		summoners: map[string]*riot.SummonerDTO{"puuid-1": {}},
		entries:   map[string][]riot.LeagueEntryDTO{"puuid-1": soloEntry(rank.TierGold, rank.DivisionII, 55, 11, 8)},
		matchIDs:  map[string][]string{"puuid-1": {"EUW1_103"}},
		matches:   map[string]*riot.MatchDTO{"EUW1_103": completeMatch("EUW1_103", "someone-else", true, false)},
	}
	store := newFakeStore(testParticipant())

	if err := newTestPoller(provider, store).Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(store.links) != 0 {
		t.Errorf("got %d links for a match without the participant, want 0", len(store.links))
	}
}

func TestPollerUpdatesRiotIDFromMatchData(t *testing.T) {
	match := completeMatch("EUW1_104", "puuid-1", false, false)
	match.Info.Participants[0].RiotIDGameName = "Hide on bush"
	match.Info.Participants[0].RiotIDTagline = "KR1"

	provider := &fakeProvider{
		summoners: map[string]*riot.SummonerDTO{"puuid-1": {}},
		entries:   map[string][]riot.LeagueEntryDTO{"puuid-1": soloEntry(rank.TierGold, rank.DivisionII, 55, 11, 9)},
		matchIDs:  map[string][]string{"puuid-1": {"EUW1_104"}},
		matches:   map[string]*riot.MatchDTO{"EUW1_104": match},
	}
	store := newFakeStore(testParticipant())

	if err := newTestPoller(provider, store).Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if got := store.participants[0].RiotID(); got != "Hide on bush#KR1" {
		t.Errorf("riot id = %q, want Hide on bush#KR1", got)
	}
	for _, link := range store.links {
		if link.Result != domain.ResultLoss {
			t.Errorf("result = %s, want LOSS", link.Result)
		}
	}
}

func TestPollerUnrankedPlayer(t *testing.T) {
	provider := &fakeProvider{
		summoners: map[string]*riot.SummonerDTO{"puuid-1": {}},
		entries:   map[string][]riot.LeagueEntryDTO{"puuid-1": {}},
	}
	store := newFakeStore(testParticipant())

	if err := newTestPoller(provider, store).Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	summoner := store.summoners[1]
	if summoner.CurrentTier != rank.TierUnranked {
		t.Errorf("tier = %s, want UNRANKED", summoner.CurrentTier)
	}
	if summoner.CurrentFormattedRank() != "Unranked" {
		t.Errorf("formatted rank = %q", summoner.CurrentFormattedRank())
	}
	// Even an unranked first observation records a peak.
	if summoner.PeakPoint() == nil {
		t.Error("no peak recorded for first observation")
	}
}
