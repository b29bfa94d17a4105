package riot

import "encoding/json"

const QueueRankedSolo5x5 = "RANKED_SOLO_5x5"

type AccountDTO struct {
	Puuid    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

type SummonerDTO struct {
	AccountID     string `json:"accountId"`
	Puuid         string `json:"puuid"`
	ProfileIconID int    `json:"profileIconId"`
	SummonerLevel int    `json:"summonerLevel"`
}

type LeagueEntryDTO struct {
	QueueType    string `json:"queueType"`
	Tier         string `json:"tier"`
	Rank         string `json:"rank"`
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	HotStreak    bool   `json:"hotStreak"`
	Veteran      bool   `json:"veteran"`
	FreshBlood   bool   `json:"freshBlood"`
	Inactive     bool   `json:"inactive"`
}

const EndOfGameComplete = "GameComplete"

type MatchDTO struct {
	Metadata MatchMetadataDTO `json:"metadata"`
	Info     MatchInfoDTO     `json:"info"`
}

type MatchMetadataDTO struct {
	MatchID      string   `json:"matchId"`
	DataVersion  string   `json:"dataVersion"`
	Participants []string `json:"participants"`
}

type MatchInfoDTO struct {
	GameID          int64                 `json:"gameId"`
	QueueID         int                   `json:"queueId"`
	GameDuration    int64                 `json:"gameDuration"`
	GameCreation    int64                 `json:"gameCreation"`
	GameVersion     string                `json:"gameVersion"`
	EndOfGameResult string                `json:"endOfGameResult"`
	Participants    []MatchParticipantDTO `json:"participants"`
}

// IsComplete reports whether the game ran to a proper finish; remakes and
// aborted games carry a different end-of-game result.
func (i MatchInfoDTO) IsComplete() bool {
	return i.EndOfGameResult == EndOfGameComplete
}

type MatchParticipantDTO struct {
	Puuid                     string `json:"puuid"`
	RiotIDGameName            string `json:"riotIdGameName"`
	RiotIDTagline             string `json:"riotIdTagline"`
	ChampionName              string `json:"championName"`
	Kills                     int    `json:"kills"`
	Deaths                    int    `json:"deaths"`
	Assists                   int    `json:"assists"`
	Win                       bool   `json:"win"`
	GameEndedInEarlySurrender bool   `json:"gameEndedInEarlySurrender"`
	TeamID                    int    `json:"teamId"`
}

// TimelineDTO keeps the timeline metadata parsed and the frame payload raw;
// the tracker stores the payload verbatim and never walks the frames.
type TimelineDTO struct {
	Metadata MatchMetadataDTO `json:"metadata"`
	Info     json.RawMessage  `json:"info"`
}
