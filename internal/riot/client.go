// Package riot is the client for the Riot Games API endpoints the tracker
// consumes: account, summoner, league entries, match ids, match and
// timeline.
package riot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"

	"github.com/rexlManu/ClimbChallenge/internal/config"
	"github.com/rexlManu/ClimbChallenge/internal/constants"
)

// ErrNotFound maps the API's 404 responses: an unknown player or match.
// Callers treat it as "nothing to do", not as a failure.
var ErrNotFound = errors.New("riot: not found")

// Ranked solo queue id, see https://static.developer.riotgames.com/docs/lol/queues.json
const rankedSoloQueueID = 420

type Client struct {
	apiKey string

	// platformHost serves summoner/league endpoints (e.g. euw1),
	// regionHost serves account/match endpoints (e.g. europe).
	platformHost string
	regionHost   string

	client  *fasthttp.Client
	limiter *rate.Limiter
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		apiKey:       cfg.RiotAPIKey,
		platformHost: fmt.Sprintf("https://%s.api.riotgames.com", cfg.Platform),
		regionHost:   fmt.Sprintf("https://%s.api.riotgames.com", cfg.Region),
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		limiter: rate.NewLimiter(rate.Limit(constants.RiotRequestsPerSecond), constants.RiotRequestBurst),
	}
}

func (c *Client) GetAccount(ctx context.Context, gameName, tagLine string) (*AccountDTO, error) {
	u := fmt.Sprintf("%s/riot/account/v1/accounts/by-riot-id/%s/%s",
		c.regionHost, url.PathEscape(gameName), url.PathEscape(tagLine))
	return doRequest[AccountDTO](ctx, c, u)
}

func (c *Client) GetSummoner(ctx context.Context, puuid string) (*SummonerDTO, error) {
	u := fmt.Sprintf("%s/lol/summoner/v4/summoners/by-puuid/%s", c.platformHost, puuid)
	return doRequest[SummonerDTO](ctx, c, u)
}

// GetLeagueEntries returns all queue entries for the player; an unranked
// player yields an empty slice, not an error.
func (c *Client) GetLeagueEntries(ctx context.Context, puuid string) ([]LeagueEntryDTO, error) {
	u := fmt.Sprintf("%s/lol/league/v4/entries/by-puuid/%s", c.platformHost, puuid)
	entries, err := doRequest[[]LeagueEntryDTO](ctx, c, u)
	if err != nil {
		return nil, err
	}
	return *entries, nil
}

// GetMatchIDs lists ranked solo queue matches completed since the given
// epoch second, oldest first.
func (c *Client) GetMatchIDs(ctx context.Context, puuid string, sinceEpoch int64) ([]string, error) {
	u := fmt.Sprintf("%s/lol/match/v5/matches/by-puuid/%s/ids?queue=%d&startTime=%d",
		c.regionHost, puuid, rankedSoloQueueID, sinceEpoch)
	ids, err := doRequest[[]string](ctx, c, u)
	if err != nil {
		return nil, err
	}
	return *ids, nil
}

func (c *Client) GetMatch(ctx context.Context, matchID string) (*MatchDTO, error) {
	u := fmt.Sprintf("%s/lol/match/v5/matches/%s", c.regionHost, matchID)
	return doRequest[MatchDTO](ctx, c, u)
}

func (c *Client) GetMatchTimeline(ctx context.Context, matchID string) (*TimelineDTO, error) {
	u := fmt.Sprintf("%s/lol/match/v5/matches/%s/timeline", c.regionHost, matchID)
	return doRequest[TimelineDTO](ctx, c, u)
}

func doRequest[T any](ctx context.Context, c *Client, url string) (*T, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("X-Riot-Token", c.apiKey)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := c.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() == fasthttp.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("riot API returned status %d for %s", resp.StatusCode(), url)
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("riot API response decode failed: %w", err)
	}
	return &result, nil
}
