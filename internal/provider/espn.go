package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"daily-picks-bot/internal/model"
)

// DefaultESPNBaseURL is ESPN's public scoreboard API.
const DefaultESPNBaseURL = "https://site.api.espn.com/apis/site/v2/sports"

// ESPNClient reads ESPN scoreboards. No key is needed.
type ESPNClient struct {
	baseURL string
	http    *http.Client
}

// NewESPNClient creates an ESPN client. A nil httpClient gets a 10s timeout.
func NewESPNClient(baseURL string, httpClient *http.Client) *ESPNClient {
	if baseURL == "" {
		baseURL = DefaultESPNBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &ESPNClient{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

type espnScoreboard struct {
	Events []espnEvent `json:"events"`
}

type espnEvent struct {
	ID           string            `json:"id"`
	Date         string            `json:"date"`
	Status       *espnStatus       `json:"status"`
	Competitions []espnCompetition `json:"competitions"`
}

type espnStatus struct {
	Period       int    `json:"period"`
	DisplayClock string `json:"displayClock"`
	Type         struct {
		Name        string `json:"name"`
		State       string `json:"state"`
		Completed   bool   `json:"completed"`
		ShortDetail string `json:"shortDetail"`
	} `json:"type"`
}

type espnCompetition struct {
	Competitors []struct {
		HomeAway string `json:"homeAway"`
		Score    string `json:"score"`
		Team     struct {
			DisplayName  string `json:"displayName"`
			Name         string `json:"name"`
			Abbreviation string `json:"abbreviation"`
		} `json:"team"`
	} `json:"competitors"`
	Odds []struct {
		Spread    *float64 `json:"spread"`
		OverUnder *float64 `json:"overUnder"`
	} `json:"odds"`
}

// FetchScoreboard implements ScoreboardFetcher.
func (c *ESPNClient) FetchScoreboard(ctx context.Context, sport Sport, date string) ([]model.GameRecord, error) {
	url := fmt.Sprintf("%s/%s/scoreboard", c.baseURL, sport.ESPNPath)
	if date != "" {
		url += "?dates=" + strings.ReplaceAll(date, "-", "")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build scoreboard request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: espn status %d", ErrUpstream, resp.StatusCode)
	}

	var board espnScoreboard
	if err := json.NewDecoder(resp.Body).Decode(&board); err != nil {
		return nil, fmt.Errorf("%w: decode scoreboard: %v", ErrUpstream, err)
	}
	return parseESPN(board, sport.Code), nil
}

func parseESPN(board espnScoreboard, sport model.Sport) []model.GameRecord {
	games := make([]model.GameRecord, 0, len(board.Events))
	for _, ev := range board.Events {
		g := model.GameRecord{
			ID:       ev.ID,
			Sport:    sport,
			HomeTeam: "TBD",
			AwayTeam: "TBD",
			Status:   parseStatus(ev.Status),
		}
		if t, err := time.Parse("2006-01-02T15:04Z", ev.Date); err == nil {
			g.StartTime = t
		} else if t, err := time.Parse(time.RFC3339, ev.Date); err == nil {
			g.StartTime = t
		}
		if ev.Status != nil {
			g.Period = ev.Status.Period
			g.Clock = ev.Status.DisplayClock
			g.StatusDetail = ev.Status.Type.ShortDetail
		}

		if len(ev.Competitions) > 0 {
			comp := ev.Competitions[0]
			for _, side := range comp.Competitors {
				name := side.Team.DisplayName
				if name == "" {
					name = side.Team.Name
				}
				score, _ := strconv.Atoi(side.Score)
				switch side.HomeAway {
				case "home":
					g.HomeTeam, g.HomeAbbrev, g.HomeScore = name, side.Team.Abbreviation, score
				case "away":
					g.AwayTeam, g.AwayAbbrev, g.AwayScore = name, side.Team.Abbreviation, score
				}
			}
			if len(comp.Odds) > 0 {
				odds := comp.Odds[0]
				if odds.Spread != nil && *odds.Spread != 0 {
					// ESPN quotes the spread from the home side.
					away := -*odds.Spread
					g.Spread = &away
				}
				if odds.OverUnder != nil && *odds.OverUnder != 0 {
					g.OverUnder = odds.OverUnder
				}
				if g.Spread != nil || g.OverUnder != nil {
					g.OddsSource = "espn"
				}
			}
		}
		games = append(games, g)
	}
	return games
}

// parseStatus maps ESPN's status block to a GameStatus.
func parseStatus(s *espnStatus) model.GameStatus {
	if s == nil {
		return model.GameScheduled
	}
	name := strings.ToLower(s.Type.Name)
	state := strings.ToLower(s.Type.State)

	switch {
	case s.Type.Completed || name == "status_final":
		return model.GameFinal
	case state == "in" || name == "status_in_progress":
		return model.GameLive
	case name == "status_halftime":
		return model.GameHalftime
	case name == "status_postponed":
		return model.GamePostponed
	case name == "status_delayed":
		return model.GameDelayed
	default:
		return model.GameScheduled
	}
}
