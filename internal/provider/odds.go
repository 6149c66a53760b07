package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultOddsBaseURL is The Odds API v4 root.
const DefaultOddsBaseURL = "https://api.the-odds-api.com/v4"

// OddsClient reads lines from The Odds API. It needs an API key.
type OddsClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewOddsClient creates an odds client. A nil httpClient gets a 10s timeout.
func NewOddsClient(baseURL, apiKey string, httpClient *http.Client) *OddsClient {
	if baseURL == "" {
		baseURL = DefaultOddsBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &OddsClient{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, http: httpClient}
}

type oddsEvent struct {
	ID         string `json:"id"`
	HomeTeam   string `json:"home_team"`
	AwayTeam   string `json:"away_team"`
	Bookmakers []struct {
		Key     string `json:"key"`
		Markets []struct {
			Key      string `json:"key"`
			Outcomes []struct {
				Name  string   `json:"name"`
				Price float64  `json:"price"`
				Point *float64 `json:"point"`
			} `json:"outcomes"`
		} `json:"markets"`
	} `json:"bookmakers"`
}

// FetchOdds implements OddsFetcher.
func (c *OddsClient) FetchOdds(ctx context.Context, sport Sport) ([]OddsLine, error) {
	if c.apiKey == "" {
		return nil, ErrUnauthorized
	}
	if sport.OddsKey == "" {
		return nil, fmt.Errorf("%w: %s has no odds key", ErrUnknownSport, sport.Code)
	}

	q := url.Values{}
	q.Set("apiKey", c.apiKey)
	q.Set("regions", "us")
	q.Set("markets", "spreads,totals,h2h")
	q.Set("oddsFormat", "american")
	endpoint := fmt.Sprintf("%s/sports/%s/odds/?%s", c.baseURL, sport.OddsKey, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build odds request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	default:
		return nil, fmt.Errorf("%w: odds status %d", ErrUpstream, resp.StatusCode)
	}

	var events []oddsEvent
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("%w: decode odds: %v", ErrUpstream, err)
	}
	return parseOdds(events), nil
}

// parseOdds reads the first bookmaker of each event.
func parseOdds(events []oddsEvent) []OddsLine {
	lines := make([]OddsLine, 0, len(events))
	for _, ev := range events {
		line := OddsLine{ID: ev.ID, HomeTeam: ev.HomeTeam, AwayTeam: ev.AwayTeam}
		if len(ev.Bookmakers) == 0 {
			lines = append(lines, line)
			continue
		}
		for _, m := range ev.Bookmakers[0].Markets {
			for _, o := range m.Outcomes {
				switch m.Key {
				case "spreads":
					if o.Name == ev.AwayTeam && o.Point != nil {
						p := *o.Point
						line.AwaySpread = &p
					}
				case "totals":
					if o.Name == "Over" && o.Point != nil {
						p := *o.Point
						line.Total = &p
					}
				case "h2h":
					price := int(o.Price)
					if o.Name == ev.HomeTeam {
						line.HomeMoneyline = &price
					} else if o.Name == ev.AwayTeam {
						line.AwayMoneyline = &price
					}
				}
			}
		}
		lines = append(lines, line)
	}
	return lines
}
