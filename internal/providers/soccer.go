package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultSoccerBaseURL = "https://sportapi7.p.rapidapi.com/api/v1"
	DefaultSoccerHost    = "sportapi7.p.rapidapi.com"
)

// Soccer sub-options.
const (
	SoccerToday    = "today event"
	SoccerLive     = "Current Live match"
	SoccerTransfer = "transfer window"
	SoccerOdds     = "Odds for all event scheduled"
)

// EmptyScheduleText is the single block returned when no matches are scheduled.
const EmptyScheduleText = "No events scheduled for today."

// SoccerConfig configures SoccerFeed.
type SoccerConfig struct {
	APIKey  string
	Host    string
	BaseURL string
}

// SoccerFeed reads today's football schedule from RapidAPI's sportapi7.
type SoccerFeed struct {
	cfg    SoccerConfig
	client *http.Client
	now    func() time.Time
}

// NewSoccerFeed creates a soccer provider.
func NewSoccerFeed(cfg SoccerConfig, client *http.Client) *SoccerFeed {
	if cfg.Host == "" {
		cfg.Host = DefaultSoccerHost
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultSoccerBaseURL
	}
	return &SoccerFeed{cfg: cfg, client: client, now: time.Now}
}

func (s *SoccerFeed) Name() string { return NameSoccer }

type soccerSchedule struct {
	Events *[]soccerEvent `json:"events"`
}

type soccerEvent struct {
	Tournament struct {
		Name string `json:"name"`
	} `json:"tournament"`
	Status struct {
		Description string `json:"description"`
	} `json:"status"`
	HomeTeam  soccerTeam   `json:"homeTeam"`
	AwayTeam  soccerTeam   `json:"awayTeam"`
	HomeScore *soccerScore `json:"homeScore"`
	AwayScore *soccerScore `json:"awayScore"`
}

type soccerTeam struct {
	Name string `json:"name"`
}

type soccerScore struct {
	Current *int `json:"current"`
}

// Invoke answers one soccer sub-option. Only SoccerToday is backed by an
// upstream endpoint; the other sub-options fail with ErrNoDataForQuery.
func (s *SoccerFeed) Invoke(ctx context.Context, query string) ([]string, error) {
	if s.cfg.APIKey == "" {
		return nil, newError(NameSoccer, query, ErrAuthConfigMissing, nil)
	}

	switch query {
	case SoccerToday:
		return s.today(ctx, query)
	case SoccerLive, SoccerTransfer, SoccerOdds:
		return nil, newError(NameSoccer, query, ErrNoDataForQuery, fmt.Errorf("%q has no upstream source", query))
	}
	return nil, newError(NameSoccer, query, ErrNoDataForQuery, fmt.Errorf("unknown option %q", query))
}

func (s *SoccerFeed) today(ctx context.Context, query string) ([]string, error) {
	date := s.now().UTC().Format("2006-01-02")
	url := fmt.Sprintf("%s/sport/football/scheduled-events/%s", strings.TrimRight(s.cfg.BaseURL, "/"), date)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, newError(NameSoccer, query, ErrUpstreamRequestFailed, err)
	}
	req.Header.Set("x-rapidapi-key", s.cfg.APIKey)
	req.Header.Set("x-rapidapi-host", s.cfg.Host)

	var schedule soccerSchedule
	if err := getJSON(s.client, req, NameSoccer, query, &schedule); err != nil {
		return nil, err
	}
	if schedule.Events == nil {
		return nil, newError(NameSoccer, query, ErrUpstreamParseFailed, fmt.Errorf("response has no events field"))
	}

	events := *schedule.Events
	if len(events) == 0 {
		return []string{EmptyScheduleText}, nil
	}

	blocks := make([]string, 0, len(events))
	for _, ev := range events {
		blocks = append(blocks, formatMatch(ev))
	}
	return blocks, nil
}

func formatMatch(ev soccerEvent) string {
	var b strings.Builder
	if ev.Tournament.Name != "" {
		fmt.Fprintf(&b, "%s\n", ev.Tournament.Name)
	}
	fmt.Fprintf(&b, "%s vs %s", ev.HomeTeam.Name, ev.AwayTeam.Name)
	if ev.HomeScore != nil && ev.AwayScore != nil && ev.HomeScore.Current != nil && ev.AwayScore.Current != nil {
		fmt.Fprintf(&b, "\nScore: %d - %d", *ev.HomeScore.Current, *ev.AwayScore.Current)
	}
	if ev.Status.Description != "" {
		fmt.Fprintf(&b, "\nStatus: %s", ev.Status.Description)
	}
	return b.String()
}
