package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const DefaultMovieBaseURL = "https://api.themoviedb.org/3"

// Movie sub-options and their TMDB endpoints.
const (
	MoviesTrending = "Top trending Movie"
	MoviesPopular  = "Popular Movie"
	MoviesTheatres = "Movies in Theatres"
	MoviesUpcoming = "Upcoming Movie"
)

var movieEndpoints = map[string]string{
	MoviesTrending: "/trending/movie/day?language=en-US",
	MoviesPopular:  "/movie/popular",
	MoviesTheatres: "/movie/now_playing",
	MoviesUpcoming: "/movie/upcoming",
}

// MovieConfig configures MovieFeed.
type MovieConfig struct {
	AccessToken string
	BaseURL     string
}

// MovieFeed lists movies from The Movie Database.
type MovieFeed struct {
	cfg    MovieConfig
	client *http.Client
}

func NewMovieFeed(cfg MovieConfig, client *http.Client) *MovieFeed {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultMovieBaseURL
	}
	return &MovieFeed{cfg: cfg, client: client}
}

func (m *MovieFeed) Name() string { return NameMovies }

type movieList struct {
	Results *[]movie `json:"results"`
}

type movie struct {
	Title            string `json:"title"`
	OriginalTitle    string `json:"original_title"`
	Overview         string `json:"overview"`
	Adult            bool   `json:"adult"`
	OriginalLanguage string `json:"original_language"`
	ReleaseDate      string `json:"release_date"`
}

func (m *MovieFeed) Invoke(ctx context.Context, query string) ([]string, error) {
	if m.cfg.AccessToken == "" {
		return nil, newError(NameMovies, query, ErrAuthConfigMissing, nil)
	}

	endpoint, ok := movieEndpoints[query]
	if !ok {
		return nil, newError(NameMovies, query, ErrNoDataForQuery, fmt.Errorf("unknown option %q", query))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(m.cfg.BaseURL, "/")+endpoint, nil)
	if err != nil {
		return nil, newError(NameMovies, query, ErrUpstreamRequestFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+m.cfg.AccessToken)
	req.Header.Set("Accept", "application/json")

	var list movieList
	if err := getJSON(m.client, req, NameMovies, query, &list); err != nil {
		return nil, err
	}
	if list.Results == nil {
		return nil, newError(NameMovies, query, ErrUpstreamParseFailed, fmt.Errorf("response has no results field"))
	}
	if len(*list.Results) == 0 {
		return nil, newError(NameMovies, query, ErrNoDataForQuery, nil)
	}

	blocks := make([]string, 0, len(*list.Results))
	for i, mv := range *list.Results {
		blocks = append(blocks, formatMovie(i+1, mv))
	}
	return blocks, nil
}

func formatMovie(n int, mv movie) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Movie %d:\n", n)
	fmt.Fprintf(&b, "Title: %s\n", mv.Title)
	fmt.Fprintf(&b, "Original Title: %s\n", mv.OriginalTitle)
	fmt.Fprintf(&b, "Overview: %s\n", mv.Overview)
	fmt.Fprintf(&b, "Adult: %t\n", mv.Adult)
	fmt.Fprintf(&b, "Original Language: %s\n", mv.OriginalLanguage)
	fmt.Fprintf(&b, "Release Date: %s\n", mv.ReleaseDate)
	b.WriteString("--------------------\n")
	return b.String()
}
