package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"time"
)

// Provider names.
const (
	NameSoccer       = "soccer"
	NameMovies       = "movies"
	NameCrypto       = "crypto"
	NameConversation = "conversation"
)

// Provider is one external data source. Invoke performs at most one outbound
// request and returns the formatted result blocks.
type Provider interface {
	Name() string
	Invoke(ctx context.Context, query string) ([]string, error)
}

// Gateway dispatches calls to providers by name.
type Gateway struct {
	providers map[string]Provider
}

// NewGateway registers the given providers under their names.
func NewGateway(ps ...Provider) *Gateway {
	g := &Gateway{providers: make(map[string]Provider, len(ps))}
	for _, p := range ps {
		g.providers[p.Name()] = p
	}
	return g
}

// Invoke calls the named provider.
func (g *Gateway) Invoke(ctx context.Context, name, query string) ([]string, error) {
	p, ok := g.providers[name]
	if !ok {
		return nil, newError(name, query, ErrNotImplemented, fmt.Errorf("no provider registered"))
	}
	return p.Invoke(ctx, query)
}

// Names lists registered providers, sorted.
func (g *Gateway) Names() []string {
	names := make([]string, 0, len(g.providers))
	for n := range g.providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

const (
	defaultDialTimeout     = 5 * time.Second
	defaultTLSHandshake    = 5 * time.Second
	defaultIdleConnTimeout = 30 * time.Second
	defaultResponseTimeout = 15 * time.Second
	maxResponseBytes       = 4 << 20
)

// NewHTTPClient returns the client shared by all providers. It never retries;
// callers bound each call with a context deadline.
func NewHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          50,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   defaultTLSHandshake,
		ResponseHeaderTimeout: defaultResponseTimeout,
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

// getJSON sends req and decodes a 2xx JSON body into dst, classifying failures.
func getJSON(client *http.Client, req *http.Request, provider, query string, dst any) error {
	resp, err := client.Do(req)
	if err != nil {
		return newError(provider, query, ErrUpstreamRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return newError(provider, query, ErrUpstreamRequestFailed, fmt.Errorf("failed to read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e := newError(provider, query, ErrUpstreamRequestFailed, nil)
		e.Status = resp.StatusCode
		e.Detail = truncate(body)
		return e
	}

	if err := json.Unmarshal(body, dst); err != nil {
		e := newError(provider, query, ErrUpstreamParseFailed, err)
		e.Detail = truncate(body)
		return e
	}
	return nil
}
