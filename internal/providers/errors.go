package providers

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Error kinds. Every error returned by a Provider is a *ServiceError wrapping one of these.
var (
	ErrAuthConfigMissing     = errors.New("credential is not configured")
	ErrUpstreamRequestFailed = errors.New("upstream request failed")
	ErrUpstreamParseFailed   = errors.New("upstream response could not be parsed")
	ErrNoDataForQuery        = errors.New("no data for query")
	ErrNotImplemented        = errors.New("not implemented")
)

var kinds = []error{
	ErrAuthConfigMissing,
	ErrUpstreamRequestFailed,
	ErrUpstreamParseFailed,
	ErrNoDataForQuery,
	ErrNotImplemented,
}

// ServiceError describes a failed provider call.
type ServiceError struct {
	Provider string
	Query    string
	Kind     error
	// Status is the upstream HTTP status, when one was received.
	Status int
	// Detail holds a truncated raw response body for parse failures.
	Detail string
	Err    error
}

func (e *ServiceError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Provider, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ServiceError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindOf returns the error kind carried by err, or nil if err is not a provider error.
func KindOf(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// KindName returns a short label for err, used in logs and metrics.
func KindName(err error) string {
	switch KindOf(err) {
	case ErrAuthConfigMissing:
		return "auth_config_missing"
	case ErrUpstreamRequestFailed:
		return "upstream_request_failed"
	case ErrUpstreamParseFailed:
		return "upstream_parse_failed"
	case ErrNoDataForQuery:
		return "no_data"
	case ErrNotImplemented:
		return "not_implemented"
	}
	if err == nil {
		return "ok"
	}
	return "unknown"
}

func newError(provider, query string, kind, err error) *ServiceError {
	return &ServiceError{Provider: provider, Query: query, Kind: kind, Err: err}
}

// maxDetail is the longest response body kept in a ServiceError, in characters.
const maxDetail = 512

func truncate(body []byte) string {
	if utf8.RuneCount(body) > maxDetail {
		return string([]rune(string(body))[:maxDetail]) + "..."
	}
	return string(body)
}
