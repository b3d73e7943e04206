package news

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/quantbrew/stockscope/Internal/types"
)

// Provider fetches candidate headlines for a ticker inside a date window.
type Provider interface {
	Name() string
	FetchNews(ctx context.Context, ticker string, from, to time.Time) ([]types.NewsItem, error)
}

// ErrorKind classifies provider failures so the recovery policy is
// auditable instead of a blanket catch-and-ignore.
type ErrorKind int

const (
	KindTransport ErrorKind = iota
	KindHTTPStatus
	KindRateLimited
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindHTTPStatus:
		return "http_status"
	case KindRateLimited:
		return "rate_limited"
	case KindDecode:
		return "decode"
	}
	return "unknown"
}

// Every provider error kind maps to "treat as zero results"; none abort
// the event. The table exists so a future kind that should propagate has
// an obvious place to say so.
var recoveryPolicy = map[ErrorKind]bool{
	KindTransport:   true,
	KindHTTPStatus:  true,
	KindRateLimited: true,
	KindDecode:      true,
}

type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func (e *ProviderError) Recoverable() bool {
	return recoveryPolicy[e.Kind]
}

func newProviderError(provider string, kind ErrorKind, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}

func classifyStatus(status int) ErrorKind {
	if status == http.StatusTooManyRequests {
		return KindRateLimited
	}
	return KindHTTPStatus
}

// ErrNoToken marks a provider constructed without credentials; the
// fetcher treats such providers as absent rather than failing.
var ErrNoToken = errors.New("news provider token not configured")
