// Package provider holds the HTTP clients for the external travel-data
// providers. A client only fetches: it returns the raw response body and
// leaves mapping to package normalize.
//
// Every failure is reported as a *domain.ProviderError so the aggregator can
// tell a network failure, a non-2xx response, a malformed payload and a
// timeout apart from a valid empty result.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/voyantiq/itinerary/internal/domain"
)

// DefaultMaxBodyBytes caps how much of a provider response is read.
const DefaultMaxBodyBytes int64 = 4 << 20

// Client is one travel-data provider.
type Client interface {
	Source() domain.Source
	Search(ctx context.Context, q Query) ([]byte, error)
}

// Query carries the union of the parameters the providers understand.
// Each client sends the subset its API takes; zero values are omitted.
type Query struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters int
	CityID       string
	CheckIn      time.Time
	CheckOut     time.Time
	Guests       int
	Term         string
	Limit        int
}

// Options configures an HTTP client.
type Options struct {
	BaseURL      string
	APIKey       string
	HTTPClient   *http.Client
	MaxBodyBytes int64
}

// New returns the client for src.
func New(src domain.Source, opts Options) (Client, error) {
	switch src {
	case domain.SourceYelp:
		return NewYelp(opts), nil
	case domain.SourceTicketmaster:
		return NewTicketmaster(opts), nil
	case domain.SourceGroupon:
		return NewGroupon(opts), nil
	case domain.SourceBooking:
		return NewBooking(opts), nil
	}
	return nil, fmt.Errorf("provider.New: %w: unknown provider %q", domain.ErrValidation, src)
}

// httpClient is the shared GET-and-validate implementation behind every
// provider. The per-provider parts are the request path, its query string and
// how the API key is attached.
type httpClient struct {
	source  domain.Source
	baseURL string
	apiKey  string
	http    *http.Client
	maxBody int64

	path      string
	params    func(q Query) url.Values
	authorize func(req *http.Request, key string)
}

func newHTTPClient(src domain.Source, defaultBase string, opts Options) *httpClient {
	c := &httpClient{
		source:  src,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		http:    opts.HTTPClient,
		maxBody: opts.MaxBodyBytes,
	}
	if c.baseURL == "" {
		c.baseURL = defaultBase
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.maxBody <= 0 {
		c.maxBody = DefaultMaxBodyBytes
	}
	return c
}

func (c *httpClient) Source() domain.Source { return c.source }

// Search issues the provider's search request and returns the body once it is
// known to be a JSON object.
func (c *httpClient) Search(ctx context.Context, q Query) ([]byte, error) {
	u := c.baseURL + c.path
	if params := c.params(q); len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, c.fail(domain.ProviderErrNetwork, 0, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.authorize != nil && c.apiKey != "" {
		c.authorize(req, c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.fail(c.transportKind(ctx, err), 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, c.fail(c.transportKind(ctx, err), resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.fail(domain.ProviderErrStatus, resp.StatusCode, errors.New(snippet(body)))
	}
	if int64(len(body)) > c.maxBody {
		return nil, c.fail(domain.ProviderErrMalformed, resp.StatusCode,
			fmt.Errorf("response exceeds %d bytes", c.maxBody))
	}
	if !gjson.ValidBytes(body) {
		return nil, c.fail(domain.ProviderErrMalformed, resp.StatusCode, errors.New("invalid JSON"))
	}
	if !gjson.ParseBytes(body).IsObject() {
		return nil, c.fail(domain.ProviderErrMalformed, resp.StatusCode, errors.New("expected a JSON object"))
	}
	return body, nil
}

func (c *httpClient) transportKind(ctx context.Context, err error) domain.ProviderErrorKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.ProviderErrTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return domain.ProviderErrTimeout
	}
	return domain.ProviderErrNetwork
}

func (c *httpClient) fail(kind domain.ProviderErrorKind, status int, err error) error {
	return &domain.ProviderError{Source: c.source, Kind: kind, StatusCode: status, Err: err}
}

// snippet trims an error body for logging.
func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	if s == "" {
		return "empty response body"
	}
	return s
}

// setIf adds key=value unless value is the zero value.
func setIf(v url.Values, key, value string) {
	if value != "" && value != "0" {
		v.Set(key, value)
	}
}

func coords(q Query) bool {
	return q.Latitude != 0 || q.Longitude != 0
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%.6f", f)
}
