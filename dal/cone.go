package dal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/openvo/go-regtap/tap"
	"github.com/openvo/go-regtap/votable"
)

// DefaultTimeout bounds a service call unless the caller supplies an
// HTTP client of their own.
const DefaultTimeout = 30 * time.Second

// Option configures a service call.
type Option func(*callConfig)

// callConfig holds per-call settings.
type callConfig struct {
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger

	// verbosity is the VERB parameter; -1 leaves it to the service.
	verbosity int
}

// WithHTTPClient sets a custom HTTP client for the call.
func WithHTTPClient(client *http.Client) Option {
	return func(c *callConfig) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithUserAgent sets the User-Agent header sent with the call.
func WithUserAgent(ua string) Option {
	return func(c *callConfig) {
		c.userAgent = ua
	}
}

// WithLogger sets a structured logger for request diagnostics.
// If not set, logging is disabled (silent mode).
func WithLogger(l *slog.Logger) Option {
	return func(c *callConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithVerbosity sets the VERB parameter controlling how many columns
// the service returns: 1 minimal, 2 standard, 3 everything.
func WithVerbosity(v int) Option {
	return func(c *callConfig) {
		c.verbosity = v
	}
}

// newCallConfig applies options over the defaults.
func newCallConfig(opts []Option) *callConfig {
	c := &callConfig{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  "go-regtap",
		logger:     slog.New(discardHandler{}),
		verbosity:  -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ConeSearch queries a cone search service for sources within radius
// degrees of the position (ra, dec), both in decimal degrees (ICRS).
//
// The response is decoded the same way TAP answers are: a VOTable
// error document surfaces the service's own message even when the
// HTTP status already signals failure.
func ConeSearch(ctx context.Context, accessURL string, ra, dec, radius float64, opts ...Option) (*votable.Table, error) {
	if err := validateCone(accessURL, ra, dec, radius); err != nil {
		return nil, err
	}
	cfg := newCallConfig(opts)

	params := url.Values{}
	params.Set("RA", formatCoord(ra))
	params.Set("DEC", formatCoord(dec))
	params.Set("SR", formatCoord(radius))
	if cfg.verbosity >= 0 {
		params.Set("VERB", strconv.Itoa(cfg.verbosity))
	}

	endpoint := appendParams(accessURL, params)
	cfg.logger.Debug("cone search",
		slog.String("endpoint", accessURL),
		slog.Float64("ra", ra),
		slog.Float64("dec", dec),
		slog.Float64("sr", radius))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", cfg.userAgent)

	resp, err := cfg.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	table, err := tap.ParseResponse(accessURL, resp.StatusCode, body)
	if err != nil {
		return nil, err
	}
	cfg.logger.Debug("cone search answered", slog.Int("rows", table.Len()))
	return table, nil
}

// validateCone checks the call parameters before anything goes on the
// wire. Failures collect into one error naming every offending field.
func validateCone(accessURL string, ra, dec, radius float64) error {
	var errs tap.ValidationErrors

	if strings.TrimSpace(accessURL) == "" {
		errs.Add("URL", "access URL cannot be empty")
	}
	if ra < 0 || ra >= 360 {
		errs.Add("RA", fmt.Sprintf("right ascension %g out of range [0, 360)", ra))
	}
	if dec < -90 || dec > 90 {
		errs.Add("DEC", fmt.Sprintf("declination %g out of range [-90, 90]", dec))
	}
	if radius <= 0 || radius > 180 {
		errs.Add("SR", fmt.Sprintf("search radius %g out of range (0, 180]", radius))
	}

	return errs.ToError()
}

// appendParams attaches query parameters to an access URL. Registry
// URLs marked url_use="base" end in ? or & and expect parameters
// concatenated directly; complete URLs may or may not already carry a
// query string.
func appendParams(accessURL string, params url.Values) string {
	encoded := params.Encode()
	switch {
	case strings.HasSuffix(accessURL, "?"), strings.HasSuffix(accessURL, "&"):
		return accessURL + encoded
	case strings.Contains(accessURL, "?"):
		return accessURL + "&" + encoded
	default:
		return accessURL + "?" + encoded
	}
}

// formatCoord renders a coordinate with enough precision for
// milliarcsecond positions without trailing zero noise.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// discardHandler is a slog.Handler that discards all log records.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
