// Package webscan probes URL query parameters for SQL injection signatures.
//
// Each probe substitutes one candidate payload into one parameter of the
// target URL, issues a GET, and matches the response body against a table
// of known database error substrings. A substring match is a heuristic
// presence signal, not proof of exploitability.
package webscan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/reconprobe/reconprobe/pkg/models"
	"github.com/reconprobe/reconprobe/pkg/probe"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	maxBodyBytes     = 1 << 20
)

// ErrNoParameters is returned when the target URL carries no query string.
var ErrNoParameters = errors.New("webscan: url has no query parameters")

// Config controls a Scanner.
type Config struct {
	// Timeout bounds each individual request.
	Timeout time.Duration
	// Workers caps the number of requests in flight.
	Workers    int
	Payloads   []string
	Signatures []Signature
	UserAgent  string
	// Client, when set, replaces the scanner-owned HTTP client. The caller
	// then owns its lifecycle and Close becomes a no-op.
	Client *http.Client
	Logger *logrus.Logger
}

// Scanner tests URL parameters against a payload set. The underlying HTTP
// client and its connection pool are scoped to the scanner: create one per
// scan and release it with Close.
type Scanner struct {
	client     *http.Client
	ownsClient bool
	payloads   []string
	signatures []Signature
	userAgent  string
	timeout    time.Duration
	workers    int
	log        *logrus.Logger
}

// New returns a Scanner, filling unset config fields with defaults
// (10s timeout, 5 workers, built-in payloads and signatures).
func New(cfg Config) *Scanner {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 5
	}
	if len(cfg.Payloads) == 0 {
		cfg.Payloads = DefaultPayloads
	}
	if len(cfg.Signatures) == 0 {
		cfg.Signatures = DefaultSignatures
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
		cfg.Logger.SetOutput(io.Discard)
	}

	s := &Scanner{
		payloads:   cfg.Payloads,
		signatures: cfg.Signatures,
		userAgent:  cfg.UserAgent,
		timeout:    cfg.Timeout,
		workers:    cfg.Workers,
		log:        cfg.Logger,
	}
	if cfg.Client != nil {
		s.client = cfg.Client
	} else {
		s.client = &http.Client{Timeout: cfg.Timeout}
		s.ownsClient = true
	}
	return s
}

// Close releases the pooled connections of a scanner-owned HTTP client.
func (s *Scanner) Close() {
	if s.ownsClient {
		s.client.CloseIdleConnections()
	}
}

// Classify matches body against the signature table and returns the first
// matching category. Matching is case-insensitive and deterministic: the
// table is scanned in order and the first engine with any matching
// substring wins.
func (s *Scanner) Classify(body string) (string, bool) {
	lower := strings.ToLower(body)
	for _, sig := range s.signatures {
		for _, pattern := range sig.Patterns {
			if strings.Contains(lower, pattern) {
				return sig.Category, true
			}
		}
	}
	return "", false
}

// ProbeParam tests a single payload against a single parameter. Transport
// failures and malformed responses never escape as errors: they produce a
// non-vulnerable result so the remaining combinations keep running.
func (s *Scanner) ProbeParam(ctx context.Context, d models.InjectionProbe) models.InjectionResult {
	result := models.InjectionResult{
		Parameter: d.Parameter,
		Payload:   d.Payload,
	}

	testURL := buildTestURL(d)

	timeout := d.Timeout
	if timeout <= 0 {
		timeout = s.timeout
	}
	rctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(rctx, http.MethodGet, testURL, nil)
	if err != nil {
		s.log.WithError(err).WithField("url", testURL).Debug("Failed to build request")
		return result
	}
	req.Header.Set("User-Agent", s.userAgent)

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"parameter": d.Parameter,
			"payload":   d.Payload,
		}).Debug("Probe request failed")
		return result
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	result.Elapsed = time.Since(start)
	if err != nil {
		s.log.WithError(err).Debug("Failed to read response body")
		return result
	}

	if category, ok := s.Classify(string(body)); ok {
		result.Vulnerable = true
		result.Category = category
	}
	return result
}

// buildTestURL reconstructs the request URL with the target parameter's
// value replaced by the payload; every other parameter keeps its original
// values. Encoding follows standard query-string rules.
func buildTestURL(d models.InjectionProbe) string {
	values := url.Values{}
	for name, vals := range d.Params {
		for _, v := range vals {
			values.Add(name, v)
		}
	}
	values.Set(d.Parameter, d.Payload)
	return d.BaseURL + "?" + values.Encode()
}

// ScanURL tests every (parameter, payload) combination of rawURL and
// returns the accumulated summary. The URL must carry a scheme, a host and
// at least one query parameter; anything else is an input error and no
// probe is issued.
func (s *Scanner) ScanURL(ctx context.Context, rawURL string) (*models.WebScanSummary, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid url %q: missing scheme or host", rawURL)
	}
	if parsed.RawQuery == "" {
		return nil, ErrNoParameters
	}

	params := parsed.Query()
	baseURL := fmt.Sprintf("%s://%s%s", parsed.Scheme, parsed.Host, parsed.Path)

	// Parameters in sorted order for a deterministic descriptor sequence.
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	descriptors := make([]models.InjectionProbe, 0, len(names)*len(s.payloads))
	for _, name := range names {
		for _, payload := range s.payloads {
			descriptors = append(descriptors, models.InjectionProbe{
				BaseURL:   baseURL,
				Params:    params,
				Parameter: name,
				Payload:   payload,
				Timeout:   s.timeout,
			})
		}
	}

	s.log.WithFields(logrus.Fields{
		"url":          rawURL,
		"parameters":   len(names),
		"combinations": len(descriptors),
	}).Info("Starting injection scan")

	// A fired batch deadline still yields the results completed so far.
	results, err := probe.Collect(ctx, descriptors, s.workers, s.ProbeParam)

	summary := &models.WebScanSummary{
		TargetURL: rawURL,
		Tested:    len(results),
		Results:   results,
	}
	for _, r := range results {
		if r.Vulnerable {
			summary.Vulnerabilities = append(summary.Vulnerabilities, r)
			s.log.WithFields(logrus.Fields{
				"parameter": r.Parameter,
				"payload":   r.Payload,
				"category":  r.Category,
			}).Warn("Potential SQL injection")
		}
	}
	return summary, err
}
