package webscan

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reconprobe/reconprobe/pkg/models"
)

func TestClassify(t *testing.T) {
	s := New(Config{})
	defer s.Close()

	cases := []struct {
		name     string
		body     string
		category string
		match    bool
	}{
		{"mysql syntax error", "You have an error in your SQL syntax near ''", "mysql", true},
		{"oracle error code", "ORA-01756: quoted string not properly terminated", "oracle", true},
		{"generic quote error", "quoted string not properly terminated", "generic", true},
		{"postgres function", "pg_query(): Query failed", "postgresql", true},
		{"mssql driver", "Microsoft OLE DB Provider for SQL", "mssql", true},
		{"case insensitive", "MYSQL_FETCH_ARRAY failed", "mysql", true},
		{"clean body", "<html><body>Welcome back</body></html>", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			category, match := s.Classify(tc.body)
			assert.Equal(t, tc.match, match)
			assert.Equal(t, tc.category, category)
		})
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	// Body matching both mysql and oracle must report mysql, which comes
	// first in the table.
	s := New(Config{})
	defer s.Close()

	category, match := s.Classify("mysql error then ORA-00933")
	require.True(t, match)
	assert.Equal(t, "mysql", category)
}

func TestProbeParamVulnerable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") == "'" {
			w.Write([]byte("You have an error in your SQL syntax"))
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	s := New(Config{Timeout: 2 * time.Second})
	defer s.Close()

	result := s.ProbeParam(context.Background(), models.InjectionProbe{
		BaseURL:   srv.URL,
		Params:    map[string][]string{"id": {"1"}},
		Parameter: "id",
		Payload:   "'",
	})

	assert.True(t, result.Vulnerable)
	assert.Equal(t, "mysql", result.Category)
	assert.Equal(t, "id", result.Parameter)
	assert.Equal(t, "'", result.Payload)
	assert.Greater(t, result.Elapsed, time.Duration(0))
}

func TestProbeParamClean(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>nothing to see</html>"))
	}))
	defer srv.Close()

	s := New(Config{Timeout: 2 * time.Second})
	defer s.Close()

	result := s.ProbeParam(context.Background(), models.InjectionProbe{
		BaseURL:   srv.URL,
		Params:    map[string][]string{"id": {"1"}},
		Parameter: "id",
		Payload:   "' OR 1=1--",
	})

	assert.False(t, result.Vulnerable)
	assert.Empty(t, result.Category)
}

func TestProbeParamTransportFailure(t *testing.T) {
	// Nothing listens here; the probe must fold the failure into a
	// non-vulnerable result instead of failing.
	s := New(Config{Timeout: 500 * time.Millisecond})
	defer s.Close()

	result := s.ProbeParam(context.Background(), models.InjectionProbe{
		BaseURL:   "http://127.0.0.1:1",
		Params:    map[string][]string{"id": {"1"}},
		Parameter: "id",
		Payload:   "'",
	})

	assert.False(t, result.Vulnerable)
	assert.Equal(t, "id", result.Parameter)
	assert.Equal(t, "'", result.Payload)
}

func TestBuildTestURLPreservesOtherParams(t *testing.T) {
	raw := buildTestURL(models.InjectionProbe{
		BaseURL:   "http://example.com/page",
		Params:    map[string][]string{"id": {"1"}, "lang": {"en"}},
		Parameter: "id",
		Payload:   "' OR 1=1--",
	})

	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	q := parsed.Query()
	assert.Equal(t, "' OR 1=1--", q.Get("id"), "payload must replace the target value")
	assert.Equal(t, "en", q.Get("lang"), "other parameters keep their values")
	assert.Contains(t, raw, "%27", "payload must be percent-encoded")
}

func TestScanURLScenario(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") == "' OR 1=1--" {
			w.Write([]byte("error: quoted string not properly terminated"))
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	s := New(Config{
		Timeout:  2 * time.Second,
		Workers:  3,
		Payloads: []string{"'", "' OR 1=1--"},
	})
	defer s.Close()

	summary, err := s.ScanURL(context.Background(), srv.URL+"/y?id=1")
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Tested)
	require.Len(t, summary.Vulnerabilities, 1)

	v := summary.Vulnerabilities[0]
	assert.True(t, v.Vulnerable)
	assert.Equal(t, "id", v.Parameter)
	assert.Equal(t, "' OR 1=1--", v.Payload)
	assert.Equal(t, "generic", v.Category)
}

func TestScanURLFanOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	payloads := []string{"'", "' OR 1=1--", "' UNION SELECT 1--"}
	s := New(Config{Timeout: 2 * time.Second, Workers: 4, Payloads: payloads})
	defer s.Close()

	summary, err := s.ScanURL(context.Background(), srv.URL+"/p?id=1&user=bob")
	require.NoError(t, err)

	// 2 parameters x 3 payloads, no duplicates.
	assert.Equal(t, 6, summary.Tested)
	assert.Len(t, summary.Results, 6)

	seen := make(map[[2]string]int)
	for _, r := range summary.Results {
		seen[[2]string{r.Parameter, r.Payload}]++
	}
	assert.Len(t, seen, 6)
	for pair, n := range seen {
		assert.Equal(t, 1, n, "pair %v tested more than once", pair)
	}
}

func TestScanURLInputErrors(t *testing.T) {
	s := New(Config{})
	defer s.Close()

	_, err := s.ScanURL(context.Background(), "http://example.com/page")
	assert.ErrorIs(t, err, ErrNoParameters)

	_, err = s.ScanURL(context.Background(), "example.com/page?id=1")
	assert.Error(t, err, "scheme-less url is rejected")
}

func TestScanURLSyntheticSignatures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("zzz-test-marker-zzz"))
	}))
	defer srv.Close()

	s := New(Config{
		Timeout:    2 * time.Second,
		Payloads:   []string{"'"},
		Signatures: []Signature{{Category: "synthetic", Patterns: []string{"zzz-test-marker-zzz"}}},
	})
	defer s.Close()

	summary, err := s.ScanURL(context.Background(), srv.URL+"/?q=x")
	require.NoError(t, err)
	require.Len(t, summary.Vulnerabilities, 1)
	assert.Equal(t, "synthetic", summary.Vulnerabilities[0].Category)
}
