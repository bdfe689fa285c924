package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, time.Second, cfg.TCPTimeout())
	assert.Equal(t, 50, cfg.TCP.Workers)
	assert.Equal(t, 10*time.Second, cfg.WebTimeout())
	assert.Equal(t, 5, cfg.Web.Workers)
	assert.Nil(t, cfg.WebSignatures())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
tcp:
  timeout_seconds: 0.5
  workers: 20
  grab_banner: true
web:
  timeout_seconds: 3
  workers: 2
  payloads:
    - "'"
  signatures:
    - category: synthetic
      patterns: ["boom"]
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 500*time.Millisecond, cfg.TCPTimeout())
	assert.Equal(t, 20, cfg.TCP.Workers)
	assert.True(t, cfg.TCP.GrabBanner)
	assert.Equal(t, 3*time.Second, cfg.WebTimeout())
	assert.Equal(t, []string{"'"}, cfg.Web.Payloads)

	sigs := cfg.WebSignatures()
	require.Len(t, sigs, 1)
	assert.Equal(t, "synthetic", sigs[0].Category)

	logger := cfg.NewLogger()
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "tcp:\n  workers: 10\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.TCP.Workers)
	assert.Equal(t, time.Second, cfg.TCPTimeout(), "unset fields keep defaults")
	assert.Equal(t, 5, cfg.Web.Workers)
}

func TestLoadRejectsBadConfig(t *testing.T) {
	cases := map[string]string{
		"unknown field":    "tcp:\n  bogus: 1\n",
		"zero workers":     "tcp:\n  workers: 0\n",
		"negative timeout": "web:\n  timeout_seconds: -5\n",
		"not yaml":         "{{{{",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
