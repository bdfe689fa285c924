package ports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValid(t *testing.T) {
	cases := map[string][]int{
		"22":              {22},
		"22,80":           {22, 80},
		"80,22":           {22, 80},
		"1-3":             {1, 2, 3},
		"22,80,8000-8002": {22, 80, 8000, 8001, 8002},
		"22,22,22":        {22},
		" 21, 443 ":       {21, 443},
	}
	for spec, want := range cases {
		t.Run(spec, func(t *testing.T) {
			got, err := Parse(spec)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestParseInvalid(t *testing.T) {
	cases := []string{
		"",
		"0",
		"65536",
		"10-1",
		"abc",
		"22,",
		"1-70000",
		"22-",
	}
	for _, spec := range cases {
		t.Run(spec, func(t *testing.T) {
			_, err := Parse(spec)
			assert.Error(t, err)
		})
	}
}
