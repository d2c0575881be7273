package output

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func init() {
	// Disable color for tests
	color.NoColor = true
}

// capture collects everything written during f.
func capture(f func()) string {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)
	f()
	return buf.String()
}

type contextRow struct {
	Name       string `json:"name" yaml:"name"`
	WebhookURL string `json:"webhook_url,omitempty" yaml:"webhook_url,omitempty"`
}

func TestJSON(t *testing.T) {
	t.Run("struct", func(t *testing.T) {
		out := capture(func() {
			require.NoError(t, JSON(contextRow{Name: "default", WebhookURL: "https://discord.com/api/webhooks/1/abc"}))
		})

		var result contextRow
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Equal(t, "default", result.Name)
		assert.Contains(t, out, "\n  \"name\"", "expected two-space indentation")
	})

	t.Run("empty slice", func(t *testing.T) {
		out := capture(func() {
			require.NoError(t, JSON([]contextRow{}))
		})
		assert.Equal(t, "[]", strings.TrimSpace(out))
	})
}

func TestYAML(t *testing.T) {
	out := capture(func() {
		require.NoError(t, YAML(map[string]contextRow{
			"alerts": {Name: "alerts", WebhookURL: "https://x"},
		}))
	})

	var result map[string]contextRow
	require.NoError(t, yaml.Unmarshal([]byte(out), &result))
	assert.Equal(t, "https://x", result["alerts"].WebhookURL)
	assert.Contains(t, out, "alerts:\n  name: alerts", "expected two-space indentation")
}

func TestTable(t *testing.T) {
	t.Run("aligned columns", func(t *testing.T) {
		out := capture(func() {
			Table([]string{"NAME", "THREAD"}, [][]string{
				{"default", ""},
				{"release-notes", "1234"},
			})
		})

		want := "NAME           THREAD\n" +
			"-------------  ------\n" +
			"default\n" +
			"release-notes  1234\n"
		assert.Equal(t, want, out)
	})

	t.Run("empty headers", func(t *testing.T) {
		out := capture(func() {
			Table([]string{}, [][]string{{"data"}})
		})
		assert.Empty(t, out)
	})

	t.Run("empty rows", func(t *testing.T) {
		out := capture(func() {
			Table([]string{"COL1", "COL2"}, nil)
		})
		assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2, "header and separator only")
	})

	t.Run("uneven columns", func(t *testing.T) {
		out := capture(func() {
			Table([]string{"COL1", "COL2"}, [][]string{
				{"a"},
				{"x", "y", "z"},
			})
		})
		assert.NotContains(t, out, "z", "extra cells should be dropped")
	})
}

func TestStatusLines(t *testing.T) {
	tests := []struct {
		name   string
		fn     func(string, ...any)
		symbol string
	}{
		{"success", Success, "✓"},
		{"warn", Warn, "!"},
		{"info", Info, "→"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := capture(func() {
				tt.fn("context %s saved", "alerts")
			})
			assert.Equal(t, tt.symbol+" context alerts saved\n", out)
		})
	}
}

func TestSetOutputNilRestoresStdout(t *testing.T) {
	SetOutput(&bytes.Buffer{})
	SetOutput(nil)
	assert.Equal(t, os.Stdout, out)
}
