package handler

import (
	"bytes"
	"html/template"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeSince(t *testing.T) {
	now := time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		ago  time.Duration
		want string
	}{
		{"zero", 0, "a few seconds"},
		{"sub-second", 400 * time.Millisecond, "a few seconds"},
		{"one second", time.Second, "1 second"},
		{"seconds", 42 * time.Second, "42 seconds"},
		{"one minute", 61 * time.Second, "1 minute"},
		{"minutes", 59 * time.Minute, "59 minutes"},
		{"hours", 5*time.Hour + 30*time.Minute, "5 hours"},
		{"one day", 25 * time.Hour, "1 day"},
		{"days", 6 * 24 * time.Hour, "6 days"},
		{"weeks", 20 * 24 * time.Hour, "2 weeks"},
		{"months", 70 * 24 * time.Hour, "2 months"},
		{"one year", 400 * 24 * time.Hour, "1 year"},
		{"years", 800 * 24 * time.Hour, "2 years"},
		{"future", -time.Hour, "a few seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TimeSince(now.Add(-tt.ago), now))
		})
	}
}

func TestTemplateFuncs(t *testing.T) {
	fixed := time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)
	funcs := TemplateFuncs("Jan 2, 2006", func() time.Time { return fixed })

	tmpl, err := template.New("t").Funcs(funcs).Parse(
		`{{formatDate now}}|{{formatMonth now}}|{{formatDay now}}|{{timeSince .}}`,
	)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tmpl.Execute(&buf, fixed.Add(-3*time.Minute)))
	assert.Equal(t, "Mar 9, 2024|Mar|9|3 minutes", buf.String())
}
