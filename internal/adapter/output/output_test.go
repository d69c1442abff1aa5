package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/toastui/internal/model"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testToasts() []*model.Notification {
	return []*model.Notification{
		{
			ID:         "01HZZZZZZZZZZZZZZZZZZZZZZA",
			Message:    "Saved",
			Severity:   model.SeveritySuccess,
			DurationMS: 5000,
			CreatedAt:  now.Add(-3 * time.Second),
			State:      model.StateVisible,
		},
		{
			ID:         "01HZZZZZZZZZZZZZZZZZZZZZZB",
			Message:    "Upload\nfailed <b>badly</b>",
			Severity:   model.SeverityError,
			DurationMS: 7000,
			CreatedAt:  now.Add(-2 * time.Hour),
			State:      model.StateLeaving,
		},
	}
}

func testOptions() FormatterOptions {
	opts := DefaultFormatterOptions()
	opts.Now = func() time.Time { return now }
	return opts
}

func TestPlainFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPlainFormatter(testOptions()).Format(&buf, testToasts()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	assert.Contains(t, lines[0], "success")
	assert.Contains(t, lines[0], "visible")
	assert.Contains(t, lines[0], "Saved")
	assert.Contains(t, lines[0], "3 seconds ago")

	assert.Contains(t, lines[1], "error")
	assert.Contains(t, lines[1], "Upload failed <b>badly</b>")
	assert.Contains(t, lines[1], "2 hours ago")
}

func TestPlainFormatter_IndexAndTruncate(t *testing.T) {
	opts := testOptions()
	opts.ShowIndex = true
	opts.ShowTime = false
	opts.MessageMaxLen = 10

	var buf bytes.Buffer
	require.NoError(t, NewPlainFormatter(opts).Format(&buf, testToasts()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "[1] "))
	assert.True(t, strings.HasPrefix(lines[1], "[2] "))
	assert.True(t, strings.HasSuffix(lines[1], "Upload ..."))
	assert.NotContains(t, buf.String(), "ago")
}

func TestPlainFormatter_CustomTemplate(t *testing.T) {
	opts := testOptions()
	opts.Template = "{{.Index}}:{{.Toast.Severity}}:{{severityIcon .Toast.Severity}}:{{.RelativeTime}}"

	var buf bytes.Buffer
	require.NoError(t, NewPlainFormatter(opts).Format(&buf, testToasts()))
	assert.Equal(t, "1:success:+:now\n2:error:!:2h\n", buf.String())
}

func TestDmenuFormatter_Format(t *testing.T) {
	opts := testOptions()
	opts.ShowIndex = true

	var buf bytes.Buffer
	require.NoError(t, NewDmenuFormatter(opts).Format(&buf, testToasts()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1 | now | success | Saved | 01HZZZZZZZZZZZZZZZZZZZZZZA", lines[0])
	assert.Equal(t, "2 | 2h | error | Upload failed <b>badly</b> | 01HZZZZZZZZZZZZZZZZZZZZZZB", lines[1])
}

func TestJSONFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(testOptions()).Format(&buf, testToasts()))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "success", decoded[0]["severity"])
	assert.Equal(t, "visible", decoded[0]["state"])
	assert.Equal(t, float64(5000), decoded[0]["duration_ms"])
	assert.NotContains(t, decoded[0], "reason")
	assert.NotContains(t, decoded[0], "removed_at")
}

func TestJSONFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(testOptions()).Format(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestJSONFormatter_FormatSingle(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(testOptions()).FormatSingle(&buf, testToasts()[0]))
	assert.Contains(t, buf.String(), `"message": "Saved"`)
}

func TestYAMLFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLFormatter(testOptions()).Format(&buf, testToasts()))

	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "error", decoded[1]["severity"])
	assert.Equal(t, "leaving", decoded[1]["state"])
	assert.Equal(t, 7000, decoded[1]["duration_ms"])
}

func TestIDsFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewIDsFormatter().Format(&buf, testToasts()))
	assert.Equal(t, "01HZZZZZZZZZZZZZZZZZZZZZZA\n01HZZZZZZZZZZZZZZZZZZZZZZB\n", buf.String())
}

func TestIDsFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewIDsFormatter().Format(&buf, nil))
	assert.Empty(t, buf.String())
}

func TestFormatField(t *testing.T) {
	n := testToasts()[1]

	tests := []struct {
		field    string
		expected string
	}{
		{"id", n.ID},
		{"message", n.Message},
		{"severity", "error"},
		{"STATE", "leaving"},
		{"duration_ms", "7000"},
		{"unknown", n.Message},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatField(n, tt.field))
		})
	}
}

func TestNewFormatter(t *testing.T) {
	opts := testOptions()

	tests := []struct {
		format FormatType
		check  func(Formatter) bool
	}{
		{FormatJSON, func(f Formatter) bool { _, ok := f.(*JSONFormatter); return ok }},
		{FormatYAML, func(f Formatter) bool { _, ok := f.(*YAMLFormatter); return ok }},
		{FormatIDs, func(f Formatter) bool { _, ok := f.(*IDsFormatter); return ok }},
		{FormatDmenu, func(f Formatter) bool { _, ok := f.(*DmenuFormatter); return ok }},
		{FormatPlain, func(f Formatter) bool { _, ok := f.(*PlainFormatter); return ok }},
		{"unknown", func(f Formatter) bool { _, ok := f.(*PlainFormatter); return ok }},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			assert.True(t, tt.check(NewFormatter(tt.format, opts)))
		})
	}
}

func TestSanitizeMessage(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		maxLen   int
		expected string
	}{
		{"simple", "hello world", 0, "hello world"},
		{"newlines", "hello\r\nworld", 0, "hello world"},
		{"truncate", "hello world", 8, "hello..."},
		{"tiny", "hello", 2, "he"},
		{"multiple spaces", "hello   world", 0, "hello world"},
		{"runes", "héllo wörld", 8, "héllo..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeMessage(tt.msg, tt.maxLen))
		})
	}
}

func TestRelativeTime(t *testing.T) {
	tests := []struct {
		name     string
		ts       time.Time
		expected string
	}{
		{"zero", time.Time{}, "unknown"},
		{"now", now, "now"},
		{"30 seconds", now.Add(-30 * time.Second), "now"},
		{"5 minutes", now.Add(-5 * time.Minute), "5m"},
		{"2 hours", now.Add(-2 * time.Hour), "2h"},
		{"3 days", now.Add(-72 * time.Hour), "3d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, relativeTime(tt.ts, now))
		})
	}
}
