package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"taskfile/pkg/bodykind"
	"taskfile/pkg/task"
)

func sampleTask(t *testing.T, body []byte) *task.Task {
	t.Helper()
	start, err := task.ParseTimestamp("09:00 2024-01-05")
	require.NoError(t, err)
	end, err := task.ParseTimestamp("17:00 2024-01-05")
	require.NoError(t, err)
	tf, err := task.Between(start, end)
	require.NoError(t, err)
	return &task.Task{
		Title:     "Finish report",
		Authors:   []string{"Jane Doe", "John Roe"},
		TimeFrame: tf,
		Body:      body,
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"json": FormatJSON, "YAML": FormatYAML, "yml": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := ParseFormat("toml")
	require.Error(t, err)
}

func TestFromTask(t *testing.T) {
	doc := FromTask(sampleTask(t, []byte("Draft it.\n")))

	require.Equal(t, "Finish report", doc.Title)
	require.Equal(t, []string{"Jane Doe", "John Roe"}, doc.Authors)
	require.Equal(t, TimeFrameDoc{Kind: "from", Start: "09:00 2024-01-05", End: "17:00 2024-01-05"}, doc.TimeFrame)
	require.Equal(t, bodykind.KindText, doc.BodyKind)
	require.NotNil(t, doc.Body)
	require.Equal(t, "Draft it.\n", *doc.Body)
	require.Empty(t, doc.BodyBase64)
}

func TestFromTask_OpenEnded(t *testing.T) {
	ts, err := task.ParseTimestamp("08:00 2024-03-01")
	require.NoError(t, err)

	doc := FromTask(&task.Task{Title: "x", Authors: []string{"y"}, TimeFrame: task.UntilTime(ts)})
	require.Equal(t, TimeFrameDoc{Kind: "until", End: "08:00 2024-03-01"}, doc.TimeFrame)
	require.Equal(t, bodykind.KindNone, doc.BodyKind)
	require.Nil(t, doc.Body)
}

func TestEncodeJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleTask(t, nil), FormatJSON))

	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	require.Equal(t, "Finish report", m["title"])
	require.Equal(t, "none", m["body_kind"])
	require.NotContains(t, m, "body")
}

func TestEncodeYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleTask(t, []byte("# Plan\n- a\n")), FormatYAML))

	var m map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &m))
	require.Equal(t, "markdown", m["body_kind"])
	require.Contains(t, buf.String(), "time_frame:\n  kind: from\n")
}

func TestRoundTrip(t *testing.T) {
	bodies := map[string][]byte{
		"none":   nil,
		"text":   []byte("plain\ntext\n"),
		"binary": {0x00, 0xff, 0x10},
	}

	for _, format := range []Format{FormatJSON, FormatYAML} {
		for name, body := range bodies {
			t.Run(string(format)+"/"+name, func(t *testing.T) {
				want := sampleTask(t, body)

				var buf bytes.Buffer
				require.NoError(t, Encode(&buf, want, format))

				got, err := Decode(&buf, format)
				require.NoError(t, err)
				require.Equal(t, want.Title, got.Title)
				require.Equal(t, want.Authors, got.Authors)
				require.Equal(t, want.TimeFrame, got.TimeFrame)
				require.Equal(t, want.HasBody(), got.HasBody())
				require.Equal(t, want.Body, got.Body)
			})
		}
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{"unknown json field", FormatJSON, `{"title":"x","authors":["y"],"time_frame":{"kind":"on","start":"08:00 2024-03-01"},"status":"open"}`},
		{"unknown kind", FormatJSON, `{"title":"x","authors":["y"],"time_frame":{"kind":"around","start":"08:00 2024-03-01"}}`},
		{"bad timestamp", FormatYAML, "title: x\nauthors: [y]\ntime_frame:\n  kind: on\n  start: 8am\n"},
		{"inverted interval", FormatYAML, "title: x\nauthors: [y]\ntime_frame:\n  kind: from\n  start: \"10:00 2024-01-05\"\n  end: \"09:00 2024-01-05\"\n"},
		{"no authors", FormatYAML, "title: x\ntime_frame:\n  kind: on\n  start: \"08:00 2024-03-01\"\n"},
		{"title with newline", FormatJSON, `{"title":"a\nb","authors":["y"],"time_frame":{"kind":"on","start":"08:00 2024-03-01"}}`},
		{"author with extra space", FormatJSON, `{"title":"x","authors":["  A   B "],"time_frame":{"kind":"on","start":"08:00 2024-03-01"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input), tt.format)
			require.Error(t, err)
		})
	}
}

func TestDecode_EmptyBodyIsAbsent(t *testing.T) {
	input := `{"title":"x","authors":["y"],"time_frame":{"kind":"on","start":"08:00 2024-03-01"},"body":""}`

	got, err := Decode(strings.NewReader(input), FormatJSON)
	require.NoError(t, err)
	require.False(t, got.HasBody())

	var buf bytes.Buffer
	require.NoError(t, task.Write(&buf, got))
	back, err := task.Read(&buf)
	require.NoError(t, err, "imported tasks must read back")
	require.Equal(t, got, back)
}
