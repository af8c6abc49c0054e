// Package export converts tasks to and from structured JSON and YAML documents.
package export

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"taskfile/pkg/bodykind"
	"taskfile/pkg/task"
)

// Format is an export encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" and "yml"
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown export format %q (want json or yaml)", s)
}

// Document is the structured form of a task
type Document struct {
	Title     string        `json:"title" yaml:"title"`
	Authors   []string      `json:"authors" yaml:"authors"`
	TimeFrame TimeFrameDoc  `json:"time_frame" yaml:"time_frame"`
	BodyKind  bodykind.Kind `json:"body_kind" yaml:"body_kind"`
	// Body is set for text bodies, BodyBase64 for binary ones.
	Body       *string `json:"body,omitempty" yaml:"body,omitempty"`
	BodyBase64 string  `json:"body_base64,omitempty" yaml:"body_base64,omitempty"`
}

// TimeFrameDoc holds timestamps in the "HH:MM YYYY-MM-DD" form
type TimeFrameDoc struct {
	Kind  string `json:"kind" yaml:"kind"`
	Start string `json:"start,omitempty" yaml:"start,omitempty"`
	End   string `json:"end,omitempty" yaml:"end,omitempty"`
}

// FromTask builds the document for t
func FromTask(t *task.Task) Document {
	doc := Document{
		Title:   t.Title,
		Authors: append([]string(nil), t.Authors...),
		TimeFrame: TimeFrameDoc{
			Kind: strings.ToLower(t.TimeFrame.Kind.String()),
		},
	}
	if t.TimeFrame.HasStart() {
		doc.TimeFrame.Start = t.TimeFrame.Start.String()
	}
	if t.TimeFrame.HasEnd() {
		doc.TimeFrame.End = t.TimeFrame.End.String()
	}

	doc.BodyKind, _ = bodykind.Detect(t.Body)
	switch doc.BodyKind {
	case bodykind.KindNone:
	case bodykind.KindBinary:
		doc.BodyBase64 = base64.StdEncoding.EncodeToString(t.Body)
	default:
		body := string(t.Body)
		doc.Body = &body
	}
	return doc
}

// Task converts the document back and validates the result
func (d Document) Task() (*task.Task, error) {
	t := &task.Task{
		Title:   d.Title,
		Authors: append([]string(nil), d.Authors...),
	}

	tf, err := d.TimeFrame.timeFrame()
	if err != nil {
		return nil, err
	}
	t.TimeFrame = tf

	switch {
	case d.BodyBase64 != "":
		body, err := base64.StdEncoding.DecodeString(d.BodyBase64)
		if err != nil {
			return nil, fmt.Errorf("decoding body_base64: %w", err)
		}
		t.Body = body
	case d.Body != nil && *d.Body != "":
		// an empty string means no body, the task format has no empty one
		t.Body = []byte(*d.Body)
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (d TimeFrameDoc) timeFrame() (task.TimeFrame, error) {
	parse := func(field, s string) (task.Timestamp, error) {
		ts, err := task.ParseTimestamp(s)
		if err != nil {
			return ts, fmt.Errorf("time_frame.%s: %w", field, err)
		}
		return ts, nil
	}

	switch strings.ToLower(d.Kind) {
	case "after":
		ts, err := parse("start", d.Start)
		return task.AfterTime(ts), err
	case "until":
		ts, err := parse("end", d.End)
		return task.UntilTime(ts), err
	case "on":
		ts, err := parse("start", d.Start)
		return task.OnTime(ts), err
	case "from":
		start, err := parse("start", d.Start)
		if err != nil {
			return task.TimeFrame{}, err
		}
		end, err := parse("end", d.End)
		if err != nil {
			return task.TimeFrame{}, err
		}
		return task.Between(start, end)
	}
	return task.TimeFrame{}, fmt.Errorf("time_frame.kind: unknown kind %q", d.Kind)
}

// Encode writes the document for t in the given format
func Encode(w io.Writer, t *task.Task, format Format) error {
	doc := FromTask(t)
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown export format %q", format)
}

// Decode reads one document in the given format and converts it to a task
func Decode(r io.Reader, format Format) (*task.Task, error) {
	var doc Document
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode JSON: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
	return doc.Task()
}
