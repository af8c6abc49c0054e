package task

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// labelWidth is the column at which header values start.
const labelWidth = 13

// Encoder writes tasks in the canonical layout.
type Encoder struct {
	w io.Writer
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Write validates t and writes it to w.
func Write(w io.Writer, t *Task) error {
	return NewEncoder(w).Encode(t)
}

// Encode validates t and writes it in one call to the underlying writer.
// Nothing is written if t is invalid.
func (e *Encoder) Encode(t *Task) error {
	data, err := Format(t)
	if err != nil {
		return err
	}
	if _, err := e.w.Write(data); err != nil {
		return fmt.Errorf("writing task: %w", err)
	}
	return nil
}

// Format returns the canonical rendering of t.
func Format(t *Task) ([]byte, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	rule := strings.Repeat("-", ruleWidth(t)) + "\n"

	var buf bytes.Buffer
	buf.Grow(len(rule)*2 + (len(t.Authors)+2)*(labelWidth+len(rule)) + len(t.Body) + 1)
	buf.WriteString(rule)
	writeField(&buf, titlePrefix, t.Title)
	for _, a := range t.Authors {
		writeField(&buf, authorPrefix, a)
	}
	writeField(&buf, timeFramePrefix, t.TimeFrame.String())
	buf.WriteString(rule)
	if t.HasBody() {
		buf.WriteByte('\n')
		buf.Write(t.Body)
	}
	return buf.Bytes(), nil
}

func writeField(buf *bytes.Buffer, label, value string) {
	buf.WriteString(label)
	buf.WriteString(strings.Repeat(" ", labelWidth-len(label)))
	buf.WriteString(value)
	buf.WriteByte('\n')
}

// ruleWidth is the label column plus the widest header value.
func ruleWidth(t *Task) int {
	w := max(runewidth.StringWidth(t.Title), timeFrameWidth(t.TimeFrame))
	for _, a := range t.Authors {
		w = max(w, runewidth.StringWidth(a))
	}
	return labelWidth + w
}

// timeFrameWidth is 22 for After and Until, 19 for On and 41 for From with
// four-digit years; longer years widen it.
func timeFrameWidth(tf TimeFrame) int {
	return len(tf.String())
}
