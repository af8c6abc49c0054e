// Package task reads and writes task records. See doc.go for the format.
package task

import (
	"fmt"
	"strings"
)

// Kind is the shape of a TimeFrame. The zero Kind means no time frame was set.
type Kind int

const (
	KindNone Kind = iota
	KindAfter
	KindUntil
	KindOn
	KindFrom
)

var kindKeywords = [...]string{
	KindAfter: "After",
	KindUntil: "Until",
	KindOn:    "On",
	KindFrom:  "From",
}

func (k Kind) String() string {
	if k <= KindNone || int(k) >= len(kindKeywords) {
		return "none"
	}
	return kindKeywords[k]
}

// TimeFrame is one of four shapes:
//
//	After(ts)    Start = ts, End unset
//	Until(ts)    End = ts, Start unset
//	On(ts)       Start = End = ts
//	From(a, b)   Start = a, End = b, a strictly before b
//
// Use the constructors to build one; the fields of the unset side are zero.
type TimeFrame struct {
	Kind  Kind
	Start Timestamp
	End   Timestamp
}

// AfterTime returns an open-ended interval starting at ts.
func AfterTime(ts Timestamp) TimeFrame {
	return TimeFrame{Kind: KindAfter, Start: ts}
}

// UntilTime returns a deadline at ts.
func UntilTime(ts Timestamp) TimeFrame {
	return TimeFrame{Kind: KindUntil, End: ts}
}

// OnTime returns a single point in time.
func OnTime(ts Timestamp) TimeFrame {
	return TimeFrame{Kind: KindOn, Start: ts, End: ts}
}

// Between returns the interval [start, end]. start must be strictly before end.
func Between(start, end Timestamp) (TimeFrame, error) {
	tf := TimeFrame{Kind: KindFrom, Start: start, End: end}
	if err := tf.Validate(); err != nil {
		return TimeFrame{}, err
	}
	return tf, nil
}

// HasStart reports whether the frame has a lower bound.
func (tf TimeFrame) HasStart() bool {
	return tf.Kind == KindAfter || tf.Kind == KindOn || tf.Kind == KindFrom
}

// HasEnd reports whether the frame has an upper bound.
func (tf TimeFrame) HasEnd() bool {
	return tf.Kind == KindUntil || tf.Kind == KindOn || tf.Kind == KindFrom
}

// Validate checks the shape invariants and the timestamps of the set sides.
func (tf TimeFrame) Validate() error {
	if tf.HasStart() {
		if err := tf.Start.Validate(); err != nil {
			return err
		}
	}
	if tf.HasEnd() {
		if err := tf.End.Validate(); err != nil {
			return err
		}
	}

	switch tf.Kind {
	case KindAfter, KindUntil:
		return nil
	case KindOn:
		if tf.Start != tf.End {
			return fmt.Errorf("%w: point in time with different start and end", ErrInvalid)
		}
		return nil
	case KindFrom:
		if !tf.Start.Before(tf.End) {
			return fmt.Errorf("%w: interval start %s is not before end %s", ErrInvalid, tf.Start, tf.End)
		}
		return nil
	}
	return fmt.Errorf("%w: no time frame", ErrInvalid)
}

// String renders the frame the way it appears after "Time Frame:".
func (tf TimeFrame) String() string {
	switch tf.Kind {
	case KindAfter:
		return "After " + tf.Start.String()
	case KindUntil:
		return "Until " + tf.End.String()
	case KindOn:
		return "On " + tf.Start.String()
	case KindFrom:
		return "From " + tf.Start.String() + " to " + tf.End.String()
	}
	return ""
}

// Task is a parsed task record. A nil Body means the record has no body
// section. A present body is never empty: the format has no way to express
// one, so Validate rejects it.
type Task struct {
	Title     string
	Authors   []string
	TimeFrame TimeFrame
	Body      []byte
}

// HasBody reports whether the record carries a body section.
func (t *Task) HasBody() bool {
	return t.Body != nil
}

// Validate checks the record invariants: everything Format writes must read
// back unchanged. The returned error wraps ErrInvalid.
func (t *Task) Validate() error {
	switch {
	case strings.TrimSpace(t.Title) == "":
		return fmt.Errorf("%w: empty title", ErrInvalid)
	case strings.ContainsAny(t.Title, "\r\n"):
		return fmt.Errorf("%w: title contains a line break", ErrInvalid)
	case skipSpace(t.Title) != t.Title:
		return fmt.Errorf("%w: title starts with whitespace", ErrInvalid)
	}

	if len(t.Authors) == 0 {
		return fmt.Errorf("%w: no author", ErrInvalid)
	}
	for i, a := range t.Authors {
		switch {
		case strings.TrimSpace(a) == "":
			return fmt.Errorf("%w: author %d is empty", ErrInvalid, i+1)
		case strings.ContainsAny(a, "\r\n"):
			return fmt.Errorf("%w: author %d contains a line break", ErrInvalid, i+1)
		case collapseSpace(a) != a:
			return fmt.Errorf("%w: author %d has extra whitespace", ErrInvalid, i+1)
		}
	}

	if t.Body != nil && len(t.Body) == 0 {
		return fmt.Errorf("%w: empty body, use a nil body for none", ErrInvalid)
	}
	return t.TimeFrame.Validate()
}

// Reset releases the record's buffers. The record is empty afterwards.
func (t *Task) Reset() {
	*t = Task{}
}
