package task

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	titlePrefix     = "Title:"
	authorPrefix    = "Author:"
	timeFramePrefix = "Time Frame:"
)

// IsRule reports whether line is a non-empty run of '-'.
func IsRule(line string) bool {
	if line == "" {
		return false
	}
	for i := 0; i < len(line); i++ {
		if line[i] != '-' {
			return false
		}
	}
	return true
}

// headerParser accumulates header fields into a Task.
type headerParser struct {
	task         *Task
	hasTimeFrame bool
}

// parseLine dispatches one header line by its field prefix.
func (p *headerParser) parseLine(lineno int, line string) error {
	switch {
	case strings.HasPrefix(line, titlePrefix):
		return p.parseTitle(lineno, line[len(titlePrefix):])
	case strings.HasPrefix(line, authorPrefix):
		return p.parseAuthor(lineno, line[len(authorPrefix):])
	case strings.HasPrefix(line, timeFramePrefix):
		return p.parseTimeFrame(lineno, line[len(timeFramePrefix):])
	}
	return formatErrorf(lineno, "unknown header field %q", line)
}

// parseTitle keeps the last title seen. Only leading whitespace is skipped.
func (p *headerParser) parseTitle(lineno int, s string) error {
	title := strings.TrimLeftFunc(s, unicode.IsSpace)
	if title == "" {
		return formatErrorf(lineno, "empty title")
	}
	p.task.Title = strings.Clone(title)
	return nil
}

func (p *headerParser) parseAuthor(lineno int, s string) error {
	author := collapseSpace(s)
	if author == "" {
		return formatErrorf(lineno, "empty author")
	}
	p.task.Authors = append(p.task.Authors, author)
	return nil
}

func (p *headerParser) parseTimeFrame(lineno int, s string) error {
	if p.hasTimeFrame {
		return formatErrorf(lineno, "duplicate time frame")
	}
	tf, err := ParseTimeFrame(s)
	if err != nil {
		return &FormatError{Line: lineno, Msg: err.Error()}
	}
	p.task.TimeFrame = tf
	p.hasTimeFrame = true
	return nil
}

// finish checks that the header block carried every required field.
func (p *headerParser) finish(lineno int) error {
	switch {
	case p.task.Title == "":
		return formatErrorf(lineno, "missing title")
	case len(p.task.Authors) == 0:
		return formatErrorf(lineno, "missing author")
	case !p.hasTimeFrame:
		return formatErrorf(lineno, "missing time frame")
	}
	return nil
}

// ParseTimeFrame parses the value of a "Time Frame:" field, e.g.
// "From 09:00 2024-01-05 to 17:00 2024-01-05".
func ParseTimeFrame(s string) (TimeFrame, error) {
	s = skipSpace(s)
	keyword, rest := nextWord(s)

	var tf TimeFrame
	switch keyword {
	case "After", "Until", "On":
		ts, tail, err := scanTimestamp(skipSpace(rest))
		if err != nil {
			return TimeFrame{}, fmt.Errorf("%s: %w", keyword, err)
		}
		rest = tail
		switch keyword {
		case "After":
			tf = AfterTime(ts)
		case "Until":
			tf = UntilTime(ts)
		default:
			tf = OnTime(ts)
		}
	case "From":
		start, tail, err := scanTimestamp(skipSpace(rest))
		if err != nil {
			return TimeFrame{}, fmt.Errorf("From: %w", err)
		}
		sep := skipSpace(tail)
		word, after := nextWord(sep)
		if len(sep) == len(tail) || word != "to" {
			return TimeFrame{}, fmt.Errorf("From: expected \"to\" after start time")
		}
		end, tail, err := scanTimestamp(skipSpace(after))
		if err != nil {
			return TimeFrame{}, fmt.Errorf("From: %w", err)
		}
		if !start.Before(end) {
			return TimeFrame{}, fmt.Errorf("interval start %s is not before end %s", start, end)
		}
		tf = TimeFrame{Kind: KindFrom, Start: start, End: end}
		rest = tail
	default:
		return TimeFrame{}, fmt.Errorf("unknown time frame %q", s)
	}

	if trailing := skipSpace(rest); trailing != "" {
		return TimeFrame{}, fmt.Errorf("unexpected %q after time frame", trailing)
	}
	return tf, nil
}

// nextWord splits s at the first whitespace.
func nextWord(s string) (string, string) {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i:]
}

func skipSpace(s string) string {
	return strings.TrimLeftFunc(s, unicode.IsSpace)
}

// collapseSpace trims s and replaces every run of whitespace with one space.
func collapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]
		if unicode.IsSpace(r) {
			inSpace = true
			continue
		}
		if inSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
