package bodykind

import (
	"bufio"
	"bytes"
	"strings"
	"unicode/utf8"
)

// Kind is the detected kind of a task body
type Kind string

const (
	KindNone     Kind = "none"
	KindText     Kind = "text"
	KindMarkdown Kind = "markdown"
	KindBinary   Kind = "binary"
)

// maxScan bounds how much of a body is analyzed
const maxScan = 8192

// markdownThreshold is the number of markdown indicators needed to call a body markdown
const markdownThreshold = 2

// Detector accumulates evidence line by line.
// Not safe for concurrent use.
type Detector struct {
	scanned int
	binary  bool

	headers     int
	codeFences  int
	listItems   int
	links       int
	emphasis    int
	blockquotes int
}

// Detect classifies a task body. A nil body is KindNone.
func Detect(body []byte) (Kind, string) {
	if body == nil {
		return KindNone, "task has no body"
	}
	d := &Detector{}
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 4096), maxScan+1)
	for scanner.Scan() {
		if !d.AnalyzeLine(scanner.Text()) {
			break
		}
	}
	if scanner.Err() != nil {
		// A single line longer than maxScan: judge by the prefix.
		end := min(len(body), maxScan)
		d.AnalyzeLine(string(body[:end]))
	}
	return d.Result()
}

// AnalyzeLine feeds one line. It returns false once no more input is needed.
func (d *Detector) AnalyzeLine(line string) bool {
	if d.binary || d.scanned >= maxScan {
		return false
	}
	d.scanned += len(line) + 1

	if isBinary(line) {
		d.binary = true
		return false
	}
	d.detectMarkdown(line)
	return d.scanned < maxScan
}

// Result returns the kind and a short reason.
func (d *Detector) Result() (Kind, string) {
	switch {
	case d.binary:
		return KindBinary, "null bytes, invalid UTF-8 or many control characters"
	case d.markdownScore() >= markdownThreshold:
		return KindMarkdown, "markdown formatting detected"
	}
	return KindText, "no markdown formatting detected"
}

func (d *Detector) markdownScore() int {
	return d.headers + d.codeFences + d.listItems + d.links + d.emphasis + d.blockquotes
}

// isBinary reports null bytes, invalid UTF-8, or more than 30% control characters
func isBinary(line string) bool {
	if line == "" {
		return false
	}
	if !utf8.ValidString(line) {
		return true
	}

	controls := 0
	for _, r := range line {
		if r == 0 {
			return true
		}
		if r < 32 && r != '\t' && r != '\r' {
			controls++
		} else if r > 126 && r < 160 {
			controls++
		}
	}
	return float64(controls) > float64(len(line))*0.3
}

func (d *Detector) detectMarkdown(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return
	}

	// # Header up to ######
	if strings.HasPrefix(trimmed, "#") {
		n := 0
		for n < len(trimmed) && n < 7 && trimmed[n] == '#' {
			n++
		}
		if n <= 6 && (n == len(trimmed) || trimmed[n] == ' ') {
			d.headers++
		}
	}

	if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
		d.codeFences++
	}

	if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") || strings.HasPrefix(trimmed, "+ ") {
		d.listItems++
	} else if isOrderedItem(trimmed) {
		d.listItems++
	}

	if containsLink(line) {
		d.links++
	}

	if strings.Contains(line, "**") || strings.Contains(line, "__") {
		d.emphasis++
	}

	if strings.HasPrefix(trimmed, "> ") {
		d.blockquotes++
	}
}

// isOrderedItem matches "1. item"
func isOrderedItem(s string) bool {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i > 0 && i+1 < len(s) && s[i] == '.' && s[i+1] == ' '
}

// containsLink matches [text](url)
func containsLink(line string) bool {
	for {
		open := strings.IndexByte(line, '[')
		if open < 0 {
			return false
		}
		line = line[open+1:]
		mid := strings.Index(line, "](")
		if mid < 0 {
			return false
		}
		if strings.IndexByte(line[mid+2:], ')') >= 0 {
			return true
		}
		line = line[mid+2:]
	}
}
