package task

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

const (
	// DefaultMaxBodySize is the body limit of a new Decoder.
	DefaultMaxBodySize = 64 << 20

	// MaxLineSize limits a header line, newline excluded.
	MaxLineSize = 64 << 10

	minBodyCap = 256
	chunkSize  = 4096
)

var errLineTooLong = errors.New("line too long")

type readState int

const (
	stateOpenRule readState = iota
	stateHeader
	stateSeparator
	stateBody
	stateDone
)

// Decoder reads one task from a stream.
type Decoder struct {
	r *bufio.Reader

	// MaxBodySize limits the body in bytes. Zero or negative disables the limit.
	MaxBodySize int
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:           bufio.NewReader(r),
		MaxBodySize: DefaultMaxBodySize,
	}
}

// Read reads one task from r with the default limits.
func Read(r io.Reader) (*Task, error) {
	return NewDecoder(r).Decode()
}

// Decode consumes the header block and then the rest of the stream as body.
// On error no partial task is returned.
func (d *Decoder) Decode() (*Task, error) {
	t := &Task{}
	header := headerParser{task: t}
	state := stateOpenRule
	lineno := 0

	for state != stateBody && state != stateDone {
		line, ok, err := d.readLine()
		if errors.Is(err, errLineTooLong) {
			return nil, formatErrorf(lineno+1, "line longer than %d bytes", MaxLineSize)
		}
		if err != nil {
			return nil, fmt.Errorf("reading task: %w", err)
		}
		if !ok {
			switch state {
			case stateOpenRule:
				return nil, formatErrorf(0, "empty input")
			case stateHeader:
				if err := header.finish(lineno); err != nil {
					return nil, err
				}
			}
			state = stateDone
			continue
		}
		lineno++

		switch state {
		case stateOpenRule:
			if !IsRule(line) {
				return nil, formatErrorf(lineno, "expected a rule of '-', got %q", line)
			}
			state = stateHeader
		case stateHeader:
			if IsRule(line) {
				if err := header.finish(lineno); err != nil {
					return nil, err
				}
				state = stateSeparator
				continue
			}
			if err := header.parseLine(lineno, line); err != nil {
				return nil, err
			}
		case stateSeparator:
			if line != "" {
				return nil, formatErrorf(lineno, "expected an empty line after the header, got %q", line)
			}
			state = stateBody
		}
	}

	if state == stateBody {
		body, err := d.readBody()
		if err != nil {
			return nil, err
		}
		if len(body) == 0 {
			return nil, formatErrorf(lineno, "missing body after separator line")
		}
		t.Body = body
	}
	return t, nil
}

// readLine returns the next line without its newline. ok is false at end of
// stream. Lines longer than MaxLineSize fail with errLineTooLong.
func (d *Decoder) readLine() (string, bool, error) {
	var buf []byte
	for {
		frag, err := d.r.ReadSlice('\n')
		if len(buf)+len(frag) > MaxLineSize+1 {
			return "", false, errLineTooLong
		}
		buf = append(buf, frag...)
		if err == bufio.ErrBufferFull {
			continue
		}
		if err != nil && err != io.EOF {
			return "", false, err
		}
		break
	}
	if len(buf) == 0 {
		return "", false, nil
	}
	if buf[len(buf)-1] == '\n' {
		buf = buf[:len(buf)-1]
	}
	if len(buf) > MaxLineSize {
		return "", false, errLineTooLong
	}
	return string(buf), true, nil
}

// readBody appends everything left in the stream to a new buffer.
func (d *Decoder) readBody() ([]byte, error) {
	body := bodyBuffer{max: d.MaxBodySize}
	chunk := make([]byte, chunkSize)
	for {
		n, err := d.r.Read(chunk)
		if n > 0 {
			if err := body.append(chunk[:n]); err != nil {
				return nil, err
			}
		}
		if err == io.EOF {
			return body.data, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading task body: %w", err)
		}
	}
}

// bodyBuffer grows by doubling, starting at max(minBodyCap, first chunk).
type bodyBuffer struct {
	data []byte
	max  int
}

func (b *bodyBuffer) append(p []byte) error {
	need := len(b.data) + len(p)
	if need < len(b.data) || (b.max > 0 && need > b.max) {
		return ErrBodyTooLarge
	}
	if b.data == nil {
		b.data = make([]byte, 0, max(minBodyCap, len(p)))
	}
	if need > cap(b.data) {
		c := cap(b.data)
		for c < need {
			c *= 2
		}
		if b.max > 0 && c > b.max {
			c = b.max
		}
		grown := make([]byte, len(b.data), c)
		copy(grown, b.data)
		b.data = grown
	}
	b.data = append(b.data, p...)
	return nil
}
