package task

import (
	"fmt"
	"time"
)

// Timestamp is a calendar minute without timezone.
type Timestamp struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
}

// TimestampWidth is the rendered width of a Timestamp with a four-digit year.
const TimestampWidth = len("15:04 2006-01-02")

// MaxYear is the largest year a Timestamp can carry: nine digits.
const MaxYear = 999_999_999

// ParseTimestamp parses "HH:MM YYYY-MM-DD". Hour, minute, month and day take
// exactly two digits, the year four to nine.
func ParseTimestamp(s string) (Timestamp, error) {
	ts, rest, err := scanTimestamp(s)
	if err != nil {
		return Timestamp{}, err
	}
	if rest != "" {
		return Timestamp{}, fmt.Errorf("unexpected %q after timestamp", rest)
	}
	return ts, nil
}

// scanTimestamp reads one timestamp from the start of s and returns the rest.
func scanTimestamp(s string) (Timestamp, string, error) {
	var ts Timestamp
	var ok bool

	if ts.Hour, s, ok = scanDigits(s, 2, 2); !ok {
		return ts, s, fmt.Errorf("expected two-digit hour")
	}
	if s, ok = scanByte(s, ':'); !ok {
		return ts, s, fmt.Errorf("expected ':' after hour")
	}
	if ts.Minute, s, ok = scanDigits(s, 2, 2); !ok {
		return ts, s, fmt.Errorf("expected two-digit minute")
	}
	if rest := skipSpace(s); len(rest) < len(s) {
		s = rest
	} else {
		return ts, s, fmt.Errorf("expected space between time and date")
	}
	if ts.Year, s, ok = scanDigits(s, 4, 9); !ok {
		return ts, s, fmt.Errorf("expected year of four to nine digits")
	}
	if s, ok = scanByte(s, '-'); !ok {
		return ts, s, fmt.Errorf("expected '-' after year")
	}
	if ts.Month, s, ok = scanDigits(s, 2, 2); !ok {
		return ts, s, fmt.Errorf("expected two-digit month")
	}
	if s, ok = scanByte(s, '-'); !ok {
		return ts, s, fmt.Errorf("expected '-' after month")
	}
	if ts.Day, s, ok = scanDigits(s, 2, 2); !ok {
		return ts, s, fmt.Errorf("expected two-digit day")
	}

	if err := ts.checkRange(); err != nil {
		return ts, s, err
	}
	return ts, s, nil
}

// checkRange enforces the field ranges the parser accepts.
func (t Timestamp) checkRange() error {
	switch {
	case t.Year < 0 || t.Year > MaxYear:
		return fmt.Errorf("year %d out of range", t.Year)
	case t.Hour < 0 || t.Hour > 23:
		return fmt.Errorf("hour %d out of range", t.Hour)
	case t.Minute < 0 || t.Minute > 59:
		return fmt.Errorf("minute %d out of range", t.Minute)
	case t.Month < 1 || t.Month > 12:
		return fmt.Errorf("month %d out of range", t.Month)
	case t.Day < 1 || t.Day > 31:
		return fmt.Errorf("day %d out of range", t.Day)
	}
	return nil
}

// Validate reports whether t can be written and read back. The error wraps
// ErrInvalid.
func (t Timestamp) Validate() error {
	if err := t.checkRange(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// scanDigits reads between lo and hi ASCII digits. A digit directly after
// hi digits makes the scan fail.
func scanDigits(s string, lo, hi int) (int, string, bool) {
	n, v := 0, 0
	for n < len(s) && n < hi && isDigit(s[n]) {
		v = v*10 + int(s[n]-'0')
		n++
	}
	if n < lo || (n < len(s) && isDigit(s[n])) {
		return 0, s, false
	}
	return v, s[n:], true
}

func scanByte(s string, b byte) (string, bool) {
	if s == "" || s[0] != b {
		return s, false
	}
	return s[1:], true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// String renders the timestamp as "HH:MM YYYY-MM-DD".
func (t Timestamp) String() string {
	return fmt.Sprintf("%02d:%02d %04d-%02d-%02d", t.Hour, t.Minute, t.Year, t.Month, t.Day)
}

// IsZero reports whether t is the zero value.
func (t Timestamp) IsZero() bool {
	return t == Timestamp{}
}

// Compare returns -1, 0 or +1 ordering by year, month, day, hour, minute.
func (t Timestamp) Compare(u Timestamp) int {
	for _, d := range [...]int{
		t.Year - u.Year,
		t.Month - u.Month,
		t.Day - u.Day,
		t.Hour - u.Hour,
		t.Minute - u.Minute,
	} {
		if d < 0 {
			return -1
		}
		if d > 0 {
			return 1
		}
	}
	return 0
}

// Before reports whether t is strictly before u.
func (t Timestamp) Before(u Timestamp) bool {
	return t.Compare(u) < 0
}

// Time returns t as a time.Time in loc. Out-of-range days normalize the way
// time.Date does.
func (t Timestamp) Time(loc *time.Location) time.Time {
	return time.Date(t.Year, time.Month(t.Month), t.Day, t.Hour, t.Minute, 0, 0, loc)
}

// TimestampOf truncates tm to the minute.
func TimestampOf(tm time.Time) Timestamp {
	return Timestamp{
		Year:   tm.Year(),
		Month:  int(tm.Month()),
		Day:    tm.Day(),
		Hour:   tm.Hour(),
		Minute: tm.Minute(),
	}
}
