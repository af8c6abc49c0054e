package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseTimestamp_Valid(t *testing.T) {
	tests := []struct {
		input string
		want  Timestamp
	}{
		{"09:00 2024-01-05", Timestamp{Year: 2024, Month: 1, Day: 5, Hour: 9}},
		{"23:59 1999-12-31", Timestamp{Year: 1999, Month: 12, Day: 31, Hour: 23, Minute: 59}},
		{"00:00 0001-01-01", Timestamp{Year: 1, Month: 1, Day: 1}},
		{"12:30   12025-06-15", Timestamp{Year: 12025, Month: 6, Day: 15, Hour: 12, Minute: 30}},
		// No calendar check beyond the field ranges.
		{"08:15 2023-02-31", Timestamp{Year: 2023, Month: 2, Day: 31, Hour: 8, Minute: 15}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseTimestamp_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"one digit hour", "9:00 2024-01-05"},
		{"hour out of range", "24:00 2024-01-05"},
		{"minute out of range", "10:60 2024-01-05"},
		{"month zero", "10:00 2024-00-05"},
		{"month out of range", "10:00 2024-13-05"},
		{"day zero", "10:00 2024-01-00"},
		{"day out of range", "10:00 2024-01-32"},
		{"short year", "10:00 24-01-05"},
		{"missing space", "10:002024-01-05"},
		{"date first", "2024-01-05 10:00"},
		{"three digit day", "10:00 2024-01-050"},
		{"trailing text", "10:00 2024-01-05 x"},
		{"seconds", "10:00:00 2024-01-05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTimestamp(tt.input)
			require.Error(t, err)
		})
	}
}

func TestParseTimestamp_YearDigits(t *testing.T) {
	ts, err := ParseTimestamp("10:00 999999999-01-05")
	require.NoError(t, err)
	require.Equal(t, MaxYear, ts.Year)

	_, err = ParseTimestamp("10:00 1000000000-01-05")
	require.EqualError(t, err, "expected year of four to nine digits")
}

func TestTimestamp_Validate(t *testing.T) {
	require.NoError(t, Timestamp{Year: 0, Month: 1, Day: 1}.Validate())
	require.NoError(t, Timestamp{Year: MaxYear, Month: 12, Day: 31, Hour: 23, Minute: 59}.Validate())

	for _, ts := range []Timestamp{
		{Year: 2024, Month: 1, Day: 1, Hour: 24},
		{Year: 2024, Month: 1, Day: 1, Hour: -1},
		{Year: 2024, Month: 1, Day: 1, Minute: 60},
		{Year: 2024, Month: 0, Day: 1},
		{Year: 2024, Month: 1, Day: 32},
		{Year: -1, Month: 1, Day: 1},
		{Year: MaxYear + 1, Month: 1, Day: 1},
	} {
		err := ts.Validate()
		require.ErrorIs(t, err, ErrInvalid, "%+v", ts)
	}
}

func TestTimestamp_String(t *testing.T) {
	ts := Timestamp{Year: 7, Month: 3, Day: 1, Hour: 8, Minute: 5}
	require.Equal(t, "08:05 0007-03-01", ts.String())
	require.Len(t, Timestamp{Year: 2024, Month: 1, Day: 1}.String(), TimestampWidth)
}

func TestTimestamp_Compare(t *testing.T) {
	base := Timestamp{Year: 2024, Month: 6, Day: 15, Hour: 12, Minute: 30}

	tests := []struct {
		name  string
		other Timestamp
		want  int
	}{
		{"equal", base, 0},
		{"later year", Timestamp{Year: 2025, Month: 1, Day: 1}, -1},
		{"earlier year beats later month", Timestamp{Year: 2023, Month: 12, Day: 31, Hour: 23, Minute: 59}, 1},
		{"later month", Timestamp{Year: 2024, Month: 7, Day: 1}, -1},
		{"earlier day", Timestamp{Year: 2024, Month: 6, Day: 14, Hour: 23, Minute: 59}, 1},
		{"later hour", Timestamp{Year: 2024, Month: 6, Day: 15, Hour: 13}, -1},
		{"earlier minute", Timestamp{Year: 2024, Month: 6, Day: 15, Hour: 12, Minute: 29}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, base.Compare(tt.other))
			require.Equal(t, -tt.want, tt.other.Compare(base))
			require.Equal(t, tt.want < 0, base.Before(tt.other))
		})
	}
}

func TestTimestamp_Time(t *testing.T) {
	ts := Timestamp{Year: 2024, Month: 3, Day: 1, Hour: 8, Minute: 0}
	tm := ts.Time(time.UTC)

	require.Equal(t, time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC), tm)
	require.Equal(t, ts, TimestampOf(tm.Add(59*time.Second)))
}
