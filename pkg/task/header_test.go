package task

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsRule(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"-", true},
		{"------------------------------", true},
		{"", false},
		{" ---", false},
		{"--- ", false},
		{"-=-", false},
		{"Title:", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			require.Equal(t, tt.want, IsRule(tt.line))
		})
	}
}

func TestHeaderParser_Title(t *testing.T) {
	task := &Task{}
	p := headerParser{task: task}

	require.NoError(t, p.parseLine(2, "Title:   First  title  "))
	require.Equal(t, "First  title  ", task.Title)

	require.NoError(t, p.parseLine(3, "Title:Second"))
	require.Equal(t, "Second", task.Title, "later title wins")

	err := p.parseLine(4, "Title:   \t ")
	require.ErrorIs(t, err, ErrFormat)
}

func TestHeaderParser_Author(t *testing.T) {
	task := &Task{}
	p := headerParser{task: task}

	require.NoError(t, p.parseLine(2, "Author:  A   B  "))
	require.NoError(t, p.parseLine(3, "Author:\tJane\t\tDoe"))
	require.NoError(t, p.parseLine(4, "Author: A B"))
	require.Equal(t, []string{"A B", "Jane Doe", "A B"}, task.Authors)

	err := p.parseLine(5, "Author:    ")
	require.ErrorIs(t, err, ErrFormat)
}

func TestHeaderParser_UnknownField(t *testing.T) {
	p := headerParser{task: &Task{}}

	for _, line := range []string{"title: lower", "Authors: x", "Time frame: On 08:00 2024-03-01", "", " Title: x"} {
		err := p.parseLine(2, line)
		require.ErrorIs(t, err, ErrFormat, line)

		var fe *FormatError
		require.ErrorAs(t, err, &fe)
		require.Equal(t, 2, fe.Line)
	}
}

func TestHeaderParser_DuplicateTimeFrame(t *testing.T) {
	task := &Task{}
	p := headerParser{task: task}

	require.NoError(t, p.parseLine(2, "Time Frame: On 08:00 2024-03-01"))
	err := p.parseLine(3, "Time Frame: After 08:00 2024-03-02")
	require.ErrorIs(t, err, ErrFormat)
	require.Equal(t, KindOn, task.TimeFrame.Kind)
}

func TestParseTimeFrame(t *testing.T) {
	t1 := Timestamp{Year: 2024, Month: 1, Day: 5, Hour: 9}
	t2 := Timestamp{Year: 2024, Month: 1, Day: 5, Hour: 17}

	tests := []struct {
		input string
		want  TimeFrame
	}{
		{"After 09:00 2024-01-05", TimeFrame{Kind: KindAfter, Start: t1}},
		{"Until 17:00 2024-01-05", TimeFrame{Kind: KindUntil, End: t2}},
		{"On 09:00 2024-01-05", TimeFrame{Kind: KindOn, Start: t1, End: t1}},
		{"From 09:00 2024-01-05 to 17:00 2024-01-05", TimeFrame{Kind: KindFrom, Start: t1, End: t2}},
		{"  From\t09:00  2024-01-05   to  17:00 2024-01-05  ", TimeFrame{Kind: KindFrom, Start: t1, End: t2}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimeFrame(tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseTimeFrame_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"unknown keyword", "Before 09:00 2024-01-05"},
		{"lower case keyword", "on 09:00 2024-01-05"},
		{"keyword glued to time", "On09:00 2024-01-05"},
		{"missing timestamp", "After"},
		{"trailing text", "On 09:00 2024-01-05 sharp"},
		{"end before start", "From 10:00 2024-01-05 to 09:00 2024-01-05"},
		{"empty interval", "From 10:00 2024-01-05 to 10:00 2024-01-05"},
		{"missing to", "From 09:00 2024-01-05 17:00 2024-01-05"},
		{"glued to", "From 09:00 2024-01-05to 17:00 2024-01-05"},
		{"missing end", "From 09:00 2024-01-05 to"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTimeFrame(tt.input)
			require.Error(t, err)
		})
	}
}

func TestCollapseSpace(t *testing.T) {
	require.Equal(t, "A B", collapseSpace("  A   B  "))
	require.Equal(t, "A B", collapseSpace(collapseSpace("  A   B  ")))
	require.Equal(t, "", collapseSpace(" \t\v "))
	require.Equal(t, "Zoë Ünal", collapseSpace("Zoë  Ünal"))
}
