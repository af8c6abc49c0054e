// Package task reads and writes task records.
//
// # Task Format
//
// A task is a header block between two rule lines, an optional empty
// separator line and a free-form body:
//
//	----------------------------------------------------
//	Title:       Finish report
//	Author:      Jane Doe
//	Time Frame:  From 09:00 2024-01-05 to 17:00 2024-01-05
//	----------------------------------------------------
//
//	Draft the quarterly summary.
//
// # Rule Lines
//
// A rule line is a non-empty line made only of '-'. The first line of a task
// must be a rule. The next rule line closes the header block.
//
// # Header Fields
//
//   - Title: the rest of the line after leading whitespace. A later Title
//     line replaces an earlier one.
//
//   - Author: runs of whitespace collapse to a single space. Several Author
//     lines may appear; their order is kept.
//
//   - Time Frame: exactly once, one of
//
//     After HH:MM YYYY-MM-DD
//     Until HH:MM YYYY-MM-DD
//     On HH:MM YYYY-MM-DD
//     From HH:MM YYYY-MM-DD to HH:MM YYYY-MM-DD
//
// Hour, minute, month and day take two digits, the year four to nine. In the
// From form the start must be strictly before the end. Any other line inside
// the header block is an error.
//
// # Body
//
// If the stream ends right after the closing rule the task has no body.
// Otherwise the next line must be empty and everything after it, including
// newlines, is the body. A separator line without any body bytes is an error.
//
// # Canonical Layout
//
// Write pads every label to 13 columns and draws both rules 13 columns wider
// than the widest header value, so the rule always covers the longest line.
package task
