package tcpoosc

import (
	"fmt"
	"sort"
)

// Location is a user-facing position: 1-based line/column plus the
// byte offset it corresponds to, and (optionally) the source file it
// belongs to. It is derived from a Cursor at the point a diagnostic or
// an AST node needs to remember where it came from.
type Location struct {
	Line   int
	Column int
	Offset int
	File   string
}

func (l Location) String() string {
	if l.File != "" {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// LocationOf converts a Cursor into a Location, attaching the given
// input file name.
func LocationOf(c Cursor, file string) Location {
	return Location{Line: c.Line, Column: c.Column, Offset: c.Offset, File: file}
}

// Span is a half-open range between two Locations, used to report
// where a diagnosable error begins and ends.
type Span struct {
	Start Location
	End   Location
}

func NewSpan(start, end Location) Span { return Span{Start: start, End: end} }

func (s Span) String() string {
	if s.Start.Line == s.End.Line && s.Start.Column == s.End.Column {
		return s.Start.String()
	}
	if s.Start.Line == s.End.Line {
		return fmt.Sprintf("%s:%d:%d-%d", spanFile(s), s.Start.Line, s.Start.Column, s.End.Column)
	}
	return fmt.Sprintf("%s-%s", s.Start, s.End)
}

func spanFile(s Span) string { return s.Start.File }

// Range is a cheap byte-offset pair into the source, used wherever
// carrying a full pair of Locations would be wasteful — the
// expectation tracker records one per failed attempt.
type Range struct{ Start, End int }

func NewRange(start, end int) Range { return Range{Start: start, End: end} }

func (r Range) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("%d", r.Start)
	}
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}

// Str returns the slice of src covered by r.
func (r Range) Str(src []byte) string { return string(src[r.Start:r.End]) }

func (r Range) Contains(other Range) bool {
	return other.Start >= r.Start && other.End <= r.End
}

// LineIndex converts byte offsets into Locations by binary-searching
// the start offset of each line, so the parser's internal Cursor
// (which tracks line/column incrementally while it advances) doesn't
// need to be reconstructed to describe an offset recorded elsewhere,
// such as a Range stashed away during parsing.
type LineIndex struct {
	input     []byte
	lineStart []int
}

// NewLineIndex scans input once for line starts.
func NewLineIndex(input []byte) *LineIndex {
	lineStart := make([]int, 1, 64)
	lineStart[0] = 0
	for i, b := range input {
		if b == '\n' {
			lineStart = append(lineStart, i+1)
		}
	}
	return &LineIndex{input: input, lineStart: lineStart}
}

// LocationAt returns the Location of the given byte offset, clamped
// to the bounds of the indexed input.
func (li *LineIndex) LocationAt(offset int) Location {
	if offset < 0 {
		offset = 0
	}
	if offset > len(li.input) {
		offset = len(li.input)
	}
	lineIdx := sort.Search(len(li.lineStart), func(i int) bool {
		return li.lineStart[i] > offset
	}) - 1
	if lineIdx < 0 {
		lineIdx = 0
	}
	lineStart := li.lineStart[lineIdx]
	return Location{Line: lineIdx + 1, Column: offset - lineStart + 1, Offset: offset}
}

// Span converts a Range into a pair of Locations.
func (li *LineIndex) Span(r Range) Span {
	return Span{Start: li.LocationAt(r.Start), End: li.LocationAt(r.End)}
}

// Line returns the raw text of the given 1-based line number, with no
// trailing newline, for printing source context in a diagnostic.
func (li *LineIndex) Line(n int) []byte {
	if n < 1 || n > len(li.lineStart) {
		return nil
	}
	start := li.lineStart[n-1]
	end := len(li.input)
	if n < len(li.lineStart) {
		end = li.lineStart[n] - 1
	}
	if end > 0 && end <= len(li.input) && li.input[end-1] == '\r' {
		end--
	}
	return li.input[start:end]
}
