// Package logger implements the diagnostic model used by the decorator
// lowering pass: byte-offset locations into a single class's source text,
// and a small two-kind (error/warning) message log. It is a scaled-down
// version of the diagnostic system a full compiler would own, built to the
// same shape so that the pass can be dropped into a larger host unchanged.
package logger

import (
	"fmt"
	"sort"
)

// Loc is a 0-based byte offset from the start of the source text that
// contained the class being lowered.
type Loc struct {
	Start int32
}

// Range is a Loc plus a length, used to underline a token or expression in
// a rendered diagnostic.
type Range struct {
	Loc Loc
	Len int32
}

func (r Range) End() int32 { return r.Loc.Start + r.Len }

type Kind uint8

const (
	Error Kind = iota
	Warning
)

func (k Kind) String() string {
	if k == Warning {
		return "warning"
	}
	return "error"
}

// Note is a secondary pointer attached to a Msg, e.g. "the declaration is
// here" alongside "this write is forbidden".
type Note struct {
	Text     string
	Location *MsgLocation
}

type Msg struct {
	Kind     Kind
	Text     string
	Location *MsgLocation
	Notes    []Note
}

type MsgLocation struct {
	File     string
	Line     int // 1-based
	Column   int // 0-based, in bytes
	Length   int
	LineText string
}

// Source is the minimal amount of context the logger needs to turn a Loc
// into a human-readable MsgLocation: the raw text and a display name.
type Source struct {
	PrettyPath string
	Contents   string
}

// LocationForLoc exposes locationForLoc to callers outside this package
// that need to attach a Note pointing at a location other than a Msg's own
// primary one (e.g. P6's "the declaration is here").
func (s *Source) LocationForLoc(loc Loc) *MsgLocation {
	return s.locationForLoc(loc)
}

func (s *Source) locationForLoc(loc Loc) *MsgLocation {
	lineText, line, column := s.lineColumnForOffset(int(loc.Start))
	return &MsgLocation{
		File:     s.PrettyPath,
		Line:     line,
		Column:   column,
		LineText: lineText,
	}
}

func (s *Source) lineColumnForOffset(offset int) (lineText string, line int, column int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(s.Contents) {
		offset = len(s.Contents)
	}
	line = 1
	lineStart := 0
	for i := 0; i < offset; i++ {
		if s.Contents[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	lineEnd := len(s.Contents)
	if idx := indexByte(s.Contents[lineStart:], '\n'); idx >= 0 {
		lineEnd = lineStart + idx
	}
	return s.Contents[lineStart:lineEnd], line, offset - lineStart
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// Log collects diagnostics for a single pass invocation. It is always
// owned by one call to Plugin.LowerClass and is never shared across
// goroutines, matching the single-threaded model of spec.md §5.
type Log struct {
	msgs          []Msg
	correlationID string
}

func NewLog() *Log { return &Log{} }

// NewLogWithCorrelationID attaches an invocation correlation id (a UUID,
// by convention) so concurrent Plugin.LowerClass calls lowering different
// classes can be told apart in logs/metrics without any process-wide
// mutable state.
func NewLogWithCorrelationID(id string) *Log { return &Log{correlationID: id} }

func (log *Log) CorrelationID() string { return log.correlationID }

func (log *Log) AddError(source *Source, loc Loc, text string) {
	log.msgs = append(log.msgs, Msg{Kind: Error, Text: text, Location: source.locationForLoc(loc)})
}

func (log *Log) AddErrorWithNotes(source *Source, loc Loc, text string, notes ...Note) {
	log.msgs = append(log.msgs, Msg{Kind: Error, Text: text, Location: source.locationForLoc(loc), Notes: notes})
}

func (log *Log) AddWarning(source *Source, loc Loc, text string) {
	log.msgs = append(log.msgs, Msg{Kind: Warning, Text: text, Location: source.locationForLoc(loc)})
}

func (log *Log) HasErrors() bool {
	for _, msg := range log.msgs {
		if msg.Kind == Error {
			return true
		}
	}
	return false
}

func (log *Log) Msgs() []Msg {
	sorted := make([]Msg, len(log.msgs))
	copy(sorted, log.msgs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Kind < sorted[j].Kind })
	return sorted
}

func (m Msg) String() string {
	if m.Location == nil {
		return fmt.Sprintf("%s: %s", m.Kind, m.Text)
	}
	return fmt.Sprintf("%s: %s:%d:%d: %s", m.Kind, m.Location.File, m.Location.Line, m.Location.Column, m.Text)
}
