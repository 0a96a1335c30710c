package internal

import (
	"fmt"
	"io"
	"strings"

	"github.com/valyala/fasttemplate"
	"go.uber.org/zap"
)

// Lookup resolves a placeholder name to its text. ok is false for unbound names.
type Lookup func(name string) (text string, ok bool)

// Segment is a run of document text with its placeholders pre-parsed
type Segment struct {
	text string
	tmpl *fasttemplate.Template
}

// CompileSegment parses the placeholders of text once so the segment can be
// executed many times. The compiled form is read-only.
func CompileSegment(text string) (*Segment, error) {
	tmpl, err := fasttemplate.NewTemplate(text, StrOpenDelim, StrCloseDelim)
	if err != nil {
		return nil, fmt.Errorf(ErrFmtWithCause, ErrMsgSegmentCompile, err)
	}
	return &Segment{text: text, tmpl: tmpl}, nil
}

// Text returns the segment source
func (s *Segment) Text() string {
	return s.text
}

// Execute replaces every {{name}} with lookup(name). Unbound names are written
// back verbatim so the placeholder stays visible in the output.
func (s *Segment) Execute(lookup Lookup) string {
	return s.tmpl.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		if text, ok := lookup(tag); ok {
			return io.WriteString(w, text)
		}
		return io.WriteString(w, StrOpenDelim+tag+StrCloseDelim)
	})
}

// LoopSegment is a compiled loop block
type LoopSegment struct {
	Item string
	List string
	Body *Segment
}

// Expand renders the body once per item, in order, with the loop variable
// bound to the item on top of the outer lookup.
func (l *LoopSegment) Expand(items []string, outer Lookup) string {
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString(l.Body.Execute(Overlay(outer, l.Item, item)))
	}
	return sb.String()
}

// Overlay returns a lookup where name resolves to text and every other name
// falls through to outer.
func Overlay(outer Lookup, name, text string) Lookup {
	return func(key string) (string, bool) {
		if key == name {
			return text, true
		}
		return outer(key)
	}
}

// Part is either a text segment or a loop block, never both
type Part struct {
	Text *Segment
	Loop *LoopSegment
}

// IsLoop reports whether the part is a loop block
func (p Part) IsLoop() bool {
	return p.Loop != nil
}

// Program is the compiled, immutable form of a normalized document
type Program struct {
	Parts []Part
}

// BuildProgram splits source at the loop blocks and compiles every piece.
func BuildProgram(source string, blocks []LoopBlock, logger *zap.Logger) (*Program, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	prog := &Program{Parts: make([]Part, 0, 2*len(blocks)+1)}
	cursor := 0
	for _, b := range blocks {
		if b.Start > cursor {
			seg, err := CompileSegment(source[cursor:b.Start])
			if err != nil {
				return nil, err
			}
			prog.Parts = append(prog.Parts, Part{Text: seg})
		}
		body, err := CompileSegment(b.Body(source))
		if err != nil {
			return nil, err
		}
		prog.Parts = append(prog.Parts, Part{Loop: &LoopSegment{
			Item: b.Item,
			List: b.List,
			Body: body,
		}})
		cursor = b.End
	}
	if cursor < len(source) {
		seg, err := CompileSegment(source[cursor:])
		if err != nil {
			return nil, err
		}
		prog.Parts = append(prog.Parts, Part{Text: seg})
	}

	logger.Debug(LogMsgProgramBuilt,
		zap.Int(LogFieldParts, len(prog.Parts)),
		zap.Int(LogFieldLoops, len(blocks)))
	return prog, nil
}
