package tempel

import (
	"errors"
	"strings"

	"github.com/itsatony/go-tempel/internal"
	"go.uber.org/zap"
)

// Template is a compiled document. It is created once by Compile and never
// mutated afterwards, so a single Template may be rendered by any number of
// goroutines at the same time.
type Template struct {
	source    string
	content   string
	variables []string
	loops     []Loop
	program   *internal.Program
	config    *engineConfig
}

// Loop describes one loop block of a compiled template
type Loop struct {
	Item string `json:"item"` // Loop variable
	List string `json:"list"` // Name of the list binding iterated over
}

// Compile normalizes source, validates its placeholder and loop structure and
// returns the compiled template. No Template is returned when validation
// fails.
func Compile(source string, opts ...Option) (*Template, error) {
	return compile(source, newEngineConfig(opts...))
}

// MustCompile is like Compile but panics on error.
func MustCompile(source string, opts ...Option) *Template {
	tmpl, err := Compile(source, opts...)
	if err != nil {
		panic(err)
	}
	return tmpl
}

func compile(source string, config *engineConfig) (*Template, error) {
	logger := config.logger
	logger.Debug(LogMsgCompileStart, zap.Int(LogFieldSource, len(source)))

	content := internal.NormalizeWithLogger(source, logger)

	placeholders, err := internal.NewScanner(content, logger).Scan()
	if err != nil {
		return nil, compileFailed(logger, err)
	}

	blocks, err := internal.FindLoops(content, logger)
	if err != nil {
		return nil, compileFailed(logger, err)
	}

	if err := internal.CheckPlaceholders(content, placeholders, blocks); err != nil {
		return nil, compileFailed(logger, err)
	}

	program, err := internal.BuildProgram(content, blocks, logger)
	if err != nil {
		return nil, compileFailed(logger, err)
	}

	loops := make([]Loop, len(blocks))
	for i, b := range blocks {
		loops[i] = Loop{Item: b.Item, List: b.List}
	}

	tmpl := &Template{
		source:    source,
		content:   content,
		variables: internal.Variables(placeholders),
		loops:     loops,
		program:   program,
		config:    config,
	}

	logger.Debug(LogMsgCompileEnd,
		zap.Int(LogFieldVariables, len(tmpl.variables)),
		zap.Int(LogFieldLoops, len(tmpl.loops)))
	return tmpl, nil
}

// compileFailed converts an internal structural error into its public form
// and logs it.
func compileFailed(logger *zap.Logger, err error) error {
	converted := convertCompileError(err)
	logger.Debug(LogMsgCompileFailed, zap.Error(converted))
	return converted
}

func convertCompileError(err error) error {
	var braceErr *internal.BraceError
	if errors.As(err, &braceErr) {
		if braceErr.Kind == internal.BraceErrorUnbalanced {
			return NewUnbalancedBracesError(braceErr.Opens, braceErr.Closes)
		}
		return NewFormatError(braceErr.Start, braceErr.End, fromInternalPosition(braceErr.Position))
	}

	var loopErr *internal.LoopError
	if errors.As(err, &loopErr) {
		pos := fromInternalPosition(loopErr.Position)
		switch loopErr.Kind {
		case internal.LoopErrorNested:
			return NewNestedLoopError(pos)
		case internal.LoopErrorOverlap:
			return NewFormatError(loopErr.Start, loopErr.End, pos)
		default:
			return NewUnbalancedForLoopError(pos)
		}
	}

	return NewCompileError(err)
}

func fromInternalPosition(p internal.Position) Position {
	return Position{Offset: p.Offset, Line: p.Line, Column: p.Column}
}

// Render substitutes bindings into the template and expands its loop blocks.
// Text outside loops sees the bindings as given. Each loop iteration sees the
// bindings plus the loop variable bound to the current element. On error no
// partial output is returned.
func (t *Template) Render(bindings Bindings) (string, error) {
	logger := t.config.logger
	logger.Debug(LogMsgRenderStart, zap.Int(LogFieldBindings, len(bindings)))

	lookup := internal.Lookup(bindings.lookup)

	var sb strings.Builder
	sb.Grow(len(t.content))
	for _, part := range t.program.Parts {
		if !part.IsLoop() {
			sb.WriteString(part.Text.Execute(lookup))
			continue
		}

		value, ok := bindings[part.Loop.List]
		if !ok || !value.IsList() {
			if t.config.missingList == MissingListEmpty {
				logger.Debug(LogMsgMissingListSkipped, zap.String(LogFieldList, part.Loop.List))
				continue
			}
			err := NewNoSuchListError(part.Loop.List)
			logger.Debug(LogMsgRenderFailed, zap.Error(err))
			return "", err
		}
		sb.WriteString(part.Loop.Expand(value.items, lookup))
	}

	out := sb.String()
	logger.Debug(LogMsgRenderEnd, zap.Int(LogFieldOutput, len(out)))
	return out, nil
}

// MustRender is like Render but panics on error.
func (t *Template) MustRender(bindings Bindings) string {
	out, err := t.Render(bindings)
	if err != nil {
		panic(err)
	}
	return out
}

// Source returns the document exactly as passed to Compile.
func (t *Template) Source() string {
	return t.source
}

// Content returns the normalized document text.
func (t *Template) Content() string {
	return t.content
}

// Variables returns the declared variable names in order of first appearance.
func (t *Template) Variables() []string {
	out := make([]string, len(t.variables))
	copy(out, t.variables)
	return out
}

// Loops returns the loop blocks in document order.
func (t *Template) Loops() []Loop {
	out := make([]Loop, len(t.loops))
	copy(out, t.loops)
	return out
}

// MissingListStrategy returns the strategy the template renders with.
func (t *Template) MissingListStrategy() MissingListStrategy {
	return t.config.missingList
}
