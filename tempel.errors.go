package tempel

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/itsatony/go-cuserr"
)

// Error message constants - ALL error messages must be constants (NO MAGIC STRINGS)
const (
	// Compile errors
	ErrMsgTemplateRead      = "failed to read template"
	ErrMsgUnbalancedBraces  = "unbalanced placeholder braces"
	ErrMsgFormatError       = "malformed placeholder delimiters"
	ErrMsgNestedLoop        = "nested loop blocks are not supported"
	ErrMsgUnbalancedForLoop = "unbalanced loop block"
	ErrMsgCompileFailed     = "template compilation failed"

	// Render errors
	ErrMsgNoSuchList = "no such list"

	// Registry errors
	ErrMsgEmptyTemplateName = "template name cannot be empty"
	ErrMsgTemplateExists    = "template already registered"
	ErrMsgTemplateNotFound  = "template not found"
)

// Error format constants
const (
	ErrFmtPosition     = "line %d, column %d"
	ErrFmtWrappedCause = "%w: %w"
)

// Error code constants for categorization
const (
	ErrCodeRead     = "TEMPEL_READ"
	ErrCodeCompile  = "TEMPEL_COMPILE"
	ErrCodeRender   = "TEMPEL_RENDER"
	ErrCodeRegistry = "TEMPEL_REGISTRY"
)

// Sentinel errors. Every error built below wraps one of these, so callers can
// test the category with errors.Is.
var (
	ErrTemplateRead      = errors.New(ErrMsgTemplateRead)
	ErrUnbalancedBraces  = errors.New(ErrMsgUnbalancedBraces)
	ErrFormat            = errors.New(ErrMsgFormatError)
	ErrNestedLoop        = errors.New(ErrMsgNestedLoop)
	ErrUnbalancedForLoop = errors.New(ErrMsgUnbalancedForLoop)
	ErrNoSuchList        = errors.New(ErrMsgNoSuchList)
	ErrTemplateNotFound  = errors.New(ErrMsgTemplateNotFound)
	ErrTemplateExists    = errors.New(ErrMsgTemplateExists)
	ErrEmptyTemplateName = errors.New(ErrMsgEmptyTemplateName)
)

// Position represents a location in the normalized template text
type Position struct {
	Offset int // Byte offset from start
	Line   int // 1-indexed line number
	Column int // 1-indexed column number
}

// String returns a human-readable position string
func (p Position) String() string {
	return fmt.Sprintf(ErrFmtPosition, p.Line, p.Column)
}

// NewTemplateReadError creates an error for a document that could not be read
func NewTemplateReadError(path string, cause error) error {
	return cuserr.WrapStdError(fmt.Errorf(ErrFmtWrappedCause, ErrTemplateRead, cause), ErrCodeRead, ErrMsgTemplateRead).
		WithMetadata(MetaKeyPath, path)
}

// NewUnbalancedBracesError creates an error for differing "{{" and "}}" counts
func NewUnbalancedBracesError(opens, closes int) error {
	return cuserr.WrapStdError(ErrUnbalancedBraces, ErrCodeCompile, ErrMsgUnbalancedBraces).
		WithMetadata(MetaKeyOpenCount, strconv.Itoa(opens)).
		WithMetadata(MetaKeyCloseCount, strconv.Itoa(closes))
}

// NewFormatError creates an error for a crossed or out-of-order delimiter pair.
// start and end are byte offsets into the normalized text.
func NewFormatError(start, end int, pos Position) error {
	return cuserr.WrapStdError(ErrFormat, ErrCodeCompile, ErrMsgFormatError).
		WithMetadata(MetaKeyStart, strconv.Itoa(start)).
		WithMetadata(MetaKeyEnd, strconv.Itoa(end)).
		WithMetadata(MetaKeyLine, strconv.Itoa(pos.Line)).
		WithMetadata(MetaKeyColumn, strconv.Itoa(pos.Column))
}

// NewNestedLoopError creates an error for a loop opened inside another loop
func NewNestedLoopError(pos Position) error {
	return cuserr.WrapStdError(ErrNestedLoop, ErrCodeCompile, ErrMsgNestedLoop).
		WithMetadata(MetaKeyOffset, strconv.Itoa(pos.Offset)).
		WithMetadata(MetaKeyLine, strconv.Itoa(pos.Line)).
		WithMetadata(MetaKeyColumn, strconv.Itoa(pos.Column))
}

// NewUnbalancedForLoopError creates an error for an unclosed loop or a stray endfor
func NewUnbalancedForLoopError(pos Position) error {
	return cuserr.WrapStdError(ErrUnbalancedForLoop, ErrCodeCompile, ErrMsgUnbalancedForLoop).
		WithMetadata(MetaKeyOffset, strconv.Itoa(pos.Offset)).
		WithMetadata(MetaKeyLine, strconv.Itoa(pos.Line)).
		WithMetadata(MetaKeyColumn, strconv.Itoa(pos.Column))
}

// NewCompileError wraps an unexpected failure while compiling text segments
func NewCompileError(cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeCompile, ErrMsgCompileFailed)
}

// NewNoSuchListError creates an error for a loop whose list is unbound or not a list
func NewNoSuchListError(name string) error {
	return cuserr.WrapStdError(ErrNoSuchList, ErrCodeRender, ErrMsgNoSuchList).
		WithMetadata(MetaKeyList, name)
}

// NewEmptyTemplateNameError creates an error for registering a template without a name
func NewEmptyTemplateNameError() error {
	return cuserr.WrapStdError(ErrEmptyTemplateName, ErrCodeRegistry, ErrMsgEmptyTemplateName)
}

// NewTemplateExistsError creates a registry collision error
func NewTemplateExistsError(name string) error {
	return cuserr.WrapStdError(ErrTemplateExists, ErrCodeRegistry, ErrMsgTemplateExists).
		WithMetadata(MetaKeyTemplateName, name)
}

// NewTemplateNotFoundError creates an error for an unknown template name
func NewTemplateNotFoundError(name string) error {
	return cuserr.WrapStdError(ErrTemplateNotFound, ErrCodeRegistry, ErrMsgTemplateNotFound).
		WithMetadata(MetaKeyTemplateName, name)
}

// FormatErrorRange returns the offending delimiter offsets carried by a
// FormatError. ok is false for any other error.
func FormatErrorRange(err error) (start, end int, ok bool) {
	if !errors.Is(err, ErrFormat) {
		return 0, 0, false
	}
	startStr, okStart := metadata(err, MetaKeyStart)
	endStr, okEnd := metadata(err, MetaKeyEnd)
	if !okStart || !okEnd {
		return 0, 0, false
	}
	start, errStart := strconv.Atoi(startStr)
	end, errEnd := strconv.Atoi(endStr)
	if errStart != nil || errEnd != nil {
		return 0, 0, false
	}
	return start, end, true
}

// MissingListName returns the list identifier named by a NoSuchList error.
func MissingListName(err error) (string, bool) {
	if !errors.Is(err, ErrNoSuchList) {
		return "", false
	}
	return metadata(err, MetaKeyList)
}

// ErrorPosition returns the line and column recorded on a compile error.
func ErrorPosition(err error) (Position, bool) {
	lineStr, okLine := metadata(err, MetaKeyLine)
	colStr, okCol := metadata(err, MetaKeyColumn)
	if !okLine || !okCol {
		return Position{}, false
	}
	line, errLine := strconv.Atoi(lineStr)
	col, errCol := strconv.Atoi(colStr)
	if errLine != nil || errCol != nil {
		return Position{}, false
	}
	pos := Position{Line: line, Column: col}
	if offStr, ok := metadata(err, MetaKeyOffset); ok {
		pos.Offset, _ = strconv.Atoi(offStr)
	} else if startStr, ok := metadata(err, MetaKeyStart); ok {
		pos.Offset, _ = strconv.Atoi(startStr)
	}
	return pos, true
}

func metadata(err error, key string) (string, bool) {
	var customErr *cuserr.CustomError
	if !errors.As(err, &customErr) {
		return "", false
	}
	return customErr.GetMetadata(key)
}
