package internal

// Placeholder delimiters
const (
	StrOpenDelim  = "{{"
	StrCloseDelim = "}}"
)

// Delimiter lengths
const (
	LenOpenDelim  = 2 // {{
	LenCloseDelim = 2 // }}
)

// CharNewline advances the line count in positions
const CharNewline = '\n'

// Whitespace runs stripped inside placeholder delimiters during normalization
const (
	StrOpenSpace  = StrOpenDelim + " "
	StrOpenTab    = StrOpenDelim + "\t"
	StrSpaceClose = " " + StrCloseDelim
	StrTabClose   = "\t" + StrCloseDelim
)

// WhitespaceChars disqualifies a placeholder interior from being a declared variable
const WhitespaceChars = " \t\r\n\v\f"

// Loop tag patterns. Names are [A-Za-z_]+, keyword whitespace is spaces or tabs.
const (
	PatternForOpen  = `\{%[ \t]*for[ \t]+([A-Za-z_]+)[ \t]+in[ \t]+([A-Za-z_]+)[ \t]*%\}`
	PatternForClose = `\{%[ \t]*endfor[ \t]*%\}`
)

// Error messages
const (
	ErrMsgUnbalancedBraces   = "unbalanced placeholder braces"
	ErrMsgFormatError        = "malformed placeholder delimiters"
	ErrMsgNestedLoop         = "nested loop blocks are not supported"
	ErrMsgUnbalancedForLoop  = "unbalanced loop block"
	ErrMsgPlaceholderOverlap = "placeholder overlaps a loop tag"
	ErrMsgSegmentCompile     = "failed to compile text segment"
)

// Error format string constants (for Error() methods)
const (
	ErrFmtWithPosition = "%s at %s"
	ErrFmtBraceCounts  = "%s: %d open, %d close"
	ErrFmtWithCause    = "%s: %v"
	ErrFmtPosition     = "line %d, column %d"
)

// Log message constants
const (
	LogMsgNormalized   = "placeholders normalized"
	LogMsgScanStart    = "scanning placeholders"
	LogMsgScanEnd      = "placeholder scan complete"
	LogMsgLoopsFound   = "loop blocks found"
	LogMsgProgramBuilt = "program built"
)

// Log field name constants
const (
	LogFieldSource       = "source_length"
	LogFieldPasses       = "passes"
	LogFieldPlaceholders = "placeholder_count"
	LogFieldLoops        = "loop_count"
	LogFieldParts        = "part_count"
)
