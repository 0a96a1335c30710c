package internal

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Placeholder is one paired {{ }} occurrence in normalized source
type Placeholder struct {
	Name  string // Interior text between the delimiters
	Open  int    // Byte offset of the opening delimiter
	Close int    // Byte offset of the closing delimiter
}

// End returns the offset just past the closing delimiter
func (p Placeholder) End() int {
	return p.Close + LenCloseDelim
}

// IsVariable reports whether the interior is a non-empty name with no whitespace
func (p Placeholder) IsVariable() bool {
	return p.Name != "" && !strings.ContainsAny(p.Name, WhitespaceChars)
}

// BraceErrorKind distinguishes count mismatches from crossed pairs
type BraceErrorKind int

// Brace error kinds
const (
	BraceErrorUnbalanced BraceErrorKind = iota
	BraceErrorFormat
)

// BraceError reports structurally invalid placeholder delimiters
type BraceError struct {
	Kind     BraceErrorKind
	Opens    int      // Count of "{{" (unbalanced only)
	Closes   int      // Count of "}}" (unbalanced only)
	Start    int      // Offset of the offending "{{" (format only)
	End      int      // Offset of the offending "}}" (format only)
	Position Position // Position of Start (format only)
}

// Error implements the error interface.
func (e *BraceError) Error() string {
	if e.Kind == BraceErrorUnbalanced {
		return fmt.Sprintf(ErrFmtBraceCounts, ErrMsgUnbalancedBraces, e.Opens, e.Closes)
	}
	return fmt.Sprintf(ErrFmtWithPosition, ErrMsgFormatError, e.Position.String())
}

// Scanner pairs placeholder delimiters in normalized source
type Scanner struct {
	source string
	logger *zap.Logger
}

// NewScanner creates a scanner over normalized source
func NewScanner(source string, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{
		source: source,
		logger: logger,
	}
}

// Scan validates the delimiter structure and returns every placeholder in
// document order. The counts of "{{" and "}}" must match, and the i-th close
// must fall after the i-th open and before the (i+1)-th open.
func (s *Scanner) Scan() ([]Placeholder, error) {
	s.logger.Debug(LogMsgScanStart, zap.Int(LogFieldSource, len(s.source)))

	opens := indexAll(s.source, StrOpenDelim)
	closes := indexAll(s.source, StrCloseDelim)
	if len(opens) != len(closes) {
		return nil, &BraceError{
			Kind:   BraceErrorUnbalanced,
			Opens:  len(opens),
			Closes: len(closes),
		}
	}

	placeholders := make([]Placeholder, 0, len(opens))
	for i, open := range opens {
		closeAt := closes[i]
		if closeAt < open || (i+1 < len(opens) && closeAt > opens[i+1]) {
			return nil, &BraceError{
				Kind:     BraceErrorFormat,
				Start:    open,
				End:      closeAt,
				Position: PositionAt(s.source, open),
			}
		}
		placeholders = append(placeholders, Placeholder{
			Name:  s.source[open+LenOpenDelim : closeAt],
			Open:  open,
			Close: closeAt,
		})
	}

	s.logger.Debug(LogMsgScanEnd, zap.Int(LogFieldPlaceholders, len(placeholders)))
	return placeholders, nil
}

// Variables returns the declared variable names of placeholders in order of
// first appearance, without duplicates.
func Variables(placeholders []Placeholder) []string {
	seen := make(map[string]struct{}, len(placeholders))
	names := make([]string, 0, len(placeholders))
	for _, p := range placeholders {
		if !p.IsVariable() {
			continue
		}
		if _, ok := seen[p.Name]; ok {
			continue
		}
		seen[p.Name] = struct{}{}
		names = append(names, p.Name)
	}
	return names
}

// indexAll returns the offsets of all non-overlapping occurrences of sep,
// scanning left to right the same way strings.Count does.
func indexAll(s, sep string) []int {
	var offsets []int
	from := 0
	for {
		idx := strings.Index(s[from:], sep)
		if idx < 0 {
			return offsets
		}
		offsets = append(offsets, from+idx)
		from += idx + len(sep)
	}
}
