package internal

import (
	"fmt"
	"regexp"
	"sort"

	"go.uber.org/zap"
)

var (
	forOpenRegex  = regexp.MustCompile(PatternForOpen)
	forCloseRegex = regexp.MustCompile(PatternForClose)
)

// LoopBlock is one {% for item in list %} ... {% endfor %} block
type LoopBlock struct {
	Item      string // Loop variable bound per iteration
	List      string // Name of the list binding iterated over
	Start     int    // Offset of the opening tag
	BodyStart int    // Offset just past the opening tag
	BodyEnd   int    // Offset of the closing tag
	End       int    // Offset just past the closing tag
}

// Body returns the block body within source
func (b LoopBlock) Body(source string) string {
	return source[b.BodyStart:b.BodyEnd]
}

// LoopErrorKind identifies why loop tags could not be paired
type LoopErrorKind int

// Loop error kinds
const (
	LoopErrorNested LoopErrorKind = iota
	LoopErrorUnbalanced
	LoopErrorOverlap
)

// LoopError reports an invalid arrangement of loop tags
type LoopError struct {
	Kind     LoopErrorKind
	Start    int
	End      int
	Position Position
}

// Error implements the error interface.
func (e *LoopError) Error() string {
	msg := ErrMsgUnbalancedForLoop
	switch e.Kind {
	case LoopErrorNested:
		msg = ErrMsgNestedLoop
	case LoopErrorOverlap:
		msg = ErrMsgPlaceholderOverlap
	}
	return fmt.Sprintf(ErrFmtWithPosition, msg, e.Position.String())
}

type loopTag struct {
	open  bool
	start int
	end   int
	item  string
	list  string
}

// FindLoops locates loop blocks in source. Each opening tag pairs with the
// first closing tag after it. An opening tag inside an unclosed block, a
// closing tag with no open block, or a block left open are errors.
func FindLoops(source string, logger *zap.Logger) ([]LoopBlock, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var tags []loopTag
	for _, m := range forOpenRegex.FindAllStringSubmatchIndex(source, -1) {
		tags = append(tags, loopTag{
			open:  true,
			start: m[0],
			end:   m[1],
			item:  source[m[2]:m[3]],
			list:  source[m[4]:m[5]],
		})
	}
	for _, m := range forCloseRegex.FindAllStringIndex(source, -1) {
		tags = append(tags, loopTag{start: m[0], end: m[1]})
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].start < tags[j].start })

	var (
		blocks  []LoopBlock
		current *LoopBlock
	)
	for _, tag := range tags {
		if tag.open {
			if current != nil {
				return nil, newLoopError(source, LoopErrorNested, tag.start, tag.end)
			}
			current = &LoopBlock{
				Item:      tag.item,
				List:      tag.list,
				Start:     tag.start,
				BodyStart: tag.end,
			}
			continue
		}
		if current == nil {
			return nil, newLoopError(source, LoopErrorUnbalanced, tag.start, tag.end)
		}
		current.BodyEnd = tag.start
		current.End = tag.end
		blocks = append(blocks, *current)
		current = nil
	}
	if current != nil {
		return nil, newLoopError(source, LoopErrorUnbalanced, current.Start, current.BodyStart)
	}

	logger.Debug(LogMsgLoopsFound, zap.Int(LogFieldLoops, len(blocks)))
	return blocks, nil
}

// CheckPlaceholders rejects placeholders that straddle a loop tag, which would
// leave a delimiter on each side of the tag.
func CheckPlaceholders(source string, placeholders []Placeholder, blocks []LoopBlock) error {
	for _, b := range blocks {
		for _, p := range placeholders {
			if overlaps(p.Open, p.End(), b.Start, b.BodyStart) || overlaps(p.Open, p.End(), b.BodyEnd, b.End) {
				return newLoopError(source, LoopErrorOverlap, p.Open, p.Close)
			}
		}
	}
	return nil
}

func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

func newLoopError(source string, kind LoopErrorKind, start, end int) *LoopError {
	return &LoopError{
		Kind:     kind,
		Start:    start,
		End:      end,
		Position: PositionAt(source, start),
	}
}
