package internal

import (
	"strings"

	"go.uber.org/zap"
)

// normalizeReplacer strips one space or tab from the inside of each delimiter.
var normalizeReplacer = strings.NewReplacer(
	StrOpenSpace, StrOpenDelim,
	StrOpenTab, StrOpenDelim,
	StrSpaceClose, StrCloseDelim,
	StrTabClose, StrCloseDelim,
)

// Normalize removes leading and trailing spaces and tabs inside every {{ }}
// placeholder. Each pass strips one layer and passes repeat until nothing
// changes, so arbitrary runs and mixes are handled. Loop tags and text outside
// the delimiters are left untouched.
func Normalize(source string) string {
	out, _ := normalize(source)
	return out
}

// NormalizeWithLogger is Normalize with a debug record of the pass count.
func NormalizeWithLogger(source string, logger *zap.Logger) string {
	out, passes := normalize(source)
	if logger != nil {
		logger.Debug(LogMsgNormalized,
			zap.Int(LogFieldSource, len(source)),
			zap.Int(LogFieldPasses, passes))
	}
	return out
}

func normalize(source string) (string, int) {
	cur := source
	passes := 0
	for {
		passes++
		next := normalizeReplacer.Replace(cur)
		if next == cur {
			return next, passes
		}
		cur = next
	}
}
