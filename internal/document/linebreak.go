package document

import "strings"

// DetectLineEnding inspects content and reports its newline style.
// Content without any newline is "unknown": there is nothing to
// preserve, so the saved style decides.
func DetectLineEnding(content string) LineEnding {
	lfCount := strings.Count(content, "\n")
	if lfCount == 0 {
		return LineEndingUnknown
	}
	crlfCount := strings.Count(content, "\r\n")
	if crlfCount == lfCount {
		return LineEndingCRLF
	}
	return LineEndingLF
}

// NormalizeLineEndings rewrites every newline to the target style.
// Unknown targets leave content untouched. Normalization first folds
// CRLF to LF so mixed input converges instead of doubling.
func NormalizeLineEndings(content string, target LineEnding) string {
	if target == LineEndingUnknown {
		return content
	}
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	if target == LineEndingCRLF {
		normalized = strings.ReplaceAll(normalized, "\n", "\r\n")
	}
	return normalized
}

// ResolveLineEnding picks the style to write: the preference wins
// unless it is "preserve", in which case the document's detected style
// is kept, defaulting to LF when nothing was ever detected.
func ResolveLineEnding(preference string, detected LineEnding) LineEnding {
	switch preference {
	case "lf":
		return LineEndingLF
	case "crlf":
		return LineEndingCRLF
	default:
		if detected == LineEndingUnknown {
			return LineEndingLF
		}
		return detected
	}
}
