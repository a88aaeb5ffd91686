package document

import (
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("^ {0,3}(```|~~~)")

// DetectHardBreakStyle scans for forced line breaks and reports which
// marker the document uses: a trailing backslash or two trailing
// spaces. The first marker found wins; documents without any marker
// report "unknown". Fenced code blocks are ignored, since trailing
// whitespace there is content, not markup.
func DetectHardBreakStyle(content string) HardBreakStyle {
	inFence := false
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if fenceRe.MatchString(line) {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if endsWithBackslashBreak(line) {
			return HardBreakBackslash
		}
		if endsWithSpaceBreak(line) {
			return HardBreakTwoSpaces
		}
	}
	return HardBreakUnknown
}

// NormalizeHardBreaks rewrites every hard-break marker to the target
// style. It must run on content whose line endings have not been
// converted yet: marker detection depends on what immediately precedes
// the newline. Unknown targets leave content untouched.
func NormalizeHardBreaks(content string, target HardBreakStyle) string {
	if target != HardBreakBackslash && target != HardBreakTwoSpaces {
		return content
	}

	lines := strings.Split(content, "\n")
	inFence := false

	for i, line := range lines {
		// The final element is the tail after the last newline; a
		// marker there has no break to force.
		if i == len(lines)-1 {
			break
		}

		hadCR := strings.HasSuffix(line, "\r")
		line = strings.TrimSuffix(line, "\r")

		if fenceRe.MatchString(line) {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		switch {
		case endsWithBackslashBreak(line) && target == HardBreakTwoSpaces:
			line = strings.TrimSuffix(line, "\\") + "  "
		case endsWithSpaceBreak(line) && target == HardBreakBackslash:
			line = strings.TrimRight(line, " ") + "\\"
		default:
			continue
		}

		if hadCR {
			line += "\r"
		}
		lines[i] = line
	}

	return strings.Join(lines, "\n")
}

// ResolveHardBreak picks the style to write, mirroring
// ResolveLineEnding: explicit preferences win, "preserve" keeps the
// detected style, and a document without markers stays unknown so
// normalization leaves it alone.
func ResolveHardBreak(preference string, detected HardBreakStyle) HardBreakStyle {
	switch preference {
	case "backslash":
		return HardBreakBackslash
	case "two-spaces":
		return HardBreakTwoSpaces
	default:
		return detected
	}
}

// endsWithBackslashBreak reports whether the line ends in a markdown
// hard break spelled as a backslash. An even run of backslashes is a
// sequence of escaped backslashes, not a break.
func endsWithBackslashBreak(line string) bool {
	n := 0
	for i := len(line) - 1; i >= 0 && line[i] == '\\'; i-- {
		n++
	}
	if n == 0 {
		return false
	}
	// A line that is nothing but backslashes is not inside a
	// paragraph's soft flow; treat it as content.
	if n == len(line) {
		return false
	}
	return n%2 == 1
}

// endsWithSpaceBreak reports whether the line ends in two or more
// spaces with at least one non-blank character before them.
func endsWithSpaceBreak(line string) bool {
	trimmed := strings.TrimRight(line, " ")
	if trimmed == "" {
		return false
	}
	return len(line)-len(trimmed) >= 2
}
