package metrics

import "strings"

// lineCommentMarkers start a comment that runs to the end of the line.
var lineCommentMarkers = []string{"#", "//"}

// CommentDensity returns the fraction of non-blank lines in code that are
// comment material: line comments, lines inside or bounding a /* */ block,
// and lines that are nothing but a triple-quoted string. Blank lines are not
// counted at all, so empty or whitespace-only input yields 0.
func CommentDensity(code string) float64 {
	if strings.TrimSpace(code) == "" {
		return 0
	}

	var total, comments int
	inBlock := false

	for _, line := range strings.Split(code, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		total++

		switch {
		case strings.Contains(stripped, "/*") && !strings.Contains(stripped, "*/"):
			inBlock = true
			comments++
		case inBlock && strings.Contains(stripped, "*/"):
			inBlock = false
			comments++
		case inBlock:
			comments++
		case hasLineCommentMarker(stripped):
			comments++
		case isDocstringLine(stripped):
			comments++
		}
	}

	if total == 0 {
		return 0
	}
	return float64(comments) / float64(total)
}

func hasLineCommentMarker(line string) bool {
	for _, m := range lineCommentMarkers {
		if strings.HasPrefix(line, m) {
			return true
		}
	}
	return false
}

// isDocstringLine matches a line that opens and closes with the same
// triple-quote delimiter, including a delimiter standing alone.
func isDocstringLine(line string) bool {
	for _, q := range []string{`"""`, `'''`} {
		if strings.HasPrefix(line, q) && strings.HasSuffix(line, q) {
			return true
		}
	}
	return false
}
