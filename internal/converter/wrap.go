package converter

import "strings"

// wrapMarkdown soft-wraps long lines at the given width. Headings,
// blockquotes, code fences, indented code and horizontal rules are
// preserved verbatim; list items get a hanging indent; table pair lines
// reserve room for the hard break appended later.
func wrapMarkdown(markdown string, width int) string {
	var wrapped []string
	inCodeFence := false

	for _, line := range strings.Split(markdown, "\n") {
		marker := tableMarker(line)
		cleanLine := stripTableMarker(line)

		if strings.HasPrefix(strings.TrimLeft(cleanLine, " \t"), "```") {
			inCodeFence = !inCodeFence
			wrapped = append(wrapped, line)
			continue
		}
		if cleanLine == "" {
			wrapped = append(wrapped, "")
			continue
		}

		effectiveWidth := width
		if marker == tableBreakMarker {
			effectiveWidth = width - 2
		}

		if inCodeFence || len(cleanLine) <= effectiveWidth || shouldPreserveLine(cleanLine) {
			wrapped = append(wrapped, line)
			continue
		}

		stripped := strings.TrimLeft(cleanLine, " \t")
		leading := cleanLine[:len(cleanLine)-len(stripped)]

		subsequent := leading
		if strings.HasPrefix(stripped, "- ") || strings.HasPrefix(stripped, "* ") {
			subsequent = leading + "  "
		}

		lines := fill(stripped, effectiveWidth, leading, subsequent)
		if marker != "" {
			lines[0] = marker + lines[0]
		}
		wrapped = append(wrapped, lines...)
	}

	return strings.Join(wrapped, "\n")
}

// fill greedily wraps text into lines of at most width columns, never
// breaking inside a word. A single word longer than the width keeps its
// own line.
func fill(text string, width int, initialIndent, subsequentIndent string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := initialIndent + words[0]
	indent := subsequentIndent

	for _, word := range words[1:] {
		if len(current)+1+len(word) <= width {
			current += " " + word
			continue
		}
		lines = append(lines, current)
		current = indent + word
	}
	lines = append(lines, current)

	return lines
}

func shouldPreserveLine(line string) bool {
	stripped := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(stripped, "#") ||
		strings.HasPrefix(stripped, ">") ||
		strings.HasPrefix(stripped, "```") {
		return true
	}
	if strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t") {
		return true
	}
	return stripped == "---"
}
