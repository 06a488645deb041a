package converter

import (
	"regexp"
	"strings"
)

var headingRegex = regexp.MustCompile(`^(#{1,6})\s`)

// ShiftHeadings shifts all markdown heading levels by delta. Positive
// delta increases depth (h2 -> h3), negative decreases. Levels clamp to
// the 1-6 range; fenced code blocks are left alone.
func ShiftHeadings(markdown string, delta int) string {
	if delta == 0 {
		return markdown
	}

	lines := strings.Split(markdown, "\n")
	inCodeFence := false
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimLeft(line, " \t"), "```") {
			inCodeFence = !inCodeFence
		}
		if inCodeFence {
			continue
		}
		lines[i] = headingRegex.ReplaceAllStringFunc(line, func(match string) string {
			level := strings.Count(match, "#") + delta
			if level < 1 {
				level = 1
			}
			if level > 6 {
				level = 6
			}
			return strings.Repeat("#", level) + " "
		})
	}
	return strings.Join(lines, "\n")
}

// NormalizeHeadings shifts all headings so the highest level becomes
// targetMin. Text without headings is returned unchanged.
func NormalizeHeadings(markdown string, targetMin int) string {
	minLevel := 7
	inCodeFence := false
	for _, line := range strings.Split(markdown, "\n") {
		if strings.HasPrefix(strings.TrimLeft(line, " \t"), "```") {
			inCodeFence = !inCodeFence
			continue
		}
		if inCodeFence {
			continue
		}
		if m := headingRegex.FindStringSubmatch(line); m != nil {
			if level := len(m[1]); level < minLevel {
				minLevel = level
			}
		}
	}
	if minLevel > 6 {
		return markdown
	}
	return ShiftHeadings(markdown, targetMin-minLevel)
}
