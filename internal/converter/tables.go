package converter

import (
	"fmt"
	"regexp"
	"strings"
)

// Markdown tables rarely survive a 120-column wrap, so converted tables
// become per-row lists of "**Header**: value" pairs instead. Marker bytes
// tag pair lines during conversion so the wrapper and the final pass know
// which lines need a hard line break appended.
const (
	tableBreakMarker   = "\x01"
	tableNoBreakMarker = "\x02"
)

var tableSeparatorRegex = regexp.MustCompile(`^\|?[\s:\-]+\|[\s:\-\|]*$`)

// convertTablesToLists rewrites every markdown table into a list of
// header/value pairs, one block per original row.
func convertTablesToLists(markdown string) string {
	lines := strings.Split(markdown, "\n")
	var output []string

	for idx := 0; idx < len(lines); {
		line := lines[idx]
		if looksLikeTableRow(line) && idx+1 < len(lines) && looksLikeTableSeparator(lines[idx+1]) {
			headers := splitTableRow(line)
			idx += 2

			var rows [][]string
			for idx < len(lines) && looksLikeTableRow(lines[idx]) {
				rows = append(rows, splitTableRow(lines[idx]))
				idx++
			}
			output = append(output, tableRowsToList(headers, rows)...)
			continue
		}

		output = append(output, line)
		idx++
	}

	return strings.Join(output, "\n")
}

func looksLikeTableRow(line string) bool {
	return strings.Contains(line, "|") && len(splitTableRow(line)) > 0
}

func looksLikeTableSeparator(line string) bool {
	return tableSeparatorRegex.MatchString(strings.TrimSpace(line))
}

func splitTableRow(line string) []string {
	stripped := strings.TrimSpace(line)
	stripped = strings.TrimPrefix(stripped, "|")
	stripped = strings.TrimSuffix(stripped, "|")

	parts := strings.Split(stripped, "|")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}

// stripBold removes surrounding ** markers; the markdown conversion may
// bold <th> content.
func stripBold(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "**") && strings.HasSuffix(s, "**") && len(s) > 4 {
		return strings.TrimSpace(s[2 : len(s)-2])
	}
	return s
}

func tableRowsToList(headers []string, rows [][]string) []string {
	if len(rows) == 0 {
		return nil
	}

	cleanHeaders := make([]string, len(headers))
	allEmpty := true
	for i, h := range headers {
		cleanHeaders[i] = stripBold(h)
		if cleanHeaders[i] != "" {
			allEmpty = false
		}
	}

	// Headerless table: promote the first data row to headers.
	if allEmpty {
		candidate := make([]string, len(rows[0]))
		anySet := false
		for i, cell := range rows[0] {
			candidate[i] = stripBold(cell)
			if candidate[i] != "" {
				anySet = true
			}
		}
		if anySet {
			cleanHeaders = candidate
			rows = rows[1:]
		}
	}

	if len(rows) == 0 {
		return nil
	}

	var rowBlocks [][]string
	for _, row := range rows {
		var pairs []string
		for i := 0; i < len(row) || i < len(cleanHeaders); i++ {
			var cell string
			if i < len(row) {
				cell = row[i]
			}
			if cell == "" {
				continue
			}
			header := fmt.Sprintf("Column %d", i+1)
			if i < len(cleanHeaders) && cleanHeaders[i] != "" {
				header = cleanHeaders[i]
			}
			pairs = append(pairs, fmt.Sprintf("**%s**: %s", header, cell))
		}
		if len(pairs) > 0 {
			rowBlocks = append(rowBlocks, pairs)
		}
	}

	if len(rowBlocks) == 0 {
		return nil
	}

	var converted []string
	for rowIdx, pairs := range rowBlocks {
		for lineIdx, pair := range pairs {
			lastOverall := rowIdx == len(rowBlocks)-1 && lineIdx == len(pairs)-1
			marker := tableBreakMarker
			if lastOverall {
				marker = tableNoBreakMarker
			}
			converted = append(converted, marker+pair)
		}
		if rowIdx < len(rowBlocks)-1 {
			converted = append(converted, "")
		}
	}
	return converted
}

func tableMarker(line string) string {
	if strings.HasPrefix(line, tableBreakMarker) || strings.HasPrefix(line, tableNoBreakMarker) {
		return line[:1]
	}
	return ""
}

func stripTableMarker(line string) string {
	if tableMarker(line) != "" {
		return line[1:]
	}
	return line
}

// applyTableBreakMarkers turns break markers into markdown hard line
// breaks (trailing double space) and drops the marker bytes.
func applyTableBreakMarkers(markdown string) string {
	lines := strings.Split(markdown, "\n")
	for i, line := range lines {
		marker := tableMarker(line)
		content := stripTableMarker(line)
		if marker == tableBreakMarker {
			lines[i] = content + "  "
			continue
		}
		lines[i] = content
	}
	return strings.Join(lines, "\n")
}
