package converter

import (
	"regexp"
	"strings"

	htmlconv "github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"github.com/ctrlmap-tools/cmapsync/internal/utils"
)

// MaxLineLength is the soft wrap column for rendered markdown.
const MaxLineLength = 120

// boldNbspRegex matches <strong>&nbsp;</strong> style word separators the
// ControlMap editor inserts between words.
var boldNbspRegex = regexp.MustCompile(`(?i)<(?:strong|b)>(?:\s|&nbsp;)+</(?:strong|b)>`)

// htmlConverter needs the table plugin on top of the defaults so that
// <table> markup reaches convertTablesToLists as pipe tables.
var htmlConverter = htmlconv.NewConverter(
	htmlconv.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	),
)

// Converter turns doubly-encoded HTML fragments into clean markdown.
type Converter struct {
	logger *utils.Logger
}

// New creates a Converter. A nil logger disables decode warnings.
func New(logger *utils.Logger) *Converter {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Converter{logger: logger.WithComponent("converter")}
}

// Decode reverses the double URL-encoding of an HTML field and converts
// the recovered fragment to markdown. Conversion is best-effort: malformed
// HTML degrades to stripped-tag plain text with a logged warning, it never
// fails the export.
func (c *Converter) Decode(rawField string) string {
	return c.ConvertHTML(DecodeDescription(rawField))
}

// ConvertHTML converts an already-decoded HTML fragment to markdown.
func (c *Converter) ConvertHTML(html string) string {
	if html == "" {
		return ""
	}

	markdown, err := HTMLToMarkdown(html)
	if err != nil {
		c.logger.Warn().Err(err).Msg("HTML conversion failed, falling back to plain text")
		return strings.TrimSpace(StripTags(html))
	}
	return markdown
}

// HTMLToMarkdown converts HTML to markdown, cleaning up editor artifacts:
// soft hyphens stripped, non-breaking spaces normalized, tables converted
// to key/value lists, long lines soft-wrapped at 120 columns.
func HTMLToMarkdown(html string) (string, error) {
	if html == "" {
		return "", nil
	}

	html = boldNbspRegex.ReplaceAllString(html, " ")

	markdown, err := htmlConverter.ConvertString(html)
	if err != nil {
		return "", err
	}

	markdown = strings.ReplaceAll(markdown, "­", "")
	markdown = strings.ReplaceAll(markdown, " ", " ")
	markdown = strings.ReplaceAll(markdown, "&nbsp;", " ")
	markdown = convertTablesToLists(markdown)
	markdown = wrapMarkdown(markdown, MaxLineLength)
	markdown = trimLineEnds(markdown)
	markdown = applyTableBreakMarkers(markdown)

	for strings.Contains(markdown, "\n\n\n") {
		markdown = strings.ReplaceAll(markdown, "\n\n\n", "\n\n")
	}

	return strings.TrimSpace(markdown), nil
}

// StripTags extracts the text content of an HTML fragment, dropping all
// markup. Used as the degradation path for malformed HTML.
func StripTags(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return stripTagsCrude(html)
	}
	return doc.Text()
}

var tagRegex = regexp.MustCompile(`<[^>]*>`)

func stripTagsCrude(html string) string {
	return tagRegex.ReplaceAllString(html, "")
}

func trimLineEnds(markdown string) string {
	lines := strings.Split(markdown, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
