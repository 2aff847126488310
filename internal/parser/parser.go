package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// \p{Zs} covers the no-break spaces left by &nbsp; spacer paragraphs.
var blankLinesRegex = regexp.MustCompile(`\n[\s\p{Zs}]*\n`)

// HTMLToText renders an HTML mail body as plain text: head, style and script
// blocks are dropped, <br> and </p> become line breaks, remaining markup is
// stripped and runs of blank lines collapse to a single blank line.
func HTMLToText(body string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", err
	}

	doc.Find("head, style, script").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n\n")
	})

	text := doc.Text()
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = blankLinesRegex.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text), nil
}
