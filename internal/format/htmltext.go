package format

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mitchellh/go-wordwrap"
)

var blockElements = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "header": true,
	"footer": true, "ul": true, "ol": true, "li": true, "table": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true,
}

// HTMLToText converts an HTML fragment into plain text. Block elements become
// separate paragraphs, list items are prefixed with "- " and every paragraph
// is wrapped at width characters. A width of zero disables wrapping.
func HTMLToText(src string, width uint) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var (
		paragraphs []string
		current    strings.Builder
	)
	flush := func() {
		text := strings.Join(strings.Fields(current.String()), " ")
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
		current.Reset()
	}

	var walk func(*goquery.Selection)
	walk = func(sel *goquery.Selection) {
		sel.Contents().Each(func(_ int, node *goquery.Selection) {
			name := goquery.NodeName(node)
			switch {
			case name == "#text":
				current.WriteString(node.Text())
			case name == "br":
				flush()
			case name == "script" || name == "style" || name == "head":
			case blockElements[name]:
				flush()
				if name == "li" {
					current.WriteString("- ")
				}
				walk(node)
				flush()
			default:
				walk(node)
			}
		})
	}
	walk(doc.Selection)
	flush()

	if width > 0 {
		for i, p := range paragraphs {
			paragraphs[i] = wordwrap.WrapString(p, width)
		}
	}
	return strings.Join(paragraphs, "\n"), nil
}
