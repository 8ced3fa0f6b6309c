package content

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// blockElements each start a new line of extracted text
const blockElements = "p, div, li, tr, h1, h2, h3, h4, h5, h6, pre, blockquote, section, article"

// readable keeps only layout elements; scripts, styles, forms, media and
// every attribute are dropped along with the content of script and style.
var readable = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "div", "br", "span", "b", "i", "em", "strong", "code",
		"ul", "ol", "li", "table", "thead", "tbody", "tr", "td", "th",
		"h1", "h2", "h3", "h4", "h5", "h6", "pre", "blockquote", "section", "article")
	return p
}()

// HTMLText renders an HTML page as plain text: the title on the first
// line, then one line per block of visible body text.
func HTMLText(page string) string {
	var lines []string
	if title := pageTitle(page); title != "" {
		lines = append(lines, title)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(readable.Sanitize(page)))
	if err != nil {
		return strings.Join(append(lines, normalizeWhitespace(bluemonday.StrictPolicy().Sanitize(page))), "\n")
	}

	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find(blockElements).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	for _, line := range strings.Split(doc.Text(), "\n") {
		if line = normalizeWhitespace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func pageTitle(page string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return ""
	}
	title := normalizeWhitespace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("meta[property='og:title']").AttrOr("content", ""))
	}
	return title
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
