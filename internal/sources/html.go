package sources

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var htmlTag = regexp.MustCompile(`(?i)<(?:p|br|div|a\s|li|ul|ol|h[1-6]|span|strong|em|b|i|html|body|article|section)\b[^>]*>`)

// looksLikeHTML reports whether text carries markup rather than plain prose
func looksLikeHTML(text string) bool {
	return htmlTag.MatchString(text)
}

// htmlDocument is the plain-text rendition of an HTML fragment
type htmlDocument struct {
	Title string
	Text  string
	Links []string
}

// parseHTML renders markup to text, keeping block boundaries as line breaks
// so timestamp markers on separate paragraphs stay on separate lines.
func parseHTML(markup string) (htmlDocument, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return htmlDocument{}, err
	}

	var out htmlDocument
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		out.Title = collapseSpaces(h1)
	} else if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		out.Title = collapseSpaces(t)
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			out.Links = append(out.Links, strings.TrimSpace(href))
		}
	})

	doc.Find("head, script, style, title, h1").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, tr, h2, h3, h4, h5, h6, article, section").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	lines := strings.Split(doc.Text(), "\n")
	kept := lines[:0]
	for _, l := range lines {
		if l = collapseSpaces(l); l != "" {
			kept = append(kept, l)
		}
	}
	out.Text = strings.Join(kept, "\n")
	return out, nil
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
