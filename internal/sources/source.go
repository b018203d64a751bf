// Package sources turns the raw per-part texts (feed description, info block
// and web page) into uniform extractable sources with boilerplate removed.
package sources

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/killallgit/coffeebreak-api/internal/models"
	"github.com/mmcdole/gofeed"
)

// Source is the extraction surface shared by every source variant
type Source interface {
	Kind() models.SourceKind
	// ExtractTitle returns the episode title the source states, or ""
	ExtractTitle() string
	// ExtractTopics returns the topic prose: the body text that carries the
	// timestamp markers
	ExtractTopics() string
	// ExtractParticipants returns the raw participant lists the source
	// labels, one string per list
	ExtractParticipants() []string
	// ExtractLinks returns every http(s) link found in the source
	ExtractLinks() []string
	// Empty reports whether boilerplate removal left nothing
	Empty() bool
}

var (
	episodeTitleLine = regexp.MustCompile(`(?i)^ep\s?\d{2,3}(?:_[a-z]+)?\s*:`)
	participantsLine = regexp.MustCompile(`(?im)^[ \t]*(?:contertulios|contertulias|contertulio|tertulianos|participantes|participan)[ \t]*:[ \t]*(.*)$`)
	creditsTail      = regexp.MustCompile(`(?i)\s*\b(?:imagen|image|im[aá]genes|foto|portada)\b.*$`)
	feedMarkup       = regexp.MustCompile(`(?i)<\?xml|<rss\b|<feed\b|<item\b|<entry\b`)
	xmlDeclaration   = regexp.MustCompile(`<\?xml[^>]*\?>`)
)

// document holds the fields common to all variants after parsing
type document struct {
	kind         models.SourceKind
	title        string
	prose        string
	participants []string
	links        []string
}

func (d *document) Kind() models.SourceKind       { return d.kind }
func (d *document) ExtractTitle() string          { return d.title }
func (d *document) ExtractTopics() string         { return d.prose }
func (d *document) ExtractParticipants() []string { return d.participants }
func (d *document) ExtractLinks() []string        { return d.links }

func (d *document) Empty() bool {
	return d.title == "" && d.prose == "" && len(d.participants) == 0
}

// RSS is a feed item description, either as plain text or as feed XML
type RSS struct{ document }

// Info is the plain-text info block that starts with the episode title line
type Info struct{ document }

// Web is the episode web page, either as HTML or as its extracted text
type Web struct{ document }

// ParseRSS builds the feed source. Feed XML is decoded with gofeed and the
// first item used; anything else is treated as the item description.
func ParseRSS(text string, catalog *Catalog) (*RSS, error) {
	var title string
	var hrefs []string
	body := text

	if feedMarkup.MatchString(text) {
		item, err := parseFeedItem(text)
		if err != nil {
			return nil, fmt.Errorf("failed to parse feed item: %w", err)
		}
		title = item.Title
		body = item.Description
		if len(strings.TrimSpace(item.Content)) > len(strings.TrimSpace(body)) {
			body = item.Content
		}
		if item.Link != "" {
			hrefs = append(hrefs, item.Link)
		}
	}

	if looksLikeHTML(body) {
		doc, err := parseHTML(body)
		if err != nil {
			return nil, fmt.Errorf("failed to parse feed description: %w", err)
		}
		body = doc.Text
		hrefs = append(hrefs, doc.Links...)
	}

	return &RSS{build(models.SourceRSS, title, body, hrefs, catalog, false)}, nil
}

// ParseInfo builds the info-block source
func ParseInfo(text string, catalog *Catalog) (*Info, error) {
	body := text
	var hrefs []string
	if looksLikeHTML(body) {
		doc, err := parseHTML(body)
		if err != nil {
			return nil, fmt.Errorf("failed to parse info block: %w", err)
		}
		body = doc.Text
		hrefs = doc.Links
		if doc.Title != "" {
			body = doc.Title + "\n" + body
		}
	}
	return &Info{build(models.SourceInfo, "", body, hrefs, catalog, true)}, nil
}

// ParseWeb builds the web-page source. HTML is rendered with goquery and the
// page heading used as the title.
func ParseWeb(text string, catalog *Catalog) (*Web, error) {
	var title string
	var hrefs []string
	body := text
	if looksLikeHTML(body) {
		doc, err := parseHTML(body)
		if err != nil {
			return nil, fmt.Errorf("failed to parse web page: %w", err)
		}
		title = doc.Title
		body = doc.Text
		hrefs = doc.Links
	}
	return &Web{build(models.SourceWeb, title, body, hrefs, catalog, false)}, nil
}

// Parse dispatches to the variant constructor for kind
func Parse(kind models.SourceKind, text string, catalog *Catalog) (Source, error) {
	switch kind {
	case models.SourceRSS:
		return ParseRSS(text, catalog)
	case models.SourceInfo:
		return ParseInfo(text, catalog)
	case models.SourceWeb:
		return ParseWeb(text, catalog)
	default:
		return nil, fmt.Errorf("unknown source kind %q", kind)
	}
}

// Set groups the sources of one part. A nil field means the part carried no
// text for that source.
type Set struct {
	RSS  Source
	Info Source
	Web  Source
}

// FromPart parses every non-blank source text of part
func FromPart(part models.PartBundle, catalog *Catalog) (Set, error) {
	var set Set
	texts := []struct {
		kind models.SourceKind
		text string
		dst  *Source
	}{
		{models.SourceRSS, part.RSS, &set.RSS},
		{models.SourceInfo, part.Info, &set.Info},
		{models.SourceWeb, part.Web, &set.Web},
	}
	for _, t := range texts {
		if strings.TrimSpace(t.text) == "" {
			continue
		}
		src, err := Parse(t.kind, t.text, catalog)
		if err != nil {
			return Set{}, fmt.Errorf("%s source of %s: %w", t.kind, part.EpisodeID, err)
		}
		if !src.Empty() {
			*t.dst = src
		}
	}
	return set, nil
}

// All returns the non-nil sources in info, rss, web order
func (s Set) All() []Source {
	var out []Source
	for _, src := range []Source{s.Info, s.RSS, s.Web} {
		if src != nil {
			out = append(out, src)
		}
	}
	return out
}

// build runs the shared extraction steps over already-decoded text.
// leadingTitle makes the first remaining line the title unconditionally;
// otherwise it is taken only when it reads like an episode title line.
func build(kind models.SourceKind, title, body string, hrefs []string, catalog *Catalog, leadingTitle bool) document {
	body = catalog.Strip(normalizeNewlines(body))
	title = collapseSpaces(catalog.Strip(title))

	d := document{kind: kind}
	d.links = mergeLinks(ExtractLinks(body), hrefs)

	for _, m := range participantsLine.FindAllStringSubmatch(body, -1) {
		if list := cleanParticipantList(m[1]); list != "" {
			d.participants = append(d.participants, list)
		}
	}
	body = participantsLine.ReplaceAllString(body, "")

	lines := strings.Split(body, "\n")
	first := -1
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			first = i
			break
		}
	}
	if title == "" && first >= 0 {
		candidate := collapseSpaces(lines[first])
		if leadingTitle || episodeTitleLine.MatchString(candidate) {
			title = candidate
			lines = append(lines[:first:first], lines[first+1:]...)
		}
	}

	d.title = title
	d.prose = strings.TrimSpace(strings.Join(lines, "\n"))
	return d
}

func cleanParticipantList(list string) string {
	list = creditsTail.ReplaceAllString(list, "")
	return strings.Trim(collapseSpaces(list), " .;,")
}

func mergeLinks(found, hrefs []string) []string {
	seen := make(map[string]bool, len(found))
	out := make([]string, 0, len(found)+len(hrefs))
	for _, l := range found {
		seen[l] = true
		out = append(out, l)
	}
	for _, h := range hrefs {
		if !strings.HasPrefix(h, "http://") && !strings.HasPrefix(h, "https://") {
			continue
		}
		if h = TrimLink(h); h != "" && !seen[h] {
			seen[h] = true
			out = append(out, h)
		}
	}
	return out
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\r", "\n")
}

func parseFeedItem(text string) (*gofeed.Item, error) {
	doc := text
	lower := strings.ToLower(text)
	if !strings.Contains(lower, "<rss") && !strings.Contains(lower, "<feed") {
		body := xmlDeclaration.ReplaceAllString(text, "")
		doc = `<rss version="2.0"><channel><title>item</title>` + body + `</channel></rss>`
	}
	feed, err := gofeed.NewParser().ParseString(doc)
	if err != nil {
		return nil, err
	}
	if len(feed.Items) == 0 {
		return nil, fmt.Errorf("feed has no items")
	}
	return feed.Items[0], nil
}
