package sources

import (
	"net/url"
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`https?://[^\s'"<>]+`)

// ExtractLinks returns the URL-shaped tokens of text in order, with
// punctuation captured from the surrounding prose removed and exact
// duplicates dropped.
func ExtractLinks(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, raw := range urlPattern.FindAllString(text, -1) {
		link := TrimLink(raw)
		if link == "" || seen[link] {
			continue
		}
		seen[link] = true
		out = append(out, link)
	}
	return out
}

// TrimLink drops trailing sentence punctuation and unbalanced closing
// brackets: "https://x.org/a)," becomes "https://x.org/a" while
// "https://en.wikipedia.org/wiki/Foo_(bar)" is kept whole.
func TrimLink(link string) string {
	for link != "" {
		last := link[len(link)-1]
		switch {
		case strings.IndexByte(".,;:!?*", last) >= 0:
			link = link[:len(link)-1]
		case last == ')' && strings.Count(link, "(") < strings.Count(link, ")"):
			link = link[:len(link)-1]
		case last == ']' && strings.Count(link, "[") < strings.Count(link, "]"):
			link = link[:len(link)-1]
		default:
			if link == "http://" || link == "https://" {
				return ""
			}
			return link
		}
	}
	return ""
}

// LinkFilter drops links to excluded domains (and their subdomains) and
// known promotional URLs.
type LinkFilter struct {
	domains []string
	promo   map[string]bool
}

// NewLinkFilter creates a filter
func NewLinkFilter(excludedDomains, promoLinks []string) *LinkFilter {
	f := &LinkFilter{promo: make(map[string]bool)}
	for _, d := range excludedDomains {
		d = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(d), "www."))
		if d != "" {
			f.domains = append(f.domains, d)
		}
	}
	for _, p := range promoLinks {
		if p = TrimLink(strings.TrimSpace(p)); p != "" {
			f.promo[p] = true
		}
	}
	return f
}

// Allow reports whether link should be kept
func (f *LinkFilter) Allow(link string) bool {
	if f == nil {
		return true
	}
	if f.promo[link] {
		return false
	}
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	for _, d := range f.domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return false
		}
	}
	return true
}

// Apply returns the allowed links, preserving order
func (f *LinkFilter) Apply(links []string) []string {
	out := make([]string, 0, len(links))
	for _, l := range links {
		if f.Allow(l) {
			out = append(out, l)
		}
	}
	return out
}
