package sources

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// CatalogEntry is one recurring boilerplate paragraph. Literal entries match
// case-insensitively with any run of whitespace; Pattern entries are regular
// expressions.
type CatalogEntry struct {
	Name    string `yaml:"name"`
	Literal string `yaml:"literal,omitempty"`
	Pattern string `yaml:"pattern,omitempty"`
}

type catalogFile struct {
	Boilerplate []CatalogEntry `yaml:"boilerplate"`
}

// DefaultEntries are the calls-to-action, broadcast schedules and hosting
// notices that recur across the feed, info and web texts.
var DefaultEntries = []CatalogEntry{
	{
		Name:    "ivoox-exclusive-cta",
		Pattern: `(?is)escucha (?:este|el) episodio completo y accede a todo el contenido exclusivo.*?(?:https?://\S+|\n\s*\n|$)`,
	},
	{
		Name:    "ivoox-support-cta",
		Pattern: `(?i)este audio es un podcast exclusivo para (?:suscriptores|fans)[^\n]*`,
	},
	{
		Name:    "ivoox-fans",
		Literal: "Apoya este podcast y accede a contenido exclusivo haciéndote fan.",
	},
	{
		Name:    "subscribe-cta",
		Pattern: `(?i)(?:suscr[íi]bete|subscribe)(?: a| to)? (?:nuestro|este|our|the) (?:podcast|canal|feed)[^\n]*`,
	},
	{
		Name:    "broadcast-schedule",
		Pattern: `(?i)coffee break:? señal y ruido se emite[^\n]*`,
	},
	{
		Name:    "acast-privacy",
		Pattern: `(?i)hosted on acast\.? see acast\.com/privacy[^\n]*`,
	},
	{
		Name:    "privacy-opt-out",
		Pattern: `(?i)privacy\s*&\s*opt-out:\s*\S+`,
	},
	{
		Name:    "patreon-cta",
		Pattern: `(?i)(?:puedes )?(?:apoyarnos|hazte mecenas|hacerte mecenas) en\s+\S+`,
	},
}

// Catalog strips known boilerplate spans from source text
type Catalog struct {
	names    []string
	patterns []*regexp.Regexp
}

var (
	blankLines      = regexp.MustCompile(`\n[ \t]*\n(?:[ \t]*\n)+`)
	trailingSpaces  = regexp.MustCompile(`[ \t]+\n`)
	whitespaceInLit = regexp.MustCompile(`\s+`)
)

// NewCatalog compiles entries into a catalog
func NewCatalog(entries []CatalogEntry) (*Catalog, error) {
	c := &Catalog{}
	for _, e := range entries {
		var expr string
		switch {
		case e.Pattern != "":
			expr = e.Pattern
		case strings.TrimSpace(e.Literal) != "":
			expr = literalPattern(e.Literal)
		default:
			return nil, fmt.Errorf("boilerplate entry %q has neither literal nor pattern", e.Name)
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("boilerplate entry %q: %w", e.Name, err)
		}
		c.names = append(c.names, e.Name)
		c.patterns = append(c.patterns, re)
	}
	return c, nil
}

// DefaultCatalog returns the built-in catalog
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultEntries)
	if err != nil {
		panic(err)
	}
	return c
}

// LoadCatalog returns the built-in entries plus those in the YAML file at
// path. A missing file is not an error.
func LoadCatalog(path string) (*Catalog, error) {
	entries := append([]CatalogEntry(nil), DefaultEntries...)
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read boilerplate catalog: %w", err)
		default:
			var file catalogFile
			if err := yaml.Unmarshal(data, &file); err != nil {
				return nil, fmt.Errorf("failed to parse boilerplate catalog %s: %w", path, err)
			}
			entries = append(entries, file.Boilerplate...)
		}
	}
	return NewCatalog(entries)
}

// Len returns the number of entries
func (c *Catalog) Len() int {
	return len(c.patterns)
}

// Strip removes every catalog match from text and tidies the blank lines
// left behind.
func (c *Catalog) Strip(text string) string {
	if c == nil {
		return text
	}
	for _, re := range c.patterns {
		text = re.ReplaceAllString(text, "")
	}
	text = trailingSpaces.ReplaceAllString(text, "\n")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Matches returns the names of the entries found in text
func (c *Catalog) Matches(text string) []string {
	var out []string
	for i, re := range c.patterns {
		if re.MatchString(text) {
			out = append(out, c.names[i])
		}
	}
	return out
}

func literalPattern(literal string) string {
	words := whitespaceInLit.Split(strings.TrimSpace(literal), -1)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return `(?i)` + strings.Join(words, `\s+`)
}
