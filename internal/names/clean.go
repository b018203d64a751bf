package names

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// conjunctionSplit separates names accidentally joined into one field
	conjunctionSplit = regexp.MustCompile(`(?i)\s+(?:y|and|e|&)\s+|\s*[,;/]\s*|\s+-\s+`)

	whitespaceRun = regexp.MustCompile(`\s+`)
)

// particles stay lower-case inside a name ("Miguel de Unamuno")
var particles = map[string]bool{
	"de": true, "del": true, "la": true, "las": true, "los": true, "y": true, "van": true, "von": true,
}

// surnameParticles may open a surname ("De la Fuente") and are kept at the
// start of a name when a word follows them
var surnameParticles = map[string]bool{
	"de": true, "del": true, "la": true, "las": true, "los": true, "van": true, "von": true,
}

// noiseWords are connectives and prose captured at the edge of a name
var noiseWords = map[string]bool{
	"y": true, "and": true, "e": true, "con": true, "with": true, "por": true,
	"de": true, "del": true, "el": true, "la": true, "los": true, "las": true,
	"the": true, "dr": true, "dra": true, "prof": true,
}

// Split breaks a raw participant field on explicit conjunctions and list
// separators.
func Split(raw string) []string {
	var out []string
	for _, part := range conjunctionSplit.Split(raw, -1) {
		if strings.TrimSpace(part) != "" {
			out = append(out, part)
		}
	}
	return out
}

// Clean trims, collapses spaces, strips edge noise and title-cases a name.
// Clean is idempotent.
func Clean(raw string) string {
	s := raw
	for {
		next := cleanOnce(s)
		if next == s {
			return s
		}
		s = next
	}
}

func cleanOnce(raw string) string {
	s := strings.TrimFunc(raw, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) && r != '-' && r != '\''
	})
	s = whitespaceRun.ReplaceAllString(s, " ")
	if s == "" {
		return ""
	}

	tokens := strings.Split(s, " ")
	tokens = stripNoise(tokens)
	caser := cases.Title(language.Spanish)
	for i, tok := range tokens {
		tokens[i] = caseToken(caser, tok, i == 0)
	}
	return strings.Join(tokens, " ")
}

func stripNoise(tokens []string) []string {
	isNoise := func(tok string) bool {
		bare := strings.Trim(tok, ".")
		if utf8.RuneCountInString(bare) <= 1 {
			return true
		}
		return noiseWords[strings.ToLower(bare)]
	}
	opensName := func(tokens []string) bool {
		if !surnameParticles[strings.ToLower(tokens[0])] {
			return false
		}
		for _, tok := range tokens[1:] {
			if !isNoise(tok) {
				return true
			}
		}
		return false
	}
	for len(tokens) > 0 && isNoise(tokens[0]) && !opensName(tokens) {
		tokens = tokens[1:]
	}
	for len(tokens) > 0 && isNoise(tokens[len(tokens)-1]) {
		tokens = tokens[:len(tokens)-1]
	}
	return tokens
}

func caseToken(caser cases.Caser, tok string, first bool) string {
	lower := strings.ToLower(tok)
	if !first && particles[lower] {
		return lower
	}
	// Title-case each hyphenated piece: "lópez-sánchez" -> "López-Sánchez"
	pieces := strings.Split(tok, "-")
	for i, p := range pieces {
		pieces[i] = caser.String(p)
	}
	return strings.Join(pieces, "-")
}
