package names

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/killallgit/coffeebreak-api/pkg/textfold"
)

// minTypoLength is the shortest word in which a single edit still counts as
// a typo of the same word. Below it, "martin" and "marin" are two surnames.
const minTypoLength = 7

// Similarity scores two names in [0, 1] after diacritic folding. It is the
// better of the normalized edit-distance ratio of the folded names and of
// the same names with their words sorted, so "Socas Héctor" still matches
// "Héctor Socas".
//
// The score is capped by the weakest pair of aligned words. One differing
// surname sinks the score even when the rest of a long name is identical.
func Similarity(a, b string) float64 {
	fa, fb := textfold.Fold(a), textfold.Fold(b)
	if fa == fb {
		return 1
	}
	score := ratio(fa, fb)
	if sorted := ratio(sortedTokens(fa), sortedTokens(fb)); sorted > score {
		score = sorted
	}
	if weakest := weakestToken(strings.Fields(fa), strings.Fields(fb)); weakest < score {
		score = weakest
	}
	return score
}

// weakestToken aligns every word of the shorter name with its best unused
// word of the longer one and returns the lowest of those word scores.
func weakestToken(a, b []string) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	used := make([]bool, len(b))
	weakest := 1.0
	for _, ta := range a {
		best, at := -1.0, -1
		for j, tb := range b {
			if used[j] {
				continue
			}
			if s := tokenScore(ta, tb); s > best {
				best, at = s, j
			}
		}
		if at < 0 {
			break
		}
		used[at] = true
		if best < weakest {
			weakest = best
		}
	}
	return weakest
}

// tokenScore is 1 when two words are spellings of the same word: an
// initial, a dropped final letter or a one-letter typo in a long word.
func tokenScore(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la > lb {
		a, b = b, a
		la, lb = lb, la
	}
	if la == 1 && strings.HasPrefix(b, a) {
		return 1
	}
	if lb-la == 1 && strings.HasPrefix(b, a) {
		return 1
	}
	if la >= minTypoLength && levenshtein.ComputeDistance(a, b) == 1 {
		return 1
	}
	return ratio(a, b)
}

func ratio(a, b string) float64 {
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

func sortedTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
