package similarity

import (
	"regexp"
	"strings"

	"github.com/xrash/smetrics"
)

var (
	// Everything that is not a letter, digit, CJK character or whitespace
	// gets stripped during normalization.
	punctRe = regexp.MustCompile(`[^\p{L}\p{N}\p{Han}\s]+`)
	spaceRe = regexp.MustCompile(`\s+`)
	// Tokens are CJK runs or alphanumeric words.
	tokenRe = regexp.MustCompile(`\p{Han}+|[a-z0-9]+`)
)

// Normalize lowercases text, strips punctuation (keeping word and CJK
// characters) and collapses runs of whitespace to a single space.
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = punctRe.ReplaceAllString(text, " ")
	text = spaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Tokenize splits normalized text into CJK runs and alphanumeric words.
func Tokenize(text string) []string {
	return tokenRe.FindAllString(Normalize(text), -1)
}

// Jaccard computes |A∩B| / |A∪B| over two token sets.
// Two empty sets have similarity 0.
func Jaccard(tokensA, tokensB []string) float64 {
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(tokensA))
	for _, t := range tokensA {
		setA[t] = struct{}{}
	}
	setB := make(map[string]struct{}, len(tokensB))
	for _, t := range tokensB {
		setB[t] = struct{}{}
	}

	intersection := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// NameJaccard is Jaccard over the tokenizations of two raw strings.
func NameJaccard(a, b string) float64 {
	return Jaccard(Tokenize(a), Tokenize(b))
}

// EditSimilarity returns a similarity in [0,1] derived from the
// Wagner-Fischer edit distance between the two strings.
func EditSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	dist := smetrics.WagnerFischer(a, b, 1, 1, 1)
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	return 1 - float64(dist)/float64(longest)
}
