// Package swot builds heuristic SWOT analyses from free-text competitor
// descriptions using fixed keyword lists.
package swot

import "strings"

var positiveKeywords = []string{
	"fast", "easy", "popular", "affordable", "flexible",
	"scalable", "intuitive", "efficient", "user-friendly",
}

var negativeKeywords = []string{
	"expensive", "slow", "bug", "bugs", "complicated",
	"complex", "limited", "difficult", "unreliable",
}

// Classification flags a sentence against both keyword lists. The flags are
// independent, so a sentence can be both positive and negative.
type Classification struct {
	Positive bool
	Negative bool
}

// Classify matches the lower-cased sentence against the keyword lists by
// substring containment.
func Classify(sentence string) Classification {
	text := strings.ToLower(sentence)
	return Classification{
		Positive: containsAny(text, positiveKeywords),
		Negative: containsAny(text, negativeKeywords),
	}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// PositiveKeywords returns a copy of the positive keyword list.
func PositiveKeywords() []string {
	return append([]string(nil), positiveKeywords...)
}

// NegativeKeywords returns a copy of the negative keyword list.
func NegativeKeywords() []string {
	return append([]string(nil), negativeKeywords...)
}
