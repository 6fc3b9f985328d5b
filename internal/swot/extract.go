package swot

import (
	"fmt"
	"strings"
)

// SWOT holds the four quadrant lists in wire order.
type SWOT struct {
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Opportunities []string `json:"opportunities"`
	Threats       []string `json:"threats"`
}

// Result is the analysis for one competitor.
type Result struct {
	Name string `json:"name"`
	SWOT SWOT   `json:"swot"`
}

const (
	strengthFallback = "%s has no clearly stated strengths in the provided description."
	weaknessFallback = "%s has no obvious weaknesses mentioned in the provided description."
)

var opportunityTemplates = []string{
	"Reach customer segments that %s currently underserves.",
	"Differentiate against %s with integrations and partnerships it lacks.",
}

var threatTemplates = []string{
	"%s may cut prices or bundle features to defend its market share.",
	"%s could copy successful features and ship them to its existing user base.",
}

var newlineReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Extract segments description into sentences and sorts them into strengths
// and weaknesses. Strengths and weaknesses are never empty; opportunities and
// threats are templated from displayName only.
func Extract(description, displayName string) Result {
	var out SWOT

	for _, sentence := range Sentences(description) {
		c := Classify(sentence)
		if c.Positive {
			out.Strengths = append(out.Strengths, sentence)
		}
		if c.Negative {
			out.Weaknesses = append(out.Weaknesses, sentence)
		}
	}

	if len(out.Strengths) == 0 {
		out.Strengths = []string{fmt.Sprintf(strengthFallback, displayName)}
	}
	if len(out.Weaknesses) == 0 {
		out.Weaknesses = []string{fmt.Sprintf(weaknessFallback, displayName)}
	}

	out.Opportunities = fill(opportunityTemplates, displayName)
	out.Threats = fill(threatTemplates, displayName)

	return Result{Name: displayName, SWOT: out}
}

// Sentences splits text on '.', '!', '?' and ';' after folding newlines into
// spaces. Abbreviations and decimal numbers are split too.
func Sentences(text string) []string {
	text = newlineReplacer.Replace(text)
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == ';'
	})

	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

func fill(templates []string, name string) []string {
	out := make([]string, len(templates))
	for i, tmpl := range templates {
		out[i] = fmt.Sprintf(tmpl, name)
	}
	return out
}
