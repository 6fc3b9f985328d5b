package swot

import (
	"encoding/json"
	"fmt"
)

// CompetitorInput is one submitted competitor. Both fields are optional.
type CompetitorInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DisplayName returns the name, or a positional placeholder when it is empty.
// position is 0-based.
func (c CompetitorInput) DisplayName(position int) string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("Competitor %d", position+1)
}

// DecodeCompetitors reads a raw competitor list leniently. Anything that is
// not a JSON array yields an empty list; non-object items and non-string
// fields decode as empty values.
func DecodeCompetitors(raw json.RawMessage) []CompetitorInput {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []CompetitorInput{}
	}

	out := make([]CompetitorInput, 0, len(items))
	for _, item := range items {
		var fields map[string]any
		_ = json.Unmarshal(item, &fields)
		name, _ := fields["name"].(string)
		desc, _ := fields["description"].(string)
		out = append(out, CompetitorInput{Name: name, Description: desc})
	}
	return out
}

// Analyze extracts a Result for every competitor, in input order.
func Analyze(competitors []CompetitorInput) []Result {
	results := make([]Result, len(competitors))
	for i, c := range competitors {
		results[i] = Extract(c.Description, c.DisplayName(i))
	}
	return results
}
