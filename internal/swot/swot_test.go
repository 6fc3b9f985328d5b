package swot

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		sentence string
		want     Classification
	}{
		{"It is FAST", Classification{Positive: true}},
		{"Very user-friendly onboarding", Classification{Positive: true}},
		{"Pricing is expensive", Classification{Negative: true}},
		{"Known for debugging pain", Classification{Negative: true}}, // substring "bug"
		{"Fast but expensive", Classification{Positive: true, Negative: true}},
		{"A company that sells shoes", Classification{}},
		{"", Classification{}},
	}

	for _, tt := range tests {
		t.Run(tt.sentence, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.sentence))
		})
	}
}

func TestKeywordListsAreDisjoint(t *testing.T) {
	neg := map[string]bool{}
	for _, kw := range NegativeKeywords() {
		neg[kw] = true
	}
	for _, kw := range PositiveKeywords() {
		assert.False(t, neg[kw], "keyword %q in both lists", kw)
	}
}

func TestSentences(t *testing.T) {
	got := Sentences("First one. Second!\nThird? fourth; ;  . ")
	assert.Equal(t, []string{"First one", "Second", "Third", "fourth"}, got)
}

func TestSentences_SplitsDecimals(t *testing.T) {
	assert.Equal(t, []string{"Costs 9", "99 a month"}, Sentences("Costs 9.99 a month"))
}

func TestExtract_PositiveSentenceKeptVerbatim(t *testing.T) {
	res := Extract("Acme is FAST and Popular. It sells widgets.", "Acme")

	assert.Equal(t, []string{"Acme is FAST and Popular"}, res.SWOT.Strengths)
	require.Len(t, res.SWOT.Weaknesses, 1)
	assert.Contains(t, res.SWOT.Weaknesses[0], "Acme")
}

func TestExtract_NoMatchesUsesFallbacks(t *testing.T) {
	for _, desc := range []string{"", "   ", "A company that sells shoes."} {
		res := Extract(desc, "Shoeco")

		require.Len(t, res.SWOT.Strengths, 1)
		require.Len(t, res.SWOT.Weaknesses, 1)
		assert.Contains(t, res.SWOT.Strengths[0], "Shoeco")
		assert.Contains(t, res.SWOT.Weaknesses[0], "Shoeco")
		assert.NotEqual(t, res.SWOT.Strengths[0], res.SWOT.Weaknesses[0])
	}
}

func TestExtract_OpportunitiesAndThreatsAlwaysTwo(t *testing.T) {
	inputs := []string{
		"",
		"fast. slow. easy. complex. popular. limited.",
		strings.Repeat("Flexible and scalable. ", 20),
	}

	for _, desc := range inputs {
		res := Extract(desc, "Rival")
		require.Len(t, res.SWOT.Opportunities, 2)
		require.Len(t, res.SWOT.Threats, 2)
		for _, s := range append(res.SWOT.Opportunities, res.SWOT.Threats...) {
			assert.Contains(t, s, "Rival")
		}
	}
}

func TestExtract_SentenceInBothLists(t *testing.T) {
	res := Extract("This tool is fast but expensive.", "Tool")

	assert.Equal(t, []string{"This tool is fast but expensive"}, res.SWOT.Strengths)
	assert.Equal(t, []string{"This tool is fast but expensive"}, res.SWOT.Weaknesses)
}

func TestExtract_MixedDescriptionSplitsPerSentence(t *testing.T) {
	res := Extract("This tool is fast and affordable. However it is expensive.", "Tool")

	assert.Equal(t, []string{"This tool is fast and affordable"}, res.SWOT.Strengths)
	assert.Equal(t, []string{"However it is expensive"}, res.SWOT.Weaknesses)
}

func TestExtract_DuplicatesAreKept(t *testing.T) {
	res := Extract("Easy to use. Easy to use.", "Dup")
	assert.Len(t, res.SWOT.Strengths, 2)
}

func TestExtract_NewlinesJoinSentence(t *testing.T) {
	res := Extract("Setup is\nreally easy", "X")
	assert.Equal(t, []string{"Setup is really easy"}, res.SWOT.Strengths)
}

func TestDecodeCompetitors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []CompetitorInput
	}{
		{"array", `[{"name":"A","description":"fast"}]`, []CompetitorInput{{Name: "A", Description: "fast"}}},
		{"missing fields", `[{}]`, []CompetitorInput{{}}},
		{"wrong types", `[{"name":3,"description":["x"]}, "str", null]`, []CompetitorInput{{}, {}, {}}},
		{"object", `{"name":"A"}`, []CompetitorInput{}},
		{"string", `"nope"`, []CompetitorInput{}},
		{"null", `null`, []CompetitorInput{}},
		{"empty", ``, []CompetitorInput{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeCompetitors(json.RawMessage(tt.raw)))
		})
	}
}

func TestAnalyze_PlaceholderNames(t *testing.T) {
	results := Analyze([]CompetitorInput{
		{Name: "Named", Description: "easy"},
		{Description: "slow"},
	})

	require.Len(t, results, 2)
	assert.Equal(t, "Named", results[0].Name)
	assert.Equal(t, "Competitor 2", results[1].Name)
	assert.Contains(t, results[1].SWOT.Strengths[0], "Competitor 2")
}

func TestResult_WireShape(t *testing.T) {
	raw, err := json.Marshal(Extract("fast", "A"))
	require.NoError(t, err)

	var shape map[string]map[string][]string
	var top map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &top))
	assert.JSONEq(t, `"A"`, string(top["name"]))

	require.NoError(t, json.Unmarshal([]byte(`{"swot":`+string(top["swot"])+`}`), &shape))
	for _, key := range []string{"strengths", "weaknesses", "opportunities", "threats"} {
		assert.Contains(t, shape["swot"], key)
	}
}
