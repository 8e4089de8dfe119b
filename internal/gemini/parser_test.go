package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecommendationArrayClean(t *testing.T) {
	raw := `[
		{"college_name": "Alpha University", "match_score": 0.92, "admission_chance": 0.4, "fit_category": "Reach", "justification": "Strong CS program", "match_reasons": ["CS ranking", "research"], "country": "USA", "city": "Boston", "estimated_cost": "$70k/yr", "acceptance_rate": 0.07, "website": "https://alpha.edu"},
		{"college_name": "Beta College", "match_score": 0.85, "admission_chance": 0.8, "fit_category": "Safety", "justification": "Solid fit", "match_reasons": ["size"], "country": "USA", "city": "Austin", "estimated_cost": "$30k/yr", "acceptance_rate": 0.6, "website": "https://beta.edu"}
	]`
	recs, dropped, err := ParseRecommendationArray(raw)
	require.NoError(t, err)
	assert.Zero(t, dropped)
	require.Len(t, recs, 2)
	assert.Equal(t, "Alpha University", recs[0].CollegeName)
	assert.Equal(t, 0.92, recs[0].MatchScore)
}

func TestParseRecommendationArrayFenced(t *testing.T) {
	raw := "```json\n[{\"college_name\": \"Alpha University\", \"fit_category\": \"Target\"}]\n```"
	recs, dropped, err := ParseRecommendationArray(raw)
	require.NoError(t, err)
	assert.Zero(t, dropped)
	require.Len(t, recs, 1)
	assert.Equal(t, "Target", recs[0].FitCategory)
}

func TestParseRecommendationArrayTrailingComma(t *testing.T) {
	raw := `[{"college_name": "Alpha University", "fit_category": "Safety",},]`
	recs, dropped, err := ParseRecommendationArray(raw)
	require.NoError(t, err)
	assert.Zero(t, dropped)
	require.Len(t, recs, 1)
}

func TestParseRecommendationArrayTruncated(t *testing.T) {
	// Reply cut off mid-object: complete entries survive, the tail is dropped.
	raw := `[
		{"college_name": "Alpha University", "match_score": 0.9, "fit_category": "Reach"},
		{"college_name": "Beta College", "match_score": 0.8, "fit_category": "Target"},
		{"college_name": "Gamma Inst", "match_sco`
	recs, dropped, err := ParseRecommendationArray(raw)
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)
	require.Len(t, recs, 2)
	assert.Equal(t, "Beta College", recs[1].CollegeName)
}

func TestParseRecommendationArrayBracesInsideStrings(t *testing.T) {
	raw := `[{"college_name": "Alpha {Main} University", "justification": "uses } and { freely", "fit_category": "Target"},
		{"college_name": "Beta College", "fit_category": "Safety"},
		{"college_name": "Trunc`
	recs, dropped, err := ParseRecommendationArray(raw)
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)
	require.Len(t, recs, 2)
	assert.Equal(t, "Alpha {Main} University", recs[0].CollegeName)
}

func TestParseRecommendationArrayNoArray(t *testing.T) {
	_, _, err := ParseRecommendationArray("I cannot help with that.")
	require.Error(t, err)
}

func TestParseDetailObject(t *testing.T) {
	raw := "```json\n{\"country\": \"USA\", \"city\": \"Boston\", \"estimated_cost\": \"$70k/yr\", \"acceptance_rate\": 0.07, \"website\": \"https://alpha.edu\"}\n```"
	detail, err := ParseDetailObject(raw)
	require.NoError(t, err)
	assert.Equal(t, "Boston", detail.City)
	require.NotNil(t, detail.AcceptanceRate)
	assert.Equal(t, 0.07, *detail.AcceptanceRate)
}

func TestParseDetailObjectMalformed(t *testing.T) {
	_, err := ParseDetailObject("no json here")
	require.Error(t, err)
}
