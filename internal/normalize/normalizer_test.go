package normalize_test

import (
	"context"
	"encoding/json"
	"github.com/myrjola/sentinels/internal/ai"
	"github.com/myrjola/sentinels/internal/models"
	"github.com/myrjola/sentinels/internal/normalize"
	"github.com/myrjola/sentinels/internal/testhelpers"
	"github.com/stretchr/testify/require"
	"io"
	"testing"
)

const fullDocument = `{
  "personOverview": {
    "summary": "Adult female, last seen near a transit hub.",
    "estimatedBiometrics": "Approx. 165 cm, slim build, early 30s",
    "clothingAnalysis": "Red hoodie is highly visible in crowds",
    "distinctiveFeatures": ["Tattoo on left arm", "Glasses"]
  },
  "potentialMatches": [
    {"id": "MATCH-001", "confidence": 85, "source": "City Shelter Intake", "location": "123 Main St", "description": "Seen checking in."},
    {"id": "MATCH-002", "confidence": 50, "source": "Hospital ER", "location": "Bellevue", "description": "Unidentified patient."}
  ],
  "searchLeads": [
    {"locationName": "Port Authority Bus Terminal", "type": "Transport", "reason": "Major bus hub", "address": "625 8th Ave"},
    {"locationName": "Bowery Mission", "type": "Shelter", "reason": "Walk-in shelter"}
  ],
  "movementPrediction": {
    "prediction": "Likely heading north along 8th Avenue",
    "radiusKm": 5.5,
    "timeElapsedAnalysis": "27 hours on foot allows up to 40 km"
  }
}`

func newNormalizer() *normalize.Normalizer {
	return normalize.New(testhelpers.NewLogger(io.Discard))
}

// requireWellFormed asserts the structural invariants every normalized result must satisfy.
func requireWellFormed(t *testing.T, result models.AnalysisResult) {
	t.Helper()
	require.NotNil(t, result.PersonOverview.DistinctiveFeatures)
	require.NotNil(t, result.PotentialMatches)
	require.NotNil(t, result.SearchLeads)
	require.NotNil(t, result.GroundingURLs)
	ids := map[string]bool{}
	for _, m := range result.PotentialMatches {
		require.GreaterOrEqual(t, m.Confidence, 0)
		require.LessOrEqual(t, m.Confidence, 100)
		require.NotEmpty(t, m.ID)
		require.False(t, ids[m.ID], "duplicate match id %s", m.ID)
		ids[m.ID] = true
	}
	require.GreaterOrEqual(t, result.MovementPrediction.RadiusKm, 0.0)
}

func TestNormalize_MalformedInputDegradesToDefaults(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty", text: ""},
		{name: "prose", text: "no json here"},
		{name: "null", text: "null"},
		{name: "array", text: `[{"personOverview": {}}]`},
		{name: "string", text: `"just a string"`},
		{name: "broken fence", text: "```json\n{\"personOverview\": {\n```"},
		{name: "wrong field types", text: `{"personOverview": "summary", "potentialMatches": {"id": 1},
			"searchLeads": "none", "movementPrediction": [], "groundingUrls": 3}`},
		{name: "missing fields", text: `{"unrelated": true}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := newNormalizer().Normalize(context.Background(), ai.Reply{Text: tt.text})
			requireWellFormed(t, result)
			require.Equal(t, models.NewAnalysisResult(), result)
		})
	}
}

func TestNormalize_NoJSON(t *testing.T) {
	result := newNormalizer().Normalize(context.Background(), ai.Reply{Text: "no json here"})
	require.Equal(t, "", result.PersonOverview.Summary)
	require.Empty(t, result.PotentialMatches)
	require.Empty(t, result.SearchLeads)
	require.Empty(t, result.GroundingURLs)
}

func TestNormalize_SingleMatchBlock(t *testing.T) {
	text := "Here is the analysis.\n```json\n" +
		`{"potentialMatches":[{"id":"M1","confidence":92,"source":"X","location":"Y","description":"Z"}]}` +
		"\n```\nStay safe."
	result := newNormalizer().Normalize(context.Background(), ai.Reply{Text: text})

	require.Equal(t, []models.PotentialMatch{
		{ID: "M1", Confidence: 92, Source: "X", Location: "Y", Description: "Z"},
	}, result.PotentialMatches)
	defaults := models.NewAnalysisResult()
	require.Equal(t, defaults.PersonOverview, result.PersonOverview)
	require.Equal(t, defaults.SearchLeads, result.SearchLeads)
	require.Equal(t, defaults.MovementPrediction, result.MovementPrediction)
}

func TestNormalize_DocumentLocations(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "tagged fence", text: "Analysis:\n```json\n" + fullDocument + "\n```"},
		{name: "uppercase tag", text: "```JSON\r\n" + fullDocument + "\r\n```"},
		{name: "untagged fence", text: "```\n" + fullDocument + "\n```"},
		{name: "raw JSON", text: fullDocument},
		{name: "JSON inside prose", text: "Sure! " + fullDocument + " Let me know if you need more."},
		{name: "tagged fence wins over other fences", text: "```text\nnot json\n```\n```json\n" + fullDocument + "\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := newNormalizer().Normalize(context.Background(), ai.Reply{Text: tt.text})
			requireWellFormed(t, result)
			require.Equal(t, "Adult female, last seen near a transit hub.", result.PersonOverview.Summary)
			require.Equal(t, []string{"Tattoo on left arm", "Glasses"}, result.PersonOverview.DistinctiveFeatures)
			require.Len(t, result.PotentialMatches, 2)
			require.Len(t, result.SearchLeads, 2)
			require.Equal(t, "625 8th Ave", result.SearchLeads[0].Address)
			require.Equal(t, "", result.SearchLeads[1].Address)
			require.InDelta(t, 5.5, result.MovementPrediction.RadiusKm, 0.0001)
		})
	}
}

func TestNormalize_FieldLevelDegradation(t *testing.T) {
	text := `{
		"personOverview": {"summary": "Known", "estimatedBiometrics": {"height": 170}, "distinctiveFeatures": "Scar"},
		"potentialMatches": [
			"not an object",
			{"id": "A", "confidence": "85%", "source": 7},
			{"id": "A", "confidence": 140},
			{"confidence": -4},
			{"id": "MATCH-004", "confidence": 84.6}
		],
		"searchLeads": [{"locationName": "Penn Station", "type": ["Transport"]}, 42],
		"movementPrediction": {"prediction": true, "radiusKm": "-3"}
	}`
	result := newNormalizer().Normalize(context.Background(), ai.Reply{Text: text})
	requireWellFormed(t, result)

	require.Equal(t, models.PersonOverview{
		Summary:             "Known",
		DistinctiveFeatures: []string{"Scar"},
	}, result.PersonOverview)
	require.Equal(t, []models.PotentialMatch{
		{ID: "A", Confidence: 85, Source: "7"},
		{ID: "MATCH-002", Confidence: 100},
		{ID: "MATCH-003", Confidence: 0},
		{ID: "MATCH-004", Confidence: 85},
	}, result.PotentialMatches)
	require.Equal(t, []models.SearchLead{{LocationName: "Penn Station"}}, result.SearchLeads)
	require.Equal(t, models.MovementPrediction{Prediction: "true", RadiusKm: 0}, result.MovementPrediction)
}

func TestNormalize_RadiusAsText(t *testing.T) {
	result := newNormalizer().Normalize(context.Background(),
		ai.Reply{Text: `{"movementPrediction": {"radiusKm": "12.5 km"}}`})
	require.InDelta(t, 12.5, result.MovementPrediction.RadiusKm, 0.0001)
}

func TestNormalize_Idempotent(t *testing.T) {
	n := newNormalizer()
	grounding := json.RawMessage(`{"groundingChunks": [{"web": {"uri": "https://example.com/a", "title": "A"}}]}`)
	first := n.Normalize(context.Background(), ai.Reply{Text: "```json\n" + fullDocument + "\n```", Grounding: grounding})

	encoded, err := json.Marshal(first)
	require.NoError(t, err)
	second := n.Normalize(context.Background(), ai.Reply{Text: string(encoded)})
	require.Equal(t, first, second)

	padded := json.RawMessage(`{"groundingChunks": [{"web": {"uri": " https://example.com/b ", "title": " B "}}]}`)
	first = n.Normalize(context.Background(), ai.Reply{Text: "no json", Grounding: padded})
	encoded, err = json.Marshal(first)
	require.NoError(t, err)
	require.Equal(t, first, n.Normalize(context.Background(), ai.Reply{Text: string(encoded)}))

	for _, text := range []string{"", `{"potentialMatches": [{}, {}]}`} {
		first = n.Normalize(context.Background(), ai.Reply{Text: text})
		encoded, err = json.Marshal(first)
		require.NoError(t, err)
		require.Equal(t, first, n.Normalize(context.Background(), ai.Reply{Text: string(encoded)}))
	}
}

func TestNormalize_Grounding(t *testing.T) {
	tests := []struct {
		name      string
		grounding string
		want      []models.GroundingURL
	}{
		{name: "absent", grounding: "", want: []models.GroundingURL{}},
		{name: "null", grounding: "null", want: []models.GroundingURL{}},
		{name: "malformed", grounding: `{"groundingChunks": "nope"}`, want: []models.GroundingURL{}},
		{
			name: "web chunks in order without dedup",
			grounding: `{"groundingChunks": [
				{"web": {"uri": "https://b.example", "title": "B"}},
				{"web": {"uri": "https://a.example", "title": "A"}},
				{"web": {"uri": "https://b.example", "title": "B"}}
			]}`,
			want: []models.GroundingURL{
				{Title: "B", URI: "https://b.example"},
				{Title: "A", URI: "https://a.example"},
				{Title: "B", URI: "https://b.example"},
			},
		},
		{
			name: "nested chunk shape",
			grounding: `{"groundingChunks": [
				{"groundingChunk": {"web": {"uri": "https://nested.example", "title": "Nested"}}}
			]}`,
			want: []models.GroundingURL{{Title: "Nested", URI: "https://nested.example"}},
		},
		{
			name: "maps chunk and default titles",
			grounding: `{"groundingChunks": [
				{"maps": {"uri": "https://maps.google.com/?cid=1"}},
				{"web": {"uri": "https://untitled.example"}}
			]}`,
			want: []models.GroundingURL{
				{Title: "Map Source", URI: "https://maps.google.com/?cid=1"},
				{Title: "Web Source", URI: "https://untitled.example"},
			},
		},
		{
			name: "whitespace is trimmed",
			grounding: `{"groundingChunks": [
				{"web": {"uri": "  https://padded.example\n", "title": " Padded "}},
				{"web": {"uri": "   ", "title": "Blank URI"}},
				{"maps": {"uri": "https://maps.google.com/?cid=2", "title": "  "}}
			]}`,
			want: []models.GroundingURL{
				{Title: "Padded", URI: "https://padded.example"},
				{Title: "Map Source", URI: "https://maps.google.com/?cid=2"},
			},
		},
		{
			name: "first variant wins",
			grounding: `{"groundingChunks": [
				{"web": {"uri": "https://direct.example", "title": "Direct"},
				 "groundingChunk": {"web": {"uri": "https://nested.example", "title": "Nested"}}}
			]}`,
			want: []models.GroundingURL{{Title: "Direct", URI: "https://direct.example"}},
		},
		{
			name: "chunks without uri or malformed are skipped",
			grounding: `[
				{"web": {"title": "No URI"}},
				{"web": {"uri": 12}},
				{"retrievedContext": {"uri": "gs://bucket/doc"}},
				{"web": {"uri": "https://kept.example", "title": "Kept"}}
			]`,
			want: []models.GroundingURL{{Title: "Kept", URI: "https://kept.example"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var grounding json.RawMessage
			if tt.grounding != "" {
				grounding = json.RawMessage(tt.grounding)
			}
			result := newNormalizer().Normalize(context.Background(), ai.Reply{Text: "no json here", Grounding: grounding})
			require.Equal(t, tt.want, result.GroundingURLs)
		})
	}
}

func TestNormalize_DocumentCitationsComeFirst(t *testing.T) {
	text := `{"groundingUrls": [{"title": "From document", "uri": "https://doc.example"}, {"title": "No URI"}]}`
	grounding := json.RawMessage(`{"groundingChunks": [{"web": {"uri": "https://side.example", "title": "Side"}}]}`)
	result := newNormalizer().Normalize(context.Background(), ai.Reply{Text: text, Grounding: grounding})
	require.Equal(t, []models.GroundingURL{
		{Title: "From document", URI: "https://doc.example"},
		{Title: "Side", URI: "https://side.example"},
	}, result.GroundingURLs)
}
