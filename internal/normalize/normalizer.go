// Package normalize coerces loosely structured AI replies into a well-formed models.AnalysisResult.
//
// Malformed or partial model output is expected. It degrades field by field to defaults and is never reported
// as an error.
package normalize

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/myrjola/sentinels/internal/ai"
	"github.com/myrjola/sentinels/internal/errors"
	"github.com/myrjola/sentinels/internal/models"
	"log/slog"
	"regexp"
	"strings"
)

var (
	taggedFence = regexp.MustCompile("(?is)```[ \\t]*json[ \\t]*\\r?\\n(.*?)```")
	anyFence    = regexp.MustCompile("(?s)```[A-Za-z0-9_-]*[ \\t]*\\r?\\n?(.*?)```")
)

type Normalizer struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Normalizer {
	return &Normalizer{
		logger: logger.With(slog.String("source", "Normalizer")),
	}
}

// Normalize converts reply into an AnalysisResult. It never fails: whatever cannot be decoded takes its default.
func (n *Normalizer) Normalize(ctx context.Context, reply ai.Reply) models.AnalysisResult {
	result := models.NewAnalysisResult()

	if doc, ok := n.decodeDocument(ctx, reply.Text); ok {
		applyDocument(&result, doc)
	}

	result.GroundingURLs = append(result.GroundingURLs, n.decodeGrounding(ctx, reply.Grounding)...)

	return result
}

type attempt struct {
	name string
	body string
}

// attempts lists the candidate JSON documents in text, most specific first.
func attempts(text string) []attempt {
	var list []attempt
	if m := taggedFence.FindStringSubmatch(text); m != nil {
		list = append(list, attempt{name: "tagged fence", body: m[1]})
	}
	if m := anyFence.FindStringSubmatch(text); m != nil {
		list = append(list, attempt{name: "fence", body: m[1]})
	}
	list = append(list, attempt{name: "raw text", body: text})
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		list = append(list, attempt{name: "brace span", body: text[start : end+1]})
	}
	return list
}

// decodeDocument returns the first candidate that decodes as a JSON object.
func (n *Normalizer) decodeDocument(ctx context.Context, text string) (map[string]json.RawMessage, bool) {
	var failures []error
	for _, a := range attempts(text) {
		var doc map[string]json.RawMessage
		err := json.Unmarshal([]byte(strings.TrimSpace(a.body)), &doc)
		if err == nil && doc != nil {
			if len(failures) > 0 {
				n.logger.LogAttrs(ctx, slog.LevelDebug, "decoded analysis after fallback",
					slog.String("attempt", a.name), slog.Int("failed_attempts", len(failures)))
			}
			return doc, true
		}
		if err == nil {
			err = errors.NewSentinel("document is null")
		}
		failures = append(failures, fmt.Errorf("%s: %w", a.name, err))
	}

	n.logger.LogAttrs(ctx, slog.LevelWarn, "could not decode analysis, using defaults",
		slog.Int("text_length", len(text)),
		errors.SlogError(errors.Join(failures...)))
	return nil, false
}

func applyDocument(result *models.AnalysisResult, doc map[string]json.RawMessage) {
	if overview, ok := object(doc["personOverview"]); ok {
		result.PersonOverview = models.PersonOverview{
			Summary:             str(overview["summary"]),
			EstimatedBiometrics: str(overview["estimatedBiometrics"]),
			ClothingAnalysis:    str(overview["clothingAnalysis"]),
			DistinctiveFeatures: strList(overview["distinctiveFeatures"]),
		}
	}

	result.PotentialMatches = matches(doc["potentialMatches"])

	for _, lead := range objects(doc["searchLeads"]) {
		result.SearchLeads = append(result.SearchLeads, models.SearchLead{
			LocationName: str(lead["locationName"]),
			Type:         str(lead["type"]),
			Reason:       str(lead["reason"]),
			Address:      str(lead["address"]),
		})
	}

	if movement, ok := object(doc["movementPrediction"]); ok {
		result.MovementPrediction = models.MovementPrediction{
			Prediction:          str(movement["prediction"]),
			RadiusKm:            radius(movement["radiusKm"]),
			TimeElapsedAnalysis: str(movement["timeElapsedAnalysis"]),
		}
	}

	// Citations embedded in the document come first so that re-normalizing a result is a no-op.
	for _, citation := range objects(doc["groundingUrls"]) {
		if uri := str(citation["uri"]); uri != "" {
			result.GroundingURLs = append(result.GroundingURLs, models.GroundingURL{Title: str(citation["title"]), URI: uri})
		}
	}
}

// matches decodes the potential matches and guarantees ids that are unique within the result.
func matches(raw json.RawMessage) []models.PotentialMatch {
	list := []models.PotentialMatch{}
	seen := map[string]bool{}
	for i, m := range objects(raw) {
		id := str(m["id"])
		if id == "" || seen[id] {
			for n := i + 1; id == "" || seen[id]; n++ {
				id = fmt.Sprintf("MATCH-%03d", n)
			}
		}
		seen[id] = true
		list = append(list, models.PotentialMatch{
			ID:          id,
			Confidence:  confidence(m["confidence"]),
			Source:      str(m["source"]),
			Location:    str(m["location"]),
			Description: str(m["description"]),
		})
	}
	return list
}
