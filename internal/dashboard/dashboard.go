// Package dashboard turns case records into the view models rendered by the web dashboard and case registry.
package dashboard

import (
	"cmp"
	"fmt"
	"github.com/myrjola/sentinels/internal/intake"
	"github.com/myrjola/sentinels/internal/models"
	"html/template"
	"slices"
	"strings"
	"time"
)

const (
	BandHigh   = "high"
	BandMedium = "medium"
	BandLow    = "low"
)

const notProvided = "Not provided"

// ScoreBand buckets a match confidence for colouring.
func ScoreBand(confidence int) string {
	switch {
	case confidence > 80: //nolint:mnd // high confidence threshold
		return BandHigh
	case confidence > 50: //nolint:mnd // medium confidence threshold
		return BandMedium
	default:
		return BandLow
	}
}

// SortedMatches returns a copy of matches ordered by confidence, highest first. Ties keep their original order.
func SortedMatches(matches []models.PotentialMatch) []models.PotentialMatch {
	sorted := slices.Clone(matches)
	if sorted == nil {
		sorted = []models.PotentialMatch{}
	}
	slices.SortStableFunc(sorted, func(a, b models.PotentialMatch) int {
		return cmp.Compare(b.Confidence, a.Confidence)
	})
	return sorted
}

// FormatLastSeen renders the last-seen timestamp the same way the prompt does.
func FormatLastSeen(t time.Time) string {
	if t.IsZero() {
		return notProvided
	}
	return t.Format(intake.LastSeenLayout)
}

type ConfidenceBar struct {
	Label      string
	Confidence int
	// Width is the CSS width of the bar, e.g. "85%".
	Width string
	Band  string
}

type Match struct {
	models.PotentialMatch
	Band string
}

// CaseView is everything the dashboard page shows for one case.
type CaseView struct {
	ID                string
	Title             string
	Name              string
	Age               string
	LastKnownLocation string
	LastSeen          string
	Clothing          string
	Features          string
	Notes             string
	// ImageURL is the reference photo as a data URL, empty when no photo was attached.
	ImageURL  template.URL
	CreatedAt time.Time

	Overview           models.PersonOverview
	Bars               []ConfidenceBar
	Matches            []Match
	Leads              []models.SearchLead
	Movement           models.MovementPrediction
	Citations          []models.GroundingURL
	RecommendedActions []string
	Disclaimer         string
}

func NewCaseView(record models.CaseRecord) CaseView {
	input := record.Input
	result := record.Result.WithDefaults()
	lastSeen := FormatLastSeen(input.LastSeenDate)

	sorted := SortedMatches(result.PotentialMatches)
	bars := make([]ConfidenceBar, 0, len(sorted))
	matches := make([]Match, 0, len(sorted))
	for _, m := range sorted {
		band := ScoreBand(m.Confidence)
		bars = append(bars, ConfidenceBar{
			Label:      m.ID,
			Confidence: m.Confidence,
			Width:      fmt.Sprintf("%d%%", m.Confidence),
			Band:       band,
		})
		matches = append(matches, Match{PotentialMatch: m, Band: band})
	}

	citations := make([]models.GroundingURL, 0, len(result.GroundingURLs))
	for _, c := range result.GroundingURLs {
		if c.Title == "" {
			c.Title = "View on Maps"
		}
		citations = append(citations, c)
	}

	return CaseView{
		ID:                record.ID,
		Title:             strings.ToUpper(input.Name),
		Name:              input.Name,
		Age:               orNotProvided(input.Age),
		LastKnownLocation: input.LastKnownLocation,
		LastSeen:          lastSeen,
		Clothing:          orNotProvided(input.Clothing),
		Features:          orNotProvided(input.DistinctiveFeatures),
		Notes:             orNotProvided(input.Notes),
		ImageURL:          imageURL(input.ReferenceImage),
		CreatedAt:         record.CreatedAt,
		Overview:          result.PersonOverview,
		Bars:              bars,
		Matches:           matches,
		Leads:             result.SearchLeads,
		Movement:          result.MovementPrediction,
		Citations:         citations,
		RecommendedActions: []string{
			"Dispatch field units to identified Transport Hubs listed in Geospatial Intelligence.",
			fmt.Sprintf("Verify surveillance footage at last known location (Time: %s).", lastSeen),
			"Contact the specific shelters listed in the Search Areas section with the biometric profile.",
		},
		Disclaimer: models.Disclaimer,
	}
}

// imageURL marks the data URL as safe for img src attributes. The MIME type was checked to be image/* on intake.
func imageURL(img *models.ReferenceImage) template.URL {
	return template.URL(img.DataURL()) //nolint:gosec // base64 payload of a validated image.
}

func orNotProvided(s string) string {
	if strings.TrimSpace(s) == "" {
		return notProvided
	}
	return s
}

// RegistryEntry is one card in the case registry.
type RegistryEntry struct {
	ID                string
	ShortID           string
	Name              string
	LastKnownLocation string
	LastSeen          string
	ImageURL          template.URL
	// TopMatch is the highest confidence as "92%", or "N/A" when the case has no matches.
	TopMatch   string
	MatchFound bool
	// Badge is "strong" for a top match above 75 and "weak" otherwise.
	Badge string
}

// Registry summarises the session history, newest first.
type Registry struct {
	TotalCases          int
	HighConfidenceCases int
	LastUpdate          time.Time
	Entries             []RegistryEntry
}

// NewRegistry builds the registry from records ordered newest first.
func NewRegistry(records []models.CaseRecord) Registry {
	registry := Registry{
		TotalCases: len(records),
		Entries:    make([]RegistryEntry, 0, len(records)),
	}
	if len(records) > 0 {
		registry.LastUpdate = records[0].CreatedAt
	}

	for _, record := range records {
		entry := RegistryEntry{
			ID:                record.ID,
			ShortID:           ShortID(record.ID),
			Name:              record.Input.Name,
			LastKnownLocation: record.Input.LastKnownLocation,
			LastSeen:          FormatLastSeen(record.Input.LastSeenDate),
			ImageURL:          imageURL(record.Input.ReferenceImage),
			TopMatch:          "N/A",
			Badge:             "weak",
		}
		sorted := SortedMatches(record.Result.PotentialMatches)
		if len(sorted) > 0 {
			top := sorted[0].Confidence
			entry.TopMatch = fmt.Sprintf("%d%%", top)
			entry.MatchFound = top > 80
			if top > 75 { //nolint:mnd // badge threshold
				entry.Badge = "strong"
			}
		}
		if entry.MatchFound {
			registry.HighConfidenceCases++
		}
		registry.Entries = append(registry.Entries, entry)
	}
	return registry
}

// ShortID is "#" followed by the last six characters of id in upper case.
func ShortID(id string) string {
	const n = 6
	if len(id) > n {
		id = id[len(id)-n:]
	}
	return "#" + strings.ToUpper(id)
}
