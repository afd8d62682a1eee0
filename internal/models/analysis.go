package models

// AnalysisResult is the normalized output of one case analysis.
//
// Every list is non-nil and every scalar has a zero default, so consumers never need to check for absence.
type AnalysisResult struct {
	PersonOverview     PersonOverview     `json:"personOverview" yaml:"personOverview"`
	PotentialMatches   []PotentialMatch   `json:"potentialMatches" yaml:"potentialMatches"`
	SearchLeads        []SearchLead       `json:"searchLeads" yaml:"searchLeads"`
	MovementPrediction MovementPrediction `json:"movementPrediction" yaml:"movementPrediction"`
	GroundingURLs      []GroundingURL     `json:"groundingUrls" yaml:"groundingUrls"`
}

type PersonOverview struct {
	Summary             string   `json:"summary" yaml:"summary"`
	EstimatedBiometrics string   `json:"estimatedBiometrics" yaml:"estimatedBiometrics"`
	ClothingAnalysis    string   `json:"clothingAnalysis" yaml:"clothingAnalysis"`
	DistinctiveFeatures []string `json:"distinctiveFeatures" yaml:"distinctiveFeatures"`
}

// PotentialMatch is a synthetic database hit. Confidence is always within [0, 100].
type PotentialMatch struct {
	ID          string `json:"id" yaml:"id"`
	Confidence  int    `json:"confidence" yaml:"confidence"`
	Source      string `json:"source" yaml:"source"`
	Location    string `json:"location" yaml:"location"`
	Description string `json:"description" yaml:"description"`
}

// SearchLead is a real place near the last known location worth checking, e.g. a transport hub or shelter.
type SearchLead struct {
	LocationName string `json:"locationName" yaml:"locationName"`
	Type         string `json:"type" yaml:"type"`
	Reason       string `json:"reason" yaml:"reason"`
	Address      string `json:"address,omitempty" yaml:"address,omitempty"`
}

type MovementPrediction struct {
	Prediction          string  `json:"prediction" yaml:"prediction"`
	RadiusKm            float64 `json:"radiusKm" yaml:"radiusKm"`
	TimeElapsedAnalysis string  `json:"timeElapsedAnalysis" yaml:"timeElapsedAnalysis"`
}

// GroundingURL is a citation returned by the AI provider's tool use.
type GroundingURL struct {
	Title string `json:"title" yaml:"title"`
	URI   string `json:"uri" yaml:"uri"`
}

// NewAnalysisResult returns a result with every field at its default.
func NewAnalysisResult() AnalysisResult {
	return AnalysisResult{
		PersonOverview: PersonOverview{
			DistinctiveFeatures: []string{},
		},
		PotentialMatches: []PotentialMatch{},
		SearchLeads:      []SearchLead{},
		GroundingURLs:    []GroundingURL{},
	}
}

// WithDefaults returns r with nil lists replaced by empty ones. Encodings such as gob drop empty slices.
func (r AnalysisResult) WithDefaults() AnalysisResult {
	if r.PersonOverview.DistinctiveFeatures == nil {
		r.PersonOverview.DistinctiveFeatures = []string{}
	}
	if r.PotentialMatches == nil {
		r.PotentialMatches = []PotentialMatch{}
	}
	if r.SearchLeads == nil {
		r.SearchLeads = []SearchLead{}
	}
	if r.GroundingURLs == nil {
		r.GroundingURLs = []GroundingURL{}
	}
	return r
}
