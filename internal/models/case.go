package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Disclaimer must accompany every rendering of an analysis. The potential matches are fabricated by the model.
const Disclaimer = `This is a demonstration of AI capabilities. All "potential matches" are simulated by the AI. ` +
	`Do not use for real-life emergencies. In an emergency, call 911 immediately.`

// Form field names shared by the intake form, validation errors and the CLI flags.
const (
	FieldName                = "name"
	FieldAge                 = "age"
	FieldLastKnownLocation   = "lastKnownLocation"
	FieldLastSeenDate        = "lastSeenDate"
	FieldClothing            = "clothing"
	FieldDistinctiveFeatures = "features"
	FieldNotes               = "notes"
	FieldImage               = "image"
)

// ReferenceImage is a photo of the missing person in transport-safe form.
type ReferenceImage struct {
	Filename string `json:"filename" yaml:"filename"`
	MIMEType string `json:"mimeType" yaml:"mimeType"`
	// Data is the image encoded with standard base64.
	Data string `json:"data" yaml:"-"`
}

// DataURL returns the image as a data URL suitable for an img src attribute.
func (img *ReferenceImage) DataURL() string {
	if img == nil {
		return ""
	}
	return fmt.Sprintf("data:%s;base64,%s", img.MIMEType, img.Data)
}

// CaseInput is the case data submitted through the intake form. It is immutable once submitted.
type CaseInput struct {
	Name                string          `json:"name" yaml:"name"`
	Age                 string          `json:"age" yaml:"age"`
	LastKnownLocation   string          `json:"lastKnownLocation" yaml:"lastKnownLocation"`
	LastSeenDate        time.Time       `json:"lastSeenDate,omitzero" yaml:"lastSeenDate,omitempty"`
	Clothing            string          `json:"clothing" yaml:"clothing"`
	DistinctiveFeatures string          `json:"distinctiveFeatures" yaml:"distinctiveFeatures"`
	Notes               string          `json:"notes" yaml:"notes"`
	ReferenceImage      *ReferenceImage `json:"referenceImage,omitempty" yaml:"referenceImage,omitempty"`
}

// Validate checks the submission invariants. It returns a *ValidationError listing every offending field.
func (in CaseInput) Validate() error {
	v := NewValidationError()
	if strings.TrimSpace(in.Name) == "" {
		v.Add(FieldName, "Name is required.")
	}
	if strings.TrimSpace(in.LastKnownLocation) == "" {
		v.Add(FieldLastKnownLocation, "Last known location is required.")
	}
	if in.ReferenceImage != nil && !strings.HasPrefix(in.ReferenceImage.MIMEType, "image/") {
		v.Add(FieldImage, "Reference photo must be an image.")
	}
	if v.HasErrors() {
		return v
	}
	return nil
}

// ValidationError reports user-correctable problems in a CaseInput, keyed by form field name.
type ValidationError struct {
	FieldErrors map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{FieldErrors: map[string]string{}}
}

// Add records msg for field unless the field already has an error.
func (e *ValidationError) Add(field, msg string) {
	if _, exists := e.FieldErrors[field]; !exists {
		e.FieldErrors[field] = msg
	}
}

func (e *ValidationError) HasErrors() bool {
	return len(e.FieldErrors) > 0
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.FieldErrors))
	for field := range e.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "invalid case input: " + strings.Join(fields, ", ")
}

// CaseRecord is a completed analysis. It is never mutated.
type CaseRecord struct {
	ID        string         `json:"id" yaml:"id"`
	CreatedAt time.Time      `json:"createdAt" yaml:"createdAt"`
	Input     CaseInput      `json:"input" yaml:"input"`
	Result    AnalysisResult `json:"result" yaml:"result"`
}
