package models_test

import (
	"github.com/myrjola/sentinels/internal/errors"
	"github.com/myrjola/sentinels/internal/models"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestCaseInput_Validate(t *testing.T) {
	tests := []struct {
		name       string
		input      models.CaseInput
		wantFields []string
	}{
		{
			name:  "required fields present",
			input: models.CaseInput{Name: "Jane Doe", LastKnownLocation: "Central Station, NYC"},
		},
		{
			name:       "everything missing",
			input:      models.CaseInput{},
			wantFields: []string{models.FieldName, models.FieldLastKnownLocation},
		},
		{
			name:       "whitespace is not a name",
			input:      models.CaseInput{Name: "  \t", LastKnownLocation: "Pier 39"},
			wantFields: []string{models.FieldName},
		},
		{
			name: "non-image attachment",
			input: models.CaseInput{
				Name:              "Jane Doe",
				LastKnownLocation: "Pier 39",
				ReferenceImage:    &models.ReferenceImage{MIMEType: "application/pdf", Data: "JVBERi0="},
			},
			wantFields: []string{models.FieldImage},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if len(tt.wantFields) == 0 {
				require.NoError(t, err)
				return
			}
			var validationErr *models.ValidationError
			require.True(t, errors.As(err, &validationErr), "expected *models.ValidationError, got %v", err)
			require.Len(t, validationErr.FieldErrors, len(tt.wantFields))
			for _, field := range tt.wantFields {
				require.Contains(t, validationErr.FieldErrors, field)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	v := models.NewValidationError()
	v.Add(models.FieldName, "Name is required.")
	v.Add(models.FieldName, "ignored")
	v.Add(models.FieldLastKnownLocation, "Last known location is required.")
	require.Equal(t, "invalid case input: lastKnownLocation, name", v.Error())
	require.Equal(t, "Name is required.", v.FieldErrors[models.FieldName])
}

func TestReferenceImage_DataURL(t *testing.T) {
	var missing *models.ReferenceImage
	require.Empty(t, missing.DataURL())

	img := &models.ReferenceImage{MIMEType: "image/png", Data: "iVBORw0KGgo="}
	require.Equal(t, "data:image/png;base64,iVBORw0KGgo=", img.DataURL())
}

func TestAnalysisResult_WithDefaults(t *testing.T) {
	require.Equal(t, models.NewAnalysisResult(), models.AnalysisResult{}.WithDefaults())

	result := models.AnalysisResult{PotentialMatches: []models.PotentialMatch{{ID: "MATCH-001", Confidence: 70}}}
	got := result.WithDefaults()
	require.Equal(t, result.PotentialMatches, got.PotentialMatches)
	require.NotNil(t, got.SearchLeads)
	require.NotNil(t, got.GroundingURLs)
	require.NotNil(t, got.PersonOverview.DistinctiveFeatures)
}
