package main

import (
	"github.com/myrjola/sentinels/internal/analysis"
	"github.com/myrjola/sentinels/internal/contexthelpers"
	"github.com/myrjola/sentinels/internal/dashboard"
	"github.com/myrjola/sentinels/internal/errors"
	"github.com/myrjola/sentinels/internal/intake"
	"github.com/myrjola/sentinels/internal/models"
	"github.com/myrjola/sentinels/internal/repositories"
	"log/slog"
	"net/http"
	"time"
)

// lastSeenInputLayout is the value format of an HTML datetime-local input.
const lastSeenInputLayout = "2006-01-02T15:04"

const upstreamFailureMessage = "Failed to analyze case. Please ensure your API key is valid and try again."

type caseTemplateData struct {
	BaseTemplateData

	Case dashboard.CaseView
}

func (app *application) submitCase(w http.ResponseWriter, r *http.Request) {
	var (
		ctx       = r.Context()
		sessionID = contexthelpers.SessionID(ctx)
		err       error
	)

	if err = r.ParseMultipartForm(app.cfg.MaxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			app.clientError(w, r, http.StatusRequestEntityTooLarge)
			return
		}
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	form := caseForm{
		Name:                r.PostFormValue(models.FieldName),
		Age:                 r.PostFormValue(models.FieldAge),
		LastKnownLocation:   r.PostFormValue(models.FieldLastKnownLocation),
		LastSeenDate:        r.PostFormValue(models.FieldLastSeenDate),
		Clothing:            r.PostFormValue(models.FieldClothing),
		DistinctiveFeatures: r.PostFormValue(models.FieldDistinctiveFeatures),
		Notes:               r.PostFormValue(models.FieldNotes),
	}

	input, fieldErrors, err := app.caseInput(r, form)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if fieldErrors.HasErrors() {
		app.renderForm(w, r, http.StatusUnprocessableEntity, form, fieldErrors.FieldErrors)
		return
	}

	record, err := app.analysis.Analyze(ctx, sessionID, input)
	var validationErr *models.ValidationError
	switch {
	case errors.As(err, &validationErr):
		app.renderForm(w, r, http.StatusUnprocessableEntity, form, validationErr.FieldErrors)
		return
	case errors.Is(err, analysis.ErrAnalysisInProgress):
		app.renderError(w, r, http.StatusConflict,
			"An analysis is already running in this session. Wait for it to finish and try again.")
		return
	case errors.Is(err, analysis.ErrUpstream):
		app.logger.LogAttrs(ctx, slog.LevelWarn, "analysis failed upstream",
			slog.String("session_id", sessionID), errors.SlogError(err))
		app.renderError(w, r, http.StatusBadGateway, upstreamFailureMessage)
		return
	case err != nil:
		app.serverError(w, r, errors.Wrap(err, "analyze case"))
		return
	}

	caseURL := "/cases/" + record.ID
	if h := app.htmx.NewHandler(w, r); h.IsHxRequest() {
		h.PushURL(caseURL)
		r = contexthelpers.SetCurrentPath(r, caseURL)
		app.render(w, r, http.StatusOK, "case", caseTemplateData{
			BaseTemplateData: app.newBaseTemplateData(r),
			Case:             dashboard.NewCaseView(record),
		})
		return
	}
	http.Redirect(w, r, caseURL, http.StatusSeeOther)
}

// caseInput converts the submitted form into a CaseInput. Problems the visitor can fix are returned as field errors.
func (app *application) caseInput(r *http.Request, form caseForm) (models.CaseInput, *models.ValidationError, error) {
	fieldErrors := models.NewValidationError()
	input := models.CaseInput{
		Name:                form.Name,
		Age:                 form.Age,
		LastKnownLocation:   form.LastKnownLocation,
		Clothing:            form.Clothing,
		DistinctiveFeatures: form.DistinctiveFeatures,
		Notes:               form.Notes,
	}

	if form.LastSeenDate != "" {
		lastSeen, err := time.ParseInLocation(lastSeenInputLayout, form.LastSeenDate, time.Local)
		if err != nil {
			fieldErrors.Add(models.FieldLastSeenDate, "Enter a valid date and time.")
		} else {
			input.LastSeenDate = lastSeen
		}
	}

	image, err := app.referenceImage(r)
	switch {
	case errors.Is(err, intake.ErrNotAnImage):
		fieldErrors.Add(models.FieldImage, "The reference photo must be an image.")
	case errors.Is(err, intake.ErrImageTooLarge):
		fieldErrors.Add(models.FieldImage, "The reference photo is too large.")
	case err != nil:
		return models.CaseInput{}, nil, errors.Wrap(err, "read reference image")
	default:
		input.ReferenceImage = image
	}

	var validationErr *models.ValidationError
	if errors.As(input.Validate(), &validationErr) {
		for field, msg := range validationErr.FieldErrors {
			fieldErrors.Add(field, msg)
		}
	}
	return input, fieldErrors, nil
}

// referenceImage returns the uploaded photo or nil when the visitor did not attach one.
func (app *application) referenceImage(r *http.Request) (*models.ReferenceImage, error) {
	file, header, err := r.FormFile(models.FieldImage)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil //nolint:nilnil // no photo is a valid submission.
	}
	if err != nil {
		return nil, errors.Wrap(err, "form file")
	}
	defer func() {
		_ = file.Close()
	}()

	image, err := intake.EncodeImage(file, header.Filename, header.Header.Get("Content-Type"), app.cfg.MaxUploadBytes)
	if err != nil {
		return nil, errors.Wrap(err, "encode image", slog.String("filename", header.Filename))
	}
	return image, nil
}

func (app *application) showCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseID := r.PathValue("caseID")
	record, err := app.cases.Get(ctx, caseID)
	if errors.Is(err, repositories.ErrCaseNotFound) {
		app.notFound(w, r)
		return
	}
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "get case", slog.String("case_id", caseID)))
		return
	}

	app.render(w, r, http.StatusOK, "case", caseTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		Case:             dashboard.NewCaseView(record),
	})
}
