package main

import (
	"net/http"
)

// caseForm holds the raw intake form values so that they can be redisplayed after a failed submission.
type caseForm struct {
	Name                string
	Age                 string
	LastKnownLocation   string
	LastSeenDate        string
	Clothing            string
	DistinctiveFeatures string
	Notes               string
}

type homeTemplateData struct {
	BaseTemplateData

	Form   caseForm
	Errors map[string]string
}

func (app *application) home(w http.ResponseWriter, r *http.Request) {
	app.renderForm(w, r, http.StatusOK, caseForm{}, nil)
}

func (app *application) renderForm(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	form caseForm,
	fieldErrors map[string]string,
) {
	data := homeTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		Form:             form,
		Errors:           fieldErrors,
	}

	app.render(w, r, status, "home", data)
}
