package main

import (
	"github.com/myrjola/sentinels/internal/dashboard"
	"github.com/myrjola/sentinels/internal/errors"
	"net/http"
)

type historyTemplateData struct {
	BaseTemplateData

	Registry dashboard.Registry
}

func (app *application) history(w http.ResponseWriter, r *http.Request) {
	records, err := app.cases.List(r.Context())
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "list cases"))
		return
	}

	app.render(w, r, http.StatusOK, "history", historyTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		Registry:         dashboard.NewRegistry(records),
	})
}
