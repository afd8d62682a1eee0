package main

import (
	"github.com/myrjola/sentinels/internal/errors"
	"log/slog"
	"net/http"
)

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error",
		slog.String("method", method), slog.String("uri", uri), errors.SlogError(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

var clientErrorMessages = map[int]string{
	http.StatusBadRequest:            "The submission could not be read. Reload the page and try again.",
	http.StatusRequestEntityTooLarge: "The submission is too large. Attach a smaller reference photo.",
}

// clientError renders the error page for a request the visitor can retry.
func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int) {
	message, ok := clientErrorMessages[status]
	if !ok {
		message = http.StatusText(status)
	}
	app.renderError(w, r, status, message)
}

type errorTemplateData struct {
	BaseTemplateData

	Status  int
	Title   string
	Message string
}

// renderError renders the error page within the site layout.
func (app *application) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	app.logger.LogAttrs(r.Context(), slog.LevelDebug, http.StatusText(status),
		slog.String("method", r.Method), slog.String("uri", r.URL.RequestURI()))
	data := errorTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		Status:           status,
		Title:            http.StatusText(status),
		Message:          message,
	}
	app.render(w, r, status, "error", data)
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	app.renderError(w, r, http.StatusNotFound, "The case you are looking for does not exist in this session.")
}
