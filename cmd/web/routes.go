package main

import (
	"github.com/justinas/alice"
	"github.com/myrjola/sentinels/ui"
	"net/http"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /static/", http.FileServerFS(ui.Files))
	mux.HandleFunc("GET /api/healthy", app.healthy)

	session := alice.New(app.sessionManager.LoadAndSave, app.sessionIdentity)
	dynamic := session.Append(app.noSurf, commonContext)

	mux.Handle("GET /{$}", dynamic.ThenFunc(app.home))
	mux.Handle("GET /cases/{caseID}", dynamic.ThenFunc(app.showCase))
	mux.Handle("GET /history", dynamic.ThenFunc(app.history))

	// The body limit must be in place before nosurf parses the multipart form looking for the CSRF token.
	submit := alice.New(app.submitTimeout).
		Extend(session).
		Append(app.limitRequestBody, app.noSurf, commonContext)
	mux.Handle("POST /cases", submit.ThenFunc(app.submitCase))

	return app.recoverPanic(app.logRequest(app.secureHeaders(mux)))
}
