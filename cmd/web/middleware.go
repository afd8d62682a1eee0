package main

import (
	"fmt"
	"github.com/justinas/nosurf"
	"github.com/myrjola/sentinels/internal/contexthelpers"
	"github.com/myrjola/sentinels/internal/errors"
	"github.com/myrjola/sentinels/internal/random"
	"log/slog"
	"net/http"
)

const (
	cspNonceLength  = 24
	sessionIDLength = 32
	// multipartOverhead is the allowance for the text fields and part headers on top of the reference photo.
	multipartOverhead = 1 << 20
)

func (app *application) secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nonce, err := random.Letters(cspNonceLength)
		if err != nil {
			app.serverError(w, r, err)
			return
		}
		r = contexthelpers.SetCSPNonce(r, nonce)

		w.Header().Set("Content-Security-Policy",
			fmt.Sprintf(`script-src 'nonce-%s' 'strict-dynamic' https: http:; object-src 'none'; base-uri 'none';`,
				nonce))
		w.Header().Set("Referrer-Policy", "origin-when-cross-origin")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("X-XSS-Protection", "0")

		next.ServeHTTP(w, r)
	})
}

func (app *application) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			proto  = r.Proto
			method = r.Method
			uri    = r.URL.RequestURI()
		)

		app.logger.LogAttrs(r.Context(), slog.LevelDebug, "received request",
			slog.String("proto", proto), slog.String("method", method), slog.String("uri", uri))

		next.ServeHTTP(w, r)
	})
}

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.serverError(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// sessionIdentity gives every session a random identifier used to serialise its analyses.
func (app *application) sessionIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sessionID := app.sessionManager.GetString(ctx, sessionIDSessionKey)
		if sessionID == "" {
			var err error
			if sessionID, err = random.Letters(sessionIDLength); err != nil {
				app.serverError(w, r, err)
				return
			}
			app.sessionManager.Put(ctx, sessionIDSessionKey, sessionID)
		}

		next.ServeHTTP(w, contexthelpers.SetSessionID(r, sessionID))
	})
}

func (app *application) limitRequestBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, app.cfg.MaxUploadBytes+multipartOverhead)
		next.ServeHTTP(w, r)
	})
}

// submitTimeout bounds the whole submission including the AI call.
func (app *application) submitTimeout(next http.Handler) http.Handler {
	return timeoutHandler(next, app.writeTimeout())
}

func commonContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = contexthelpers.SetCurrentPath(r, r.URL.Path)
		r = contexthelpers.SetCSRFToken(r, nosurf.Token(r))
		next.ServeHTTP(w, r)
	})
}

// noSurf implements CSRF protection using https://github.com/justinas/nosurf
func (app *application) noSurf(next http.Handler) http.Handler {
	csrfHandler := nosurf.New(next)
	csrfHandler.SetBaseCookie(http.Cookie{
		HttpOnly: true,
		Path:     "/",
		Secure:   true,
	})
	csrfHandler.SetFailureHandler(http.HandlerFunc(app.csrfFailure))

	return csrfHandler
}

// csrfFailure renders the rejection as an error page. nosurf parses the form to find the token, so an oversized
// body surfaces here first and is reported as such.
func (app *application) csrfFailure(w http.ResponseWriter, r *http.Request) {
	var maxBytesErr *http.MaxBytesError
	if _, err := r.Body.Read(make([]byte, 1)); errors.As(err, &maxBytesErr) {
		app.clientError(w, r, http.StatusRequestEntityTooLarge)
		return
	}
	if reason := nosurf.Reason(r); reason != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelInfo, "CSRF check failed", slog.String("reason", reason.Error()))
	}
	app.clientError(w, r, http.StatusBadRequest)
}
