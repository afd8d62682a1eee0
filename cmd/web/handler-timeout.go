package main

import (
	"net/http"
	"time"
)

// timeoutBody carries its own <main> so that htmx can swap it in like any other error page.
const timeoutBody = `<!doctype html>
<html lang="en">
<head><title>Timeout · Sentinels</title></head>
<body>
<main>
<section class="error-page" data-status="503">
<h1>Timeout</h1>
<p class="error-message">The analysis took too long to complete. Please try again.</p>
<a href="/">Back to the intake form</a>
</section>
</main>
</body>
</html>
`

// timeoutHandler responds with a 503 Service Unavailable error when the handler does not meet the deadline.
func timeoutHandler(h http.Handler, defaultTimeout time.Duration) http.Handler {
	// We want the timeout to be a little shorter than the server's write timeout so that the
	// timeout handler has a chance to respond before the server closes the connection.
	httpHandlerTimeout := defaultTimeout - 500*time.Millisecond //nolint:mnd // 500ms
	return http.TimeoutHandler(h, httpHandlerTimeout, timeoutBody)
}
