// Package middleware holds the HTTP middleware shared by the Proxy Server:
// structured per-request logging and panic recovery, adapted from the
// pattern the teacher used directly inside its proxy package.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/httplog/v3"
)

// Logging logs each request's method, path, status, and duration via
// go-chi/httplog's concise ECS schema. Headers are restricted to
// Content-Type/Origin and bodies are never logged: request/response bodies
// may carry the upstream credential or full conversation text.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return httplog.RequestLogger(logger, &httplog.Options{
		Schema: httplog.SchemaECS.Concise(true),

		LogRequestHeaders:  []string{"Content-Type", "Origin"},
		LogResponseHeaders: []string{},
		LogRequestBody:     nil,
		LogResponseBody:    nil,

		RecoverPanics: false,
	})
}

// Recovery converts a handler panic into a 500 instead of crashing the
// worker goroutine (§4.4/§5: one worker per connection, no shared state).
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recover() != nil {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Chain applies middlewares outermost-first: the first entry executes
// first and wraps every later one.
func Chain(h http.Handler, mw ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}
