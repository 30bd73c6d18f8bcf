package proxyserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/adrycodes/anthro-bridge/internal/wire"
)

// writeJSON writes v as a JSON body with the given status code.
func writeJSON(ctx context.Context, w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(ctx, "failed to encode JSON response", "error", err)
	}
}

// writeAPIError writes the {"error":{"type","message"}} envelope every error
// path responds with (§7).
func writeAPIError(ctx context.Context, w http.ResponseWriter, errType, message string, status int) {
	writeJSON(ctx, w, wire.ErrorBody{
		Error: wire.ErrorDetail{Type: errType, Message: message},
	}, status)
}

// forwardUpstreamBody relays an upstream non-2xx response verbatim: JSON
// bodies are forwarded as JSON, anything else as text (§4.4 step 5).
func forwardUpstreamBody(w http.ResponseWriter, status int, body []byte) {
	var probe json.RawMessage
	if json.Unmarshal(body, &probe) == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write(body)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	w.Write(body)
}
