// Package proxyserver is the Proxy Server: the HTTP front-end that accepts
// Anthropic Messages requests, dispatches them to an OpenAI-flavored
// upstream via the Mapper and Upstream Client, and translates the reply
// back, per SPEC_FULL.md §4.4.
package proxyserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/adrycodes/anthro-bridge/internal/mapper"
	"github.com/adrycodes/anthro-bridge/internal/observability/middleware"
	"github.com/adrycodes/anthro-bridge/internal/stream"
	"github.com/adrycodes/anthro-bridge/internal/upstream"
	"github.com/adrycodes/anthro-bridge/internal/wire"
)

// version is reported on the /health capability handshake.
const version = "0.1.0"

// proxyName is reported on the /health capability handshake.
const proxyName = "anthro-bridge"

// CredentialResolver resolves the upstream API key for one inbound request,
// given the process-wide OPENAI_API_KEY env value and a configured
// fallback credential (§4.2).
type CredentialResolver func(r *http.Request) string

// Server is the HTTP front-end. It holds no per-request mutable state;
// every dispatch builds its own stream.State (§4/§5).
type Server struct {
	Upstream   *upstream.Client
	Credential CredentialResolver
	ForceResponses bool

	mux *http.ServeMux
}

// New builds a Server with routes registered per §6's HTTP surface table.
// Every route is wrapped with request logging and panic recovery.
func New(client *upstream.Client, cred CredentialResolver, forceResponses bool, logger *slog.Logger) *Server {
	s := &Server{Upstream: client, Credential: cred, ForceResponses: forceResponses}

	wrap := func(h http.HandlerFunc) http.Handler {
		return middleware.Chain(h, middleware.Logging(logger), middleware.Recovery)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /health", wrap(s.handleHealth))
	mux.Handle("POST /messages", wrap(s.handleMessages))
	mux.Handle("POST /v1/messages", wrap(s.handleMessages))
	mux.Handle("/", wrap(s.handleNotFound))
	s.mux = mux

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "not found", http.StatusNotFound)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, wire.HealthResponse{
		Status:  "ok",
		Proxy:   proxyName,
		Version: version,
		Capabilities: wire.Capabilities{
			SupportsResponses:   true,
			RetryOnNotChatModel: true,
		},
	}, http.StatusOK)
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req wire.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(ctx, w, "invalid_request", "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Model == "" {
		writeAPIError(ctx, w, "invalid_request", "model is required", http.StatusBadRequest)
		return
	}

	apiKey := s.Credential(r)
	if apiKey == "" {
		writeAPIError(ctx, w, "auth_error", "missing upstream credential", http.StatusUnauthorized)
		return
	}

	useResponses := mapper.ShouldUseResponses(req.Model, s.ForceResponses)

	if req.Stream {
		s.dispatchStreaming(ctx, w, req, apiKey, useResponses)
		return
	}
	s.dispatchNonStreaming(ctx, w, req, apiKey, useResponses)
}

// dispatchNonStreaming implements §4.4 steps 1-5 for the non-streaming path.
func (s *Server) dispatchNonStreaming(ctx context.Context, w http.ResponseWriter, req wire.Request, apiKey string, useResponses bool) {
	if useResponses {
		resp, err := s.Upstream.Responses(ctx, apiKey, mapper.ToResponsesRequest(req))
		if err != nil {
			s.forwardDispatchError(ctx, w, err)
			return
		}
		writeJSON(ctx, w, mapper.FromResponsesResponse(*resp, req.Model), http.StatusOK)
		return
	}

	resp, err := s.Upstream.ChatCompletions(ctx, apiKey, mapper.ToChatCompletionRequest(req))
	if err != nil {
		var upErr *upstream.UpstreamError
		if errors.As(err, &upErr) && isNotChatModelError(upErr) {
			// Chat→Responses fallback (§4.4 step 3): exactly one retry.
			fallback, ferr := s.Upstream.Responses(ctx, apiKey, mapper.ToResponsesRequest(req))
			if ferr != nil {
				s.forwardDispatchError(ctx, w, ferr)
				return
			}
			writeJSON(ctx, w, mapper.FromResponsesResponse(*fallback, req.Model), http.StatusOK)
			return
		}
		s.forwardDispatchError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, mapper.FromChatCompletionResponse(*resp, req.Model), http.StatusOK)
}

// dispatchStreaming implements §4.4/§4.3 for the streaming path: the chosen
// upstream flavor's SSE lines are decoded and fed through the Stream
// Translator directly into the client's SSE connection.
func (s *Server) dispatchStreaming(ctx context.Context, w http.ResponseWriter, req wire.Request, apiKey string, useResponses bool) {
	if useResponses {
		s.streamResponses(ctx, w, req, apiKey)
		return
	}

	next, closer, err := s.Upstream.SSELines(ctx, apiKey, upstream.EndpointChatCompletions, mapper.ToChatCompletionRequest(req))
	if err != nil {
		var upErr *upstream.UpstreamError
		if errors.As(err, &upErr) && isNotChatModelError(upErr) {
			s.streamResponses(ctx, w, req, apiKey)
			return
		}
		s.forwardDispatchError(ctx, w, err)
		return
	}
	defer closer()

	sse, err := newSSEWriter(w)
	if err != nil {
		slog.ErrorContext(ctx, "sse not supported by response writer", "error", err)
		return
	}

	state := stream.New(req.Model)
	sink := sse.write

	for {
		payload, lineErr := next()
		if lineErr != nil {
			break
		}
		chunk, decodeErr := upstream.DecodeChatChunk(payload)
		if decodeErr != nil {
			slog.ErrorContext(ctx, "failed to decode chat completion chunk", "error", decodeErr)
			continue
		}
		if applyErr := stream.ApplyChatChunk(state, sink, chunk); applyErr != nil {
			slog.DebugContext(ctx, "client disconnected mid-stream", "error", applyErr)
			return
		}
	}

	stopReason := string(mapper.ChatFinishReasonToStopReason(state.FinishReason, stream.HasAnyTool(state)))
	if err := state.Finalize(sink, stopReason); err != nil {
		slog.DebugContext(ctx, "client disconnected during finalize", "error", err)
	}
}

func (s *Server) streamResponses(ctx context.Context, w http.ResponseWriter, req wire.Request, apiKey string) {
	next, closer, err := s.Upstream.SSELines(ctx, apiKey, upstream.EndpointResponses, mapper.ToResponsesRequest(req))
	if err != nil {
		s.forwardDispatchError(ctx, w, err)
		return
	}
	defer closer()

	sse, err := newSSEWriter(w)
	if err != nil {
		slog.ErrorContext(ctx, "sse not supported by response writer", "error", err)
		return
	}

	state := stream.New(req.Model)
	sink := sse.write

	for {
		payload, lineErr := next()
		if lineErr != nil {
			break
		}
		ev, decodeErr := upstream.DecodeResponsesEvent(payload)
		if decodeErr != nil {
			slog.ErrorContext(ctx, "failed to decode responses event", "error", decodeErr)
			continue
		}
		terminal, stopReason, applyErr := stream.ApplyResponsesEvent(state, sink, ev)
		if applyErr != nil {
			slog.DebugContext(ctx, "client disconnected mid-stream", "error", applyErr)
			return
		}
		if terminal {
			if err := state.Finalize(sink, stopReason); err != nil {
				slog.DebugContext(ctx, "client disconnected during finalize", "error", err)
			}
			return
		}
	}

	// Upstream closed without an explicit completed/incomplete/failed event.
	if err := state.Finalize(sink, "end_turn"); err != nil {
		slog.DebugContext(ctx, "client disconnected during finalize", "error", err)
	}
}

// isNotChatModelError implements the substring match from §4.4 step 3.
func isNotChatModelError(upErr *upstream.UpstreamError) bool {
	msg := strings.ToLower(upErr.CombinedMessage())
	if strings.Contains(msg, "v1/chat/completions") {
		return true
	}
	return strings.Contains(msg, "not a chat model") && strings.Contains(msg, "chat/completions")
}

// forwardDispatchError implements §4.4 step 5: forward the upstream status
// and body verbatim, or translate a local dispatch failure into a 502.
func (s *Server) forwardDispatchError(ctx context.Context, w http.ResponseWriter, err error) {
	var upErr *upstream.UpstreamError
	if errors.As(err, &upErr) {
		forwardUpstreamBody(w, upErr.Status, upErr.Body)
		return
	}
	slog.ErrorContext(ctx, "upstream dispatch failed", "error", err)
	writeAPIError(ctx, w, "upstream_error", err.Error(), http.StatusBadGateway)
}
