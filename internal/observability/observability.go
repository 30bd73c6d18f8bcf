// Package observability wires structured logging for the proxy binary: a
// slog.Logger backed by an OpenTelemetry LoggerProvider, so every log
// record flows through both a local text/json handler and (when
// configured) an OTLP collector.
//
// The teacher's own observability package was not available as a reference
// file; this package is built directly against the teacher's chosen
// dependency set (go.opentelemetry.io/contrib/bridges/otelslog,
// contrib/processors/minsev, the otlploggrpc/otlploghttp/stdoutlog
// exporters) following that stack's documented wiring, since the teacher's
// call site (observability.Instrument(logLevel, format)) had to be honored
// without its implementation to imitate directly.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/contrib/processors/minsev"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// Format selects the local log handler's encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Shutdown flushes and closes the OTel LoggerProvider wired by Instrument.
type Shutdown func(context.Context) error

// Instrument configures the default slog logger for the process: a local
// text-or-json handler plus an OTel logging bridge exporting to OTLP (when
// OTEL_EXPORTER_OTLP_ENDPOINT is set; OTEL_EXPORTER_OTLP_PROTOCOL picks
// gRPC or HTTP) or to stdout otherwise. Returns a Shutdown to flush on process exit.
func Instrument(logLevel string, format string) (Shutdown, error) {
	level := parseLevel(logLevel)

	exporter, err := newExporter(context.Background())
	if err != nil {
		return nil, fmt.Errorf("build log exporter: %w", err)
	}

	processor := minsev.NewLogProcessor(sdklog.NewBatchProcessor(exporter), severityFor(level))
	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(processor))

	bridgeHandler := otelslog.NewHandler(proxyLoggerName, otelslog.WithLoggerProvider(provider))

	localHandler := newLocalHandler(Format(format), level)

	logger := slog.New(fanoutHandler{handlers: []slog.Handler{localHandler, bridgeHandler}})
	slog.SetDefault(logger)

	return func(ctx context.Context) error {
		return provider.Shutdown(ctx)
	}, nil
}

const proxyLoggerName = "anthro-bridge"

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func severityFor(level slog.Level) otellog.Severity {
	switch {
	case level <= slog.LevelDebug:
		return otellog.SeverityDebug
	case level <= slog.LevelInfo:
		return otellog.SeverityInfo
	case level <= slog.LevelWarn:
		return otellog.SeverityWarn
	default:
		return otellog.SeverityError
	}
}

func newLocalHandler(format Format, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == FormatJSON {
		return slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.NewTextHandler(os.Stderr, opts)
}

// newExporter picks OTLP (gRPC preferred, HTTP as the fallback protocol
// knob) when an endpoint is configured, stdout otherwise, so the proxy has
// a working default with no external collector.
func newExporter(ctx context.Context) (sdklog.Exporter, error) {
	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" {
		return stdoutlog.New()
	}

	if os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL") == "http/protobuf" {
		return otlploghttp.New(ctx)
	}
	return otlploggrpc.New(ctx)
}

// fanoutHandler duplicates every record to each wrapped handler, so local
// and OTel-bridged output stay independent.
type fanoutHandler struct {
	handlers []slog.Handler
}

func (f fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, h := range f.handlers {
		if h.Enabled(ctx, record.Level) {
			if err := h.Handle(ctx, record.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return fanoutHandler{handlers: next}
}

func (f fanoutHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithGroup(name)
	}
	return fanoutHandler{handlers: next}
}
