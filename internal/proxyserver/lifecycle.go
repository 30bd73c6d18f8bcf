package proxyserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// httpServer wraps net/http lifecycle management around a Server, the same
// synchronous-listen/background-serve/graceful-shutdown shape the teacher's
// reverse proxy used.
type httpServer struct {
	server *http.Server
}

// Start binds address synchronously (so port-in-use is reported
// immediately) and serves in the background. Runtime errors surface on the
// returned channel; Shutdown stops the listener gracefully.
func (s *Server) Start(ctx context.Context, address string) (*httpServer, <-chan error, error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, nil, fmt.Errorf("listen on %s: %w", address, err)
	}

	hs := &httpServer{server: &http.Server{
		Handler:      s,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 15 * time.Minute, // bounded but long enough for SSE streams
		IdleTimeout:  90 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}}

	errCh := make(chan error, 1)
	go func() {
		if err := hs.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	return hs, errCh, nil
}

// Shutdown gracefully stops the listener, forcing a close if the graceful
// path doesn't complete before ctx is done.
func (hs *httpServer) Shutdown(ctx context.Context) error {
	if hs == nil || hs.server == nil {
		return nil
	}
	if err := hs.server.Shutdown(ctx); err != nil {
		_ = hs.server.Close()
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
