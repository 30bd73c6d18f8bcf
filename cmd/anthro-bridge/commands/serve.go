package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/adrycodes/anthro-bridge/internal/config"
	"github.com/adrycodes/anthro-bridge/internal/observability"
	"github.com/adrycodes/anthro-bridge/internal/proxyserver"
	"github.com/adrycodes/anthro-bridge/internal/upstream"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the proxy server in the foreground",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-format", Usage: "log format (text|json)", Value: string(config.DefaultLogFormat)},
			&cli.StringFlag{Name: "server--host", Aliases: []string{"host"}, Usage: "server host", Value: config.DefaultServerHost},
			&cli.IntFlag{Name: "server--port", Aliases: []string{"port"}, Usage: "server port", Value: config.DefaultServerPort},
			&cli.StringFlag{Name: "upstream--base-url", Aliases: []string{"upstream"}, Usage: "upstream API base URL", Value: config.DefaultUpstreamBaseURL},
			&cli.BoolFlag{Name: "upstream--force-responses", Usage: "always use the Responses API, never Chat Completions"},
			&cli.StringFlag{Name: "supervisor--tag", Aliases: []string{"supervisor-tag"}, Usage: "inert argv marker a supervisor uses to discover this process", Value: config.DefaultSupervisorTag},
			&cli.StringFlag{Name: "credential--storage", Usage: "credential storage backend (file|env|keyring)"},
			&cli.StringFlag{Name: "credential--file", Usage: "credential file path (storage=file)"},
			&cli.StringFlag{Name: "credential--env-key", Usage: "environment variable name (storage=env)"},
		},
		Action: serveAction,
	}
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	shutdownLogs, err := observability.Instrument(cfg.LogLevel.String(), string(cfg.LogFormat))
	if err != nil {
		return fmt.Errorf("set up observability: %w", err)
	}

	store, err := cfg.Credential.NewStore()
	if err != nil {
		return fmt.Errorf("build credential store: %w", err)
	}
	fallbackKey, _ := store.Read(ctx)

	client := upstream.New(cfg.Upstream.BaseURL, cfg.Upstream.Timeout)
	envAPIKey := os.Getenv("OPENAI_API_KEY")
	credResolver := func(r *http.Request) string {
		return upstream.ResolveCredential(r, envAPIKey, fallbackKey)
	}

	server := proxyserver.New(client, credResolver, cfg.Upstream.ForceResponses, slog.Default())

	address := cfg.Server.Host + ":" + strconv.Itoa(int(cfg.Server.Port))

	g, gCtx := errgroup.WithContext(ctx)
	var shutdownFuncs []func(context.Context) error

	slog.InfoContext(gCtx, "starting proxy server", "address", address)
	httpServer, errCh, err := server.Start(gCtx, address)
	if err != nil {
		return fmt.Errorf("proxy startup failed: %w", err)
	}
	shutdownFuncs = append(shutdownFuncs, httpServer.Shutdown)
	shutdownFuncs = append(shutdownFuncs, shutdownLogs)

	g.Go(func() error {
		select {
		case err := <-errCh:
			if err != nil {
				slog.ErrorContext(gCtx, "proxy runtime error", "error", err)
				return fmt.Errorf("proxy: %w", err)
			}
			return nil
		case <-gCtx.Done():
			return nil
		}
	})

	slog.InfoContext(gCtx, "proxy ready", "address", address)

	runtimeErr := g.Wait()

	slog.InfoContext(gCtx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
	defer cancel()

	var errs []error
	if runtimeErr != nil {
		errs = append(errs, fmt.Errorf("runtime: %w", runtimeErr))
	}
	for i := len(shutdownFuncs) - 1; i >= 0; i-- {
		if err := shutdownFuncs[i](shutdownCtx); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	slog.Info("proxy stopped gracefully")
	return nil
}
