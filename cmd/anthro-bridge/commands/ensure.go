package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/adrycodes/anthro-bridge/internal/supervisor"
)

func ensureCommand() *cli.Command {
	return &cli.Command{
		Name:  "ensure",
		Usage: "ensure a compatible proxy is reachable, starting one if needed",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "proxy-url", Usage: "proxy URL to probe/start"},
			&cli.StringFlag{Name: "upstream", Usage: "upstream API base URL passed to a spawned proxy"},
			&cli.StringFlag{Name: "supervisor-tag", Usage: "inert argv marker used to discover/terminate a prior instance"},
			&cli.BoolFlag{Name: "force-restart", Usage: "terminate any discoverable proxy and start fresh"},
		},
		Action: ensureAction,
	}
}

func ensureAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	proxyURL := cmd.String("proxy-url")
	if proxyURL == "" {
		proxyURL = cfg.Supervisor.ProxyURL
	}
	if proxyURL == "" {
		proxyURL = supervisor.BuildProxyURL(cfg.Server.Host, int(cfg.Server.Port), "http")
	}
	upstreamURL := cmd.String("upstream")
	if upstreamURL == "" {
		upstreamURL = cfg.Upstream.BaseURL
	}
	tag := cmd.String("supervisor-tag")
	if tag == "" {
		tag = cfg.Supervisor.Tag
	}

	result := supervisor.Ensure(ctx, proxyURL, upstreamURL, tag, supervisor.SpawnProcess, cmd.Bool("force-restart"))

	fmt.Printf("%s: %s (%s)\n", result.Outcome, result.Message, result.ProxyURL)
	if result.Outcome == supervisor.OutcomeFailed {
		return fmt.Errorf("ensure failed: %s", result.Message)
	}
	return nil
}
