package commands

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/adrycodes/anthro-bridge/internal/config"
)

// Execute runs the root command with the given context and arguments.
func Execute(ctx context.Context, args []string) error {
	cmd := &cli.Command{
		Name:  "anthro-bridge",
		Usage: "Anthropic Messages API proxy for OpenAI-compatible backends",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug|info|warn|error)",
				Value: slog.LevelInfo.String(),
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			ensureCommand(),
			credentialCommand(),
		},
	}

	return cmd.Run(ctx, args)
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	configPath := cmd.String("config")
	if configPath == "" && cmd.Parent() != nil {
		configPath = cmd.Parent().String("config")
	}
	return config.Load(configPath, cmd, nil)
}
