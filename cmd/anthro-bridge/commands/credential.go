package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

func credentialCommand() *cli.Command {
	return &cli.Command{
		Name:  "credential",
		Usage: "manage the stored OpenAI API key",
		Commands: []*cli.Command{
			credentialSetCommand(),
			credentialClearCommand(),
		},
	}
}

func credentialSetCommand() *cli.Command {
	return &cli.Command{
		Name:  "set",
		Usage: "prompt for an API key and store it",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			store, err := cfg.Credential.NewStore()
			if err != nil {
				return fmt.Errorf("build credential store: %w", err)
			}

			key, err := readCredentialInteractive()
			if err != nil {
				return fmt.Errorf("read credential: %w", err)
			}
			if key == "" {
				return fmt.Errorf("empty credential, not stored")
			}

			if err := store.Write(ctx, key); err != nil {
				return fmt.Errorf("store credential: %w", err)
			}
			fmt.Fprintln(cmd.Writer, "credential stored")
			return nil
		},
	}
}

func credentialClearCommand() *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "overwrite the stored API key with an empty value",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			store, err := cfg.Credential.NewStore()
			if err != nil {
				return fmt.Errorf("build credential store: %w", err)
			}
			if err := store.Write(ctx, ""); err != nil {
				return fmt.Errorf("clear credential: %w", err)
			}
			fmt.Fprintln(cmd.Writer, "credential cleared")
			return nil
		},
	}
}

// readCredentialInteractive prompts on stderr and reads the key from stdin
// without echoing it to the terminal, so it never lands in shell history or
// a visible terminal scrollback.
func readCredentialInteractive() (string, error) {
	fmt.Fprint(os.Stderr, "OpenAI API key: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}
