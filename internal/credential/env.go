package credential

import (
	"context"
	"fmt"
	"os"
)

// EnvStore is read-only access to a key held in an environment variable.
type EnvStore struct {
	envKey string
}

var _ Store = (*EnvStore)(nil)

// NewEnvStore creates an EnvStore for the given variable name.
func NewEnvStore(envKey string) (*EnvStore, error) {
	if envKey == "" {
		return nil, fmt.Errorf("environment key cannot be empty")
	}
	if _, exists := os.LookupEnv(envKey); !exists {
		return nil, fmt.Errorf("environment variable %s not set", envKey)
	}
	return &EnvStore{envKey: envKey}, nil
}

func (e *EnvStore) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := os.Getenv(e.envKey)
	if key == "" {
		return "", fmt.Errorf("environment variable %s is empty", e.envKey)
	}
	return key, nil
}

func (e *EnvStore) Write(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fmt.Errorf("environment variable storage is read-only")
}
