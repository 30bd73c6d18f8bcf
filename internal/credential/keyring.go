package credential

import (
	"context"
	"fmt"

	"github.com/zalando/go-keyring"
)

// keyringService names this proxy's entry in the OS-native credential
// store (macOS Keychain, Windows Credential Manager, Linux Secret Service).
const keyringService = "anthro-bridge-credential"

// KeyringStore is OS-native secure key storage.
type KeyringStore struct {
	service string
	user    string
}

var _ Store = (*KeyringStore)(nil)

// NewKeyringStore creates a KeyringStore scoped to the given OS user.
func NewKeyringStore(user string) (*KeyringStore, error) {
	if user == "" {
		return nil, fmt.Errorf("user cannot be empty")
	}
	return &KeyringStore{service: keyringService, user: user}, nil
}

func (k *KeyringStore) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key, err := keyring.Get(k.service, k.user)
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", fmt.Errorf("empty credential in keyring for service %s, user %s", k.service, k.user)
	}
	return key, nil
}

func (k *KeyringStore) Write(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return keyring.Set(k.service, k.user, key)
}
