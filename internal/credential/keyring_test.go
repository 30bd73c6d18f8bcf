package credential

import (
	"context"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestNewKeyringStore_RejectsEmptyUser(t *testing.T) {
	if _, err := NewKeyringStore(""); err == nil {
		t.Error("NewKeyringStore should reject an empty user")
	}
}

func TestKeyringStore_WriteThenRead(t *testing.T) {
	keyring.MockInit()

	store, err := NewKeyringStore("alice")
	if err != nil {
		t.Fatalf("NewKeyringStore: %v", err)
	}

	if err := store.Write(context.Background(), "sk-from-keyring"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := store.Read(context.Background())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != "sk-from-keyring" {
		t.Errorf("Read = %q, want sk-from-keyring", got)
	}
}

func TestKeyringStore_ReadMissingEntryErrors(t *testing.T) {
	keyring.MockInit()

	store, err := NewKeyringStore("bob-never-written")
	if err != nil {
		t.Fatalf("NewKeyringStore: %v", err)
	}
	if _, err := store.Read(context.Background()); err == nil {
		t.Error("Read should error when nothing has been written for this user")
	}
}

func TestKeyringStore_ReadRejectsEmptyValue(t *testing.T) {
	keyring.MockInit()

	store, err := NewKeyringStore("carol")
	if err != nil {
		t.Fatalf("NewKeyringStore: %v", err)
	}
	if err := store.Write(context.Background(), ""); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := store.Read(context.Background()); err == nil {
		t.Error("Read should reject an empty stored credential")
	}
}
