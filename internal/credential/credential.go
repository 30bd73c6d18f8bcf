// Package credential provides persistent storage for the OpenAI API key
// this proxy presents upstream, adapted from the teacher's tokenstore
// package: that package stored an Anthropic OAuth refresh token (read and
// written, since OAuth exchanges rotate it); this proxy's credential model
// is a single static API key, so only Read is exercised outside the
// `credential set`/`credential clear` CLI subcommands, but Write is kept on
// the interface (the env backend's Write always errors).
package credential

import "context"

// Store reads and writes the stored OpenAI API key.
type Store interface {
	// Read returns the stored key. Returns an error if missing or empty.
	Read(ctx context.Context) (string, error)

	// Write persists the key. Returns an error if the backend is read-only
	// (env) or the write fails.
	Write(ctx context.Context, key string) error
}
