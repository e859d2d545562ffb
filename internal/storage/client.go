package storage

import (
	"context"
	"io"
)

// Client opens sessions against a remote file store.
type Client interface {
	// Connect dials and authenticates. The session must be closed by the caller.
	Connect(ctx context.Context) (Session, error)
}

// Session is one authenticated connection with a current working directory.
type Session interface {
	// ChangeDir sets the directory relative names are resolved against
	ChangeDir(path string) error

	// Upload writes content to name, replacing any existing file
	Upload(name string, content io.Reader) error

	// Rename moves a file within the store
	Rename(from, to string) error

	// Close ends the session
	Close() error
}
