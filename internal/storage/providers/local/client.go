package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrlokans/airspace/internal/storage"
)

// Client implements storage.Client on the local filesystem. Remote paths are
// resolved under root, which lets a debug run publish without an FTP server.
type Client struct {
	root string
}

// Compile-time check
var _ storage.Client = (*Client)(nil)

func NewClient(root string) *Client {
	return &Client{root: root}
}

func (c *Client) Connect(ctx context.Context) (storage.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := os.Stat(c.root)
	if err != nil {
		return nil, fmt.Errorf("output root %s: %w", c.root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("output root %s is not a directory", c.root)
	}
	return &session{root: c.root, cwd: c.root}, nil
}

type session struct {
	root string
	cwd  string
}

// resolve keeps every path inside root.
func (s *session) resolve(name string) string {
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return filepath.Join(s.root, filepath.Clean("/"+name))
	}
	return filepath.Join(s.cwd, filepath.Clean("/"+name))
}

// ChangeDir creates the directory when missing, like a publish target
// provisioned on first use.
func (s *session) ChangeDir(path string) error {
	dir := s.resolve(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cwd %s: %w", path, err)
	}
	s.cwd = dir
	return nil
}

func (s *session) Upload(name string, content io.Reader) error {
	f, err := os.Create(s.resolve(name))
	if err != nil {
		return fmt.Errorf("stor %s: %w", name, err)
	}
	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		return fmt.Errorf("stor %s: %w", name, err)
	}
	return f.Close()
}

func (s *session) Rename(from, to string) error {
	if err := os.Rename(s.resolve(from), s.resolve(to)); err != nil {
		return fmt.Errorf("rename %s to %s: %w", from, to, err)
	}
	return nil
}

func (s *session) Close() error {
	return nil
}
