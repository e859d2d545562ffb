package ftp

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/mrlokans/airspace/internal/storage"
)

const defaultTimeout = 30 * time.Second

// Client implements storage.Client for a plain FTP server
type Client struct {
	addr     string
	user     string
	password string
	timeout  time.Duration
}

// Compile-time check
var _ storage.Client = (*Client)(nil)

// NewClient creates a new FTP storage client for addr (host:port)
func NewClient(addr, user, password string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		addr:     addr,
		user:     user,
		password: password,
		timeout:  timeout,
	}
}

// Connect opens a session. Every FTP command is bounded by the client
// timeout, and cancelling ctx closes the session's connections.
func (c *Client) Connect(ctx context.Context) (storage.Session, error) {
	log.Printf("[FTP] Connecting to %s", c.addr)

	tracker := &connTracker{}
	stop := context.AfterFunc(ctx, tracker.closeAll)

	conn, err := ftp.Dial(c.addr, ftp.DialWithDialFunc(dialFunc(ctx, c.timeout, tracker)))
	if err != nil {
		stop()
		tracker.closeAll()
		return nil, fmt.Errorf("failed to connect to %s: %w", c.addr, err)
	}

	if err := conn.Login(c.user, c.password); err != nil {
		stop()
		tracker.closeAll()
		return nil, fmt.Errorf("failed to login to %s as %s: %w", c.addr, c.user, err)
	}

	return &session{conn: conn, stop: stop, tracker: tracker}, nil
}

type session struct {
	conn    *ftp.ServerConn
	stop    func() bool
	tracker *connTracker
}

func (s *session) ChangeDir(path string) error {
	if err := s.conn.ChangeDir(path); err != nil {
		return fmt.Errorf("cwd %s: %w", path, err)
	}
	return nil
}

func (s *session) Upload(name string, content io.Reader) error {
	if err := s.conn.Stor(name, content); err != nil {
		return fmt.Errorf("stor %s: %w", name, err)
	}
	return nil
}

func (s *session) Rename(from, to string) error {
	if err := s.conn.Rename(from, to); err != nil {
		return fmt.Errorf("rename %s to %s: %w", from, to, err)
	}
	return nil
}

func (s *session) Close() error {
	s.stop()
	err := s.conn.Quit()
	s.tracker.closeAll()
	return err
}
