package ftp

import (
	"context"
	"net"
	"sync"
	"time"
)

// deadlineConn bounds every read and write on an FTP control or data
// connection. jlaffaye/ftp only applies its timeout to the dial.
type deadlineConn struct {
	net.Conn
	timeout time.Duration
}

func (c *deadlineConn) Read(b []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(b)
}

func (c *deadlineConn) Write(b []byte) (int, error) {
	if err := c.Conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Write(b)
}

// connTracker remembers the connections of one session so they can be torn
// down when the run context ends. Connections added after closeAll are
// closed immediately.
type connTracker struct {
	mu     sync.Mutex
	conns  []net.Conn
	closed bool
}

func (t *connTracker) add(conn net.Conn) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		_ = conn.Close()
		return false
	}
	t.conns = append(t.conns, conn)
	return true
}

func (t *connTracker) closeAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	for _, conn := range t.conns {
		_ = conn.Close()
	}
	t.conns = nil
}

// dialFunc dials with the client timeout, wraps each connection with
// per-operation deadlines and registers it with tracker.
func dialFunc(ctx context.Context, timeout time.Duration, tracker *connTracker) func(network, address string) (net.Conn, error) {
	return func(network, address string) (net.Conn, error) {
		dialer := net.Dialer{Timeout: timeout}
		conn, err := dialer.DialContext(ctx, network, address)
		if err != nil {
			return nil, err
		}
		if !tracker.add(conn) {
			if err := context.Cause(ctx); err != nil {
				return nil, err
			}
			return nil, net.ErrClosed
		}
		return &deadlineConn{Conn: conn, timeout: timeout}, nil
	}
}
