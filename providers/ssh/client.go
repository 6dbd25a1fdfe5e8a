package ssh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/ruffel/hostsession"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
)

var _ hostsession.Client = (*Client)(nil)

// Client implements hostsession.Client over a single SSH connection.
type Client struct {
	logger       *zap.Logger
	hostKeyCheck ssh.HostKeyCallback
	agentSocket  string

	mu        sync.Mutex
	conn      *ssh.Client
	agentConn io.Closer
	stop      chan struct{}
	closed    bool
}

// New creates an unconnected client.
func New(opts ...Option) *Client {
	c := &Client{logger: zap.NewNop()}
	for _, o := range opts {
		o(c)
	}

	return c
}

// Connect dials the host and completes the SSH handshake within info.ReadyTimeout.
// Cancelling ctx aborts the dial and the handshake.
func (c *Client) Connect(ctx context.Context, info hostsession.ConnectionInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.New("ssh client closed")
	}

	if c.conn != nil {
		return errors.New("ssh client already connected")
	}

	config, agentConn, err := c.clientConfig(info)
	if err != nil {
		return err
	}

	port := info.Port
	if port == 0 {
		port = DefaultPort
	}

	addr := net.JoinHostPort(info.Host, strconv.Itoa(port))

	client, err := dial(ctx, addr, config, info.ReadyTimeout)
	if err != nil {
		if agentConn != nil {
			_ = agentConn.Close()
		}

		return err
	}

	c.conn = client
	c.agentConn = agentConn

	if info.KeepAliveInterval > 0 {
		c.stop = make(chan struct{})
		startKeepAlive(client, info.KeepAliveInterval, c.stop, c.logger)
	}

	c.logger.Debug("ssh connection established",
		zap.String("addr", addr),
		zap.String("user", info.Username),
		zap.ByteString("server_version", client.ServerVersion()),
	)

	return nil
}

func dial(ctx context.Context, addr string, config *ssh.ClientConfig, timeout time.Duration) (*ssh.Client, error) {
	dialer := &net.Dialer{Timeout: timeout}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial ssh at %s: %w", addr, err)
	}

	if timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(timeout))
	}

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })

	sc, chans, reqs, err := ssh.NewClientConn(conn, addr, config)

	if !stop() {
		if err == nil {
			_ = sc.Close()
		}

		return nil, fmt.Errorf("ssh handshake with %s: %w", addr, ctx.Err())
	}

	if err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("ssh handshake with %s: %w", addr, err)
	}

	_ = conn.SetDeadline(time.Time{})

	return ssh.NewClient(sc, chans, reqs), nil
}

// client returns the live connection.
func (c *Client) client() (*ssh.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil || c.closed {
		return nil, hostsession.ErrNotConnected
	}

	return c.conn, nil
}

// Close closes the connection. It is safe to call on an unconnected client
// and more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true

	if c.stop != nil {
		close(c.stop)
	}

	if c.agentConn != nil {
		_ = c.agentConn.Close()
	}

	if c.conn != nil {
		return c.conn.Close()
	}

	return nil
}
