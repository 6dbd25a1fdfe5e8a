package local

import (
	"context"
	"errors"
	"path/filepath"
	"sync"

	"github.com/ruffel/hostsession"
	"github.com/ruffel/hostsession/fileutil"
	"go.uber.org/zap"
)

var _ hostsession.Client = (*Client)(nil)

// Client implements hostsession.Client for the local operating system.
type Client struct {
	shell  string
	root   string
	logger *zap.Logger

	mu        sync.RWMutex
	connected bool
	closed    bool
}

// New creates a local client.
func New(opts ...Option) *Client {
	c := &Client{
		shell:  defaultShell,
		logger: zap.NewNop(),
	}

	for _, o := range opts {
		o(c)
	}

	return c
}

// Factory returns a hostsession.ClientFactory producing local clients with opts.
func Factory(opts ...Option) hostsession.ClientFactory {
	return func() hostsession.Client {
		return New(opts...)
	}
}

// Connect marks the client ready. The connection info is only logged; the
// target is always this machine.
func (c *Client) Connect(_ context.Context, info hostsession.ConnectionInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.New("local client closed")
	}

	c.connected = true

	c.logger.Debug("local client ready", zap.String("host", info.Host), zap.String("root", c.root))

	return nil
}

// Close releases the client. Running commands are not affected.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true

	return nil
}

func (c *Client) ready() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected || c.closed {
		return hostsession.ErrNotConnected
	}

	return nil
}

// resolve maps a remote path onto the local filesystem.
func (c *Client) resolve(remotePath string) (string, error) {
	if c.root == "" {
		return remotePath, nil
	}

	target := filepath.Join(c.root, filepath.FromSlash(remotePath))

	if err := fileutil.CheckPathTraversal(c.root, target); err != nil {
		return "", err
	}

	return target, nil
}
