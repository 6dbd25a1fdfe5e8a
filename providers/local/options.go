package local

import "go.uber.org/zap"

// Option defines a functional option for the local client.
type Option func(*Client)

// WithShell sets the shell used to run commands. Defaults to /bin/sh
// (cmd.exe on Windows).
func WithShell(shell string) Option {
	return func(c *Client) {
		c.shell = shell
	}
}

// WithRoot places every remote path under root. Paths that would escape it
// are rejected.
func WithRoot(root string) Option {
	return func(c *Client) {
		c.root = root
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}
