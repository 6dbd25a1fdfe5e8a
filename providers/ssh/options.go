package ssh

import (
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
)

// Option defines a functional option for the SSH client.
type Option func(*Client)

// WithLogger sets the logger used for connection events.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithHostKeyCallback verifies host keys with cb instead of the policy derived
// from the connection info.
func WithHostKeyCallback(cb ssh.HostKeyCallback) Option {
	return func(c *Client) {
		c.hostKeyCheck = cb
	}
}

// WithAgentSocket sets the ssh-agent socket used when agent auth is enabled.
// Defaults to $SSH_AUTH_SOCK.
func WithAgentSocket(path string) Option {
	return func(c *Client) {
		c.agentSocket = path
	}
}
