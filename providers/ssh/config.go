package ssh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kevinburke/ssh_config"
	"github.com/ruffel/hostsession"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// DefaultPort is used when ConnectionInfo.Port is zero.
const DefaultPort = 22

const agentDialTimeout = 500 * time.Millisecond

// clientConfig converts ConnectionInfo to an ssh.ClientConfig.
// The returned closer releases the agent connection, if one was opened.
func (c *Client) clientConfig(info hostsession.ConnectionInfo) (*ssh.ClientConfig, io.Closer, error) {
	if info.Username == "" {
		return nil, nil, errors.New("configuration error: username cannot be empty")
	}

	hostKeyCallback, err := c.hostKeyCallback(info)
	if err != nil {
		return nil, nil, err
	}

	config := &ssh.ClientConfig{
		User:            info.Username,
		Auth:            []ssh.AuthMethod{},
		HostKeyCallback: hostKeyCallback,
		Timeout:         info.ReadyTimeout,
	}

	if info.PrivateKey != "" {
		signer, err := parsePrivateKey([]byte(info.PrivateKey), info.Passphrase)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse private key: %w", err)
		}

		config.Auth = append(config.Auth, ssh.PublicKeys(signer))
	}

	if keyAuth, err := loadPrivateKeyAuth(info.PrivateKeyPath, info.Passphrase); err != nil {
		return nil, nil, err
	} else if keyAuth != nil {
		config.Auth = append(config.Auth, keyAuth)
	}

	if info.Password != "" {
		config.Auth = append(config.Auth,
			ssh.Password(info.Password),
			ssh.KeyboardInteractive(passwordChallenge(info.Password)),
		)
	}

	var closer io.Closer

	if info.UseAgent {
		agentAuth, conn := loadAgentAuth(c.agentSocket)
		if agentAuth != nil {
			config.Auth = append(config.Auth, agentAuth)
			closer = conn
		}
	}

	if len(config.Auth) == 0 {
		return nil, nil, errors.New("configuration error: no authentication method available")
	}

	return config, closer, nil
}

// hostKeyCallback picks the host key policy: an explicit callback, the insecure
// opt-out, the configured known_hosts file, then the user's default one.
func (c *Client) hostKeyCallback(info hostsession.ConnectionInfo) (ssh.HostKeyCallback, error) {
	if c.hostKeyCheck != nil {
		return c.hostKeyCheck, nil
	}

	if info.InsecureIgnoreHostKey {
		return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec // explicitly requested
	}

	if info.KnownHostsFile != "" {
		cb, err := knownhosts.New(expandHome(info.KnownHostsFile))
		if err != nil {
			return nil, fmt.Errorf("failed to load known hosts: %w", err)
		}

		return cb, nil
	}

	cb, err := DefaultKnownHosts()
	if err != nil {
		return nil, fmt.Errorf("configuration error: no host key policy; set knownHostsFile or insecureIgnoreHostKey: %w", err)
	}

	return cb, nil
}

// DefaultKnownHosts returns a HostKeyCallback that verifies the host key against
// entries in the user's ~/.ssh/known_hosts file.
func DefaultKnownHosts() (ssh.HostKeyCallback, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	return knownhosts.New(filepath.Join(home, ".ssh", "known_hosts"))
}

func parsePrivateKey(pemBytes []byte, passphrase string) (ssh.Signer, error) {
	if passphrase != "" {
		return ssh.ParsePrivateKeyWithPassphrase(pemBytes, []byte(passphrase))
	}

	return ssh.ParsePrivateKey(pemBytes)
}

// loadPrivateKeyAuth loads a private key from a file and returns an ssh.AuthMethod.
// Returns nil if the path is empty.
func loadPrivateKeyAuth(keyPath, passphrase string) (ssh.AuthMethod, error) {
	if keyPath == "" {
		return nil, nil //nolint:nilnil // no key path configured
	}

	keyBytes, err := os.ReadFile(expandHome(keyPath))
	if err != nil {
		return nil, fmt.Errorf("failed to read private key file: %w", err)
	}

	signer, err := parsePrivateKey(keyBytes, passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key file: %w", err)
	}

	return ssh.PublicKeys(signer), nil
}

// loadAgentAuth connects to the SSH agent and returns an ssh.AuthMethod.
// Returns nil if the agent socket is unavailable.
func loadAgentAuth(socket string) (ssh.AuthMethod, io.Closer) {
	if socket == "" {
		socket = os.Getenv("SSH_AUTH_SOCK")
	}

	if socket == "" {
		return nil, nil
	}

	conn, err := (&net.Dialer{Timeout: agentDialTimeout}).DialContext(context.Background(), "unix", socket)
	if err != nil {
		return nil, nil
	}

	return ssh.PublicKeysCallback(agent.NewClient(conn).Signers), conn
}

// passwordChallenge answers keyboard-interactive prompts with the password.
func passwordChallenge(password string) ssh.KeyboardInteractiveChallenge {
	return func(_, _ string, questions []string, _ []bool) ([]string, error) {
		answers := make([]string, len(questions))
		for i := range answers {
			answers[i] = password
		}

		return answers, nil
	}
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[2:])
}

// OverridesFromSSHConfig reads the entry for alias from an OpenSSH config file.
// An empty path reads ~/.ssh/config.
func OverridesFromSSHConfig(alias, path string) (hostsession.Overrides, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to open ssh config: %w", err)
		}

		path = filepath.Join(home, ".ssh", "config")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ssh config: %w", err)
	}

	defer func() { _ = f.Close() }()

	return OverridesFromSSHConfigReader(alias, f)
}

// OverridesFromSSHConfigReader parses OpenSSH config data and maps the entry
// for alias onto connection overrides. HostName falls back to the alias itself;
// other keys are only set when the entry defines them.
func OverridesFromSSHConfigReader(alias string, r io.Reader) (hostsession.Overrides, error) {
	cfg, err := ssh_config.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ssh config: %w", err)
	}

	get := func(key string) string {
		v, _ := cfg.Get(alias, key)

		return strings.TrimSpace(v)
	}

	overrides := hostsession.Overrides{"host": alias}

	if hostName := get("HostName"); hostName != "" {
		overrides["host"] = hostName
	}

	if user := get("User"); user != "" {
		overrides["username"] = user
	}

	if portStr := get("Port"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid port %q for %s: %w", portStr, alias, err)
		}

		overrides["port"] = port
	}

	if identityFile := get("IdentityFile"); identityFile != "" {
		overrides["privateKeyPath"] = expandHome(identityFile)
	}

	if knownHosts := get("UserKnownHostsFile"); knownHosts != "" {
		overrides["knownHostsFile"] = expandHome(strings.Fields(knownHosts)[0])
	}

	if strings.EqualFold(get("StrictHostKeyChecking"), "no") {
		overrides["insecureIgnoreHostKey"] = true
	}

	if interval := get("ServerAliveInterval"); interval != "" && interval != "0" {
		overrides["keepaliveInterval"] = interval + "s"
	}

	if timeout := get("ConnectTimeout"); timeout != "" {
		overrides["readyTimeout"] = timeout + "s"
	}

	if identityAgent := get("IdentityAgent"); identityAgent != "" && !strings.EqualFold(identityAgent, "none") {
		overrides["agent"] = true
	}

	return overrides, nil
}
