package main

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"os/user"

	"github.com/ruffel/hostsession"
	"github.com/ruffel/hostsession/providers/local"
	"github.com/ruffel/hostsession/providers/ssh"
	"go.uber.org/zap"
)

const localHost = "localhost"

// overrides collects connection overrides. Later sources win: the OpenSSH
// config entry, the config file's ssh section, then flags.
func (a *app) overrides() (hostsession.Overrides, error) {
	v := a.v
	overrides := hostsession.Overrides{}

	if alias := v.GetString("ssh-config-alias"); alias != "" {
		fromConfig, err := ssh.OverridesFromSSHConfig(alias, v.GetString("ssh-config"))
		if err != nil {
			return nil, err
		}

		maps.Copy(overrides, fromConfig)
	}

	maps.Copy(overrides, v.GetStringMap("ssh"))

	if port := v.GetInt("port"); port > 0 {
		overrides["port"] = port
	}

	if key := v.GetString("key"); key != "" {
		overrides["privateKeyPath"] = key
	}

	if passphrase := v.GetString("passphrase"); passphrase != "" {
		overrides["passphrase"] = passphrase
	}

	if knownHosts := v.GetString("known-hosts"); knownHosts != "" {
		overrides["knownHostsFile"] = knownHosts
	}

	if v.GetBool("agent") {
		overrides["agent"] = true
	}

	if v.GetBool("insecure") {
		overrides["insecureIgnoreHostKey"] = true
	}

	return overrides, nil
}

// target returns the host and auth for the session.
func (a *app) target() (string, hostsession.Auth, error) {
	host := a.v.GetString("host")
	if host == "" {
		host = a.v.GetString("ssh-config-alias")
	}

	if host == "" && a.v.GetBool("local") {
		host = localHost
	}

	if host == "" {
		return "", hostsession.Auth{}, errors.New("missing --host (or --ssh-config-alias)")
	}

	username := a.v.GetString("user")
	if username == "" {
		if u, err := user.Current(); err == nil {
			username = u.Username
		} else {
			username = os.Getenv("USER")
		}
	}

	return host, hostsession.Auth{Username: username, Password: a.v.GetString("password")}, nil
}

// newSession builds a Session from flags, environment and config file.
func (a *app) newSession(forceKeepAlive bool) (*hostsession.Session, error) {
	host, auth, err := a.target()
	if err != nil {
		return nil, err
	}

	overrides, err := a.overrides()
	if err != nil {
		return nil, err
	}

	var render hostsession.RenderOptions
	if err := a.v.UnmarshalKey("template", &render); err != nil {
		return nil, fmt.Errorf("invalid template config: %w", err)
	}

	factory := ssh.Factory(ssh.WithLogger(a.logger))
	if a.v.GetBool("local") {
		factory = local.Factory(local.WithRoot(a.v.GetString("root")), local.WithLogger(a.logger))
	}

	keepAlive := forceKeepAlive || a.v.GetBool("keep-alive")

	a.logger.Debug("session configured",
		zap.String("host", host),
		zap.String("user", auth.Username),
		zap.Bool("keep_alive", keepAlive),
		zap.Bool("local", a.v.GetBool("local")),
	)

	return hostsession.New(host, auth, factory,
		hostsession.WithKeepAlive(keepAlive),
		hostsession.WithSSHOverrides(overrides),
		hostsession.WithRenderOptions(render),
		hostsession.WithBaseDir(a.v.GetString("base-dir")),
		hostsession.WithLogger(a.logger),
		hostsession.WithProgressOutput(os.Stderr),
	)
}
