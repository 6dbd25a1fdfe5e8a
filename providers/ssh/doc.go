// Package ssh provides the hostsession.Client used to reach remote hosts over
// the SSH protocol.
//
// It uses "golang.org/x/crypto/ssh" for the transport and "github.com/pkg/sftp"
// for file transfers, and supports:
//   - Password, PEM key (with optional passphrase), key file and ssh-agent auth
//   - known_hosts verification, or an explicit insecure opt-out
//   - Transport heartbeats for long-lived keep-alive sessions
//   - Environment and working directory for remote commands
//   - Parameters taken from an OpenSSH config entry
//
// Each Client holds a single connection. A hostsession.Session decides when
// clients are created and closed.
//
// Usage:
//
//	auth := hostsession.Auth{Username: "deploy", Password: "secret"}
//	sess, err := ssh.NewSession("example.com", auth, hostsession.WithKeepAlive(true))
//	if err != nil {
//		return err
//	}
//	defer sess.Close()
//
//	res, err := sess.Execute(ctx, "uptime")
package ssh
