//go:build !windows

package ssh

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"net"
	"os/exec"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/pkg/sftp"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

const (
	testUser     = "deploy"
	testPassword = "secret"
)

// testServer is an in-process SSH server that runs exec requests with the
// local shell and serves the sftp subsystem from the local filesystem.
type testServer struct {
	addr      string
	host      string
	port      int
	hostKey   ssh.Signer
	clientKey []byte // PEM encoded key accepted for public key auth

	mu          sync.Mutex
	connections int
	keepalives  int
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	hostKey, err := newSigner()
	require.NoError(t, err)

	clientPub, clientPriv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	block, err := ssh.MarshalPrivateKey(clientPriv, "")
	require.NoError(t, err)

	authorized, err := ssh.NewPublicKey(clientPub)
	require.NoError(t, err)

	srv := &testServer{hostKey: hostKey, clientKey: pem.EncodeToMemory(block)}

	config := &ssh.ServerConfig{
		PasswordCallback: func(c ssh.ConnMetadata, password []byte) (*ssh.Permissions, error) {
			if c.User() == testUser && string(password) == testPassword {
				return &ssh.Permissions{}, nil
			}

			return nil, errors.New("access denied")
		},
		PublicKeyCallback: func(c ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
			if c.User() == testUser && bytes.Equal(key.Marshal(), authorized.Marshal()) {
				return &ssh.Permissions{}, nil
			}

			return nil, errors.New("unknown key")
		},
	}
	config.AddHostKey(hostKey)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	tcpAddr := ln.Addr().(*net.TCPAddr)
	srv.addr = tcpAddr.String()
	srv.host = tcpAddr.IP.String()
	srv.port = tcpAddr.Port

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}

			go srv.handleConn(conn, config)
		}
	}()

	t.Cleanup(func() {
		_ = ln.Close()

		wg.Wait()
	})

	return srv
}

func (s *testServer) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.connections
}

func (s *testServer) Keepalives() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.keepalives
}

func (s *testServer) handleConn(raw net.Conn, config *ssh.ServerConfig) {
	sc, chans, reqs, err := ssh.NewServerConn(raw, config)
	if err != nil {
		_ = raw.Close()

		return
	}

	defer func() { _ = sc.Close() }()

	s.mu.Lock()
	s.connections++
	s.mu.Unlock()

	go s.handleGlobalRequests(reqs)

	for ch := range chans {
		if ch.ChannelType() != "session" {
			_ = ch.Reject(ssh.UnknownChannelType, "unsupported channel type")

			continue
		}

		channel, requests, err := ch.Accept()
		if err != nil {
			continue
		}

		go handleSession(channel, requests)
	}
}

func (s *testServer) handleGlobalRequests(reqs <-chan *ssh.Request) {
	for req := range reqs {
		if req.Type == keepAliveRequest {
			s.mu.Lock()
			s.keepalives++
			s.mu.Unlock()
		}

		if req.WantReply {
			_ = req.Reply(req.Type == keepAliveRequest, nil)
		}
	}
}

func handleSession(ch ssh.Channel, in <-chan *ssh.Request) {
	for req := range in {
		switch req.Type {
		case "pty-req":
			_ = req.Reply(true, nil)
		case "exec":
			var payload struct{ Command string }
			if err := ssh.Unmarshal(req.Payload, &payload); err != nil {
				_ = req.Reply(false, nil)

				continue
			}

			_ = req.Reply(true, nil)

			go runCommand(ch, in, payload.Command)

			return
		case "subsystem":
			var payload struct{ Name string }
			if err := ssh.Unmarshal(req.Payload, &payload); err != nil || payload.Name != "sftp" {
				_ = req.Reply(false, nil)

				continue
			}

			_ = req.Reply(true, nil)

			go serveSFTP(ch, in)

			return
		default:
			if req.WantReply {
				_ = req.Reply(false, nil)
			}
		}
	}

	_ = ch.Close()
}

func runCommand(ch ssh.Channel, in <-chan *ssh.Request, command string) {
	defer func() { _ = ch.Close() }()

	cmd := exec.Command("/bin/sh", "-c", command)
	cmd.Stdin = ch
	cmd.Stdout = ch
	cmd.Stderr = ch.Stderr()
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.WaitDelay = time.Second

	if err := cmd.Start(); err != nil {
		sendExitStatus(ch, 127)

		return
	}

	// A signal request or the client closing the channel kills the command.
	go func() {
		for req := range in {
			if req.WantReply {
				_ = req.Reply(false, nil)
			}

			if req.Type == "signal" {
				_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
			}
		}

		_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}()

	_ = cmd.Wait()

	code := 0
	if cmd.ProcessState != nil {
		code = cmd.ProcessState.ExitCode()
	}

	if code < 0 {
		code = 255
	}

	_ = ch.CloseWrite()
	sendExitStatus(ch, code)
}

func sendExitStatus(ch ssh.Channel, code int) {
	_, _ = ch.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{uint32(code)})) //nolint:gosec // exit codes are 0..255
}

func serveSFTP(ch ssh.Channel, in <-chan *ssh.Request) {
	defer func() { _ = ch.Close() }()

	go ssh.DiscardRequests(in)

	server, err := sftp.NewServer(ch)
	if err != nil {
		return
	}

	_ = server.Serve()
}

func newSigner() (ssh.Signer, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}

	return ssh.NewSignerFromKey(priv)
}

// closedPort returns a local port with nothing listening on it.
func closedPort(t *testing.T) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	return port
}
