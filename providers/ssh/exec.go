package ssh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ruffel/hostsession"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
)

const (
	ptyTerm = "xterm"
	ptyRows = 40
	ptyCols = 80
)

// Execute runs command in a new SSH session and waits for it to finish.
// A non-zero exit status is reported in the result, not as an error.
// Cancelling ctx kills the remote command.
func (c *Client) Execute(ctx context.Context, command string, opts hostsession.OpConfig) (*hostsession.Result, error) {
	conn, err := c.client()
	if err != nil {
		return nil, err
	}

	fullCommand, err := buildFullCommand(command, opts.Env, opts.Dir)
	if err != nil {
		return nil, err
	}

	session, err := conn.NewSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create ssh session: %w", err)
	}

	defer func() { _ = session.Close() }()

	var stdout, stderr bytes.Buffer

	session.Stdout = tee(&stdout, opts.Stdout)
	session.Stderr = tee(&stderr, opts.Stderr)

	if opts.Stdin != nil {
		session.Stdin = opts.Stdin
	}

	if opts.Tty {
		if err := session.RequestPty(ptyTerm, ptyRows, ptyCols, buildTerminalModes()); err != nil {
			return nil, fmt.Errorf("request for pty failed: %w", err)
		}
	}

	start := time.Now()

	if err := session.Start(fullCommand); err != nil {
		return nil, fmt.Errorf("failed to start remote command: %w", err)
	}

	done := make(chan error, 1)

	go func() { done <- session.Wait() }()

	var waitErr error

	select {
	case waitErr = <-done:
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		_ = session.Close()

		<-done

		return nil, ctx.Err()
	}

	res := &hostsession.Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}

	if waitErr != nil {
		exitErr := &ssh.ExitError{}
		if !errors.As(waitErr, &exitErr) {
			return nil, waitErr
		}

		res.ExitCode = exitErr.ExitStatus()
	}

	c.logger.Debug("remote command finished",
		zap.Int("exit_code", res.ExitCode),
		zap.Duration("duration", res.Duration),
	)

	return res, nil
}

func tee(buf *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}

	return io.MultiWriter(buf, w)
}
