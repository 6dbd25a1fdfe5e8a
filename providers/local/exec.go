package local

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/ruffel/hostsession"
	"go.uber.org/zap"
)

// waitDelay bounds how long output pipes may stay open after the shell exits.
const waitDelay = time.Second

// Execute runs command through the shell and waits for it to finish.
// Cancelling ctx kills the whole process group.
func (c *Client) Execute(ctx context.Context, command string, opts hostsession.OpConfig) (*hostsession.Result, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	if opts.Tty {
		return nil, fmt.Errorf("cannot allocate a tty for %q: %w", command, hostsession.ErrNotSupported)
	}

	cmd := shellCommand(ctx, c.shell, command)

	if opts.Dir != "" {
		dir, err := c.resolve(opts.Dir)
		if err != nil {
			return nil, err
		}

		cmd.Dir = dir
	}

	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}

	// Own process group so cancellation reaches children too.
	setProcessGroup(cmd)

	cmd.Cancel = func() error {
		return killProcessGroup(cmd.Process.Pid)
	}
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer

	cmd.Stdout = tee(&stdout, opts.Stdout)
	cmd.Stderr = tee(&stderr, opts.Stderr)
	cmd.Stdin = opts.Stdin

	start := time.Now()
	err := cmd.Run()

	res := &hostsession.Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if err != nil {
		exitErr := &exec.ExitError{}
		if !errors.As(err, &exitErr) {
			return nil, err
		}

		res.ExitCode = exitErr.ExitCode()
	}

	c.logger.Debug("local command finished",
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
