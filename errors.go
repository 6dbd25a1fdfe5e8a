package hostsession

import (
	"errors"
	"fmt"
)

// ErrNotSupported indicates that a client cannot perform the requested operation
// (e.g. PTY allocation on the local provider).
var ErrNotSupported = errors.New("operation not supported")

// ErrSessionClosed indicates that an operation was attempted after Session.Close.
var ErrSessionClosed = errors.New("session is closed")

// ErrNotConnected indicates that a client was used before Connect succeeded or after Close.
var ErrNotConnected = errors.New("client is not connected")

// ConnectError represents a failure to open the transport to a host.
type ConnectError struct {
	Host string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect to %s: %v", e.Host, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// TransferError represents a failed upload of a file or rendered content.
type TransferError struct {
	Src  string // empty for content transfers
	Dest string
	Err  error
}

func (e *TransferError) Error() string {
	if e.Src == "" {
		return fmt.Sprintf("transfer content to %s: %v", e.Dest, e.Err)
	}

	return fmt.Sprintf("transfer %s to %s: %v", e.Src, e.Dest, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// ExecError represents a failure to run a command, as opposed to a command that
// ran and exited with a non-zero status.
type ExecError struct {
	Command string
	Err     error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("execute %q: %v", e.Command, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// TemplateError represents a template that failed to parse or render.
type TemplateError struct {
	Path string
	Err  error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("render template %s: %v", e.Path, e.Err)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}

// IOError represents a local file that could not be read.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
