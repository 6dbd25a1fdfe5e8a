// Package hostsession runs commands and deploys files on a single remote host
// over SSH.
//
// # Core Types
//
//   - Session: owns the connection policy for one host across a sequence of operations.
//   - Client: the SSH client capability a Session delegates to (see providers/ssh).
//   - Renderer: the template engine used for templated copies and scripts.
//
// # Connection Lifecycle
//
// By default every operation dials a fresh connection and closes it before the
// operation returns. With WithKeepAlive(true) the Session dials once, lazily, and
// reuses that connection until Close is called. A broken keep-alive connection is
// not repaired; operations keep failing at the transport layer until Close.
//
// # Templates
//
// Copy with WithVars renders the local file and uploads the rendered text.
// ExecuteScript renders a local script and runs the result as the command.
// Without variables the file content is used verbatim.
package hostsession

import (
	"context"
)

// Client abstracts the SSH transport used by a Session.
//
// A Client is created by a ClientFactory, connected once, used for one or more
// operations and then closed. Implementations must tolerate Close on a client
// that never connected.
type Client interface {
	// Connect opens the transport described by info.
	Connect(ctx context.Context, info ConnectionInfo) error

	// Execute runs command on the remote host.
	// A non-zero exit status is reported through Result.ExitCode, not as an error.
	Execute(ctx context.Context, command string, opts OpConfig) (*Result, error)

	// PutFile uploads the local file at localPath to remotePath.
	// onProgress receives completion percentages in the range 0..100.
	PutFile(ctx context.Context, localPath, remotePath string, onProgress ProgressFunc) error

	// PutContent writes content to remotePath.
	PutContent(ctx context.Context, content, remotePath string) error

	// Close releases the transport. It does not wait for in-flight operations.
	Close() error
}

// ClientFactory returns a new, unconnected Client.
type ClientFactory func() Client

// Renderer evaluates a template against a variable mapping.
type Renderer interface {
	Render(text string, vars Vars, opts RenderOptions) (string, error)
}
