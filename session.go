package hostsession

import (
	"context"
	"errors"
	"os"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Session runs operations against one host according to its connection policy.
// A Session is safe for concurrent use. In keep-alive mode concurrent operations
// share one connection and are not serialized.
type Session struct {
	host   string
	auth   Auth
	config Config

	newClient ClientFactory
	renderer  Renderer
	logger    *zap.Logger

	readFile   func(name string) ([]byte, error)
	isTerminal func(fd int) bool

	mu           sync.Mutex
	persistent   Client
	closed       bool
	connectGroup singleflight.Group
}

// New creates a Session for host. newClient is called once per connection.
func New(host string, auth Auth, newClient ClientFactory, opts ...Option) (*Session, error) {
	if host == "" {
		return nil, errors.New("session: host cannot be empty")
	}

	if newClient == nil {
		return nil, errors.New("session: client factory cannot be nil")
	}

	if err := auth.Validate(); err != nil {
		return nil, err
	}

	var cfg Config
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	if cfg.Renderer == nil {
		cfg.Renderer = TemplateRenderer{}
	}

	if cfg.ProgressOutput == nil {
		cfg.ProgressOutput = os.Stdout
	}

	return &Session{
		host:       host,
		auth:       auth,
		config:     cfg,
		newClient:  newClient,
		renderer:   cfg.Renderer,
		logger:     cfg.Logger.Named("session").With(zap.String("host", host)),
		readFile:   os.ReadFile,
		isTerminal: isTerminal,
	}, nil
}

// Host returns the host the Session targets.
func (s *Session) Host() string {
	return s.host
}

// Copy uploads src to dest on the remote host.
//
// With WithVars the file is rendered first and the rendered text is written to
// dest; no rendered copy is stored locally. Otherwise the file is transferred as
// is, with a progress bar when WithProgressBar is set and output is a terminal.
func (s *Session) Copy(ctx context.Context, src, dest string, opts ...OpOption) (*Result, error) {
	cfg := newOpConfig(opts)

	s.logger.Debug("copy file",
		zap.String("src", src),
		zap.String("dest", dest),
		zap.Any("vars", cfg.Vars),
	)

	if cfg.Vars != nil {
		content, err := s.renderFile(src, cfg.Vars)
		if err != nil {
			return nil, err
		}

		return s.withClient(ctx, func(client Client) (*Result, error) {
			if err := client.PutContent(ctx, content, dest); err != nil {
				return nil, &TransferError{Dest: dest, Err: err}
			}

			return &Result{}, nil
		})
	}

	return s.withClient(ctx, func(client Client) (*Result, error) {
		onProgress, finish := s.progress(cfg.ProgressBar)
		defer finish()

		if err := client.PutFile(ctx, src, dest, onProgress); err != nil {
			return nil, &TransferError{Src: src, Dest: dest, Err: err}
		}

		return &Result{}, nil
	})
}

// Execute runs command on the remote host. The options are passed to the client
// unchanged. A non-zero exit status is returned in Result.ExitCode.
func (s *Session) Execute(ctx context.Context, command string, opts ...OpOption) (*Result, error) {
	cfg := newOpConfig(opts)

	s.logger.Debug("execute", zap.String("command", command))

	return s.withClient(ctx, func(client Client) (*Result, error) {
		res, err := client.Execute(ctx, command, cfg)
		if err != nil {
			return nil, &ExecError{Command: command, Err: err}
		}

		if res == nil {
			res = &Result{}
		}

		s.logger.Debug("execute finished", zap.Int("exit_code", res.ExitCode), zap.Duration("duration", res.Duration))

		return res, nil
	})
}

// ExecuteScript renders the local script file against the WithVars variables and
// executes the result as the command. Without variables the script runs verbatim.
func (s *Session) ExecuteScript(ctx context.Context, scriptFile string, opts ...OpOption) (*Result, error) {
	cfg := newOpConfig(opts)

	vars := cfg.Vars
	if vars == nil {
		vars = Vars{}
	}

	s.logger.Debug("execute script", zap.String("script", scriptFile), zap.Any("vars", vars))

	command, err := s.renderFile(scriptFile, vars)
	if err != nil {
		return nil, err
	}

	return s.Execute(ctx, command, opts...)
}

// Close closes the keep-alive connection, if any. The Session cannot be used
// afterwards. Calling Close more than once is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()

		return nil
	}

	s.closed = true
	client := s.persistent
	s.persistent = nil
	s.mu.Unlock()

	if client == nil {
		return nil
	}

	s.logger.Debug("closing keep-alive connection")

	return client.Close()
}
