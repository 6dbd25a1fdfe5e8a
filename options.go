package hostsession

import (
	"io"
	"maps"
	"os"
	"text/template"

	"go.uber.org/zap"
)

// Config holds the per-session options.
type Config struct {
	KeepAlive bool          // Reuse one connection for every operation until Close
	SSH       Overrides     // Overlaid onto the resolved ConnectionInfo
	Render    RenderOptions // Passed to the Renderer

	// BaseDir scopes local template and script reads. Empty means unrestricted.
	BaseDir string

	Logger         *zap.Logger
	Renderer       Renderer
	ProgressOutput *os.File // Where progress bars are drawn (default os.Stdout)
}

// RenderOptions configures the default text/template renderer.
type RenderOptions struct {
	LeftDelim  string           `mapstructure:"leftDelim" yaml:"left_delim"`
	RightDelim string           `mapstructure:"rightDelim" yaml:"right_delim"`
	MissingKey string           `mapstructure:"missingKey" yaml:"missing_key"` // default, zero or error (default: error)
	Funcs      template.FuncMap `mapstructure:"-" yaml:"-"`
}

// Option defines a functional option for a Session.
type Option func(*Config)

// WithConfig replaces the whole configuration.
func WithConfig(c Config) Option {
	return func(cfg *Config) {
		*cfg = c
	}
}

// WithKeepAlive enables or disables connection reuse.
func WithKeepAlive(keepAlive bool) Option {
	return func(c *Config) {
		c.KeepAlive = keepAlive
	}
}

// WithSSHOverrides merges o into the connection overrides. Later calls win per key.
// Neither o nor a map installed by WithConfig is modified.
func WithSSHOverrides(o Overrides) Option {
	return func(c *Config) {
		merged := make(Overrides, len(c.SSH)+len(o))
		maps.Copy(merged, c.SSH)
		maps.Copy(merged, o)

		c.SSH = merged
	}
}

// WithRenderOptions sets the options passed to the Renderer.
func WithRenderOptions(opts RenderOptions) Option {
	return func(c *Config) {
		c.Render = opts
	}
}

// WithRenderer replaces the default text/template renderer.
func WithRenderer(r Renderer) Option {
	return func(c *Config) {
		c.Renderer = r
	}
}

// WithLogger sets the logger. The Session names it after itself and its host.
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithBaseDir restricts local template and script reads to dir.
// Relative paths are resolved against dir.
func WithBaseDir(dir string) Option {
	return func(c *Config) {
		c.BaseDir = dir
	}
}

// WithProgressOutput sets the terminal progress bars are drawn on.
func WithProgressOutput(f *os.File) Option {
	return func(c *Config) {
		c.ProgressOutput = f
	}
}

// OpConfig holds per-operation options. Execute passes it to the Client unchanged.
type OpConfig struct {
	Vars        Vars // nil means no templating; an empty map still selects content transfer for Copy
	ProgressBar bool // Draw a progress bar for file copies on a terminal

	Env    []string // Environment variables in "KEY=VALUE" format
	Dir    string   // Remote working directory
	Stdin  io.Reader
	Stdout io.Writer // Receives output in addition to Result.Stdout
	Stderr io.Writer // Receives output in addition to Result.Stderr
	Tty    bool      // Allocate a PTY
}

// OpOption defines a functional option for a single operation.
type OpOption func(*OpConfig)

func newOpConfig(opts []OpOption) OpConfig {
	var cfg OpConfig
	for _, o := range opts {
		o(&cfg)
	}

	return cfg
}

// WithVars renders the source file against vars before using it.
func WithVars(vars Vars) OpOption {
	return func(c *OpConfig) {
		c.Vars = vars
	}
}

// WithProgressBar draws a progress bar while copying a file, if attached to a terminal.
func WithProgressBar() OpOption {
	return func(c *OpConfig) {
		c.ProgressBar = true
	}
}

// WithEnv adds an environment variable for the remote command.
func WithEnv(key, value string) OpOption {
	return func(c *OpConfig) {
		c.Env = append(c.Env, key+"="+value)
	}
}

// WithDir sets the remote working directory.
func WithDir(dir string) OpOption {
	return func(c *OpConfig) {
		c.Dir = dir
	}
}

// WithStdin feeds r to the remote command.
func WithStdin(r io.Reader) OpOption {
	return func(c *OpConfig) {
		c.Stdin = r
	}
}

// WithStdout streams remote stdout to w.
func WithStdout(w io.Writer) OpOption {
	return func(c *OpConfig) {
		c.Stdout = w
	}
}

// WithStderr streams remote stderr to w.
func WithStderr(w io.Writer) OpOption {
	return func(c *OpConfig) {
		c.Stderr = w
	}
}

// WithTty requests a PTY for the remote command.
func WithTty() OpOption {
	return func(c *OpConfig) {
		c.Tty = true
	}
}
