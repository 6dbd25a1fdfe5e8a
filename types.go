package hostsession

import (
	"errors"
	"time"
)

// DefaultReadyTimeout bounds how long connecting (dial plus handshake) may take.
const DefaultReadyTimeout = 60 * time.Second

// Auth identifies the remote user. Exactly one of Password or PrivateKey should be set.
type Auth struct {
	Username   string
	Password   string
	PrivateKey string // PEM encoded private key material
}

// Validate reports whether the credentials are usable.
func (a Auth) Validate() error {
	if a.Password != "" && a.PrivateKey != "" {
		return errors.New("auth: password and private key are mutually exclusive")
	}

	return nil
}

// Vars is the variable mapping templates are rendered against.
type Vars map[string]any

// Overrides is overlaid onto the resolved ConnectionInfo. Keys match the
// mapstructure tags of ConnectionInfo case-insensitively; unknown keys are kept
// in ConnectionInfo.Extra.
type Overrides map[string]any

// ConnectionInfo is the parameter set used to open one SSH connection.
type ConnectionInfo struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Username     string        `mapstructure:"username"`
	ReadyTimeout time.Duration `mapstructure:"readyTimeout"`

	PrivateKey     string `mapstructure:"privateKey"`
	PrivateKeyPath string `mapstructure:"privateKeyPath"`
	Passphrase     string `mapstructure:"passphrase"`
	Password       string `mapstructure:"password"`
	UseAgent       bool   `mapstructure:"agent"`

	KnownHostsFile        string `mapstructure:"knownHostsFile"`
	InsecureIgnoreHostKey bool   `mapstructure:"insecureIgnoreHostKey"`

	// KeepAliveInterval enables transport heartbeats when positive.
	KeepAliveInterval time.Duration `mapstructure:"keepaliveInterval"`

	Extra map[string]any `mapstructure:",remain"`
}

// Result describes a completed operation.
// Copies always report ExitCode 0 and no output.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
}

// Success returns true if the remote command exited with status 0.
func (r *Result) Success() bool {
	return r != nil && r.ExitCode == 0
}

// ProgressFunc receives transfer completion as a percentage between 0 and 100.
type ProgressFunc func(percent int)

// Callback receives the outcome of an asynchronous operation.
// On failure err is non-nil and res is nil.
type Callback func(err error, exitCode int, res *Result)
