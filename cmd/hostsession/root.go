package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const envPrefix = "HOSTSESSION"

// app carries the state shared by all subcommands.
type app struct {
	v      *viper.Viper
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:           "hostsession",
		Short:         "Run commands, scripts and file copies on a remote host",
		Long:          `Runs operations against one host over SSH, optionally reusing a single connection.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = a.logger.Sync()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "YAML config file")
	flags.String("host", "", "Target host")
	flags.StringP("user", "u", "", "SSH user (default: current user)")
	flags.IntP("port", "p", 0, "SSH port (default 22)")
	flags.String("key", "", "Private key path")
	flags.String("passphrase", "", "Private key passphrase")
	flags.String("password", "", "SSH password (prefer HOSTSESSION_PASSWORD)")
	flags.Bool("agent", false, "Authenticate with ssh-agent")
	flags.String("ssh-config", "", "OpenSSH config file (default ~/.ssh/config)")
	flags.String("ssh-config-alias", "", "Take connection parameters from this OpenSSH config entry")
	flags.String("known-hosts", "", "known_hosts file (default ~/.ssh/known_hosts)")
	flags.Bool("insecure", false, "Skip host key verification (testing only)")
	flags.Bool("keep-alive", false, "Reuse one connection for every operation")
	flags.String("base-dir", "", "Resolve local templates and scripts under this directory")
	flags.Duration("timeout", 0, "Overall timeout (0 disables)")
	flags.Bool("local", false, "Target the local machine instead of SSH")
	flags.String("root", "", "With --local, place remote paths under this directory")
	flags.BoolP("verbose", "v", false, "Debug logging")

	_ = a.v.BindPFlags(flags)

	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	rootCmd.AddCommand(
		a.newExecCmd(),
		a.newCopyCmd(),
		a.newScriptCmd(),
		a.newRunCmd(),
	)

	return rootCmd
}

// init reads the config file and builds the logger.
func (a *app) init(_ *cobra.Command) error {
	if path := a.v.GetString("config"); path != "" {
		a.v.SetConfigFile(path)

		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	logger, err := newLogger(a.v.GetBool("verbose"))
	if err != nil {
		return err
	}

	a.logger = logger

	return nil
}

// context applies --timeout.
func (a *app) context(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}

	if timeout := a.v.GetDuration("timeout"); timeout > 0 {
		return context.WithTimeout(parent, timeout)
	}

	return context.WithCancel(parent)
}

func elapsed(start time.Time) string {
	return time.Since(start).Round(time.Millisecond).String()
}
