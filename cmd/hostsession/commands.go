package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/ruffel/hostsession"
	"github.com/spf13/cobra"
)

// runOptions are the per-operation flags shared by exec and script.
type runOptions struct {
	env []string
	dir string
	tty bool
}

func (o *runOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&o.env, "env", "e", nil, "Environment variable KEY=VALUE (repeatable)")
	cmd.Flags().StringVar(&o.dir, "dir", "", "Remote working directory")
	cmd.Flags().BoolVarP(&o.tty, "tty", "t", false, "Allocate a pseudo-terminal")
}

func (o *runOptions) opOptions(cmd *cobra.Command) ([]hostsession.OpOption, error) {
	opts := []hostsession.OpOption{
		hostsession.WithStdout(cmd.OutOrStdout()),
		hostsession.WithStderr(cmd.ErrOrStderr()),
	}

	for _, pair := range o.env {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --env %q: expected KEY=VALUE", pair)
		}

		opts = append(opts, hostsession.WithEnv(key, value))
	}

	if o.dir != "" {
		opts = append(opts, hostsession.WithDir(o.dir))
	}

	if o.tty {
		opts = append(opts, hostsession.WithTty())
	}

	return opts, nil
}

// varsOptions are the template variable flags shared by copy and script.
type varsOptions struct {
	vars     []string
	varsFile string
}

func (o *varsOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&o.vars, "vars", nil, `Template variables, e.g. 'name=web region="us east"'`)
	cmd.Flags().StringVar(&o.varsFile, "vars-file", "", "YAML file of template variables")
}

func (a *app) newExecCmd() *cobra.Command {
	var run runOptions

	cmd := &cobra.Command{
		Use:   "exec -- COMMAND [ARGS...]",
		Short: "Run a command on the host",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := run.opOptions(cmd)
			if err != nil {
				return err
			}

			sess, err := a.newSession(false)
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx, cancel := a.context(cmd.Context())
			defer cancel()

			res, err := sess.Execute(ctx, strings.Join(args, " "), opts...)
			if err != nil {
				return err
			}

			return exitStatus(res)
		},
	}

	run.register(cmd)

	return cmd
}

func (a *app) newCopyCmd() *cobra.Command {
	var (
		vars     varsOptions
		progress bool
	)

	cmd := &cobra.Command{
		Use:   "copy SRC DEST",
		Short: "Upload a file or directory, optionally rendering it as a template",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			templateVars, err := collectVars(vars.varsFile, vars.vars)
			if err != nil {
				return err
			}

			opts := []hostsession.OpOption{}
			if templateVars != nil {
				opts = append(opts, hostsession.WithVars(templateVars))
			}

			if progress {
				opts = append(opts, hostsession.WithProgressBar())
			}

			sess, err := a.newSession(false)
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx, cancel := a.context(cmd.Context())
			defer cancel()

			start := time.Now()

			if _, err := sess.Copy(ctx, args[0], args[1], opts...); err != nil {
				return err
			}

			statusf(cmd.ErrOrStderr(), checkStyle, "✓ copied %s → %s:%s (%s)", args[0], sess.Host(), args[1], elapsed(start))

			return nil
		},
	}

	vars.register(cmd)
	cmd.Flags().BoolVar(&progress, "progress", false, "Show a progress bar when attached to a terminal")

	return cmd
}

func (a *app) newScriptCmd() *cobra.Command {
	var (
		run  runOptions
		vars varsOptions
	)

	cmd := &cobra.Command{
		Use:   "script FILE",
		Short: "Render a local script template and run it on the host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			templateVars, err := collectVars(vars.varsFile, vars.vars)
			if err != nil {
				return err
			}

			opts, err := run.opOptions(cmd)
			if err != nil {
				return err
			}

			if templateVars != nil {
				opts = append(opts, hostsession.WithVars(templateVars))
			}

			sess, err := a.newSession(false)
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx, cancel := a.context(cmd.Context())
			defer cancel()

			res, err := sess.ExecuteScript(ctx, args[0], opts...)
			if err != nil {
				return err
			}

			return exitStatus(res)
		},
	}

	run.register(cmd)
	vars.register(cmd)

	return cmd
}

func (a *app) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run TASKS.yaml",
		Short: "Run a list of tasks over one connection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := loadTaskFile(args[0])
			if err != nil {
				return err
			}

			sess, err := a.newSession(true)
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx, cancel := a.context(cmd.Context())
			defer cancel()

			runner := &taskRunner{
				session: sess,
				stdout:  cmd.OutOrStdout(),
				status:  cmd.ErrOrStderr(),
			}

			return runner.run(ctx, file)
		},
	}

	return cmd
}

func exitStatus(res *hostsession.Result) error {
	if res.ExitCode != 0 {
		return &exitCodeError{code: res.ExitCode}
	}

	return nil
}

// statusf prints a styled status line.
func statusf(w io.Writer, style lipgloss.Style, format string, args ...any) {
	fmt.Fprintln(w, style.Render(fmt.Sprintf(format, args...)))
}
