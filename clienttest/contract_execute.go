package clienttest

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/ruffel/hostsession"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cancelBudget = 4 * time.Second

//nolint:funlen // Contract registration function; length comes from the case list.
func executeContracts() []TestCase {
	return []TestCase{
		{
			Category: CategoryExecute,
			Name:     "simple-echo",
			Run: func(t T, _ Target, client hostsession.Client) {
				res := execute(t, client, "echo hello")

				assert.Equal(t, "hello", strings.TrimSpace(string(res.Stdout)))
				assert.Equal(t, 0, res.ExitCode)
			},
		},
		{
			Category:    CategoryExecute,
			Name:        "nonzero-exit-is-not-an-error",
			Description: "A command that runs and fails reports its exit code without an error",
			Run: func(t T, _ Target, client hostsession.Client) {
				res := execute(t, client, "exit 3")

				assert.Equal(t, 3, res.ExitCode)
				assert.False(t, res.Success())
			},
		},
		{
			Category: CategoryExecute,
			Name:     "stderr-captured",
			Run: func(t T, _ Target, client hostsession.Client) {
				res := execute(t, client, "echo oops 1>&2")

				assert.Equal(t, "oops", strings.TrimSpace(string(res.Stderr)))
				assert.Empty(t, res.Stdout)
			},
		},
		{
			Category: CategoryExecute,
			Name:     "multiline-script",
			Run: func(t T, _ Target, client hostsession.Client) {
				res := execute(t, client, "set -e\necho a\necho b\n")

				assert.Equal(t, "a\nb\n", string(res.Stdout))
			},
		},
		{
			Category:    CategoryExecute,
			Name:        "env-applied",
			Description: "Environment values reach the command unmodified, including quotes",
			Run: func(t T, _ Target, client hostsession.Client) {
				res, err := client.Execute(t.Context(), `echo "$GREETING"`, hostsession.OpConfig{
					Env: []string{"GREETING=it's here"},
				})
				require.NoError(t, err)

				assert.Equal(t, "it's here\n", string(res.Stdout))
			},
		},
		{
			Category: CategoryExecute,
			Name:     "dir-applied",
			Run: func(t T, _ Target, client hostsession.Client) {
				res, err := client.Execute(t.Context(), "pwd", hostsession.OpConfig{Dir: "/"})
				require.NoError(t, err)

				assert.Equal(t, "/\n", string(res.Stdout))
			},
		},
		{
			Category: CategoryExecute,
			Name:     "stdin-fed",
			Run: func(t T, _ Target, client hostsession.Client) {
				res, err := client.Execute(t.Context(), "cat", hostsession.OpConfig{
					Stdin: strings.NewReader("from stdin"),
				})
				require.NoError(t, err)

				assert.Equal(t, "from stdin", string(res.Stdout))
			},
		},
		{
			Category:    CategoryExecute,
			Name:        "stdout-streamed",
			Description: "Output is written to the supplied writers and kept in the result",
			Run: func(t T, _ Target, client hostsession.Client) {
				var stdout, stderr bytes.Buffer

				res, err := client.Execute(t.Context(), "echo out; echo err 1>&2", hostsession.OpConfig{
					Stdout: &stdout,
					Stderr: &stderr,
				})
				require.NoError(t, err)

				assert.Equal(t, "out\n", stdout.String())
				assert.Equal(t, "err\n", stderr.String())
				assert.Equal(t, "out\n", string(res.Stdout))
			},
		},
		{
			Category:    CategoryExecute,
			Name:        "context-cancel",
			Description: "Cancelling the context stops a long-running command",
			Run: func(t T, _ Target, client hostsession.Client) {
				ctx, cancel := context.WithTimeout(t.Context(), 200*time.Millisecond)
				defer cancel()

				start := time.Now()
				_, err := client.Execute(ctx, "sleep 30", hostsession.OpConfig{})

				require.Error(t, err)
				assert.Less(t, time.Since(start), cancelBudget)
			},
		},
	}
}
