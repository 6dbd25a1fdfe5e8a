package clienttest

import (
	"context"

	"github.com/ruffel/hostsession"
	"github.com/stretchr/testify/require"
)

func errorContracts() []TestCase {
	return []TestCase{
		{
			Category:    CategoryErrors,
			Name:        "tty-unsupported-normalized",
			Description: "If a PTY is unsupported by a client, it must wrap hostsession.ErrNotSupported",
			Run: func(t T, _ Target, client hostsession.Client) {
				_, err := client.Execute(t.Context(), "echo tty", hostsession.OpConfig{Tty: true})
				if err == nil {
					return
				}

				require.ErrorIs(t, err, hostsession.ErrNotSupported)
			},
		},
		{
			Category:    CategoryErrors,
			Name:        "cancelled-put-content",
			Description: "A cancelled context aborts a transfer",
			Run: func(t T, target Target, client hostsession.Client) {
				ctx, cancel := context.WithCancel(t.Context())
				cancel()

				err := client.PutContent(ctx, "never written", remotePath(t, target, "cancelled.txt"))
				require.ErrorIs(t, err, context.Canceled)
			},
		},
	}
}
