package clienttest

import (
	"github.com/ruffel/hostsession"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lifecycleContracts() []TestCase {
	return []TestCase{
		{
			Category:    CategoryLifecycle,
			Name:        "close-idempotent",
			Description: "Closing a client multiple times is deterministic and non-fatal",
			Run: func(t T, _ Target, client hostsession.Client) {
				require.NoError(t, client.Close())
				assert.NoError(t, client.Close())
			},
		},
		{
			Category:    CategoryLifecycle,
			Name:        "close-unconnected",
			Description: "Closing a client that never connected succeeds",
			Unconnected: true,
			Run: func(t T, _ Target, client hostsession.Client) {
				assert.NoError(t, client.Close())
			},
		},
		{
			Category:    CategoryLifecycle,
			Name:        "execute-before-connect-fails",
			Unconnected: true,
			Run: func(t T, _ Target, client hostsession.Client) {
				_, err := client.Execute(t.Context(), "echo hello", hostsession.OpConfig{})
				require.ErrorIs(t, err, hostsession.ErrNotConnected)
			},
		},
		{
			Category:    CategoryLifecycle,
			Name:        "execute-after-close-fails",
			Description: "Execute fails deterministically after close",
			Run: func(t T, _ Target, client hostsession.Client) {
				require.NoError(t, client.Close())

				_, err := client.Execute(t.Context(), "echo hello", hostsession.OpConfig{})
				require.ErrorIs(t, err, hostsession.ErrNotConnected)
			},
		},
		{
			Category:    CategoryLifecycle,
			Name:        "put-content-after-close-fails",
			Description: "PutContent fails deterministically after close",
			Run: func(t T, target Target, client hostsession.Client) {
				require.NoError(t, client.Close())

				err := client.PutContent(t.Context(), "data", remotePath(t, target, "closed.txt"))
				require.ErrorIs(t, err, hostsession.ErrNotConnected)
			},
		},
		{
			Category:    CategoryLifecycle,
			Name:        "reconnect-after-close-fails",
			Description: "A closed client cannot be reused",
			Run: func(t T, target Target, client hostsession.Client) {
				require.NoError(t, client.Close())
				assert.Error(t, client.Connect(t.Context(), target.Info))
			},
		},
	}
}
