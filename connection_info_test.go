package hostsession

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConnectionInfo_Credentials(t *testing.T) {
	t.Parallel()

	info, err := ResolveConnectionInfo("web-1", Auth{Username: "deploy", PrivateKey: "KEY"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "KEY", info.PrivateKey)
	assert.Empty(t, info.Password)

	info, err = ResolveConnectionInfo("web-1", Auth{Username: "deploy", Password: "p"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "p", info.Password)
	assert.Empty(t, info.PrivateKey)
}

func TestResolveConnectionInfo_Defaults(t *testing.T) {
	t.Parallel()

	info, err := ResolveConnectionInfo("web-1", Auth{Username: "deploy"}, Overrides{})
	require.NoError(t, err)

	assert.Equal(t, ConnectionInfo{
		Host:         "web-1",
		Username:     "deploy",
		ReadyTimeout: 60 * time.Second,
	}, info)
}

func TestResolveConnectionInfo_Overrides(t *testing.T) {
	t.Parallel()

	auth := Auth{Username: "deploy", Password: "p"}

	tests := []struct {
		name      string
		overrides Overrides
		check     func(t *testing.T, info ConnectionInfo)
	}{
		{
			name:      "port",
			overrides: Overrides{"port": 2222},
			check: func(t *testing.T, info ConnectionInfo) {
				t.Helper()
				assert.Equal(t, 2222, info.Port)
			},
		},
		{
			name:      "port as string",
			overrides: Overrides{"port": "2200"},
			check: func(t *testing.T, info ConnectionInfo) {
				t.Helper()
				assert.Equal(t, 2200, info.Port)
			},
		},
		{
			name:      "ready timeout in milliseconds",
			overrides: Overrides{"readyTimeout": 5000},
			check: func(t *testing.T, info ConnectionInfo) {
				t.Helper()
				assert.Equal(t, 5*time.Second, info.ReadyTimeout)
			},
		},
		{
			name:      "ready timeout as duration string",
			overrides: Overrides{"readyTimeout": "1m30s"},
			check: func(t *testing.T, info ConnectionInfo) {
				t.Helper()
				assert.Equal(t, 90*time.Second, info.ReadyTimeout)
			},
		},
		{
			name:      "ready timeout as numeric string",
			overrides: Overrides{"readyTimeout": "250"},
			check: func(t *testing.T, info ConnectionInfo) {
				t.Helper()
				assert.Equal(t, 250*time.Millisecond, info.ReadyTimeout)
			},
		},
		{
			name:      "overrides may redirect host and user",
			overrides: Overrides{"host": "bastion", "username": "root"},
			check: func(t *testing.T, info ConnectionInfo) {
				t.Helper()
				assert.Equal(t, "bastion", info.Host)
				assert.Equal(t, "root", info.Username)
			},
		},
		{
			name:      "keys are case insensitive",
			overrides: Overrides{"Port": 22, "KNOWNHOSTSFILE": "/tmp/kh"},
			check: func(t *testing.T, info ConnectionInfo) {
				t.Helper()
				assert.Equal(t, 22, info.Port)
				assert.Equal(t, "/tmp/kh", info.KnownHostsFile)
			},
		},
		{
			name:      "booleans and heartbeat",
			overrides: Overrides{"insecureIgnoreHostKey": "true", "agent": true, "keepaliveInterval": "15s"},
			check: func(t *testing.T, info ConnectionInfo) {
				t.Helper()
				assert.True(t, info.InsecureIgnoreHostKey)
				assert.True(t, info.UseAgent)
				assert.Equal(t, 15*time.Second, info.KeepAliveInterval)
			},
		},
		{
			name:      "unknown keys are kept",
			overrides: Overrides{"compress": true},
			check: func(t *testing.T, info ConnectionInfo) {
				t.Helper()
				assert.Equal(t, map[string]any{"compress": true}, info.Extra)
				assert.Equal(t, "p", info.Password)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			info, err := ResolveConnectionInfo("web-1", auth, tt.overrides)
			require.NoError(t, err)
			tt.check(t, info)
		})
	}
}

func TestResolveConnectionInfo_InvalidOverrides(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		overrides Overrides
	}{
		{name: "port", overrides: Overrides{"port": "ssh"}},
		{name: "timeout", overrides: Overrides{"readyTimeout": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ResolveConnectionInfo("web-1", Auth{}, tt.overrides)
			require.ErrorContains(t, err, "invalid ssh overrides")
		})
	}
}
