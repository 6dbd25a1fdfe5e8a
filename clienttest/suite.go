package clienttest

import (
	"context"
	"fmt"
	"path"
	"strings"
	"testing"

	"github.com/ruffel/hostsession"
	"github.com/stretchr/testify/require"
)

// Standard categories for grouping tests.
const (
	CategoryExecute   = "execute"
	CategoryLifecycle = "lifecycle"
	CategoryFiles     = "files"
	CategoryErrors    = "errors"
)

// T is the minimal interface required for testify/assert and require.
type T interface {
	Errorf(format string, args ...any)
	FailNow()
	Skipf(format string, args ...any)
	Context() context.Context
	TempDir() string
	Name() string
}

// Target describes the client implementation under test.
type Target struct {
	NewClient hostsession.ClientFactory
	Info      hostsession.ConnectionInfo

	// RemoteDir is a writable directory on the target. Defaults to /tmp.
	RemoteDir string
}

// TestCase defines a single behavioral contract requirement.
type TestCase struct {
	Category    string
	Name        string
	Description string

	// Unconnected hands Run a client that has not been connected.
	Unconnected bool

	Prereq func(t T, target Target) (ok bool, reason string)
	Run    func(t T, target Target, client hostsession.Client)
}

// ID returns the stable, globally unique contract identifier.
func (tc TestCase) ID() string {
	return fmt.Sprintf("%s/%s", tc.Category, tc.Name)
}

// Verify is the standard Go test entry point for client authors.
func Verify(t *testing.T, target Target) {
	t.Helper()

	for _, tc := range AllContracts() {
		t.Run(tc.ID(), func(t *testing.T) {
			if tc.Prereq != nil {
				ok, reason := tc.Prereq(t, target)
				if !ok {
					t.Skipf("prereq unmet: %s", reason)
				}
			}

			client := target.NewClient()

			t.Cleanup(func() { _ = client.Close() })

			if !tc.Unconnected {
				require.NoError(t, client.Connect(t.Context(), target.Info))
			}

			tc.Run(t, target, client)
		})
	}
}

// remotePath returns a per-test path on the target.
func remotePath(t T, target Target, parts ...string) string {
	base := target.RemoteDir
	if base == "" {
		base = "/tmp"
	}

	name := "hostsession-test-" + strings.ReplaceAll(t.Name(), "/", "_")

	return path.Join(append([]string{base, name}, parts...)...)
}

func execute(t T, client hostsession.Client, command string) *hostsession.Result {
	res, err := client.Execute(t.Context(), command, hostsession.OpConfig{})
	require.NoError(t, err)
	require.NotNil(t, res)

	return res
}
