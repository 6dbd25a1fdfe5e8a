package clienttest

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/ruffel/hostsession"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type progressRecorder struct {
	mu     sync.Mutex
	values []int
}

func (p *progressRecorder) record(percent int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.values = append(p.values, percent)
}

func (p *progressRecorder) snapshot() []int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]int(nil), p.values...)
}

func readRemote(t T, client hostsession.Client, path string) string {
	res := execute(t, client, "cat '"+path+"'")
	require.Equal(t, 0, res.ExitCode, "cat %s: %s", path, res.Stderr)

	return string(res.Stdout)
}

//nolint:funlen // Contract registration function; length comes from the case list.
func fileContracts() []TestCase {
	return []TestCase{
		{
			Category:    CategoryFiles,
			Name:        "put-file-source-missing",
			Description: "Error returned when the local file does not exist",
			Run: func(t T, target Target, client hostsession.Client) {
				src := filepath.Join(t.TempDir(), "this-file-really-does-not-exist-12345")

				err := client.PutFile(t.Context(), src, remotePath(t, target, "missing.txt"), nil)
				require.Error(t, err)
			},
		},
		{
			Category:    CategoryFiles,
			Name:        "put-file-with-dir-create",
			Description: "Upload a single file to a directory that does not exist yet",
			Run: func(t T, target Target, client hostsession.Client) {
				content := "hello world from hostsession"
				src := filepath.Join(t.TempDir(), "test.txt")
				require.NoError(t, os.WriteFile(src, []byte(content), 0o644))

				dst := remotePath(t, target, "nested", "dir", "test.txt")

				var progress progressRecorder
				require.NoError(t, client.PutFile(t.Context(), src, dst, progress.record))

				assert.Equal(t, content, readRemote(t, client, dst))

				values := progress.snapshot()
				require.NotEmpty(t, values)
				assert.Equal(t, 100, values[len(values)-1])
				assert.IsNonDecreasing(t, values)
			},
		},
		{
			Category:    CategoryFiles,
			Name:        "put-file-nil-progress",
			Description: "A nil progress callback is allowed",
			Run: func(t T, target Target, client hostsession.Client) {
				src := filepath.Join(t.TempDir(), "quiet.txt")
				require.NoError(t, os.WriteFile(src, []byte("quiet"), 0o644))

				dst := remotePath(t, target, "quiet.txt")
				require.NoError(t, client.PutFile(t.Context(), src, dst, nil))
				assert.Equal(t, "quiet", readRemote(t, client, dst))
			},
		},
		{
			Category:    CategoryFiles,
			Name:        "put-file-preserves-mode",
			Description: "Executable scripts stay executable after upload",
			Run: func(t T, target Target, client hostsession.Client) {
				src := filepath.Join(t.TempDir(), "run.sh")
				require.NoError(t, os.WriteFile(src, []byte("#!/bin/sh\necho ran\n"), 0o755))

				dst := remotePath(t, target, "run.sh")
				require.NoError(t, client.PutFile(t.Context(), src, dst, nil))

				res := execute(t, client, "test -x '"+dst+"'")
				assert.Equal(t, 0, res.ExitCode)
			},
		},
		{
			Category:    CategoryFiles,
			Name:        "put-directory",
			Description: "Directories are uploaded recursively",
			Run: func(t T, target Target, client hostsession.Client) {
				src := t.TempDir()
				require.NoError(t, os.MkdirAll(filepath.Join(src, "sub"), 0o755))
				require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("a"), 0o644))
				require.NoError(t, os.WriteFile(filepath.Join(src, "sub", "b.txt"), []byte("b"), 0o644))

				dst := remotePath(t, target, "tree")

				var progress progressRecorder
				require.NoError(t, client.PutFile(t.Context(), src, dst, progress.record))

				assert.Equal(t, "a", readRemote(t, client, dst+"/a.txt"))
				assert.Equal(t, "b", readRemote(t, client, dst+"/sub/b.txt"))

				values := progress.snapshot()
				require.NotEmpty(t, values)
				assert.Equal(t, 100, values[len(values)-1])
			},
		},
		{
			Category: CategoryFiles,
			Name:     "put-content",
			Run: func(t T, target Target, client hostsession.Client) {
				dst := remotePath(t, target, "content", "rendered.conf")

				require.NoError(t, client.PutContent(t.Context(), "listen 8080\n", dst))
				assert.Equal(t, "listen 8080\n", readRemote(t, client, dst))
			},
		},
		{
			Category:    CategoryFiles,
			Name:        "put-content-truncates",
			Description: "Writing shorter content replaces the previous file entirely",
			Run: func(t T, target Target, client hostsession.Client) {
				dst := remotePath(t, target, "overwrite.txt")

				require.NoError(t, client.PutContent(t.Context(), "a much longer first version", dst))
				require.NoError(t, client.PutContent(t.Context(), "short", dst))

				assert.Equal(t, "short", readRemote(t, client, dst))
			},
		},
		{
			Category: CategoryFiles,
			Name:     "put-content-empty",
			Run: func(t T, target Target, client hostsession.Client) {
				dst := remotePath(t, target, "empty.txt")

				require.NoError(t, client.PutContent(t.Context(), "", dst))
				assert.Empty(t, readRemote(t, client, dst))
			},
		},
	}
}
