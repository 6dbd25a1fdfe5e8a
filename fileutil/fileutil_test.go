package fileutil

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPathTraversal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		root      string
		target    string
		expectErr bool
	}{
		{
			name:      "Safe child",
			root:      "/tmp/safe",
			target:    "/tmp/safe/child.txt",
			expectErr: false,
		},
		{
			name:      "Safe deep child",
			root:      "/tmp/safe",
			target:    "/tmp/safe/dir/child.txt",
			expectErr: false,
		},
		{
			name:      "Root itself",
			root:      "/tmp/safe",
			target:    "/tmp/safe",
			expectErr: false,
		},
		{
			name:      "Traversal attempt",
			root:      "/tmp/safe",
			target:    "/tmp/safe/../evil.txt",
			expectErr: true,
		},
		{
			name:      "Direct parent traversal",
			root:      "/tmp/safe",
			target:    "/tmp/evil.txt",
			expectErr: true,
		},
		{
			name:      "Root prefix but not child",
			root:      "/tmp/safe",
			target:    "/tmp/safe_suffix_is_not_child",
			expectErr: true,
		},
		{
			name:      "Relative paths safe",
			root:      "safe",
			target:    "safe/child",
			expectErr: false,
		},
		{
			name:      "Relative paths unsafe",
			root:      "safe",
			target:    "safe/../evil",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// Normalize for OS (Windows vs Unix)
			root := filepath.FromSlash(tt.root)
			target := filepath.FromSlash(tt.target)

			err := CheckPathTraversal(root, target)
			if tt.expectErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "illegal file path")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProgressReader(t *testing.T) {
	t.Parallel()

	t.Run("known total", func(t *testing.T) {
		t.Parallel()

		var reported []int

		pr := NewProgressReader(strings.NewReader(strings.Repeat("x", 400)), 400, func(p int) {
			reported = append(reported, p)
		})

		buf := make([]byte, 100)
		for {
			_, err := pr.Read(buf)
			if errors.Is(err, io.EOF) {
				break
			}

			require.NoError(t, err)
		}

		assert.Equal(t, []int{25, 50, 75, 100}, reported)
	})

	t.Run("unknown total reports completion at EOF", func(t *testing.T) {
		t.Parallel()

		var reported []int

		pr := NewProgressReader(strings.NewReader("payload"), 0, func(p int) {
			reported = append(reported, p)
		})

		_, err := io.Copy(io.Discard, pr)
		require.NoError(t, err)
		assert.Equal(t, []int{100}, reported)
	})

	t.Run("nil callback", func(t *testing.T) {
		t.Parallel()

		pr := NewProgressReader(strings.NewReader("payload"), 7, nil)

		n, err := io.Copy(io.Discard, pr)
		require.NoError(t, err)
		assert.Equal(t, int64(7), n)
	})
}

func TestPercent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, Percent(10, 0))
	assert.Equal(t, 33, Percent(1, 3))
	assert.Equal(t, 100, Percent(5, 5))
	assert.Equal(t, 100, Percent(6, 5))
}

func TestContextReader(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cr := &ContextReader{Ctx: ctx, Reader: strings.NewReader("data")}

	buf := make([]byte, 2)
	n, err := cr.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	cancel()

	_, err = cr.Read(buf)
	require.ErrorIs(t, err, context.Canceled)
}
