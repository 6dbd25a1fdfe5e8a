package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ruffel/hostsession"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVars(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		want    hostsession.Vars
		wantErr string
	}{
		{name: "empty", want: hostsession.Vars{}},
		{
			name: "several per argument",
			args: []string{"a=1 b=2"},
			want: hostsession.Vars{"a": "1", "b": "2"},
		},
		{
			name: "quoted value",
			args: []string{`motd="hello world"`},
			want: hostsession.Vars{"motd": "hello world"},
		},
		{
			name: "value containing equals",
			args: []string{"opts=a=b"},
			want: hostsession.Vars{"opts": "a=b"},
		},
		{
			name: "later wins",
			args: []string{"a=1", "a=2"},
			want: hostsession.Vars{"a": "2"},
		},
		{
			name: "empty value",
			args: []string{"a="},
			want: hostsession.Vars{"a": ""},
		},
		{name: "missing equals", args: []string{"novalue"}, wantErr: "expected key=value"},
		{name: "missing key", args: []string{"=x"}, wantErr: "expected key=value"},
		{name: "unterminated quote", args: []string{`a="open`}, wantErr: "invalid --vars"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseVars(tt.args)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCollectVars(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "vars.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: web\nreplicas: 3\ntags: [a, b]\n"), 0o644))

	t.Run("nothing requested", func(t *testing.T) {
		t.Parallel()

		vars, err := collectVars("", nil)
		require.NoError(t, err)
		assert.Nil(t, vars)
	})

	t.Run("file keeps yaml types", func(t *testing.T) {
		t.Parallel()

		vars, err := collectVars(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "web", vars["name"])
		assert.Equal(t, 3, vars["replicas"])
		assert.Equal(t, []any{"a", "b"}, vars["tags"])
	})

	t.Run("flags override file", func(t *testing.T) {
		t.Parallel()

		vars, err := collectVars(path, []string{"name=api"})
		require.NoError(t, err)
		assert.Equal(t, "api", vars["name"])
		assert.Equal(t, 3, vars["replicas"])
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := collectVars(filepath.Join(dir, "nope.yaml"), nil)
		require.ErrorContains(t, err, "failed to read vars file")
	})
}

func TestLoadVarsFileInvalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- just\n- a list\n"), 0o644))

	_, err := loadVarsFile(path)
	require.ErrorContains(t, err, "failed to parse vars file")
}
