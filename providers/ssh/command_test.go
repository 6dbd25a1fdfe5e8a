package ssh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEnvPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		env     []string
		want    string
		wantErr bool
	}{
		{name: "empty", env: nil, want: ""},
		{name: "basic", env: []string{"FOO=bar", "BAZ=qux"}, want: "export FOO='bar'; export BAZ='qux'; "},
		{name: "escaping", env: []string{"MSG=don't stop"}, want: "export MSG='don'\\''t stop'; "},
		{name: "value with equals", env: []string{"OPTS=a=b"}, want: "export OPTS='a=b'; "},
		{name: "malformed skipped", env: []string{"INVALID"}, want: ""},
		{name: "underscore and digits", env: []string{"_APP_2=x"}, want: "export _APP_2='x'; "},
		{name: "command in name", env: []string{"A;rm -rf /=x"}, wantErr: true},
		{name: "space in name", env: []string{"A B=x"}, wantErr: true},
		{name: "leading digit", env: []string{"1A=x"}, wantErr: true},
		{name: "empty name", env: []string{"=x"}, wantErr: true},
		{name: "substitution in name", env: []string{"$(id)=x"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := buildEnvPrefix(tt.env)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildDirPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		dir  string
		want string
	}{
		{name: "empty", dir: "", want: ""},
		{name: "basic", dir: "/tmp/test", want: "cd '/tmp/test' && "},
		{name: "escaping", dir: "/tmp/O'Neil", want: "cd '/tmp/O'\\''Neil' && "},
		{name: "injection", dir: "/tmp; rm -rf /", want: "cd '/tmp; rm -rf /' && "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, buildDirPrefix(tt.dir))
		})
	}
}

func TestBuildFullCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		command string
		dir     string
		env     []string
		want    string
	}{
		{
			name:    "command only",
			command: "echo hello | tr a-z A-Z",
			want:    "echo hello | tr a-z A-Z",
		},
		{
			name:    "env and dir",
			command: "make deploy",
			dir:     "/srv/app",
			env:     []string{"A=B"},
			want:    "export A='B'; cd '/srv/app' && make deploy",
		},
		{
			name:    "multiline script",
			command: "set -e\necho one\n",
			env:     []string{"X=1"},
			want:    "export X='1'; set -e\necho one\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := buildFullCommand(tt.command, tt.env, tt.dir)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
