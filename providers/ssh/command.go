package ssh

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/ssh"
)

// buildEnvPrefix constructs the environment variable prefix for SSH commands.
// Since OpenSSH defaults PermitUserEnvironment=no, session.Setenv() won't work.
// We work around by prepending "export VAR='val';" to the command string.
// Names must be shell identifiers; values are quoted.
func buildEnvPrefix(envVars []string) (string, error) {
	var envPrefix strings.Builder

	for _, env := range envVars {
		k, v, found := strings.Cut(env, "=")
		if !found {
			continue
		}

		if !isEnvName(k) {
			return "", fmt.Errorf("invalid environment variable name %q", k)
		}

		fmt.Fprintf(&envPrefix, "export %s=%s; ", k, quote(v))
	}

	return envPrefix.String(), nil
}

// isEnvName reports whether name matches [A-Za-z_][A-Za-z0-9_]*.
func isEnvName(name string) bool {
	if name == "" {
		return false
	}

	for i, r := range name {
		switch {
		case r == '_', r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}

	return true
}

// buildDirPrefix constructs the directory change prefix for SSH commands.
func buildDirPrefix(dir string) string {
	if dir == "" {
		return ""
	}

	return "cd " + quote(dir) + " && "
}

// quote wraps s in single quotes for a POSIX shell.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// buildTerminalModes returns the default terminal modes for a PTY.
func buildTerminalModes() ssh.TerminalModes {
	return ssh.TerminalModes{
		ssh.ECHO:          1,     // enable echoing
		ssh.TTY_OP_ISPEED: 14400, // input speed = 14.4kbaud
		ssh.TTY_OP_OSPEED: 14400, // output speed = 14.4kbaud
	}
}

// buildFullCommand prefixes command with its environment and working directory.
// The command itself is passed through unquoted; it is shell text.
func buildFullCommand(command string, env []string, dir string) (string, error) {
	envPrefix, err := buildEnvPrefix(env)
	if err != nil {
		return "", err
	}

	return envPrefix + buildDirPrefix(dir) + command, nil
}
