//go:build !windows

package local

import (
	"context"
	"os/exec"
	"syscall"
)

const defaultShell = "/bin/sh"

// shellCommand runs command as a POSIX shell script.
func shellCommand(ctx context.Context, shell, command string) *exec.Cmd {
	return exec.CommandContext(ctx, shell, "-c", command)
}

// killProcessGroup kills the process group led by pid.
func killProcessGroup(pid int) error {
	return syscall.Kill(-pid, syscall.SIGKILL)
}

// setProcessGroup starts cmd in its own process group.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
