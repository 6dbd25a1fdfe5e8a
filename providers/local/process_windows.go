//go:build windows

package local

import (
	"context"
	"os/exec"
	"strconv"
)

const defaultShell = "cmd.exe"

// shellCommand runs command with cmd.exe /C.
func shellCommand(ctx context.Context, shell, command string) *exec.Cmd {
	return exec.CommandContext(ctx, shell, "/C", command)
}

// killProcessGroup kills the process tree rooted at pid.
func killProcessGroup(pid int) error {
	return exec.Command("taskkill", "/T", "/F", "/PID", strconv.Itoa(pid)).Run()
}

// setProcessGroup is a no-op; taskkill /T walks the tree instead.
func setProcessGroup(_ *exec.Cmd) {}
