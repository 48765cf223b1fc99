//go:build windows

package executor

import "os/exec"

func setProcessGroup(cmd *exec.Cmd) {}

// killProcessGroup only reaches the direct child on Windows
func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = cmd.Process.Kill()
}
