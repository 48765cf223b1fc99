//go:build !windows

package executor

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// setProcessGroup puts the child in a new process group so the whole tree
// can be signalled at once
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcessGroup sends SIGKILL to every process in the child's group
func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	// negative pid addresses the group; ESRCH just means it is already gone
	_ = unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
}
