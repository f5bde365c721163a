//go:build unix

package unity

import (
	"os/exec"
	"syscall"
)

// configureProcess starts the command in its own process group so that
// cancellation also kills wrappers' children such as xvfb-run's editor.
func configureProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
