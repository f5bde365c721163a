//go:build !unix

package unity

import "os/exec"

func configureProcess(*exec.Cmd) {}
