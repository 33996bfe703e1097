package daemon

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// DetachedCommand builds a command that re-runs executable's serve
// command in a new session, detached from the terminal.
func DetachedCommand(executable, dataDir string) *exec.Cmd {
	cmd := exec.Command(executable, "serve")
	cmd.Env = append(os.Environ(), "WEBGATE_HOME="+dataDir)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}

	// No stdin/stdout/stderr; serve logs to its file.
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd
}

// StartDetached spawns the server in the background and returns its PID.
func StartDetached(dataDir string) (int, error) {
	executable, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("failed to locate executable: %w", err)
	}
	cmd := DetachedCommand(executable, dataDir)
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start server: %w", err)
	}
	pid := cmd.Process.Pid
	// The child outlives us; don't leave a zombie handle around.
	_ = cmd.Process.Release()
	return pid, nil
}
