package actions

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
)

// waitDelay bounds how long Wait blocks on output pipes after the process group is killed.
const waitDelay = 5 * time.Second

// runShell runs command through "sh -c" inside the project directory and returns its combined
// output. Cancelling ctx kills the whole process group.
func runShell(ctx context.Context, project *entities.Project, command string) (string, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = project.Path
	cmd.Env = append(os.Environ(),
		"MONOREPO_PROJECT_NAME="+project.Name,
		"MONOREPO_PROJECT_VERSION="+project.Version,
		"MONOREPO_PROJECT_PATH="+project.Path,
	)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = waitDelay

	output, err := cmd.CombinedOutput()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return string(output), fmt.Errorf("%q cancelled: %w", command, ctxErr)
	}
	if err != nil {
		return string(output), fmt.Errorf("%q failed: %w", command, err)
	}
	return string(output), nil
}
