package sweep

import (
	"context"
	"fmt"
	"io"
	"os/exec"
)

// ProcessSpec is everything needed to start one simulator process.
type ProcessSpec struct {
	Path   string
	Args   []string
	Env    []string
	Dir    string
	Stdout io.Writer // nil discards
	Stderr io.Writer // nil discards
}

// Process is a started child process.
type Process interface {
	Pid() int
	// Wait blocks until the process exits. A non-zero exit is reported as an
	// error implementing ExitCode() int.
	Wait() error
}

// Launcher starts child processes. Start must not wait for the child, and a
// started child runs to completion even if ctx is canceled afterwards.
type Launcher interface {
	Start(ctx context.Context, spec ProcessSpec) (Process, error)
}

// ExecLauncher starts real processes with os/exec.
type ExecLauncher struct{}

// NewExecLauncher returns the production launcher.
func NewExecLauncher() *ExecLauncher {
	return &ExecLauncher{}
}

// Start launches spec.Path directly (no shell) with spec.Env as the complete
// environment. ctx is only checked before launching; the child is not killed
// when ctx is canceled later.
func (l *ExecLauncher) Start(ctx context.Context, spec ProcessSpec) (Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", spec.Path, err)
	}
	cmd := exec.Command(spec.Path, spec.Args...)
	cmd.Env = spec.Env
	cmd.Dir = spec.Dir
	cmd.Stdout = spec.Stdout
	cmd.Stderr = spec.Stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", spec.Path, err)
	}
	return &execProcess{cmd: cmd}, nil
}

type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) Pid() int {
	return p.cmd.Process.Pid
}

func (p *execProcess) Wait() error {
	return p.cmd.Wait()
}
