package sweep

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// RunOutcome describes how one run ended. A run that could not be started
// has no outcome; Invoke returns an error instead.
type RunOutcome struct {
	Campaign   string
	Index      int // position within the campaign, 0-based
	Config     ExperimentConfig
	Pid        int
	ExitCode   int    // -1 when the process ended without an exit status
	Err        string // wait error text, empty on a clean exit
	Skipped    bool   // not launched because results already existed
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration is the wall time between launch and exit.
func (o RunOutcome) Duration() time.Duration {
	return o.FinishedAt.Sub(o.StartedAt)
}

// Failed reports whether the run was launched and did not exit cleanly.
func (o RunOutcome) Failed() bool {
	return !o.Skipped && o.ExitCode != 0
}

// RunInvoker executes one ExperimentConfig at a time against a fixed
// RuntimeEnvironment.
type RunInvoker struct {
	env        RuntimeEnvironment
	launcher   Launcher
	stdout     io.Writer
	stderr     io.Writer
	captureDir string
}

// NewRunInvoker returns an invoker whose children share our stdout/stderr.
func NewRunInvoker(env RuntimeEnvironment, launcher Launcher) *RunInvoker {
	return &RunInvoker{
		env:      env,
		launcher: launcher,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
}

// SetOutput redirects child output. nil writers discard it.
func (r *RunInvoker) SetOutput(stdout, stderr io.Writer) {
	r.stdout = stdout
	r.stderr = stderr
}

// SetCaptureDir makes every run write its combined output to
// <dir>/<folder>/<instance>.log instead of the configured writers.
// An empty dir turns capturing off.
func (r *RunInvoker) SetCaptureDir(dir string) {
	r.captureDir = dir
}

// Environment returns the environment runs are launched with.
func (r *RunInvoker) Environment() RuntimeEnvironment {
	return r.env
}

// Invoke launches cfg and blocks until the child has exited. Only a launch
// failure is returned as an error; how the child exited is reported in the
// outcome and never stops the caller.
func (r *RunInvoker) Invoke(ctx context.Context, cfg ExperimentConfig) (RunOutcome, error) {
	spec := ProcessSpec{
		Path:   r.env.ExecutablePath(),
		Args:   cfg.Args(),
		Env:    r.env.Env,
		Dir:    r.env.WorkDir,
		Stdout: r.stdout,
		Stderr: r.stderr,
	}

	if r.captureDir != "" {
		logFile, err := r.openCaptureFile(cfg)
		if err != nil {
			return RunOutcome{}, err
		}
		defer func() { _ = logFile.Close() }()
		spec.Stdout = logFile
		spec.Stderr = logFile
	}

	logrus.Debugf("launching %s %s", spec.Path, cfg.CommandTail())
	outcome := RunOutcome{Config: cfg, StartedAt: time.Now()}
	proc, err := r.launcher.Start(ctx, spec)
	if err != nil {
		return RunOutcome{}, fmt.Errorf("launching run %s: %w", cfg, err)
	}
	outcome.Pid = proc.Pid()

	waitErr := proc.Wait()
	outcome.FinishedAt = time.Now()
	if waitErr != nil {
		outcome.Err = waitErr.Error()
		outcome.ExitCode = exitCode(waitErr)
		logrus.Warnf("run %s (pid %d) exited with code %d after %s: %v",
			cfg, outcome.Pid, outcome.ExitCode, outcome.Duration().Round(time.Millisecond), waitErr)
	} else {
		logrus.Debugf("run %s (pid %d) finished in %s", cfg, outcome.Pid, outcome.Duration().Round(time.Millisecond))
	}
	return outcome, nil
}

func (r *RunInvoker) openCaptureFile(cfg ExperimentConfig) (*os.File, error) {
	dir := filepath.Join(r.captureDir, cfg.OutputFolder())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output log directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, cfg.Instance+".log"))
	if err != nil {
		return nil, fmt.Errorf("creating output log: %w", err)
	}
	return f, nil
}

// exitCode extracts the status from a wait error; -1 if there is none.
func exitCode(err error) int {
	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) {
		return coded.ExitCode()
	}
	return -1
}
