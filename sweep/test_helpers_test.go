package sweep

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// fakeExitError mimics *exec.ExitError for a non-zero exit.
type fakeExitError struct {
	code int
}

func (e *fakeExitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }
func (e *fakeExitError) ExitCode() int { return e.code }

// fakeLauncher records every spec it is asked to start and hands out
// processes that exit after delay with the configured exit code.
type fakeLauncher struct {
	delay     time.Duration
	startErr  error
	exitCodes map[string]int // keyed by the command tail
	output    string         // written to ProcessSpec.Stdout before exiting

	mu       sync.Mutex
	specs    []ProcessSpec
	alive    int
	maxAlive int
	exits    []time.Time
}

func (l *fakeLauncher) Start(ctx context.Context, spec ProcessSpec) (Process, error) {
	if l.startErr != nil {
		return nil, l.startErr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.specs = append(l.specs, spec)
	l.alive++
	if l.alive > l.maxAlive {
		l.maxAlive = l.alive
	}
	return &fakeProcess{launcher: l, spec: spec, pid: 1000 + len(l.specs)}, nil
}

// tails returns the command tails of all started specs in order.
func (l *fakeLauncher) tails() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.specs))
	for _, s := range l.specs {
		out = append(out, strings.Join(s.Args, " "))
	}
	return out
}

type fakeProcess struct {
	launcher *fakeLauncher
	spec     ProcessSpec
	pid      int
}

func (p *fakeProcess) Pid() int { return p.pid }

func (p *fakeProcess) Wait() error {
	l := p.launcher
	time.Sleep(l.delay)
	if l.output != "" && p.spec.Stdout != nil {
		_, _ = io.WriteString(p.spec.Stdout, l.output)
	}

	l.mu.Lock()
	l.alive--
	l.exits = append(l.exits, time.Now())
	code := l.exitCodes[strings.Join(p.spec.Args, " ")]
	l.mu.Unlock()

	if code != 0 {
		return &fakeExitError{code: code}
	}
	return nil
}

// testEnvironment builds a RuntimeEnvironment without touching the filesystem.
func testEnvironment(workDir string) RuntimeEnvironment {
	return RuntimeEnvironment{
		Root:           "/opt/ns-3",
		ExeDir:         "/opt/ns-3/build/scratch",
		LibDir:         "/opt/ns-3/build/lib",
		Executable:     DefaultExecutable,
		LibraryPathVar: "LD_LIBRARY_PATH",
		WorkDir:        workDir,
		Env:            []string{"HOME=/home/sim", "LD_LIBRARY_PATH=/opt/ns-3/build/lib"},
	}
}
