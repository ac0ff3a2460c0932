package sweep

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// State is the orchestrator's position in its linear lifecycle.
type State string

const (
	StateIdle            State = "idle"
	StateSettingUp       State = "setting-up-environment"
	StateRunningCampaign State = "running-campaign"
	StateRunningConfig   State = "running-config"
	StateDone            State = "done"
	StateAborted         State = "aborted" // a fatal error ended the sweep early
)

// OutcomeHook observes every run outcome, skipped runs included, in run
// order. Returning an error aborts the sweep after that run; hooks that only
// record or log should return nil.
type OutcomeHook func(RunOutcome) error

// ErrRunFailed is returned by StopOnFailure.
var ErrRunFailed = errors.New("run failed")

// StopOnFailure is an OutcomeHook that aborts the sweep at the first run
// that exits non-zero. Without it failed runs are only reported.
func StopOnFailure(o RunOutcome) error {
	if o.Failed() {
		return fmt.Errorf("%w: exit code %d", ErrRunFailed, o.ExitCode)
	}
	return nil
}

// Summary counts run outcomes for one Orchestrator.Run.
type Summary struct {
	Campaigns int
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
}

func (s *Summary) add(o RunOutcome) {
	s.Total++
	switch {
	case o.Skipped:
		s.Skipped++
	case o.Failed():
		s.Failed++
	default:
		s.Succeeded++
	}
}

// Orchestrator sets up the runtime environment once and then executes every
// config of every selected campaign strictly one at a time.
type Orchestrator struct {
	settings EnvironmentSettings
	environ  []string
	launcher Launcher

	campaigns  []Campaign
	policy     ExistingPolicy
	hooks      []OutcomeHook
	stdout     io.Writer
	stderr     io.Writer
	captureDir string

	mu    sync.Mutex
	state State
	env   RuntimeEnvironment
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithCampaigns selects the campaigns to run, in order.
func WithCampaigns(campaigns ...Campaign) Option {
	return func(o *Orchestrator) {
		o.campaigns = append(o.campaigns, campaigns...)
	}
}

// WithExistingPolicy sets how existing results are treated (default overwrite).
func WithExistingPolicy(p ExistingPolicy) Option {
	return func(o *Orchestrator) {
		o.policy = p
	}
}

// WithOutcomeHook registers a hook; hooks run in registration order.
func WithOutcomeHook(h OutcomeHook) Option {
	return func(o *Orchestrator) {
		o.hooks = append(o.hooks, h)
	}
}

// WithOutput redirects child stdout/stderr (default: ours; nil discards).
func WithOutput(stdout, stderr io.Writer) Option {
	return func(o *Orchestrator) {
		o.stdout, o.stderr = stdout, stderr
	}
}

// WithCaptureDir writes each run's output to <dir>/<folder>/<instance>.log.
func WithCaptureDir(dir string) Option {
	return func(o *Orchestrator) {
		o.captureDir = dir
	}
}

// NewOrchestrator creates an idle orchestrator. environ is the base
// environment for children, usually os.Environ().
func NewOrchestrator(settings EnvironmentSettings, environ []string, launcher Launcher, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		settings: settings,
		environ:  environ,
		launcher: launcher,
		policy:   ExistingOverwrite,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Environment returns the runtime environment built by Run (zero before setup).
func (o *Orchestrator) Environment() RuntimeEnvironment {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.env
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// Run executes the sweep. Setup errors, launch failures, policy errors and
// hook errors are fatal and returned; a run exiting non-zero is not.
// Cancellation of ctx is honoured between runs; a run already started is
// always waited for.
func (o *Orchestrator) Run(ctx context.Context) (Summary, error) {
	summary, err := o.run(ctx)
	if err != nil {
		o.setState(StateAborted)
		return summary, err
	}
	o.setState(StateDone)
	logrus.Infof("sweep complete: %d runs (%d ok, %d failed, %d skipped) across %d campaigns",
		summary.Total, summary.Succeeded, summary.Failed, summary.Skipped, summary.Campaigns)
	return summary, nil
}

func (o *Orchestrator) run(ctx context.Context) (Summary, error) {
	var summary Summary
	o.setState(StateSettingUp)
	env, err := NewRuntimeEnvironment(o.settings, o.environ)
	if err != nil {
		return summary, fmt.Errorf("setting up runtime environment: %w", err)
	}
	o.mu.Lock()
	o.env = env
	o.mu.Unlock()
	logrus.Infof("simulator %s, %s=%s", env.ExecutablePath(), env.LibraryPathVar, env.LibraryPath())

	invoker := NewRunInvoker(env, o.launcher)
	invoker.SetOutput(o.stdout, o.stderr)
	invoker.SetCaptureDir(o.captureDir)

	for _, c := range o.campaigns {
		o.setState(StateRunningCampaign)
		summary.Campaigns++
		logrus.Infof("campaign %s: %d runs", c.Name, c.Len())

		for i, cfg := range c.Configs {
			if err := ctx.Err(); err != nil {
				return summary, fmt.Errorf("sweep interrupted before %s run %d: %w", c.Name, i, err)
			}
			o.setState(StateRunningConfig)

			outcome, err := o.runOne(ctx, invoker, cfg)
			if err != nil {
				return summary, fmt.Errorf("campaign %s run %d: %w", c.Name, i, err)
			}
			outcome.Campaign = c.Name
			outcome.Index = i
			summary.add(outcome)

			for _, h := range o.hooks {
				if err := h(outcome); err != nil {
					return summary, fmt.Errorf("campaign %s run %d (%s): %w", c.Name, i, cfg, err)
				}
			}
		}
	}
	return summary, nil
}

func (o *Orchestrator) runOne(ctx context.Context, invoker *RunInvoker, cfg ExperimentConfig) (RunOutcome, error) {
	skip, err := o.policy.prepare(invoker.Environment().TracesDir(cfg))
	if err != nil {
		return RunOutcome{}, err
	}
	if skip {
		now := time.Now()
		logrus.Infof("skipping %s: results exist", cfg)
		return RunOutcome{Config: cfg, Skipped: true, StartedAt: now, FinishedAt: now}, nil
	}
	logrus.Infof("running %s: %s", cfg, cfg.CommandTail())
	return invoker.Invoke(ctx, cfg)
}
