// Package sweep provides the campaign planner and sequential run engine for
// ns-3 dumbbell experiment sweeps.
//
// # Reading Guide
//
// Start with these files:
//   - experiment.go: ExperimentConfig, the output-folder rule and the simulator argument list
//   - campaign.go: Grid definitions and the built-in campaigns
//   - invoker.go: launching one run and blocking until the child exits
//   - orchestrator.go: environment setup and the strictly sequential campaign loop
//
// # Architecture
//
// The sweep package owns the planning and execution types; per-run outcome
// recording and manifest export live in sweep/record, which depends only on
// the plain outcome data handed to it through an OutcomeHook.
//
// The external simulator is consumed through the Launcher interface. The
// production implementation (ExecLauncher) uses os/exec; tests substitute an
// in-package fake launcher, or run ExecLauncher against the recording
// shell script simulator from internal/testutil.
//
// # Key Invariants
//
//   - OutputFolder is a pure function of (CC1, CC2, LossRate).
//   - At most one simulator process is alive at any time.
//   - RunInvoker.Invoke never returns before the child process has exited.
//   - The process environment is never mutated; the extended library path
//     lives in RuntimeEnvironment.Env only.
package sweep
