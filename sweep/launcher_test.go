package sweep

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ns3-sweep/ccsweep/internal/testutil"
)

func TestExecLauncher_RunsSimulatorWithExtendedLibraryPath(t *testing.T) {
	// GIVEN an install root whose simulator is a recording script
	inst := testutil.NewInstallRoot(t, DefaultExecutable, testutil.RecordingScript)
	env, err := NewRuntimeEnvironment(EnvironmentSettings{
		Root:           inst.Root,
		LibraryPathVar: "LD_LIBRARY_PATH",
		WorkDir:        inst.WorkDir,
	}, []string{"PATH=" + os.Getenv("PATH"), "LD_LIBRARY_PATH=/opt/extra"})
	require.NoError(t, err)

	var stdout bytes.Buffer
	invoker := NewRunInvoker(env, NewExecLauncher())
	invoker.SetOutput(&stdout, nil)

	// WHEN one config is invoked
	outcome, err := invoker.Invoke(context.Background(), NewExperimentConfig("4", "cubic", "cubic", 20))

	// THEN the script saw the exact flags and the appended library path
	require.NoError(t, err)
	assert.Equal(t, 0, outcome.ExitCode)
	calls := inst.Calls(t)
	require.Len(t, calls, 1)
	assert.Equal(t, "--it=4 --cc1=cubic --cc2=cubic --folder=cubic-l20 --lo=20 lib=/opt/extra:"+env.LibDir, calls[0])
	assert.Equal(t, "simulated cubic-l20 4\n", stdout.String())

	// AND the results landed in traces/<folder>/<instance>
	assert.FileExists(t, filepath.Join(inst.WorkDir, "traces", "cubic-l20", "4", "done"))
}

func TestExecLauncher_NonZeroExitReported(t *testing.T) {
	inst := testutil.NewInstallRoot(t, DefaultExecutable, testutil.RecordingScript)
	env, err := NewRuntimeEnvironment(EnvironmentSettings{Root: inst.Root, WorkDir: inst.WorkDir},
		[]string{"PATH=" + os.Getenv("PATH"), "FAKE_EXIT=3"})
	require.NoError(t, err)
	invoker := NewRunInvoker(env, NewExecLauncher())
	invoker.SetOutput(nil, nil)

	outcome, err := invoker.Invoke(context.Background(), NewExperimentConfig("1", "bbr", "reno", 0))

	require.NoError(t, err)
	assert.Equal(t, 3, outcome.ExitCode)
	assert.True(t, outcome.Failed())
}

func TestExecLauncher_MissingExecutableFailsToLaunch(t *testing.T) {
	// GIVEN an install root without a simulator binary
	inst := testutil.NewInstallRoot(t, DefaultExecutable, "")
	env, err := NewRuntimeEnvironment(EnvironmentSettings{Root: inst.Root, WorkDir: inst.WorkDir}, nil)
	require.NoError(t, err)

	// WHEN a run is invoked THEN the launch error surfaces
	_, err = NewRunInvoker(env, NewExecLauncher()).Invoke(context.Background(), NewExperimentConfig("1", "reno", "reno", 0))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), DefaultExecutable), err.Error())
}

func TestOrchestrator_CancelDuringRunWaitsForSimulator(t *testing.T) {
	// GIVEN a real launch of a simulator that takes a second per run
	inst := testutil.NewInstallRoot(t, DefaultExecutable, testutil.RecordingScript)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var outcomes []RunOutcome
	orch := NewOrchestrator(
		EnvironmentSettings{Root: inst.Root, WorkDir: inst.WorkDir},
		[]string{"PATH=" + os.Getenv("PATH"), "FAKE_SLEEP=1"},
		NewExecLauncher(),
		WithCampaigns(BandwidthCompetitionGrid().Campaign()),
		WithOutput(nil, nil),
		WithOutcomeHook(func(o RunOutcome) error {
			outcomes = append(outcomes, o)
			return nil
		}))

	// WHEN the context is canceled while the first run is in progress
	timer := time.AfterFunc(200*time.Millisecond, cancel)
	defer timer.Stop()
	summary, err := orch.Run(ctx)

	// THEN the first run finished cleanly and the sweep stopped before the second
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateAborted, orch.State())
	require.Len(t, outcomes, 1)
	assert.Equal(t, 0, outcomes[0].ExitCode)
	assert.Empty(t, outcomes[0].Err)
	assert.GreaterOrEqual(t, outcomes[0].Duration(), 900*time.Millisecond)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Len(t, inst.Calls(t), 1)
}

func TestExecLauncher_CanceledContextDoesNotLaunch(t *testing.T) {
	inst := testutil.NewInstallRoot(t, DefaultExecutable, testutil.RecordingScript)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExecLauncher().Start(ctx, ProcessSpec{
		Path: filepath.Join(inst.Root, "build", "scratch", DefaultExecutable),
		Dir:  inst.WorkDir,
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, inst.Calls(t))
}
