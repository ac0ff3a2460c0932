package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ns3-sweep/ccsweep/sweep"
	"github.com/ns3-sweep/ccsweep/sweep/record"
)

// runCmd executes the selected campaigns using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run campaigns against the simulator, one run at a time",
	Run: func(cmd *cobra.Command, args []string) {
		s, err := loadSettings(cfg)
		if err != nil {
			logrus.Fatalf("Invalid settings: %v", err)
		}
		if s.Env.Root == "" {
			logrus.Fatalf("ns-3 root not provided (--ns3-root or CCSWEEP_NS3_ROOT). Exiting sweep.")
		}
		if err := runSweep(context.Background(), s, os.Environ(), sweep.NewExecLauncher()); err != nil {
			logrus.Fatalf("Sweep aborted: %v", err)
		}
	},
}

// runSweep wires campaigns, policy, hooks and manifest export around one
// Orchestrator run. The manifest is written even when the sweep aborts, as
// long as the runtime environment was set up.
func runSweep(ctx context.Context, s sweepSettings, environ []string, launcher sweep.Launcher) error {
	campaigns, err := selectCampaigns(s.Campaigns, s.PlanPath)
	if err != nil {
		return err
	}

	recorder := record.NewRecorder()
	opts := []sweep.Option{
		sweep.WithCampaigns(campaigns...),
		sweep.WithExistingPolicy(s.Existing),
		sweep.WithOutcomeHook(recorder.Hook),
	}
	if s.Strict {
		opts = append(opts, sweep.WithOutcomeHook(sweep.StopOnFailure))
	}
	if s.CaptureOutput {
		opts = append(opts, sweep.WithCaptureDir(filepath.Join(s.Env.WorkDir, "logs")))
	}

	startTime := time.Now()
	logrus.Infof("Starting sweep %s with %d campaigns, existing results policy %s",
		recorder.SweepID(), len(campaigns), s.Existing)

	orch := sweep.NewOrchestrator(s.Env, environ, launcher, opts...)
	_, runErr := orch.Run(ctx)

	records := recorder.Records()
	summary := record.Summarize(records)
	for _, f := range summary.FailedFolders {
		logrus.Warnf("failed run: %s", f)
	}
	logrus.Infof("Sweep %s finished in %s", recorder.SweepID(), time.Since(startTime).Round(time.Second))

	env := orch.Environment()
	if s.ManifestDir != "" && env.Root == "" {
		logrus.Warnf("environment setup failed, no manifest written")
	} else if s.ManifestDir != "" {
		if err := writeManifest(s, env, campaigns, recorder.SweepID(), records); err != nil {
			if runErr != nil {
				logrus.Errorf("writing manifest: %v", err)
				return runErr
			}
			return err
		}
	}
	return runErr
}

func writeManifest(s sweepSettings, env sweep.RuntimeEnvironment, campaigns []sweep.Campaign, sweepID string, records []record.RunRecord) error {
	if err := os.MkdirAll(s.ManifestDir, 0755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}
	names := make([]string, 0, len(campaigns))
	for _, c := range campaigns {
		names = append(names, c.Name)
	}
	summary := record.Summarize(records)
	header := &record.ManifestHeader{
		Version:        record.ManifestVersion,
		SweepID:        sweepID,
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
		Root:           env.Root,
		Executable:     env.ExecutablePath(),
		LibraryPath:    env.LibraryPath(),
		WorkDir:        env.WorkDir,
		Campaigns:      names,
		ExistingPolicy: string(s.Existing),
		Runs:           summary.Total,
		Failed:         summary.Failed,
		Skipped:        summary.Skipped,
	}
	headerPath, dataPath := record.ManifestPaths(s.ManifestDir, sweepID)
	if err := record.ExportManifest(header, records, headerPath, dataPath); err != nil {
		return err
	}
	logrus.Infof("Manifest written to %s", headerPath)
	return nil
}

func init() {
	runCmd.Flags().String("ns3-root", "", "ns-3 installation root (simulator in <root>/build/scratch, libraries in <root>/build/lib)")
	runCmd.Flags().String("executable", sweep.DefaultExecutable, "Simulator program name under <root>/build/scratch")
	runCmd.Flags().String("lib-path-var", "", "Library search path variable to extend (default LD_LIBRARY_PATH, DYLD_LIBRARY_PATH on macOS)")
	runCmd.Flags().String("work-dir", "", "Working directory for simulator runs; traces land in <work-dir>/traces (default: current directory)")
	runCmd.Flags().String("existing", string(sweep.ExistingOverwrite), "What to do when a run's trace directory already has results (overwrite, skip, clean)")
	runCmd.Flags().Bool("strict", false, "Abort the sweep at the first run that exits non-zero")
	runCmd.Flags().String("manifest-dir", "", "Write sweep-<id>.yaml and sweep-<id>.csv run manifests here (disabled if empty)")
	runCmd.Flags().Bool("capture-output", false, "Write each run's output to <work-dir>/logs/<folder>/<instance>.log")
	addCampaignFlags(runCmd.Flags())

	rootCmd.AddCommand(runCmd)
}
