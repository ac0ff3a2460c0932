package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/ns3-sweep/ccsweep/sweep"
)

// sweepSettings is everything a sweep needs from flags, env and config file.
type sweepSettings struct {
	Env           sweep.EnvironmentSettings
	Campaigns     []string
	PlanPath      string
	Existing      sweep.ExistingPolicy
	Strict        bool   // abort at the first run exiting non-zero
	ManifestDir   string // "" disables manifest export
	CaptureOutput bool   // per-run log files under <work-dir>/logs
}

// loadSettings reads settings from v. Keys are the flag names.
func loadSettings(v *viper.Viper) (sweepSettings, error) {
	existing, err := sweep.ParseExistingPolicy(v.GetString("existing"))
	if err != nil {
		return sweepSettings{}, err
	}
	s := sweepSettings{
		Env: sweep.EnvironmentSettings{
			Root:           v.GetString("ns3-root"),
			Executable:     v.GetString("executable"),
			LibraryPathVar: v.GetString("lib-path-var"),
			WorkDir:        v.GetString("work-dir"),
		},
		Campaigns:     splitList(v.GetStringSlice("campaigns")),
		PlanPath:      v.GetString("plan"),
		Existing:      existing,
		Strict:        v.GetBool("strict"),
		ManifestDir:   v.GetString("manifest-dir"),
		CaptureOutput: v.GetBool("capture-output"),
	}
	return s, nil
}

// splitList flattens comma separated entries; env vars arrive as one string.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// selectCampaigns loads the plan file (if any) and enumerates the selected
// campaigns. Without explicit names it runs the plan file's campaigns, or the
// default built-in selection when there is no plan file.
func selectCampaigns(names []string, planPath string) ([]sweep.Campaign, error) {
	var grids []sweep.Grid
	if planPath != "" {
		var err error
		grids, err = sweep.LoadPlan(planPath)
		if err != nil {
			return nil, err
		}
	}
	if len(names) == 0 {
		if len(grids) > 0 {
			for _, g := range grids {
				names = append(names, g.Name)
			}
		} else {
			names = sweep.DefaultCampaignNames()
		}
	}
	campaigns, err := sweep.ResolveCampaigns(names, grids)
	if err != nil {
		return nil, fmt.Errorf("selecting campaigns: %w", err)
	}
	return campaigns, nil
}
