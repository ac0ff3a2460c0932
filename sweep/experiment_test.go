package sweep

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFolderName(t *testing.T) {
	tests := []struct {
		name string
		cc1  string
		cc2  string
		loss int
		want string
	}{
		{"paired no loss", "cubic", "cubic", 0, "cubic-l0"},
		{"paired with loss", "bbr2", "bbr2", 30, "bbr2-l30"},
		{"competition no loss", "bbr", "reno", 0, "bbr-reno"},
		{"competition with loss", "bbr", "cubic", 10, "bbr-cubic-l10"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FolderName(tc.cc1, tc.cc2, tc.loss))
		})
	}
}

func TestFolderName_Deterministic(t *testing.T) {
	// GIVEN identical inputs WHEN the folder is derived twice THEN both labels match
	for _, g := range BuiltinGrids() {
		for _, cfg := range g.Campaign().Configs {
			assert.Equal(t, cfg.OutputFolder(), FolderName(cfg.CC1, cfg.CC2, cfg.LossRate))
			assert.Equal(t, FolderName(cfg.CC1, cfg.CC2, cfg.LossRate), FolderName(cfg.CC1, cfg.CC2, cfg.LossRate))
		}
	}
}

func TestExperimentConfig_Args_FlagOrderAndForm(t *testing.T) {
	cfg := NewExperimentConfig("7", "bbr", "cubic", 0)

	assert.Equal(t, []string{
		"--it=7",
		"--cc1=bbr",
		"--cc2=cubic",
		"--folder=bbr-cubic",
		"--lo=0",
	}, cfg.Args())
}

func TestRandomLossCampaign_CubicLoss20Instance4_CommandTail(t *testing.T) {
	// GIVEN the random-loss campaign
	c := RandomLossGrid().Campaign()

	// WHEN looking up the cubic / 20 / instance 4 run
	var found *ExperimentConfig
	for i := range c.Configs {
		cfg := c.Configs[i]
		if cfg.CC1 == "cubic" && cfg.LossRate == 20 && cfg.Instance == "4" {
			found = &c.Configs[i]
		}
	}

	// THEN it exists and builds the exact command tail
	if assert.NotNil(t, found) {
		assert.Equal(t, "--it=4 --cc1=cubic --cc2=cubic --folder=cubic-l20 --lo=20", found.CommandTail())
	}
}

func TestExperimentConfig_String(t *testing.T) {
	assert.Equal(t, "reno-l10/3", NewExperimentConfig("3", "reno", "reno", 10).String())
}

func TestExperimentConfig_LiteralDerivesFolder(t *testing.T) {
	// GIVEN a config built as a struct literal rather than with NewExperimentConfig
	cfg := ExperimentConfig{Instance: "2", CC1: "bbr2", CC2: "reno", LossRate: 20}

	// THEN the folder still follows the folder rule everywhere it appears
	assert.Equal(t, "bbr2-reno-l20", cfg.OutputFolder())
	assert.Equal(t, "--folder=bbr2-reno-l20", cfg.Args()[3])
	assert.Equal(t, "bbr2-reno-l20/2", cfg.String())
	assert.Equal(t, NewExperimentConfig("2", "bbr2", "reno", 20), cfg)
}
