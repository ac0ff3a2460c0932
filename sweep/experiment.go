package sweep

import (
	"fmt"
	"strconv"
	"strings"
)

// ExperimentConfig is one unit of work: a single simulator invocation.
type ExperimentConfig struct {
	Instance string // topology/seed variant, e.g. "3"
	CC1      string // congestion control algorithm of the first flow
	CC2      string // congestion control algorithm of the second flow
	LossRate int    // induced random loss, 0 = none
}

// NewExperimentConfig builds a config.
func NewExperimentConfig(instance, cc1, cc2 string, lossRate int) ExperimentConfig {
	return ExperimentConfig{
		Instance: instance,
		CC1:      cc1,
		CC2:      cc2,
		LossRate: lossRate,
	}
}

// OutputFolder is the folder label the run writes into, always
// FolderName(CC1, CC2, LossRate).
func (c ExperimentConfig) OutputFolder() string {
	return FolderName(c.CC1, c.CC2, c.LossRate)
}

// FolderName maps an algorithm pair and loss rate to the folder label the
// simulator writes into. Identical inputs always yield the same label, so
// repeated campaigns accumulate results in one place.
//
//	same algorithm on both flows:  "<cc>-l<loss>"
//	different algorithms, no loss: "<cc1>-<cc2>"
//	different algorithms, loss:    "<cc1>-<cc2>-l<loss>"
func FolderName(cc1, cc2 string, lossRate int) string {
	if cc1 == cc2 {
		return fmt.Sprintf("%s-l%d", cc1, lossRate)
	}
	if lossRate == 0 {
		return cc1 + "-" + cc2
	}
	return fmt.Sprintf("%s-%s-l%d", cc1, cc2, lossRate)
}

// Args returns the simulator flags in the order the tcp-dumbbell binary
// documents them. Flag names and the "=" form must not change.
func (c ExperimentConfig) Args() []string {
	return []string{
		"--it=" + c.Instance,
		"--cc1=" + c.CC1,
		"--cc2=" + c.CC2,
		"--folder=" + c.OutputFolder(),
		"--lo=" + strconv.Itoa(c.LossRate),
	}
}

// CommandTail is Args joined by single spaces, as it appears after the
// executable path on a shell command line.
func (c ExperimentConfig) CommandTail() string {
	return strings.Join(c.Args(), " ")
}

// String is used in log lines.
func (c ExperimentConfig) String() string {
	return fmt.Sprintf("%s/%s", c.OutputFolder(), c.Instance)
}
