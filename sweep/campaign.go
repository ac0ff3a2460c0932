package sweep

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Built-in campaign names, also accepted by the CLI.
const (
	CampaignNoLoss               = "no-loss"
	CampaignRandomLoss           = "random-loss"
	CampaignBandwidthCompetition = "bandwidth-competition"
)

var (
	// ErrUnknownCampaign is returned when a campaign name matches no grid.
	ErrUnknownCampaign = errors.New("unknown campaign")
	// ErrInvalidGrid is wrapped by every Grid validation failure.
	ErrInvalidGrid = errors.New("invalid campaign grid")
)

// Algorithms is the congestion control vocabulary used by the paired campaigns.
var Algorithms = []string{"reno", "cubic", "bbr", "bbr2"}

// AggressiveAlgorithms probe for bandwidth; ClassicAlgorithms are loss based.
// The two sets are disjoint.
var (
	AggressiveAlgorithms = []string{"bbr", "bbr2"}
	ClassicAlgorithms    = []string{"reno", "cubic"}
)

// supportedAlgorithms is everything the tcp-dumbbell binary accepts for --cc1/--cc2.
var supportedAlgorithms = map[string]bool{
	"reno":  true,
	"bic":   true,
	"cubic": true,
	"bbr":   true,
	"bbr2":  true,
}

// IsSupportedAlgorithm reports whether the simulator accepts the algorithm name.
func IsSupportedAlgorithm(name string) bool {
	return supportedAlgorithms[name]
}

// Campaign is a named, ordered sequence of experiment configs.
type Campaign struct {
	Name    string
	Configs []ExperimentConfig
}

// Len returns the number of runs in the campaign.
func (c Campaign) Len() int {
	return len(c.Configs)
}

// Grid describes a campaign as nested loops over literal parameter domains.
// Iteration order is CC1, then CC2 (unless Paired), then LossRates, then
// Instances, outermost first.
type Grid struct {
	Name      string   `yaml:"name"`
	Paired    bool     `yaml:"paired,omitempty"` // use each CC1 entry on both flows; CC2 is ignored
	CC1       []string `yaml:"cc1"`
	CC2       []string `yaml:"cc2,omitempty"`
	LossRates []int    `yaml:"loss_rates"`
	Instances []string `yaml:"instances"`
}

// Size is the product of the grid's loop domains.
func (g Grid) Size() int {
	n := len(g.CC1) * len(g.LossRates) * len(g.Instances)
	if !g.Paired {
		n *= len(g.CC2)
	}
	return n
}

// Campaign enumerates the grid. It never fails; call Validate first for
// grids that did not come from this package.
func (g Grid) Campaign() Campaign {
	configs := make([]ExperimentConfig, 0, g.Size())
	for _, cc1 := range g.CC1 {
		second := g.CC2
		if g.Paired {
			second = []string{cc1}
		}
		for _, cc2 := range second {
			for _, loss := range g.LossRates {
				for _, inst := range g.Instances {
					configs = append(configs, NewExperimentConfig(inst, cc1, cc2, loss))
				}
			}
		}
	}
	return Campaign{Name: g.Name, Configs: configs}
}

// Validate checks a grid against what the simulator accepts.
func (g Grid) Validate() error {
	if g.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidGrid)
	}
	if len(g.CC1) == 0 {
		return fmt.Errorf("%w: %s: cc1 must not be empty", ErrInvalidGrid, g.Name)
	}
	if !g.Paired && len(g.CC2) == 0 {
		return fmt.Errorf("%w: %s: cc2 must not be empty unless paired", ErrInvalidGrid, g.Name)
	}
	if len(g.LossRates) == 0 {
		return fmt.Errorf("%w: %s: loss_rates must not be empty", ErrInvalidGrid, g.Name)
	}
	if len(g.Instances) == 0 {
		return fmt.Errorf("%w: %s: instances must not be empty", ErrInvalidGrid, g.Name)
	}

	algos := append([]string{}, g.CC1...)
	if !g.Paired {
		algos = append(algos, g.CC2...)
	}
	for _, a := range algos {
		if !IsSupportedAlgorithm(a) {
			return fmt.Errorf("%w: %s: unsupported algorithm %q (valid: %s)",
				ErrInvalidGrid, g.Name, a, strings.Join(SupportedAlgorithmNames(), ", "))
		}
	}
	for _, l := range g.LossRates {
		if l < 0 || l > 1000 {
			return fmt.Errorf("%w: %s: loss rate %d out of range [0, 1000]", ErrInvalidGrid, g.Name, l)
		}
	}
	for _, inst := range g.Instances {
		if inst == "" || strings.ContainsAny(inst, `/\`) || inst == "." || inst == ".." {
			return fmt.Errorf("%w: %s: invalid instance identifier %q", ErrInvalidGrid, g.Name, inst)
		}
	}

	if d := firstDuplicate(g.CC1); d != "" {
		return fmt.Errorf("%w: %s: duplicate cc1 entry %q", ErrInvalidGrid, g.Name, d)
	}
	if d := firstDuplicate(g.CC2); d != "" && !g.Paired {
		return fmt.Errorf("%w: %s: duplicate cc2 entry %q", ErrInvalidGrid, g.Name, d)
	}
	if d := firstDuplicate(g.Instances); d != "" {
		return fmt.Errorf("%w: %s: duplicate instance %q", ErrInvalidGrid, g.Name, d)
	}
	seen := make(map[int]bool, len(g.LossRates))
	for _, l := range g.LossRates {
		if seen[l] {
			return fmt.Errorf("%w: %s: duplicate loss rate %d", ErrInvalidGrid, g.Name, l)
		}
		seen[l] = true
	}
	return nil
}

func firstDuplicate(values []string) string {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if seen[v] {
			return v
		}
		seen[v] = true
	}
	return ""
}

// SupportedAlgorithmNames returns the simulator vocabulary in sorted order.
func SupportedAlgorithmNames() []string {
	names := make([]string, 0, len(supportedAlgorithms))
	for n := range supportedAlgorithms {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NoLossGrid runs every algorithm against itself on all eight instances
// without induced loss.
func NoLossGrid() Grid {
	return Grid{
		Name:      CampaignNoLoss,
		Paired:    true,
		CC1:       append([]string{}, Algorithms...),
		LossRates: []int{0},
		Instances: []string{"1", "2", "3", "4", "5", "6", "7", "8"},
	}
}

// RandomLossGrid runs every algorithm against itself under three induced
// loss rates on a reduced instance set.
func RandomLossGrid() Grid {
	return Grid{
		Name:      CampaignRandomLoss,
		Paired:    true,
		CC1:       append([]string{}, Algorithms...),
		LossRates: []int{10, 20, 30},
		Instances: []string{"3", "4", "7", "8"},
	}
}

// BandwidthCompetitionGrid puts a bandwidth-probing flow against a loss
// based flow.
func BandwidthCompetitionGrid() Grid {
	return Grid{
		Name:      CampaignBandwidthCompetition,
		CC1:       append([]string{}, AggressiveAlgorithms...),
		CC2:       append([]string{}, ClassicAlgorithms...),
		LossRates: []int{0},
		Instances: []string{"1", "2", "3", "4"},
	}
}

// BuiltinGrids returns all built-in grids in definition order.
func BuiltinGrids() []Grid {
	return []Grid{NoLossGrid(), RandomLossGrid(), BandwidthCompetitionGrid()}
}

// DefaultCampaignNames is the selection used when none is given. The no-loss
// campaign is defined but not selected by default.
func DefaultCampaignNames() []string {
	return []string{CampaignRandomLoss, CampaignBandwidthCompetition}
}

// BuiltinGrid looks up a built-in grid by name.
func BuiltinGrid(name string) (Grid, error) {
	for _, g := range BuiltinGrids() {
		if g.Name == name {
			return g, nil
		}
	}
	return Grid{}, fmt.Errorf("%w: %q", ErrUnknownCampaign, name)
}

// ResolveCampaigns turns campaign names into enumerated campaigns, looking
// in extra (typically loaded from a plan file) before the built-ins.
// Order follows names.
func ResolveCampaigns(names []string, extra []Grid) ([]Campaign, error) {
	byName := make(map[string]Grid, len(extra))
	for _, g := range extra {
		byName[g.Name] = g
	}
	campaigns := make([]Campaign, 0, len(names))
	for _, name := range names {
		g, ok := byName[name]
		if !ok {
			var err error
			if g, err = BuiltinGrid(name); err != nil {
				return nil, err
			}
		}
		campaigns = append(campaigns, g.Campaign())
	}
	return campaigns, nil
}
