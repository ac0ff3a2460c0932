package sweep

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// PlanFile is the on-disk format for user-defined campaign grids.
type PlanFile struct {
	Campaigns []Grid `yaml:"campaigns"`
}

// LoadPlan reads a YAML plan file. Decoding is strict: unknown keys are
// errors so that typos in a dimension name do not silently shrink a sweep.
func LoadPlan(path string) ([]Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan file: %w", err)
	}
	return ParsePlan(data)
}

// ParsePlan decodes and validates plan file contents.
func ParsePlan(data []byte) ([]Grid, error) {
	var plan PlanFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&plan); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing plan file: %w", err)
	}
	if len(plan.Campaigns) == 0 {
		return nil, fmt.Errorf("%w: plan file defines no campaigns", ErrInvalidGrid)
	}

	seen := make(map[string]bool, len(plan.Campaigns))
	for _, g := range plan.Campaigns {
		if err := g.Validate(); err != nil {
			return nil, err
		}
		if seen[g.Name] {
			return nil, fmt.Errorf("%w: duplicate campaign name %q", ErrInvalidGrid, g.Name)
		}
		seen[g.Name] = true
		if _, err := BuiltinGrid(g.Name); err == nil {
			logrus.Warnf("plan campaign %q shadows the built-in campaign of the same name", g.Name)
		}
	}
	return plan.Campaigns, nil
}
