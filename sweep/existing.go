package sweep

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// ExistingPolicy decides what happens when a config's trace directory
// already holds results from an earlier sweep.
type ExistingPolicy string

const (
	// ExistingOverwrite always launches; the simulator rewrites its files in place.
	ExistingOverwrite ExistingPolicy = "overwrite"
	// ExistingSkip does not launch when the trace directory is non-empty.
	ExistingSkip ExistingPolicy = "skip"
	// ExistingClean removes the trace directory before launching.
	ExistingClean ExistingPolicy = "clean"
)

// validExistingPolicies maps accepted policy strings.
var validExistingPolicies = map[ExistingPolicy]bool{
	ExistingOverwrite: true,
	ExistingSkip:      true,
	ExistingClean:     true,
}

// ParseExistingPolicy validates a policy name. Empty means overwrite.
func ParseExistingPolicy(s string) (ExistingPolicy, error) {
	if s == "" {
		return ExistingOverwrite, nil
	}
	p := ExistingPolicy(s)
	if !validExistingPolicies[p] {
		return "", fmt.Errorf("unknown existing-results policy %q (valid: overwrite, skip, clean)", s)
	}
	return p, nil
}

// prepare applies the policy to dir and reports whether the run should be skipped.
func (p ExistingPolicy) prepare(dir string) (bool, error) {
	switch p {
	case ExistingSkip:
		has, err := hasEntries(dir)
		if err != nil {
			return false, fmt.Errorf("checking existing results in %s: %w", dir, err)
		}
		if has {
			logrus.Debugf("results already present in %s, skipping", dir)
		}
		return has, nil
	case ExistingClean:
		if err := os.RemoveAll(dir); err != nil {
			return false, fmt.Errorf("removing previous results in %s: %w", dir, err)
		}
		return false, nil
	default:
		return false, nil
	}
}

// hasEntries is false for a missing or empty directory.
func hasEntries(dir string) (bool, error) {
	f, err := os.Open(dir)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer func() { _ = f.Close() }()
	_, err = f.Readdirnames(1)
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
