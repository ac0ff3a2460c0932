// Package testutil provides shared test infrastructure for ccsweep.
// It builds throwaway ns-3 style installation roots whose simulator is a
// small shell script, so the real os/exec launch path can be exercised
// without ns-3.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// RecordingScript sleeps for $FAKE_SLEEP seconds if set, then appends its
// arguments and library path to calls.log in the working directory, creates
// traces/<folder>/<instance>/done like the real simulator, and exits with the
// status in $FAKE_EXIT (default 0).
const RecordingScript = `#!/bin/sh
folder=""
inst=""
for a in "$@"; do
  case "$a" in
    --folder=*) folder="${a#--folder=}" ;;
    --it=*) inst="${a#--it=}" ;;
  esac
done
if [ -n "$FAKE_SLEEP" ]; then
  sleep "$FAKE_SLEEP"
fi
echo "$* lib=$LD_LIBRARY_PATH" >> calls.log
mkdir -p "traces/$folder/$inst"
echo ok > "traces/$folder/$inst/done"
echo "simulated $folder $inst"
exit "${FAKE_EXIT:-0}"
`

// InstallRoot is a fake installation root laid out like an ns-3 build tree.
type InstallRoot struct {
	Root    string
	WorkDir string
}

// NewInstallRoot creates <tmp>/ns-3/build/{scratch,lib} and a separate work
// directory. If script is non-empty it is installed as build/scratch/<exe>.
// Tests that execute scripts are skipped on Windows.
func NewInstallRoot(t *testing.T, exe, script string) *InstallRoot {
	t.Helper()
	if script != "" && runtime.GOOS == "windows" {
		t.Skip("shell script simulator not supported on windows")
	}

	base := t.TempDir()
	root := filepath.Join(base, "ns-3")
	for _, d := range []string{"scratch", "lib"} {
		if err := os.MkdirAll(filepath.Join(root, "build", d), 0755); err != nil {
			t.Fatalf("creating install root: %v", err)
		}
	}
	work := filepath.Join(base, "work")
	if err := os.MkdirAll(work, 0755); err != nil {
		t.Fatalf("creating work dir: %v", err)
	}

	if script != "" {
		path := filepath.Join(root, "build", "scratch", exe)
		if err := os.WriteFile(path, []byte(script), 0755); err != nil {
			t.Fatalf("writing fake simulator: %v", err)
		}
	}
	return &InstallRoot{Root: root, WorkDir: work}
}

// Calls returns the lines RecordingScript appended to calls.log.
func (r *InstallRoot) Calls(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(r.WorkDir, "calls.log"))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("reading calls.log: %v", err)
	}
	trimmed := strings.TrimRight(string(data), "\n")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}
