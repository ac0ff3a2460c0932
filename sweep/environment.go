package sweep

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultExecutable is the ns-3 scratch program driven by the built-in campaigns.
const DefaultExecutable = "tcp-dumbbell"

// EnvironmentSettings are the externally supplied inputs for RuntimeEnvironment.
type EnvironmentSettings struct {
	Root           string // ns-3 installation root (required)
	Executable     string // program name under <root>/build/scratch (default "tcp-dumbbell")
	LibraryPathVar string // dynamic loader search path variable (default per OS)
	WorkDir        string // child working directory; "" inherits ours
}

// RuntimeEnvironment is the process-wide configuration computed once before
// any run and read-only afterwards.
type RuntimeEnvironment struct {
	Root           string
	ExeDir         string
	LibDir         string
	Executable     string
	LibraryPathVar string
	WorkDir        string
	Env            []string // full child environment, library path already extended
}

// DefaultLibraryPathVar returns the loader search path variable for goos.
func DefaultLibraryPathVar(goos string) string {
	switch goos {
	case "darwin":
		return "DYLD_LIBRARY_PATH"
	case "windows":
		return "PATH"
	default:
		return "LD_LIBRARY_PATH"
	}
}

// ExtendLibraryPath appends dir to an existing search path value, keeping
// whatever was set externally in front. An empty existing value yields dir.
func ExtendLibraryPath(existing, dir string) string {
	if existing == "" {
		return dir
	}
	return existing + string(os.PathListSeparator) + dir
}

// NewRuntimeEnvironment resolves the executable and library directories
// under the installation root and derives the child environment from
// environ (typically os.Environ()). environ itself is not modified.
func NewRuntimeEnvironment(settings EnvironmentSettings, environ []string) (RuntimeEnvironment, error) {
	if settings.Root == "" {
		return RuntimeEnvironment{}, fmt.Errorf("installation root is not set")
	}
	root, err := filepath.Abs(settings.Root)
	if err != nil {
		return RuntimeEnvironment{}, fmt.Errorf("resolving installation root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return RuntimeEnvironment{}, fmt.Errorf("installation root: %w", err)
	}
	if !info.IsDir() {
		return RuntimeEnvironment{}, fmt.Errorf("installation root %s is not a directory", root)
	}

	exe := settings.Executable
	if exe == "" {
		exe = DefaultExecutable
	}
	libVar := settings.LibraryPathVar
	if libVar == "" {
		libVar = DefaultLibraryPathVar(runtime.GOOS)
	}

	env := RuntimeEnvironment{
		Root:           root,
		ExeDir:         filepath.Join(root, "build", "scratch"),
		LibDir:         filepath.Join(root, "build", "lib"),
		Executable:     exe,
		LibraryPathVar: libVar,
		WorkDir:        settings.WorkDir,
	}
	env.Env = withLibraryPath(environ, libVar, env.LibDir)
	return env, nil
}

// ExecutablePath is the absolute path of the simulator binary.
func (e RuntimeEnvironment) ExecutablePath() string {
	return filepath.Join(e.ExeDir, e.Executable)
}

// LibraryPath returns the effective search path value handed to children.
func (e RuntimeEnvironment) LibraryPath() string {
	v, _ := lookupEnv(e.Env, e.LibraryPathVar)
	return v
}

// TracesDir is where the simulator writes results for one config, relative
// to the child's working directory: traces/<folder>/<instance>.
func (e RuntimeEnvironment) TracesDir(cfg ExperimentConfig) string {
	return filepath.Join(e.WorkDir, "traces", cfg.OutputFolder(), cfg.Instance)
}

// withLibraryPath copies environ, extending (or adding) key with dir.
func withLibraryPath(environ []string, key, dir string) []string {
	out := make([]string, 0, len(environ)+1)
	found := false
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if ok && k == key {
			if found {
				continue
			}
			found = true
			out = append(out, key+"="+ExtendLibraryPath(v, dir))
			continue
		}
		out = append(out, kv)
	}
	if !found {
		out = append(out, key+"="+dir)
	}
	return out
}

func lookupEnv(environ []string, key string) (string, bool) {
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok && k == key {
			return v, true
		}
	}
	return "", false
}
