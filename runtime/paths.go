package runtime

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wippyai/chaincall/errors"
)

// runtimeDirNames are the conventional folder names a chain project keeps
// its runtime crates under.
var runtimeDirNames = []string{"runtime", "runtimes"}

// FindRuntimeDir locates the runtime folder under parent.
func FindRuntimeDir(parent string) (string, error) {
	for _, name := range runtimeDirNames {
		dir := filepath.Join(parent, name)
		info, err := os.Stat(dir)
		if err == nil && info.IsDir() {
			return dir, nil
		}
	}
	return "", errors.NotFound(errors.PhaseRuntime, "runtime directory", parent)
}

// FindRuntimeBuilds walks dir and returns every compiled runtime artifact
// (*.compact.compressed.wasm preferred, plain *.wasm otherwise), sorted.
func FindRuntimeBuilds(dir string) ([]string, error) {
	var builds []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".wasm") {
			return nil
		}
		builds = append(builds, path)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.PhaseRuntime, errors.KindInvalidData, err, dir)
	}
	if len(builds) == 0 {
		return nil, errors.NotFound(errors.PhaseRuntime, "runtime build", dir)
	}
	sort.Strings(builds)
	return builds, nil
}
