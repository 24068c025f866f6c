package scenario

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// DataDir is the directory name holding $ref data files.
	DataDir = "data"
	// DataSuffix marks a $ref data file outside a data dir.
	DataSuffix = ".data.json"

	scenarioSuffix = ".scenarios.json"
)

// ResolveFiles expands roots, each a file or a directory, into
// a sorted, de-duplicated list of scenario files. Directories
// are walked recursively; data directories and data files are
// skipped.
func ResolveFiles(roots []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve scenario root %s: %w", root, err)
		}
		if !info.IsDir() {
			add(filepath.Clean(root))
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && d.Name() == DataDir {
					return filepath.SkipDir
				}
				return nil
			}
			if isScenarioFile(d.Name()) {
				add(filepath.Clean(path))
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

func isScenarioFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".json") && !strings.HasSuffix(lower, DataSuffix)
}

// TargetName derives the target a scenario file exercises from
// its base name: "UserService.scenarios.json" and
// "UserService.json" both name "UserService".
func TargetName(path string) string {
	base := filepath.Base(path)
	lower := strings.ToLower(base)
	switch {
	case strings.HasSuffix(lower, scenarioSuffix):
		return base[:len(base)-len(scenarioSuffix)]
	case strings.HasSuffix(lower, ".json"):
		return base[:len(base)-len(".json")]
	}
	return base
}
