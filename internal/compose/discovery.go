package compose

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// excludedFragments is a safety policy: files whose name contains one
// of these fragments are never discovered, so production definitions
// cannot be picked up and mutated by accident.
var excludedFragments = []string{"prod", "staging", "production"}

// Discover returns the deduplicated, sorted, absolute paths of compose
// files under root, at any depth. Unreadable directories are skipped;
// discovery never fails the caller and returns an empty slice on total
// failure.
func Discover(root string) []string {
	seen := make(map[string]bool)

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !isComposeFileName(d.Name()) {
			return nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		seen[abs] = true
		return nil
	})

	files := make([]string, 0, len(seen))
	for f := range seen {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// isComposeFileName matches the compose naming conventions
// (compose*.yml, compose*.yaml, docker-compose*.yml,
// docker-compose*.yaml) and applies the exclusion policy
// case-insensitively.
func isComposeFileName(name string) bool {
	lower := strings.ToLower(name)

	if !strings.HasSuffix(lower, ".yml") && !strings.HasSuffix(lower, ".yaml") {
		return false
	}
	if !strings.HasPrefix(lower, "compose") && !strings.HasPrefix(lower, "docker-compose") {
		return false
	}
	for _, fragment := range excludedFragments {
		if strings.Contains(lower, fragment) {
			return false
		}
	}
	return true
}
