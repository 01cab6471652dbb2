package records

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fjglira/specwalk/internal/domain"
)

// Finder locates records files below a set of directories.
type Finder struct {
	Include   []string
	Exclude   []string
	Recursive bool
}

// Find walks every directory and returns the sorted, de-duplicated paths of
// files matching an include pattern and no exclude pattern. Patterns are
// matched against the path relative to the directory being walked; "**"
// spans any number of path elements.
func (f *Finder) Find(dirs ...string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, relErr := filepath.Rel(dir, path)
			if relErr != nil {
				rel = path
			}
			rel = filepath.ToSlash(rel)

			if d.IsDir() {
				if rel == "." {
					return nil
				}
				if !f.Recursive || matchAny(rel, f.Exclude) {
					return filepath.SkipDir
				}
				return nil
			}
			if matchAny(rel, f.Exclude) || !matchAny(rel, f.Include) {
				return nil
			}
			if !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, domain.NewError(domain.PhaseScan, dir, 0, "failed to scan directory", err)
		}
	}
	sort.Strings(files)
	return files, nil
}

func matchAny(rel string, patterns []string) bool {
	for _, p := range patterns {
		if match(filepath.ToSlash(p), rel) {
			return true
		}
	}
	return false
}

// match reports whether rel matches pattern. A pattern without a slash is
// matched against the base name only.
func match(pattern, rel string) bool {
	if !strings.Contains(pattern, "/") {
		ok, _ := filepath.Match(pattern, pathBase(rel))
		return ok
	}
	return matchParts(strings.Split(pattern, "/"), strings.Split(rel, "/"))
}

func matchParts(pattern, parts []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			rest := pattern[1:]
			if len(rest) == 0 {
				return true
			}
			for i := range parts {
				if matchParts(rest, parts[i:]) {
					return true
				}
			}
			return false
		}
		if len(parts) == 0 {
			return false
		}
		if ok, _ := filepath.Match(pattern[0], parts[0]); !ok {
			return false
		}
		pattern, parts = pattern[1:], parts[1:]
	}
	return len(parts) == 0
}

func pathBase(rel string) string {
	if i := strings.LastIndex(rel, "/"); i >= 0 {
		return rel[i+1:]
	}
	return rel
}
