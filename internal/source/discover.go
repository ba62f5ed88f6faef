package source

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// excludedDirs are directory names skipped during discovery: version control
// metadata and dependency caches.
var excludedDirs = map[string]struct{}{
	".git":         {},
	".hg":          {},
	".svn":         {},
	"node_modules": {},
	"vendor":       {},
	"__pycache__":  {},
	".venv":        {},
}

// Discover walks root recursively and returns every parseable workflow
// definition in lexical order, plus the files that failed to parse. A missing
// or unreadable root is an error; individual unreadable files are reported in
// the invalid list so one bad file cannot abort a run.
func Discover(root string) ([]Workflow, []Invalid, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, nil, fmt.Errorf("workflows directory: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("workflows directory %q is not a directory", root)
	}

	var workflows []Workflow
	var invalid []Invalid

	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			if _, excluded := excludedDirs[entry.Name()]; excluded && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			invalid = append(invalid, Invalid{Path: rel, Err: readErr})
			return nil
		}

		def, parseErr := ParseDefinition(data)
		if parseErr != nil {
			if errors.Is(parseErr, ErrNotWorkflow) {
				return nil
			}
			invalid = append(invalid, Invalid{Path: rel, Err: parseErr})
			return nil
		}

		workflows = append(workflows, Describe(rel, def))
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("scan workflows: %w", err)
	}

	return workflows, invalid, nil
}
