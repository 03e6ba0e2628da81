package walker

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileInfo holds metadata about a discovered source file.
type FileInfo struct {
	Path    string
	RelPath string
	Size    int64
}

// maxFileSize is the largest file we'll consider (1 MB).
const maxFileSize = 1 << 20

// defaultIgnores are used when no .prismignore file exists.
var defaultIgnores = []string{
	".git",
	".svn",
	".hg",
	"node_modules",
	"vendor",
	".idea",
	".vscode",
	".prism",
	"dist",
	"build",
	"out",
	"coverage",
	".next",
	"storybook-static",
}

// List traverses the tree rooted at root and returns the source files
// whose extension is in allowedExts, sorted by relative path so the
// indexing pipeline sees a deterministic order. Directories matching
// .prismignore patterns are skipped.
func List(root string, allowedExts map[string]bool) ([]FileInfo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	ignores := loadIgnorePatterns(absRoot)

	var files []FileInfo
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries, keep walking
		}

		if d.IsDir() {
			if path == absRoot {
				return nil
			}
			rel, _ := filepath.Rel(absRoot, path)
			if matchesIgnore(d.Name(), filepath.ToSlash(rel), ignores) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		ext := strings.TrimPrefix(filepath.Ext(path), ".")
		if !allowedExts[ext] {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.Size() > maxFileSize || info.Size() == 0 {
			return nil
		}

		relPath, _ := filepath.Rel(absRoot, path)
		files = append(files, FileInfo{
			Path:    path,
			RelPath: filepath.ToSlash(relPath),
			Size:    info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

// loadIgnorePatterns reads .prismignore from the scan root, falling
// back to the defaults when the file is missing or empty.
func loadIgnorePatterns(root string) []string {
	f, err := os.Open(filepath.Join(root, ".prismignore"))
	if err != nil {
		return defaultIgnores
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if len(patterns) == 0 {
		return defaultIgnores
	}
	return patterns
}

// matchesIgnore checks a directory name or relative path against the
// ignore patterns.
func matchesIgnore(name, relPath string, patterns []string) bool {
	for _, p := range patterns {
		if name == p {
			return true
		}
		if strings.HasPrefix(relPath, p) {
			return true
		}
		if matched, _ := filepath.Match(p, relPath); matched {
			return true
		}
		if matched, _ := filepath.Match(p, name); matched {
			return true
		}
	}
	return false
}
