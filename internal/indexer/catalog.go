package indexer

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"prism/internal/model"
)

// writeCatalog renders a deterministic markdown digest of the indexed
// corpus next to the index file.
func writeCatalog(path string, records []model.ComponentRecord, stats *Stats) error {
	var b strings.Builder
	b.WriteString("# Component catalog\n\n")
	fmt.Fprintf(&b, "%d components from %d files.\n\n", len(records), stats.FilesParsed)

	kinds := make(map[model.ComponentKind]int)
	patterns := make(map[string]int)
	byFile := make(map[string][]string)
	for _, rec := range records {
		kinds[rec.Kind]++
		for _, p := range rec.Patterns {
			patterns[p]++
		}
		byFile[rec.FilePath] = append(byFile[rec.FilePath], rec.Name)
	}

	b.WriteString("## By kind\n\n")
	for _, kind := range []model.ComponentKind{model.KindFunction, model.KindArrow, model.KindClass} {
		if kinds[kind] > 0 {
			fmt.Fprintf(&b, "- %s: %d\n", kind, kinds[kind])
		}
	}

	if len(patterns) > 0 {
		b.WriteString("\n## Patterns\n\n")
		names := make([]string, 0, len(patterns))
		for p := range patterns {
			names = append(names, p)
		}
		sort.Strings(names)
		for _, p := range names {
			fmt.Fprintf(&b, "- %s: %d\n", p, patterns[p])
		}
	}

	b.WriteString("\n## Files\n\n")
	paths := make([]string, 0, len(byFile))
	for p := range byFile {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		names := byFile[p]
		sort.Strings(names)
		fmt.Fprintf(&b, "- **%s**: %s\n", p, strings.Join(names, ", "))
	}

	return os.WriteFile(path, []byte(b.String()), 0o644)
}
