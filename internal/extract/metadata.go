package extract

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"

	"prism/internal/model"
)

// buildRecord attaches derived metadata to a candidate and produces
// the final immutable record.
func buildRecord(relPath string, c candidate, imports, exports []string, src []byte) model.ComponentRecord {
	bodyText := c.body.Content(src)
	hooks := collectHooks(c.body, src)

	rec := model.ComponentRecord{
		ID:          model.RecordID(relPath, c.name),
		FilePath:    relPath,
		Name:        c.name,
		Kind:        c.kind,
		Props:       collectProps(c.params, src),
		Hooks:       hooks,
		Uses:        collectUses(c.body, src),
		Imports:     imports,
		Exports:     exports,
		Patterns:    inferPatterns(hooks, bodyText),
		CodeSnippet: capSnippet(c.decl.Content(src)),
	}
	if c.class != nil {
		rec.HasErrorBoundary = findMethod(c.class, "componentDidCatch", src) != nil ||
			findMethod(c.class, "getDerivedStateFromError", src) != nil
	}
	rec.Summary = rec.BuildSummary()
	return rec
}

// collectProps reads prop names from the top-level parameter shape: a
// plain identifier binding, or the keys of a single-level destructured
// object. Nested destructuring is not resolved.
func collectProps(params *sitter.Node, src []byte) []string {
	if params == nil {
		return nil
	}
	set := make(map[string]bool)

	if params.Type() == "identifier" {
		set[params.Content(src)] = true
		return sortedSet(set)
	}

	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		// TypeScript wraps each parameter; unwrap to the pattern.
		if p.Type() == "required_parameter" || p.Type() == "optional_parameter" {
			if inner := p.ChildByFieldName("pattern"); inner != nil {
				p = inner
			}
		}
		switch p.Type() {
		case "identifier":
			set[p.Content(src)] = true
		case "object_pattern":
			for j := 0; j < int(p.NamedChildCount()); j++ {
				entry := p.NamedChild(j)
				switch entry.Type() {
				case "shorthand_property_identifier_pattern":
					set[entry.Content(src)] = true
				case "pair_pattern":
					if key := entry.ChildByFieldName("key"); key != nil {
						set[key.Content(src)] = true
					}
				case "object_assignment_pattern":
					if left := entry.ChildByFieldName("left"); left != nil {
						set[left.Content(src)] = true
					}
				case "rest_pattern":
					set[strings.TrimPrefix(entry.Content(src), "...")] = true
				}
			}
		}
	}
	return sortedSet(set)
}

// collectHooks scans call expressions whose callee is a bare
// identifier matching the use-prefixed pattern.
func collectHooks(body *sitter.Node, src []byte) []string {
	set := make(map[string]bool)
	walk(body, func(n *sitter.Node) {
		if n.Type() != "call_expression" {
			return
		}
		fn := n.ChildByFieldName("function")
		if fn == nil || fn.Type() != "identifier" {
			return
		}
		if name := fn.Content(src); isHookName(name) {
			set[name] = true
		}
	})
	return sortedSet(set)
}

// isHookName matches the use-prefixed, capitalized-next-letter
// lexical pattern (useState, useFetch).
func isHookName(name string) bool {
	return len(name) > 3 && strings.HasPrefix(name, "use") && unicode.IsUpper(rune(name[3]))
}

// collectUses gathers the tag names of all opening elements in the
// subtree.
func collectUses(body *sitter.Node, src []byte) []string {
	set := make(map[string]bool)
	walk(body, func(n *sitter.Node) {
		switch n.Type() {
		case "jsx_opening_element", "jsx_self_closing_element":
			if nm := n.ChildByFieldName("name"); nm != nil {
				set[nm.Content(src)] = true
			}
		}
	})
	return sortedSet(set)
}

// fileImports collects module specifiers from import statements.
// Attached to every record in the file.
func fileImports(root *sitter.Node, src []byte) []string {
	set := make(map[string]bool)
	walk(root, func(n *sitter.Node) {
		if n.Type() != "import_statement" {
			return
		}
		if source := n.ChildByFieldName("source"); source != nil {
			if spec := strings.Trim(source.Content(src), "\"'`"); spec != "" {
				set[spec] = true
			}
		}
	})
	return sortedSet(set)
}

// fileExports collects the names exported by the file, best-effort:
// exported declarations and export-clause specifiers.
func fileExports(root *sitter.Node, src []byte) []string {
	set := make(map[string]bool)
	walk(root, func(n *sitter.Node) {
		switch n.Type() {
		case "export_statement":
			if decl := n.ChildByFieldName("declaration"); decl != nil {
				collectDeclNames(decl, src, set)
			}
			if value := n.ChildByFieldName("value"); value != nil && value.Type() == "identifier" {
				set[value.Content(src)] = true
			}
		case "export_specifier":
			if nm := n.ChildByFieldName("name"); nm != nil {
				set[nm.Content(src)] = true
			}
		}
	})
	return sortedSet(set)
}

func collectDeclNames(decl *sitter.Node, src []byte, set map[string]bool) {
	switch decl.Type() {
	case "function_declaration", "class_declaration":
		if nm := decl.ChildByFieldName("name"); nm != nil {
			set[nm.Content(src)] = true
		}
	case "lexical_declaration", "variable_declaration":
		for i := 0; i < int(decl.NamedChildCount()); i++ {
			d := decl.NamedChild(i)
			if d.Type() != "variable_declarator" {
				continue
			}
			if nm := d.ChildByFieldName("name"); nm != nil && nm.Type() == "identifier" {
				set[nm.Content(src)] = true
			}
		}
	}
}

var (
	cleanupRe  = regexp.MustCompile(`return\s+(\(\s*\)\s*=>|function\b)`)
	loadingRe  = regexp.MustCompile(`(?i)\b(is)?loading\b|<Spinner\b|<Skeleton\b`)
	errStateRe = regexp.MustCompile(`(?i)\b(is)?error\b|<ErrorMessage\b`)
	networkRe  = regexp.MustCompile(`\bfetch\s*\(|\baxios\s*[.(]|\bXMLHttpRequest\b`)
)

// inferPatterns applies the rule-based heuristics over the candidate
// body. Best-effort, not exhaustive.
func inferPatterns(hooks []string, bodyText string) []string {
	set := make(map[string]bool)

	effectful := false
	for _, h := range hooks {
		if h == "useEffect" || h == "useLayoutEffect" {
			effectful = true
		}
	}
	if effectful && cleanupRe.MatchString(bodyText) {
		set["effect-cleanup"] = true
	}
	if loadingRe.MatchString(bodyText) {
		set["loading-state"] = true
	}
	if errStateRe.MatchString(bodyText) {
		set["error-state"] = true
	}
	if networkRe.MatchString(bodyText) {
		set["network-io"] = true
	}
	return sortedSet(set)
}

// capSnippet bounds the stored source excerpt at extraction time.
func capSnippet(code string) string {
	lines := strings.Split(code, "\n")
	if len(lines) > model.SnippetMaxLines {
		code = strings.Join(lines[:model.SnippetMaxLines], "\n")
	}
	if len(code) > model.SnippetMaxChars {
		code = code[:model.SnippetMaxChars]
	}
	return code
}

func sortedSet(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
