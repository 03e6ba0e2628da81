package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"

	"prism/internal/model"
)

// Extensions returns the file extensions (without dot) the extractor
// can parse.
func Extensions() map[string]bool {
	return map[string]bool{
		"js": true, "jsx": true, "mjs": true, "cjs": true,
		"ts": true, "tsx": true,
	}
}

// languageFor picks the grammar by extension. The TSX grammar is a
// superset of TypeScript, so it covers plain .ts files too.
func languageFor(path string) *sitter.Language {
	switch strings.TrimPrefix(filepath.Ext(path), ".") {
	case "js", "jsx", "mjs", "cjs":
		return javascript.GetLanguage()
	case "ts", "tsx":
		return tsx.GetLanguage()
	}
	return nil
}

// candidate is a declaration that passed a recognition rule, before
// derived metadata is attached.
type candidate struct {
	name string
	kind model.ComponentKind
	// decl is the full declaration, used for the code snippet.
	decl *sitter.Node
	// body is the subtree scanned for hooks, markup tags, and patterns.
	// For classes this is the render method.
	body *sitter.Node
	// params holds the parameter list node, nil for classes.
	params *sitter.Node
	// class is set for class-kind candidates so the error-boundary
	// check can inspect the whole class, not just render.
	class *sitter.Node
}

// rule recognizes one declaration shape. Rules run as separate passes
// in precedence order (function declarations, then variable
// initializers, then class declarations) and the first record seen for
// a name wins.
type rule interface {
	match(n *sitter.Node, src []byte) (candidate, bool)
}

var rules = []rule{functionRule{}, arrowRule{}, classRule{}}

// Extractor turns one source file into component records.
type Extractor struct{}

func New() *Extractor { return &Extractor{} }

// File parses src and returns the component records recognized in it.
// A file whose syntax tree cannot be built returns an error; the
// caller treats that as a local skip, not a fatal condition.
func (e *Extractor) File(relPath string, src []byte) ([]model.ComponentRecord, error) {
	lang := languageFor(relPath)
	if lang == nil {
		return nil, nil
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", relPath, err)
	}
	defer tree.Close()
	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("parse %s: empty tree", relPath)
	}

	imports := fileImports(root, src)
	exports := fileExports(root, src)

	var cands []candidate
	seen := make(map[string]bool)
	for _, r := range rules {
		walk(root, func(n *sitter.Node) {
			c, ok := r.match(n, src)
			if !ok || seen[c.name] {
				return
			}
			seen[c.name] = true
			cands = append(cands, c)
		})
	}

	records := make([]model.ComponentRecord, 0, len(cands))
	for _, c := range cands {
		records = append(records, buildRecord(relPath, c, imports, exports, src))
	}
	return records, nil
}

// functionRule matches a named function declaration with a capitalized
// identifier whose body contains markup.
type functionRule struct{}

func (functionRule) match(n *sitter.Node, src []byte) (candidate, bool) {
	if n.Type() != "function_declaration" {
		return candidate{}, false
	}
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return candidate{}, false
	}
	name := nameNode.Content(src)
	if !isComponentName(name) || !containsMarkup(n) {
		return candidate{}, false
	}
	return candidate{
		name:   name,
		kind:   model.KindFunction,
		decl:   n,
		body:   n,
		params: n.ChildByFieldName("parameters"),
	}, true
}

// arrowRule matches a capitalized variable bound to an arrow function
// or anonymous function expression containing markup.
type arrowRule struct{}

func (arrowRule) match(n *sitter.Node, src []byte) (candidate, bool) {
	if n.Type() != "variable_declarator" {
		return candidate{}, false
	}
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil || nameNode.Type() != "identifier" {
		return candidate{}, false
	}
	name := nameNode.Content(src)
	if !isComponentName(name) {
		return candidate{}, false
	}
	value := n.ChildByFieldName("value")
	if value == nil {
		return candidate{}, false
	}
	switch value.Type() {
	case "arrow_function", "function_expression", "function":
	default:
		return candidate{}, false
	}
	if !containsMarkup(value) {
		return candidate{}, false
	}

	// Snippet from the enclosing declaration so it reads "const X = ...".
	decl := n
	if p := n.Parent(); p != nil &&
		(p.Type() == "lexical_declaration" || p.Type() == "variable_declaration") {
		decl = p
	}

	params := value.ChildByFieldName("parameters")
	if params == nil {
		// Single bare parameter form: X = props => ...
		params = value.ChildByFieldName("parameter")
	}
	return candidate{
		name:   name,
		kind:   model.KindArrow,
		decl:   decl,
		body:   value,
		params: params,
	}, true
}

// classRule matches a capitalized class extending a component base
// whose render method contains markup.
type classRule struct{}

func (classRule) match(n *sitter.Node, src []byte) (candidate, bool) {
	if n.Type() != "class_declaration" {
		return candidate{}, false
	}
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return candidate{}, false
	}
	name := nameNode.Content(src)
	if !isComponentName(name) {
		return candidate{}, false
	}
	if !extendsComponentBase(n, src) {
		return candidate{}, false
	}
	render := findMethod(n, "render", src)
	if render == nil || !containsMarkup(render) {
		return candidate{}, false
	}
	return candidate{
		name:  name,
		kind:  model.KindClass,
		decl:  n,
		body:  render,
		class: n,
	}, true
}

// isComponentName requires a leading uppercase letter.
func isComponentName(name string) bool {
	if name == "" {
		return false
	}
	return unicode.IsUpper(rune(name[0]))
}

// containsMarkup reports whether the subtree holds a JSX element or
// fragment.
func containsMarkup(n *sitter.Node) bool {
	found := false
	walk(n, func(c *sitter.Node) {
		switch c.Type() {
		case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
			found = true
		}
	})
	return found
}

// extendsComponentBase checks the class heritage for a component
// base-class identifier, either bare (Component) or as the member of a
// namespace access (React.Component).
func extendsComponentBase(class *sitter.Node, src []byte) bool {
	var heritage *sitter.Node
	for i := 0; i < int(class.NamedChildCount()); i++ {
		if c := class.NamedChild(i); c.Type() == "class_heritage" {
			heritage = c
			break
		}
	}
	if heritage == nil {
		return false
	}
	found := false
	walk(heritage, func(n *sitter.Node) {
		if found {
			return
		}
		switch n.Type() {
		case "identifier":
			if isComponentBase(n.Content(src)) {
				found = true
			}
		case "member_expression", "nested_identifier":
			parts := strings.Split(n.Content(src), ".")
			if isComponentBase(parts[len(parts)-1]) {
				found = true
			}
		}
	})
	return found
}

func isComponentBase(name string) bool {
	return name == "Component" || name == "PureComponent"
}

// findMethod returns the method_definition named name anywhere in the
// class body, or nil.
func findMethod(class *sitter.Node, name string, src []byte) *sitter.Node {
	var method *sitter.Node
	walk(class, func(n *sitter.Node) {
		if method != nil || n.Type() != "method_definition" {
			return
		}
		if nm := n.ChildByFieldName("name"); nm != nil && nm.Content(src) == name {
			method = n
		}
	})
	return method
}

// walk applies fn to n and every named descendant in document order.
func walk(n *sitter.Node, fn func(*sitter.Node)) {
	fn(n)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		walk(n.NamedChild(i), fn)
	}
}
