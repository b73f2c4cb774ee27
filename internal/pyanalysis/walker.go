//go:build cgo

package pyanalysis

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Leaf node types counted as Halstead operands.
var operandTypes = map[string]struct{}{
	"identifier": {},
	"integer":    {},
	"float":      {},
	"true":       {},
	"false":      {},
	"none":       {},
	"ellipsis":   {},
}

// Closing delimiters are not counted; the opening token stands for the pair.
var ignoredOperators = map[string]struct{}{
	")": {},
	"]": {},
	"}": {},
}

// Node types that open a new complexity unit.
var unitTypes = map[string]struct{}{
	"function_definition": {},
	"lambda":              {},
}

// Node types that add one independent path.
var decisionTypes = map[string]struct{}{
	"if_statement":           {},
	"elif_clause":            {},
	"for_statement":          {},
	"while_statement":        {},
	"except_clause":          {},
	"with_statement":         {},
	"boolean_operator":       {}, // and, or
	"conditional_expression": {},
	"for_in_clause":          {}, // comprehensions
	"if_clause":              {},
	"case_clause":            {},
	"assert_statement":       {},
}

// walker classifies every line and token of one syntax tree.
type walker struct {
	source      []byte
	counts      *counts
	codeRows    map[uint32]struct{}
	commentRows map[uint32]struct{}
}

func (w *walker) text(n *sitter.Node) string {
	return string(w.source[n.StartByte():n.EndByte()])
}

func markRows(rows map[uint32]struct{}, n *sitter.Node) {
	for r := n.StartPoint().Row; r <= n.EndPoint().Row; r++ {
		rows[r] = struct{}{}
	}
}

func (w *walker) visit(n *sitter.Node) {
	switch {
	case n.Type() == "comment":
		markRows(w.commentRows, n)
		return
	case isDocstring(n):
		markRows(w.commentRows, n)
		return
	case n.Type() == "string" || n.Type() == "concatenated_string":
		markRows(w.codeRows, n)
		w.counts.operands[w.text(n)]++
		w.visitInterpolations(n)
		return
	}

	if n.ChildCount() == 0 {
		w.visitLeaf(n)
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if child := n.Child(i); child != nil {
			w.visit(child)
		}
	}
}

// visitInterpolations counts the expressions inside f-string replacement fields.
// Conversions and format specs are not code.
func (w *walker) visitInterpolations(n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "string":
			w.visitInterpolations(child)
		case "interpolation":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				expr := child.NamedChild(j)
				if expr == nil || expr.Type() == "type_conversion" || expr.Type() == "format_specifier" {
					continue
				}
				w.visit(expr)
			}
		}
	}
}

func (w *walker) visitLeaf(n *sitter.Node) {
	if n.StartByte() == n.EndByte() {
		return
	}
	typ := n.Type()
	if _, ok := operandTypes[typ]; ok {
		markRows(w.codeRows, n)
		w.counts.operands[w.text(n)]++
		return
	}
	if n.IsNamed() {
		// line_continuation and similar trivia
		return
	}
	markRows(w.codeRows, n)
	if _, ok := ignoredOperators[typ]; !ok {
		w.counts.operators[typ]++
	}
}

// isDocstring reports whether n is a statement consisting of a lone string literal.
func isDocstring(n *sitter.Node) bool {
	if n.Type() != "expression_statement" || n.NamedChildCount() != 1 {
		return false
	}
	child := n.NamedChild(0)
	return child != nil && (child.Type() == "string" || child.Type() == "concatenated_string")
}

// cyclomatic returns the summed complexity of the module body and every function
// and lambda inside it. Each unit starts at 1; nested units are counted on their own.
func cyclomatic(root *sitter.Node) int {
	total := 0
	pending := []*sitter.Node{root}
	for len(pending) > 0 {
		unit := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		complexity := 1
		var walk func(n *sitter.Node)
		walk = func(n *sitter.Node) {
			for i := 0; i < int(n.NamedChildCount()); i++ {
				child := n.NamedChild(i)
				if child == nil {
					continue
				}
				if _, ok := unitTypes[child.Type()]; ok {
					pending = append(pending, child)
					continue
				}
				if _, ok := decisionTypes[child.Type()]; ok {
					complexity++
				}
				walk(child)
			}
		}
		walk(unit)
		total += complexity
	}
	return total
}
