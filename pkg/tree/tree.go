// Package tree holds the ordered, labeled trees that tables are compared as.
package tree

import (
	"strings"

	"github.com/dtnitsch/teds-eval/pkg/ted"
)

// Node is one labeled node of an ordered tree. The label is fixed at
// construction; children are appended while a tree is being built.
type Node struct {
	label    string
	children []*Node
}

// NewNode creates a childless node.
func NewNode(label string) *Node {
	return &Node{label: label}
}

// Label returns the node label.
func (n *Node) Label() string { return n.label }

// Children returns the child nodes in document order.
func (n *Node) Children() []*Node { return n.children }

// AddChild appends c and returns n so calls can be chained in tests.
func (n *Node) AddChild(c *Node) *Node {
	n.children = append(n.children, c)
	return n
}

// ChildCount and Child let *Node be used directly by the edit distance code.
func (n *Node) ChildCount() int { return len(n.children) }

func (n *Node) Child(i int) ted.Node { return n.children[i] }

// Size counts the nodes in the subtree rooted at n.
func (n *Node) Size() int {
	if n == nil {
		return 0
	}
	size := 1
	for _, c := range n.children {
		size += c.Size()
	}
	return size
}

// Tree is a rooted tree. A Tree without a root is the empty tree, which is
// a legitimate value distinct from a build that failed (a nil *Tree).
type Tree struct {
	Root *Node
}

// New wraps root in a Tree.
func New(root *Node) *Tree {
	return &Tree{Root: root}
}

// Empty reports whether the tree has no nodes.
func (t *Tree) Empty() bool {
	return t == nil || t.Root == nil
}

// Size returns the number of nodes.
func (t *Tree) Size() int {
	if t.Empty() {
		return 0
	}
	return t.Root.Size()
}

// TEDNode returns the root as an edit distance node, or nil for the empty tree.
func (t *Tree) TEDNode() ted.Node {
	if t.Empty() {
		return nil
	}
	return t.Root
}

// Walk visits nodes in pre-order. Returning false from fn skips the node's children.
func (t *Tree) Walk(fn func(n *Node, depth int) bool) {
	if t.Empty() {
		return
	}
	walk(t.Root, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int) bool) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.children {
		walk(c, depth+1, fn)
	}
}

// String renders the tree as an indented outline, one node per line.
func (t *Tree) String() string {
	if t.Empty() {
		return "(empty)"
	}
	var sb strings.Builder
	t.Walk(func(n *Node, depth int) bool {
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(n.label)
		sb.WriteString("\n")
		return true
	})
	return strings.TrimSuffix(sb.String(), "\n")
}
