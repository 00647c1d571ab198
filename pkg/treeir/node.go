// Package treeir implements the generic tagged-tree format that decompiled
// method bodies are exchanged in.
//
// Every element is an <o> node with four optional attributes: base (the
// discriminator), scope (attributes), name and data (the payload). Values
// are kept in data so that string literals survive a round trip untouched;
// characters XML cannot carry are written as backslash escapes.
package treeir

import "strings"

// Node is one element of the tree IR.
type Node struct {
	Base     string
	Scope    string
	Name     string
	Data     string
	Children []*Node
}

// New creates a node with the given base and children.
func New(base string, children ...*Node) *Node {
	return &Node{Base: base, Children: children}
}

// WithScope sets the scope attribute and returns n.
func (n *Node) WithScope(scope string) *Node {
	n.Scope = scope
	return n
}

// WithName sets the name attribute and returns n.
func (n *Node) WithName(name string) *Node {
	n.Name = name
	return n
}

// WithData sets the data attribute and returns n.
func (n *Node) WithData(data string) *Node {
	n.Data = data
	return n
}

// Child returns the i-th child, or nil when out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// Find returns the first direct child with the given base.
func (n *Node) Find(base string) *Node {
	for _, c := range n.Children {
		if c.Base == base {
			return c
		}
	}
	return nil
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return &c
}

// Equal reports whether two trees are structurally identical.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.Base != o.Base || n.Scope != o.Scope || n.Name != o.Name || n.Data != o.Data {
		return false
	}
	if len(n.Children) != len(o.Children) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// String renders the node as a compact s-expression, handy in test output.
func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder) {
	if n == nil {
		sb.WriteString("nil")
		return
	}
	sb.WriteString("(")
	sb.WriteString(n.Base)
	if n.Name != "" {
		sb.WriteString(" name=")
		sb.WriteString(n.Name)
	}
	if n.Scope != "" {
		sb.WriteString(" scope=")
		sb.WriteString(n.Scope)
	}
	if n.Data != "" {
		sb.WriteString(" data=")
		sb.WriteString(n.Data)
	}
	for _, c := range n.Children {
		sb.WriteString(" ")
		c.write(sb)
	}
	sb.WriteString(")")
}

// Walk calls fn for n and every descendant in pre-order. Returning false
// from fn skips the node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}
