package treeir

import "github.com/chazu/opeo/pkg/jvm"

// Bases of the structural nodes that surround method bodies.
const (
	BaseMethod     = "method"
	BaseSeq        = "seq"
	BaseOpcode     = "opcode"
	BaseLabel      = "label"
	BaseTuple      = "tuple"
	TryCatchBlocks = "trycatchblocks"
)

// Methods returns every method node of the document in document order.
func Methods(doc *Document) []*Node {
	var methods []*Node
	for _, n := range doc.Nodes {
		Walk(n, func(c *Node) bool {
			if c.Base == BaseMethod {
				methods = append(methods, c)
				return false
			}
			return true
		})
	}
	return methods
}

// Body returns the instruction sequence of a method, or nil when the
// method is abstract.
func Body(method *Node) *Node {
	return method.Find(BaseSeq)
}

// TryCatches returns the exception table entries of a method.
func TryCatches(method *Node) []*Node {
	for _, c := range method.Children {
		if c.Base == TryCatchBlocks || (c.Base == BaseTuple && c.Name == TryCatchBlocks) {
			return c.Children
		}
	}
	return nil
}

// OpcodeNames returns the simplified names of the opcode nodes in body,
// in order of appearance. Counter suffixes are stripped.
func OpcodeNames(body *Node) []string {
	if body == nil {
		return nil
	}
	var names []string
	for _, c := range body.Children {
		if c.Base == BaseOpcode {
			names = append(names, jvm.SimplifiedName(c.Name))
		}
	}
	return names
}
