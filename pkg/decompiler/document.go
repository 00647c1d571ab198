package decompiler

import (
	"fmt"
	"slices"

	"github.com/chazu/opeo/pkg/treeir"
)

// Document decompiles every method body of doc. The input is left
// untouched; the result is a modified copy. Passthrough nodes such as
// frames are dropped from decompiled bodies.
func (d *Decompiler) Document(doc *treeir.Document) (*treeir.Document, error) {
	out := doc.Clone()
	for _, method := range treeir.Methods(out) {
		body := treeir.Body(method)
		if body == nil {
			continue
		}
		instructions, err := treeir.Instructions(d.instructionNodes(body.Children))
		if err != nil {
			return nil, fmt.Errorf("decompiler: method %s: %w", method.Name, err)
		}
		root, err := d.Decompile(instructions)
		if err != nil {
			return nil, fmt.Errorf("decompiler: method %s: %w", method.Name, err)
		}
		body.Children = root.ToXmir().Children
	}
	return out, nil
}

// instructionNodes filters out the passthrough nodes of a body.
func (d *Decompiler) instructionNodes(body []*treeir.Node) []*treeir.Node {
	skip := d.opts.passthrough()
	out := make([]*treeir.Node, 0, len(body))
	for _, n := range body {
		if !slices.Contains(skip, n.Base) {
			out = append(out, n)
		}
	}
	return out
}
