package treeir

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Document is one translation unit: a named program holding classes,
// methods and their bodies as tree-IR nodes.
type Document struct {
	XMLName xml.Name `xml:"program"`
	Name    string   `xml:"name,attr,omitempty"`
	Nodes   []*Node  `xml:"o"`
}

// Parse decodes a document from r.
func Parse(r io.Reader) (*Document, error) {
	var doc Document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("treeir: parse: %w", err)
	}
	return &doc, nil
}

// ParseBytes decodes a document from data.
func ParseBytes(data []byte) (*Document, error) {
	return Parse(bytes.NewReader(data))
}

// ParseNode decodes a single <o> element, used for fragments in tests and
// on the command line.
func ParseNode(text string) (*Node, error) {
	var n Node
	if err := xml.NewDecoder(strings.NewReader(text)).Decode(&n); err != nil {
		return nil, fmt.Errorf("treeir: parse node: %w", err)
	}
	return &n, nil
}

// Marshal encodes the document as indented XML with a header.
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTo writes the document as indented XML.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(d); err != nil {
		return 0, fmt.Errorf("treeir: marshal %s: %w", d.Name, err)
	}
	buf.WriteByte('\n')
	return buf.WriteTo(w)
}

// MarshalNode encodes a single node without indentation.
func MarshalNode(n *Node) (string, error) {
	var sb strings.Builder
	enc := xml.NewEncoder(&sb)
	if err := enc.EncodeElement(n, xml.StartElement{Name: xml.Name{Local: "o"}}); err != nil {
		return "", fmt.Errorf("treeir: marshal node %s: %w", n.Base, err)
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	c := &Document{Name: d.Name, Nodes: make([]*Node, len(d.Nodes))}
	for i, n := range d.Nodes {
		c.Nodes[i] = n.Clone()
	}
	return c
}
