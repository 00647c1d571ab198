package treeir

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// xmlNode is the on-disk shape of a Node. Attribute values are escaped so
// that control characters and invalid UTF-8 survive encoding/xml, which
// would otherwise replace them with U+FFFD.
type xmlNode struct {
	Base     string  `xml:"base,attr,omitempty"`
	Scope    string  `xml:"scope,attr,omitempty"`
	Name     string  `xml:"name,attr,omitempty"`
	Data     string  `xml:"data,attr,omitempty"`
	Children []*Node `xml:"o"`
}

func (n *Node) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	return e.EncodeElement(xmlNode{
		Base:     escape(n.Base),
		Scope:    escape(n.Scope),
		Name:     escape(n.Name),
		Data:     escape(n.Data),
		Children: n.Children,
	}, start)
}

func (n *Node) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var x xmlNode
	if err := d.DecodeElement(&x, &start); err != nil {
		return err
	}
	fields := []struct {
		dst *string
		src string
	}{
		{&n.Base, x.Base},
		{&n.Scope, x.Scope},
		{&n.Name, x.Name},
		{&n.Data, x.Data},
	}
	for _, f := range fields {
		v, err := unescape(f.src)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	n.Children = x.Children
	return nil
}

// xmlChar reports whether r may appear in an XML 1.0 document.
func xmlChar(r rune) bool {
	switch {
	case r == '\t', r == '\n', r == '\r':
		return true
	case r < 0x20:
		return false
	case r >= 0xD800 && r <= 0xDFFF, r == 0xFFFE, r == 0xFFFF:
		return false
	}
	return r <= utf8.MaxRune
}

// escape writes a backslash as \\, stray bytes as \xNN and characters
// outside XML as \xNN or \uNNNN.
func escape(s string) string {
	if !needsEscape(s) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			fmt.Fprintf(&sb, `\x%02x`, s[i])
		case r == '\\':
			sb.WriteString(`\\`)
		case !xmlChar(r) && r < 0x80:
			fmt.Fprintf(&sb, `\x%02x`, r)
		case !xmlChar(r):
			fmt.Fprintf(&sb, `\u%04x`, r)
		default:
			sb.WriteString(s[i : i+size])
		}
		i += size
	}
	return sb.String()
}

func needsEscape(s string) bool {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if (r == utf8.RuneError && size == 1) || r == '\\' || !xmlChar(r) {
			return true
		}
		i += size
	}
	return false
}

func unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			sb.WriteByte(s[i])
			continue
		}
		if i+1 >= len(s) {
			return "", fmt.Errorf("treeir: dangling backslash in %q", s)
		}
		switch s[i+1] {
		case '\\':
			sb.WriteByte('\\')
			i++
		case 'x':
			if i+4 > len(s) {
				return "", fmt.Errorf("treeir: short escape in %q", s)
			}
			b, err := strconv.ParseUint(s[i+2:i+4], 16, 8)
			if err != nil {
				return "", fmt.Errorf("treeir: bad escape in %q: %w", s, err)
			}
			sb.WriteByte(byte(b))
			i += 3
		case 'u':
			if i+6 > len(s) {
				return "", fmt.Errorf("treeir: short escape in %q", s)
			}
			r, err := strconv.ParseUint(s[i+2:i+6], 16, 32)
			if err != nil {
				return "", fmt.Errorf("treeir: bad escape in %q: %w", s, err)
			}
			sb.WriteRune(rune(r))
			i += 5
		default:
			return "", fmt.Errorf("treeir: unknown escape \\%c in %q", s[i+1], s)
		}
	}
	return sb.String(), nil
}
