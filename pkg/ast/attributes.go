package ast

import (
	"fmt"
	"sort"
	"strings"
)

// Kind says what sort of member an Attributes set refers to.
type Kind string

const (
	KindUnspecified Kind = ""
	KindField       Kind = "field"
	KindStatic      Kind = "static"
	KindMethod      Kind = "method"
	KindInterface   Kind = "interface"
	KindDynamic     Kind = "dynamic"
	KindInstance    Kind = "instance"
	KindLocal       Kind = "local"
)

func (k Kind) valid() bool {
	switch k {
	case KindUnspecified, KindField, KindStatic, KindMethod, KindInterface,
		KindDynamic, KindInstance, KindLocal:
		return true
	}
	return false
}

// Attributes describe a member reference: its owner, name, descriptor and
// kind. The zero value is empty. Attributes are values; the With* methods
// return modified copies.
type Attributes struct {
	owner      string
	name       string
	descriptor string
	kind       Kind
}

// Member creates the attributes of a field or method reference.
func Member(kind Kind, owner, name, descriptor string) Attributes {
	return Attributes{owner: owner, name: name, descriptor: descriptor, kind: kind}
}

// ParseAttributes decodes "key=value|key=value". Recognized keys are owner,
// name, descriptor and type (the kind).
func ParseAttributes(text string) (Attributes, error) {
	var a Attributes
	if text == "" {
		return a, nil
	}
	for _, pair := range strings.Split(text, "|") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return Attributes{}, fmt.Errorf("ast: attributes %q: bad pair %q: %w", text, pair, ErrMalformed)
		}
		switch key {
		case "owner":
			a.owner = value
		case "name":
			a.name = value
		case "descriptor":
			a.descriptor = value
		case "type":
			k := Kind(value)
			if !k.valid() {
				return Attributes{}, fmt.Errorf("ast: attributes %q: unknown kind %q: %w", text, value, ErrMalformed)
			}
			a.kind = k
		default:
			return Attributes{}, fmt.Errorf("ast: attributes %q: unknown key %q: %w", text, key, ErrMalformed)
		}
	}
	return a, nil
}

func (a Attributes) Owner() string { return a.owner }
func (a Attributes) Name() string  { return a.name }
func (a Attributes) Kind() Kind    { return a.kind }

// Descriptor returns the member descriptor. Its absence is an error.
func (a Attributes) Descriptor() (string, error) {
	if a.descriptor == "" {
		return "", fmt.Errorf("ast: attributes %q have no descriptor: %w", a.String(), ErrMalformed)
	}
	return a.descriptor, nil
}

// HasDescriptor reports whether a descriptor is present.
func (a Attributes) HasDescriptor() bool { return a.descriptor != "" }

func (a Attributes) WithOwner(owner string) Attributes {
	a.owner = owner
	return a
}

func (a Attributes) WithName(name string) Attributes {
	a.name = name
	return a
}

func (a Attributes) WithDescriptor(descriptor string) Attributes {
	a.descriptor = descriptor
	return a
}

func (a Attributes) WithKind(kind Kind) Attributes {
	a.kind = kind
	return a
}

// String encodes the attributes with keys in sorted order.
func (a Attributes) String() string {
	pairs := make([]string, 0, 4)
	add := func(key, value string) {
		if value != "" {
			pairs = append(pairs, key+"="+value)
		}
	}
	add("descriptor", a.descriptor)
	add("name", a.name)
	add("owner", a.owner)
	add("type", string(a.kind))
	sort.Strings(pairs)
	return strings.Join(pairs, "|")
}

// operands returns the owner, name and descriptor as instruction operands.
func (a Attributes) operands() ([]any, error) {
	desc, err := a.Descriptor()
	if err != nil {
		return nil, err
	}
	return []any{a.owner, a.name, desc}, nil
}
