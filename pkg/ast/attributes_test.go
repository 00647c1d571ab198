package ast

import (
	"errors"
	"testing"
)

func TestParseAttributes(t *testing.T) {
	attrs, err := ParseAttributes("type=method|owner=java/io/PrintStream|name=printf|descriptor=(Ljava/lang/String;[Ljava/lang/Object;)Ljava/io/PrintStream;")
	if err != nil {
		t.Fatalf("ParseAttributes failed: %v", err)
	}
	if attrs.Owner() != "java/io/PrintStream" {
		t.Errorf("Owner() = %q, want %q", attrs.Owner(), "java/io/PrintStream")
	}
	if attrs.Name() != "printf" {
		t.Errorf("Name() = %q, want %q", attrs.Name(), "printf")
	}
	if attrs.Kind() != KindMethod {
		t.Errorf("Kind() = %q, want %q", attrs.Kind(), KindMethod)
	}
	want := "descriptor=(Ljava/lang/String;[Ljava/lang/Object;)Ljava/io/PrintStream;|name=printf|owner=java/io/PrintStream|type=method"
	if got := attrs.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestAttributesRoundTrip(t *testing.T) {
	tests := []Attributes{
		{},
		Member(KindField, "App", "a", "I"),
		Member(KindStatic, "java/lang/System", "out", "Ljava/io/PrintStream;"),
		Attributes{}.WithDescriptor("J").WithKind(KindLocal),
		Member(KindDynamic, "", "run", "()Ljava/lang/Runnable;"),
	}
	for _, a := range tests {
		back, err := ParseAttributes(a.String())
		if err != nil {
			t.Fatalf("ParseAttributes(%q) failed: %v", a.String(), err)
		}
		if back != a {
			t.Errorf("round trip of %q = %q", a.String(), back.String())
		}
	}
}

func TestParseAttributesErrors(t *testing.T) {
	tests := []string{
		"name",
		"=x",
		"color=red",
		"type=virtual",
		"name=a||descriptor=I",
	}
	for _, text := range tests {
		_, err := ParseAttributes(text)
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("ParseAttributes(%q) error = %v, want ErrMalformed", text, err)
		}
	}
}

func TestMissingDescriptor(t *testing.T) {
	attrs := Attributes{}.WithName("bar").WithKind(KindMethod)
	if attrs.HasDescriptor() {
		t.Error("HasDescriptor() = true, want false")
	}
	if _, err := attrs.Descriptor(); !errors.Is(err, ErrMalformed) {
		t.Errorf("Descriptor() error = %v, want ErrMalformed", err)
	}
	inv := &Invocation{Target: &This{}, Attrs: attrs}
	if _, err := inv.Opcodes(); !errors.Is(err, ErrMalformed) {
		t.Errorf("lowering without descriptor: error = %v, want ErrMalformed", err)
	}
}
