package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/opeo/internal/config"
	"github.com/chazu/opeo/internal/selective"
	"github.com/chazu/opeo/pkg/compiler"
	"github.com/chazu/opeo/pkg/jvm"
	"github.com/chazu/opeo/pkg/treeir"
	"github.com/chazu/opeo/pkg/wire"
)

// handleOpcodesCommand lists the opcodes the decompiler recognizes,
// including the extra names from [batch] supported.
func handleOpcodesCommand(cfg *config.Config) error {
	supported, err := selective.SupportedFrom(cfg.Batch.Supported)
	if err != nil {
		return err
	}
	for _, name := range supported.Names() {
		fmt.Println(name)
	}
	fmt.Printf("; %d of %d opcodes\n", supported.Len(), jvm.OpcodeCount())
	return nil
}

// handleDisasmCommand prints every method of a tree-IR document or of a
// CBOR bundle as an instruction listing.
func handleDisasmCommand(args []string, cfg *config.Config) error {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: opeo disasm FILE")
		return errUsage
	}
	listing, err := disassemble(args[0], compiler.Options{Passthrough: cfg.Compiler.Passthrough})
	if err != nil {
		return err
	}
	fmt.Print(listing)
	return nil
}

func disassemble(path string, opts compiler.Options) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if filepath.Ext(path) == selective.BinaryExtension {
		bundle, err := wire.UnmarshalBundle(data)
		if err != nil {
			return "", err
		}
		for _, m := range bundle.Methods {
			instructions, err := m.Decode()
			if err != nil {
				return "", err
			}
			sb.WriteString(jvm.DisassembleWithName(bundle.Class+"."+m.Name, instructions))
		}
		return sb.String(), nil
	}

	doc, err := treeir.ParseBytes(data)
	if err != nil {
		return "", err
	}
	for _, method := range treeir.Methods(doc) {
		body := treeir.Body(method)
		if body == nil {
			continue
		}
		instructions, err := compiler.Instructions(body.Children, opts)
		if err != nil {
			return "", fmt.Errorf("method %s: %w", method.Name, err)
		}
		sb.WriteString(jvm.DisassembleWithName(doc.Name+"."+method.Name, instructions))
	}
	return sb.String(), nil
}
