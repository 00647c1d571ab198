package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/chazu/opeo/internal/config"
	"github.com/chazu/opeo/internal/selective"
	"github.com/chazu/opeo/internal/storage"
	"github.com/chazu/opeo/pkg/compiler"
	"github.com/chazu/opeo/pkg/decompiler"
)

// errUsage is returned after a command has printed its usage.
var errUsage = errors.New("invalid arguments")

// handleDecompileCommand processes the `opeo decompile` subcommand.
// Usage:
//
//	opeo decompile -in classes -out decompiled
//	opeo decompile -in classes -out decompiled -modified changed
func handleDecompileCommand(args []string, cfg *config.Config, verbose bool) error {
	fs := flag.NewFlagSet("decompile", flag.ExitOnError)
	in := fs.String("in", "", "Input directory of tree-IR documents")
	out := fs.String("out", "", "Output directory")
	modifiedDir := fs.String("modified", "", "Directory receiving only the decompiled documents")
	fs.Parse(args)
	if err := requireDirs(fs, *in, *out); err != nil {
		return err
	}

	supported, err := selective.SupportedFrom(cfg.Batch.Supported)
	if err != nil {
		return fmt.Errorf("in [batch] supported: %w", err)
	}
	report, err := openReport(cfg)
	if err != nil {
		return err
	}
	defer report.Close()

	d := &selective.Decompiler{
		Storage:   &storage.FileStorage{Input: *in, Output: *out, Extension: cfg.Batch.Extension},
		Supported: supported,
		Options: decompiler.Options{
			Counting:    cfg.Decompiler.Counting,
			Passthrough: cfg.Compiler.Passthrough,
		},
		Workers: cfg.WorkerCount(),
		Report:  report,
	}
	if *modifiedDir != "" {
		d.Modified = &storage.FileStorage{Output: *modifiedDir, Extension: cfg.Batch.Extension}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	stats, err := d.Decompile(ctx)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Printf("Decompiled %s\n", stats)
	}
	return nil
}

// handleCompileCommand processes the `opeo compile` subcommand.
// Usage:
//
//	opeo compile -in decompiled -out classes
//	opeo compile -in decompiled -out classes -binary
func handleCompileCommand(args []string, cfg *config.Config, verbose bool) error {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	in := fs.String("in", "", "Input directory of tree-IR documents")
	out := fs.String("out", "", "Output directory")
	binary := fs.Bool("binary", false, "Also write a CBOR bundle next to every document")
	fs.Parse(args)
	if err := requireDirs(fs, *in, *out); err != nil {
		return err
	}

	report, err := openReport(cfg)
	if err != nil {
		return err
	}
	defer report.Close()

	files := &storage.FileStorage{Input: *in, Output: *out, Extension: cfg.Batch.Extension}
	c := &selective.Compiler{
		Storage: files,
		Options: compiler.Options{Passthrough: cfg.Compiler.Passthrough},
		Workers: cfg.WorkerCount(),
		Report:  report,
	}
	if *binary {
		c.Binary = files
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	stats, err := c.Compile(ctx)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Printf("Compiled %s\n", stats)
	}
	return nil
}

func requireDirs(fs *flag.FlagSet, in, out string) error {
	if in == "" || out == "" {
		fmt.Fprintf(os.Stderr, "%s requires -in and -out\n", fs.Name())
		fs.Usage()
		return errUsage
	}
	return nil
}

// openReport opens the configured outcome report. Without one it returns
// a nil report, which records nothing.
func openReport(cfg *config.Config) (*storage.Report, error) {
	if cfg.Batch.Report == "" {
		return nil, nil
	}
	return storage.OpenReport(cfg.Batch.Report)
}
