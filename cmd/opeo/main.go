// opeo CLI - decompiles tree-IR method bodies into expression trees and
// compiles them back
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"

	"github.com/chazu/opeo/internal/config"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose output")
	configDir := flag.String("config", "", "Directory containing opeo.toml (default: search upward from .)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: opeo [options] <command> [args]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  decompile -in DIR -out DIR [-modified DIR]   Decompile every eligible document\n")
		fmt.Fprintf(os.Stderr, "  compile -in DIR -out DIR [-binary]           Compile documents back to opcodes\n")
		fmt.Fprintf(os.Stderr, "  opcodes                                      List opcodes the decompiler understands\n")
		fmt.Fprintf(os.Stderr, "  disasm FILE                                  Print the instructions of a document or bundle\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	verbosity := 0
	if *verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	cfg, err := loadConfig(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := run(flag.Arg(0), flag.Args()[1:], cfg, *verbose); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// run dispatches a subcommand. Commands return their errors so that their
// deferred cleanup runs before the process exits.
func run(command string, args []string, cfg *config.Config, verbose bool) error {
	switch command {
	case "decompile":
		return handleDecompileCommand(args, cfg, verbose)
	case "compile":
		return handleCompileCommand(args, cfg, verbose)
	case "opcodes":
		return handleOpcodesCommand(cfg)
	case "disasm":
		return handleDisasmCommand(args, cfg)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		flag.Usage()
		return errUsage
	}
}

// loadConfig reads opeo.toml from dir, or searches upward from the working
// directory when dir is empty. Without a file the defaults apply.
func loadConfig(dir string) (*config.Config, error) {
	if dir != "" {
		return config.Load(dir)
	}
	cfg, err := config.FindAndLoad(".")
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return config.Default(), nil
	}
	return cfg, nil
}
