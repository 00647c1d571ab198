// Package config handles opeo.toml project configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
	"github.com/chazu/opeo/pkg/ast"
)

// FileName is the configuration file looked up by Load and FindAndLoad.
const FileName = "opeo.toml"

// Config represents an opeo.toml configuration.
type Config struct {
	Decompiler Decompiler `toml:"decompiler"`
	Compiler   Compiler   `toml:"compiler"`
	Batch      Batch      `toml:"batch"`

	// Dir is the directory containing the opeo.toml file (set at load time).
	Dir string `toml:"-"`
}

// Decompiler configures the decompiler.
type Decompiler struct {
	Counting bool `toml:"counting"`
}

// Compiler configures the compiler.
type Compiler struct {
	Passthrough []string `toml:"passthrough"`
}

// Batch configures the directory drivers.
type Batch struct {
	Extension string   `toml:"extension"`
	Workers   int      `toml:"workers"`
	Supported []string `toml:"supported"`
	Report    string   `toml:"report"`
}

// Default returns the configuration used when no opeo.toml exists.
func Default() *Config {
	c := &Config{}
	c.Decompiler.Counting = true
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Compiler.Passthrough == nil {
		c.Compiler.Passthrough = append([]string(nil), ast.DefaultPassthrough...)
	}
	if c.Batch.Extension == "" {
		c.Batch.Extension = ".xmir"
	}
	if c.Batch.Workers < 0 {
		c.Batch.Workers = 0
	}
}

// Load parses an opeo.toml file from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if !md.IsDefined("decompiler", "counting") {
		c.Decompiler.Counting = true
	}
	c.applyDefaults()
	if c.Batch.Report != "" && !filepath.IsAbs(c.Batch.Report) {
		c.Batch.Report = filepath.Join(c.Dir, c.Batch.Report)
	}

	return &c, nil
}

// FindAndLoad walks up from startDir to find an opeo.toml file,
// then loads and returns the config. Returns nil if none is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// WorkerCount returns the number of parallel workers for the batch drivers.
func (c *Config) WorkerCount() int {
	if c.Batch.Workers > 0 {
		return c.Batch.Workers
	}
	return runtime.GOMAXPROCS(0)
}
