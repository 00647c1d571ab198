package selective

import (
	"context"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/chazu/opeo/internal/storage"
	"github.com/chazu/opeo/pkg/compiler"
	"github.com/chazu/opeo/pkg/wire"
)

// BinaryExtension replaces the document extension of CBOR bundles.
const BinaryExtension = ".cbor"

// BinarySink receives encoded bundles.
type BinarySink interface {
	WriteFile(rel string, data []byte) error
}

// Compiler compiles every document of Storage back to opcode nodes. When
// Binary is set it also receives a CBOR bundle per document.
type Compiler struct {
	Storage storage.Storage
	Options compiler.Options
	Binary  BinarySink
	Workers int
	Report  *storage.Report
}

// Compile processes all entries in parallel. The first compilation error
// stops the run.
func (c *Compiler) Compile(ctx context.Context) (Stats, error) {
	entries, err := c.Storage.All(ctx)
	if err != nil {
		return Stats{}, err
	}

	var n counters
	g, ctx := errgroup.WithContext(ctx)
	if c.Workers > 0 {
		g.SetLimit(c.Workers)
	}
	for _, entry := range entries {
		entry := entry
		g.Go(func() error {
			if err := c.compileEntry(ctx, entry); err != nil {
				n.failed.Add(1)
				log.Errorf("compiling %s: %s", entry.Relative, err)
				if rerr := c.Report.Record(ctx, entry.Relative, storage.StatusFailed, err.Error()); rerr != nil {
					return rerr
				}
				return err
			}
			n.processed.Add(1)
			return c.Report.Record(ctx, entry.Relative, storage.StatusCompiled, "")
		})
	}
	err = g.Wait()
	return n.stats(), err
}

func (c *Compiler) compileEntry(ctx context.Context, entry storage.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc, err := compiler.Document(entry.Doc, c.Options)
	if err != nil {
		return err
	}
	if c.Binary != nil {
		bundle, err := compiler.Bundle(entry.Doc, c.Options)
		if err != nil {
			return err
		}
		data, err := wire.MarshalBundle(bundle)
		if err != nil {
			return err
		}
		rel := strings.TrimSuffix(entry.Relative, filepath.Ext(entry.Relative)) + BinaryExtension
		if err := c.Binary.WriteFile(rel, data); err != nil {
			return err
		}
	}
	log.Debugf("compiled %s", entry.Relative)
	return c.Storage.Save(storage.Entry{Relative: entry.Relative, Doc: doc})
}
