// Package selective runs the decompiler and compiler over directories of
// tree-IR documents. Documents the decompiler cannot fully handle are
// copied through unchanged.
package selective

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/chazu/opeo/internal/storage"
	"github.com/chazu/opeo/pkg/decompiler"
	"github.com/chazu/opeo/pkg/jvm"
	"github.com/chazu/opeo/pkg/treeir"
)

var log = commonlog.GetLogger("opeo.selective")

// Stats counts the outcomes of one run.
type Stats struct {
	Processed int
	Skipped   int
	Failed    int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d processed, %d skipped, %d failed", s.Processed, s.Skipped, s.Failed)
}

type counters struct {
	processed, skipped, failed atomic.Int64
}

func (c *counters) stats() Stats {
	return Stats{
		Processed: int(c.processed.Load()),
		Skipped:   int(c.skipped.Load()),
		Failed:    int(c.failed.Load()),
	}
}

// SupportedFrom extends the decompiler's supported opcodes with extra
// opcode names. Unknown names are an error.
func SupportedFrom(extra []string) (decompiler.Supported, error) {
	ops := make([]jvm.Opcode, 0, len(extra))
	for _, name := range extra {
		op, ok := jvm.OpcodeByName(name)
		if !ok {
			return decompiler.Supported{}, fmt.Errorf("unknown opcode %q", name)
		}
		ops = append(ops, op)
	}
	return decompiler.AllAgents().Supported().Merge(decompiler.NewSupported(ops...)), nil
}

// Decompiler decompiles every eligible document of Storage. A document is
// eligible when all its opcodes are supported and no method has
// exception handlers.
type Decompiler struct {
	Storage   storage.Storage
	Modified  storage.Storage
	Supported decompiler.Supported
	Options   decompiler.Options
	Workers   int
	Report    *storage.Report
}

// Decompile processes all entries in parallel and saves every one of them,
// decompiled or not, back to Storage.
func (d *Decompiler) Decompile(ctx context.Context) (Stats, error) {
	entries, err := d.Storage.All(ctx)
	if err != nil {
		return Stats{}, err
	}
	modified := d.Modified
	if modified == nil {
		modified = storage.Discard{}
	}
	supported := d.Supported
	if supported.Len() == 0 {
		supported = decompiler.AllAgents().Supported()
	}
	dec := decompiler.New(d.Options)

	var c counters
	g, ctx := errgroup.WithContext(ctx)
	if d.Workers > 0 {
		g.SetLimit(d.Workers)
	}
	for _, entry := range entries {
		entry := entry
		g.Go(func() error {
			res, status, reason := d.decompileEntry(dec, supported, entry)
			switch status {
			case storage.StatusDecompiled:
				c.processed.Add(1)
				if err := modified.Save(res); err != nil {
					return err
				}
			case storage.StatusSkipped:
				c.skipped.Add(1)
			default:
				c.failed.Add(1)
			}
			if err := d.Report.Record(ctx, entry.Relative, status, reason); err != nil {
				return err
			}
			return d.Storage.Save(res)
		})
	}
	err = g.Wait()
	return c.stats(), err
}

func (d *Decompiler) decompileEntry(dec *decompiler.Decompiler, supported decompiler.Supported, entry storage.Entry) (storage.Entry, storage.Status, string) {
	opcodes, trycatches := Unsupported(entry.Doc, supported)
	if len(opcodes) > 0 || trycatches > 0 {
		reason := fmt.Sprintf("unsupported opcodes: [%s], try-catch blocks: %d", strings.Join(opcodes, " "), trycatches)
		log.Infof("skipping %s: %s", entry.Relative, reason)
		return entry, storage.StatusSkipped, reason
	}
	doc, err := dec.Document(entry.Doc)
	if err != nil {
		log.Errorf("decompiling %s: %s", entry.Relative, err)
		return entry, storage.StatusFailed, err.Error()
	}
	log.Debugf("decompiled %s", entry.Relative)
	return storage.Entry{Relative: entry.Relative, Doc: doc}, storage.StatusDecompiled, ""
}

// Unsupported returns the sorted names of opcodes in doc outside supported
// and the number of exception handlers across all methods.
func Unsupported(doc *treeir.Document, supported decompiler.Supported) ([]string, int) {
	names := mapset.NewThreadUnsafeSet[string]()
	trycatches := 0
	for _, method := range treeir.Methods(doc) {
		trycatches += len(treeir.TryCatches(method))
		for _, name := range treeir.OpcodeNames(treeir.Body(method)) {
			op, ok := jvm.OpcodeByName(name)
			if !ok || !supported.Contains(op) {
				names.Add(name)
			}
		}
	}
	out := names.ToSlice()
	sort.Strings(out)
	return out, trycatches
}
