package runner

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/vahlkar/pixmath/internal/catalog"
	"github.com/vahlkar/pixmath/internal/evaluator"
	"github.com/vahlkar/pixmath/internal/lowerer"
	"github.com/vahlkar/pixmath/internal/pixel"
	"github.com/vahlkar/pixmath/internal/registry"
	"github.com/vahlkar/pixmath/internal/symbols"
)

// Sink receives one output row of computed pixels for the named output
// statement. Implementations (such as the batch driver's frame sink, which
// saves PNG through imageio) own conversion to on-disk sample depth; the
// runner only ever produces float64 pixels.
type Sink interface {
	WriteRow(y int, row []pixel.Pixel) error
}

// Options configures one evaluation run over a target image.
type Options struct {
	Width, Height int
	Workers       int    // 0 selects runtime.NumCPU()
	RunSeed       uint64 // deterministic seed shared by every worker's RNG

	Registry registry.Registry
	Catalog  *catalog.Catalog
	Symbols  *symbols.Table

	// Programs holds one lowered program per output statement, aligned
	// with Outputs. Globals holds the statements that instead accumulate
	// into a global variable.
	Programs []lowerer.Program
	Outputs  []Sink

	Globals []GlobalStatement
}

// GlobalStatement is a statement whose expression feeds a global variable's
// running reduction rather than an output pixel.
type GlobalStatement struct {
	Program lowerer.Program
	VarID   int
	Op      symbols.ReduceOp
}

// Run evaluates every output program over the full [0,Height) row range,
// partitioned across Options.Workers goroutines, then reduces every global variable's per-worker
// partial across all workers using its declared operator.
//
// Run returns the first error any worker encountered; on error, cooperative
// cancellation
// stops workers from starting additional rows, though a row already in
// flight always finishes.
func Run(ctx context.Context, opts Options) ([]float64, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers()
	}
	if workers > opts.Height && opts.Height > 0 {
		workers = opts.Height
	}
	if workers < 1 {
		workers = 1
	}

	numCells := opts.Symbols.NumVariableSlots()
	maxDepth := 0
	for _, p := range opts.Programs {
		if d := lowerer.MaxStackDepth(p); d > maxDepth {
			maxDepth = d
		}
	}
	for _, g := range opts.Globals {
		if d := lowerer.MaxStackDepth(g.Program); d > maxDepth {
			maxDepth = d
		}
	}

	partials := make([][]float64, workers)

	g, gctx := errgroup.WithContext(ctx)
	rowsPerWorker := (opts.Height + workers - 1) / workers
	if rowsPerWorker < 1 {
		rowsPerWorker = 1
	}

	for w := 0; w < workers; w++ {
		w := w
		yStart := w * rowsPerWorker
		yEnd := yStart + rowsPerWorker
		if yEnd > opts.Height {
			yEnd = opts.Height
		}
		if yStart >= yEnd {
			continue
		}
		g.Go(func() error {
			tls := pixel.NewTLS(opts.RunSeed, w, numCells)
			for _, sym := range opts.Symbols.Globals() {
				// Each worker starts from the operator's identity, not
				// sym.Init: folding Init into every worker's partial would
				// count it once per worker instead of once per run. Init is
				// applied exactly once, in reduceGlobals.
				tls.Cells[sym.ID] = pixel.NewScalar(0, 0, sym.ReduceOp.Identity(), tls)
			}
			stack := evaluator.NewStack(maxDepth)

			for y := yStart; y < yEnd; y++ {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				rows := make([][]pixel.Pixel, len(opts.Programs))
				for i := range opts.Programs {
					rows[i] = make([]pixel.Pixel, opts.Width)
				}

				for x := 0; x < opts.Width; x++ {
					for i, prog := range opts.Programs {
						p, err := evaluator.Eval(prog, x, y, tls, opts.Registry, opts.Catalog, stack)
						if err != nil {
							return err
						}
						rows[i][x] = p
					}
					for _, gs := range opts.Globals {
						p, err := evaluator.Eval(gs.Program, x, y, tls, opts.Registry, opts.Catalog, stack)
						if err != nil {
							return err
						}
						cell := tls.Cells[gs.VarID]
						tls.Cells[gs.VarID] = pixel.NewScalar(0, 0, gs.Op.Combine(cell.Samples[0], p.Samples[0]), tls)
					}
				}

				for i, sink := range opts.Outputs {
					if err := sink.WriteRow(y, rows[i]); err != nil {
						return err
					}
				}
			}

			partials[w] = collectGlobals(tls, opts.Symbols)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return reduceGlobals(opts.Symbols, partials), nil
}

func defaultWorkers() int {
	if n := runtime.NumCPU(); n > 0 {
		return n
	}
	return 1
}

func collectGlobals(tls *pixel.TLS, symtab *symbols.Table) []float64 {
	globals := symtab.Globals()
	out := make([]float64, len(globals))
	for i, sym := range globals {
		out[i] = tls.Cells[sym.ID].Samples[0]
	}
	return out
}

// reduceGlobals combines every worker's partial global values using each
// global's declared associative operator.
func reduceGlobals(symtab *symbols.Table, partials [][]float64) []float64 {
	globals := symtab.Globals()
	result := make([]float64, len(globals))
	for i, sym := range globals {
		acc := sym.Init
		for _, partial := range partials {
			if partial == nil {
				continue
			}
			acc = sym.ReduceOp.Combine(acc, partial[i])
		}
		result[i] = acc
	}
	return result
}
