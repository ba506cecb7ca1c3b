package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/vahlkar/pixmath/internal/cache"
	"github.com/vahlkar/pixmath/internal/catalog"
	"github.com/vahlkar/pixmath/internal/imageio"
	"github.com/vahlkar/pixmath/internal/interpolate"
	"github.com/vahlkar/pixmath/internal/logx"
	"github.com/vahlkar/pixmath/internal/pipeline"
	"github.com/vahlkar/pixmath/internal/pixel"
	"github.com/vahlkar/pixmath/internal/rasterimg"
	"github.com/vahlkar/pixmath/internal/registry"
	"github.com/vahlkar/pixmath/internal/runner"
)

// AskFunc is consulted on a frame failure when the job's ErrorPolicy is
// PolicyAsk; it returns true to continue with the remaining targets.
type AskFunc func(target string, err error) bool

// Driver runs one Job end to end.
type Driver struct {
	Job     *Job
	Log     *logx.Logger
	History *History
	Ask     AskFunc
}

// NewDriver builds a Driver for job, opening its history database if one is
// configured.
func NewDriver(job *Job, log *logx.Logger) (*Driver, error) {
	if log == nil {
		log = logx.Default()
	}
	var hist *History
	if job.HistoryDB != "" {
		h, err := NewHistory(job.HistoryDB)
		if err != nil {
			return nil, err
		}
		hist = h
	}
	return &Driver{Job: job, Log: log, History: hist}, nil
}

// Close releases the driver's history database handle, if any.
func (d *Driver) Close() error { return d.History.Close() }

// Run evaluates every target in the job, stopping early only if the error
// policy says to.
func (d *Driver) Run(ctx context.Context) error {
	exprBytes, err := os.ReadFile(d.Job.ExpressionFile)
	if err != nil {
		return fmt.Errorf("batch: read expression bundle: %w", err)
	}
	source := string(exprBytes)
	cat := catalog.Default()

	batchStart := time.Now()
	succeeded := 0

	for _, target := range d.Job.Targets {
		started := time.Now()
		frameErr := d.runFrame(ctx, cat, source, target)
		finished := time.Now()

		if err := d.History.Record(target.Image, started, finished, frameErr); err != nil {
			d.Log.Warnf("history: record %s: %v", target.Image, err)
		}

		if frameErr == nil {
			succeeded++
			d.Log.Infof("%s: done in %s", target.Image, finished.Sub(started))
			continue
		}

		d.Log.Errorf("%s: %v", target.Image, frameErr)
		switch d.Job.ErrorPolicy {
		case PolicyAbort:
			return fmt.Errorf("batch: aborting after %s: %w", target.Image, frameErr)
		case PolicyAsk:
			if d.Ask != nil && d.Ask(target.Image, frameErr) {
				continue
			}
			return fmt.Errorf("batch: stopped after %s: %w", target.Image, frameErr)
		default: // PolicyContinue
			continue
		}
	}

	d.Log.Infof("batch complete: %s/%s frames succeeded in %s",
		humanize.Comma(int64(succeeded)), humanize.Comma(int64(len(d.Job.Targets))), time.Since(batchStart))
	return nil
}

func (d *Driver) runFrame(ctx context.Context, cat *catalog.Catalog, source string, target Target) error {
	img, err := imageio.Load(target.Image)
	if err != nil {
		return err
	}

	var targetImg registry.Image = img
	if target.Drizzle != "" {
		targetImg, err = imageio.WithDrizzleWeights(targetImg, target.Drizzle)
		if err != nil {
			return err
		}
	}

	baseID := strings.TrimSuffix(filepath.Base(target.Image), filepath.Ext(target.Image))
	named := imageio.NewNamedRegistry()
	named.Add(baseID, targetImg, true)

	imgCache := cache.New()
	reg := runner.NewCompositeRegistry(named, imgCache)

	gc := &catalog.GenContext{
		Registry:        reg,
		Cache:           imgCache,
		Interp:          interpolate.Factory{},
		InterpAlgorithm: d.Job.Interpolation,
		ClampThreshold:  d.Job.ClampThreshold,
	}

	pctx := pipeline.NewContext(source, d.Job.Declarations, cat, reg, gc)
	pctx = pipeline.Default().Run(pctx)
	if pctx.Err != nil {
		return pctx.Err
	}

	var outputPrograms = pctx.Lowered[:0:0]
	var globals []runner.GlobalStatement
	var outputIdx []int
	for i, stmt := range pctx.Program.Statements {
		if stmt.IsAssign && stmt.IsGlobal {
			globals = append(globals, runner.GlobalStatement{
				Program: pctx.Lowered[i],
				VarID:   stmt.VarID,
				Op:      stmt.ReduceOp,
			})
			continue
		}
		outputPrograms = append(outputPrograms, pctx.Lowered[i])
		outputIdx = append(outputIdx, i)
	}

	width, height := targetImg.Width(), targetImg.Height()
	sinks := make([]*frameSink, len(outputPrograms))
	outputs := make([]runner.Sink, len(outputPrograms))
	for i := range outputPrograms {
		sinks[i] = newFrameSink(width, height)
		outputs[i] = sinks[i]
	}

	opts := runner.Options{
		Width: width, Height: height,
		Workers: d.Job.Workers, RunSeed: d.Job.RunSeed,
		Registry: reg, Catalog: cat, Symbols: pctx.Symbols,
		Programs: outputPrograms,
		Outputs:  outputs,
		Globals:  globals,
	}
	if _, err := runner.Run(ctx, opts); err != nil {
		return err
	}

	for i, sink := range sinks {
		outPath := filepath.Join(d.Job.OutputDir, fmt.Sprintf("%s%s%s_%d.png", d.Job.OutputPrefix, baseID, d.Job.OutputSuffix, outputIdx[i]))
		if !d.Job.Overwrite {
			if _, err := os.Stat(outPath); err == nil {
				return fmt.Errorf("batch: output %s already exists (overwrite disabled)", outPath)
			}
		}
		if err := imageio.Save(outPath, sink.image); err != nil {
			return fmt.Errorf("batch: save %s: %w", outPath, err)
		}
		if info, err := os.Stat(outPath); err == nil {
			d.Log.Debugf("wrote %s (%s)", outPath, humanize.Bytes(uint64(info.Size())))
		}
	}
	return nil
}

// frameSink accumulates one output statement's rows into a dense raster
// before saving.
type frameSink struct {
	image *rasterimg.Image
}

func newFrameSink(w, h int) *frameSink {
	return &frameSink{image: rasterimg.New(w, h, 3)}
}

func (s *frameSink) WriteRow(y int, row []pixel.Pixel) error {
	for x, p := range row {
		if p.IsColor() {
			s.image.Set(x, y, 0, p.Samples[0])
			s.image.Set(x, y, 1, p.Samples[1])
			s.image.Set(x, y, 2, p.Samples[2])
			continue
		}
		v := p.Samples[0]
		s.image.Set(x, y, 0, v)
		s.image.Set(x, y, 1, v)
		s.image.Set(x, y, 2, v)
	}
	return nil
}
