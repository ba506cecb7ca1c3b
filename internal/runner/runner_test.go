package runner_test

import (
	"context"
	"math"
	"testing"

	"github.com/vahlkar/pixmath/internal/cache"
	"github.com/vahlkar/pixmath/internal/catalog"
	"github.com/vahlkar/pixmath/internal/imageio"
	"github.com/vahlkar/pixmath/internal/interpolate"
	"github.com/vahlkar/pixmath/internal/pipeline"
	"github.com/vahlkar/pixmath/internal/pixel"
	"github.com/vahlkar/pixmath/internal/rasterimg"
	"github.com/vahlkar/pixmath/internal/runner"
)

// rowCollector gathers every row a run writes, for assertion.
type rowCollector struct {
	rows [][]pixel.Pixel
}

func (c *rowCollector) WriteRow(y int, row []pixel.Pixel) error {
	for len(c.rows) <= y {
		c.rows = append(c.rows, nil)
	}
	cp := make([]pixel.Pixel, len(row))
	copy(cp, row)
	c.rows[y] = cp
	return nil
}

func compileAndRun(t *testing.T, source, decl string, target *rasterimg.Image, workers int, runSeed uint64) (*pipeline.Context, []float64, []*rowCollector) {
	t.Helper()
	named := imageio.NewNamedRegistry()
	named.Add("target", target, true)
	imgCache := cache.New()
	reg := runner.NewCompositeRegistry(named, imgCache)
	gc := &catalog.GenContext{
		Registry: reg,
		Cache:    imgCache,
		Interp:   interpolate.Factory{},
	}
	ctx := pipeline.NewContext(source, decl, catalog.Default(), reg, gc)
	ctx = pipeline.Default().Run(ctx)
	if ctx.Err != nil {
		t.Fatalf("compile: %v", ctx.Err)
	}

	var outPrograms = ctx.Lowered[:0:0]
	var globals []runner.GlobalStatement
	var collectors []*rowCollector
	var outputs []runner.Sink

	for i, stmt := range ctx.Program.Statements {
		if stmt.IsAssign && stmt.IsGlobal {
			globals = append(globals, runner.GlobalStatement{
				Program: ctx.Lowered[i], VarID: stmt.VarID, Op: stmt.ReduceOp,
			})
			continue
		}
		outPrograms = append(outPrograms, ctx.Lowered[i])
		c := &rowCollector{}
		collectors = append(collectors, c)
		outputs = append(outputs, c)
	}

	opts := runner.Options{
		Width: target.Width(), Height: target.Height(),
		Workers: workers, RunSeed: runSeed,
		Registry: ctx.Registry, Catalog: ctx.Catalog, Symbols: ctx.Symbols,
		Programs: outPrograms, Outputs: outputs, Globals: globals,
	}
	result, err := runner.Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return ctx, result, collectors
}

func TestGeneratorCaching(t *testing.T) {
	target := rasterimg.New(4, 4, 1)
	for i := range target.Data[0] {
		target.Data[0][i] = float64(i) / 16
	}
	_, _, collectors := compileAndRun(t, "gconv($T,3,1) - gconv($T,3,1)", "", target, 1, 1)
	if len(collectors) != 1 {
		t.Fatalf("got %d outputs, want 1", len(collectors))
	}
	for y, row := range collectors[0].rows {
		for x, p := range row {
			if math.Abs(p.Sample(0)) > 1e-9 {
				t.Errorf("pixel (%d,%d): got %v, want 0", x, y, p.Sample(0))
			}
		}
	}
}

func TestGlobalAccumulatorSingleThreaded(t *testing.T) {
	target := rasterimg.New(3, 2, 1)
	samples := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}
	sum := 0.0
	for i, v := range samples {
		target.Data[0][i] = v
		sum += v
	}
	_, result, _ := compileAndRun(t, "s = $T", "s=global(+,0)", target, 1, 1)
	if len(result) != 1 {
		t.Fatalf("got %d globals, want 1", len(result))
	}
	if math.Abs(result[0]-sum) > 1e-9 {
		t.Errorf("got %v, want %v", result[0], sum)
	}
}

func TestGlobalAccumulatorMultiThreaded(t *testing.T) {
	target := rasterimg.New(16, 16, 1)
	sum := 0.0
	for i := range target.Data[0] {
		v := float64(i%7) * 0.1
		target.Data[0][i] = v
		sum += v
	}
	_, result, _ := compileAndRun(t, "s = $T", "s=global(+,0)", target, 8, 1)
	if math.Abs(result[0]-sum) > 1e-6 {
		t.Errorf("got %v, want %v", result[0], sum)
	}
}

func TestGlobalAccumulatorProductIndependentOfThreadCount(t *testing.T) {
	target := rasterimg.New(1, 4, 1)
	for i := range target.Data[0] {
		target.Data[0][i] = 1 + float64(i)*0.01
	}
	_, oneThread, _ := compileAndRun(t, "p = $T", "p=global(*,1)", target, 1, 1)
	_, fourThreads, _ := compileAndRun(t, "p = $T", "p=global(*,1)", target, 4, 1)
	if math.Abs(oneThread[0]-fourThreads[0]) > 1e-9 {
		t.Errorf("thread-count dependent result: 1 worker %v, 4 workers %v", oneThread[0], fourThreads[0])
	}
}

