// Command pixmath evaluates a per-pixel expression bundle over one or more
// target images.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/vahlkar/pixmath/internal/batch"
	"github.com/vahlkar/pixmath/internal/logx"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		targets        []string
		drizzle        []string
		exprFile       string
		declarations   string
		outputDir      string
		outputPrefix   string
		outputSuffix   string
		overwrite      bool
		interpolation  string
		clampThreshold float64
		errorPolicy    string
		historyDB      string
		workers        int
		runSeed        uint64
	)

	cmd := &cobra.Command{
		Use:   "pixmath",
		Short: "Evaluate a per-pixel expression bundle over target images",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(targets) == 0 {
				return fmt.Errorf("pixmath: at least one --target is required")
			}
			if len(drizzle) > 0 && len(drizzle) != len(targets) {
				return fmt.Errorf("pixmath: --drizzle must be given once per --target, or not at all")
			}

			job := &batch.Job{
				ExpressionFile: exprFile,
				Declarations:   declarations,
				OutputDir:      outputDir,
				OutputPrefix:   outputPrefix,
				OutputSuffix:   outputSuffix,
				Overwrite:      overwrite,
				Interpolation:  interpolation,
				ClampThreshold: clampThreshold,
				ErrorPolicy:    batch.ErrorPolicy(errorPolicy),
				HistoryDB:      historyDB,
				Workers:        workers,
				RunSeed:        runSeed,
			}
			for i, t := range targets {
				target := batch.Target{Image: t}
				if len(drizzle) == len(targets) {
					target.Drizzle = drizzle[i]
				}
				job.Targets = append(job.Targets, target)
			}

			driver, err := batch.NewDriver(job, logx.Default())
			if err != nil {
				return err
			}
			defer driver.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			return driver.Run(ctx)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVar(&targets, "target", nil, "target image path (repeatable)")
	flags.StringSliceVar(&drizzle, "drizzle", nil, "drizzle sidecar path, one per --target (optional)")
	flags.StringVar(&exprFile, "expr", "", "path to the expression bundle file")
	flags.StringVar(&declarations, "symbols", "", "symbol declarations, e.g. \"k=init(0), s=global(+,0)\"")
	flags.StringVar(&outputDir, "output-dir", ".", "directory for evaluated output images")
	flags.StringVar(&outputPrefix, "output-prefix", "", "filename prefix for output images")
	flags.StringVar(&outputSuffix, "output-suffix", "_out", "filename suffix for output images")
	flags.BoolVar(&overwrite, "overwrite", false, "overwrite existing output files")
	flags.StringVar(&interpolation, "interpolation", "bilinear", "pixel interpolation algorithm")
	flags.Float64Var(&clampThreshold, "clamp-threshold", 0.0, "linear-clamping threshold in [0,1] for interpolation")
	flags.StringVar(&errorPolicy, "on-error", "continue", "per-frame error policy: continue, abort, or ask")
	flags.StringVar(&historyDB, "history-db", "", "optional sqlite path recording one row per evaluated frame")
	flags.IntVar(&workers, "workers", 0, "worker goroutines (0 selects the number of CPUs)")
	flags.Uint64Var(&runSeed, "run-seed", 1, "deterministic seed for per-worker random generators")

	cmd.MarkFlagRequired("expr")
	return cmd
}
