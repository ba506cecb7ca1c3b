// Package batch implements the CLI's multi-frame driver: one job file
// describes a set of target images sharing one expression bundle and
// symbol declarations; the driver evaluates each target in turn, sharing
// the function catalogue across frames while re-running the symbol table
// and compile pipeline for every frame, and applies a configured per-frame
// error policy.
package batch

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// ErrorPolicy controls what the driver does when one frame fails.
type ErrorPolicy string

const (
	PolicyContinue ErrorPolicy = "continue" // log and move to the next target
	PolicyAbort    ErrorPolicy = "abort"    // stop the whole batch
	PolicyAsk      ErrorPolicy = "ask"      // defer the decision to AskFunc
)

// Target is one image to evaluate, with its own optional drizzle sidecar.
type Target struct {
	Image   string `toml:"image"`
	Drizzle string `toml:"drizzle,omitempty"`
}

// Job is the on-disk description of one batch run, loaded from TOML via
// BurntSushi/toml.
type Job struct {
	Targets []Target `toml:"targets"`

	ExpressionFile string `toml:"expression_file"`
	Declarations   string `toml:"declarations"`

	OutputDir    string `toml:"output_dir"`
	OutputPrefix string `toml:"output_prefix"`
	OutputSuffix string `toml:"output_suffix"`
	Overwrite    bool   `toml:"overwrite"`

	Interpolation  string  `toml:"interpolation"`
	ClampThreshold float64 `toml:"clamp_threshold"`

	ErrorPolicy ErrorPolicy `toml:"error_policy"`

	// HistoryDB, if set, records one row per frame to a sqlite database
	// (see history.go) so a long batch can be audited after the fact.
	HistoryDB string `toml:"history_db,omitempty"`

	Workers int    `toml:"workers,omitempty"`
	RunSeed uint64 `toml:"run_seed,omitempty"`
}

// LoadJob parses a job file at path.
func LoadJob(path string) (*Job, error) {
	var j Job
	if _, err := toml.DecodeFile(path, &j); err != nil {
		return nil, fmt.Errorf("batch: load job %s: %w", path, err)
	}
	if j.ErrorPolicy == "" {
		j.ErrorPolicy = PolicyContinue
	}
	if j.Interpolation == "" {
		j.Interpolation = "bilinear"
	}
	if len(j.Targets) == 0 {
		return nil, fmt.Errorf("batch: job %s declares no targets", path)
	}
	return &j, nil
}
