package engine

import (
	"github.com/transitdata/netex-validator/types"
	"github.com/transitdata/netex-validator/xmlerrors"
)

// FileResult is one document's validation outcome.
type FileResult struct {
	FileName   string
	Format     types.Format
	Errors     []xmlerrors.ValidationError
	Passed     bool
	RulesRun   []string
	RuleTiming map[string]int64 // milliseconds
}

// computePassed derives Passed: true unless an error or warning severity
// entry is present.
func computePassed(errs []xmlerrors.ValidationError) bool {
	for _, e := range errs {
		if e.Severity == types.Error || e.Severity == types.Warning {
			return false
		}
	}
	return true
}

// ValidationResult aggregates every file's outcome for one validation call.
type ValidationResult struct {
	Files       []FileResult
	TotalFiles  int
	PassedFiles int
	FailedFiles int
	TotalErrors int
	DurationMs  int64
}

// newValidationResult aggregates files into totals. TotalErrors excludes
// info-severity entries, matching the spec's failure-counting rule.
func newValidationResult(files []FileResult, durationMs int64) ValidationResult {
	res := ValidationResult{Files: files, TotalFiles: len(files), DurationMs: durationMs}
	for _, f := range files {
		if f.Passed {
			res.PassedFiles++
		} else {
			res.FailedFiles++
		}
		for _, e := range f.Errors {
			if e.Severity != types.Info {
				res.TotalErrors++
			}
		}
	}
	return res
}
