// Package engine is the single pipeline behind both Validate and
// ValidateDocuments. Grounded on the teacher's validation/engine/runner.go:
// a per-document phase followed by a barrier before the rules that need
// every document at once. The per-document phase runs sequentially, in
// caller order, unless Options.Concurrent opts into a fixed-size worker pool
// fed by a buffered job channel. Rule panics are recovered per rule run.
package engine

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/transitdata/netex-validator/archive"
	"github.com/transitdata/netex-validator/document"
	"github.com/transitdata/netex-validator/logging"
	"github.com/transitdata/netex-validator/netexfmt"
	"github.com/transitdata/netex-validator/progress"
	"github.com/transitdata/netex-validator/rules"
	"github.com/transitdata/netex-validator/types"
	"github.com/transitdata/netex-validator/xmlerrors"
	"github.com/transitdata/netex-validator/xsdvalidate"
)

// defaultRegistry and defaultProfiles are package-level so Validate and
// ValidateDocuments share one rule catalogue, matching the teacher's
// package-level default validator pattern (see xsdvalidate.defaultCache).
var (
	defaultRegistry = rules.DefaultRegistry()
	defaultProfiles = rules.DefaultProfiles()
)

var log = logging.GetDefaultLogger()

// Validate reads each path (expanding archives via the archive package's
// contract) and validates the resulting documents. It is a thin wrapper
// over ValidateDocuments; callers that already hold document bytes should
// call ValidateDocuments directly.
func Validate(ctx context.Context, paths []string, opts Options) (ValidationResult, error) {
	docs, err := loadDocuments(paths)
	if err != nil {
		return ValidationResult{}, err
	}
	return ValidateDocuments(ctx, docs, opts)
}

// loadDocuments reads plain XML files directly and expands archives via
// the archive package, matching the teacher's ValidateFile dispatch on
// file extension.
func loadDocuments(paths []string) ([]document.Document, error) {
	var docs []document.Document
	for _, p := range paths {
		if isArchivePath(p) {
			extracted, err := extractArchive(p)
			if err != nil {
				return nil, fmt.Errorf("engine: extract archive %s: %w", p, err)
			}
			docs = append(docs, extracted...)
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("engine: read file %s: %w", p, err)
		}
		docs = append(docs, document.Document{FileName: p, Xml: string(data)})
	}
	return docs, nil
}

// isArchivePath and extractArchive are package variables so tests can stub
// archive expansion without touching disk.
var (
	isArchivePath  = archive.IsArchive
	extractArchive = archive.ExtractXML
)

// ValidateDocuments is the 9-step pipeline described in the orchestrator
// component: format detection, profile resolution, per-document rule and
// XSD execution, then cross-document rule execution, then aggregation.
func ValidateDocuments(ctx context.Context, docs []document.Document, opts Options) (ValidationResult, error) {
	start := time.Now()

	// Step 1: no documents, zero-filled result.
	if len(docs) == 0 {
		return newValidationResult(nil, 0), nil
	}

	// Step 2: detect format from the first document unless pinned.
	format := opts.Format
	if format == "" {
		detected, err := netexfmt.Detect(docs[0].Xml)
		if err != nil {
			return ValidationResult{}, fmt.Errorf("engine: %w", err)
		}
		format = detected
	}

	// Step 3: resolve profile.
	profileName := opts.Profile
	if profileName == "" {
		profileName = rules.DefaultProfileName(format)
	}
	profile, err := defaultProfiles.Get(profileName)
	if err != nil {
		return ValidationResult{}, fmt.Errorf("engine: %w", err)
	}
	schemaID := profile.SchemaID
	if opts.SchemaID != "" {
		schemaID = opts.SchemaID
	}

	// Step 4: resolve the enabled rule list, defaulting to the profile's.
	ruleNames := profile.EnabledRules
	if opts.Rules != nil {
		ruleNames = opts.Rules
	}
	perDocRules, crossDocRules, err := resolveRules(ruleNames)
	if err != nil {
		return ValidationResult{}, fmt.Errorf("engine: %w", err)
	}
	if opts.SkipRules {
		perDocRules, crossDocRules = nil, nil
	}

	// Step 5: resolve the schema, non-fatal on failure.
	var schema schemaSource
	if schemaID != "" && !opts.SkipXSD {
		resolved, resolveErr := schemaResolver(ctx, schemaID, opts.CustomSchemaPath)
		if resolveErr != nil {
			log.Warn("schema resolution failed, XSD step and XSD-dependent rules disabled", "schemaId", schemaID, "error", resolveErr.Error())
		} else {
			schema = resolved
		}
	}

	ruleConfig := cloneRuleConfig(opts.RuleConfig)
	if schema.Text != "" {
		for _, d := range crossDocRules {
			cfg, ok := ruleConfig[d.Name]
			if !ok {
				cfg = rules.Config{}
			}
			cfg["xsdContent"] = schema.Text
			ruleConfig[d.Name] = cfg
		}
	}

	totalFiles := len(docs)
	files := make([]FileResult, totalFiles)
	for i, d := range docs {
		files[i] = FileResult{FileName: d.FileName, Format: format, RuleTiming: map[string]int64{}}
	}

	// Step 6: per-document phase, sequential in caller order by default;
	// with Options.Concurrent it fans out across a fixed-size worker pool
	// fed by a buffered job channel (see runPerDocumentPhase).
	runPerDocumentPhase(docs, files, format, perDocRules, ruleConfig, schemaID, schema, opts)

	// Step 7: cross-document phase, run after every per-document phase
	// completes (a barrier, unlike the per-document fan-out).
	if len(crossDocRules) > 0 {
		opts.notify(progress.Event{Phase: progress.PhaseCrossDoc, TotalFiles: totalFiles})
		runCrossDocumentPhase(docs, files, format, crossDocRules, ruleConfig)
	}

	// Step 8: aggregate.
	result := newValidationResult(files, time.Since(start).Milliseconds())

	// Step 9: final progress event.
	opts.notify(progress.Event{Phase: progress.PhaseComplete, TotalFiles: totalFiles})

	return result, nil
}

// resolveRules maps rule names to descriptors and partitions them into the
// per-document and cross-document sets per the fixed membership in
// rules.IsCrossDocument.
func resolveRules(names []string) (perDoc, crossDoc []rules.Descriptor, err error) {
	for _, name := range names {
		d, getErr := defaultRegistry.Get(name)
		if getErr != nil {
			return nil, nil, getErr
		}
		if rules.IsCrossDocument(name) {
			crossDoc = append(crossDoc, d)
		} else {
			perDoc = append(perDoc, d)
		}
	}
	return perDoc, crossDoc, nil
}

func cloneRuleConfig(src map[string]interface{}) map[string]rules.Config {
	out := make(map[string]rules.Config, len(src))
	for name, v := range src {
		if cfg, ok := v.(rules.Config); ok {
			cp := rules.Config{}
			for k, vv := range cfg {
				cp[k] = vv
			}
			out[name] = cp
			continue
		}
		if cfg, ok := v.(map[string]interface{}); ok {
			cp := rules.Config{}
			for k, vv := range cfg {
				cp[k] = vv
			}
			out[name] = cp
		}
	}
	return out
}

func configFor(ruleConfig map[string]rules.Config, name string) rules.Config {
	if cfg, ok := ruleConfig[name]; ok {
		return cfg
	}
	return rules.Config{}
}

// runPerDocumentPhase runs every applicable per-document rule, then XSD
// validation, for each document. Per §5's ordering guarantee, documents are
// validated one at a time in caller order by default, so OnProgress fires
// synchronously and in file order. Only when opts.Concurrent opts in does it
// fan out across the teacher's concurrentFiles-sized worker pool; callers
// that ask for that must not rely on progress-event ordering.
func runPerDocumentPhase(
	docs []document.Document,
	files []FileResult,
	format types.Format,
	perDocRules []rules.Descriptor,
	ruleConfig map[string]rules.Config,
	schemaID string,
	schema schemaSource,
	opts Options,
) {
	totalFiles := len(docs)

	if !opts.Concurrent {
		for i := range docs {
			validateOneDocument(docs[i], &files[i], format, perDocRules, ruleConfig, schemaID, schema, opts, i, totalFiles)
		}
		return
	}

	workerCount := concurrentFiles
	if workerCount > totalFiles {
		workerCount = totalFiles
	}
	if workerCount < 1 {
		workerCount = 1
	}

	jobs := make(chan int, totalFiles)
	var wg sync.WaitGroup

	for w := 0; w < workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				validateOneDocument(docs[i], &files[i], format, perDocRules, ruleConfig, schemaID, schema, opts, i, totalFiles)
			}
		}()
	}

	for i := range docs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

// validateOneDocument runs every applicable per-doc rule then XSD
// validation against one document, recovering from any rule panic into a
// single general error so one buggy rule cannot fail the whole session.
func validateOneDocument(
	d document.Document,
	result *FileResult,
	format types.Format,
	perDocRules []rules.Descriptor,
	ruleConfig map[string]rules.Config,
	schemaID string,
	schema schemaSource,
	opts Options,
	index, totalFiles int,
) {
	opts.notify(progress.Event{Phase: progress.PhaseRules, FileIndex: index, TotalFiles: totalFiles, FileName: d.FileName})

	single := []document.Document{d}
	for _, rule := range perDocRules {
		if !rule.SupportsFormat(format) {
			continue
		}
		started := time.Now()
		errs := runRuleSafely(rule, single, configFor(ruleConfig, rule.Name))
		result.Errors = append(result.Errors, errs...)
		result.RulesRun = append(result.RulesRun, rule.Name)
		result.RuleTiming[rule.Name] = time.Since(started).Milliseconds()
	}

	if schemaID != "" && !opts.SkipXSD && schema.Text != "" {
		opts.notify(progress.Event{Phase: progress.PhaseXSD, FileIndex: index, TotalFiles: totalFiles, FileName: d.FileName})
		started := time.Now()
		var xsdResult xsdvalidate.Result
		var err error
		if schema.Dir != "" && schema.EntryPath != "" {
			xsdResult, err = xsdvalidate.ValidateFile(d.FileName, d.Xml, schema.Dir, schema.EntryPath)
		} else {
			xsdResult, err = xsdvalidate.Validate(d.FileName, d.Xml, schema.Text)
		}
		if err != nil {
			result.Errors = append(result.Errors, xmlerrors.XSDError(err.Error(), 0, 0))
		} else {
			result.Errors = append(result.Errors, xsdResult.Errors...)
		}
		result.RulesRun = append(result.RulesRun, "xsd")
		result.RuleTiming["xsd"] = time.Since(started).Milliseconds()
	}

	result.Passed = computePassed(result.Errors)
	opts.notify(progress.Event{Phase: progress.PhaseFileDone, FileIndex: index, TotalFiles: totalFiles, FileName: d.FileName})
}

// runCrossDocumentPhase runs every applicable cross-document rule once
// against the whole document set and attributes each error to its named
// file, or the first file when unset.
func runCrossDocumentPhase(
	docs []document.Document,
	files []FileResult,
	format types.Format,
	crossDocRules []rules.Descriptor,
	ruleConfig map[string]rules.Config,
) {
	firstFile := docs[0].FileName
	byFile := make(map[string]int, len(files))
	for i, f := range files {
		byFile[f.FileName] = i
	}

	for _, rule := range crossDocRules {
		if !rule.SupportsFormat(format) {
			continue
		}
		started := time.Now()
		errs := runRuleSafely(rule, docs, configFor(ruleConfig, rule.Name))
		elapsed := time.Since(started).Milliseconds()

		for _, e := range errs {
			target := e.FileName
			if target == "" {
				target = firstFile
			}
			idx, ok := byFile[target]
			if !ok {
				idx = 0
			}
			files[idx].Errors = append(files[idx].Errors, e)
		}
		for i := range files {
			files[i].RulesRun = append(files[i].RulesRun, rule.Name)
			files[i].RuleTiming[rule.Name] = elapsed
		}
	}

	for i := range files {
		files[i].Passed = computePassed(files[i].Errors)
	}
}

// runRuleSafely invokes a rule's Run, converting any recovered panic into
// one general error naming the rule, per the "a rule that throws is wrapped
// into a single general error" failure semantics.
func runRuleSafely(rule rules.Descriptor, docs []document.Document, cfg rules.Config) (errs []xmlerrors.ValidationError) {
	defer func() {
		if r := recover(); r != nil {
			errs = []xmlerrors.ValidationError{xmlerrors.GeneralError(rule.Name, fmt.Sprintf("rule panicked: %v", r))}
		}
	}()
	return rule.Run(docs, cfg)
}

// RegisteredRuleNames returns every rule name in the default registry,
// sorted, for external collaborators such as the CLI's --help text and the
// HTTP server's rule-listing endpoint.
func RegisteredRuleNames() []string {
	names := defaultRegistry.Names()
	out := make([]string, len(names))
	copy(out, names)
	sort.Strings(out)
	return out
}

// concurrentFiles is the per-document worker pool size used only when
// Options.Concurrent is true, matching the teacher's WithConcurrentFiles
// default. Exposed as a var, not a const, so tests can tune it without
// touching the public Options surface.
var concurrentFiles = 4
