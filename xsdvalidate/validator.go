package xsdvalidate

import (
	"fmt"

	"github.com/agentflare-ai/go-xmldom"
	"github.com/agentflare-ai/go-xsd"

	"github.com/transitdata/netex-validator/types"
	"github.com/transitdata/netex-validator/xmlerrors"
)

// defaultCache is shared by package-level Validate calls so repeated
// validation against the same schema ID only pays the compile cost once per
// process, matching the teacher's package-level default validator pattern.
var defaultCache = NewCache(defaultCacheSize, defaultTTL)

// Result is the outcome of validating one XML document against one schema.
type Result struct {
	Diagnostics []xsd.Diagnostic
	Errors      []xmlerrors.ValidationError
}

// Validate checks xml against the schema compiled from xsdText, using the
// package's default cache. fileName is attached to every resulting error.
// The schema is treated as self-contained: use ValidateFile when it may
// reference xsd:include/xsd:import targets on disk.
func Validate(fileName, xml, xsdText string) (Result, error) {
	return defaultCache.Validate(fileName, xml, xsdText)
}

// ValidateFile checks xml against the schema rooted at entryPath, resolving
// any xsd:include/xsd:import it declares against dir, using the package's
// default cache.
func ValidateFile(fileName, xml, dir, entryPath string) (Result, error) {
	return defaultCache.ValidateFile(fileName, xml, dir, entryPath)
}

// ClearDefaultCache evicts every schema compiled by the package-level
// Validate function. Intended for tests that compile many ad hoc schemas.
func ClearDefaultCache() {
	defaultCache.Clear()
}

// Validate checks xml against the schema compiled from xsdText, caching the
// compiled schema by content hash.
func (c *Cache) Validate(fileName, xml, xsdText string) (Result, error) {
	schema, err := c.compile(xsdText)
	if err != nil {
		return Result{}, err
	}
	return runValidator(fileName, xml, schema)
}

// ValidateFile checks xml against the schema rooted at entryPath, resolving
// its xsd:include/xsd:import targets against dir and merging them into the
// compiled schema before validating, caching the result by the entry file's
// content hash.
func (c *Cache) ValidateFile(fileName, xml, dir, entryPath string) (Result, error) {
	schema, err := c.compileFile(dir, entryPath)
	if err != nil {
		return Result{}, err
	}
	return runValidator(fileName, xml, schema)
}

func runValidator(fileName, xml string, schema *xsd.Schema) (Result, error) {
	doc, err := xmldom.NewDecoderFromBytes([]byte(xml)).Decode()
	if err != nil {
		return Result{}, fmt.Errorf("xsdvalidate: parse document %s: %w", fileName, err)
	}

	violations := xsd.NewValidator(schema).Validate(doc)
	if len(violations) == 0 {
		return Result{}, nil
	}

	converter := xsd.NewDiagnosticConverter(fileName, xml)
	diagnostics := converter.Convert(violations)

	errs := make([]xmlerrors.ValidationError, 0, len(diagnostics))
	for _, d := range diagnostics {
		ve := xmlerrors.XSDError(d.Message, d.Position.Line, d.Position.Column)
		ve.FileName = fileName
		switch d.Severity {
		case xsd.SeverityWarning:
			ve.Severity = types.Warning
		case xsd.SeverityInfo:
			ve.Severity = types.Info
		}
		errs = append(errs, ve)
	}

	return Result{Diagnostics: diagnostics, Errors: errs}, nil
}
