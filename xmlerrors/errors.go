// Package xmlerrors is the only place ValidationError values are
// constructed. Rules and the XSD validator both build their findings
// through the six factories here, which is the only way to guarantee the
// severity/category taxonomy stays fixed — nothing else should ever produce
// a ValidationError value directly.
package xmlerrors

import (
	"regexp"
	"strings"

	"github.com/transitdata/netex-validator/types"
)

// ValidationError is a structured validation finding. It is never thrown;
// it lives inside a FileResult's Errors slice.
type ValidationError struct {
	Message  string
	Source   types.Source
	Severity types.Severity
	Category types.Category
	Rule     string
	FileName string
	Line     int
	Column   int
}

// ConsistencyError reports a referential or structural inconsistency.
func ConsistencyError(rule, message string, line, column int) ValidationError {
	return ValidationError{
		Message:  message,
		Source:   types.SourceRule,
		Severity: types.Error,
		Category: types.CategoryConsistency,
		Rule:     rule,
		Line:     line,
		Column:   column,
	}
}

// QualityError reports a data-quality concern (usually a warning).
func QualityError(rule, message string, line, column int) ValidationError {
	return ValidationError{
		Message:  message,
		Source:   types.SourceRule,
		Severity: types.Warning,
		Category: types.CategoryQuality,
		Rule:     rule,
		Line:     line,
		Column:   column,
	}
}

// NotFoundError reports a reference to something that does not exist.
func NotFoundError(rule, message string, line, column int) ValidationError {
	return ValidationError{
		Message:  message,
		Source:   types.SourceRule,
		Severity: types.Error,
		Category: types.CategoryNotFound,
		Rule:     rule,
		Line:     line,
		Column:   column,
	}
}

// GeneralError wraps an unexpected condition, typically a panic recovered
// from a misbehaving rule.
func GeneralError(rule, message string) ValidationError {
	return ValidationError{
		Message:  message,
		Source:   types.SourceRule,
		Severity: types.Error,
		Category: types.CategoryGeneral,
		Rule:     rule,
	}
}

// SkippedInfo reports that a rule's prerequisite was not met. It is always
// info severity and never fails a file.
func SkippedInfo(rule, message string) ValidationError {
	return ValidationError{
		Message:  message,
		Source:   types.SourceRule,
		Severity: types.Info,
		Category: types.CategorySkipped,
		Rule:     rule,
	}
}

var (
	namespaceURIRe  = regexp.MustCompile(`\{[^}]*\}`)
	quotedIdentRe   = regexp.MustCompile(`'([^']*)'`)
	expectedOneOfRe = regexp.MustCompile(`Expected is one of \(([^)]*)\)`)
	expectedSingleRe = regexp.MustCompile(`Expected is \(([^)]*)\)`)
)

// XSDError normalizes a raw schema-engine message and produces an
// xsd-source ValidationError. Normalization: (a) strips "{namespace-uri}"
// prefixes, (b) wraps single-quoted identifiers in backticks, (c) rewrites
// "Expected is one of ( A, B, C )" into a backtick list and
// "Expected is ( A )" into a single backtick.
func XSDError(raw string, line, column int) ValidationError {
	msg := namespaceURIRe.ReplaceAllString(raw, "")

	msg = expectedOneOfRe.ReplaceAllStringFunc(msg, func(m string) string {
		sub := expectedOneOfRe.FindStringSubmatch(m)
		items := splitAndTrim(sub[1])
		for i, it := range items {
			items[i] = "`" + it + "`"
		}
		return "Expected is one of (" + strings.Join(items, ", ") + ")"
	})
	msg = expectedSingleRe.ReplaceAllStringFunc(msg, func(m string) string {
		sub := expectedSingleRe.FindStringSubmatch(m)
		return "Expected is (`" + strings.TrimSpace(sub[1]) + "`)"
	})

	msg = quotedIdentRe.ReplaceAllString(msg, "`$1`")

	return ValidationError{
		Message:  strings.TrimSpace(msg),
		Source:   types.SourceXSD,
		Severity: types.Error,
		Category: types.CategoryConsistency,
		Line:     line,
		Column:   column,
	}
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.Trim(p, "'\"")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
