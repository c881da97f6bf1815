package rules

import (
	"fmt"
	"strings"

	"github.com/transitdata/netex-validator/document"
	"github.com/transitdata/netex-validator/frame"
	"github.com/transitdata/netex-validator/xmlerrors"
	"github.com/transitdata/netex-validator/xmlnav"
	"github.com/transitdata/netex-validator/xsdconstraint"
)

// netexKeyRefConstraints resolves xsd:keyref declarations against the
// document set. Cross-version references (a @versionRef on the referring
// element) are permitted to dangle intentionally. A keyref instance with
// all fields empty is skipped. Membership accepts an exact tuple match, or
// a tuple equal to the candidate with exactly one field nulled — a
// partial-match relaxation preserved from legacy behaviour (see
// DESIGN.md/SPEC_FULL.md's Known source ambiguities).
func netexKeyRefConstraints(docs []document.Document, cfg Config) []xmlerrors.ValidationError {
	xsdContent := cfg.String("xsdContent")
	if xsdContent == "" {
		return []xmlerrors.ValidationError{xmlerrors.SkippedInfo("netexKeyRefConstraints", "no XSD content available")}
	}

	constraints := xsdconstraint.Extract(xsdContent)
	keys := map[string]xsdconstraint.Constraint{}
	for _, c := range constraints {
		if c.Kind == xsdconstraint.KindKey {
			keys[c.Name] = c
		}
	}

	var errs []xmlerrors.ValidationError
	for _, c := range constraints {
		if c.Kind != xsdconstraint.KindKeyref {
			continue
		}
		key, ok := keys[c.Refer]
		if !ok {
			continue
		}

		knownTuples := map[string]bool{}
		for _, doc := range docs {
			for _, el := range xsdconstraint.ResolveSelector(doc.Xml, key.Selector) {
				if values, allEmpty := resolveFields(el, key.Fields); !allEmpty {
					knownTuples[strings.Join(values, ";")] = true
				}
			}
		}

		for _, doc := range docs {
			for _, el := range xsdconstraint.ResolveSelector(doc.Xml, c.Selector) {
				if _, hasVersionRef := attr(el, "versionRef"); hasVersionRef {
					continue
				}
				values, allEmpty := resolveFields(el, c.Fields)
				if allEmpty {
					continue
				}
				if tupleResolves(values, knownTuples) {
					continue
				}
				nonNull := nonEmptyJoined(values)
				e := xmlerrors.ConsistencyError("netexKeyRefConstraints",
					fmt.Sprintf("keyref `%s` could not resolve (%s)", c.Name, nonNull), el.Line, 1)
				e.FileName = doc.FileName
				errs = append(errs, e)
			}
		}
	}
	return errs
}

func resolveFields(el xmlnav.XmlElement, fields []string) (values []string, allEmpty bool) {
	values = make([]string, len(fields))
	allEmpty = true
	for i, f := range fields {
		if v, ok := xsdconstraint.ResolveField(el, f); ok {
			values[i] = v
			allEmpty = false
		}
	}
	return values, allEmpty
}

func resolveTuple(el xmlnav.XmlElement, fields []string) (string, bool) {
	values, allEmpty := resolveFields(el, fields)
	if allEmpty {
		return "", false
	}
	for _, v := range values {
		if v == "" {
			return "", false
		}
	}
	return strings.Join(values, ";"), true
}

// tupleResolves implements the exact-plus-one-field-nulled relaxation.
func tupleResolves(values []string, known map[string]bool) bool {
	if known[strings.Join(values, ";")] {
		return true
	}
	for i := range values {
		if values[i] == "" {
			continue
		}
		relaxed := make([]string, len(values))
		copy(relaxed, values)
		relaxed[i] = ""
		if known[strings.Join(relaxed, ";")] {
			return true
		}
	}
	return false
}

func nonEmptyJoined(values []string) string {
	var nonEmpty []string
	for _, v := range values {
		if v != "" {
			nonEmpty = append(nonEmpty, v)
		}
	}
	return strings.Join(nonEmpty, ", ")
}

// netexUniqueConstraints lives in the cross-document rule set purely so
// the orchestrator feeds it xsdContent, but internally it enforces
// per-document scoping (pass 1) plus a prerequisite-graph extension
// (pass 2): NeTEx mandates per-file uniqueness (W3C XSD §3.11.4), but real
// datasets split ids across a frame and its declared prerequisites, where
// a repeated id is always a bug.
func netexUniqueConstraints(docs []document.Document, cfg Config) []xmlerrors.ValidationError {
	xsdContent := cfg.String("xsdContent")
	if xsdContent == "" {
		return []xmlerrors.ValidationError{xmlerrors.SkippedInfo("netexUniqueConstraints", "no XSD content available")}
	}

	var constraints []xsdconstraint.Constraint
	for _, c := range xsdconstraint.Extract(xsdContent) {
		if c.Kind == xsdconstraint.KindUnique {
			constraints = append(constraints, c)
		}
	}

	var errs []xmlerrors.ValidationError

	// Pass 1: per-document duplicate detection.
	for _, c := range constraints {
		for _, doc := range docs {
			seen := map[string]bool{}
			for _, el := range xsdconstraint.ResolveSelector(doc.Xml, c.Selector) {
				tuple, ok := resolveTuple(el, c.Fields)
				if !ok {
					continue
				}
				if seen[tuple] {
					e := xmlerrors.ConsistencyError("netexUniqueConstraints",
						fmt.Sprintf("unique constraint `%s` is violated by duplicate key (%s)", c.Name, tuple), el.Line, 1)
					e.FileName = doc.FileName
					errs = append(errs, e)
					continue
				}
				seen[tuple] = true
			}
		}
	}

	// Pass 2: cross-prerequisite duplicate detection using C4's frame
	// enumeration and prerequisite graph.
	frames, graph := frame.BuildPrerequisiteGraph(toFrameDocs(docs))
	byID := frame.FramesByID(frames)

	for _, c := range constraints {
		frameKeys := map[string]map[string]bool{} // frameId -> set of keys
		for _, f := range frames {
			keys := map[string]bool{}
			for _, el := range xsdconstraint.ResolveSelector(f.InnerXml, c.Selector) {
				if tuple, ok := resolveTuple(el, c.Fields); ok {
					keys[tuple] = true
				}
			}
			frameKeys[f.ID] = keys
		}

		for frameID, prereqs := range graph {
			for prereqID := range prereqs {
				for key := range frameKeys[frameID] {
					if frameKeys[prereqID][key] {
						f := byID[frameID]
						e := xmlerrors.ConsistencyError("netexUniqueConstraints",
							fmt.Sprintf("unique constraint `%s` key `%s` shared between frame `%s` and its prerequisite `%s`", c.Name, key, frameID, prereqID),
							f.Line, 1)
						e.FileName = f.FileName
						errs = append(errs, e)
					}
				}
			}
		}
	}

	return errs
}
