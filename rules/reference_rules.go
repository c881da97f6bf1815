package rules

import (
	"fmt"

	"github.com/transitdata/netex-validator/document"
	"github.com/transitdata/netex-validator/frame"
	"github.com/transitdata/netex-validator/xmlerrors"
	"github.com/transitdata/netex-validator/xmlnav"
)

// everyLineIsReferenced is a cross-document rule: every <Line> must have an
// @id, and that id must appear as some <LineRef @ref> across the whole
// document set. Passes vacuously when no <Line> exists.
func everyLineIsReferenced(docs []document.Document, _ Config) []xmlerrors.ValidationError {
	return everyXIsReferenced(docs, "Line", "LineRef", "everyLineIsReferenced")
}

// everyStopPlaceIsReferenced is the symmetric rule for <StopPlace> /
// StopPlaceRef.
func everyStopPlaceIsReferenced(docs []document.Document, _ Config) []xmlerrors.ValidationError {
	return everyXIsReferenced(docs, "StopPlace", "StopPlaceRef", "everyStopPlaceIsReferenced")
}

func everyXIsReferenced(docs []document.Document, elementName, refName, ruleName string) []xmlerrors.ValidationError {
	refs := map[string]bool{}
	for _, doc := range docs {
		for _, el := range xmlnav.FindAll(doc.Xml, refName, 0, 0) {
			if ref, ok := attr(el, "ref"); ok && ref != "" {
				refs[ref] = true
			}
		}
	}

	var errs []xmlerrors.ValidationError
	for _, doc := range docs {
		for _, el := range xmlnav.FindAll(doc.Xml, elementName, 0, 0) {
			id, ok := attr(el, "id")
			if !ok || id == "" {
				e := xmlerrors.ConsistencyError(ruleName,
					fmt.Sprintf("%s is missing an @id attribute", elementName), el.Line, 1)
				e.FileName = doc.FileName
				errs = append(errs, e)
				continue
			}
			if !refs[id] {
				e := xmlerrors.ConsistencyError(ruleName,
					fmt.Sprintf("%s `%s` is never referenced by a %s", elementName, id, refName), el.Line, 1)
				e.FileName = doc.FileName
				errs = append(errs, e)
			}
		}
	}
	return errs
}

// netexPrerequisitesAreSatisfied is a cross-document rule: every declared
// <prerequisites>/*FrameRef must resolve to a discovered frame, and every
// cross-file *Ref must be reachable through a declared prerequisite edge
// (reported once per referring/target file pair, as a quality warning).
func netexPrerequisitesAreSatisfied(docs []document.Document, _ Config) []xmlerrors.ValidationError {
	frames, graph := frame.BuildPrerequisiteGraph(toFrameDocs(docs))
	byID := frame.FramesByID(frames)

	var errs []xmlerrors.ValidationError
	for _, f := range frames {
		for _, p := range f.Prerequisites {
			if _, ok := byID[p.Ref]; !ok {
				e := xmlerrors.ConsistencyError("netexPrerequisitesAreSatisfied",
					fmt.Sprintf("Prerequisite frame `%s` declared by `%s` was not found in the dataset", p.Ref, f.ID),
					f.Line, 1)
				e.FileName = f.FileName
				errs = append(errs, e)
			}
		}
	}

	// Cross-file id ownership, to compare against declared prerequisite
	// reachability.
	idOwner := ownerOfEveryID(docs)

	reported := map[string]bool{}
	for _, doc := range docs {
		for _, el := range allRefElements(doc.Xml) {
			ref, ok := attr(el, "ref")
			if !ok || ref == "" {
				continue
			}
			targetFile, known := idOwner[ref]
			if !known || targetFile == doc.FileName {
				continue
			}
			if reachable(doc.FileName, targetFile, frames, graph) {
				continue
			}
			key := doc.FileName + "->" + targetFile
			if reported[key] {
				continue
			}
			reported[key] = true
			e := xmlerrors.QualityError("netexPrerequisitesAreSatisfied",
				fmt.Sprintf("`%s` references content in `%s` without a declared prerequisite frame reaching it", doc.FileName, targetFile),
				0, 0)
			e.FileName = doc.FileName
			errs = append(errs, e)
		}
	}
	return errs
}

func toFrameDocs(docs []document.Document) []frame.Document {
	out := make([]frame.Document, len(docs))
	for i, d := range docs {
		out[i] = frame.Document(d)
	}
	return out
}

// ownerOfEveryID maps every @id seen anywhere in the dataset to the file
// that declares it, for the cross-file reachability check.
func ownerOfEveryID(docs []document.Document) map[string]string {
	owner := map[string]string{}
	for _, doc := range docs {
		for _, id := range everyIDAttribute(doc.Xml) {
			owner[id] = doc.FileName
		}
	}
	return owner
}

// everyIDAttribute finds every element's @id in a document by scanning
// open tags directly rather than walking named elements one type at a
// time — a necessary concession since this rule deliberately does not
// hard-code the set of NeTEx element names that carry identity.
func everyIDAttribute(xml string) []string {
	var ids []string
	for _, loc := range openTagLocations(xml) {
		if id, ok := xmlnav.GetAttr(loc, "id"); ok && id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// reachable reports whether some frame declared in sourceFile has a
// prerequisite path to one of targetFile's frames (searched per call; the
// dataset sizes this engine targets make repeated BFS cheap relative to
// XSD compilation).
func reachable(sourceFile, targetFile string, frames []frame.Info, graph frame.Graph) bool {
	sourceFrameIDs := framesInFile(frames, sourceFile)
	targetFrameIDs := framesInFile(frames, targetFile)
	for _, src := range sourceFrameIDs {
		visited := map[string]bool{src: true}
		queue := []string{src}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for prereq := range graph[cur] {
				if targetFrameIDs[prereq] {
					return true
				}
				if !visited[prereq] {
					visited[prereq] = true
					queue = append(queue, prereq)
				}
			}
		}
	}
	return false
}

func framesInFile(frames []frame.Info, fileName string) map[string]bool {
	out := map[string]bool{}
	for _, f := range frames {
		if f.FileName == fileName {
			out[f.ID] = true
		}
	}
	return out
}

// allRefElements returns every element in xml whose local name ends with
// "Ref" (excluding the *FrameRef family, already handled by the
// prerequisite graph itself).
func allRefElements(xml string) []xmlnav.XmlElement {
	var out []xmlnav.XmlElement
	for _, name := range refElementNames(xml) {
		out = append(out, xmlnav.FindAll(xml, name, 0, 0)...)
	}
	return out
}

// refElementNames scans xml's open tags for distinct local names ending
// in "Ref" that are not frame references.
func refElementNames(xml string) []string {
	seen := map[string]bool{}
	var names []string
	for _, loc := range openTagLocations(xml) {
		name := xmlnav.LocalNameOfOpenTag(loc)
		if name == "" || !hasRefSuffix(name) || frame.TypeSuffix(name) {
			continue
		}
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

func hasRefSuffix(name string) bool {
	return len(name) > 3 && name[len(name)-3:] == "Ref"
}

func openTagLocations(xml string) []string {
	return xmlnav.AllOpenTags(xml)
}
