// Package frame enumerates NeTEx VersionFrames and builds the
// prerequisite-frame graph that netexUniqueConstraints and
// netexPrerequisitesAreSatisfied need.
package frame

import (
	"strings"

	"github.com/transitdata/netex-validator/document"
	"github.com/transitdata/netex-validator/xmlnav"
)

// Document is an alias kept so call sites that imported frame.Document
// before the shared document package existed keep compiling unchanged.
type Document = document.Document

// frameTypes are the known NeTEx VersionFrame element names.
var frameTypes = []string{
	"CompositeFrame",
	"ServiceFrame",
	"SiteFrame",
	"TimetableFrame",
	"ResourceFrame",
	"GeneralFrame",
	"SalesTransactionFrame",
	"FareFrame",
	"DriverScheduleFrame",
	"VehicleScheduleFrame",
	"InfrastructureFrame",
}

// PrerequisiteRef is one *FrameRef found inside a frame's <prerequisites>.
type PrerequisiteRef struct {
	Ref     string
	Version string
}

// Info describes one discovered frame. Frames without an @id are excluded
// by ParseFrames.
type Info struct {
	ID            string
	Version       string
	Type          string
	FileName      string
	Prerequisites []PrerequisiteRef
	InnerXml      string
	Line          int
}

// ParseFrames enumerates every known frame type in doc.Xml, skipping
// frames with no @id.
func ParseFrames(doc Document) []Info {
	var frames []Info
	for _, frameType := range frameTypes {
		for _, el := range xmlnav.FindAll(doc.Xml, frameType, 0, 0) {
			id, ok := xmlnav.GetAttr(el.OpenTag, "id")
			if !ok || id == "" {
				continue
			}
			version, _ := xmlnav.GetAttr(el.OpenTag, "version")
			frames = append(frames, Info{
				ID:            id,
				Version:       version,
				Type:          frameType,
				FileName:      doc.FileName,
				Prerequisites: parsePrerequisites(el),
				InnerXml:      el.InnerXml,
				Line:          el.Line,
			})
		}
	}
	return frames
}

func parsePrerequisites(frame xmlnav.XmlElement) []PrerequisiteRef {
	innerBaseOffset := xmlnav.InnerBaseOffset(frame)
	innerBaseLine := xmlnav.InnerBaseLine(frame)
	prereqBlocks := xmlnav.FindChildren(frame.InnerXml, "prerequisites", innerBaseOffset, innerBaseLine)
	if len(prereqBlocks) == 0 {
		return nil
	}
	block := prereqBlocks[0]
	return findFrameRefs(block.InnerXml, xmlnav.InnerBaseOffset(block), xmlnav.InnerBaseLine(block))
}

// findFrameRefs scans a <prerequisites> fragment for the elements named in
// frameRefNames. xmlnav has no wildcard find, so this looks each listed name
// up in turn; a *FrameRef element whose name is not in that list is not
// collected.
func findFrameRefs(xml string, baseOffset, baseLine int) []PrerequisiteRef {
	var refs []PrerequisiteRef
	for _, name := range frameRefNames {
		for _, el := range xmlnav.FindChildren(xml, name, baseOffset, baseLine) {
			ref, ok := xmlnav.GetAttr(el.OpenTag, "ref")
			if !ok || ref == "" {
				continue
			}
			version, _ := xmlnav.GetAttr(el.OpenTag, "version")
			refs = append(refs, PrerequisiteRef{Ref: ref, Version: version})
		}
	}
	return refs
}

// frameRefNames enumerates the *FrameRef element names that can legally
// appear inside a <prerequisites> block — one per frame type plus the
// generic VersionFrameRef some datasets use.
var frameRefNames = func() []string {
	names := make([]string, 0, len(frameTypes)+1)
	for _, t := range frameTypes {
		names = append(names, t+"Ref")
	}
	names = append(names, "VersionFrameRef")
	return names
}()

// Graph maps a frame id to the set of frame ids it declares as
// prerequisites.
type Graph map[string]map[string]bool

// BuildPrerequisiteGraph parses frames from every document and builds the
// prerequisite graph. Duplicate frame ids collapse last-writer-wins; flagging
// duplicates is netexUniqueConstraints's job, not this function's.
func BuildPrerequisiteGraph(docs []Document) ([]Info, Graph) {
	var allFrames []Info
	byID := map[string]Info{}
	for _, doc := range docs {
		for _, f := range ParseFrames(doc) {
			allFrames = append(allFrames, f)
			byID[f.ID] = f // last-writer-wins
		}
	}

	graph := make(Graph, len(byID))
	for id, f := range byID {
		set := make(map[string]bool, len(f.Prerequisites))
		for _, p := range f.Prerequisites {
			set[p.Ref] = true
		}
		graph[id] = set
	}
	return allFrames, graph
}

// FramesByID indexes the last-writer-wins frame for each id, mirroring the
// collapse BuildPrerequisiteGraph performs on its graph.
func FramesByID(frames []Info) map[string]Info {
	out := make(map[string]Info, len(frames))
	for _, f := range frames {
		out[f.ID] = f
	}
	return out
}

// TypeSuffix reports whether name ends with "FrameRef", used by rules that
// need to recognize frame references outside a <prerequisites> block.
func TypeSuffix(name string) bool {
	return strings.HasSuffix(name, "FrameRef")
}
