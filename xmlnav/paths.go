package xmlnav

// PathSpec names a frame-hierarchy-independent element family. Rules refer
// to these instead of hard-coding composite-frame vs flat-frame layout
// knowledge.
type PathSpec struct {
	Composite string
	Flat      string
	Element   string
}

var (
	StopPlaces = PathSpec{
		Composite: "CompositeFrame/frames/SiteFrame/stopPlaces",
		Flat:      "dataObjects/SiteFrame/stopPlaces",
		Element:   "StopPlace",
	}
	ServiceJourneys = PathSpec{
		Composite: "CompositeFrame/frames/TimetableFrame/vehicleJourneys",
		Flat:      "dataObjects/TimetableFrame/vehicleJourneys",
		Element:   "ServiceJourney",
	}
	StopAssignments = PathSpec{
		Composite: "CompositeFrame/frames/ServiceFrame/stopAssignments",
		Flat:      "dataObjects/ServiceFrame/stopAssignments",
		Element:   "PassengerStopAssignment",
	}
	FrameDefaultsPath = PathSpec{
		Composite: "CompositeFrame/FrameDefaults",
		Flat:      "FrameDefaults",
		Element:   "FrameDefaults",
	}
)

// FindNeTExElements tries the composite-frame path and then the flat-frame
// path for spec, and returns the spec.Element matches inside the first
// container that resolves (even when that container holds none).
// If neither container path resolves, it falls back to a plain FindAll for
// spec.Element anywhere in the document — real-world documents sometimes
// nest frames more loosely than either canonical shape.
func FindNeTExElements(xml string, spec PathSpec) []XmlElement {
	if els := NavigatePath(xml, spec.Composite, 0, 0); len(els) > 0 {
		return FindAll(els[0].InnerXml, spec.Element, InnerBaseOffset(els[0]), InnerBaseLine(els[0]))
	}
	if els := NavigatePath(xml, spec.Flat, 0, 0); len(els) > 0 {
		return FindAll(els[0].InnerXml, spec.Element, InnerBaseOffset(els[0]), InnerBaseLine(els[0]))
	}
	return FindAll(xml, spec.Element, 0, 0)
}

// FindFrameDefaults locates the FrameDefaults element under either layout,
// returning ok=false if absent.
func FindFrameDefaults(xml string) (XmlElement, bool) {
	if els := NavigatePath(xml, FrameDefaultsPath.Composite, 0, 0); len(els) > 0 {
		return els[0], true
	}
	if els := FindAll(xml, "FrameDefaults", 0, 0); len(els) > 0 {
		return els[0], true
	}
	return XmlElement{}, false
}
