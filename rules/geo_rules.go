package rules

import (
	"fmt"
	"strings"

	"github.com/transitdata/netex-validator/document"
	"github.com/transitdata/netex-validator/xmlerrors"
	"github.com/transitdata/netex-validator/xmlnav"
)

const defaultQuayDistanceMeters = 500.0
const defaultSamePointDistanceMeters = 100.0

// stopPlaceQuayDistanceIsReasonable checks that every Quay inside a
// StopPlace sits within cfg["distance"] (default 500m) of the StopPlace's
// own centroid, Haversine distance. Prerequisite: FrameDefaults must
// declare a WGS84/EPSG:4326 location system, else the rule is skipped.
func stopPlaceQuayDistanceIsReasonable(docs []document.Document, cfg Config) []xmlerrors.ValidationError {
	threshold := cfg.Float("distance", defaultQuayDistanceMeters)
	return perDocument(docs, func(doc document.Document) []xmlerrors.ValidationError {
		if !hasWGS84LocationSystem(doc.Xml) {
			return []xmlerrors.ValidationError{xmlerrors.SkippedInfo("stopPlaceQuayDistanceIsReasonable",
				"FrameDefaults/DefaultLocationSystem is not WGS84/EPSG:4326")}
		}
		var errs []xmlerrors.ValidationError
		for _, sp := range xmlnav.FindAll(doc.Xml, "StopPlace", 0, 0) {
			centroidLoc, ok := centroidLocation(sp.InnerXml)
			if !ok {
				continue
			}
			id, _ := attr(sp, "id")
			for _, quay := range xmlnav.FindAll(sp.InnerXml, "Quay", xmlnav.InnerBaseOffset(sp), xmlnav.InnerBaseLine(sp)) {
				quayLoc, ok := centroidLocation(quay.InnerXml)
				if !ok {
					continue
				}
				dist := haversineMeters(centroidLoc.Lat, centroidLoc.Lon, quayLoc.Lat, quayLoc.Lon)
				if dist > threshold {
					quayID, _ := attr(quay, "id")
					errs = append(errs, xmlerrors.QualityError("stopPlaceQuayDistanceIsReasonable",
						fmt.Sprintf("Quay `%s` of StopPlace `%s` exceeds **%.0fm** from the stop centroid (%.0fm)", quayID, id, threshold, dist),
						quay.Line, 1))
				}
			}
		}
		return errs
	})
}

func hasWGS84LocationSystem(xml string) bool {
	fd, ok := xmlnav.FindFrameDefaults(xml)
	if !ok {
		return false
	}
	v, ok := childText(fd.InnerXml, "DefaultLocationSystem")
	if !ok {
		return false
	}
	return strings.Contains(v, "4326") || strings.Contains(strings.ToUpper(v), "WGS84")
}

func centroidLocation(xml string) (latLon, bool) {
	if els := xmlnav.FindChildren(xml, "Centroid", 0, 0); len(els) > 0 {
		if locs := xmlnav.FindChildren(els[0].InnerXml, "Location", 0, 0); len(locs) > 0 {
			ll := locationOf(locs[0].InnerXml)
			return ll, ll.OK
		}
	}
	return latLon{}, false
}

func plainLocation(xml string) (latLon, bool) {
	if locs := xmlnav.FindChildren(xml, "Location", 0, 0); len(locs) > 0 {
		ll := locationOf(locs[0].InnerXml)
		return ll, ll.OK
	}
	return latLon{}, false
}

// locationsAreReferencingTheSamePoint is a cross-document rule: it builds
// global maps of StopPlace centroid and ScheduledStopPoint location, then
// checks every <PassengerStopAssignment> resolves both endpoints and that,
// when both have coordinates, they sit within cfg["distance"] (default
// 100m) of each other. Missing coordinates are silently skipped — an
// intentional preservation of legacy behaviour (see DESIGN.md).
func locationsAreReferencingTheSamePoint(docs []document.Document, cfg Config) []xmlerrors.ValidationError {
	threshold := cfg.Float("distance", defaultSamePointDistanceMeters)

	stopPlaceLocs := map[string]latLon{}
	scheduledStopLocs := map[string]latLon{}
	for _, doc := range docs {
		for _, sp := range xmlnav.FindAll(doc.Xml, "StopPlace", 0, 0) {
			id, ok := attr(sp, "id")
			if !ok {
				continue
			}
			if ll, ok := centroidLocation(sp.InnerXml); ok {
				stopPlaceLocs[id] = ll
			}
		}
		for _, ssp := range xmlnav.FindAll(doc.Xml, "ScheduledStopPoint", 0, 0) {
			id, ok := attr(ssp, "id")
			if !ok {
				continue
			}
			if ll, ok := plainLocation(ssp.InnerXml); ok {
				scheduledStopLocs[id] = ll
			}
		}
	}
	merged := map[string]latLon{}
	for id, ll := range stopPlaceLocs {
		merged[id] = ll
	}
	for id, ll := range scheduledStopLocs {
		merged[id] = ll
	}

	var errs []xmlerrors.ValidationError
	for _, doc := range docs {
		for _, psa := range xmlnav.FindAll(doc.Xml, "PassengerStopAssignment", 0, 0) {
			stopRef := firstRef(psa.InnerXml, "StopPlaceRef")
			pointRef := firstRef(psa.InnerXml, "ScheduledStopPointRef")
			if stopRef == "" || pointRef == "" {
				continue
			}
			stopLoc, stopKnown := merged[stopRef]
			pointLoc, pointKnown := merged[pointRef]
			if !stopKnown || !pointKnown {
				e := xmlerrors.ConsistencyError("locationsAreReferencingTheSamePoint",
					fmt.Sprintf("PassengerStopAssignment references an unresolved endpoint (%s or %s)", stopRef, pointRef),
					psa.Line, 1)
				e.FileName = doc.FileName
				errs = append(errs, e)
				continue
			}
			if !stopLoc.OK || !pointLoc.OK {
				continue // missing coordinates: deliberate silent skip, see DESIGN.md
			}
			dist := haversineMeters(stopLoc.Lat, stopLoc.Lon, pointLoc.Lat, pointLoc.Lon)
			if dist > threshold {
				e := xmlerrors.ConsistencyError("locationsAreReferencingTheSamePoint",
					fmt.Sprintf("PassengerStopAssignment endpoints are %.0fm apart, exceeding **%.0fm**", dist, threshold),
					psa.Line, 1)
				e.FileName = doc.FileName
				errs = append(errs, e)
			}
		}
	}
	return errs
}

// firstRef returns the @ref of the first child matching any of names.
func firstRef(xml string, names ...string) string {
	for _, name := range names {
		if els := xmlnav.FindChildren(xml, name, 0, 0); len(els) > 0 {
			if ref, ok := attr(els[0], "ref"); ok {
				return ref
			}
		}
	}
	return ""
}
