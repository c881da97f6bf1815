package rules

import (
	"fmt"
	"strings"

	"github.com/transitdata/netex-validator/document"
	"github.com/transitdata/netex-validator/xmlerrors"
	"github.com/transitdata/netex-validator/xmlnav"
)

var validStopPlaceTypes = map[string]bool{
	"onstreetBus": true, "onstreetTram": true, "busStation": true, "airport": true,
	"railStation": true, "metroStation": true, "coachStation": true, "ferryPort": true,
	"harbourPort": true, "ferryStop": true, "liftStation": true, "tramStation": true,
	"vehicleRailInterchange": true, "taxiStand": true, "other": true,
}

var validTransportModes = map[string]bool{
	"bus": true, "rail": true, "tram": true, "metro": true, "coach": true,
	"water": true, "air": true, "taxi": true, "cableway": true, "funicular": true,
}

func perDocument(docs []document.Document, fn func(doc document.Document) []xmlerrors.ValidationError) []xmlerrors.ValidationError {
	var out []xmlerrors.ValidationError
	for _, doc := range docs {
		errs := fn(doc)
		for i := range errs {
			if errs[i].FileName == "" {
				errs[i].FileName = doc.FileName
			}
		}
		out = append(out, errs...)
	}
	return out
}

func everyStopPlaceHasAName(docs []document.Document, _ Config) []xmlerrors.ValidationError {
	return perDocument(docs, func(doc document.Document) []xmlerrors.ValidationError {
		var errs []xmlerrors.ValidationError
		for _, el := range xmlnav.FindAll(doc.Xml, "StopPlace", 0, 0) {
			if id, ok := attr(el, "id"); !ok || id == "" {
				errs = append(errs, xmlerrors.ConsistencyError("everyStopPlaceHasAName",
					"StopPlace is missing an @id attribute", el.Line, 1))
				continue
			}
			if _, ok := childText(el.InnerXml, "Name"); !ok {
				if _, ok := childText(el.InnerXml, "ShortName"); !ok {
					id, _ := attr(el, "id")
					errs = append(errs, xmlerrors.ConsistencyError("everyStopPlaceHasAName",
						fmt.Sprintf("StopPlace `%s` has neither Name nor ShortName", id), el.Line, 1))
				}
			}
		}
		return errs
	})
}

func everyScheduledStopPointHasAName(docs []document.Document, _ Config) []xmlerrors.ValidationError {
	return perDocument(docs, func(doc document.Document) []xmlerrors.ValidationError {
		var errs []xmlerrors.ValidationError
		for _, el := range xmlnav.FindAll(doc.Xml, "ScheduledStopPoint", 0, 0) {
			id, hasID := attr(el, "id")
			if !hasID || id == "" {
				errs = append(errs, xmlerrors.ConsistencyError("everyScheduledStopPointHasAName",
					"ScheduledStopPoint is missing an @id attribute", el.Line, 1))
				continue
			}
			if _, ok := childText(el.InnerXml, "Name"); !ok {
				if _, ok := childText(el.InnerXml, "ShortName"); !ok {
					errs = append(errs, xmlerrors.ConsistencyError("everyScheduledStopPointHasAName",
						fmt.Sprintf("ScheduledStopPoint `%s` has neither Name nor ShortName", id), el.Line, 1))
				}
			}
		}
		return errs
	})
}

func everyStopPlaceHasACorrectStopPlaceType(docs []document.Document, _ Config) []xmlerrors.ValidationError {
	return perDocument(docs, func(doc document.Document) []xmlerrors.ValidationError {
		var errs []xmlerrors.ValidationError
		for _, el := range xmlnav.FindAll(doc.Xml, "StopPlace", 0, 0) {
			spType, ok := childText(el.InnerXml, "StopPlaceType")
			if !ok {
				continue
			}
			if !validStopPlaceTypes[spType] {
				id, _ := attr(el, "id")
				errs = append(errs, xmlerrors.ConsistencyError("everyStopPlaceHasACorrectStopPlaceType",
					fmt.Sprintf("StopPlace `%s` has invalid StopPlaceType `%s`", id, spType), el.Line, 1))
			}
		}
		return errs
	})
}

// lineHasANameAndTransportMode is a supplemental rule recovered from the
// teacher's LINE_2/LINE_4 business rules: every <Line> must have a Name
// and a recognized TransportMode.
func lineHasANameAndTransportMode(docs []document.Document, _ Config) []xmlerrors.ValidationError {
	return perDocument(docs, func(doc document.Document) []xmlerrors.ValidationError {
		var errs []xmlerrors.ValidationError
		for _, el := range xmlnav.FindAll(doc.Xml, "Line", 0, 0) {
			id, _ := attr(el, "id")
			if _, ok := childText(el.InnerXml, "Name"); !ok {
				errs = append(errs, xmlerrors.ConsistencyError("lineHasANameAndTransportMode",
					fmt.Sprintf("Line `%s` is missing a Name", id), el.Line, 1))
			}
			mode, hasMode := childText(el.InnerXml, "TransportMode")
			if !hasMode {
				errs = append(errs, xmlerrors.ConsistencyError("lineHasANameAndTransportMode",
					fmt.Sprintf("Line `%s` is missing a TransportMode", id), el.Line, 1))
			} else if !validTransportModes[strings.TrimSpace(mode)] {
				errs = append(errs, xmlerrors.ConsistencyError("lineHasANameAndTransportMode",
					fmt.Sprintf("Line `%s` has invalid TransportMode `%s`", id, mode), el.Line, 1))
			}
		}
		return errs
	})
}

// routeHasALineRef is a supplemental rule recovered from the teacher's
// ROUTE_3 business rule: every <Route> must carry a <LineRef>.
func routeHasALineRef(docs []document.Document, _ Config) []xmlerrors.ValidationError {
	return perDocument(docs, func(doc document.Document) []xmlerrors.ValidationError {
		var errs []xmlerrors.ValidationError
		for _, el := range xmlnav.FindAll(doc.Xml, "Route", 0, 0) {
			if len(xmlnav.FindChildren(el.InnerXml, "LineRef", 0, 0)) == 0 {
				id, _ := attr(el, "id")
				errs = append(errs, xmlerrors.ConsistencyError("routeHasALineRef",
					fmt.Sprintf("Route `%s` is missing a LineRef", id), el.Line, 1))
			}
		}
		return errs
	})
}
