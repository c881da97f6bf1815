package rules

import "github.com/transitdata/netex-validator/types"

var netexOnly = []types.Format{types.FormatNetex}

// DefaultRegistry returns a registry containing the twelve rules §4.7
// names plus the three supplemental rules recovered from the teacher's
// broader rule catalogue (see SPEC_FULL.md §5). Registration order is the
// order errors surface within a file per the determinism testable
// property.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(Descriptor{
		Name: "everyLineIsReferenced", DisplayName: "Every Line is referenced",
		Description: "Every <Line>@id must be referenced by some LineRef in the dataset.",
		Category:    "REFERENCE", Formats: netexOnly, Run: everyLineIsReferenced,
	})
	r.Register(Descriptor{
		Name: "everyStopPlaceIsReferenced", DisplayName: "Every StopPlace is referenced",
		Description: "Every <StopPlace>@id must be referenced by some StopPlaceRef in the dataset.",
		Category:    "REFERENCE", Formats: netexOnly, Run: everyStopPlaceIsReferenced,
	})
	r.Register(Descriptor{
		Name: "everyStopPlaceHasAName", DisplayName: "Every StopPlace has a name",
		Description: "Every StopPlace must have an @id and a Name or ShortName.",
		Category:    "NAMING", Formats: netexOnly, Run: everyStopPlaceHasAName,
	})
	r.Register(Descriptor{
		Name: "everyScheduledStopPointHasAName", DisplayName: "Every ScheduledStopPoint has a name",
		Description: "Every ScheduledStopPoint must have an @id and a Name or ShortName.",
		Category:    "NAMING", Formats: netexOnly, Run: everyScheduledStopPointHasAName,
	})
	r.Register(Descriptor{
		Name: "everyStopPlaceHasACorrectStopPlaceType", DisplayName: "StopPlace has a correct type",
		Description: "StopPlaceType, when present, must be one of the recognized NeTEx values.",
		Category:    "NAMING", Formats: netexOnly, Run: everyStopPlaceHasACorrectStopPlaceType,
	})
	r.Register(Descriptor{
		Name: "everyStopPointHasArrivalAndDepartureTime", DisplayName: "Passing times have arrival/departure",
		Description: "First passing time needs a departure, last needs an arrival, others need both.",
		Category:    "TIMETABLE", Formats: netexOnly, Run: everyStopPointHasArrivalAndDepartureTime,
	})
	r.Register(Descriptor{
		Name: "passingTimesIsNotDecreasing", DisplayName: "Passing times do not decrease",
		Description: "Arrival/departure times and day offsets must not decrease along a ServiceJourney.",
		Category:    "TIMETABLE", Formats: netexOnly, Run: passingTimesIsNotDecreasing,
	})
	r.Register(Descriptor{
		Name: "stopPlaceQuayDistanceIsReasonable", DisplayName: "Quay distance is reasonable",
		Description: "A Quay's centroid should sit within a configurable distance of its StopPlace.",
		Category:    "GEOGRAPHY", Formats: netexOnly, Run: stopPlaceQuayDistanceIsReasonable,
	})
	r.Register(Descriptor{
		Name: "frameDefaultsHaveALocaleAndTimeZone", DisplayName: "FrameDefaults locale is valid",
		Description: "DefaultLocale's time zones and language, when present, must be valid.",
		Category:    "LOCALE", Formats: netexOnly, Run: frameDefaultsHaveALocaleAndTimeZone,
	})
	r.Register(Descriptor{
		Name: "locationsAreReferencingTheSamePoint", DisplayName: "Stop assignment endpoints coincide",
		Description: "PassengerStopAssignment's StopPlace and ScheduledStopPoint must be geographically close.",
		Category:    "GEOGRAPHY", Formats: netexOnly, Run: locationsAreReferencingTheSamePoint,
	})
	r.Register(Descriptor{
		Name: "netexKeyRefConstraints", DisplayName: "XSD keyref constraints resolve",
		Description: "Every xsd:keyref in the schema must resolve across the dataset.",
		Category:    "SCHEMA", Formats: netexOnly, Run: netexKeyRefConstraints,
	})
	r.Register(Descriptor{
		Name: "netexPrerequisitesAreSatisfied", DisplayName: "Prerequisites are satisfied",
		Description: "Declared frame prerequisites must resolve, and cross-file references must be declared.",
		Category:    "SCHEMA", Formats: netexOnly, Run: netexPrerequisitesAreSatisfied,
	})
	r.Register(Descriptor{
		Name: "netexUniqueConstraints", DisplayName: "XSD unique constraints hold",
		Description: "Every xsd:unique in the schema must hold per-document and across prerequisite frames.",
		Category:    "SCHEMA", Formats: netexOnly, Run: netexUniqueConstraints,
	})

	// Supplemental rules recovered from the teacher's business-rule
	// catalogue (LINE_2/LINE_4, ROUTE_3, SERVICE_JOURNEY_5/6).
	r.Register(Descriptor{
		Name: "lineHasANameAndTransportMode", DisplayName: "Line has a name and transport mode",
		Description: "Every Line must have a Name and a recognized TransportMode.",
		Category:    "NAMING", Formats: netexOnly, Run: lineHasANameAndTransportMode,
	})
	r.Register(Descriptor{
		Name: "routeHasALineRef", DisplayName: "Route has a LineRef",
		Description: "Every Route must reference its parent Line.",
		Category:    "REFERENCE", Formats: netexOnly, Run: routeHasALineRef,
	})
	r.Register(Descriptor{
		Name: "serviceJourneyHasAtLeastTwoPassingTimes", DisplayName: "ServiceJourney has at least two passing times",
		Description: "A ServiceJourney's passingTimes block must have at least two TimetabledPassingTime entries.",
		Category:    "TIMETABLE", Formats: netexOnly, Run: serviceJourneyHasAtLeastTwoPassingTimes,
	})

	return r
}

// DefaultProfiles returns the nine stable profile names §6 lists.
func DefaultProfiles() *ProfileRegistry {
	pr := NewProfileRegistry()

	allNetexRules := DefaultRegistry().Names()

	pr.Register(Profile{Name: "netex-fast-v1.2", DisplayName: "NeTEx fast (1.2)", Format: types.FormatNetex,
		SchemaID: "netex@1.2", EnabledRules: []string{
			"everyLineIsReferenced", "everyStopPlaceIsReferenced", "everyStopPlaceHasAName",
			"everyScheduledStopPointHasAName", "lineHasANameAndTransportMode", "routeHasALineRef",
		}})
	pr.Register(Profile{Name: "netex-full-v1.2", DisplayName: "NeTEx full (1.2)", Format: types.FormatNetex,
		SchemaID: "netex@1.2", EnabledRules: allNetexRules})
	pr.Register(Profile{Name: "epip-v1.1.2", DisplayName: "EPIP (1.1.2)", Format: types.FormatNetex,
		SchemaID: "epip@1.1.2", EnabledRules: allNetexRules})
	pr.Register(Profile{Name: "netex-schema-only-v1.2", DisplayName: "NeTEx schema only (1.2)", Format: types.FormatNetex,
		SchemaID: "netex@1.2", EnabledRules: nil})
	pr.Register(Profile{Name: "netex-rules-only", DisplayName: "NeTEx rules only", Format: types.FormatNetex,
		SchemaID: "", EnabledRules: allNetexRules})

	pr.Register(Profile{Name: "siri-v2.2", DisplayName: "SIRI (2.2)", Format: types.FormatSiri,
		SchemaID: "siri@2.2", EnabledRules: nil})
	pr.Register(Profile{Name: "siri-v2.1", DisplayName: "SIRI (2.1)", Format: types.FormatSiri,
		SchemaID: "siri@2.1", EnabledRules: nil})
	pr.Register(Profile{Name: "siri-schema-only-v2.2", DisplayName: "SIRI schema only (2.2)", Format: types.FormatSiri,
		SchemaID: "siri@2.2", EnabledRules: nil})
	pr.Register(Profile{Name: "siri-rules-only", DisplayName: "SIRI rules only", Format: types.FormatSiri,
		SchemaID: "", EnabledRules: nil})

	return pr
}
