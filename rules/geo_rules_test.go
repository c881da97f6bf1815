package rules

import (
	"testing"

	"github.com/transitdata/netex-validator/document"
)

func frameDefaultsWGS84(inner string) string {
	return `<FrameDefaults><DefaultLocationSystem>EPSG:4326</DefaultLocationSystem></FrameDefaults>` + inner
}

func TestStopPlaceQuayDistanceIsReasonableFlagsFarQuay(t *testing.T) {
	xml := frameDefaultsWGS84(`
	<StopPlace id="SP1" version="1">
		<Centroid><Location><Latitude>59.9</Latitude><Longitude>10.7</Longitude></Location></Centroid>
		<Quays>
			<Quay id="Q1" version="1">
				<Centroid><Location><Latitude>60.9</Latitude><Longitude>10.7</Longitude></Location></Centroid>
			</Quay>
		</Quays>
	</StopPlace>`)
	docs := []document.Document{{FileName: "a.xml", Xml: xml}}
	errs := stopPlaceQuayDistanceIsReasonable(docs, nil)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %+v", len(errs), errs)
	}
}

func TestStopPlaceQuayDistanceIsReasonableSkippedWithoutWGS84(t *testing.T) {
	xml := `
	<StopPlace id="SP1" version="1">
		<Centroid><Location><Latitude>59.9</Latitude><Longitude>10.7</Longitude></Location></Centroid>
		<Quays>
			<Quay id="Q1" version="1">
				<Centroid><Location><Latitude>60.9</Latitude><Longitude>10.7</Longitude></Location></Centroid>
			</Quay>
		</Quays>
	</StopPlace>`
	docs := []document.Document{{FileName: "a.xml", Xml: xml}}
	errs := stopPlaceQuayDistanceIsReasonable(docs, nil)
	if len(errs) != 1 || errs[0].Category != "skipped" {
		t.Fatalf("expected a single skipped info, got %+v", errs)
	}
}

func TestLocationsAreReferencingTheSamePointWithinThreshold(t *testing.T) {
	docs := []document.Document{{FileName: "a.xml", Xml: `
	<root>
		<StopPlace id="SP1" version="1">
			<Centroid><Location><Latitude>59.9000</Latitude><Longitude>10.7000</Longitude></Location></Centroid>
		</StopPlace>
		<ScheduledStopPoint id="SSP1" version="1">
			<Location><Latitude>59.9001</Latitude><Longitude>10.7001</Longitude></Location>
		</ScheduledStopPoint>
		<PassengerStopAssignment id="PSA1" version="1">
			<StopPlaceRef ref="SP1"/>
			<ScheduledStopPointRef ref="SSP1"/>
		</PassengerStopAssignment>
	</root>`}}
	errs := locationsAreReferencingTheSamePoint(docs, nil)
	if len(errs) != 0 {
		t.Fatalf("expected 0 errors, got %d: %+v", len(errs), errs)
	}
}

func TestLocationsAreReferencingTheSamePointUnresolvedEndpoint(t *testing.T) {
	docs := []document.Document{{FileName: "a.xml", Xml: `
	<PassengerStopAssignment id="PSA1" version="1">
		<StopPlaceRef ref="SPMissing"/>
		<ScheduledStopPointRef ref="SSPMissing"/>
	</PassengerStopAssignment>`}}
	errs := locationsAreReferencingTheSamePoint(docs, nil)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %+v", len(errs), errs)
	}
}
