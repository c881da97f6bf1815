package rules

import (
	"github.com/transitdata/netex-validator/document"
	"github.com/transitdata/netex-validator/xmlerrors"
	"github.com/transitdata/netex-validator/xmlnav"
)

// serviceJourneyHasAtLeastTwoPassingTimes is a supplemental rule recovered
// from the teacher's SERVICE_JOURNEY_5/6 business rules: a <passingTimes>
// block with fewer than two TimetabledPassingTime entries cannot describe a
// journey between stops.
func serviceJourneyHasAtLeastTwoPassingTimes(docs []document.Document, _ Config) []xmlerrors.ValidationError {
	return perDocument(docs, func(doc document.Document) []xmlerrors.ValidationError {
		var errs []xmlerrors.ValidationError
		for _, sj := range xmlnav.FindAll(doc.Xml, "ServiceJourney", 0, 0) {
			id, _ := attr(sj, "id")
			times := xmlnav.FindChildren(sj.InnerXml, "passingTimes", xmlnav.InnerBaseOffset(sj), xmlnav.InnerBaseLine(sj))
			if len(times) == 0 {
				errs = append(errs, xmlerrors.ConsistencyError("serviceJourneyHasAtLeastTwoPassingTimes",
					"ServiceJourney `"+id+"` has no passingTimes block", sj.Line, 1))
				continue
			}
			for _, pt := range times {
				n := len(xmlnav.FindChildren(pt.InnerXml, "TimetabledPassingTime", xmlnav.InnerBaseOffset(pt), xmlnav.InnerBaseLine(pt)))
				if n < 2 {
					errs = append(errs, xmlerrors.ConsistencyError("serviceJourneyHasAtLeastTwoPassingTimes",
						"ServiceJourney `"+id+"` has fewer than two TimetabledPassingTime entries", pt.Line, 1))
				}
			}
		}
		return errs
	})
}
