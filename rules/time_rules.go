package rules

import (
	"fmt"
	"regexp"
	"time"

	"github.com/transitdata/netex-validator/document"
	"github.com/transitdata/netex-validator/xmlerrors"
	"github.com/transitdata/netex-validator/xmlnav"
)

// everyStopPointHasArrivalAndDepartureTime checks, inside every
// <ServiceJourney>/<passingTimes>, that the first TimetabledPassingTime has
// a DepartureTime, the last has an ArrivalTime, and every intermediate one
// has both.
func everyStopPointHasArrivalAndDepartureTime(docs []document.Document, _ Config) []xmlerrors.ValidationError {
	return perDocument(docs, func(doc document.Document) []xmlerrors.ValidationError {
		var errs []xmlerrors.ValidationError
		for _, sj := range xmlnav.FindAll(doc.Xml, "ServiceJourney", 0, 0) {
			for _, times := range xmlnav.FindChildren(sj.InnerXml, "passingTimes", xmlnav.InnerBaseOffset(sj), xmlnav.InnerBaseLine(sj)) {
				passings := xmlnav.FindChildren(times.InnerXml, "TimetabledPassingTime", xmlnav.InnerBaseOffset(times), xmlnav.InnerBaseLine(times))
				for i, pt := range passings {
					_, hasDep := childText(pt.InnerXml, "DepartureTime")
					_, hasArr := childText(pt.InnerXml, "ArrivalTime")
					switch {
					case i == 0 && !hasDep:
						errs = append(errs, xmlerrors.ConsistencyError("everyStopPointHasArrivalAndDepartureTime",
							"first TimetabledPassingTime is missing a DepartureTime", pt.Line, 1))
					case i == len(passings)-1 && !hasArr:
						errs = append(errs, xmlerrors.ConsistencyError("everyStopPointHasArrivalAndDepartureTime",
							"last TimetabledPassingTime is missing an ArrivalTime", pt.Line, 1))
					case i != 0 && i != len(passings)-1 && (!hasDep || !hasArr):
						errs = append(errs, xmlerrors.ConsistencyError("everyStopPointHasArrivalAndDepartureTime",
							"intermediate TimetabledPassingTime must have both ArrivalTime and DepartureTime", pt.Line, 1))
					}
				}
			}
		}
		return errs
	})
}

// passingTimesIsNotDecreasing checks, within each <passingTimes>, that
// consecutive entries with equal ArrivalDayOffset never have a new
// ArrivalTime earlier than the previous DepartureTime, and that neither day
// offset ever decreases along the sequence. Zero-padded HH:MM:SS string
// comparison is sufficient.
func passingTimesIsNotDecreasing(docs []document.Document, _ Config) []xmlerrors.ValidationError {
	return perDocument(docs, func(doc document.Document) []xmlerrors.ValidationError {
		var errs []xmlerrors.ValidationError
		for _, sj := range xmlnav.FindAll(doc.Xml, "ServiceJourney", 0, 0) {
			for _, times := range xmlnav.FindChildren(sj.InnerXml, "passingTimes", xmlnav.InnerBaseOffset(sj), xmlnav.InnerBaseLine(sj)) {
				passings := xmlnav.FindChildren(times.InnerXml, "TimetabledPassingTime", xmlnav.InnerBaseOffset(times), xmlnav.InnerBaseLine(times))

				var prevDeparture string
				var prevArrivalOffset, prevDepartureOffset int
				havePrev := false

				for _, pt := range passings {
					arrival, _ := childText(pt.InnerXml, "ArrivalTime")
					departure, _ := childText(pt.InnerXml, "DepartureTime")
					arrivalOffset := dayOffset(pt.InnerXml, "ArrivalDayOffset")
					departureOffset := dayOffset(pt.InnerXml, "DepartureDayOffset")

					if havePrev {
						if arrivalOffset == prevArrivalOffset && arrival != "" && prevDeparture != "" && arrival < prevDeparture {
							errs = append(errs, xmlerrors.ConsistencyError("passingTimesIsNotDecreasing",
								fmt.Sprintf("ArrivalTime `%s` is earlier than the previous DepartureTime `%s`", arrival, prevDeparture), pt.Line, 1))
						}
						if arrivalOffset < prevArrivalOffset || departureOffset < prevDepartureOffset {
							errs = append(errs, xmlerrors.ConsistencyError("passingTimesIsNotDecreasing",
								"day offset decreases along the passing-time sequence", pt.Line, 1))
						}
					}
					if departure != "" {
						prevDeparture = departure
					}
					prevArrivalOffset = arrivalOffset
					prevDepartureOffset = departureOffset
					havePrev = true
				}
			}
		}
		return errs
	})
}

func dayOffset(xml, name string) int {
	s, ok := childText(xml, name)
	if !ok {
		return 0
	}
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	if err != nil {
		return 0
	}
	return n
}

var (
	tzOffsetRe     = regexp.MustCompile(`^[+-]\d{1,2}$`)
	tzUTCOffsetRe  = regexp.MustCompile(`^(UTC|GMT)[+-]\d{1,2}(:\d{2})?$`)
	iso6391Re      = regexp.MustCompile(`^[a-zA-Z]{2}$`)
)

var whitelistedAbbreviations = map[string]bool{
	"CET": true, "CEST": true, "EET": true, "EEST": true, "WET": true, "WEST": true,
	"GMT": true, "UTC": true, "BST": true, "IST": true, "MSK": true, "JST": true,
	"KST": true, "CST": true, "EST": true, "PST": true, "MST": true, "HST": true,
	"AKST": true, "AKDT": true, "CDT": true, "EDT": true, "MDT": true, "PDT": true,
	"HDT": true, "NZST": true, "NZDT": true, "AEST": true, "AEDT": true, "ACST": true,
	"ACDT": true, "AWST": true, "SST": true, "AST": true, "NST": true, "NDT": true,
	"ADT": true, "ChST": true,
}

// frameDefaultsHaveALocaleAndTimeZone validates FrameDefaults/DefaultLocale
// when present: zone offsets match ^[+-]\d{1,2}$, zone names are either a
// valid IANA zone, a whitelisted abbreviation, or a UTC/GMT offset form, and
// DefaultLanguage is a two-letter code.
func frameDefaultsHaveALocaleAndTimeZone(docs []document.Document, _ Config) []xmlerrors.ValidationError {
	return perDocument(docs, func(doc document.Document) []xmlerrors.ValidationError {
		fd, ok := xmlnav.FindFrameDefaults(doc.Xml)
		if !ok {
			return []xmlerrors.ValidationError{xmlerrors.SkippedInfo("frameDefaultsHaveALocaleAndTimeZone",
				"no FrameDefaults element present")}
		}
		locales := xmlnav.FindChildren(fd.InnerXml, "DefaultLocale", xmlnav.InnerBaseOffset(fd), xmlnav.InnerBaseLine(fd))
		if len(locales) == 0 {
			return nil
		}
		locale := locales[0]
		var errs []xmlerrors.ValidationError

		check := func(name string, validate func(string) bool) {
			v, ok := childText(locale.InnerXml, name)
			if !ok || v == "" {
				return
			}
			if !validate(v) {
				errs = append(errs, xmlerrors.ConsistencyError("frameDefaultsHaveALocaleAndTimeZone",
					fmt.Sprintf("%s `%s` is not valid", name, v), locale.Line, 1))
			}
		}

		check("TimeZoneOffset", func(v string) bool { return tzOffsetRe.MatchString(v) })
		check("SummerTimeZoneOffset", func(v string) bool { return tzOffsetRe.MatchString(v) })
		check("TimeZone", isValidZoneName)
		check("SummerTimeZone", isValidZoneName)
		check("DefaultLanguage", func(v string) bool { return iso6391Re.MatchString(v) })

		return errs
	})
}

func isValidZoneName(v string) bool {
	if whitelistedAbbreviations[v] {
		return true
	}
	if tzUTCOffsetRe.MatchString(v) {
		return true
	}
	if _, err := time.LoadLocation(v); err == nil {
		return true
	}
	return false
}
