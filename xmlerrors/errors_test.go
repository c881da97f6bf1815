package xmlerrors

import (
	"strings"
	"testing"

	"github.com/transitdata/netex-validator/types"
)

func TestFactoriesFixSeverityAndCategory(t *testing.T) {
	cases := []struct {
		name     string
		err      ValidationError
		severity types.Severity
		category types.Category
		source   types.Source
	}{
		{"consistency", ConsistencyError("r", "m", 1, 1), types.Error, types.CategoryConsistency, types.SourceRule},
		{"quality", QualityError("r", "m", 1, 1), types.Warning, types.CategoryQuality, types.SourceRule},
		{"notFound", NotFoundError("r", "m", 1, 1), types.Error, types.CategoryNotFound, types.SourceRule},
		{"general", GeneralError("r", "m"), types.Error, types.CategoryGeneral, types.SourceRule},
		{"skipped", SkippedInfo("r", "m"), types.Info, types.CategorySkipped, types.SourceRule},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if c.err.Severity != c.severity {
				t.Errorf("severity: got %v, want %v", c.err.Severity, c.severity)
			}
			if c.err.Category != c.category {
				t.Errorf("category: got %v, want %v", c.err.Category, c.category)
			}
			if c.err.Source != c.source {
				t.Errorf("source: got %v, want %v", c.err.Source, c.source)
			}
		})
	}
}

func TestXSDErrorStripsNamespaceURI(t *testing.T) {
	e := XSDError("cvc-complex-type.2.4.a: Invalid content was found starting with element '{http://www.netex.org.uk/netex}Name'.", 10, 3)
	if strings.Contains(e.Message, "{http://www.netex.org.uk/netex}") {
		t.Errorf("namespace URI was not stripped: %q", e.Message)
	}
	if e.Source != types.SourceXSD || e.Rule != "" {
		t.Errorf("expected xsd source and no rule, got source=%v rule=%q", e.Source, e.Rule)
	}
	if e.Line != 10 || e.Column != 3 {
		t.Errorf("expected position preserved, got %d:%d", e.Line, e.Column)
	}
}

func TestXSDErrorBackticksQuotedIdentifiers(t *testing.T) {
	e := XSDError("Element 'Name' is not a valid child.", 1, 1)
	if !strings.Contains(e.Message, "`Name`") {
		t.Errorf("expected backtick-wrapped identifier, got %q", e.Message)
	}
}

func TestXSDErrorRewritesExpectedOneOf(t *testing.T) {
	e := XSDError("Expected is one of ( Name, ShortName, TransportMode ).", 1, 1)
	if !strings.Contains(e.Message, "`Name`") || !strings.Contains(e.Message, "`ShortName`") {
		t.Errorf("expected backtick-wrapped list, got %q", e.Message)
	}
}

func TestXSDErrorRewritesExpectedSingle(t *testing.T) {
	e := XSDError("Expected is ( Name ).", 1, 1)
	if !strings.Contains(e.Message, "Expected is (`Name`)") {
		t.Errorf("got %q", e.Message)
	}
}
