package rules

import (
	"strings"
	"testing"

	"github.com/transitdata/netex-validator/document"
)

func TestEveryLineIsReferencedFindsOrphan(t *testing.T) {
	docs := []document.Document{{FileName: "a.xml", Xml: `<root>
		<Line id="L1" version="1"/>
		<Line id="L2" version="1"/>
		<LineRef ref="L1"/>
	</root>`}}
	errs := everyLineIsReferenced(docs, nil)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %+v", len(errs), errs)
	}
	if want := "L2"; !strings.Contains(errs[0].Message, want) {
		t.Errorf("expected message to mention %q, got %q", want, errs[0].Message)
	}
}

func TestEveryLineIsReferencedAcrossDocuments(t *testing.T) {
	docs := []document.Document{
		{FileName: "a.xml", Xml: `<root><Line id="L1" version="1"/></root>`},
		{FileName: "b.xml", Xml: `<root><LineRef ref="L1"/></root>`},
	}
	errs := everyLineIsReferenced(docs, nil)
	if len(errs) != 0 {
		t.Fatalf("expected 0 errors, got %d: %+v", len(errs), errs)
	}
}

func TestNetexPrerequisitesAreSatisfiedMissingPrerequisite(t *testing.T) {
	docs := []document.Document{{FileName: "a.xml", Xml: `
		<ServiceFrame id="SF1" version="1">
			<prerequisites>
				<ResourceFrameRef ref="RF1" version="1"/>
			</prerequisites>
		</ServiceFrame>`}}
	errs := netexPrerequisitesAreSatisfied(docs, nil)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %+v", len(errs), errs)
	}
}

func TestNetexPrerequisitesAreSatisfiedResolvedPrerequisite(t *testing.T) {
	docs := []document.Document{{FileName: "a.xml", Xml: `
		<root>
		<ResourceFrame id="RF1" version="1"></ResourceFrame>
		<ServiceFrame id="SF1" version="1">
			<prerequisites>
				<ResourceFrameRef ref="RF1" version="1"/>
			</prerequisites>
		</ServiceFrame>
		</root>`}}
	errs := netexPrerequisitesAreSatisfied(docs, nil)
	if len(errs) != 0 {
		t.Fatalf("expected 0 errors, got %d: %+v", len(errs), errs)
	}
}
