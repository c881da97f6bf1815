package xsdconstraint

import "testing"

const sampleXsd = `<xsd:schema>
  <xsd:element name="root">
    <xsd:unique name="UniqueStopPlaceId">
      <xsd:selector xpath=".//StopPlace"/>
      <xsd:field xpath="@id"/>
    </xsd:unique>
    <xsd:keyref name="LineRefKeyRef" refer="LineKey">
      <xsd:selector xpath=".//LineRef"/>
      <xsd:field xpath="@ref"/>
    </xsd:keyref>
  </xsd:element>
</xsd:schema>`

func TestExtractFindsUniqueAndKeyref(t *testing.T) {
	constraints := Extract(sampleXsd)
	if len(constraints) != 2 {
		t.Fatalf("expected 2 constraints, got %d", len(constraints))
	}
	var unique, keyref *Constraint
	for i := range constraints {
		switch constraints[i].Kind {
		case KindUnique:
			unique = &constraints[i]
		case KindKeyref:
			keyref = &constraints[i]
		}
	}
	if unique == nil || unique.Name != "UniqueStopPlaceId" || unique.Selector != ".//StopPlace" {
		t.Fatalf("got %+v", unique)
	}
	if keyref == nil || keyref.Refer != "LineKey" {
		t.Fatalf("got %+v", keyref)
	}
}

func TestResolveSelectorAnywhere(t *testing.T) {
	xml := `<root><a><StopPlace id="SP1"/></a><StopPlace id="SP2"/></root>`
	els := ResolveSelector(xml, ".//StopPlace")
	if len(els) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(els))
	}
}

func TestResolveFieldAttribute(t *testing.T) {
	xml := `<StopPlace id="SP1"/>`
	els := ResolveSelector(xml, ".//StopPlace")
	v, ok := ResolveField(els[0], "@id")
	if !ok || v != "SP1" {
		t.Fatalf("got %q, %v", v, ok)
	}
}

func TestResolveFieldChildText(t *testing.T) {
	xml := `<Route><LineRef ref="L1"/></Route>`
	els := ResolveSelector(xml, "Route")
	v, ok := ResolveField(els[0], "LineRef/@ref")
	if !ok || v != "L1" {
		t.Fatalf("got %q, %v", v, ok)
	}
}

func TestResolveFieldEmptyIsNotOk(t *testing.T) {
	xml := `<StopPlace></StopPlace>`
	els := ResolveSelector(xml, ".//StopPlace")
	_, ok := ResolveField(els[0], "text()")
	if ok {
		t.Fatal("expected empty text content to resolve to not-ok")
	}
}
