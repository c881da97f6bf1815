package rules

import (
	"testing"

	"github.com/transitdata/netex-validator/document"
)

const constraintXsd = `
<xsd:schema xmlns:xsd="http://www.w3.org/2001/XMLSchema">
	<xsd:element name="PublicationDelivery">
		<xsd:key name="StopPlaceKey">
			<xsd:selector xpath=".//StopPlace"/>
			<xsd:field xpath="@id"/>
		</xsd:key>
		<xsd:keyref name="StopPlaceRefKeyref" refer="StopPlaceKey">
			<xsd:selector xpath=".//StopPlaceRef"/>
			<xsd:field xpath="@ref"/>
		</xsd:keyref>
		<xsd:unique name="StopPlaceUnique">
			<xsd:selector xpath=".//StopPlace"/>
			<xsd:field xpath="@id"/>
		</xsd:unique>
	</xsd:element>
</xsd:schema>`

func TestNetexKeyRefConstraintsResolvesAcrossDocuments(t *testing.T) {
	docs := []document.Document{
		{FileName: "a.xml", Xml: `<StopPlace id="SP1" version="1"/>`},
		{FileName: "b.xml", Xml: `<StopPlaceRef ref="SP1"/>`},
	}
	cfg := Config{"xsdContent": constraintXsd}
	errs := netexKeyRefConstraints(docs, cfg)
	if len(errs) != 0 {
		t.Fatalf("expected 0 errors, got %d: %+v", len(errs), errs)
	}
}

func TestNetexKeyRefConstraintsFlagsDangling(t *testing.T) {
	docs := []document.Document{
		{FileName: "a.xml", Xml: `<StopPlaceRef ref="SPMissing"/>`},
	}
	cfg := Config{"xsdContent": constraintXsd}
	errs := netexKeyRefConstraints(docs, cfg)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %+v", len(errs), errs)
	}
}

func TestNetexKeyRefConstraintsVersionRefEscapeHatch(t *testing.T) {
	docs := []document.Document{
		{FileName: "a.xml", Xml: `<StopPlaceRef ref="SPMissing" versionRef="1.0"/>`},
	}
	cfg := Config{"xsdContent": constraintXsd}
	errs := netexKeyRefConstraints(docs, cfg)
	if len(errs) != 0 {
		t.Fatalf("expected 0 errors (versionRef escape hatch), got %d: %+v", len(errs), errs)
	}
}

func TestNetexUniqueConstraintsFlagsPerDocumentDuplicate(t *testing.T) {
	docs := []document.Document{
		{FileName: "a.xml", Xml: `
			<root>
				<StopPlace id="SP1" version="1"/>
				<StopPlace id="SP1" version="1"/>
			</root>`},
	}
	cfg := Config{"xsdContent": constraintXsd}
	errs := netexUniqueConstraints(docs, cfg)
	if len(errs) != 1 {
		t.Fatalf("expected exactly 1 error, got %d: %+v", len(errs), errs)
	}
}

func TestNetexUniqueConstraintsSkippedWithoutXsd(t *testing.T) {
	docs := []document.Document{{FileName: "a.xml", Xml: `<StopPlace id="SP1" version="1"/>`}}
	errs := netexUniqueConstraints(docs, Config{})
	if len(errs) != 1 || errs[0].Category != "skipped" {
		t.Fatalf("expected a single skipped info, got %+v", errs)
	}
}
