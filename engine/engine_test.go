package engine

import (
	"context"
	"testing"

	"github.com/transitdata/netex-validator/document"
	"github.com/transitdata/netex-validator/progress"
	"github.com/transitdata/netex-validator/types"
)

func netexDoc(fileName, xml string) document.Document {
	return document.Document{FileName: fileName, Xml: `<PublicationDelivery xmlns="http://www.netex.org.uk/netex">` + xml + `</PublicationDelivery>`}
}

func TestValidateDocumentsEmptyReturnsZeroResult(t *testing.T) {
	res, err := ValidateDocuments(context.Background(), nil, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalFiles != 0 || res.PassedFiles != 0 || res.FailedFiles != 0 {
		t.Fatalf("expected zero-filled result, got %+v", res)
	}
}

func TestValidateDocumentsLineReferencedAcrossFiles(t *testing.T) {
	docs := []document.Document{
		netexDoc("lines.xml", `<ServiceFrame id="SF:lines" version="1"><lines><Line id="L1" version="1"/></lines></ServiceFrame>`),
		netexDoc("routes.xml", `<ServiceFrame id="SF:routes" version="1"><prerequisites><ServiceFrameRef ref="SF:lines"/></prerequisites><routes><Route><LineRef ref="L1"/></Route></routes></ServiceFrame>`),
	}

	res, err := ValidateDocuments(context.Background(), docs, Options{
		Profile: "netex-rules-only",
		Rules:   []string{"everyLineIsReferenced"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalErrors != 0 {
		t.Fatalf("expected 0 errors, got %d: %+v", res.TotalErrors, res.Files)
	}
	if res.PassedFiles != 2 {
		t.Fatalf("expected both files to pass, got %+v", res.Files)
	}
}

func TestValidateDocumentsOrphanLineAttributedToOwningFile(t *testing.T) {
	docs := []document.Document{
		netexDoc("a.xml", `<ServiceFrame id="SF1" version="1"><lines><Line id="L1" version="1"/></lines></ServiceFrame>`),
		netexDoc("b.xml", `<ServiceFrame id="SF2" version="1"><routes><Route><LineRef ref="L99"/></Route></routes></ServiceFrame>`),
	}

	res, err := ValidateDocuments(context.Background(), docs, Options{
		Profile: "netex-rules-only",
		Rules:   []string{"everyLineIsReferenced"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalErrors != 1 {
		t.Fatalf("expected 1 error, got %d: %+v", res.TotalErrors, res.Files)
	}

	found := false
	for _, f := range res.Files {
		for _, e := range f.Errors {
			if f.FileName != "a.xml" {
				t.Errorf("expected orphan error attributed to a.xml, got %s", f.FileName)
			}
			found = true
			_ = e
		}
	}
	if !found {
		t.Fatal("expected to find the orphan error in some file's Errors")
	}
}

func TestValidateDocumentsSkipRulesExcludesRuleSource(t *testing.T) {
	docs := []document.Document{
		netexDoc("a.xml", `<ServiceFrame id="SF1" version="1"><routes><Route><LineRef ref="L99"/></Route></routes></ServiceFrame>`),
	}

	res, err := ValidateDocuments(context.Background(), docs, Options{
		Profile:   "netex-rules-only",
		Rules:     []string{"everyLineIsReferenced"},
		SkipRules: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, f := range res.Files {
		for _, e := range f.Errors {
			if e.Source == types.SourceRule {
				t.Fatalf("expected no rule-source errors with SkipRules, got %+v", e)
			}
		}
	}
}

func TestValidateDocumentsRulesRunNamesEveryExecutedRule(t *testing.T) {
	docs := []document.Document{
		netexDoc("a.xml", `<ServiceFrame id="SF1" version="1"><lines><Line id="L1" version="1"/></lines></ServiceFrame>`),
	}

	res, err := ValidateDocuments(context.Background(), docs, Options{
		Profile: "netex-rules-only",
		Rules:   []string{"everyStopPlaceHasAName"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Files) != 1 {
		t.Fatalf("expected 1 file result, got %d", len(res.Files))
	}
	found := false
	for _, n := range res.Files[0].RulesRun {
		if n == "everyStopPlaceHasAName" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected everyStopPlaceHasAName in RulesRun, got %v", res.Files[0].RulesRun)
	}
}

func TestValidateDocumentsEmitsProgressEvents(t *testing.T) {
	docs := []document.Document{
		netexDoc("a.xml", `<ServiceFrame id="SF1" version="1"><lines><Line id="L1" version="1"/></lines></ServiceFrame>`),
	}

	var phases []progress.Phase
	_, err := ValidateDocuments(context.Background(), docs, Options{
		Profile: "netex-rules-only",
		Rules:   []string{"everyLineIsReferenced"},
		OnProgress: func(ev progress.Event) {
			phases = append(phases, ev.Phase)
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantLast := progress.PhaseComplete
	if len(phases) == 0 || phases[len(phases)-1] != wantLast {
		t.Fatalf("expected last phase to be %q, got %v", wantLast, phases)
	}

	sawCrossDoc := false
	for _, p := range phases {
		if p == progress.PhaseCrossDoc {
			sawCrossDoc = true
		}
	}
	if !sawCrossDoc {
		t.Fatalf("expected a cross-doc phase event since everyLineIsReferenced is cross-document, got %v", phases)
	}
}

func TestValidateDocumentsUnknownRuleIsSetupError(t *testing.T) {
	docs := []document.Document{netexDoc("a.xml", `<ServiceFrame id="SF1" version="1"/>`)}
	_, err := ValidateDocuments(context.Background(), docs, Options{
		Profile: "netex-rules-only",
		Rules:   []string{"notARealRule"},
	})
	if err == nil {
		t.Fatal("expected an error for an unknown rule name")
	}
}

func TestValidateDocumentsUnknownProfileIsSetupError(t *testing.T) {
	docs := []document.Document{netexDoc("a.xml", `<ServiceFrame id="SF1" version="1"/>`)}
	_, err := ValidateDocuments(context.Background(), docs, Options{Profile: "not-a-profile"})
	if err == nil {
		t.Fatal("expected an error for an unknown profile name")
	}
}
