package netexfmt

import (
	"strings"
	"testing"

	"github.com/transitdata/netex-validator/types"
)

func TestDetectNetex(t *testing.T) {
	xml := `<PublicationDelivery xmlns="http://www.netex.org.uk/netex"></PublicationDelivery>`
	f, err := Detect(xml)
	if err != nil || f != types.FormatNetex {
		t.Fatalf("got %v, %v", f, err)
	}
}

func TestDetectSiri(t *testing.T) {
	xml := `<Siri xmlns="http://www.siri.org.uk/siri"></Siri>`
	f, err := Detect(xml)
	if err != nil || f != types.FormatSiri {
		t.Fatalf("got %v, %v", f, err)
	}
}

func TestDetectNetexPreferredWhenBothPresent(t *testing.T) {
	xml := `<PublicationDelivery xmlns="http://www.netex.org.uk/netex" xmlns:siri="http://www.siri.org.uk/siri"></PublicationDelivery>`
	f, err := Detect(xml)
	if err != nil || f != types.FormatNetex {
		t.Fatalf("expected netex preferred, got %v, %v", f, err)
	}
}

func TestDetectUnknownFails(t *testing.T) {
	_, err := Detect(`<Foo/>`)
	if err == nil {
		t.Fatal("expected error for unrecognized namespace")
	}
	if !strings.Contains(err.Error(), "netex") {
		t.Errorf("expected message naming netex namespace, got %q", err.Error())
	}
}

func TestDetectOnlyScansPrefix(t *testing.T) {
	padding := strings.Repeat("x", sampleWindow+10)
	xml := "<Foo>" + padding + `<ns xmlns="http://www.netex.org.uk/netex"/>`
	if _, err := Detect(xml); err == nil {
		t.Fatal("expected detection to fail when namespace appears past the sample window")
	}
}
