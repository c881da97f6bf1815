// Package netexfmt determines whether a document is NeTEx or SIRI by
// scanning a byte prefix for a telltale namespace substring.
package netexfmt

import (
	"bytes"

	"github.com/transitdata/netex-validator/types"
)

const (
	sampleWindow = 4096

	netexNamespace = "http://www.netex.org.uk/netex"
	siriNamespace  = "http://www.siri.org.uk/siri"
)

// Detect scans the first 4 KiB of xml for the NeTEx or SIRI namespace
// substring. NeTEx wins when both are present, because NeTEx documents
// import SIRI types for real-time extensions.
func Detect(xml string) (types.Format, error) {
	n := len(xml)
	if n > sampleWindow {
		n = sampleWindow
	}
	sample := xml[:n]

	if bytes.Contains([]byte(sample), []byte(netexNamespace)) {
		return types.FormatNetex, nil
	}
	if bytes.Contains([]byte(sample), []byte(siriNamespace)) {
		return types.FormatSiri, nil
	}
	return "", &types.UnsupportedFormatError{}
}
