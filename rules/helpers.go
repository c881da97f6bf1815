package rules

import (
	"strconv"
	"strings"

	"github.com/transitdata/netex-validator/xmlnav"
)

func childText(xml, name string) (string, bool) {
	return xmlnav.GetChildText(xml, name)
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// attr is a small convenience wrapper so rule bodies read "attr(el, name)"
// rather than repeating the xmlnav package qualifier everywhere.
func attr(el xmlnav.XmlElement, name string) (string, bool) {
	return xmlnav.GetAttr(el.OpenTag, name)
}
