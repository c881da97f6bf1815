// Package xsdconstraint parses xsd:key/xsd:keyref/xsd:unique declarations
// out of textual XSD and resolves their selector/field expressions against
// xmlnav fragments. It produces constraints as static values; it does not
// validate the XSD itself (that is xsdvalidate's job).
package xsdconstraint

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/transitdata/netex-validator/xmlnav"
)

// Kind distinguishes the three identity-constraint declarations this
// extractor understands.
type Kind string

const (
	KindKey     Kind = "key"
	KindKeyref  Kind = "keyref"
	KindUnique  Kind = "unique"
)

// Constraint is one parsed xsd:key/xsd:keyref/xsd:unique declaration.
type Constraint struct {
	Kind     Kind
	Name     string
	Selector string
	Fields   []string
	Refer    string // keyref only: the referenced key's name
}

var constraintTags = map[Kind]string{
	KindKey:    "key",
	KindKeyref: "keyref",
	KindUnique: "unique",
}

// Extract parses every xsd:key/xsd:keyref/xsd:unique declaration from
// xsdText, tolerant of both "xsd:" and "xs:" prefixes (xmlnav's tag
// matching is already prefix-tolerant via local-name matching).
func Extract(xsdText string) []Constraint {
	var out []Constraint
	for kind, tag := range constraintTags {
		for _, el := range xmlnav.FindAll(xsdText, tag, 0, 0) {
			name, _ := xmlnav.GetAttr(el.OpenTag, "name")
			if name == "" {
				continue
			}
			c := Constraint{Kind: kind, Name: name}

			innerBaseOffset := xmlnav.InnerBaseOffset(el)
			innerBaseLine := xmlnav.InnerBaseLine(el)
			if sels := xmlnav.FindChildren(el.InnerXml, "selector", innerBaseOffset, innerBaseLine); len(sels) > 0 {
				c.Selector, _ = xmlnav.GetAttr(sels[0].OpenTag, "xpath")
			}
			for _, f := range xmlnav.FindChildren(el.InnerXml, "field", innerBaseOffset, innerBaseLine) {
				if xp, ok := xmlnav.GetAttr(f.OpenTag, "xpath"); ok {
					c.Fields = append(c.Fields, xp)
				}
			}
			if kind == KindKeyref {
				if refer, ok := xmlnav.GetAttr(el.OpenTag, "refer"); ok {
					c.Refer = stripPrefix(refer)
				}
			}
			out = append(out, c)
		}
	}
	return out
}

func stripPrefix(qname string) string {
	if i := strings.IndexByte(qname, ':'); i >= 0 {
		return qname[i+1:]
	}
	return qname
}

// ResolveSelector resolves a selector expression against xml, returning the
// matched element fragments. Supported forms: ".//Elem" (anywhere),
// "Elem" (single segment), and "Seg1/Seg2/.../SegN" (multi-segment
// descent). Each segment is matched with FindAll: the first anywhere in
// xml, each later one anywhere inside the previous segment's matches.
func ResolveSelector(xml, selector string) []xmlnav.XmlElement {
	selector = strings.TrimSpace(selector)
	if strings.HasPrefix(selector, ".//") {
		name := stripPrefix(selector[3:])
		return xmlnav.FindAll(xml, name, 0, 0)
	}
	segments := strings.Split(selector, "/")
	current := []xmlnav.XmlElement{{InnerXml: xml}}
	for _, seg := range segments {
		seg = stripPrefix(seg)
		var next []xmlnav.XmlElement
		for _, el := range current {
			baseOffset, baseLine := fragmentBase(el)
			next = append(next, xmlnav.FindAll(el.InnerXml, seg, baseOffset, baseLine)...)
		}
		current = next
		if len(current) == 0 {
			return nil
		}
	}
	return current
}

func fragmentBase(el xmlnav.XmlElement) (int, int) {
	if el.OpenTag == "" {
		return el.Offset, el.Line
	}
	return xmlnav.InnerBaseOffset(el), xmlnav.InnerBaseLine(el)
}

// ResolveField resolves a field expression against one matched element's
// outer XML, supporting "@attr", "text()"/".": text content with tags
// stripped and trimmed (empty string becomes ok=false), "Child": the first
// child's stripped text, and slash-separated compositions like "Child/@attr"
// or "GrandChild/text()".
func ResolveField(el xmlnav.XmlElement, field string) (string, bool) {
	field = strings.TrimSpace(field)
	segments := strings.Split(field, "/")
	current := el
	for i, seg := range segments {
		last := i == len(segments)-1
		switch {
		case strings.HasPrefix(seg, "@"):
			if !last {
				return "", false
			}
			v, ok := xmlnav.GetAttr(current.OpenTag, seg[1:])
			return normalizeField(v, ok)
		case seg == "text()" || seg == ".":
			if !last {
				return "", false
			}
			v := strings.TrimSpace(stripTags(current.InnerXml))
			return normalizeField(v, v != "")
		default:
			baseOffset, baseLine := fragmentBase(current)
			children := xmlnav.FindChildren(current.InnerXml, stripPrefix(seg), baseOffset, baseLine)
			if len(children) == 0 {
				return "", false
			}
			current = children[0]
			if last {
				v := strings.TrimSpace(stripTags(current.InnerXml))
				return normalizeField(v, v != "")
			}
		}
	}
	return "", false
}

func normalizeField(v string, ok bool) (string, bool) {
	if !ok || v == "" {
		return "", false
	}
	return norm.NFC.String(v), true
}

func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}
