// Package xmlnav provides the restricted XML navigation surface rules are
// built on: element enumeration, attribute lookup, text extraction and
// nested-fragment recursion, all reporting positions absolute to the
// original document regardless of how deep a walker has recursed into a
// fragment. It is deliberately not a DOM or an XPath engine — see the
// package-level Non-goals in the repository's SPEC_FULL.md.
package xmlnav

import (
	"regexp"
	"strings"
)

// XmlElement is the navigator's only output shape. Line and Offset are
// always absolute to the original document that was first handed to
// FindAll/FindChildren, never to whatever fragment a caller recursed into.
type XmlElement struct {
	LocalName string
	OpenTag   string
	InnerXml  string
	OuterXml  string
	Line      int
	Offset    int
}

// InnerBaseLine returns the baseLine to pass to a recursive navigator call
// over el.InnerXml so that positions reported from the fragment stay
// absolute.
func InnerBaseLine(el XmlElement) int {
	return el.Line - 1 + strings.Count(el.OpenTag, "\n")
}

// InnerBaseOffset returns the baseOffset to pass to a recursive navigator
// call over el.InnerXml.
func InnerBaseOffset(el XmlElement) int {
	return el.Offset + len(el.OpenTag)
}

var commentRe = regexp.MustCompile(`(?s)<!--.*?-->`)

// stripComments blanks out XML comments before any element-matching regex is
// run. Comments containing literal '<' or '>' would otherwise confuse the
// open/close tag scanners. Every byte of the comment is replaced one-for-one
// (newlines kept as newlines, everything else as a space) rather than
// removed, so the cleaned string is exactly as long as xml and every offset
// FindChildren/FindAll report against it is also correct against the
// original document, including when a match follows a comment.
func stripComments(xml string) string {
	return commentRe.ReplaceAllStringFunc(xml, func(m string) string {
		out := make([]byte, len(m))
		for i := 0; i < len(m); i++ {
			if m[i] == '\n' {
				out[i] = '\n'
			} else {
				out[i] = ' '
			}
		}
		return string(out)
	})
}

// lineAt returns the 1-based line number of offset within xml.
func lineAt(xml string, offset int) int {
	if offset < 0 {
		offset = 0
	}
	if offset > len(xml) {
		offset = len(xml)
	}
	return 1 + strings.Count(xml[:offset], "\n")
}

// LineAt returns the 1-based line number of offset within the original
// document text.
func LineAt(xml string, offset int) int {
	return lineAt(xml, offset)
}

var openTagRe = regexp.MustCompile(`<(?:[\w.-]+:)?([\w.-]+)((?:\s+[^<>]*)?)(/?)>`)

// GetAttr returns the value of attribute name within openTag, handling
// single- or double-quoted values. ok is false when the attribute is
// absent.
func GetAttr(openTag, name string) (string, bool) {
	re := regexp.MustCompile(`(?:^|\s)` + regexp.QuoteMeta(name) + `\s*=\s*(["'])`)
	loc := re.FindStringSubmatchIndex(openTag)
	if loc == nil {
		return "", false
	}
	quote := openTag[loc[2]]
	valStart := loc[3]
	valEnd := strings.IndexByte(openTag[valStart:], quote)
	if valEnd < 0 {
		return "", false
	}
	return openTag[valStart : valStart+valEnd], true
}

// tagRegexes builds the open and close regexes for a given local name,
// tolerant of a namespace prefix.
func tagRegexes(name string) (openRe, closeRe *regexp.Regexp) {
	escaped := regexp.QuoteMeta(name)
	openRe = regexp.MustCompile(`<(?:[\w.-]+:)?` + escaped + `(?:\s[^<>]*)?/?>`)
	closeRe = regexp.MustCompile(`</(?:[\w.-]+:)?` + escaped + `\s*>`)
	return
}

func localName(openTag string) string {
	m := openTagRe.FindStringSubmatch(openTag)
	if m == nil {
		return ""
	}
	return m[1]
}

func isSelfClosing(openTag string) bool {
	return strings.HasSuffix(strings.TrimSpace(openTag), "/>")
}

// FindCloseTag performs a balanced-tag scan for name starting at from,
// using a depth counter so nested same-name descendants do not terminate
// the scan early. Self-closing opens are ignored (they do not open a new
// level). Returns the index of the start of the matching close tag, or -1
// if the XML is malformed (unbalanced), in which case the caller should
// silently skip the element rather than abort the whole walk.
func FindCloseTag(xml, name string, from int) int {
	openRe, closeRe := tagRegexes(name)
	depth := 0
	pos := from
	for pos <= len(xml) {
		oLoc := openRe.FindStringIndex(xml[pos:])
		cLoc := closeRe.FindStringIndex(xml[pos:])
		switch {
		case cLoc == nil:
			return -1
		case oLoc != nil && oLoc[0] < cLoc[0]:
			tag := xml[pos+oLoc[0] : pos+oLoc[1]]
			if !isSelfClosing(tag) {
				depth++
			}
			pos += oLoc[1]
		default:
			if depth == 0 {
				return pos + cLoc[0]
			}
			depth--
			pos += cLoc[1]
		}
	}
	return -1
}

// FindChildren returns direct children named name: after each match the
// scan resumes past the matched element's close tag, so nested same-name
// descendants are never returned. baseOffset/baseLine are added to every
// reported position.
func FindChildren(xml, name string, baseOffset, baseLine int) []XmlElement {
	clean := stripComments(xml)
	openRe, closeRe := tagRegexes(name)
	var out []XmlElement
	pos := 0
	for pos < len(clean) {
		loc := openRe.FindStringIndex(clean[pos:])
		if loc == nil {
			break
		}
		start := pos + loc[0]
		end := pos + loc[1]
		openTag := clean[start:end]

		if isSelfClosing(openTag) {
			out = append(out, XmlElement{
				LocalName: localName(openTag),
				OpenTag:   openTag,
				InnerXml:  "",
				OuterXml:  openTag,
				Line:      baseLine + lineAt(clean, start),
				Offset:    baseOffset + start,
			})
			pos = end
			continue
		}

		closeStart := FindCloseTag(clean, name, end)
		if closeStart < 0 {
			// Malformed: skip this element entirely rather than abort.
			pos = end
			continue
		}
		closeLoc := closeRe.FindStringIndex(clean[closeStart:])
		closeEnd := closeStart
		if closeLoc != nil {
			closeEnd = closeStart + closeLoc[1]
		}

		out = append(out, XmlElement{
			LocalName: localName(openTag),
			OpenTag:   openTag,
			InnerXml:  clean[end:closeStart],
			OuterXml:  clean[start:closeEnd],
			Line:      baseLine + lineAt(clean, start),
			Offset:    baseOffset + start,
		})
		pos = closeEnd
	}
	return out
}

// FindAll performs depth-first enumeration of every element named name,
// including ones nested inside other elements of the same or different
// names, unlike FindChildren.
func FindAll(xml, name string, baseOffset, baseLine int) []XmlElement {
	clean := stripComments(xml)
	openRe, closeRe := tagRegexes(name)
	var out []XmlElement
	pos := 0
	for pos < len(clean) {
		loc := openRe.FindStringIndex(clean[pos:])
		if loc == nil {
			break
		}
		start := pos + loc[0]
		end := pos + loc[1]
		openTag := clean[start:end]

		if isSelfClosing(openTag) {
			out = append(out, XmlElement{
				LocalName: localName(openTag),
				OpenTag:   openTag,
				InnerXml:  "",
				OuterXml:  openTag,
				Line:      baseLine + lineAt(clean, start),
				Offset:    baseOffset + start,
			})
			pos = end
			continue
		}

		closeStart := FindCloseTag(clean, name, end)
		if closeStart < 0 {
			pos = end
			continue
		}
		closeLoc := closeRe.FindStringIndex(clean[closeStart:])
		closeEnd := closeStart
		if closeLoc != nil {
			closeEnd = closeStart + closeLoc[1]
		}

		out = append(out, XmlElement{
			LocalName: localName(openTag),
			OpenTag:   openTag,
			InnerXml:  clean[end:closeStart],
			OuterXml:  clean[start:closeEnd],
			Line:      baseLine + lineAt(clean, start),
			Offset:    baseOffset + start,
		})
		// Depth-first: resume scanning right after the open tag so nested
		// matches of the same name are also reported.
		pos = end
	}
	return out
}

// GetChildText returns the first child named name with its tags stripped
// and the result trimmed. ok is false if no such child exists.
func GetChildText(xml, name string) (string, bool) {
	children := FindChildren(xml, name, 0, 0)
	if len(children) == 0 {
		return "", false
	}
	return strings.TrimSpace(stripTags(children[0].InnerXml)), true
}

var tagRe = regexp.MustCompile(`<[^>]*>`)

func stripTags(s string) string {
	return tagRe.ReplaceAllString(s, "")
}

// NavigatePath descends through a slash-separated path segment at a time
// via FindChildren, returning the final segment's elements with absolute
// positions.
func NavigatePath(xml, path string, baseOffset, baseLine int) []XmlElement {
	segments := strings.Split(path, "/")
	current := []XmlElement{{InnerXml: xml, Offset: baseOffset, Line: baseLine, OpenTag: ""}}
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		var next []XmlElement
		for _, el := range current {
			innerBase := el.Offset
			lineBase := el.Line
			if el.OpenTag != "" {
				innerBase = InnerBaseOffset(el)
				lineBase = InnerBaseLine(el)
			}
			next = append(next, FindChildren(el.InnerXml, seg, innerBase, lineBase)...)
		}
		current = next
		if len(current) == 0 {
			return nil
		}
	}
	return current
}
