// Package document holds the Document type shared by archive, frame,
// rules, xsdvalidate and engine — kept separate so none of those packages
// need to import each other just to pass documents around.
package document

// Document is an immutable {fileName, xml} pair: the unit of work the
// orchestrator hands to rules and the XSD validator. Created by the
// archive expander or by direct file reads; owned by the orchestrator for
// one validation call and dropped once results are produced.
type Document struct {
	FileName string
	Xml      string
}
