package xsdvalidate

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const minimalSchema = `
<xsd:schema xmlns:xsd="http://www.w3.org/2001/XMLSchema">
	<xsd:element name="StopPlace">
		<xsd:complexType>
			<xsd:sequence>
				<xsd:element name="Name" type="xsd:string"/>
			</xsd:sequence>
			<xsd:attribute name="id" type="xsd:string" use="required"/>
		</xsd:complexType>
	</xsd:element>
</xsd:schema>`

func TestCacheCompileReusesCompiledSchema(t *testing.T) {
	c := NewCache(4, 0)
	s1, err := c.compile(minimalSchema)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	s2, err := c.compile(minimalSchema)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if s1 != s2 {
		t.Fatalf("expected the second compile to reuse the cached schema")
	}
}

func TestValidateValidDocumentHasNoErrors(t *testing.T) {
	c := NewCache(4, 0)
	res, err := c.Validate("a.xml", `<StopPlace id="SP1"><Name>Central</Name></StopPlace>`, minimalSchema)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("expected no errors, got %+v", res.Errors)
	}
}

func TestValidateMissingRequiredAttributeReportsError(t *testing.T) {
	c := NewCache(4, 0)
	res, err := c.Validate("a.xml", `<StopPlace><Name>Central</Name></StopPlace>`, minimalSchema)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(res.Errors) == 0 {
		t.Fatalf("expected at least one error for the missing required attribute")
	}
	for _, e := range res.Errors {
		if e.FileName != "a.xml" {
			t.Fatalf("expected FileName to be propagated, got %q", e.FileName)
		}
	}
}

func TestClearEvictsCompiledSchemas(t *testing.T) {
	c := NewCache(4, 0)
	if _, err := c.compile(minimalSchema); err != nil {
		t.Fatalf("compile: %v", err)
	}
	c.Clear()
	if _, ok := c.inner.Get(contentKey(minimalSchema)); ok {
		t.Fatalf("expected cache to be empty after Clear")
	}
}

func TestCompileHitResetsTTL(t *testing.T) {
	c := NewCache(4, 50*time.Millisecond)
	if _, err := c.compile(minimalSchema); err != nil {
		t.Fatalf("compile: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	if _, err := c.compile(minimalSchema); err != nil {
		t.Fatalf("second compile: %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	key := contentKey(minimalSchema)
	c.mu.Lock()
	v, ok := c.inner.Get(key)
	c.mu.Unlock()
	if !ok {
		t.Fatal("expected the entry to still be cached: a hit 30ms ago should have reset its 50ms TTL")
	}
	entry := v.(*cacheEntry)
	if time.Now().After(entry.expires) {
		t.Fatalf("expected expires to have been pushed out by the hit, got %v", entry.expires)
	}
}

const includingSchema = `
<xsd:schema xmlns:xsd="http://www.w3.org/2001/XMLSchema">
	<xsd:include schemaLocation="common.xsd"/>
	<xsd:element name="StopPlace">
		<xsd:complexType>
			<xsd:sequence>
				<xsd:element ref="Name"/>
			</xsd:sequence>
			<xsd:attribute name="id" type="xsd:string" use="required"/>
		</xsd:complexType>
	</xsd:element>
</xsd:schema>`

const commonSchema = `
<xsd:schema xmlns:xsd="http://www.w3.org/2001/XMLSchema">
	<xsd:element name="Name" type="xsd:string"/>
</xsd:schema>`

func writeSchemaDir(t *testing.T) (dir, entryPath string) {
	t.Helper()
	dir = t.TempDir()
	entryPath = filepath.Join(dir, "entry.xsd")
	if err := os.WriteFile(entryPath, []byte(includingSchema), 0o644); err != nil {
		t.Fatalf("write entry.xsd: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "common.xsd"), []byte(commonSchema), 0o644); err != nil {
		t.Fatalf("write common.xsd: %v", err)
	}
	return dir, entryPath
}

func TestValidateFileResolvesIncludedElement(t *testing.T) {
	dir, entryPath := writeSchemaDir(t)
	c := NewCache(4, 0)

	res, err := c.ValidateFile("a.xml", `<StopPlace id="SP1"><Name>Central</Name></StopPlace>`, dir, entryPath)
	if err != nil {
		t.Fatalf("ValidateFile: %v", err)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("expected the included Name element declaration to resolve cleanly, got %+v", res.Errors)
	}
}

func TestCompileFileReusesCompiledSchema(t *testing.T) {
	dir, entryPath := writeSchemaDir(t)
	c := NewCache(4, 0)

	s1, err := c.compileFile(dir, entryPath)
	if err != nil {
		t.Fatalf("compileFile: %v", err)
	}
	s2, err := c.compileFile(dir, entryPath)
	if err != nil {
		t.Fatalf("compileFile: %v", err)
	}
	if s1 != s2 {
		t.Fatalf("expected the second compileFile to reuse the cached, merged schema")
	}
}

func TestParseWithIncludesDetectsCircularReference(t *testing.T) {
	dir := t.TempDir()
	aPath := filepath.Join(dir, "a.xsd")
	bPath := filepath.Join(dir, "b.xsd")
	a := `<xsd:schema xmlns:xsd="http://www.w3.org/2001/XMLSchema"><xsd:include schemaLocation="b.xsd"/></xsd:schema>`
	b := `<xsd:schema xmlns:xsd="http://www.w3.org/2001/XMLSchema"><xsd:include schemaLocation="a.xsd"/></xsd:schema>`
	if err := os.WriteFile(aPath, []byte(a), 0o644); err != nil {
		t.Fatalf("write a.xsd: %v", err)
	}
	if err := os.WriteFile(bPath, []byte(b), 0o644); err != nil {
		t.Fatalf("write b.xsd: %v", err)
	}

	c := NewCache(4, 0)
	if _, err := c.compileFile(dir, aPath); err == nil {
		t.Fatal("expected a circular xsd:include chain to be rejected")
	}
}
