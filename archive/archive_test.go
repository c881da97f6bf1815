package archive

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestIsArchiveRecognizesExtensions(t *testing.T) {
	cases := map[string]bool{
		"dataset.zip":     true,
		"dataset.tar.gz":  true,
		"dataset.tgz":     true,
		"dataset.tar.bz2": true,
		"dataset.tbz2":    true,
		"dataset.tar":     true,
		"dataset.gz":      true,
		"dataset.xml":     false,
		"dataset.json":    false,
	}
	for name, want := range cases {
		if got := IsArchive(name); got != want {
			t.Errorf("IsArchive(%q) = %v, want %v", name, got, want)
		}
	}
}

func writeTempZip(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "dataset.zip")
	f, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create entry: %v", err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip write entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return zipPath
}

func TestExtractXMLFromZipCollectsOnlyXMLFiles(t *testing.T) {
	zipPath := writeTempZip(t, map[string]string{
		"line_1.xml":  "<PublicationDelivery/>",
		"readme.txt":  "not xml",
		"sub/line_2.xml": "<PublicationDelivery/>",
	})

	docs, err := ExtractXML(zipPath)
	if err != nil {
		t.Fatalf("ExtractXML: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 xml documents, got %d: %+v", len(docs), docs)
	}

	names := make([]string, 0, len(docs))
	for _, d := range docs {
		names = append(names, filepath.ToSlash(d.FileName))
	}
	sort.Strings(names)
	if names[0] != "line_1.xml" || names[1] != "sub/line_2.xml" {
		t.Fatalf("unexpected file names: %v", names)
	}
}

func TestExtractXMLSingleGzDecompressesOnePayload(t *testing.T) {
	dir := t.TempDir()
	gzPath := filepath.Join(dir, "line_1.xml.gz")

	f, err := os.Create(gzPath)
	if err != nil {
		t.Fatalf("create gz: %v", err)
	}
	gw := gzip.NewWriter(f)
	if _, err := gw.Write([]byte("<PublicationDelivery/>")); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	f.Close()

	docs, err := ExtractXML(gzPath)
	if err != nil {
		t.Fatalf("ExtractXML: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].FileName != "line_1.xml" {
		t.Fatalf("expected stripped .gz name, got %q", docs[0].FileName)
	}
	if docs[0].Xml != "<PublicationDelivery/>" {
		t.Fatalf("unexpected content: %q", docs[0].Xml)
	}
}

func TestExtractZipRejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "evil.zip")
	f, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("../escape.xml")
	if err != nil {
		t.Fatalf("zip create entry: %v", err)
	}
	var buf bytes.Buffer
	buf.WriteString("<PublicationDelivery/>")
	if _, err := w.Write(buf.Bytes()); err != nil {
		t.Fatalf("zip write entry: %v", err)
	}
	zw.Close()
	f.Close()

	if _, err := ExtractXML(zipPath); err == nil {
		t.Fatalf("expected path traversal to be rejected")
	}
}
