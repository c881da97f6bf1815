package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/transitdata/netex-validator/catalogue"
)

// appName names the on-disk cache directory under the user's cache home.
const appName = "netex-validator"

// schemaSource identifies a resolved schema: its entry XSD's text (used to
// feed the xsdContent rule config cross-document rules read identity
// constraints from) plus the directory the entry XSD lives in, so
// xsdvalidate can walk that directory and resolve any xsd:include/
// xsd:import the entry XSD declares rather than validating against the
// entry file alone.
type schemaSource struct {
	Text      string
	Dir       string
	EntryPath string
}

// schemaResolver resolves a schema id (or a custom path) to a schemaSource.
// It is a package-level variable so tests can stub out the network-backed
// default without changing Options' public surface.
var schemaResolver = defaultSchemaResolver

func defaultSchemaResolver(ctx context.Context, schemaID, customPath string) (schemaSource, error) {
	if schemaID == catalogue.Custom || schemaID == "" {
		if customPath == "" {
			return schemaSource{}, fmt.Errorf("engine: schema id %q requires a custom schema path", schemaID)
		}
		data, err := os.ReadFile(customPath)
		if err != nil {
			return schemaSource{}, fmt.Errorf("engine: read custom schema %s: %w", customPath, err)
		}
		return schemaSource{Text: string(data), Dir: filepath.Dir(customPath), EntryPath: customPath}, nil
	}

	dir, err := catalogue.EnsureSchema(ctx, appName, schemaID, catalogue.NewHTTPFetcher())
	if err != nil {
		return schemaSource{}, fmt.Errorf("engine: ensure schema %s: %w", schemaID, err)
	}
	xsdPath, err := catalogue.ResolveEntryXsd(schemaID, dir)
	if err != nil {
		return schemaSource{}, fmt.Errorf("engine: resolve entry xsd for %s: %w", schemaID, err)
	}
	data, err := os.ReadFile(xsdPath)
	if err != nil {
		return schemaSource{}, fmt.Errorf("engine: read entry xsd %s: %w", xsdPath, err)
	}
	return schemaSource{Text: string(data), Dir: dir, EntryPath: xsdPath}, nil
}
