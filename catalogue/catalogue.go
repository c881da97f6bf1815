// Package catalogue maps schema IDs to their archive location and keeps a
// per-ID on-disk cache of the extracted schema tree, grounded on the
// teacher's utils/http.go retry/backoff HTTP client and schema/xsd_validator.go's
// disk-cache-then-compile pattern.
package catalogue

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/transitdata/netex-validator/archive"
)

// SchemaEntry describes where to find one schema's archive and, once
// extracted, its entry XSD.
type SchemaEntry struct {
	Label            string
	ArchiveURL       string
	EntryXsd         string
	ArchiveRootPrefix string
}

// Schema IDs are fixed strings, never an enum, so callers can pass
// "custom" or any of the published IDs without a type conversion.
const (
	NetexV12NC    = "netex@1.2-nc"
	NetexV12      = "netex@1.2"
	NetexV122NC   = "netex@1.2.2-nc"
	NetexV122     = "netex@1.2.2"
	NetexV123NC   = "netex@1.2.3-nc"
	NetexV123     = "netex@1.2.3"
	NetexV130NC   = "netex@1.3.0-nc"
	NetexV130     = "netex@1.3.0"
	NetexV131NC   = "netex@1.3.1-nc"
	NetexV131     = "netex@1.3.1"
	EpipV112      = "epip@1.1.2"
	SiriV21       = "siri@2.1"
	SiriV22       = "siri@2.2"
	Custom        = "custom"
)

// catalogue is the static map from schema ID to its archive entry.
// "custom" has no entry: callers supply their own XSD content directly.
var catalogue = map[string]SchemaEntry{
	NetexV12NC:  {Label: "NeTEx 1.2 (no constraints)", ArchiveURL: "https://www.netex-cen.eu/wp-content/uploads/2017/06/NeTEx_1.2-NC.zip", EntryXsd: "xsd/NeTEx_publication.xsd", ArchiveRootPrefix: "NeTEx_1.2-NC"},
	NetexV12:    {Label: "NeTEx 1.2", ArchiveURL: "https://www.netex-cen.eu/wp-content/uploads/2017/06/NeTEx_1.2.zip", EntryXsd: "xsd/NeTEx_publication.xsd", ArchiveRootPrefix: "NeTEx_1.2"},
	NetexV122NC: {Label: "NeTEx 1.2.2 (no constraints)", ArchiveURL: "https://www.netex-cen.eu/wp-content/uploads/2019/05/NeTEx_1.2.2-NC.zip", EntryXsd: "xsd/NeTEx_publication.xsd", ArchiveRootPrefix: "NeTEx_1.2.2-NC"},
	NetexV122:   {Label: "NeTEx 1.2.2", ArchiveURL: "https://www.netex-cen.eu/wp-content/uploads/2019/05/NeTEx_1.2.2.zip", EntryXsd: "xsd/NeTEx_publication.xsd", ArchiveRootPrefix: "NeTEx_1.2.2"},
	NetexV123NC: {Label: "NeTEx 1.2.3 (no constraints)", ArchiveURL: "https://www.netex-cen.eu/wp-content/uploads/2020/09/NeTEx_1.2.3-NC.zip", EntryXsd: "xsd/NeTEx_publication.xsd", ArchiveRootPrefix: "NeTEx_1.2.3-NC"},
	NetexV123:   {Label: "NeTEx 1.2.3", ArchiveURL: "https://www.netex-cen.eu/wp-content/uploads/2020/09/NeTEx_1.2.3.zip", EntryXsd: "xsd/NeTEx_publication.xsd", ArchiveRootPrefix: "NeTEx_1.2.3"},
	NetexV130NC: {Label: "NeTEx 1.3.0 (no constraints)", ArchiveURL: "https://www.netex-cen.eu/wp-content/uploads/2021/11/NeTEx_1.3.0-NC.zip", EntryXsd: "xsd/NeTEx_publication.xsd", ArchiveRootPrefix: "NeTEx_1.3.0-NC"},
	NetexV130:   {Label: "NeTEx 1.3.0", ArchiveURL: "https://www.netex-cen.eu/wp-content/uploads/2021/11/NeTEx_1.3.0.zip", EntryXsd: "xsd/NeTEx_publication.xsd", ArchiveRootPrefix: "NeTEx_1.3.0"},
	NetexV131NC: {Label: "NeTEx 1.3.1 (no constraints)", ArchiveURL: "https://www.netex-cen.eu/wp-content/uploads/2022/10/NeTEx_1.3.1-NC.zip", EntryXsd: "xsd/NeTEx_publication.xsd", ArchiveRootPrefix: "NeTEx_1.3.1-NC"},
	NetexV131:   {Label: "NeTEx 1.3.1", ArchiveURL: "https://www.netex-cen.eu/wp-content/uploads/2022/10/NeTEx_1.3.1.zip", EntryXsd: "xsd/NeTEx_publication.xsd", ArchiveRootPrefix: "NeTEx_1.3.1"},
	EpipV112:    {Label: "European Passenger Information Profile 1.1.2", ArchiveURL: "https://www.netex-cen.eu/wp-content/uploads/2022/01/EPIP-1.1.2.zip", EntryXsd: "xsd/NeTEx_publication.xsd", ArchiveRootPrefix: "EPIP-1.1.2"},
	SiriV21:     {Label: "SIRI 2.1", ArchiveURL: "https://www.siri-cen.eu/schema/2.1/SIRI-2.1.zip", EntryXsd: "xsd/siri.xsd", ArchiveRootPrefix: "SIRI-2.1"},
	SiriV22:     {Label: "SIRI 2.2", ArchiveURL: "https://www.siri-cen.eu/schema/2.2/SIRI-2.2.zip", EntryXsd: "xsd/siri.xsd", ArchiveRootPrefix: "SIRI-2.2"},
}

// Lookup returns the catalogue entry for id.
func Lookup(id string) (SchemaEntry, bool) {
	e, ok := catalogue[id]
	return e, ok
}

// IDs returns every registered schema ID in a stable order.
func IDs() []string {
	ids := make([]string, 0, len(catalogue))
	for id := range catalogue {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Fetcher downloads the bytes at url. The real, network-backed
// implementation is DefaultFetcher; tests supply their own.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// cacheRoot returns ~/.cache/<app>/schemas.
func cacheRoot(app string) (string, error) {
	home, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, app, "schemas"), nil
}

// EnsureSchema returns the directory holding the extracted schema tree for
// id, downloading and extracting it through fetcher if the per-ID cache
// directory does not already exist and is non-empty.
func EnsureSchema(ctx context.Context, app, id string, fetcher Fetcher) (string, error) {
	entry, ok := catalogue[id]
	if !ok {
		return "", fmt.Errorf("catalogue: unknown schema id %q", id)
	}

	root, err := cacheRoot(app)
	if err != nil {
		return "", fmt.Errorf("catalogue: resolve cache root: %w", err)
	}
	dir := filepath.Join(root, id)

	if entries, err := os.ReadDir(dir); err == nil && len(entries) > 0 {
		return dir, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("catalogue: create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp("", "netex-schema-*.zip")
	if err != nil {
		return "", fmt.Errorf("catalogue: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	body, err := fetcher.Fetch(ctx, entry.ArchiveURL)
	if err != nil {
		tmp.Close()
		return "", fmt.Errorf("catalogue: fetch %s: %w", entry.ArchiveURL, err)
	}
	_, copyErr := io.Copy(tmp, body)
	body.Close()
	closeErr := tmp.Close()
	if copyErr != nil {
		return "", fmt.Errorf("catalogue: write archive: %w", copyErr)
	}
	if closeErr != nil {
		return "", fmt.Errorf("catalogue: write archive: %w", closeErr)
	}

	if err := archive.ExtractTo(tmpPath, dir); err != nil {
		return "", fmt.Errorf("catalogue: extract archive: %w", err)
	}

	return dir, nil
}

// ResolveEntryXsd walks the extracted root directory looking for id's
// declared entry XSD, with or without the expected archive-root prefix
// folder, falling back to searching each direct child directory.
func ResolveEntryXsd(id, extractedRoot string) (string, error) {
	entry, ok := catalogue[id]
	if !ok {
		return "", fmt.Errorf("catalogue: unknown schema id %q", id)
	}

	candidates := []string{
		filepath.Join(extractedRoot, entry.EntryXsd),
		filepath.Join(extractedRoot, entry.ArchiveRootPrefix, entry.EntryXsd),
	}
	for _, c := range candidates {
		if fileExists(c) {
			return c, nil
		}
	}

	children, err := os.ReadDir(extractedRoot)
	if err != nil {
		return "", fmt.Errorf("catalogue: read %s: %w", extractedRoot, err)
	}
	var names []string
	for _, ch := range children {
		names = append(names, ch.Name())
		if !ch.IsDir() {
			continue
		}
		candidate := filepath.Join(extractedRoot, ch.Name(), entry.EntryXsd)
		if fileExists(candidate) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("catalogue: entry xsd %q not found under %s (contents: %s)",
		entry.EntryXsd, extractedRoot, strings.Join(names, ", "))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ClearCache removes the on-disk cache directory for a single schema ID.
func ClearCache(app, id string) error {
	root, err := cacheRoot(app)
	if err != nil {
		return err
	}
	return os.RemoveAll(filepath.Join(root, id))
}

// ClearAllCaches removes every cached schema tree.
func ClearAllCaches(app string) error {
	root, err := cacheRoot(app)
	if err != nil {
		return err
	}
	return os.RemoveAll(root)
}
