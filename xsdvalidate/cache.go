// Package xsdvalidate compiles NeTEx/SIRI XSD schemas and validates XML
// documents against them. Schema compilation is content-addressed: the
// SHA-256 of the entry XSD's bytes is the cache key, so two schema IDs that
// happen to resolve to byte-identical entry XSDs (e.g. the same archive
// re-extracted to different temp directories) share one compiled
// *xsd.Schema. Grounded on go-xsd's own SchemaCache (_examples/other_examples
// bba3cf00_agentflare-ai-go-xsd__cache.go.go), layered with a TTL-evicting
// groupcache/lru so long-running processes do not keep every schema they
// have ever seen compiled in memory forever.
package xsdvalidate

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/agentflare-ai/go-xmldom"
	"github.com/agentflare-ai/go-xsd"
	"github.com/golang/groupcache/lru"

	"github.com/transitdata/netex-validator/xmlnav"
)

const defaultCacheSize = 32
const defaultTTL = 30 * time.Minute

type cacheEntry struct {
	schema  *xsd.Schema
	expires time.Time
}

// Cache is a content-addressed, TTL-evicting cache of compiled XSD schemas.
// A Cache is safe for concurrent use.
type Cache struct {
	mu    sync.Mutex
	inner *lru.Cache
	ttl   time.Duration

	// bufMu guards buffers and preloaded, the in-memory schema directory
	// provider described in §4.8: once a schema directory has been walked,
	// every .xsd file beneath it is served from memory instead of hitting
	// the filesystem again for every xsd:include/xsd:import target.
	bufMu     sync.Mutex
	buffers   map[string][]byte
	preloaded map[string]bool
}

// NewCache creates a cache holding at most maxEntries compiled schemas, each
// evicted ttl after it was last compiled or served from the cache.
// maxEntries <= 0 and ttl <= 0 fall
// back to sensible defaults.
func NewCache(maxEntries int, ttl time.Duration) *Cache {
	if maxEntries <= 0 {
		maxEntries = defaultCacheSize
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{
		inner:     lru.New(maxEntries),
		ttl:       ttl,
		buffers:   make(map[string][]byte),
		preloaded: make(map[string]bool),
	}
}

func contentKey(xsdText string) string {
	sum := sha256.Sum256([]byte(xsdText))
	return hex.EncodeToString(sum[:])
}

// compileFile returns the compiled schema rooted at entryPath, merging in
// every xsd:include/xsd:import it transitively references from dir. It
// reuses a cached compilation when available and not yet expired.
func (c *Cache) compileFile(dir, entryPath string) (*xsd.Schema, error) {
	entryBytes, err := os.ReadFile(entryPath)
	if err != nil {
		return nil, fmt.Errorf("xsdvalidate: read entry xsd %s: %w", entryPath, err)
	}
	key := contentKey(string(entryBytes))

	// The lock is held from lookup to insert, so concurrent misses on the
	// same key compile it once.
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.inner.Get(key); ok {
		entry := v.(*cacheEntry)
		if time.Now().Before(entry.expires) {
			// A hit still resets the TTL: an actively used schema should
			// not be evicted out from under a long-running process just
			// because it happened to compile ttl ago.
			entry.expires = time.Now().Add(c.ttl)
			c.inner.Add(key, entry)
			return entry.schema, nil
		}
		c.inner.Remove(key)
	}

	if err := c.preloadDir(dir); err != nil {
		return nil, fmt.Errorf("xsdvalidate: preload schema directory %s: %w", dir, err)
	}

	schema, err := c.parseWithIncludes(entryPath, make(map[string]bool))
	if err != nil {
		return nil, err
	}

	c.inner.Add(key, &cacheEntry{schema: schema, expires: time.Now().Add(c.ttl)})

	return schema, nil
}

// compile compiles a schema given only its text, with no directory to
// resolve includes/imports against (the text is treated as self-contained).
// It shares the same cache and TTL-reset-on-hit behavior as compileFile.
func (c *Cache) compile(xsdText string) (*xsd.Schema, error) {
	key := contentKey(xsdText)

	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.inner.Get(key); ok {
		entry := v.(*cacheEntry)
		if time.Now().Before(entry.expires) {
			entry.expires = time.Now().Add(c.ttl)
			c.inner.Add(key, entry)
			return entry.schema, nil
		}
		c.inner.Remove(key)
	}

	doc, err := xmldom.NewDecoderFromBytes([]byte(xsdText)).Decode()
	if err != nil {
		return nil, fmt.Errorf("xsdvalidate: parse schema: %w", err)
	}
	schema, err := xsd.Parse(doc)
	if err != nil {
		return nil, fmt.Errorf("xsdvalidate: compile schema: %w", err)
	}

	c.inner.Add(key, &cacheEntry{schema: schema, expires: time.Now().Add(c.ttl)})

	return schema, nil
}

// preloadDir walks dir once, reading every .xsd file it contains into the
// buffer provider keyed by its file:// URL. Later include/import resolution
// against the same directory is served from these buffers instead of the
// filesystem.
func (c *Cache) preloadDir(dir string) error {
	if dir == "" {
		return nil
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		absDir = dir
	}

	c.bufMu.Lock()
	already := c.preloaded[absDir]
	c.bufMu.Unlock()
	if already {
		return nil
	}

	err = filepath.WalkDir(absDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".xsd") {
			return nil
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}
		c.bufMu.Lock()
		c.buffers["file://"+path] = data
		c.bufMu.Unlock()
		return nil
	})
	if err != nil {
		return err
	}

	c.bufMu.Lock()
	c.preloaded[absDir] = true
	c.bufMu.Unlock()
	return nil
}

// readBuffered returns the bytes of the .xsd file at path, preferring the
// in-memory buffer provider over the filesystem.
func (c *Cache) readBuffered(path string) ([]byte, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	c.bufMu.Lock()
	data, ok := c.buffers["file://"+absPath]
	c.bufMu.Unlock()
	if ok {
		return data, nil
	}
	return os.ReadFile(path)
}

// parseWithIncludes parses the XSD at path and recursively merges every
// xsd:include/xsd:import target it declares, tolerant of both the "xsd:" and
// "xs:" prefixes the same way the rest of this repository's XSD parsing is.
// visited guards against circular references; grounded on the recursive
// "parse then walk schema.Imports" shape of go-xsd's own SchemaCache
// (_examples/other_examples bba3cf00_agentflare-ai-go-xsd__cache.go.go),
// extended with the multi-level relative-path and cycle-tracking handling
// from _examples/other_examples
// 290763fe_moolekkari-validatexml-go__xsd.go.go's
// parseXSDWithImportsAndTracker, since that example is the only one of the
// pack showing a complete recursive resolver rather than a single level of
// cache warming.
func (c *Cache) parseWithIncludes(path string, visited map[string]bool) (*xsd.Schema, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	if visited[absPath] {
		return nil, fmt.Errorf("xsdvalidate: circular schema reference at %s", path)
	}
	visited[absPath] = true
	defer delete(visited, absPath)

	data, err := c.readBuffered(absPath)
	if err != nil {
		return nil, fmt.Errorf("xsdvalidate: read schema %s: %w", path, err)
	}

	doc, err := xmldom.NewDecoderFromBytes(data).Decode()
	if err != nil {
		return nil, fmt.Errorf("xsdvalidate: parse schema %s: %w", path, err)
	}
	schema, err := xsd.Parse(doc)
	if err != nil {
		return nil, fmt.Errorf("xsdvalidate: compile schema %s: %w", path, err)
	}

	dir := filepath.Dir(absPath)
	for _, href := range includeHrefs(string(data)) {
		target := href
		if !filepath.IsAbs(target) {
			target = filepath.Join(dir, href)
		}
		included, err := c.parseWithIncludes(target, visited)
		if err != nil {
			return nil, fmt.Errorf("xsdvalidate: resolve include/import %s from %s: %w", href, path, err)
		}
		mergeSchema(schema, included)
	}

	return schema, nil
}

// includeHrefs scans raw XSD text for every xsd:include/xsd:import
// schemaLocation, using xmlnav so the scan stays tolerant of namespace
// prefixes and comments the same way every other XSD-text reader in this
// repository is.
func includeHrefs(xsdText string) []string {
	var hrefs []string
	for _, name := range []string{"include", "import"} {
		for _, el := range xmlnav.FindAll(xsdText, name, 0, 0) {
			if loc, ok := xmlnav.GetAttr(el.OpenTag, "schemaLocation"); ok && loc != "" {
				hrefs = append(hrefs, loc)
			}
		}
	}
	return hrefs
}

// mergeSchema folds included's declarations into dst, the minimum merge the
// validator needs to see cross-file element/type references: entries
// already present in dst win, so the entry schema's own declarations are
// never shadowed by an included file's.
func mergeSchema(dst, included *xsd.Schema) {
	if included == nil {
		return
	}
	for qn, decl := range included.ElementDecls {
		if _, exists := dst.ElementDecls[qn]; !exists {
			dst.ElementDecls[qn] = decl
		}
	}
	for qn, typ := range included.TypeDefs {
		if _, exists := dst.TypeDefs[qn]; !exists {
			dst.TypeDefs[qn] = typ
		}
	}
}

// Clear evicts every compiled schema and forgets every preloaded schema
// directory, forcing the next Validate call to recompile and re-walk.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.inner.Clear()
	c.mu.Unlock()

	c.bufMu.Lock()
	c.buffers = make(map[string][]byte)
	c.preloaded = make(map[string]bool)
	c.bufMu.Unlock()
}
