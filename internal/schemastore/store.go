// Package schemastore resolves which compiled schema applies to a
// document (by inline $schema, or by a configured file-pattern
// association) and caches compiled schemas by URI so a given schema is
// ever fetched and compiled once.
package schemastore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/kaptinlin/jsonls/internal/jsonschema"
)

// Association binds a file-match glob to a schema URI. When Inline is set,
// SetAssociations compiles it and caches it under URI, so that URI is never
// fetched; an association with an empty URI never resolves, inline schema
// or not.
type Association struct {
	FileMatch []string
	URI       string
	Inline    map[string]interface{}
}

// LookupState is the three-way result spec.md's resolver contract names.
type LookupState int

const (
	LookupNone LookupState = iota
	LookupResolved
	LookupNeedsFetch
)

// Lookup is the result of resolving a document URI (plus optional inline
// $schema) to a schema.
type Lookup struct {
	State  LookupState
	Schema *jsonschema.Schema
	// FetchURI is set when State == LookupNeedsFetch: the caller must fetch
	// and compile this URI (outside any lock) then call Store.PutCompiled.
	FetchURI string
}

// Store holds associations and the URI -> compiled schema cache.
type Store struct {
	mu           sync.Mutex
	associations []Association
	compiled     map[string]*jsonschema.Schema
}

func NewStore() *Store {
	return &Store{
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// SetAssociations replaces the configured associations (from
// workspace/didChangeConfiguration's json.schemas array).
func (s *Store) SetAssociations(assocs []Association) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.associations = assocs
	for _, a := range assocs {
		if a.Inline != nil {
			if compiled, err := compileInline(a.Inline); err == nil {
				s.compiled[a.URI] = compiled
			}
		}
	}
}

// Resolve determines which schema applies to a document, given its file
// path (for glob matching) and an optional inline $schema URI extracted
// from the document's own text (which always takes precedence).
func (s *Store) Resolve(path string, inlineSchemaURI string) Lookup {
	s.mu.Lock()
	defer s.mu.Unlock()

	uri := inlineSchemaURI
	if uri == "" {
		for _, a := range s.associations {
			if matchesAny(a.FileMatch, path) {
				uri = a.URI
				break
			}
		}
	}
	if uri == "" {
		return Lookup{State: LookupNone}
	}
	if compiled, ok := s.compiled[uri]; ok {
		return Lookup{State: LookupResolved, Schema: compiled}
	}
	return Lookup{State: LookupNeedsFetch, FetchURI: uri}
}

// PutCompiled stores a freshly fetched-and-compiled schema in the cache.
// Safe to call even if another goroutine raced to fetch the same URI;
// whichever result lands first wins and later ones are discarded, since a
// schema document is assumed stable for the lifetime of the process (the
// resource budget in spec.md: never evict a populated entry).
func (s *Store) PutCompiled(uri string, schema *jsonschema.Schema) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.compiled[uri]; !exists {
		s.compiled[uri] = schema
	}
}

func matchesAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
	}
	return false
}

func compileInline(v map[string]interface{}) (*jsonschema.Schema, error) {
	// Inline associations already arrived as decoded JSON via the LSP
	// configuration payload, so route them through the ordered encoder to
	// keep property/patternProperties order stable even for this path.
	data, err := reencode(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.Parse(data)
}

// Resolver performs the blocking HTTP fetch-and-compile step for a schema
// URI. FetchAndCompile blocks its caller until the response is read and
// compiled; it starts no goroutine of its own. The server calls it directly
// from the request handler with the state lock released, and re-acquires
// the lock only to call Store.PutCompiled.
type Resolver struct {
	Client *http.Client
}

func NewResolver() *Resolver {
	return &Resolver{Client: &http.Client{Timeout: 10 * time.Second}}
}

// FetchAndCompile retrieves a schema document over HTTP(S) and compiles it.
// Non-HTTP schemes are rejected; the spec explicitly scopes file:// schema
// loading and registry auth out.
func (r *Resolver) FetchAndCompile(ctx context.Context, uri string) (*jsonschema.Schema, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("schemastore: building request for %s: %w", uri, err)
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("schemastore: fetching %s: %w", uri, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("schemastore: fetching %s: unexpected status %d", uri, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("schemastore: reading body of %s: %w", uri, err)
	}
	compiled, err := jsonschema.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("schemastore: compiling %s: %w", uri, err)
	}
	return compiled, nil
}
