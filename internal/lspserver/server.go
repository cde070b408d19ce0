// Package lspserver wires the document store, schema store, and every
// feature package together behind the go.lsp.dev/protocol.Server
// interface, following the reference implementation's server.rs: a single
// state lock around (documents, schemas), a debounced validation path, and
// one handler per LSP request that acquires the lock just long enough to
// read or mutate state before delegating to internal/features.
package lspserver

import (
	"context"
	"sync"
	"time"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/zap"

	"github.com/kaptinlin/jsonls/internal/config"
	"github.com/kaptinlin/jsonls/internal/diagnostics"
	"github.com/kaptinlin/jsonls/internal/document"
	"github.com/kaptinlin/jsonls/internal/features"
	"github.com/kaptinlin/jsonls/internal/jsonschema"
	"github.com/kaptinlin/jsonls/internal/schemastore"
	"github.com/kaptinlin/jsonls/internal/validator"
)

// debounceDelay matches the reference server's DEBOUNCE_MS: long enough to
// skip over a fast-typing burst, short enough that diagnostics still feel
// live.
const debounceDelay = 75 * time.Millisecond

// Server implements protocol.Server. Embedding the interface (left nil)
// means any LSP method this package doesn't override still satisfies the
// interface; calling one of those is not expected since Initialize never
// advertises the corresponding capability.
type Server struct {
	protocol.Server

	client protocol.Client
	log    *zap.Logger

	// stateMu is the single exclusive lock over documents and schemas,
	// named after the reference server's ServerState mutex: every request
	// handler takes it for only as long as it needs to read or mutate one
	// of the two stores, never across a blocking fetch.
	stateMu   sync.Mutex
	documents *document.Store
	schemas   *schemastore.Store

	resolver *schemastore.Resolver
	validate *validator.Validator

	cfgMu sync.Mutex
	cfg   config.Config

	debounceMu       sync.Mutex
	debounceVersions map[uri.URI]uint64
}

// New builds a Server ready to be wrapped by protocol.ServerHandler.
func New(client protocol.Client, log *zap.Logger) *Server {
	return &Server{
		client:           client,
		log:              log,
		documents:        document.NewStore(),
		schemas:          schemastore.NewStore(),
		resolver:         schemastore.NewResolver(),
		validate:         validator.New(log),
		cfg:              config.DefaultConfig(),
		debounceVersions: make(map[uri.URI]uint64),
	}
}

func (s *Server) Initialize(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	s.log.Info("initializing")
	return &protocol.InitializeResult{
		ServerInfo: &protocol.ServerInfo{
			Name:    "jsonls",
			Version: "0.1.0",
		},
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindIncremental,
				Save:      &protocol.SaveOptions{IncludeText: false},
			},
			HoverProvider: true,
			CompletionProvider: &protocol.CompletionOptions{
				ResolveProvider:   false,
				TriggerCharacters: []string{"\"", ":", " "},
			},
			DocumentSymbolProvider:        true,
			DocumentFormattingProvider:    true,
			DocumentRangeFormattingProvider: true,
			ColorProvider:                 true,
			FoldingRangeProvider:          true,
			SelectionRangeProvider:        true,
			DocumentLinkProvider: &protocol.DocumentLinkOptions{
				ResolveProvider: false,
			},
			DefinitionProvider: true,
			ExecuteCommandProvider: &protocol.ExecuteCommandOptions{
				Commands: []string{"json.sort"},
			},
		},
	}, nil
}

func (s *Server) Initialized(ctx context.Context, params *protocol.InitializedParams) error {
	s.log.Info("initialized")
	if s.client != nil {
		_ = s.client.LogMessage(ctx, &protocol.LogMessageParams{
			Type:    protocol.MessageTypeInfo,
			Message: "JSON Language Server ready",
		})
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down")
	return nil
}

func (s *Server) Exit(ctx context.Context) error {
	return nil
}

// -- Document sync --

func (s *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	u := params.TextDocument.URI
	s.log.Debug("did_open", zap.String("uri", string(u)))
	s.stateMu.Lock()
	s.documents.Open(u, int32(params.TextDocument.Version), params.TextDocument.Text)
	s.stateMu.Unlock()
	s.validateAndPublish(ctx, u, s.bumpDebounce(u))
	return nil
}

func (s *Server) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	u := params.TextDocument.URI
	s.log.Debug("did_change", zap.String("uri", string(u)))
	s.stateMu.Lock()
	if doc, ok := s.documents.Get(u); ok {
		for _, change := range params.ContentChanges {
			if change.Range != nil {
				doc.ApplyEdit(int32(params.TextDocument.Version), *change.Range, change.Text)
			} else {
				doc.ReplaceFull(int32(params.TextDocument.Version), change.Text)
			}
		}
	}
	s.stateMu.Unlock()
	s.debouncedValidate(ctx, u)
	return nil
}

func (s *Server) DidSave(ctx context.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.log.Debug("did_save", zap.String("uri", string(params.TextDocument.URI)))
	u := params.TextDocument.URI
	s.validateAndPublish(ctx, u, s.bumpDebounce(u))
	return nil
}

func (s *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	u := params.TextDocument.URI
	s.log.Debug("did_close", zap.String("uri", string(u)))
	s.stateMu.Lock()
	s.documents.Close(u)
	s.stateMu.Unlock()
	if s.client != nil {
		_ = s.client.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
			URI:         u,
			Diagnostics: []protocol.Diagnostic{},
		})
	}
	return nil
}

// -- Configuration --

func (s *Server) DidChangeConfiguration(ctx context.Context, params *protocol.DidChangeConfigurationParams) error {
	s.log.Debug("did_change_configuration")
	settings, ok := params.Settings.(map[string]interface{})
	if !ok {
		return nil
	}
	jsonSection, ok := settings["json"].(map[string]interface{})
	if !ok {
		return nil
	}
	rawSchemas, ok := jsonSection["schemas"].([]interface{})
	if !ok {
		return nil
	}
	cfg := config.DefaultConfig()
	for _, entry := range rawSchemas {
		obj, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		assoc := config.SchemaAssociation{}
		if v, ok := obj["url"].(string); ok {
			assoc.URL = v
		}
		if v, ok := obj["uri"].(string); ok {
			assoc.URI = v
		}
		if fm, ok := obj["fileMatch"].([]interface{}); ok {
			for _, m := range fm {
				if ms, ok := m.(string); ok {
					assoc.FileMatch = append(assoc.FileMatch, ms)
				}
			}
		}
		if sch, ok := obj["schema"].(map[string]interface{}); ok {
			assoc.Schema = sch
		}
		cfg.Schemas = append(cfg.Schemas, assoc)
	}

	s.cfgMu.Lock()
	s.cfg = cfg
	s.cfgMu.Unlock()

	s.stateMu.Lock()
	s.schemas.SetAssociations(cfg.ToAssociations())
	s.stateMu.Unlock()
	return nil
}

// -- Hover --

func (s *Server) Hover(ctx context.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	u := params.TextDocument.URI
	offset, inlineSchema, ok := s.offsetAndInlineSchema(u, params.Position)
	if !ok {
		return nil, nil
	}
	schema := s.resolveSchema(ctx, string(u), inlineSchema)

	s.stateMu.Lock()
	doc, ok := s.documents.Get(u)
	s.stateMu.Unlock()
	if !ok {
		return nil, nil
	}
	return features.Hover(doc, schema, offset), nil
}

// -- Completion --

func (s *Server) Completion(ctx context.Context, params *protocol.CompletionParams) (*protocol.CompletionList, error) {
	u := params.TextDocument.URI
	offset, inlineSchema, ok := s.offsetAndInlineSchema(u, params.Position)
	if !ok {
		return nil, nil
	}
	schema := s.resolveSchema(ctx, string(u), inlineSchema)

	s.stateMu.Lock()
	doc, ok := s.documents.Get(u)
	s.stateMu.Unlock()
	if !ok {
		return nil, nil
	}
	items := features.Completion(doc, schema, offset)
	if len(items) == 0 {
		return nil, nil
	}
	return &protocol.CompletionList{IsIncomplete: false, Items: items}, nil
}

// -- Document symbols --

func (s *Server) DocumentSymbol(ctx context.Context, params *protocol.DocumentSymbolParams) ([]interface{}, error) {
	s.stateMu.Lock()
	doc, ok := s.documents.Get(params.TextDocument.URI)
	s.stateMu.Unlock()
	if !ok {
		return nil, nil
	}
	symbols := features.DocumentSymbols(doc)
	out := make([]interface{}, len(symbols))
	for i, sym := range symbols {
		out[i] = sym
	}
	return out, nil
}

// -- Formatting --

func (s *Server) Formatting(ctx context.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	s.stateMu.Lock()
	doc, ok := s.documents.Get(params.TextDocument.URI)
	s.stateMu.Unlock()
	if !ok {
		return nil, nil
	}
	return features.FormatDocument(doc, params.Options, true), nil
}

func (s *Server) RangeFormatting(ctx context.Context, params *protocol.DocumentRangeFormattingParams) ([]protocol.TextEdit, error) {
	s.stateMu.Lock()
	doc, ok := s.documents.Get(params.TextDocument.URI)
	s.stateMu.Unlock()
	if !ok {
		return nil, nil
	}
	return features.FormatRange(doc, params.Options, true), nil
}

// -- Colors --

func (s *Server) DocumentColor(ctx context.Context, params *protocol.DocumentColorParams) ([]protocol.ColorInformation, error) {
	s.stateMu.Lock()
	doc, ok := s.documents.Get(params.TextDocument.URI)
	s.stateMu.Unlock()
	if !ok {
		return nil, nil
	}
	return features.DocumentColors(doc), nil
}

func (s *Server) ColorPresentation(ctx context.Context, params *protocol.ColorPresentationParams) ([]protocol.ColorPresentation, error) {
	return features.ColorPresentations(params.Color), nil
}

// -- Folding --

func (s *Server) FoldingRanges(ctx context.Context, params *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	s.stateMu.Lock()
	doc, ok := s.documents.Get(params.TextDocument.URI)
	s.stateMu.Unlock()
	if !ok {
		return nil, nil
	}
	return features.FoldingRanges(doc), nil
}

// -- Selection ranges --

func (s *Server) SelectionRange(ctx context.Context, params *protocol.SelectionRangeParams) ([]protocol.SelectionRange, error) {
	s.stateMu.Lock()
	doc, ok := s.documents.Get(params.TextDocument.URI)
	s.stateMu.Unlock()
	if !ok {
		return nil, nil
	}
	ranges := features.SelectionRanges(doc, params.Positions)
	out := make([]protocol.SelectionRange, 0, len(ranges))
	for _, r := range ranges {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

// -- Document links --

func (s *Server) DocumentLink(ctx context.Context, params *protocol.DocumentLinkParams) ([]protocol.DocumentLink, error) {
	s.stateMu.Lock()
	doc, ok := s.documents.Get(params.TextDocument.URI)
	s.stateMu.Unlock()
	if !ok {
		return nil, nil
	}
	return features.DocumentLinks(doc), nil
}

// -- Go to definition --

func (s *Server) Definition(ctx context.Context, params *protocol.DefinitionParams) ([]protocol.Location, error) {
	u := params.TextDocument.URI
	s.stateMu.Lock()
	doc, ok := s.documents.Get(u)
	s.stateMu.Unlock()
	if !ok {
		return nil, nil
	}
	offset := doc.LineIndex().OffsetOf(doc.Text, int(params.Position.Line), int(params.Position.Character))
	loc := features.Definition(doc, offset)
	if loc == nil {
		return nil, nil
	}
	return []protocol.Location{*loc}, nil
}

// -- Execute command --

func (s *Server) ExecuteCommand(ctx context.Context, params *protocol.ExecuteCommandParams) (interface{}, error) {
	if params.Command != "json.sort" {
		s.log.Warn("unknown command", zap.String("command", params.Command))
		return nil, nil
	}
	if len(params.Arguments) == 0 {
		return nil, nil
	}
	uriStr, ok := params.Arguments[0].(string)
	if !ok {
		return nil, nil
	}
	u := uri.URI(uriStr)

	s.stateMu.Lock()
	doc, ok := s.documents.Get(u)
	s.stateMu.Unlock()
	if !ok {
		return nil, nil
	}
	edits := features.SortDocument(doc)
	if len(edits) == 0 {
		return nil, nil
	}
	if s.client != nil {
		_, _ = s.client.ApplyEdit(ctx, &protocol.ApplyWorkspaceEditParams{
			Edit: protocol.WorkspaceEdit{
				Changes: map[uri.URI][]protocol.TextEdit{u: edits},
			},
		})
	}
	return nil, nil
}

// -- Internal helpers --

func (s *Server) offsetAndInlineSchema(u uri.URI, pos protocol.Position) (uint32, string, bool) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	doc, ok := s.documents.Get(u)
	if !ok {
		return 0, "", false
	}
	offset := doc.LineIndex().OffsetOf(doc.Text, int(pos.Line), int(pos.Character))
	inline := schemastore.InlineSchemaURI(doc.Tree(), doc.Text)
	return offset, inline, true
}

// resolveSchema resolves and, if necessary, fetches-and-compiles the
// schema for a document, matching resolve_schema's lock/unlock discipline:
// the state lock is held only to consult or update the cache, never
// across the blocking HTTP fetch.
func (s *Server) resolveSchema(ctx context.Context, docURI string, inlineSchemaURI string) *jsonschema.Schema {
	s.stateMu.Lock()
	lookup := s.schemas.Resolve(docURI, inlineSchemaURI)
	s.stateMu.Unlock()

	switch lookup.State {
	case schemastore.LookupResolved:
		return lookup.Schema
	case schemastore.LookupNeedsFetch:
		schema, err := s.resolver.FetchAndCompile(ctx, lookup.FetchURI)
		if err != nil {
			s.log.Warn("schema fetch failed", zap.String("uri", lookup.FetchURI), zap.Error(err))
			return nil
		}
		s.stateMu.Lock()
		s.schemas.PutCompiled(lookup.FetchURI, schema)
		s.stateMu.Unlock()
		return schema
	default:
		return nil
	}
}

// debouncedValidate bumps the per-URI version counter and, after the
// debounce delay, validates only if no newer edit has arrived in the
// meantime (mirrors debounced_validate exactly).
func (s *Server) debouncedValidate(ctx context.Context, u uri.URI) {
	version := s.bumpDebounce(u)
	go func() {
		time.Sleep(debounceDelay)
		if s.currentDebounce(u) != version {
			return
		}
		s.validateAndPublish(ctx, u, version)
	}()
}

func (s *Server) bumpDebounce(u uri.URI) uint64 {
	s.debounceMu.Lock()
	defer s.debounceMu.Unlock()
	s.debounceVersions[u]++
	return s.debounceVersions[u]
}

func (s *Server) currentDebounce(u uri.URI) uint64 {
	s.debounceMu.Lock()
	defer s.debounceMu.Unlock()
	return s.debounceVersions[u]
}

// validateAndPublish runs syntax diagnostics, then (if the document parses
// cleanly) resolves and runs schema validation, and publishes the combined
// set to the client. debounceVersion is the debounce counter value this
// call was scheduled under; since resolveSchema may block on an arbitrarily
// slow fetch, the counter is rechecked immediately before publishing so a
// validation superseded by a newer edit never overwrites that edit's
// diagnostics (last-validation-wins).
func (s *Server) validateAndPublish(ctx context.Context, u uri.URI, debounceVersion uint64) {
	s.stateMu.Lock()
	doc, ok := s.documents.Get(u)
	if !ok {
		s.stateMu.Unlock()
		return
	}
	diags := diagnostics.SyntaxDiagnostics(doc)
	version := doc.Version
	needsSchema := len(diags) == 0
	var inlineSchema string
	if needsSchema {
		inlineSchema = schemastore.InlineSchemaURI(doc.Tree(), doc.Text)
	}
	s.stateMu.Unlock()

	if needsSchema {
		schema := s.resolveSchema(ctx, string(u), inlineSchema)
		if schema != nil {
			s.stateMu.Lock()
			doc, ok = s.documents.Get(u)
			if ok {
				diags = append(diags, diagnostics.Validate(doc, s.validate, schema)...)
			}
			s.stateMu.Unlock()
		}
	}

	if s.currentDebounce(u) != debounceVersion {
		return
	}

	if s.client != nil {
		_ = s.client.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
			URI:         u,
			Version:     uint32(version),
			Diagnostics: diags,
		})
	}
}
