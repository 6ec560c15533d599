package lsp

import (
	"fmt"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"verity/grammar"
	"verity/internal/parser"
	"verity/internal/semantic"
)

// VerityHandler implements the LSP server handlers for annotated source
// files. Every open document is re-parsed and re-checked on change, and the
// resulting diagnostics are pushed to the editor.
type VerityHandler struct {
	mu       sync.RWMutex
	content  map[string]string
	programs map[string]*grammar.Program
}

// NewVerityHandler creates and returns a new VerityHandler instance
func NewVerityHandler() *VerityHandler {
	return &VerityHandler{
		content:  make(map[string]string),
		programs: make(map[string]*grammar.Program),
	}
}

// Initialize responds to the LSP client's initialize request and advertises the server's capabilities
func (h *VerityHandler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
		},
	}, nil
}

// Initialized is called after the client receives the server's capabilities and completes initialization
func (h *VerityHandler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

// Shutdown handles the LSP shutdown request
func (h *VerityHandler) Shutdown(ctx *glsp.Context) error {
	return nil
}

// SetTrace handles trace level changes; tracing is not implemented.
func (h *VerityHandler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// TextDocumentDidOpen handles file open notifications from the editor
func (h *VerityHandler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	return h.refresh(ctx, params.TextDocument.URI, params.TextDocument.Text)
}

// TextDocumentDidChange handles file change notifications from the editor
func (h *VerityHandler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	// The server advertises full-document sync, so every change carries the
	// whole text.
	for _, change := range params.ContentChanges {
		switch whole := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			return h.refresh(ctx, params.TextDocument.URI, whole.Text)
		case *protocol.TextDocumentContentChangeEventWhole:
			return h.refresh(ctx, params.TextDocument.URI, whole.Text)
		}
	}
	return nil
}

// TextDocumentDidClose handles file close notifications from the editor
func (h *VerityHandler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return fmt.Errorf("failed to convert URI %s: %w", params.TextDocument.URI, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.content, path)
	delete(h.programs, path)
	return nil
}

// refresh re-parses and re-checks one document and publishes its
// diagnostics. A clean document publishes an empty list, clearing earlier
// markers in the editor.
func (h *VerityHandler) refresh(ctx *glsp.Context, rawURI protocol.DocumentUri, text string) error {
	path, err := uriToPath(rawURI)
	if err != nil {
		return fmt.Errorf("failed to convert URI %s: %w", rawURI, err)
	}

	diagnostics := make([]protocol.Diagnostic, 0)
	program, parseErr := parser.ParseSource(path, text)
	if parseErr != nil {
		diagnostics = append(diagnostics, ConvertParseError(parseErr)...)
	} else {
		h.mu.Lock()
		h.content[path] = text
		h.programs[path] = program
		h.mu.Unlock()

		semanticErrors := semantic.NewAnalyzer().Analyze(program)
		diagnostics = append(diagnostics, ConvertSemanticErrors(semanticErrors)...)
	}

	sendDiagnosticNotification(ctx, rawURI, diagnostics)
	return nil
}

// Convert URI to platform-local file path
func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}

	path := u.Path

	// On Windows, remove leading slash (e.g., /C:/...) -> C:/...
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}

	return filepath.FromSlash(path), nil
}

func sendDiagnosticNotification(ctx *glsp.Context, uri protocol.URI, diagnostics []protocol.Diagnostic) {
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func ptrBool(b bool) *bool {
	return &b
}

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
