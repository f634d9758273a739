// Package server provides the bfvm language server.
package server

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/4atj/bfvm/compiler"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "bfvm-lsp"

// LspServer serves editor diagnostics and hovers for tape machine programs.
type LspServer struct {
	mu   sync.Mutex
	docs map[string]string // URI → full document content

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

// NewLSP creates a new LSP server.
func NewLSP() *LspServer {
	s := &LspServer{
		docs:    make(map[string]string),
		version: "0.1.0",
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentHover: s.textDocumentHover,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)

	return s
}

// Run starts the LSP server on stdio. Blocks until the client disconnects.
func (s *LspServer) Run() error {
	return s.server.RunStdio()
}

// --- LSP lifecycle handlers ---

func (s *LspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	commonlog.NewInfoMessage(0, "bfvm LSP initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}

	capabilities.HoverProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	text := params.TextDocument.Text

	s.mu.Lock()
	s.docs[string(uri)] = text
	s.mu.Unlock()

	s.publishDiagnostics(ctx, uri, text)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			s.mu.Lock()
			s.docs[string(uri)] = whole.Text
			text := whole.Text
			s.mu.Unlock()

			s.publishDiagnostics(ctx, uri, text)
		}
	}
	return nil
}

func (s *LspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, string(uri))
	s.mu.Unlock()

	// Clear diagnostics for the closed document
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

// --- Diagnostics ---

func (s *LspServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	diagnostics := diagnose(text)
	if diagnostics == nil {
		diagnostics = []protocol.Diagnostic{}
	}

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// diagnose analyzes program text. Unrecognized instruction bytes are errors,
// exactly as the parser rejects them; unbalanced brackets are warnings only,
// because the interpreter accepts them silently. A single trailing newline is
// tolerated, matching the CLI's source-file handling.
func diagnose(text string) []protocol.Diagnostic {
	code := strings.TrimSuffix(text, "\n")

	var diagnostics []protocol.Diagnostic
	var openStack []int // offsets of unmatched '[' so far

	line := uint32(0)
	char := uint32(0)
	for i := 0; i < len(code); i++ {
		b := code[i]
		pos := protocol.Position{Line: line, Character: char}

		switch b {
		case compiler.ByteIncrement, compiler.ByteDecrement,
			compiler.ByteMoveRight, compiler.ByteMoveLeft,
			compiler.BytePrint, compiler.ByteRead:
			// recognized leaf instruction

		case compiler.ByteLoopOpen:
			openStack = append(openStack, i)

		case compiler.ByteLoopClose:
			if len(openStack) > 0 {
				openStack = openStack[:len(openStack)-1]
			} else {
				diagnostics = append(diagnostics, diagnosticAt(pos,
					protocol.DiagnosticSeverityWarning,
					"stray ']' terminates the enclosing block here; the rest of the stream is ignored"))
			}

		default:
			diagnostics = append(diagnostics, diagnosticAt(pos,
				protocol.DiagnosticSeverityError,
				fmt.Sprintf("unrecognized instruction byte %#x (%q)", b, string(rune(b)))))
		}

		if b == '\n' {
			line++
			char = 0
		} else {
			char++
		}
	}

	for _, off := range openStack {
		diagnostics = append(diagnostics, diagnosticAt(positionOf(code, off),
			protocol.DiagnosticSeverityWarning,
			"unmatched '[': this loop body silently runs to the end of the stream"))
	}

	return diagnostics
}

func diagnosticAt(pos protocol.Position, severity protocol.DiagnosticSeverity, message string) protocol.Diagnostic {
	source := lspName
	end := protocol.Position{Line: pos.Line, Character: pos.Character + 1}
	return protocol.Diagnostic{
		Range:    protocol.Range{Start: pos, End: end},
		Severity: &severity,
		Source:   &source,
		Message:  message,
	}
}

// positionOf converts a byte offset into an LSP position.
func positionOf(text string, offset int) protocol.Position {
	line := uint32(0)
	char := uint32(0)
	for i := 0; i < offset && i < len(text); i++ {
		if text[i] == '\n' {
			line++
			char = 0
		} else {
			char++
		}
	}
	return protocol.Position{Line: line, Character: char}
}

// --- Hover ---

var instructionDocs = map[byte]string{
	compiler.ByteIncrement: "`+` — add 1 to the current cell, wrapping modulo 256",
	compiler.ByteDecrement: "`-` — subtract 1 from the current cell, wrapping modulo 256",
	compiler.ByteMoveRight: "`>` — move the pointer right, wrapping at the end of the tape",
	compiler.ByteMoveLeft:  "`<` — move the pointer left, wrapping at the start of the tape",
	compiler.BytePrint:     "`.` — write the current cell to output (flushed immediately)",
	compiler.ByteRead:      "`,` — read one input byte into the current cell (0 once input runs out)",
	compiler.ByteLoopOpen:  "`[` — loop: run the body while the current cell is nonzero",
	compiler.ByteLoopClose: "`]` — end of loop body",
}

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	uri := params.TextDocument.URI
	pos := params.Position

	s.mu.Lock()
	text, ok := s.docs[string(uri)]
	s.mu.Unlock()

	if !ok {
		return nil, nil
	}

	b, found := byteAt(text, pos)
	if !found {
		return nil, nil
	}
	doc, ok := instructionDocs[b]
	if !ok {
		return nil, nil
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: doc,
		},
		Range: &protocol.Range{
			Start: pos,
			End:   protocol.Position{Line: pos.Line, Character: pos.Character + 1},
		},
	}, nil
}

// byteAt returns the byte at an LSP position, if the position is on one.
func byteAt(text string, pos protocol.Position) (byte, bool) {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return 0, false
	}
	ln := lines[pos.Line]
	if int(pos.Character) >= len(ln) {
		return 0, false
	}
	return ln[pos.Character], true
}

func boolPtr(b bool) *bool {
	return &b
}
