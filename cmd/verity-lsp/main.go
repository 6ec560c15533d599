// SPDX-License-Identifier: Apache-2.0
package main

import (
	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"verity/internal/lsp"
)

const lsName = "verity" // Name identifier for the language server

var (
	version = "0.0.1"        // Server version
	handler protocol.Handler // Protocol handler instance (wired up below)
)

func main() {
	// Configure debug logging (1 = debug level, nil = default logger)
	commonlog.Configure(1, nil)

	verityHandler := lsp.NewVerityHandler()

	// Wire up the handler with specific LSP method implementations
	handler = protocol.Handler{
		Initialize:            verityHandler.Initialize,
		Initialized:           verityHandler.Initialized,
		Shutdown:              verityHandler.Shutdown,
		SetTrace:              verityHandler.SetTrace,
		TextDocumentDidOpen:   verityHandler.TextDocumentDidOpen,
		TextDocumentDidChange: verityHandler.TextDocumentDidChange,
		TextDocumentDidClose:  verityHandler.TextDocumentDidClose,
	}

	srv := server.NewServer(&handler, lsName, false)
	if err := srv.RunStdio(); err != nil {
		panic(err)
	}
}
