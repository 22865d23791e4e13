// Package server exposes the image tools over the Model Context Protocol.
//
// Information Hiding:
// - Tool registration and argument schemas internal
// - Error-to-tool-result mapping centralized (no unclassified failure
//   text crosses the protocol boundary)
// - Transport details (stdio) hidden from the orchestration core

package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fjacquet/Nano-Banana-MCP/config"
	"github.com/fjacquet/Nano-Banana-MCP/generator"
	"github.com/fjacquet/Nano-Banana-MCP/model"
	"github.com/fjacquet/Nano-Banana-MCP/storage"
)

const (
	serverName    = "nano-banana-mcp"
	serverVersion = "1.1.0"
)

// HistoryReader lists recorded artifacts. Satisfied by
// *storage.HistoryStore. Nil disables the history tool's content.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]storage.HistoryEntry, error)
}

// Server wires the orchestration core to the MCP tool surface.
type Server struct {
	generator *generator.Generator
	creds     *config.Resolver
	history   HistoryReader
}

// New creates a Server. history may be nil.
func New(gen *generator.Generator, creds *config.Resolver, history HistoryReader) *Server {
	return &Server{generator: gen, creds: creds, history: history}
}

// Run serves tool calls over stdio until the context is canceled or the
// client disconnects. Stdout carries the protocol; all logging goes to
// stderr.
func (s *Server) Run(ctx context.Context) error {
	srv := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)
	s.registerTools(srv)

	slog.Info("serving MCP over stdio", "server", serverName, "version", serverVersion)
	return srv.Run(ctx, &mcp.StdioTransport{})
}

// errorResult classifies a failure and renders it as a tool error so the
// client sees a stable code plus a human-readable message.
func errorResult(err error) *mcp.CallToolResult {
	code, message := model.Classify(err)
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("[%s] %s", code, message)},
		},
	}
}

// textResult renders a plain text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// generationResult renders a GenerationResult as narrative text,
// warnings, saved-file lines, and the image bytes themselves as image
// content parts.
func generationResult(result *model.GenerationResult) *mcp.CallToolResult {
	var text strings.Builder
	text.WriteString(result.NarrativeText)
	for _, warning := range result.Warnings {
		text.WriteString("\nWarning: ")
		text.WriteString(warning)
	}
	for _, artifact := range result.ProducedArtifacts {
		text.WriteString("\nSaved: ")
		text.WriteString(artifact.FilePath)
	}

	contents := []mcp.Content{&mcp.TextContent{Text: strings.TrimSpace(text.String())}}
	for _, artifact := range result.ProducedArtifacts {
		data, err := os.ReadFile(artifact.FilePath)
		if err != nil {
			// The file was just written; losing it here is informational.
			contents = append(contents, &mcp.TextContent{
				Text: fmt.Sprintf("Could not read back %s: %v", artifact.FilePath, err),
			})
			continue
		}
		contents = append(contents, &mcp.ImageContent{
			MIMEType: artifact.MimeType,
			Data:     data,
		})
	}
	return &mcp.CallToolResult{Content: contents}
}
