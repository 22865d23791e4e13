package server

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fjacquet/Nano-Banana-MCP/config"
	"github.com/fjacquet/Nano-Banana-MCP/model"
	"github.com/fjacquet/Nano-Banana-MCP/storage"
)

func TestErrorResultCarriesStableCode(t *testing.T) {
	result := errorResult(model.InvalidInputf("bad model %q", "gpt-5"))
	if !result.IsError {
		t.Fatal("expected an error result")
	}
	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	if !strings.HasPrefix(text.Text, "[INVALID_INPUT] ") {
		t.Errorf("expected a stable code prefix, got %q", text.Text)
	}
	if !strings.Contains(text.Text, "gpt-5") {
		t.Errorf("expected the message to name the bad literal, got %q", text.Text)
	}
}

func TestErrorResultClassifiesUnknownAsInternal(t *testing.T) {
	result := errorResult(errors.New("something odd"))
	text := result.Content[0].(*mcp.TextContent)
	if !strings.HasPrefix(text.Text, "[INTERNAL_ERROR] ") {
		t.Errorf("unclassified failures must map to InternalError, got %q", text.Text)
	}
	if !strings.Contains(text.Text, "something odd") {
		t.Errorf("the original message must be preserved, got %q", text.Text)
	}
}

func TestGenerationResultIncludesImageParts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "edited-x.png")
	if err := os.WriteFile(path, []byte("image-bytes"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	result := generationResult(&model.GenerationResult{
		NarrativeText:     "Done.",
		ProducedArtifacts: []model.PersistedImage{
			{FilePath: path, MimeType: "image/png"},
		},
		Warnings: []string{`Skipped reference image "/missing.png": file not found`},
	})
	if result.IsError {
		t.Fatal("expected a success result")
	}
	if len(result.Content) != 2 {
		t.Fatalf("expected text + image content, got %d parts", len(result.Content))
	}

	text := result.Content[0].(*mcp.TextContent).Text
	for _, want := range []string{"Done.", "Warning: Skipped reference image", "Saved: " + path} {
		if !strings.Contains(text, want) {
			t.Errorf("text part missing %q: %q", want, text)
		}
	}

	img, ok := result.Content[1].(*mcp.ImageContent)
	if !ok {
		t.Fatalf("expected image content, got %T", result.Content[1])
	}
	if string(img.Data) != "image-bytes" || img.MIMEType != "image/png" {
		t.Errorf("unexpected image content %q (%s)", img.Data, img.MIMEType)
	}
}

func TestLastImageTextStates(t *testing.T) {
	if got := lastImageText(model.LastImageInfo{}); !strings.Contains(got, "No image") {
		t.Errorf("unexpected empty-state text %q", got)
	}

	gone := lastImageText(model.LastImageInfo{Path: "/tmp/x.png"})
	if !strings.Contains(gone, "file not found") {
		t.Errorf("a vanished file must be reported informationally, got %q", gone)
	}

	live := lastImageText(model.LastImageInfo{
		Path:    "/tmp/x.png", Exists: true, SizeBytes: 42,
		ModTime: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	})
	if !strings.Contains(live, "/tmp/x.png") || !strings.Contains(live, "42 bytes") {
		t.Errorf("unexpected live text %q", live)
	}
}

func TestStatusText(t *testing.T) {
	unconfigured := statusText(config.Status{})
	if !strings.Contains(unconfigured, "Not configured") {
		t.Errorf("unexpected text %q", unconfigured)
	}
	if !strings.Contains(unconfigured, config.EnvAPIKey) {
		t.Errorf("the status should name the environment variable, got %q", unconfigured)
	}

	configured := statusText(config.Status{Configured: true, Source: config.SourceEnvironment})
	if !strings.Contains(configured, "environment") {
		t.Errorf("unexpected text %q", configured)
	}
	if strings.Contains(configured, "key") && strings.Contains(configured, "secret") {
		t.Errorf("status must not leak token material, got %q", configured)
	}
}

func TestHistoryText(t *testing.T) {
	if got := historyText(nil); !strings.Contains(got, "No artifacts") {
		t.Errorf("unexpected empty text %q", got)
	}

	got := historyText([]storage.HistoryEntry{
		{
			Kind:      "generated", Prompt: "a banana", Model: "gemini-2.5-flash-image",
			FilePath:  "/img/generated-1.png",
			CreatedAt: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		},
	})
	for _, want := range []string{"generated", "a banana", "/img/generated-1.png"} {
		if !strings.Contains(got, want) {
			t.Errorf("history text missing %q: %q", want, got)
		}
	}
}
