package server

import (
	"fmt"
	"strings"

	"github.com/fjacquet/Nano-Banana-MCP/config"
	"github.com/fjacquet/Nano-Banana-MCP/model"
	"github.com/fjacquet/Nano-Banana-MCP/storage"
)

// lastImageText renders the last-image query. Absence of a prior image
// and a vanished file are informational, never errors.
func lastImageText(info model.LastImageInfo) string {
	if info.Path == "" {
		return "No image has been generated in this session yet."
	}
	if !info.Exists {
		return fmt.Sprintf("Last image: %s (file not found)", info.Path)
	}
	return fmt.Sprintf("Last image: %s\nSize: %d bytes\nModified: %s",
		info.Path, info.SizeBytes, info.ModTime.Format("2006-01-02 15:04:05 MST"))
}

// statusText renders the configuration status without token material.
func statusText(status config.Status) string {
	if !status.Configured {
		return fmt.Sprintf("Not configured. Set %s or call configure_credential.", config.EnvAPIKey)
	}
	return fmt.Sprintf("Configured (source: %s).", status.Source)
}

// historyText renders recent history entries, newest first.
func historyText(entries []storage.HistoryEntry) string {
	if len(entries) == 0 {
		return "No artifacts recorded yet."
	}
	var text strings.Builder
	for i, entry := range entries {
		if i > 0 {
			text.WriteString("\n")
		}
		fmt.Fprintf(&text, "%s  %s  %s  %s\n  prompt: %s",
			entry.CreatedAt.Format("2006-01-02 15:04:05"), entry.Kind, entry.Model, entry.FilePath, entry.Prompt)
	}
	return text.String()
}
