// Package main provides the nanobanana CLI entry point.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/fjacquet/Nano-Banana-MCP/config"
	"github.com/fjacquet/Nano-Banana-MCP/gemini"
	"github.com/fjacquet/Nano-Banana-MCP/generator"
	"github.com/fjacquet/Nano-Banana-MCP/server"
	"github.com/fjacquet/Nano-Banana-MCP/storage"
)

var (
	// Global flags
	verbose bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "nanobanana",
		Short: "MCP server for Gemini image generation and editing",
		Long:  `An MCP (Model Context Protocol) stdio server exposing Google Gemini
image generation as callable tools.

Tools: generate_image, edit_image, continue_editing, get_last_image_info,
configure_credential, get_configuration_status, get_generation_history.`,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging (stderr)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(configureCmd())
	rootCmd.AddCommand(statusCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var outputDir string
	var noHistory bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the image tools over stdio",
		Long:  `Serve the MCP tool surface over stdio.

Stdout carries the protocol; logs go to stderr. The API key is resolved
from the ` + config.EnvAPIKey + ` environment variable first, then from
the per-user config record.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(verbose)

			resolver := config.NewResolver()
			client := gemini.NewClient(func() (string, bool) {
				cred, ok := resolver.Credential()
				return cred.Token(), ok
			})

			var recorder generator.Recorder
			var reader server.HistoryReader
			if !noHistory {
				history, err := storage.OpenHistory(filepath.Join(resolver.Dir(), "history.db"))
				if err != nil {
					slog.Warn("generation history disabled", "error", err)
				} else {
					defer history.Close()
					recorder = history
					reader = history
				}
			}

			if outputDir == "" {
				outputDir = generator.DefaultOutputDir()
			}
			gen := generator.New(client, resolver, recorder, outputDir)

			return server.New(gen, resolver, reader).Run(context.Background())
		},
	}

	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for generated images (default: platform documents/home folder)")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Disable the SQLite generation history")

	return cmd
}

func configureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure [api-key]",
		Short: "Save a Gemini API key to the per-user config record",
		Args:  cobra.ExactArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error {
			resolver := config.NewResolver()
			if err := resolver.Persist(args[0]); err != nil {
				return err
			}
			fmt.Println("API key saved.")
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether an API key is configured and where it came from",
		RunE:  func(cmd *cobra.Command, args []string) error {
			status := config.NewResolver().Status()
			if !status.Configured {
				fmt.Printf("Not configured. Set %s or run 'nanobanana configure'.\n", config.EnvAPIKey)
				return nil
			}
			fmt.Printf("Configured (source: %s).\n", status.Source)
			return nil
		},
	}
}

// setupLogging routes structured logs to stderr; stdout belongs to the
// MCP transport.
func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
