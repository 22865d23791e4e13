package server

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Argument structs double as strict input schemas: fields without
// omitempty are required, enums are constrained via tags.

type configureCredentialArgs struct {
	Token string `json:"token" jsonschema_description:"The Gemini API key to persist"`
}

type generateImageArgs struct {
	Prompt  string `json:"prompt" jsonschema_description:"Text description of the image to generate"`
	ModelID string `json:"modelId,omitempty" jsonschema_description:"Model to use" jsonschema_enum:"default,pro"`
}

type editImageArgs struct {
	ImagePath       string   `json:"imagePath" jsonschema_description:"Path to the local image file to edit"`
	Prompt          string   `json:"prompt" jsonschema_description:"Instructions describing the edit"`
	ReferenceImages []string `json:"referenceImages,omitempty" jsonschema_description:"Paths to additional local images used as guidance"`
	ModelID         string   `json:"modelId,omitempty" jsonschema_description:"Model to use" jsonschema_enum:"default,pro"`
}

type continueEditingArgs struct {
	Prompt          string   `json:"prompt" jsonschema_description:"Instructions describing the next edit"`
	ReferenceImages []string `json:"referenceImages,omitempty" jsonschema_description:"Paths to additional local images used as guidance"`
	ModelID         string   `json:"modelId,omitempty" jsonschema_description:"Model to use" jsonschema_enum:"default,pro"`
}

type historyArgs struct {
	Limit int `json:"limit,omitempty" jsonschema_description:"Maximum number of entries to return (default 20)"`
}

type noArgs struct{}

func (s *Server) registerTools(srv *mcp.Server) {
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "configure_credential",
		Description: "Save a Gemini API key to the per-user config record and activate it immediately",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args configureCredentialArgs) (*mcp.CallToolResult, any, error) {
		if err := s.creds.Persist(args.Token); err != nil {
			return errorResult(err), nil, nil
		}
		return textResult("API key saved to the config record and active for this session."), nil, nil
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "generate_image",
		Description: "Generate an image from a text prompt using Gemini",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args generateImageArgs) (*mcp.CallToolResult, any, error) {
		slog.DebugContext(ctx, "generate_image", "model", args.ModelID)
		result, err := s.generator.Generate(ctx, args.Prompt, args.ModelID)
		if err != nil {
			return errorResult(err), nil, nil
		}
		return generationResult(result), nil, nil
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "edit_image",
		Description: "Edit a local image with a text prompt, optionally guided by reference images",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args editImageArgs) (*mcp.CallToolResult, any, error) {
		slog.DebugContext(ctx, "edit_image", "path", args.ImagePath, "refs", len(args.ReferenceImages))
		result, err := s.generator.Edit(ctx, args.ImagePath, args.Prompt, args.ReferenceImages, args.ModelID)
		if err != nil {
			return errorResult(err), nil, nil
		}
		return generationResult(result), nil, nil
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "continue_editing",
		Description: "Apply further edits to the most recently generated image of this session",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args continueEditingArgs) (*mcp.CallToolResult, any, error) {
		result, err := s.generator.ContinueEditing(ctx, args.Prompt, args.ReferenceImages, args.ModelID)
		if err != nil {
			return errorResult(err), nil, nil
		}
		return generationResult(result), nil, nil
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_last_image_info",
		Description: "Report the most recently generated image of this session",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ noArgs) (*mcp.CallToolResult, any, error) {
		return textResult(lastImageText(s.generator.LastImageInfo())), nil, nil
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_configuration_status",
		Description: "Report whether an API key is configured and where it came from",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ noArgs) (*mcp.CallToolResult, any, error) {
		return textResult(statusText(s.creds.Status())), nil, nil
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_generation_history",
		Description: "List recently generated artifacts recorded in the local history",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args historyArgs) (*mcp.CallToolResult, any, error) {
		if s.history == nil {
			return textResult("Generation history is not available."), nil, nil
		}
		entries, err := s.history.Recent(ctx, args.Limit)
		if err != nil {
			return errorResult(err), nil, nil
		}
		return textResult(historyText(entries)), nil, nil
	})
}
