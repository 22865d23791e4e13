// Package gemini wraps the official google.golang.org/genai SDK for
// image generation.
//
// Information Hiding:
// - API authentication and client creation
// - Request configuration (response modalities) for image models
// - Lazy initialization so a credential configured at runtime is picked
//   up without a restart

package gemini

import (
	"context"
	"fmt"
	"sync"

	"github.com/fjacquet/Nano-Banana-MCP/model"
	"google.golang.org/genai"
)

// ImageModel is the remote generation capability consumed by the
// orchestrator: given a model id and an ordered part sequence, it returns
// the raw provider response or fails.
type ImageModel interface {
	GenerateImage(ctx context.Context, modelID string, parts []*genai.Part) (*genai.GenerateContentResponse, error)
}

// TokenSource supplies the current credential token. Returning false
// means no credential is active.
type TokenSource func() (string, bool)

// Client implements ImageModel against the Gemini API. The underlying
// SDK client is created on first use with whatever token the source
// yields at that moment, so configure-then-generate works within one
// process lifetime.
type Client struct {
	mu      sync.Mutex
	tokens  TokenSource
	client  *genai.Client
	usedKey string
}

// NewClient creates a Client over the given token source.
func NewClient(tokens TokenSource) *Client {
	return &Client{tokens: tokens}
}

// GenerateImage sends the parts as a single user turn and requests both
// text and image response modalities.
func (c *Client) GenerateImage(ctx context.Context, modelID string, parts []*genai.Part) (*genai.GenerateContentResponse, error) {
	client, err := c.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}

	resp, err := client.Models.GenerateContent(ctx, modelID, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	return resp, nil
}

// ensureClient initializes (or re-initializes after a credential change)
// the SDK client.
func (c *Client) ensureClient(ctx context.Context) (*genai.Client, error) {
	key, ok := c.tokens()
	if !ok {
		return nil, model.NotConfiguredf("no API key is configured; set %s or call configure_credential", "GEMINI_API_KEY")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil && c.usedKey == key {
		return c.client, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	c.client = client
	c.usedKey = key
	return client, nil
}
