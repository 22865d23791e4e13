// Package generator orchestrates image generation: it assembles provider
// requests, reassembles multi-part responses, persists artifacts, and
// tracks session state for iterative editing.
//
// Information Hiding:
// - Request part ordering (primary image, references, prompt) internal
// - Response reassembly and the single-best-candidate policy internal
// - Artifact naming scheme and output directory layout internal

package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/fjacquet/Nano-Banana-MCP/gemini"
	"github.com/fjacquet/Nano-Banana-MCP/imageio"
	"github.com/fjacquet/Nano-Banana-MCP/model"
	"github.com/fjacquet/Nano-Banana-MCP/storage"
)

// Artifact filename prefixes.
const (
	generatedPrefix = "generated"
	editedPrefix    = "edited"
)

// noImageNote is appended to the narrative when the provider returned no
// image part. A text-only response is a valid provider outcome, not an
// error.
const noImageNote = "No image was produced for this request."

// CredentialChecker reports whether a credential is active. Satisfied by
// *config.Resolver.
type CredentialChecker interface {
	Configured() bool
}

// Recorder appends generation-history rows. Satisfied by
// *storage.HistoryStore. A nil Recorder disables history.
type Recorder interface {
	Record(ctx context.Context, entry storage.HistoryEntry) (string, error)
}

// Generator is the orchestration core shared by all image tools.
type Generator struct {
	model     gemini.ImageModel
	creds     CredentialChecker
	session   *Session
	history   Recorder
	outputDir string

	// Seams for deterministic artifact names in tests.
	now   func() time.Time
	newID func() string
}

// New creates a Generator. history may be nil.
func New(imageModel gemini.ImageModel, creds CredentialChecker, history Recorder, outputDir string) *Generator {
	return &Generator{
		model:     imageModel,
		creds:     creds,
		session:   NewSession(),
		history:   history,
		outputDir: outputDir,
		now:       time.Now,
		newID:     func() string { return uuid.NewString()[:6] },
	}
}

// DefaultOutputDir returns the platform default for generated images:
// the Documents folder on Windows and macOS, a home-relative folder
// elsewhere, and a working-directory-relative folder when the home
// directory is unknown.
func DefaultOutputDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "nano-banana-images"
	}
	switch runtime.GOOS {
	case "windows", "darwin":
		return filepath.Join(home, "Documents", "nano-banana-images")
	default:
		return filepath.Join(home, "nano-banana-images")
	}
}

// Generate runs a text-to-image request.
func (g *Generator) Generate(ctx context.Context, prompt, modelName string) (*model.GenerationResult, error) {
	modelID, err := g.checkPreconditions(prompt, modelName)
	if err != nil {
		return nil, err
	}

	parts := []*genai.Part{{Text: prompt}}
	resp, err := g.model.GenerateImage(ctx, modelID, parts)
	if err != nil {
		return nil, classifyRemote(err)
	}

	return g.reassemble(ctx, resp, generatedPrefix, prompt, modelID, nil)
}

// Edit runs an image-to-image request. The primary image is validated as
// a hard precondition; a failing reference image degrades to a warning
// and is omitted from the request.
func (g *Generator) Edit(ctx context.Context, imagePath, prompt string, referenceImages []string, modelName string) (*model.GenerationResult, error) {
	modelID, err := g.checkPreconditions(prompt, modelName)
	if err != nil {
		return nil, err
	}

	primary, err := imageio.Load(imagePath)
	if err != nil {
		return nil, err
	}

	parts := []*genai.Part{inlinePart(primary)}
	var warnings []string
	for _, ref := range referenceImages {
		img, loadErr := imageio.Load(ref)
		if loadErr != nil {
			_, reason := model.Classify(loadErr)
			warnings = append(warnings, fmt.Sprintf("Skipped reference image %q: %s", ref, reason))
			slog.WarnContext(ctx, "skipped reference image", "path", ref, "reason", reason)
			continue
		}
		parts = append(parts, inlinePart(img))
	}
	parts = append(parts, &genai.Part{Text: prompt})

	resp, err := g.model.GenerateImage(ctx, modelID, parts)
	if err != nil {
		return nil, classifyRemote(err)
	}

	return g.reassemble(ctx, resp, editedPrefix, prompt, modelID, warnings)
}

// ContinueEditing edits the session's last produced artifact. It never
// fails silently when the prior artifact has vanished: a deleted file
// surfaces as StalePriorImage, distinct from NoPriorImage.
func (g *Generator) ContinueEditing(ctx context.Context, prompt string, referenceImages []string, modelName string) (*model.GenerationResult, error) {
	last, ok := g.session.LastArtifactPath()
	if !ok {
		return nil, model.NoPriorImagef("no image has been generated in this session yet; use generate_image or edit_image first")
	}
	if _, err := os.Stat(last); err != nil {
		return nil, model.StalePriorImagef("the last generated image at %s no longer exists on disk", last)
	}
	return g.Edit(ctx, last, prompt, referenceImages, modelName)
}

// LastImageInfo reports the tracked artifact with a live stat probe. It
// never fails: absence and a vanished file are informational states.
func (g *Generator) LastImageInfo() model.LastImageInfo {
	path, ok := g.session.LastArtifactPath()
	if !ok {
		return model.LastImageInfo{}
	}
	info, err := os.Stat(path)
	if err != nil {
		return model.LastImageInfo{Path: path}
	}
	return model.LastImageInfo{
		Path:      path,
		Exists:    true,
		SizeBytes: info.Size(),
		ModTime:   info.ModTime(),
	}
}

// checkPreconditions enforces the shared fail-fast checks: active
// credential, non-empty prompt, recognized model literal. All run before
// any remote call or side effect.
func (g *Generator) checkPreconditions(prompt, modelName string) (string, error) {
	if !g.creds.Configured() {
		return "", model.NotConfiguredf("no API key is configured; use configure_credential or set GEMINI_API_KEY")
	}
	if strings.TrimSpace(prompt) == "" {
		return "", model.InvalidInputf("prompt must not be empty")
	}
	return gemini.ResolveModel(modelName)
}

// reassemble folds the provider response into a uniform result. Only the
// first candidate is considered; its parts are walked in order, text
// concatenated, images persisted. The most recently written image wins
// the session state slot.
func (g *Generator) reassemble(ctx context.Context, resp *genai.GenerateContentResponse, prefix, prompt, modelID string, warnings []string) (*model.GenerationResult, error) {
	result := &model.GenerationResult{Warnings: warnings}

	var narrative strings.Builder
	for _, part := range firstCandidateParts(resp) {
		if part == nil {
			continue
		}
		if part.Text != "" {
			narrative.WriteString(part.Text)
		}
		if part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}

		path, err := g.persistImage(part.InlineData.Data, prefix)
		if err != nil {
			return nil, err
		}
		mimeType := part.InlineData.MIMEType
		if mimeType == "" {
			mimeType = "image/png"
		}
		result.ProducedArtifacts = append(result.ProducedArtifacts, model.PersistedImage{
			FilePath: path,
			MimeType: mimeType,
		})
		g.session.SetLastArtifact(path)
		slog.InfoContext(ctx, "persisted artifact", "path", path, "mime_type", mimeType)

		if g.history != nil {
			_, recErr := g.history.Record(ctx, storage.HistoryEntry{
				Kind:     prefix,
				Prompt:   prompt,
				Model:    modelID,
				FilePath: path,
				MimeType: mimeType,
			})
			if recErr != nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("History not recorded for %s: %v", path, recErr))
				slog.WarnContext(ctx, "history record failed", "path", path, "error", recErr)
			}
		}
	}

	result.NarrativeText = narrative.String()
	if len(result.ProducedArtifacts) == 0 {
		if result.NarrativeText == "" {
			result.NarrativeText = noImageNote
		} else {
			result.NarrativeText += "\n\n" + noImageNote
		}
	}
	return result, nil
}

// persistImage writes image bytes under the output directory using the
// generated/edited naming scheme. Directory creation is idempotent and
// tolerates concurrent creation by another process.
func (g *Generator) persistImage(data []byte, prefix string) (string, error) {
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", g.outputDir, err)
	}

	timestamp := strings.NewReplacer(":", "-", ".", "-").
		Replace(g.now().UTC().Format("2006-01-02T15:04:05.000Z"))
	name := fmt.Sprintf("%s-%s-%s.png", prefix, timestamp, g.newID())
	path := filepath.Join(g.outputDir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image %s: %w", path, err)
	}
	return path, nil
}

// inlinePart converts a loaded image into an inline request part.
func inlinePart(img model.LoadedImage) *genai.Part {
	return &genai.Part{
		InlineData: &genai.Blob{
			MIMEType: img.MimeType,
			Data:     img.Data,
		},
	}
}

// firstCandidateParts extracts the parts of the first candidate, the
// single-best-result policy. Subsequent candidates are ignored.
func firstCandidateParts(resp *genai.GenerateContentResponse) []*genai.Part {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	return resp.Candidates[0].Content.Parts
}

// classifyRemote maps a transport or provider failure onto the taxonomy,
// preserving an already-classified NotConfigured from the lazy client.
func classifyRemote(err error) error {
	if errors.Is(err, model.ErrNotConfigured) {
		return err
	}
	return model.GenerationFailedf("%v", err)
}
