// Package imageio validates and loads local image files supplied by
// protocol clients.
//
// Information Hiding:
// - Extension allow-list and size cap fixed internally
// - Path canonicalization strategy hidden from callers
// - Extension-to-mime mapping centralized

package imageio

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fjacquet/Nano-Banana-MCP/model"
)

// MaxImageBytes is the size cap for any client-supplied image file.
const MaxImageBytes = 20 << 20 // 20 MiB

// allowedExtensions is the closed set of accepted file extensions,
// matched case-insensitively.
var allowedExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"webp": {},
	"gif":  {},
}

// Validate checks a client-supplied path and returns its canonical
// absolute form. Checks run in a fixed order: canonicalize, extension,
// existence, size. Every check runs on every call; the filesystem can
// change between calls, so verdicts are never cached.
func Validate(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", model.InvalidInputf("image path must not be empty")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", model.InvalidInputf("cannot resolve path %q: %v", path, err)
	}

	ext := normalizedExt(abs)
	if _, ok := allowedExtensions[ext]; !ok {
		return "", model.InvalidInputf("unsupported file extension %q (allowed: jpg, jpeg, png, webp, gif)", ext)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", model.InvalidInputf("file not found: %s", abs)
		}
		return "", model.InvalidInputf("cannot access %s: %v", abs, err)
	}
	if info.IsDir() {
		return "", model.InvalidInputf("%s is a directory, not an image file", abs)
	}
	if info.Size() > MaxImageBytes {
		return "", model.InvalidInputf("file %s exceeds the %d MiB size limit (%d bytes)", abs, MaxImageBytes>>20, info.Size())
	}

	return abs, nil
}

// Load validates the path and reads the file into memory, pairing the
// bytes with the extension-derived mime type. Contents are never sniffed;
// matching extension to content is the caller's responsibility.
func Load(path string) (model.LoadedImage, error) {
	abs, err := Validate(path)
	if err != nil {
		return model.LoadedImage{}, err
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return model.LoadedImage{}, model.InvalidInputf("cannot read %s: %v", abs, err)
	}

	return model.LoadedImage{
		Path:     abs,
		MimeType: MimeTypeForExt(normalizedExt(abs)),
		Data:     data,
	}, nil
}

// MimeTypeForExt maps an extension to a mime type as a total function.
// The image/jpeg default is unreachable behind Validate, which already
// screens unknown extensions, but the mapping stays total so it has a
// defined answer for every input.
func MimeTypeForExt(ext string) string {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	case "gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}

// normalizedExt returns the lower-cased extension without the dot.
func normalizedExt(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}
