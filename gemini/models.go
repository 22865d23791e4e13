package gemini

import "github.com/fjacquet/Nano-Banana-MCP/model"

// Model literals accepted from protocol clients. The set is closed: an
// unspecified model means ModelDefault and anything else is rejected
// before a remote call is made.
const (
	ModelDefault = "default"
	ModelPro     = "pro"
)

// Gemini model ids behind the literals.
const (
	defaultModelID = "gemini-2.5-flash-image"
	proModelID     = "gemini-3-pro-image-preview"
)

// ResolveModel maps a client-supplied model literal onto a Gemini model
// id. The empty string behaves identically to ModelDefault.
func ResolveModel(name string) (string, error) {
	switch name {
	case "", ModelDefault:
		return defaultModelID, nil
	case ModelPro:
		return proModelID, nil
	default:
		return "", model.InvalidInputf("unknown model %q (allowed: %q, %q)", name, ModelDefault, ModelPro)
	}
}
