package gemini

import "os"

// ModelFlashImagePreview is the multimodal image-generation model used for
// every operation in this application: solo portraits, couple combination,
// invitation compositing, and conversational refinement.
const ModelFlashImagePreview = "gemini-2.5-flash-image-preview"

// DefaultModelName is the default image model.
// Can be overridden via the GEMINI_IMAGE_MODEL environment variable.
const DefaultModelName = ModelFlashImagePreview

// GetModelName returns the image model to use, resolved from:
// 1. GEMINI_IMAGE_MODEL environment variable (if set)
// 2. Default: gemini-2.5-flash-image-preview
func GetModelName() string {
	if env := os.Getenv("GEMINI_IMAGE_MODEL"); env != "" {
		return env
	}
	return DefaultModelName
}
