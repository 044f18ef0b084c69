package gallery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/smenon/wedding-illustrator/internal/imaging"
)

// Download writes the artifact's current version to dir and returns the
// written path. The file name is derived from the version title and the
// one-based version number, with the extension following the encoded format:
// e.g. "couple-illustration-v2.png".
func (s *Store) Download(id, dir string) (string, error) {
	a, ok := s.Get(id)
	if !ok {
		return "", fmt.Errorf("artifact %s not found", id)
	}

	v := a.CurrentVersion()
	data := v.Image.EncodedBytes
	mime := v.Image.EncodedMIME
	if data == nil {
		data = v.Image.RawBytes
		mime = v.Image.RawMIME
	}
	if data == nil {
		return "", fmt.Errorf("artifact %s has no image data", id)
	}

	name := fmt.Sprintf("%s-v%d.%s", slugify(v.Title), a.CurrentIndex+1, imaging.ExtensionForMIME(mime))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	log.Info().
		Str("artifact_id", id).
		Str("path", path).
		Str("size", imaging.FormatBytes(len(data))).
		Msg("Artifact downloaded")

	return path, nil
}

// slugify lowercases a title and replaces spaces for use in a file name.
func slugify(title string) string {
	return strings.ReplaceAll(strings.ToLower(title), " ", "-")
}
