// Package workflow drives a generation run: it owns the user's source-input
// slots, reconciles output selections against input availability, and
// orchestrates the provider calls that turn inputs into gallery artifacts.
package workflow

import (
	"bytes"
	"fmt"
	"os"

	"github.com/evanoberholster/imagemeta"
	"github.com/rs/zerolog/log"

	"github.com/smenon/wedding-illustrator/internal/gallery"
	"github.com/smenon/wedding-illustrator/internal/imaging"
)

// Slot names one source-input position. Each slot holds zero or one image.
type Slot string

const (
	SlotBride       Slot = "bride"
	SlotGroom       Slot = "groom"
	SlotCouplePhoto Slot = "couple-photo"
	SlotCard        Slot = "card"
	SlotBackground  Slot = "background"
	SlotSeed        Slot = "seed" // a finished image the user wants to promote and refine
)

// inputQuality is the JPEG quality applied to uploads before they are sent
// to the provider. The invitation background is exempt: compositing needs it
// at full fidelity.
const inputQuality = 0.7

// SourceInputs holds the user-supplied images, one per slot.
type SourceInputs struct {
	assets map[Slot]*gallery.ImageAsset
}

// NewSourceInputs creates an empty input set.
func NewSourceInputs() *SourceInputs {
	return &SourceInputs{assets: make(map[Slot]*gallery.ImageAsset)}
}

// Load reads an image file into the given slot, re-encoding it for upload.
// EXIF metadata, when present, is logged for operator visibility.
func (s *SourceInputs) Load(slot Slot, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	logExIF(slot, path, data)

	asset := &gallery.ImageAsset{
		RawBytes: data,
		RawSize:  len(data),
		RawMIME:  imaging.DetectMIME(data),
	}

	if slot == SlotBackground {
		// Keep the background as supplied; the composite step needs the
		// original layout and text rendering intact.
		asset.EncodedBytes = data
		asset.EncodedSize = len(data)
		asset.EncodedMIME = asset.RawMIME
	} else {
		encoded, err := imaging.Reencode(data, inputQuality, imaging.FormatJPEG)
		if err != nil {
			return fmt.Errorf("failed to compress %s image: %w", slot, err)
		}
		asset.EncodedBytes = encoded.Bytes
		asset.EncodedSize = encoded.Size
		asset.EncodedMIME = "image/jpeg"
	}

	s.assets[slot] = asset
	log.Info().
		Str("slot", string(slot)).
		Str("path", path).
		Str("original", imaging.FormatBytes(asset.RawSize)).
		Str("compressed", imaging.FormatBytes(asset.EncodedSize)).
		Msg("Input loaded")
	return nil
}

// Set places an already-built asset into a slot.
func (s *SourceInputs) Set(slot Slot, asset *gallery.ImageAsset) {
	s.assets[slot] = asset
}

// Clear empties a slot.
func (s *SourceInputs) Clear(slot Slot) {
	delete(s.assets, slot)
}

// Get returns the asset in the slot, or nil.
func (s *SourceInputs) Get(slot Slot) *gallery.ImageAsset {
	return s.assets[slot]
}

// Has reports whether the slot holds an image.
func (s *SourceInputs) Has(slot Slot) bool {
	return s.assets[slot] != nil
}

// encoded returns the upload-ready bytes for a slot, or nil when empty.
func (s *SourceInputs) encoded(slot Slot) []byte {
	if a := s.assets[slot]; a != nil {
		return a.EncodedBytes
	}
	return nil
}

// logExIF extracts and logs EXIF metadata from an uploaded photo. Headshots
// usually carry camera metadata; screenshots and scans usually do not, so
// decode failures are expected and logged at debug only.
func logExIF(slot Slot, path string, data []byte) {
	meta, err := imagemeta.Decode(bytes.NewReader(data))
	if err != nil {
		log.Debug().Str("slot", string(slot)).Str("path", path).Msg("No EXIF metadata in input")
		return
	}
	ev := log.Debug().Str("slot", string(slot)).Str("path", path)
	if make_, model := meta.Make, meta.Model; make_ != "" || model != "" {
		ev = ev.Str("camera", make_+" "+model)
	}
	if !meta.DateTimeOriginal().IsZero() {
		ev = ev.Time("taken", meta.DateTimeOriginal())
	}
	ev.Msg("Input EXIF metadata")
}
