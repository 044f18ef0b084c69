package workflow

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/smenon/wedding-illustrator/internal/gallery"
	"github.com/smenon/wedding-illustrator/internal/imaging"
)

// Promote turns the image in the seed slot into a single-version gallery
// artifact of the given kind, so an existing illustration can be refined
// without regenerating it. The main input slots and the seed are cleared
// afterwards: leaving stale selections around after a promote confuses the
// next run, so the reset is deliberate. Callers should zero their Selection
// to match.
func Promote(store *gallery.Store, inputs *SourceInputs, kind gallery.Kind) (gallery.Artifact, error) {
	seed := inputs.Get(SlotSeed)
	if seed == nil {
		return gallery.Artifact{}, fmt.Errorf("no image loaded to promote")
	}

	quality := defaultQuality
	if seed.EncodedMIME == "image/png" {
		quality = 1.0
	}
	v := gallery.Version{
		Title:   kind.Title(),
		Image:   *seed,
		Quality: quality,
	}
	a := gallery.NewArtifact(kind, v)
	store.Add(a)

	inputs.Clear(SlotBride)
	inputs.Clear(SlotGroom)
	inputs.Clear(SlotCouplePhoto)
	inputs.Clear(SlotCard)
	inputs.Clear(SlotSeed)

	log.Info().
		Str("artifact_id", a.ID).
		Str("kind", string(kind)).
		Str("size", imaging.FormatBytes(v.Image.EncodedSize)).
		Msg("Image promoted into gallery")

	return a, nil
}
