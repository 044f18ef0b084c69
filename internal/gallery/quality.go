package gallery

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/smenon/wedding-illustrator/internal/imaging"
)

// SetQuality applies a quality edit to one version of an artifact. The edit
// is two-phase: the quality factor is recorded synchronously so callers see
// it immediately, then the encoded bytes are re-produced from the raw bytes
// in the background and swapped in when ready.
//
// A version with no raw bytes cannot be re-encoded; the call is a no-op.
// If the background re-encode fails, the recorded quality is not reverted and
// the error is passed to done. done may be nil; it is also invoked with nil
// on success, which tests and the CLI use to synchronize.
//
// Concurrent edits to the same version follow last-write-wins: quality edits
// are user-paced, so a stale re-encode overwriting a newer one is accepted.
func (s *Store) SetQuality(id string, versionIndex int, quality float64, done func(error)) {
	notify := func(err error) {
		if done != nil {
			done(err)
		}
	}

	s.mu.Lock()
	a := s.find(id)
	if a == nil || versionIndex < 0 || versionIndex >= len(a.Versions) {
		s.mu.Unlock()
		notify(nil)
		return
	}
	v := &a.Versions[versionIndex]
	if v.Image.RawBytes == nil {
		s.mu.Unlock()
		notify(nil)
		return
	}

	v.Quality = quality
	v.editToken++
	token := v.editToken
	raw := v.Image.RawBytes
	format := imaging.FormatForMIME(v.Image.EncodedMIME)
	s.mu.Unlock()

	go func() {
		encoded, err := imaging.Reencode(raw, quality, format)
		if err != nil {
			log.Error().Err(err).
				Str("artifact_id", id).
				Int("version", versionIndex).
				Float64("quality", quality).
				Msg("Quality re-encode failed")
			notify(fmt.Errorf("failed to re-encode at quality %.2f: %w", quality, err))
			return
		}

		s.mu.Lock()
		a := s.find(id)
		if a == nil || versionIndex >= len(a.Versions) {
			// The gallery was reset while re-encoding; drop the result.
			s.mu.Unlock()
			notify(nil)
			return
		}
		v := &a.Versions[versionIndex]
		if v.editToken != token {
			log.Debug().
				Str("artifact_id", id).
				Int("version", versionIndex).
				Msg("Stale quality re-encode landing after a newer edit")
		}
		v.Image.EncodedBytes = encoded.Bytes
		v.Image.EncodedSize = encoded.Size
		v.Image.EncodedMIME = encoded.MIMEType()
		s.mu.Unlock()
		notify(nil)
	}()
}
