// Package gallery holds the in-memory store of generated artifacts and their
// version histories. Versions are append-only: refinement appends, navigation
// moves a clamped cursor, and quality edits replace encoded bytes in place
// without ever touching raw bytes, version count, or the cursor.
package gallery

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/smenon/wedding-illustrator/internal/imaging"
)

// Kind discriminates artifact pipelines. The store itself is kind-agnostic;
// the orchestrator branches on Kind when selecting generation paths.
type Kind string

const (
	KindBride      Kind = "bride"
	KindGroom      Kind = "groom"
	KindCouple     Kind = "couple"
	KindInvitation Kind = "invitation"
)

// Title returns the display title for artifacts of this kind.
func (k Kind) Title() string {
	switch k {
	case KindBride:
		return "Bride Illustration"
	case KindGroom:
		return "Groom Illustration"
	case KindCouple:
		return "Couple Illustration"
	case KindInvitation:
		return "Final Wedding Invitation"
	}
	return string(k)
}

// IsIllustration reports whether artifacts of this kind are transparent
// illustrations (stored as PNG) rather than flattened composites (JPEG).
func (k Kind) IsIllustration() bool {
	return k != KindInvitation
}

// ImageAsset is one image at one point in time. RawBytes never change after
// creation; a quality edit produces new encoded bytes only.
type ImageAsset struct {
	RawBytes []byte
	RawSize  int
	RawMIME  string

	EncodedBytes []byte
	EncodedSize  int
	EncodedMIME  string
}

// Version is one rendition of an artifact: its image plus the quality factor
// the encoded bytes were produced at.
type Version struct {
	Title   string
	Image   ImageAsset
	Quality float64

	// editToken increments on every quality edit so a late async re-encode
	// can be identified as stale. Last write wins regardless; the token
	// exists so a stricter policy could be layered on without an API change.
	editToken uint64
}

// Artifact is a named, versioned generated image. Versions never shrink or
// reorder; CurrentIndex always satisfies 0 <= CurrentIndex < len(Versions).
type Artifact struct {
	ID           string
	Kind         Kind
	Title        string
	Versions     []Version
	CurrentIndex int
}

// CurrentVersion returns the version at the cursor.
func (a *Artifact) CurrentVersion() Version {
	return a.Versions[a.CurrentIndex]
}

// NewArtifact creates a single-version artifact with a fresh stable ID.
func NewArtifact(kind Kind, v Version) Artifact {
	return Artifact{
		ID:           fmt.Sprintf("%s-%s", kind, uuid.NewString()),
		Kind:         kind,
		Title:        kind.Title(),
		Versions:     []Version{v},
		CurrentIndex: 0,
	}
}

// NewVersion builds a Version from raw provider output plus its re-encoded form.
func NewVersion(title string, raw []byte, rawMIME string, encoded *imaging.Encoded, quality float64) Version {
	return Version{
		Title: title,
		Image: ImageAsset{
			RawBytes:     raw,
			RawSize:      len(raw),
			RawMIME:      rawMIME,
			EncodedBytes: encoded.Bytes,
			EncodedSize:  encoded.Size,
			EncodedMIME:  encoded.MIMEType(),
		},
		Quality: quality,
	}
}

// Direction selects which way Navigate moves the version cursor.
type Direction string

const (
	Next Direction = "next"
	Prev Direction = "prev"
)

// Store is the process-wide artifact collection: the main gallery plus a
// distinguished final-invitation slot holding at most one artifact. All
// methods are safe for concurrent use; the async half of a quality edit is
// the only background writer.
type Store struct {
	mu        sync.RWMutex
	artifacts []*Artifact
	final     *Artifact
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Reset discards all artifacts, including the final invitation. Called at the
// start of each generation run.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts = nil
	s.final = nil
}

// Add appends an artifact to the main gallery.
func (s *Store) Add(a Artifact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts = append(s.artifacts, &a)
}

// SetFinal places an artifact in the final-invitation slot, replacing any
// previous occupant.
func (s *Store) SetFinal(a Artifact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.final = &a
}

// Final returns a snapshot of the final-invitation artifact, if present.
func (s *Store) Final() (Artifact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.final == nil {
		return Artifact{}, false
	}
	return snapshot(s.final), true
}

// List returns snapshots of the main gallery in insertion order.
func (s *Store) List() []Artifact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Artifact, 0, len(s.artifacts))
	for _, a := range s.artifacts {
		out = append(out, snapshot(a))
	}
	return out
}

// Get returns a snapshot of the artifact with the given ID, searching the
// main gallery and the final-invitation slot.
func (s *Store) Get(id string) (Artifact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a := s.find(id); a != nil {
		return snapshot(a), true
	}
	return Artifact{}, false
}

// AppendVersion pushes a new version onto the artifact and moves the cursor
// to it. Unknown IDs are a silent no-op: the artifact may have been cleared
// by a newer generation run while a refinement call was in flight.
func (s *Store) AppendVersion(id string, v Version) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.find(id)
	if a == nil {
		log.Debug().Str("artifact_id", id).Msg("AppendVersion on unknown artifact, dropping")
		return
	}
	a.Versions = append(a.Versions, v)
	a.CurrentIndex = len(a.Versions) - 1
}

// Navigate moves the cursor one step in the given direction, clamped to the
// version bounds. Returns the cursor position after the move.
func (s *Store) Navigate(id string, dir Direction) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.find(id)
	if a == nil {
		return -1
	}
	switch dir {
	case Next:
		if a.CurrentIndex < len(a.Versions)-1 {
			a.CurrentIndex++
		}
	case Prev:
		if a.CurrentIndex > 0 {
			a.CurrentIndex--
		}
	}
	return a.CurrentIndex
}

// find returns the live artifact for id, or nil. Caller must hold s.mu.
func (s *Store) find(id string) *Artifact {
	for _, a := range s.artifacts {
		if a.ID == id {
			return a
		}
	}
	if s.final != nil && s.final.ID == id {
		return s.final
	}
	return nil
}

// snapshot copies an artifact with its own versions slice so callers can hold
// it without racing store mutations. Image bytes are shared: they are
// immutable once stored (quality edits swap in fresh slices).
func snapshot(a *Artifact) Artifact {
	out := *a
	out.Versions = make([]Version, len(a.Versions))
	copy(out.Versions, a.Versions)
	return out
}
