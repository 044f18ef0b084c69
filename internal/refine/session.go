// Package refine implements the conversational refinement loop against one
// gallery artifact. A session accumulates user and assistant turns; each send
// carries the entire history plus the artifact's current version image, and a
// successful reply appends a new version to the artifact.
package refine

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/smenon/wedding-illustrator/internal/gallery"
	"github.com/smenon/wedding-illustrator/internal/gemini"
	"github.com/smenon/wedding-illustrator/internal/imaging"
)

// MaxAttachmentBytes caps reference-image attachments at 5 MB.
const MaxAttachmentBytes = 5 * 1024 * 1024

// refineQuality is the re-encode quality for refined versions.
const refineQuality = 0.9

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry in the session transcript. Attachment is set on user
// turns that carried a reference image.
type Turn struct {
	Role       Role
	Text       string
	Attachment *gallery.ImageAsset
}

// Refiner is the provider surface the session depends on. Implemented by
// *gemini.Client; tests substitute fakes.
type Refiner interface {
	Refine(ctx context.Context, current []byte, currentMIME string, history []gemini.Turn) (*gemini.Result, error)
}

// Outcome describes what a send produced. Exactly one of NewVersionIndex >= 0
// or a text-only/error assistant reply applies; AssistantText is the reply
// appended to the transcript, empty when the model returned an image with no
// commentary.
type Outcome struct {
	ProducedImage   bool
	NewVersionIndex int
	AssistantText   string
}

// Session is a refinement conversation bound to one artifact. It is driven
// from a single goroutine (the CLI loop); the awaiting flag rejects re-entrant
// sends rather than guarding parallel ones.
type Session struct {
	refiner Refiner
	store   *gallery.Store

	open     bool
	awaiting bool
	targetID string
	turns    []Turn
	pending  *gallery.ImageAsset
}

// NewSession creates a closed session.
func NewSession(refiner Refiner, store *gallery.Store) *Session {
	return &Session{refiner: refiner, store: store}
}

// Open binds the session to an artifact and resets the transcript and any
// pending attachment. Reopening on a new target starts a fresh conversation.
func (s *Session) Open(artifactID string) error {
	if _, ok := s.store.Get(artifactID); !ok {
		return fmt.Errorf("artifact %s not found", artifactID)
	}
	s.open = true
	s.awaiting = false
	s.targetID = artifactID
	s.turns = nil
	s.pending = nil
	return nil
}

// Close ends the session.
func (s *Session) Close() {
	s.open = false
	s.awaiting = false
	s.targetID = ""
	s.turns = nil
	s.pending = nil
}

// IsOpen reports whether the session is bound to a target.
func (s *Session) IsOpen() bool { return s.open }

// TargetID returns the bound artifact ID, or "".
func (s *Session) TargetID() string { return s.targetID }

// Turns returns a copy of the transcript in insertion order.
func (s *Session) Turns() []Turn {
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// PendingAttachment returns the staged reference image, or nil.
func (s *Session) PendingAttachment() *gallery.ImageAsset { return s.pending }

// Attach stages a reference image for the next send. Oversized attachments
// are rejected without any state change.
func (s *Session) Attach(asset *gallery.ImageAsset) error {
	if !s.open {
		return fmt.Errorf("no refinement session is open")
	}
	if s.awaiting {
		return fmt.Errorf("a reply is still pending")
	}
	if asset.RawSize > MaxAttachmentBytes {
		return fmt.Errorf("file is too large (%s); please select an image under %s",
			imaging.FormatBytes(asset.RawSize), imaging.FormatBytes(MaxAttachmentBytes))
	}
	s.pending = asset
	return nil
}

// RemoveAttachment discards the staged reference image.
func (s *Session) RemoveAttachment() {
	s.pending = nil
}

// Send submits one user turn and waits for the reply. It is a no-op (nil
// outcome) when the session is closed, a reply is already pending, or the
// message is blank with nothing attached.
//
// Errors never surface as errors: every failure becomes an assistant turn so
// the transcript stays intact and the user can retry. The session always
// returns to idle.
func (s *Session) Send(ctx context.Context, text string) *Outcome {
	if !s.open || s.awaiting {
		return nil
	}
	if strings.TrimSpace(text) == "" && s.pending == nil {
		return nil
	}

	s.turns = append(s.turns, Turn{Role: RoleUser, Text: text, Attachment: s.pending})
	s.pending = nil
	s.awaiting = true
	defer func() { s.awaiting = false }()

	target, ok := s.store.Get(s.targetID)
	if !ok {
		// The gallery was cleared by a new generation run while this
		// session was open.
		return s.assistantError(fmt.Errorf("the image being refined no longer exists"))
	}

	current := target.CurrentVersion()
	data := current.Image.RawBytes
	mime := current.Image.RawMIME
	if data == nil {
		data = current.Image.EncodedBytes
		mime = current.Image.EncodedMIME
	}
	if data == nil {
		return s.assistantError(fmt.Errorf("could not get image data for refinement"))
	}

	log.Info().
		Str("artifact_id", s.targetID).
		Int("history_turns", len(s.turns)).
		Msg("Sending refinement request")

	res, err := s.refiner.Refine(ctx, data, mime, s.providerHistory())
	if err != nil {
		return s.assistantError(err)
	}

	if res.ImageData == nil {
		// The model declined to produce an image. Recoverable: prompt
		// the user to rephrase rather than presenting a hard error.
		reply := "The model did not return a new image. Please try rephrasing your request."
		if res.Text != "" {
			reply = fmt.Sprintf("The model responded, but didn't return a new image:\n\n%q\n\nPlease try rephrasing your request.", res.Text)
		}
		s.turns = append(s.turns, Turn{Role: RoleAssistant, Text: reply})
		return &Outcome{NewVersionIndex: -1, AssistantText: reply}
	}

	newTitle := fmt.Sprintf("%s V%d", target.Title, len(target.Versions)+1)
	v, err := buildRefinedVersion(target.Kind, newTitle, res)
	if err != nil {
		return s.assistantError(err)
	}
	s.store.AppendVersion(s.targetID, v)

	outcome := &Outcome{ProducedImage: true, NewVersionIndex: len(target.Versions)}
	if res.Text != "" {
		outcome.AssistantText = res.Text
		s.turns = append(s.turns, Turn{Role: RoleAssistant, Text: res.Text})
	}
	return outcome
}

// assistantError records a failure as an assistant turn, preserving the user
// turn that triggered it.
func (s *Session) assistantError(err error) *Outcome {
	log.Warn().Err(err).Str("artifact_id", s.targetID).Msg("Refinement turn failed")
	reply := fmt.Sprintf("Sorry, an error occurred: %v", err)
	s.turns = append(s.turns, Turn{Role: RoleAssistant, Text: reply})
	return &Outcome{NewVersionIndex: -1, AssistantText: reply}
}

// providerHistory converts the transcript into provider turns. User
// attachments travel as raw bytes so the model sees full-fidelity references.
func (s *Session) providerHistory() []gemini.Turn {
	history := make([]gemini.Turn, 0, len(s.turns))
	for _, turn := range s.turns {
		pt := gemini.Turn{Text: turn.Text}
		if turn.Role == RoleUser {
			pt.Role = "user"
		} else {
			pt.Role = "model"
		}
		if turn.Attachment != nil {
			pt.ImageData = turn.Attachment.RawBytes
			pt.ImageMIME = turn.Attachment.RawMIME
		}
		history = append(history, pt)
	}
	return history
}

// buildRefinedVersion re-encodes a refined image for storage, keeping the
// artifact's established format.
func buildRefinedVersion(kind gallery.Kind, title string, res *gemini.Result) (gallery.Version, error) {
	format := imaging.FormatJPEG
	if kind.IsIllustration() {
		format = imaging.FormatPNG
	}
	encoded, err := imaging.Reencode(res.ImageData, refineQuality, format)
	if err != nil {
		return gallery.Version{}, fmt.Errorf("failed to process the refined image: %w", err)
	}
	return gallery.NewVersion(title, res.ImageData, res.ImageMIMEType, encoded, refineQuality), nil
}
