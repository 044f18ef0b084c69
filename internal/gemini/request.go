package gemini

// request.go assembles the prompt and inline-image parts for each generation
// operation. The attachment order matters: the model reads the prompt first,
// then the images in the order listed, and the prompts refer to them
// positionally ("first image", "second image").

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/smenon/wedding-illustrator/internal/assets"
)

// SoloKind identifies which subject a direct generation call illustrates.
type SoloKind string

const (
	KindBride  SoloKind = "bride"
	KindGroom  SoloKind = "groom"
	KindCouple SoloKind = "couple"
)

// SourceRefs carries the JPEG-encoded reference images available to a
// generation call. Nil slices mean the slot was not supplied.
type SourceRefs struct {
	Bride       []byte
	Groom       []byte
	CouplePhoto []byte
	Card        []byte
}

// Turn is one exchange in a refinement conversation. ImageData is set when
// the user attached a reference image on that turn.
type Turn struct {
	Role      string // "user" or "model"
	Text      string
	ImageData []byte
	ImageMIME string
}

func inlinePart(mimeType string, data []byte) geminiPart {
	return geminiPart{
		InlineData: &geminiBlobData{
			MIMEType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(data),
		},
	}
}

// buildSoloParts assembles a solo/direct-couple request. The couple prompt
// uses headshots only when no couple photo exists; otherwise the couple photo
// is the sole likeness reference. The card, when present, always goes last.
func buildSoloParts(kind SoloKind, refs SourceRefs, attire assets.AttireChoice) ([]geminiPart, error) {
	pctx := assets.PromptContext{
		CardProvided:        refs.Card != nil,
		CouplePhotoProvided: refs.CouplePhoto != nil,
		BrideAttire:         attire.BrideInstruction(),
		GroomAttire:         attire.GroomInstruction(),
	}

	var prompt string
	switch kind {
	case KindBride:
		prompt = assets.RenderBridePrompt(pctx)
	case KindGroom:
		prompt = assets.RenderGroomPrompt(pctx)
	case KindCouple:
		prompt = assets.RenderCouplePrompt(pctx)
	default:
		return nil, fmt.Errorf("unknown generation kind: %s", kind)
	}

	parts := []geminiPart{{Text: prompt}}

	if (kind == KindBride || (kind == KindCouple && refs.CouplePhoto == nil)) && refs.Bride != nil {
		parts = append(parts, inlinePart("image/jpeg", refs.Bride))
	}
	if (kind == KindGroom || (kind == KindCouple && refs.CouplePhoto == nil)) && refs.Groom != nil {
		parts = append(parts, inlinePart("image/jpeg", refs.Groom))
	}
	if kind == KindCouple && refs.CouplePhoto != nil {
		parts = append(parts, inlinePart("image/jpeg", refs.CouplePhoto))
	}
	if refs.Card != nil {
		parts = append(parts, inlinePart("image/jpeg", refs.Card))
	}

	return parts, nil
}

// buildCombineParts assembles a merge of two finished solo illustrations,
// with the couple photo as a pose hint and the card as an aesthetic hint.
func buildCombineParts(brideIllustration, groomIllustration, card, couplePhoto []byte) []geminiPart {
	prompt := assets.RenderCombinePrompt(assets.PromptContext{
		CardProvided:        card != nil,
		CouplePhotoProvided: couplePhoto != nil,
	})

	parts := []geminiPart{
		{Text: prompt},
		inlinePart("image/png", brideIllustration),
		inlinePart("image/png", groomIllustration),
	}
	if couplePhoto != nil {
		parts = append(parts, inlinePart("image/jpeg", couplePhoto))
	}
	if card != nil {
		parts = append(parts, inlinePart("image/jpeg", card))
	}
	return parts
}

// buildCompositeParts assembles the invitation composite: background first,
// illustration second, matching the prompt's positional references.
func buildCompositeParts(background []byte, backgroundMIME string, illustration []byte, illustrationMIME string) []geminiPart {
	return []geminiPart{
		{Text: assets.CompositePrompt},
		inlinePart(backgroundMIME, background),
		inlinePart(illustrationMIME, illustration),
	}
}

// buildRefineParts assembles a refinement turn: the transcript-bearing prompt,
// the current image, then every reference image the user attached across the
// whole history in chronological order so multi-turn visual context
// accumulates.
func buildRefineParts(current []byte, currentMIME string, history []Turn) []geminiPart {
	parts := []geminiPart{
		{Text: assets.RenderRefinePrompt(formatTranscript(history))},
		inlinePart(currentMIME, current),
	}
	for _, turn := range history {
		if turn.Role == "user" && turn.ImageData != nil {
			parts = append(parts, inlinePart(turn.ImageMIME, turn.ImageData))
		}
	}
	return parts
}

// formatTranscript renders the turn history as a readable transcript for the
// refinement prompt, marking turns that carried a reference image.
func formatTranscript(history []Turn) string {
	lines := make([]string, 0, len(history))
	for _, turn := range history {
		speaker := "Artist"
		if turn.Role == "user" {
			speaker = "User"
		}
		marker := ""
		if turn.ImageData != nil {
			marker = " [Reference Image Attached]"
		}
		lines = append(lines, fmt.Sprintf("%s: %s%s", speaker, turn.Text, marker))
	}
	return strings.Join(lines, "\n")
}

// GenerateSolo requests a stylized portrait of the bride, the groom, or the
// couple directly from source photos.
func (c *Client) GenerateSolo(ctx context.Context, kind SoloKind, refs SourceRefs, attire assets.AttireChoice) (*Result, error) {
	parts, err := buildSoloParts(kind, refs, attire)
	if err != nil {
		return nil, err
	}
	return c.generate(ctx, "solo-"+string(kind), parts)
}

// Combine merges two finished solo illustrations into one couple scene.
func (c *Client) Combine(ctx context.Context, brideIllustration, groomIllustration, card, couplePhoto []byte) (*Result, error) {
	return c.generate(ctx, "combine", buildCombineParts(brideIllustration, groomIllustration, card, couplePhoto))
}

// Composite places a finished illustration into a text-safe region of the
// invitation background.
func (c *Client) Composite(ctx context.Context, background []byte, backgroundMIME string, illustration []byte, illustrationMIME string) (*Result, error) {
	return c.generate(ctx, "composite", buildCompositeParts(background, backgroundMIME, illustration, illustrationMIME))
}

// Refine sends the current version of an artifact together with the full
// conversation history.
func (c *Client) Refine(ctx context.Context, current []byte, currentMIME string, history []Turn) (*Result, error) {
	return c.generate(ctx, "refine", buildRefineParts(current, currentMIME, history))
}
