package workflow

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/smenon/wedding-illustrator/internal/assets"
	"github.com/smenon/wedding-illustrator/internal/gallery"
	"github.com/smenon/wedding-illustrator/internal/gemini"
	"github.com/smenon/wedding-illustrator/internal/imaging"
)

// Output quality factors. Illustrations are PNG (quality recorded but
// lossless); the flattened invitation composite is JPEG at high quality.
const (
	defaultQuality    = 0.9
	invitationQuality = 0.95
)

// Generator is the provider surface the orchestrator depends on. Implemented
// by *gemini.Client; tests substitute fakes.
type Generator interface {
	GenerateSolo(ctx context.Context, kind gemini.SoloKind, refs gemini.SourceRefs, attire assets.AttireChoice) (*gemini.Result, error)
	Combine(ctx context.Context, brideIllustration, groomIllustration, card, couplePhoto []byte) (*gemini.Result, error)
	Composite(ctx context.Context, background []byte, backgroundMIME string, illustration []byte, illustrationMIME string) (*gemini.Result, error)
}

// RunReport is the outcome of one generation run: the artifacts that were
// produced and surfaced, plus every failure encountered along the way.
// Failures are advisory; a run with failures may still carry artifacts.
type RunReport struct {
	Artifacts []gallery.Artifact
	Failures  []string
}

// Orchestrator decides which provider calls a run needs, issues the
// independent ones concurrently, chains the dependent ones, and funnels
// every per-call failure into the run report instead of aborting.
type Orchestrator struct {
	gen   Generator
	store *gallery.Store
}

// NewOrchestrator creates an orchestrator writing into the given store.
func NewOrchestrator(gen Generator, store *gallery.Store) *Orchestrator {
	return &Orchestrator{gen: gen, store: store}
}

// soloOutcome is the settled result of one concurrent solo-portrait call.
type soloOutcome struct {
	res *gemini.Result
	err error
}

// Run executes a full generation pass. The store is reset first: a new run
// supersedes all prior artifacts, and any still-in-flight continuation from
// an older run will find its target gone and drop its result.
func (o *Orchestrator) Run(ctx context.Context, sel Selection, inputs *SourceInputs, attire assets.AttireChoice) (report *RunReport) {
	report = &RunReport{}
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Generation run panicked")
			report.Failures = append(report.Failures, fmt.Sprintf("Failed to generate illustrations. %v", r))
		}
	}()

	o.store.Reset()

	brideB64 := inputs.encoded(SlotBride)
	groomB64 := inputs.encoded(SlotGroom)
	coupleB64 := inputs.encoded(SlotCouplePhoto)
	cardB64 := inputs.encoded(SlotCard)

	// A couple request with both headshots available synthesizes solo
	// portraits internally even when neither was asked for standalone.
	bothHeadshots := brideB64 != nil && groomB64 != nil
	needsBride := sel.Bride || (sel.Couple && bothHeadshots)
	needsGroom := sel.Groom || (sel.Couple && bothHeadshots)

	log.Info().
		Bool("want_bride", sel.Bride).
		Bool("want_groom", sel.Groom).
		Bool("want_couple", sel.Couple).
		Bool("want_invitation", sel.Invitation).
		Bool("needs_bride", needsBride).
		Bool("needs_groom", needsGroom).
		Msg("Starting generation run")

	// Fan out the independent solo calls; their latencies overlap. Each
	// goroutine settles into its own outcome slot, panics included, so a
	// misbehaving provider cannot take down the process.
	var brideOut, groomOut soloOutcome
	var wg sync.WaitGroup
	if needsBride && brideB64 != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			brideOut = o.soloCall(ctx, gemini.KindBride, gemini.SourceRefs{Bride: brideB64, Card: cardB64}, attire)
		}()
	}
	if needsGroom && groomB64 != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			groomOut = o.soloCall(ctx, gemini.KindGroom, gemini.SourceRefs{Groom: groomB64, Card: cardB64}, attire)
		}()
	}
	wg.Wait()

	// Solo images generated purely as couple dependencies stay in memory
	// but are only surfaced when explicitly requested.
	var generatedBride, generatedGroom []byte
	if needsBride && brideB64 != nil {
		generatedBride = o.settleSolo(report, brideOut, gallery.KindBride, sel.Bride, "Bride")
	}
	if needsGroom && groomB64 != nil {
		generatedGroom = o.settleSolo(report, groomOut, gallery.KindGroom, sel.Groom, "Groom")
	}

	if sel.Couple {
		o.runCouple(ctx, report, generatedBride, generatedGroom, coupleB64, cardB64, attire)
	}

	if sel.Invitation && inputs.Has(SlotBackground) {
		o.runComposite(ctx, report, inputs)
	}

	return report
}

// soloCall issues one solo generation, converting a panic into a settled error.
func (o *Orchestrator) soloCall(ctx context.Context, kind gemini.SoloKind, refs gemini.SourceRefs, attire assets.AttireChoice) (out soloOutcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("kind", string(kind)).Msg("Solo generation panicked")
			out = soloOutcome{err: fmt.Errorf("generation panicked: %v", r)}
		}
	}()
	res, err := o.gen.GenerateSolo(ctx, kind, refs, attire)
	return soloOutcome{res: res, err: err}
}

// settleSolo converts one settled solo call into either a gallery artifact
// (when requested) or a retained dependency image, recording failures.
// Returns the raw generated illustration bytes, or nil.
func (o *Orchestrator) settleSolo(report *RunReport, out soloOutcome, kind gallery.Kind, requested bool, subject string) []byte {
	if out.err != nil {
		report.Failures = append(report.Failures, fmt.Sprintf("Failed to generate %s portrait: %v", subject, out.err))
		return nil
	}
	if out.res == nil || out.res.ImageData == nil {
		report.Failures = append(report.Failures, fmt.Sprintf("No image was generated for the %s.", subject))
		return nil
	}
	if requested {
		v, err := buildVersion(kind, kind.Title(), out.res, defaultQuality)
		if err != nil {
			report.Failures = append(report.Failures, fmt.Sprintf("Failed to process the %s illustration: %v", subject, err))
			return out.res.ImageData
		}
		a := gallery.NewArtifact(kind, v)
		o.store.Add(a)
		report.Artifacts = append(report.Artifacts, a)
	}
	return out.res.ImageData
}

// runCouple produces the couple illustration. Combine fires only when BOTH
// solo generations yielded an image; anything less falls through to the
// direct couple-photo path, or to a failure when no photo was supplied.
func (o *Orchestrator) runCouple(ctx context.Context, report *RunReport, generatedBride, generatedGroom, coupleB64, cardB64 []byte, attire assets.AttireChoice) {
	switch {
	case generatedBride != nil && generatedGroom != nil:
		res, err := o.gen.Combine(ctx, generatedBride, generatedGroom, cardB64, coupleB64)
		if err != nil {
			report.Failures = append(report.Failures, fmt.Sprintf("Failed to combine portraits: %v", err))
			return
		}
		o.settleCouple(report, res, "Failed to generate Couple illustration from combined portraits.")

	case coupleB64 != nil:
		res, err := o.gen.GenerateSolo(ctx, gemini.KindCouple, gemini.SourceRefs{CouplePhoto: coupleB64, Card: cardB64}, attire)
		if err != nil {
			report.Failures = append(report.Failures, fmt.Sprintf("Failed to generate from couple photo: %v", err))
			return
		}
		o.settleCouple(report, res, "Failed to generate Couple illustration from the provided photo.")

	default:
		report.Failures = append(report.Failures, "Couple illustration could not be created. Please provide either a photo of the couple, or photos of both the bride and groom.")
	}
}

// settleCouple adds a successful couple result to the gallery, or records
// emptyFailure when the model declined to produce an image.
func (o *Orchestrator) settleCouple(report *RunReport, res *gemini.Result, emptyFailure string) {
	if res == nil || res.ImageData == nil {
		report.Failures = append(report.Failures, emptyFailure)
		return
	}
	v, err := buildVersion(gallery.KindCouple, gallery.KindCouple.Title(), res, defaultQuality)
	if err != nil {
		report.Failures = append(report.Failures, fmt.Sprintf("Failed to process the Couple illustration: %v", err))
		return
	}
	a := gallery.NewArtifact(gallery.KindCouple, v)
	o.store.Add(a)
	report.Artifacts = append(report.Artifacts, a)
}

// runComposite places the best available illustration onto the invitation
// background. Candidate priority: couple, then bride, then groom, each taken
// at its current version.
func (o *Orchestrator) runComposite(ctx context.Context, report *RunReport, inputs *SourceInputs) {
	candidate, ok := o.bestIllustration(report.Artifacts)
	if !ok {
		if len(report.Artifacts) > 0 {
			report.Failures = append(report.Failures, "Could not create final invite because no illustration was successfully generated to place on it.")
		} else {
			report.Failures = append(report.Failures, "Skipping invitation generation as no base illustrations were created.")
		}
		return
	}

	background := inputs.Get(SlotBackground)
	res, err := o.gen.Composite(ctx, background.EncodedBytes, background.EncodedMIME, candidate.Image.RawBytes, candidate.Image.RawMIME)
	if err != nil {
		report.Failures = append(report.Failures, fmt.Sprintf("Failed to create the final invitation: %v", err))
		return
	}
	if res == nil || res.ImageData == nil {
		report.Failures = append(report.Failures, "The AI failed to generate the final invitation image.")
		return
	}

	v, err := buildVersion(gallery.KindInvitation, gallery.KindInvitation.Title(), res, invitationQuality)
	if err != nil {
		report.Failures = append(report.Failures, fmt.Sprintf("Failed to process the final invitation: %v", err))
		return
	}
	o.store.SetFinal(gallery.NewArtifact(gallery.KindInvitation, v))
}

// bestIllustration picks the illustration to composite, honoring any prior
// refinement by reading each candidate's current version from the store.
func (o *Orchestrator) bestIllustration(artifacts []gallery.Artifact) (gallery.Version, bool) {
	for _, kind := range []gallery.Kind{gallery.KindCouple, gallery.KindBride, gallery.KindGroom} {
		for _, a := range artifacts {
			if a.Kind != kind {
				continue
			}
			if live, ok := o.store.Get(a.ID); ok {
				return live.CurrentVersion(), true
			}
		}
	}
	return gallery.Version{}, false
}

// buildVersion re-encodes raw provider output into a stored version:
// PNG for transparent illustrations, JPEG for the flattened invitation.
func buildVersion(kind gallery.Kind, title string, res *gemini.Result, quality float64) (gallery.Version, error) {
	format := imaging.FormatJPEG
	if kind.IsIllustration() {
		format = imaging.FormatPNG
	}
	encoded, err := imaging.Reencode(res.ImageData, quality, format)
	if err != nil {
		return gallery.Version{}, err
	}
	return gallery.NewVersion(title, res.ImageData, res.ImageMIMEType, encoded, quality), nil
}
