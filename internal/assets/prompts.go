// Package assets provides embedded static assets for the application.
//
// Prompt templates are stored as text files under prompts/ and embedded at
// compile time. Each generation operation (solo portrait, combine, composite,
// refinement) has its own template rendered with the context of the run:
// whether a wedding card or couple photo was supplied, and the attire prompts.
package assets

import (
	"bytes"
	_ "embed"
	"text/template"
)

//go:embed prompts/base-style.txt
var baseStyleTemplate string

//go:embed prompts/solo-bride.txt
var soloBrideTemplate string

//go:embed prompts/solo-groom.txt
var soloGroomTemplate string

//go:embed prompts/couple.txt
var coupleTemplate string

//go:embed prompts/combine.txt
var combineTemplate string

// CompositePrompt instructs the model to place a finished illustration into a
// text-safe region of the invitation background. Static: no dynamic context.
//
//go:embed prompts/composite.txt
var CompositePrompt string

//go:embed prompts/refine.txt
var refineTemplate string

// Pre-parsed templates. template.Must panics on malformed templates, catching
// errors at program startup rather than at call time.
var (
	baseStyleTmpl = template.Must(template.New("base-style").Parse(baseStyleTemplate))
	soloBrideTmpl = template.Must(template.New("solo-bride").Parse(soloBrideTemplate))
	soloGroomTmpl = template.Must(template.New("solo-groom").Parse(soloGroomTemplate))
	coupleTmpl    = template.Must(template.New("couple").Parse(coupleTemplate))
	combineTmpl   = template.Must(template.New("combine").Parse(combineTemplate))
	refineTmpl    = template.Must(template.New("refine").Parse(refineTemplate))
)

// PromptContext holds the dynamic data injected into generation prompt templates.
type PromptContext struct {
	// CardProvided is true when a wedding card reference image accompanies
	// the request; the prompt then asks the model to match its aesthetic.
	CardProvided bool

	// CouplePhotoProvided is true when a photo of the couple together is
	// available as a pose/likeness reference.
	CouplePhotoProvided bool

	// BrideAttire and GroomAttire are full attire instruction sentences,
	// e.g. "Dress her in a beautiful, traditional, and ornate Indian lehenga...".
	BrideAttire string
	GroomAttire string

	// BaseStyle is filled in by the renderer; callers leave it empty.
	BaseStyle string
}

// RenderBridePrompt renders the solo bride portrait prompt.
func RenderBridePrompt(pctx PromptContext) string {
	pctx.BaseStyle = renderTemplate(baseStyleTmpl, pctx)
	return renderTemplate(soloBrideTmpl, pctx)
}

// RenderGroomPrompt renders the solo groom portrait prompt.
func RenderGroomPrompt(pctx PromptContext) string {
	pctx.BaseStyle = renderTemplate(baseStyleTmpl, pctx)
	return renderTemplate(soloGroomTmpl, pctx)
}

// RenderCouplePrompt renders the direct couple portrait prompt.
func RenderCouplePrompt(pctx PromptContext) string {
	pctx.BaseStyle = renderTemplate(baseStyleTmpl, pctx)
	return renderTemplate(coupleTmpl, pctx)
}

// RenderCombinePrompt renders the prompt that merges two finished solo
// illustrations into one couple scene.
func RenderCombinePrompt(pctx PromptContext) string {
	return renderTemplate(combineTmpl, pctx)
}

// refineData holds the dynamic data for the refinement prompt.
type refineData struct {
	// History is the formatted conversation transcript, one turn per line.
	History string
}

// RenderRefinePrompt renders the conversational refinement prompt with the
// formatted turn history.
func RenderRefinePrompt(history string) string {
	var buf bytes.Buffer
	_ = refineTmpl.Execute(&buf, refineData{History: history})
	return buf.String()
}

// renderTemplate executes a pre-parsed template with the given context.
func renderTemplate(tmpl *template.Template, pctx PromptContext) string {
	var buf bytes.Buffer
	// Template execution errors are not expected with our simple templates,
	// but we handle them gracefully by returning whatever was rendered.
	_ = tmpl.Execute(&buf, pctx)
	return buf.String()
}
