package assets

import (
	"strings"
	"testing"
)

func TestRenderBridePromptDefaults(t *testing.T) {
	prompt := RenderBridePrompt(PromptContext{
		BrideAttire: AttireChoice{}.BrideInstruction(),
	})
	if !strings.Contains(prompt, "lehenga") {
		t.Error("default bride attire should appear in the prompt")
	}
	if strings.Contains(prompt, "{{") {
		t.Error("unrendered template markers in prompt")
	}
}

func TestRenderCouplePromptCouplePhotoBranch(t *testing.T) {
	withPhoto := RenderCouplePrompt(PromptContext{CouplePhotoProvided: true})
	withoutPhoto := RenderCouplePrompt(PromptContext{CouplePhotoProvided: false})
	if withPhoto == withoutPhoto {
		t.Error("couple prompt should change depending on couple photo availability")
	}
}

func TestRenderPromptsCardBranch(t *testing.T) {
	renderers := map[string]func(PromptContext) string{
		"bride":   RenderBridePrompt,
		"groom":   RenderGroomPrompt,
		"couple":  RenderCouplePrompt,
		"combine": RenderCombinePrompt,
	}
	for name, render := range renderers {
		withCard := render(PromptContext{CardProvided: true})
		withoutCard := render(PromptContext{CardProvided: false})
		if withCard == withoutCard {
			t.Errorf("%s prompt should change depending on card availability", name)
		}
	}
}

func TestRenderRefinePromptIncludesHistory(t *testing.T) {
	transcript := "User: softer colors\nArtist: Done."
	prompt := RenderRefinePrompt(transcript)
	if !strings.Contains(prompt, transcript) {
		t.Error("refinement prompt should embed the conversation transcript")
	}
}

func TestCompositePromptNonEmpty(t *testing.T) {
	if strings.TrimSpace(CompositePrompt) == "" {
		t.Fatal("composite prompt is empty")
	}
}

func TestAttireInstructions(t *testing.T) {
	def := AttireChoice{}
	if got := def.BrideInstruction(); !strings.Contains(got, "lehenga") {
		t.Errorf("default bride instruction: %q", got)
	}
	if got := def.GroomInstruction(); !strings.Contains(got, "sherwani") {
		t.Errorf("default groom instruction: %q", got)
	}

	chosen := AttireChoice{Bride: BrideAttireOptions[1].Prompt, Groom: GroomAttireOptions[2].Prompt}
	if got := chosen.BrideInstruction(); !strings.HasPrefix(got, "Dress her in ") || !strings.HasSuffix(got, ".") {
		t.Errorf("bride instruction framing: %q", got)
	}
	if got := chosen.GroomInstruction(); !strings.Contains(got, "Jodhpuri") {
		t.Errorf("groom instruction should carry chosen prompt: %q", got)
	}
}

func TestFindAttireOption(t *testing.T) {
	opt, ok := FindAttireOption(BrideAttireOptions, "modern-gown")
	if !ok || opt.Name != "Modern Gown" {
		t.Errorf("lookup modern-gown: ok=%v opt=%+v", ok, opt)
	}
	if _, ok := FindAttireOption(GroomAttireOptions, "missing"); ok {
		t.Error("lookup of unknown id should fail")
	}
}
