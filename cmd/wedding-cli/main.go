package main

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"google.golang.org/genai"

	"github.com/smenon/wedding-illustrator/internal/assets"
	"github.com/smenon/wedding-illustrator/internal/auth"
	"github.com/smenon/wedding-illustrator/internal/gallery"
	gemclient "github.com/smenon/wedding-illustrator/internal/gemini"
	"github.com/smenon/wedding-illustrator/internal/logging"
	"github.com/smenon/wedding-illustrator/internal/refine"
	"github.com/smenon/wedding-illustrator/internal/workflow"
)

// CLI flags
var (
	brideFlag       string
	groomFlag       string
	couplePhotoFlag string
	cardFlag        string
	backgroundFlag  string
	seedFlag        string
	seedKindFlag    string
	outDirFlag      string
	brideAttireFlag string
	groomAttireFlag string
	inviteFlag      bool
	noBrideFlag     bool
	noGroomFlag     bool
	noCoupleFlag    bool
	interactiveFlag bool
)

// rootCmd is the main Cobra command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "wedding-cli",
	Short: "AI-generated wedding invitation illustrations",
	Long: `Wedding Illustrator CLI turns headshots of a bride and groom (and optionally
a couple photo and a wedding card reference) into hand-drawn style couple
illustrations, and can place the result onto an invitation background.

Outputs are selected automatically from the inputs you supply: a bride
headshot enables the bride portrait, both headshots (or a couple photo)
enable the couple illustration, and --invite with --background enables the
final invitation composite. Every generated image can be refined through an
interactive conversation with the model.

Examples:
  wedding-cli --bride bride.jpg --groom groom.jpg
  wedding-cli --bride bride.jpg --groom groom.jpg --no-bride --no-groom
  wedding-cli --couple-photo us.jpg --card card.jpg --bride-attire modern-gown
  wedding-cli --bride b.jpg --groom g.jpg --invite --background invite.png
  wedding-cli --seed illustration.png --seed-kind couple  # refine an existing image`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().StringVar(&brideFlag, "bride", "", "Path to the bride headshot")
	rootCmd.Flags().StringVar(&groomFlag, "groom", "", "Path to the groom headshot")
	rootCmd.Flags().StringVar(&couplePhotoFlag, "couple-photo", "", "Path to a photo of the couple together")
	rootCmd.Flags().StringVar(&cardFlag, "card", "", "Path to a wedding card image used as an aesthetic reference")
	rootCmd.Flags().StringVar(&backgroundFlag, "background", "", "Path to the invitation background for the final composite")
	rootCmd.Flags().StringVar(&seedFlag, "seed", "", "Path to an existing illustration to promote into the gallery for refinement")
	rootCmd.Flags().StringVar(&seedKindFlag, "seed-kind", "couple", "Kind of the seed image: bride, groom, or couple")
	rootCmd.Flags().StringVarP(&outDirFlag, "out", "o", ".", "Directory to write generated images to")
	rootCmd.Flags().StringVar(&brideAttireFlag, "bride-attire", "", "Bride attire option: classic-lehenga, modern-gown, anarkali-suit")
	rootCmd.Flags().StringVar(&groomAttireFlag, "groom-attire", "", "Groom attire option: classic-sherwani, indo-western-suit, jodhpuri-suit")
	rootCmd.Flags().BoolVar(&inviteFlag, "invite", false, "Compose the final invitation (requires --background)")
	rootCmd.Flags().BoolVar(&noBrideFlag, "no-bride", false, "Skip the standalone bride portrait")
	rootCmd.Flags().BoolVar(&noGroomFlag, "no-groom", false, "Skip the standalone groom portrait")
	rootCmd.Flags().BoolVar(&noCoupleFlag, "no-couple", false, "Skip the couple illustration")
	rootCmd.Flags().BoolVarP(&interactiveFlag, "interactive", "i", true, "Enter the interactive refinement loop after generating")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runMain is the main execution logic called by Cobra.
func runMain(cmd *cobra.Command, args []string) {
	_ = godotenv.Load()
	logging.Init()

	apiKey, err := auth.GetAPIKey()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to retrieve API key")
	}

	ctx := context.Background()
	validateKey(ctx, apiKey)

	inputs := workflow.NewSourceInputs()
	loadSlot(inputs, workflow.SlotBride, brideFlag)
	loadSlot(inputs, workflow.SlotGroom, groomFlag)
	loadSlot(inputs, workflow.SlotCouplePhoto, couplePhotoFlag)
	loadSlot(inputs, workflow.SlotCard, cardFlag)
	loadSlot(inputs, workflow.SlotBackground, backgroundFlag)

	// Auto-enable every output the inputs can support, then apply the
	// user's explicit opt-outs.
	sel := workflow.Reconcile(workflow.Selection{}, workflow.Availability{}, workflow.AvailabilityOf(inputs))
	if noBrideFlag {
		sel.Bride = false
	}
	if noGroomFlag {
		sel.Groom = false
	}
	if noCoupleFlag {
		sel.Couple = false
	}
	sel.Invitation = inviteFlag

	store := gallery.NewStore()
	client := gemclient.NewClient(apiKey)
	orch := workflow.NewOrchestrator(client, store)
	session := refine.NewSession(client, store)

	if seedFlag != "" {
		promoteSeed(store, inputs, seedFlag, seedKindFlag)
		sel = workflow.Selection{}
	}

	if !workflow.GenerateBlocked(sel, inputs) {
		report := orch.Run(ctx, sel, inputs, resolveAttire())
		if len(report.Failures) > 0 {
			// Failures are advisory: some artifacts may still have
			// been produced, so report them jointly and continue.
			log.Warn().Msg("Some generations failed:\n" + strings.Join(report.Failures, "\n"))
		}
		saveAll(store)
	} else if seedFlag == "" {
		log.Warn().Msg("Nothing to generate: supply input images, or --seed to refine an existing one")
	}

	if interactiveFlag && hasArtifacts(store) {
		runInteractive(ctx, store, session)
	}
}

// validateKey checks the API key with a minimal call before any generation.
func validateKey(ctx context.Context, apiKey string) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create Gemini client")
	}
	if err := auth.ValidateAPIKey(ctx, client); err != nil {
		handleValidationError(err)
	}
}

// handleValidationError processes auth.ValidationError and exits with appropriate messaging.
func handleValidationError(err error) {
	var validationErr *auth.ValidationError
	if errors.As(err, &validationErr) {
		switch validationErr.Type {
		case auth.ErrTypeNoKey:
			log.Fatal().Msg("No API key configured. Set GEMINI_API_KEY")
		case auth.ErrTypeInvalidKey:
			log.Fatal().Err(err).Msg("Invalid API key. Please check your API key and try again")
		case auth.ErrTypeNetworkError:
			log.Fatal().Err(err).Msg("Network error. Please check your internet connection")
		case auth.ErrTypeQuotaExceeded:
			log.Fatal().Err(err).Msg("API quota exceeded. Please try again later or check your usage limits")
		default:
			log.Fatal().Err(err).Msg("API key validation failed")
		}
	} else {
		log.Fatal().Err(err).Msg("unexpected error during API key validation")
	}
	os.Exit(1)
}

// loadSlot loads one input file if a path was given. A bad file affects only
// its own slot; the run proceeds with whatever else loaded.
func loadSlot(inputs *workflow.SourceInputs, slot workflow.Slot, path string) {
	if path == "" {
		return
	}
	if err := inputs.Load(slot, path); err != nil {
		log.Error().Err(err).Str("slot", string(slot)).Msg("Failed to load input, continuing without it")
	}
}

// promoteSeed loads the seed image and promotes it into the gallery.
func promoteSeed(store *gallery.Store, inputs *workflow.SourceInputs, path, kindName string) {
	kind := gallery.Kind(kindName)
	switch kind {
	case gallery.KindBride, gallery.KindGroom, gallery.KindCouple:
	default:
		log.Fatal().Str("kind", kindName).Msg("invalid --seed-kind: use bride, groom, or couple")
	}
	if err := inputs.Load(workflow.SlotSeed, path); err != nil {
		log.Fatal().Err(err).Msg("failed to load seed image")
	}
	if _, err := workflow.Promote(store, inputs, kind); err != nil {
		log.Fatal().Err(err).Msg("failed to promote seed image")
	}
}

// resolveAttire maps attire option IDs from flags onto prompt fragments.
// Unknown IDs fall back to the default outfits with a warning.
func resolveAttire() assets.AttireChoice {
	var choice assets.AttireChoice
	if brideAttireFlag != "" {
		if opt, ok := assets.FindAttireOption(assets.BrideAttireOptions, brideAttireFlag); ok {
			choice.Bride = opt.Prompt
		} else {
			log.Warn().Str("id", brideAttireFlag).Msg("Unknown bride attire option, using default")
		}
	}
	if groomAttireFlag != "" {
		if opt, ok := assets.FindAttireOption(assets.GroomAttireOptions, groomAttireFlag); ok {
			choice.Groom = opt.Prompt
		} else {
			log.Warn().Str("id", groomAttireFlag).Msg("Unknown groom attire option, using default")
		}
	}
	return choice
}

// saveAll downloads every gallery artifact (and the final invitation) to the
// output directory.
func saveAll(store *gallery.Store) {
	for _, a := range allArtifacts(store) {
		if path, err := store.Download(a.ID, outDirFlag); err != nil {
			log.Error().Err(err).Str("artifact", a.Title).Msg("Failed to save artifact")
		} else {
			log.Info().Str("path", path).Msg("Saved " + a.Title)
		}
	}
}

// allArtifacts returns the gallery plus the final-invitation slot, if set.
func allArtifacts(store *gallery.Store) []gallery.Artifact {
	out := store.List()
	if final, ok := store.Final(); ok {
		out = append(out, final)
	}
	return out
}

func hasArtifacts(store *gallery.Store) bool {
	return len(allArtifacts(store)) > 0
}
