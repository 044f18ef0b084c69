package main

// interactive.go implements the post-generation loop: browsing artifact
// versions, adjusting per-version quality, saving, and the chat-style
// refinement conversation.

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/smenon/wedding-illustrator/internal/gallery"
	"github.com/smenon/wedding-illustrator/internal/imaging"
	"github.com/smenon/wedding-illustrator/internal/refine"
	"github.com/smenon/wedding-illustrator/internal/workflow"
)

// Quality slider bounds, matched by the quality command.
const (
	minQuality = 0.10
	maxQuality = 1.00
)

// runInteractive reads commands until quit/EOF. Artifacts are addressed by
// their 1-based position in the list command's output.
func runInteractive(ctx context.Context, store *gallery.Store, session *refine.Session) {
	fmt.Println()
	fmt.Println("Interactive mode. Commands:")
	fmt.Println("  list                      show artifacts and versions")
	fmt.Println("  refine <n>                start a refinement conversation")
	fmt.Println("  prev <n> | next <n>       step through an artifact's versions")
	fmt.Println("  quality <n> <v> <q>       re-encode version v at quality q (0.10-1.00)")
	fmt.Println("  save <n>                  write the current version to the output directory")
	fmt.Println("  quit")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "exit", "q":
			return
		case "list":
			printGallery(store)
		case "refine":
			if a, ok := pickArtifact(store, fields); ok {
				runRefineChat(ctx, store, session, scanner, a.ID)
			}
		case "prev", "next":
			if a, ok := pickArtifact(store, fields); ok {
				dir := gallery.Prev
				if fields[0] == "next" {
					dir = gallery.Next
				}
				idx := store.Navigate(a.ID, dir)
				fmt.Printf("%s is now at version %d of %d\n", a.Title, idx+1, len(a.Versions))
			}
		case "quality":
			handleQuality(store, fields)
		case "save":
			if a, ok := pickArtifact(store, fields); ok {
				if path, err := store.Download(a.ID, outDirFlag); err != nil {
					log.Error().Err(err).Msg("Failed to save artifact")
				} else {
					fmt.Println("Saved", path)
				}
			}
		default:
			fmt.Println("Unknown command:", fields[0])
		}
	}
}

// printGallery lists artifacts with version cursors and sizes.
func printGallery(store *gallery.Store) {
	for i, a := range allArtifacts(store) {
		v := a.CurrentVersion()
		fmt.Printf("%d. %s  (version %d of %d, quality %.2f, %s)\n",
			i+1, v.Title, a.CurrentIndex+1, len(a.Versions), v.Quality, imaging.FormatBytes(v.Image.EncodedSize))
	}
}

// pickArtifact resolves fields[1] as a 1-based artifact index.
func pickArtifact(store *gallery.Store, fields []string) (gallery.Artifact, bool) {
	if len(fields) < 2 {
		fmt.Println("Which artifact? Use its number from list.")
		return gallery.Artifact{}, false
	}
	n, err := strconv.Atoi(fields[1])
	all := allArtifacts(store)
	if err != nil || n < 1 || n > len(all) {
		fmt.Printf("Invalid artifact number %q; there are %d artifacts.\n", fields[1], len(all))
		return gallery.Artifact{}, false
	}
	return all[n-1], true
}

// handleQuality parses and applies a quality edit, waiting for the
// background re-encode so the size report is accurate.
func handleQuality(store *gallery.Store, fields []string) {
	if len(fields) != 4 {
		fmt.Println("Usage: quality <artifact> <version> <0.10-1.00>")
		return
	}
	a, ok := pickArtifact(store, fields[:2])
	if !ok {
		return
	}
	version, err := strconv.Atoi(fields[2])
	if err != nil || version < 1 || version > len(a.Versions) {
		fmt.Printf("Invalid version %q; %s has %d versions.\n", fields[2], a.Title, len(a.Versions))
		return
	}
	quality, err := strconv.ParseFloat(fields[3], 64)
	if err != nil || quality < minQuality || quality > maxQuality {
		fmt.Printf("Quality must be between %.2f and %.2f.\n", minQuality, maxQuality)
		return
	}
	if a.Versions[version-1].Image.EncodedMIME == "image/png" {
		fmt.Println("This version is a lossless PNG; quality does not change its encoding.")
	}

	done := make(chan error, 1)
	store.SetQuality(a.ID, version-1, quality, func(err error) { done <- err })
	if err := <-done; err != nil {
		log.Error().Err(err).Msg("Quality change failed")
		return
	}
	if updated, ok := store.Get(a.ID); ok {
		fmt.Printf("%s v%d re-encoded at %.2f (%s)\n",
			updated.Title, version, quality, imaging.FormatBytes(updated.Versions[version-1].Image.EncodedSize))
	}
}

// runRefineChat drives one refinement conversation. Plain lines are sent as
// instructions; :attach stages a reference image for the next message.
func runRefineChat(ctx context.Context, store *gallery.Store, session *refine.Session, scanner *bufio.Scanner, artifactID string) {
	if err := session.Open(artifactID); err != nil {
		log.Error().Err(err).Msg("Could not open refinement session")
		return
	}
	defer session.Close()

	a, _ := store.Get(artifactID)
	fmt.Printf("Refining %s. Type instructions, :attach <path>, :remove, or :back.\n", a.Title)

	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == ":back":
			return
		case line == ":remove":
			session.RemoveAttachment()
			fmt.Println("Attachment removed.")
			continue
		case strings.HasPrefix(line, ":attach "):
			attach(session, strings.TrimSpace(strings.TrimPrefix(line, ":attach ")))
			continue
		}

		outcome := session.Send(ctx, line)
		if outcome == nil {
			continue
		}
		if outcome.ProducedImage {
			fmt.Printf("New version %d created.\n", outcome.NewVersionIndex+1)
		}
		if outcome.AssistantText != "" {
			fmt.Println("artist>", outcome.AssistantText)
		}
	}
}

// attach loads a reference image off disk and stages it on the session.
func attach(session *refine.Session, path string) {
	inputs := workflow.NewSourceInputs()
	if err := inputs.Load(workflow.SlotSeed, path); err != nil {
		log.Error().Err(err).Msg("Failed to load attachment")
		return
	}
	if err := session.Attach(inputs.Get(workflow.SlotSeed)); err != nil {
		log.Warn().Err(err).Msg("Attachment rejected")
		return
	}
	fmt.Println("Attached", path, "to your next message.")
}
