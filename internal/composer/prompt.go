package composer

import (
	"fmt"
	"strings"
	"unicode"

	"legendemer/internal/domain"
)

// Composition bundles the derived strings with the final prompt.
type Composition struct {
	Size   string `json:"size"`
	Pose   string `json:"pose"`
	Prompt string `json:"prompt"`
}

// Compose derives size and pose from the weight and assembles the prompt for
// the requested media kind.
func Compose(kind domain.MediaKind, details domain.CatchDetails, speciesVisual string) Composition {
	var prompt string
	if kind == domain.MediaKindVideo {
		prompt = BuildVideoPrompt(details, speciesVisual)
	} else {
		prompt = BuildPrompt(details, speciesVisual)
	}
	return Composition{
		Size:   SizeDescription(details.Weight),
		Pose:   PoseInstruction(details.Weight),
		Prompt: prompt,
	}
}

// BuildPrompt assembles the photo prompt. Species, weight, location and story are
// inserted exactly as the user typed them.
func BuildPrompt(details domain.CatchDetails, speciesVisual string) string {
	lines := []string{
		"Create a hyper-realistic photograph.",
		"Subject: the person in the provided image. Keep their face, features and hair exactly as they are.",
		"Action: " + PoseInstruction(details.Weight),
		fmt.Sprintf("The catch: a %s weighing %s.", details.Species, details.Weight),
		"Size context: " + SizeDescription(details.Weight),
	}
	if !isBlank(speciesVisual) {
		lines = append(lines, "Species appearance: "+strings.TrimSpace(speciesVisual))
	}
	lines = append(lines, fmt.Sprintf("Location: on a fishing boat at %s, Brittany.", details.Location))
	if !isBlank(details.Story) {
		lines = append(lines, "Story behind the photo: "+details.Story)
	}
	lines = append(lines, "IMPORTANT: the fish's head points down. Professional photographic style, natural light, sea spray.")
	return strings.Join(lines, "\n")
}

// BuildVideoPrompt extends the photo prompt with motion direction for the video model.
func BuildVideoPrompt(details domain.CatchDetails, speciesVisual string) string {
	var b strings.Builder
	b.WriteString(BuildPrompt(details, speciesVisual))
	b.WriteString("\nAnimate the scene as a short cinematic shot: the boat rocks gently on the swell, waves and gulls in the background, ")
	b.WriteString("the camera slowly pushes in on the proud angler. Keep the person's identity stable across frames.")
	return b.String()
}

// EnrichmentQuery asks a grounded text model for a factual visual description
// of the species as it is found at the location.
func EnrichmentQuery(species, location string) string {
	return fmt.Sprintf("Describe in two or three factual sentences what a %s caught at %s looks like: colours, markings, body shape and typical size. Focus only on visual appearance.", species, location)
}

// LocationQuery asks for a short note about fishing at the location.
func LocationQuery(location string) string {
	return fmt.Sprintf("Give a short piece of information about fishing at %s.", location)
}

func isBlank(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) }) < 0
}
