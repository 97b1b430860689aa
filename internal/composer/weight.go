package composer

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// DefaultWeight is the magnitude assumed when the weight text carries no digits.
const DefaultWeight = 5

type sizeBand struct {
	max         int
	description string
}

// Upper bounds are inclusive. The last band catches everything heavier.
var sizeBands = []sizeBand{
	{max: 1, description: "Small and light fish, about 20-30 cm long, easily held in one hand."},
	{max: 3, description: "Modest fish, about 40 cm long, light enough to lift casually."},
	{max: 8, description: "A nice catch, about 60-70 cm long, with visible heft."},
	{max: 20, description: "A big trophy fish, roughly 1 metre long, clearly heavy."},
	{max: 50, description: "A massive fish, 1.3 to 1.6 metres long, thick-bodied and very heavy."},
	{max: 100, description: "HUGE, MASSIVE fish, around 2 metres long, as big as a human."},
	{max: math.MaxInt, description: "A gigantic, legendary monster of the sea, far bigger than a human, a true leviathan."},
}

type poseBand struct {
	below       int
	instruction string
}

// Bounds are exclusive: a weight equal to a bound falls in the next band.
var poseBands = []poseBand{
	{below: 10, instruction: "The person holds the fish VERTICALLY with both hands in front of them, the fish's head pointing down."},
	{below: 40, instruction: "The person hugs the fish VERTICALLY against their chest with both arms, the fish's head pointing down."},
	{below: math.MaxInt, instruction: "The fish is far too heavy to lift: it stands VERTICALLY on the boat deck, head resting on deck, person crouching proudly beside it with one hand on its flank."},
}

// ParseWeight extracts the magnitude from free-form weight text by keeping only
// its digits. Text without digits, or whose digits read as zero, yields
// DefaultWeight; values too large for an int saturate.
func ParseWeight(weight string) int {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, weight)
	if digits == "" {
		return DefaultWeight
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return math.MaxInt
		}
		return DefaultWeight
	}
	if n == 0 {
		return DefaultWeight
	}
	return n
}

// SizeBand returns the index of the size band the weight falls into, 0 being the smallest.
func SizeBand(weight string) int {
	w := ParseWeight(weight)
	for i, band := range sizeBands {
		if w <= band.max {
			return i
		}
	}
	return len(sizeBands) - 1
}

// SizeDescription describes how big the fish should look for the given weight.
func SizeDescription(weight string) string {
	return sizeBands[SizeBand(weight)].description
}

// PoseBand returns the index of the pose band the weight falls into.
func PoseBand(weight string) int {
	w := ParseWeight(weight)
	for i, band := range poseBands {
		if w < band.below {
			return i
		}
	}
	return len(poseBands) - 1
}

// PoseInstruction tells the image model how the subject should hold the fish so
// the scene stays physically plausible.
func PoseInstruction(weight string) string {
	return poseBands[PoseBand(weight)].instruction
}
