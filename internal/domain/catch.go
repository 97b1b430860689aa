package domain

import (
	"fmt"
	"strings"
)

const (
	// DefaultSpecies is the species pre-selected for a new session.
	DefaultSpecies = "Thon Rouge"
	// DefaultWeight is the weight pre-selected for a new session.
	DefaultWeight = "100 kg"
	// DefaultLocation is the fishing spot pre-selected for a new session.
	DefaultLocation = "Baie de Morlaix (Château du Taureau)"
	// DefaultStory is the anecdote pre-filled for a new session.
	DefaultStory = "Une lutte acharnée de 2 heures !"
)

// Species offered by the catch form. Anything else is entered as free text.
var Species = []string{
	"Thon Rouge",
	"Bar",
	"Lieu Jaune",
	"Dorade Royale",
	"Maquereau",
	"Turbot",
	"Saint-Pierre",
	"Homard Breton",
	"Congre",
	"Requin Taupe",
}

// Locations offered by the catch form.
var Locations = []string{
	"Baie de Morlaix (Château du Taureau)",
	"Archipel des Glénan",
	"Côte de Granit Rose (Ploumanac'h)",
	"Pointe du Raz",
	"Île de Bréhat",
	"Rade de Brest",
	"Golfe du Morbihan",
	"Saint-Malo (Remparts)",
	"Belle-Île-en-Mer",
	"En pleine mer (Hauturier)",
}

// CatchDetails describes the fictional catch the user wants to be pictured with.
// Weight is free-form ("100 kg", "12"); only its digits are interpreted.
type CatchDetails struct {
	Species  string `json:"species"`
	Weight   string `json:"weight"`
	Location string `json:"location"`
	Story    string `json:"story"`
}

// DefaultCatchDetails returns the values a fresh session starts with.
func DefaultCatchDetails() CatchDetails {
	return CatchDetails{
		Species:  DefaultSpecies,
		Weight:   DefaultWeight,
		Location: DefaultLocation,
		Story:    DefaultStory,
	}
}

// Validate ensures the details can be turned into a prompt. The weight is never
// checked: text without digits reads as the default magnitude.
func (d CatchDetails) Validate() error {
	if strings.TrimSpace(d.Species) == "" {
		return fmt.Errorf("%w: species is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(d.Location) == "" {
		return fmt.Errorf("%w: location is required", ErrInvalidRequest)
	}
	if len(d.Story) > 1000 {
		return fmt.Errorf("%w: story must be at most 1000 characters", ErrInvalidRequest)
	}
	return nil
}
