package resultgen

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

const (
	humanRatingMin   = 500
	humanRatingRange = 1300
	botRatingMin     = 600
	botRatingRange   = 1000
)

var (
	firstNames = []string{"Ana", "Jan", "Lena", "Marco", "Priya", "Tom", "Yuki", "Sofia", "Omar", "Eva", "Liam", "Noor"}
	lastNames  = []string{"Silva", "Novak", "Fischer", "Rossi", "Shah", "Berg", "Tanaka", "Lopez", "Haddad", "Kowal", "Byrne", "Visser"}
	teams      = []string{"", "", "Velo Club", "Coast Riders", "Hill Goats"}
)

// Rider is one generated participant.
type Rider struct {
	ID        string
	FirstName string
	LastName  string
	Team      string
	Rating    int
	Bot       bool
}

func (r Rider) Name() string {
	if r.LastName == "" {
		return r.FirstName
	}
	return r.FirstName + " " + r.LastName
}

// roster builds humans with uuid ids drawn from rng, then numbered bots.
func roster(rng *rand.Rand, humans, bots int) ([]Rider, error) {
	out := make([]Rider, 0, humans+bots)
	for i := 0; i < humans; i++ {
		id, err := uuid.NewRandomFromReader(rng)
		if err != nil {
			return nil, fmt.Errorf("rider id: %w", err)
		}
		out = append(out, Rider{
			ID:        id.String(),
			FirstName: firstNames[rng.Intn(len(firstNames))],
			LastName:  lastNames[rng.Intn(len(lastNames))],
			Team:      teams[rng.Intn(len(teams))],
			Rating:    humanRatingMin + rng.Intn(humanRatingRange),
		})
	}
	for i := 1; i <= bots; i++ {
		out = append(out, Rider{
			ID:        fmt.Sprintf("Bot%03d", i),
			FirstName: "Bot",
			LastName:  fmt.Sprintf("%03d", i),
			Rating:    botRatingMin + rng.Intn(botRatingRange),
			Bot:       true,
		})
	}
	return out, nil
}
