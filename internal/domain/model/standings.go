package model

// StandingsEntry aggregates one participant across a set of events.
type StandingsEntry struct {
	ParticipantID       string `json:"participantId"`
	DisplayName         string `json:"displayName"`
	Team                string `json:"team,omitempty"`
	Rating              int    `json:"rating,omitempty"`
	RatingBand          string `json:"ratingBand,omitempty"`
	TotalPoints         int    `json:"totalPoints"`
	EventsCounted       int    `json:"eventsCounted"`
	SimulatedEvents     int    `json:"simulatedEvents,omitempty"`
	IsSimulated         bool   `json:"isSimulated"`
	IsTargetParticipant bool   `json:"isTargetParticipant"`
}

// RatingBand names the ARR band a rating falls into.
func RatingBand(rating int) string {
	type band struct {
		min  int
		name string
	}
	bands := [...]band{
		{1900, "Diamond 4"}, {1800, "Diamond 3"}, {1700, "Diamond 2"}, {1600, "Diamond 1"},
		{1500, "Platinum 3"}, {1400, "Platinum 2"}, {1300, "Platinum 1"},
		{1200, "Gold 3"}, {1100, "Gold 2"}, {1000, "Gold 1"},
		{900, "Silver 3"}, {800, "Silver 2"}, {700, "Silver 1"},
		{500, "Bronze 3"}, {400, "Bronze 2"}, {300, "Bronze 1"},
	}
	for _, b := range bands {
		if rating >= b.min {
			return b.name
		}
	}
	return "Unranked"
}
