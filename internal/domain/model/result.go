package model

// EventResult is one finisher's record in one event.
type EventResult struct {
	ParticipantID  string   `json:"participantId"`
	DisplayName    string   `json:"displayName"`
	Team           string   `json:"team,omitempty"`
	Rating         int      `json:"rating,omitempty"`
	EventRating    int      `json:"eventRating,omitempty"`
	FinishPosition Position `json:"finishPosition"`
	IsSimulated    bool     `json:"isSimulated"`
	EventNumber    int      `json:"eventNumber"`
	Pen            int      `json:"pen,omitempty"`
	TimeSeconds    float64  `json:"timeSeconds,omitempty"`
	Source         string   `json:"source,omitempty"`
}

// Finished reports whether the result carries a classified place.
func (r EventResult) Finished() bool { return !r.FinishPosition.IsDNF() }

// EventResults maps an event number to its aggregated results.
type EventResults map[int][]EventResult
