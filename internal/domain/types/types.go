// Package types contains common types used across the application
package types

// Entry is one row of the season table.
type Entry struct {
	Rank          int    `json:"rank"`
	ParticipantID string `json:"participantId"`
	DisplayName   string `json:"displayName"`
	Points        int    `json:"points"`
	Events        int    `json:"events"`
	IsSimulated   bool   `json:"isSimulated"`
}

// Less orders entries by points descending, then fewer events, then id.
func (e Entry) Less(o Entry) bool {
	if e.Points != o.Points {
		return e.Points > o.Points
	}
	if e.Events != o.Events {
		return e.Events < o.Events
	}
	return e.ParticipantID < o.ParticipantID
}
