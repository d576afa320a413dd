package model

// RiderJob asks for one rider's standings table to be rebuilt.
type RiderJob struct {
	// Generation identifies the results snapshot the job belongs to.
	Generation      uint64 `json:"generation"`
	ParticipantID   string `json:"participantId"`
	DisplayName     string `json:"displayName"`
	CompletedEvents []int  `json:"completedEvents"`
}
