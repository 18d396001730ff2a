package entity

// Participant is one of the two seated players of a session.
type Participant struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Mark  Mark   `json:"mark"`
}
