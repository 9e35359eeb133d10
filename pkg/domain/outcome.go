package domain

// Tier identifies which pass of the resolver produced a match.
type Tier string

const (
	TierExact   Tier = "exact"
	TierPhrase  Tier = "phrase"
	TierKeyword Tier = "keyword"
)

// Match is the choice the resolver selected.
type Match struct {
	ActionID string `json:"action_id"`
	Tier     Tier   `json:"tier"`
}

// Outcome describes what happened to a submitted input.
// Matched is false when no choice fit; the session is then unchanged and From equals To,
// unless Recovered is set: the current scene did not exist and the session was moved to the
// initial scene without taking a choice.
type Outcome struct {
	Matched   bool   `json:"matched"`
	Recovered bool   `json:"recovered,omitempty"`
	ActionID  string `json:"action,omitempty"`
	Tier      Tier   `json:"tier,omitempty"`
	From      string `json:"from"`
	To        string `json:"to"`
}
