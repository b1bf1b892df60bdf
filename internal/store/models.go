package store

// Thread is one conversation record. Answer is an append-only
// transcript: follow-up exchanges are concatenated onto it as
// "Q: .../A: ..." fragments, while Title and Question stay frozen at
// their first-message values.
type Thread struct {
	ID       int64  `json:"id"`
	Username string `json:"username,omitempty"`
	Title    string `json:"title"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
