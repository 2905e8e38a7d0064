package models

// CreateSessionRequest optionally carries a per-session provider API key,
// for deployments where the server itself has no key configured.
type CreateSessionRequest struct {
	APIKey string `json:"api_key,omitempty"`
}

// UpdateNoteRequest carries the user-edited note text for a session.
type UpdateNoteRequest struct {
	Text string `json:"text"`
}
