package models

type SessionResponse struct {
	SessionID string `json:"session_id"`
}

// AudioUploadResponse reports whether the uploaded audio replaced the
// session's previous recording (and therefore cleared its transcript).
type AudioUploadResponse struct {
	Hash  string `json:"hash"`
	Reset bool   `json:"reset"`
}

// TranscriptionResponse carries the transcript for the session's audio.
// Warning is set when the provider call failed and the transcript degraded
// to an empty string; an empty transcript without a warning means the
// provider heard nothing.
type TranscriptionResponse struct {
	Transcript string `json:"transcript"`
	Warning    string `json:"warning,omitempty"`
}

type SaveNoteResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
