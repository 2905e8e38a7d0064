package services

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

// SessionState is a read-only snapshot of one session's note-taking state.
type SessionState struct {
	ID         string
	APIKey     string
	AudioHash  string
	Audio      []byte
	Transcript string
	NoteText   string
}

type noteSession struct {
	apiKey     string
	audioHash  string
	audio      []byte
	transcript string
	noteText   string
}

// SessionManager tracks per-session note state: the current audio's
// content hash, its bytes, the transcript and the user-edited text.
// All mutation happens here, under one lock.
//
// Invariant: a session's transcript and edited text are always cleared
// together when new audio (detected via content hash mismatch) arrives, so
// a stale transcript can never be saved against new audio.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*noteSession
}

func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*noteSession)}
}

// Create starts a new session, optionally bound to its own provider API key.
func (m *SessionManager) Create(apiKey string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	m.sessions[id] = &noteSession{apiKey: apiKey}
	return id
}

// Get returns a snapshot of the session's current state.
func (m *SessionManager) Get(id string) (SessionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return SessionState{}, ErrSessionNotFound
	}
	return snapshot(id, s), nil
}

// PutAudio stores freshly captured audio. When its content hash differs
// from the previous recording's, the transcript and edited text are
// cleared. Returns the hash and whether a reset happened.
func (m *SessionManager) PutAudio(id string, audio []byte) (hash string, reset bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return "", false, ErrSessionNotFound
	}

	hash = HashContent(audio)
	if s.audioHash != hash {
		s.transcript = ""
		s.noteText = ""
		s.audioHash = hash
		reset = true
	}
	s.audio = audio
	return hash, reset, nil
}

// SetTranscript records the transcription result for the current audio.
func (m *SessionManager) SetTranscript(id, transcript string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	s.transcript = transcript
	s.noteText = transcript
	return nil
}

// SetNoteText tracks the user's edits to the displayed transcript.
func (m *SessionManager) SetNoteText(id, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	s.noteText = text
	return nil
}

// ClearNote resets the session back to awaiting audio after a successful
// save: audio, hash, transcript and edited text are all dropped. A second
// save press therefore cannot store a duplicate of the same note.
func (m *SessionManager) ClearNote(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	s.audio = nil
	s.audioHash = ""
	s.transcript = ""
	s.noteText = ""
	return nil
}

func snapshot(id string, s *noteSession) SessionState {
	audio := make([]byte, len(s.audio))
	copy(audio, s.audio)
	return SessionState{
		ID:         id,
		APIKey:     s.apiKey,
		AudioHash:  s.audioHash,
		Audio:      audio,
		Transcript: s.transcript,
		NoteText:   s.noteText,
	}
}

// HashContent returns the hex SHA-256 digest used to detect whether newly
// captured audio differs from the previous recording.
func HashContent(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
