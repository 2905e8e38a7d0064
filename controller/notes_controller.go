package controller

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/p-kowalski/audio-notes/models"
	"github.com/p-kowalski/audio-notes/services"
)

// NotesController handles the HTTP requests for the audio-notes API. It
// depends on the NoteService for the external calls and on the
// SessionManager for per-session note state.
type NotesController struct {
	service  services.NoteService
	sessions *services.SessionManager
	logger   *zap.Logger
}

// NewNotesController is a constructor function that creates a new
// NotesController. Called from main.go to inject the dependencies.
func NewNotesController(service services.NoteService, sessions *services.SessionManager, logger *zap.Logger) *NotesController {
	return &NotesController{
		service:  service,
		sessions: sessions,
		logger:   logger,
	}
}

// CreateSession is the handler for POST /api/v1/sessions. The body may
// carry a per-session provider API key for deployments where the server
// has none configured.
func (c *NotesController) CreateSession(ctx *gin.Context) {
	var req models.CreateSessionRequest
	// The body is optional; an empty or absent body means no session key.
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body: " + err.Error()})
			return
		}
	}

	id := c.sessions.Create(strings.TrimSpace(req.APIKey))
	ctx.JSON(http.StatusCreated, models.SessionResponse{SessionID: id})
}

// UploadAudio is the handler for POST /api/v1/sessions/:id/audio. It
// accepts the recording either as a multipart file field named "audio" or
// as the raw request body, and reports whether the new recording replaced
// the previous one (clearing the session's transcript and edited text).
func (c *NotesController) UploadAudio(ctx *gin.Context) {
	audio, err := readAudio(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Could not read audio: " + err.Error()})
		return
	}
	if len(audio) == 0 {
		ctx.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Empty audio upload"})
		return
	}

	hash, reset, err := c.sessions.PutAudio(ctx.Param("id"), audio)
	if err != nil {
		ctx.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Unknown session"})
		return
	}

	ctx.JSON(http.StatusOK, models.AudioUploadResponse{Hash: hash, Reset: reset})
}

// TranscribeAudio is the handler for POST /api/v1/sessions/:id/transcribe.
// A provider failure degrades to an empty transcript with a user-visible
// warning rather than an error status; the result is then observably
// identical to a silent recording, which is a documented ambiguity of the
// transcription contract.
func (c *NotesController) TranscribeAudio(ctx *gin.Context) {
	id := ctx.Param("id")
	state, err := c.sessions.Get(id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Unknown session"})
		return
	}
	if len(state.Audio) == 0 {
		ctx.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "No audio recorded for this session"})
		return
	}

	transcript, err := c.service.Transcribe(ctx.Request.Context(), state.APIKey, state.Audio)
	if errors.Is(err, services.ErrMissingAPIKey) {
		ctx.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "No provider API key configured; supply one when creating the session"})
		return
	}
	if err != nil {
		c.logger.Warn("transcription failed", zap.String("session", id), zap.Error(err))
		_ = c.sessions.SetTranscript(id, "")
		ctx.JSON(http.StatusOK, models.TranscriptionResponse{
			Transcript: "",
			Warning:    "Could not process the audio; the transcript is empty",
		})
		return
	}

	if err := c.sessions.SetTranscript(id, transcript); err != nil {
		ctx.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Unknown session"})
		return
	}
	ctx.JSON(http.StatusOK, models.TranscriptionResponse{Transcript: transcript})
}

// UpdateNote is the handler for PUT /api/v1/sessions/:id/note, tracking
// the user's edits to the displayed transcript.
func (c *NotesController) UpdateNote(ctx *gin.Context) {
	var req models.UpdateNoteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	if err := c.sessions.SetNoteText(ctx.Param("id"), req.Text); err != nil {
		ctx.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Unknown session"})
		return
	}
	ctx.Status(http.StatusNoContent)
}

// SaveNote is the handler for POST /api/v1/sessions/:id/notes. It embeds
// the session's edited text, stores it as a new note and resets the
// session back to awaiting audio, so a repeated save cannot duplicate the
// note.
func (c *NotesController) SaveNote(ctx *gin.Context) {
	id := ctx.Param("id")
	state, err := c.sessions.Get(id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Unknown session"})
		return
	}
	if strings.TrimSpace(state.NoteText) == "" {
		ctx.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Nothing to save: the note text is empty"})
		return
	}

	note, err := c.service.SaveNote(ctx.Request.Context(), state.APIKey, state.NoteText)
	if errors.Is(err, services.ErrMissingAPIKey) {
		ctx.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "No provider API key configured; supply one when creating the session"})
		return
	}
	if err != nil {
		c.logger.Error("save note failed", zap.String("session", id), zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to save note"})
		return
	}

	_ = c.sessions.ClearNote(id)
	ctx.JSON(http.StatusCreated, models.SaveNoteResponse{ID: note.ID, Message: "Note saved"})
}

// ListOrSearchNotes is the handler for GET /api/v1/notes. With a "query"
// parameter it performs a similarity search and annotates each result with
// a score; without one it returns an unfiltered paginated listing in
// internal store order, with no scores.
func (c *NotesController) ListOrSearchNotes(ctx *gin.Context) {
	query := ctx.Query("query")
	offset := intQuery(ctx, "offset", 0)
	limit := intQuery(ctx, "limit", 10)

	// An optional session_id lets the search run under a session's own
	// provider key when the server has none.
	apiKey := ""
	if sid := ctx.Query("session_id"); sid != "" {
		state, err := c.sessions.Get(sid)
		if err != nil {
			ctx.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Unknown session"})
			return
		}
		apiKey = state.APIKey
	}

	var (
		results []models.SearchResult
		err     error
	)
	if query == "" {
		results, err = c.service.ListNotes(ctx.Request.Context(), offset, limit)
	} else {
		results, err = c.service.SearchNotes(ctx.Request.Context(), apiKey, query, offset, limit)
	}
	if errors.Is(err, services.ErrMissingAPIKey) {
		ctx.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "No provider API key configured"})
		return
	}
	if err != nil {
		c.logger.Error("list or search notes failed", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to retrieve notes"})
		return
	}

	if results == nil {
		results = []models.SearchResult{}
	}
	ctx.JSON(http.StatusOK, models.ListNotesResponse{Count: len(results), Results: results})
}

// readAudio extracts the uploaded recording from either a multipart form
// or the raw request body.
func readAudio(ctx *gin.Context) ([]byte, error) {
	if strings.HasPrefix(ctx.ContentType(), "multipart/") {
		file, err := ctx.FormFile("audio")
		if err != nil {
			return nil, err
		}
		f, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(f)
	}
	return ctx.GetRawData()
}

func intQuery(ctx *gin.Context, name string, fallback int) int {
	raw := ctx.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
