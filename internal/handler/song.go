package handler

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/songbook/songbook/internal/auth"
	"github.com/songbook/songbook/internal/handler/dto"
	"github.com/songbook/songbook/internal/model"
	"github.com/songbook/songbook/internal/repository"
	"github.com/songbook/songbook/internal/service"
	"github.com/songbook/songbook/internal/validation"
)

// errEmptyBody is returned by decodeJSON for a request without a body.
var errEmptyBody = errors.New("empty body")

// SongHandler handles HTTP requests for song operations.
type SongHandler struct {
	svc    *service.SongService
	logger *slog.Logger
	now    func() time.Time
}

// NewSongHandler creates a new SongHandler.
func NewSongHandler(svc *service.SongService, logger *slog.Logger) *SongHandler {
	return &SongHandler{
		svc:    svc,
		logger: logger,
		now:    time.Now,
	}
}

// List handles GET /songs.
func (h *SongHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := validation.ParseListQuery(r.URL.Query())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	songs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	dto.WriteList(w, songs)
}

// Get handles GET /songs/{id}.
func (h *SongHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := validation.ParseSongID(chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	song, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	dto.WriteData(w, http.StatusOK, song)
}

// ListByUser handles GET /songs/user/{userId}.
func (h *SongHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	ownerID, err := validation.ParseOwnerID(chi.URLParam(r, "userId"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	songs, err := h.svc.ListByOwner(r.Context(), ownerID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	dto.WriteList(w, songs)
}

// Stats handles GET /songs/stats. Only the caller's songs are counted.
func (h *SongHandler) Stats(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		dto.WriteError(w, http.StatusUnauthorized, "authorization required", "", nil)
		return
	}

	stats, err := h.svc.Stats(r.Context(), callerID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	dto.WriteData(w, http.StatusOK, stats)
}

// Genres handles GET /songs/genres.
func (h *SongHandler) Genres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.svc.Genres(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	dto.WriteList(w, genres)
}

// Artists handles GET /songs/artists.
func (h *SongHandler) Artists(w http.ResponseWriter, r *http.Request) {
	artists, err := h.svc.Artists(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	dto.WriteList(w, artists)
}

// SearchYears handles GET /songs/search/years.
func (h *SongHandler) SearchYears(w http.ResponseWriter, r *http.Request) {
	filter, err := validation.ParseYearRange(r.URL.Query(), h.now())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	songs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	dto.WriteList(w, songs)
}

// SearchDuration handles GET /songs/search/duration.
func (h *SongHandler) SearchDuration(w http.ResponseWriter, r *http.Request) {
	filter, err := validation.ParseDurationRange(r.URL.Query())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	songs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	dto.WriteList(w, songs)
}

// Create handles POST /songs. The caller becomes the owner.
func (h *SongHandler) Create(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		dto.WriteError(w, http.StatusUnauthorized, "authorization required", "", nil)
		return
	}

	in, ok := h.decodeSong(w, r)
	if !ok {
		return
	}

	song, err := h.svc.Create(r.Context(), callerID, in)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("song_created",
		"song_id", song.ID,
		"owner_id", callerID,
	)

	dto.Write(w, http.StatusCreated, dto.Envelope{
		Success: true,
		Data:    song,
		Message: "song created",
	})
}

// Update handles PUT /songs/{id}. Songs owned by someone else are reported as not found.
func (h *SongHandler) Update(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		dto.WriteError(w, http.StatusUnauthorized, "authorization required", "", nil)
		return
	}

	id, err := validation.ParseSongID(chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	in, ok := h.decodeSong(w, r)
	if !ok {
		return
	}

	song, err := h.svc.Update(r.Context(), id, callerID, in)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("song_updated",
		"song_id", song.ID,
		"owner_id", callerID,
	)

	dto.Write(w, http.StatusOK, dto.Envelope{
		Success: true,
		Data:    song,
		Message: "song updated",
	})
}

// Delete handles DELETE /songs/{id}.
func (h *SongHandler) Delete(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		dto.WriteError(w, http.StatusUnauthorized, "authorization required", "", nil)
		return
	}

	id, err := validation.ParseSongID(chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id, callerID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("song_deleted",
		"song_id", id,
		"owner_id", callerID,
	)

	dto.WriteMessage(w, http.StatusOK, "song deleted")
}

// decodeSong reads and validates a song body. On failure the response has
// already been written.
func (h *SongHandler) decodeSong(w http.ResponseWriter, r *http.Request) (model.SongInput, bool) {
	var payload validation.SongPayload
	if err := decodeJSON(r, &payload); err != nil && !errors.Is(err, errEmptyBody) {
		writeDecodeError(w, err)
		return model.SongInput{}, false
	}

	in, err := validation.ValidateSong(payload, h.now())
	if err != nil {
		h.handleServiceError(w, r, err)
		return model.SongInput{}, false
	}
	return in, true
}

// handleServiceError maps service errors to HTTP responses.
func (h *SongHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	var storeErr *repository.StoreError

	switch {
	case errors.As(err, &verr):
		h.logger.Debug("validation_failed", "path", r.URL.Path, "violations", verr.Messages())
		dto.WriteError(w, http.StatusBadRequest, "validation failed", "", verr.Fields)
	case errors.Is(err, service.ErrSongNotFound):
		dto.WriteError(w, http.StatusNotFound, "song not found", "", nil)
	case errors.As(err, &storeErr):
		h.logger.Warn("store_error",
			"op", storeErr.Op,
			"path", r.URL.Path,
			"error", storeErr.Err,
		)
		dto.WriteError(w, http.StatusBadRequest, storeErr.Message(), "", nil)
	default:
		h.logger.Error("internal_error", "path", r.URL.Path, "error", err)
		dto.WriteError(w, http.StatusInternalServerError, "internal server error", "", nil)
	}
}

// decodeJSON decodes the request body into dst. A blank body yields errEmptyBody
// and leaves dst untouched.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return errEmptyBody
	}
	return json.Unmarshal(body, dst)
}

// writeDecodeError answers a body that could not be decoded.
func writeDecodeError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		dto.WriteError(w, http.StatusRequestEntityTooLarge, "request body too large", "", nil)
		return
	}
	dto.WriteError(w, http.StatusBadRequest, "invalid JSON body", "", nil)
}
