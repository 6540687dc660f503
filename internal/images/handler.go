package images

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/emotisense/emotisense/backend/internal/config"
	"github.com/emotisense/emotisense/backend/internal/errs"
	"github.com/emotisense/emotisense/backend/internal/models"
)

const maxUploadBytes = 10 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ListCache defines the interface for the cached image list.
type ListCache interface {
	Get(ctx context.Context, scope string) []byte
	Set(ctx context.Context, scope string, payload []byte)
	Invalidate(ctx context.Context, scope string)
}

// Handler holds the image HTTP handlers.
type Handler struct {
	pipeline *Pipeline
	cache    ListCache
	scope    string
	log      *slog.Logger
}

func NewHandler(pipeline *Pipeline, cache ListCache, scope string, log *slog.Logger) *Handler {
	return &Handler{pipeline: pipeline, cache: cache, scope: scope, log: log}
}

// owner returns the list/delete scope for a request: the caller's id when the
// gallery is per-user, empty (everything) when shared.
func (h *Handler) owner(r *http.Request) string {
	if h.scope != config.ScopePerUser {
		return ""
	}
	userID, _ := r.Context().Value("user_id").(string)
	return userID
}

// Upload accepts a multipart image, runs the pipeline, and returns the stored
// record with its detected emotion.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, `{"error":"no file uploaded"}`, http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, `{"error":"failed to read file"}`, http.StatusBadRequest)
		return
	}

	result, err := h.pipeline.Run(r.Context(), Upload{
		Owner:    userID,
		Filename: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Data:     data,
	})
	if err != nil {
		h.log.Error("upload pipeline", "filename", header.Filename, "error", err)
		switch {
		case errors.Is(err, errs.ErrNoFilePayload):
			http.Error(w, `{"error":"no file uploaded"}`, http.StatusBadRequest)
		case errors.Is(err, errs.ErrUpstreamUnavailable), errors.Is(err, errs.ErrUpstreamRejected):
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "error uploading to storage"})
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "error processing image"})
		}
		return
	}

	h.cache.Invalidate(r.Context(), h.owner(r))

	var confidence any = UnknownEmotion
	if result.Confidence != nil {
		confidence = *result.Confidence
	}
	writeJSON(w, http.StatusCreated, models.UploadResponse{
		Message:    "Image uploaded successfully",
		Image:      result.Record,
		Emotion:    result.Emotion,
		Confidence: confidence,
	})
}

// List returns all image records visible to the caller.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	scope := h.owner(r)

	if cached := h.cache.Get(r.Context(), scope); cached != nil {
		w.Header().Set("Content-Type", "application/json")
		w.Write(cached)
		return
	}

	recs, err := h.pipeline.List(r.Context(), scope)
	if err != nil {
		h.log.Error("list images", "error", err)
		http.Error(w, `{"error":"error fetching images"}`, http.StatusInternalServerError)
		return
	}
	if recs == nil {
		recs = []models.ImageRecord{}
	}

	payload, err := json.Marshal(recs)
	if err != nil {
		http.Error(w, `{"error":"error fetching images"}`, http.StatusInternalServerError)
		return
	}
	h.cache.Set(r.Context(), scope, payload)

	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

// Delete removes the storage object and the record for one image.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.pipeline.Delete(r.Context(), h.owner(r), id); err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			http.Error(w, `{"error":"image not found"}`, http.StatusNotFound)
		case errors.Is(err, errs.ErrUpstreamUnavailable), errors.Is(err, errs.ErrUpstreamRejected):
			h.log.Error("delete image", "id", id, "error", err)
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "error deleting from storage"})
		default:
			h.log.Error("delete image", "id", id, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "error deleting image"})
		}
		return
	}

	h.cache.Invalidate(r.Context(), h.owner(r))
	writeJSON(w, http.StatusOK, map[string]string{"message": "Image deleted successfully"})
}
