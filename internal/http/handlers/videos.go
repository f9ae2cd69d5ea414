package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"aititle/internal/domain"
	"aititle/internal/pipeline"
)

const (
	msgMissingLink          = "Please provide the video link"
	msgInvalidLink          = "Invalid YouTube link"
	msgAlreadyGenerated     = "AI Title already generated"
	msgTranscriptMissing    = "Transcript not available for this video."
	msgGenerationFailed     = "Failed To Generate Title"
	msgGenerated            = "AI Title generated and saved successfully"
	msgInternal             = "Internal server error"
	msgVideoNotFound        = "Video not found"
	maxVideoRequestBodySize = 64 << 10
)

type videoTitleRequest struct {
	VideoLink string `json:"videoLink"`
}

type titleResponse struct {
	Message string `json:"message"`
	Data    string `json:"data"`
}

type videoDTO struct {
	YouTubeID string `json:"youtubeId"`
	AITitle   string `json:"AI_Title"`
}

// CreateVideoTitle handles POST /api/video.
func (a *App) CreateVideoTitle(w http.ResponseWriter, r *http.Request) {
	var req videoTitleRequest
	body := io.LimitReader(r.Body, maxVideoRequestBodySize)
	if err := json.NewDecoder(body).Decode(&req); err != nil || req.VideoLink == "" {
		a.error(w, http.StatusBadRequest, msgMissingLink)
		return
	}

	out := a.Titles.Process(r.Context(), req.VideoLink)
	switch out.Kind {
	case pipeline.KindInvalidURL:
		a.error(w, http.StatusBadRequest, msgInvalidLink)
	case pipeline.KindAlreadyExists:
		a.json(w, http.StatusOK, titleResponse{Message: msgAlreadyGenerated, Data: out.Title})
	case pipeline.KindTranscriptUnavailable:
		a.error(w, http.StatusNotFound, msgTranscriptMissing)
	case pipeline.KindGenerationFailed:
		a.json(w, http.StatusCreated, titleResponse{Message: msgGenerationFailed, Data: out.Title})
	case pipeline.KindGenerated:
		a.json(w, http.StatusCreated, titleResponse{Message: msgGenerated, Data: out.Title})
	default:
		a.error(w, http.StatusInternalServerError, msgInternal)
	}
}

// GetVideo handles GET /api/video/{videoID}.
func (a *App) GetVideo(w http.ResponseWriter, r *http.Request) {
	videoID := strings.TrimSpace(chi.URLParam(r, "videoID"))
	if videoID == "" {
		a.error(w, http.StatusNotFound, msgVideoNotFound)
		return
	}
	rec, err := a.Videos.FindByVideoID(r.Context(), videoID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, msgVideoNotFound)
			return
		}
		a.Logger.Error().Err(err).Str("video_id", videoID).Msg("video lookup failed")
		a.error(w, http.StatusInternalServerError, msgInternal)
		return
	}
	a.json(w, http.StatusOK, videoDTO{YouTubeID: rec.VideoID, AITitle: rec.AITitle})
}
