package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"aititle/internal/domain"
	"aititle/internal/infra"
	"aititle/internal/pipeline"
)

// TitleProcessor runs the title pipeline for one submitted link.
type TitleProcessor interface {
	Process(ctx context.Context, rawURL string) pipeline.Outcome
}

type App struct {
	Titles TitleProcessor
	Videos domain.VideoRepository
	Logger infra.Logger
	// Ping checks store connectivity for Health; nil skips the check.
	Ping func(ctx context.Context) error
}

func NewApp(titles TitleProcessor, videos domain.VideoRepository, logger infra.Logger) *App {
	return &App{Titles: titles, Videos: videos, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, message string) {
	a.json(w, code, errorResponse{Error: message})
}

type errorResponse struct {
	Error string `json:"error"`
}
