package handlers

import (
	"context"

	"go.uber.org/zap"

	"docextract/internal/extract"
	"docextract/internal/models"
	"docextract/internal/upload"
)

const Version = "1.0.0"

// CredentialStore is the API key holder used by the handlers.
type CredentialStore interface {
	Get() (string, bool)
	Configured() bool
	Set(value string) error
}

// Recorder persists one audit entry per extraction attempt.
type Recorder interface {
	Record(ctx context.Context, entry *models.ExtractionLog) error
}

// Handler serves the HTTP API.
type Handler struct {
	Store     CredentialStore
	Validator *upload.Validator
	Extractor extract.Extractor
	Recorder  Recorder
	Model     string
	Logger    *zap.Logger
}

func New(store CredentialStore, validator *upload.Validator, extractor extract.Extractor, model string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Store:     store,
		Validator: validator,
		Extractor: extractor,
		Model:     model,
		Logger:    logger,
	}
}

// WithRecorder enables the extraction audit log.
func (h *Handler) WithRecorder(r Recorder) *Handler {
	h.Recorder = r
	return h
}
