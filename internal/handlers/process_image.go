package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"docextract/internal/apperr"
	"docextract/internal/models"
	"docextract/internal/normalize"
	"docextract/internal/upload"
)

const (
	fileField = "file"
	// multipartOverhead covers boundaries and part headers on top of the file itself.
	multipartOverhead = 1 << 20
	maxMemory         = 32 << 20
)

// ProcessImage extracts identity fields from an uploaded image.
// POST /process_image, multipart/form-data with file field "file"
func (h *Handler) ProcessImage() http.HandlerFunc {
	return h.wrap("process_image", func(w http.ResponseWriter, r *http.Request) error {
		start := time.Now()
		entry := &models.ExtractionLog{Model: h.Model}
		err := h.processImage(w, r, entry)
		h.record(r.Context(), entry, start, err)
		return err
	})
}

func (h *Handler) processImage(w http.ResponseWriter, r *http.Request, entry *models.ExtractionLog) error {
	maxBytes := h.Validator.MaxBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		if isTooLarge(err) {
			return apperr.Validation("File size too large")
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return apperr.Validation("No file part in the request")
		}
		return apperr.New(apperr.KindValidation, "failed to parse multipart form", err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(fileField)
	if err != nil {
		// A part without a filename is parsed as a plain value.
		if _, ok := r.MultipartForm.Value[fileField]; ok {
			return apperr.Validation("No selected file")
		}
		return apperr.Validation("No file part in the request")
	}
	defer file.Close()
	if header.Filename == "" {
		return apperr.Validation("No selected file")
	}

	mimeType := upload.MimeType(header.Filename, header.Header.Get("Content-Type"))
	entry.Filename = header.Filename
	entry.Size = header.Size
	entry.MimeType = mimeType

	if err := h.Validator.Validate(header.Filename, header.Size, mimeType); err != nil {
		return err
	}

	image, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return apperr.Internal("Failed to read uploaded file", err)
	}
	if int64(len(image)) > maxBytes {
		return apperr.Validation("File size too large")
	}

	reply, err := h.Extractor.Extract(r.Context(), image, mimeType)
	if err != nil {
		return err
	}

	rec, err := normalize.Normalize(reply)
	if err != nil {
		h.Logger.Debug("unparseable model reply", zap.String("reply", reply))
		return err
	}

	body, err := rec.MarshalIndent()
	if err != nil {
		return apperr.Internal("Failed to encode response", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
	return nil
}

func (h *Handler) record(ctx context.Context, entry *models.ExtractionLog, start time.Time, err error) {
	if h.Recorder == nil {
		return
	}
	entry.DurationMS = time.Since(start).Milliseconds()
	entry.Outcome = models.OutcomeSuccess
	if err != nil {
		entry.Outcome = models.OutcomeFailure
		entry.ErrorKind = apperr.KindOf(err).String()
	}
	if rerr := h.Recorder.Record(context.WithoutCancel(ctx), entry); rerr != nil {
		h.Logger.Warn("failed to record extraction", zap.Error(rerr))
	}
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
