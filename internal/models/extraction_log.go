package models

import "time"

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// ExtractionLog is one audited /process_image attempt. Extracted values are
// never stored.
type ExtractionLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Filename   string    `gorm:"size:255" json:"filename"`
	Size       int64     `json:"size"`
	MimeType   string    `gorm:"size:100" json:"mime_type"`
	Model      string    `gorm:"size:100" json:"model"`
	Outcome    string    `gorm:"size:20;index" json:"outcome"`
	ErrorKind  string    `gorm:"size:50" json:"error_kind,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}
