package upload

import (
	"mime"
	"path/filepath"
	"slices"
	"strings"

	"docextract/internal/apperr"
)

// Validator checks an uploaded file by its name and declared size only; the
// content is never inspected.
type Validator struct {
	allowed  map[string]struct{}
	names    []string
	maxBytes int64
}

func NewValidator(allowedExtensions []string, maxBytes int64) *Validator {
	v := &Validator{allowed: make(map[string]struct{}), maxBytes: maxBytes}
	for _, ext := range allowedExtensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext == "" {
			continue
		}
		if _, dup := v.allowed[ext]; !dup {
			v.allowed[ext] = struct{}{}
			v.names = append(v.names, ext)
		}
	}
	slices.Sort(v.names)
	return v
}

// MaxBytes is the largest accepted upload.
func (v *Validator) MaxBytes() int64 {
	return v.maxBytes
}

// Validate fails when filename has no allowed extension or size exceeds the limit.
func (v *Validator) Validate(filename string, size int64, declaredType string) error {
	if !v.Allowed(filename) {
		return apperr.Validationf("File type not allowed. Supported types: %s", strings.Join(v.names, ", "))
	}
	if size > v.maxBytes {
		return apperr.Validation("File size too large")
	}
	return nil
}

// Allowed reports whether filename carries one of the allowed extensions.
func (v *Validator) Allowed(filename string) bool {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return false
	}
	_, ok := v.allowed[strings.ToLower(filename[i+1:])]
	return ok
}

// MimeType returns declared when set, otherwise a type derived from the
// filename extension.
func MimeType(filename, declared string) string {
	if declared = strings.TrimSpace(declared); declared != "" && declared != "application/octet-stream" {
		return declared
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if mt := mime.TypeByExtension(ext); mt != "" {
		return mt
	}
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}
