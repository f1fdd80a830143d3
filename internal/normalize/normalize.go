package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"docextract/internal/apperr"
	"docextract/internal/models"
)

const (
	fenceOpen  = "```json"
	fenceClose = "```"
)

// Record is a parsed model reply. Numbers are kept as json.Number so they
// re-encode exactly as the model wrote them.
type Record map[string]any

// Normalize turns a raw model reply into a Record. The reply may be wrapped in
// a ```json fence; anything that is not a single JSON object fails with a
// response-parse error and no record.
func Normalize(raw string) (Record, error) {
	cleaned := StripFences(raw)

	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.UseNumber()

	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return nil, parseError(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, parseError(errors.New("invalid character after top-level value"))
	}
	if rec == nil {
		return nil, parseError(errors.New("reply is null, expected a JSON object"))
	}

	compactDateOfIssue(rec)
	return rec, nil
}

// StripFences trims the reply and removes one literal ```json prefix and one
// literal ``` suffix. Other fence styles are left alone.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, fenceOpen)
	s = strings.TrimSuffix(s, fenceClose)
	return strings.TrimSpace(s)
}

func compactDateOfIssue(rec Record) {
	info, ok := rec[models.RelevantInfoKey].(map[string]any)
	if !ok {
		return
	}
	if v, ok := info[models.DateOfIssueField].(string); ok {
		info[models.DateOfIssueField] = strings.ReplaceAll(v, " ", "")
	}
}

// MarshalIndent renders rec with two-space indentation and sorted keys.
func (r Record) MarshalIndent() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]any(r)); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func parseError(err error) error {
	return apperr.ResponseParse("Failed to parse Gemini response: "+err.Error(), err)
}
