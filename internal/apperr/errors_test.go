package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"configuration", Configuration("no key"), http.StatusBadRequest},
		{"validation", Validation("bad file"), http.StatusBadRequest},
		{"external", ExternalService("gemini failed", errors.New("quota")), http.StatusInternalServerError},
		{"parse", ResponseParse("bad json", errors.New("eof")), http.StatusInternalServerError},
		{"internal", Internal("write failed", errors.New("disk full")), http.StatusInternalServerError},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped validation", fmt.Errorf("process: %w", Validation("too large")), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusCode(tt.err); got != tt.want {
				t.Errorf("StatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPublicMessage(t *testing.T) {
	if got := PublicMessage(Validation("File size too large")); got != "File size too large" {
		t.Errorf("classified message = %q", got)
	}
	if got := PublicMessage(errors.New("secret stack detail")); got != "Internal server error" {
		t.Errorf("unclassified message = %q", got)
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := ExternalService("gemini generation failed", cause)
	if !errors.Is(err, cause) {
		t.Fatal("errors.Is did not find the cause")
	}
	if !Is(fmt.Errorf("wrap: %w", err), KindExternalService) {
		t.Fatal("kind lost through wrapping")
	}
	if Is(nil, KindExternalService) {
		t.Fatal("nil error reported a kind")
	}
}

func TestKindString(t *testing.T) {
	if KindResponseParse.String() != "response_parse" {
		t.Errorf("got %q", KindResponseParse.String())
	}
	if Kind(99).String() != "unknown" {
		t.Errorf("got %q", Kind(99).String())
	}
}
