package extract

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"

	"docextract/internal/apperr"
	"docextract/internal/models"
)

type staticKey string

func (k staticKey) Get() (string, bool) { return string(k), k != "" }

type recordedCall struct {
	apiKey, model string
	parts         []genai.Part
}

func newFakeClient(key string, reply string, err error) (*GeminiClient, *[]recordedCall) {
	var calls []recordedCall
	c := NewGeminiClient(staticKey(key), "gemini-1.5-flash", time.Second)
	c.generate = func(ctx context.Context, apiKey, model string, parts ...genai.Part) (string, error) {
		calls = append(calls, recordedCall{apiKey: apiKey, model: model, parts: parts})
		return reply, err
	}
	return c, &calls
}

func TestPromptListsEveryField(t *testing.T) {
	for _, f := range models.IdentityFields {
		if !strings.Contains(Prompt, `"`+f.Name+`"`) {
			t.Errorf("prompt is missing field %q", f.Name)
		}
	}
	if !strings.Contains(Prompt, `"country": "REPUBLIC OF KENYA"`) {
		t.Error("prompt is missing the country example")
	}
	if !strings.Contains(Prompt, `"relevant_info": {`) {
		t.Error("prompt is missing the relevant_info wrapper")
	}
	if !strings.HasSuffix(Prompt, "no markdown formatting or additional text.") {
		t.Error("prompt is missing the output instruction")
	}
}

func TestBuildPromptIsValidTemplate(t *testing.T) {
	p := BuildPrompt([]models.Field{{Name: "a"}, {Name: "b", Example: "x"}})
	want := "{\n    \"relevant_info\": {\n        \"a\": \"\",\n        \"b\": \"x\"\n    }\n}\n"
	if !strings.Contains(p, want) {
		t.Errorf("template body not found in:\n%s", p)
	}
}

func TestExtractSendsOneRequest(t *testing.T) {
	c, calls := newFakeClient("key-1", `{"relevant_info":{}}`, nil)
	image := []byte{0x89, 'P', 'N', 'G'}

	got, err := c.Extract(context.Background(), image, "image/png")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != `{"relevant_info":{}}` {
		t.Errorf("reply = %q", got)
	}
	if len(*calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(*calls))
	}
	call := (*calls)[0]
	if call.apiKey != "key-1" || call.model != "gemini-1.5-flash" {
		t.Errorf("call = %+v", call)
	}
	if len(call.parts) != 2 {
		t.Fatalf("parts = %d, want 2", len(call.parts))
	}
	if txt, ok := call.parts[0].(genai.Text); !ok || string(txt) != Prompt {
		t.Errorf("first part is not the prompt: %#v", call.parts[0])
	}
	blob, ok := call.parts[1].(genai.Blob)
	if !ok || blob.MIMEType != "image/png" || string(blob.Data) != string(image) {
		t.Errorf("second part is not the image: %#v", call.parts[1])
	}
	if c.Model() != "gemini-1.5-flash" {
		t.Errorf("Model() = %q", c.Model())
	}
}

func TestExtractWithoutKey(t *testing.T) {
	c, calls := newFakeClient("", "", nil)
	_, err := c.Extract(context.Background(), []byte("x"), "image/png")
	if !apperr.Is(err, apperr.KindConfiguration) {
		t.Fatalf("err = %v, want configuration error", err)
	}
	if len(*calls) != 0 {
		t.Error("model called without a key")
	}
}

func TestExtractMapsFailures(t *testing.T) {
	c, calls := newFakeClient("key", "", errors.New("googleapi: Error 429: quota exceeded"))
	_, err := c.Extract(context.Background(), []byte("x"), "image/jpeg")
	if !apperr.Is(err, apperr.KindExternalService) {
		t.Fatalf("err = %v, want external service error", err)
	}
	if len(*calls) != 1 {
		t.Errorf("calls = %d, failures must not be retried", len(*calls))
	}

	c, _ = newFakeClient("key", "", apperr.ExternalService("Empty response from Gemini", nil))
	_, err = c.Extract(context.Background(), []byte("x"), "image/jpeg")
	if apperr.PublicMessage(err) != "Empty response from Gemini" {
		t.Errorf("classified error rewrapped: %v", err)
	}
}

func TestExtractTimeout(t *testing.T) {
	c := NewGeminiClient(staticKey("key"), "m", 10*time.Millisecond)
	c.generate = func(ctx context.Context, apiKey, model string, parts ...genai.Part) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}
	_, err := c.Extract(context.Background(), []byte("x"), "image/png")
	if !apperr.Is(err, apperr.KindExternalService) || apperr.PublicMessage(err) != "Gemini request timed out" {
		t.Fatalf("err = %v, want timeout external service error", err)
	}
}

func TestResponseText(t *testing.T) {
	if responseText(nil) != "" {
		t.Error("nil response should give empty text")
	}
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("  {\"a\":"), genai.Text("1}  ")}},
		}},
	}
	if got := responseText(resp); got != `{"a":1}` {
		t.Errorf("responseText = %q", got)
	}
}

const validReply = "```json\n{\"relevant_info\": {\"full_names\": \"JANE DOE\"}}\n```"

type countingExtractor struct {
	calls int
	reply string
	err   error
}

func (e *countingExtractor) Extract(ctx context.Context, image []byte, mimeType string) (string, error) {
	e.calls++
	return e.reply, e.err
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]string
	getErr  error
	setErr  error
}

func (m *memoryCache) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *memoryCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.entries[key] = value
	return nil
}

func TestCachedExtractor(t *testing.T) {
	inner := &countingExtractor{reply: validReply}
	cache := &memoryCache{entries: map[string]string{}}
	c := Cached(inner, cache, "m", time.Hour, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := c.Extract(ctx, []byte("image-a"), "image/png")
		if err != nil || got != validReply {
			t.Fatalf("Extract = %q, %v", got, err)
		}
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}

	if _, err := c.Extract(ctx, []byte("image-b"), "image/png"); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 2 {
		t.Errorf("different image should miss the cache, calls = %d", inner.calls)
	}
}

func TestCachedExtractorDoesNotCacheFailures(t *testing.T) {
	inner := &countingExtractor{err: apperr.ExternalService("down", nil)}
	cache := &memoryCache{entries: map[string]string{}}
	c := Cached(inner, cache, "m", time.Hour, nil)

	if _, err := c.Extract(context.Background(), []byte("x"), "image/png"); err == nil {
		t.Fatal("expected error")
	}
	if len(cache.entries) != 0 {
		t.Error("failure was cached")
	}
}

func TestCachedExtractorSkipsUnparseableReplies(t *testing.T) {
	inner := &countingExtractor{reply: "Sorry, I can't read that"}
	cache := &memoryCache{entries: map[string]string{}}
	c := Cached(inner, cache, "m", time.Hour, nil)
	ctx := context.Background()

	got, err := c.Extract(ctx, []byte("x"), "image/png")
	if err != nil || got != "Sorry, I can't read that" {
		t.Fatalf("Extract = %q, %v", got, err)
	}
	if len(cache.entries) != 0 {
		t.Fatal("unparseable reply was cached")
	}

	inner.reply = validReply
	got, err = c.Extract(ctx, []byte("x"), "image/png")
	if err != nil || got != validReply {
		t.Fatalf("Extract = %q, %v", got, err)
	}
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2", inner.calls)
	}
	if len(cache.entries) != 1 {
		t.Errorf("cache entries = %d, want 1", len(cache.entries))
	}
}

func TestCachedExtractorSurvivesCacheErrors(t *testing.T) {
	inner := &countingExtractor{reply: "reply"}
	cache := &memoryCache{entries: map[string]string{}, getErr: errors.New("redis down"), setErr: errors.New("redis down")}
	c := Cached(inner, cache, "m", time.Hour, nil)

	got, err := c.Extract(context.Background(), []byte("x"), "image/png")
	if err != nil || got != "reply" {
		t.Fatalf("Extract = %q, %v", got, err)
	}
}

func TestCacheKey(t *testing.T) {
	a := CacheKey("m", "image/png", []byte("x"))
	if a != CacheKey("m", "image/png", []byte("x")) {
		t.Error("key is not deterministic")
	}
	if a == CacheKey("m2", "image/png", []byte("x")) || a == CacheKey("m", "image/jpeg", []byte("x")) {
		t.Error("key ignores model or mime type")
	}
	if !strings.HasPrefix(a, "extract:") {
		t.Errorf("key = %q", a)
	}
}
