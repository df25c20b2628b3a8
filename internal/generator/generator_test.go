package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"recipechat/internal/domain"
)

type stubCompleter struct {
	answer string
	err    error
	delay  time.Duration
	prompt string
}

func (s *stubCompleter) Model() string { return "stub-model" }

func (s *stubCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	s.prompt = prompt
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("request aborted: %w", ctx.Err())
		case <-time.After(s.delay):
		}
	}
	return s.answer, s.err
}

func TestRenderPrompt(t *testing.T) {
	docs := []domain.Document{{Content: "Tofu, protein 8g"}, {Content: "Spinach, iron 2.7mg"}}

	p := RenderPrompt("vegan, 30g protein", docs)

	assert.True(t, strings.HasPrefix(p, "Create a recipe that fits the following nutritional values"))
	assert.Contains(t, p, "no longer than 500 words")
	assert.Contains(t, p, "not possible with the available information")
	assert.Contains(t, p, "Documents:Tofu, protein 8g\nSpinach, iron 2.7mg\n")
	assert.Contains(t, p, "Question:vegan, 30g protein\n")
	assert.True(t, strings.HasSuffix(p, "Answer:"))
}

func TestRenderPrompt_EmptyContext(t *testing.T) {
	p := RenderPrompt("low sodium soup", nil)

	assert.Contains(t, p, "Documents:\nQuestion:low sodium soup\n")
}

func TestRenderPrompt_QueryIsNotReexpanded(t *testing.T) {
	p := RenderPrompt("what about {documents}?", []domain.Document{{Content: "rice"}})

	assert.Contains(t, p, "Question:what about {documents}?")
	assert.Equal(t, 1, strings.Count(p, "rice"))
}

func TestGenerator_ReturnsRawAnswer(t *testing.T) {
	c := &stubCompleter{answer: "Title\nStep 1: boil."}
	g := New(c, time.Second, zap.NewNop())

	got, err := g.Generate(context.Background(), "pasta", []domain.Document{{Content: "Durum wheat pasta"}})
	require.NoError(t, err)
	assert.Equal(t, "Title\nStep 1: boil.", got)
	assert.Contains(t, c.prompt, "Durum wheat pasta")
}

func TestGenerator_WrapsFailure(t *testing.T) {
	g := New(&stubCompleter{err: errors.New("503 overloaded")}, 0, zap.NewNop())

	_, err := g.Generate(context.Background(), "pasta", nil)
	var genErr *domain.GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, "stub-model", genErr.Model)
	assert.Contains(t, err.Error(), "503 overloaded")
}

func TestGenerator_Timeout(t *testing.T) {
	g := New(&stubCompleter{answer: "late", delay: time.Second}, 20*time.Millisecond, zap.NewNop())

	_, err := g.Generate(context.Background(), "pasta", nil)
	var genErr *domain.GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func chatServer(t *testing.T, status int, body string, seen *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))
		if seen != nil {
			_ = json.NewDecoder(r.Body).Decode(seen)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
}

func TestHFCompleter_Complete(t *testing.T) {
	t.Setenv("TEST_HF_TOKEN", "hf_test")
	var seen map[string]any
	srv := chatServer(t, http.StatusOK, `{"id":"x","object":"chat.completion","model":"m","choices":[{"index":0,"message":{"role":"assistant","content":"Here is a recipe."},"finish_reason":"stop"}],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`, &seen)
	defer srv.Close()

	c, err := NewHFCompleter(HFConfig{BaseURL: srv.URL + "/v1", APIKeyEnv: "TEST_HF_TOKEN", MaxTokens: 256}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, c.Model())

	got, err := c.Complete(context.Background(), "prompt text")
	require.NoError(t, err)
	assert.Equal(t, "Here is a recipe.", got)
	assert.Equal(t, DefaultModel, seen["model"])
	assert.EqualValues(t, 256, seen["max_tokens"])
	messages, ok := seen["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1)
	assert.Equal(t, "prompt text", messages[0].(map[string]any)["content"])
}

func TestHFCompleter_APIError(t *testing.T) {
	t.Setenv("TEST_HF_TOKEN", "hf_test")
	srv := chatServer(t, http.StatusUnauthorized, `{"error":{"message":"Invalid credentials in Authorization header","type":"invalid_request_error"}}`, nil)
	defer srv.Close()

	c, err := NewHFCompleter(HFConfig{BaseURL: srv.URL + "/v1", APIKeyEnv: "TEST_HF_TOKEN"}, zap.NewNop())
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "Invalid credentials")
}

func TestHFCompleter_NoChoices(t *testing.T) {
	t.Setenv("TEST_HF_TOKEN", "hf_test")
	srv := chatServer(t, http.StatusOK, `{"id":"x","choices":[]}`, nil)
	defer srv.Close()

	c, err := NewHFCompleter(HFConfig{BaseURL: srv.URL + "/v1", APIKeyEnv: "TEST_HF_TOKEN"}, zap.NewNop())
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "prompt")
	assert.EqualError(t, err, "model returned no choices")
}

func TestNewHFCompleter_MissingToken(t *testing.T) {
	t.Setenv("TEST_HF_TOKEN", "")

	_, err := NewHFCompleter(HFConfig{APIKeyEnv: "TEST_HF_TOKEN"}, zap.NewNop())
	assert.EqualError(t, err, "missing API key in env TEST_HF_TOKEN")
}
