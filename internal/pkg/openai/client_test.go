package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/contapp-relay/internal/pkg/config"
)

func newTestClient(t *testing.T, apiKey string, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(config.ChatConfig{
		APIKey:       apiKey,
		BaseURL:      srv.URL,
		DefaultModel: "gpt-4o-mini",
		Temperature:  0.3,
	}, 5*time.Second)
}

func TestCompleteForwardsMessagesAndTrimsReply(t *testing.T) {
	var got map[string]json.RawMessage
	c := newTestClient(t, "sk-test", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  hola  \n"}}]}`))
	})

	reply, err := c.Complete(context.Background(), CompletionRequest{
		Messages: []json.RawMessage{json.RawMessage(`{"role":"user","content":"hi","name":"ana"}`)},
	})
	require.NoError(t, err)
	assert.Equal(t, "hola", reply)

	assert.JSONEq(t, `"gpt-4o-mini"`, string(got["model"]))
	assert.JSONEq(t, `0.3`, string(got["temperature"]))
	assert.JSONEq(t, `[{"role":"user","content":"hi","name":"ana"}]`, string(got["messages"]))
}

func TestCompleteUsesRequestedModel(t *testing.T) {
	var got struct {
		Model string `json:"model"`
	}
	c := newTestClient(t, "sk-test", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	reply, err := c.Complete(context.Background(), CompletionRequest{
		Model:    "gpt-4o",
		Messages: []json.RawMessage{json.RawMessage(`{"role":"user","content":"hi"}`)},
	})
	require.NoError(t, err)
	assert.Empty(t, reply)
	assert.Equal(t, "gpt-4o", got.Model)
}

func TestCompleteAPIError(t *testing.T) {
	body := `{"error":{"message":"Rate limit reached","type":"requests"}}`
	c := newTestClient(t, "sk-test", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(body))
	})
	msgs := []json.RawMessage{json.RawMessage(`{"role":"user","content":"hi"}`)}

	_, err := c.Complete(context.Background(), CompletionRequest{Messages: msgs})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, "Rate limit reached", apiErr.Message)

	body = `<html>bad gateway</html>`
	_, err = c.Complete(context.Background(), CompletionRequest{Messages: msgs})
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "OpenAI error", apiErr.Message)
}

func TestCompleteWithoutKeyMakesNoCall(t *testing.T) {
	called := false
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := c.Complete(context.Background(), CompletionRequest{
		Messages: []json.RawMessage{json.RawMessage(`{"role":"user","content":"hi"}`)},
	})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.False(t, c.Configured())
	assert.False(t, called)
}

func TestCompleteHonoursContextDeadline(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, "sk-test", func(w http.ResponseWriter, r *http.Request) {
		<-release
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Complete(ctx, CompletionRequest{
		Messages: []json.RawMessage{json.RawMessage(`{"role":"user","content":"hi"}`)},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
