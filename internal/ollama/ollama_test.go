package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOllama serves /api/tags and answers /api/generate with reply.
func fakeOllama(t *testing.T, reply string, status int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"models":[{"name":"qwen3:latest"},{"name":"llama3:8b"}]}`))
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if status != http.StatusOK {
			http.Error(w, "model exploded", status)
			return
		}
		json.NewEncoder(w).Encode(generateResponse{Response: reply, Done: true})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestAvailable(t *testing.T) {
	srv := fakeOllama(t, "", http.StatusOK)

	assert.True(t, NewClient(srv.URL, "qwen3").Available(context.Background()))
	assert.True(t, NewClient(srv.URL+"/", "llama3:8b").Available(context.Background()))
	assert.False(t, NewClient(srv.URL, "mistral").Available(context.Background()))

	c := NewClient(srv.URL, "")
	require.True(t, c.Available(context.Background()))
	assert.Equal(t, "qwen3:latest", c.Model())
}

func TestAvailableUnreachable(t *testing.T) {
	srv := fakeOllama(t, "", http.StatusOK)
	url := srv.URL
	srv.Close()
	assert.False(t, NewClient(url, "qwen3").Available(context.Background()))
}

func TestWaitForReadyTimesOut(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "qwen3")
	c.pollEvery = 10 * time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.False(t, c.WaitForReady(ctx))
}

func TestGenerate(t *testing.T) {
	srv := fakeOllama(t, "  hello  ", http.StatusOK)
	out, err := NewClient(srv.URL, "qwen3").Generate(context.Background(), "sys", "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestGenerateStatusError(t *testing.T) {
	srv := fakeOllama(t, "", http.StatusInternalServerError)
	_, err := NewClient(srv.URL, "qwen3").Generate(context.Background(), "sys", "hi")
	assert.ErrorContains(t, err, "status 500")
}

func TestGeneratePrompt(t *testing.T) {
	srv := fakeOllama(t, `"Here's a description: Slow jazz shuffle under dim lights and soft rain"`, http.StatusOK)
	g := NewPromptGenerator(NewClient(srv.URL, "qwen3"))

	got := g.GeneratePrompt(context.Background(), "jazz")
	assert.Equal(t, "Slow jazz shuffle under dim lights and soft rain", got)
}

func TestGeneratePromptDiscardsWrongStyle(t *testing.T) {
	srv := fakeOllama(t, "Screaming guitar over a jazz rhythm section", http.StatusOK)
	g := NewPromptGenerator(NewClient(srv.URL, "qwen3"))
	assert.Empty(t, g.GeneratePrompt(context.Background(), "jazz"))
}

func TestGeneratePromptUnknownStyle(t *testing.T) {
	srv := fakeOllama(t, "whatever this is, it is long enough", http.StatusOK)
	g := NewPromptGenerator(NewClient(srv.URL, "qwen3"))
	assert.Empty(t, g.GeneratePrompt(context.Background(), "polka"))
}

func TestGeneratePromptTooShort(t *testing.T) {
	srv := fakeOllama(t, "jazz", http.StatusOK)
	g := NewPromptGenerator(NewClient(srv.URL, "qwen3"))
	assert.Empty(t, g.GeneratePrompt(context.Background(), "jazz"))
}

func TestGenerateName(t *testing.T) {
	srv := fakeOllama(t, "<think>hmm</think>\nBlue Hour Drift", http.StatusOK)
	g := NewPromptGenerator(NewClient(srv.URL, "qwen3"))
	assert.Equal(t, "blue hour drift", g.GenerateName(context.Background(), "jazz", "slow jazz"))
}

func TestGenerateNameRejectsLong(t *testing.T) {
	srv := fakeOllama(t, "this name has far too many words to be a title", http.StatusOK)
	g := NewPromptGenerator(NewClient(srv.URL, "qwen3"))
	assert.Empty(t, g.GenerateName(context.Background(), "jazz", "slow jazz"))
}

func TestCleanOutput(t *testing.T) {
	tests := map[string]string{
		`"quoted"`:              "quoted",
		"Description: calm sea": "calm sea",
		"<think>x</think> done": "done",
		"  plain  ":             "plain",
	}
	for in, want := range tests {
		assert.Equal(t, want, cleanOutput(in), in)
	}
}
