package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Generator produces free text from a prompt. A failure aborts the
// answer request; there is no meaningful fallback for free text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Options carries the sampling configuration sent with every
// generation request.
type Options struct {
	Temperature   float64
	TopK          int
	TopP          float64
	RepeatPenalty float64
	NumCtx        int
	NumPredict    int
}

// DefaultOptions are conservative settings for grounded answers.
func DefaultOptions() Options {
	return Options{
		Temperature:   0.2,
		TopK:          40,
		TopP:          0.9,
		RepeatPenalty: 1.1,
		NumCtx:        8192,
		NumPredict:    1024,
	}
}

// Ollama calls the Ollama /api/generate endpoint.
type Ollama struct {
	baseURL string
	model   string
	opts    Options
	client  *http.Client
}

// NewOllama creates a generation client targeting the given Ollama
// instance and model.
func NewOllama(baseURL, model string, opts Options, timeout time.Duration) *Ollama {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Ollama{
		baseURL: baseURL,
		model:   model,
		opts:    opts,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *Ollama) Model() string { return c.model }

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature   float64 `json:"temperature"`
	TopK          int     `json:"top_k"`
	TopP          float64 `json:"top_p"`
	RepeatPenalty float64 `json:"repeat_penalty"`
	NumCtx        int     `json:"num_ctx"`
	NumPredict    int     `json:"num_predict"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate sends the prompt to Ollama and returns the response text.
func (c *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature:   c.opts.Temperature,
			TopK:          c.opts.TopK,
			TopP:          c.opts.TopP,
			RepeatPenalty: c.opts.RepeatPenalty,
			NumCtx:        c.opts.NumCtx,
			NumPredict:    c.opts.NumPredict,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama generate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama generate returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}
	return result.Response, nil
}
