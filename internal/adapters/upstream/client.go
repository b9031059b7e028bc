package upstream

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/viralforge/prompt-gateway/internal/domain"
	"github.com/viralforge/prompt-gateway/internal/ports"
)

// Client streams chat completions from an Ollama-compatible model server.
// The upstream speaks newline-delimited JSON; each line carries a message
// fragment and a done marker.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	// The timeout bounds connecting and waiting for response headers only.
	// A total-exchange timeout would abort a healthy generation that simply
	// takes longer than the limit; once the stream is open, cancellation is
	// the request context's job.
	transport := &http.Transport{
		DialContext:           (&net.Dialer{Timeout: cfg.Timeout}).DialContext,
		TLSHandshakeTimeout:   cfg.Timeout,
		ResponseHeaderTimeout: cfg.Timeout,
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Transport: transport},
	}
}

type chatPayload struct {
	Model    string          `json:"model"`
	Messages []ports.Message `json:"messages"`
	Stream   bool            `json:"stream"`
}

type chatChunk struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

// Stream opens the upstream call and relays fragments as they arrive.
// Non-2xx and transport failures before the first byte surface as
// domain.ErrUpstreamUnavailable; a break mid-stream is delivered as a final
// chunk carrying the same error. Malformed lines are skipped, not fatal.
func (c *Client) Stream(ctx context.Context, messages []ports.Message) (<-chan ports.Chunk, error) {
	body, err := json.Marshal(chatPayload{
		Model:    c.model,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("encode chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrUpstreamUnavailable, resp.StatusCode, string(detail))
	}

	out := make(chan ports.Chunk)
	go c.consume(ctx, resp.Body, out)
	return out, nil
}

func (c *Client) consume(ctx context.Context, body io.ReadCloser, out chan<- ports.Chunk) {
	defer close(out)
	defer func() { _ = body.Close() }()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var chunk chatChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			continue
		}
		if chunk.Message.Content != "" {
			select {
			case out <- ports.Chunk{Content: chunk.Message.Content}:
			case <-ctx.Done():
				return
			}
		}
		if chunk.Done {
			return
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		select {
		case out <- ports.Chunk{Err: fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)}:
		case <-ctx.Done():
		}
		return
	}
	if ctx.Err() != nil {
		return
	}
	// EOF without a done marker counts as a truncated stream
	select {
	case out <- ports.Chunk{Err: fmt.Errorf("%w: stream ended before completion", domain.ErrUpstreamUnavailable)}:
	case <-ctx.Done():
	}
}
