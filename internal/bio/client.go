package bio

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/biofolio/backend/usecase/bio"
)

// Config holds the settings of the outbound text-generation call.
type Config struct {
	URL     string
	APIKey  string
	Model   string
	Timeout time.Duration
	// MaxChars goes into the prompt as an instruction; the response length is
	// not enforced.
	MaxChars int
}

// Client calls an OpenAI-compatible chat-completions endpoint over fasthttp.
type Client struct {
	cfg    Config
	client *fasthttp.Client
}

// NewClient builds a text-generation client. The returned client satisfies
// the bio.Generator port.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = 250
	}
	return &Client{
		cfg: cfg,
		client: &fasthttp.Client{
			ReadTimeout:  cfg.Timeout,
			WriteTimeout: cfg.Timeout,
		},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate requests a short biography for the given name and interests.
func (c *Client) Generate(ctx context.Context, name, interests string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	payload, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "user", Content: c.prompt(name, interests)},
		},
	})
	if err != nil {
		return "", err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.cfg.URL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	req.SetBody(payload)

	timeout := c.timeout(ctx)
	if err := c.client.DoTimeout(req, resp, timeout); err != nil {
		return "", err
	}
	if code := resp.StatusCode(); code != fasthttp.StatusOK {
		return "", fmt.Errorf("text generation API returned status %d", code)
	}

	var parsed chatResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", nil
	}
	return parsed.Choices[0].Message.Content, nil
}

func (c *Client) prompt(name, interests string) string {
	return fmt.Sprintf(
		"Write a short, friendly biography (maximum %d characters) for a person named %s whose interests are: %s. Respond with the biography only.",
		c.cfg.MaxChars, name, interests,
	)
}

func (c *Client) timeout(ctx context.Context) time.Duration {
	timeout := c.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 && remaining < timeout {
			timeout = remaining
		}
	}
	return timeout
}

var _ bio.Generator = (*Client)(nil)
