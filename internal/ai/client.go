package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client talks to the content drafting service
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// StepDraft is one generated checklist entry, in display order
type StepDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type WelcomeContent struct {
	WelcomeMessage string      `json:"welcome_message"`
	NextSteps      []StepDraft `json:"next_steps"`
}

type generateRequest struct {
	SOWText string `json:"sow_text"`
}

type extractRequest struct {
	FileName string `json:"file_name"`
	Content  []byte `json:"content"`
}

type extractResponse struct {
	Text string `json:"text"`
}

// GenerateWelcomeContent asks the drafting service for a welcome message and
// an ordered checklist based on the statement of work text
func (c *Client) GenerateWelcomeContent(ctx context.Context, sowText string) (*WelcomeContent, error) {
	if sowText == "" {
		return nil, fmt.Errorf("sow text is empty")
	}

	var out WelcomeContent
	if err := c.post(ctx, "/v1/welcome-content", generateRequest{SOWText: sowText}, &out); err != nil {
		return nil, err
	}
	if out.WelcomeMessage == "" {
		return nil, fmt.Errorf("drafting service returned empty welcome message")
	}
	return &out, nil
}

// ExtractText converts an uploaded document to plain text for generation input
func (c *Client) ExtractText(ctx context.Context, fileName string, content []byte) (string, error) {
	var out extractResponse
	if err := c.post(ctx, "/v1/extract-text", extractRequest{FileName: fileName, Content: content}, &out); err != nil {
		return "", err
	}
	return out.Text, nil
}

func (c *Client) post(ctx context.Context, path string, in, out interface{}) error {
	b, _ := json.Marshal(in)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("drafting request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("drafting call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("drafting service error (status %d)", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("drafting decode: %w", err)
	}
	return nil
}
