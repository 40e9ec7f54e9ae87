package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultTimeout = 120 * time.Second
)

// Turn roles accepted by the API.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

var (
	ErrNoCandidates = errors.New("no candidates in response")
	ErrEmptyContent = errors.New("empty response content")
)

type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	// BaseURL overrides DefaultBaseURL.
	BaseURL string
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// Client calls the generateContent endpoint of the Generative Language API.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// Turn is one message of a multi-turn conversation.
type Turn struct {
	Role string
	Text string
}

type blob struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string `json:"text,omitempty"`
	InlineData *blob  `json:"inline_data,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type request struct {
	Contents []content `json:"contents"`
}

type response struct {
	Candidates []struct {
		Content      *content `json:"content"`
		FinishReason string   `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini: api key required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("gemini: model required")
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		apiKey:  cfg.APIKey,
		model:   modelName(cfg.Model),
		baseURL: base,
		client:  hc,
	}, nil
}

// Model returns the fully qualified model name requests are sent to.
func (c *Client) Model() string {
	return c.model
}

// Generate sends a single text prompt and returns the reply text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, []content{
		{Role: RoleUser, Parts: []part{{Text: prompt}}},
	})
}

// Transcribe sends the prompt together with the audio as inline data.
func (c *Client) Transcribe(ctx context.Context, prompt string, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", errors.New("gemini transcribe: empty audio")
	}
	return c.generate(ctx, []content{
		{
			Role: RoleUser,
			Parts: []part{
				{Text: prompt},
				{InlineData: &blob{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(audio),
				}},
			},
		},
	})
}

// Chat sends the whole conversation and returns the model's next turn.
func (c *Client) Chat(ctx context.Context, turns []Turn) (string, error) {
	if len(turns) == 0 {
		return "", errors.New("gemini chat: no turns")
	}
	contents := make([]content, 0, len(turns))
	for _, t := range turns {
		contents = append(contents, content{
			Role:  t.Role,
			Parts: []part{{Text: t.Text}},
		})
	}
	return c.generate(ctx, contents)
}

func (c *Client) generate(ctx context.Context, contents []content) (string, error) {
	body, err := json.Marshal(request{Contents: contents})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := c.baseURL + "/" + c.model + ":generateContent"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	if err := googleapi.CheckResponse(resp); err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("api error %d: %w", apiErr.Code, err)
		}
		return "", fmt.Errorf("api error %d: %w", resp.StatusCode, err)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	var apiResp response
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if len(apiResp.Candidates) == 0 {
		if apiResp.PromptFeedback != nil && apiResp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("%w (block_reason=%q)", ErrNoCandidates, apiResp.PromptFeedback.BlockReason)
		}
		return "", ErrNoCandidates
	}
	cand := apiResp.Candidates[0]
	if cand.Content == nil || len(cand.Content.Parts) == 0 || cand.Content.Parts[0].Text == "" {
		return "", fmt.Errorf("%w (finish_reason=%q)", ErrEmptyContent, cand.FinishReason)
	}
	return cand.Content.Parts[0].Text, nil
}

func modelName(model string) string {
	model = strings.TrimSpace(model)
	if strings.HasPrefix(model, "models/") || strings.HasPrefix(model, "tunedModels/") {
		return model
	}
	return "models/" + model
}
