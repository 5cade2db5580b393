package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JNZader/gitcritic/internal/config"
	"github.com/JNZader/gitcritic/internal/logger"
	"github.com/JNZader/gitcritic/internal/tokenizer"
)

// OpenAIProvider implements Provider using the OpenAI chat completions API.
type OpenAIProvider struct {
	apiKey  string
	baseURL string
	review  ReviewConfig
	client  *http.Client
	log     *logger.Logger
}

// NewOpenAIProvider creates a new OpenAI provider. The credential is taken
// from cfg; the provider never reads the environment itself. A missing key
// is only reported by Review, so runs that never reach the endpoint do not
// need one.
func NewOpenAIProvider(cfg *config.Config) (*OpenAIProvider, error) {
	baseURL := cfg.Provider.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultBaseURL
	}
	if u, err := url.Parse(baseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: must be an absolute http(s) URL", baseURL)
	}

	return &OpenAIProvider{
		apiKey:  cfg.Provider.APIKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		review: ReviewConfig{
			Model:       cfg.Provider.Model,
			Instruction: cfg.Review.Instruction,
			JSONSchema:  cfg.Review.JSONSchema,
		},
		client: &http.Client{Timeout: cfg.Provider.Timeout},
		log:    logger.Default().WithPrefix("OPENAI"),
	}, nil
}

func (p *OpenAIProvider) Name() string { return "openai" }

// ReviewConfig returns the configuration requests are built from.
func (p *OpenAIProvider) ReviewConfig() ReviewConfig { return p.review }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

type errorEnvelope struct {
	Error *struct {
		Message string      `json:"message"`
		Type    string      `json:"type"`
		Code    interface{} `json:"code"`
	} `json:"error"`
}

// Review sends a single request and returns the first choice's content.
func (p *OpenAIProvider) Review(ctx context.Context, diff string) (string, error) {
	if p.apiKey == "" {
		return "", fmt.Errorf("%w: %w: set %s", ErrReviewRequest, ErrMissingAPIKey, config.APIKeyEnv)
	}
	if err := ValidateDiff(diff); err != nil {
		return "", fmt.Errorf("%w: %w", ErrReviewRequest, err)
	}

	start := time.Now()
	prompt := BuildPrompt(diff, p.review)

	// Oversized prompts are still sent; the endpoint has the final word.
	if budget := tokenizer.Check(p.review.Model, prompt); !budget.Fits() {
		p.log.Warn("prompt is ~%d tokens, above the ~%d available for %s",
			budget.Estimated, budget.Limit, budget.Model)
	}

	body, err := json.Marshal(chatRequest{
		Model:    p.review.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf(ErrMarshalRequest, err)
	}

	url := p.baseURL + ChatCompletionsPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf(ErrCreateRequest, err)
	}
	httpReq.Header.Set("Content-Type", ContentTypeJSON)
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	p.log.WithField("model", p.review.Model).Debug("POST %s (%d bytes)", url, len(body))

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReviewRequest, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", newAPIError(resp)
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: "+ErrDecodeResponse, ErrReviewRequest, err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("%w: response contained no choices", ErrReviewRequest)
	}

	p.log.WithFields(map[string]interface{}{
		"tokens":  result.Usage.TotalTokens,
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Debug("review received")

	return result.Choices[0].Message.Content, nil
}

// newAPIError keeps the raw body and, when it is an OpenAI error envelope,
// its structured fields.
func newAPIError(resp *http.Response) *APIError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(raw)),
	}

	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != nil {
		apiErr.Message = env.Error.Message
		apiErr.Type = env.Error.Type
		if env.Error.Code != nil {
			apiErr.Code = fmt.Sprint(env.Error.Code)
		}
	}
	return apiErr
}
