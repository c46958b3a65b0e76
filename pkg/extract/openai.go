package extract

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sashabaranov/go-openai"

	"github.com/matzehuels/lineage/pkg/cache"
	"github.com/matzehuels/lineage/pkg/family"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gpt-4o-mini"

const requestTimeout = 60 * time.Second

// Config configures the OpenAI client.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string // empty for api.openai.com; set for compatible servers

	// Retry runs each request. Defaults to cache.RetryWithBackoff.
	Retry func(context.Context, func() error) error

	Logger *log.Logger
}

// OpenAI extracts people through the chat completion API.
type OpenAI struct {
	client *openai.Client
	model  string
	retry  func(context.Context, func() error) error
	logger *log.Logger
}

// NewOpenAI creates a client. Requests go through an instrumented
// transport that reports to the observability HTTP hooks.
func NewOpenAI(cfg Config) *OpenAI {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	oc.HTTPClient = &http.Client{
		Timeout:   requestTimeout,
		Transport: NewTransport(nil),
	}

	o := &OpenAI{
		client: openai.NewClientWithConfig(oc),
		model:  cfg.Model,
		retry:  cfg.Retry,
		logger: cfg.Logger,
	}
	if o.model == "" {
		o.model = DefaultModel
	}
	if o.retry == nil {
		o.retry = cache.RetryWithBackoff
	}
	if o.logger == nil {
		o.logger = log.Default()
	}
	return o
}

// Model returns the configured model name.
func (o *OpenAI) Model() string { return o.model }

// Extract implements Extractor.
func (o *OpenAI) Extract(ctx context.Context, text string) (*family.Partial, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrNotExtracted
	}
	content, err := o.complete(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractInstructions},
			{Role: openai.ChatMessageRoleUser, Content: extractPrompt(text)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, err
	}
	return parseReply(content)
}

// Biography implements Extractor.
func (o *OpenAI) Biography(ctx context.Context, p family.Person) (string, error) {
	content, err := o.complete(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: biographyPrompt(p)},
		},
	})
	if err != nil {
		return "", err
	}
	bio := strings.TrimSpace(content)
	if bio == "" {
		return "", ErrNoBiography
	}
	return bio, nil
}

func (o *OpenAI) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	var content string
	err := o.retry(ctx, func() error {
		resp, err := o.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return classify(err)
		}
		if len(resp.Choices) == 0 {
			content = ""
			return nil
		}
		o.logger.Debug("completion received", "model", o.model, "finish_reason", resp.Choices[0].FinishReason)
		content = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		o.logger.Debug("completion failed", "model", o.model, "err", err)
		return "", unavailable(err)
	}
	return content, nil
}

// classify marks rate limiting, server errors and transport failures as
// retryable.
func classify(err error) error {
	var apiErr *openai.APIError
	if stderrors.As(err, &apiErr) {
		if retryableStatus(apiErr.HTTPStatusCode) {
			return cache.Retryable(err)
		}
		return err
	}
	var reqErr *openai.RequestError
	if stderrors.As(err, &reqErr) {
		if retryableStatus(reqErr.HTTPStatusCode) {
			return cache.Retryable(err)
		}
		return err
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return cache.Retryable(err)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

var _ Extractor = (*OpenAI)(nil)
