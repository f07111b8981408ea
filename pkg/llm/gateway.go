package llm

import (
	"context"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultModel is used when no generation model is configured.
	DefaultModel = "claude-sonnet-4-20250514"
	// DefaultMaxTokens bounds each response.
	DefaultMaxTokens = 4096
	// DefaultTimeout bounds each request.
	DefaultTimeout = 120 * time.Second
)

// Gateway sends a prompt to a text-generation service and returns raw text.
type Gateway interface {
	Complete(ctx context.Context, prompt string) (text string, err error)
}

// GatewayOptions configures a ClaudeGateway.
type GatewayOptions struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
	Timeout   time.Duration
	Logger    *logrus.Logger
}

// ClaudeGateway is a Gateway backed by the Anthropic messages API.
type ClaudeGateway struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	logger    *logrus.Logger
}

// NewClaudeGateway creates a gateway. Automatic retries are disabled; a
// failed call surfaces to the caller.
func NewClaudeGateway(opts GatewayOptions) (gateway *ClaudeGateway) {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	requestOptions := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(opts.Timeout),
	}
	if opts.BaseURL != "" {
		requestOptions = append(requestOptions, option.WithBaseURL(opts.BaseURL))
	}

	gateway = &ClaudeGateway{
		client:    anthropic.NewClient(requestOptions...),
		model:     opts.Model,
		maxTokens: int64(opts.MaxTokens),
		logger:    opts.Logger,
	}
	return gateway
}

// Model returns the configured model name.
func (g *ClaudeGateway) Model() (model string) {
	model = g.model
	return model
}

// Complete sends a single user message and returns the concatenated text blocks.
func (g *ClaudeGateway) Complete(ctx context.Context, prompt string) (text string, err error) {
	startTime := time.Now()

	var response *anthropic.Message
	response, err = g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: g.maxTokens,
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: prompt},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})
	if err != nil {
		err = &ModelError{Op: "messages", Cause: err}
		return text, err
	}

	var builder strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			builder.WriteString(block.Text)
		}
	}
	text = builder.String()

	if strings.TrimSpace(text) == "" {
		err = &ModelError{Op: "messages", Cause: errors.New("response contained no text content")}
		return text, err
	}

	fields := logrus.Fields{
		"model":           g.model,
		"prompt_length":   len(prompt),
		"response_length": len(text),
		"stop_reason":     string(response.StopReason),
		"duration":        time.Since(startTime),
	}
	if response.StopReason == anthropic.StopReasonMaxTokens {
		g.logger.WithFields(fields).Warn("Model response truncated at max tokens")
	} else {
		g.logger.WithFields(fields).Debug("Model response received")
	}

	return text, err
}
