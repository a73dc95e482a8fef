package openai

import (
	"context"
	"fmt"

	"github.com/mikey/linkedin-prioritizer/internal/core"
	"github.com/mikey/linkedin-prioritizer/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClient is an implementation of core.PriorityClient using OpenAI
type OpenAIClient struct {
	client         *openai.Client
	modelName      string
	maxTokens      int
	temperature    float32
	topP           float32
	maxPreviewSize int
	logger         *zap.Logger
	textProcessor  *utils.TextProcessor
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(
	client *openai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxPreviewSize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *OpenAIClient {
	return &OpenAIClient{
		client:         client,
		modelName:      modelName,
		maxTokens:      maxTokens,
		temperature:    temperature,
		topP:           topP,
		maxPreviewSize: maxPreviewSize,
		logger:         logger,
		textProcessor:  textProcessor,
	}
}

// CheckPriority asks the model whether a preview is high priority
func (c *OpenAIClient) CheckPriority(ctx context.Context, req core.PriorityRequest) (*core.PriorityResponse, error) {
	req.PreviewText = c.textProcessor.ProcessText(req.PreviewText, c.maxPreviewSize)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: utils.PrioritySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: utils.PriorityPrompt(req)},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	c.logger.Debug("OpenAI response received",
		zap.String("id", resp.ID),
		zap.Int("total_tokens", resp.Usage.TotalTokens))
	return utils.ParsePriorityResponse(resp.Choices[0].Message.Content)
}
