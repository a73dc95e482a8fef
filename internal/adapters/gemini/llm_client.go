package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/linkedin-prioritizer/internal/core"
	"github.com/mikey/linkedin-prioritizer/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiClient is an implementation of core.PriorityClient using Google Gemini
type GeminiClient struct {
	client         *genai.Client
	model          *genai.GenerativeModel
	modelName      string
	maxPreviewSize int
	logger         *zap.Logger
	textProcessor  *utils.TextProcessor
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(
	ctx context.Context,
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxPreviewSize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = genai.NewUserContent(genai.Text(utils.PrioritySystemPrompt))

	return &GeminiClient{
		client:         client,
		model:          model,
		modelName:      modelName,
		maxPreviewSize: maxPreviewSize,
		logger:         logger,
		textProcessor:  textProcessor,
	}, nil
}

// Close closes the Gemini client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// CheckPriority asks the model whether a preview is high priority
func (c *GeminiClient) CheckPriority(ctx context.Context, req core.PriorityRequest) (*core.PriorityResponse, error) {
	req.PreviewText = c.textProcessor.ProcessText(req.PreviewText, c.maxPreviewSize)

	resp, err := c.model.GenerateContent(ctx, genai.Text(utils.PriorityPrompt(req)))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}
	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Gemini response received", zap.String("model", c.modelName))
	return utils.ParsePriorityResponse(text)
}

// responseText joins the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from Gemini")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	return text.String(), nil
}
