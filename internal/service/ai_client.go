package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"text-adventure/internal/config"

	"github.com/ollama/ollama/api"
	"github.com/pkoukk/tiktoken-go"
	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// GenerationParams are optional sampling settings. Nil means the endpoint default.
type GenerationParams struct {
	Temperature *float64
	MaxTokens   *int
	TopP        *float64
}

// UsageInfo reports token counts of one request.
type UsageInfo struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	// Estimated is set when the endpoint did not report usage and the counts were computed locally.
	Estimated bool
}

// ErrAIGenerationFailed marks a failed request to the narrative endpoint.
var ErrAIGenerationFailed = errors.New("ai text generation failed")

// AIClient talks to a chat-completion endpoint.
type AIClient interface {
	GenerateText(ctx context.Context, systemPrompt string, userInput string, params GenerationParams) (string, UsageInfo, error)
}

// NewAIClient builds the client selected by cfg.AIClientType.
func NewAIClient(cfg *config.Config, logger *zap.Logger) (AIClient, error) {
	log := logger.Named("AIClient")
	switch strings.ToLower(cfg.AIClientType) {
	case config.AIClientOpenAI:
		openaiConfig := openaigo.DefaultConfig(cfg.AIAPIKey)
		openaiConfig.BaseURL = cfg.AIBaseURL
		openaiConfig.HTTPClient = &http.Client{Timeout: cfg.AITimeout}
		log.Info("OpenAI-compatible client created",
			zap.String("baseURL", cfg.AIBaseURL),
			zap.String("model", cfg.AIModel),
			zap.Duration("timeout", cfg.AITimeout),
		)
		return &openAIClient{
			client: openaigo.NewClientWithConfig(openaiConfig),
			model:  cfg.AIModel,
			logger: log,
		}, nil
	case config.AIClientOllama:
		return newOllamaClient(cfg, log)
	default:
		return nil, fmt.Errorf("unknown AI client type: '%s'", cfg.AIClientType)
	}
}

// --- OpenAI-compatible client (LM Studio, OpenAI, vLLM, ...) ---

type openAIClient struct {
	client *openaigo.Client
	model  string
	logger *zap.Logger
}

func (c *openAIClient) GenerateText(ctx context.Context, systemPrompt string, userInput string, params GenerationParams) (string, UsageInfo, error) {
	usage := UsageInfo{}
	if strings.TrimSpace(systemPrompt) == "" && strings.TrimSpace(userInput) == "" {
		aiRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return "", usage, fmt.Errorf("%w: empty prompt", ErrAIGenerationFailed)
	}

	messages := make([]openaigo.ChatCompletionMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, openaigo.ChatCompletionMessage{Role: openaigo.ChatMessageRoleSystem, Content: systemPrompt})
	}
	if userInput != "" {
		messages = append(messages, openaigo.ChatCompletionMessage{Role: openaigo.ChatMessageRoleUser, Content: userInput})
	}

	start := time.Now()
	c.logger.Debug("Sending chat completion request",
		zap.String("model", c.model),
		zap.Int("systemPromptBytes", len(systemPrompt)),
		zap.Int("userInputBytes", len(userInput)),
	)
	resp, err := c.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: float32Val(params.Temperature),
		MaxTokens:   intVal(params.MaxTokens),
		TopP:        float32Val(params.TopP),
	})
	duration := time.Since(start)

	if err != nil {
		c.logger.Warn("Chat completion request failed", zap.Duration("duration", duration), zap.Error(err))
		aiRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return "", usage, fmt.Errorf("%w: %v", ErrAIGenerationFailed, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		c.logger.Warn("Chat completion returned no content", zap.Duration("duration", duration))
		aiRequestsTotal.WithLabelValues(c.model, "error_empty_response").Inc()
		return "", usage, fmt.Errorf("%w: empty response", ErrAIGenerationFailed)
	}

	text := resp.Choices[0].Message.Content
	aiRequestsTotal.WithLabelValues(c.model, "success").Inc()
	aiRequestDuration.WithLabelValues(c.model).Observe(duration.Seconds())

	if resp.Usage.TotalTokens > 0 {
		usage = UsageInfo{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	} else {
		usage = estimateUsage(c.model, systemPrompt+userInput, text)
	}
	observeUsage(c.model, usage)

	c.logger.Debug("Chat completion received",
		zap.Duration("duration", duration),
		zap.Int("responseBytes", len(text)),
		zap.Int("promptTokens", usage.PromptTokens),
		zap.Int("completionTokens", usage.CompletionTokens),
		zap.Bool("estimated", usage.Estimated),
	)
	return text, usage, nil
}

func float32Val(f *float64) float32 {
	if f == nil {
		return 0
	}
	return float32(*f)
}

func intVal(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}

// --- Ollama client ---

type ollamaClient struct {
	client  *api.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

func newOllamaClient(cfg *config.Config, logger *zap.Logger) (AIClient, error) {
	// api.NewClient wants the server root, not the OpenAI-compatible /v1 prefix
	baseURL := strings.TrimSuffix(strings.TrimSuffix(cfg.AIBaseURL, "/"), "/v1")
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama base URL '%s': %w", baseURL, err)
	}
	client := api.NewClient(parsed, &http.Client{Timeout: cfg.AITimeout})
	logger.Info("Ollama client created",
		zap.String("baseURL", baseURL),
		zap.String("model", cfg.AIModel),
		zap.Duration("timeout", cfg.AITimeout),
	)
	return &ollamaClient{client: client, model: cfg.AIModel, timeout: cfg.AITimeout, logger: logger}, nil
}

func (c *ollamaClient) GenerateText(ctx context.Context, systemPrompt string, userInput string, params GenerationParams) (string, UsageInfo, error) {
	usage := UsageInfo{}
	if strings.TrimSpace(systemPrompt) == "" && strings.TrimSpace(userInput) == "" {
		aiRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return "", usage, fmt.Errorf("%w: empty prompt", ErrAIGenerationFailed)
	}

	messages := make([]api.Message, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, api.Message{Role: "system", Content: systemPrompt})
	}
	if userInput != "" {
		messages = append(messages, api.Message{Role: "user", Content: userInput})
	}

	options := map[string]interface{}{}
	if params.Temperature != nil {
		options["temperature"] = *params.Temperature
	}
	if params.TopP != nil {
		options["top_p"] = *params.TopP
	}
	if params.MaxTokens != nil {
		options["num_predict"] = *params.MaxTokens
	}
	stream := false
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   &stream,
		Options:  options,
	}

	requestCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	var resp api.ChatResponse
	err := c.client.Chat(requestCtx, req, func(r api.ChatResponse) error {
		resp = r
		return nil
	})
	duration := time.Since(start)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.logger.Warn("Ollama request timed out", zap.Duration("timeout", c.timeout), zap.Error(err))
		} else {
			c.logger.Warn("Ollama request failed", zap.Duration("duration", duration), zap.Error(err))
		}
		aiRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return "", usage, fmt.Errorf("%w: %v", ErrAIGenerationFailed, err)
	}
	if resp.Message.Content == "" {
		c.logger.Warn("Ollama returned no content", zap.Duration("duration", duration))
		aiRequestsTotal.WithLabelValues(c.model, "error_empty_response").Inc()
		return "", usage, fmt.Errorf("%w: empty response", ErrAIGenerationFailed)
	}

	text := resp.Message.Content
	aiRequestsTotal.WithLabelValues(c.model, "success").Inc()
	aiRequestDuration.WithLabelValues(c.model).Observe(duration.Seconds())

	if resp.PromptEvalCount > 0 || resp.EvalCount > 0 {
		usage = UsageInfo{
			PromptTokens:     resp.PromptEvalCount,
			CompletionTokens: resp.EvalCount,
			TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
		}
	} else {
		usage = estimateUsage(c.model, systemPrompt+userInput, text)
	}
	observeUsage(c.model, usage)

	c.logger.Debug("Ollama response received",
		zap.Duration("duration", duration),
		zap.Int("responseBytes", len(text)),
		zap.Int("promptTokens", usage.PromptTokens),
		zap.Int("completionTokens", usage.CompletionTokens),
	)
	return text, usage, nil
}

// --- Token accounting ---

// fallbackEncoding is used for local models tiktoken does not know by name.
const fallbackEncoding = "cl100k_base"

var (
	encodingMu    sync.Mutex
	encodingCache = map[string]*tiktoken.Tiktoken{}
)

func encodingFor(model string) (*tiktoken.Tiktoken, error) {
	encodingMu.Lock()
	defer encodingMu.Unlock()
	if tke, ok := encodingCache[model]; ok {
		return tke, nil
	}
	tke, err := tiktoken.EncodingForModel(model)
	if err != nil {
		tke, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return nil, err
		}
	}
	encodingCache[model] = tke
	return tke, nil
}

// estimateUsage counts tokens locally. It returns zero usage when no encoding can be loaded.
func estimateUsage(model, prompt, completion string) UsageInfo {
	tke, err := encodingFor(model)
	if err != nil {
		return UsageInfo{}
	}
	p := len(tke.Encode(prompt, nil, nil))
	c := len(tke.Encode(completion, nil, nil))
	return UsageInfo{PromptTokens: p, CompletionTokens: c, TotalTokens: p + c, Estimated: true}
}

func observeUsage(model string, usage UsageInfo) {
	if usage.TotalTokens == 0 {
		return
	}
	aiPromptTokens.WithLabelValues(model).Observe(float64(usage.PromptTokens))
	aiCompletionTokens.WithLabelValues(model).Observe(float64(usage.CompletionTokens))
}
