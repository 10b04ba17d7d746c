package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"text-adventure/internal/config"
	"text-adventure/internal/mocks"
	"text-adventure/internal/model"
	"text-adventure/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testPrompt = "你是一名名为阿明的战士，请描述当前场景。"

func TestNarrator_Generate_Success(t *testing.T) {
	mockAI := mocks.NewMockAIClient(t)
	mockAI.On("GenerateText", mock.Anything, mock.AnythingOfType("string"), testPrompt, mock.Anything).
		Return("<think>推理</think>\n你来到了村口。", service.UsageInfo{}, nil).Once()

	n := service.NewNarratorWithPolicy(mockAI, service.RetryPolicy{MaxAttempts: 3}, zap.NewNop())
	text, err := n.Generate(context.Background(), testPrompt)

	require.NoError(t, err)
	assert.Equal(t, "你来到了村口。", text)
}

func TestNarrator_Generate_RetriesThenSucceeds(t *testing.T) {
	mockAI := mocks.NewMockAIClient(t)
	mockAI.On("GenerateText", mock.Anything, mock.Anything, testPrompt, mock.Anything).
		Return("", service.UsageInfo{}, service.ErrAIGenerationFailed).Once()
	mockAI.On("GenerateText", mock.Anything, mock.Anything, testPrompt, mock.Anything).
		Return("  <think>只有推理</think>  ", service.UsageInfo{}, nil).Once()
	mockAI.On("GenerateText", mock.Anything, mock.Anything, testPrompt, mock.Anything).
		Return("风吹过草地。", service.UsageInfo{}, nil).Once()

	n := service.NewNarratorWithPolicy(mockAI, service.RetryPolicy{MaxAttempts: 3, Delay: time.Millisecond}, zap.NewNop())
	text, err := n.Generate(context.Background(), testPrompt)

	require.NoError(t, err)
	assert.Equal(t, "风吹过草地。", text)
	mockAI.AssertNumberOfCalls(t, "GenerateText", 3)
}

func TestNarrator_Generate_ExhaustsAttempts(t *testing.T) {
	mockAI := mocks.NewMockAIClient(t)
	mockAI.On("GenerateText", mock.Anything, mock.Anything, testPrompt, mock.Anything).
		Return("", service.UsageInfo{}, errors.New("connection refused")).Times(3)

	n := service.NewNarratorWithPolicy(mockAI, service.RetryPolicy{MaxAttempts: 3, Delay: time.Millisecond}, zap.NewNop())
	text, err := n.Generate(context.Background(), testPrompt)

	assert.Empty(t, text)
	assert.ErrorIs(t, err, model.ErrNoResponse)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestNarrator_Generate_ContextCancelledBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mockAI := mocks.NewMockAIClient(t)
	mockAI.On("GenerateText", mock.Anything, mock.Anything, testPrompt, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return("", service.UsageInfo{}, errors.New("timeout")).Once()

	n := service.NewNarratorWithPolicy(mockAI, service.RetryPolicy{MaxAttempts: 3, Delay: time.Hour}, zap.NewNop())
	_, err := n.Generate(ctx, testPrompt)

	assert.ErrorIs(t, err, model.ErrNoResponse)
	assert.Contains(t, err.Error(), context.Canceled.Error())
}

func TestNewNarrator_UsesConfig(t *testing.T) {
	cfg := &config.Config{AIMaxAttempts: 2, AIRetryDelay: time.Millisecond, AITemperature: 0.5}
	mockAI := mocks.NewMockAIClient(t)
	mockAI.On("GenerateText", mock.Anything, mock.Anything, testPrompt, mock.MatchedBy(func(p service.GenerationParams) bool {
		return p.Temperature != nil && *p.Temperature == 0.5
	})).Return("", service.UsageInfo{}, errors.New("down")).Times(2)

	n := service.NewNarrator(mockAI, cfg, zap.NewNop())
	_, err := n.Generate(context.Background(), testPrompt)

	assert.ErrorIs(t, err, model.ErrNoResponse)
}
