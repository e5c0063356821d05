package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.NotEmpty(t, cfg.Models[TierLite])
	assert.NotEmpty(t, cfg.Models[TierStandard])
}

func TestGetModel_FallbackChain(t *testing.T) {
	cfg := &Config{Models: map[ModelTier]string{TierStandard: "standard-model"}}
	assert.Equal(t, "standard-model", cfg.GetModel(TierLite))

	cfg = &Config{Models: map[ModelTier]string{TierLite: "lite-model"}}
	assert.Equal(t, "lite-model", cfg.GetModel(TierStandard))

	cfg = &Config{Models: map[ModelTier]string{}}
	assert.Empty(t, cfg.GetModel(TierLite))
}

func TestWithModel_DoesNotMutateOriginal(t *testing.T) {
	original := DefaultConfig()
	originalLite := original.Models[TierLite]

	modified := original.WithModel(TierLite, "custom-model")

	assert.Equal(t, "custom-model", modified.GetModel(TierLite))
	assert.Equal(t, originalLite, original.GetModel(TierLite))
}

func TestNewGeminiClient_RequiresAPIKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), DefaultConfig(), "")
	assert.Error(t, err)
}
