package adapters

import (
	"github.com/gage-technologies/mistral-go"
)

type LlmAdapter struct {
	Client *mistral.MistralClient
	apiKey string
	Model  string
}

func NewLlmAdapter(apiKey string, model string) *LlmAdapter {
	adapter := &LlmAdapter{apiKey: apiKey, Model: model}
	adapter.Client = mistral.NewMistralClientDefault(apiKey)
	return adapter
}
