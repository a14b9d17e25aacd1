package repo

import (
	"fmt"

	"github.com/gage-technologies/mistral-go"
	"go.uber.org/zap"

	"goban/internal/adapters"
)

type LlmRepo struct {
	adapter *adapters.LlmAdapter
	log     *zap.SugaredLogger
}

func NewLlmRepository(adapter *adapters.LlmAdapter, log *zap.SugaredLogger) *LlmRepo {
	return &LlmRepo{adapter: adapter, log: log}
}

func (l *LlmRepo) SendRequestToLlm(request string) (response string, err error) {
	params := mistral.DefaultChatRequestParams
	res, err := l.adapter.Client.Chat(l.adapter.Model, []mistral.ChatMessage{{Content: request, Role: mistral.RoleUser}}, &params)
	if err != nil {
		l.log.Errorf("send request to llm error: %v", err)
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("llm returned no choices")
	}
	return fmt.Sprintf("%v", res.Choices[0].Message.Content), nil
}
