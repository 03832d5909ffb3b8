package routes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"staffhub/internal/services"
	"staffhub/pkg/config"
)

func TestNewDispatcher(t *testing.T) {
	logger := zap.NewNop()

	_, isLog := newDispatcher(config.TelegramConfig{}, logger).(*services.LogDispatcher)
	assert.True(t, isLog, "без токена бота - только журнал")

	_, isRouted := newDispatcher(config.TelegramConfig{BotToken: "123:abc"}, logger).(*services.ChannelDispatcher)
	assert.True(t, isRouted)
}
