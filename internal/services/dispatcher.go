package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"staffhub/internal/entities"
	"staffhub/pkg/telegram"
)

// Dispatcher передаёт сообщение во внешний канал. Подтверждение доставки и
// повторные попытки не поддерживаются: запись в журнале и есть результат отправки.
type Dispatcher interface {
	Dispatch(ctx context.Context, log entities.CommunicationLog) error
}

// LogDispatcher фиксирует отправку в журнале приложения. Провайдеры каналов
// подключаются отдельно и реализуют тот же интерфейс.
type LogDispatcher struct {
	logger *zap.Logger
}

func NewLogDispatcher(logger *zap.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) Dispatch(_ context.Context, l entities.CommunicationLog) error {
	fields := []zap.Field{
		zap.String("message_id", l.MessageID.String()),
		zap.Uint64("communication_id", l.ID),
		zap.Uint64("employee_id", l.EmployeeID),
		zap.String("channel", l.Channel),
		zap.Bool("fallback", l.Fallback),
	}
	if l.Address == "" {
		d.logger.Warn("Нет адреса для канала, сообщение записано без доставки", fields...)
		return nil
	}
	d.logger.Info("Сообщение передано в канал", fields...)
	return nil
}

// ChannelDispatcher выбирает доставщика по каналу сообщения. Каналы без
// собственного доставщика уходят в fallback.
type ChannelDispatcher struct {
	byChannel map[string]Dispatcher
	fallback  Dispatcher
}

func NewChannelDispatcher(fallback Dispatcher, byChannel map[string]Dispatcher) *ChannelDispatcher {
	if byChannel == nil {
		byChannel = map[string]Dispatcher{}
	}
	return &ChannelDispatcher{byChannel: byChannel, fallback: fallback}
}

func (d *ChannelDispatcher) Dispatch(ctx context.Context, l entities.CommunicationLog) error {
	if target, ok := d.byChannel[l.Channel]; ok && l.Address != "" {
		return target.Dispatch(ctx, l)
	}
	return d.fallback.Dispatch(ctx, l)
}

// TelegramDispatcher отправляет сообщение через Bot API; адрес - @username или chat_id.
type TelegramDispatcher struct {
	sender telegram.Sender
	logger *zap.Logger
}

func NewTelegramDispatcher(sender telegram.Sender, logger *zap.Logger) *TelegramDispatcher {
	return &TelegramDispatcher{sender: sender, logger: logger}
}

func (d *TelegramDispatcher) Dispatch(ctx context.Context, l entities.CommunicationLog) error {
	text := telegram.EscapeMarkdownV2(l.Body)
	if l.Subject != nil && *l.Subject != "" {
		text = "*" + telegram.EscapeMarkdownV2(*l.Subject) + "*\n\n" + text
	}
	if err := d.sender.SendMessage(ctx, l.Address, text, telegram.WithMarkdownV2(), telegram.WithoutPreview()); err != nil {
		return fmt.Errorf("telegram %s: %w", l.Address, err)
	}
	d.logger.Info("Сообщение отправлено в Telegram",
		zap.Uint64("communication_id", l.ID),
		zap.String("chat", l.Address),
	)
	return nil
}
