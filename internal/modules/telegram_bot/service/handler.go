package service

import (
	"context"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"signal_bot/internal/parser"
	"signal_bot/pkg/logger"
)

func (t *Telegram) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil {
		msg = update.ChannelPost // сигналы часто приходят из канала
	}
	if msg == nil || msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID
	if t.chatID != 0 && chatID != t.chatID {
		logger.Debug("telegram: ignore chat %d", chatID)
		return
	}

	if msg.IsCommand() {
		switch msg.Command() {
		case "start", "help":
			t.reply(ctx, chatID, helpText)
		case "status":
			t.handleStatus(ctx, chatID)
		case "trades":
			t.reply(ctx, chatID, formatTrades(t.trader.ActiveTrades()))
		case "remove":
			t.handleRemove(ctx, chatID, msg.CommandArguments())
		default:
			t.reply(ctx, chatID, "Неизвестная команда. /help")
		}
		return
	}

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	if !parser.LooksLikeSignal(text) {
		return
	}

	// биржа может отвечать секундами, приём апдейтов не ждёт.
	// Начатое исполнение доводится до конца даже при остановке бота.
	execCtx := context.WithoutCancel(ctx)
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.handleSignal(execCtx, chatID, text)
	}()
}

func (t *Telegram) handleSignal(ctx context.Context, chatID int64, text string) {
	sig, ok := parser.Extract(text)
	if !ok {
		logger.Info("telegram: signal-like message not parsed")
		t.reply(ctx, chatID, "❌ Не удалось разобрать сигнал")
		return
	}
	if t.state != nil {
		t.state.TouchSignal(time.Now())
	}
	t.reply(ctx, chatID, formatSignal(sig))

	rec, err := t.trader.Execute(ctx, sig)
	if err != nil {
		logger.Warn("telegram: %s not executed: %v", sig.Symbol, err)
		t.reply(ctx, chatID, formatFailure(sig.Symbol, err))
		return
	}
	t.reply(ctx, chatID, formatTrade(rec, t.trader.QuoteAsset()))
}

func (t *Telegram) handleStatus(ctx context.Context, chatID int64) {
	bal, err := t.trader.Balance(ctx)
	if err != nil {
		logger.Warn("telegram: balance: %v", err)
	}
	t.reply(ctx, chatID, formatStatus(t.trader.ExchangeName(), t.trader.QuoteAsset(), bal, err, t.trader.ActiveCount()))
}

func (t *Telegram) handleRemove(ctx context.Context, chatID int64, args string) {
	symbol := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(args), "$"))
	if symbol == "" {
		t.reply(ctx, chatID, "Использование: /remove SYMBOL")
		return
	}
	if !t.trader.Remove(symbol) {
		t.replyf(ctx, chatID, "📭 Нет активной сделки по %s", symbol)
		return
	}
	t.replyf(ctx, chatID, "🗑 %s убран из активных сделок", symbol)
}
