package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	"signal_bot/pkg/logger"
)

// botAPI часть tgbot.BotAPI, которой пользуемся.
type botAPI interface {
	Send(c tgbot.Chattable) (tgbot.Message, error)
	GetUpdatesChan(config tgbot.UpdateConfig) tgbot.UpdatesChannel
	StopReceivingUpdates()
}

// Trader то, что боту нужно от торгового ядра.
type Trader interface {
	Execute(ctx context.Context, sig models.Signal) (models.TradeRecord, error)
	ActiveTrades() map[string]models.TradeSummary
	ActiveCount() int
	Remove(symbol string) bool
	Balance(ctx context.Context) (float64, error)
	ExchangeName() string
	QuoteAsset() string
}

type SignalTracker interface {
	TouchSignal(t time.Time)
}

// Telegram
type Telegram struct {
	bot    botAPI
	chatID int64 // 0 => отвечаем в любой чат
	trader Trader
	state  SignalTracker

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewTelegram(cfg *config.Config, trader Trader, state SignalTracker) (*Telegram, error) {
	t := &Telegram{
		chatID: cfg.Telegram.ChatID,
		trader: trader,
		state:  state,
	}
	if cfg.Telegram.Token == "" {
		logger.Warn("telegram token empty, bot disabled")
		return t, nil
	}
	b, err := tgbot.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}
	t.bot = b
	logger.Info("telegram authorized as @%s", b.Self.UserName)
	return t, nil
}

func newWithBot(bot botAPI, chatID int64, trader Trader, state SignalTracker) *Telegram {
	return &Telegram{bot: bot, chatID: chatID, trader: trader, state: state}
}

func (t *Telegram) Send(_ context.Context, chatID int64, msg string) (tgbot.Message, error) {
	return t.bot.Send(tgbot.NewMessage(chatID, msg))
}

func (t *Telegram) SendF(ctx context.Context, chatID int64, format string, args ...any) (tgbot.Message, error) {
	return t.Send(ctx, chatID, fmt.Sprintf(format, args...))
}

func (t *Telegram) reply(ctx context.Context, chatID int64, msg string) {
	if _, err := t.Send(ctx, chatID, msg); err != nil {
		logger.Error("telegram send: %v", err)
	}
}

func (t *Telegram) replyf(ctx context.Context, chatID int64, format string, args ...any) {
	if _, err := t.SendF(ctx, chatID, format, args...); err != nil {
		logger.Error("telegram send: %v", err)
	}
}

// Start запускает long polling в отдельной горутине и сразу возвращается.
func (t *Telegram) Start(ctx context.Context) error {
	if t.bot == nil {
		return nil
	}
	ctx, t.cancel = context.WithCancel(ctx)

	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	updates := t.bot.GetUpdatesChan(u)

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		for update := range updates {
			t.handleUpdate(ctx, update)
		}
	}()
	return nil
}

// Stop прекращает приём апдейтов и ждёт уже начатые исполнения сигналов.
// Их контекст Stop не отменяет.
func (t *Telegram) Stop() {
	if t.bot == nil {
		return
	}
	t.bot.StopReceivingUpdates()
	if t.cancel != nil {
		t.cancel()
	}
	t.wg.Wait()
}
