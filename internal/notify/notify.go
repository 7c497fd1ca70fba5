// Package notify delivers best-effort operator notifications.
package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"pet3d-backend/internal/metrics"
)

type Notifier interface {
	Notify(ctx context.Context, title, content string) error
}

// Multi fans a notification out to every sink and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, title, content string) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, title, content); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogNotifier writes notifications to the application log.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, title, content string) error {
	log.Info().Str("title", title).Str("content", content).Msg("operator notification")
	return nil
}

type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier sends notifications to the operator chat.
type TelegramNotifier struct {
	bot    messageSender
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func newTelegramNotifierWithSender(bot messageSender, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, chatID: chatID}
}

func (t *TelegramNotifier) Notify(_ context.Context, title, content string) error {
	msg := tgbotapi.NewMessage(t.chatID, title+"\n\n"+content)
	msg.DisableWebPagePreview = true
	_, err := t.bot.Send(msg)
	return err
}

// Dispatcher runs notifications in the background. Failures are logged and
// counted, never returned to the caller.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	wg       sync.WaitGroup
}

func NewDispatcher(n Notifier, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{notifier: n, timeout: timeout}
}

func (d *Dispatcher) Dispatch(title, content string) {
	if d == nil || d.notifier == nil {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				metrics.NotificationFailures.Inc()
				log.Error().Interface("panic", rec).Str("title", title).Msg("notification panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.notifier.Notify(ctx, title, content); err != nil {
			metrics.NotificationFailures.Inc()
			log.Warn().Err(err).Str("title", title).Msg("failed to deliver operator notification")
		}
	}()
}

// Wait blocks until in-flight notifications finish.
func (d *Dispatcher) Wait() {
	if d != nil {
		d.wg.Wait()
	}
}
