package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

const pollTimeoutSeconds = 60

// Client wraps the Bot API with an outbound rate limit.
type Client struct {
	api     *tgbotapi.BotAPI
	logger  *slog.Logger
	limiter *rate.Limiter
}

func NewClient(token string, rps float64, logger *slog.Logger) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &Client{
		api:     bot,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}, nil
}

// Updates starts long polling. The channel is closed after Stop.
func (c *Client) Updates() tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeoutSeconds

	c.logger.Info("Telegram bot started", "username", c.api.Self.UserName)
	return c.api.GetUpdatesChan(u)
}

func (c *Client) Stop() {
	c.api.StopReceivingUpdates()
	c.logger.Info("Telegram bot stopped")
}

// Send delivers a message, waiting for the rate limiter first.
func (c *Client) Send(ctx context.Context, chattable tgbotapi.Chattable) (tgbotapi.Message, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return tgbotapi.Message{}, fmt.Errorf("rate limiting: %w", err)
	}

	message, err := c.api.Send(chattable)
	if err != nil {
		return tgbotapi.Message{}, fmt.Errorf("send: %w", err)
	}

	return message, nil
}

// Request calls a Bot API method that returns no message, such as answering
// a callback or setting commands.
func (c *Client) Request(ctx context.Context, chattable tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiting: %w", err)
	}

	resp, err := c.api.Request(chattable)
	if err != nil {
		return nil, fmt.Errorf("api request: %w", err)
	}

	return resp, nil
}
