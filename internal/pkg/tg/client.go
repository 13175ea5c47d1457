package tgclient

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"testCraftBot/internal/domain/models"
)

// клиентский потолок должен быть выше long-poll таймаута сервера
const httpClientTimeout = 45 * time.Second

type Config struct {
	BotToken string `yaml:"bot_token" env:"BOT_TOKEN"`
}

type Client struct {
	api *tgbotapi.BotAPI
	log *slog.Logger
}

// Button — inline-кнопка со ссылкой.
type Button struct {
	Label string
	URL   string
}

// SendResult — типизированный результат отправки. Blocked означает,
// что получатель заблокировал бота; это не ошибка доставки.
type SendResult struct {
	Blocked bool
}

// New создаёт клиент и проверяет credential через getMe.
func New(log *slog.Logger, token string) (*Client, error) {
	httpClient := &http.Client{Timeout: httpClientTimeout}

	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Client{
		api: api,
		log: log,
	}, nil
}

// Self возвращает username самого бота.
func (c *Client) Self() string {
	return c.api.Self.UserName
}

func (c *Client) WebhookActive() (bool, error) {
	info, err := c.api.GetWebhookInfo()
	if err != nil {
		return false, fmt.Errorf("failed to get webhook info: %w", err)
	}

	return info.IsSet(), nil
}

func (c *Client) DeleteWebhook(dropPending bool) error {
	_, err := c.api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: dropPending})
	if err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	return nil
}

func (c *Client) GetUpdates(offset int64, timeout int, limit int) ([]models.Update, error) {
	cfg := tgbotapi.UpdateConfig{
		Offset:  int(offset),
		Timeout: timeout,
		Limit:   limit,
	}

	raw, err := c.api.GetUpdates(cfg)
	if err != nil {
		return nil, err
	}

	updates := make([]models.Update, 0, len(raw))
	for _, u := range raw {
		updates = append(updates, mapUpdate(u))
	}

	return updates, nil
}

// ProfilePhotoURL возвращает прямую ссылку на самое крупное фото профиля
// или пустую строку, если фото нет.
func (c *Client) ProfilePhotoURL(userID int64) (string, error) {
	photos, err := c.api.GetUserProfilePhotos(tgbotapi.NewUserProfilePhotos(userID))
	if err != nil {
		return "", fmt.Errorf("failed to get profile photos: %w", err)
	}

	if photos.TotalCount == 0 || len(photos.Photos) == 0 || len(photos.Photos[0]) == 0 {
		return "", nil
	}

	sizes := photos.Photos[0]
	best := sizes[len(sizes)-1]

	url, err := c.api.GetFileDirectURL(best.FileID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve photo file: %w", err)
	}

	return url, nil
}

func (c *Client) SendMessage(chatID int64, text string, buttons ...Button) (SendResult, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if len(buttons) > 0 {
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
		for _, b := range buttons {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonURL(b.Label, b.URL),
			))
		}
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	}

	_, err := c.api.Send(msg)
	if err != nil {
		if IsBlocked(err) {
			return SendResult{Blocked: true}, nil
		}
		return SendResult{}, fmt.Errorf("failed to send message: %w", err)
	}

	return SendResult{}, nil
}

// IsConflict распознаёт ответ платформы о втором активном consumer'е
// (409 на getUpdates либо активный webhook).
func IsConflict(err error) bool {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}

	return apiErr.Code == http.StatusConflict
}

// IsBlocked распознаёт отказ доставки из-за блокировки бота получателем.
func IsBlocked(err error) bool {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}

	return apiErr.Code == http.StatusForbidden &&
		strings.Contains(strings.ToLower(apiErr.Message), "blocked by the user")
}

func mapUpdate(u tgbotapi.Update) models.Update {
	mapped := models.Update{ID: int64(u.UpdateID)}

	if u.Message != nil {
		msg := models.Message{
			Chat: models.Chat{ID: u.Message.Chat.ID},
			Text: u.Message.Text,
		}
		if u.Message.From != nil {
			msg.From = models.Sender{
				ID:           u.Message.From.ID,
				Username:     u.Message.From.UserName,
				LanguageCode: u.Message.From.LanguageCode,
			}
		}
		mapped.Message = &msg
	}

	return mapped
}
