package telegram

import (
	"context"
	"errors"
	"log/slog"

	"testCraftBot/internal/domain/models"
	"testCraftBot/internal/pkg/logger/sl"
	tgclient "testCraftBot/internal/pkg/tg"
	"testCraftBot/internal/repository"
	"testCraftBot/internal/service/botlink"
	"testCraftBot/internal/service/messages"
)

type ReplySender interface {
	SendMessage(chatID int64, text string, buttons ...tgclient.Button) (tgclient.SendResult, error)
}

type AccountProvider interface {
	ByLogin(ctx context.Context, login string) (*models.Account, error)
}

type Linker interface {
	HandleRegister(ctx context.Context, id botlink.Identity, acc *models.Account, lang string) error
	HandleLogin(ctx context.Context, id botlink.Identity, acc *models.Account, lang string) error
}

// Handler разбирает входящие обновления и маршрутизирует команды.
// Доменные ошибки гасятся локализованным ответом; наружу ничего
// не пробрасывается, чтобы один битый update не останавливал цикл.
type Handler struct {
	log      *slog.Logger
	bot      ReplySender
	accounts AccountProvider
	linker   Linker
	msgs     *messages.Composer
}

func NewHandler(
	log *slog.Logger,
	bot ReplySender,
	accounts AccountProvider,
	linker Linker,
	msgs *messages.Composer,
) *Handler {
	return &Handler{
		log:      log,
		bot:      bot,
		accounts: accounts,
		linker:   linker,
		msgs:     msgs,
	}
}

func (h *Handler) HandleUpdate(ctx context.Context, u models.Update) {
	const op = "Telegram.HandleUpdate"

	if u.Message == nil || u.Message.Text == "" {
		return
	}

	msg := u.Message
	log := h.log.With(
		slog.String("op", op),
		slog.Int64("updateID", u.ID),
		slog.Int64("chatID", msg.Chat.ID),
	)

	cmd := ParseCommand(msg.Text)

	switch cmd.Kind {
	case models.CommandWelcome:
		h.reply(log, msg.Chat.ID, h.msgs.Text(senderLanguage(msg), messages.KeyWelcome))
	case models.CommandUnknown:
		h.reply(log, msg.Chat.ID, h.msgs.Text(senderLanguage(msg), messages.KeyUnknownCommand))
	case models.CommandInvalid:
		log.Warn("malformed deep link payload")
		h.reply(log, msg.Chat.ID, h.msgs.Text(cmd.Language, messages.KeyInvalidLink))
	case models.CommandRegister, models.CommandLogin:
		h.handleLink(ctx, log, msg, cmd)
	}
}

func (h *Handler) handleLink(ctx context.Context, log *slog.Logger, msg *models.Message, cmd models.Command) {
	log = log.With(slog.String("login", cmd.Login))

	acc, err := h.accounts.ByLogin(ctx, cmd.Login)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			log.Warn("account not found")
			h.reply(log, msg.Chat.ID, h.msgs.Text(cmd.Language, messages.KeyUserNotFound))
			return
		}

		log.Error("failed to look up account", sl.Err(err))
		h.reply(log, msg.Chat.ID, h.msgs.Text(cmd.Language, messages.KeyTryLater))
		return
	}

	id := botlink.Identity{
		ChatID:   msg.Chat.ID,
		Username: msg.From.Username,
	}

	switch cmd.Kind {
	case models.CommandRegister:
		err = h.linker.HandleRegister(ctx, id, acc, cmd.Language)
	case models.CommandLogin:
		err = h.linker.HandleLogin(ctx, id, acc, cmd.Language)
	}

	if err != nil {
		log.Error("failed to process command", sl.Err(err))
		h.reply(log, msg.Chat.ID, h.msgs.Text(cmd.Language, messages.KeyTryLater))
	}
}

func (h *Handler) reply(log *slog.Logger, chatID int64, text string) {
	if _, err := h.bot.SendMessage(chatID, text); err != nil {
		log.Error("failed to send reply", sl.Err(err))
	}
}
