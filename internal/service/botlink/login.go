package botlink

import (
	"context"
	"fmt"
	"log/slog"

	"testCraftBot/internal/domain/models"
	"testCraftBot/internal/pkg/logger/sl"
	"testCraftBot/internal/service/messages"
)

// HandleLogin выдаёт одноразовый код для входа на сайт.
func (s *Service) HandleLogin(ctx context.Context, id Identity, acc *models.Account, lang string) error {
	const op = "BotLink.HandleLogin"

	log := s.log.With(
		slog.String("op", op),
		slog.String("login", acc.Login),
		slog.Int64("chatID", id.ChatID),
	)

	// первый вход без привязки — самовосстанавливающаяся регистрация
	if !acc.Linked() {
		return s.HandleRegister(ctx, id, acc, lang)
	}

	if acc.ChatID != id.ChatID {
		log.Warn("login attempt from a different chat identity")
		s.reply(log, id.ChatID, s.msgs.Text(lang, messages.KeyAuthMismatch))

		return nil
	}

	s.syncProfile(ctx, log, id, acc)
	s.syncLanguage(ctx, log, acc, lang)

	code, err := s.codes.Issue(ctx, acc.ID, models.CodeTypeLogin)
	if err != nil {
		log.Error("failed to issue code", sl.Err(err))
		s.reply(log, id.ChatID, s.msgs.Text(lang, messages.KeyTryLater))

		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.bot.SendMessage(acc.ChatID, s.msgs.CodeMessage(lang, code))
	if err != nil {
		log.Error("failed to send code", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	if res.Blocked {
		log.Warn("code delivery blocked by recipient")
		s.reply(log, id.ChatID,
			fmt.Sprintf(s.msgs.Text(lang, messages.KeyBotBlocked), s.bot.Self()))

		return nil
	}

	log.Info("login code sent")

	return nil
}
