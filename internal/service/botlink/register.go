package botlink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"testCraftBot/internal/domain/models"
	"testCraftBot/internal/pkg/logger/sl"
	tgclient "testCraftBot/internal/pkg/tg"
	"testCraftBot/internal/repository"
	"testCraftBot/internal/service/messages"
)

// HandleRegister привязывает чат к аккаунту. Повторная привязка того же
// чата — легитимный исход (at-least-once), а не ошибка.
func (s *Service) HandleRegister(ctx context.Context, id Identity, acc *models.Account, lang string) error {
	const op = "BotLink.HandleRegister"

	log := s.log.With(
		slog.String("op", op),
		slog.String("login", acc.Login),
		slog.Int64("chatID", id.ChatID),
	)

	if acc.ChatID == id.ChatID {
		s.syncProfile(ctx, log, id, acc)
		s.syncLanguage(ctx, log, acc, lang)
		s.reply(log, id.ChatID, s.msgs.Text(lang, messages.KeyAlreadyConnected))

		return nil
	}

	other, err := s.accounts.ByChatID(ctx, id.ChatID)
	if err != nil && !errors.Is(err, repository.ErrAccountNotFound) {
		log.Error("failed to check chat binding", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	if other != nil && other.ID != acc.ID {
		// один Telegram — максимум один аккаунт; оба аккаунта не трогаем
		log.Warn("chat already linked to another account",
			slog.String("otherLogin", other.Login))
		s.reply(log, id.ChatID, s.msgs.Text(lang, messages.KeyLinkedOtherAccount))

		return nil
	}

	if err := s.accounts.LinkChat(ctx, acc.ID, id.ChatID); err != nil {
		log.Error("failed to link chat", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}
	acc.ChatID = id.ChatID

	s.syncProfile(ctx, log, id, acc)
	s.syncLanguage(ctx, log, acc, lang)

	siteURL := s.settings.ValueOrDefault(ctx, settingSiteURL, defaultSiteURL)

	if acc.Status == models.AccountStatusVerified {
		log.Info("chat linked to verified account")
		s.reply(log, id.ChatID,
			s.msgs.Greeting(lang, acc.Name)+"\n\n"+s.msgs.Text(lang, messages.KeyRegisterSuccess),
			tgclient.Button{Label: s.msgs.Text(lang, messages.KeyBtnOpenSite), URL: siteURL},
		)

		return nil
	}

	log.Info("chat linked to unverified account")

	admin := s.settings.ValueOrDefault(ctx, settingAdminContact, defaultAdminContact)
	request := fmt.Sprintf(s.msgs.Text(lang, messages.KeyAdminRequest), acc.Name, acc.Login)
	adminLink := fmt.Sprintf("https://t.me/%s?text=%s", admin, url.QueryEscape(request))

	s.reply(log, id.ChatID,
		s.msgs.Greeting(lang, acc.Name)+"\n\n"+s.msgs.Text(lang, messages.KeyRegisterPending),
		tgclient.Button{Label: s.msgs.Text(lang, messages.KeyBtnContactAdmin), URL: adminLink},
		tgclient.Button{Label: s.msgs.Text(lang, messages.KeyBtnOpenSite), URL: siteURL},
	)

	return nil
}
