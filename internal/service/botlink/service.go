package botlink

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"testCraftBot/internal/domain/models"
	"testCraftBot/internal/pkg/logger/sl"
	tgclient "testCraftBot/internal/pkg/tg"
	"testCraftBot/internal/service/messages"
)

const (
	settingSiteURL      = "site_url"
	settingAdminContact = "admin_contact"

	defaultSiteURL      = "https://testcraft.kg"
	defaultAdminContact = "testcraft_admin"
)

// Identity — идентичность чата, приславшего команду.
// В личном чате с ботом chat id совпадает с id отправителя.
type Identity struct {
	ChatID   int64
	Username string
}

type AccountRepo interface {
	ByChatID(ctx context.Context, chatID int64) (*models.Account, error)
	LinkChat(ctx context.Context, accountID uuid.UUID, chatID int64) error
	UpdateProfilePhoto(ctx context.Context, accountID uuid.UUID, url string) error
	UpdateChatUsername(ctx context.Context, accountID uuid.UUID, username string) error
	UpdateLanguage(ctx context.Context, accountID uuid.UUID, language string) error
}

type BotGateway interface {
	ProfilePhotoURL(userID int64) (string, error)
	SendMessage(chatID int64, text string, buttons ...tgclient.Button) (tgclient.SendResult, error)
	Self() string
}

// AvatarStore отвечает на один вопрос: принадлежит ли URL фотографии
// нашему объектному хранилищу (то есть загружена ли она пользователем).
type AvatarStore interface {
	Owns(url string) bool
}

type CodeIssuer interface {
	Issue(ctx context.Context, accountID uuid.UUID, codeType models.CodeType) (string, error)
}

type SettingsProvider interface {
	ValueOrDefault(ctx context.Context, key string, def string) string
}

// Service привязывает Telegram-идентичности к аккаунтам и ведёт
// login-flow с одноразовыми кодами.
type Service struct {
	log      *slog.Logger
	accounts AccountRepo
	bot      BotGateway
	avatars  AvatarStore
	codes    CodeIssuer
	settings SettingsProvider
	msgs     *messages.Composer
}

func New(
	log *slog.Logger,
	accounts AccountRepo,
	bot BotGateway,
	avatars AvatarStore,
	codes CodeIssuer,
	settings SettingsProvider,
	msgs *messages.Composer,
) *Service {
	return &Service{
		log:      log,
		accounts: accounts,
		bot:      bot,
		avatars:  avatars,
		codes:    codes,
		settings: settings,
		msgs:     msgs,
	}
}

// syncProfile — общая политика синхронизации фото и username.
// Фото перезаписывается, только если оно пустое или само пришло из
// Telegram; загруженное пользователем фото не трогаем. Username
// синхронизируется при любом расхождении, независимо от фото.
func (s *Service) syncProfile(ctx context.Context, log *slog.Logger, id Identity, acc *models.Account) {
	if acc.ProfilePhotoURL == "" || !s.avatars.Owns(acc.ProfilePhotoURL) {
		url, err := s.bot.ProfilePhotoURL(id.ChatID)
		if err != nil {
			log.Warn("failed to fetch profile photo", sl.Err(err))
		} else if url != "" && url != acc.ProfilePhotoURL {
			if err := s.accounts.UpdateProfilePhoto(ctx, acc.ID, url); err != nil {
				log.Warn("failed to update profile photo", sl.Err(err))
			} else {
				acc.ProfilePhotoURL = url
			}
		}
	}

	if id.Username != acc.ChatUsername {
		if err := s.accounts.UpdateChatUsername(ctx, acc.ID, id.Username); err != nil {
			log.Warn("failed to update chat username", sl.Err(err))
		} else {
			acc.ChatUsername = id.Username
		}
	}
}

func (s *Service) syncLanguage(ctx context.Context, log *slog.Logger, acc *models.Account, lang string) {
	if lang == "" || lang == acc.Language {
		return
	}

	if err := s.accounts.UpdateLanguage(ctx, acc.ID, lang); err != nil {
		log.Warn("failed to update language", sl.Err(err))
		return
	}

	acc.Language = lang
}

func (s *Service) reply(log *slog.Logger, chatID int64, text string, buttons ...tgclient.Button) {
	if _, err := s.bot.SendMessage(chatID, text, buttons...); err != nil {
		log.Error("failed to send reply", sl.Err(err))
	}
}
