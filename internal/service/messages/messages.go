package messages

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"testCraftBot/internal/pkg/logger/sl"
)

const DefaultLanguage = "ru"

const (
	KeyWelcome            = "welcome"
	KeyUnknownCommand     = "unknown_command"
	KeyInvalidLink        = "invalid_link"
	KeyUserNotFound       = "user_not_found"
	KeyAlreadyConnected   = "already_connected"
	KeyLinkedOtherAccount = "linked_other_account"
	KeyRegisterSuccess    = "register_success"
	KeyRegisterPending    = "register_pending"
	KeyGreeting           = "greeting"
	KeyCodeMessage        = "code_message"
	KeyAuthMismatch       = "auth_mismatch"
	KeyBotBlocked         = "bot_blocked"
	KeyAdminRequest       = "admin_request"
	KeyTryLater           = "try_later"
	KeyBtnOpenSite        = "btn_open_site"
	KeyBtnContactAdmin    = "btn_contact_admin"
)

// languageAliases приводит коды платформы к каноническим двухбуквенным.
var languageAliases = map[string]string{
	"ky": "kg",
}

// NormalizeLanguage возвращает канонический код языка и признак того,
// что язык поддерживается.
func NormalizeLanguage(code string) (string, bool) {
	code = strings.ToLower(code)

	if canonical, ok := languageAliases[code]; ok {
		code = canonical
	}

	_, ok := defaults[code]

	return code, ok
}

// Composer отдаёт локализованные шаблоны сообщений бота. Переопределения
// из внешнего хранилища накладываются поверх встроенных значений по ключам;
// битый или пустой bundle молча игнорируется.
type Composer struct {
	log       *slog.Logger
	templates map[string]map[string]string
}

func New(log *slog.Logger, overridesJSON string) *Composer {
	const op = "Messages.New"

	templates := make(map[string]map[string]string, len(defaults))
	for lang, keys := range defaults {
		copied := make(map[string]string, len(keys))
		for key, text := range keys {
			copied[key] = text
		}
		templates[lang] = copied
	}

	c := &Composer{
		log:       log,
		templates: templates,
	}

	if overridesJSON == "" {
		return c
	}

	var overrides map[string]map[string]string
	if err := json.Unmarshal([]byte(overridesJSON), &overrides); err != nil {
		log.Warn("malformed message overrides, using defaults",
			slog.String("op", op), sl.Err(err))
		return c
	}

	for lang, keys := range overrides {
		base, ok := c.templates[lang]
		if !ok {
			// неизвестный язык в bundle игнорируем целиком
			continue
		}
		for key, text := range keys {
			if _, known := base[key]; !known {
				continue
			}
			base[key] = text
		}
	}

	return c
}

// Text возвращает шаблон для языка с fallback на язык по умолчанию.
func (c *Composer) Text(lang string, key string) string {
	if keys, ok := c.templates[lang]; ok {
		if text, ok := keys[key]; ok {
			return text
		}
	}

	return c.templates[DefaultLanguage][key]
}

func (c *Composer) Greeting(lang string, name string) string {
	return fmt.Sprintf(c.Text(lang, KeyGreeting), name)
}

func (c *Composer) CodeMessage(lang string, code string) string {
	return fmt.Sprintf(c.Text(lang, KeyCodeMessage), code)
}
