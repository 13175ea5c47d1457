package telegram

import (
	"strings"

	"testCraftBot/internal/domain/models"
	"testCraftBot/internal/service/messages"
)

const startCommand = "/start"

// ParseCommand разбирает текст сообщения по грамматике deep-link:
//
//	/start {mode}_{login}[__{lang}]
//
// Логин может содержать подчёркивания, поэтому mode отделяется по
// первому "_", а язык — по последнему "__" и только если суффикс
// является известным кодом языка.
func ParseCommand(text string) models.Command {
	text = strings.TrimSpace(text)

	if text == startCommand {
		return models.Command{Kind: models.CommandWelcome, Language: messages.DefaultLanguage}
	}

	payload, ok := strings.CutPrefix(text, startCommand+" ")
	if !ok {
		return models.Command{Kind: models.CommandUnknown}
	}

	return parseStartPayload(strings.TrimSpace(payload))
}

func parseStartPayload(payload string) models.Command {
	lang := messages.DefaultLanguage

	if idx := strings.LastIndex(payload, "__"); idx >= 0 {
		if code, ok := messages.NormalizeLanguage(payload[idx+2:]); ok {
			lang = code
			payload = payload[:idx]
		}
	}

	mode, login, found := strings.Cut(payload, "_")
	if !found || login == "" {
		return models.Command{Kind: models.CommandInvalid, Language: lang}
	}

	switch mode {
	case "register":
		return models.Command{Kind: models.CommandRegister, Login: login, Language: lang}
	case "login":
		return models.Command{Kind: models.CommandLogin, Login: login, Language: lang}
	default:
		return models.Command{Kind: models.CommandInvalid, Language: lang}
	}
}

// senderLanguage — язык для ответов вне deep-link (welcome и ошибки).
func senderLanguage(msg *models.Message) string {
	if code, ok := messages.NormalizeLanguage(msg.From.LanguageCode); ok {
		return code
	}

	return messages.DefaultLanguage
}
