package app

import (
	"context"
	"log/slog"

	httpapp "testCraftBot/internal/app/http"
	"testCraftBot/internal/config"
	"testCraftBot/internal/cron"
	"testCraftBot/internal/pkg/llmclient"
	"testCraftBot/internal/pkg/logger/sl"
	tgclient "testCraftBot/internal/pkg/tg"
	"testCraftBot/internal/repository/postgres"
	postgresAccount "testCraftBot/internal/repository/postgres/account"
	postgresSettings "testCraftBot/internal/repository/postgres/settings"
	postgresVerificationCode "testCraftBot/internal/repository/postgres/verificationcode"
	"testCraftBot/internal/repository/s3minio"
	"testCraftBot/internal/service/botlink"
	"testCraftBot/internal/service/messages"
	"testCraftBot/internal/service/verification"
	"testCraftBot/internal/telegram"
)

const (
	settingBotToken    = "bot_token"
	settingBotMessages = "bot_messages"
)

type App struct {
	HTTPServer *httpapp.App
	Poller     *telegram.Poller
	Scheduler  *cron.Scheduler
}

func New(log *slog.Logger, cfg *config.Config) *App {
	pool, err := postgres.NewConnPool(&cfg.Postgres)
	if err != nil {
		panic(err)
	}

	accountRepo, err := postgresAccount.New(pool)
	if err != nil {
		panic(err)
	}

	codeRepo, err := postgresVerificationCode.New(pool)
	if err != nil {
		panic(err)
	}

	settingsRepo, err := postgresSettings.New(pool)
	if err != nil {
		panic(err)
	}

	minioConn, err := s3minio.NewConn(&cfg.Minio)
	if err != nil {
		panic(err)
	}

	avatars := s3minio.New(minioConn, &cfg.Minio)
	if err := avatars.EnsureBucket(context.Background()); err != nil {
		panic(err)
	}

	codes := verification.New(log, codeRepo)

	overrides := settingsRepo.ValueOrDefault(context.Background(), settingBotMessages, "")
	msgs := messages.New(log, overrides)

	// credential бота можно переопределить в настройках, не трогая env
	token := settingsRepo.ValueOrDefault(context.Background(), settingBotToken, cfg.Telegram.BotToken)

	var poller *telegram.Poller

	if token == "" {
		poller = telegram.NewPoller(log, nil, nil)
	} else {
		botClient, err := tgclient.New(log, token)
		if err != nil {
			log.Error("failed to create telegram client, polling disabled", sl.Err(err))
			poller = telegram.NewPoller(log, nil, nil)
		} else {
			linker := botlink.New(log, accountRepo, botClient, avatars, codes, settingsRepo, msgs)
			handler := telegram.NewHandler(log, botClient, accountRepo, linker, msgs)
			poller = telegram.NewPoller(log, botClient, handler)
		}
	}

	scheduler := cron.New(log, codeRepo)

	llmClient := llmclient.New(cfg.LLM)

	httpApp := httpapp.New(
		log,
		&cfg.HTTP,
		accountRepo,
		codes,
		llmClient,
		cfg.Session.Secret,
		cfg.Session.TokenTTL,
	)

	return &App{
		HTTPServer: httpApp,
		Poller:     poller,
		Scheduler:  scheduler,
	}
}
