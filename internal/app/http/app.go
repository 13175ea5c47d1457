package httpapp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"testCraftBot/internal/http/handler"
)

type Config struct {
	Port    int           `yaml:"port" env:"PORT" env-default:"8080"`
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT" env-default:"30s"`
}

type App struct {
	log        *slog.Logger
	httpServer *http.Server
	port       int
}

func New(
	log *slog.Logger,
	config *Config,
	accounts handler.AccountProvider,
	codes handler.CodeVerifier,
	llm handler.TextImprover,
	sessionSecret string,
	sessionTTL time.Duration,
) *App {
	router := http.NewServeMux()

	router.HandleFunc(
		"GET /api/health",
		handler.HealthHandler(),
	)

	router.HandleFunc(
		"POST /api/auth/telegram/confirm",
		handler.ConfirmTelegramLoginHandler(log, accounts, codes, sessionSecret, sessionTTL),
	)

	auth := handler.AuthMiddleware(log, sessionSecret)

	router.HandleFunc(
		"POST /api/ai/improve",
		auth(handler.ImproveTextHandler(log, llm)),
	)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      router,
		ReadTimeout:  config.Timeout,
		WriteTimeout: config.Timeout,
	}

	return &App{
		log:        log,
		httpServer: httpServer,
		port:       config.Port,
	}
}

func (a *App) MustRun() {
	if err := a.Run(); err != nil {
		panic(err)
	}
}

func (a *App) Run() error {
	const op = "httpapp.Run"

	a.log.Info("http server started", slog.Int("port", a.port))

	if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (a *App) Stop(ctx context.Context) {
	const op = "httpapp.Stop"

	a.log.With(slog.String("op", op)).Info("stopping http server")

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.log.Error("failed to stop http server", slog.String("error", err.Error()))
	}
}
