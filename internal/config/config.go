package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	httpapp "testCraftBot/internal/app/http"
	"testCraftBot/internal/pkg/llmclient"
	tgclient "testCraftBot/internal/pkg/tg"
	"testCraftBot/internal/repository/postgres"
	"testCraftBot/internal/repository/s3minio"
)

type Config struct {
	Env      string           `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     httpapp.Config   `yaml:"http" env-prefix:"HTTP_"`
	Postgres postgres.Config  `yaml:"postgres" env-prefix:"POSTGRES_"`
	Minio    s3minio.Config   `yaml:"minio" env-prefix:"MINIO_"`
	Telegram tgclient.Config  `yaml:"telegram" env-prefix:"TELEGRAM_"`
	LLM      llmclient.Config `yaml:"llm" env-prefix:"LLM_"`
	Session  SessionConfig    `yaml:"session" env-prefix:"SESSION_"`
}

type SessionConfig struct {
	Secret   string        `yaml:"secret" env:"SECRET" env-required:"true"`
	TokenTTL time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"24h"`
}

// MustLoad читает конфигурацию из файла (--config или CONFIG_PATH),
// без файла — только из переменных окружения.
func MustLoad() *Config {
	configPath := fetchConfigPath()

	var cfg Config

	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			panic("cannot read config from environment: " + err.Error())
		}

		return &cfg
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	return &cfg
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
