package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN,required"`
	TelegramDebug    bool   `env:"TELEGRAM_DEBUG" envDefault:"false"`
	AdminUserID      int64  `env:"ADMIN_USER"`

	// Storage
	DatabasePath    string `env:"DATABASE_PATH" envDefault:"data/kazoeru.db"`
	JournalFilePath string `env:"JOURNAL_FILE_PATH" envDefault:"data/journal.jsonl"`

	// Celebration fragments (JSON or YAML)
	PraiseFilePath string `env:"PRAISE_FILE_PATH" envDefault:"praise.json"`

	// Daily activity report, UTC cron expression
	ReportSchedule string `env:"REPORT_SCHEDULE" envDefault:"0 21 * * *"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
