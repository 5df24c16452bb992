package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmoreira/tg-focus-coach/pkg/logger"
)

type Config struct {
	Database  DatabaseConfig  `json:"database"`
	Telegram  TelegramConfig  `json:"telegram"`
	Logging   LoggingConfig   `json:"logging"`
	Challenge ChallengeConfig `json:"challenge"`
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	Port     int    `json:"port"`
	SSLMode  string `json:"sslmode"`
}

type TelegramConfig struct {
	Token string `json:"token"`
}

type LoggingConfig struct {
	Level     string `json:"level"`
	File      string `json:"file"`
	GormLevel string `json:"gorm_level"`
}

// ChallengeConfig carries the group-challenge settings. Dates are
// calendar days (YYYY-MM-DD) interpreted in Timezone.
type ChallengeConfig struct {
	GroupChatID  int64   `json:"group_chat_id"`
	AdminUserIDs []int64 `json:"admin_user_ids"`
	Timezone     string  `json:"timezone"`
	Epoch        string  `json:"epoch"`
	FinalDate    string  `json:"final_date"`
}

const (
	defaultTimezone  = "America/Sao_Paulo"
	defaultEpoch     = "2025-10-01"
	defaultFinalDate = "2026-12-31"
)

var AppConfig Config

var (
	location *time.Location
	epochDay time.Time
	finalDay time.Time
	adminSet map[int64]struct{}
)

func LoadConfig(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		logger.Error("failed to open config file", "error", err)
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&AppConfig); err != nil {
		logger.Error("failed to decode config file", "error", err)
		return err
	}

	return Validate()
}

// Validate checks the loaded configuration and caches the parsed
// timezone and challenge dates. It must succeed before anything else
// touches the challenge settings.
func Validate() error {
	cfg := &AppConfig

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is required")
	}
	if cfg.Challenge.GroupChatID == 0 {
		return fmt.Errorf("challenge.group_chat_id is required")
	}
	for _, id := range cfg.Challenge.AdminUserIDs {
		if id == 0 {
			return fmt.Errorf("challenge.admin_user_ids contains a zero id")
		}
	}

	if cfg.Challenge.Timezone == "" {
		cfg.Challenge.Timezone = defaultTimezone
	}
	loc, err := time.LoadLocation(cfg.Challenge.Timezone)
	if err != nil {
		return fmt.Errorf("challenge.timezone: %w", err)
	}

	if cfg.Challenge.Epoch == "" {
		cfg.Challenge.Epoch = defaultEpoch
	}
	epoch, err := time.ParseInLocation("2006-01-02", cfg.Challenge.Epoch, loc)
	if err != nil {
		return fmt.Errorf("challenge.epoch: %w", err)
	}

	if cfg.Challenge.FinalDate == "" {
		cfg.Challenge.FinalDate = defaultFinalDate
	}
	final, err := time.ParseInLocation("2006-01-02", cfg.Challenge.FinalDate, loc)
	if err != nil {
		return fmt.Errorf("challenge.final_date: %w", err)
	}
	if !epoch.Before(final) {
		return fmt.Errorf("challenge.epoch %s must precede challenge.final_date %s",
			cfg.Challenge.Epoch, cfg.Challenge.FinalDate)
	}

	location = loc
	epochDay = epoch
	finalDay = final
	adminSet = make(map[int64]struct{}, len(cfg.Challenge.AdminUserIDs))
	for _, id := range cfg.Challenge.AdminUserIDs {
		adminSet[id] = struct{}{}
	}
	return nil
}

// Location is the single operating timezone for all wall-clock math.
func Location() *time.Location {
	if location == nil {
		return time.UTC
	}
	return location
}

// Epoch is the fixed start of the first challenge cycle.
func Epoch() time.Time {
	return epochDay
}

// FinalDate is the terminal day of the challenge; no cycle starts after it.
func FinalDate() time.Time {
	return finalDay
}

func IsAdmin(userID int64) bool {
	_, ok := adminSet[userID]
	return ok
}
