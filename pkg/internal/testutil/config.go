package testutil

import (
	"testing"

	"github.com/dmoreira/tg-focus-coach/pkg/config"
)

// SetupChallengeConfig installs a validated challenge configuration for
// the duration of the test. Dates match the regression fixtures used
// across the cycle and scoring tests.
func SetupChallengeConfig(t *testing.T) {
	t.Helper()
	prev := config.AppConfig
	config.AppConfig = config.Config{
		Telegram: config.TelegramConfig{Token: "test-token"},
		Challenge: config.ChallengeConfig{
			GroupChatID:  -100900,
			AdminUserIDs: []int64{900},
			Timezone:     "America/Sao_Paulo",
			Epoch:        "2025-10-01",
			FinalDate:    "2026-12-31",
		},
	}
	if err := config.Validate(); err != nil {
		t.Fatalf("failed to validate test config: %v", err)
	}
	t.Cleanup(func() {
		config.AppConfig = prev
	})
}
