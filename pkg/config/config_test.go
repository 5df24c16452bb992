package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"telegram": {"token": "test-token"},
		"challenge": {"group_chat_id": -1001, "admin_user_ids": [10, 20]}
	}`)

	if err := LoadConfig(path); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if AppConfig.Challenge.Timezone != defaultTimezone {
		t.Errorf("expected default timezone, got %q", AppConfig.Challenge.Timezone)
	}
	if Location().String() != defaultTimezone {
		t.Errorf("expected cached location %q, got %q", defaultTimezone, Location())
	}
	if Epoch().Year() != 2025 || Epoch().Month() != 10 || Epoch().Day() != 1 {
		t.Errorf("unexpected epoch: %v", Epoch())
	}
	if !IsAdmin(10) || !IsAdmin(20) || IsAdmin(30) {
		t.Errorf("admin set not built correctly")
	}
}

func TestLoadConfigMissingToken(t *testing.T) {
	path := writeConfig(t, `{"challenge": {"group_chat_id": -1001}}`)
	if err := LoadConfig(path); err == nil {
		t.Fatal("expected error for missing token")
	}
}

func TestLoadConfigMissingChatID(t *testing.T) {
	path := writeConfig(t, `{"telegram": {"token": "x"}}`)
	if err := LoadConfig(path); err == nil {
		t.Fatal("expected error for missing group chat id")
	}
}

func TestLoadConfigBadTimezone(t *testing.T) {
	path := writeConfig(t, `{
		"telegram": {"token": "x"},
		"challenge": {"group_chat_id": -1001, "timezone": "Mars/Olympus"}
	}`)
	if err := LoadConfig(path); err == nil {
		t.Fatal("expected error for bad timezone")
	}
}

func TestLoadConfigEpochAfterFinalDate(t *testing.T) {
	path := writeConfig(t, `{
		"telegram": {"token": "x"},
		"challenge": {
			"group_chat_id": -1001,
			"epoch": "2027-01-01",
			"final_date": "2026-12-31"
		}
	}`)
	if err := LoadConfig(path); err == nil {
		t.Fatal("expected error for epoch after final date")
	}
}
