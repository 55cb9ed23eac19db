package config

import (
	"fmt"
	"testing"
)

func slotEnv(slot int, fields map[string]string) map[string]string {
	env := make(map[string]string, len(fields))
	for k, v := range fields {
		env[fmt.Sprintf("REDDIT_ACCOUNT_%d_%s", slot, k)] = v
	}
	return env
}

func fullSlot(slot int, username string) map[string]string {
	return slotEnv(slot, map[string]string{
		"CLIENT_ID":     "id",
		"CLIENT_SECRET": "secret",
		"USERNAME":      username,
		"PASSWORD":      "pw",
		"USER_AGENT":    "agent/1.0",
	})
}

func lookupFrom(envs ...map[string]string) func(string) string {
	merged := make(map[string]string)
	for _, env := range envs {
		for k, v := range env {
			merged[k] = v
		}
	}
	return func(key string) string { return merged[key] }
}

func TestDiscoverAccounts_CompleteSlotsOnly(t *testing.T) {
	partial := slotEnv(2, map[string]string{
		"CLIENT_ID": "id",
		"USERNAME":  "half-configured",
	})

	accounts := discoverAccounts(lookupFrom(fullSlot(1, "alpha"), partial, fullSlot(3, "gamma")))

	if len(accounts) != 2 {
		t.Fatalf("got %d accounts, want 2", len(accounts))
	}
	if accounts[0].Username != "alpha" || accounts[1].Username != "gamma" {
		t.Errorf("got order %q, %q; want alpha, gamma", accounts[0].Username, accounts[1].Username)
	}
}

func TestDiscoverAccounts_ScanOrder(t *testing.T) {
	accounts := discoverAccounts(lookupFrom(fullSlot(7, "seventh"), fullSlot(3, "third"), fullSlot(12, "twelfth")))

	if len(accounts) != 3 {
		t.Fatalf("got %d accounts, want 3", len(accounts))
	}
	want := []string{"third", "seventh", "twelfth"}
	for i, username := range want {
		if accounts[i].Username != username {
			t.Errorf("accounts[%d].Username = %q, want %q", i, accounts[i].Username, username)
		}
	}
}

func TestDiscoverAccounts_LegacyFallback(t *testing.T) {
	legacy := map[string]string{
		"REDDIT_CLIENT_ID":     "id",
		"REDDIT_CLIENT_SECRET": "secret",
		"REDDIT_USERNAME":      "legacy",
		"REDDIT_PASSWORD":      "pw",
		"REDDIT_USER_AGENT":    "agent/1.0",
	}

	accounts := discoverAccounts(lookupFrom(legacy))
	if len(accounts) != 1 {
		t.Fatalf("got %d accounts, want 1", len(accounts))
	}
	if accounts[0].Username != "legacy" {
		t.Errorf("got %q, want legacy", accounts[0].Username)
	}
}

func TestDiscoverAccounts_LegacyIgnoredWhenIndexedSlotExists(t *testing.T) {
	legacy := map[string]string{
		"REDDIT_CLIENT_ID":     "id",
		"REDDIT_CLIENT_SECRET": "secret",
		"REDDIT_USERNAME":      "legacy",
		"REDDIT_PASSWORD":      "pw",
		"REDDIT_USER_AGENT":    "agent/1.0",
	}

	accounts := discoverAccounts(lookupFrom(fullSlot(1, "indexed"), legacy))
	if len(accounts) != 1 {
		t.Fatalf("got %d accounts, want 1", len(accounts))
	}
	if accounts[0].Username != "indexed" {
		t.Errorf("got %q, want indexed", accounts[0].Username)
	}
}

func TestDiscoverAccounts_Empty(t *testing.T) {
	accounts := discoverAccounts(func(string) string { return "" })
	if len(accounts) != 0 {
		t.Fatalf("got %d accounts, want 0", len(accounts))
	}
}
