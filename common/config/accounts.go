package config

import (
	"fmt"
	"log/slog"
	"os"
)

// MaxAccountSlots is the number of indexed credential slots scanned during
// account discovery.
const MaxAccountSlots = 30

type AccountConfig struct {
	Slot         int
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	UserAgent    string
}

func (c *AccountConfig) complete() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.Username != "" && c.Password != "" && c.UserAgent != ""
}

func (c *AccountConfig) empty() bool {
	return c.ClientID == "" && c.ClientSecret == "" && c.Username == "" && c.Password == "" && c.UserAgent == ""
}

// DiscoverAccounts scans the environment for Reddit account credentials.
// Indexed slots REDDIT_ACCOUNT_{1..30}_* are scanned in order; a slot is
// included only when all five fields are set. Partially filled slots are
// skipped with a warning, never merged with another slot. When no indexed
// slot yields a complete config, the legacy unindexed REDDIT_* slot is
// tried as a fallback. The returned order is slot scan order and becomes
// the pool's ordinal assignment.
func DiscoverAccounts() []*AccountConfig {
	return discoverAccounts(os.Getenv)
}

func discoverAccounts(lookup func(string) string) []*AccountConfig {
	var accounts []*AccountConfig

	for i := 1; i <= MaxAccountSlots; i++ {
		prefix := fmt.Sprintf("REDDIT_ACCOUNT_%d", i)
		cfg := &AccountConfig{
			Slot:         i,
			ClientID:     lookup(prefix + "_CLIENT_ID"),
			ClientSecret: lookup(prefix + "_CLIENT_SECRET"),
			Username:     lookup(prefix + "_USERNAME"),
			Password:     lookup(prefix + "_PASSWORD"),
			UserAgent:    lookup(prefix + "_USER_AGENT"),
		}

		if cfg.complete() {
			accounts = append(accounts, cfg)
		} else if !cfg.empty() {
			slog.Warn("incomplete account configuration, skipping slot", slog.String("slot", prefix))
		}
	}

	if len(accounts) == 0 {
		cfg := &AccountConfig{
			ClientID:     lookup("REDDIT_CLIENT_ID"),
			ClientSecret: lookup("REDDIT_CLIENT_SECRET"),
			Username:     lookup("REDDIT_USERNAME"),
			Password:     lookup("REDDIT_PASSWORD"),
			UserAgent:    lookup("REDDIT_USER_AGENT"),
		}
		if cfg.complete() {
			accounts = append(accounts, cfg)
		}
	}

	slog.Info("account discovery finished", slog.Int("total", len(accounts)))
	return accounts
}
