package accounts

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/growthic-inc/growthic-reddit/common/config"
	"github.com/growthic-inc/growthic-reddit/common/reddit"
)

type stubSession struct {
	reddit.Session
	username string
	meErr    error
}

func (s *stubSession) Me(ctx context.Context) (*reddit.Identity, error) {
	if s.meErr != nil {
		return nil, s.meErr
	}
	return &reddit.Identity{ID: "t2_" + s.username, Name: s.username}, nil
}

func configsFor(usernames ...string) []*config.AccountConfig {
	configs := make([]*config.AccountConfig, 0, len(usernames))
	for i, username := range usernames {
		configs = append(configs, &config.AccountConfig{
			Slot:         i + 1,
			ClientID:     "id",
			ClientSecret: "secret",
			Username:     username,
			Password:     "pw",
			UserAgent:    "agent/1.0",
		})
	}
	return configs
}

func authStub(failing map[string]error) AuthenticateFunc {
	return func(ctx context.Context, cfg *config.AccountConfig) (reddit.Session, error) {
		if err, ok := failing[cfg.Username]; ok {
			return nil, err
		}
		return &stubSession{username: cfg.Username}, nil
	}
}

func TestPoolLoad_OrdinalsFollowDiscoveryOrder(t *testing.T) {
	pool := New(authStub(nil))

	result, err := pool.Load(context.Background(), configsFor("alpha", "beta", "gamma"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(result.Loaded) != 3 {
		t.Fatalf("loaded %d accounts, want 3", len(result.Loaded))
	}

	for ordinal, want := range map[int]string{1: "alpha", 2: "beta", 3: "gamma"} {
		account, err := pool.Resolve(ordinal)
		if err != nil {
			t.Fatalf("Resolve(%d): %v", ordinal, err)
		}
		if account.Username != want {
			t.Errorf("Resolve(%d).Username = %q, want %q", ordinal, account.Username, want)
		}
	}
}

func TestPoolLoad_FailedAccountSkippedOrdinalsCompact(t *testing.T) {
	pool := New(authStub(map[string]error{"beta": errors.New("invalid_grant")}))

	result, err := pool.Load(context.Background(), configsFor("alpha", "beta", "gamma"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(result.Loaded) != 2 {
		t.Fatalf("loaded %d, want 2", len(result.Loaded))
	}
	if len(result.Failures) != 1 || result.Failures[0].Username != "beta" {
		t.Fatalf("failures = %+v, want one for beta", result.Failures)
	}

	second, err := pool.Resolve(2)
	if err != nil {
		t.Fatalf("Resolve(2): %v", err)
	}
	if second.Username != "gamma" {
		t.Errorf("ordinal 2 = %q, want gamma (compacted past failed beta)", second.Username)
	}
}

func TestPoolLoad_LivenessProbeFailureDropsAccount(t *testing.T) {
	authenticate := func(ctx context.Context, cfg *config.AccountConfig) (reddit.Session, error) {
		s := &stubSession{username: cfg.Username}
		if cfg.Username == "dead" {
			s.meErr = errors.New("401 unauthorized")
		}
		return s, nil
	}

	pool := New(authenticate)
	result, err := pool.Load(context.Background(), configsFor("live", "dead"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(result.Loaded) != 1 || result.Loaded[0].Username != "live" {
		t.Fatalf("loaded = %+v, want only live", result.Loaded)
	}
	if len(result.Failures) != 1 {
		t.Fatalf("failures = %+v, want one", result.Failures)
	}
}

func TestPoolLoad_AllFail(t *testing.T) {
	pool := New(authStub(map[string]error{"only": errors.New("nope")}))

	_, err := pool.Load(context.Background(), configsFor("only"))
	if !errors.Is(err, ErrNoAccounts) {
		t.Fatalf("got %v, want ErrNoAccounts", err)
	}
	if pool.Ready() {
		t.Error("pool must not be ready after a failed load")
	}
	if _, err = pool.Resolve(1); !errors.Is(err, ErrInvalidOrdinal) {
		t.Errorf("Resolve on unready pool = %v, want ErrInvalidOrdinal", err)
	}
}

func TestPoolResolve_Bounds(t *testing.T) {
	pool := New(authStub(nil))
	if _, err := pool.Load(context.Background(), configsFor("alpha", "beta")); err != nil {
		t.Fatalf("Load: %v", err)
	}

	for _, ordinal := range []int{0, -1, 3} {
		if _, err := pool.Resolve(ordinal); !errors.Is(err, ErrInvalidOrdinal) {
			t.Errorf("Resolve(%d) = %v, want ErrInvalidOrdinal", ordinal, err)
		}
	}
}

func TestPoolLoad_ReplacesPriorState(t *testing.T) {
	pool := New(authStub(nil))
	if _, err := pool.Load(context.Background(), configsFor("alpha", "beta")); err != nil {
		t.Fatalf("first Load: %v", err)
	}

	if _, err := pool.Load(context.Background(), configsFor("gamma")); err != nil {
		t.Fatalf("second Load: %v", err)
	}

	account, err := pool.Resolve(1)
	if err != nil {
		t.Fatalf("Resolve(1): %v", err)
	}
	if account.Username != "gamma" {
		t.Errorf("ordinal 1 = %q after reload, want gamma", account.Username)
	}
	if _, err = pool.Resolve(2); !errors.Is(err, ErrInvalidOrdinal) {
		t.Errorf("stale ordinal survived reload: %v", err)
	}
}

func TestPoolLoad_ManyAccounts(t *testing.T) {
	usernames := make([]string, 0, 12)
	for i := 1; i <= 12; i++ {
		usernames = append(usernames, fmt.Sprintf("user%02d", i))
	}

	pool := New(authStub(nil))
	result, err := pool.Load(context.Background(), configsFor(usernames...))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(result.Loaded) != 12 {
		t.Fatalf("loaded %d, want 12", len(result.Loaded))
	}

	// Parallel authentication must not disturb discovery-order ordinals.
	for i, username := range usernames {
		account, err := pool.Resolve(i + 1)
		if err != nil {
			t.Fatalf("Resolve(%d): %v", i+1, err)
		}
		if account.Username != username {
			t.Errorf("ordinal %d = %q, want %q", i+1, account.Username, username)
		}
	}
}
