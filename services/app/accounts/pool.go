// Package accounts owns the multi-account session pool. It is the only
// component holding authenticated session handles; everything else refers to
// accounts by their 1-based ordinal and re-resolves on each use.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/growthic-inc/growthic-reddit/common/config"
	"github.com/growthic-inc/growthic-reddit/common/reddit"
	"golang.org/x/sync/errgroup"
)

// authConcurrency bounds parallel account authentication during load.
const authConcurrency = 4

type (
	// AuthenticateFunc dials the platform for one credential set.
	AuthenticateFunc func(ctx context.Context, cfg *config.AccountConfig) (reddit.Session, error)

	// Account pairs a stable ordinal with an authenticated session. Ordinals
	// follow discovery order and hold for the process lifetime, until the
	// next Load fully replaces the pool.
	Account struct {
		Ordinal  int
		Username string
		Session  reddit.Session
	}

	AccountInfo struct {
		Ordinal  int    `json:"ordinal"`
		Username string `json:"username"`
	}

	LoadFailure struct {
		Username string `json:"username"`
		Error    string `json:"error"`
	}

	LoadResult struct {
		Loaded   []AccountInfo `json:"loaded"`
		Failures []LoadFailure `json:"failures,omitempty"`
	}

	Pool struct {
		authenticate AuthenticateFunc

		mu       sync.RWMutex
		ready    bool
		accounts []*Account
	}
)

var (
	// ErrInvalidOrdinal is returned when the pool is not ready or the
	// ordinal falls outside [1, loaded count].
	ErrInvalidOrdinal = errors.New("invalid account ordinal")
	// ErrNoAccounts is returned by Load when not a single candidate
	// authenticates.
	ErrNoAccounts = errors.New("no accounts could be loaded")
)

// DialReddit is the production AuthenticateFunc.
func DialReddit(ctx context.Context, cfg *config.AccountConfig) (reddit.Session, error) {
	return reddit.Dial(ctx, cfg.ClientID, cfg.ClientSecret, cfg.Username, cfg.Password, cfg.UserAgent)
}

func New(authenticate AuthenticateFunc) *Pool {
	if authenticate == nil {
		authenticate = DialReddit
	}
	return &Pool{authenticate: authenticate}
}

// Load authenticates every discovered config and probes each session by
// fetching its own identity. Authentication runs on a bounded worker group;
// ordinals are still assigned strictly in discovery order. Load succeeds iff
// at least one account came up, and fully replaces any previous pool state.
func (p *Pool) Load(ctx context.Context, configs []*config.AccountConfig) (*LoadResult, error) {
	type slot struct {
		account *Account
		failure *LoadFailure
	}

	slots := make([]slot, len(configs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(authConcurrency)

	for i, cfg := range configs {
		g.Go(func() error {
			session, err := p.authenticate(gctx, cfg)
			if err != nil {
				slots[i].failure = &LoadFailure{
					Username: cfg.Username,
					Error:    fmt.Sprintf("authentication failed: %v", err),
				}
				slog.Error("failed to load account", slog.String("username", cfg.Username), slog.Any("error", err))
				return nil
			}

			me, err := session.Me(gctx)
			if err != nil {
				slots[i].failure = &LoadFailure{
					Username: cfg.Username,
					Error:    fmt.Sprintf("liveness probe failed: %v", err),
				}
				slog.Error("account liveness probe failed", slog.String("username", cfg.Username), slog.Any("error", err))
				return nil
			}

			slots[i].account = &Account{
				Username: me.Name,
				Session:  session,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &LoadResult{}
	var loaded []*Account

	for _, s := range slots {
		if s.failure != nil {
			result.Failures = append(result.Failures, *s.failure)
			continue
		}
		if s.account == nil {
			continue
		}
		s.account.Ordinal = len(loaded) + 1
		loaded = append(loaded, s.account)
		result.Loaded = append(result.Loaded, AccountInfo{
			Ordinal:  s.account.Ordinal,
			Username: s.account.Username,
		})
		slog.Info("loaded account", slog.Int("ordinal", s.account.Ordinal), slog.String("username", s.account.Username))
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(loaded) == 0 {
		p.ready = false
		p.accounts = nil
		return result, ErrNoAccounts
	}

	p.accounts = loaded
	p.ready = true

	return result, nil
}

// Resolve returns the account with the given ordinal. It fails with
// ErrInvalidOrdinal for a not-ready pool or an out-of-range ordinal, never
// panicking.
func (p *Pool) Resolve(ordinal int) (*Account, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.ready || ordinal < 1 || ordinal > len(p.accounts) {
		return nil, fmt.Errorf("%w: %d (pool has %d accounts)", ErrInvalidOrdinal, ordinal, len(p.accounts))
	}

	return p.accounts[ordinal-1], nil
}

// Accounts returns a snapshot of the loaded accounts in ordinal order.
func (p *Pool) Accounts() []AccountInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()

	infos := make([]AccountInfo, 0, len(p.accounts))
	for _, account := range p.accounts {
		infos = append(infos, AccountInfo{Ordinal: account.Ordinal, Username: account.Username})
	}
	return infos
}

// Ready reports whether the last Load succeeded.
func (p *Pool) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ready
}
