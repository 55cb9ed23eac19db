package v1

import (
	"errors"
	"net/http"

	"github.com/growthic-inc/growthic-reddit/common/config"
	"github.com/growthic-inc/growthic-reddit/services/app/accounts"
)

type AccountHandler struct {
	pool *accounts.Pool
}

func NewAccountHandler(pool *accounts.Pool) *AccountHandler {
	return &AccountHandler{pool: pool}
}

// LoadAccountsPost discovers credential slots from the environment and
// (re)loads the whole pool. Ordinals may shift across reloads.
func (h *AccountHandler) LoadAccountsPost() http.HandlerFunc {
	type response struct {
		Loaded   []accounts.AccountInfo `json:"loaded"`
		Failures []accounts.LoadFailure `json:"failures,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		result, err := h.pool.Load(ctx, config.DiscoverAccounts())
		if err != nil {
			if errors.Is(err, accounts.ErrNoAccounts) {
				writeJSON(w, http.StatusServiceUnavailable, response{
					Loaded:   result.Loaded,
					Failures: result.Failures,
				})
				return
			}
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, response{
			Loaded:   result.Loaded,
			Failures: result.Failures,
		})
	}
}

func (h *AccountHandler) ListAccountsGet() http.HandlerFunc {
	type response struct {
		Ready    bool                   `json:"ready"`
		Accounts []accounts.AccountInfo `json:"accounts"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, response{
			Ready:    h.pool.Ready(),
			Accounts: h.pool.Accounts(),
		})
	}
}
