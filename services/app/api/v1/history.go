package v1

import (
	"net/http"
	"strconv"

	"github.com/growthic-inc/growthic-reddit/common/persistence"
	"github.com/growthic-inc/growthic-reddit/common/persistence/entity"
)

type HistoryHandler struct {
	history persistence.Persistence
}

func NewHistoryHandler(history persistence.Persistence) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// ListHistoryGet returns the most recent publish ledger entries, newest first.
func (h *HistoryHandler) ListHistoryGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil {
				limit = parsed
			}
		}

		res, err := h.history.ListPublished(ctx, &entity.ListPublishedInput{Limit: limit})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}
