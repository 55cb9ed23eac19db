package v1

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/growthic-inc/growthic-reddit/common/outcome"
	"github.com/growthic-inc/growthic-reddit/common/reddit"
	"github.com/growthic-inc/growthic-reddit/services/app/accounts"
	"github.com/growthic-inc/growthic-reddit/services/app/poster"
	"github.com/growthic-inc/growthic-reddit/services/app/scheduler"
)

// writeError maps service failures onto HTTP statuses. Precondition failures
// are client errors; classified remote failures carry their kind so the
// dashboard can render them distinctly.
func writeError(w http.ResponseWriter, err error) {
	type errorBody struct {
		Error string `json:"error"`
		Kind  string `json:"kind,omitempty"`
	}

	var (
		status = http.StatusInternalServerError
		body   = errorBody{Error: err.Error()}
	)

	switch {
	case errors.Is(err, poster.ErrMissingField),
		errors.Is(err, poster.ErrAmbiguousContentKind),
		errors.Is(err, poster.ErrMissingAsset),
		errors.Is(err, scheduler.ErrEmptyComment),
		errors.Is(err, reddit.ErrInvalidTargetURL),
		errors.Is(err, accounts.ErrInvalidOrdinal):
		status = http.StatusBadRequest
	default:
		var classified *outcome.Error
		if errors.As(err, &classified) {
			body.Kind = string(classified.Kind)
			switch classified.Kind {
			case outcome.KindForbidden, outcome.KindRestrictedAccess:
				status = http.StatusForbidden
			case outcome.KindNotFound:
				status = http.StatusNotFound
			case outcome.KindPayloadTooLarge:
				status = http.StatusRequestEntityTooLarge
			case outcome.KindInvalidFlair:
				status = http.StatusUnprocessableEntity
			case outcome.KindTransport, outcome.KindUnclassified:
				status = http.StatusBadGateway
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err = json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("write error response", slog.Any("error", err))
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("write response", slog.Any("error", err))
	}
}
