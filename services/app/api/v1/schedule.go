package v1

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/growthic-inc/growthic-reddit/services/app/scheduler"
)

type ScheduleHandler struct {
	scheduler *scheduler.Scheduler
	validator *validator.Validate
}

func NewScheduleHandler(scheduler *scheduler.Scheduler, validator *validator.Validate) *ScheduleHandler {
	return &ScheduleHandler{
		scheduler: scheduler,
		validator: validator,
	}
}

func (h *ScheduleHandler) CreateJobPost() http.HandlerFunc {
	type request struct {
		TargetURL string    `json:"targetUrl" validate:"required,url"`
		Text      string    `json:"text" validate:"required"`
		Ordinal   int       `json:"ordinal" validate:"required,min=1"`
		FireAt    time.Time `json:"fireAt" validate:"required"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req request

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if err := h.validator.Struct(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		job, err := h.scheduler.Schedule(ctx, &scheduler.ScheduleInput{
			TargetURL: req.TargetURL,
			Text:      req.Text,
			Ordinal:   req.Ordinal,
			FireAt:    req.FireAt,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, job)
	}
}

func (h *ScheduleHandler) ListJobsGet() http.HandlerFunc {
	type response struct {
		Jobs []scheduler.Job `json:"jobs"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, response{Jobs: h.scheduler.ListPending()})
	}
}

func (h *ScheduleHandler) CancelJobDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid job id", http.StatusBadRequest)
			return
		}

		if !h.scheduler.Cancel(id) {
			http.Error(w, "job not found", http.StatusNotFound)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
