package v1

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/growthic-inc/growthic-reddit/services/app/poster"
)

type PostHandler struct {
	postService poster.Servicer
	validator   *validator.Validate
}

func NewPostHandler(postService poster.Servicer, validator *validator.Validate) *PostHandler {
	return &PostHandler{
		postService: postService,
		validator:   validator,
	}
}

func (h *PostHandler) SubmitPost() http.HandlerFunc {
	type request struct {
		Ordinal     int    `json:"ordinal" validate:"required,min=1"`
		Subreddit   string `json:"subreddit" validate:"required"`
		Title       string `json:"title" validate:"required"`
		Body        string `json:"body"`
		URL         string `json:"url" validate:"omitempty,url"`
		ImagePath   string `json:"imagePath"`
		FlairID     string `json:"flairId"`
		FlairText   string `json:"flairText"`
		NSFW        bool   `json:"nsfw"`
		Spoiler     bool   `json:"spoiler"`
		SendReplies bool   `json:"sendReplies"`
	}
	type response struct {
		ID        string `json:"id"`
		Permalink string `json:"permalink"`
		Kind      string `json:"kind"`
		Account   string `json:"account"`
		NSFW      bool   `json:"nsfw"`
		Spoiler   bool   `json:"spoiler"`
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

		res, err := h.postService.Submit(ctx, &poster.SubmitInput{
			Ordinal:     req.Ordinal,
			Subreddit:   req.Subreddit,
			Title:       req.Title,
			Body:        req.Body,
			URL:         req.URL,
			ImagePath:   req.ImagePath,
			FlairID:     req.FlairID,
			FlairText:   req.FlairText,
			NSFW:        req.NSFW,
			Spoiler:     req.Spoiler,
			SendReplies: req.SendReplies,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, response{
			ID:        res.ID,
			Permalink: res.Permalink,
			Kind:      string(res.Kind),
			Account:   res.Account,
			NSFW:      res.NSFW,
			Spoiler:   res.Spoiler,
		})
	}
}

func (h *PostHandler) VerifySubredditGet() http.HandlerFunc {
	type response struct {
		Name        string `json:"name"`
		DisplayName string `json:"displayName"`
		Subscribers int64  `json:"subscribers"`
		Description string `json:"description"`
		NSFW        bool   `json:"nsfw"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		res, err := h.postService.VerifySubreddit(ctx, &poster.VerifySubredditInput{
			Ordinal:   ordinalParam(r),
			Subreddit: chi.URLParam(r, "name"),
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, response{
			Name:        res.Name,
			DisplayName: res.DisplayName,
			Subscribers: res.Subscribers,
			Description: res.Description,
			NSFW:        res.NSFW,
		})
	}
}

func (h *PostHandler) GetFlairsGet() http.HandlerFunc {
	type flair struct {
		ID              string `json:"id"`
		Text            string `json:"text"`
		TextColor       string `json:"textColor"`
		BackgroundColor string `json:"backgroundColor"`
		TextEditable    bool   `json:"textEditable"`
	}
	type response struct {
		Subreddit string   `json:"subreddit"`
		Flairs    []*flair `json:"flairs"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		res, err := h.postService.GetFlairs(ctx, &poster.GetFlairsInput{
			Ordinal:   ordinalParam(r),
			Subreddit: chi.URLParam(r, "name"),
		})
		if err != nil {
			writeError(w, err)
			return
		}

		flairs := make([]*flair, 0, len(res.Flairs))
		for _, f := range res.Flairs {
			flairs = append(flairs, &flair{
				ID:              f.ID,
				Text:            f.Text,
				TextColor:       f.TextColor,
				BackgroundColor: f.BackgroundColor,
				TextEditable:    f.TextEditable,
			})
		}

		writeJSON(w, http.StatusOK, response{
			Subreddit: res.Subreddit,
			Flairs:    flairs,
		})
	}
}

func (h *PostHandler) CommentPost() http.HandlerFunc {
	type request struct {
		Ordinal int    `json:"ordinal" validate:"required,min=1"`
		Text    string `json:"text" validate:"required"`
	}
	type response struct {
		ID        string `json:"id"`
		Permalink string `json:"permalink"`
		Account   string `json:"account"`
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

		res, err := h.postService.Comment(ctx, &poster.CommentInput{
			Ordinal:      req.Ordinal,
			SubmissionID: chi.URLParam(r, "id"),
			Text:         req.Text,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, response{
			ID:        res.ID,
			Permalink: res.Permalink,
			Account:   res.Account,
		})
	}
}

func (h *PostHandler) ReplyPost() http.HandlerFunc {
	type request struct {
		Ordinal int    `json:"ordinal" validate:"required,min=1"`
		Text    string `json:"text" validate:"required"`
	}
	type response struct {
		ID        string `json:"id"`
		Permalink string `json:"permalink"`
		Account   string `json:"account"`
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

		res, err := h.postService.Reply(ctx, &poster.ReplyInput{
			Ordinal:   req.Ordinal,
			CommentID: chi.URLParam(r, "id"),
			Text:      req.Text,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, response{
			ID:        res.ID,
			Permalink: res.Permalink,
			Account:   res.Account,
		})
	}
}

func (h *PostHandler) ListSubmissionsGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		res, err := h.postService.ListSubmissions(ctx, &poster.ListSubmissionsInput{
			Ordinal: ordinalParam(r),
			Limit:   limitParam(r),
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}

func (h *PostHandler) ListCommentsGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		res, err := h.postService.ListComments(ctx, &poster.ListCommentsInput{
			Ordinal:      ordinalParam(r),
			SubmissionID: chi.URLParam(r, "id"),
			Limit:        limitParam(r),
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}

// ordinalParam reads the account ordinal from the query string, defaulting
// to the first account like the original dashboard did.
func ordinalParam(r *http.Request) int {
	if raw := r.URL.Query().Get("account"); raw != "" {
		if ordinal, err := strconv.Atoi(raw); err == nil {
			return ordinal
		}
	}
	return 1
}

func limitParam(r *http.Request) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			return limit
		}
	}
	return 0
}
