package poster

import (
	"time"
)

type (
	PostKind string

	SubmitInput struct {
		Ordinal   int    `json:"ordinal" validate:"required,min=1"`
		Subreddit string `json:"subreddit" validate:"required"`
		Title     string `json:"title" validate:"required"`
		// Body, URL and ImagePath are mutually exclusive content kinds.
		// All empty means a text post with an empty body.
		Body        string `json:"body,omitzero"`
		URL         string `json:"url,omitzero"`
		ImagePath   string `json:"imagePath,omitzero"`
		FlairID     string `json:"flairId,omitzero"`
		FlairText   string `json:"flairText,omitzero"`
		NSFW        bool   `json:"nsfw"`
		Spoiler     bool   `json:"spoiler"`
		SendReplies bool   `json:"sendReplies"`
	}

	// SubmitOutput is immutable once produced; ID and Permalink are taken
	// verbatim from the platform response.
	SubmitOutput struct {
		ID        string   `json:"id"`
		Permalink string   `json:"permalink"`
		Kind      PostKind `json:"kind"`
		Account   string   `json:"account"`
		NSFW      bool     `json:"nsfw"`
		Spoiler   bool     `json:"spoiler"`
	}

	VerifySubredditInput struct {
		Ordinal   int    `json:"ordinal" validate:"required,min=1"`
		Subreddit string `json:"subreddit" validate:"required"`
	}

	VerifySubredditOutput struct {
		Name        string `json:"name"`
		DisplayName string `json:"displayName"`
		Subscribers int64  `json:"subscribers"`
		Description string `json:"description"`
		NSFW        bool   `json:"nsfw"`
	}

	GetFlairsInput struct {
		Ordinal   int    `json:"ordinal" validate:"required,min=1"`
		Subreddit string `json:"subreddit" validate:"required"`
	}

	FlairTemplate struct {
		ID              string `json:"id"`
		Text            string `json:"text"`
		TextColor       string `json:"textColor"`
		BackgroundColor string `json:"backgroundColor"`
		TextEditable    bool   `json:"textEditable"`
	}

	GetFlairsOutput struct {
		Subreddit string           `json:"subreddit"`
		Flairs    []*FlairTemplate `json:"flairs"`
	}

	CommentInput struct {
		Ordinal      int    `json:"ordinal" validate:"required,min=1"`
		SubmissionID string `json:"submissionId" validate:"required"`
		Text         string `json:"text" validate:"required"`
	}

	CommentOutput struct {
		ID        string `json:"id"`
		Permalink string `json:"permalink"`
		Account   string `json:"account"`
	}

	ReplyInput struct {
		Ordinal   int    `json:"ordinal" validate:"required,min=1"`
		CommentID string `json:"commentId" validate:"required"`
		Text      string `json:"text" validate:"required"`
	}

	ReplyOutput struct {
		ID        string `json:"id"`
		Permalink string `json:"permalink"`
		Account   string `json:"account"`
	}

	ListSubmissionsInput struct {
		Ordinal int `json:"ordinal" validate:"required,min=1"`
		Limit   int `json:"limit,omitzero"`
	}

	PostSnapshot struct {
		ID        string    `json:"id"`
		Title     string    `json:"title"`
		URL       string    `json:"url"`
		Subreddit string    `json:"subreddit"`
		Permalink string    `json:"permalink"`
		NSFW      bool      `json:"nsfw"`
		Spoiler   bool      `json:"spoiler"`
		Ups       int       `json:"ups"`
		CreatedAt time.Time `json:"createdAt"`
	}

	ListSubmissionsOutput struct {
		Posts []*PostSnapshot `json:"posts"`
	}

	ListCommentsInput struct {
		Ordinal      int    `json:"ordinal" validate:"required,min=1"`
		SubmissionID string `json:"submissionId" validate:"required"`
		Limit        int    `json:"limit,omitzero"`
	}

	CommentView struct {
		ID        string    `json:"id"`
		Author    string    `json:"author"`
		Body      string    `json:"body"`
		Depth     int       `json:"depth"`
		Ups       int       `json:"ups"`
		Permalink string    `json:"permalink"`
		CreatedAt time.Time `json:"createdAt"`
	}

	ListCommentsOutput struct {
		Comments []*CommentView `json:"comments"`
	}
)

const (
	KindText  PostKind = "text"
	KindLink  PostKind = "link"
	KindImage PostKind = "image"
)
