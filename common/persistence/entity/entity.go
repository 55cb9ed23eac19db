package entity

import "time"

type (
	PublishedItem struct {
		ID          int64     `json:"id"`
		PlatformID  string    `json:"platform_id"`
		Permalink   string    `json:"permalink"`
		Kind        string    `json:"kind"`
		Subreddit   string    `json:"subreddit"`
		Title       string    `json:"title"`
		Account     string    `json:"account"`
		PublishedAt time.Time `json:"published_at"`
	}

	RecordPublishedInput struct {
		Item *PublishedItem `json:"item"`
	}

	RecordPublishedOutput struct {
	}

	ListPublishedInput struct {
		Limit int `json:"limit,omitzero"`
	}

	ListPublishedOutput struct {
		Items []*PublishedItem `json:"items"`
	}
)
