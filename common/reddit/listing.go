package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

type (
	Post struct {
		ID         string  `json:"id"`
		Title      string  `json:"title"`
		URL        string  `json:"url"`
		CreatedUTC float64 `json:"created_utc"`
		Subreddit  string  `json:"subreddit"`
		Name       string  `json:"name"`
		NSFW       bool    `json:"over_18"`
		Spoiler    bool    `json:"spoiler"`
		Ups        int     `json:"ups"`
		Downs      int     `json:"downs"`
		Permalink  string  `json:"permalink"`
	}

	CommentSnapshot struct {
		ID         string  `json:"id"`
		Author     string  `json:"author"`
		Body       string  `json:"body"`
		CreatedUTC float64 `json:"created_utc"`
		Ups        int     `json:"ups"`
		Permalink  string  `json:"permalink"`
		Depth      int     `json:"-"`
	}

	SubredditInfo struct {
		Name        string `json:"name"`
		DisplayName string `json:"display_name"`
		Subscribers int64  `json:"subscribers"`
		Description string `json:"public_description"`
		NSFW        bool   `json:"over18"`
	}

	Flair struct {
		ID              string `json:"id"`
		Text            string `json:"text"`
		TextColor       string `json:"text_color"`
		BackgroundColor string `json:"background_color"`
		TextEditable    bool   `json:"text_editable"`
	}

	listing struct {
		Data struct {
			Children []listingChild `json:"children"`
		} `json:"data"`
	}

	listingChild struct {
		Kind string          `json:"kind"`
		Data json.RawMessage `json:"data"`
	}
)

func (p *Post) GetPermalink() string {
	return fmt.Sprintf("https://www.reddit.com%s", p.Permalink)
}

// Subreddit fetches metadata for the named subreddit. An unknown or merged
// subreddit surfaces as a RedirectError, a private one as a 403 StatusError.
func (c *Client) Subreddit(ctx context.Context, name string) (*SubredditInfo, error) {
	var about struct {
		Data SubredditInfo `json:"data"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/r/%s/about", name), nil, &about); err != nil {
		return nil, err
	}
	return &about.Data, nil
}

// LinkFlairs fetches the link flair templates available on a subreddit.
func (c *Client) LinkFlairs(ctx context.Context, subreddit string) ([]*Flair, error) {
	var flairs []*Flair
	if err := c.getJSON(ctx, fmt.Sprintf("/r/%s/api/link_flair_v2", subreddit), nil, &flairs); err != nil {
		return nil, err
	}
	return flairs, nil
}

// Submissions fetches the account's own most recent submissions.
func (c *Client) Submissions(ctx context.Context, limit int) ([]*Post, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var response listing
	if err := c.getJSON(ctx, fmt.Sprintf("/user/%s/submitted", c.username), query, &response); err != nil {
		return nil, err
	}

	posts := make([]*Post, 0, len(response.Data.Children))
	for _, child := range response.Data.Children {
		var post Post
		if err := json.Unmarshal(child.Data, &post); err != nil {
			return nil, err
		}
		posts = append(posts, &post)
	}

	return posts, nil
}

// Comments fetches the comment tree of a submission, flattened depth first.
// "load more" placeholders are dropped rather than resolved.
func (c *Client) Comments(ctx context.Context, submissionID string, limit int) ([]*CommentSnapshot, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	// The endpoint returns a two element array: the submission listing
	// followed by the comment tree listing.
	var listings []listing
	if err := c.getJSON(ctx, fmt.Sprintf("/comments/%s", submissionID), query, &listings); err != nil {
		return nil, err
	}

	if len(listings) < 2 {
		return nil, nil
	}

	var comments []*CommentSnapshot
	if err := flattenComments(listings[1].Data.Children, 0, &comments); err != nil {
		return nil, err
	}

	return comments, nil
}

type commentNode struct {
	CommentSnapshot
	Replies json.RawMessage `json:"replies"`
}

func flattenComments(children []listingChild, depth int, out *[]*CommentSnapshot) error {
	for _, child := range children {
		if child.Kind != "t1" {
			continue
		}

		var node commentNode
		if err := json.Unmarshal(child.Data, &node); err != nil {
			return err
		}

		snapshot := node.CommentSnapshot
		snapshot.Depth = depth
		*out = append(*out, &snapshot)

		// Replies is either the empty string or a nested listing.
		if len(node.Replies) == 0 || string(node.Replies) == `""` {
			continue
		}

		var nested listing
		if err := json.Unmarshal(node.Replies, &nested); err != nil {
			return err
		}
		if err := flattenComments(nested.Data.Children, depth+1, out); err != nil {
			return err
		}
	}
	return nil
}
