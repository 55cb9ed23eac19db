package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
)

// ErrInvalidTargetURL is returned for target strings that do not contain the
// submission path marker.
var ErrInvalidTargetURL = errors.New("target url does not reference a submission")

const submissionPathMarker = "/comments/"

// SubmissionIDFromURL extracts the submission id from a post URL, i.e.
// "abc123" from "https://www.reddit.com/r/golang/comments/abc123/title/".
func SubmissionIDFromURL(target string) (string, error) {
	_, after, found := strings.Cut(target, submissionPathMarker)
	if !found {
		return "", ErrInvalidTargetURL
	}

	id, _, _ := strings.Cut(after, "/")
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrInvalidTargetURL
	}

	return id, nil
}

type commentData struct {
	Things []struct {
		Data struct {
			ID        string `json:"id"`
			Name      string `json:"name"`
			Permalink string `json:"permalink"`
		} `json:"data"`
	} `json:"things"`
}

// Comment posts a top level comment on a submission.
func (c *Client) Comment(ctx context.Context, submissionID, text string) (*Submission, error) {
	return c.commentOn(ctx, "t3_"+strings.TrimPrefix(submissionID, "t3_"), text)
}

// Reply posts a reply to an existing comment.
func (c *Client) Reply(ctx context.Context, commentID, text string) (*Submission, error) {
	return c.commentOn(ctx, "t1_"+strings.TrimPrefix(commentID, "t1_"), text)
}

func (c *Client) commentOn(ctx context.Context, thingID, text string) (*Submission, error) {
	form := url.Values{}
	form.Set("thing_id", thingID)
	form.Set("text", text)

	envelope, err := c.postForm(ctx, "/api/comment", form)
	if err != nil {
		return nil, err
	}

	var data commentData
	if len(envelope.JSON.Data) > 0 {
		if err = json.Unmarshal(envelope.JSON.Data, &data); err != nil {
			return nil, err
		}
	}

	submission := &Submission{}
	if len(data.Things) > 0 {
		submission.ID = data.Things[0].Data.ID
		submission.Name = data.Things[0].Data.Name
		submission.Permalink = data.Things[0].Data.Permalink
	}

	return submission, nil
}
