package reddit

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

type (
	// StatusError is a non-2xx response from the Reddit API. Reason carries
	// the "reason" field of the JSON error body when present, which is how
	// Reddit distinguishes a private subreddit from a plain permission error.
	StatusError struct {
		StatusCode int
		Reason     string
		Message    string
	}

	// APIErrorItem is a single entry of the json.errors batch Reddit returns
	// for otherwise-200 responses, e.g. ["INVALID_FLAIR_TEMPLATE_ID", "...", "flair_id"].
	APIErrorItem struct {
		Code    string
		Message string
		Field   string
	}

	// APIError is the full error batch of a json-mode API response.
	APIError struct {
		Items []APIErrorItem
	}

	// RedirectError indicates the API answered with a redirect, which Reddit
	// uses for subreddits that do not exist or were merged/renamed.
	RedirectError struct {
		Location string
	}

	RateLimitError struct {
		Message           string
		SecondsUntilReset int
	}
)

func (e *StatusError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("reddit: status %d (%s)", e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("reddit: status %d", e.StatusCode)
}

func (e *APIError) Error() string {
	if len(e.Items) == 0 {
		return "reddit: api error"
	}
	return fmt.Sprintf("reddit: %s: %s", e.Items[0].Code, e.Items[0].Message)
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("reddit: redirected to %s", e.Location)
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// statusError decodes the error body of a non-2xx response into a StatusError.
func statusError(resp *http.Response) error {
	if resp.StatusCode == http.StatusTooManyRequests {
		rlErr := &RateLimitError{Message: "rate limit exceeded"}
		if reset := resp.Header.Get("X-RateLimit-Reset"); reset != "" {
			if seconds, err := strconv.Atoi(reset); err == nil {
				rlErr.SecondsUntilReset = seconds
			}
		}
		return rlErr
	}

	serr := &StatusError{StatusCode: resp.StatusCode}

	var body struct {
		Reason  string `json:"reason"`
		Message string `json:"message"`
	}
	if raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16)); err == nil {
		if err = json.Unmarshal(raw, &body); err == nil {
			serr.Reason = body.Reason
			serr.Message = body.Message
		}
	}

	return serr
}

// jsonResponse is the envelope of api_type=json endpoints (/api/submit,
// /api/comment). Errors come as an array of [code, message, field] triples.
type jsonResponse struct {
	JSON struct {
		Errors [][]string      `json:"errors"`
		Data   json.RawMessage `json:"data"`
	} `json:"json"`
}

func (r *jsonResponse) err() error {
	if len(r.JSON.Errors) == 0 {
		return nil
	}

	apiErr := &APIError{Items: make([]APIErrorItem, 0, len(r.JSON.Errors))}
	for _, raw := range r.JSON.Errors {
		var item APIErrorItem
		if len(raw) > 0 {
			item.Code = raw[0]
		}
		if len(raw) > 1 {
			item.Message = raw[1]
		}
		if len(raw) > 2 {
			item.Field = raw[2]
		}
		apiErr.Items = append(apiErr.Items, item)
	}
	return apiErr
}

// IsRedirect reports whether err stems from the API redirecting the request.
func IsRedirect(err error) bool {
	var redirectErr *RedirectError
	return errors.As(err, &redirectErr)
}
