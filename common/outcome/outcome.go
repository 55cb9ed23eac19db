// Package outcome maps the heterogeneous failures of the Reddit API onto a
// closed set of kinds so the submitter and the comment scheduler report
// failures identically.
package outcome

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/growthic-inc/growthic-reddit/common/reddit"
)

type Kind string

const (
	// KindUnclassified is the catch-all for failures no other kind matches.
	// It always carries the original message.
	KindUnclassified Kind = "unclassified"
	// KindForbidden means the account lacks permission on the destination.
	KindForbidden Kind = "forbidden"
	// KindPayloadTooLarge means the platform rejected the content size.
	KindPayloadTooLarge Kind = "payload_too_large"
	// KindInvalidFlair covers a bad flair template id, whether signalled
	// directly or buried in a generic API error batch.
	KindInvalidFlair Kind = "invalid_flair"
	// KindNotFound means the destination does not exist or was merged or
	// renamed (the platform signals the latter with a redirect).
	KindNotFound Kind = "not_found"
	// KindRestrictedAccess means the destination exists but is private.
	KindRestrictedAccess Kind = "restricted_access"
	// KindTransport is a network level failure before any API answer.
	KindTransport Kind = "transport"
)

// Error is a classified remote failure. It wraps the original error so the
// raw platform message is never lost.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

const invalidFlairTemplateID = "INVALID_FLAIR_TEMPLATE_ID"

// Classify maps a raw platform error to a classified Error. The mapping is
// total: anything unrecognized becomes KindUnclassified with the original
// message. Context cancellation is passed through unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	return &Error{
		Kind:    classify(err),
		Message: err.Error(),
		cause:   err,
	}
}

func classify(err error) Kind {
	var redirectErr *reddit.RedirectError
	if errors.As(err, &redirectErr) {
		return KindNotFound
	}

	var statusErr *reddit.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusForbidden:
			// Reddit tags private and quarantined subreddits with a reason
			// on the 403 body; a bare 403 is a plain permission failure.
			switch statusErr.Reason {
			case "private", "quarantined", "gated":
				return KindRestrictedAccess
			}
			return KindForbidden
		case http.StatusNotFound:
			return KindNotFound
		case http.StatusRequestEntityTooLarge:
			return KindPayloadTooLarge
		}
		return KindUnclassified
	}

	var apiErr *reddit.APIError
	if errors.As(err, &apiErr) {
		// Scan the whole batch before giving up; the invalid-flair tag can
		// sit behind unrelated items.
		for _, item := range apiErr.Items {
			if item.Code == invalidFlairTemplateID {
				return KindInvalidFlair
			}
		}
		for _, item := range apiErr.Items {
			switch item.Code {
			case "SUBREDDIT_NOEXIST":
				return KindNotFound
			case "SUBREDDIT_NOTALLOWED", "USER_BLOCKED":
				return KindForbidden
			case "TOO_LONG":
				return KindPayloadTooLarge
			}
		}
		return KindUnclassified
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindTransport
	}

	return KindUnclassified
}

// KindOf returns the classified kind of err, or KindUnclassified when err is
// not a classified Error.
func KindOf(err error) Kind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return KindUnclassified
}
