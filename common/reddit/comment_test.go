package reddit

import (
	"errors"
	"testing"
)

func TestSubmissionIDFromURL(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"full permalink", "https://www.reddit.com/r/golang/comments/abc123/some_title/", "abc123"},
		{"no trailing segments", "https://reddit.com/r/golang/comments/xyz9", "xyz9"},
		{"old reddit", "https://old.reddit.com/r/test/comments/q1w2e3/t/", "q1w2e3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SubmissionIDFromURL(tt.target)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSubmissionIDFromURL_Invalid(t *testing.T) {
	for _, target := range []string{
		"https://www.reddit.com/r/golang/",
		"not a url",
		"https://www.reddit.com/r/golang/comments/",
		"",
	} {
		if _, err := SubmissionIDFromURL(target); !errors.Is(err, ErrInvalidTargetURL) {
			t.Errorf("SubmissionIDFromURL(%q) = %v, want ErrInvalidTargetURL", target, err)
		}
	}
}
