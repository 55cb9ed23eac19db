// Package poster normalizes the three mutually exclusive content kinds into
// one outbound submission call and classifies the platform's failure
// responses into the shared outcome taxonomy.
package poster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/growthic-inc/growthic-reddit/common/outcome"
	"github.com/growthic-inc/growthic-reddit/common/persistence"
	"github.com/growthic-inc/growthic-reddit/common/persistence/entity"
	"github.com/growthic-inc/growthic-reddit/common/reddit"
	"github.com/growthic-inc/growthic-reddit/services/app/accounts"
)

type (
	Servicer interface {
		Submit(ctx context.Context, in *SubmitInput) (*SubmitOutput, error)
		VerifySubreddit(ctx context.Context, in *VerifySubredditInput) (*VerifySubredditOutput, error)
		GetFlairs(ctx context.Context, in *GetFlairsInput) (*GetFlairsOutput, error)
		Comment(ctx context.Context, in *CommentInput) (*CommentOutput, error)
		Reply(ctx context.Context, in *ReplyInput) (*ReplyOutput, error)
		ListSubmissions(ctx context.Context, in *ListSubmissionsInput) (*ListSubmissionsOutput, error)
		ListComments(ctx context.Context, in *ListCommentsInput) (*ListCommentsOutput, error)
	}

	Service struct {
		pool    *accounts.Pool
		history persistence.Persistence
	}
)

var _ Servicer = (*Service)(nil)

var (
	// ErrMissingField is returned before any network call when ordinal,
	// subreddit or title is absent.
	ErrMissingField = errors.New("missing required field")
	// ErrAmbiguousContentKind is returned when more than one of body, url
	// and image path is populated.
	ErrAmbiguousContentKind = errors.New("provide only one content kind: body, url or image path")
	// ErrMissingAsset is returned when the image path does not reference a
	// readable local file.
	ErrMissingAsset = errors.New("image file not found")
)

// NewService creates the submitter. history may be nil, in which case no
// publish ledger is kept.
func NewService(pool *accounts.Pool, history persistence.Persistence) (Servicer, error) {
	return &Service{
		pool:    pool,
		history: history,
	}, nil
}

// Submit validates the request, dispatches exactly one of the three
// submission paths and classifies any remote failure. Validation order:
// required fields, ordinal resolution, content kind exclusivity, local
// asset existence. All of it happens before any network call.
func (s *Service) Submit(ctx context.Context, in *SubmitInput) (*SubmitOutput, error) {
	switch {
	case in.Ordinal == 0:
		return nil, fmt.Errorf("%w: ordinal", ErrMissingField)
	case in.Subreddit == "":
		return nil, fmt.Errorf("%w: subreddit", ErrMissingField)
	case in.Title == "":
		return nil, fmt.Errorf("%w: title", ErrMissingField)
	}

	account, err := s.pool.Resolve(in.Ordinal)
	if err != nil {
		return nil, err
	}

	populated := 0
	for _, field := range []string{in.Body, in.URL, in.ImagePath} {
		if field != "" {
			populated++
		}
	}
	if populated > 1 {
		return nil, ErrAmbiguousContentKind
	}

	submitIn := &reddit.SubmitInput{
		Subreddit:   in.Subreddit,
		Title:       in.Title,
		Body:        in.Body,
		URL:         in.URL,
		ImagePath:   in.ImagePath,
		FlairID:     in.FlairID,
		FlairText:   in.FlairText,
		NSFW:        in.NSFW,
		Spoiler:     in.Spoiler,
		SendReplies: in.SendReplies,
	}

	var (
		submission *reddit.Submission
		kind       PostKind
	)

	switch {
	case in.ImagePath != "":
		info, statErr := os.Stat(in.ImagePath)
		if statErr != nil || info.IsDir() {
			return nil, fmt.Errorf("%w: %s", ErrMissingAsset, in.ImagePath)
		}
		kind = KindImage
		submission, err = account.Session.SubmitImage(ctx, submitIn)
	case in.URL != "":
		kind = KindLink
		submission, err = account.Session.SubmitLink(ctx, submitIn)
	default:
		// No content field populated is a valid text post with empty body.
		kind = KindText
		submission, err = account.Session.SubmitText(ctx, submitIn)
	}
	if err != nil {
		return nil, outcome.Classify(err)
	}

	out := &SubmitOutput{
		ID:        submission.ID,
		Permalink: submission.Permalink,
		Kind:      kind,
		Account:   account.Username,
		NSFW:      in.NSFW,
		Spoiler:   in.Spoiler,
	}

	s.recordPublished(ctx, in, out)

	slog.Info("published post",
		slog.String("id", out.ID),
		slog.String("kind", string(kind)),
		slog.String("subreddit", in.Subreddit),
		slog.String("account", account.Username),
	)

	return out, nil
}

// recordPublished writes a history entry, best effort. A ledger failure never
// fails the submission that already went out.
func (s *Service) recordPublished(ctx context.Context, in *SubmitInput, out *SubmitOutput) {
	if s.history == nil {
		return
	}

	if _, err := s.history.RecordPublished(ctx, &entity.RecordPublishedInput{
		Item: &entity.PublishedItem{
			PlatformID:  out.ID,
			Permalink:   out.Permalink,
			Kind:        string(out.Kind),
			Subreddit:   in.Subreddit,
			Title:       in.Title,
			Account:     out.Account,
			PublishedAt: time.Now(),
		},
	}); err != nil {
		slog.Warn("failed to record publish history", slog.Any("error", err))
	}
}

func (s *Service) VerifySubreddit(ctx context.Context, in *VerifySubredditInput) (*VerifySubredditOutput, error) {
	if in.Subreddit == "" {
		return nil, fmt.Errorf("%w: subreddit", ErrMissingField)
	}

	account, err := s.pool.Resolve(in.Ordinal)
	if err != nil {
		return nil, err
	}

	info, err := account.Session.Subreddit(ctx, in.Subreddit)
	if err != nil {
		return nil, outcome.Classify(err)
	}

	description := info.Description
	if runes := []rune(description); len(runes) > 200 {
		description = string(runes[:200])
	}

	return &VerifySubredditOutput{
		Name:        in.Subreddit,
		DisplayName: info.DisplayName,
		Subscribers: info.Subscribers,
		Description: description,
		NSFW:        info.NSFW,
	}, nil
}

func (s *Service) GetFlairs(ctx context.Context, in *GetFlairsInput) (*GetFlairsOutput, error) {
	if in.Subreddit == "" {
		return nil, fmt.Errorf("%w: subreddit", ErrMissingField)
	}

	account, err := s.pool.Resolve(in.Ordinal)
	if err != nil {
		return nil, err
	}

	flairs, err := account.Session.LinkFlairs(ctx, in.Subreddit)
	if err != nil {
		return nil, outcome.Classify(err)
	}

	templates := make([]*FlairTemplate, 0, len(flairs))
	for _, flair := range flairs {
		templates = append(templates, &FlairTemplate{
			ID:              flair.ID,
			Text:            flair.Text,
			TextColor:       flair.TextColor,
			BackgroundColor: flair.BackgroundColor,
			TextEditable:    flair.TextEditable,
		})
	}

	return &GetFlairsOutput{
		Subreddit: in.Subreddit,
		Flairs:    templates,
	}, nil
}

func (s *Service) Comment(ctx context.Context, in *CommentInput) (*CommentOutput, error) {
	switch {
	case in.SubmissionID == "":
		return nil, fmt.Errorf("%w: submission id", ErrMissingField)
	case in.Text == "":
		return nil, fmt.Errorf("%w: text", ErrMissingField)
	}

	account, err := s.pool.Resolve(in.Ordinal)
	if err != nil {
		return nil, err
	}

	submission, err := account.Session.Comment(ctx, in.SubmissionID, in.Text)
	if err != nil {
		return nil, outcome.Classify(err)
	}

	return &CommentOutput{
		ID:        submission.ID,
		Permalink: submission.Permalink,
		Account:   account.Username,
	}, nil
}

func (s *Service) Reply(ctx context.Context, in *ReplyInput) (*ReplyOutput, error) {
	switch {
	case in.CommentID == "":
		return nil, fmt.Errorf("%w: comment id", ErrMissingField)
	case in.Text == "":
		return nil, fmt.Errorf("%w: text", ErrMissingField)
	}

	account, err := s.pool.Resolve(in.Ordinal)
	if err != nil {
		return nil, err
	}

	submission, err := account.Session.Reply(ctx, in.CommentID, in.Text)
	if err != nil {
		return nil, outcome.Classify(err)
	}

	return &ReplyOutput{
		ID:        submission.ID,
		Permalink: submission.Permalink,
		Account:   account.Username,
	}, nil
}

func (s *Service) ListSubmissions(ctx context.Context, in *ListSubmissionsInput) (*ListSubmissionsOutput, error) {
	account, err := s.pool.Resolve(in.Ordinal)
	if err != nil {
		return nil, err
	}

	posts, err := account.Session.Submissions(ctx, in.Limit)
	if err != nil {
		return nil, outcome.Classify(err)
	}

	snapshots := make([]*PostSnapshot, 0, len(posts))
	for _, post := range posts {
		snapshots = append(snapshots, &PostSnapshot{
			ID:        post.ID,
			Title:     post.Title,
			URL:       post.URL,
			Subreddit: post.Subreddit,
			Permalink: post.GetPermalink(),
			NSFW:      post.NSFW,
			Spoiler:   post.Spoiler,
			Ups:       post.Ups,
			CreatedAt: time.Unix(int64(post.CreatedUTC), 0).UTC(),
		})
	}

	return &ListSubmissionsOutput{Posts: snapshots}, nil
}

func (s *Service) ListComments(ctx context.Context, in *ListCommentsInput) (*ListCommentsOutput, error) {
	if in.SubmissionID == "" {
		return nil, fmt.Errorf("%w: submission id", ErrMissingField)
	}

	account, err := s.pool.Resolve(in.Ordinal)
	if err != nil {
		return nil, err
	}

	comments, err := account.Session.Comments(ctx, in.SubmissionID, in.Limit)
	if err != nil {
		return nil, outcome.Classify(err)
	}

	views := make([]*CommentView, 0, len(comments))
	for _, comment := range comments {
		views = append(views, &CommentView{
			ID:        comment.ID,
			Author:    comment.Author,
			Body:      comment.Body,
			Depth:     comment.Depth,
			Ups:       comment.Ups,
			Permalink: comment.Permalink,
			CreatedAt: time.Unix(int64(comment.CreatedUTC), 0).UTC(),
		})
	}

	return &ListCommentsOutput{Comments: views}, nil
}
