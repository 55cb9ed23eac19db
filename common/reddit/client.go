package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"golang.org/x/oauth2"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	tokenURL = "https://www.reddit.com/api/v1/access_token"
	apiBase  = "https://oauth.reddit.com"
)

type (
	// Session is a single authenticated Reddit account. Implemented by
	// *Client; consumers hold it through the account pool only.
	Session interface {
		Me(ctx context.Context) (*Identity, error)
		Subreddit(ctx context.Context, name string) (*SubredditInfo, error)
		LinkFlairs(ctx context.Context, subreddit string) ([]*Flair, error)
		SubmitText(ctx context.Context, in *SubmitInput) (*Submission, error)
		SubmitLink(ctx context.Context, in *SubmitInput) (*Submission, error)
		SubmitImage(ctx context.Context, in *SubmitInput) (*Submission, error)
		Comment(ctx context.Context, submissionID, text string) (*Submission, error)
		Reply(ctx context.Context, commentID, text string) (*Submission, error)
		Submissions(ctx context.Context, limit int) ([]*Post, error)
		Comments(ctx context.Context, submissionID string, limit int) ([]*CommentSnapshot, error)
	}

	Client struct {
		httpClient *http.Client
		// uploadClient talks to the external media storage hosts named in
		// upload leases. It carries no bearer token and follows redirects;
		// storage endpoints reject foreign Authorization headers.
		uploadClient *http.Client
		username     string
	}

	Identity struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	userAgentRoundTripper struct {
		userAgent string
		next      http.RoundTripper
	}

	// passwordTokenSource re-runs the resource owner password grant whenever
	// the current token expires. Reddit script apps do not issue refresh
	// tokens for this grant.
	passwordTokenSource struct {
		ctx      context.Context
		conf     *oauth2.Config
		username string
		password string
	}
)

var _ Session = (*Client)(nil)

func (urt *userAgentRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", urt.userAgent)
	}
	return urt.next.RoundTrip(req)
}

func (s *passwordTokenSource) Token() (*oauth2.Token, error) {
	return s.conf.PasswordCredentialsToken(s.ctx, s.username, s.password)
}

// Dial authenticates a single account with the password grant and returns a
// ready session. The initial token fetch doubles as a credential check.
func Dial(ctx context.Context, clientID, clientSecret, username, password, userAgent string) (*Client, error) {
	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	oauth2HttpClient := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &userAgentRoundTripper{
			userAgent: userAgent,
			next:      http.DefaultTransport,
		},
	}

	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, oauth2HttpClient)
	tokenSrc := oauth2.ReuseTokenSource(nil, &passwordTokenSource{
		ctx:      tokenCtx,
		conf:     conf,
		username: username,
		password: password,
	})

	if _, err := tokenSrc.Token(); err != nil {
		return nil, fmt.Errorf("failed to obtain initial OAuth2 token: %w", err)
	}

	return &Client{
		username: username,
		uploadClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &userAgentRoundTripper{
				userAgent: userAgent,
				next:      http.DefaultTransport,
			},
		},
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &oauth2.Transport{
				Source: tokenSrc,
				Base: &userAgentRoundTripper{
					userAgent: userAgent,
					next:      http.DefaultTransport,
				},
			},
			// Reddit answers reads on merged or unknown subreddits with a
			// redirect to the search page. Surface that as a typed error
			// instead of following it.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return &RedirectError{Location: req.URL.String()}
			},
		},
	}, nil
}

func (c *Client) Username() string {
	return c.username
}

// Me fetches the authenticated account's own identity. Used as the liveness
// probe during pool load.
func (c *Client) Me(ctx context.Context) (*Identity, error) {
	var identity Identity
	if err := c.getJSON(ctx, "/api/v1/me", nil, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiBase+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	q := req.URL.Query()
	q.Set("raw_json", "1")
	for key, values := range query {
		for _, value := range values {
			q.Add(key, value)
		}
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return unwrapURLError(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// postForm performs a json-mode form POST and decodes the response envelope,
// converting the embedded error batch into an *APIError.
func (c *Client) postForm(ctx context.Context, path string, form url.Values) (*jsonResponse, error) {
	form.Set("api_type", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiBase+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, unwrapURLError(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var envelope jsonResponse
	if err = json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, err
	}

	if err = envelope.err(); err != nil {
		return nil, err
	}

	return &envelope, nil
}

// unwrapURLError strips the *url.Error wrapper the http client adds around
// CheckRedirect errors so callers see the RedirectError directly.
func unwrapURLError(err error) error {
	var redirectErr *RedirectError
	if errors.As(err, &redirectErr) {
		return redirectErr
	}
	return err
}
