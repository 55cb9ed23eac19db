package reddit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

type (
	SubmitInput struct {
		Subreddit string
		Title     string
		// Body, URL and ImagePath are mutually exclusive; each submission
		// method reads only its own field.
		Body        string
		URL         string
		ImagePath   string
		FlairID     string
		FlairText   string
		NSFW        bool
		Spoiler     bool
		SendReplies bool
	}

	// Submission is the platform's record of a newly published item. ID and
	// Permalink are taken verbatim from the API response.
	Submission struct {
		ID        string
		Name      string
		Permalink string
	}

	submitData struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		URL  string `json:"url"`
	}
)

func (in *SubmitInput) form(kind string) url.Values {
	form := url.Values{}
	form.Set("sr", in.Subreddit)
	form.Set("title", in.Title)
	form.Set("kind", kind)
	if in.FlairID != "" {
		form.Set("flair_id", in.FlairID)
	}
	if in.FlairText != "" {
		form.Set("flair_text", in.FlairText)
	}
	form.Set("nsfw", boolField(in.NSFW))
	form.Set("spoiler", boolField(in.Spoiler))
	form.Set("sendreplies", boolField(in.SendReplies))
	return form
}

func boolField(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// SubmitText publishes a self post. An empty body is valid.
func (c *Client) SubmitText(ctx context.Context, in *SubmitInput) (*Submission, error) {
	form := in.form("self")
	form.Set("text", in.Body)
	return c.submit(ctx, form)
}

// SubmitLink publishes a link post. Resubmission of an already-posted URL is
// allowed, matching the behaviour operators expect from cross-posting tools.
func (c *Client) SubmitLink(ctx context.Context, in *SubmitInput) (*Submission, error) {
	form := in.form("link")
	form.Set("url", in.URL)
	form.Set("resubmit", "true")
	return c.submit(ctx, form)
}

// SubmitImage uploads the local file through Reddit's media asset lease and
// then publishes an image post referencing the uploaded asset.
func (c *Client) SubmitImage(ctx context.Context, in *SubmitInput) (*Submission, error) {
	assetURL, err := c.uploadMedia(ctx, in.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	form := in.form("image")
	form.Set("url", assetURL)
	return c.submit(ctx, form)
}

func (c *Client) submit(ctx context.Context, form url.Values) (*Submission, error) {
	envelope, err := c.postForm(ctx, "/api/submit", form)
	if err != nil {
		return nil, err
	}

	var data submitData
	if len(envelope.JSON.Data) > 0 {
		if err = json.Unmarshal(envelope.JSON.Data, &data); err != nil {
			return nil, err
		}
	}

	return &Submission{
		ID:        data.ID,
		Name:      data.Name,
		Permalink: data.URL,
	}, nil
}

type (
	leaseField struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}

	mediaLease struct {
		Args struct {
			Action string       `json:"action"`
			Fields []leaseField `json:"fields"`
		} `json:"args"`
		Asset struct {
			AssetID string `json:"asset_id"`
		} `json:"asset"`
	}
)

// uploadMedia obtains an upload lease for the file and streams it to the
// lease target. Returns the URL of the uploaded asset.
func (c *Client) uploadMedia(ctx context.Context, path string) (string, error) {
	mimeType := mimeTypeForPath(path)

	form := url.Values{}
	form.Set("filepath", filepath.Base(path))
	form.Set("mimetype", mimeType)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiBase+"/api/media/asset.json", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", unwrapURLError(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp)
	}

	var lease mediaLease
	if err = json.NewDecoder(resp.Body).Decode(&lease); err != nil {
		return "", err
	}

	action := lease.Args.Action
	if strings.HasPrefix(action, "//") {
		action = "https:" + action
	}

	return c.uploadAsset(ctx, action, lease.Args.Fields, path)
}

// uploadAsset streams the file to the lease target. The target is external
// storage, not the Reddit API, so the request goes through the plain upload
// client and never carries the account's bearer token.
func (c *Client) uploadAsset(ctx context.Context, action string, fields []leaseField, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = file.Close()
	}()

	var (
		buf    bytes.Buffer
		key    string
		writer = multipart.NewWriter(&buf)
	)

	for _, field := range fields {
		if field.Name == "key" {
			key = field.Value
		}
		if err = writer.WriteField(field.Name, field.Value); err != nil {
			return "", err
		}
	}

	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err = io.Copy(part, file); err != nil {
		return "", err
	}
	if err = writer.Close(); err != nil {
		return "", err
	}

	uploadReq, err := http.NewRequestWithContext(ctx, http.MethodPost, action, &buf)
	if err != nil {
		return "", err
	}
	uploadReq.Header.Set("Content-Type", writer.FormDataContentType())

	uploadResp, err := c.uploadClient.Do(uploadReq)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = uploadResp.Body.Close()
	}()

	if uploadResp.StatusCode >= http.StatusBadRequest {
		return "", statusError(uploadResp)
	}

	return action + "/" + key, nil
}

func mimeTypeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
