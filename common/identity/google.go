package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/growthic-inc/growthic-reddit/common/config"
)

const lookupURL = "https://identitytoolkit.googleapis.com/v1/accounts:lookup"

type googleVerifier struct {
	apiKey     string
	httpClient *http.Client
}

func newGoogleVerifier(config *config.Identity) (Verifier, error) {
	if config.WebAPIKey == "" {
		return nil, fmt.Errorf("google identity provider requires a web api key")
	}

	return &googleVerifier{
		apiKey: config.WebAPIKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

func (g *googleVerifier) Verify(ctx context.Context, token string) (*Principal, error) {
	payload, err := json.Marshal(map[string]string{"idToken": token})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, lookupURL+"?key="+g.apiKey, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrTokenRejected, resp.StatusCode)
	}

	var body struct {
		Users []struct {
			LocalID     string `json:"localId"`
			Email       string `json:"email"`
			DisplayName string `json:"displayName"`
		} `json:"users"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	if len(body.Users) == 0 {
		return nil, ErrTokenRejected
	}

	user := body.Users[0]
	name := user.DisplayName
	if name == "" {
		name, _, _ = strings.Cut(user.Email, "@")
	}

	return &Principal{
		ID:    user.LocalID,
		Email: user.Email,
		Name:  name,
	}, nil
}
