package identity

import (
	"context"
	"errors"

	"github.com/growthic-inc/growthic-reddit/common/config"
)

type (
	// Principal is a verified operator identity. The service never issues or
	// stores credentials itself; it only verifies bearer tokens.
	Principal struct {
		ID    string
		Email string
		Name  string
	}

	Verifier interface {
		Verify(ctx context.Context, token string) (*Principal, error)
	}
)

var (
	ErrUnsupportedProvider = errors.New("unsupported identity provider")
	// ErrTokenRejected is the typed rejection for tokens the provider does
	// not accept.
	ErrTokenRejected = errors.New("identity token rejected")
)

func New(ctx context.Context, config *config.Identity) (Verifier, error) {
	switch config.Provider {
	case "google":
		return newGoogleVerifier(config)
	default:
		return nil, ErrUnsupportedProvider
	}
}
