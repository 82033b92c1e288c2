package identity

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"golang.org/x/oauth2"

	"github.com/orgsight/orgsight/pkg/configuration"
)

// Token is the material returned by the identity provider. The refresh token
// may be empty when the provider does not rotate it.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Provider exchanges a refresh token for fresh session credentials.
type Provider interface {
	Refresh(ctx context.Context, refreshToken string) (Token, error)
}

// OAuthProvider talks to the identity provider's OAuth2 token endpoint.
type OAuthProvider struct {
	config *oauth2.Config
}

func NewOAuthProvider(opts configuration.IdentityOptions) *OAuthProvider {
	return &OAuthProvider{
		config: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  opts.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}
}

func (p *OAuthProvider) Refresh(ctx context.Context, refreshToken string) (Token, error) {
	source := p.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return Token{}, errors.Wrap(err, "refresh token grant")
	}
	out := Token{
		AccessToken: token.AccessToken,
		ExpiresAt:   token.Expiry,
	}
	if token.RefreshToken != refreshToken {
		out.RefreshToken = token.RefreshToken
	}
	return out, nil
}
