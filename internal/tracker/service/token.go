package service

import (
	"context"
	"time"

	"github.com/tracklane/tracklane/internal/tracker/domain"
	"github.com/tracklane/tracklane/pkg/clockx"
	"github.com/tracklane/tracklane/pkg/jwtx"
)

// AccessToken is an issued bearer token plus its metadata.
type AccessToken struct {
	Token     string
	TokenType string
	ExpiresIn int64 // seconds
}

type TokenService struct {
	Signer    *jwtx.Signer
	Issuer    string
	AccessTTL time.Duration
	Clock     clockx.Clock
}

// IssueAccessToken mints a signed EdDSA access token for user.
func (s *TokenService) IssueAccessToken(ctx context.Context, user domain.User) (AccessToken, error) {
	ttl := s.AccessTTL
	if ttl <= 0 {
		ttl = jwtx.DefaultAccessTokenTTL
	}

	claims := jwtx.NewAccessClaims(user.ID, user.Username, user.Role, s.Issuer, ttl, s.now())

	token, err := s.Signer.Sign(claims)
	if err != nil {
		return AccessToken{}, err
	}

	return AccessToken{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(ttl.Seconds()),
	}, nil
}

func (s *TokenService) now() time.Time {
	if s.Clock == nil {
		return clockx.System.Now()
	}
	return s.Clock.Now()
}
