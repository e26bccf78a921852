package identity

import (
	"golang.org/x/oauth2"
)

type tokenSource struct {
	provider Provider
}

// TokenSource exposes the current identity's ID token as an oauth2 token so it
// can ride on an oauth2.Transport.
func TokenSource(p Provider) oauth2.TokenSource {
	return tokenSource{provider: p}
}

func (ts tokenSource) Token() (*oauth2.Token, error) {
	id := ts.provider.Current()
	if id == nil || id.IDToken == "" {
		return nil, ErrNotSignedIn
	}
	return &oauth2.Token{
		AccessToken: id.IDToken,
		TokenType:   "Bearer",
		Expiry:      id.ExpiresAt,
	}, nil
}
