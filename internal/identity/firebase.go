package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
)

// Verifier turns a raw ID token into an Identity.
type Verifier interface {
	Verify(ctx context.Context, rawIDToken string) (Identity, error)
}

// FirebaseVerifier checks Firebase Authentication ID tokens: issuer
// https://securetoken.google.com/<project>, audience <project>.
type FirebaseVerifier struct {
	verifier *oidc.IDTokenVerifier
}

func NewFirebaseVerifier(ctx context.Context, projectID, issuerURL string) (*FirebaseVerifier, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, errors.New("firebase project id is required")
	}
	if strings.TrimSpace(issuerURL) == "" {
		issuerURL = "https://securetoken.google.com/" + projectID
	}

	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("discovering firebase issuer: %w", err)
	}
	return &FirebaseVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: projectID}),
	}, nil
}

// NewFirebaseVerifierWithKeySet skips discovery and checks signatures against keys.
func NewFirebaseVerifierWithKeySet(projectID, issuerURL string, keys oidc.KeySet) *FirebaseVerifier {
	return &FirebaseVerifier{
		verifier: oidc.NewVerifier(issuerURL, keys, &oidc.Config{ClientID: projectID}),
	}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, rawIDToken string) (Identity, error) {
	rawIDToken = strings.TrimSpace(rawIDToken)
	if rawIDToken == "" {
		return Identity{}, errors.New("id token is required")
	}

	idToken, err := v.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return Identity{}, fmt.Errorf("verifying id token: %w", err)
	}

	var claims struct {
		Subject       string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return Identity{}, fmt.Errorf("parsing id token claims: %w", err)
	}
	if claims.Subject == "" {
		return Identity{}, errors.New("id token has no subject")
	}

	return Identity{
		UID:           claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		DisplayName:   claims.Name,
		PhotoURL:      claims.Picture,
		IDToken:       rawIDToken,
		ExpiresAt:     idToken.Expiry,
	}, nil
}
