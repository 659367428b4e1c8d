package security

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/domain"
)

// ErrMalformedCredential indicates a bearer credential that is not a JWT.
var ErrMalformedCredential = errors.New("credential: malformed token")

var unverifiedParser = jwt.NewParser()

// InspectCredential reads the subject and expiry of a bearer credential
// without checking its signature. The backend is the only authority on
// validity; the claims only drive proactive renewal and status display.
func InspectCredential(credential string) (domain.CredentialClaims, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return domain.CredentialClaims{}, ErrMalformedCredential
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := unverifiedParser.ParseUnverified(credential, claims); err != nil {
		return domain.CredentialClaims{}, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}

	out := domain.CredentialClaims{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return out, nil
}
